package values

// Aggregate builds the value map for a render. base seeds the result, holder
// values replace anything they have a non-blank value for, and agency and
// named-insured values only fill fields that are still blank. Checkbox-like
// fields are finally reduced to Checked or Unchecked when their value is an
// explicit token or blank.
func Aggregate(base, holder, agency, namedInsured map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(holder)+len(agency)+len(namedInsured))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range holder {
		if !blank(v) {
			out[k] = v
		} else if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	for _, src := range []map[string]string{agency, namedInsured} {
		for k, v := range src {
			if blank(out[k]) && !blank(v) {
				out[k] = v
			} else if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	for k, v := range out {
		if !IsCheckboxLike(k) {
			continue
		}
		if c, ok := Canonical(v); ok {
			out[k] = c
		} else if blank(v) {
			out[k] = Unchecked
		}
	}
	return out
}
