package values

import "strings"

// Merge combines incoming values with the previously stored ones.
//
// Plain fields take the incoming value, including an explicit empty string.
// Checkbox-like fields take the canonical form of an explicit incoming token;
// otherwise a prior Checked survives and anything else becomes Unchecked.
// The result holds every incoming key plus the checked checkbox-like keys the
// caller did not mention. Merge has no side effects.
func Merge(incoming, existing map[string]string) map[string]string {
	out := make(map[string]string, len(incoming))
	for k, v := range incoming {
		if !IsCheckboxLike(k) {
			out[k] = v
			continue
		}
		out[k] = mergeCheckbox(v, existing[k])
	}
	for k, v := range existing {
		if _, seen := incoming[k]; seen {
			continue
		}
		if IsCheckboxLike(k) && isChecked(v) {
			out[k] = Checked
		}
	}
	return out
}

func mergeCheckbox(incoming, existing string) string {
	if c, ok := Canonical(incoming); ok {
		return c
	}
	if isChecked(existing) {
		return Checked
	}
	return Unchecked
}

func isChecked(v string) bool {
	c, ok := Canonical(v)
	return ok && c == Checked
}

// Overlay returns base with every entry of top applied over it.
func Overlay(base, top map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }
