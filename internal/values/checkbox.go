// Package values merges and aggregates flat field-value maps.
package values

import (
	"regexp"
	"strings"
)

// Canonical checkbox states as stored in field value sets.
const (
	Checked   = "checked"
	Unchecked = "unchecked"
)

var checkboxMarkers = []string{"indicator", "checkbox", "check", "box"}

var textSuffixes = []string{
	"text", "name", "number", "date", "amount", "description", "remarks",
	"code", "address", "limit", "explanation", "email", "phone",
}

// acordSuffix matches the trailing "_A", "_B", ... occurrence marker of ACORD field names.
var acordSuffix = regexp.MustCompile(`_[a-z]$`)

// IsCheckboxLike reports whether a field name looks like an on/off indicator.
func IsCheckboxLike(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	marked := false
	for _, m := range checkboxMarkers {
		if strings.Contains(n, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	n = acordSuffix.ReplaceAllString(n, "")
	for _, s := range textSuffixes {
		if strings.HasSuffix(n, s) {
			return false
		}
	}
	return true
}

var explicitTokens = map[string]string{
	"/Yes": Checked, "/On": Checked, "/1": Checked,
	"Yes": Checked, "On": Checked, "1": Checked,
	"true": Checked, "True": Checked, "Y": Checked, "y": Checked,
	"/Off": Unchecked, "No": Unchecked, "Off": Unchecked, "0": Unchecked,
	"false": Unchecked, "False": Unchecked, "N": Unchecked, "n": Unchecked,
	Checked: Checked, Unchecked: Unchecked,
}

// Canonical maps an explicit true/false token onto Checked or Unchecked.
// The vocabulary is case-sensitive; ok is false for anything else.
func Canonical(v string) (string, bool) {
	c, ok := explicitTokens[strings.TrimSpace(v)]
	return c, ok
}
