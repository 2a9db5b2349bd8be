package form

import "strings"

type stateClass int

const (
	classOther stateClass = iota
	classOn
	classOff
)

var stateAliases = map[string]stateClass{
	"yes":       classOn,
	"true":      classOn,
	"1":         classOn,
	"on":        classOn,
	"checked":   classOn,
	"x":         classOn,
	"off":       classOff,
	"0":         classOff,
	"false":     classOff,
	"unchecked": classOff,
}

func bare(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "/")
}

func classOf(s string) stateClass {
	return stateAliases[strings.ToLower(bare(s))]
}

// ChooseState picks the appearance state a toggle widget should show for the
// desired value. Candidates, in order: an exact case-insensitive match, a state
// of the same on/off alias class, Off for an off-like request, then the first
// available state. The returned name carries a leading slash; ok is false only
// when available is empty.
func ChooseState(available []string, desired string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	want := bare(desired)
	for _, s := range available {
		if strings.EqualFold(bare(s), want) {
			return "/" + bare(s), true
		}
	}
	class := classOf(want)
	if class != classOther {
		for _, s := range available {
			if classOf(s) == class {
				return "/" + bare(s), true
			}
		}
	}
	if class == classOff {
		return "/Off", true
	}
	return "/" + bare(available[0]), true
}

// textSentinels are checkbox tokens that land in text widgets; they are
// written as words rather than raw names.
var textSentinels = map[string]string{
	"/yes":      "Yes",
	"/on":       "Yes",
	"/1":        "Yes",
	"checked":   "Yes",
	"/off":      "No",
	"/0":        "No",
	"unchecked": "No",
}

func textValue(v string) string {
	if w, ok := textSentinels[strings.ToLower(strings.TrimSpace(v))]; ok {
		return w
	}
	return v
}
