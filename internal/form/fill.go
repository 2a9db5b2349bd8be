package form

import (
	"fmt"
	"sort"
	"strings"

	"github.com/certdesk/certdesk/internal/pdf"
)

// FieldFailure records a field that could not be written. Failures never abort a fill.
type FieldFailure struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Result is the outcome of Fill.
type Result struct {
	Document []byte
	Failures []FieldFailure
	Filled   int
}

type pendingToggle struct {
	field   *field
	desired string
}

// Fill writes values into the fields of template and returns the new document.
// Text and radio fields are written first. Checkboxes and push buttons are
// resolved afterwards against the appearance states each widget actually
// carries. Names that match no field are ignored. An error is returned only
// when the template cannot be parsed or the result cannot be serialized.
func Fill(template []byte, values map[string]string) (*Result, error) {
	f, err := load(template)
	if err != nil {
		return nil, err
	}
	res := &Result{}

	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	var pending []pendingToggle
	for _, name := range names {
		v := values[name]
		for _, fl := range f.byName[name] {
			switch fl.kind {
			case KindText:
				s := textValue(v)
				fl.dict["V"] = pdf.TextString(s)
				for _, w := range fl.widgets {
					f.setTextAppearance(fl, w, s)
				}
				res.Filled++
			case KindRadioGroup:
				if reason := f.fillRadio(fl, v); reason != "" {
					res.Failures = append(res.Failures, FieldFailure{Field: name, Reason: reason})
					continue
				}
				res.Filled++
			case KindCheckbox, KindPushButton:
				if strings.TrimSpace(v) == "" {
					v = "unchecked"
				}
				pending = append(pending, pendingToggle{field: fl, desired: v})
			}
		}
	}

	for _, p := range pending {
		state, ok := ChooseState(f.states(p.field), p.desired)
		if !ok {
			res.Failures = append(res.Failures, FieldFailure{
				Field:  p.field.name,
				Reason: "widget has no appearance states",
			})
			continue
		}
		f.setState(p.field, bare(state))
		res.Filled++
	}
	delete(f.acro, "NeedAppearances")

	out, err := f.doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("form: serialize: %w", err)
	}
	res.Document = out
	return res, nil
}

// fillRadio selects the option named by v, or the first conventional on
// state when v is merely truthy. It returns a failure reason or "".
func (f *form) fillRadio(fl *field, v string) string {
	states := f.states(fl)
	want := bare(v)
	if want != "" && classOf(want) != classOff {
		for _, s := range states {
			if strings.EqualFold(s, want) && classOf(s) != classOff {
				f.setState(fl, s)
				return ""
			}
		}
		for _, c := range []string{"X", "Yes", "1", "On"} {
			for _, s := range states {
				if strings.EqualFold(s, c) {
					f.setState(fl, s)
					return ""
				}
			}
		}
		return fmt.Sprintf("no radio option matches %q", v)
	}
	f.setState(fl, "Off")
	return ""
}
