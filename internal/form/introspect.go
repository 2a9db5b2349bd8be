package form

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/certdesk/certdesk/internal/pdf"
)

// FieldInfo describes one fillable field of a template.
type FieldInfo struct {
	Name         string   `json:"name" bson:"name"`
	Type         string   `json:"type" bson:"type"`
	Kind         string   `json:"kind" bson:"kind"`
	Label        string   `json:"label" bson:"label"`
	Required     bool     `json:"required" bson:"required"`
	DefaultValue *string  `json:"default_value,omitempty" bson:"default_value,omitempty"`
	Options      []string `json:"options,omitempty" bson:"options,omitempty"`
	States       []string `json:"states,omitempty" bson:"states,omitempty"`
	Flags        int64    `json:"flags" bson:"flags"`
}

// Introspect lists the fields of a template in document order.
func Introspect(data []byte) ([]FieldInfo, error) {
	f, err := load(data)
	if err != nil {
		return nil, err
	}
	out := make([]FieldInfo, 0, len(f.fields))
	for _, fl := range f.fields {
		info := FieldInfo{
			Name:     fl.name,
			Type:     fl.ft,
			Kind:     fl.kind.String(),
			Label:    fl.label,
			Required: fl.flags&flagRequired != 0,
			Options:  fl.options,
			Flags:    fl.flags,
		}
		if fl.kind.Toggle() {
			info.States = f.states(fl)
		}
		if s, ok := rawValue(f.doc, fl.value); ok {
			info.DefaultValue = &s
		}
		out = append(out, info)
	}
	return out, nil
}

// ReadValues returns the values stored in the document's fields. Checkboxes
// and push buttons read as "/Yes" or "/Off" whatever their on-state is named;
// radio groups read as the selected state name. Fields without a value are omitted.
func ReadValues(data []byte) (map[string]string, error) {
	f, err := load(data)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.fields))
	for _, fl := range f.fields {
		s, ok := rawValue(f.doc, fl.value)
		if !ok {
			continue
		}
		switch fl.kind {
		case KindCheckbox, KindPushButton:
			if s == "" || classOf(s) == classOff {
				s = "/Off"
			} else {
				s = "/Yes"
			}
		case KindRadioGroup:
			if s == "" {
				s = "/Off"
			}
		}
		out[fl.name] = s
	}
	return out, nil
}

// rawValue renders a field value the way clients see it: names keep their
// slash, strings are decoded text.
func rawValue(doc *pdf.Document, o types.Object) (string, bool) {
	switch v := doc.Resolve(o).(type) {
	case types.Name:
		return "/" + string(v), true
	case types.Array:
		if len(v) > 0 {
			return rawValue(doc, v[0])
		}
	case types.StreamDict:
		if data, err := pdf.Decode(&v); err == nil {
			return string(data), true
		}
	case nil:
	default:
		return pdf.Text(v)
	}
	return "", false
}

// Multiline reports whether a text field wraps its value over several lines.
func (fi FieldInfo) Multiline() bool {
	return fi.Type == "Tx" && fi.Flags&flagMultiline != 0
}
