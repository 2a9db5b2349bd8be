// Package form reads and fills AcroForm fields of a PDF template.
package form

// WidgetKind is decided once per field when the form is loaded.
type WidgetKind int

const (
	KindText WidgetKind = iota + 1
	KindCheckbox
	KindPushButton
	KindRadioGroup
)

const (
	flagRequired   = 1 << 1
	flagMultiline  = 1 << 12
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
)

// Quadding values of a variable text field.
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

func (k WidgetKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindPushButton:
		return "pushbutton"
	case KindRadioGroup:
		return "radio"
	}
	return "unknown"
}

// Toggle reports whether the kind carries an on/off state rather than text.
func (k WidgetKind) Toggle() bool {
	return k == KindCheckbox || k == KindPushButton || k == KindRadioGroup
}

// kindOf maps a field type and flags onto a widget kind. Signature fields and
// non-terminal nodes without a type are not fillable.
func kindOf(ft string, flags int64) (WidgetKind, bool) {
	switch ft {
	case "Tx", "Ch":
		return KindText, true
	case "Btn":
		switch {
		case flags&flagPushButton != 0:
			return KindPushButton, true
		case flags&flagRadio != 0:
			return KindRadioGroup, true
		default:
			return KindCheckbox, true
		}
	}
	return 0, false
}
