package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// TextString encodes s as a text string literal, UTF-16BE when s is not ASCII.
func TextString(s string) types.StringLiteral {
	if !isASCII(s) {
		s = types.EncodeUTF16String(s)
	}
	esc, err := types.Escape(s)
	if err != nil {
		return types.StringLiteral(s)
	}
	return types.StringLiteral(*esc)
}

// Text decodes a string or hex literal into UTF-8.
func Text(o types.Object) (string, bool) {
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		return s, err == nil
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		return s, err == nil
	}
	return "", false
}

// Literal renders single-byte text as a string operand for a content stream.
func Literal(s string) string {
	esc, err := types.Escape(s)
	if err != nil {
		return "()"
	}
	return "(" + *esc + ")"
}

// Number returns a direct integer or real as float64.
func Number(o types.Object) (float64, bool) {
	switch v := o.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
