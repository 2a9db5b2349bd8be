package form

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/certdesk/certdesk/internal/pdf"
)

const (
	defaultFont = "Helv"
	// metricsFont measures text for wrapping and alignment whatever font the DA names.
	metricsFont = "Helvetica"
	padding     = 2.0
	leading     = 1.15
)

func (f *form) rect(w types.Dict) (width, height float64, ok bool) {
	arr, found := f.doc.ResolveArray(w["Rect"])
	if !found || len(arr) != 4 {
		return 0, 0, false
	}
	var v [4]float64
	for i, o := range arr {
		n, ok := pdf.Number(f.doc.Resolve(o))
		if !ok {
			return 0, 0, false
		}
		v[i] = n
	}
	width, height = math.Abs(v[2]-v[0]), math.Abs(v[3]-v[1])
	return width, height, width > 0 && height > 0
}

// parseDA extracts the font resource name and size from a default appearance string.
func parseDA(da string) (string, float64) {
	toks := strings.Fields(da)
	for i, t := range toks {
		if t != "Tf" || i < 2 {
			continue
		}
		size, _ := strconv.ParseFloat(toks[i-1], 64)
		return strings.TrimPrefix(toks[i-2], "/"), size
	}
	return defaultFont, 0
}

// fontResource returns the font object registered under name in the form's
// default resources, adding Helvetica when nothing usable is registered.
func (f *form) fontResource(name string) (string, types.Object) {
	dr, ok := f.doc.ResolveDict(f.acro["DR"])
	if !ok {
		dr = types.Dict{}
		f.acro["DR"] = dr
	}
	fonts, ok := f.doc.ResolveDict(dr["Font"])
	if !ok {
		fonts = types.Dict{}
		dr["Font"] = fonts
	}
	if o, ok := fonts[name]; ok {
		return name, o
	}
	if o, ok := fonts[defaultFont]; ok {
		return defaultFont, o
	}
	ref := f.doc.Add(helvetica())
	fonts[defaultFont] = ref
	return defaultFont, ref
}

func helvetica() types.Dict {
	return types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
}

// latin1 maps text to single-byte codes for the simple font; runes outside
// Latin-1 become '?'.
func latin1(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 256 {
			b = append(b, byte(r))
		} else {
			b = append(b, '?')
		}
	}
	return string(b)
}

func textWidth(s string, size float64) float64 {
	return font.TextWidth(s, metricsFont, 1000) * size / 1000
}

// wrap splits text at explicit line breaks and then between words so that
// no line is wider than width. A single word wider than width keeps its own line.
func wrap(text string, size, width float64) []string {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if textWidth(line+" "+w, size) <= width {
				line += " " + w
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// lineX is the x offset of a line of lineWidth inside a box of boxWidth.
func lineX(align int, lineWidth, boxWidth float64) float64 {
	switch align {
	case AlignCenter:
		return math.Max(padding, (boxWidth-lineWidth)/2)
	case AlignRight:
		return math.Max(padding, boxWidth-padding-lineWidth)
	}
	return padding
}

// setTextAppearance replaces the normal appearance of widget w with a form
// XObject that shows text, so viewers that ignore NeedAppearances still render it.
// Multiline fields get one text line per row.
func (f *form) setTextAppearance(fl *field, w types.Dict, text string) {
	width, height, ok := f.rect(w)
	if !ok {
		return
	}
	multiline := fl.flags&flagMultiline != 0
	fontName, size := parseDA(fl.da)
	if size <= 0 {
		size = math.Min(12, math.Max(4, (height-2)*0.7))
		if multiline {
			size = math.Min(size, 10)
		}
	}
	fontName, fontObj := f.fontResource(fontName)
	text = latin1(text)

	var c bytes.Buffer
	c.WriteString("/Tx BMC\nq\n")
	fmt.Fprintf(&c, "1 1 %.2f %.2f re W n\n", width-2, height-2)
	c.WriteString("BT\n")
	fmt.Fprintf(&c, "/%s %.2f Tf 0 g\n", fontName, size)
	if multiline {
		fmt.Fprintf(&c, "%.2f TL\n", size*leading)
		prev := 0.0
		for i, line := range wrap(text, size, width-2*padding) {
			x := lineX(fl.align, textWidth(line, size), width)
			if i == 0 {
				fmt.Fprintf(&c, "%.2f %.2f Td\n", x, height-padding-size)
			} else {
				c.WriteString("T*\n")
				if dx := x - prev; dx != 0 {
					fmt.Fprintf(&c, "%.2f 0 Td\n", dx)
				}
			}
			prev = x
			fmt.Fprintf(&c, "%s Tj\n", pdf.Literal(line))
		}
	} else {
		line := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
		x := lineX(fl.align, textWidth(line, size), width)
		fmt.Fprintf(&c, "%.2f %.2f Td\n", x, (height-size)/2+size*0.22)
		fmt.Fprintf(&c, "%s Tj\n", pdf.Literal(line))
	}
	c.WriteString("ET\nQ\nEMC\n")

	ref := f.doc.AddStream(types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"BBox":      types.Array{types.Integer(0), types.Integer(0), types.Float(width), types.Float(height)},
		"Resources": types.Dict{"Font": types.Dict{fontName: fontObj}},
	}, c.Bytes())
	w["AP"] = types.Dict{"N": ref}
}
