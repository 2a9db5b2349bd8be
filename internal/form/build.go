package form

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/certdesk/certdesk/internal/pdf"
)

// FieldSpec describes a field for BuildTemplate.
type FieldSpec struct {
	Name  string
	Label string
	Kind  WidgetKind
	// OnState names the checked appearance of a checkbox or push button; "Yes" when empty.
	OnState string
	// Options are the on-states of a radio group, one widget each.
	Options []string
	// NoAppearance builds a toggle without any appearance dictionary.
	NoAppearance bool
	// Multiline text fields take two rows.
	Multiline bool
	Align     int
}

const (
	pageWidth   = 612.0
	pageHeight  = 792.0
	margin      = 36.0
	header      = 30.0
	rowHeight   = 26.0
	columnWidth = 270.0
	widgetH     = 14.0
)

func (fs FieldSpec) rows() int {
	if fs.Multiline && (fs.Kind == 0 || fs.Kind == KindText) {
		return 2
	}
	return 1
}

// BuildTemplate synthesizes a fillable document with one labelled widget per
// FieldSpec, laid out in two columns over as many pages as needed.
func BuildTemplate(title string, specs []FieldSpec) ([]byte, error) {
	doc, err := pdf.New()
	if err != nil {
		return nil, err
	}
	helv := doc.Add(helvetica())

	usable := pageHeight - 2*margin - header
	rows := int(usable / rowHeight)
	var fields types.Array

	for i := 0; i == 0 || i < len(specs); {
		page := types.Dict{
			"MediaBox":  types.Array{types.Integer(0), types.Integer(0), types.Integer(pageWidth), types.Integer(pageHeight)},
			"Resources": types.Dict{"Font": types.Dict{"F1": helv}},
		}
		pageRef, err := doc.AppendPage(page)
		if err != nil {
			return nil, err
		}
		var content bytes.Buffer
		if i == 0 {
			fmt.Fprintf(&content, "BT /F1 14 Tf %.0f %.0f Td %s Tj ET\n", margin, pageHeight-margin-14, pdf.Literal(latin1(title)))
		}
		var annots types.Array
		for slot := 0; i < len(specs); i++ {
			fs := specs[i]
			col, row := slot/rows, slot%rows
			if row+fs.rows() > rows {
				col, row = col+1, 0
				slot = col * rows
			}
			if col > 1 {
				break
			}
			slot += fs.rows()

			x := margin + float64(col)*(columnWidth+18)
			y := pageHeight - margin - header - float64(row+fs.rows())*rowHeight
			label := fs.Label
			if label == "" {
				label = fs.Name
			}
			top := y + float64(fs.rows()-1)*rowHeight + widgetH + 2
			fmt.Fprintf(&content, "BT /F1 6 Tf %.2f %.2f Td %s Tj ET\n", x, top, pdf.Literal(latin1(label)))
			fieldRef, widgets := addField(doc, fs, pageRef, x, y)
			fields = append(fields, fieldRef)
			for _, w := range widgets {
				annots = append(annots, w)
			}
		}
		page["Annots"] = annots
		page["Contents"] = doc.AddStream(types.Dict{}, content.Bytes())
		if len(specs) == 0 {
			break
		}
	}

	cat, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	cat["AcroForm"] = types.Dict{
		"Fields":          fields,
		"DA":              types.StringLiteral("/Helv 0 Tf 0 g"),
		"DR":              types.Dict{"Font": types.Dict{defaultFont: helv}},
		"NeedAppearances": types.Boolean(true),
	}
	return doc.Bytes()
}

func widgetRect(x, y, w, h float64) types.Array {
	return types.Array{types.Float(x), types.Float(y), types.Float(x + w), types.Float(y + h)}
}

func toggleAppearance(doc *pdf.Document, on string) types.Dict {
	onData := fmt.Sprintf("q 0 G 1 w 0 0 %.0f %.0f re S 2 2 m %.0f %.0f l 2 %.0f m %.0f 2 l S Q", widgetH, widgetH, widgetH-2, widgetH-2, widgetH-2, widgetH-2)
	offData := fmt.Sprintf("q 0 G 1 w 0 0 %.0f %.0f re S Q", widgetH, widgetH)
	xobj := func(data string) types.IndirectRef {
		return doc.AddStream(types.Dict{
			"Type":    types.Name("XObject"),
			"Subtype": types.Name("Form"),
			"BBox":    types.Array{types.Integer(0), types.Integer(0), types.Float(widgetH), types.Float(widgetH)},
		}, []byte(data))
	}
	return types.Dict{"N": types.Dict{on: xobj(onData), "Off": xobj(offData)}}
}

func addField(doc *pdf.Document, fs FieldSpec, page types.IndirectRef, x, y float64) (types.IndirectRef, []types.IndirectRef) {
	widget := func() types.Dict {
		return types.Dict{"Type": types.Name("Annot"), "Subtype": types.Name("Widget"), "F": types.Integer(4), "P": page}
	}
	switch fs.Kind {
	case KindCheckbox, KindPushButton:
		d := widget()
		d["FT"] = types.Name("Btn")
		d["T"] = pdf.TextString(fs.Name)
		d["Rect"] = widgetRect(x, y, widgetH, widgetH)
		if fs.Kind == KindPushButton {
			d["Ff"] = types.Integer(flagPushButton)
		}
		if fs.Label != "" {
			d["TU"] = pdf.TextString(fs.Label)
		}
		if !fs.NoAppearance {
			on := fs.OnState
			if on == "" {
				on = "Yes"
			}
			d["AP"] = toggleAppearance(doc, on)
			d["AS"] = types.Name("Off")
			d["V"] = types.Name("Off")
		}
		ref := doc.Add(d)
		return ref, []types.IndirectRef{ref}
	case KindRadioGroup:
		parent := types.Dict{
			"FT": types.Name("Btn"),
			"Ff": types.Integer(flagRadio | 1<<14),
			"T":  pdf.TextString(fs.Name),
			"V":  types.Name("Off"),
		}
		if fs.Label != "" {
			parent["TU"] = pdf.TextString(fs.Label)
		}
		parentRef := doc.Add(parent)
		var kids types.Array
		var refs []types.IndirectRef
		for i, opt := range fs.Options {
			w := widget()
			w["Parent"] = parentRef
			w["Rect"] = widgetRect(x+float64(i)*(widgetH+6), y, widgetH, widgetH)
			w["AP"] = toggleAppearance(doc, opt)
			w["AS"] = types.Name("Off")
			r := doc.Add(w)
			kids = append(kids, r)
			refs = append(refs, r)
		}
		parent["Kids"] = kids
		return parentRef, refs
	default:
		d := widget()
		d["FT"] = types.Name("Tx")
		d["T"] = pdf.TextString(fs.Name)
		h := widgetH
		if fs.rows() > 1 {
			h += float64(fs.rows()-1) * rowHeight
			d["Ff"] = types.Integer(flagMultiline)
		}
		d["Rect"] = widgetRect(x, y, columnWidth-10, h)
		d["DA"] = types.StringLiteral("/Helv 0 Tf 0 g")
		if fs.Align != AlignLeft {
			d["Q"] = types.Integer(fs.Align)
		}
		if fs.Label != "" {
			d["TU"] = pdf.TextString(fs.Label)
		}
		ref := doc.Add(d)
		return ref, []types.IndirectRef{ref}
	}
}
