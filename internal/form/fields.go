package form

import (
	"errors"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/certdesk/certdesk/internal/pdf"
)

// ErrNoForm is returned when a document has no AcroForm dictionary.
var ErrNoForm = errors.New("form: document has no AcroForm")

type field struct {
	name    string
	kind    WidgetKind
	ft      string
	flags   int64
	align   int
	dict    types.Dict
	widgets []types.Dict
	value   types.Object
	da      string
	label   string
	options []string
}

// inherited carries the attributes a field takes from its ancestors.
type inherited struct {
	ft    string
	flags int64
	align int
	value types.Object
	da    string
}

type form struct {
	doc    *pdf.Document
	acro   types.Dict
	fields []*field
	byName map[string][]*field
}

func load(data []byte) (*form, error) {
	doc, err := pdf.Parse(data)
	if err != nil {
		return nil, err
	}
	cat, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	acro, ok := doc.ResolveDict(cat["AcroForm"])
	if !ok {
		return nil, ErrNoForm
	}
	f := &form{doc: doc, acro: acro, byName: map[string][]*field{}}
	var inh inherited
	if da, ok := pdf.Text(acro["DA"]); ok {
		inh.da = da
	}
	if q := acro.IntEntry("Q"); q != nil {
		inh.align = *q
	}
	seen := map[int]bool{}
	roots, _ := doc.ResolveArray(acro["Fields"])
	for _, r := range roots {
		f.walk(r, "", inh, seen)
	}
	for _, fl := range f.fields {
		f.byName[fl.name] = append(f.byName[fl.name], fl)
	}
	return f, nil
}

func (f *form) walk(obj types.Object, parent string, inh inherited, seen map[int]bool) {
	if r, ok := obj.(types.IndirectRef); ok {
		if seen[int(r.ObjectNumber)] {
			return
		}
		seen[int(r.ObjectNumber)] = true
	}
	d, ok := f.doc.ResolveDict(obj)
	if !ok {
		return
	}
	name := parent
	partial, hasName := pdf.Text(d["T"])
	if hasName {
		if name == "" {
			name = partial
		} else {
			name = parent + "." + partial
		}
	}
	if ft := d.NameEntry("FT"); ft != nil {
		inh.ft = *ft
	}
	if ff := d.IntEntry("Ff"); ff != nil {
		inh.flags = int64(*ff)
	}
	if q := d.IntEntry("Q"); q != nil {
		inh.align = *q
	}
	if v, ok := d["V"]; ok {
		inh.value = v
	}
	if da, ok := pdf.Text(d["DA"]); ok {
		inh.da = da
	}

	var fieldKids []types.Object
	var widgets []types.Dict
	kids, _ := f.doc.ResolveArray(d["Kids"])
	for _, k := range kids {
		kd, ok := f.doc.ResolveDict(k)
		if !ok {
			continue
		}
		if _, named := kd["T"]; named {
			fieldKids = append(fieldKids, k)
		} else {
			widgets = append(widgets, kd)
		}
	}
	if len(fieldKids) > 0 {
		for _, k := range fieldKids {
			f.walk(k, name, inh, seen)
		}
		return
	}
	if name == "" {
		return
	}
	kind, ok := kindOf(inh.ft, inh.flags)
	if !ok {
		return
	}
	if len(widgets) == 0 {
		widgets = []types.Dict{d}
	}
	label := name
	if tu, ok := pdf.Text(d["TU"]); ok && strings.TrimSpace(tu) != "" {
		label = tu
	} else if partial != "" {
		label = partial
	}
	f.fields = append(f.fields, &field{
		name:    name,
		kind:    kind,
		ft:      inh.ft,
		flags:   inh.flags,
		align:   inh.align,
		dict:    d,
		widgets: widgets,
		value:   inh.value,
		da:      inh.da,
		label:   label,
		options: f.options(d["Opt"]),
	})
}

func (f *form) options(o types.Object) []string {
	arr, ok := f.doc.ResolveArray(o)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		switch v := f.doc.Resolve(e).(type) {
		case types.Array:
			if len(v) > 0 {
				if s, ok := pdf.Text(f.doc.Resolve(v[len(v)-1])); ok {
					out = append(out, s)
				}
			}
		default:
			if s, ok := pdf.Text(v); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// widgetStates returns the appearance state names a widget can show, without slashes.
func (f *form) widgetStates(w types.Dict) []string {
	ap, ok := f.doc.ResolveDict(w["AP"])
	if !ok {
		return nil
	}
	set := map[string]bool{}
	for _, key := range []string{"N", "D"} {
		states, ok := f.doc.Resolve(ap[key]).(types.Dict)
		if !ok {
			continue
		}
		for s := range states {
			set[s] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// states returns the union of appearance states over all widgets of fl.
func (f *form) states(fl *field) []string {
	set := map[string]bool{}
	var out []string
	for _, w := range fl.widgets {
		for _, s := range f.widgetStates(w) {
			if !set[s] {
				set[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (f *form) widgetHas(w types.Dict, state string) bool {
	for _, s := range f.widgetStates(w) {
		if s == state {
			return true
		}
	}
	return false
}

// setState writes state into the field value and into each widget's /AS,
// falling back to Off on widgets that have no appearance for it.
func (f *form) setState(fl *field, state string) {
	for _, w := range fl.widgets {
		if f.widgetHas(w, state) {
			w["AS"] = types.Name(state)
		} else {
			w["AS"] = types.Name("Off")
		}
	}
	fl.dict["V"] = types.Name(state)
}
