// Package pdf holds an AcroForm document as an editable pdfcpu object graph.
// Dictionaries resolved through a Document are live: mutating them changes
// what Bytes writes.
package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	ErrNoCatalog  = errors.New("pdf: document catalog not found")
	ErrNoPageTree = errors.New("pdf: page tree not found")
	ErrNotPDF     = errors.New("pdf: missing %PDF header")
)

func init() {
	api.DisableConfigDir()
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Document wraps a pdfcpu context.
type Document struct {
	ctx *model.Context
	err error
}

// Parse reads data through its cross-reference table. Documents encrypted
// with an empty user password are decrypted on read.
func Parse(data []byte) (*Document, error) {
	if head := bytes.Index(data, []byte("%PDF-")); head < 0 || head > 1024 {
		return nil, ErrNotPDF
	}
	ctx, err := api.ReadContext(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, fmt.Errorf("pdf: read: %w", err)
	}
	doc := &Document{ctx: ctx}
	if _, err := doc.Catalog(); err != nil {
		return nil, err
	}
	return doc, nil
}

// New returns a document with a catalog and an empty page tree.
func New() (*Document, error) {
	return Parse(assemble(
		"<</Type/Catalog/Pages 2 0 R>>",
		"<</Type/Pages/Kids[]/Count 0>>",
	))
}

// assemble lays out objects numbered from 1 behind a classic xref table.
// Object 1 is the catalog.
func assemble(objects ...string) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(objects))
	for i, o := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f\r\n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&b, "trailer\n<</Size %d/Root 1 0 R>>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

// Catalog returns the document catalog.
func (d *Document) Catalog() (types.Dict, error) {
	cat, err := d.ctx.Catalog()
	if err != nil || cat == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCatalog, err)
	}
	return cat, nil
}

// Resolve follows an indirect reference; unresolvable references yield nil.
func (d *Document) Resolve(o types.Object) types.Object {
	r, err := d.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return r
}

// ResolveDict resolves o as a dictionary; streams yield their dictionary.
func (d *Document) ResolveDict(o types.Object) (types.Dict, bool) {
	switch v := d.Resolve(o).(type) {
	case types.Dict:
		return v, true
	case types.StreamDict:
		return v.Dict, true
	}
	return nil, false
}

// ResolveArray resolves o as an array.
func (d *Document) ResolveArray(o types.Object) (types.Array, bool) {
	a, ok := d.Resolve(o).(types.Array)
	return a, ok
}

// ResolveStream resolves o as a stream.
func (d *Document) ResolveStream(o types.Object) (*types.StreamDict, bool) {
	sd, ok := d.Resolve(o).(types.StreamDict)
	if !ok {
		return nil, false
	}
	return &sd, true
}

// Add stores o as a new indirect object. A failure is kept and reported by Bytes.
func (d *Document) Add(o types.Object) types.IndirectRef {
	ref, err := d.ctx.IndRefForNewObject(o)
	if err != nil {
		d.fail(err)
		return types.IndirectRef{}
	}
	return *ref
}

// AddStream stores content Flate-encoded under dict.
func (d *Document) AddStream(dict types.Dict, content []byte) types.IndirectRef {
	dict["Filter"] = types.Name(filter.Flate)
	sd := types.NewStreamDict(dict, 0, nil, nil, []types.PDFFilter{{Name: filter.Flate}})
	sd.Content = content
	if err := sd.Encode(); err != nil {
		d.fail(fmt.Errorf("pdf: encode stream: %w", err))
		return types.IndirectRef{}
	}
	return d.Add(sd)
}

// AppendPage adds page as the last kid of the root page tree.
func (d *Document) AppendPage(page types.Dict) (types.IndirectRef, error) {
	cat, err := d.Catalog()
	if err != nil {
		return types.IndirectRef{}, err
	}
	pagesRef, ok := cat["Pages"].(types.IndirectRef)
	if !ok {
		return types.IndirectRef{}, ErrNoPageTree
	}
	pages, ok := d.ResolveDict(pagesRef)
	if !ok {
		return types.IndirectRef{}, ErrNoPageTree
	}
	page["Type"] = types.Name("Page")
	page["Parent"] = pagesRef
	ref := d.Add(page)
	kids, _ := d.ResolveArray(pages["Kids"])
	kids = append(kids, ref)
	pages["Kids"] = kids
	pages["Count"] = types.Integer(len(kids))
	d.ctx.PageCount = len(kids)
	return ref, d.err
}

func (d *Document) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Bytes writes the graph. Output is never encrypted.
func (d *Document) Bytes() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.ctx.Encrypt, d.ctx.EncKey, d.ctx.E = nil, nil, nil
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode returns the decoded content of a stream, applying its filter
// pipeline and predictors.
func Decode(sd *types.StreamDict) ([]byte, error) {
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("pdf: decode stream: %w", err)
	}
	return sd.Content, nil
}
