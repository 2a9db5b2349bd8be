package certificate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/certdesk/certdesk/internal/agency"
	"github.com/certdesk/certdesk/internal/fieldvalues"
	"github.com/certdesk/certdesk/internal/form"
	"github.com/certdesk/certdesk/internal/holders"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/internal/namedinsured"
	"github.com/certdesk/certdesk/internal/templates"
)

const account = "ACC18CHARID000001"

type staticInsured struct{ ni *namedinsured.NamedInsured }

func (s staticInsured) Lookup(context.Context, string) *namedinsured.NamedInsured { return s.ni }

type objects struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func (o *objects) Put(_ context.Context, key string, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("bucket unavailable")
	}
	o.data[key] = data
	return nil
}

func (o *objects) Get(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data[key], nil
}

type fixture struct {
	svc     *Service
	holders *holders.Service
	agency  *agency.Service
	values  *fieldvalues.Service
	records *MemoryRecords
}

func acord25(t *testing.T) []byte {
	t.Helper()
	b, err := form.BuildTemplate("ACORD 25", []form.FieldSpec{
		{Name: "CertificateHolder_FullName_A"},
		{Name: "CertificateHolder_MailingAddress_StateOrProvinceCode_A"},
		{Name: "Producer_FullName_A"},
		{Name: "NamedInsured_FullName_A"},
		{Name: "Policy_Number_A"},
		{Name: "GeneralLiability_OccurrenceIndicator_A", Kind: form.KindCheckbox},
		{Name: "Umbrella_Indicator_A", Kind: form.KindCheckbox, NoAppearance: true},
	})
	require.NoError(t, err)
	return b
}

func newFixture(t *testing.T, ni *namedinsured.NamedInsured, objs templates.ObjectStore) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acord25.pdf"), acord25(t), 0o644))

	f := &fixture{
		holders: holders.NewService(holders.NewMemoryRepo()),
		agency:  agency.NewService(agency.NewMemoryRepo()),
		values:  fieldvalues.NewService(fieldvalues.NewMemoryRepo()),
		records: NewMemoryRecords(),
	}
	f.svc = NewService(Deps{
		Templates:    templates.NewService(templates.NewMemoryRepo(), nil, templates.StorageCapabilities{}, dir),
		Mappings:     mapping.NewService(mapping.NewMemoryRepo()),
		Values:       f.values,
		Holders:      f.holders,
		Agency:       f.agency,
		NamedInsured: staticInsured{ni},
		Records:      f.records,
		Objects:      objs,
	})
	return f
}

func filled(t *testing.T, doc []byte) map[string]string {
	t.Helper()
	vals, err := form.ReadValues(doc)
	require.NoError(t, err)
	return vals
}

func TestRenderAggregatesSources(t *testing.T) {
	f := newFixture(t, &namedinsured.NamedInsured{Name: "Acme Corp"}, nil)
	ctx := context.Background()

	h, err := f.holders.Create(ctx, account, holders.Holder{Name: "Jane Doe", State: "ca"})
	require.NoError(t, err)
	_, err = f.agency.Put(ctx, account, agency.Settings{Name: "Best Agency"})
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, SaveRequest{AccountID: account, TemplateKey: "acord25", Values: map[string]string{
		"Policy_Number_A":                        "P-100",
		"Producer_FullName_A":                    "Stored Producer",
		"CertificateHolder_FullName_A":           "Old Holder",
		"GeneralLiability_OccurrenceIndicator_A": "Yes",
		"Umbrella_Indicator_A":                   "Yes",
	}})
	require.NoError(t, err)

	out, err := f.svc.Render(ctx, RenderRequest{AccountID: account, TemplateKey: "ACORD-25", HolderID: h.ID})
	require.NoError(t, err)
	require.Equal(t, ContentTypePDF, out.ContentType)
	require.Equal(t, "acord-25-certificate-of-liability-insurance.pdf", out.Filename)
	require.Equal(t, templates.SourceLocal, out.Source)

	vals := filled(t, out.Bytes)
	require.Equal(t, "Jane Doe", vals["CertificateHolder_FullName_A"])
	require.Equal(t, "CA", vals["CertificateHolder_MailingAddress_StateOrProvinceCode_A"])
	require.Equal(t, "Stored Producer", vals["Producer_FullName_A"])
	require.Equal(t, "Acme Corp", vals["NamedInsured_FullName_A"])
	require.Equal(t, "P-100", vals["Policy_Number_A"])
	require.Equal(t, "/Yes", vals["GeneralLiability_OccurrenceIndicator_A"])

	require.Len(t, out.Failures, 1)
	require.Equal(t, "Umbrella_Indicator_A", out.Failures[0].Field)

	recs, err := f.svc.Certificates(ctx, account)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, out.RecordID, recs[0].ID)
	require.Equal(t, 1, recs[0].FailureCount)
	require.Equal(t, "generated", recs[0].Status)
	require.Equal(t, templates.TemplateID("acord25"), recs[0].TemplateID)
}

func TestRenderWithoutOptionalSources(t *testing.T) {
	f := newFixture(t, nil, nil)
	out, err := f.svc.Render(context.Background(), RenderRequest{AccountID: account, TemplateKey: "acord25"})
	require.NoError(t, err)
	vals := filled(t, out.Bytes)
	require.Equal(t, "", vals["CertificateHolder_FullName_A"])
	require.Equal(t, "/Off", vals["GeneralLiability_OccurrenceIndicator_A"])
}

func TestRenderErrors(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Render(ctx, RenderRequest{AccountID: account, TemplateKey: "acord999"})
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)

	_, err = f.svc.Render(ctx, RenderRequest{AccountID: account, TemplateKey: "acord25", HolderID: "nope"})
	require.ErrorIs(t, err, holders.ErrNotFound)

	h, err := f.holders.Create(ctx, "OTHERACCOUNT00001", holders.Holder{Name: "Someone Else"})
	require.NoError(t, err)
	_, err = f.svc.Render(ctx, RenderRequest{AccountID: account, TemplateKey: "acord25", HolderID: h.ID})
	require.ErrorIs(t, err, holders.ErrNotFound)
}

func TestRenderUploadsToObjectStore(t *testing.T) {
	objs := &objects{data: map[string][]byte{}}
	f := newFixture(t, nil, objs)
	out, err := f.svc.Render(context.Background(), RenderRequest{AccountID: account, TemplateKey: "acord25"})
	require.NoError(t, err)

	recs, err := f.records.List(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "stored", recs[0].Status)
	require.Equal(t, "certificates/"+account+"/"+out.RecordID+".pdf", recs[0].StorageKey)
	require.Equal(t, out.Bytes, objs.data[recs[0].StorageKey])

	objs.fail = true
	_, err = f.svc.Render(context.Background(), RenderRequest{AccountID: account, TemplateKey: "acord25"})
	require.NoError(t, err)
	recs, err = f.records.List(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestSaveFromDocument(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	doc, err := form.Fill(acord25(t), map[string]string{
		"Policy_Number_A":                        "FROM-DOC",
		"NamedInsured_FullName_A":                "Doc Insured",
		"GeneralLiability_OccurrenceIndicator_A": "checked",
	})
	require.NoError(t, err)

	res, err := f.svc.Save(ctx, SaveRequest{
		AccountID:   account,
		TemplateKey: "acord25",
		Values:      map[string]string{"Policy_Number_A": "FROM-JSON", "Producer_FullName_A": "Agent"},
		Document:    doc.Document,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Version)

	got, err := f.svc.GetValues(ctx, account, "acord25")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Version)
	require.Equal(t, "FROM-DOC", got.Values["Policy_Number_A"])
	require.Equal(t, "Doc Insured", got.Values["NamedInsured_FullName_A"])
	require.Equal(t, "Agent", got.Values["Producer_FullName_A"])
	require.Equal(t, "checked", got.Values["GeneralLiability_OccurrenceIndicator_A"])
	require.Len(t, got.Fields, 7)

	_, err = f.svc.Save(ctx, SaveRequest{AccountID: account, TemplateKey: "acord25", Document: []byte("not a pdf")})
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = f.svc.Save(ctx, SaveRequest{AccountID: account, TemplateKey: "acord999", Values: map[string]string{"a": "b"}})
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestGetValuesEmpty(t *testing.T) {
	f := newFixture(t, nil, nil)
	got, err := f.svc.GetValues(context.Background(), account, "acord25")
	require.NoError(t, err)
	require.Empty(t, got.Values)
	require.Equal(t, int64(0), got.Version)
	require.NotEmpty(t, got.Fields)
}
