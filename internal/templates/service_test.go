package templates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/certdesk/certdesk/internal/form"
)

type memObjects struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemObjects() *memObjects { return &memObjects{data: map[string][]byte{}} }

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func pdfWith(t *testing.T, names ...string) []byte {
	t.Helper()
	specs := make([]form.FieldSpec, len(names))
	for i, n := range names {
		specs[i] = form.FieldSpec{Name: n}
	}
	b, err := form.BuildTemplate("test", specs)
	require.NoError(t, err)
	return b
}

func TestSlugAndFilename(t *testing.T) {
	require.Equal(t, "acord-25-certificate-of-liability-insurance", Slug("ACORD 25 - Certificate of Liability Insurance"))
	require.Equal(t, "", Slug("  --  "))
	tpl := &Template{DisplayName: "ACORD 25 - Certificate of Liability Insurance"}
	require.Equal(t, "acord-25-certificate-of-liability-insurance.pdf", tpl.Filename())
	require.Equal(t, "certificate.pdf", (&Template{}).Filename())
}

func TestResolveStoredInline(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	data := pdfWith(t, "A")
	require.NoError(t, repo.Upsert(ctx, &Template{ID: "t1", TypeKey: "acord25", Bytes: data}))

	svc := NewService(repo, nil, StorageCapabilities{InlineBlob: true}, "")
	tpl, b, src, err := svc.Resolve(ctx, "ACORD 25")
	require.NoError(t, err)
	require.Equal(t, SourceStored, src)
	require.Equal(t, "t1", tpl.ID)
	require.Equal(t, data, b)

	_, _, src, err = svc.Resolve(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, SourceStored, src)
}

func TestResolveIgnoresInlineBytesWithoutCapability(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &Template{ID: "t1", TypeKey: "acord25", Bytes: pdfWith(t, "A")}))

	svc := NewService(repo, nil, StorageCapabilities{InlineBlob: false}, "")
	_, _, src, err := svc.Resolve(ctx, "acord25")
	require.NoError(t, err)
	require.Equal(t, SourcePlaceholder, src)
}

func TestResolveFromObjectStore(t *testing.T) {
	repo := NewMemoryRepo()
	objects := newMemObjects()
	ctx := context.Background()
	data := pdfWith(t, "B")
	require.NoError(t, objects.Put(ctx, "templates/acord27.pdf", data, "application/pdf"))
	require.NoError(t, repo.Upsert(ctx, &Template{ID: "t2", TypeKey: "acord27", StorageKey: "templates/acord27.pdf"}))

	svc := NewService(repo, objects, StorageCapabilities{ObjectStore: true}, "")
	_, b, src, err := svc.Resolve(ctx, "acord27")
	require.NoError(t, err)
	require.Equal(t, SourceStored, src)
	require.Equal(t, data, b)
}

func TestResolveLocalFileCandidates(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	data := pdfWith(t, "C")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acord25.pdf"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acord-28-evidence-of-commercial-property-insurance.pdf"), data, 0o644))

	svc := NewService(NewMemoryRepo(), nil, StorageCapabilities{InlineBlob: true}, dir)

	tpl, b, src, err := svc.Resolve(ctx, "acord25")
	require.NoError(t, err)
	require.Equal(t, SourceLocal, src)
	require.Equal(t, data, b)
	require.Equal(t, "ACORD 25 - Certificate of Liability Insurance", tpl.DisplayName)

	_, _, src, err = svc.Resolve(ctx, "acord28")
	require.NoError(t, err)
	require.Equal(t, SourceLocal, src)
}

func TestResolvePlaceholderAndNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &Template{
		ID:          "t3",
		TypeKey:     "acord25",
		DisplayName: "ACORD 25 - Certificate of Liability Insurance",
		KnownFields: []form.FieldInfo{{Name: "Policy_PolicyNumberIdentifier_A", Label: "Policy number"}},
	}))
	svc := NewService(repo, nil, StorageCapabilities{InlineBlob: true}, t.TempDir())

	_, b, src, err := svc.Resolve(ctx, "acord25")
	require.NoError(t, err)
	require.Equal(t, SourcePlaceholder, src)
	fields, err := form.Introspect(b)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range fields {
		names[f.Name] = true
	}
	require.True(t, names["Policy_PolicyNumberIdentifier_A"])
	require.True(t, names["CertificateHolder_FullName_A"])
	require.True(t, names["Producer_FullName_A"])
	require.True(t, names["NamedInsured_FullName_A"])

	_, _, _, err = svc.Resolve(ctx, "acord999")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRefreshSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path := filepath.Join(dir, "acord25.pdf")
	require.NoError(t, os.WriteFile(path, pdfWith(t, "One"), 0o644))

	repo := NewMemoryRepo()
	svc := NewService(repo, nil, StorageCapabilities{InlineBlob: true}, dir)

	tpl, changed, err := svc.Refresh(ctx, "acord25")
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, tpl.KnownFields, 1)
	require.NotEmpty(t, tpl.Checksum)

	_, changed, err = svc.Refresh(ctx, "acord25")
	require.NoError(t, err)
	require.False(t, changed)

	require.NoError(t, os.WriteFile(path, pdfWith(t, "One", "Two"), 0o644))
	tpl2, changed, err := svc.Refresh(ctx, "acord25")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, tpl.ID, tpl2.ID)
	require.Equal(t, TemplateID("acord25"), tpl.ID)
	require.NotEqual(t, TemplateID("acord27"), tpl.ID)
	require.Len(t, tpl2.KnownFields, 2)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].Bytes)

	_, _, err = svc.Refresh(ctx, "acord30")
	require.ErrorIs(t, err, ErrNoLocalFile)
}

func TestRefreshUploadsToObjectStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	data := pdfWith(t, "X")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acord27.pdf"), data, 0o644))
	objects := newMemObjects()
	svc := NewService(NewMemoryRepo(), objects, StorageCapabilities{ObjectStore: true}, dir)

	changed, err := svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acord27"}, changed)

	stored, err := objects.Get(ctx, "templates/acord27.pdf")
	require.NoError(t, err)
	require.Equal(t, data, stored)

	_, b, src, err := svc.Resolve(ctx, "acord27")
	require.NoError(t, err)
	require.Equal(t, SourceStored, src)
	require.Equal(t, data, b)

	changed, err = svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Empty(t, changed)
}
