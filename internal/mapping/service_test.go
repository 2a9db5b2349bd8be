package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeKey(t *testing.T) {
	require.Equal(t, "acord25", NormalizeKey("ACORD 25"))
	require.Equal(t, "acord25", NormalizeKey(" acord_25 "))
	require.Equal(t, DefaultKey, NormalizeKey(""))
	require.Equal(t, DefaultKey, NormalizeKey("--"))
}

func TestResolveFallsBackToBuiltins(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	holder := svc.Resolve(ctx, "ACORD 25", ScopeHolder)
	require.Equal(t, "CertificateHolder_FullName_A", holder["name"])
	require.Equal(t, "CertificateHolder_MailingAddress_StateOrProvinceCode_A", holder["state"])

	require.Equal(t, "AdditionalInterest_FullName_A", svc.Resolve(ctx, "acord27", ScopeHolder)["name"])
	require.Equal(t, "CertificateHolder_FullName_A", svc.Resolve(ctx, "unknown-form", ScopeHolder)["name"])

	a1 := svc.Resolve(ctx, "acord25", ScopeAgency)
	a2 := svc.Resolve(ctx, "acord28", ScopeAgency)
	require.Equal(t, a1, a2)
	require.NotEmpty(t, a1)

	unknown := svc.Resolve(ctx, "nope", Scope("bogus"))
	require.NotNil(t, unknown)
	require.Empty(t, unknown)
}

func TestResolvePrefersStoredOverrides(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Put(ctx, "", "named_insured", map[string]*string{"name": strPtr("Generic_Name")})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Generic_Name"}, svc.Resolve(ctx, "acord25", ScopeNamedInsured))

	_, err = svc.Put(ctx, "Acord 25", "named_insured", map[string]*string{"name": strPtr("Specific_Name")})
	require.NoError(t, err)
	require.Equal(t, "Specific_Name", svc.Resolve(ctx, "acord25", ScopeNamedInsured)["name"])
	require.Equal(t, "Generic_Name", svc.Resolve(ctx, "acord28", ScopeNamedInsured)["name"])

	got, err := svc.Get(ctx, "acord25", "named_insured", true)
	require.NoError(t, err)
	require.Equal(t, "NamedInsured_FullName_A", got["name"])
}

func TestPutCleansInput(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	mp, err := svc.Put(ctx, "acord25", " Holder ", map[string]*string{
		" name ": strPtr("  Field_A  "),
		"city":   nil,
		"  ":     strPtr("dropped"),
	})
	require.NoError(t, err)
	require.Equal(t, "acord25", mp.TemplateKey)
	require.Equal(t, ScopeHolder, mp.Scope)
	require.Equal(t, map[string]string{"name": "Field_A"}, mp.Roles)

	_, err = svc.Put(ctx, "acord25", "nobody", nil)
	require.ErrorIs(t, err, ErrInvalidScope)
	_, err = svc.Get(ctx, "acord25", "nobody", false)
	require.ErrorIs(t, err, ErrInvalidScope)
}

type failingRepo struct{}

func (failingRepo) Get(context.Context, string, Scope) (*Mapping, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) Put(context.Context, *Mapping) error { return errors.New("connection refused") }

func TestResolveNeverFailsOnStoreErrors(t *testing.T) {
	svc := NewService(failingRepo{})
	got := svc.Resolve(context.Background(), "acord25", ScopeHolder)
	require.Equal(t, "CertificateHolder_FullName_A", got["name"])
}

func TestApply(t *testing.T) {
	got := Apply(
		map[string]string{"name": "F_Name", "city": "F_City", "zip": ""},
		map[string]string{"name": "Jane Doe", "zip": "94105", "extra": "x"},
	)
	require.Equal(t, map[string]string{"F_Name": "Jane Doe"}, got)
}
