package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/certdesk/certdesk/internal/config"
	"github.com/certdesk/certdesk/internal/namedinsured"
	"github.com/certdesk/certdesk/internal/templates"
)

func TestNewWithoutBackends(t *testing.T) {
	cfg := &config.Config{Templates: config.TemplatesConfig{Dir: t.TempDir(), InlineBlob: true}}
	a := New(context.Background(), cfg)
	defer a.Close()

	require.False(t, a.Mongo)
	require.Nil(t, a.Redis)
	require.Nil(t, a.Objects)
	require.NotNil(t, a.Certificates)

	_, _, _, err := a.Templates.Resolve(context.Background(), "acord25")
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)

	caps := a.Templates.Capabilities()
	require.True(t, caps.InlineBlob)
	require.False(t, caps.ObjectStore)
}

func TestNamedInsuredSourceSelection(t *testing.T) {
	_, ok := namedInsuredSource(config.NamedInsuredConfig{}, nil).(namedinsured.None)
	require.True(t, ok)

	src := namedInsuredSource(config.NamedInsuredConfig{BaseURL: "http://crm.local"}, nil)
	_, ok = src.(*namedinsured.Client)
	require.True(t, ok)
}
