package agency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/certdesk/certdesk/internal/validation"
)

func TestPutUpserts(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	_, err := svc.Get(ctx, "acc1")
	require.ErrorIs(t, err, ErrNotFound)

	s, err := svc.Put(ctx, "acc1", Settings{Name: " Best Agency ", State: "tx", ProducerEmail: "pat@agency.com"})
	require.NoError(t, err)
	require.Equal(t, "Best Agency", s.Name)
	require.Equal(t, "TX", s.State)
	require.Equal(t, "acc1", s.AccountID)

	_, err = svc.Put(ctx, "acc1", Settings{Name: "Renamed"})
	require.NoError(t, err)
	got, err := svc.Get(ctx, "acc1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Roles()["name"])
	require.Equal(t, "", got.Roles()["producer_email"])
}

func TestPutValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Put(context.Background(), "acc1", Settings{State: "QQ", Email: "x"})
	var verrs validation.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	_, err = svc.Get(context.Background(), "acc1")
	require.ErrorIs(t, err, ErrNotFound)
}
