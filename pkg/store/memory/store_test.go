package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/store"
)

func TestStore_SaveLoadIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()

	rs := mapping.DefaultsFor(mapping.EntityContact)
	require.NoError(t, s.Save(ctx, rs))

	// mutating the caller's copy does not leak into the store
	rs.Rules = rs.Rules[:1]

	got, err := s.Load(ctx, mapping.EntityContact)
	require.NoError(t, err)
	assert.Equal(t, mapping.DefaultsFor(mapping.EntityContact).Flat(), got.Flat())

	got.Rules = nil
	again, err := s.Load(ctx, mapping.EntityContact)
	require.NoError(t, err)
	assert.NotZero(t, again.Len())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Load(ctx, mapping.EntityDeal)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, mapping.EntityDeal), store.ErrNotFound)
}

func TestStore_SaveReplacesOnlyThatEntity(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, mapping.DefaultsFor(mapping.EntityContact)))
	require.NoError(t, s.Save(ctx, mapping.DefaultsFor(mapping.EntityDeal)))

	replacement, err := mapping.FromFlat(mapping.EntityContact, mapping.FlatMapping{{Source: "email", Target: "properties.email"}})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, replacement))

	contact, err := s.Load(ctx, mapping.EntityContact)
	require.NoError(t, err)
	assert.Equal(t, 1, contact.Len())

	deal, err := s.Load(ctx, mapping.EntityDeal)
	require.NoError(t, err)
	assert.Equal(t, mapping.DefaultsFor(mapping.EntityDeal).Len(), deal.Len())

	entities, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mapping.EntityType{mapping.EntityContact, mapping.EntityDeal}, entities)
}

func TestStore_DeleteAndListeners(t *testing.T) {
	ctx := context.Background()
	s := New()

	var events []store.ChangeEvent
	s.AddChangeListener(func(e store.ChangeEvent) { events = append(events, e) })

	require.NoError(t, s.Save(ctx, mapping.DefaultsFor(mapping.EntityCompany)))
	require.NoError(t, s.Delete(ctx, mapping.EntityCompany))

	entities, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entities)

	require.Len(t, events, 2)
	assert.Equal(t, "save", events[0].Operation)
	assert.Equal(t, 2, events[0].Rules)
	assert.Equal(t, store.ChangeEvent{Operation: "delete", Entity: mapping.EntityCompany}, events[1])
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	assert.ErrorIs(t, s.Save(ctx, mapping.DefaultsFor(mapping.EntityContact)), context.Canceled)
	_, err := s.Load(ctx, mapping.EntityContact)
	assert.ErrorIs(t, err, context.Canceled)
}
