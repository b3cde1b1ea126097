package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"github.com/goplaynow/playdate-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestMemStore_Fail(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.Fail("GetPlaydate", boom)

	_, err := s.GetPlaydate(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	s.Fail("GetPlaydate", nil)
	_, err = s.GetPlaydate(context.Background(), "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemStore_LegacyRowNormalized(t *testing.T) {
	s := New()
	legacy := "c1"
	s.PutParticipant(models.ParticipantEntry{Base: models.Base{ID: "e1"}, PlaydateID: "pd", ParentID: "p", ChildID: &legacy})

	got, err := s.GetParticipant(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, []string(got.ChildIDs))
	assert.Equal(t, models.ParticipantJoined, got.Status)
}

func TestMemStore_Touch(t *testing.T) {
	s := New()
	ctx := context.Background()
	e := &models.ParticipantEntry{PlaydateID: "pd", ParentID: "p"}
	e.SetChildren([]string{"c1"})
	require.NoError(t, s.CreateParticipant(ctx, e))

	s.Touch(e.ID)
	assert.ErrorIs(t, s.UpdateParticipant(ctx, e), store.ErrConflict)
}

func TestMemStore_CopiesRows(t *testing.T) {
	s := New()
	ctx := context.Background()
	e := &models.ParticipantEntry{PlaydateID: "pd", ParentID: "p"}
	e.SetChildren([]string{"c1"})
	require.NoError(t, s.CreateParticipant(ctx, e))

	e.ChildIDs[0] = "mutated"
	got, err := s.GetParticipant(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ChildIDs[0])
}
