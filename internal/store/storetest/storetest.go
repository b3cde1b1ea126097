// Package storetest holds the behaviour every store.Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

func float(f float64) *float64 { return &f }

// Run exercises a fresh store from newStore in every subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("PlaydateLifecycle", func(t *testing.T) {
		testPlaydateLifecycle(t, newStore(t))
	})
	t.Run("ListPlaydatesFilters", func(t *testing.T) {
		testListPlaydates(t, newStore(t))
	})
	t.Run("Profiles", func(t *testing.T) {
		testProfiles(t, newStore(t))
	})
	t.Run("Children", func(t *testing.T) {
		testChildren(t, newStore(t))
	})
	t.Run("ParticipantVersioning", func(t *testing.T) {
		testParticipants(t, newStore(t))
	})
}

func testPlaydateLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	max := 5
	p := &models.Playdate{
		Title:           "Park",
		Location:        "Victoria Park",
		StartTime:       base,
		EndTime:         base.Add(2 * time.Hour),
		MaxParticipants: &max,
		CreatorID:       "creator",
		Status:          models.StatusUpcoming,
	}
	require.NoError(t, s.CreatePlaydate(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := s.GetPlaydate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Park", got.Title)
	assert.Equal(t, models.StatusUpcoming, got.Status)

	p.Title = "Park picnic"
	p.MaxParticipants = nil
	require.NoError(t, s.UpdatePlaydate(ctx, p))
	got, err = s.GetPlaydate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Park picnic", got.Title)
	assert.Nil(t, got.MaxParticipants)

	other := *p
	other.CreatorID = "intruder"
	other.Title = "Hijacked"
	assert.ErrorIs(t, s.UpdatePlaydate(ctx, &other), store.ErrNotFound)
	assert.ErrorIs(t, s.SetPlaydateStatus(ctx, p.ID, "intruder", models.StatusCancelled), store.ErrNotFound)

	require.NoError(t, s.SetPlaydateStatus(ctx, p.ID, "creator", models.StatusCancelled))
	require.NoError(t, s.SetPlaydateStatus(ctx, p.ID, "creator", models.StatusCancelled))
	got, err = s.GetPlaydate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "Park picnic", got.Title)

	_, err = s.GetPlaydate(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListPlaydates(t *testing.T, s store.Store) {
	ctx := context.Background()
	mk := func(title, creator string, start time.Time, lat, lon *float64, status models.PlaydateStatus) {
		p := &models.Playdate{
			Title: title, Location: "x", StartTime: start, EndTime: start.Add(time.Hour),
			CreatorID: creator, Latitude: lat, Longitude: lon, Status: status,
		}
		require.NoError(t, s.CreatePlaydate(ctx, p))
	}
	mk("later", "a", base.Add(48*time.Hour), float(51.5390), float(-0.1426), models.StatusUpcoming)
	mk("sooner", "b", base.Add(24*time.Hour), float(51.4826), float(-0.0077), models.StatusUpcoming)
	mk("past", "a", base.Add(-24*time.Hour), float(51.5), float(-0.12), models.StatusUpcoming)
	mk("cancelled", "a", base.Add(72*time.Hour), float(51.5), float(-0.12), models.StatusCancelled)
	mk("paris", "b", base.Add(96*time.Hour), float(48.8566), float(2.3522), models.StatusUpcoming)
	mk("nowhere", "b", base.Add(120*time.Hour), nil, nil, models.StatusUpcoming)

	titles := func(ps []models.Playdate) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Title)
		}
		return out
	}

	all, err := s.ListPlaydates(ctx, store.PlaydateFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"past", "sooner", "later", "cancelled", "paris", "nowhere"}, titles(all))

	now := base
	upcoming, err := s.ListPlaydates(ctx, store.PlaydateFilter{EndsAfter: &now, ExcludeCancelled: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later", "paris", "nowhere"}, titles(upcoming))

	mine, err := s.ListPlaydates(ctx, store.PlaydateFilter{CreatorID: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"past", "later", "cancelled"}, titles(mine))

	box := geo.BoundingBox(geo.Point{Lat: 51.5074, Lon: -0.1278}, 20)
	near, err := s.ListPlaydates(ctx, store.PlaydateFilter{Bounds: &box, EndsAfter: &now, ExcludeCancelled: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later"}, titles(near))
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := &models.ParentProfile{Base: models.Base{ID: "parent-1"}, ParentName: "Alex", Email: "alex@example.com"}
	require.NoError(t, s.SaveParentProfile(ctx, p))

	p2 := &models.ParentProfile{Base: models.Base{ID: "parent-1"}, ParentName: "Alex B", Location: "Leeds"}
	require.NoError(t, s.SaveParentProfile(ctx, p2))

	got, err := s.GetParentProfile(ctx, "parent-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex B", got.ParentName)
	assert.Equal(t, "Leeds", got.Location)

	require.NoError(t, s.SaveParentProfile(ctx, &models.ParentProfile{Base: models.Base{ID: "parent-2"}, ParentName: "Sam"}))
	list, err := s.ListParentProfiles(ctx, []string{"parent-1", "parent-2", "ghost"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := s.ListParentProfiles(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.GetParentProfile(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testChildren(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := &models.Child{ParentID: "p1", Name: "Ada", Age: 5, Interests: []models.Interest{{Name: "lego"}, {Name: "swings"}}}
	b := &models.Child{ParentID: "p1", Name: "Bo", Age: 7, Interests: []models.Interest{{Name: "lego"}}}
	c := &models.Child{ParentID: "p2", Name: "Cy", Age: 4}
	for _, ch := range []*models.Child{a, b, c} {
		require.NoError(t, s.CreateChild(ctx, ch))
		require.NotEmpty(t, ch.ID)
	}

	mine, err := s.ListChildrenByParent(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Ada", mine[0].Name)
	assert.ElementsMatch(t, []string{"lego", "swings"}, mine[0].InterestNames())
	assert.Equal(t, []string{"lego"}, mine[1].InterestNames())

	batch, err := s.ListChildren(ctx, []string{a.ID, c.ID, "ghost"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	assert.ErrorIs(t, s.DeleteChild(ctx, a.ID, "p2"), store.ErrNotFound)
	require.NoError(t, s.DeleteChild(ctx, a.ID, "p1"))
	mine, err = s.ListChildrenByParent(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func testParticipants(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := &models.ParticipantEntry{PlaydateID: "pd", ParentID: "p1", Status: models.ParticipantJoined}
	e.SetChildren([]string{"c1"})
	require.NoError(t, s.CreateParticipant(ctx, e))
	assert.Equal(t, 1, e.Version)

	dup := &models.ParticipantEntry{PlaydateID: "pd", ParentID: "p1", Status: models.ParticipantJoined}
	dup.SetChildren([]string{"c9"})
	assert.ErrorIs(t, s.CreateParticipant(ctx, dup), store.ErrConflict)

	found, err := s.FindParticipant(ctx, "pd", "p1")
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)

	found.SetChildren([]string{"c1", "c2"})
	require.NoError(t, s.UpdateParticipant(ctx, found))
	assert.Equal(t, 2, found.Version)

	stale := *e
	stale.SetChildren([]string{"c3"})
	assert.ErrorIs(t, s.UpdateParticipant(ctx, &stale), store.ErrConflict)
	assert.ErrorIs(t, s.DeleteParticipant(ctx, &stale), store.ErrConflict)

	got, err := s.GetParticipant(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, []string(got.ChildIDs))
	if assert.NotNil(t, got.ChildID) {
		assert.Equal(t, "c1", *got.ChildID)
	}

	other := &models.ParticipantEntry{PlaydateID: "pd", ParentID: "p2", Status: models.ParticipantJoined}
	other.SetChildren([]string{"c5"})
	require.NoError(t, s.CreateParticipant(ctx, other))

	list, err := s.ListParticipants(ctx, "pd")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, e.ID, list[0].ID)

	require.NoError(t, s.DeleteParticipant(ctx, got))
	_, err = s.GetParticipant(ctx, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FindParticipant(ctx, "pd", "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
