package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestParticipantEntry_Normalize(t *testing.T) {
	legacy := "child-1"

	t.Run("LegacySingleChild", func(t *testing.T) {
		e := ParticipantEntry{ChildID: &legacy}
		e.Normalize()
		assert.Equal(t, []string{"child-1"}, []string(e.ChildIDs))
		assert.Equal(t, ParticipantJoined, e.Status)
	})

	t.Run("ListWinsOverLegacy", func(t *testing.T) {
		e := ParticipantEntry{ChildIDs: datatypes.JSONSlice[string]{"a", "b"}, ChildID: &legacy}
		e.Normalize()
		assert.Equal(t, []string{"a", "b"}, []string(e.ChildIDs))
	})

	t.Run("Dedupes", func(t *testing.T) {
		e := ParticipantEntry{ChildIDs: datatypes.JSONSlice[string]{"a", "b", "a", ""}, Status: ParticipantCanceled}
		e.Normalize()
		assert.Equal(t, []string{"a", "b"}, []string(e.ChildIDs))
		assert.True(t, e.IsCanceled())
	})
}

func TestParticipantEntry_SetChildren(t *testing.T) {
	var e ParticipantEntry
	e.SetChildren([]string{"x", "y"})
	if assert.NotNil(t, e.ChildID) {
		assert.Equal(t, "x", *e.ChildID)
	}
	assert.True(t, e.HasChild("y"))

	e.SetChildren(nil)
	assert.Nil(t, e.ChildID)
	assert.False(t, e.HasChild("x"))
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"c1", "c2"}, Union([]string{"c1"}, []string{"c1", "c2"}))
	assert.Equal(t, []string{"c2", "c1"}, Union([]string{"c2"}, []string{"c1", "c2"}))
	assert.Empty(t, Union(nil, nil))
}

func TestPlaydate_DisplayStatus(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	future := Playdate{StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), Status: StatusUpcoming}
	past := Playdate{StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), Status: StatusUpcoming}
	cancelledPast := past
	cancelledPast.Status = StatusCancelled

	assert.Equal(t, StatusUpcoming, future.DisplayStatus(now))
	assert.Equal(t, StatusCompleted, past.DisplayStatus(now))
	assert.Equal(t, StatusCancelled, cancelledPast.DisplayStatus(now))
	assert.True(t, cancelledPast.IsCompleted(now))
}

func TestPlaydate_Coordinates(t *testing.T) {
	lat := 51.5
	p := Playdate{Latitude: &lat}
	_, _, ok := p.Coordinates()
	assert.False(t, ok)

	lon := -0.12
	p.Longitude = &lon
	gotLat, gotLon, ok := p.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 51.5, gotLat)
	assert.Equal(t, -0.12, gotLon)
}

func TestParentProfile_Public(t *testing.T) {
	p := ParentProfile{
		Base:       Base{ID: "bob"},
		ParentName: "Bob",
		Location:   "Hackney",
		Email:      "bob@home.example",
		Phone:      "+44 7700 900123",
		AvatarURL:  "https://example.com/bob.png",
	}
	assert.Equal(t, &PublicParent{
		ID:         "bob",
		ParentName: "Bob",
		Location:   "Hackney",
		AvatarURL:  "https://example.com/bob.png",
	}, p.Public())
}
