package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProfile(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SaveProfile(f.ctx, "p1", ProfileInput{ParentName: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.SaveProfile(f.ctx, "", ProfileInput{ParentName: "Pat"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	saved, err := f.svc.SaveProfile(f.ctx, "p1", ProfileInput{ParentName: " Pat ", Location: "Hackney"})
	require.NoError(t, err)
	assert.Equal(t, "Pat", saved.ParentName)

	got, err := f.svc.GetProfile(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hackney", got.Location)

	_, err = f.svc.GetProfile(f.ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureProfile(t *testing.T) {
	f := setup(t)

	p, err := f.svc.EnsureProfile(f.ctx, "p1", "Pat", "pat@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Pat", p.ParentName)

	_, err = f.svc.SaveProfile(f.ctx, "p1", ProfileInput{ParentName: "Patricia", Email: "pat@example.com"})
	require.NoError(t, err)

	p, err = f.svc.EnsureProfile(f.ctx, "p1", "Pat", "other@example.com", "https://img.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Patricia", p.ParentName)
	assert.Equal(t, "pat@example.com", p.Email)
	assert.Equal(t, "https://img.test/a.png", p.AvatarURL)
}

func TestChildren(t *testing.T) {
	f := setup(t)

	for _, in := range []ChildInput{
		{Name: "", Age: 3},
		{Name: "Ann", Age: -1},
		{Name: "Ann", Age: 18},
	} {
		_, err := f.svc.AddChild(f.ctx, "p1", in)
		assert.ErrorIs(t, err, ErrValidation)
	}
	_, err := f.svc.AddChild(f.ctx, "", ChildInput{Name: "Ann", Age: 3})
	assert.ErrorIs(t, err, ErrUnauthorized)

	c, err := f.svc.AddChild(f.ctx, "p1", ChildInput{Name: "Ann", Age: 4, Interests: []string{"Lego", "lego ", "football"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"lego", "football"}, c.InterestNames())
	_, err = f.svc.AddChild(f.ctx, "p2", ChildInput{Name: "Zed", Age: 0})
	require.NoError(t, err)

	mine, err := f.svc.ListChildren(f.ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ann", mine[0].Name)

	assert.ErrorIs(t, f.svc.DeleteChild(f.ctx, "p2", c.ID), ErrNotFound)
	require.NoError(t, f.svc.DeleteChild(f.ctx, "p1", c.ID))
	mine, err = f.svc.ListChildren(f.ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}
