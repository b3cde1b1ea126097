package service

import (
	"context"
	"errors"
	"strings"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
)

const maxChildAge = 17

type ProfileInput struct {
	ParentName string `json:"parent_name" doc:"Display name" required:"true"`
	Location   string `json:"location,omitempty" doc:"Home area"`
	Email      string `json:"email,omitempty" doc:"Contact email"`
	Phone      string `json:"phone,omitempty" doc:"Contact phone"`
	AvatarURL  string `json:"avatar_url,omitempty" doc:"Avatar image URL"`
}

type ChildInput struct {
	Name      string   `json:"name" doc:"Child's first name" required:"true"`
	Age       int      `json:"age" doc:"Age in years"`
	Bio       string   `json:"bio,omitempty" doc:"Short bio"`
	Interests []string `json:"interests,omitempty" doc:"Interests, e.g. lego, football"`
}

func (s *Service) GetProfile(ctx context.Context, parentID string) (*models.ParentProfile, error) {
	p, err := s.store.GetParentProfile(ctx, parentID)
	if err != nil {
		return nil, storeFailure("get profile", parentID, err)
	}
	return p, nil
}

func (s *Service) SaveProfile(ctx context.Context, parentID string, in ProfileInput) (*models.ParentProfile, error) {
	const op = "save profile"

	if parentID == "" {
		return nil, unauthorized(op, "", "sign in to edit your profile")
	}
	if strings.TrimSpace(in.ParentName) == "" {
		return nil, invalid(op, parentID, "parent name is required")
	}
	p := &models.ParentProfile{
		Base:       models.Base{ID: parentID},
		ParentName: strings.TrimSpace(in.ParentName),
		Location:   in.Location,
		Email:      in.Email,
		Phone:      in.Phone,
		AvatarURL:  in.AvatarURL,
	}
	if err := s.store.SaveParentProfile(ctx, p); err != nil {
		return nil, storeFailure(op, parentID, err)
	}
	return p, nil
}

// EnsureProfile creates a profile for a newly signed-in parent from the
// identity provider's claims. Existing profiles are left as the parent
// edited them, except that missing contact details are filled in.
func (s *Service) EnsureProfile(ctx context.Context, parentID, name, email, avatarURL string) (*models.ParentProfile, error) {
	const op = "ensure profile"

	p, err := s.store.GetParentProfile(ctx, parentID)
	switch {
	case err == nil:
		if p.Email != "" && p.AvatarURL != "" {
			return p, nil
		}
		if p.Email == "" {
			p.Email = email
		}
		if p.AvatarURL == "" {
			p.AvatarURL = avatarURL
		}
	case errors.Is(err, store.ErrNotFound):
		p = &models.ParentProfile{
			Base:       models.Base{ID: parentID},
			ParentName: name,
			Email:      email,
			AvatarURL:  avatarURL,
		}
	default:
		return nil, storeFailure(op, parentID, err)
	}
	if err := s.store.SaveParentProfile(ctx, p); err != nil {
		return nil, storeFailure(op, parentID, err)
	}
	return p, nil
}

func (s *Service) AddChild(ctx context.Context, parentID string, in ChildInput) (*models.Child, error) {
	const op = "add child"

	if parentID == "" {
		return nil, unauthorized(op, "", "sign in to add a child")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid(op, parentID, "name is required")
	}
	if in.Age < 0 || in.Age > maxChildAge {
		return nil, invalid(op, parentID, "age must be between 0 and %d", maxChildAge)
	}

	var interests []models.Interest
	for _, name := range models.Union(nil, normalizeInterests(in.Interests)) {
		interests = append(interests, models.Interest{Name: name})
	}
	c := &models.Child{
		ParentID:  parentID,
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		Bio:       in.Bio,
		Interests: interests,
	}
	if err := s.store.CreateChild(ctx, c); err != nil {
		return nil, storeFailure(op, parentID, err)
	}
	return c, nil
}

func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(i)))
	}
	return out
}

func (s *Service) ListChildren(ctx context.Context, parentID string) ([]models.Child, error) {
	children, err := s.store.ListChildrenByParent(ctx, parentID)
	if err != nil {
		return nil, storeFailure("list children", parentID, err)
	}
	return children, nil
}

// DeleteChild removes one of the parent's own children. Entries that still
// list the child keep the id; the roster skips children it cannot resolve.
func (s *Service) DeleteChild(ctx context.Context, parentID, childID string) error {
	if err := s.store.DeleteChild(ctx, childID, parentID); err != nil {
		return storeFailure("delete child", childID, err)
	}
	return nil
}
