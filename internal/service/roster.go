package service

import (
	"context"
	"errors"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"go.uber.org/zap"
)

// RosterMember is one child attending through one participant entry.
type RosterMember struct {
	Key                string               `json:"key"`
	ParticipantEntryID string               `json:"participant_entry_id"`
	Child              models.Child         `json:"child"`
	Parent             *models.PublicParent `json:"parent,omitempty"`
}

// MemberKey identifies a (participant entry, child) pair.
func MemberKey(entryID, childID string) string {
	return entryID + "_" + childID
}

type RosterView struct {
	Playdate models.Playdate          `json:"playdate"`
	Creator  *models.PublicParent     `json:"creator,omitempty"`
	Entries  []models.ParticipantEntry `json:"entries"`
	// Members is keyed by MemberKey; Order lists the keys entry by entry.
	Members    map[string]RosterMember `json:"members"`
	Order      []string                `json:"order"`
	MyChildren []models.Child          `json:"my_children"`
	Form       PlaydateForm            `json:"form"`

	IsCreator   bool                  `json:"is_creator"`
	IsCanceled  bool                  `json:"is_canceled"`
	IsCompleted bool                  `json:"is_completed"`
	Status      models.PlaydateStatus `json:"status"`
	// SpotsLeft is advisory; joins are never refused on capacity.
	SpotsLeft *int `json:"spots_left,omitempty"`
	// Stale means a write went through but the roster could not be
	// reloaded; only the playdate and derived flags are filled in.
	Stale bool `json:"stale,omitempty"`
}

func (v *RosterView) MemberList() []RosterMember {
	out := make([]RosterMember, 0, len(v.Order))
	for _, k := range v.Order {
		out = append(out, v.Members[k])
	}
	return out
}

// LoadRoster resolves who is coming to a playdate with which children.
// requestingUserID may be empty for anonymous reads. Any fetch failure aborts
// the whole load.
func (s *Service) LoadRoster(ctx context.Context, playdateID, requestingUserID string) (*RosterView, error) {
	const op = "load roster"

	playdate, err := s.store.GetPlaydate(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}

	creator, err := s.store.GetParentProfile(ctx, playdate.CreatorID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, storeFailure(op, playdateID, err)
		}
		creator = nil
	}
	view := &RosterView{Playdate: *playdate}
	if creator != nil {
		view.Creator = creator.Public()
	}

	entries, err := s.store.ListParticipants(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}

	// Two batched hops: entries -> children -> parents.
	var childIDs []string
	for _, e := range entries {
		childIDs = models.Union(childIDs, e.ChildIDs)
	}
	children, err := s.store.ListChildren(ctx, childIDs)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	childByID := make(map[string]models.Child, len(children))
	var parentIDs []string
	for _, c := range children {
		childByID[c.ID] = c
		parentIDs = models.Union(parentIDs, []string{c.ParentID})
	}
	parents, err := s.store.ListParentProfiles(ctx, parentIDs)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	parentByID := make(map[string]models.ParentProfile, len(parents))
	for _, p := range parents {
		parentByID[p.ID] = p
	}

	view.Entries = entries
	view.Members = make(map[string]RosterMember)
	view.Form = FormFromPlaydate(*playdate, s.loc)
	for _, e := range entries {
		// Withdrawn entries stay in Entries but bring nobody.
		if e.IsCanceled() {
			continue
		}
		for _, childID := range e.ChildIDs {
			child, ok := childByID[childID]
			if !ok {
				s.logger.Debug("roster skips missing child",
					zap.String("playdate_id", playdateID),
					zap.String("entry_id", e.ID),
					zap.String("child_id", childID))
				continue
			}
			m := RosterMember{
				Key:                MemberKey(e.ID, childID),
				ParticipantEntryID: e.ID,
				Child:              child,
			}
			if p, ok := parentByID[child.ParentID]; ok {
				m.Parent = p.Public()
			}
			view.Members[m.Key] = m
			view.Order = append(view.Order, m.Key)
		}
	}

	if requestingUserID != "" {
		mine, err := s.store.ListChildrenByParent(ctx, requestingUserID)
		if err != nil {
			return nil, storeFailure(op, playdateID, err)
		}
		view.MyChildren = mine
	}

	now := s.now()
	view.IsCreator = requestingUserID != "" && requestingUserID == playdate.CreatorID
	view.IsCanceled = playdate.IsCancelled()
	view.IsCompleted = playdate.IsCompleted(now)
	view.Status = playdate.DisplayStatus(now)
	if playdate.MaxParticipants != nil {
		left := *playdate.MaxParticipants - len(view.Order)
		if left < 0 {
			left = 0
		}
		view.SpotsLeft = &left
	}
	return view, nil
}
