package models

import (
	"gorm.io/datatypes"
)

type ParticipantStatus string

// The participant table spells the cancelled state with one "l", unlike
// PlaydateStatus. Both spellings are persisted as-is.
const (
	ParticipantJoined   ParticipantStatus = "joined"
	ParticipantCanceled ParticipantStatus = "canceled"
)

type ParticipantEntry struct {
	Base
	PlaydateID string                      `json:"playdate_id" gorm:"size:36;not null;uniqueIndex:idx_playdate_parent"`
	ParentID   string                      `json:"parent_id" gorm:"size:36;not null;uniqueIndex:idx_playdate_parent"`
	ChildIDs   datatypes.JSONSlice[string] `json:"child_ids" gorm:"not null"`
	// ChildID mirrors ChildIDs[0] for readers of the single-child schema.
	ChildID *string           `json:"child_id,omitempty" gorm:"size:36"`
	Status  ParticipantStatus `json:"status" gorm:"size:16;not null;default:joined"`
	Version int               `json:"version" gorm:"not null;default:1"`
}

// Normalize folds the legacy single child_id into ChildIDs and drops
// duplicate identifiers. Every store calls it right after a fetch.
func (e *ParticipantEntry) Normalize() {
	ids := []string(e.ChildIDs)
	if len(ids) == 0 && e.ChildID != nil && *e.ChildID != "" {
		ids = []string{*e.ChildID}
	}
	e.ChildIDs = datatypes.JSONSlice[string](Union(nil, ids))
	if e.Status == "" {
		e.Status = ParticipantJoined
	}
}

// SetChildren replaces the child list and keeps the legacy column in step.
func (e *ParticipantEntry) SetChildren(ids []string) {
	e.ChildIDs = datatypes.JSONSlice[string](ids)
	if len(ids) == 0 {
		e.ChildID = nil
		return
	}
	first := ids[0]
	e.ChildID = &first
}

func (e ParticipantEntry) HasChild(id string) bool {
	for _, c := range e.ChildIDs {
		if c == id {
			return true
		}
	}
	return false
}

func (e ParticipantEntry) IsCanceled() bool {
	return e.Status == ParticipantCanceled
}

// Union appends the members of add missing from base, preserving first-seen
// order. Empty identifiers are skipped.
func Union(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
