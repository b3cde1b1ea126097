package service

import (
	"context"
	"errors"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"go.uber.org/zap"
)

// Join adds the selected children to the parent's entry for the playdate,
// creating the entry on first join. Re-joining with an overlapping selection
// never duplicates a child.
func (s *Service) Join(ctx context.Context, playdateID, parentID string, childIDs []string) (*RosterView, error) {
	const op = "join playdate"

	if parentID == "" {
		return nil, unauthorized(op, playdateID, "sign in to join a playdate")
	}
	selected := models.Union(nil, childIDs)
	if len(selected) == 0 {
		return nil, invalid(op, playdateID, "select at least one child")
	}

	playdate, err := s.store.GetPlaydate(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	if playdate.IsCancelled() {
		return nil, invalid(op, playdateID, "playdate is cancelled")
	}

	children, err := s.store.ListChildren(ctx, selected)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	owned := make(map[string]bool, len(children))
	for _, c := range children {
		if c.ParentID == parentID {
			owned[c.ID] = true
		}
	}
	for _, id := range selected {
		if !owned[id] {
			return nil, invalid(op, playdateID, "child %s is not one of your children", id)
		}
	}

	entry, err := s.store.FindParticipant(ctx, playdateID, parentID)
	switch {
	case err == nil:
		entry.SetChildren(models.Union(entry.ChildIDs, selected))
		entry.Status = models.ParticipantJoined
		if err := s.store.UpdateParticipant(ctx, entry); err != nil {
			return nil, storeFailure(op, playdateID, err)
		}
	case errors.Is(err, store.ErrNotFound):
		entry = &models.ParticipantEntry{
			PlaydateID: playdateID,
			ParentID:   parentID,
			Status:     models.ParticipantJoined,
		}
		entry.SetChildren(selected)
		if err := s.store.CreateParticipant(ctx, entry); err != nil {
			return nil, storeFailure(op, playdateID, err)
		}
	default:
		return nil, storeFailure(op, playdateID, err)
	}

	s.logger.Info("playdate joined",
		zap.String("playdate_id", playdateID),
		zap.String("parent_id", parentID),
		zap.String("entry_id", entry.ID),
		zap.Strings("child_ids", entry.ChildIDs))
	s.notifyJoined(ctx, *playdate, parentID, children)

	return s.refresh(ctx, op, *playdate, parentID), nil
}

// Leave withdraws the parent's whole entry from the playdate.
func (s *Service) Leave(ctx context.Context, playdateID, parentID string) (*RosterView, error) {
	const op = "leave playdate"

	if parentID == "" {
		return nil, unauthorized(op, playdateID, "sign in to leave a playdate")
	}
	playdate, err := s.store.GetPlaydate(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	entry, err := s.store.FindParticipant(ctx, playdateID, parentID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	if err := s.store.DeleteParticipant(ctx, entry); err != nil {
		return nil, storeFailure(op, playdateID, err)
	}

	s.logger.Info("playdate left",
		zap.String("playdate_id", playdateID),
		zap.String("parent_id", parentID))
	return s.refresh(ctx, op, *playdate, parentID), nil
}

// Update rewrites the editable fields of a playdate. Only its creator may
// call it, and a cancelled playdate cannot be edited.
func (s *Service) Update(ctx context.Context, playdateID, userID string, form PlaydateForm) (*RosterView, error) {
	const op = "update playdate"

	playdate, err := s.store.GetPlaydate(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	if userID == "" || userID != playdate.CreatorID {
		return nil, unauthorized(op, playdateID, "only the creator can edit this playdate")
	}
	if playdate.IsCancelled() {
		return nil, invalid(op, playdateID, "playdate is cancelled")
	}
	if err := form.validate(); err != nil {
		return nil, invalid(op, playdateID, "%v", err)
	}
	start, end, err := form.Times(s.loc)
	if err != nil {
		return nil, invalid(op, playdateID, "%v", err)
	}

	playdate.Title = form.Title
	playdate.Description = form.Description
	playdate.Location = form.Location
	playdate.Latitude = form.Latitude
	playdate.Longitude = form.Longitude
	playdate.StartTime = start
	playdate.EndTime = end
	playdate.MaxParticipants = form.MaxParticipants
	if err := s.store.UpdatePlaydate(ctx, playdate); err != nil {
		return nil, storeFailure(op, playdateID, err)
	}

	s.logger.Info("playdate updated", zap.String("playdate_id", playdateID))
	return s.refresh(ctx, op, *playdate, userID), nil
}

// Cancel marks the playdate cancelled. The write itself is also filtered on
// creator_id, so it cannot touch another parent's playdate. Cancelling twice
// is not an error.
func (s *Service) Cancel(ctx context.Context, playdateID, userID string) (*RosterView, error) {
	const op = "cancel playdate"

	playdate, err := s.store.GetPlaydate(ctx, playdateID)
	if err != nil {
		return nil, storeFailure(op, playdateID, err)
	}
	if userID == "" || userID != playdate.CreatorID {
		return nil, unauthorized(op, playdateID, "only the creator can cancel this playdate")
	}
	if err := s.store.SetPlaydateStatus(ctx, playdateID, userID, models.StatusCancelled); err != nil {
		return nil, storeFailure(op, playdateID, err)
	}

	playdate.Status = models.StatusCancelled

	s.logger.Info("playdate cancelled", zap.String("playdate_id", playdateID))
	view := s.refresh(ctx, op, *playdate, userID)
	if view.Stale {
		s.logger.Warn("cancellation notice skipped, attendees unknown",
			zap.String("playdate_id", playdateID))
		return view, nil
	}
	s.notifyCancelled(ctx, view)
	return view, nil
}

// RemoveChild takes one child off a participant entry. The entry's own
// parent and the playdate's creator may do this; nobody else. An entry left
// without children is deleted.
func (s *Service) RemoveChild(ctx context.Context, entryID, childID, userID string) (*RosterView, error) {
	const op = "remove child"

	entry, err := s.store.GetParticipant(ctx, entryID)
	if err != nil {
		return nil, storeFailure(op, entryID, err)
	}
	playdate, err := s.store.GetPlaydate(ctx, entry.PlaydateID)
	if err != nil {
		return nil, storeFailure(op, entryID, err)
	}
	if userID == "" || (userID != entry.ParentID && userID != playdate.CreatorID) {
		return nil, unauthorized(op, entryID, "only the child's parent or the host can remove a child")
	}
	if !entry.HasChild(childID) {
		return nil, invalid(op, entryID, "child %s is not part of this entry", childID)
	}

	remaining := make([]string, 0, len(entry.ChildIDs))
	for _, id := range entry.ChildIDs {
		if id != childID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		err = s.store.DeleteParticipant(ctx, entry)
	} else {
		entry.SetChildren(remaining)
		err = s.store.UpdateParticipant(ctx, entry)
	}
	if err != nil {
		return nil, storeFailure(op, entryID, err)
	}

	s.logger.Info("child removed from playdate",
		zap.String("playdate_id", entry.PlaydateID),
		zap.String("entry_id", entryID),
		zap.String("child_id", childID),
		zap.String("removed_by", userID),
		zap.Bool("entry_deleted", len(remaining) == 0))
	return s.refresh(ctx, op, *playdate, userID), nil
}

// refresh reloads the roster after a committed write. A failed reload does
// not undo the write: it is logged and the caller gets a view holding only
// the playdate, with Stale set.
func (s *Service) refresh(ctx context.Context, op string, playdate models.Playdate, userID string) *RosterView {
	view, err := s.LoadRoster(ctx, playdate.ID, userID)
	if err == nil {
		return view
	}
	s.logger.Warn("roster reload failed after write",
		zap.String("op", op),
		zap.String("playdate_id", playdate.ID),
		zap.Error(err))

	now := s.now()
	return &RosterView{
		Playdate:    playdate,
		Members:     map[string]RosterMember{},
		Form:        FormFromPlaydate(playdate, s.loc),
		IsCreator:   userID != "" && userID == playdate.CreatorID,
		IsCanceled:  playdate.IsCancelled(),
		IsCompleted: playdate.IsCompleted(now),
		Status:      playdate.DisplayStatus(now),
		Stale:       true,
	}
}

func (s *Service) notifyJoined(ctx context.Context, playdate models.Playdate, parentID string, children []models.Child) {
	parent, err := s.store.GetParentProfile(ctx, parentID)
	if err != nil {
		parent = &models.ParentProfile{Base: models.Base{ID: parentID}}
	}
	if err := s.notifier.PlaydateJoined(ctx, playdate, *parent, children); err != nil {
		s.logger.Warn("failed to send join notification",
			zap.String("playdate_id", playdate.ID), zap.Error(err))
	}
}

func (s *Service) notifyCancelled(ctx context.Context, view *RosterView) {
	var parentIDs []string
	for _, m := range view.MemberList() {
		parentIDs = models.Union(parentIDs, []string{m.Child.ParentID})
	}
	// The roster only carries public fields; the notice needs contact details.
	attendees, err := s.store.ListParentProfiles(ctx, parentIDs)
	if err != nil {
		s.logger.Warn("failed to load attendees for cancellation notice",
			zap.String("playdate_id", view.Playdate.ID), zap.Error(err))
		return
	}
	if err := s.notifier.PlaydateCancelled(ctx, view.Playdate, attendees); err != nil {
		s.logger.Warn("failed to send cancellation notification",
			zap.String("playdate_id", view.Playdate.ID), zap.Error(err))
	}
}
