package notifier

import (
	"context"
	"errors"

	"github.com/goplaynow/playdate-api/internal/models"
)

type Notifier interface {
	PlaydateJoined(ctx context.Context, playdate models.Playdate, parent models.ParentProfile, children []models.Child) error
	PlaydateCancelled(ctx context.Context, playdate models.Playdate, attendees []models.ParentProfile) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) PlaydateJoined(context.Context, models.Playdate, models.ParentProfile, []models.Child) error {
	return nil
}

func (Nop) PlaydateCancelled(context.Context, models.Playdate, []models.ParentProfile) error {
	return nil
}

// Multi sends every notification to all of its notifiers and joins their
// errors.
type Multi []Notifier

func (m Multi) PlaydateJoined(ctx context.Context, playdate models.Playdate, parent models.ParentProfile, children []models.Child) error {
	var errs []error
	for _, n := range m {
		if err := n.PlaydateJoined(ctx, playdate, parent, children); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PlaydateCancelled(ctx context.Context, playdate models.Playdate, attendees []models.ParentProfile) error {
	var errs []error
	for _, n := range m {
		if err := n.PlaydateCancelled(ctx, playdate, attendees); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func childNames(children []models.Child) []string {
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	return names
}

func parentName(p models.ParentProfile) string {
	if p.ParentName != "" {
		return p.ParentName
	}
	return "A parent"
}
