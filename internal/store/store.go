// Package store defines the row store the playdate service reads and writes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/paulmach/orb"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write loses to a concurrent
	// one, or a unique constraint rejects an insert.
	ErrConflict = errors.New("record was modified concurrently")
)

type PlaydateFilter struct {
	CreatorID        string
	EndsAfter        *time.Time
	ExcludeCancelled bool
	// Bounds limits results to playdates with coordinates inside the box.
	Bounds *orb.Bound
}

// Store is implemented by gormstore (SQL) and memstore (tests, local dev).
// Participant entries come back normalized; see models.ParticipantEntry.Normalize.
type Store interface {
	GetPlaydate(ctx context.Context, id string) (*models.Playdate, error)
	ListPlaydates(ctx context.Context, filter PlaydateFilter) ([]models.Playdate, error)
	CreatePlaydate(ctx context.Context, p *models.Playdate) error
	// UpdatePlaydate writes the editable fields of p to the row matching both
	// p.ID and p.CreatorID.
	UpdatePlaydate(ctx context.Context, p *models.Playdate) error
	SetPlaydateStatus(ctx context.Context, id, creatorID string, status models.PlaydateStatus) error

	GetParentProfile(ctx context.Context, id string) (*models.ParentProfile, error)
	ListParentProfiles(ctx context.Context, ids []string) ([]models.ParentProfile, error)
	SaveParentProfile(ctx context.Context, p *models.ParentProfile) error

	ListChildren(ctx context.Context, ids []string) ([]models.Child, error)
	ListChildrenByParent(ctx context.Context, parentID string) ([]models.Child, error)
	CreateChild(ctx context.Context, c *models.Child) error
	DeleteChild(ctx context.Context, id, parentID string) error

	ListParticipants(ctx context.Context, playdateID string) ([]models.ParticipantEntry, error)
	GetParticipant(ctx context.Context, id string) (*models.ParticipantEntry, error)
	FindParticipant(ctx context.Context, playdateID, parentID string) (*models.ParticipantEntry, error)
	CreateParticipant(ctx context.Context, e *models.ParticipantEntry) error
	// UpdateParticipant and DeleteParticipant only apply when the stored
	// version still equals e.Version. UpdateParticipant bumps e.Version.
	UpdateParticipant(ctx context.Context, e *models.ParticipantEntry) error
	DeleteParticipant(ctx context.Context, e *models.ParticipantEntry) error

	Close() error
}
