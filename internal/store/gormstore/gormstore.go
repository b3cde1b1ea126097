// Package gormstore implements store.Store on gorm, backed by sqlite or postgres.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps gorm errors onto the store sentinels. Duplicate keys are
// only reported as such when the DB was opened with TranslateError.
func translate(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *Store) GetPlaydate(ctx context.Context, id string) (*models.Playdate, error) {
	var p models.Playdate
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get playdate %s", id)
	}
	return &p, nil
}

func (s *Store) ListPlaydates(ctx context.Context, f store.PlaydateFilter) ([]models.Playdate, error) {
	q := s.db.WithContext(ctx).Model(&models.Playdate{})
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.EndsAfter != nil {
		q = q.Where("end_time > ?", f.EndsAfter.UTC())
	}
	if f.ExcludeCancelled {
		q = q.Where("status <> ?", models.StatusCancelled)
	}
	if f.Bounds != nil {
		b := *f.Bounds
		q = q.Where("latitude IS NOT NULL AND longitude IS NOT NULL").
			Where("latitude BETWEEN ? AND ?", b.Bottom(), b.Top())
		west, east := geo.LongitudeRange(b)
		if geo.CrossesAntimeridian(b) {
			q = q.Where("(longitude >= ? OR longitude <= ?)", west, east)
		} else {
			q = q.Where("longitude BETWEEN ? AND ?", west, east)
		}
	}

	var out []models.Playdate
	if err := q.Order("start_time asc").Find(&out).Error; err != nil {
		return nil, translate(err, "list playdates")
	}
	return out, nil
}

func (s *Store) CreatePlaydate(ctx context.Context, p *models.Playdate) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate(err, "create playdate")
	}
	return nil
}

func (s *Store) UpdatePlaydate(ctx context.Context, p *models.Playdate) error {
	res := s.db.WithContext(ctx).Model(&models.Playdate{}).
		Where("id = ? AND creator_id = ?", p.ID, p.CreatorID).
		Updates(map[string]any{
			"title":            p.Title,
			"description":      p.Description,
			"location":         p.Location,
			"latitude":         p.Latitude,
			"longitude":        p.Longitude,
			"start_time":       p.StartTime.UTC(),
			"end_time":         p.EndTime.UTC(),
			"max_participants": p.MaxParticipants,
		})
	if res.Error != nil {
		return translate(res.Error, "update playdate %s", p.ID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update playdate %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) SetPlaydateStatus(ctx context.Context, id, creatorID string, status models.PlaydateStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Playdate{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "set playdate %s status", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set playdate %s status: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) GetParentProfile(ctx context.Context, id string) (*models.ParentProfile, error) {
	var p models.ParentProfile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get parent profile %s", id)
	}
	return &p, nil
}

func (s *Store) ListParentProfiles(ctx context.Context, ids []string) ([]models.ParentProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.ParentProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, translate(err, "list parent profiles")
	}
	return out, nil
}

func (s *Store) SaveParentProfile(ctx context.Context, p *models.ParentProfile) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error
	if err != nil {
		return translate(err, "save parent profile %s", p.ID)
	}
	return nil
}

func (s *Store) ListChildren(ctx context.Context, ids []string) ([]models.Child, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Child
	if err := s.db.WithContext(ctx).Preload("Interests").Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, translate(err, "list children")
	}
	return out, nil
}

func (s *Store) ListChildrenByParent(ctx context.Context, parentID string) ([]models.Child, error) {
	var out []models.Child
	err := s.db.WithContext(ctx).Preload("Interests").
		Where("parent_id = ?", parentID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "list children of %s", parentID)
	}
	return out, nil
}

func (s *Store) CreateChild(ctx context.Context, c *models.Child) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Interests are shared rows; resolve them by name so the join table
		// points at existing ids.
		resolved := make([]models.Interest, 0, len(c.Interests))
		for _, in := range c.Interests {
			var interest models.Interest
			if err := tx.Where(models.Interest{Name: in.Name}).FirstOrCreate(&interest).Error; err != nil {
				return err
			}
			resolved = append(resolved, interest)
		}
		c.Interests = resolved
		return tx.Create(c).Error
	})
	if err != nil {
		return translate(err, "create child")
	}
	return nil
}

func (s *Store) DeleteChild(ctx context.Context, id, parentID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.Where("id = ? AND parent_id = ?", id, parentID).First(&child).Error; err != nil {
			return err
		}
		if err := tx.Model(&child).Association("Interests").Clear(); err != nil {
			return err
		}
		return tx.Delete(&child).Error
	})
	if err != nil {
		return translate(err, "delete child %s", id)
	}
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, playdateID string) ([]models.ParticipantEntry, error) {
	var out []models.ParticipantEntry
	err := s.db.WithContext(ctx).
		Where("playdate_id = ?", playdateID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "list participants of %s", playdateID)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (s *Store) GetParticipant(ctx context.Context, id string) (*models.ParticipantEntry, error) {
	var e models.ParticipantEntry
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get participant %s", id)
	}
	e.Normalize()
	return &e, nil
}

func (s *Store) FindParticipant(ctx context.Context, playdateID, parentID string) (*models.ParticipantEntry, error) {
	var e models.ParticipantEntry
	err := s.db.WithContext(ctx).
		Where("playdate_id = ? AND parent_id = ?", playdateID, parentID).
		First(&e).Error
	if err != nil {
		return nil, translate(err, "find participant of %s in %s", parentID, playdateID)
	}
	e.Normalize()
	return &e, nil
}

func (s *Store) CreateParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	if e.Version == 0 {
		e.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return translate(err, "create participant")
	}
	return nil
}

func (s *Store) UpdateParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	res := s.db.WithContext(ctx).Model(&models.ParticipantEntry{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]any{
			"child_ids": e.ChildIDs,
			"child_id":  e.ChildID,
			"status":    e.Status,
			"version":   e.Version + 1,
		})
	if res.Error != nil {
		return translate(res.Error, "update participant %s", e.ID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update participant %s: %w", e.ID, store.ErrConflict)
	}
	e.Version++
	return nil
}

func (s *Store) DeleteParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Delete(&models.ParticipantEntry{})
	if res.Error != nil {
		return translate(res.Error, "delete participant %s", e.ID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete participant %s: %w", e.ID, store.ErrConflict)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
