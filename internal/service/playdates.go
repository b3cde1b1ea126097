package service

import (
	"context"

	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"go.uber.org/zap"
)

func (s *Service) CreatePlaydate(ctx context.Context, creatorID string, form PlaydateForm) (*models.Playdate, error) {
	const op = "create playdate"

	if creatorID == "" {
		return nil, unauthorized(op, "", "sign in to create a playdate")
	}
	if err := form.validate(); err != nil {
		return nil, invalid(op, "", "%v", err)
	}
	start, end, err := form.Times(s.loc)
	if err != nil {
		return nil, invalid(op, "", "%v", err)
	}

	p := &models.Playdate{
		Title:           form.Title,
		Description:     form.Description,
		Location:        form.Location,
		Latitude:        form.Latitude,
		Longitude:       form.Longitude,
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: form.MaxParticipants,
		CreatorID:       creatorID,
		Status:          models.StatusUpcoming,
	}
	if err := s.store.CreatePlaydate(ctx, p); err != nil {
		return nil, storeFailure(op, "", err)
	}
	s.logger.Info("playdate created",
		zap.String("playdate_id", p.ID),
		zap.String("creator_id", creatorID))
	return p, nil
}

// ListUpcoming returns playdates that are neither cancelled nor over,
// soonest first.
func (s *Service) ListUpcoming(ctx context.Context) ([]models.Playdate, error) {
	now := s.now()
	list, err := s.store.ListPlaydates(ctx, store.PlaydateFilter{EndsAfter: &now, ExcludeCancelled: true})
	if err != nil {
		return nil, storeFailure("list playdates", "", err)
	}
	return list, nil
}

func (s *Service) ListByCreator(ctx context.Context, creatorID string) ([]models.Playdate, error) {
	list, err := s.store.ListPlaydates(ctx, store.PlaydateFilter{CreatorID: creatorID})
	if err != nil {
		return nil, storeFailure("list playdates", creatorID, err)
	}
	return list, nil
}

// Nearby ranks upcoming playdates within radiusKm of origin, nearest first.
// Playdates without coordinates are never part of the result.
func (s *Service) Nearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]geo.Ranked[models.Playdate], error) {
	const op = "nearby playdates"

	if radiusKm <= 0 {
		return nil, invalid(op, "", "radius must be positive")
	}
	if origin.Lat < -90 || origin.Lat > 90 || origin.Lon < -180 || origin.Lon > 180 {
		return nil, invalid(op, "", "coordinates out of range")
	}

	now := s.now()
	box := geo.BoundingBox(origin, radiusKm)
	candidates, err := s.store.ListPlaydates(ctx, store.PlaydateFilter{
		EndsAfter:        &now,
		ExcludeCancelled: true,
		Bounds:           &box,
	})
	if err != nil {
		return nil, storeFailure(op, "", err)
	}
	return geo.RankByDistance(origin, candidates, playdatePoint, radiusKm), nil
}

func playdatePoint(p models.Playdate) (geo.Point, bool) {
	lat, lon, ok := p.Coordinates()
	return geo.Point{Lat: lat, Lon: lon}, ok
}
