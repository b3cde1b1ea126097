package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goplaynow/playdate-api/internal/database"
	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"github.com/goplaynow/playdate-api/internal/store/gormstore"
	"github.com/goplaynow/playdate-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func (f *fixture) placed(t *testing.T, title string, lat, lon *float64) string {
	t.Helper()
	in := form("2030-05-04", "14:00", "16:00")
	in.Title = title
	in.Latitude, in.Longitude = lat, lon
	p, err := f.svc.CreatePlaydate(f.ctx, "host", in)
	require.NoError(t, err)
	return p.ID
}

func TestCreatePlaydate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PlaydateForm)
	}{
		{"missing title", func(f *PlaydateForm) { f.Title = " " }},
		{"missing location", func(f *PlaydateForm) { f.Location = "" }},
		{"zero capacity", func(f *PlaydateForm) { f.MaxParticipants = ptr(0) }},
		{"latitude without longitude", func(f *PlaydateForm) { f.Latitude = ptr(51.5) }},
		{"latitude out of range", func(f *PlaydateForm) { f.Latitude, f.Longitude = ptr(91.0), ptr(0.0) }},
		{"end equals start", func(f *PlaydateForm) { f.EndTime = f.StartTime }},
		{"bad date", func(f *PlaydateForm) { f.Date = "tomorrow" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			in := form("2030-05-04", "14:00", "16:00")
			tt.modify(&in)
			_, err := f.svc.CreatePlaydate(f.ctx, "host", in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	f := setup(t)
	_, err := f.svc.CreatePlaydate(f.ctx, "", form("2030-05-04", "14:00", "16:00"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreatePlaydate(t *testing.T) {
	f := setup(t)
	p, err := f.svc.CreatePlaydate(f.ctx, "host", form("2030-05-04", "14:00", "16:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.StatusUpcoming, p.Status)
	assert.Equal(t, "host", p.CreatorID)

	f.store.Fail("CreatePlaydate", errors.New("disk full"))
	_, err = f.svc.CreatePlaydate(f.ctx, "host", form("2030-05-04", "14:00", "16:00"))
	assert.ErrorIs(t, err, ErrStore)
}

func TestNearby(t *testing.T) {
	f := setup(t)
	greenwich := f.placed(t, "Greenwich", ptr(51.4769), ptr(-0.0005))
	richmond := f.placed(t, "Richmond", ptr(51.4613), ptr(-0.3037))
	f.placed(t, "Brighton", ptr(50.8225), ptr(-0.1372))
	f.placed(t, "Somewhere", nil, nil)
	cancelled := f.placed(t, "Hyde Park", ptr(51.5073), ptr(-0.1657))
	_, err := f.svc.Cancel(f.ctx, cancelled, "host")
	require.NoError(t, err)

	london := geo.Point{Lat: 51.5074, Lon: -0.1278}
	ranked, err := f.svc.Nearby(f.ctx, london, 25)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, greenwich, ranked[0].Item.ID)
	assert.Equal(t, richmond, ranked[1].Item.ID)
	assert.InDelta(t, 9.0, ranked[0].DistanceKm, 1.5)
	assert.LessOrEqual(t, ranked[0].DistanceKm, ranked[1].DistanceKm)

	ranked, err = f.svc.Nearby(f.ctx, london, 100)
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
	for _, r := range ranked {
		assert.LessOrEqual(t, r.DistanceKm, 100.0)
	}
}

func TestNearby_Antimeridian(t *testing.T) {
	stores := map[string]func(t *testing.T) store.Store{
		"memstore": func(t *testing.T) store.Store { return memstore.New() },
		"gormstore": func(t *testing.T) store.Store {
			db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(nil))
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			sqlDB.SetMaxOpenConns(1)
			require.NoError(t, database.Migrate(db))
			return gormstore.New(db)
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := New(open(t), zap.NewNop(), WithClock(func() time.Time { return testNow }))
			create := func(title string, lat, lon float64) string {
				in := form("2030-05-04", "14:00", "16:00")
				in.Title = title
				in.Latitude, in.Longitude = ptr(lat), ptr(lon)
				p, err := svc.CreatePlaydate(ctx, "host", in)
				require.NoError(t, err)
				return p.ID
			}
			// Fiji straddles 180 degrees.
			here := create("Taveuni", -17, 179.9)
			east := create("Across the line", -17, -179.9)
			create("Suva", -18.1416, 178.4419)

			ranked, err := svc.Nearby(ctx, geo.Point{Lat: -17, Lon: 179.9}, 50)
			require.NoError(t, err)
			require.Len(t, ranked, 2)
			assert.Equal(t, here, ranked[0].Item.ID)
			assert.InDelta(t, 0, ranked[0].DistanceKm, 0.01)
			assert.Equal(t, east, ranked[1].Item.ID)
			assert.InDelta(t, 21.3, ranked[1].DistanceKm, 0.5)

			ranked, err = svc.Nearby(ctx, geo.Point{Lat: -17, Lon: -179.95}, 300)
			require.NoError(t, err)
			assert.Len(t, ranked, 3)
		})
	}
}

func TestNearby_Validation(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Nearby(f.ctx, geo.Point{Lat: 51, Lon: 0}, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Nearby(f.ctx, geo.Point{Lat: 95, Lon: 0}, 10)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Nearby(f.ctx, geo.Point{Lat: 0, Lon: 181}, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListByCreator(t *testing.T) {
	f := setup(t)
	f.playdate(t, "host")
	f.playdate(t, "host")
	f.playdate(t, "other")

	list, err := f.svc.ListByCreator(f.ctx, "host")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	upcoming, err := f.svc.ListUpcoming(f.ctx)
	require.NoError(t, err)
	assert.Len(t, upcoming, 3)
}
