// Package service implements the playdate roster and its mutations on top of
// a store.Store.
package service

import (
	"time"

	"github.com/goplaynow/playdate-api/internal/notifier"
	"github.com/goplaynow/playdate-api/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	store    store.Store
	notifier notifier.Notifier
	logger   *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone form dates and clock times are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func New(st store.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    st,
		notifier: notifier.Nop{},
		logger:   logger,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}
