package models

import (
	"time"
)

type PlaydateStatus string

const (
	StatusUpcoming  PlaydateStatus = "upcoming"
	StatusCancelled PlaydateStatus = "cancelled"
	// StatusCompleted is never stored; see DisplayStatus.
	StatusCompleted PlaydateStatus = "completed"
)

type Playdate struct {
	Base
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	Location        string         `json:"location" gorm:"not null"`
	Latitude        *float64       `json:"latitude,omitempty"`
	Longitude       *float64       `json:"longitude,omitempty"`
	StartTime       time.Time      `json:"start_time" gorm:"not null;index"`
	EndTime         time.Time      `json:"end_time" gorm:"not null"`
	MaxParticipants *int           `json:"max_participants,omitempty"`
	CreatorID       string         `json:"creator_id" gorm:"size:36;not null;index"`
	Status          PlaydateStatus `json:"status" gorm:"size:16;not null;default:upcoming"`
}

func (p Playdate) IsCancelled() bool {
	return p.Status == StatusCancelled
}

func (p Playdate) IsCompleted(now time.Time) bool {
	return now.After(p.EndTime)
}

// DisplayStatus folds the stored and derived states into one value. A
// cancelled playdate stays cancelled after its end time has passed.
func (p Playdate) DisplayStatus(now time.Time) PlaydateStatus {
	switch {
	case p.IsCancelled():
		return StatusCancelled
	case p.IsCompleted(now):
		return StatusCompleted
	default:
		return StatusUpcoming
	}
}

// Coordinates reports the playdate position, ok is false unless both
// latitude and longitude are set.
func (p Playdate) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}
