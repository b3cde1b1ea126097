package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/goplaynow/playdate-api/internal/models"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// PlaydateForm is the editable projection of a playdate: a calendar date and
// two wall-clock times rather than two timestamps.
type PlaydateForm struct {
	Title           string   `json:"title" doc:"Title of the playdate"`
	Description     string   `json:"description,omitempty" doc:"Free-text description"`
	Location        string   `json:"location" doc:"Free-text location"`
	Latitude        *float64 `json:"latitude,omitempty" doc:"Latitude in degrees"`
	Longitude       *float64 `json:"longitude,omitempty" doc:"Longitude in degrees"`
	Date            string   `json:"date" doc:"Date, YYYY-MM-DD"`
	StartTime       string   `json:"start_time" doc:"Start time, HH:MM"`
	EndTime         string   `json:"end_time" doc:"End time, HH:MM"`
	MaxParticipants *int     `json:"max_participants,omitempty" doc:"Advisory capacity"`
}

// FormFromPlaydate renders p for editing in loc.
func FormFromPlaydate(p models.Playdate, loc *time.Location) PlaydateForm {
	start := p.StartTime.In(loc)
	return PlaydateForm{
		Title:           p.Title,
		Description:     p.Description,
		Location:        p.Location,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Date:            start.Format(dateLayout),
		StartTime:       start.Format(clockLayout),
		EndTime:         p.EndTime.In(loc).Format(clockLayout),
		MaxParticipants: p.MaxParticipants,
	}
}

// Times combines the date with the two clock strings. The end must be
// strictly after the start.
func (f PlaydateForm) Times(loc *time.Location) (start, end time.Time, err error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(f.Date), loc)
	if err != nil {
		return start, end, fmt.Errorf("invalid date %q", f.Date)
	}
	start, err = atClock(day, f.StartTime, loc)
	if err != nil {
		return start, end, fmt.Errorf("invalid start time %q", f.StartTime)
	}
	end, err = atClock(day, f.EndTime, loc)
	if err != nil {
		return start, end, fmt.Errorf("invalid end time %q", f.EndTime)
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("end time must be after start time")
	}
	return start.UTC(), end.UTC(), nil
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// validate checks everything but the times.
func (f PlaydateForm) validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(f.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if f.MaxParticipants != nil && *f.MaxParticipants < 1 {
		return fmt.Errorf("max participants must be at least 1")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be given together")
	}
	if f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90) {
		return fmt.Errorf("latitude out of range")
	}
	if f.Longitude != nil && (*f.Longitude < -180 || *f.Longitude > 180) {
		return fmt.Errorf("longitude out of range")
	}
	return nil
}
