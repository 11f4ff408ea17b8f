// Package solar supplies the day's sunrise and sunset for a fixed location.
package solar

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// Func computes sunrise and sunset (UTC) for a date. Zero times mean the sun
// does not rise or set that day.
type Func func(latitude, longitude float64, year int, month time.Month, day int) (time.Time, time.Time)

// Provider caches sun times per calendar day in its location. It is not safe
// for concurrent use.
type Provider struct {
	latitude  float64
	longitude float64
	loc       *time.Location
	compute   Func
	log       zerolog.Logger

	day    time.Time
	cached logic.SunTimes
}

// New creates a Provider backed by go-sunrise.
func New(latitude, longitude float64, loc *time.Location, log zerolog.Logger) *Provider {
	return NewWithFunc(latitude, longitude, loc, sunrise.SunriseSunset, log)
}

// NewWithFunc creates a Provider with a custom calculation. Used in tests.
func NewWithFunc(latitude, longitude float64, loc *time.Location, f Func, log zerolog.Logger) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{
		latitude:  latitude,
		longitude: longitude,
		loc:       loc,
		compute:   f,
		log:       log.With().Str("component", "solar").Logger(),
	}
}

// Today returns the sun times for the calendar day containing now,
// recomputing them when the day changes.
func (p *Provider) Today(now time.Time) logic.SunTimes {
	local := now.In(p.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.loc)
	if !p.day.IsZero() && day.Equal(p.day) {
		return p.cached
	}

	rise, set := p.compute(p.latitude, p.longitude, day.Year(), day.Month(), day.Day())
	p.day = day
	p.cached = logic.SunTimes{
		Sunrise: p.clock(rise),
		Sunset:  p.clock(set),
	}

	ev := p.log.Info()
	if !p.cached.Sunrise.IsSet() || !p.cached.Sunset.IsSet() {
		ev = p.log.Warn()
	}
	ev.Str("date", day.Format("2006-01-02")).
		Stringer("sunrise", p.cached.Sunrise).
		Stringer("sunset", p.cached.Sunset).
		Msg("sun times updated")

	return p.cached
}

func (p *Provider) clock(t time.Time) logic.TimeOfDay {
	if t.IsZero() {
		return logic.NoTime
	}
	l := t.In(p.loc)
	return logic.At(l.Hour(), l.Minute())
}
