// Package device holds the hardware collaborators of the lifecycle
// controller: clock, camera, system sensors and power control, each with a
// hardware and a simulated implementation.
package device

import (
	"fmt"
	"time"

	"sentinel_cam/internal/models"
)

// Clock abstracts time for the controller. Now keeps the monotonic reading
// so elapsed time is measured reliably; TimeOfDay and Localize work in the
// device timezone. Timer returns a channel firing after d and a stop
// function that releases it early.
type Clock interface {
	Now() time.Time
	Timer(d time.Duration) (<-chan time.Time, func() bool)
	TimeOfDay() models.TimeOfDay
	Localize(tod models.TimeOfDay) (time.Time, error)
}

// RTC is the production clock. The system clock is kept in sync with the
// hardware RTC and NTP by the OS.
type RTC struct {
	loc *time.Location
}

// NewRTC returns a clock reporting wall time in loc.
func NewRTC(loc *time.Location) *RTC {
	if loc == nil {
		loc = time.Local
	}
	return &RTC{loc: loc}
}

func (c *RTC) Now() time.Time { return time.Now() }

func (c *RTC) Timer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

func (c *RTC) TimeOfDay() models.TimeOfDay { return models.TimeOfDayOf(c.Now().In(c.loc)) }

func (c *RTC) Localize(tod models.TimeOfDay) (time.Time, error) {
	return NextOccurrence(c.Now().In(c.loc), tod)
}

// NextOccurrence returns the first instant strictly after now, in now's
// location, whose wall clock reads tod. A time of day equal to now's
// current second resolves to the same second tomorrow.
func NextOccurrence(now time.Time, tod models.TimeOfDay) (time.Time, error) {
	if !tod.Valid() {
		return time.Time{}, fmt.Errorf("invalid time of day %q", tod)
	}
	off, err := tod.Offset()
	if err != nil {
		return time.Time{}, err
	}
	h, m, s := int(off/time.Hour), int(off/time.Minute)%60, int(off/time.Second)%60
	y, mo, d := now.Date()
	at := time.Date(y, mo, d, h, m, s, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, mo, d+1, h, m, s, 0, now.Location())
	}
	return at, nil
}
