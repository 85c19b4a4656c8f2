package models

import (
	"regexp"
	"time"
)

// Quality is the capture resolution preset named by a schedule document.
type Quality string

const (
	Quality4K Quality = "4K"
	Quality3K Quality = "3K"
	QualityHD Quality = "HD"
)

// Valid reports whether q is one of the known presets.
func (q Quality) Valid() bool {
	switch q {
	case Quality4K, Quality3K, QualityHD:
		return true
	}
	return false
}

// Resolution returns the still-capture size for q. Unknown presets map to 3K.
func (q Quality) Resolution() (width, height int) {
	switch q {
	case Quality4K:
		return 3840, 2160
	case QualityHD:
		return 1920, 1080
	default:
		return 2560, 1440
	}
}

// OffPeriod marks a window during which the device stays powered off.
const OffPeriod = -1

// TimeOfDay is a zero-padded "HH:MM:SS" wall-clock time. The fixed width
// makes lexicographic order match chronological order.
type TimeOfDay string

const (
	DayStart TimeOfDay = "00:00:00"
	DayEnd   TimeOfDay = "23:59:59"

	timeOfDayLayout = "15:04:05"
)

var timeOfDayPattern = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)

// TimeOfDayOf formats t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format(timeOfDayLayout))
}

// Valid reports whether the value matches HH:MM:SS with in-range fields.
func (t TimeOfDay) Valid() bool {
	return timeOfDayPattern.MatchString(string(t))
}

// Before reports whether t is strictly earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

// Offset returns the duration since midnight. Invalid values yield an error.
func (t TimeOfDay) Offset() (time.Duration, error) {
	p, err := time.Parse(timeOfDayLayout, string(t))
	if err != nil {
		return 0, err
	}
	return time.Duration(p.Hour())*time.Hour +
		time.Duration(p.Minute())*time.Minute +
		time.Duration(p.Second())*time.Second, nil
}

// TimingWindow is one slice of the day with its capture period in seconds.
type TimingWindow struct {
	Period int       `json:"period"` // seconds, or OffPeriod
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
}

// Contains reports whether now falls in [Start, End).
func (w TimingWindow) Contains(now TimeOfDay) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// ScheduleDocument is the full device configuration pushed by the authority.
// It is replaced as a whole and never edited in place.
type ScheduleDocument struct {
	ID      string         `json:"uuid"`
	Quality Quality        `json:"quality"`
	Windows []TimingWindow `json:"timing"`
}

// Clone returns a deep copy so callers cannot mutate a shared window slice.
func (d ScheduleDocument) Clone() ScheduleDocument {
	out := d
	out.Windows = append([]TimingWindow(nil), d.Windows...)
	return out
}

// ActiveConfig is the snapshot of the window that contains the current time.
type ActiveConfig struct {
	ID          string    `json:"uuid"`
	Quality     Quality   `json:"quality"`
	Period      int       `json:"period"`
	WindowStart TimeOfDay `json:"start"`
	WindowEnd   TimeOfDay `json:"end"`
}

// PoweredOff reports whether the active window keeps the device off.
func (a ActiveConfig) PoweredOff() bool { return a.Period == OffPeriod }
