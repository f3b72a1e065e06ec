package deadline

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// FormatLateness describes how late submitted is relative to due using the
// largest non-zero whole unit, e.g. "1 hour late" or "3 days late".
func FormatLateness(submitted, due time.Time) string {
	diff := submitted.Sub(due)
	if diff <= 0 {
		return "on time"
	}

	units := []struct {
		size time.Duration
		name string
	}{
		{day, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, u := range units {
		if n := int64(diff / u.size); n > 0 {
			return fmt.Sprintf("%d %s late", n, plural(n, u.name))
		}
	}

	n := int64(diff / time.Second)
	return fmt.Sprintf("%d %s late", n, plural(n, "second"))
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// Countdown is the time left until a due date. All four fields are always
// filled; they are zero once Expired is set.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

// TotalSeconds is the whole number of seconds the countdown represents.
func (c Countdown) TotalSeconds() int64 {
	return c.Days*86400 + c.Hours*3600 + c.Minutes*60 + c.Seconds
}

func (c Countdown) String() string {
	if c.Expired {
		return "EXPIRED"
	}
	return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

// FormatCountdown returns the remaining time until due, or an expired
// countdown when now is at or past due.
func FormatCountdown(due, now time.Time) Countdown {
	if !now.Before(due) {
		return Countdown{Expired: true}
	}
	total := int64(due.Sub(now) / time.Second)
	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
