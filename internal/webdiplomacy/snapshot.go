package webdiplomacy

import "time"

// Snapshot is a point-in-time view of a WebDiplomacy game page.
// Country slices preserve the order in which names appear on the page.
type Snapshot struct {
	GameID   int
	Deadline time.Time // zero while pregame has not been scheduled or the game is over
	Ready    []string
	NotReady []string
	Defeated []string
	Drawn    []string
	Won      string // empty unless a single winner exists
	Pregame  bool

	// Links attached by the client, used for notification embeds
	URL    string
	MapURL string
}

// HasDeadline reports whether the page carried a deadline timestamp.
func (s Snapshot) HasDeadline() bool {
	return !s.Deadline.IsZero()
}

// DaysLeft returns the number of whole days until the deadline.
func (s Snapshot) DaysLeft(now time.Time) int {
	days, _ := s.remaining(now)
	return int(days)
}

// HoursLeft returns the hours left within the current day.
func (s Snapshot) HoursLeft(now time.Time) int {
	_, rem := s.remaining(now)
	return int(rem / 3600)
}

// MinutesLeft returns the minutes left within the current hour.
func (s Snapshot) MinutesLeft(now time.Time) int {
	_, rem := s.remaining(now)
	return int((rem / 60) % 60)
}

// remaining splits the time until the deadline into whole days and the
// leftover seconds within the day. Days floor toward negative infinity so
// that a deadline in the past yields negative days and a non-negative
// remainder, keeping the hour/minute buckets stable around the boundary.
func (s Snapshot) remaining(now time.Time) (days, remSeconds int64) {
	secs := int64(s.Deadline.Sub(now) / time.Second)
	days = secs / 86400
	if secs%86400 < 0 {
		days--
	}
	remSeconds = secs - days*86400
	return days, remSeconds
}
