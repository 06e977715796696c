package webdiplomacy

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrUnreadablePage indicates the page content is structurally unusable.
// Missing fields are never an error; they parse to empty values.
var ErrUnreadablePage = errors.New("unreadable game page")

// The game page is scanned line by line against a fixed table of patterns,
// one per field of interest. Lines that match no pattern are ignored, which
// makes the parser tolerant of unrelated markup; tracking a new field only
// needs a new pattern.
var pagePatterns = map[string]*regexp.Regexp{
	"defeated":  regexp.MustCompile(`memberCountryName.*memberStatusDefeated">(.*?)<`),
	"drawn":     regexp.MustCompile(`memberCountryName.*memberStatusDrawn">(.*?)<`),
	"ready":     regexp.MustCompile(`memberCountryName.*tick.*rStatusPlaying">(.*?)<`),
	"not_ready": regexp.MustCompile(`memberCountryName.*alert.*StatusPlaying">(.*?)<`),
	"won":       regexp.MustCompile(`memberCountryName.*memberStatusWon">(.*?)<`),
	"deadline":  regexp.MustCompile(`gameTimeRemaining.*unixtime="([0-9]+)"`),
	"pregame":   regexp.MustCompile(`(memberPreGameList)">`),
}

// ParseSnapshot turns raw page text into a Snapshot. Matches accumulate per
// field in order of appearance; duplicates are preserved. The deadline is the
// first matched timestamp on the page.
func ParseSnapshot(gameID int, raw string) (Snapshot, error) {
	if !utf8.ValidString(raw) {
		return Snapshot{}, fmt.Errorf("%w: invalid encoding", ErrUnreadablePage)
	}

	fields := make(map[string][]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for key, pattern := range pagePatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				fields[key] = append(fields[key], m[1])
			}
		}
	}
	slog.Debug("Parsed game page", "gameID", gameID, "fields", fields)

	snap := Snapshot{
		GameID:   gameID,
		Ready:    fields["ready"],
		NotReady: fields["not_ready"],
		Defeated: fields["defeated"],
		Drawn:    fields["drawn"],
		Pregame:  len(fields["pregame"]) > 0,
	}
	if won := fields["won"]; len(won) > 0 {
		snap.Won = won[0]
	}
	if deadlines := fields["deadline"]; len(deadlines) > 0 {
		epoch, err := strconv.ParseInt(deadlines[0], 10, 64)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: bad deadline %q", ErrUnreadablePage, deadlines[0])
		}
		snap.Deadline = time.Unix(epoch, 0)
	}

	return snap, nil
}
