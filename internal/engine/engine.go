// Package engine decides whether a game snapshot warrants a notification.
// The per-game state (pregame, active, won, drawn) is rederived from each
// fresh snapshot; nothing is persisted between polls. The once-per-boundary
// behaviors fall out of arithmetic on the snapshot and the poll period.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/JorisHartog/svetlana/internal/webdiplomacy"
)

// Result is the outcome of a poll decision. Unfollow signals that the game
// reached a terminal state and the subscription should be dropped.
type Result struct {
	Message  string
	Unfollow bool
}

// Decide inspects a snapshot and returns at most one notification per call.
//
// Thresholds are matched with a tolerance of 1.5x the poll period, so every
// hour-boundary crossing is seen exactly once as long as the tolerance
// exceeds the period. When several thresholds coincide in the same tick, the
// last one in iteration order wins, overriding any state-machine message.
func Decide(snap webdiplomacy.Snapshot, now time.Time, thresholds []int, period time.Duration) *Result {
	tolerance := 1.5 * period.Minutes()

	var result *Result
	switch {
	case snap.Pregame:
		if snap.HasDeadline() && snap.HoursLeft(now) == 0 && snap.MinutesLeft(now) == 0 {
			result = &Result{
				Message: fmt.Sprintf("The game starts in %d days!", snap.DaysLeft(now)),
			}
		}
	case snap.Won != "":
		result = &Result{
			Message:  fmt.Sprintf("%s has won!", snap.Won),
			Unfollow: true,
		}
	case len(snap.Drawn) > 0:
		result = &Result{
			Message:  fmt.Sprintf("The game was a draw between %s!", strings.Join(snap.Drawn, ", ")),
			Unfollow: true,
		}
	case snap.HasDeadline() && snap.HoursLeft(now) == 23 && float64(snap.MinutesLeft(now)) >= 60-tolerance:
		result = &Result{Message: "Starting new round! Good luck :)"}
	}

	// A terminal state stays terminal even if a threshold message below
	// replaces its text.
	unfollow := result != nil && result.Unfollow

	if snap.HasDeadline() {
		for _, hours := range thresholds {
			if snap.HoursLeft(now) != hours || float64(snap.MinutesLeft(now)) > tolerance {
				continue
			}
			if len(snap.NotReady) > 0 {
				result = &Result{
					Message: fmt.Sprintf("%dh left! These countries aren't ready: %s",
						hours, strings.Join(snap.NotReady, ", ")),
				}
			} else {
				result = &Result{
					Message: fmt.Sprintf("%dh left, everybody's ready!", hours),
				}
			}
		}
	}

	if result != nil && unfollow {
		result.Unfollow = true
	}
	return result
}
