package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JorisHartog/svetlana/internal/webdiplomacy"
)

var (
	testNow    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testPeriod = time.Minute
)

func TestDecidePregameStartsInDays(t *testing.T) {
	for days := 0; days <= 6; days++ {
		t.Run(fmt.Sprintf("%d_days", days), func(t *testing.T) {
			snap := webdiplomacy.Snapshot{
				GameID:   1234,
				Pregame:  true,
				Deadline: testNow.Add(time.Duration(days)*24*time.Hour + 30*time.Second),
			}

			result := Decide(snap, testNow, nil, testPeriod)

			require.NotNil(t, result)
			assert.Equal(t, fmt.Sprintf("The game starts in %d days!", days), result.Message)
			assert.False(t, result.Unfollow)
		})
	}
}

func TestDecidePregameOnlyFiresOnDayBoundary(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Pregame:  true,
		Deadline: testNow.Add(3*24*time.Hour + 5*time.Hour),
	}

	assert.Nil(t, Decide(snap, testNow, nil, testPeriod))
}

func TestDecideThresholdEverybodyReady(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(2*time.Hour + 30*time.Second),
	}

	result := Decide(snap, testNow, []int{2}, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "2h left, everybody's ready!", result.Message)
	assert.False(t, result.Unfollow)
}

func TestDecideThresholdNotReady(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(2*time.Hour + 30*time.Second),
		NotReady: []string{"Turkey", "France"},
	}

	result := Decide(snap, testNow, []int{2}, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "2h left! These countries aren't ready: Turkey, France", result.Message)
}

func TestDecideThresholdOutsideWindow(t *testing.T) {
	// 2h30m left: the 2h threshold must not fire yet
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(2*time.Hour + 30*time.Minute),
	}

	assert.Nil(t, Decide(snap, testNow, []int{2}, testPeriod))
}

func TestDecideWon(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Won:      "Russia",
		Deadline: testNow,
	}

	result := Decide(snap, testNow, nil, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "Russia has won!", result.Message)
	assert.True(t, result.Unfollow)
}

func TestDecideDrawn(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Drawn:    []string{"France", "Russia"},
		Deadline: testNow,
	}

	result := Decide(snap, testNow, nil, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "The game was a draw between France, Russia!", result.Message)
	assert.True(t, result.Unfollow)
}

func TestDecideNewRound(t *testing.T) {
	// A freshly started round has just under 24h on the clock
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(24*time.Hour - 30*time.Second),
	}

	result := Decide(snap, testNow, nil, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "Starting new round! Good luck :)", result.Message)
	assert.False(t, result.Unfollow)
}

func TestDecideNewRoundOutsideWindow(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(23*time.Hour + 30*time.Minute),
	}

	assert.Nil(t, Decide(snap, testNow, nil, testPeriod))
}

func TestDecideThresholdOverridesTerminalMessageButKeepsUnfollow(t *testing.T) {
	// When a page still carries a deadline inside a threshold window while a
	// winner is shown, the threshold text wins but the game stays terminal.
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Won:      "Russia",
		Deadline: testNow.Add(2*time.Hour + 30*time.Second),
	}

	result := Decide(snap, testNow, []int{2}, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "2h left, everybody's ready!", result.Message)
	assert.True(t, result.Unfollow)
}

func TestDecideLastThresholdWins(t *testing.T) {
	// Duplicate hour values in the threshold list: the last match overwrites
	// earlier ones. Documented tie-break, not an aspiration.
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(2*time.Hour + 30*time.Second),
		NotReady: []string{"Italy"},
	}

	result := Decide(snap, testNow, []int{2, 2}, testPeriod)

	require.NotNil(t, result)
	assert.Equal(t, "2h left! These countries aren't ready: Italy", result.Message)
}

func TestDecideNothingToReport(t *testing.T) {
	snap := webdiplomacy.Snapshot{
		GameID:   1234,
		Deadline: testNow.Add(12*time.Hour + 17*time.Minute),
		Ready:    []string{"England"},
	}

	assert.Nil(t, Decide(snap, testNow, []int{2, 6}, testPeriod))
}
