package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestFollowUnfollow(t *testing.T) {
	repo := newTestRepository(t)

	followed, err := repo.Follow(1234, "chan-1")
	require.NoError(t, err)
	assert.True(t, followed)

	// Following twice is a no-op returning failure
	followed, err = repo.Follow(1234, "chan-1")
	require.NoError(t, err)
	assert.False(t, followed)

	following, err := repo.IsFollowing(1234, "chan-1")
	require.NoError(t, err)
	assert.True(t, following)

	unfollowed, err := repo.Unfollow(1234, "chan-1")
	require.NoError(t, err)
	assert.True(t, unfollowed)

	// Unfollowing a non-followed pair returns failure
	unfollowed, err = repo.Unfollow(1234, "chan-1")
	require.NoError(t, err)
	assert.False(t, unfollowed)
}

func TestSubscriptionsRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	before, err := repo.Subscriptions()
	require.NoError(t, err)
	assert.Empty(t, before)

	_, err = repo.Follow(1, "chan-1")
	require.NoError(t, err)
	_, err = repo.Follow(2, "chan-1")
	require.NoError(t, err)
	_, err = repo.Follow(1, "chan-2")
	require.NoError(t, err)

	subs, err := repo.Subscriptions()
	require.NoError(t, err)
	require.Len(t, subs, 3)

	// Insertion order is preserved
	assert.Equal(t, 1, subs[0].GameID)
	assert.Equal(t, "chan-1", subs[0].ChannelID)
	assert.Equal(t, 2, subs[1].GameID)
	assert.Equal(t, "chan-2", subs[2].ChannelID)

	for _, sub := range subs {
		_, err := repo.Unfollow(sub.GameID, sub.ChannelID)
		require.NoError(t, err)
	}

	after, err := repo.Subscriptions()
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestGamesByChannel(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Follow(10, "chan-1")
	require.NoError(t, err)
	_, err = repo.Follow(20, "chan-1")
	require.NoError(t, err)
	_, err = repo.Follow(30, "chan-2")
	require.NoError(t, err)

	games, err := repo.GamesByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, games)

	games, err = repo.GamesByChannel("chan-3")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestAlertsRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	added, err := repo.AddAlert(2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddAlert(2)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.AddAlert(24)
	require.NoError(t, err)
	_, err = repo.AddAlert(6)
	require.NoError(t, err)

	// Ascending order
	alerts, err := repo.Alerts()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6, 24}, alerts)

	removed, err := repo.RemoveAlert(6)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveAlert(6)
	require.NoError(t, err)
	assert.False(t, removed)

	alerts, err = repo.Alerts()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 24}, alerts)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	repo, err := NewRepository(dbPath)
	require.NoError(t, err)
	_, err = repo.Follow(1234, "chan-1")
	require.NoError(t, err)
	_, err = repo.AddAlert(2)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	following, err := reopened.IsFollowing(1234, "chan-1")
	require.NoError(t, err)
	assert.True(t, following)

	alerts, err := reopened.Alerts()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, alerts)
}
