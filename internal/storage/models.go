package storage

import "time"

// Subscription binds a tracked game to the Discord channel that should
// receive its notifications.
type Subscription struct {
	ID        int64
	GameID    int
	ChannelID string
	CreatedAt time.Time
}
