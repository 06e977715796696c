package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JorisHartog/svetlana/internal/engine"
	"github.com/JorisHartog/svetlana/internal/storage"
	"github.com/JorisHartog/svetlana/internal/webdiplomacy"
)

// Dispatcher delivers a notification to a channel. Delivery is fire and
// forget; the poller does not track whether the message arrived.
type Dispatcher interface {
	Dispatch(channelID string, snap webdiplomacy.Snapshot, message string) error
}

// Poller periodically checks every followed game and forwards any resulting
// notification to the dispatcher. Games are checked sequentially within a
// cycle; a failure for one game never aborts the rest.
type Poller struct {
	repo       *storage.Repository
	client     *webdiplomacy.Client
	dispatcher Dispatcher
	period     time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new Poller
func New(repo *storage.Repository, client *webdiplomacy.Client, dispatcher Dispatcher, period time.Duration) *Poller {
	return &Poller{
		repo:       repo,
		client:     client,
		dispatcher: dispatcher,
		period:     period,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the polling loop. The first cycle runs one period after
// start, so the chat session has time to come up.
func (p *Poller) Start(ctx context.Context) {
	slog.Info("Starting poller", "period", p.period)

	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Poller stopped (context cancelled)")
			return
		case <-p.stopChan:
			slog.Info("Poller stopped")
			return
		case <-ticker.C:
			p.RunCycle(ctx)
		}
	}
}

// Stop signals the poller to stop
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// RunCycle checks every followed game once.
func (p *Poller) RunCycle(ctx context.Context) {
	thresholds, err := p.repo.Alerts()
	if err != nil {
		slog.Error("Failed to get alert thresholds", "error", err)
		return
	}

	subs, err := p.repo.Subscriptions()
	if err != nil {
		slog.Error("Failed to get subscriptions", "error", err)
		return
	}

	if len(subs) == 0 {
		slog.Debug("No games to poll")
		return
	}

	slog.Debug("Polling games", "count", len(subs))

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return
		default:
			p.checkGame(ctx, sub, thresholds)
		}
	}
}

// checkGame fetches, decides and dispatches for a single subscription.
func (p *Poller) checkGame(ctx context.Context, sub storage.Subscription, thresholds []int) {
	// Bound each game's fetch so one stuck request cannot starve the cycle
	fetchCtx, cancel := context.WithTimeout(ctx, p.period)
	defer cancel()

	snap, err := p.client.Fetch(fetchCtx, sub.GameID)
	if err != nil {
		slog.Error("Failed to check game", "gameID", sub.GameID, "channelID", sub.ChannelID, "error", err)
		return
	}

	result := engine.Decide(snap, time.Now(), thresholds, p.period)
	if result == nil {
		slog.Debug("Nothing to report", "gameID", sub.GameID)
		return
	}

	if result.Unfollow {
		if _, err := p.repo.Unfollow(sub.GameID, sub.ChannelID); err != nil {
			slog.Error("Failed to unfollow finished game", "gameID", sub.GameID, "error", err)
		} else {
			slog.Info("Game over, unfollowed", "gameID", sub.GameID, "channelID", sub.ChannelID)
		}
	}

	if err := p.dispatcher.Dispatch(sub.ChannelID, snap, result.Message); err != nil {
		slog.Error("Failed to send notification", "gameID", sub.GameID, "channelID", sub.ChannelID, "error", err)
	} else {
		slog.Info("Sent notification", "gameID", sub.GameID, "channelID", sub.ChannelID, "message", result.Message)
	}
}
