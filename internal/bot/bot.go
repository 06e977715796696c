package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/JorisHartog/svetlana/internal/config"
	"github.com/JorisHartog/svetlana/internal/poller"
	"github.com/JorisHartog/svetlana/internal/storage"
	"github.com/JorisHartog/svetlana/internal/webdiplomacy"
)

// Bot represents the Discord bot instance
type Bot struct {
	config  *config.Config
	session *discordgo.Session
	repo    *storage.Repository
	client  *webdiplomacy.Client
	poller  *poller.Poller
}

// New creates a new Bot instance
func New(cfg *config.Config, repo *storage.Repository, client *webdiplomacy.Client) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents; message content is needed to read commands
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		config:  cfg,
		session: session,
		repo:    repo,
		client:  client,
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and starts the game poller
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Start the game poller
	period := time.Duration(b.config.PollIntervalMinutes) * time.Minute
	b.poller = poller.New(b.repo, b.client, b, period)
	go b.poller.Start(ctx)

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop the poller
	if b.poller != nil {
		b.poller.Stop()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// Dispatch sends a game notification embed to a channel. It implements
// poller.Dispatcher.
func (b *Bot) Dispatch(channelID string, snap webdiplomacy.Snapshot, message string) error {
	_, err := b.session.ChannelMessageSendEmbed(channelID, gameEmbed(snap, message))
	return err
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleMessage)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
}

// gameEmbed builds the notification card for a game: the message text plus a
// link to the board and the current map as image.
func gameEmbed(snap webdiplomacy.Snapshot, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Diplomacy game %d", snap.GameID),
		Description: description,
		URL:         snap.URL,
		Image: &discordgo.MessageEmbedImage{
			URL: snap.MapURL,
		},
	}
}
