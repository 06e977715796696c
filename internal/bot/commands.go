package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const helpText = `I respond to the following commands (friends call me 'svet'):
    * svetlana hi/help - I'll show you this list!
    * svetlana follow <ID> - I'll keep track of the game with this ID.
    * svetlana unfollow <ID> - I'll stop following the given game.
    * svetlana alert <N> - I'll alert N hours before a deadline.
    * svetlana silence <N> - I won't alert N hours before a deadline.
    * svetlana list - I'll give you a list of the games I'm following.

I will give a notification when a new round starts and will warn you if
players have not given their orders yet.`

// reply is either plain text or an embed, never both.
type reply struct {
	text  string
	embed *discordgo.MessageEmbed
}

// handleMessage reacts to messages addressed to the bot.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	words := strings.Fields(m.Content)
	if len(words) == 0 {
		return
	}

	name := strings.ToLower(words[0])
	if name != "svetlana" && name != "svet" {
		return
	}

	slog.Debug("Received command", "content", m.Content, "channelID", m.ChannelID)

	answer, err := b.answer(m.ChannelID, m.Author.Username, words[1:])
	if err != nil {
		// Malformed arguments get a generic response rather than silence
		slog.Warn("Could not handle command", "content", m.Content, "error", err)
		answer = &reply{text: "Huh?"}
	}
	if answer == nil {
		return
	}

	if answer.embed != nil {
		_, err = s.ChannelMessageSendEmbed(m.ChannelID, answer.embed)
	} else {
		_, err = s.ChannelMessageSend(m.ChannelID, answer.text)
	}
	if err != nil {
		slog.Error("Failed to send reply", "channelID", m.ChannelID, "error", err)
	}
}

// answer reacts to a tokenized command. A nil reply means no reaction.
func (b *Bot) answer(channelID, author string, words []string) (*reply, error) {
	if len(words) == 0 {
		return nil, nil
	}

	switch command := words[0]; command {
	case "hi", "hello", "help":
		return &reply{text: fmt.Sprintf("Hello, %s!\n%s", author, helpText)}, nil
	case "follow":
		return b.handleFollow(channelID, words[1:])
	case "unfollow":
		return b.handleUnfollow(channelID, words[1:])
	case "alert":
		return b.handleAlert(words[1:])
	case "silence":
		return b.handleSilence(words[1:])
	case "list":
		return b.handleList(channelID)
	default:
		return nil, nil
	}
}

// handleFollow starts following a game and replies with its board embed.
func (b *Bot) handleFollow(channelID string, args []string) (*reply, error) {
	gameID, err := parseIntArg(args)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := b.client.Fetch(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up game %d: %w", gameID, err)
	}

	followed, err := b.repo.Follow(gameID, channelID)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Now following %d!", gameID)
	if !followed {
		description = "I'm already following that game!"
	}
	return &reply{embed: gameEmbed(snap, description)}, nil
}

func (b *Bot) handleUnfollow(channelID string, args []string) (*reply, error) {
	gameID, err := parseIntArg(args)
	if err != nil {
		return nil, err
	}

	unfollowed, err := b.repo.Unfollow(gameID, channelID)
	if err != nil {
		return nil, err
	}

	if !unfollowed {
		return &reply{text: "Huh? What game?"}, nil
	}
	return &reply{text: "Consider it done!"}, nil
}

func (b *Bot) handleAlert(args []string) (*reply, error) {
	hours, err := parseIntArg(args)
	if err != nil {
		return nil, err
	}

	added, err := b.repo.AddAlert(hours)
	if err != nil {
		return nil, err
	}

	if !added {
		return &reply{text: fmt.Sprintf("I'm already alerting %d hours before a deadline!", hours)}, nil
	}
	return &reply{text: fmt.Sprintf("OK, I will alert %d hours before a deadline.", hours)}, nil
}

func (b *Bot) handleSilence(args []string) (*reply, error) {
	hours, err := parseIntArg(args)
	if err != nil {
		return nil, err
	}

	removed, err := b.repo.RemoveAlert(hours)
	if err != nil {
		return nil, err
	}

	if !removed {
		return &reply{text: fmt.Sprintf("I already don't alert %d hours before a deadline?!", hours)}, nil
	}
	return &reply{text: fmt.Sprintf("Understood, I will stop alerting T-%dh..", hours)}, nil
}

func (b *Bot) handleList(channelID string) (*reply, error) {
	gameIDs, err := b.repo.GamesByChannel(channelID)
	if err != nil {
		return nil, err
	}

	return &reply{text: fmt.Sprintf("I'm following: %v", gameIDs)}, nil
}

// parseIntArg reads the single positive integer argument of a command.
func parseIntArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing argument")
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid argument %q: %w", args[0], err)
	}
	if value < 0 {
		return 0, fmt.Errorf("argument must not be negative: %d", value)
	}

	return value, nil
}
