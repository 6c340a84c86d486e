package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const telegramAPIBase = "https://api.telegram.org"

// deliverTimeout bounds a single outbound chat delivery.
const deliverTimeout = 10 * time.Second

// Notifier delivers a text report to a chat destination. Delivery is
// fire-and-forget from the loop's perspective: a failed send is logged by the
// caller and never fatal.
type Notifier interface {
	Deliver(ctx context.Context, destination, text string) error
	Name() string
}

// Destination pairs a notifier backend with the channel or chat it posts to.
type Destination struct {
	Notifier Notifier
	Target   string
}

// TelegramNotifier posts messages through the Telegram Bot API.
type TelegramNotifier struct {
	apiBase string
	token   string
	client  *http.Client
}

func NewTelegramNotifier(token string) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase: telegramAPIBase,
		token:   token,
		client:  &http.Client{Timeout: deliverTimeout},
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) Deliver(ctx context.Context, chatID, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram API error: %d", resp.StatusCode)
	}
	return nil
}

// DiscordNotifier posts messages through the Discord REST API. Only REST is
// used; no gateway connection is opened.
type DiscordNotifier struct {
	session *discordgo.Session
}

func NewDiscordNotifier(token string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordNotifier{session: session}, nil
}

func (d *DiscordNotifier) Name() string { return "discord" }

func (d *DiscordNotifier) Deliver(ctx context.Context, channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}

// BuildDestinations assembles notifier backends from configured credentials.
// Missing or partial credentials skip that backend with a warning — the loop
// still runs and simply has nowhere to deliver.
func BuildDestinations(cfg *Config) []Destination {
	var dests []Destination

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		dests = append(dests, Destination{
			Notifier: NewTelegramNotifier(cfg.TelegramToken),
			Target:   cfg.TelegramChatID,
		})
	} else if cfg.TelegramToken != "" || cfg.TelegramChatID != "" {
		log.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set — Telegram sends will be skipped")
	}

	if cfg.DiscordToken != "" && cfg.DiscordChannel != "" {
		discord, err := NewDiscordNotifier(cfg.DiscordToken)
		if err != nil {
			log.WithError(err).Warn("Discord notifier init failed — Discord sends will be skipped")
		} else {
			dests = append(dests, Destination{Notifier: discord, Target: cfg.DiscordChannel})
		}
	} else if cfg.DiscordToken != "" || cfg.DiscordChannel != "" {
		log.Warn("DISCORD_BOT_TOKEN or DISCORD_CHANNEL_ID not set — Discord sends will be skipped")
	}

	if len(dests) == 0 {
		log.Warn("no delivery credentials configured — reports will be logged but not sent")
	}
	return dests
}
