// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"thread_broadcast_bot/internal/domain/platform"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// settings is the persisted session blob for the Telegram platform.
type settings struct {
	Token    string `json:"token"`
	BotID    int64  `json:"bot_id"`
	Username string `json:"username"`
}

// TelebotAdapter implements platform.Client using the gopkg.in/telebot.v3 library.
// The credential is a bot token and destinations are numeric chat IDs.
type TelebotAdapter struct {
	apiURL  string
	timeout time.Duration
	logger  *logrus.Entry

	bot      *telebot.Bot
	settings settings
}

func NewTelebotAdapter(apiURL string, timeout time.Duration, logger *logrus.Entry) *TelebotAdapter {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &TelebotAdapter{apiURL: apiURL, timeout: timeout, logger: logger}
}

func (a *TelebotAdapter) newBot(token string) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		URL:     a.apiURL,
		Token:   token,
		Offline: true, // getMe is issued explicitly by Probe
		Client:  &http.Client{Timeout: a.timeout},
		OnError: func(err error, c telebot.Context) {
			a.logger.WithError(err).Error("telebot error")
		},
	})
}

// LoginBySession builds a bot from the token and verifies it with getMe.
func (a *TelebotAdapter) LoginBySession(ctx context.Context, credential string) error {
	b, err := a.newBot(credential)
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}
	a.bot = b
	a.settings = settings{Token: credential}
	return a.Probe(ctx)
}

func (a *TelebotAdapter) LoadSettings(blob []byte) error {
	var s settings
	if err := json.Unmarshal(blob, &s); err != nil {
		return platform.NewError(platform.ErrSessionInvalid, 0, "unreadable telegram session", err)
	}
	if s.Token == "" {
		return platform.NewError(platform.ErrSessionInvalid, 0, "telegram session has no token", nil)
	}
	b, err := a.newBot(s.Token)
	if err != nil {
		return platform.NewError(platform.ErrSessionInvalid, 0, "", err)
	}
	a.bot = b
	a.settings = s
	return nil
}

func (a *TelebotAdapter) DumpSettings() ([]byte, error) {
	if a.settings.Token == "" {
		return nil, platform.NewError(platform.ErrLoginRequired, 0, "no telegram session to dump", nil)
	}
	return json.MarshalIndent(a.settings, "", "  ")
}

// Probe calls getMe and records the bot identity.
// telebot requests cannot be cancelled once issued, so ctx is only checked up front;
// the HTTP client timeout bounds the call itself.
func (a *TelebotAdapter) Probe(ctx context.Context) error {
	if a.bot == nil {
		return platform.NewError(platform.ErrLoginRequired, 0, "telegram bot not initialised", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := a.bot.Raw("getMe", nil)
	if err != nil {
		return classify(err)
	}
	var resp struct {
		Result telebot.User `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode getMe response: %w", err)
	}
	a.settings.BotID = resp.Result.ID
	a.settings.Username = resp.Result.Username
	return nil
}

// SendDirect sends a text message to the chat whose ID is destination.
func (a *TelebotAdapter) SendDirect(ctx context.Context, text, destination string) error {
	if a.bot == nil {
		return platform.NewError(platform.ErrLoginRequired, 0, "telegram bot not initialised", nil)
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(destination), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", destination, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.bot.Send(telebot.ChatID(chatID), text, &telebot.SendOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps telebot failures onto platform error kinds.
func classify(err error) error {
	var flood telebot.FloodError
	if errors.As(err, &flood) {
		return platform.NewError(platform.ErrRateLimited, http.StatusTooManyRequests,
			fmt.Sprintf("retry after %ds", flood.RetryAfter), err)
	}
	var apiErr *telebot.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return platform.NewError(platform.ErrLoginRequired, apiErr.Code, apiErr.Description, err)
		case http.StatusTooManyRequests:
			return platform.NewError(platform.ErrRateLimited, apiErr.Code, apiErr.Description, err)
		default:
			return platform.NewError(platform.ErrClient, apiErr.Code, apiErr.Description, err)
		}
	}
	// Descriptions telebot does not know come back as plain errors ending in "(code)".
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Too Many Requests"), strings.HasSuffix(msg, "(429)"):
		return platform.NewError(platform.ErrRateLimited, http.StatusTooManyRequests, "", err)
	case strings.Contains(msg, "Unauthorized"), strings.HasSuffix(msg, "(401)"):
		return platform.NewError(platform.ErrLoginRequired, http.StatusUnauthorized, "", err)
	}
	return platform.NewError(platform.ErrClient, 0, "", err)
}
