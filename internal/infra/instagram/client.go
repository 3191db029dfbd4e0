// internal/infra/instagram/client.go
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"thread_broadcast_bot/internal/domain/platform"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL    = "https://i.instagram.com/api/v1/"
	defaultUserAgent = "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)"
	appID            = "567067343352427"
	maxBodyBytes     = 4 << 20
)

// Client talks to the mobile private API with a session cookie.
// It implements platform.Client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logrus.Entry
	now     func() time.Time

	mu       sync.Mutex
	settings Settings
}

// NewClient builds a client; every request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Entry) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid instagram api url %q: %w", baseURL, err)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		now:     time.Now,
	}, nil
}

// LoginBySession adopts sessionID as the auth cookie and checks it against the current user endpoint.
func (c *Client) LoginBySession(ctx context.Context, sessionID string) error {
	userID := userIDFromSession(sessionID)
	if userID == "" {
		return fmt.Errorf("session id does not start with a user id")
	}

	c.mu.Lock()
	if c.settings.UUIDs.UUID == "" {
		c.settings.UUIDs = newDeviceIDs()
	}
	if c.settings.UserAgent == "" {
		c.settings.UserAgent = defaultUserAgent
	}
	c.settings.Cookies = map[string]string{"sessionid": sessionID, "ds_user_id": userID}
	c.settings.AuthorizationData = AuthorizationData{DSUserID: userID, SessionID: sessionID}
	c.mu.Unlock()

	if _, err := c.do(ctx, http.MethodGet, "accounts/current_user/", url.Values{"edit": {"true"}}, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.settings.LastLogin = c.now().Unix()
	c.mu.Unlock()
	c.logger.WithField("user_id", userID).Debug("Logged in by session id")
	return nil
}

func (c *Client) LoadSettings(blob []byte) error {
	var s Settings
	if err := json.Unmarshal(blob, &s); err != nil {
		return platform.NewError(platform.ErrSessionInvalid, 0, "unreadable session settings", err)
	}
	if s.AuthorizationData.SessionID == "" && s.Cookies["sessionid"] == "" {
		return platform.NewError(platform.ErrSessionInvalid, 0, "session settings carry no sessionid", nil)
	}
	if s.AuthorizationData.SessionID == "" {
		s.AuthorizationData.SessionID = s.Cookies["sessionid"]
		s.AuthorizationData.DSUserID = userIDFromSession(s.AuthorizationData.SessionID)
	}
	if s.UserAgent == "" {
		s.UserAgent = defaultUserAgent
	}
	if s.UUIDs.UUID == "" {
		s.UUIDs = newDeviceIDs()
	}

	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	return nil
}

func (c *Client) DumpSettings() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings.AuthorizationData.SessionID == "" {
		return nil, platform.NewError(platform.ErrLoginRequired, 0, "no session to dump", nil)
	}
	return json.MarshalIndent(c.settings, "", "  ")
}

// Probe fetches the timeline feed, which fails fast with login_required on a dead session.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "feed/timeline/", nil, nil)
	return err
}

// SendDirect posts text into one existing direct thread.
// Thread ids are unbounded decimal integers and are rejected locally when malformed.
func (c *Client) SendDirect(ctx context.Context, text, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	if !threadIDPattern.MatchString(threadID) {
		return fmt.Errorf("invalid instagram thread id %q", threadID)
	}
	token := uuid.NewString()

	c.mu.Lock()
	form := url.Values{
		"action":           {"send_item"},
		"is_shh_mode":      {"0"},
		"send_attribution": {"direct_thread"},
		"thread_ids":       {"[" + threadID + "]"},
		"text":             {text},
		"client_context":   {token},
		"mutation_token":   {token},
		"_uuid":            {c.settings.UUIDs.UUID},
		"device_id":        {c.settings.UUIDs.AndroidDeviceID},
	}
	c.mu.Unlock()

	_, err := c.do(ctx, http.MethodPost, "direct_v2/threads/broadcast/text/", nil, form)
	return err
}

// do issues one request and classifies the outcome.
func (c *Client) do(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	c.mu.Lock()
	s := c.settings
	c.mu.Unlock()
	if s.AuthorizationData.SessionID == "" {
		return nil, platform.NewError(platform.ErrLoginRequired, 0, "not logged in", nil)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("X-IG-App-ID", appID)
	req.Header.Set("X-IG-Device-ID", s.UUIDs.UUID)
	req.Header.Set("X-IG-Android-ID", s.UUIDs.AndroidDeviceID)
	req.Header.Set("Authorization", s.bearer())
	for name, value := range s.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, platform.NewError(platform.ErrClient, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, platform.NewError(platform.ErrClient, resp.StatusCode, "", err)
	}

	if err := classifyResponse(resp.StatusCode, data); err != nil {
		c.logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).WithError(err).Debug("Request failed")
		return nil, err
	}
	return data, nil
}
