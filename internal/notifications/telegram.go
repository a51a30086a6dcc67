package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	apiBaseURL     = "https://api.telegram.org"
	requestTimeout = 15 * time.Second
	// Delay inserted between successive sends to stay under the Bot API
	// per-chat rate limit.
	sendDelay = time.Second
)

// TelegramClient delivers report text to one chat via the Bot API.
type TelegramClient struct {
	httpClient *http.Client
	botToken   string
	chatID     string
}

func NewTelegramClient(botToken, chatID string) *TelegramClient {
	return &TelegramClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		botToken:   botToken,
		chatID:     chatID,
	}
}

// SendMessage posts one message to the configured chat.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", apiBaseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = form.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// SendBatch sends the messages one at a time with a fixed delay between
// them, logging and continuing on individual failures. Returns how many
// were delivered.
func (c *TelegramClient) SendBatch(ctx context.Context, messages []string) int {
	sent := 0
	for i, msg := range messages {
		if i > 0 {
			select {
			case <-ctx.Done():
				return sent
			case <-time.After(sendDelay):
			}
		}
		if err := c.SendMessage(ctx, msg); err != nil {
			log.Errorf("telegram: send failed: %v", err)
			continue
		}
		sent++
	}
	return sent
}
