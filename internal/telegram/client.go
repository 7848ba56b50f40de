package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
)

const DefaultAPIURL = "https://api.telegram.org"

// allowedUpdates limits delivery to the update kinds the bot decodes.
var allowedUpdates = []string{"message", "callback_query"}

// Client is a minimal Bot API client. Every failed call wraps domain.ErrPlatformRequest.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient builds a client for token; an empty apiURL selects the public Bot API.
func NewClient(token, apiURL string, log *logger.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    fmt.Sprintf("%s/bot%s", strings.TrimRight(apiURL, "/"), token),
		log:        log.With("component", "telegram"),
	}
}

func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: marshal: %w", domain.ErrPlatformRequest, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrPlatformRequest, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the bot token; keep only the cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %s: http: %w", domain.ErrPlatformRequest, method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read: %w", domain.ErrPlatformRequest, method, err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return fmt.Errorf("%w: %s: unmarshal (status %d): %w", domain.ErrPlatformRequest, method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		c.log.Debug("bot api call rejected", "method", method, "code", apiResp.ErrorCode, "description", apiResp.Description)
		return apiError(method, apiResp)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(apiResp.Result, result); err != nil {
		return fmt.Errorf("%w: %s: result: %w", domain.ErrPlatformRequest, method, err)
	}
	return nil
}

func apiError(method string, resp APIResponse) error {
	desc := resp.Description
	if resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
		desc = fmt.Sprintf("%s (retry after %ds)", desc, resp.Parameters.RetryAfter)
	}
	if strings.Contains(strings.ToLower(resp.Description), "message to delete not found") {
		return fmt.Errorf("%w: %w: %s: %d %s", domain.ErrPlatformRequest, domain.ErrMessageGone, method, resp.ErrorCode, desc)
	}
	return fmt.Errorf("%w: %s: %d %s", domain.ErrPlatformRequest, method, resp.ErrorCode, desc)
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb domain.Keyboard) (int64, error) {
	var msg MessageResult
	err := c.call(ctx, "sendMessage", SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: inlineMarkup(kb),
	}, &msg)
	return msg.MessageID, err
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb domain.Keyboard) (int64, error) {
	var msg MessageResult
	err := c.call(ctx, "sendPhoto", SendPhotoRequest{
		ChatID:      chatID,
		Photo:       photoURL,
		Caption:     caption,
		ReplyMarkup: inlineMarkup(kb),
	}, &msg)
	return msg.MessageID, err
}

func (c *Client) EditText(ctx context.Context, chatID, messageID int64, text string, kb domain.Keyboard) error {
	return c.call(ctx, "editMessageText", EditMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: inlineMarkup(kb),
	}, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", DeleteMessageRequest{ChatID: chatID, MessageID: messageID}, nil)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", AnswerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}, nil)
}

func (c *Client) Me(ctx context.Context) (domain.BotIdentity, error) {
	var u User
	if err := c.call(ctx, "getMe", struct{}{}, &u); err != nil {
		return domain.BotIdentity{}, err
	}
	return domain.BotIdentity{ID: u.ID, Username: u.Username, FirstName: u.FirstName}, nil
}

func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	return c.call(ctx, "setMyCommands", SetMyCommandsRequest{Commands: commands}, nil)
}

// GetUpdates long-polls for updates after offset, waiting up to timeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", GetUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: allowedUpdates,
	}, &updates)
	return updates, err
}

func (c *Client) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	return c.call(ctx, "setWebhook", SetWebhookRequest{
		URL:            webhookURL,
		SecretToken:    secretToken,
		AllowedUpdates: allowedUpdates,
	}, nil)
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

func inlineMarkup(kb domain.Keyboard) *InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, InlineKeyboardButton{Text: b.Text, CallbackData: b.CallbackData, URL: b.URL})
		}
		rows = append(rows, buttons)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
