package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"totem-quiz-bot/internal/app"
	"totem-quiz-bot/internal/domain"
)

type captureDispatcher struct {
	mu  sync.Mutex
	got []domain.Update
}

func (d *captureDispatcher) Dispatch(_ context.Context, upd domain.Update) {
	d.mu.Lock()
	d.got = append(d.got, upd)
	d.mu.Unlock()
}

func newTestRouter(feed *app.Feed, disp *captureDispatcher, feedToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Webhook: NewWebhookHandler("s3cret", disp, nil),
		Feed:    NewFeedHandler(feed, feedToken, nil),
	})
}

const quizCommand = `{"update_id":9,"message":{"message_id":1,"from":{"id":7,"first_name":"Alice"},"chat":{"id":7},
	"text":"/quiz","entities":[{"type":"bot_command","offset":0,"length":5}]}}`

func TestHealthz(t *testing.T) {
	r := newTestRouter(app.NewFeed(), &captureDispatcher{}, "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		body     string
		want     int
		dispatch int
	}{
		{"wrong secret", "nope", quizCommand, http.StatusUnauthorized, 0},
		{"bad payload", "s3cret", "{", http.StatusBadRequest, 0},
		{"unsupported update", "s3cret", `{"update_id":10}`, http.StatusOK, 0},
		{"command", "s3cret", quizCommand, http.StatusOK, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := &captureDispatcher{}
			r := newTestRouter(app.NewFeed(), disp, "")

			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(secretHeader, tt.secret)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d", rec.Code, tt.want)
			}
			if len(disp.got) != tt.dispatch {
				t.Fatalf("dispatched %d, want %d", len(disp.got), tt.dispatch)
			}
			if tt.dispatch == 1 && disp.got[0].Command != "quiz" {
				t.Fatalf("unexpected update %+v", disp.got[0])
			}
		})
	}
}

func TestFeedRequiresToken(t *testing.T) {
	r := newTestRouter(app.NewFeed(), &captureDispatcher{}, "ops")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ops/feed?token=wrong", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestFeedStreamsNotifications(t *testing.T) {
	feed := app.NewFeed()
	server := httptest.NewServer(newTestRouter(feed, &captureDispatcher{}, "ops"))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ops/feed?token=ops"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "subscribed")

	feed.Publish(app.Notification{ID: "n1", Kind: app.NotificationContact, Text: "📩 Guardianship request"})
	_, payload := readNext(conn, t, "notification")
	if payload["id"] != "n1" || payload["kind"] != "contact" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	readNext(conn, t, "pong")

	if err := conn.WriteJSON(map[string]string{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
