package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"order-bot/internal/bot"
	"order-bot/internal/cache"
	"order-bot/internal/domain"
	"order-bot/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type dispatched struct {
	persona domain.Persona
	event   bot.Event
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, persona domain.Persona, ev bot.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatched{persona: persona, event: ev})
	return f.err
}

func newTestRouter(t *testing.T, dispatcher Dispatcher, dedup cache.UpdateDeduplicator, mw ...func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	h := NewWebhookHandler(dispatcher, dedup, zap.NewNop())
	r.Get("/", h.Status)
	h.RegisterRoutes(r, mw...)
	return r
}

func post(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

const textUpdate = `{"update_id":1001,"message":{"message_id":5,"date":1700000000,"chat":{"id":42,"type":"private"},"text":"Fastfood"}}`

func TestWebhook_Status(t *testing.T) {
	handler := newTestRouter(t, &fakeDispatcher{}, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || w.Body.String() != StatusText {
		t.Errorf("unexpected status page %d %q", w.Code, w.Body.String())
	}
}

func TestWebhook_RoutesEachPersona(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := newTestRouter(t, dispatcher, nil)

	for _, persona := range domain.Personas {
		w := post(handler, WebhookPath(persona), textUpdate)
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("%s: expected 200 OK, got %d %q", persona, w.Code, w.Body.String())
		}
	}

	if len(dispatcher.calls) != len(domain.Personas) {
		t.Fatalf("expected %d dispatches, got %d", len(domain.Personas), len(dispatcher.calls))
	}
	for i, persona := range domain.Personas {
		call := dispatcher.calls[i]
		if call.persona != persona {
			t.Errorf("call %d: expected persona %s, got %s", i, persona, call.persona)
		}
		if call.event != bot.TextEvent(42, "Fastfood") {
			t.Errorf("call %d: unexpected event %+v", i, call.event)
		}
	}
}

func TestWebhook_CallbackUpdate(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := newTestRouter(t, dispatcher, nil)

	body := `{"update_id":7,"callback_query":{"id":"cb-9","from":{"id":42,"is_bot":false,"first_name":"Alice"},` +
		`"message":{"message_id":3,"date":1700000000,"chat":{"id":42,"type":"private"}},"data":"add_P1"}}`

	if w := post(handler, "/client", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := bot.ActionEvent(42, "cb-9", bot.AddToCart{ProductID: "P1"})
	if dispatcher.calls[0].event != want {
		t.Errorf("expected %+v, got %+v", want, dispatcher.calls[0].event)
	}
}

func TestWebhook_IgnoredUpdateIsAcknowledged(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := newTestRouter(t, dispatcher, nil)

	body := `{"update_id":8,"callback_query":{"id":"cb","from":{"id":1,"is_bot":false,"first_name":"A"},"data":"bogus"}}`
	if w := post(handler, "/client", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(dispatcher.calls) != 0 {
		t.Error("expected unknown payload to be dropped")
	}
}

func TestWebhook_InvalidPayloads(t *testing.T) {
	handler := newTestRouter(t, &fakeDispatcher{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"update_id":`},
		{"missing update id", `{"message":{"chat":{"id":1},"text":"x"}}`},
		{"negative update id", `{"update_id":-4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(handler, "/admin", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}

			var response middleware.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil || response.Error.Code == "" {
				t.Errorf("expected structured error body, got %q", w.Body.String())
			}
		})
	}
}

func TestWebhook_DispatchFailureReturns500(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("mongo: connection reset")}
	handler := newTestRouter(t, dispatcher, nil)

	w := post(handler, "/client", textUpdate)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var response middleware.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if strings.Contains(response.Error.Message, "mongo") {
		t.Error("internal error details must not leak")
	}
}

func newDedup(t *testing.T) cache.UpdateDeduplicator {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisDeduplicator(client, time.Hour)
}

func TestWebhook_RedeliveredUpdateRunsOnce(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := newTestRouter(t, dispatcher, newDedup(t))

	for i := 0; i < 3; i++ {
		if w := post(handler, "/client", textUpdate); w.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if len(dispatcher.calls) != 1 {
		t.Errorf("expected one dispatch, got %d", len(dispatcher.calls))
	}

	// Same update id on another bot is a different update
	post(handler, "/delivery", textUpdate)
	if len(dispatcher.calls) != 2 {
		t.Errorf("expected delivery bot update to dispatch, got %d", len(dispatcher.calls))
	}
}

func TestWebhook_FailedUpdateIsRetried(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("timeout")}
	handler := newTestRouter(t, dispatcher, newDedup(t))

	if w := post(handler, "/client", textUpdate); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	dispatcher.err = nil
	if w := post(handler, "/client", textUpdate); w.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", w.Code)
	}
	if len(dispatcher.calls) != 2 {
		t.Errorf("expected the retry to dispatch again, got %d calls", len(dispatcher.calls))
	}
}

func TestWebhook_SecretMiddlewareGuardsWebhooksOnly(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := newTestRouter(t, dispatcher, nil, middleware.WebhookSecretMiddleware("s3cret", zap.NewNop()))

	if w := post(handler, "/client", textUpdate); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without secret, got %d", w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected status page to stay public, got %d", w.Code)
	}
}

// Any positive update id with a text message reaches the router exactly once
func TestProperty_TextUpdatesDispatchOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid text updates are dispatched once", prop.ForAll(
		func(updateID int, chatID int64, text string) bool {
			dispatcher := &fakeDispatcher{}
			handler := newTestRouter(t, dispatcher, nil)

			payload, _ := json.Marshal(map[string]interface{}{
				"update_id": updateID,
				"message": map[string]interface{}{
					"message_id": 1,
					"date":       1700000000,
					"chat":       map[string]interface{}{"id": chatID, "type": "private"},
					"text":       text,
				},
			})

			w := post(handler, "/client", string(payload))
			if w.Code != http.StatusOK || len(dispatcher.calls) != 1 {
				return false
			}
			return dispatcher.calls[0].event == bot.TextEvent(chatID, text)
		},
		gen.IntRange(1, 1<<30),
		gen.Int64Range(1, 1<<40),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
