package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/copperline/accounts-service/internal/ports"
)

func TestResendSenderSend(t *testing.T) {
	t.Parallel()

	var got resendRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	sender := NewResendSender("test-api-key", "no-reply@accounts.local", srv.URL)
	err := sender.Send(context.Background(), ports.MailMessage{
		To:      "ada@example.com",
		Subject: "Password Reset Request",
		HTML:    "<p>reset</p>",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if gotAuth != "Bearer test-api-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if got.From != "no-reply@accounts.local" {
		t.Fatalf("unexpected from: %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "ada@example.com" {
		t.Fatalf("unexpected to: %v", got.To)
	}
	if got.Subject != "Password Reset Request" || got.HTML != "<p>reset</p>" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestResendSenderErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	sender := NewResendSender("test-api-key", "bogus", srv.URL)
	err := sender.Send(context.Background(), ports.MailMessage{To: "ada@example.com"})
	if err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	t.Parallel()

	sender := NewLogSender(nil)
	if err := sender.Send(context.Background(), ports.MailMessage{
		To:      "ada@example.com",
		Subject: "Password Reset Request",
		HTML:    "<p>reset</p>",
	}); err != nil {
		t.Fatalf("log sender should not fail: %v", err)
	}
}
