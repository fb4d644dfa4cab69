package puckdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/janhofer/linemates/internal/platform/logging"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL: baseURL,
		Token:   "secret-token",
		Logger:  logging.NewNop(),
	})
}

func TestClient_GetGameEvents_DecodesFeedAndReturnsRawPayload(t *testing.T) {
	t.Parallel()

	body := `{"data":[
		{"type":"goal","player":"M. Muster","assist":"B. Keller","team_name":"EHC Adler","team_side":"home"},
		{"type":"penalty","player":"C. Weber","team_name":"EHC Adler","team_side":"home"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/g-77/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "secret-token" {
			t.Errorf("missing api token, query=%q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	events, raw, err := client.GetGameEvents(context.Background(), "g-77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got=%d", len(events))
	}
	if events[0].Player != "M. Muster" || events[0].Assist != "B. Keller" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].EventType != "penalty" || events[1].Assist != "" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if string(raw) != body {
		t.Fatalf("raw payload does not match served body")
	}
}

func TestClient_GetTeamDetails_CachesPerTeam(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"data":{"id":"t-1","name":"EHC Adler"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 3; i++ {
		details, err := client.GetTeamDetails(context.Background(), "t-1")
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if details.Name != "EHC Adler" {
			t.Fatalf("unexpected team name %q", details.Name)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single upstream hit, got=%d", got)
	}
}

func TestClient_GetTeamPlayers_SkipsNamelessEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"id":"p-1","name":"Max Muster"},
			{"id":"p-2","name":"  "},
			{"id":"p-3","name":"Beat Keller"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	players, err := client.GetTeamPlayers(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got=%d", len(players))
	}
	if players[0].Name != "Max Muster" || players[1].Name != "Beat Keller" {
		t.Fatalf("unexpected players: %+v", players)
	}
}

func TestClient_NonRetryableStatusFailsWithoutRetry(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"unknown game"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "secret-token",
		MaxRetries: 3,
		Logger:     logging.NewNop(),
	})

	if _, _, err := client.GetGameEvents(context.Background(), "g-404"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one attempt for non-retryable status, got=%d", got)
	}
}

func TestSanitizeSensitiveText_RedactsTokenEverywhere(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`dial failed url=https://api/x?api_token=secret-token: refused secret-token`, "secret-token")
	if got != `dial failed url=https://api/x?api_token=REDACTED: refused REDACTED` {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.puckdata.example/v1/teams/t-1?api_token=abc123&season=2024")
	if got != "https://api.puckdata.example/v1/teams/t-1?api_token=REDACTED&season=2024" {
		t.Fatalf("unexpected redacted url: %q", got)
	}
}
