package coach

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/model"
)

func geminiServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing api key")
		}
		body, _ := io.ReadAll(r.Body)
		var req geminiRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(status)
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newGemini(url string) *GeminiProvider {
	g := NewGeminiProvider("secret", "", "", 2*time.Second, draw.NewSource(1))
	g.BaseURL = url
	return g
}

func TestStaticProvider_ExcludesRecent(t *testing.T) {
	p := NewStaticProvider(draw.NewSource(3))
	var recent []string
	for _, inc := range staticIncentives[:len(staticIncentives)-1] {
		recent = append(recent, inc.Title)
	}
	last := staticIncentives[len(staticIncentives)-1].Title
	for i := 0; i < 20; i++ {
		got, err := p.Incentive(context.Background(), Context{}, recent)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != last {
			t.Fatalf("expected the only unseen tip %q, got %q", last, got.Title)
		}
	}
}

func TestStaticProvider_ResetsWhenExhausted(t *testing.T) {
	p := NewStaticProvider(draw.NewSource(3))
	var recent []string
	for _, c := range staticChallenges {
		recent = append(recent, c.Title)
	}
	got, err := p.Challenge(context.Background(), Context{}, recent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title == "" || got.FinancialOption == "" {
		t.Fatalf("expected a full challenge, got %+v", got)
	}
}

func TestGemini_ParsesFencedJSON(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, "```json\n{\"title\":\"Cash Envelope\",\"practicalTip\":\"Use envelopes.\",\"bingoImpact\":\"x\",\"timeImpact\":\"y\"}\n```")
	defer srv.Close()

	inc, err := newGemini(srv.URL).Incentive(context.Background(), Context{}, []string{"Old"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inc.Title != "Cash Envelope" {
		t.Fatalf("expected parsed title, got %q", inc.Title)
	}
}

func TestGemini_ChallengeDefaultsFinancialOption(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"title":"Quiz","description":"Ask five questions.","victoryCriteria":"Most right","taskOption":"Cook dinner"}`)
	defer srv.Close()

	ch, err := newGemini(srv.URL).Challenge(context.Background(), Context{P1Name: "Ana", P2Name: "Bruno"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.FinancialOption != extraDrawOption {
		t.Fatalf("expected default financial option, got %q", ch.FinancialOption)
	}
}

func TestGemini_Errors(t *testing.T) {
	srv := geminiServer(t, http.StatusInternalServerError, "{}")
	defer srv.Close()
	if _, err := newGemini(srv.URL).Incentive(context.Background(), Context{}, nil); err == nil {
		t.Fatal("expected error on HTTP 500")
	}

	bad := geminiServer(t, http.StatusOK, "not json")
	defer bad.Close()
	if _, err := newGemini(bad.URL).Challenge(context.Background(), Context{}, nil); err == nil {
		t.Fatal("expected error on malformed payload")
	}

	noKey := NewGeminiProvider("", "", "", time.Second, nil)
	if _, err := noKey.Incentive(context.Background(), Context{}, nil); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestWithFallback(t *testing.T) {
	srv := geminiServer(t, http.StatusServiceUnavailable, "{}")
	defer srv.Close()

	p := WithFallback(newGemini(srv.URL), NewStaticProvider(draw.NewSource(9)))
	inc, err := p.Incentive(context.Background(), Context{}, nil)
	if err != nil {
		t.Fatalf("fallback should hide the primary error: %v", err)
	}
	found := false
	for _, s := range staticIncentives {
		if s.Title == inc.Title {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a static tip, got %q", inc.Title)
	}
	if p.Name() != "gemini+static" {
		t.Fatalf("unexpected name %q", p.Name())
	}
}

func TestCoach_RemembersTitles(t *testing.T) {
	c := New(NewStaticProvider(draw.NewSource(5)), 3)
	seen := map[string]bool{}
	var order []string
	for i := 0; i < 3; i++ {
		inc, err := c.Tip(context.Background(), Context{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[inc.Title] {
			t.Fatalf("tip %q repeated within the recent window", inc.Title)
		}
		seen[inc.Title] = true
		order = append(order, inc.Title)
	}
	if len(c.incentives) != 3 || c.incentives[0] != order[0] {
		t.Fatalf("unexpected recent list %v", c.incentives)
	}
	if _, err := c.Tip(context.Background(), Context{}); err != nil {
		t.Fatal(err)
	}
	if len(c.incentives) != 3 || c.incentives[0] != order[1] {
		t.Fatalf("recent list should roll over, got %v", c.incentives)
	}
}

func TestContextFromState(t *testing.T) {
	st := model.GameState{
		AvailableNumbers: []int{3},
		DrawnNumbers:     []int{1, 2},
		Players:          model.Players{P1: model.Player{Name: "Ana"}, P2: model.Player{Name: "Bruno"}},
	}
	st.Settings.MaxNumber = 3
	c := ContextFromState(st)
	if c.P1Name != "Ana" || c.RemainingNumbers != 1 || c.TotalNumbers != 3 {
		t.Fatalf("unexpected context %+v", c)
	}
	if c.ProgressPercent != 0 {
		t.Fatalf("zero goal should leave progress at 0, got %.1f", c.ProgressPercent)
	}
}
