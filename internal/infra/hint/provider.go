// Package hint talks to the hint endpoint that proxies the LLM backend.
// Its contract with the core is that a hint lookup never fails: any error is
// mapped to a fixed user-safe fallback string.
package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fallback is returned whenever the hint backend is unreachable, errors, or
// answers with a blank hint.
const Fallback = "Sorry, I couldn't get a hint for you right now."

// HTTPProvider posts the question text to a hint endpoint and returns the
// hint string from its JSON response.
type HTTPProvider struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

func NewHTTPProvider(url string, timeout time.Duration, log zerolog.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type hintRequest struct {
	QuestionText string `json:"questionText"`
}

type hintResponse struct {
	Hint string `json:"hint"`
}

// FetchHint resolves a hint for the question, degrading to Fallback on any
// failure so callers never see an error.
func (p *HTTPProvider) FetchHint(ctx context.Context, questionText string) string {
	body, err := json.Marshal(hintRequest{QuestionText: questionText})
	if err != nil {
		return Fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Fallback
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Msg("hint fetch failed")
		return Fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Warn().Int("status", resp.StatusCode).Msg("hint endpoint returned non-OK status")
		return Fallback
	}

	var payload hintResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.log.Warn().Err(err).Msg("hint response decode failed")
		return Fallback
	}
	hint := strings.TrimSpace(payload.Hint)
	if hint == "" {
		return Fallback
	}
	return hint
}

// StaticProvider serves canned hints; unknown questions get the fallback.
// Useful for tests and offline runs.
type StaticProvider struct {
	hints map[string]string
}

func NewStaticProvider(hints map[string]string) *StaticProvider {
	return &StaticProvider{hints: hints}
}

func (p *StaticProvider) FetchHint(_ context.Context, questionText string) string {
	if hint, ok := p.hints[questionText]; ok {
		return hint
	}
	return Fallback
}
