// Package sheet ingests the question bank from a published spreadsheet CSV.
//
// Expected shape: a header row followed by rows of three columns -
// question text, pipe-delimited options, and the 0-based correct option
// index. Malformed rows are dropped individually; the load fails only when
// no valid rows remain.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ctg-quiz-service/internal/domain"
)

// Loader fetches and parses the bank CSV over HTTP.
type Loader struct {
	url    string
	client *http.Client
}

func NewLoader(url string, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Loader{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// LoadBank downloads the published CSV and parses it into a question bank.
func (l *Loader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build bank request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bank: unexpected status %d: %w", resp.StatusCode, domain.ErrBankUnavailable)
	}
	return ParseBank(resp.Body)
}

// ParseBank reads CSV rows into questions, skipping the header row and
// dropping rows that fail validation. Returns ErrBankUnavailable when no
// valid question survives.
func ParseBank(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows are validated per record below
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse bank csv: %w", err)
	}
	if len(rows) <= 1 {
		return nil, domain.ErrBankUnavailable
	}

	questions := make([]domain.Question, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if q, ok := parseRow(row); ok {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, domain.ErrBankUnavailable
	}
	return questions, nil
}

func parseRow(row []string) (domain.Question, bool) {
	if len(row) != 3 {
		return domain.Question{}, false
	}

	text := strings.TrimSpace(row[0])
	optionsRaw := strings.TrimSpace(row[1])
	if text == "" || optionsRaw == "" {
		return domain.Question{}, false
	}

	parts := strings.Split(optionsRaw, "|")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		options = append(options, strings.TrimSpace(part))
	}

	index, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return domain.Question{}, false
	}

	q := domain.Question{
		QuestionText:       text,
		Options:            options,
		CorrectAnswerIndex: index,
	}
	return q, q.Valid()
}
