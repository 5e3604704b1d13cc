// Package remote talks to the record service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/session"
)

// Sync status values mirrored from the record service protocol.
const (
	StatusSuccess      = "success"
	StatusError        = "error"
	StatusNetworkError = "network_error"
)

const defaultTimeout = 60 * time.Second

// SyncStatus is the outcome of a result submission. All non-success
// statuses are advisory: the computed summary stays valid and nothing
// is retried.
type SyncStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the submission was accepted.
func (s SyncStatus) OK() bool {
	return s.Status == StatusSuccess
}

// Client reads the word list and mistake log from the record service
// and submits session results to it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given service URL. A zero timeout
// falls back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type wordRow struct {
	ID          *int   `json:"id"`
	Headword    string `json:"headword"`
	POS         string `json:"pos"`
	Translation string `json:"translation"`
}

type statRow struct {
	WordID             *int `json:"wordId"`
	MistakeCount       int  `json:"mistakeCount"`
	ConsecutiveCorrect int  `json:"streak"`
}

// FetchWordList retrieves the vocabulary rows. Rows missing any
// required field are silently dropped; no ordering is assumed.
func (c *Client) FetchWordList(ctx context.Context) ([]model.WordEntry, error) {
	var rows []wordRow
	if err := c.get(ctx, "vocab", &rows); err != nil {
		return nil, err
	}
	var entries []model.WordEntry
	for _, row := range rows {
		if row.ID == nil || row.Headword == "" || row.POS == "" || row.Translation == "" {
			continue
		}
		entries = append(entries, model.WordEntry{
			ID:           *row.ID,
			Headword:     row.Headword,
			PartOfSpeech: row.POS,
			Translation:  row.Translation,
		})
	}
	return entries, nil
}

// FetchMistakeStats retrieves the accumulated per-word mistake log.
func (c *Client) FetchMistakeStats(ctx context.Context) ([]model.MistakeStat, error) {
	var rows []statRow
	if err := c.get(ctx, "errors", &rows); err != nil {
		return nil, err
	}
	var stats []model.MistakeStat
	for _, row := range rows {
		if row.WordID == nil {
			continue
		}
		stats = append(stats, model.MistakeStat{
			WordID:             *row.WordID,
			MistakeCount:       row.MistakeCount,
			ConsecutiveCorrect: row.ConsecutiveCorrect,
		})
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, dataType string, out any) error {
	url := fmt.Sprintf("%s?type=%s", c.baseURL, dataType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected %s status: %s", dataType, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", dataType, err)
	}
	return nil
}

type resultPayload struct {
	Summary struct {
		Score          int     `json:"score"`
		TimeSpent      float64 `json:"timeSpent"`
		TotalCorrect   int     `json:"totalCorrect"`
		TotalWords     int     `json:"totalWords"`
		Range          string  `json:"range"`
		ChoiceCount    int     `json:"choiceCount"`
		FillInCount    int     `json:"fillinCount"`
		CompletedAtISO string  `json:"completedAt"`
	} `json:"summary"`
	Mistakes []mistakeRow `json:"mistakes"`
	Correct  []int        `json:"correctIds"`
}

type mistakeRow struct {
	WordID       int    `json:"wordId"`
	Headword     string `json:"headword"`
	POS          string `json:"pos"`
	Translation  string `json:"translation"`
	UserResponse string `json:"userResponse"`
}

// SubmitResult posts a completed session. Transport and decode
// failures map to the network_error status; the caller logs and moves
// on either way.
func (c *Client) SubmitResult(ctx context.Context, res session.Result) SyncStatus {
	var payload resultPayload
	payload.Summary.Score = res.Summary.ScorePercentage
	payload.Summary.TimeSpent = res.Summary.ElapsedSeconds
	payload.Summary.TotalCorrect = res.Summary.CorrectCount
	payload.Summary.TotalWords = res.Summary.TotalQuestions
	payload.Summary.Range = fmt.Sprintf("%d-%d", res.Summary.RangeStart, res.Summary.RangeEnd)
	payload.Summary.ChoiceCount = res.Summary.TypeBreakdown.MultipleChoice
	payload.Summary.FillInCount = res.Summary.TypeBreakdown.FillIn
	payload.Summary.CompletedAtISO = res.Summary.CompletedAt.Format(time.RFC3339)
	for _, m := range res.Mistakes {
		payload.Mistakes = append(payload.Mistakes, mistakeRow{
			WordID:       m.WordID,
			Headword:     m.Headword,
			POS:          m.PartOfSpeech,
			Translation:  m.Translation,
			UserResponse: m.UserResponse,
		})
	}
	payload.Correct = res.CorrectIDs

	body, err := json.Marshal(payload)
	if err != nil {
		return SyncStatus{Status: StatusNetworkError, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return SyncStatus{Status: StatusNetworkError, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SyncStatus{Status: StatusNetworkError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var status SyncStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return SyncStatus{Status: StatusNetworkError, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if status.Status == "" {
		status.Status = StatusError
		status.Message = fmt.Sprintf("unexpected status: %s", resp.Status)
	}
	return status
}
