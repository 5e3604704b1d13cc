package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/session"
)

func TestFetchWordListDropsIncompleteRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "vocab" {
			t.Fatalf("unexpected type query: %q", r.URL.Query().Get("type"))
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "headword": "abate", "pos": "v.", "translation": "reduce"},
			{"headword": "abhor", "pos": "v.", "translation": "detest"},
			{"id": 3, "headword": "", "pos": "v.", "translation": "renounce"},
			{"id": 4, "headword": "abridge", "pos": "v.", "translation": "shorten"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	entries, err := client.FetchWordList(context.Background())
	if err != nil {
		t.Fatalf("fetch word list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 usable entries, got %d", len(entries))
	}
	if entries[0].ID != 1 || entries[1].ID != 4 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestFetchWordListServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.FetchWordList(context.Background()); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestFetchMistakeStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "errors" {
			t.Fatalf("unexpected type query: %q", r.URL.Query().Get("type"))
		}
		_, _ = w.Write([]byte(`[
			{"wordId": 7, "mistakeCount": 3, "streak": 0},
			{"mistakeCount": 9},
			{"wordId": 9, "mistakeCount": 1, "streak": 2}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	stats, err := client.FetchMistakeStats(context.Background())
	if err != nil {
		t.Fatalf("fetch mistake stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if stats[0].WordID != 7 || stats[0].MistakeCount != 3 {
		t.Fatalf("unexpected first stat: %+v", stats[0])
	}
	if stats[1].ConsecutiveCorrect != 2 {
		t.Fatalf("unexpected streak: %+v", stats[1])
	}
}

func testSessionResult() session.Result {
	return session.Result{
		Summary: model.SessionSummary{
			StartedAt:       time.Unix(1700000000, 0).UTC(),
			CompletedAt:     time.Unix(1700000120, 0).UTC(),
			TotalQuestions:  10,
			CorrectCount:    8,
			ScorePercentage: 80,
			ElapsedSeconds:  120,
			TypeBreakdown:   model.TypeBreakdown{MultipleChoice: 7, FillIn: 3},
			RangeStart:      1,
			RangeEnd:        50,
		},
		Mistakes: []model.MistakeRecord{
			{WordID: 2, Headword: "abhor", PartOfSpeech: "v.", Translation: "detest", UserResponse: "reduce"},
		},
		CorrectIDs: []int{1, 3, 4, 5, 6, 7, 8, 9},
	}
}

func TestSubmitResultSuccess(t *testing.T) {
	var received resultPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	status := client.SubmitResult(context.Background(), testSessionResult())
	if !status.OK() {
		t.Fatalf("expected success, got %+v", status)
	}
	if received.Summary.Score != 80 || received.Summary.TotalWords != 10 {
		t.Fatalf("unexpected summary payload: %+v", received.Summary)
	}
	if received.Summary.Range != "1-50" {
		t.Fatalf("unexpected range: %q", received.Summary.Range)
	}
	if len(received.Mistakes) != 1 || received.Mistakes[0].UserResponse != "reduce" {
		t.Fatalf("unexpected mistakes payload: %+v", received.Mistakes)
	}
	if len(received.Correct) != 8 {
		t.Fatalf("unexpected correct ids: %v", received.Correct)
	}
}

func TestSubmitResultServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "message": "sheet full"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	status := client.SubmitResult(context.Background(), testSessionResult())
	if status.OK() {
		t.Fatalf("expected non-success status")
	}
	if status.Status != StatusError || status.Message != "sheet full" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSubmitResultNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	status := client.SubmitResult(context.Background(), testSessionResult())
	if status.Status != StatusNetworkError {
		t.Fatalf("expected network_error, got %+v", status)
	}
}

func TestSubmitResultMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	status := client.SubmitResult(context.Background(), testSessionResult())
	if status.Status != StatusNetworkError {
		t.Fatalf("expected network_error for malformed body, got %+v", status)
	}
}

func TestSubmitResultEmptyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	status := client.SubmitResult(context.Background(), testSessionResult())
	if status.Status != StatusError {
		t.Fatalf("expected error status for empty response, got %+v", status)
	}
}
