package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/pkg/logger"
)

type recordedCall struct {
	method string
	path   string
	body   string
}

func setupFakeSheets(t *testing.T) (*SheetsTracker, *[]recordedCall) {
	t.Helper()
	var mu sync.Mutex
	calls := []recordedCall{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
			w.Write([]byte(`{"values": []}`))
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"sheets": [{"properties": {"title": "Other"}}]}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	tr, err := newSheetsTracker(context.Background(),
		config.TrackerConfig{Enabled: true, SpreadsheetID: "sheet-123"},
		logger.Nop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("newSheetsTracker() error = %v", err)
	}
	return tr, &calls
}

func TestNewSheetsTrackerDisabled(t *testing.T) {
	tr, err := NewSheetsTracker(config.TrackerConfig{Enabled: false}, logger.Nop())
	if err != nil || tr != nil {
		t.Errorf("Expected nil tracker when disabled, got %v, %v", tr, err)
	}
}

func TestNewSheetsTrackerRequiresCredentials(t *testing.T) {
	if _, err := NewSheetsTracker(config.TrackerConfig{Enabled: true}, logger.Nop()); err == nil {
		t.Error("Expected error without credentials")
	}
}

func TestInitializeSheetCreatesSheetAndHeaders(t *testing.T) {
	tr, calls := setupFakeSheets(t)

	if err := tr.InitializeSheet(context.Background()); err != nil {
		t.Fatalf("InitializeSheet() error = %v", err)
	}

	var sawBatch, sawHeaders bool
	for _, c := range *calls {
		if strings.HasSuffix(c.path, ":batchUpdate") && strings.Contains(c.body, `"title":"Posts"`) {
			sawBatch = true
		}
		if c.method == http.MethodPut && strings.Contains(c.body, "Generated At") {
			sawHeaders = true
		}
	}
	if !sawBatch {
		t.Error("Expected AddSheet batch update")
	}
	if !sawHeaders {
		t.Error("Expected header row write")
	}
}

func TestTrackGeneratedAppendsRow(t *testing.T) {
	tr, calls := setupFakeSheets(t)

	err := tr.TrackGenerated(context.Background(), &models.PostRecord{
		Slug:      "wireless-earbuds",
		Title:     "Wireless Earbuds",
		Topic:     "Wireless Earbuds",
		Tags:      models.StringSlice{"audio", "guide"},
		LinkCount: 2,
	})
	if err != nil {
		t.Fatalf("TrackGenerated() error = %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(*calls))
	}
	c := (*calls)[0]
	if !strings.HasSuffix(c.path, ":append") {
		t.Errorf("Expected append call, got %s", c.path)
	}

	var payload struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.Unmarshal([]byte(c.body), &payload); err != nil {
		t.Fatalf("bad body %q: %v", c.body, err)
	}
	if len(payload.Values) != 1 || len(payload.Values[0]) != len(SheetColumns) {
		t.Fatalf("unexpected row %v", payload.Values)
	}
	if payload.Values[0][3] != "wireless-earbuds" {
		t.Errorf("slug column = %v", payload.Values[0][3])
	}
	if payload.Values[0][7] != "audio, guide" {
		t.Errorf("tags column = %v", payload.Values[0][7])
	}
}
