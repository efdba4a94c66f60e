package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nagatech/daily_audit/config"
	"github.com/nagatech/daily_audit/docstore"
	"github.com/nagatech/daily_audit/models"
	"github.com/nagatech/daily_audit/models/reports"
	"github.com/nagatech/daily_audit/workflow"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestServer(t *testing.T, store docstore.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("AUDIT_SINKS", "file")
	t.Setenv("AUDIT_MODULES", "")
	app := &auditServer{
		settings: &config.Settings{LogDir: t.TempDir(), EncKey: config.DefaultEncKey, Timezone: "UTC"},
		store:    store,
		logger:   config.GetLogger(),
		now:      func() time.Time { return time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC) },
	}
	return app.router()
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestServer_Healthz(t *testing.T) {
	r := newTestServer(t, nil)
	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestServer_RunWithoutStoreIsUnavailable(t *testing.T) {
	r := newTestServer(t, nil)
	if w := do(r, http.MethodPost, "/audits/run", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestServer_RunWhileDateLockedIsConflict(t *testing.T) {
	r := newTestServer(t, docstore.NewMemoryStore())
	release, err := workflow.AcquireAuditLock(context.Background(), nil, "2024-04-30", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()

	if w := do(r, http.MethodPost, "/audits/run", `{"date":"2024-04-30"}`); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while another run holds the date, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_RunThenReadBack(t *testing.T) {
	store := docstore.NewMemoryStore()
	if err := store.Insert(models.CollectionItems,
		bson.M{"kode_barcode": "N1", "kode_group": "CIN", "tgl_last_beli": "2024-05-01"},
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	r := newTestServer(t, store)

	w := do(r, http.MethodPost, "/audits/run", `{"date":"2024-05-01"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("run: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result workflow.AuditResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Summary.Total != 1 || result.Run.AuditDate != "2024-05-01" {
		t.Fatalf("unexpected result %+v", result)
	}

	w = do(r, http.MethodGet, "/audits/2024-05-01/summary", "")
	var summary models.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil || w.Code != http.StatusOK {
		t.Fatalf("summary: %d %v", w.Code, err)
	}
	if summary.Counts[models.DomainStockAddition] != 1 || summary.Total != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	w = do(r, http.MethodGet, "/audits/2024-05-01/mismatches?domain="+models.DomainStockAddition, "")
	var list []models.Mismatch
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("mismatches: %d %v %s", w.Code, err, w.Body.String())
	}

	w = do(r, http.MethodGet, "/audits/2024-05-01/report.xlsx", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != reports.ContentType || w.Body.Len() == 0 {
		t.Fatalf("report: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestServer_RejectsBadInput(t *testing.T) {
	r := newTestServer(t, docstore.NewMemoryStore())
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/audits/01-05-2024/summary", "", http.StatusBadRequest},
		{http.MethodGet, "/audits/2024-05-01/mismatches?domain=../secret", "", http.StatusBadRequest},
		{http.MethodPost, "/audits/run", `{"date":"yesterday"}`, http.StatusBadRequest},
		{http.MethodGet, "/audits/2024-05-02/summary", "", http.StatusNotFound},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		if w := do(r, tc.method, tc.path, tc.body); w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, w.Code)
		}
	}
}
