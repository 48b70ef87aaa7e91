package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ostrander/smithy/internal/events"
	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/pattern"
	"github.com/ostrander/smithy/internal/registry"
	"github.com/ostrander/smithy/internal/testutil"
)

func snippet(name, label, description, category string) string {
	return fmt.Sprintf(`class %s implements INode {
    constructor() {
        this.label = '%s'
        this.description = '%s'
        this.category = '%s'
    }
}
`, name, label, description, category)
}

// testIndexEnv sets up a registry, an indexed pattern engine with a fake
// embedder, and the index router.
func testIndexEnv(t *testing.T, authToken string) (*registry.Store, http.Handler) {
	t.Helper()

	reg := testutil.TestRegistry(t)
	corpus := testutil.TestCorpus(t, map[string]string{
		"Calculator.ts": snippet("Calculator", "Calculator", "math operations", "utilities"),
		"Weather.ts":    snippet("Weather", "Weather", "weather forecast", "data"),
	})
	eng := pattern.NewEngine(corpus, testutil.TestPatternStore(t), &testutil.FakeEmbedder{}, nil)
	if _, err := eng.Index(context.Background(), false); err != nil {
		t.Fatalf("Index: %v", err)
	}

	broker := events.NewBroker()
	t.Cleanup(broker.Close)

	h := NewIndexHandler(reg, eng, broker)
	return reg, NewIndexRouter(h, authToken != "", authToken)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestComponentLifecycle(t *testing.T) {
	_, router := testIndexEnv(t, "")

	// Register.
	w := doJSON(t, router, http.MethodPost, "/api/components/register", map[string]any{
		"name":              "WeatherFetcher",
		"display_name":      "Weather Fetcher",
		"description":       "fetches weather",
		"category":          "utilities",
		"code_size":         420,
		"validation_passed": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d, body = %s", w.Code, w.Body.String())
	}
	var rec models.ComponentRecord
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.ComponentID == "" || rec.Status != "generated" || rec.Platform != "flowise" {
		t.Fatalf("record = %+v", rec)
	}

	// List contains it.
	w = doJSON(t, router, http.MethodGet, "/api/components/?category=utilities", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var list ComponentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Components) != 1 {
		t.Fatalf("list = %+v", list)
	}

	// Patch deployment status.
	w = doJSON(t, router, http.MethodPatch,
		"/api/components/"+rec.ComponentID+"/deployment?status=deployed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	var patched map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &patched)
	if patched["deployment_status"] != "deployed" {
		t.Errorf("patch body = %v", patched)
	}

	// Get reflects the update.
	w = doJSON(t, router, http.MethodGet, "/api/components/"+rec.ComponentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var got models.ComponentRecord
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.DeploymentStatus == nil || *got.DeploymentStatus != "deployed" {
		t.Errorf("deployment_status = %v", got.DeploymentStatus)
	}

	// Lookup by name.
	w = doJSON(t, router, http.MethodGet, "/api/components/name/WeatherFetcher", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get by name = %d", w.Code)
	}

	// Delete, then 404.
	w = doJSON(t, router, http.MethodDelete, "/api/components/"+rec.ComponentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/components/"+rec.ComponentID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, router := testIndexEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/components/register", map[string]any{
		"display_name": "No Name",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["message"]; !ok {
		t.Errorf("error body should use the message field: %s", w.Body.String())
	}
}

func TestDeploymentStatusRejected(t *testing.T) {
	reg, router := testIndexEnv(t, "")
	rec, _ := reg.Register(models.ComponentRecord{Name: "X", DisplayName: "X", Category: "c"})

	w := doJSON(t, router, http.MethodPatch,
		"/api/components/"+rec.ComponentID+"/deployment?status=sideways", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch,
		"/api/components/missing/deployment?status=pending", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing id = %d, want 404", w.Code)
	}
}

func TestPatternSearchEndpoint(t *testing.T) {
	_, router := testIndexEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/patterns/search", map[string]any{
		"query":     "math operations",
		"n_results": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PatternSearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("results = %+v", resp.Results)
	}

	// Empty query is a validation error.
	w = doJSON(t, router, http.MethodPost, "/api/patterns/search", map[string]any{"query": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", w.Code)
	}
}

func TestSimilarPatternsEndpoint(t *testing.T) {
	_, router := testIndexEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/patterns/similar", map[string]any{
		"description": "weather forecast component",
		"category":    "data",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("similar = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PatternSearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	for _, r := range resp.Results {
		if r.Category != "data" {
			t.Errorf("result outside category filter: %+v", r)
		}
	}
}

func TestPatternByNameAndStats(t *testing.T) {
	_, router := testIndexEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/api/patterns/Calculator", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get pattern = %d", w.Code)
	}
	var doc models.PatternDocument
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Label != "Calculator" {
		t.Errorf("doc = %+v", doc)
	}

	w = doJSON(t, router, http.MethodGet, "/api/patterns/Nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing pattern = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/patterns/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d", w.Code)
	}
	var stats models.PatternStats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalDocuments != 2 || !stats.EmbeddingPresent {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReindexEndpoint(t *testing.T) {
	_, router := testIndexEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/patterns/index", map[string]any{
		"force_reindex": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reindex = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["indexed_count"].(float64) != 2 || body["forced"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, router := testIndexEnv(t, "secret")

	// Health works without credentials even in token mode.
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	var body struct {
		Status   string               `json:"status"`
		Registry models.RegistryStats `json:"registry"`
		Patterns models.PatternStats  `json:"patterns"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Status != "healthy" || body.Patterns.TotalDocuments != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	_, router := testIndexEnv(t, "secret")

	w := doJSON(t, router, http.MethodGet, "/api/components/", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/components/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token = %d, want 200", rec.Code)
	}
}
