package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/phylonetworks/reticula/pkg/pipeline"
	"github.com/phylonetworks/reticula/pkg/runstore"
)

const (
	testTree    = "((A:1,B:1):1,((C:1,D:1):1,(E:1,F:1):1):1);"
	testNetwork = "((A:1,((B1:1,B2:1):1)#H1:1::0.6):1,(#H1:1::0.4,C:1):1,D:1);"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, runstore.NewMemoryStore(), logger)
	return NewServer(runner, logger)
}

// doJSON posts v as a JSON body and returns the recorded response.
func doJSON(t *testing.T, srv *Server, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/validate", networkRequest{Newick: testNetwork})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	resp := decodeBody[networkResponse](t, w)
	if resp.Taxa != 5 || resp.Hybrids != 1 {
		t.Errorf("validate = %d taxa, %d hybrids, want 5, 1", resp.Taxa, resp.Hybrids)
	}
	if resp.Newick == "" {
		t.Error("validate should echo the canonical newick")
	}
}

func TestValidate_BadNewick(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/validate", networkRequest{Newick: "((A,B);"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeBody[errorResponse](t, w)
	if resp.Code != "INVALID_NEWICK" {
		t.Errorf("code = %s, want INVALID_NEWICK", resp.Code)
	}
}

func TestMove_CountOnly(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/moves", moveRequest{Newick: testTree, Edge: 5})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	resp := decodeBody[moveResponse](t, w)
	if resp.Count != 8 {
		t.Errorf("count = %d, want 8", resp.Count)
	}
	if resp.Applied {
		t.Error("count query should not apply a move")
	}
}

func TestMove_Apply(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/moves", moveRequest{
		Newick: testNetwork,
		Edge:   4,
		Index:  1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	resp := decodeBody[moveResponse](t, w)
	if !resp.Applied {
		t.Error("move should be applied")
	}
	if resp.Newick == testNetwork {
		t.Error("applied move should change the topology")
	}
}

func TestMove_Rejected(t *testing.T) {
	srv := newTestServer(t)

	// The root edge of the tree has a degree-2 endpoint, so no move exists.
	w := doJSON(t, srv, http.MethodPost, "/api/moves", moveRequest{
		Newick: testTree,
		Edge:   1,
		Index:  1,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	resp := decodeBody[errorResponse](t, w)
	if resp.Code != "MOVE_REJECTED" {
		t.Errorf("code = %s, want MOVE_REJECTED", resp.Code)
	}
}

func TestMove_UnknownEdge(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/moves", moveRequest{Newick: testTree, Edge: 99})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchAndRunLifecycle(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/search", map[string]any{
		"newick":    testNetwork,
		"max_moves": 10,
		"seed":      5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body %s", w.Code, w.Body)
	}
	search := decodeBody[searchResponse](t, w)
	if search.RunID == "" {
		t.Fatal("search should return a run id")
	}
	if search.Stats.Steps != 10 {
		t.Errorf("steps = %d, want 10", search.Stats.Steps)
	}

	// The run is retrievable.
	w = doJSON(t, srv, http.MethodGet, "/api/runs/"+search.RunID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get run status = %d", w.Code)
	}
	run := decodeBody[runstore.Run](t, w)
	if run.BestNewick != search.BestNewick {
		t.Errorf("stored BestNewick = %q, want %q", run.BestNewick, search.BestNewick)
	}

	// And listed.
	w = doJSON(t, srv, http.MethodGet, "/api/runs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list runs status = %d", w.Code)
	}
	runs := decodeBody[[]runstore.Run](t, w)
	if len(runs) != 1 {
		t.Errorf("list runs = %d entries, want 1", len(runs))
	}

	// Delete, then 404.
	w = doJSON(t, srv, http.MethodDelete, "/api/runs/"+search.RunID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete run status = %d, want 204", w.Code)
	}
	w = doJSON(t, srv, http.MethodGet, "/api/runs/"+search.RunID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted run status = %d, want 404", w.Code)
	}
}

func TestGetRun_BadID(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/runs/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRender_DOT(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/render", renderRequest{
		Newick: testNetwork,
		Format: "dot",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %s, want text/vnd.graphviz", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("digraph")) {
		t.Error("render should emit DOT source")
	}
}

func TestRender_BadFormat(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/render", renderRequest{
		Newick: testTree,
		Format: "jpeg",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
