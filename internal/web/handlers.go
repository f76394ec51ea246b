package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phylonetworks/reticula/pkg/errors"
	"github.com/phylonetworks/reticula/pkg/newick"
	"github.com/phylonetworks/reticula/pkg/phylo/move"
	"github.com/phylonetworks/reticula/pkg/pipeline"
	"github.com/phylonetworks/reticula/pkg/runstore"
)

type networkRequest struct {
	Newick string `json:"newick"`
}

type networkResponse struct {
	Newick  string `json:"newick"`
	Taxa    int    `json:"taxa"`
	Hybrids int    `json:"hybrids"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

type moveRequest struct {
	Newick             string                    `json:"newick"`
	Edge               int                       `json:"edge"`
	Index              int                       `json:"index,omitempty"` // 0 reports the candidate count without applying
	Allow3Cycles       bool                      `json:"allow_3cycles,omitempty"`
	AllowHybridLadders bool                      `json:"allow_hybrid_ladders,omitempty"`
	Constraints        []pipeline.ConstraintSpec `json:"constraints,omitempty"`
}

type moveResponse struct {
	Newick  string `json:"newick"`
	Count   int    `json:"count"`
	Applied bool   `json:"applied"`
	Flipped bool   `json:"flipped,omitempty"`
}

type renderRequest struct {
	Newick   string `json:"newick"`
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

type searchResponse struct {
	RunID      string         `json:"run_id"`
	BestNewick string         `json:"best_newick"`
	BestScore  float64        `json:"best_score"`
	Stats      pipeline.Stats `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleValidate parses the posted network and verifies the search
// preconditions without mutating anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if !s.decode(w, r, &req) {
		return
	}

	g, err := newick.Parse(req.Newick)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidNewick, err, "parse network"))
		return
	}
	if err := g.CheckNetwork(); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "check network"))
		return
	}

	canonical, err := newick.Write(g)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize network"))
		return
	}

	writeJSON(w, http.StatusOK, networkResponse{
		Newick:  canonical,
		Taxa:    len(g.Leaves()),
		Hybrids: len(g.Hybrids()),
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	})
}

// handleMove applies one rearrangement to the posted network and returns the
// resulting topology. Index zero reports the candidate count only.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}

	g, err := newick.Parse(req.Newick)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidNewick, err, "parse network"))
		return
	}
	focus, ok := g.Edge(req.Edge)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "no edge numbered %d", req.Edge))
		return
	}

	count := move.Count(focus)
	if req.Index == 0 {
		writeJSON(w, http.StatusOK, moveResponse{Newick: req.Newick, Count: count})
		return
	}

	cs, err := pipeline.BuildConstraints(g, req.Constraints)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "build constraints"))
		return
	}

	opts := move.Options{
		No3Cycle:       !req.Allow3Cycles,
		NoHybridLadder: !req.AllowHybridLadders,
	}
	m, err := move.Apply(g, focus, req.Index, opts)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeMoveRejected, err, "apply move"))
		return
	}
	if len(cs) > 0 {
		violated := false
		for _, c := range cs {
			if c.Violated(g) {
				violated = true
				break
			}
		}
		if violated {
			if err := m.Undo(); err != nil {
				s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "undo move"))
				return
			}
			s.writeError(w, errors.New(errors.ErrCodeMoveRejected, "move breaks a constraint"))
			return
		}
	}

	out, err := newick.Write(g)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize network"))
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{
		Newick:  out,
		Count:   count,
		Applied: true,
		Flipped: m.Flipped(),
	})
}

// handleSearch runs the full search pipeline on the posted options.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "run search"))
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		RunID:      result.Run.ID,
		BestNewick: result.BestNewick,
		BestScore:  result.BestScore,
		Stats:      result.Stats,
	})
}

// handleRender returns a figure of the posted network.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "validate format"))
		return
	}

	g, err := newick.Parse(req.Newick)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidNewick, err, "parse network"))
		return
	}

	data, err := s.runner.Render(r.Context(), g, pipeline.Options{
		Format:   req.Format,
		Detailed: req.Detailed,
	})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render figure"))
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleListRuns returns all stored runs, most recent first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runner.Store.List(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "list runs"))
		return
	}
	if runs == nil {
		runs = []*runstore.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one stored run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRunID(id); err != nil {
		s.writeError(w, err)
		return
	}

	run, err := s.runner.Store.Get(r.Context(), id)
	if err != nil {
		code := errors.ErrCodeStorage
		if stderrors.Is(err, runstore.ErrNotFound) {
			code = errors.ErrCodeRunNotFound
		}
		s.writeError(w, errors.Wrap(code, err, "run %s", id))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleDeleteRun removes one stored run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRunID(id); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.runner.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "delete run %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v, writing an error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

// statusForCode maps error codes onto HTTP status codes.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNewick, errors.ErrCodeInvalidNetwork,
		errors.ErrCodeInvalidTaxon, errors.ErrCodeInvalidConstraint, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeRunNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMoveRejected, errors.ErrCodeMoveExhausted:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
