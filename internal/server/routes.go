package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/router"
	"github.com/sinner-cli/sinner/internal/store"
)

// Error kinds carried in the "kind" field of error bodies.
const (
	KindUnsupported = "unsupported"
	KindUnavailable = "unavailable"
	KindTimeout     = "timeout"
	KindProtocol    = "protocol"
	KindBadRequest  = "bad_request"
	KindInternal    = "internal"
)

// RunRequest is the body of POST /api/run/{command}.
type RunRequest struct {
	Input   string            `json:"input"`
	Options map[string]string `json:"options,omitempty"`
}

// RunResponse is a successful run.
type RunResponse struct {
	Command    string `json:"command"`
	Output     string `json:"output"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind"`
	Supported  []string `json:"supported,omitempty"`
	StatusCode int      `json:"upstream_status,omitempty"`
}

type commandInfo struct {
	Name         string  `json:"name"`
	Temperature  float64 `json:"temperature"`
	Shape        string  `json:"shape"`
	SplitCommits bool    `json:"split_commits"`
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	routes := router.Routes()
	out := make([]commandInfo, len(routes))
	for i, rt := range routes {
		out[i] = commandInfo{
			Name:         string(rt.Command),
			Temperature:  rt.Temperature,
			Shape:        rt.Shape.String(),
			SplitCommits: rt.SplitCommits,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": out})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	if unescaped, err := url.PathUnescape(command); err == nil {
		command = unescaped
	}

	var req RunRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json", Kind: KindBadRequest})
		return
	}

	res, err := s.runner.Execute(r.Context(), router.Command(command), req.Input, req.Options)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.log.Warn("run failed", zap.String("command", command), zap.Error(err))
		}
		writeJSON(w, status, body)
		return
	}

	if err := s.db.Record(string(res.Command), req.Input, res.Output, res.Provider, res.Model,
		res.Route.Temperature, res.Duration); err != nil {
		s.log.Warn("record generation", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Command:    string(res.Command),
		Output:     res.Output,
		Provider:   res.Provider,
		Model:      res.Model,
		DurationMs: res.Duration.Milliseconds(),
	})
}

// errorResponse maps a run error to an HTTP status and body.
func errorResponse(err error) (int, ErrorResponse) {
	var (
		unsupported *router.UnsupportedCommandError
		unavailable *llm.UnavailableError
		timedOut    *llm.TimeoutError
		protocol    *llm.ProtocolError
	)
	switch {
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: KindUnsupported, Supported: unsupported.Supported}
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Kind: KindUnavailable}
	case errors.As(err, &timedOut):
		return http.StatusGatewayTimeout, ErrorResponse{Error: err.Error(), Kind: KindTimeout}
	case errors.As(err, &protocol):
		return http.StatusBadGateway, ErrorResponse{Error: err.Error(), Kind: KindProtocol, StatusCode: protocol.StatusCode}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: KindInternal}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer", Kind: KindBadRequest})
			return
		}
		limit = min(n, 500)
	}

	gens := []store.Generation{}
	if s.db != nil {
		var err error
		gens, err = s.db.RecentGenerations(limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: KindInternal})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"generations": gens})
}
