package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/regalloc/pkg/buildinfo"
	"github.com/matzehuels/regalloc/pkg/errors"
	"github.com/matzehuels/regalloc/pkg/pipeline"
	"github.com/matzehuels/regalloc/pkg/problem"
)

// AllocateRequest is the body of POST /v1/allocate and POST /v1/geometry.
type AllocateRequest struct {
	Problem json.RawMessage  `json:"problem"`
	Options pipeline.Options `json:"options"`
}

// AllocateResponse is a successful allocation. Rendered artifacts are
// inlined as text.
type AllocateResponse struct {
	problem.Result
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// GeometryResponse describes the register classes of a valid problem.
type GeometryResponse = problem.Geometry

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Attempts  int         `json:"attempts,omitempty"`
	Remaining []string    `json:"remaining,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	req, p, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Run(r.Context(), p, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := AllocateResponse{Result: res.Result}
	if len(res.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(res.Artifacts))
		for format, data := range res.Artifacts {
			resp.Artifacts[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	_, p, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := p.Build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, in.Geometry())
}

// decodeRequest reads the request envelope and decodes the embedded problem
// with the same rules problem files follow.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*AllocateRequest, *problem.Problem, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req AllocateRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if len(req.Problem) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "request has no problem")
	}
	p, err := problem.Decode(bytes.NewReader(req.Problem), "json")
	if err != nil {
		return nil, nil, err
	}
	return &req, p, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	resp := ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	}
	var spill *errors.SpillError
	if stderrors.As(err, &spill) {
		resp.Attempts = spill.Attempts
		resp.Remaining = spill.Remaining
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", resp.RequestID)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
