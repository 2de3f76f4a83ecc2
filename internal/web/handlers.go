package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/monitor"
)

const maxSourceBytes = 1 << 20

// SourceRequest is the JSON body of source updates and analyze calls
type SourceRequest struct {
	Code *string `json:"code"`
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "")
}

func (s *Server) setSource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	s.setSessionSource(r.PostForm.Get("code"))
	redirectHome(w, r)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	// the editor submits its text along with the analyze button
	if code, ok := r.PostForm["code"]; ok && len(code) > 0 && code[0] != s.session.Source() {
		s.setSessionSource(code[0])
	}

	if _, err := s.submit(r); err != nil {
		if errors.Is(err, analysis.ErrRequestInFlight) {
			s.renderPage(w, r, http.StatusConflict, err.Error())
			return
		}
		// other failures are shown through the session notice
		s.logFailure(r, err)
	}
	redirectHome(w, r)
}

func (s *Server) selectStage(w http.ResponseWriter, r *http.Request) {
	stage, ok := analysis.ParseStage(chi.URLParam(r, "stage"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.selectSessionStage(stage)
	redirectHome(w, r)
}

func (s *Server) dismissNotice(w http.ResponseWriter, r *http.Request) {
	s.session.DismissNotice()
	redirectHome(w, r)
}

func (s *Server) apiState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) apiMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) apiSetSource(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSourceRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Code == nil {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	s.setSessionSource(*req.Code)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSourceRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Code != nil && *req.Code != s.session.Source() {
		s.setSessionSource(*req.Code)
	}

	if _, err := s.submit(r); err != nil {
		s.logFailure(r, err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) apiSelectStage(w http.ResponseWriter, r *http.Request) {
	stage, ok := analysis.ParseStage(chi.URLParam(r, "stage"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown stage: "+chi.URLParam(r, "stage"))
		return
	}

	if !s.selectSessionStage(stage) && s.session.Selected() != stage {
		writeError(w, http.StatusConflict, stage.String()+" stage is not available")
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) apiDismissNotice(w http.ResponseWriter, _ *http.Request) {
	s.session.DismissNotice()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// submit runs one tracked analysis of the session source
func (s *Server) submit(r *http.Request) (*analysis.Result, error) {
	var result *analysis.Result
	err := s.metrics.Track(monitor.OperationAnalyze, func() error {
		var err error
		result, err = s.session.Submit(r.Context())
		return err
	})
	s.metrics.RecordResult(result)
	return result, err
}

func (s *Server) setSessionSource(text string) {
	_ = s.metrics.Track(monitor.OperationSourceUpdate, func() error {
		s.session.SetSource(text)
		return nil
	})
}

func (s *Server) selectSessionStage(stage analysis.Stage) bool {
	var selected bool
	_ = s.metrics.Track(monitor.OperationSelectStage, func() error {
		selected = s.session.SelectStage(stage)
		return nil
	})
	return selected
}

func (s *Server) logFailure(r *http.Request, err error) {
	s.logger.WarnWithFields("analyze request failed", []logger.Field{
		logger.RequestID(middleware.GetReqID(r.Context())),
		logger.Error(err),
	})
}

// decodeSourceRequest accepts an empty body as a request without code
func decodeSourceRequest(w http.ResponseWriter, r *http.Request) (SourceRequest, error) {
	var req SourceRequest
	body := http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, errors.New("invalid JSON body: " + err.Error())
	}
	return req, nil
}

// statusFor maps a session failure onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrRequestInFlight):
		return http.StatusConflict
	case analysis.IsValidationError(err):
		return http.StatusBadRequest
	case analysis.IsSchemaError(err):
		return http.StatusUnprocessableEntity
	case analysis.IsServiceError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
