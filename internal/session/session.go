// Package session owns the source buffer, the request lifecycle, the current
// analysis result and the stage selection shared by every presentation surface.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/logger"
	"github.com/yildizm/CodeLens/internal/stage"
)

// Status is the request lifecycle state
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
)

// SuccessMessage is shown at the semantic stage when no stage reported errors
const SuccessMessage = "analysis completed: no errors found"

// Service performs one analysis exchange and returns the raw response body
type Service interface {
	Analyze(ctx context.Context, source string) ([]byte, error)
}

// Notice is the current user-facing failure
type Notice struct {
	Kind        analysis.ErrorType `json:"kind"`
	Message     string             `json:"message"`
	Detail      string             `json:"detail,omitempty"`
	Dismissible bool               `json:"dismissible"`
}

// Panel is the content of the errors panel for the selected stage
type Panel struct {
	Stage   analysis.Stage         `json:"stage"`
	Errors  []analysis.ErrorRecord `json:"errors"`
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	Status    Status           `json:"status"`
	Source    string           `json:"source"`
	Result    *analysis.Result `json:"result,omitempty"`
	Stage     analysis.Stage   `json:"stage"`
	Available stage.Set        `json:"available"`
	Panel     Panel            `json:"panel"`
	Notice    *Notice          `json:"notice,omitempty"`
	Requests  int              `json:"requests"`
}

// HasResult reports whether an analysis result is present
func (s Snapshot) HasResult() bool {
	return s.Result != nil
}

// Session is safe for concurrent use. At most one request is outstanding at
// any time; a second Submit is rejected rather than queued.
type Session struct {
	mu       sync.Mutex
	inflight *semaphore.Weighted
	service  Service
	logger   *logger.Logger

	source   string
	status   Status
	result   *analysis.Result
	selected analysis.Stage
	notice   *Notice
	requests int
}

// New creates a session backed by the given service
func New(service Service, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		inflight: semaphore.NewWeighted(1),
		service:  service,
		logger:   log,
		status:   StatusIdle,
	}
}

// SetSource replaces the source text and discards the result and selection
func (s *Session) SetSource(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = text
	s.result = nil
	s.selected = stage.Reconcile(nil, s.selected)
	if s.notice != nil && s.notice.Kind == analysis.ErrTypeValidation {
		s.notice = nil
	}
}

// Source returns the current source text
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Status returns the request lifecycle state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submit sends the current source to the service. It returns a
// *analysis.ValidationError for blank source, ErrRequestInFlight while another
// request is outstanding, and a *analysis.ServiceError or *analysis.SchemaError
// when the exchange fails. The failure is also kept as the current notice.
func (s *Session) Submit(ctx context.Context) (*analysis.Result, error) {
	s.mu.Lock()
	source := s.source
	if strings.TrimSpace(source) == "" {
		err := analysis.NewValidationError("source", "enter some code to analyze")
		s.notice = &Notice{Kind: analysis.ErrTypeValidation, Message: err.Message}
		s.mu.Unlock()
		return nil, err
	}

	if !s.inflight.TryAcquire(1) {
		s.mu.Unlock()
		return nil, analysis.ErrRequestInFlight
	}
	defer s.inflight.Release(1)

	s.status = StatusSubmitting
	s.result = nil
	s.selected = analysis.StageNone
	s.notice = nil
	s.requests++
	s.mu.Unlock()

	startTime := time.Now()
	body, err := s.service.Analyze(ctx, source)

	var result *analysis.Result
	if err == nil {
		result, err = analysis.Normalize(body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle

	if err != nil {
		if !analysis.IsServiceError(err) && !analysis.IsSchemaError(err) {
			err = analysis.NewServiceErrorWithCause("request failed", "", err)
		}
		s.notice = noticeFor(err)
		s.logger.WarnWithFields("analysis failed", []logger.Field{
			logger.Error(err),
			logger.Duration(time.Since(startTime)),
		})
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	s.result = result
	s.selected = stage.Reconcile(result, analysis.StageLexical)
	s.logger.InfoWithFields("analysis completed", []logger.Field{
		logger.F("tokens", len(result.Tokens)),
		logger.F("errors", result.ErrorCount()),
		logger.Duration(time.Since(startTime)),
	})
	return result.Clone(), nil
}

// SelectStage switches the displayed stage. Stages that are not selectable
// are ignored; the return value reports whether the selection changed.
func (s *Session) SelectStage(requested analysis.Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := stage.Select(s.result, s.selected, requested)
	changed := next != s.selected
	s.selected = next
	return changed
}

// Selected returns the selected stage
func (s *Session) Selected() analysis.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// DismissNotice clears a dismissible notice
func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

// Panel returns the errors panel for the selected stage
func (s *Session) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel()
}

func (s *Session) panel() Panel {
	p := Panel{Stage: s.selected, Errors: []analysis.ErrorRecord{}}
	if s.result == nil || s.selected == analysis.StageNone {
		return p
	}

	errs := s.result.Errors(s.selected)
	p.Errors = make([]analysis.ErrorRecord, len(errs))
	copy(p.Errors, errs)

	if s.selected == analysis.StageSemantic && len(errs) == 0 {
		p.Success = true
		p.Message = SuccessMessage
	} else {
		p.Message = s.result.Status(s.selected).Message
	}
	return p
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:    s.status,
		Source:    s.source,
		Result:    s.result.Clone(),
		Stage:     s.selected,
		Available: stage.Available(s.result),
		Panel:     s.panel(),
		Requests:  s.requests,
	}
	if s.notice != nil {
		n := *s.notice
		snap.Notice = &n
	}
	return snap
}

func noticeFor(err error) *Notice {
	var schemaErr *analysis.SchemaError
	if errors.As(err, &schemaErr) {
		return &Notice{
			Kind:        analysis.ErrTypeSchema,
			Message:     "unable to interpret analysis result",
			Detail:      schemaErr.Error(),
			Dismissible: true,
		}
	}

	var serviceErr *analysis.ServiceError
	if errors.As(err, &serviceErr) {
		return &Notice{
			Kind:        analysis.ErrTypeService,
			Message:     "analysis service request failed: " + serviceErr.Message,
			Detail:      serviceErr.Error(),
			Dismissible: true,
		}
	}

	return &Notice{Kind: analysis.ErrTypeService, Message: err.Error(), Dismissible: true}
}
