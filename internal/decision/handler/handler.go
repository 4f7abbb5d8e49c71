package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"i9score/internal/catalog"
	"i9score/internal/decision"
	id "i9score/pkg/domain"
	dErrors "i9score/pkg/domain-errors"
	"i9score/pkg/platform/audit"
	"i9score/pkg/platform/httputil"
	"i9score/pkg/requestcontext"
)

// Service defines the interface for decision operations.
type Service interface {
	Evaluate(ctx context.Context, doc catalog.Document) (*decision.ScoreReport, error)
	Get(ctx context.Context, documentID string) (*decision.ScoreReport, error)
	List(ctx context.Context) ([]*decision.ScoreReport, error)
	History(ctx context.Context, documentID string) ([]*decision.ScoreReport, error)
}

// AuditTrail replays the audit events recorded for a document.
type AuditTrail interface {
	List(ctx context.Context, documentID string) ([]audit.Event, error)
}

// Handler wires decision endpoints to the decision service.
type Handler struct {
	service Service
	trail   AuditTrail
	logger  *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithAuditTrail enables GET /decision/reports/{id}/events.
func WithAuditTrail(trail AuditTrail) Option {
	return func(h *Handler) {
		h.trail = trail
	}
}

// New constructs a decision handler with its dependencies.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/decision/score", h.HandleScore)
	r.Get("/decision/reports", h.HandleList)
	r.Get("/decision/reports/{id}", h.HandleGet)
	r.Get("/decision/reports/{id}/history", h.HandleHistory)
	r.Get("/decision/reports/{id}/events", h.HandleEvents)
}

// HandleScore handles POST /decision/score requests.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ScoreRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	report, err := h.service.Evaluate(ctx, req.Document())
	if err != nil {
		h.logger.ErrorContext(ctx, "document scoring failed",
			"request_id", requestID,
			"document_id", req.DocumentID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document scored over http",
		"request_id", requestID,
		"document_id", report.DocumentID,
		"status", report.Status,
		"total", report.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleGet handles GET /decision/reports/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Get(ctx, string(docID))
	if err != nil {
		h.logger.WarnContext(ctx, "report lookup failed",
			"request_id", requestID,
			"document_id", docID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleList handles GET /decision/reports requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reports, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "report listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReports(reports))
}

// HandleHistory handles GET /decision/reports/{id}/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	runs, err := h.service.History(ctx, string(docID))
	if err != nil {
		h.logger.WarnContext(ctx, "report history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", docID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(string(docID), runs))
}

// HandleEvents handles GET /decision/reports/{id}/events requests.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.trail == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit trail is not enabled"))
		return
	}

	events, err := h.trail.List(ctx, string(docID))
	if err != nil {
		h.logger.WarnContext(ctx, "audit trail lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", docID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(string(docID), events))
}
