package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"i9score/internal/catalog"
	"i9score/internal/decision/metrics"
	"i9score/internal/decision/ports"
	id "i9score/pkg/domain"
	dErrors "i9score/pkg/domain-errors"
	"i9score/pkg/platform/audit"
	"i9score/pkg/platform/sentinel"
	"i9score/pkg/requestcontext"
)

// DefaultWorkers bounds batch fan-out when no worker count is configured.
const DefaultWorkers = 4

// Failure stages reported in metrics and audit events.
const (
	StageLoad      = "load"
	StageValidate  = "validate"
	StageStore     = "store"
	StageAudit     = "audit"
	StageCancelled = "cancelled"
)

// Service runs the engine and takes care of everything around it: tracing,
// metrics, persistence and the audit stream. The engine itself stays pure.
type Service struct {
	engine  *Engine
	store   Store
	auditor ports.AuditPort
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	workers int
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStore persists every scored report.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithAuditor emits one audit event per document and one per batch.
func WithAuditor(auditor ports.AuditPort) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithWorkers bounds concurrent evaluations in a batch.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewService wraps the engine.
func NewService(engine *Engine, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "engine is required")
	}
	s := &Service{
		engine:  engine,
		logger:  slog.Default(),
		tracer:  otel.Tracer("i9score/internal/decision"),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BatchResult is the outcome of one document in a batch. Report may be set
// even when Err is, for a document that scored but failed to persist.
type BatchResult struct {
	DocumentID string
	Report     *ScoreReport
	Err        error
	Stage      string
}

// Evaluate scores one document, persists the report and emits its audit
// event.
func (s *Service) Evaluate(ctx context.Context, doc catalog.Document) (*ScoreReport, error) {
	res := s.evaluate(ctx, doc)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Report, nil
}

func (s *Service) evaluate(ctx context.Context, doc catalog.Document) BatchResult {
	ctx, span := s.tracer.Start(ctx, "decision.Evaluate",
		trace.WithAttributes(
			attribute.String("document.id", doc.ID),
			attribute.Int("document.pages", len(doc.Pages)),
		),
	)
	defer span.End()

	res := BatchResult{DocumentID: doc.ID}
	fail := func(stage string, err error) BatchResult {
		res.Stage, res.Err = stage, err
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		s.metrics.IncrementFailed(stage)
		return res
	}

	if _, err := id.ParseDocumentID(doc.ID); err != nil {
		s.emitFailure(ctx, doc.ID, StageValidate, err)
		return fail(StageValidate, err)
	}

	start := time.Now()
	report := s.engine.Evaluate(doc, requestcontext.Now(ctx))
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	res.Report = report

	span.SetAttributes(
		attribute.String("report.status", string(report.Status)),
		attribute.String("report.form_type", string(report.FormType)),
		attribute.Int("report.total", report.Total),
	)
	s.observe(report)

	if report.TieBreak {
		s.metrics.IncrementTieBreak()
		s.logger.WarnContext(ctx, "AmbiguousTieBreak",
			"document_id", doc.ID,
			"form_type", report.FormType,
			"selected_pages", report.SelectedPages,
		)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, report); err != nil {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "save report")
			s.logger.ErrorContext(ctx, "report save failed", "document_id", doc.ID, "error", err)
			s.emitFailure(ctx, doc.ID, StageStore, err)
			return fail(StageStore, err)
		}
	}

	if err := s.emit(ctx, audit.Event{
		Action:     string(audit.EventDocumentScored),
		DocumentID: doc.ID,
		Decision:   string(report.Status),
		Score:      report.Total,
		FormType:   string(report.FormType),
	}); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeUnavailable, "emit audit event")
		s.logger.ErrorContext(ctx, "audit emit failed", "document_id", doc.ID, "error", err)
		return fail(StageAudit, err)
	}

	s.logger.InfoContext(ctx, "document scored",
		"document_id", doc.ID,
		"status", report.Status,
		"total", report.Total,
		"form_type", report.FormType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// EvaluateBatch scores documents concurrently, bounded by the worker count.
// Failures are isolated: each document gets its own BatchResult, in input
// order, and a cancelled context marks the documents not yet started.
func (s *Service) EvaluateBatch(ctx context.Context, docs []catalog.Document) ([]BatchResult, Summary) {
	runID := requestcontext.RunID(ctx)
	if runID.IsNil() {
		runID = id.NewRunID()
		ctx = requestcontext.WithRunID(ctx, runID)
	}
	// One evaluation time for the whole batch.
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

	ctx, span := s.tracer.Start(ctx, "decision.EvaluateBatch",
		trace.WithAttributes(
			attribute.String("run.id", runID.String()),
			attribute.Int("batch.size", len(docs)),
		),
	)
	defer span.End()
	start := time.Now()

	results := make([]BatchResult, len(docs))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				s.metrics.IncrementFailed(StageCancelled)
				results[i] = BatchResult{DocumentID: doc.ID, Err: err, Stage: StageCancelled}
				return nil
			}
			results[i] = s.evaluate(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]*ScoreReport, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		reports = append(reports, r.Report)
	}
	summary := Summarize(reports)
	s.metrics.ObserveBatchLatency(time.Since(start))
	span.SetAttributes(attribute.Int("batch.failed", failed))

	if err := s.emit(ctx, audit.Event{
		Action: string(audit.EventBatchCompleted),
		Reason: batchReason(len(docs), failed),
		Score:  summary.Documents,
	}); err != nil {
		s.logger.ErrorContext(ctx, "batch audit emit failed", "run_id", runID, "error", err)
	}

	s.logger.InfoContext(ctx, "batch completed",
		"run_id", runID,
		"documents", len(docs),
		"failed", failed,
		"average_score", summary.AverageScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, summary
}

// RecordFailure reports a document that never reached the engine, such as a
// catalog that failed to load.
func (s *Service) RecordFailure(ctx context.Context, documentID string, err error) BatchResult {
	s.metrics.IncrementFailed(StageLoad)
	s.logger.WarnContext(ctx, "document not scored", "document_id", documentID, "error", err)
	s.emitFailure(ctx, documentID, StageLoad, err)
	return BatchResult{DocumentID: documentID, Err: err, Stage: StageLoad}
}

// Get returns a persisted report.
func (s *Service) Get(ctx context.Context, documentID string) (*ScoreReport, error) {
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "report store is not configured")
	}
	report, err := s.store.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load report")
	}
	return report, nil
}

// List returns every persisted report.
func (s *Service) List(ctx context.Context) ([]*ScoreReport, error) {
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "report store is not configured")
	}
	reports, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	return reports, nil
}

// History returns every stored run of a document, oldest first. Stores that
// keep only the latest report make this unavailable.
func (s *Service) History(ctx context.Context, documentID string) ([]*ScoreReport, error) {
	hs, ok := s.store.(HistoryStore)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnavailable, "report history is not kept by this store")
	}
	runs, err := hs.History(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load report history")
	}
	if len(runs) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	return runs, nil
}

func (s *Service) observe(report *ScoreReport) {
	form := string(report.FormType)
	if form == "" {
		form = NoFormType
	}
	s.metrics.IncrementScored(string(report.Status), form)
	for _, b := range Buckets {
		s.metrics.ObserveBucket(string(b), report.BucketScores[b])
	}
}

func (s *Service) emitFailure(ctx context.Context, documentID, stage string, err error) {
	if emitErr := s.emit(ctx, audit.Event{
		Action:     string(audit.EventDocumentFailed),
		DocumentID: documentID,
		Decision:   string(StatusError),
		Reason:     stage + ": " + err.Error(),
	}); emitErr != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "document_id", documentID, "error", emitErr)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if runID := requestcontext.RunID(ctx); !runID.IsNil() {
		event.RunID = runID.String()
	}
	return s.auditor.Emit(ctx, event)
}

func batchReason(total, failed int) string {
	if failed == 0 {
		return "all documents scored"
	}
	return fmt.Sprintf("%d of %d documents failed", failed, total)
}
