// Package rankservice wraps the sentence and context rankers with input
// bounds, request IDs, logging, tracing and metrics. The HTTP API, the MCP
// server and the CLI all call through it.
package rankservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/lexrank"
	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/passage"
	"github.com/fyrsmithlabs/contextrank/internal/ranker"
	"github.com/fyrsmithlabs/contextrank/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/contextrank/internal/rankservice"

// DefaultSeparator joins selected sentences when the caller names none.
const DefaultSeparator = " "

var (
	// ErrTextTooLarge is returned when the text exceeds MaxTextBytes.
	ErrTextTooLarge = errors.New("text exceeds maximum size")
	// ErrTooManyContexts is returned when a request carries more than
	// MaxContexts candidates.
	ErrTooManyContexts = errors.New("too many contexts")
	// ErrInvalidParameter is returned for out-of-range ranking parameters
	// and unknown feature names.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Service is safe for concurrent use.
type Service struct {
	cfg       Config
	registry  *language.Registry
	sentences *lexrank.Ranker
	contexts  *ranker.Ranker

	logger  *logging.Logger
	tracer  trace.Tracer
	metrics *metrics
}

// New creates a service. A nil registry means language.Default(), a nil
// logger discards output and a nil telemetry uses the global providers.
func New(cfg Config, registry *language.Registry, logger *logging.Logger, tel *telemetry.Telemetry) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rank service config: %w", err)
	}
	if registry == nil {
		registry = language.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	m, err := newMetrics(tel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	contexts := ranker.New(registry)
	if len(cfg.Features) > 0 {
		contexts = contexts.WithFeatures(cfg.Features)
	}

	return &Service{
		cfg:       cfg,
		registry:  registry,
		sentences: lexrank.New(cfg.LexRank, registry),
		contexts:  contexts,
		logger:    logger.Named("rankservice"),
		tracer:    tel.Tracer(instrumentationName),
		metrics:   m,
	}, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config { return s.cfg }

// SentencesRequest asks for the central sentences of Text.
type SentencesRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	// Threshold and Epsilon override the configured values when set.
	Threshold *float64 `json:"threshold,omitempty"`
	Epsilon   *float64 `json:"epsilon,omitempty"`
	Separator *string  `json:"separator,omitempty"`
}

// SentencesResponse carries the selected sentences with their scores.
type SentencesResponse struct {
	RequestID  string    `json:"request_id"`
	Language   string    `json:"language"`
	Sentences  []string  `json:"sentences"`
	Scores     []float64 `json:"scores"`
	Indexes    []int     `json:"indexes"`
	Total      int       `json:"total"`
	Fallback   bool      `json:"fallback"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Joined     string    `json:"joined"`
}

// RankSentences runs the LexRank pipeline over req.Text.
func (s *Service) RankSentences(ctx context.Context, req SentencesRequest) (*SentencesResponse, error) {
	ctx = s.withRequestID(ctx)
	ctx, span := s.tracer.Start(ctx, "rankservice.rank_sentences",
		trace.WithAttributes(
			attribute.String("rank.requested_language", req.Language),
			attribute.Int("rank.text_bytes", len(req.Text)),
		),
	)
	defer span.End()
	start := time.Now()

	fail := func(err error) (*SentencesResponse, error) {
		s.recordFailure(ctx, span, opSentences, err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if len(req.Text) > s.cfg.MaxTextBytes {
		return fail(fmt.Errorf("%w: %d bytes, limit %d", ErrTextTooLarge, len(req.Text), s.cfg.MaxTextBytes))
	}

	r := s.sentences
	if req.Threshold != nil || req.Epsilon != nil {
		params := r.Config()
		if req.Threshold != nil {
			params.Threshold = *req.Threshold
		}
		if req.Epsilon != nil {
			params.Epsilon = *req.Epsilon
		}
		if err := params.Validate(); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrInvalidParameter, err))
		}
		r = r.WithParams(params.Threshold, params.Epsilon)
	}

	lang := s.language(ctx, req.Language)
	result := r.Rank(req.Text, lang)
	ctx = logging.WithLanguage(ctx, result.Language)

	resp := &SentencesResponse{
		RequestID:  logging.RequestIDFromContext(ctx),
		Language:   result.Language,
		Sentences:  result.Texts(),
		Scores:     make([]float64, len(result.Sentences)),
		Indexes:    make([]int, len(result.Sentences)),
		Total:      result.Total,
		Fallback:   result.Fallback,
		Iterations: result.Iterations,
		Converged:  result.Converged,
	}
	for i, sentence := range result.Sentences {
		resp.Scores[i] = sentence.Score
		resp.Indexes[i] = sentence.Index
	}
	sep := DefaultSeparator
	if req.Separator != nil {
		sep = *req.Separator
	}
	resp.Joined = lexrank.Join(resp.Sentences, sep)

	if result.Fallback {
		s.metrics.fallback(ctx, fallbackSelection, result.Language)
		s.logger.Debug(ctx, "no sentence reached the mean score, using top-ranked fallback",
			zap.Int("total", result.Total),
			zap.Int("selected", len(resp.Sentences)),
		)
	}
	if !result.Converged {
		s.logger.Debug(ctx, "power iteration hit the iteration cap",
			zap.Int("iterations", result.Iterations),
		)
	}

	span.SetAttributes(
		attribute.String("rank.language", result.Language),
		attribute.Int("rank.sentences.total", result.Total),
		attribute.Int("rank.sentences.selected", len(resp.Sentences)),
		attribute.Int("rank.iterations", result.Iterations),
		attribute.Bool("rank.converged", result.Converged),
		attribute.Bool("rank.fallback", result.Fallback),
	)
	s.metrics.operation(ctx, opSentences, result.Language, statusOK, time.Since(start))
	if result.Total > 0 {
		s.metrics.selected(ctx, result.Language, float64(len(resp.Sentences))/float64(result.Total))
	}

	s.logger.Debug(ctx, "ranked sentences",
		logging.Excerpt("text", req.Text),
		zap.Int("total", result.Total),
		zap.Int("selected", len(resp.Sentences)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// ContextsRequest asks for candidate windows to be scored and ordered.
type ContextsRequest struct {
	Language string             `json:"language,omitempty"`
	Contexts []*passage.Context `json:"contexts"`
	Metadata *passage.Metadata  `json:"metadata,omitempty"`
	// Features switches individual features on or off for this request.
	Features map[string]bool `json:"features,omitempty"`
}

// ContextsResponse carries the annotated contexts in rank order.
type ContextsResponse struct {
	RequestID string             `json:"request_id"`
	Language  string             `json:"language"`
	Features  []string           `json:"features"`
	Contexts  []*passage.Context `json:"contexts"`
}

// RankContexts scores req.Contexts. The contexts are annotated and reordered
// in place; the response holds the same pointers.
func (s *Service) RankContexts(ctx context.Context, req ContextsRequest) (*ContextsResponse, error) {
	ctx = s.withRequestID(ctx)
	ctx, span := s.tracer.Start(ctx, "rankservice.rank_contexts",
		trace.WithAttributes(
			attribute.String("rank.requested_language", req.Language),
			attribute.Int("rank.contexts.total", len(req.Contexts)),
		),
	)
	defer span.End()
	start := time.Now()

	fail := func(err error) (*ContextsResponse, error) {
		s.recordFailure(ctx, span, opContexts, err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if len(req.Contexts) > s.cfg.MaxContexts {
		return fail(fmt.Errorf("%w: %d contexts, limit %d", ErrTooManyContexts, len(req.Contexts), s.cfg.MaxContexts))
	}

	r := s.contexts
	if len(req.Features) > 0 {
		fs, err := ParseFeatures(req.Features)
		if err != nil {
			return fail(err)
		}
		r = r.WithFeatures(fs)
	}

	lang := s.language(ctx, req.Language)
	_, code := s.registry.Resolve(lang)
	ctx = logging.WithLanguage(ctx, code)

	features := r.Features(lang, req.Metadata).Names()
	ranked := r.Rank(lang, req.Contexts, req.Metadata)
	if ranked == nil {
		ranked = []*passage.Context{}
	}

	span.SetAttributes(
		attribute.String("rank.language", code),
		attribute.StringSlice("rank.features", features),
	)
	s.metrics.operation(ctx, opContexts, code, statusOK, time.Since(start))

	s.logger.Debug(ctx, "ranked contexts",
		zap.Int("contexts", len(ranked)),
		zap.Strings("features", features),
		zap.Duration("duration", time.Since(start)),
	)
	return &ContextsResponse{
		RequestID: logging.RequestIDFromContext(ctx),
		Language:  code,
		Features:  features,
		Contexts:  ranked,
	}, nil
}

// LanguageInfo describes a registered language.
type LanguageInfo struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Features []string `json:"features"`
}

// Languages lists the registered languages with the features a context
// ranking pass would use for each.
func (s *Service) Languages() []LanguageInfo {
	codes := s.registry.List()
	out := make([]LanguageInfo, 0, len(codes))
	for _, code := range codes {
		d, _ := s.registry.Resolve(code)
		fs := language.DisableUnbacked(d, d.Features().Merge(s.cfg.Features))
		out = append(out, LanguageInfo{
			Code:     code,
			Name:     d.Name(),
			Aliases:  d.Aliases(),
			Features: fs.Names(),
		})
	}
	return out
}

// language picks the request language, falling back to the configured
// default, and logs when the registry cannot serve it.
func (s *Service) language(ctx context.Context, requested string) string {
	lang := requested
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	if !s.registry.Supports(lang) {
		s.metrics.fallback(ctx, fallbackLanguage, language.DefaultCode)
		s.logger.Debug(ctx, "language not registered, using default",
			zap.String("requested", lang),
			zap.String("default", language.DefaultCode),
		)
	}
	return lang
}

func (s *Service) withRequestID(ctx context.Context) context.Context {
	if logging.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.WithRequestID(ctx, uuid.NewString())
}

func (s *Service) recordFailure(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.operation(ctx, op, "", statusError, 0)
	s.logger.Warn(ctx, "rank request rejected", zap.String("operation", op), zap.Error(err))
}
