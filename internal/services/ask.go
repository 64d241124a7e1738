package services

import (
	"context"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"strings"
	"sync"
)

// Max concurrent resolutions for one batch request.
const batchConcurrency = 5

// Result is a parsed query together with its answers.
type Result struct {
	Query   domain.ParsedQuery
	Answers []domain.ResolvedAnswer
}

// BatchResult pairs an input text with its outcome. Exactly one of Result
// and Err is set.
type BatchResult struct {
	Text   string
	Result *Result
	Err    error
}

// QueryService is the entry point used by the REPL and the HTTP API:
// parse, resolve, then hand the answers to the optional publisher.
type QueryService struct {
	parser    *QueryParser
	resolver  *QueryResolver
	publisher ports.AnswerPublisher
	logger    *slog.Logger
}

func NewQueryService(parser *QueryParser, resolver *QueryResolver, publisher ports.AnswerPublisher, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = obs.Discard()
	}
	return &QueryService{parser: parser, resolver: resolver, publisher: publisher, logger: logger}
}

// Ask answers a free-text question with up to k answers.
func (s *QueryService) Ask(ctx context.Context, text string, k int) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("ask: empty query: %w", domain.ErrNoParameter)
	}

	q, err := s.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	answers, err := s.resolver.ResolveTop(ctx, q, k)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	// Publishing is best effort; the answer is already computed.
	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, obs.RequestID(ctx), q, answers); perr != nil {
			s.logger.WarnContext(ctx, "publish answer failed", "req_id", obs.RequestID(ctx), "error", perr)
		}
	}

	return &Result{Query: q, Answers: answers}, nil
}

// AskBatch answers several questions concurrently. Results keep input order
// and one failing text does not affect the others.
func (s *QueryService) AskBatch(ctx context.Context, texts []string, k int) []BatchResult {
	out := make([]BatchResult, len(texts))

	sem := make(chan struct{}, batchConcurrency)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			res, err := s.Ask(ctx, text, k)
			out[i] = BatchResult{Text: text, Result: res, Err: err}
		}(i, text)
	}

	wg.Wait()
	return out
}
