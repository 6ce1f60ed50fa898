package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contextrank/internal/passage"
	"github.com/fyrsmithlabs/contextrank/internal/rankservice"
)

const (
	toolRankSentences = "rank_sentences"
	toolRankContexts  = "rank_contexts"
	toolListLanguages = "list_languages"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: toolRankSentences,
		Description: "Reduce a text to its most central sentences with LexRank. " +
			"Returns the selected sentences in document order and a joined string ready to place in a prompt.",
	}, s.handleRankSentences)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: toolRankContexts,
		Description: "Score and order candidate passages for a query using per-language features " +
			"(term frequency, length, position, descriptor words and patterns, dialogue, proximity to the reading position).",
	}, s.handleRankContexts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolListLanguages,
		Description: "List the languages the rankers support, with their aliases and enabled features.",
	}, s.handleListLanguages)
}

// instrument wraps a tool body with active-request and invocation metrics.
func (s *Server) instrument(ctx context.Context, tool string) func(error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, tool)
	return func(err error) {
		s.metrics.DecrementActive(ctx, tool)
		s.metrics.RecordInvocation(ctx, tool, time.Since(start), err)
		if err != nil {
			s.logger.Warn(ctx, "tool call failed", zap.String("tool", tool), zap.Error(err))
		}
	}
}

// ===== RANK SENTENCES =====

type rankSentencesInput struct {
	Text      string   `json:"text" jsonschema:"Text to reduce, typically a book up to the reading position"`
	Language  string   `json:"language,omitempty" jsonschema:"Language code, locale or name (default: configured language)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Cosine similarity above which two sentences are linked, in [0,1) (default: 0.1)"`
	Epsilon   *float64 `json:"epsilon,omitempty" jsonschema:"Power iteration convergence tolerance, positive (default: 0.1)"`
	Separator *string  `json:"separator,omitempty" jsonschema:"String placed between selected sentences in joined (default: single space)"`
}

func (s *Server) handleRankSentences(ctx context.Context, _ *mcp.CallToolRequest, args rankSentencesInput) (*mcp.CallToolResult, rankservice.SentencesResponse, error) {
	var toolErr error
	done := s.instrument(ctx, toolRankSentences)
	defer func() { done(toolErr) }()

	resp, err := s.service.RankSentences(ctx, rankservice.SentencesRequest{
		Text:      args.Text,
		Language:  args.Language,
		Threshold: args.Threshold,
		Epsilon:   args.Epsilon,
		Separator: args.Separator,
	})
	if err != nil {
		toolErr = fmt.Errorf("rank sentences failed: %w", err)
		return nil, rankservice.SentencesResponse{}, toolErr
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: resp.Joined},
		},
	}, *resp, nil
}

// ===== RANK CONTEXTS =====

type contextInput struct {
	Text          string   `json:"text" jsonschema:"Candidate passage text"`
	Position      int      `json:"position" jsonschema:"Position of the passage in the document"`
	TermFrequency *float64 `json:"term_frequency,omitempty" jsonschema:"Precomputed relative frequency of the query term in the passage"`
	WordCount     *int     `json:"word_count,omitempty" jsonschema:"Precomputed word count of the passage"`
}

type rankContextsInput struct {
	Language string            `json:"language,omitempty" jsonschema:"Language code, locale or name (default: configured language)"`
	Contexts []contextInput    `json:"contexts" jsonschema:"Candidate passages to rank"`
	Metadata *passage.Metadata `json:"metadata,omitempty" jsonschema:"Document size and reading position"`
	Features map[string]bool   `json:"features,omitempty" jsonschema:"Per-request feature switches keyed by feature name"`
}

func (s *Server) handleRankContexts(ctx context.Context, _ *mcp.CallToolRequest, args rankContextsInput) (*mcp.CallToolResult, rankservice.ContextsResponse, error) {
	var toolErr error
	done := s.instrument(ctx, toolRankContexts)
	defer func() { done(toolErr) }()

	contexts := make([]*passage.Context, len(args.Contexts))
	for i, c := range args.Contexts {
		contexts[i] = &passage.Context{
			Text:          c.Text,
			Position:      c.Position,
			TermFrequency: c.TermFrequency,
			WordCount:     c.WordCount,
		}
	}

	resp, err := s.service.RankContexts(ctx, rankservice.ContextsRequest{
		Language: args.Language,
		Contexts: contexts,
		Metadata: args.Metadata,
		Features: args.Features,
	})
	if err != nil {
		toolErr = fmt.Errorf("rank contexts failed: %w", err)
		return nil, rankservice.ContextsResponse{}, toolErr
	}

	positions := make([]string, len(resp.Contexts))
	for i, c := range resp.Contexts {
		positions[i] = fmt.Sprint(c.Position)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Ranked %d contexts (%s). Order by position: %s",
				len(resp.Contexts), resp.Language, strings.Join(positions, ", "))},
		},
	}, *resp, nil
}

// ===== LIST LANGUAGES =====

type listLanguagesInput struct{}

type listLanguagesOutput struct {
	Languages []rankservice.LanguageInfo `json:"languages" jsonschema:"Registered languages"`
}

func (s *Server) handleListLanguages(ctx context.Context, _ *mcp.CallToolRequest, _ listLanguagesInput) (*mcp.CallToolResult, listLanguagesOutput, error) {
	done := s.instrument(ctx, toolListLanguages)
	defer done(nil)

	langs := s.service.Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = fmt.Sprintf("%s (%s)", l.Code, l.Name)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: strings.Join(names, ", ")},
		},
	}, listLanguagesOutput{Languages: langs}, nil
}
