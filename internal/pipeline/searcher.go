package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reviewlens/reviewlens/internal/discussion"
	"github.com/reviewlens/reviewlens/internal/extraction"
)

// FallbackDecision is returned when the whole query degrades: the caller
// always receives a well-formed result, never an error.
const FallbackDecision = "Unable to fetch results at this time."

// Cache stores aggregated results keyed by lower-cased query string.
// Lookup failures are treated as misses; write failures are logged and
// ignored. Concurrent writes for the same key are last-writer-wins.
type Cache interface {
	GetSearchResult(query string) (Result, bool, error)
	SaveSearchResult(query string, res Result) error
}

// Source supplies pre-fetched discussion trees for a query. The pipeline
// never fetches, authenticates, or paginates on its own.
type Source interface {
	Name() string
	Threads(ctx context.Context, query string) ([]discussion.Thread, error)
}

// SearchOptions tune the selection, filtering, and batching stages.
type SearchOptions struct {
	Filter          discussion.FilterOptions
	MaxCommentDepth int
	BatchSize       int
}

// Searcher runs the end-to-end pipeline: cache check, thread selection,
// comment filtering, batched extraction, and consensus aggregation.
type Searcher struct {
	cache     Cache
	sources   []Source
	extractor *Extractor
	opts      SearchOptions
}

// NewSearcher wires a Searcher. Zero-value options fall back to the
// original pipeline defaults.
func NewSearcher(cache Cache, sources []Source, extractor *Extractor, opts SearchOptions) *Searcher {
	if opts.MaxCommentDepth <= 0 {
		opts.MaxCommentDepth = 3
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Filter.ScoreThreshold == 0 && opts.Filter.MinLength == 0 {
		opts.Filter = discussion.FilterOptions{ScoreThreshold: 10, MinLength: 50}
	}
	return &Searcher{cache: cache, sources: sources, extractor: extractor, opts: opts}
}

// Search produces the consensus result for a query. The query is
// normalized to lower case before cache lookup and write; a cached
// result is returned verbatim with no extraction. Per-source fetch
// failures degrade to that source contributing nothing, and a timeout of
// the surrounding context degrades the whole query to the fallback
// decision. Search always returns a well-formed Result.
func (s *Searcher) Search(ctx context.Context, query string) Result {
	query = strings.ToLower(query)
	log := slog.With("query", query, "search_id", uuid.NewString())

	if s.cache != nil {
		cached, ok, err := s.cache.GetSearchResult(query)
		if err != nil {
			log.Warn("result cache lookup failed, treating as miss", "error", err)
		} else if ok {
			log.Info("returning cached result")
			return cached
		}
	}

	var chunkResults []ChunkResult
	for _, src := range s.sources {
		threads, err := src.Threads(ctx, query)
		if err != nil {
			log.Warn("content source failed, continuing without it",
				"source", src.Name(), "error", err)
			continue
		}

		for i := range threads {
			threads[i] = discussion.SanitizeThread(threads[i])
		}
		selected := discussion.SelectThreads(threads, s.opts.Filter)
		posts := make([]discussion.Post, 0, len(selected))
		for _, t := range selected {
			records := discussion.FilterComments(t.Comments, s.opts.MaxCommentDepth, s.opts.Filter)
			posts = append(posts, discussion.FlattenThread(t, records))
		}

		chunkResults = append(chunkResults,
			s.extractor.ExtractBatches(ctx, posts, query, src.Name(), s.opts.BatchSize)...)
	}

	if ctx.Err() != nil {
		log.Warn("search cancelled mid-extraction, returning fallback", "error", ctx.Err())
		return Result{Reviews: []extraction.ReviewJudgment{}, OverallDecision: FallbackDecision}
	}

	result := Aggregate(chunkResults)
	result.Reviews = dropUnsummarized(result.Reviews)

	if s.cache != nil {
		if err := s.cache.SaveSearchResult(query, result); err != nil {
			log.Warn("result cache write failed", "error", err)
		}
	}

	return result
}

// dropUnsummarized removes judgments without a summary: the capability
// emits placeholder entries for posts it decided are not reviews.
func dropUnsummarized(reviews []extraction.ReviewJudgment) []extraction.ReviewJudgment {
	kept := []extraction.ReviewJudgment{}
	for _, r := range reviews {
		if r.Summary != "" {
			kept = append(kept, r)
		}
	}
	return kept
}
