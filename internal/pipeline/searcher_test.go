package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/reviewlens/reviewlens/internal/discussion"
	"github.com/reviewlens/reviewlens/internal/extraction"
)

// --- mocks ---

type mockCache struct {
	getFn  func(query string) (Result, bool, error)
	saveFn func(query string, res Result) error
	saved  map[string]Result
}

func newMockCache() *mockCache {
	return &mockCache{saved: make(map[string]Result)}
}

func (m *mockCache) GetSearchResult(query string) (Result, bool, error) {
	if m.getFn != nil {
		return m.getFn(query)
	}
	res, ok := m.saved[query]
	return res, ok, nil
}

func (m *mockCache) SaveSearchResult(query string, res Result) error {
	if m.saveFn != nil {
		return m.saveFn(query, res)
	}
	m.saved[query] = res
	return nil
}

type mockSource struct {
	name      string
	threadsFn func(ctx context.Context, query string) ([]discussion.Thread, error)
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Threads(ctx context.Context, query string) ([]discussion.Thread, error) {
	if m.threadsFn != nil {
		return m.threadsFn(ctx, query)
	}
	return nil, nil
}

func passingThreads(n int) []discussion.Thread {
	threads := make([]discussion.Thread, n)
	for i := range threads {
		threads[i] = discussion.Thread{
			ID:     fmt.Sprintf("t%d", i),
			Title:  fmt.Sprintf("thread %d", i),
			Body:   fmt.Sprintf("a long enough body for thread number %d to survive selection", i),
			Author: "reviewer",
			Score:  100,
		}
	}
	return threads
}

func summarizingAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{
		analyzeFn: func(_ context.Context, input extraction.ChunkInput) (extraction.ChunkAnalysis, error) {
			reviews := make([]extraction.ReviewJudgment, len(input.Posts))
			for i, p := range input.Posts {
				reviews[i] = extraction.ReviewJudgment{PostID: p.ID, Summary: "summary of " + p.ID}
			}
			return extraction.ChunkAnalysis{Reviews: reviews, OverallDecision: "worth buying"}, nil
		},
	}
}

func newTestSearcher(cache Cache, analyzer *mockAnalyzer, sources ...Source) *Searcher {
	return NewSearcher(cache, sources, NewExtractor(analyzer, 1), SearchOptions{
		Filter:    discussion.FilterOptions{ScoreThreshold: 10, MinLength: 20},
		BatchSize: 2,
	})
}

// --- tests ---

func TestSearch_CacheHitSkipsExtraction(t *testing.T) {
	analyzer := summarizingAnalyzer()
	cache := newMockCache()
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(4), nil
	}}
	s := newTestSearcher(cache, analyzer, src)

	first := s.Search(context.Background(), "Widget Pro")
	callsAfterFirst := analyzer.calls.Load()
	if callsAfterFirst == 0 {
		t.Fatal("first search must reach the analyzer")
	}

	second := s.Search(context.Background(), "WIDGET PRO")
	if got := analyzer.calls.Load(); got != callsAfterFirst {
		t.Errorf("cached search called the analyzer (%d -> %d calls)", callsAfterFirst, got)
	}
	if second.OverallDecision != first.OverallDecision || len(second.Reviews) != len(first.Reviews) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestSearch_CacheKeyIsLowerCased(t *testing.T) {
	cache := newMockCache()
	s := newTestSearcher(cache, summarizingAnalyzer(), &mockSource{name: "reddit"})

	s.Search(context.Background(), "Widget Pro")
	if _, ok := cache.saved["widget pro"]; !ok {
		t.Errorf("result stored under keys %v, want %q", keysOf(cache.saved), "widget pro")
	}
}

func keysOf(m map[string]Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestSearch_CacheLookupErrorIsAMiss(t *testing.T) {
	analyzer := summarizingAnalyzer()
	cache := newMockCache()
	cache.getFn = func(string) (Result, bool, error) {
		return Result{}, false, fmt.Errorf("database locked")
	}
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(2), nil
	}}
	s := newTestSearcher(cache, analyzer, src)

	res := s.Search(context.Background(), "widget")
	if analyzer.calls.Load() == 0 {
		t.Error("lookup failure must fall through to extraction")
	}
	if len(res.Reviews) != 2 {
		t.Errorf("got %d reviews, want 2", len(res.Reviews))
	}
}

func TestSearch_CacheWriteFailureStillReturnsResult(t *testing.T) {
	cache := newMockCache()
	cache.saveFn = func(string, Result) error { return fmt.Errorf("disk full") }
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(2), nil
	}}
	s := newTestSearcher(cache, summarizingAnalyzer(), src)

	res := s.Search(context.Background(), "widget")
	if len(res.Reviews) != 2 || res.OverallDecision != "worth buying" {
		t.Errorf("write failure must not affect the returned result, got %+v", res)
	}
}

func TestSearch_NilCache(t *testing.T) {
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(1), nil
	}}
	s := newTestSearcher(nil, summarizingAnalyzer(), src)

	res := s.Search(context.Background(), "widget")
	if len(res.Reviews) != 1 {
		t.Errorf("got %d reviews, want 1", len(res.Reviews))
	}
}

func TestSearch_FailedSourceContributesNothing(t *testing.T) {
	good := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(2), nil
	}}
	bad := &mockSource{name: "forum", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return nil, fmt.Errorf("upstream 503")
	}}
	s := newTestSearcher(newMockCache(), summarizingAnalyzer(), bad, good)

	res := s.Search(context.Background(), "widget")
	if len(res.Reviews) != 2 {
		t.Fatalf("got %d reviews, want 2 from the surviving source", len(res.Reviews))
	}
	for _, r := range res.Reviews {
		if r.Summary == "" {
			t.Error("all surviving reviews must carry a summary")
		}
	}
}

func TestSearch_DropsReviewsWithoutSummary(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyzeFn: func(_ context.Context, input extraction.ChunkInput) (extraction.ChunkAnalysis, error) {
			return extraction.ChunkAnalysis{
				Reviews: []extraction.ReviewJudgment{
					{PostID: "kept", Summary: "solid review"},
					{PostID: "placeholder"},
				},
				OverallDecision: "worth buying",
			}, nil
		},
	}
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		return passingThreads(1), nil
	}}
	s := newTestSearcher(newMockCache(), analyzer, src)

	res := s.Search(context.Background(), "widget")
	if len(res.Reviews) != 1 || res.Reviews[0].PostID != "kept" {
		t.Errorf("got %+v, want only the summarized review", res.Reviews)
	}
}

func TestSearch_CancelledContextReturnsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &mockSource{name: "reddit", threadsFn: func(_ context.Context, _ string) ([]discussion.Thread, error) {
		cancel()
		return passingThreads(2), nil
	}}
	s := newTestSearcher(newMockCache(), summarizingAnalyzer(), src)

	res := s.Search(ctx, "widget")
	if res.OverallDecision != FallbackDecision {
		t.Errorf("OverallDecision = %q, want %q", res.OverallDecision, FallbackDecision)
	}
	if res.Reviews == nil || len(res.Reviews) != 0 {
		t.Errorf("fallback must carry an empty review list, got %+v", res.Reviews)
	}
}

func TestSearch_NoSources(t *testing.T) {
	s := newTestSearcher(newMockCache(), summarizingAnalyzer())

	res := s.Search(context.Background(), "widget")
	if res.Reviews == nil || len(res.Reviews) != 0 || res.OverallDecision != "" {
		t.Errorf("got %+v, want a well-formed empty result", res)
	}
}
