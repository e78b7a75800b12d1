package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reviewlens/reviewlens/internal/discussion"
	"github.com/reviewlens/reviewlens/internal/extraction"
)

const defaultConcurrency = 4

// ChunkResult is the typed outcome of one extraction call. A failed call
// carries its error and an empty analysis; the failure never propagates
// to sibling chunks.
type ChunkResult struct {
	Index    int
	Source   string
	Analysis extraction.ChunkAnalysis
	Err      error
}

// Extractor fans selected content out to the extraction capability in
// fixed-size chunks with bounded concurrency.
type Extractor struct {
	analyzer    extraction.Analyzer
	concurrency int
}

// NewExtractor creates an Extractor. If concurrency is <= 0, it defaults to 4.
func NewExtractor(analyzer extraction.Analyzer, concurrency int) *Extractor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Extractor{analyzer: analyzer, concurrency: concurrency}
}

// ExtractBatches partitions posts into contiguous chunks of batchSize
// (the final chunk may be smaller) and runs one Analyze call per chunk
// concurrently. Results are attributed by chunk index regardless of
// completion order, and all calls are joined before returning: no
// chunk's result is consumed until every chunk has completed or failed.
func (e *Extractor) ExtractBatches(ctx context.Context, posts []discussion.Post, query, source string, batchSize int) []ChunkResult {
	chunks := chunkPosts(posts, batchSize)
	if len(chunks) == 0 {
		return nil
	}

	results := make([]ChunkResult, len(chunks))

	// Plain group, not WithContext: one chunk failing must not cancel
	// its siblings. Workers report failure through their result slot.
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			analysis, err := e.analyzer.Analyze(ctx, extraction.ChunkInput{
				Posts:  chunk,
				Query:  query,
				Source: source,
			})
			if err != nil {
				slog.Warn("chunk extraction failed, recording empty result",
					"source", source, "chunk", i, "error", err)
				results[i] = ChunkResult{Index: i, Source: source, Err: err}
				return nil
			}
			results[i] = ChunkResult{Index: i, Source: source, Analysis: analysis}
			return nil
		})
	}
	g.Wait()

	return results
}

// chunkPosts splits posts into contiguous slices of at most batchSize.
// A batchSize <= 0 yields a single chunk.
func chunkPosts(posts []discussion.Post, batchSize int) [][]discussion.Post {
	if len(posts) == 0 {
		return nil
	}
	if batchSize <= 0 {
		return [][]discussion.Post{posts}
	}
	var chunks [][]discussion.Post
	for start := 0; start < len(posts); start += batchSize {
		end := start + batchSize
		if end > len(posts) {
			end = len(posts)
		}
		chunks = append(chunks, posts[start:end])
	}
	return chunks
}
