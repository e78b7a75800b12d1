package extraction

import (
	"context"

	"github.com/reviewlens/reviewlens/internal/discussion"
)

// ReviewJudgment is a single structured review extracted from a content
// chunk. Judgments are produced only by the extraction capability; the
// pipeline never synthesizes one.
type ReviewJudgment struct {
	Source              string   `json:"source"`
	URL                 string   `json:"url"`
	ProductName         string   `json:"product_name,omitempty"`
	Summary             string   `json:"review_summary,omitempty"`
	Pros                []string `json:"pros"`
	Cons                []string `json:"cons"`
	Sentiment           string   `json:"sentiment,omitempty"`
	IsProductOfInterest bool     `json:"is_product_of_interest"`
	PostID              string   `json:"post_id,omitempty"`
	DetailScore         int      `json:"detail_score"`
	BalancedScore       int      `json:"balanced_score"`
	WellWrittenScore    int      `json:"well_written_score"`
	StarRating          *int     `json:"star_rating,omitempty"`
}

// ChunkAnalysis is the capability's verdict on one content chunk: zero or
// more judgments plus an optional single-sentence decision. An empty
// OverallDecision means the chunk contributed no verdict.
type ChunkAnalysis struct {
	Reviews         []ReviewJudgment `json:"reviews"`
	OverallDecision string           `json:"overall_decision,omitempty"`
}

// ChunkInput is one extraction unit: a batch of flattened posts, the
// query product, and the source the posts came from.
type ChunkInput struct {
	Posts  []discussion.Post
	Query  string
	Source string
}

// Analyzer is the extraction capability consumed by the pipeline. Any
// error is treated by callers as an empty contribution for that chunk.
type Analyzer interface {
	Analyze(ctx context.Context, input ChunkInput) (ChunkAnalysis, error)
}
