package pipeline

import "github.com/reviewlens/reviewlens/internal/extraction"

// Result is the consensus output of one search: every extracted review
// plus the majority-vote decision. OverallDecision is empty when no
// chunk produced a verdict.
type Result struct {
	Reviews         []extraction.ReviewJudgment `json:"reviews"`
	OverallDecision string                      `json:"overall_decision"`
}

// Aggregate folds chunk results into one Result. Reviews are
// concatenated in chunk order; failed chunks contribute nothing. The
// consensus decision is the most frequent chunk decision, with ties
// broken deterministically in favor of the first value to reach the
// maximum count in collection order.
func Aggregate(results []ChunkResult) Result {
	reviews := []extraction.ReviewJudgment{}
	var decisions []string

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		reviews = append(reviews, r.Analysis.Reviews...)
		if r.Analysis.OverallDecision != "" {
			decisions = append(decisions, r.Analysis.OverallDecision)
		}
	}

	return Result{
		Reviews:         reviews,
		OverallDecision: consensus(decisions),
	}
}

// consensus returns the first value to reach the highest occurrence
// count. With ["good","bad"] the result is "good"; with
// ["bad","good","good"] it is "good".
func consensus(decisions []string) string {
	counts := make(map[string]int, len(decisions))
	best := ""
	bestCount := 0
	for _, d := range decisions {
		counts[d]++
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best
}
