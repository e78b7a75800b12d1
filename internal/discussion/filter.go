package discussion

import (
	"sort"
	"time"
)

// FilterComments walks a comment forest with an explicit worklist and
// returns the nodes that clear the filter predicates, each carrying its
// own filtered replies. Nodes at depth >= maxDepth are never emitted, and
// a failing node's subtree is never visited: a low-quality parent prunes
// its entire branch. Siblings at every level are ordered by descending
// score. A missing author is normalized to DeletedAuthor.
func FilterComments(forest []Comment, maxDepth int, opts FilterOptions) []CommentRecord {
	now := time.Now()

	// One work item per sibling group; out points at the slot in the
	// parent record (or the root result) that receives the group's output.
	type group struct {
		comments []Comment
		depth    int
		out      *[]CommentRecord
	}

	root := []CommentRecord{}
	stack := []group{{comments: forest, depth: 0, out: &root}}

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if g.depth >= maxDepth {
			continue
		}

		type kept struct {
			record  CommentRecord
			replies []Comment
		}
		var passed []kept
		for _, c := range g.comments {
			if !opts.passes(c.Score, c.Body, c.CreatedAt, now) {
				continue
			}
			author := c.Author
			if author == "" {
				author = DeletedAuthor
			}
			passed = append(passed, kept{
				record: CommentRecord{
					ID:        c.ID,
					Author:    author,
					Body:      c.Body,
					URL:       c.URL,
					Score:     c.Score,
					CreatedAt: c.CreatedAt,
				},
				replies: c.Replies,
			})
		}

		sort.SliceStable(passed, func(i, j int) bool {
			return passed[i].record.Score > passed[j].record.Score
		})

		records := make([]CommentRecord, len(passed))
		for i := range passed {
			records[i] = passed[i].record
		}
		*g.out = records

		// records is fully sized; element pointers stay valid.
		for i := range passed {
			if len(passed[i].replies) > 0 {
				stack = append(stack, group{
					comments: passed[i].replies,
					depth:    g.depth + 1,
					out:      &records[i].Replies,
				})
			}
		}
	}

	return root
}
