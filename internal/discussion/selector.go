package discussion

import (
	"sort"
	"strings"
	"time"
)

// SelectThreads orders threads by descending body length and keeps only
// those with a non-blank body that clear the filter predicates. Longer
// bodies sort first so downstream batches front-load the richest content.
// The input slice is not modified.
func SelectThreads(threads []Thread, opts FilterOptions) []Thread {
	now := time.Now()

	ordered := make([]Thread, len(threads))
	copy(ordered, threads)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Body) > len(ordered[j].Body)
	})

	var selected []Thread
	for _, t := range ordered {
		if strings.TrimSpace(t.Body) == "" {
			continue
		}
		if !opts.passes(t.Score, t.Body, t.CreatedAt, now) {
			continue
		}
		if t.Author == "" {
			t.Author = DeletedAuthor
		}
		selected = append(selected, t)
	}
	return selected
}

// FlattenThread combines a thread with its filtered comments into the
// post unit consumed by the extraction capability. Comment texts are
// emitted depth-first so replies stay next to their parent.
func FlattenThread(t Thread, records []CommentRecord) Post {
	post := Post{
		ID:    t.ID,
		Title: t.Title,
		Body:  t.Body,
		URL:   t.URL,
	}
	var walk func(recs []CommentRecord)
	walk = func(recs []CommentRecord) {
		for _, r := range recs {
			post.Comments = append(post.Comments, r.Author+": "+r.Body)
			walk(r.Replies)
		}
	}
	walk(records)
	return post
}
