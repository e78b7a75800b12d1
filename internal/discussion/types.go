package discussion

import "time"

// DeletedAuthor is the sentinel used when a thread or comment arrives
// without an author (removed accounts, moderator deletions).
const DeletedAuthor = "[deleted]"

// Thread is a top-level discussion post from a content source, with its
// full reply forest attached. Threads are immutable once fetched.
type Thread struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	URL          string    `json:"url"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	Comments     []Comment `json:"comments"`
}

// Comment is a single node in a thread's reply forest. Branching is
// unbounded; depth is only limited at filtering time.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies"`
}

// CommentRecord is a comment that passed filtering, carrying only the
// replies that passed as well. Siblings are ordered by descending score.
type CommentRecord struct {
	ID        string          `json:"id"`
	Author    string          `json:"author"`
	Body      string          `json:"body"`
	URL       string          `json:"url"`
	Score     int             `json:"score"`
	CreatedAt time.Time       `json:"created_at"`
	Replies   []CommentRecord `json:"replies"`
}

// Post is the flattened post+comments unit handed to the extraction
// capability: the thread body plus the filtered comment texts in order.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	URL      string   `json:"url"`
	Comments []string `json:"comments"`
}

// FilterOptions are the quality predicates shared by thread selection and
// comment filtering. RecentDays == 0 disables the recency check.
type FilterOptions struct {
	ScoreThreshold int
	MinLength      int
	RecentDays     int
}

// passes reports whether a content unit clears the score, length, and
// recency predicates. Both lower bounds are inclusive.
func (o FilterOptions) passes(score int, body string, created, now time.Time) bool {
	if score < o.ScoreThreshold {
		return false
	}
	if len(body) < o.MinLength {
		return false
	}
	if o.RecentDays > 0 {
		ageDays := int(now.Sub(created).Hours() / 24)
		if ageDays > o.RecentDays {
			return false
		}
	}
	return true
}
