package discussion

import (
	"strings"

	"golang.org/x/net/html"
)

// Sanitize strips HTML markup from a comment body and returns plain text.
// Video-platform comment APIs deliver bodies as HTML fragments (entities,
// <br> line breaks, anchor tags); forum bodies are usually already plain
// and pass through untouched.
func Sanitize(body string) string {
	if !strings.ContainsAny(body, "<&") {
		return body
	}

	tz := html.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.WriteString(tz.Token().Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tz.TagName()
			if tag := string(name); tag == "br" || tag == "p" {
				b.WriteString("\n")
			}
		}
	}
}

// SanitizeThread returns a copy of the thread with Sanitize applied to
// its body and every comment body in the forest.
func SanitizeThread(t Thread) Thread {
	t.Body = Sanitize(t.Body)
	t.Comments = sanitizeForest(t.Comments)
	return t
}

func sanitizeForest(comments []Comment) []Comment {
	out := make([]Comment, len(comments))
	for i, c := range comments {
		c.Body = Sanitize(c.Body)
		c.Replies = sanitizeForest(c.Replies)
		out[i] = c
	}
	return out
}
