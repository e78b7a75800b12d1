package extraction

import (
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You analyze discussion posts about consumer products and extract unique product reviews from them, if and only if a post or comment is a product review.

Respond only with a valid JSON object. Do not include any additional text or commentary.

Expected JSON response format:
{
  "reviews": [
    {
      "source": "the source label provided with the post",
      "url": "the URL of the post or comment",
      "product_name": "the product being reviewed, if identifiable",
      "review_summary": "a brief summary of the review, only if it is a product review",
      "pros": ["..."],
      "cons": ["..."],
      "sentiment": "positive" | "negative" | "neutral",
      "is_product_of_interest": whether the review covers the product of interest,
      "post_id": "the id of the post or comment the review came from",
      "detail_score": 0-10 (10 = very well detailed),
      "balanced_score": 0-10 (10 = very balanced, 0 = biased),
      "well_written_score": 0-10 (10 = very well written),
      "star_rating": 1-5 or null
    }
  ],
  "overall_decision": "one sentence on whether the product of interest is a good buy based on the extracted reviews, prioritizing reviews with the best detail, balance, and writing scores"
}

If no reviews are present, return {"reviews": [], "overall_decision": ""}.`

type promptPost struct {
	PostID   string   `json:"post_id"`
	Post     string   `json:"post"`
	URL      string   `json:"url"`
	Comments []string `json:"comments"`
}

// buildChatMessages converts a chunk into the system instruction plus one
// user message per post, each a JSON object the model can quote ids from.
func buildChatMessages(input ChunkInput) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Product of interest: %s\nSource: %s\nAnalyze the following %s posts.",
				input.Query, input.Source, input.Source),
		},
	}

	for _, post := range input.Posts {
		body := post.Body
		if post.Title != "" {
			body = post.Title + "\n" + body
		}
		b, err := json.Marshal(promptPost{
			PostID:   post.ID,
			Post:     body,
			URL:      post.URL,
			Comments: post.Comments,
		})
		if err != nil {
			slog.Warn("failed to marshal post for extraction prompt",
				"post_id", post.ID, "error", err)
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: string(b),
		})
	}

	return messages
}
