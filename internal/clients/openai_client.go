package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	DEFAULT_OPENAI_MODEL = "gpt-4o-mini"
)

const openAIRatingPrompt = `You rate citizen ideas and complaints about a city, usually written in Portuguese.
Rate the overall sentiment of the text on a scale of 1 to 5 stars:
1 = very negative, 2 = negative, 3 = neutral, 4 = positive, 5 = very positive.

Return only valid JSON, formatted exactly as follows:
{"stars": N, "confidence": P}

where N is an integer from 1 to 5 and P is your probability (0 to 1) that N is correct.
No Markdown formatting and no extra text before or after the JSON output.`

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

type openAIRating struct {
	Stars      int     `json:"stars"`
	Confidence float64 `json:"confidence"`
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	if model == "" {
		model = DEFAULT_OPENAI_MODEL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	)

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{Client: client, model: model}, nil
}

// Predict asks the chat model for a star rating and reports it in the
// "<n> stars" form used by the rating models.
func (o *OpenAIClient) Predict(ctx context.Context, text string) (string, float64, error) {
	completion, err := o.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAIRatingPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", 0, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", 0, errors.New("empty completion")
	}

	raw := cleanOpenAIResponse(completion.Choices[0].Message.Content)

	var rating openAIRating
	if err := json.Unmarshal([]byte(raw), &rating); err != nil {
		// not an error: an unreadable rating surfaces as an unparseable label
		slog.Warn("[OpenAIClient] Failed to parse rating JSON",
			slog.String("error", err.Error()))
		return raw, 0, nil
	}

	return fmt.Sprintf("%d stars", rating.Stars), clampUnit(rating.Confidence), nil
}

func cleanOpenAIResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
