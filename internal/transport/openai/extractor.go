package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
)

const extractSystemPrompt = "You are a sommelier assistant. " +
	"Extract a structured list of wines from this restaurant menu image. Return JSON only."

const extractUserPrompt = `Return a JSON object {"wines": [...], "text": "..."}.
"wines" is an array with fields: name, producer, region, country, grape, vintage, price, currency, byGlassOrBottle, section, rawText.
vintage is a string. price is a number without currency symbols. byGlassOrBottle is one of glass, bottle, both, unknown.
"text" is a plain transcription of the wine list, one wine per line ending with its price.`

// Extractor reads wine lists from menu photos with a vision-capable chat model.
type Extractor struct {
	chat *chatClient
}

// NewExtractor creates a vision menu extractor.
func NewExtractor(cfg *Config) *Extractor {
	return &Extractor{chat: newChatClient(cfg)}
}

// ExtractMenu implements domain.MenuExtractor.
// A reply that is not JSON is kept as a plain transcription.
func (e *Extractor) ExtractMenu(ctx context.Context, img domain.MenuImage) (domain.MenuExtraction, error) {
	if len(img.Data) == 0 {
		return domain.MenuExtraction{}, fmt.Errorf("extract menu: %w", domain.NewInvalidInput("image is empty"))
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractUserPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	content, usage, err := e.chat.complete(ctx, "extract", req)
	if err != nil {
		return domain.MenuExtraction{}, err
	}

	out := decodeExtraction(content)
	out.PromptTokens = usage.PromptTokens
	out.TotalTokens = usage.TotalTokens

	e.chat.logger.Debug("Menu extracted",
		zap.String("model", e.chat.model),
		zap.Int("wines", len(out.Wines)),
		zap.Int("text_len", len(out.Text)),
	)
	return out, nil
}

// HealthCheck implements domain.HealthChecker.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	return e.chat.HealthCheck(ctx)
}

func decodeExtraction(content string) domain.MenuExtraction {
	var payload struct {
		Text  string `json:"text"`
		Wines []any  `json:"wines"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(content)), &payload); err != nil {
		return domain.MenuExtraction{Text: content}
	}

	wines := make([]map[string]any, 0, len(payload.Wines))
	for _, w := range payload.Wines {
		if rec, ok := w.(map[string]any); ok {
			wines = append(wines, rec)
		}
	}
	return domain.MenuExtraction{Text: payload.Text, Wines: wines}
}
