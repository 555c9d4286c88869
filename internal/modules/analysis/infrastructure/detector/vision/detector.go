package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You label photographs. Reply with a JSON object of the form
{"labels":[{"name":"Cat","confidence":98.5}]} listing the objects, scenes and concepts
visible in the image. Names are short English nouns in title case. Confidence is a
percentage between 0 and 100.`

// Config configures an OpenAI-compatible multimodal endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Detector asks a vision-capable chat model for labels. The image is read
// from storage and sent inline as a data URL.
type Detector struct {
	client *openai.Client
	model  string
	images domain.ObjectReader
}

func New(cfg Config, images domain.ObjectReader) (*Detector, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vision API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Detector{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		images: images,
	}, nil
}

func (d *Detector) Name() string { return "vision" }

type labelReply struct {
	Labels []domain.Label `json:"labels"`
}

func (d *Detector) DetectLabels(ctx context.Context, req domain.DetectRequest) ([]domain.Label, error) {
	data, err := d.images.ReadAll(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, mimeType)
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf("List up to %d labels.", req.MaxLabels),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("vision model returned no choices")
	}

	var reply labelReply
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse vision reply: %w", err)
	}

	return domain.RankLabels(reply.Labels, req.MaxLabels, req.MinConfidence), nil
}

// stripCodeFence removes a ```json fence some models wrap replies in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
