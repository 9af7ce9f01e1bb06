package client

import (
	"context"
	"fmt"

	"github.com/runcoach/backend/internal/config"
	"google.golang.org/genai"
)

// CoachClient wraps the Gemini API for the three model calls the product
// makes: plan generation, workout screenshot parsing and text embeddings.
type CoachClient struct {
	client         *genai.Client
	planModel      string
	visionModel    string
	embeddingModel string
}

func NewCoachClient(cfg config.CoachConfig) (*CoachClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &CoachClient{
		client:         client,
		planModel:      cfg.PlanModel,
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// GeneratePlan sends the coaching prompt and returns the model's JSON reply
// verbatim; the caller owns parsing.
func (c *CoachClient) GeneratePlan(ctx context.Context, prompt string) (string, string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.planModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", c.planModel, err
	}
	text := res.Text()
	if text == "" {
		return "", c.planModel, fmt.Errorf("empty generation result")
	}
	return text, c.planModel, nil
}

// ParseWorkoutImage sends a screenshot plus an extraction prompt to the
// vision model and returns its JSON reply.
func (c *CoachClient) ParseWorkoutImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	res, err := c.client.Models.GenerateContent(ctx, c.visionModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("empty vision result")
	}
	return text, nil
}

func (c *CoachClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, c.embeddingModel, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.embeddingModel, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.embeddingModel, nil
}
