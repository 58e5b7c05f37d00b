package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultEmbedModel = "gemini-embedding-001"
)

var ErrNoAPIKey = errors.New("GEMINI_API_KEY is not set")

// Client wraps the Gemini API for report extraction, photo captioning and text embeddings.
type Client struct {
	genai      *genai.Client
	model      string
	embedModel string
}

func NewClient(ctx context.Context, apiKey, model, embedModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if embedModel == "" {
		embedModel = DefaultEmbedModel
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}
	return &Client{genai: gc, model: model, embedModel: embedModel}, nil
}

// ExtractDocument reads case id, file date and complainant from a report image.
func (c *Client) ExtractDocument(ctx context.Context, image []byte, mimeType string) (*DocumentFields, error) {
	if len(image) == 0 {
		return nil, errors.New("document image is required")
	}
	start := time.Now()
	temp := float32(0)
	text, err := c.generate(ctx, "ocr", []*genai.Part{
		genai.NewPartFromText(documentPrompt),
		genai.NewPartFromBytes(image, mimeOrDefault(mimeType)),
	}, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	fields, err := ParseDocumentFields(text)
	if err != nil {
		log.Warn().Err(err).Str("stage", "parse_fail").Str("text", truncate(text, 80)).Msg("[ocr] unreadable reply")
		return nil, err
	}
	log.Debug().Str("stage", "parse_ok").Dur("total", time.Since(start)).Msg("[ocr] document extracted")
	return fields, nil
}

// Caption describes the main object in a photo.
func (c *Client) Caption(ctx context.Context, image []byte, mimeType, hint string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image is required")
	}
	temp := float32(0.1)
	text, err := c.generate(ctx, "caption", []*genai.Part{
		genai.NewPartFromText(BuildCaptionPrompt(hint)),
		genai.NewPartFromBytes(image, mimeOrDefault(mimeType)),
	}, &genai.GenerateContentConfig{Temperature: &temp})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty caption", ErrParseFailed)
	}
	return text, nil
}

// EmbedText returns a semantic-similarity embedding for text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	res, err := c.genai.Models.EmbedContent(ctx, c.embedModel, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		log.Error().Err(err).Str("stage", "embed_fail").Str("model", c.embedModel).Msg("[embed] request failed")
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini embed: no embedding returned")
	}
	return res.Embeddings[0].Values, nil
}

func (c *Client) generate(ctx context.Context, tag string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	genStart := time.Now()
	log.Debug().Str("stage", "gemini_start").Str("model", c.model).Msgf("[%s] calling model", tag)
	res, err := c.genai.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		log.Error().Err(err).Str("stage", "gemini_fail").Str("model", c.model).Msgf("[%s] generate failed", tag)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := res.Text()
	log.Debug().Str("stage", "gemini_done").Int("len", len(text)).Dur("gen", time.Since(genStart)).Msgf("[%s] model replied", tag)
	return text, nil
}

func mimeOrDefault(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		return "image/jpeg"
	}
	return m
}
