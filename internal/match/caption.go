package match

import (
	"context"
	"fmt"
)

// Captioner describes an image in words.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType, hint string) (string, error)
}

// TextEmbedder turns text into a vector.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// CaptionEmbedder captions each photo with a multimodal model and embeds the caption.
// ai.Client satisfies both interfaces.
type CaptionEmbedder struct {
	Captioner Captioner
	Text      TextEmbedder
	// Hint is passed to the captioner, usually the item category.
	Hint string
}

func (e CaptionEmbedder) Embed(ctx context.Context, img Image) ([]float32, error) {
	caption, err := e.Captioner.Caption(ctx, img.Data, img.MimeType, e.Hint)
	if err != nil {
		return nil, fmt.Errorf("caption: %w", err)
	}
	return e.Text.EmbedText(ctx, caption)
}
