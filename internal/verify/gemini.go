package verify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/ai"
)

// DocumentReader is the part of ai.Client the Gemini provider needs.
type DocumentReader interface {
	ExtractDocument(ctx context.Context, image []byte, mimeType string) (*ai.DocumentFields, error)
}

// GeminiProvider reads the report with a multimodal model. A report counts as
// verified when a case id could be read.
type GeminiProvider struct {
	reader DocumentReader
}

func NewGeminiProvider(r DocumentReader) *GeminiProvider {
	return &GeminiProvider{reader: r}
}

func (p *GeminiProvider) Verify(ctx context.Context, doc Document) (*Result, error) {
	if len(doc.Image) == 0 {
		return nil, ErrNoDocument
	}
	fields, err := p.reader.ExtractDocument(ctx, doc.Image, doc.MimeType)
	if errors.Is(err, ai.ErrParseFailed) {
		return unverified(MsgUnreadable), nil
	}
	if err != nil {
		return nil, err
	}
	if fields.CaseID == "" {
		log.Info().Str("stage", "no_case_id").Msg("[verify] report not verified")
		return unverified(MsgUnreadable), nil
	}
	return &Result{
		Verified:        true,
		CaseID:          fields.CaseID,
		FileDate:        fields.FileDate,
		ComplainantName: fields.ComplainantName,
	}, nil
}
