// Package match scores how likely two photos show the same item.
package match

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
)

type Likelihood string

const (
	High   Likelihood = "High"
	Medium Likelihood = "Medium"
	Low    Likelihood = "Low"
)

var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Image is raw encoded image data.
type Image struct {
	Data     []byte
	MimeType string
}

type Embedder interface {
	Embed(ctx context.Context, img Image) ([]float32, error)
}

type Result struct {
	Score      float64    `json:"similarity_score" yaml:"similarity_score"`
	Likelihood Likelihood `json:"match_likelihood" yaml:"match_likelihood"`
	Notes      string     `json:"comparison_notes" yaml:"comparison_notes"`
}

// Cosine returns the cosine similarity of a and b. A zero vector scores 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Classify buckets a score; both thresholds are exclusive.
func Classify(score float64) Likelihood {
	switch {
	case score > HighThreshold:
		return High
	case score > MediumThreshold:
		return Medium
	default:
		return Low
	}
}

func notes(score float64, l Likelihood) string {
	switch l {
	case High:
		return fmt.Sprintf("The feature vector similarity score of %.3f indicates a high likelihood of a match.", score)
	case Medium:
		return fmt.Sprintf("The similarity score of %.3f is moderate. Further manual checks are recommended.", score)
	default:
		return fmt.Sprintf("The low similarity score of %.3f suggests this is likely not the same item.", score)
	}
}

// Compare embeds both images concurrently and scores them.
func Compare(ctx context.Context, e Embedder, lost, found Image) (*Result, error) {
	var va, vb []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.Embed(gctx, lost)
		if err != nil {
			return fmt.Errorf("embed lost item image: %w", err)
		}
		va = v
		return nil
	})
	g.Go(func() error {
		v, err := e.Embed(gctx, found)
		if err != nil {
			return fmt.Errorf("embed found item image: %w", err)
		}
		vb = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	score, err := Cosine(va, vb)
	if err != nil {
		return nil, err
	}
	l := Classify(score)
	return &Result{Score: score, Likelihood: l, Notes: notes(score, l)}, nil
}
