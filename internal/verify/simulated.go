package verify

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.8
)

// SimulatedProvider is NON-PRODUCTION. It reads nothing from the document: after
// Delay it returns fixed synthetic fields with probability SuccessRate, otherwise an
// unreadable result.
type SimulatedProvider struct {
	Delay       time.Duration
	SuccessRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedProvider uses the defaults; pass a seed for reproducible outcomes.
func NewSimulatedProvider(seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		Delay:       DefaultDelay,
		SuccessRate: DefaultSuccessRate,
		rnd:         rand.New(rand.NewSource(seed)),
	}
}

func (p *SimulatedProvider) Verify(ctx context.Context, doc Document) (*Result, error) {
	if len(doc.Image) == 0 {
		return nil, ErrNoDocument
	}
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if p.roll() >= p.SuccessRate {
		return unverified(MsgUnreadable), nil
	}
	return &Result{
		Verified:        true,
		CaseID:          "FIR/01/2025/487",
		FileDate:        "15/09/2025",
		ComplainantName: "RAKESH KUMAR SHARMA",
	}, nil
}

func (p *SimulatedProvider) roll() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p.rnd.Float64()
}
