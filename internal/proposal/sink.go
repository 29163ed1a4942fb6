package proposal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/bed-atelier/internal/logger"
)

// Sink receives finished proposals.
type Sink interface {
	Put(ctx context.Context, p *Proposal) error
}

// DirSink writes each proposal as a JSON file into Dir.
type DirSink struct {
	Dir string
}

// NewDirSink creates a sink writing into dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Put writes p to <Dir>/<kind>-<id>.json.
func (s *DirSink) Put(ctx context.Context, p *Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating proposal dir: %w", err)
	}

	data, err := p.JSON()
	if err != nil {
		return fmt.Errorf("encoding proposal: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".proposal-*.json")
	if err != nil {
		return fmt.Errorf("writing proposal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing proposal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing proposal: %w", err)
	}

	path := filepath.Join(s.Dir, p.Filename())
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing proposal: %w", err)
	}

	logger.Info("proposal written", zap.String("path", path), zap.Int("total", p.TotalPrice))
	return nil
}

// MemorySink keeps proposals in memory.
type MemorySink struct {
	mu        sync.Mutex
	proposals []*Proposal
}

// Put stores p.
func (s *MemorySink) Put(ctx context.Context, p *Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals = append(s.proposals, p)
	return nil
}

// Proposals returns everything stored so far.
func (s *MemorySink) Proposals() []*Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Proposal(nil), s.proposals...)
}
