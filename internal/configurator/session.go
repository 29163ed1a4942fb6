// Package configurator wires the store, resolver, binder and camera into a
// session driven by a single logic goroutine.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/camera"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/logger"
	"github.com/Faultbox/bed-atelier/internal/loop"
	"github.com/Faultbox/bed-atelier/internal/material"
	"github.com/Faultbox/bed-atelier/internal/pricing"
	"github.com/Faultbox/bed-atelier/internal/proposal"
	"github.com/Faultbox/bed-atelier/internal/scene"
	"github.com/Faultbox/bed-atelier/internal/store"
)

// DefaultFrameInterval is the tick period used by Run when none is set.
const DefaultFrameInterval = time.Second / 60

// ErrClosed is returned by Call after Close.
var ErrClosed = errors.New("session closed")

// Options configures a session.
type Options struct {
	Loader material.Loader
	// Graph defaults to the graph the catalog describes.
	Graph           *scene.Graph
	MaxTextureSize  int
	LoadConcurrency int
	Transition      time.Duration
	FrameInterval   time.Duration
}

// Session keeps the scene, the camera and the price in sync with the
// configuration store. Everything except Post and Call must run on the
// logic goroutine, the one calling Tick.
type Session struct {
	cat      *catalog.Catalog
	store    *store.Store
	resolver *material.Resolver
	binder   *scene.Binder
	camera   *camera.Controller
	queue    *loop.Queue
	interval time.Duration

	requested   map[bed.Slot]bed.Key
	resolutions map[bed.Slot]material.Resolution
	price       int
	unsubscribe func()
	now         func() time.Time
}

// New creates a session starting from the catalog's default configuration
// and issues the initial material resolutions.
func New(cat *catalog.Catalog, opts Options) *Session {
	graph := opts.Graph
	if graph == nil {
		graph = scene.FromCatalog(cat)
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	s := &Session{
		cat:         cat,
		store:       store.New(cat),
		binder:      scene.NewBinder(cat, graph),
		queue:       loop.NewQueue(),
		interval:    interval,
		requested:   make(map[bed.Slot]bed.Key),
		resolutions: make(map[bed.Slot]material.Resolution),
		now:         time.Now,
	}
	s.resolver = material.NewResolver(cat, opts.Loader, s.queue, s.deliver, material.Options{
		MaxTextureSize: opts.MaxTextureSize,
		Concurrency:    opts.LoadConcurrency,
	})

	cfg := s.store.Current()
	preset, _ := cat.CameraPreset(cfg.CameraView)
	s.camera = camera.NewController(preset, opts.Transition)

	s.unsubscribe = s.store.Subscribe(s.sync)
	s.sync(cfg)
	return s
}

// sync reacts to a new configuration.
func (s *Session) sync(cfg bed.Configuration) {
	s.price = pricing.Total(cfg)

	for _, slot := range bed.Slots {
		key := cfg.Selection(slot).Key()
		if prev, ok := s.requested[slot]; ok && prev == key {
			continue
		}
		s.requested[slot] = key
		s.resolver.Resolve(slot, key)
	}

	s.binder.Apply(cfg, s.resolutions)

	if cfg.CameraView != s.camera.View() {
		if preset, ok := s.cat.CameraPreset(cfg.CameraView); ok {
			s.camera.SetView(preset)
		}
	}
}

// deliver applies a resolution if it is still the latest for its slot.
func (s *Session) deliver(res material.Resolution) {
	if !s.resolver.IsLatest(res.Slot, res.Generation) {
		logger.Debug("discarding stale resolution",
			zap.String("slot", string(res.Slot)),
			zap.Stringer("key", res.Key),
			zap.Uint64("generation", res.Generation),
			zap.Uint64("latest", s.resolver.Generation(res.Slot)))
		return
	}

	s.resolutions[res.Slot] = res
	s.binder.Apply(s.store.Current(), s.resolutions)
}

// Tick delivers completed loads and advances the camera by dt.
func (s *Session) Tick(dt time.Duration) {
	s.queue.Drain()
	s.camera.Tick(dt)
}

// Run calls Tick at the frame interval until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Tick(now.Sub(last))
			last = now
		}
	}
}

// Post schedules fn on the logic goroutine. Safe to call from any goroutine.
func (s *Session) Post(fn func()) bool {
	return s.queue.Post(fn)
}

// Call runs fn on the logic goroutine and waits for its result. A running
// Run (or manual Tick) is required for it to complete.
func (s *Session) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	if !s.queue.Post(func() { done <- fn() }) {
		return ErrClosed
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Store returns the configuration store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Catalog returns the session catalog.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Camera returns the camera controller.
func (s *Session) Camera() *camera.Controller {
	return s.camera
}

// Graph returns the bound scene graph.
func (s *Session) Graph() *scene.Graph {
	return s.binder.Graph()
}

// Price returns the current total price.
func (s *Session) Price() int {
	return s.price
}

// Resolution returns the latest applied resolution for slot.
func (s *Session) Resolution(slot bed.Slot) (material.Resolution, bool) {
	res, ok := s.resolutions[slot]
	return res, ok
}

// Stats returns resolver cache statistics.
func (s *Session) Stats() material.Stats {
	return s.resolver.Stats()
}

// Save stores a save proposal of the current configuration.
func (s *Session) Save(ctx context.Context, sink proposal.Sink) (*proposal.Proposal, error) {
	return s.publish(ctx, sink, proposal.KindSave)
}

// Export stores an export proposal of the current configuration.
func (s *Session) Export(ctx context.Context, sink proposal.Sink) (*proposal.Proposal, error) {
	return s.publish(ctx, sink, proposal.KindExport)
}

func (s *Session) publish(ctx context.Context, sink proposal.Sink, kind proposal.Kind) (*proposal.Proposal, error) {
	p, err := proposal.New(kind, s.store.Current(), s.now())
	if err != nil {
		return nil, err
	}
	if err := sink.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("publishing %s proposal: %w", kind, err)
	}
	return p, nil
}

// Close stops in-flight loads and detaches from the store.
func (s *Session) Close() {
	s.unsubscribe()
	s.resolver.Close()
	s.queue.Close()
}
