// Package material turns catalog selections into texture bundles.
//
// Loads run off the logic goroutine; completions come back through a
// loop.Queue so that the cache, the generation counters and the delivery
// callback are only ever touched by whoever drains the queue.
package material

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/logger"
	"github.com/Faultbox/bed-atelier/internal/loop"
	"github.com/Faultbox/bed-atelier/internal/texture"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// ErrUnknownKey is carried by resolutions for keys missing from the catalog.
var ErrUnknownKey = errors.New("material key not in catalog")

// Loader reads asset bytes by name. *assets.Manager implements it.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// Options tunes loading.
type Options struct {
	// MaxTextureSize caps the longest side of decoded maps. 0 means no limit.
	MaxTextureSize int
	// Concurrency bounds parallel channel loads per bundle. 0 means 4.
	Concurrency int
}

// Stats reports cache behaviour.
type Stats struct {
	Hits   int
	Misses int
	Cached int
}

// Resolver loads and caches texture bundles and tags every request with a
// per-slot generation. Resolve, IsLatest and Stats must be called from the
// goroutine that drains the queue.
type Resolver struct {
	cat     *catalog.Catalog
	loader  Loader
	queue   *loop.Queue
	deliver func(Resolution)
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	flight singleflight.Group

	cache       map[bed.Key]*TextureBundle
	generations map[bed.Slot]uint64
	hits        int
	misses      int
}

// NewResolver creates a resolver. deliver is invoked from queue.Drain for
// every resolution, current or stale.
func NewResolver(cat *catalog.Catalog, loader Loader, queue *loop.Queue, deliver func(Resolution), opts Options) *Resolver {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		cat:         cat,
		loader:      loader,
		queue:       queue,
		deliver:     deliver,
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		cache:       make(map[bed.Key]*TextureBundle),
		generations: make(map[bed.Slot]uint64),
	}
}

// Resolve requests the bundle for key on slot and returns the generation
// issued for it. The result is always delivered asynchronously, even on a
// cache hit.
func (r *Resolver) Resolve(slot bed.Slot, key bed.Key) uint64 {
	r.generations[slot]++
	gen := r.generations[slot]
	res := Resolution{Slot: slot, Key: key, Generation: gen}

	entry, opt, ok := r.cat.ColorOption(key)
	if !ok {
		flat := catalog.NeutralMaterial
		if entry != nil {
			flat = entry.FallbackMaterial()
		}
		res.Fallback = &flat
		res.Err = fmt.Errorf("%w: %s", ErrUnknownKey, key)
		r.post(res, nil)
		return gen
	}

	if bundle, ok := r.cache[key]; ok {
		r.hits++
		res.Bundle = bundle
		r.post(res, nil)
		return gen
	}
	r.misses++

	logger.Debug("loading material", zap.String("slot", string(slot)), zap.Stringer("key", key), zap.Uint64("generation", gen))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		v, err, _ := r.flight.Do(key.String(), func() (any, error) {
			return r.load(key, entry, opt)
		})
		if err != nil {
			flat := entry.FallbackMaterial()
			res.Fallback = &flat
			res.Err = err
			r.post(res, nil)
			return
		}
		bundle := v.(*TextureBundle)
		res.Bundle = bundle
		r.post(res, bundle)
	}()

	return gen
}

// post hands res to the logic goroutine, caching a freshly loaded bundle
// first.
func (r *Resolver) post(res Resolution, loaded *TextureBundle) {
	r.queue.Post(func() {
		if loaded != nil {
			r.cache[res.Key] = loaded
		}
		if res.Err != nil {
			logger.Warn("material resolution failed, using fallback",
				zap.String("slot", string(res.Slot)),
				zap.Stringer("key", res.Key),
				zap.Error(res.Err))
		}
		r.deliver(res)
	})
}

// load fetches and decodes every declared channel of opt.
func (r *Resolver) load(key bed.Key, entry *catalog.Entry, opt catalog.ColorOption) (*TextureBundle, error) {
	channels := opt.Channels.Declared()
	maps := make([]*texture.Map, len(channels))
	errs := make([]error, len(channels))
	repeat := entry.Properties.Repeat

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, ch := range channels {
		g.Go(func() error {
			data, err := r.loader.Load(r.ctx, ch.Path)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", ch.Channel, err)
				return nil
			}
			img, err := texture.Decode(ch.Path, data, r.opts.MaxTextureSize)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", ch.Channel, err)
				return nil
			}
			maps[i] = &texture.Map{
				Channel:    ch.Channel,
				Image:      img,
				WrapRepeat: true,
				Repeat:     math.Vec2{X: repeat, Y: repeat},
			}
			return nil
		})
	}
	g.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}

	bundle := &TextureBundle{
		Key:        key,
		Maps:       make(map[catalog.Channel]*texture.Map, len(maps)),
		Properties: entry.Properties,
	}
	for _, m := range maps {
		bundle.Maps[m.Channel] = m
	}
	return bundle, nil
}

// IsLatest reports whether gen is the most recent generation issued for slot.
func (r *Resolver) IsLatest(slot bed.Slot, gen uint64) bool {
	return r.generations[slot] == gen
}

// Generation returns the most recent generation issued for slot.
func (r *Resolver) Generation(slot bed.Slot) uint64 {
	return r.generations[slot]
}

// Stats returns cache statistics.
func (r *Resolver) Stats() Stats {
	return Stats{Hits: r.hits, Misses: r.misses, Cached: len(r.cache)}
}

// Close cancels in-flight loads and waits for their goroutines. Their
// results are still posted, as fallbacks.
func (r *Resolver) Close() {
	r.cancel()
	r.wg.Wait()
}
