package material

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/bed-atelier/internal/assets"
	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/loop"
)

const (
	sandBase    = "textures/fabric/Fabric063_1K-JPG_Color.jpg"
	grayBase    = "textures/fabric/Fabric066_1K-JPG_Color.jpg"
	boucleNorm  = "textures/boucle/Poliigon_BoucleFabricBubbly_7827_Normal.png"
	boucleRough = "textures/boucle/Poliigon_BoucleFabricBubbly_7827_Roughness.jpg"
)

var (
	sand   = bed.Key{MaterialType: "fabric", ColorID: "fabric_063"}
	gray   = bed.Key{MaterialType: "fabric", ColorID: "fabric_066"}
	taupe  = bed.Key{MaterialType: "fabric", ColorID: "fabric_029"}
	bubbly = bed.Key{MaterialType: "boucle", ColorID: "boucle_bubbly"}
)

// fakeLoader serves a small PNG for every name unless told otherwise.
// Names with a gate block until the gate is closed or the context ends.
type fakeLoader struct {
	mu    sync.Mutex
	png   []byte
	data  map[string][]byte
	fail  map[string]error
	gates map[string]chan struct{}
	calls map[string]int
}

func newFakeLoader(t *testing.T) *fakeLoader {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))))
	return &fakeLoader{
		png:   buf.Bytes(),
		data:  map[string][]byte{},
		fail:  map[string]error{},
		gates: map[string]chan struct{}{},
		calls: map[string]int{},
	}
}

func (l *fakeLoader) gate(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	l.gates[name] = ch
	return ch
}

func (l *fakeLoader) Load(ctx context.Context, name string) ([]byte, error) {
	l.mu.Lock()
	l.calls[name]++
	gate := l.gates[name]
	err := l.fail[name]
	data, ok := l.data[name]
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if ok {
		return data, nil
	}
	return l.png, nil
}

func (l *fakeLoader) callCount(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[name]
}

type harness struct {
	resolver  *Resolver
	queue     *loop.Queue
	loader    *fakeLoader
	delivered []Resolution
}

func newHarness(t *testing.T, opts Options) *harness {
	h := &harness{queue: loop.NewQueue(), loader: newFakeLoader(t)}
	h.resolver = NewResolver(catalog.Builtin(), h.loader, h.queue, func(r Resolution) {
		h.delivered = append(h.delivered, r)
	}, opts)
	t.Cleanup(h.resolver.Close)
	return h
}

// drain waits until n callbacks are queued, then runs them.
func (h *harness) drain(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.queue.Len() >= n }, time.Second, time.Millisecond)
	h.queue.Drain()
}

func TestResolveDeliversBundle(t *testing.T) {
	h := newHarness(t, Options{})

	gen := h.resolver.Resolve(bed.SlotHeadboard, bubbly)
	assert.Equal(t, uint64(1), gen)
	assert.Empty(t, h.delivered, "delivery must not be synchronous")

	h.drain(t, 1)
	require.Len(t, h.delivered, 1)

	res := h.delivered[0]
	assert.Equal(t, bed.SlotHeadboard, res.Slot)
	assert.Equal(t, bubbly, res.Key)
	assert.False(t, res.IsFallback())
	assert.NoError(t, res.Err)
	assert.True(t, h.resolver.IsLatest(bed.SlotHeadboard, res.Generation))

	for _, ch := range []catalog.Channel{catalog.ChannelBaseColor, catalog.ChannelNormal, catalog.ChannelRoughness, catalog.ChannelMetallic} {
		m := res.Bundle.Map(ch)
		require.NotNil(t, m, "channel %s", ch)
		assert.True(t, m.WrapRepeat)
		assert.Equal(t, float32(2), m.Repeat.X)
		assert.Equal(t, float32(2), m.Repeat.Y)
	}
	assert.Nil(t, res.Bundle.Map(catalog.ChannelAO))
	assert.Equal(t, float32(1.8), res.Bundle.Properties.NormalScale)
}

func TestResolveDownscales(t *testing.T) {
	h := newHarness(t, Options{MaxTextureSize: 4})

	h.resolver.Resolve(bed.SlotFrame, sand)
	h.drain(t, 1)

	w, hgt := h.delivered[0].Bundle.Map(catalog.ChannelBaseColor).Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, hgt)
}

func TestCacheHitStillDeliversAsynchronously(t *testing.T) {
	h := newHarness(t, Options{})

	h.resolver.Resolve(bed.SlotFrame, sand)
	h.drain(t, 1)

	gen := h.resolver.Resolve(bed.SlotFrame, sand)
	assert.Len(t, h.delivered, 1)
	assert.Equal(t, 1, h.queue.Len())

	h.queue.Drain()
	require.Len(t, h.delivered, 2)
	assert.Equal(t, gen, h.delivered[1].Generation)
	assert.Same(t, h.delivered[0].Bundle, h.delivered[1].Bundle)

	assert.Equal(t, 1, h.loader.callCount(sandBase))
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Cached: 1}, h.resolver.Stats())
}

func TestStaleResolutionIsNotLatest(t *testing.T) {
	h := newHarness(t, Options{})
	release := h.loader.gate(sandBase)

	first := h.resolver.Resolve(bed.SlotFrame, sand)
	second := h.resolver.Resolve(bed.SlotFrame, gray)

	// the newer request completes first
	h.drain(t, 1)
	require.Len(t, h.delivered, 1)
	assert.Equal(t, second, h.delivered[0].Generation)
	assert.True(t, h.resolver.IsLatest(bed.SlotFrame, second))

	close(release)
	h.drain(t, 1)
	require.Len(t, h.delivered, 2)
	assert.Equal(t, first, h.delivered[1].Generation)
	assert.False(t, h.resolver.IsLatest(bed.SlotFrame, first))
	assert.Equal(t, second, h.resolver.Generation(bed.SlotFrame))

	// stale results are still cached
	assert.Equal(t, 2, h.resolver.Stats().Cached)
}

func TestGenerationsArePerSlot(t *testing.T) {
	h := newHarness(t, Options{})

	assert.Equal(t, uint64(1), h.resolver.Resolve(bed.SlotFrame, sand))
	assert.Equal(t, uint64(1), h.resolver.Resolve(bed.SlotHeadboard, bubbly))
	assert.Equal(t, uint64(2), h.resolver.Resolve(bed.SlotFrame, gray))
	assert.True(t, h.resolver.IsLatest(bed.SlotHeadboard, 1))
	assert.False(t, h.resolver.IsLatest(bed.SlotFrame, 1))
}

func TestChannelFailureFallsBack(t *testing.T) {
	h := newHarness(t, Options{})
	h.loader.fail[boucleNorm] = assets.ErrNotFound
	h.loader.data[boucleRough] = []byte("definitely not a jpeg")

	h.resolver.Resolve(bed.SlotHeadboard, bubbly)
	h.drain(t, 1)

	res := h.delivered[0]
	require.True(t, res.IsFallback())
	entry, _ := catalog.Builtin().Material("boucle")
	assert.Equal(t, entry.FallbackMaterial(), *res.Fallback)
	assert.ErrorIs(t, res.Err, assets.ErrNotFound)
	assert.Contains(t, res.Err.Error(), "roughness")

	// failures are not cached
	h.resolver.Resolve(bed.SlotHeadboard, bubbly)
	h.drain(t, 1)
	assert.Equal(t, 2, h.loader.callCount(boucleNorm))
	assert.Equal(t, Stats{Hits: 0, Misses: 2, Cached: 0}, h.resolver.Stats())
}

func TestUnknownKeyFallsBack(t *testing.T) {
	h := newHarness(t, Options{})

	h.resolver.Resolve(bed.SlotFrame, bed.Key{MaterialType: "fabric", ColorID: "nope"})
	h.resolver.Resolve(bed.SlotFrame, bed.Key{MaterialType: "leather", ColorID: "black"})
	h.drain(t, 2)

	require.Len(t, h.delivered, 2)
	entry, _ := catalog.Builtin().Material("fabric")
	assert.Equal(t, entry.FallbackMaterial(), *h.delivered[0].Fallback)
	assert.Equal(t, catalog.NeutralMaterial, *h.delivered[1].Fallback)
	for _, res := range h.delivered {
		assert.True(t, errors.Is(res.Err, ErrUnknownKey))
	}
}

func TestConcurrentRequestsShareOneLoad(t *testing.T) {
	h := newHarness(t, Options{})
	release := h.loader.gate("textures/fabric/D151.jpg")

	h.resolver.Resolve(bed.SlotFrame, taupe)
	h.resolver.Resolve(bed.SlotHeadboard, taupe)
	require.Eventually(t, func() bool {
		return h.loader.callCount("textures/fabric/D151.jpg") == 1
	}, time.Second, time.Millisecond)
	// let the second request join the in-flight load
	time.Sleep(50 * time.Millisecond)

	close(release)
	h.drain(t, 2)

	require.Len(t, h.delivered, 2)
	assert.Same(t, h.delivered[0].Bundle, h.delivered[1].Bundle)
	assert.Equal(t, 1, h.loader.callCount("textures/fabric/D151.jpg"))
	assert.NotNil(t, h.delivered[0].Bundle.Map(catalog.ChannelAO))
}

func TestCloseCancelsInFlightLoads(t *testing.T) {
	h := newHarness(t, Options{})
	h.loader.gate(sandBase)

	h.resolver.Resolve(bed.SlotFrame, sand)
	require.Eventually(t, func() bool { return h.loader.callCount(sandBase) == 1 }, time.Second, time.Millisecond)

	h.resolver.Close()

	require.Equal(t, 1, h.queue.Drain())
	res := h.delivered[0]
	assert.True(t, res.IsFallback())
	assert.ErrorIs(t, res.Err, context.Canceled)
}
