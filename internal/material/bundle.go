package material

import (
	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/texture"
)

// TextureBundle is the decoded set of maps for one material key. Bundles are
// shared through the resolver cache and must not be modified.
type TextureBundle struct {
	Key        bed.Key
	Maps       map[catalog.Channel]*texture.Map
	Properties catalog.RenderProperties
}

// Map returns the channel's map, or nil when the color does not declare it.
func (b *TextureBundle) Map(ch catalog.Channel) *texture.Map {
	if b == nil {
		return nil
	}
	return b.Maps[ch]
}

// Resolution is the outcome of one Resolve call. Exactly one of Bundle and
// Fallback is set.
type Resolution struct {
	Slot       bed.Slot
	Key        bed.Key
	Generation uint64
	Bundle     *TextureBundle
	Fallback   *catalog.FlatMaterial
	// Err holds the combined load errors behind a fallback.
	Err error
}

// IsFallback reports whether the resolution carries a flat material.
func (r Resolution) IsFallback() bool {
	return r.Bundle == nil
}
