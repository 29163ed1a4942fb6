package catalog

import (
	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// Builtin returns the catalog shipped with the configurator.
func Builtin() *Catalog {
	c := &Catalog{
		Materials: []*Entry{
			{
				Type:      "boucle",
				Name:      "Boucle Fabric",
				UnitPrice: 85,
				Colors: []ColorOption{
					{
						ID:   "boucle_bubbly",
						Name: "Bubbly Beige",
						Channels: ChannelPaths{
							BaseColor: "textures/boucle/Poliigon_BoucleFabricBubbly_7827_BaseColor.jpg",
							Normal:    "textures/boucle/Poliigon_BoucleFabricBubbly_7827_Normal.png",
							Roughness: "textures/boucle/Poliigon_BoucleFabricBubbly_7827_Roughness.jpg",
							Metallic:  "textures/boucle/Poliigon_BoucleFabricBubbly_7827_Metallic.jpg",
						},
					},
				},
				Properties: RenderProperties{Roughness: 0.95, Metalness: 0, NormalScale: 1.8, Repeat: 2, AOIntensity: 0.3},
				Fallback:   Fallback{Color: "#b8a88a"},
			},
			{
				Type:      "fabric",
				Name:      "Classic Fabric",
				UnitPrice: 60,
				Colors: []ColorOption{
					{ID: "fabric_063", Name: "Warm Sand", Channels: ChannelPaths{BaseColor: "textures/fabric/Fabric063_1K-JPG_Color.jpg"}},
					{ID: "fabric_066", Name: "Soft Gray", Channels: ChannelPaths{BaseColor: "textures/fabric/Fabric066_1K-JPG_Color.jpg"}},
					{ID: "fabric_061", Name: "Deep Charcoal", Channels: ChannelPaths{BaseColor: "textures/fabric/Fabric061_1K-JPG_Color.jpg"}},
					{
						ID:   "fabric_029",
						Name: "Muted Taupe",
						Channels: ChannelPaths{
							BaseColor: "textures/fabric/D151.jpg",
							Normal:    "textures/fabric/Fabric062_1K-JPG_NormalGL.jpg",
							Roughness: "textures/fabric/Fabric062_1K-JPG_Roughness.jpg",
							AO:        "textures/fabric/Fabric062_1K-JPG_AmbientOcclusion.jpg",
						},
					},
					{ID: "fabric_045", Name: "Earthy Clay", Channels: ChannelPaths{BaseColor: "textures/fabric/D152.jpg"}},
					{ID: "fabric_047", Name: "Terracotta", Channels: ChannelPaths{BaseColor: "textures/fabric/D153.png"}},
				},
				Properties: RenderProperties{Roughness: 0.9, Metalness: 0, NormalScale: 1.5, Repeat: 0.5, AOIntensity: 0.3},
				Fallback:   Fallback{Color: "#d4c5a9"},
			},
		},
		Variants: []Variant{
			{ID: "01", Label: "Classic Upholstered", Description: "Timeless padded design", Node: "headboard-variant-1"},
			{ID: "02", Label: "Modern Panel", Description: "Clean minimalist style", Node: "headboard-variant-2"},
		},
		CameraPresets: []CameraPreset{
			{ID: "default", Label: "Overview", Position: math.V3(2, 3, 4), Target: math.V3(0, 1, 0)},
			{ID: "top", Label: "Aerial", Position: math.V3(0, 5, 0.1), Target: math.V3(0, 0, 0)},
			{ID: "front", Label: "Frontal", Position: math.V3(0, 2, 4), Target: math.V3(0, 0.8, 0)},
			{ID: "detail", Label: "Detail", Position: math.V3(-1.5, 0.5, 2), Target: math.V3(0, 0.4, 0)},
		},
		DimensionPresets: []DimensionPreset{
			{ID: "single", Label: "Single", Dimensions: bed.Dimensions{Width: 90, Height: 100, Length: 190}},
			{ID: "queen", Label: "Queen", Dimensions: bed.Dimensions{Width: 160, Height: 100, Length: 200}},
			{ID: "king", Label: "King", Dimensions: bed.Dimensions{Width: 180, Height: 110, Length: 200}},
		},
		DimensionBounds: Bounds{Min: 80, Max: 250},
		// Nominal size the model was authored at.
		Reference: bed.Dimensions{Width: 160, Height: 120, Length: 200},
		Nodes:     Nodes{Root: "bed", Frame: "frame"},
		Defaults: Defaults{
			Frame:      bed.Key{MaterialType: "fabric", ColorID: "fabric_063"},
			Headboard:  bed.Key{MaterialType: "boucle", ColorID: "boucle_bubbly"},
			Dimensions: bed.Dimensions{Width: 160, Height: 100, Length: 200},
			Variant:    "01",
			View:       "default",
		},
	}
	if err := c.init(); err != nil {
		panic("catalog: invalid builtin catalog: " + err.Error())
	}
	return c
}
