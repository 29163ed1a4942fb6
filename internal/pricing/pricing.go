// Package pricing computes the price of a bed configuration.
package pricing

import (
	"math"

	"github.com/Faultbox/bed-atelier/internal/bed"
)

// Breakdown is the unrounded price of each priced slot.
type Breakdown struct {
	Frame     float64 `json:"frame" yaml:"frame"`
	Headboard float64 `json:"headboard" yaml:"headboard"`
}

// Sum returns the unrounded total.
func (b Breakdown) Sum() float64 {
	return b.Frame + b.Headboard
}

// Compute prices each slot. The frame is priced by its footprint
// (width x length), the headboard by its face (width x height), both in
// square meters.
func Compute(cfg bed.Configuration) Breakdown {
	w := cfg.Dimensions.Width / 100
	h := cfg.Dimensions.Height / 100
	l := cfg.Dimensions.Length / 100

	return Breakdown{
		Frame:     cfg.Frame.UnitPrice * w * l,
		Headboard: cfg.Headboard.UnitPrice * w * h,
	}
}

// Total returns the configuration price rounded to the nearest whole unit,
// halves away from zero.
func Total(cfg bed.Configuration) int {
	return int(math.Round(Compute(cfg).Sum()))
}
