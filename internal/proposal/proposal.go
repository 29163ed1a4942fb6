// Package proposal snapshots a configuration with its price for saving or
// exporting.
package proposal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/pricing"
)

// Kind is why a proposal was produced.
type Kind string

const (
	KindSave   Kind = "save"
	KindExport Kind = "export"
)

// Proposal is an immutable snapshot of a priced configuration.
type Proposal struct {
	ID               string            `json:"id" yaml:"id"`
	Kind             Kind              `json:"kind" yaml:"kind"`
	Frame            bed.SlotSelection `json:"frame" yaml:"frame"`
	Headboard        bed.SlotSelection `json:"headboard" yaml:"headboard"`
	Dimensions       bed.Dimensions    `json:"dimensions" yaml:"dimensions"`
	HeadboardVariant string            `json:"headboardVariant" yaml:"headboard_variant"`
	CameraView       string            `json:"cameraView" yaml:"camera_view"`
	TotalPrice       int               `json:"totalPrice" yaml:"total_price"`
	Breakdown        pricing.Breakdown `json:"breakdown" yaml:"breakdown"`
	Timestamp        time.Time         `json:"timestamp" yaml:"timestamp"`
}

// New snapshots cfg.
func New(kind Kind, cfg bed.Configuration, now time.Time) (*Proposal, error) {
	p := &Proposal{
		ID:         uuid.NewString(),
		Kind:       kind,
		TotalPrice: pricing.Total(cfg),
		Breakdown:  pricing.Compute(cfg),
		Timestamp:  now.UTC(),
	}
	if err := copier.Copy(p, &cfg); err != nil {
		return nil, fmt.Errorf("copying configuration: %w", err)
	}
	return p, nil
}

// Configuration returns the configuration the proposal was made from.
func (p *Proposal) Configuration() bed.Configuration {
	return bed.Configuration{
		Frame:            p.Frame,
		Headboard:        p.Headboard,
		Dimensions:       p.Dimensions,
		HeadboardVariant: p.HeadboardVariant,
		CameraView:       p.CameraView,
	}
}

// Filename is the name a proposal is stored under.
func (p *Proposal) Filename() string {
	return fmt.Sprintf("%s-%s.json", p.Kind, p.ID)
}

// JSON encodes the proposal.
func (p *Proposal) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// YAML encodes the proposal.
func (p *Proposal) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}

// Decode parses a JSON proposal.
func Decode(data []byte) (*Proposal, error) {
	var p Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding proposal: %w", err)
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("decoding proposal: bad id %q: %w", p.ID, err)
	}
	return &p, nil
}
