// Package camera animates the viewer between catalog camera presets and
// handles orbit input around the current target.
package camera

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// DefaultDuration is the length of a preset transition.
const DefaultDuration = 1200 * time.Millisecond

// State is the controller's animation state.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Pose is a camera position looking at a target.
type Pose struct {
	Position math.Vec3
	Target   math.Vec3
}

// Lerp interpolates both points of the pose.
func (p Pose) Lerp(to Pose, t float32) Pose {
	return Pose{
		Position: p.Position.Lerp(to.Position, t),
		Target:   p.Target.Lerp(to.Target, t),
	}
}

// EaseOutCubic maps linear progress to the transition curve.
func EaseOutCubic(t float32) float32 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

// Controller owns the live camera pose.
type Controller struct {
	pose  Pose
	view  string
	state State

	from     Pose
	to       Pose
	elapsed  time.Duration
	duration time.Duration

	// Orbit constraints
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewController creates an idle controller resting at preset. A
// non-positive duration falls back to DefaultDuration.
func NewController(preset catalog.CameraPreset, duration time.Duration) *Controller {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Controller{
		pose:            Pose{Position: preset.Position, Target: preset.Target},
		view:            preset.ID,
		duration:        duration,
		MinDistance:     2,
		MaxDistance:     12,
		MinPolar:        math32.Pi / 6,
		MaxPolar:        math32.Pi/2 - 0.1,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// SetView starts a transition from the live pose to preset. Calling it
// mid-transition restarts the animation from wherever the camera is now.
func (c *Controller) SetView(preset catalog.CameraPreset) {
	c.from = c.pose
	c.to = Pose{Position: preset.Position, Target: preset.Target}
	c.view = preset.ID
	c.elapsed = 0
	c.state = Transitioning
}

// Tick advances the transition by dt.
func (c *Controller) Tick(dt time.Duration) {
	if c.state != Transitioning {
		return
	}

	c.elapsed += dt
	eased := EaseOutCubic(c.Progress())
	if eased >= 1 {
		c.pose = c.to
		c.state = Idle
		return
	}
	c.pose = c.from.Lerp(c.to, eased)
}

// Progress returns the linear transition progress in [0, 1]. It is 1 when
// idle.
func (c *Controller) Progress() float32 {
	if c.state != Transitioning {
		return 1
	}
	t := float32(c.elapsed) / float32(c.duration)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Orbit rotates the camera around its target based on a drag delta.
// Ignored while transitioning.
func (c *Controller) Orbit(deltaX, deltaY float32) {
	if c.state == Transitioning {
		return
	}

	s := math.ToSpherical(c.pose.Position.Sub(c.pose.Target))
	s.Azimuth -= deltaX * c.DragSensitivity
	s.Polar -= deltaY * c.DragSensitivity
	c.place(s)
}

// Zoom dollies the camera toward (positive delta) or away from its target.
// Ignored while transitioning.
func (c *Controller) Zoom(delta float32) {
	if c.state == Transitioning {
		return
	}

	s := math.ToSpherical(c.pose.Position.Sub(c.pose.Target))
	s.Radius -= delta * s.Radius * c.ZoomSensitivity
	c.place(s)
}

func (c *Controller) place(s math.Spherical) {
	s.Radius = math32.Max(c.MinDistance, math32.Min(c.MaxDistance, s.Radius))
	s.Polar = math32.Max(c.MinPolar, math32.Min(c.MaxPolar, s.Polar))
	c.pose.Position = c.pose.Target.Add(s.Vec3())
}

// Pose returns the live camera pose.
func (c *Controller) Pose() Pose {
	return c.pose
}

// State returns the animation state.
func (c *Controller) State() State {
	return c.state
}

// View returns the id of the preset last selected.
func (c *Controller) View() string {
	return c.view
}

// ViewMatrix returns the view matrix for the live pose.
func (c *Controller) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.pose.Position, c.pose.Target, up)
}
