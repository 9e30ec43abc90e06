package scene

import (
	"github.com/chewxy/math32"

	"github.com/hubastard/bramble/engine/core"
)

// Controller2D: WASD/arrow pan, scroll-wheel zoom.
type Controller2D struct {
	MoveSpeed float32 // pixels per second at zoom 1
	ZoomSpeed float32 // zoom factor per scroll notch
	Camera    *Camera2D
}

func NewController2D(cam *Camera2D) *Controller2D {
	return &Controller2D{
		MoveSpeed: 300,
		ZoomSpeed: 1.1,
		Camera:    cam,
	}
}

func (cc *Controller2D) Update(e *core.Engine, dt float32) {
	in := e.Input
	// panning slows down when zoomed in
	speed := cc.MoveSpeed * dt / cc.Camera.Zoom()

	if in.IsKeyDown(core.KeyW) || in.IsKeyDown(core.KeyUp) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyS) || in.IsKeyDown(core.KeyDown) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyA) || in.IsKeyDown(core.KeyLeft) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) || in.IsKeyDown(core.KeyRight) {
		cc.Camera.Move(speed, 0)
	}

	if _, dy := in.ConsumeScroll(); dy != 0 {
		cc.Camera.SetZoom(cc.Camera.Zoom() * math32.Pow(cc.ZoomSpeed, float32(dy)))
	}
}
