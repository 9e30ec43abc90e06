package main

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/hubastard/bramble/engine/assets"
	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/core"
	"github.com/hubastard/bramble/engine/gfx/twod"
	"github.com/hubastard/bramble/engine/profiler"
	"github.com/hubastard/bramble/engine/scene"
)

// SceneLayer is the world: a camera-driven scene mixing sprites, lines and
// ellipses on a couple of depth layers.
type SceneLayer struct {
	app    *App
	cam    *scene.Camera2D
	ctrl   *scene.Controller2D
	player *twod.Sprite
	ring   *twod.Ellipse
	box    *twod.Lines
	t      float32
}

func (l *SceneLayer) OnAttach(e *core.Engine) {
	res := e.Gfx.Resolution()

	var err error
	l.cam, err = scene.NewCamera2D(l.app.common.Cameras(), float32(res[0])/2, float32(res[1])/2)
	if err != nil {
		panic(err)
	}
	l.ctrl = scene.NewController2D(l.cam)

	raw, err := assets.LoadPNG("player.png")
	if err != nil {
		panic(err)
	}
	w, h := raw.Size()
	im, err := l.app.sprites.GetBox(w, h, false)
	if err != nil {
		panic(err)
	}
	if err := im.Upload(raw); err != nil {
		panic(err)
	}

	l.player, err = twod.NewSprite(im, 1)
	if err != nil {
		panic(err)
	}
	l.player.SetPosition(float32(res[0])/2, float32(res[1])/2)
	l.player.SetOffsetsRelative(twod.CenterOffsets)
	l.player.SetScale(4)
	l.player.SetCamera(0, l.cam)

	l.ring, err = twod.NewEllipse(l.app.ellipse, 60, 40, 0)
	if err != nil {
		panic(err)
	}
	l.ring.SetPosition(200, 200)
	l.ring.SetColor(colors.Cyan)
	l.ring.SetCamera(0, l.cam)

	l.box, err = twod.NewLines(l.app.lines, [][2]float32{
		{-50, -50}, {50, -50}, {50, 50}, {-50, 50},
	}, 0, 2, true)
	if err != nil {
		panic(err)
	}
	l.box.SetPosition(400, 300)
	l.box.SetColor(colors.Yellow)
	l.box.SetCamera(0, l.cam)
}

func (l *SceneLayer) OnDetach(e *core.Engine) {
	l.player.Destroy()
	l.ring.Destroy()
	l.box.Destroy()
	l.cam.Destroy()
}

func (l *SceneLayer) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e, float32(dt))
	l.t += float32(dt)

	l.player.SetRotation(l.t)
	l.box.SetRotation(-l.t / 2)
	l.ring.SetDimensions(60+20*math32.Sin(l.t), 40+20*math32.Cos(l.t))

	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

func (l *SceneLayer) OnRender(e *core.Engine, alpha float64) {}

func (l *SceneLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventKey:
		if v.Down && v.Key == core.KeyP && (v.Mods&core.ModCtrl) != 0 {
			if path, err := profiler.OpenCapture(); err == nil {
				fmt.Println("speedscope dump:", path)
			} else {
				fmt.Println("profiler dump error:", err)
			}
			return true
		}
	case core.EventResize:
		e.Gfx.SetResolution(v.W, v.H)
		l.app.common.ProjMatrix() // recompute for the new resolution
		l.cam.SetOrigin(float32(v.W)/2, float32(v.H)/2)
	}
	return false
}
