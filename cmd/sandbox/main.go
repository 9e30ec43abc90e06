package main

import (
	"log"

	"github.com/hubastard/bramble/engine/core"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
	"github.com/hubastard/bramble/engine/gfx/twod"
	"github.com/hubastard/bramble/engine/platform"
	"github.com/hubastard/bramble/engine/profiler"
	"github.com/hubastard/bramble/engine/text"
)

type App struct {
	common  *twod.Common
	sprites *twod.SpriteShader
	lines   *twod.LineShader
	ellipse *twod.EllipseShader
	font    *text.Font
}

func (a *App) OnStart(e *core.Engine) {
	profiler.Init(1 << 10) // ~1K scope samples

	a.common = twod.NewCommon(e.Gfx)

	var err error
	a.sprites, err = twod.NewSpriteShader(a.common, twod.FilterNearest)
	if err != nil {
		panic(err)
	}
	a.lines, err = twod.NewLineShader(a.common)
	if err != nil {
		panic(err)
	}
	a.ellipse, err = twod.NewEllipseShader(a.common)
	if err != nil {
		panic(err)
	}

	a.font, err = text.LoadTTF(a.sprites, "RobotoMono.ttf", 18)
	if err != nil {
		panic(err)
	}

	e.PushLayer(&SceneLayer{app: a})
	e.PushLayer(&DebugLayer{app: a})
}

func (a *App) OnUpdate(e *core.Engine, dt float64)    {}
func (a *App) OnRender(e *core.Engine, alpha float64) {}
func (a *App) OnEvent(e *core.Engine, ev core.Event)  {}
func (a *App) OnShutdown(e *core.Engine)              {}

func main() {
	cfg, err := core.LoadConfig("sandbox.toml")
	if err != nil {
		log.Fatal(err)
	}

	app := &App{}
	newWindow := func(cfg core.Config) (core.Window, glbackend.Backend, error) {
		b := platform.NewGLFW(cfg)
		return b, b, nil
	}

	if err := core.Run(app, cfg, newWindow); err != nil {
		log.Fatal(err)
	}
}
