package core

import (
	"log"
	"runtime"
	"time"

	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// Run wires the platform window + graphics context and executes the main
// loop. newWindow creates the window-owning backend; it must satisfy both
// the windowing side (core.Window) and the drawing side (glbackend.Backend).
func Run(app App, cfg Config, newWindow func(Config) (Window, glbackend.Backend, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()

	win, backend, err := newWindow(cfg)
	if err != nil {
		return err
	}

	ctx := glbackend.NewContext(backend)
	if err := ctx.InitEnvironment(cfg.Width, cfg.Height, cfg.DoubleBuffer, cfg.Fullscreen); err != nil {
		return err
	}
	ctx.SetClearColor(cfg.ClearColor)

	eng := &Engine{Window: win, Gfx: ctx, Input: NewInput(), start: time.Now()}
	win.SetEventCallback(func(ev Event) {
		eng.Input.Handle(ev)
		app.OnEvent(eng, ev)
		eng.Layers.Dispatch(eng, ev)
	})

	app.OnStart(eng)

	// Fixed-timestep (60 Hz) with interpolation
	const tick = time.Second / 60
	var (
		accum   time.Duration
		prev    = time.Now()
		maxStep = 10 // prevent spiral of death
	)

	for !win.ShouldClose() {
		now := time.Now()
		frame := now.Sub(prev)
		prev = now
		accum += frame

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		// Run fixed updates
		steps := 0
		for accum >= tick && steps < maxStep {
			dt := float64(tick) / float64(time.Second)
			app.OnUpdate(eng, dt)
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			accum -= tick
			steps++
		}
		// Interpolation factor for rendering
		alpha := float64(accum) / float64(tick)

		app.OnRender(eng, alpha)
		eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })

		// Draw every layer and present
		ctx.DoTasks()
	}

	for {
		if _, ok := eng.PopLayer(); !ok {
			break
		}
	}
	app.OnShutdown(eng)
	log.Println("Engine exit")
	return nil
}
