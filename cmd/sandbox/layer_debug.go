package main

import (
	"fmt"
	"time"

	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/core"
	"github.com/hubastard/bramble/engine/profiler"
	"github.com/hubastard/bramble/engine/text"
)

const debugTextLayer = 100

// DebugLayer draws a small stats readout in the corner. The text is
// recreated only when the readout changes, a few times per second.
type DebugLayer struct {
	app       *App
	label     *text.Text
	lastFrame time.Time
	frameMS   float32
	sinceSwap float32
}

func (l *DebugLayer) OnAttach(e *core.Engine) {}

func (l *DebugLayer) OnDetach(e *core.Engine) {
	if l.label != nil {
		l.label.Destroy()
	}
}

func (l *DebugLayer) OnUpdate(e *core.Engine, dt float64) {
	l.sinceSwap += float32(dt)
	if l.sinceSwap < 0.5 || l.frameMS <= 0 {
		return
	}
	l.sinceSwap = 0

	s := fmt.Sprintf("%5.2f ms (%.0f FPS)\nmem %.2f MB  goroutines %d",
		l.frameMS, 1000/l.frameMS,
		float32(profiler.MemoryUsage())/(1<<20), profiler.NumGoroutine())

	if l.label != nil {
		l.label.Destroy()
	}
	label, err := text.New(l.app.font, s, debugTextLayer)
	if err != nil {
		fmt.Println("debug label:", err)
		return
	}
	label.SetPosition(8, 8)
	label.SetColor(colors.Yellow)
	l.label = label
}

func (l *DebugLayer) OnRender(e *core.Engine, alpha float64) {
	now := time.Now()
	if !l.lastFrame.IsZero() {
		l.frameMS = float32(now.Sub(l.lastFrame).Seconds() * 1000)
	}
	l.lastFrame = now
}

func (l *DebugLayer) OnEvent(e *core.Engine, ev core.Event) bool { return false }
