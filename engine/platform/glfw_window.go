package platform

import (
	"runtime"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hubastard/bramble/engine/core"
)

// GLFW owns the native window. It is both the windowing side seen by the
// engine loop (core.Window) and the drawing side seen by the graphics
// context (glbackend.Backend): the context asks it to create the drawable
// surface and to present finished frames.
type GLFW struct {
	cfg    core.Config
	w      *glfw.Window
	onEv   func(core.Event)
	double bool
}

// NewGLFW prepares a backend for the given config. Nothing touches the
// windowing system until the graphics context calls Init/CreateContext.
func NewGLFW(cfg core.Config) *GLFW {
	runtime.LockOSThread()
	return &GLFW{cfg: cfg}
}

// glbackend.Backend impl

func (g *GLFW) Init() error { return glfw.Init() }

func (g *GLFW) CreateContext(width, height int, doubleBuffer, fullscreen bool) error {
	// Compatibility-profile GL 2.1: client-side index arrays and
	// attribute/varying shaders need it.
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Samples, 0)
	if doubleBuffer {
		glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	} else {
		glfw.WindowHint(glfw.DoubleBuffer, glfw.False)
	}

	var monitor *glfw.Monitor
	if fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	win, err := glfw.CreateWindow(width, height, g.cfg.Title, monitor, nil)
	if err != nil {
		return err
	}
	win.MakeContextCurrent()
	if g.cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		return err
	}

	g.w = win
	g.double = doubleBuffer

	// Callbacks -> translate to core.Event
	win.SetCloseCallback(func(*glfw.Window) { g.emit(core.EventCloseRequested{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		g.emit(core.EventResize{W: w, H: h})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		g.emit(core.EventMouseMove{X: x, Y: y})
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		k := translateKey(key)
		if k == core.KeyUnknown {
			return
		}
		g.emit(core.EventKey{Key: k, Down: action != glfw.Release, Mods: translateMods(mods)})
	})
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		g.emit(core.EventScroll{Xoff: xoff, Yoff: yoff})
	})
	return nil
}

// Redraw presents the frame: a buffer swap when double buffered, a flush
// otherwise.
func (g *GLFW) Redraw() {
	if g.double {
		g.w.SwapBuffers()
	} else {
		gl.Flush()
	}
}

func (g *GLFW) emit(ev core.Event) {
	if g.onEv != nil {
		g.onEv(ev)
	}
}

// core.Window impl

func (g *GLFW) PollEvents()                          { glfw.PollEvents() }
func (g *GLFW) ShouldClose() bool                    { return g.w.ShouldClose() }
func (g *GLFW) RequestClose()                        { g.w.SetShouldClose(true) }
func (g *GLFW) FramebufferSize() (int, int)          { return g.w.GetFramebufferSize() }
func (g *GLFW) SetTitle(t string)                    { g.w.SetTitle(t) }
func (g *GLFW) SetEventCallback(cb func(core.Event)) { g.onEv = cb }

func translateKey(k glfw.Key) core.Key {
	switch k {
	case glfw.KeyEscape:
		return core.KeyEscape
	case glfw.KeySpace:
		return core.KeySpace
	case glfw.KeyLeft:
		return core.KeyLeft
	case glfw.KeyRight:
		return core.KeyRight
	case glfw.KeyUp:
		return core.KeyUp
	case glfw.KeyDown:
		return core.KeyDown
	case glfw.KeyW:
		return core.KeyW
	case glfw.KeyA:
		return core.KeyA
	case glfw.KeyS:
		return core.KeyS
	case glfw.KeyD:
		return core.KeyD
	case glfw.KeyP:
		return core.KeyP
	default:
		return core.KeyUnknown
	}
}

func translateMods(m glfw.ModifierKey) core.Mod {
	var out core.Mod
	if m&glfw.ModShift != 0 {
		out |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= core.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= core.ModSuper
	}
	return out
}
