package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputTracksKeysAndMouse(t *testing.T) {
	in := NewInput()

	in.Handle(EventKey{Key: KeyW, Down: true})
	assert.True(t, in.IsKeyDown(KeyW))
	assert.False(t, in.IsKeyDown(KeyA))

	in.Handle(EventKey{Key: KeyW, Down: false})
	assert.False(t, in.IsKeyDown(KeyW))

	in.Handle(EventMouseMove{X: 12, Y: 34})
	x, y := in.Mouse()
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 34.0, y)
}

func TestInputAccumulatesScrollUntilConsumed(t *testing.T) {
	in := NewInput()
	in.Handle(EventScroll{Yoff: 1})
	in.Handle(EventScroll{Yoff: 2})

	_, y := in.ConsumeScroll()
	assert.Equal(t, 3.0, y)

	_, y = in.ConsumeScroll()
	assert.Equal(t, 0.0, y)
}

type recordingLayer struct {
	name    string
	handles bool
	log     *[]string
}

func (r *recordingLayer) OnAttach(*Engine)          {}
func (r *recordingLayer) OnDetach(*Engine)          {}
func (r *recordingLayer) OnUpdate(*Engine, float64) {}
func (r *recordingLayer) OnRender(*Engine, float64) {}
func (r *recordingLayer) OnEvent(_ *Engine, _ Event) bool {
	*r.log = append(*r.log, r.name)
	return r.handles
}

func TestLayerStackDispatchStopsAtHandler(t *testing.T) {
	var log []string
	ls := &LayerStack{}
	ls.Push(&recordingLayer{name: "world", log: &log})
	ls.Push(&recordingLayer{name: "hud", handles: true, log: &log})
	ls.Push(&recordingLayer{name: "debug", log: &log})

	ls.Dispatch(nil, EventCloseRequested{})
	assert.Equal(t, []string{"debug", "hud"}, log)
}
