//go:build profile

// Package profiler records timed scopes into a lock-free ring and dumps them
// as a speedscope capture. Compiled out entirely without the "profile" build
// tag; the runtime stats in stats.go are always available.
package profiler

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Init sizes the event ring. Call once at startup; a scope is two events.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	ring.init(capacity)
}

// Start opens a scope and returns the func that closes it. Safe from any
// goroutine.
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	fid := intern(name)
	open := time.Now().UnixNano()
	ring.push(event{at: open, frame: fid, open: true})
	return func() {
		at := time.Now().UnixNano()
		if at < open {
			at = open
		}
		ring.push(event{at: at, frame: fid, open: false})
	}
}

// OpenCapture writes the recorded scopes to a speedscope file in the temp
// directory and tries to launch the viewer on it.
func OpenCapture() (string, error) {
	evs := ring.snapshot()
	if len(evs) == 0 {
		return "", fmt.Errorf("profiler: no events to dump")
	}

	path := filepath.Join(os.TempDir(), "bramble.speedscope.json")
	if err := writeSpeedscope(evs, path); err != nil {
		return "", err
	}

	cmd := exec.Command("speedscope", path)
	cmd.SysProcAttr = hiddenWindowAttr()
	if err := cmd.Start(); err != nil {
		fmt.Printf("profiler: launching speedscope: %v\n", err)
	}
	return path, nil
}

type event struct {
	at    int64
	frame int
	open  bool
}

// eventRing is a fixed-size overwrite-oldest buffer. push is wait-free;
// snapshot returns the surviving events in write order.
type eventRing struct {
	ready atomic.Bool
	cap   uint64
	write atomic.Uint64
	evs   []event
}

func (r *eventRing) init(capacity int) {
	r.cap = uint64(capacity)
	r.evs = make([]event, r.cap)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.write.Add(1) - 1
	r.evs[i%r.cap] = e
}

func (r *eventRing) snapshot() []event {
	n := r.write.Load()
	if n == 0 {
		return nil
	}
	start := uint64(0)
	if n > r.cap {
		start = n - r.cap
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.cap])
	}
	return out
}

var ring eventRing

var (
	framesMu   sync.Mutex
	frameNames []string
	frameIndex = map[string]int{}
)

func intern(name string) int {
	framesMu.Lock()
	defer framesMu.Unlock()
	if id, ok := frameIndex[name]; ok {
		return id
	}
	id := len(frameNames)
	frameIndex[name] = id
	frameNames = append(frameNames, name)
	return id
}

// speedscope evented format, https://www.speedscope.app/file-format-schema.json

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since first event
	Frame int    `json:"frame"`
}

func writeSpeedscope(evs []event, path string) error {
	framesMu.Lock()
	fs := make([]ssFrame, len(frameNames))
	for i, name := range frameNames {
		fs[i] = ssFrame{Name: name}
	}
	framesMu.Unlock()

	base := evs[0].at
	endUS := int64(0)
	out := make([]ssEvent, 0, len(evs)+16)
	stack := make([]int, 0, 64)
	lastUS := int64(-1)

	for _, e := range evs {
		atUS := (e.at - base) / 1000
		if atUS < lastUS {
			atUS = lastUS // keep µs monotonic
		}

		if e.open {
			out = append(out, ssEvent{Type: "O", At: atUS, Frame: e.frame})
			stack = append(stack, e.frame)
		} else {
			// the ring may have overwritten the matching open; skip
			if len(stack) == 0 || stack[len(stack)-1] != e.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: atUS, Frame: e.frame})
		}

		lastUS = atUS
		if atUS > endUS {
			endUS = atUS
		}
	}

	// speedscope wants balanced events; close whatever is still on the stack
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: lastUS, Frame: stack[i]})
	}

	if len(out) == 0 {
		return fmt.Errorf("profiler: no usable events after filtering")
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: fs},
		Profiles: []ssProfile{{
			Type:       "evented",
			Name:       "bramble capture",
			Unit:       "microseconds",
			StartValue: 0,
			EndValue:   endUS,
			Events:     out,
		}},
		Exporter: "bramble-profiler",
		Name:     "bramble capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
