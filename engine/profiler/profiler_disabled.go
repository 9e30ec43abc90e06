//go:build !profile

// Package profiler records timed scopes into a lock-free ring and dumps them
// as a speedscope capture. Compiled out entirely without the "profile" build
// tag; the runtime stats in stats.go are always available.
package profiler

func Init(capacity int) {}

func Start(name string) func() { return func() {} }

func OpenCapture() (string, error) { return "", nil }
