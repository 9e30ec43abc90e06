// Package alloc provides the integer number-line allocator backing every
// slot table in the renderer: vertex data slots, draw-index slots, and the
// camera uniform block all hand out indices through a Slices.
package alloc

import (
	"errors"
	"fmt"
	"sort"
)

// ErrExhausted is returned when a request cannot be satisfied by any free
// span, even after joining.
var ErrExhausted = errors.New("alloc: cannot allocate enough numbers from this slice")

// Span is a half-open [Begin, End) range of free integers.
type Span struct {
	Begin, End int
}

// Slices tracks the free portions of an integer number line [start, end).
// Free spans may fragment on release; Join merges adjacent spans lazily.
//
// CanAllocate caches the found span, so the usual calling pattern is a
// CanAllocate check followed immediately by Allocate with the same n.
type Slices struct {
	spans      []Span
	allocating int // pending request size, -1 if none
	found      int // index into spans of the cached candidate
}

// New creates an allocator over [start, end).
func New(start, end int) *Slices {
	return &Slices{
		spans:      []Span{{start, end}},
		allocating: -1,
	}
}

// CanAllocate reports whether a span of size n could be allocated, and caches
// the candidate span for a subsequent Allocate(n). A span is usable only if
// it is strictly longer than n; a span of exactly n is passed over. If the
// first scan fails, spans are joined and the scan retried once.
func (s *Slices) CanAllocate(n int) bool {
	for i, sp := range s.spans {
		if sp.End-sp.Begin > n {
			s.allocating = n
			s.found = i
			return true
		}
	}
	s.Join()
	for i, sp := range s.spans {
		if sp.End-sp.Begin > n {
			s.allocating = n
			s.found = i
			return true
		}
	}
	s.allocating = -1
	return false
}

// Allocate carves n contiguous integers from the low end of the cached
// candidate span. If no CanAllocate(n) preceded it, the check is performed
// here and ErrExhausted returned on failure.
func (s *Slices) Allocate(n int) ([]int, error) {
	if n != s.allocating && !s.CanAllocate(n) {
		return nil, fmt.Errorf("%w (n=%d)", ErrExhausted, n)
	}
	sp := &s.spans[s.found]
	ret := make([]int, n)
	for i := range ret {
		ret[i] = sp.Begin + i
	}
	sp.Begin += n
	s.allocating = -1
	return ret, nil
}

// Release returns previously allocated numbers to the line. A contiguous
// block becomes a single free span; anything else becomes one singleton span
// per number. No merging with existing spans happens until the next Join.
func (s *Slices) Release(numbers []int) {
	if len(numbers) == 0 {
		return
	}
	mn, mx := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < mn {
			mn = n
		}
		if n > mx {
			mx = n
		}
	}
	if len(numbers)-1 == mx-mn {
		s.spans = append(s.spans, Span{mn, mx + 1})
	} else {
		for _, n := range numbers {
			s.spans = append(s.spans, Span{n, n + 1})
		}
	}
}

// Join sorts the free spans and merges consecutive spans that touch exactly,
// reducing fragmentation. O(k log k) in the number of free spans.
func (s *Slices) Join() {
	sort.Slice(s.spans, func(i, j int) bool {
		if s.spans[i].Begin != s.spans[j].Begin {
			return s.spans[i].Begin < s.spans[j].Begin
		}
		return s.spans[i].End < s.spans[j].End
	})
	out := s.spans[:0]
	for _, sp := range s.spans {
		if n := len(out); n > 0 && out[n-1].End == sp.Begin {
			out[n-1].End = sp.End
		} else {
			out = append(out, sp)
		}
	}
	s.spans = out
	s.allocating = -1
}

// Spans returns a copy of the current free spans, mainly for tests and
// debugging.
func (s *Slices) Spans() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}
