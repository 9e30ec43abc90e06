// Package atlas implements the free-rectangle packer used to place images
// into shared textures. The packer is pure bookkeeping: it knows nothing
// about GL, only about carving rectangles out of a fixed-size square.
package atlas

import "fmt"

// ErrCannotAllocate is wrapped by errors returned when a box cannot be
// placed in the atlas.
var ErrCannotAllocate = fmt.Errorf("atlas: cannot allocate box")

// Rect is an axis-aligned integer rectangle inside the atlas.
type Rect struct {
	X, Y, W, H int
}

// Area returns W*H.
func (r Rect) Area() int { return r.W * r.H }

// FloatRect holds normalized texture coordinates of a placement.
type FloatRect struct {
	Left, Top     float32
	Width, Height float32
}

// Region is a successful placement: the integer rectangle consumed from the
// atlas (including border and wrap padding) and the normalized coordinates
// of the usable interior.
type Region struct {
	Rect    Rect
	Coords  FloatRect
	Wrapped bool
}

// Packer allocates rectangles from a size x size atlas. Freed rectangles go
// back on the free list without merging; fragmentation inside one atlas is
// permanent. Candidate search is best-wastage with first-wins tie break in
// free-list order, which is stable and therefore deterministic.
type Packer struct {
	size   int
	border int
	free   []Rect
}

// NewPacker creates a packer for a size x size atlas with the given border
// reserved around each placed box.
func NewPacker(size, border int) *Packer {
	return &Packer{
		size:   size,
		border: border,
		free:   []Rect{{0, 0, size, size}},
	}
}

// Size returns the atlas edge length.
func (p *Packer) Size() int { return p.size }

// FreeArea sums the areas of all free rectangles, for tests and debugging.
func (p *Packer) FreeArea() int {
	total := 0
	for _, r := range p.free {
		total += r.Area()
	}
	return total
}

// Insert finds room for a width x height box. Wrapped boxes get 2 extra
// pixels per dimension for the duplicated edge rows/columns. Returns false
// if no free rectangle is strictly larger than the padded request in both
// dimensions.
func (p *Packer) Insert(width, height int, wrapped bool) (Region, bool) {
	if wrapped {
		width += 2
		height += 2
	}
	findW := width + p.border
	findH := height + p.border
	findSize := findW * findH

	found := -1
	bestWastage := p.size*p.size + 1
	for i, r := range p.free {
		if r.W > findW && r.H > findH {
			if wastage := r.Area() - findSize; wastage < bestWastage {
				found = i
				bestWastage = wastage
			}
		}
	}
	if found < 0 {
		return Region{}, false
	}

	r := p.free[found]
	p.free = append(p.free[:found], p.free[found+1:]...)

	// Split the chosen rectangle along the axis that keeps the larger
	// residual in one piece.
	newX := r.X + findW
	remX := r.W - findW
	newY := r.Y + findH
	remY := r.H - findH
	big1 := Rect{newX, r.Y, remX, r.H}
	big2 := Rect{r.X, newY, r.W, remY}
	var big, small Rect
	if big1.Area() > big2.Area() {
		big = big1
		small = Rect{r.X, newY, findW, remY}
	} else {
		big = big2
		small = Rect{newX, r.Y, remX, findH}
	}
	if big.Area() > 0 {
		p.free = append(p.free, big)
	}
	if small.Area() > 0 {
		p.free = append(p.free, small)
	}

	consumed := Rect{r.X, r.Y, findW, findH}
	topInt, leftInt := r.Y, r.X
	rightInt, bottomInt := newX-1, newY-1
	if wrapped {
		topInt++
		leftInt++
		rightInt--
		bottomInt--
	}
	size := float32(p.size)
	top := float32(topInt) / size
	left := float32(leftInt) / size
	right := float32(rightInt) / size
	bottom := float32(bottomInt) / size

	return Region{
		Rect: consumed,
		Coords: FloatRect{
			Left:   left,
			Top:    top,
			Width:  right - left,
			Height: bottom - top,
		},
		Wrapped: wrapped,
	}, true
}

// Free returns a consumed rectangle to the free list. Freed rectangles are
// never merged with neighbours.
func (p *Packer) Free(r Rect) {
	p.free = append(p.free, r)
}
