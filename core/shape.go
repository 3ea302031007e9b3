package core

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// Shape describes the field in which transmitters and sensors are placed.
type Shape interface {
	// Points returns n placement points inside the shape.
	Points(n int) ([]model.Point, error)
	// Name is the shape's identity as used in layout paths and file names.
	Name() string
	// Clone returns an independent copy with its own random source.
	Clone() Shape
}

// Rectangle is a Width x Height grid of unit cells anchored at (0, 0).
// Points are distinct cells drawn uniformly at random.
type Rectangle struct {
	Width  int
	Height int

	rng *rand.Rand
}

// NewRectangle constructs a rectangle seeded from the wall clock.
func NewRectangle(width, height int) *Rectangle {
	return NewRectangleWithSeed(width, height, time.Now().UnixNano())
}

// NewRectangleWithSeed constructs a rectangle with a deterministic source.
func NewRectangleWithSeed(width, height int, seed int64) *Rectangle {
	return &Rectangle{Width: width, Height: height, rng: rand.New(rand.NewSource(seed))}
}

// Name implements Shape.
func (r *Rectangle) Name() string {
	return fmt.Sprintf("rectangle%dx%d", r.Width, r.Height)
}

// Clone implements Shape. The copy is seeded from the parent's source so a
// seeded run stays reproducible.
func (r *Rectangle) Clone() Shape {
	return NewRectangleWithSeed(r.Width, r.Height, r.source().Int63())
}

// Points implements Shape.
func (r *Rectangle) Points(n int) ([]model.Point, error) {
	return sampleCells(r.source(), r.Width, r.Height, n)
}

// source returns the shape's random source, seeding one from the wall clock
// for shapes built as struct literals.
func (r *Rectangle) source() *rand.Rand {
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r.rng
}

// Square is a Rectangle with equal sides.
type Square struct {
	Rectangle
}

// NewSquare constructs a square seeded from the wall clock.
func NewSquare(side int) *Square {
	return NewSquareWithSeed(side, time.Now().UnixNano())
}

// NewSquareWithSeed constructs a square with a deterministic source.
func NewSquareWithSeed(side int, seed int64) *Square {
	return &Square{Rectangle: *NewRectangleWithSeed(side, side, seed)}
}

// Name implements Shape.
func (s *Square) Name() string {
	return fmt.Sprintf("square%d", s.Width)
}

// Clone implements Shape.
func (s *Square) Clone() Shape {
	return NewSquareWithSeed(s.Width, s.source().Int63())
}

func sampleCells(rng *rand.Rand, width, height, n int) ([]model.Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative point count %d", n)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid field %dx%d", width, height)
	}
	cells := width * height
	if n > cells {
		return nil, fmt.Errorf("requested %d points but field %dx%d has only %d cells", n, width, height, cells)
	}

	idx := make([]int, 0, n)
	if 2*n <= cells {
		seen := make(map[int]struct{}, n)
		for len(idx) < n {
			c := rng.Intn(cells)
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			idx = append(idx, c)
		}
	} else {
		idx = append(idx, rng.Perm(cells)[:n]...)
	}

	pts := make([]model.Point, n)
	for i, c := range idx {
		pts[i] = model.Point{X: float64(c % width), Y: float64(c / width)}
	}
	return pts, nil
}
