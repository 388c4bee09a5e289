package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odedash/internal/dynamo"
)

type Point struct{ X, Y float64 }

// Portrait holds data for a 2D phase space plot.
type Portrait struct {
	XName, YName string
	Points       []Point
}

// PhasePortrait pairs the samples of two variables of tr.
func PhasePortrait(tr *dynamo.Trajectory, xName, yName string) (*Portrait, error) {
	xs, ok := tr.Series(xName)
	if !ok {
		return nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, xName)
	}
	ys, ok := tr.Series(yName)
	if !ok {
		return nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, yName)
	}

	p := &Portrait{XName: xName, YName: yName, Points: make([]Point, len(xs))}
	for i := range xs {
		p.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return p, nil
}

// ASCII renders the portrait onto a width x height character grid.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil {
		return ""
	}
	return plotPoints(p.Points, width, height)
}

func plotPoints(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records (xName, yName) wherever crossName rises through
// threshold, interpolating linearly between the bracketing samples.
func PoincareSection(tr *dynamo.Trajectory, crossName string, threshold float64, xName, yName string) ([]Point, error) {
	cross, ok := tr.Series(crossName)
	if !ok {
		return nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, crossName)
	}
	p, err := PhasePortrait(tr, xName, yName)
	if err != nil {
		return nil, err
	}

	var section []Point
	for i := 1; i < len(cross); i++ {
		prev, curr := cross[i-1], cross[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		a, b := p.Points[i-1], p.Points[i]
		section = append(section, Point{
			X: a.X + frac*(b.X-a.X),
			Y: a.Y + frac*(b.Y-a.Y),
		})
	}
	return section, nil
}

// SectionASCII renders section points like a phase portrait.
func SectionASCII(points []Point, width, height int) string {
	if len(points) == 0 {
		return "No crossings detected"
	}
	return plotPoints(points, width, height)
}
