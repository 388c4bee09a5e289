package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/odedash/internal/dynamo"
)

// PlotWidth is the image width; heights come from the caller.
const PlotWidth = 8 * vg.Inch

// NewPlot builds a scatter plot of one variable against time.
func NewPlot(tr *dynamo.Trajectory, name string) (*plot.Plot, error) {
	series, ok := tr.Series(name)
	if !ok {
		return nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, name)
	}

	pts := make(plotter.XYs, len(series))
	for i := range series {
		pts[i].X = tr.Times[i]
		pts[i].Y = series[i]
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "time"
	p.Y.Label.Text = name
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Radius = vg.Points(1)
	p.Add(s)
	return p, nil
}

// WritePlot renders one variable in the given format ("png" or "svg").
// height is in pixels at 96 dpi.
func WritePlot(w io.Writer, tr *dynamo.Trajectory, name, format string, height int) error {
	p, err := NewPlot(tr, name)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotWidth, pixels(height), format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// WritePlots writes <dir>/<variable>.<format> for every variable and
// returns the file paths in variable order.
func WritePlots(dir string, tr *dynamo.Trajectory, format string, height int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(tr.Names))
	for _, name := range tr.Names {
		p, err := NewPlot(tr, name)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name+"."+format)
		if err := p.Save(PlotWidth, pixels(height), path); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func pixels(h int) vg.Length {
	return vg.Length(h) * vg.Inch / 96
}
