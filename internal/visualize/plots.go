// Package visualize renders diagnostic views of a generated scan pattern.
// It only reads a finished Pattern and plays no part in generation.
package visualize

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/scanpattern/internal/fsutil"
	"github.com/banshee-data/scanpattern/internal/scanpattern"
)

var (
	horizontalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	verticalColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	pulseColor      = color.RGBA{R: 38, G: 130, B: 142, A: 255}
)

// RenderPNG writes two PNGs into dir: <name>_mirror.png with the unclipped
// horizontal and vertical mirror angles over the frame, and
// <name>_pattern.png with the retained pulses in azimuth/elevation.
// It returns the paths written.
func RenderPNG(fsys fsutil.FileSystem, dir, name string, pat *scanpattern.Pattern) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	mirror, err := mirrorPlot(name, pat.Trace())
	if err != nil {
		return nil, err
	}
	pattern, err := patternPlot(name, pat)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, out := range []struct {
		suffix string
		p      *plot.Plot
	}{
		{"_mirror.png", mirror},
		{"_pattern.png", pattern},
	} {
		path := filepath.Join(dir, name+out.suffix)
		if err := savePNG(fsys, path, out.p, 14*vg.Inch, 6*vg.Inch); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func mirrorPlot(name string, trace scanpattern.MirrorTrace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Mirror Trace (unclipped)", name)
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Angle (deg)"

	hPts := make(plotter.XYs, len(trace.TimesS))
	vPts := make(plotter.XYs, len(trace.TimesS))
	for i, t := range trace.TimesS {
		ms := t * 1e3
		hPts[i] = plotter.XY{X: ms, Y: trace.HorizontalDeg[i]}
		vPts[i] = plotter.XY{X: ms, Y: trace.VerticalDeg[i]}
	}

	hLine, err := plotter.NewLine(hPts)
	if err != nil {
		return nil, fmt.Errorf("horizontal trace: %w", err)
	}
	hLine.Color = horizontalColor
	hLine.Width = vg.Points(0.5)

	vLine, err := plotter.NewLine(vPts)
	if err != nil {
		return nil, fmt.Errorf("vertical trace: %w", err)
	}
	vLine.Color = verticalColor
	vLine.Width = vg.Points(0.5)

	p.Add(plotter.NewGrid(), hLine, vLine)
	p.Legend.Add("horizontal", hLine)
	p.Legend.Add("vertical", vLine)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func patternPlot(name string, pat *scanpattern.Pattern) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Scan Pattern (%d pulses, %.3f Hz)", name, pat.TotalPoints(), pat.FrameRateHz())
	p.X.Label.Text = "Azimuth (deg)"
	p.Y.Label.Text = "Elevation (deg)"

	az := pat.AzimuthsDeg()
	el := pat.ElevationsDeg()
	pts := make(plotter.XYs, len(az))
	for i := range az {
		pts[i] = plotter.XY{X: az[i], Y: el[i]}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("pulse scatter: %w", err)
	}
	scatter.GlyphStyle.Color = pulseColor
	scatter.GlyphStyle.Radius = vg.Points(0.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(plotter.NewGrid(), scatter)
	params := pat.Params()
	p.X.Min = -float64(params.HorizontalFOVDeg) / 2
	p.X.Max = float64(params.HorizontalFOVDeg) / 2
	p.Y.Min = -float64(params.VerticalFOVDeg) / 2
	p.Y.Max = float64(params.VerticalFOVDeg) / 2
	return p, nil
}

func savePNG(fsys fsutil.FileSystem, path string, p *plot.Plot, w, h vg.Length) (err error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filepath.Base(path), cerr)
		}
	}()
	if _, err := wt.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
