package visualize

import (
	"fmt"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/scanpattern/internal/fsutil"
	"github.com/banshee-data/scanpattern/internal/scanpattern"
)

// maxHTMLPoints caps the pulses embedded in the HTML chart; larger patterns
// are strided so the page stays responsive.
const maxHTMLPoints = 20000

// viridis is the colour ramp used for fire time.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderHTML writes <name>.html into dir: an interactive scatter of
// azimuth/elevation coloured by fire time in milliseconds.
func RenderHTML(fsys fsutil.FileSystem, dir, name string, pat *scanpattern.Pattern) (path string, err error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	scatter := patternChart(name, pat)

	path = filepath.Join(dir, name+".html")
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filepath.Base(path), cerr)
		}
	}()
	if err := scatter.Render(f); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return path, nil
}

func patternChart(name string, pat *scanpattern.Pattern) *charts.Scatter {
	az := pat.AzimuthsDeg()
	el := pat.ElevationsDeg()
	fire := pat.FireTimesNs()

	stride := 1
	if len(az) > maxHTMLPoints {
		stride = (len(az) + maxHTMLPoints - 1) / maxHTMLPoints
	}
	data := make([]opts.ScatterData, 0, len(az)/stride+1)
	for i := 0; i < len(az); i += stride {
		data = append(data, opts.ScatterData{Value: []interface{}{az[i], el[i], float64(fire[i]) / 1e6}})
	}

	params := pat.Params()
	halfH := float64(params.HorizontalFOVDeg) / 2
	halfV := float64(params.VerticalFOVDeg) / 2

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: name, Theme: "dark", Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("%d lines x %d rays, %d pulses, stride %d, %.3f Hz",
			pat.NumScanlines(), pat.PointsPerLine(), pat.TotalPoints(), stride, pat.FrameRateHz())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -halfH, Max: halfH, Name: "Azimuth (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -halfV, Max: halfV, Name: "Elevation (deg)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(pat.FramePeriodS() * 1e3),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("pulses", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	return scatter
}
