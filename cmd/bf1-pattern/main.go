// Command bf1-pattern generates a Blickfeld Cube1 scan pattern and writes it
// as an RTX LiDAR sensor profile. The output file is named
// BF1_<FREQ>_<HOR_MEAS_FOV>_<VER_MEAS_FOV>_<HOR_ANG_RES>_<NUM_SCAN_UP>_<NUM_SCAN_DOWN>.json.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/scanpattern/internal/catalog"
	"github.com/banshee-data/scanpattern/internal/config"
	"github.com/banshee-data/scanpattern/internal/fsutil"
	"github.com/banshee-data/scanpattern/internal/profile"
	"github.com/banshee-data/scanpattern/internal/scanpattern"
	"github.com/banshee-data/scanpattern/internal/version"
	"github.com/banshee-data/scanpattern/internal/visualize"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code: 0 on
// success, 1 on a failed run, 2 on a usage error.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bf1-pattern", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bf1-pattern [flags]\n\n")
		fmt.Fprintf(stderr, "Generates a Cube1 scan pattern and writes it as an RTX LiDAR profile.\n")
		fmt.Fprintf(stderr, "The output file is named BF1_<FREQ>_<HOR_MEAS_FOV>_<VER_MEAS_FOV>_<HOR_ANG_RES>_<NUM_SCAN_UP>_<NUM_SCAN_DOWN>.json\n\n")
		fs.PrintDefaults()
	}

	var freq int
	fs.IntVar(&freq, "freq", scanpattern.DefaultMirrorFrequencyHz, "Mirror eigen frequency in Hz. Should not normally be changed")
	fs.IntVar(&freq, "f", scanpattern.DefaultMirrorFrequencyHz, "Shorthand for -freq")
	hfov := fs.Int("hor_meas_fov", 72, "Horizontal measurement FOV in degrees [1 - 72]")
	vfov := fs.Int("ver_meas_fov", 30, "Vertical measurement FOV in degrees [1 - 30]")
	res := fs.Int("hor_ang_res", 4, "Horizontal angular resolution in deci-degrees [4 - 10]")
	up := fs.Int("num_scan_up", 200, "Number of scanlines in the up ramp phase [1 - 200]")
	down := fs.Int("num_scan_down", 200, "Number of scanlines in the down ramp phase [1 - 200]")

	configPath := fs.String("config", "", "Path to a .json/.yaml scan config; flags override its values")
	outDir := fs.String("out", ".", "Directory for the generated profile and plots")
	plotPNG := fs.Bool("plot", false, "Also write PNG plots of the mirror trace and scan pattern")
	html := fs.Bool("html", false, "Also write an interactive HTML chart of the scan pattern")
	catalogPath := fs.String("catalog", "", "Record the run in this SQLite catalog")
	list := fs.Bool("list", false, "List the entries of -catalog and exit")
	verbose := fs.Bool("v", false, "Log diagnostics to stderr")
	trace := fs.Bool("trace", false, "Log per-scanline detail to stderr")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	logger := log.New(stderr, "", log.LstdFlags)
	configureLogging(stderr, *verbose, *trace)
	defer configureLogging(nil, false, false)

	cfg := config.EmptyScanConfig()
	if *configPath != "" {
		loaded, err := config.LoadScanConfig(*configPath)
		if err != nil {
			logger.Printf("failed to load config: %v", err)
			return 1
		}
		cfg = loaded
	}

	// Explicit flags win over the config file.
	override := config.EmptyScanConfig()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "freq", "f":
			override.Freq = &freq
		case "hor_meas_fov":
			override.HorMeasFOV = hfov
		case "ver_meas_fov":
			override.VerMeasFOV = vfov
		case "hor_ang_res":
			override.HorAngRes = res
		case "num_scan_up":
			override.NumScanUp = up
		case "num_scan_down":
			override.NumScanDown = down
		case "out":
			override.OutputDir = outDir
		case "plot":
			override.Plot = plotPNG
		case "html":
			override.HTML = html
		case "catalog":
			override.Catalog = catalogPath
		}
	})
	cfg = cfg.Merge(override)

	if *list {
		if cfg.GetCatalog() == "" {
			fmt.Fprintln(stderr, "-list requires -catalog")
			return 2
		}
		if err := listCatalog(cfg.GetCatalog(), stdout); err != nil {
			logger.Printf("failed to list catalog: %v", err)
			return 1
		}
		return 0
	}

	if err := generate(cfg, stdout, logger); err != nil {
		logger.Printf("%v", err)
		return 1
	}
	return 0
}

func generate(cfg *config.ScanConfig, stdout io.Writer, logger *log.Logger) error {
	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return err
	}

	pat, err := scanpattern.Generate(params)
	if err != nil {
		return fmt.Errorf("generate %s: %w", params.Name(), err)
	}
	rec, err := profile.Build(pat, profile.Cube1Constants())
	if err != nil {
		return fmt.Errorf("build %s: %w", params.Name(), err)
	}

	fsys := fsutil.OSFileSystem{}
	outDir := cfg.GetOutputDir()
	path, err := profile.Write(fsys, outDir, rec)
	if err != nil {
		return fmt.Errorf("write %s: %w", params.Filename(), err)
	}
	fmt.Fprintln(stdout, path)

	if cfg.GetPlot() {
		paths, err := visualize.RenderPNG(fsys, outDir, params.Name(), pat)
		if err != nil {
			return fmt.Errorf("plot %s: %w", params.Name(), err)
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
	}
	if cfg.GetHTML() {
		p, err := visualize.RenderHTML(fsys, outDir, params.Name(), pat)
		if err != nil {
			return fmt.Errorf("chart %s: %w", params.Name(), err)
		}
		fmt.Fprintln(stdout, p)
	}

	if dbPath := cfg.GetCatalog(); dbPath != "" {
		cat, err := catalog.Open(dbPath)
		if err != nil {
			return err
		}
		defer cat.Close()
		entry := catalog.EntryFromPattern(pat, path)
		if err := cat.Record(entry); err != nil {
			return err
		}
		logger.Printf("recorded %s in %s as %s", entry.Name, dbPath, entry.PatternID)
	}

	s := pat.Summary()
	logger.Printf("%s: %d lines x %d rays at %.3f Hz, pulse interval %.0f-%.0f ns",
		params.Name(), pat.NumScanlines(), pat.PointsPerLine(), pat.FrameRateHz(),
		s.PulseIntervalMinNs, s.PulseIntervalMaxNs)
	return nil
}

func listCatalog(dbPath string, stdout io.Writer) error {
	cat, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLINES\tRAYS/LINE\tRATE_HZ\tCREATED\tOUTPUT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%s\t%s\n",
			e.PatternID, e.Name, e.NumScanlines, e.PointsPerLine, e.FrameRateHz,
			time.Unix(0, e.CreatedAtNs).UTC().Format(time.RFC3339), e.OutputPath)
	}
	return tw.Flush()
}

// configureLogging routes every package's ops stream to w and enables the
// diag and trace streams on request.
func configureLogging(w io.Writer, verbose, trace bool) {
	var diag, tr io.Writer
	if verbose {
		diag = w
	}
	if trace {
		tr = w
	}
	scanpattern.SetLogWriters(w, diag, tr)
	profile.SetLogWriters(w, diag, tr)
	catalog.SetLogWriters(w, diag, tr)
}
