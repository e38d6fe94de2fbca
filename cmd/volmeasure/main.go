package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"volmeasure/internal/models"
	"volmeasure/pkg/annotation"
	"volmeasure/pkg/command"
	"volmeasure/pkg/config"
	"volmeasure/pkg/drawgroup"
	"volmeasure/pkg/edit"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/report"
	"volmeasure/pkg/shape"
	"volmeasure/pkg/volume"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing the 2D slices (JPG or PNG)")
	configPath := flag.String("config", "volmeasure.yaml", "Configuration file")
	spacing := flag.Float64("spacing", 1.0, "In-plane pixel spacing in mm")
	sliceGap := flag.Float64("gap", 1.0, "Inter-slice gap in mm")
	orientation := flag.String("orientation", "axial", "View orientation: axial, coronal or sagittal")
	slice := flag.Int("slice", -1, "Slice to measure on (default: central slice)")
	shapeSpec := flag.String("shape", "", "Shape to measure, kind:x1,y1,x2,y2,... in plane pixels")
	reportPath := flag.String("report", "", "Write the structured report as YAML to this file (- for stdout)")
	fullStats := flag.Bool("full", false, "Add median and quartiles to the quantification")
	slicePath := flag.String("save-slice", "", "Save the measured slice as an image")
	flag.Parse()

	if *inputDir == "" || *shapeSpec == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// explicit flags override the configuration
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "spacing":
			cfg.Volume.Spacing = *spacing
		case "gap":
			cfg.Volume.SliceGap = *sliceGap
		case "orientation":
			cfg.Volume.Orientation = *orientation
		case "full":
			cfg.Quantification.FullStats = *fullStats
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Logging.Level),
	})))

	kind, points, err := parseShape(*shapeSpec)
	if err != nil {
		log.Fatalf("Invalid shape: %v", err)
	}

	// Load the slice stack and build the volume
	stack, err := models.LoadStack(*inputDir, cfg.Volume.SliceGap)
	if err != nil {
		log.Fatalf("Failed to load slices: %v", err)
	}
	g, err := stack.Geometry(cfg.Volume.Spacing)
	if err != nil {
		log.Fatalf("Failed to build geometry: %v", err)
	}
	vol, err := volume.New(g, stack.Data(), volume.Info{
		Modality:    cfg.Volume.Modality,
		SOPClassUID: report.SecondaryCaptureStorage,
		PixelUnit:   cfg.Volume.PixelUnit,
	})
	if err != nil {
		log.Fatalf("Failed to build volume: %v", err)
	}
	view := vol.NewView(cfg.ViewOrientation())

	// Index annotations by plane and follow the view position
	orient := g.Orientation()
	row, col := orient.Col(0), orient.Col(1)
	index := drawgroup.NewIndex(view, [6]float64{row.X, row.Y, row.Z, col.X, col.Y, col.Z}, cfg.Position.Precision)
	group := annotation.NewGroup()
	group.SetColour(cfg.Colour())
	detach := index.Attach(group)
	defer detach()
	stop := index.Follow(&view.PositionChanges)
	defer stop()
	index.ActivatePosition(view.CurrentPosition().Get3D())

	if *slice >= 0 {
		dim := view.ScrollDimIndex()
		if err := view.SetIndex(view.CurrentIndex().With(dim, *slice)); err != nil {
			log.Fatalf("Failed to move to slice %d: %v", *slice, err)
		}
	}

	min, max := view.PlaneBounds()
	history := command.NewHistory(cfg.History.MaxDepth)
	editor := edit.NewEditor(group, history, edit.Bounds{Min: min, Max: max}, edit.Options{
		Style:     cfg.Style(),
		TextExprs: cfg.TextExprs(),
	})

	a, err := editor.Create(kind, points, view)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", kind, err)
	}

	w, h, d := view.PlaneSize()
	fmt.Println("================================")
	fmt.Printf("Volume: %d slices of %dx%d, %s view, slice %d of %d\n",
		len(stack.Slices), stack.Width, stack.Height, cfg.Volume.Orientation, view.Slice(), d)
	fmt.Printf("Plane: %dx%d pixels, spacing %.3g x %.3g mm\n", w, h, view.Spacing2D().X, view.Spacing2D().Y)
	fmt.Println("================================")
	fmt.Printf("%s: %s\n", kind, a.Text())
	for _, name := range slices.Sorted(maps.Keys(a.Quantification)) {
		v := a.Quantification[name]
		fmt.Printf("  %-8s %s %s\n", name, shape.FormatPrecision(v.Value, 6), v.Unit)
	}
	if c, ok := a.Centroid(); ok {
		fmt.Printf("Centroid (world): %s\n", c)
	}
	if key, ok := index.ActiveKey(); ok {
		fmt.Printf("Plane group %s: %d annotation(s)\n", key, len(index.Active()))
	}

	if *slicePath != "" {
		if err := view.SaveImage(*slicePath, 0); err != nil {
			log.Printf("Warning: Failed to save slice: %v", err)
		} else {
			fmt.Printf("Slice saved to: %s\n", *slicePath)
		}
	}

	if *reportPath != "" {
		doc := report.ToDicom(group)
		doc.SOPInstanceUID = volume.NewUID()
		if _, err := report.ToDataset(doc); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			log.Fatalf("Failed to marshal report: %v", err)
		}
		if *reportPath == "-" {
			os.Stdout.Write(data)
		} else if err := os.WriteFile(*reportPath, data, 0644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		} else {
			fmt.Printf("Report saved to: %s\n", *reportPath)
		}
	}
}

// parseShape reads a kind:x1,y1,x2,y2,... shape description. Kind names
// are case insensitive.
func parseShape(spec string) (shape.Kind, []geom.Point2D, error) {
	name, values, ok := strings.Cut(spec, ":")
	if !ok {
		return shape.KindUnknown, nil, fmt.Errorf("missing ':' in %q", spec)
	}
	kind := shape.KindUnknown
	for _, k := range shape.Kinds() {
		if strings.EqualFold(k.String(), name) {
			kind = k
		}
	}
	if kind == shape.KindUnknown {
		return kind, nil, fmt.Errorf("unknown shape kind %q", name)
	}

	fields := strings.Split(values, ",")
	if len(fields)%2 != 0 {
		return kind, nil, fmt.Errorf("odd number of coordinates in %q", values)
	}
	points := make([]geom.Point2D, len(fields)/2)
	for i := range points {
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[2*i]), 64)
		if err != nil {
			return kind, nil, fmt.Errorf("coordinate %q: %w", fields[2*i], err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[2*i+1]), 64)
		if err != nil {
			return kind, nil, fmt.Errorf("coordinate %q: %w", fields[2*i+1], err)
		}
		points[i] = geom.Point2D{X: x, Y: y}
	}
	return kind, points, nil
}
