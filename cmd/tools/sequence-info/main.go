// Command sequence-info resolves a recording sequence and reports what
// the dataset adapter sees: file count, frame count and the span of the
// frame timestamps. It can also chart the frame timeline, which makes
// dropped recording intervals visible as steps in the curve.
//
// Usage:
//
//	go run ./cmd/tools/sequence-info [flags]
//
// Flags:
//
//	-data      Data directory (default: ./data)
//	-sequence  Sequence specifier, e.g. "sample" or "sample#101-102"
//	-timeline  Path to write a frame-timeline PNG chart (optional)
package main

import (
	"flag"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/AlexanderBMN/kiss-icp-aeif/dataset"
)

func main() {
	dataDir := flag.String("data", "data", "data directory")
	sequence := flag.String("sequence", "", "sequence specifier (required)")
	timeline := flag.String("timeline", "", "path to write a frame-timeline PNG chart")
	flag.Parse()

	if *sequence == "" {
		log.Fatal("Error: -sequence flag is required")
	}

	d, err := dataset.Open(*dataDir, *sequence)
	if err != nil {
		log.Fatalf("Failed to open sequence: %v", err)
	}
	defer d.Close()

	log.Printf("Sequence %s: %d files, %d frames", d.SequenceID(), d.Files(), d.Len())

	if d.Len() == 0 {
		return
	}

	timestamps, err := d.FrameTimestamps()
	if err != nil {
		log.Fatalf("Failed to read frame timestamps: %v", err)
	}

	first := timestamps.AtVec(0)
	last := timestamps.AtVec(timestamps.Len() - 1)
	log.Printf("Timestamps: %.3f seconds across %d frames", (last-first)/1e9, timestamps.Len())

	if *timeline == "" {
		return
	}

	p := plot.New()
	p.Title.Text = "Frame timeline: " + d.SequenceID()
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Time since first frame (s)"

	pts := make(plotter.XYs, timestamps.Len())
	for i := 0; i < timestamps.Len(); i++ {
		pts[i] = plotter.XY{X: float64(i), Y: (timestamps.AtVec(i) - first) / 1e9}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		log.Fatalf("Failed to build timeline: %v", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, *timeline); err != nil {
		log.Fatalf("Failed to save timeline chart: %v", err)
	}
	log.Printf("✓ Timeline chart: %s", *timeline)
}
