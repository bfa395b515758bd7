// Command gen-mse generates synthetic .4mse recording sequences for
// testing the dataset adapter and downstream registration tooling.
//
// Usage:
//
//	go run ./cmd/tools/gen-mse [flags]
//
// Flags:
//
//	-data      Data directory to write into (default: ./data)
//	-sequence  Sequence name (default: sample)
//	-files     Number of recording files (default: 3)
//	-frames    Frames per file (default: 20)
//	-points    Points per frame (default: 2000)
//	-start-id  Recording ID of the first file (default: 100)
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexanderBMN/kiss-icp-aeif/mse"
)

const (
	camWidth  = 320
	camHeight = 240
)

func main() {
	dataDir := flag.String("data", "data", "data directory to write into")
	sequence := flag.String("sequence", "sample", "sequence name")
	files := flag.Int("files", 3, "number of recording files")
	frames := flag.Int("frames", 20, "frames per file")
	points := flag.Int("points", 2000, "points per frame")
	startID := flag.Int("start-id", 100, "recording ID of the first file")
	flag.Parse()

	seqDir := filepath.Join(*dataDir, *sequence)
	if err := os.MkdirAll(seqDir, 0755); err != nil {
		log.Fatalf("Failed to create sequence directory: %v", err)
	}

	start := time.Now()
	timestampNs := start.UnixNano()
	frameNs := int64(100 * time.Millisecond)

	for i := 0; i < *files; i++ {
		id := *startID + i
		w := mse.NewWriter(*sequence)

		for j := 0; j < *frames; j++ {
			if err := w.Append(syntheticFrame(timestampNs, *points)); err != nil {
				log.Fatalf("Failed to append frame: %v", err)
			}
			timestampNs += frameNs
		}

		name := fmt.Sprintf("id%d_%s%s", id,
			start.Add(time.Duration(i)*time.Duration(*frames)*time.Duration(frameNs)).Format("2006-01-02_15-04-05"),
			mse.FileExtension)
		path := filepath.Join(seqDir, name)

		out, err := os.Create(path)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", path, err)
		}
		if _, err := w.WriteTo(out); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		if err := out.Close(); err != nil {
			log.Fatalf("Failed to close %s: %v", path, err)
		}

		log.Printf("%d/%d files (%s: %d frames)", i+1, *files, name, *frames)
	}

	log.Printf("✓ Created sequence %s in %s", *sequence, seqDir)
}

// syntheticFrame builds one frame: an expanding ring of points swept over
// the frame duration, plus a gradient camera image.
func syntheticFrame(timestampNs int64, n int) *mse.Frame {
	f := &mse.Frame{TimestampNs: timestampNs}

	pts := &f.Vehicle.Lidars.Top.Points
	pts.X = make([]float64, n)
	pts.Y = make([]float64, n)
	pts.Z = make([]float64, n)
	pts.T = make([]float64, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		radius := 5.0 + 10.0*float64(i)/float64(n)
		pts.X[i] = radius * math.Cos(angle)
		pts.Y[i] = radius * math.Sin(angle)
		pts.Z[i] = 1.5 + 0.5*math.Sin(4*angle)
		pts.T[i] = float64(timestampNs) + 1e8*float64(i)/float64(n)
	}

	f.Vehicle.Lidars.Top.Info = mse.LidarInfo{
		FocalX:  250, FocalY: 250,
		CenterX: camWidth / 2, CenterY: camHeight / 2,
		Extrinsic: [16]float64{
			0, -1, 0, 0,
			0, 0, -1, 1.2,
			1, 0, 0, 0,
			0, 0, 0, 1,
		},
	}

	img := image.NewRGBA(image.Rect(0, 0, camWidth, camHeight))
	for y := 0; y < camHeight; y++ {
		for x := 0; x < camWidth; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / camWidth),
				G: uint8(y * 255 / camHeight),
				B: 80,
				A: 255,
			})
		}
	}
	cam, err := mse.NewCamera(img)
	if err != nil {
		log.Fatalf("Failed to encode camera image: %v", err)
	}
	f.Vehicle.Cameras.StereoLeft = cam

	return f
}
