package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/AlexanderBMN/kiss-icp-aeif/mse"
)

// ProjectPoints renders a projection overlay for the frame at the given
// global index and writes it as "<idx>.png" to the output directory.
//
// The lidar points of frame i are paired with the STEREO_LEFT camera
// image of frame i+1; the one-frame offset compensates for the relative
// capture timing of the two sensors. If points is nil the frame's own TOP
// lidar payload is projected; otherwise the supplied N×3 coordinates are
// projected through the frame's lidar calibration.
//
// This is a diagnostic utility, not part of the core read path.
func (d *Dataset) ProjectPoints(idx int, points *mat.Dense) error {
	fileIdx, frameIdx, err := d.index.locate(idx)
	if err != nil {
		return err
	}

	rec, err := d.record(fileIdx)
	if err != nil {
		return err
	}

	camFrame, err := rec.Frame(frameIdx + 1)
	if err != nil {
		return fmt.Errorf("camera frame for index %d: %w", idx, err)
	}
	img, err := camFrame.Vehicle.Cameras.StereoLeft.Image()
	if err != nil {
		return err
	}

	frame, err := rec.Frame(frameIdx)
	if err != nil {
		return err
	}
	lidar := frame.Vehicle.Lidars.Top
	if points != nil {
		lidar = mse.Lidar{Info: lidar.Info, Points: pointsFromMatrix(points)}
	}

	overlay := renderProjection(img, lidar)

	var buf bytes.Buffer
	if err := png.Encode(&buf, overlay); err != nil {
		return fmt.Errorf("encode projection: %w", err)
	}

	out := filepath.Join(d.outputDir, fmt.Sprintf("%d.png", idx))
	if err := d.fs.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write projection: %w", err)
	}

	return nil
}

// pointsFromMatrix builds a lidar point payload from externally supplied
// N×3 coordinates. The synthetic payload carries no capture times.
func pointsFromMatrix(m *mat.Dense) mse.Points {
	n, _ := m.Dims()
	pts := mse.Points{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
		T: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		pts.X[i] = m.At(i, 0)
		pts.Y[i] = m.At(i, 1)
		pts.Z[i] = m.At(i, 2)
	}
	return pts
}

// renderProjection projects the lidar points through the pinhole model
// and draws them over the camera image, coloured by depth.
func renderProjection(img image.Image, lidar mse.Lidar) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	info := lidar.Info
	pts := lidar.Points

	type projected struct {
		u, v  int
		depth float64
	}

	minZ, maxZ := math.Inf(1), math.Inf(-1)
	var proj []projected
	for i := 0; i < pts.Len(); i++ {
		x, y, z := transformPoint(info.Extrinsic, pts.X[i], pts.Y[i], pts.Z[i])
		if z <= 0 {
			continue
		}
		u := int(info.FocalX*x/z + info.CenterX)
		v := int(info.FocalY*y/z + info.CenterY)
		if u < bounds.Min.X || u >= bounds.Max.X || v < bounds.Min.Y || v >= bounds.Max.Y {
			continue
		}
		proj = append(proj, projected{u: u, v: v, depth: z})
		if z < minZ {
			minZ = z
		}
		if z > maxZ {
			maxZ = z
		}
	}

	for _, p := range proj {
		drawDot(out, p.u, p.v, depthColor(p.depth, minZ, maxZ))
	}

	return out
}

// transformPoint applies the row-major 4x4 extrinsic to a point.
func transformPoint(m [16]float64, x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z + m[3],
		m[4]*x + m[5]*y + m[6]*z + m[7],
		m[8]*x + m[9]*y + m[10]*z + m[11]
}

// drawDot paints a 2x2 dot clipped to the image bounds.
func drawDot(img *image.RGBA, u, v int, c color.Color) {
	bounds := img.Bounds()
	for dv := 0; dv < 2; dv++ {
		for du := 0; du < 2; du++ {
			x, y := u+du, v+dv
			if x < bounds.Max.X && y < bounds.Max.Y {
				img.Set(x, y, c)
			}
		}
	}
}

// depthColor maps a depth within [minZ, maxZ] onto the hue wheel: near
// points red, far points violet.
func depthColor(z, minZ, maxZ float64) color.Color {
	hue := 0.0
	if maxZ > minZ {
		hue = 0.8 * (z - minZ) / (maxZ - minZ)
	}
	r, g, b := hslToRGB(hue, 0.9, 0.5)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
