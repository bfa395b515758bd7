// Package mse reads and writes .4mse recording files.
//
// A .4mse file holds one contiguous span of synchronised sensor frames
// captured by the AEIF recording vehicle. Each frame carries the TOP
// lidar point payload (x/y/z coordinates plus per-point capture times)
// and the STEREO_LEFT camera image, behind a JSON header describing the
// recording as a whole.
package mse

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"math"
)

// FileExtension is the extension for AEIF recording files.
const FileExtension = ".4mse"

// Version is the format version written by this package.
const Version = "1.0"

// magic identifies a .4mse file.
var magic = [4]byte{'4', 'M', 'S', 'E'}

// Header contains metadata about a recording file.
type Header struct {
	Version      string `json:"version"`
	RecordingID  string `json:"recording_id"`
	SequenceName string `json:"sequence_name"`
	CreatedNs    int64  `json:"created_ns"`
	TotalFrames  int    `json:"total_frames"`
	StartNs      int64  `json:"start_ns"`
	EndNs        int64  `json:"end_ns"`
}

// Points holds the named per-point fields of a lidar payload.
// All four slices have equal length, one entry per point.
type Points struct {
	X []float64
	Y []float64
	Z []float64
	T []float64
}

// Len returns the number of points in the payload.
func (p Points) Len() int {
	return len(p.X)
}

// LidarInfo is the calibration metadata of a lidar sensor: pinhole
// intrinsics of the paired camera and the row-major 4x4 camera-from-lidar
// extrinsic transform.
type LidarInfo struct {
	FocalX    float64
	FocalY    float64
	CenterX   float64
	CenterY   float64
	Extrinsic [16]float64
}

// Lidar is one lidar sensor payload: calibration plus points.
type Lidar struct {
	Info   LidarInfo
	Points Points
}

// Camera holds one camera image, kept PNG-encoded until accessed.
type Camera struct {
	encoded []byte
}

// NewCamera encodes an image into a camera payload.
func NewCamera(img image.Image) (Camera, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Camera{}, fmt.Errorf("encode camera image: %w", err)
	}
	return Camera{encoded: buf.Bytes()}, nil
}

// Image decodes the camera payload.
func (c Camera) Image() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(c.encoded))
	if err != nil {
		return nil, fmt.Errorf("decode camera image: %w", err)
	}
	return img, nil
}

// PNG returns the raw PNG bytes of the camera payload.
func (c Camera) PNG() []byte {
	return c.encoded
}

// Vehicle groups the sensor payloads of one frame by mount point,
// mirroring the recording vehicle's sensor tree.
type Vehicle struct {
	Lidars struct {
		Top Lidar
	}
	Cameras struct {
		StereoLeft Camera
	}
}

// Frame is one synchronised capture instant.
type Frame struct {
	TimestampNs int64
	Vehicle     Vehicle
}

// Frame blocks are little-endian binary:
//
//	int64   timestamp ns
//	20x f64 TOP lidar calibration (fx fy cx cy + 4x4 extrinsic)
//	uint32  point count, then x/y/z/t float64 arrays
//	uint32  PNG length, then STEREO_LEFT PNG bytes

func encodeFrame(f *Frame) ([]byte, error) {
	lidar := f.Vehicle.Lidars.Top
	pts := lidar.Points
	n := pts.Len()
	if len(pts.Y) != n || len(pts.Z) != n || len(pts.T) != n {
		return nil, fmt.Errorf("mismatched point field lengths: x=%d y=%d z=%d t=%d",
			len(pts.X), len(pts.Y), len(pts.Z), len(pts.T))
	}

	img := f.Vehicle.Cameras.StereoLeft.PNG()

	size := 8 + 20*8 + 4 + 4*n*8 + 4 + len(img)
	buf := make([]byte, 0, size)

	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.TimestampNs))
	buf = appendFloat(buf, lidar.Info.FocalX)
	buf = appendFloat(buf, lidar.Info.FocalY)
	buf = appendFloat(buf, lidar.Info.CenterX)
	buf = appendFloat(buf, lidar.Info.CenterY)
	for _, v := range lidar.Info.Extrinsic {
		buf = appendFloat(buf, v)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	for _, field := range [][]float64{pts.X, pts.Y, pts.Z, pts.T} {
		for _, v := range field {
			buf = appendFloat(buf, v)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(img)))
	buf = append(buf, img...)

	return buf, nil
}

func decodeFrame(block []byte) (*Frame, error) {
	c := cursor{data: block}

	f := &Frame{}
	ts, err := c.uint64()
	if err != nil {
		return nil, fmt.Errorf("frame timestamp: %w", err)
	}
	f.TimestampNs = int64(ts)

	info := &f.Vehicle.Lidars.Top.Info
	for _, dst := range []*float64{&info.FocalX, &info.FocalY, &info.CenterX, &info.CenterY} {
		if *dst, err = c.float64(); err != nil {
			return nil, fmt.Errorf("lidar calibration: %w", err)
		}
	}
	for i := range info.Extrinsic {
		if info.Extrinsic[i], err = c.float64(); err != nil {
			return nil, fmt.Errorf("lidar extrinsic: %w", err)
		}
	}

	n, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("point count: %w", err)
	}

	pts := &f.Vehicle.Lidars.Top.Points
	for _, field := range []*[]float64{&pts.X, &pts.Y, &pts.Z, &pts.T} {
		if *field, err = c.floats(int(n)); err != nil {
			return nil, fmt.Errorf("point field: %w", err)
		}
	}

	imgLen, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("image length: %w", err)
	}
	img, err := c.bytes(int(imgLen))
	if err != nil {
		return nil, fmt.Errorf("image data: %w", err)
	}
	f.Vehicle.Cameras.StereoLeft = Camera{encoded: img}

	return f, nil
}

// frameTimestamp reads only the leading timestamp of a frame block.
func frameTimestamp(block []byte) (int64, error) {
	if len(block) < 8 {
		return 0, fmt.Errorf("frame block too short: %d bytes", len(block))
	}
	return int64(binary.LittleEndian.Uint64(block)), nil
}

func appendFloat(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
}

// cursor walks a byte slice with bounds checking.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, fmt.Errorf("truncated: need %d bytes at offset %d of %d", n, c.off, len(c.data))
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) uint64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) float64() (float64, error) {
	v, err := c.uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (c *cursor) floats(n int) ([]float64, error) {
	b, err := c.bytes(n * 8)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out, nil
}
