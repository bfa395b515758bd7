// Package dataset exposes a multi-file AEIF sensor recording as a single
// flat, index-addressable sequence of 3D point clouds with per-point
// timestamps.
//
// A downstream odometry/registration pipeline addresses frames through one
// monotonically increasing global index: frames of the first resolved file
// come first, then the second, and so on. Sequences are selected with a
// specifier of the form "<name>" or "<name>#<startID>-<endID>", the latter
// restricting the dataset to an inclusive range of recording-file IDs.
package dataset

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/AlexanderBMN/kiss-icp-aeif/internal/fsutil"
	"github.com/AlexanderBMN/kiss-icp-aeif/mse"
)

// Dataset is a random-access view over the resolved files of one
// recording sequence. By default every file in the range is opened and
// buffered for the dataset's lifetime.
type Dataset struct {
	fs         fsutil.FileSystem
	sequenceID string
	name       string
	dir        string
	outputDir  string
	window     int

	paths []string
	files []*mse.File // eager buffer; unused in windowed mode
	cache *fileWindow
	index frameIndex
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithOutputDir sets the directory projection overlays are written to.
// Defaults to the working directory.
func WithOutputDir(dir string) Option {
	return func(d *Dataset) { d.outputDir = dir }
}

// WithWindow bounds the number of record files kept decoded at once
// instead of buffering the entire resolved range. Headers are still read
// eagerly to build the frame index. The default (0) buffers everything.
func WithWindow(n int) Option {
	return func(d *Dataset) { d.window = n }
}

// withFileSystem substitutes the filesystem, for tests.
func withFileSystem(fs fsutil.FileSystem) Option {
	return func(d *Dataset) { d.fs = fs }
}

// Open resolves the files of the given sequence under dataDir and builds
// the global frame index. A missing directory or an empty file set yields
// a zero-length dataset, not an error.
func Open(dataDir, sequence string, opts ...Option) (*Dataset, error) {
	d := &Dataset{
		fs:         fsutil.OSFileSystem{},
		sequenceID: sequence,
		outputDir:  ".",
	}
	for _, opt := range opts {
		opt(d)
	}

	var r idRange
	d.name, r = parseSequence(sequence)
	d.dir = filepath.Join(dataDir, d.name)

	// Glob returns sorted names; lexicographic order matches
	// chronological order by the filename convention.
	all, err := d.fs.Glob(filepath.Join(d.dir, "*"+mse.FileExtension))
	if err != nil {
		return nil, fmt.Errorf("scan sequence directory: %w", err)
	}

	startFile, endFile, err := resolveRange(all, r)
	if err != nil {
		return nil, err
	}
	d.paths = all[startFile:endFile]

	counts := make([]int, len(d.paths))
	if d.window > 0 {
		d.cache = newFileWindow(d.window)
		for i, path := range d.paths {
			data, err := d.fs.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read recording: %w", err)
			}
			header, err := mse.ReadHeader(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			counts[i] = header.TotalFrames
		}
	} else {
		d.files = make([]*mse.File, len(d.paths))
		for i, path := range d.paths {
			f, err := d.openRecord(path)
			if err != nil {
				return nil, err
			}
			d.files[i] = f
			counts[i] = f.NumFrames()
		}
	}

	d.index = newFrameIndex(counts)
	return d, nil
}

func (d *Dataset) openRecord(path string) (*mse.File, error) {
	data, err := d.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	f, err := mse.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// record returns the opened file at fileIdx, consulting the window cache
// in windowed mode.
func (d *Dataset) record(fileIdx int) (*mse.File, error) {
	if d.cache != nil {
		if f, ok := d.cache.get(fileIdx); ok {
			return f, nil
		}
		f, err := d.openRecord(d.paths[fileIdx])
		if err != nil {
			return nil, err
		}
		d.cache.put(fileIdx, f)
		return f, nil
	}
	return d.files[fileIdx], nil
}

// Len returns the total number of frames across all resolved files.
func (d *Dataset) Len() int {
	return d.index.total
}

// Files returns the number of resolved record files.
func (d *Dataset) Files() int {
	return len(d.paths)
}

// SequenceID returns the specifier the dataset was opened with.
func (d *Dataset) SequenceID() string {
	return d.sequenceID
}

// Name returns the resolved sequence name.
func (d *Dataset) Name() string {
	return d.name
}

// At returns the TOP lidar point cloud of the frame at the given global
// index as an N×3 matrix, together with the per-point capture times
// normalised to [0,1] within the frame. Fails with ErrFrameOutOfRange for
// indices outside [0, Len()).
func (d *Dataset) At(i int) (*mat.Dense, []float64, error) {
	fileIdx, frameIdx, err := d.index.locate(i)
	if err != nil {
		return nil, nil, err
	}

	rec, err := d.record(fileIdx)
	if err != nil {
		return nil, nil, err
	}
	frame, err := rec.Frame(frameIdx)
	if err != nil {
		return nil, nil, err
	}

	pts := frame.Vehicle.Lidars.Top.Points
	return stackPoints(pts), normalizeTimestamps(pts.T), nil
}

// FrameTimestamps returns the capture timestamp of every frame across the
// buffered sequence, in file-then-frame order, as a column vector of
// length Len().
func (d *Dataset) FrameTimestamps() (*mat.VecDense, error) {
	if d.index.total == 0 {
		return &mat.VecDense{}, nil
	}

	data := make([]float64, 0, d.index.total)
	for fileIdx := range d.paths {
		rec, err := d.record(fileIdx)
		if err != nil {
			return nil, err
		}
		for frameIdx := 0; frameIdx < rec.NumFrames(); frameIdx++ {
			ts, err := rec.FrameTimestamp(frameIdx)
			if err != nil {
				return nil, err
			}
			data = append(data, float64(ts))
		}
	}

	return mat.NewVecDense(len(data), data), nil
}

// Close releases the buffered file records. The dataset reports length
// zero afterwards.
func (d *Dataset) Close() error {
	d.files = nil
	d.cache = nil
	d.paths = nil
	d.index = frameIndex{}
	return nil
}

// stackPoints stacks the named x/y/z fields into an N×3 matrix,
// preserving per-point order.
func stackPoints(pts mse.Points) *mat.Dense {
	n := pts.Len()
	if n == 0 {
		return &mat.Dense{}
	}

	m := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, pts.X[i])
		m.Set(i, 1, pts.Y[i])
		m.Set(i, 2, pts.Z[i])
	}
	return m
}

// normalizeTimestamps min-max normalises per-point capture times within
// one frame, independently of all other frames. A constant-timestamp
// frame divides by zero and yields NaNs; that marks the frame as
// degenerate for the caller rather than hiding it.
func normalizeTimestamps(ts []float64) []float64 {
	if len(ts) == 0 {
		return []float64{}
	}

	min := floats.Min(ts)
	span := floats.Max(ts) - min

	out := make([]float64, len(ts))
	for i, v := range ts {
		out[i] = (v - min) / span
	}
	return out
}

// fileWindow is a small LRU of decoded record files for windowed mode.
type fileWindow struct {
	limit int
	order []int
	files map[int]*mse.File
}

func newFileWindow(limit int) *fileWindow {
	return &fileWindow{limit: limit, files: make(map[int]*mse.File)}
}

func (w *fileWindow) get(fileIdx int) (*mse.File, bool) {
	f, ok := w.files[fileIdx]
	if ok {
		w.touch(fileIdx)
	}
	return f, ok
}

func (w *fileWindow) put(fileIdx int, f *mse.File) {
	w.files[fileIdx] = f
	w.order = append(w.order, fileIdx)
	if len(w.files) > w.limit {
		evict := w.order[0]
		w.order = w.order[1:]
		delete(w.files, evict)
	}
}

func (w *fileWindow) touch(fileIdx int) {
	for i, idx := range w.order {
		if idx == fileIdx {
			w.order = append(w.order[:i], w.order[i+1:]...)
			w.order = append(w.order, fileIdx)
			return
		}
	}
}
