package dataset

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/AlexanderBMN/kiss-icp-aeif/internal/fsutil"
)

// projectionFixture writes one recording whose frames carry cameras of
// distinct widths, so a test can tell which frame an overlay came from.
func projectionFixture(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()

	fs := fsutil.NewMemoryFileSystem()
	writeRecording(t, fs, "cam", 10,
		makeFrame(t, 1000, 8, 10, 40, 30),
		makeFrame(t, 2000, 8, 10, 48, 30),
		makeFrame(t, 3000, 8, 10, 56, 30),
	)
	return fs
}

func TestProjectPoints(t *testing.T) {
	t.Parallel()

	fs := projectionFixture(t)
	d, err := Open(testDataDir, "cam", withFileSystem(fs), WithOutputDir("/out"))
	require.NoError(t, err)

	require.NoError(t, d.ProjectPoints(0, nil))

	data, err := fs.ReadFile("/out/0.png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// Lidar frame 0 is paired with the camera of frame 1 (48 wide).
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestProjectPointsSupplied(t *testing.T) {
	t.Parallel()

	fs := projectionFixture(t)
	d, err := Open(testDataDir, "cam", withFileSystem(fs), WithOutputDir("/out"))
	require.NoError(t, err)

	points := mat.NewDense(3, 3, []float64{
		0.1, 0.0, 3.0,
		-0.1, 0.1, 4.0,
		0.0, -0.1, 5.0,
	})
	require.NoError(t, d.ProjectPoints(1, points))

	data, err := fs.ReadFile("/out/1.png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 56, img.Bounds().Dx())
}

func TestProjectPointsLastFrameHasNoCamera(t *testing.T) {
	t.Parallel()

	fs := projectionFixture(t)
	d, err := Open(testDataDir, "cam", withFileSystem(fs), WithOutputDir("/out"))
	require.NoError(t, err)

	// The last frame of a file has no following camera frame to pair with.
	err = d.ProjectPoints(d.Len()-1, nil)
	assert.Error(t, err)
}

func TestProjectPointsOutOfRange(t *testing.T) {
	t.Parallel()

	fs := projectionFixture(t)
	d, err := Open(testDataDir, "cam", withFileSystem(fs), WithOutputDir("/out"))
	require.NoError(t, err)

	assert.ErrorIs(t, d.ProjectPoints(-1, nil), ErrFrameOutOfRange)
	assert.ErrorIs(t, d.ProjectPoints(d.Len(), nil), ErrFrameOutOfRange)
}
