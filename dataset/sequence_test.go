package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSequence(t *testing.T) {
	t.Parallel()

	t.Run("name with range", func(t *testing.T) {
		t.Parallel()
		name, r := parseSequence("drive#11-13")
		assert.Equal(t, "drive", name)
		require.True(t, r.ok)
		assert.Equal(t, 11, r.start)
		assert.Equal(t, 13, r.end)
	})

	t.Run("plain name", func(t *testing.T) {
		t.Parallel()
		name, r := parseSequence("drive")
		assert.Equal(t, "drive", name)
		assert.False(t, r.ok)
	})

	// Malformed range portions fall back to the whole specifier as the
	// name, matching the resolver's recovery path.
	for _, spec := range []string{
		"drive#11",
		"drive#11-12-13",
		"drive#a-13",
		"drive#11-b",
		"drive#one#two",
	} {
		spec := spec
		t.Run("malformed "+spec, func(t *testing.T) {
			t.Parallel()
			name, r := parseSequence(spec)
			assert.Equal(t, spec, name)
			assert.False(t, r.ok)
		})
	}
}

func TestFileID(t *testing.T) {
	t.Parallel()

	t.Run("valid filename", func(t *testing.T) {
		t.Parallel()
		id, err := fileID("/data/drive/id123_2024-09-27_10-31-32.4mse")
		require.NoError(t, err)
		assert.Equal(t, 123, id)
	})

	t.Run("no underscore", func(t *testing.T) {
		t.Parallel()
		_, err := fileID("id123.4mse")
		assert.Error(t, err)
	})

	t.Run("wrong prefix", func(t *testing.T) {
		t.Parallel()
		_, err := fileID("rec123_2024-09-27.4mse")
		assert.Error(t, err)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		t.Parallel()
		_, err := fileID("idxyz_2024-09-27.4mse")
		assert.Error(t, err)
	})
}

// idFiles builds sorted filenames embedding the given recording IDs.
func idFiles(ids ...int) []string {
	files := make([]string, 0, len(ids))
	for _, id := range ids {
		files = append(files, fmt.Sprintf("/data/drive/id%d_2024-09-27_10-31-32.4mse", id))
	}
	return files
}

func TestResolveRange(t *testing.T) {
	t.Parallel()

	files := idFiles(10, 11, 12, 13, 14)

	t.Run("no range resolves full list", func(t *testing.T) {
		t.Parallel()
		start, end, err := resolveRange(files, idRange{})
		require.NoError(t, err)
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})

	t.Run("inclusive id range", func(t *testing.T) {
		t.Parallel()
		start, end, err := resolveRange(files, idRange{start: 11, end: 13, ok: true})
		require.NoError(t, err)
		// exactly the files with IDs 11, 12, 13
		assert.Equal(t, 1, start)
		assert.Equal(t, 4, end)
	})

	t.Run("missing start falls back to list start", func(t *testing.T) {
		t.Parallel()
		start, end, err := resolveRange(files, idRange{start: 99, end: 12, ok: true})
		require.NoError(t, err)
		assert.Equal(t, 0, start)
		assert.Equal(t, 3, end)
	})

	t.Run("missing end falls back to list end", func(t *testing.T) {
		t.Parallel()
		start, end, err := resolveRange(files, idRange{start: 12, end: 99, ok: true})
		require.NoError(t, err)
		assert.Equal(t, 2, start)
		assert.Equal(t, 5, end)
	})

	t.Run("only first start match is taken", func(t *testing.T) {
		t.Parallel()
		dupes := idFiles(10, 11, 11, 12)
		start, end, err := resolveRange(dupes, idRange{start: 11, end: 12, ok: true})
		require.NoError(t, err)
		assert.Equal(t, 1, start)
		assert.Equal(t, 4, end)
	})

	t.Run("scan stops at first end match", func(t *testing.T) {
		t.Parallel()
		dupes := idFiles(10, 11, 12, 12, 13)
		start, end, err := resolveRange(dupes, idRange{start: 11, end: 12, ok: true})
		require.NoError(t, err)
		assert.Equal(t, 1, start)
		assert.Equal(t, 3, end)
	})

	t.Run("empty file list", func(t *testing.T) {
		t.Parallel()
		start, end, err := resolveRange(nil, idRange{start: 1, end: 2, ok: true})
		require.NoError(t, err)
		assert.Equal(t, 0, start)
		assert.Equal(t, 0, end)
	})

	t.Run("unparseable filename", func(t *testing.T) {
		t.Parallel()
		_, _, err := resolveRange([]string{"/data/drive/garbage.4mse"}, idRange{start: 1, end: 2, ok: true})
		assert.Error(t, err)
	})
}
