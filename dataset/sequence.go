package dataset

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
)

// filePrefix is the fixed prefix before the numeric recording ID in
// filenames, e.g. "id123_2024-09-27_10-31-32.4mse".
const filePrefix = "id"

// idRange is an inclusive recording-ID range parsed from a sequence
// specifier.
type idRange struct {
	start int
	end   int
	ok    bool
}

// parseSequence splits a sequence specifier into the sequence name and an
// optional "<start>-<end>" recording-ID range. A missing or malformed
// range portion means the whole sequence is processed, with the specifier
// kept verbatim as the name.
func parseSequence(spec string) (string, idRange) {
	parts := strings.Split(spec, "#")
	if len(parts) == 2 {
		bounds := strings.Split(parts[1], "-")
		if len(bounds) == 2 {
			start, err1 := strconv.Atoi(bounds[0])
			end, err2 := strconv.Atoi(bounds[1])
			if err1 == nil && err2 == nil {
				return parts[0], idRange{start: start, end: end, ok: true}
			}
		}
	}

	log.Printf("No maneuver specified. Processing all files at once. " +
		"To process a specific range, specify `sequence#id-id`.")
	return spec, idRange{}
}

// fileID extracts the numeric recording ID embedded in a filename by
// stripping the fixed prefix from the token before the first underscore.
func fileID(path string) (int, error) {
	name := filepath.Base(path)
	token, _, found := strings.Cut(name, "_")
	if !found {
		return 0, fmt.Errorf("no underscore-delimited ID token in %q", name)
	}
	if !strings.HasPrefix(token, filePrefix) {
		return 0, fmt.Errorf("filename %q does not start with %q", name, filePrefix)
	}
	id, err := strconv.Atoi(token[len(filePrefix):])
	if err != nil {
		return 0, fmt.Errorf("parse recording ID in %q: %w", name, err)
	}
	return id, nil
}

// resolveRange maps an inclusive recording-ID range onto a half-open slice
// [startFile, endFile) of the sorted file list. Only the first file
// matching the start ID is taken; scanning stops at the first file
// matching the end ID. Unmatched IDs widen the slice to the corresponding
// end of the list.
func resolveRange(files []string, r idRange) (int, int, error) {
	startFile, endFile := 0, len(files)
	if !r.ok {
		return startFile, endFile, nil
	}

	startFound, endFound := false, false
	for idx, path := range files {
		id, err := fileID(path)
		if err != nil {
			return 0, 0, err
		}
		if id == r.start && !startFound {
			startFile = idx
			startFound = true
		}
		if id == r.end {
			endFile = idx + 1
			endFound = true
			break
		}
	}

	if !startFound {
		log.Printf("Warning: no file with ID %d in sequence; starting from the first file", r.start)
	}
	if !endFound {
		log.Printf("Warning: no file with ID %d in sequence; processing to the last file", r.end)
	}

	return startFile, endFile, nil
}
