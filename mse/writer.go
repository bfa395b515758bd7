package mse

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Writer builds a .4mse recording file. Frames are encoded as they are
// appended; the header is finalised and the file emitted by WriteTo.
type Writer struct {
	header Header
	blocks [][]byte
}

// NewWriter creates a Writer for a recording belonging to the named
// sequence. Each recording gets a fresh UUID.
func NewWriter(sequenceName string) *Writer {
	return &Writer{
		header: Header{
			Version:      Version,
			RecordingID:  uuid.NewString(),
			SequenceName: sequenceName,
			CreatedNs:    time.Now().UnixNano(),
		},
	}
}

// Append adds a frame to the recording.
func (w *Writer) Append(f *Frame) error {
	block, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("append frame %d: %w", len(w.blocks), err)
	}

	if len(w.blocks) == 0 {
		w.header.StartNs = f.TimestampNs
	}
	w.header.EndNs = f.TimestampNs
	w.blocks = append(w.blocks, block)

	return nil
}

// NumFrames returns the number of frames appended so far.
func (w *Writer) NumFrames() int {
	return len(w.blocks)
}

// WriteTo writes the finalised recording to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	w.header.TotalFrames = len(w.blocks)

	headerData, err := json.Marshal(w.header)
	if err != nil {
		return 0, fmt.Errorf("marshal header: %w", err)
	}

	var written int64
	write := func(p []byte) error {
		n, err := out.Write(p)
		written += int64(n)
		return err
	}

	if err := write(magic[:]); err != nil {
		return written, fmt.Errorf("write magic: %w", err)
	}
	if err := write(binary.LittleEndian.AppendUint32(nil, uint32(len(headerData)))); err != nil {
		return written, fmt.Errorf("write header length: %w", err)
	}
	if err := write(headerData); err != nil {
		return written, fmt.Errorf("write header: %w", err)
	}

	for i, block := range w.blocks {
		if err := write(binary.LittleEndian.AppendUint32(nil, uint32(len(block)))); err != nil {
			return written, fmt.Errorf("write frame %d length: %w", i, err)
		}
		if err := write(block); err != nil {
			return written, fmt.Errorf("write frame %d: %w", i, err)
		}
	}

	return written, nil
}
