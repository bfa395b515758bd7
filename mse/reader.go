package mse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// File is one opened .4mse recording file. All frame blocks are buffered
// in memory when the file is opened; individual frames are decoded on
// access.
type File struct {
	header Header
	blocks [][]byte
}

// Open reads and buffers a recording file from disk.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses an in-memory recording file.
func Decode(data []byte) (*File, error) {
	header, rest, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{
		header: header,
		blocks: make([][]byte, 0, header.TotalFrames),
	}

	c := cursor{data: rest}
	for c.off < len(rest) {
		blockLen, err := c.uint32()
		if err != nil {
			return nil, fmt.Errorf("frame %d length: %w", len(f.blocks), err)
		}
		block, err := c.bytes(int(blockLen))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(f.blocks), err)
		}
		f.blocks = append(f.blocks, block)
	}

	if len(f.blocks) != header.TotalFrames {
		return nil, fmt.Errorf("header declares %d frames, file contains %d",
			header.TotalFrames, len(f.blocks))
	}

	return f, nil
}

// ReadHeader parses only the header of an in-memory recording file,
// without buffering or validating its frame blocks.
func ReadHeader(data []byte) (Header, error) {
	header, _, err := decodeHeader(data)
	return header, err
}

func decodeHeader(data []byte) (Header, []byte, error) {
	c := cursor{data: data}

	m, err := c.bytes(len(magic))
	if err != nil || !bytes.Equal(m, magic[:]) {
		return Header{}, nil, fmt.Errorf("not a %s file: bad magic", FileExtension)
	}

	headerLen, err := c.uint32()
	if err != nil {
		return Header{}, nil, fmt.Errorf("header length: %w", err)
	}
	headerData, err := c.bytes(int(headerLen))
	if err != nil {
		return Header{}, nil, fmt.Errorf("header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerData, &header); err != nil {
		return Header{}, nil, fmt.Errorf("parse header: %w", err)
	}

	return header, data[c.off:], nil
}

// Header returns the file header.
func (f *File) Header() Header {
	return f.header
}

// NumFrames returns the number of frames in the file.
func (f *File) NumFrames() int {
	return len(f.blocks)
}

// Frame decodes the frame at the given local index.
func (f *File) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(f.blocks) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(f.blocks))
	}
	frame, err := decodeFrame(f.blocks[i])
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", i, err)
	}
	return frame, nil
}

// FrameTimestamp returns the capture timestamp of the frame at the given
// local index without decoding its sensor payloads.
func (f *File) FrameTimestamp(i int) (int64, error) {
	if i < 0 || i >= len(f.blocks) {
		return 0, fmt.Errorf("frame %d out of range [0,%d)", i, len(f.blocks))
	}
	return frameTimestamp(f.blocks[i])
}
