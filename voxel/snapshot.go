package voxel

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const snapshotVersion = 1

// Header is written as a JSON line in front of the gob payload so that tools
// can identify a snapshot without decoding the cells.
type Header struct {
	Version int   `json:"version"`
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Depth   int   `json:"depth"`
	Seed    int64 `json:"seed,omitempty"`
}

type snapshotV1 struct {
	Header Header
	Colors []uint32
}

// WriteSnapshot encodes m as a zstd-compressed stream.
func WriteSnapshot(w io.Writer, m *Map, seed int64) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	snap := snapshotV1{
		Header: Header{
			Version: snapshotVersion,
			Width:   m.width,
			Height:  m.height,
			Depth:   m.depth,
			Seed:    seed,
		},
		Colors: m.colors,
	}
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot decodes a stream written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Map, Header, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, Header{}, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, Header{}, fmt.Errorf("read header: %w", err)
	}
	var hdr Header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, Header{}, fmt.Errorf("parse header: %w", err)
	}
	if hdr.Version != snapshotVersion {
		return nil, hdr, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	var snap snapshotV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, hdr, fmt.Errorf("gob decode: %w", err)
	}
	h := snap.Header
	if len(snap.Colors) != h.Width*h.Height*h.Depth {
		return nil, hdr, fmt.Errorf("snapshot has %d cells, header says %dx%dx%d",
			len(snap.Colors), h.Width, h.Height, h.Depth)
	}

	m, err := NewMap(h.Width, h.Height, h.Depth)
	if err != nil {
		return nil, hdr, err
	}
	copy(m.colors, snap.Colors)
	return m, hdr, nil
}

// SaveFile writes a snapshot to path, creating parent directories.
func SaveFile(path string, m *Map, seed int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, m, seed); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot %q: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (*Map, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()

	m, hdr, err := ReadSnapshot(f)
	if err != nil {
		return nil, hdr, fmt.Errorf("read snapshot %q: %w", path, err)
	}
	return m, hdr, nil
}
