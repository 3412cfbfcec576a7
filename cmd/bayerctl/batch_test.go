package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/bayerfix/internal/frame"
)

func writeFixtureFrame(t *testing.T, dir, name string, geo frame.Geometry) string {
	t.Helper()
	buf := make([]byte, geo.FrameSize())
	for i := 0; i < geo.HeaderLength; i++ {
		buf[i] = byte(i + 1)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func smallGeometry() frame.Geometry {
	return frame.Geometry{
		Width:        16,
		Height:       6,
		HeaderLength: 11,
		FooterLength: 12,
		PatchSize:    4,
		IntegScaleMs: frame.DefaultIntegScaleMs,
	}
}

func TestCollectFrames(t *testing.T) {
	dir := t.TempDir()
	geo := smallGeometry()
	writeFixtureFrame(t, dir, "runA_0002.bin", geo)
	writeFixtureFrame(t, dir, "runA_0001.bin", geo)
	writeFixtureFrame(t, dir, "runB_0001.bin", geo)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	all, err := collectFrames(dir, "")
	if err != nil {
		t.Fatalf("collectFrames() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	series, err := collectFrames(dir, "runA")
	if err != nil {
		t.Fatalf("collectFrames(runA) error = %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}
	// Lexical order keeps series members in capture order.
	if filepath.Base(series[0]) != "runA_0001.bin" {
		t.Fatalf("series[0] = %s, want runA_0001.bin", series[0])
	}
}

func TestDecodeFrameMetadataOnly(t *testing.T) {
	dir := t.TempDir()
	geo := smallGeometry()
	path := writeFixtureFrame(t, dir, "capture_0005.bin", geo)
	f, err := frame.Load(path, geo)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	outDir := t.TempDir()
	metaPath := filepath.Join(outDir, "metadata.txt")

	outputs, err := decodeFrame(f, path, outDir, "none", 3, metaPath)
	if err != nil {
		t.Fatalf("decodeFrame() error = %v", err)
	}
	if len(outputs) != 1 || outputs[0] != metaPath {
		t.Fatalf("outputs = %v, want only the metadata record", outputs)
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if !strings.Contains(string(data), "File: 0005") {
		t.Fatalf("metadata record missing file id:\n%s", data)
	}

	// A second frame appends rather than overwrites.
	if _, err := decodeFrame(f, filepath.Join(dir, "capture_0006.bin"), outDir, "none", 3, metaPath); err != nil {
		t.Fatalf("decodeFrame() second call error = %v", err)
	}
	data, err = os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if !strings.Contains(string(data), "File: 0006") || !strings.Contains(string(data), "File: 0005") {
		t.Fatalf("metadata record not appended:\n%s", data)
	}
}

func TestDecodeFrameGrayscale(t *testing.T) {
	dir := t.TempDir()
	geo := smallGeometry()
	path := writeFixtureFrame(t, dir, "capture_0009.bin", geo)
	f, err := frame.Load(path, geo)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	outDir := t.TempDir()

	outputs, err := decodeFrame(f, path, outDir, "normal", 3, "")
	if err != nil {
		t.Fatalf("decodeFrame() error = %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("outputs = %v, want png and metadata", outputs)
	}
	if filepath.Base(outputs[0]) != "capture_0009.png" {
		t.Fatalf("outputs[0] = %s, want capture_0009.png", outputs[0])
	}
	if _, err := os.Stat(outputs[0]); err != nil {
		t.Fatalf("stat png: %v", err)
	}
}

func TestDecodeFrameUnknownMode(t *testing.T) {
	geo := smallGeometry()
	f := frame.New(make([]byte, geo.FrameSize()), geo)
	if _, err := decodeFrame(f, "x.bin", t.TempDir(), "sepia", 3, ""); err == nil {
		t.Fatalf("decodeFrame() error = nil, want error for unknown mode")
	}
}
