package psx

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeGameID(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"SLUS_005.94", "SLUS-00594"},
		{"SCES_012.37", "SCES-01237"},
		{"LSP_9001.23", "LSP-900123"},
		{"SLPS_012.3 ", "SLPS-0123"},
	}

	for _, tc := range testCases {
		if got := NormalizeGameID(tc.raw); got != tc.expected {
			t.Errorf("NormalizeGameID(%q) = %q, want %q", tc.raw, got, tc.expected)
		}
	}
}

func TestScanGameID(t *testing.T) {
	image := make([]byte, 40000)
	copy(image[30000:], []byte("BOOT = cdrom:\\SLUS_005.94;1"))

	id, found, err := ScanGameID(bytes.NewReader(image))
	if err != nil {
		t.Fatalf("ScanGameID() failed: %v", err)
	}
	if !found {
		t.Fatal("ScanGameID() did not find the product code")
	}
	if id != "SLUS-00594" {
		t.Errorf("ScanGameID() = %q, want SLUS-00594", id)
	}
}

func TestScanGameID_EarliestWins(t *testing.T) {
	image := make([]byte, 4096)
	copy(image[100:], []byte("SLUS_005.94"))
	copy(image[50:], []byte("SCES_012.37"))

	id, found, err := ScanGameID(bytes.NewReader(image))
	if err != nil || !found {
		t.Fatalf("ScanGameID() = %q, %v, %v", id, found, err)
	}
	if id != "SCES-01237" {
		t.Errorf("ScanGameID() = %q, want the earliest code SCES-01237", id)
	}
}

func TestScanGameID_AcrossChunkBoundary(t *testing.T) {
	for _, split := range []int{1, 4, 5, 6, 10} {
		image := make([]byte, scanChunkSize+4096)
		copy(image[scanChunkSize-split:], []byte("SLES_123.45"))

		id, found, err := ScanGameID(bytes.NewReader(image))
		if err != nil {
			t.Fatalf("split %d: ScanGameID() failed: %v", split, err)
		}
		if !found || id != "SLES-12345" {
			t.Errorf("split %d: ScanGameID() = %q, %v", split, id, found)
		}
	}
}

func TestScanGameID_OneByteReads(t *testing.T) {
	data := append(make([]byte, 64), []byte("SCUS_944.26")...)

	id, found, err := ScanGameID(&oneByteReader{data: data})
	if err != nil || !found || id != "SCUS-94426" {
		t.Errorf("ScanGameID() = %q, %v, %v", id, found, err)
	}
}

func TestScanGameID_NotFound(t *testing.T) {
	image := make([]byte, 10000)
	// A prefix cut off by the end of the image is not a product code.
	copy(image[len(image)-6:], []byte("SLUS_0"))

	id, found, err := ScanGameID(bytes.NewReader(image))
	if err != nil {
		t.Fatalf("ScanGameID() failed: %v", err)
	}
	if found || id != "" {
		t.Errorf("ScanGameID() = %q, %v, want no match", id, found)
	}
}

func TestScanGameIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.bin")
	data := append(make([]byte, 2352), []byte("SLPM_861.23")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	id, found, err := ScanGameIDFile(path)
	if err != nil || !found || id != "SLPM-86123" {
		t.Errorf("ScanGameIDFile() = %q, %v, %v", id, found, err)
	}

	if _, _, err := ScanGameIDFile(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("ScanGameIDFile() should fail for a missing file")
	}
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
