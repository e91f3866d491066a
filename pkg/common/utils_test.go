// Package common provides tests for utility functions
package common

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestReadUint16LE(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected uint16
		hasError bool
	}{
		{"normal value", []byte{0x34, 0x12}, 0x1234, false},
		{"zero value", []byte{0x00, 0x00}, 0x0000, false},
		{"max value", []byte{0xFF, 0xFF}, 0xFFFF, false},
		{"incomplete data", []byte{0x34}, 0, true},
		{"empty data", []byte{}, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader(tc.data)
			result, err := ReadUint16LE(reader)

			if tc.hasError {
				if err == nil {
					t.Errorf("ReadUint16LE() should fail with data %v", tc.data)
				}
			} else {
				if err != nil {
					t.Errorf("ReadUint16LE() failed: %v", err)
				}
				if result != tc.expected {
					t.Errorf("ReadUint16LE() = 0x%04X, want 0x%04X", result, tc.expected)
				}
			}
		})
	}
}

func TestReadUint32LE(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected uint32
		hasError bool
	}{
		{"normal value", []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678, false},
		{"zero value", []byte{0x00, 0x00, 0x00, 0x00}, 0x00000000, false},
		{"max value", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 0xFFFFFFFF, false},
		{"incomplete data", []byte{0x78, 0x56, 0x34}, 0, true},
		{"empty data", []byte{}, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader(tc.data)
			result, err := ReadUint32LE(reader)

			if tc.hasError {
				if err == nil {
					t.Errorf("ReadUint32LE() should fail with data %v", tc.data)
				}
			} else {
				if err != nil {
					t.Errorf("ReadUint32LE() failed: %v", err)
				}
				if result != tc.expected {
					t.Errorf("ReadUint32LE() = 0x%08X, want 0x%08X", result, tc.expected)
				}
			}
		})
	}
}

func TestReadBytes(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		count    int
		expected []byte
		hasError bool
	}{
		{"normal read", []byte{0x01, 0x02, 0x03, 0x04}, 3, []byte{0x01, 0x02, 0x03}, false},
		{"exact read", []byte{0x01, 0x02}, 2, []byte{0x01, 0x02}, false},
		{"zero read", []byte{0x01, 0x02}, 0, []byte{}, false},
		{"insufficient data", []byte{0x01, 0x02}, 3, nil, true},
		{"empty source", []byte{}, 1, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := bytes.NewReader(tc.data)
			result, err := ReadBytes(reader, tc.count)

			if tc.hasError {
				if err == nil {
					t.Errorf("ReadBytes() should fail when requesting %d bytes from %v", tc.count, tc.data)
				}
			} else {
				if err != nil {
					t.Errorf("ReadBytes() failed: %v", err)
				}
				if len(result) != len(tc.expected) {
					t.Errorf("ReadBytes() returned %d bytes, want %d", len(result), len(tc.expected))
				} else {
					for i, expected := range tc.expected {
						if result[i] != expected {
							t.Errorf("ReadBytes()[%d] = 0x%02X, want 0x%02X", i, result[i], expected)
						}
					}
				}
			}
		})
	}
}

// Test reading from binary data created with the same endianness
func TestReadFunctions_BinaryCompatibility(t *testing.T) {
	var buffer bytes.Buffer

	// Write test data using binary.Write
	test16 := uint16(0x1234)
	test32 := uint32(0x12345678)
	test64 := uint64(0x0123456789ABCDEF)

	binary.Write(&buffer, binary.LittleEndian, test16)
	binary.Write(&buffer, binary.LittleEndian, test32)
	binary.Write(&buffer, binary.LittleEndian, test64)

	reader := bytes.NewReader(buffer.Bytes())

	// Read back using our functions
	read16, err := ReadUint16LE(reader)
	if err != nil {
		t.Fatalf("ReadUint16LE() failed: %v", err)
	}

	if read16 != test16 {
		t.Errorf("ReadUint16LE() = 0x%04X, want 0x%04X", read16, test16)
	}

	read32, err := ReadUint32LE(reader)
	if err != nil {
		t.Fatalf("ReadUint32LE() failed: %v", err)
	}

	if read32 != test32 {
		t.Errorf("ReadUint32LE() = 0x%08X, want 0x%08X", read32, test32)
	}

	read64, err := ReadUint64LE(reader)
	if err != nil {
		t.Fatalf("ReadUint64LE() failed: %v", err)
	}

	if read64 != test64 {
		t.Errorf("ReadUint64LE() = 0x%016X, want 0x%016X", read64, test64)
	}
}

// Test single byte reads and the empty reader case
func TestReadUint8(t *testing.T) {
	value, err := ReadUint8(bytes.NewReader([]byte{0xAB, 0x01}))
	if err != nil {
		t.Fatalf("ReadUint8() failed: %v", err)
	}
	if value != 0xAB {
		t.Errorf("ReadUint8() = 0x%02X, want 0xAB", value)
	}

	if _, err := ReadUint8(bytes.NewReader(nil)); err == nil {
		t.Error("ReadUint8() should fail on an empty reader")
	}
}

func TestReadBytesAt(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}

	got, err := ReadBytesAt(bytes.NewReader(data), 2, 3)
	if err != nil {
		t.Fatalf("ReadBytesAt() failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0x02, 0x03, 0x04}) {
		t.Errorf("ReadBytesAt() = %v", got)
	}

	// A short read returns what was available
	got, err = ReadBytesAt(bytes.NewReader(data), 4, 8)
	if err != io.ErrUnexpectedEOF {
		t.Errorf("ReadBytesAt() past the end error = %v, want io.ErrUnexpectedEOF", err)
	}
	if !bytes.Equal(got, []byte{0x04, 0x05}) {
		t.Errorf("ReadBytesAt() short read = %v", got)
	}
}

func TestStreamSize(t *testing.T) {
	reader := bytes.NewReader(make([]byte, 2352))
	if _, err := reader.Seek(100, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	size, err := StreamSize(reader)
	if err != nil {
		t.Fatalf("StreamSize() failed: %v", err)
	}
	if size != 2352 {
		t.Errorf("StreamSize() = %d, want 2352", size)
	}
	// Verify that the position was rewound
	if pos, _ := reader.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("StreamSize() left position at %d, want 0", pos)
	}
}
