package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint8 reads a single byte
func ReadUint8(reader io.Reader) (uint8, error) {
	var value [1]byte
	if _, err := io.ReadFull(reader, value[:]); err != nil {
		return 0, err
	}
	return value[0], nil
}

// ReadUint16LE reads a uint16 in little-endian format
func ReadUint16LE(reader io.Reader) (uint16, error) {
	var value uint16
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadUint32LE reads a uint32 in little-endian format
func ReadUint32LE(reader io.Reader) (uint32, error) {
	var value uint32
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadUint64LE reads a uint64 in little-endian format
func ReadUint64LE(reader io.Reader) (uint64, error) {
	var value uint64
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// ReadBytes reads a specified number of bytes
func ReadBytes(reader io.Reader, count int) ([]byte, error) {
	buffer := make([]byte, count)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return nil, err
	}
	if n != count {
		return nil, fmt.Errorf("expected to read %d bytes, got %d", count, n)
	}
	return buffer, nil
}

// ReadBytesAt reads count bytes starting at offset. A short read at the end of
// the source returns what was available together with io.ErrUnexpectedEOF.
func ReadBytesAt(reader io.ReadSeeker, offset int64, count int) ([]byte, error) {
	if _, err := reader.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buffer := make([]byte, count)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return buffer[:n], err
	}
	return buffer, nil
}

// StreamSize returns the total length of a seekable stream and leaves the
// position at the start.
func StreamSize(s io.Seeker) (int64, error) {
	size, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
