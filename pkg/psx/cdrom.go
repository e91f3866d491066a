// Package psx provides PlayStation-specific structures and functionality.
// This file contains CD-ROM sector layouts and the cue sheet track types.
package psx

import "strings"

// Sector size constants for PlayStation CD-ROM
const (
	CD_SECTOR_SIZE     = 2352 // Full CD sector size
	CD_DATA_SIZE       = 2048 // Data portion of Mode 1 sector
	CD_XA_DATA_SIZE    = 2336 // Data portion of Mode 2 Form 2 sector
	CD_SUBCODE_SECTOR  = 2448 // Full sector plus 96 bytes of subchannel (CD+G)
	CD_SYNC_SIZE       = 12   // Sync pattern size
	CD_HEADER_SIZE     = 4    // Header size (3 address bytes + 1 mode byte)
	CD_SUBHEADER_SIZE  = 8    // XA subheader size
	CD_USER_DATA_START = CD_SYNC_SIZE + CD_HEADER_SIZE + CD_SUBHEADER_SIZE
)

// TrackType is a cue sheet track mode such as MODE2/2352.
type TrackType string

// Track types accepted in cue sheets
const (
	TrackAudio     TrackType = "AUDIO"
	TrackMode1Raw  TrackType = "MODE1/2352"
	TrackMode2Raw  TrackType = "MODE2/2352"
	TrackMode1Data TrackType = "MODE1/2048"
	TrackMode2Form TrackType = "MODE2/2336"
	TrackCDIRaw    TrackType = "CDI/2352"
	TrackCDIForm   TrackType = "CDI/2336"
	TrackCDG       TrackType = "CDG"
)

var blockSizes = map[TrackType]int{
	TrackAudio:     CD_SECTOR_SIZE,
	TrackMode1Raw:  CD_SECTOR_SIZE,
	TrackMode2Raw:  CD_SECTOR_SIZE,
	TrackCDIRaw:    CD_SECTOR_SIZE,
	TrackCDG:       CD_SUBCODE_SECTOR,
	TrackMode1Data: CD_DATA_SIZE,
	TrackMode2Form: CD_XA_DATA_SIZE,
	TrackCDIForm:   CD_XA_DATA_SIZE,
}

// ParseTrackType normalises a cue sheet track type token.
func ParseTrackType(token string) TrackType {
	return TrackType(strings.ToUpper(strings.TrimSpace(token)))
}

// BlockSize returns the sector size in bytes for the track type.
func (t TrackType) BlockSize() (int, bool) {
	size, ok := blockSizes[t]
	return size, ok
}

// Known reports whether the track type is one of the eight cue sheet modes.
func (t TrackType) Known() bool {
	_, ok := blockSizes[t]
	return ok
}
