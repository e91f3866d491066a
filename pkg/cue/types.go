// Package cue parses cue sheets describing PlayStation disc images and writes
// the single-file cue sheets produced when track files are merged.
package cue

import "github.com/hansbonini/psiotools/pkg/psx"

// Index is a position marker inside a track. ID 0 marks the pregap start and
// ID 1 the track start.
type Index struct {
	ID       int
	Timecode string // MM:SS:FF as written in the cue sheet
	Sectors  int    // offset from the start of the owning file
}

// Track is a TRACK entry with its indexes.
type Track struct {
	Number  int
	Type    psx.TrackType
	Indexes []Index

	// Length is the track size in sectors. It is only computed for sheets that
	// reference a single file.
	Length    int
	HasLength bool
}

// StartIndex returns INDEX 01, falling back to the first index of the track.
func (t *Track) StartIndex() (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.ID == 1 {
			return idx, true
		}
	}
	if len(t.Indexes) > 0 {
		return t.Indexes[0], true
	}
	return Index{}, false
}

// File is a FILE entry resolved against the filesystem.
type File struct {
	Name   string // name as written in the cue sheet
	Path   string // resolved path on disk
	Size   int64
	Tracks []*Track
}

// Sheet is the result of a parse session: the files of one disc image set and
// the sector size locked by the first track seen.
type Sheet struct {
	Path      string
	Files     []*File
	BlockSize int
}

// MultiBin reports whether the sheet references more than one bin file.
func (s *Sheet) MultiBin() bool {
	return len(s.Files) > 1
}

// TrackCount returns the number of tracks across all files.
func (s *Sheet) TrackCount() int {
	count := 0
	for _, f := range s.Files {
		count += len(f.Tracks)
	}
	return count
}

// TotalSize returns the summed byte size of all files.
func (s *Sheet) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}
