// Package common provides common utilities for CD-ROM operations.
// This file contains functions for MSF (Minutes:Seconds:Frames) timecode
// conversion shared by the cue, merge and CU2 code.
package common

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Redbook timing constants
const (
	FramesPerSecond  = 75
	SecondsPerMinute = 60
	FramesPerMinute  = FramesPerSecond * SecondsPerMinute // 4500

	// LeadInSectors is the two second lead-in every PSIO timecode is shifted by.
	LeadInSectors = 2 * FramesPerSecond

	// MaxSectors is the last addressable sector of a 100 minute disc.
	MaxSectors = 449999
)

var timecodePattern = regexp.MustCompile(`^(\d+):(\d+):(\d+)$`)

// SectorsToTimecode formats a sector count as a zero padded MM:SS:FF timecode.
func SectorsToTimecode(sectors int) string {
	minutes := sectors / FramesPerMinute
	seconds := (sectors % FramesPerMinute) / FramesPerSecond
	frames := sectors % FramesPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// TimecodeToSectors converts an MM:SS:FF timecode to a sector count.
func TimecodeToSectors(timecode string) (int, error) {
	m := timecodePattern.FindStringSubmatch(timecode)
	if m == nil {
		return 0, &FormatError{Reason: fmt.Sprintf("%s %q", ErrMalformedTimecode, timecode)}
	}
	var parts [3]int
	for i := range parts {
		value, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, &FormatError{Reason: fmt.Sprintf("%s %q", ErrMalformedTimecode, timecode), Err: err}
		}
		parts[i] = value
	}
	minutes, seconds, frames := parts[0], parts[1], parts[2]
	// the weighted sum must not wrap around
	if seconds > (math.MaxInt-frames)/FramesPerSecond ||
		minutes > (math.MaxInt-frames-seconds*FramesPerSecond)/FramesPerMinute {
		return 0, &FormatError{Reason: fmt.Sprintf("%s %q", ErrMalformedTimecode, timecode)}
	}
	return frames + seconds*FramesPerSecond + minutes*FramesPerMinute, nil
}

// AddSectors adds an offset to a timecode, clamping at MaxSectors.
func AddSectors(timecode string, offset int) (string, error) {
	sectors, err := TimecodeToSectors(timecode)
	if err != nil {
		return "", err
	}
	total := sectors + offset
	if total > MaxSectors {
		total = MaxSectors
	}
	return SectorsToTimecode(total), nil
}

// SectorsToAlternateTimecode formats sectors the way the PSIO firmware expects
// track positions: a frame of 00 is written as frame 75 of the previous second
// (MM:SS-1:75), borrowing from the minutes when the second is 00.
func SectorsToAlternateTimecode(sectors int) string {
	totalSeconds := sectors / FramesPerSecond
	frames := sectors % FramesPerSecond
	minutes := totalSeconds / SecondsPerMinute
	seconds := totalSeconds % SecondsPerMinute
	if frames == 0 {
		frames = FramesPerSecond
		if seconds != 0 {
			seconds--
		} else {
			seconds = 59
			minutes--
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// LBAToMSF converts a logical block address to the absolute MSF position,
// which includes the two second lead-in.
func LBAToMSF(lba uint32) string {
	return SectorsToTimecode(int(lba) + LeadInSectors)
}
