// Package cu2 generates the .cu2 sheets read by the PSIO firmware in place of
// a cue sheet.
package cu2

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/psx"
)

const lineEnding = "\r\n"

var (
	mode2Line  = regexp.MustCompile(`(?i)MODE2/2352`)
	trackStart = regexp.MustCompile(`(?i)^[ \t]*TRACK`)
	indexLine  = regexp.MustCompile(`(?i)^\s*INDEX\s+(\d+)\s+(\d+:\d+:\d+)`)
	pregapLine = regexp.MustCompile(`(?i)^\s*PREGAP\b`)
)

// Entry holds the raw positions, in sectors, of one track after the first.
type Entry struct {
	Track  int
	Pregap int
	Start  int
}

// Sheet is the content of a CU2 file before the firmware timecode shift.
type Sheet struct {
	Tracks   int
	Sectors  int
	Entries  []Entry
	Warnings []string
}

// Build derives a CU2 sheet from the lines of a single-file cue sheet and the
// byte size of its image. source names the cue sheet in errors.
func Build(lines []string, imageSize int64, source string) (*Sheet, error) {
	if !hasMode2(lines) {
		return nil, &common.PreconditionError{Source: source, Reason: common.ErrNotMode2}
	}
	if imageSize%psx.CD_SECTOR_SIZE != 0 {
		return nil, &common.PreconditionError{
			Source: source,
			Reason: fmt.Sprintf("%s (%d bytes)", common.ErrSizeNotSectorAligned, imageSize),
		}
	}

	sheet := &Sheet{
		Tracks:  countTracks(lines),
		Sectors: int(imageSize / psx.CD_SECTOR_SIZE),
	}

	pregapWarned := false
	for track := 2; track <= sheet.Tracks; track++ {
		at := findTrack(lines, track)
		if at < 0 {
			return nil, &common.PreconditionError{Source: source, Reason: fmt.Sprintf("%s: track %d", common.ErrTrackNotFound, track)}
		}

		entry := Entry{Track: track}
		next := lineAt(lines, at+1)
		if id, sectors, ok := parseIndex(next); ok && id == 0 {
			entry.Pregap = sectors
		} else if pregapLine.MatchString(next) {
			// The pregap would need generated silence; note it as zero length.
			var warning string
			if !pregapWarned {
				warning = fmt.Sprintf(common.WarnPregapCommand, track)
				pregapWarned = true
			} else {
				warning = fmt.Sprintf(common.WarnPregapCommandAgain, track)
			}
			common.LogWarn("%s", warning)
			sheet.Warnings = append(sheet.Warnings, warning)

			if id, sectors, ok := parseIndex(lineAt(lines, at+2)); ok && id == 1 {
				entry.Pregap = sectors
			}
		} else {
			return nil, &common.PreconditionError{Source: source, Reason: fmt.Sprintf("%s for track %d", common.ErrNoPregapPosition, track)}
		}

		start, ok := findStart(lines, at)
		if !ok {
			return nil, &common.PreconditionError{Source: source, Reason: fmt.Sprintf("%s for track %d", common.ErrNoStartPosition, track)}
		}
		entry.Start = start

		sheet.Entries = append(sheet.Entries, entry)
	}

	return sheet, nil
}

// WriteTo writes the sheet in CU2 revision 2 layout. Positions are shifted by
// the two second lead-in and written in the firmware's alternate notation;
// size and data1 keep the plain notation.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	line := func(format string, args ...interface{}) {
		text := fmt.Sprintf(format, args...)
		common.LogDebug(common.DebugCu2Line, text)
		buf.WriteString(text)
		buf.WriteString(lineEnding)
	}

	line("ntracks %d", s.Tracks)
	line("size\t   %s", common.SectorsToTimecode(s.Sectors))
	line("data1\t   %s", common.SectorsToTimecode(common.LeadInSectors))
	for _, e := range s.Entries {
		line("pregap%02d\t%s", e.Track, psioTimecode(e.Pregap))
		line("track%02d\t%s", e.Track, psioTimecode(e.Start))
	}
	buf.WriteString(lineEnding)
	buf.WriteString("trk end\t " + psioTimecode(s.Sectors))

	return buf.WriteTo(w)
}

// psioTimecode shifts sectors by the lead-in and formats the result in
// alternate notation.
func psioTimecode(sectors int) string {
	shifted := sectors + common.LeadInSectors
	if shifted > common.MaxSectors {
		shifted = common.MaxSectors
	}
	return common.SectorsToAlternateTimecode(shifted)
}

func hasMode2(lines []string) bool {
	for _, l := range lines {
		if mode2Line.MatchString(l) {
			return true
		}
	}
	return false
}

func countTracks(lines []string) int {
	count := 0
	for _, l := range lines {
		if trackStart.MatchString(l) {
			count++
		}
	}
	return count
}

func findTrack(lines []string, number int) int {
	pattern := regexp.MustCompile(fmt.Sprintf(`(?i)^\s*TRACK\s+0*%d\b`, number))
	for i, l := range lines {
		if pattern.MatchString(l) {
			return i
		}
	}
	return -1
}

// findStart looks for INDEX 01 on the line after the TRACK line, then on the
// line after that.
func findStart(lines []string, at int) (int, bool) {
	for _, i := range []int{at + 1, at + 2} {
		if id, sectors, ok := parseIndex(lineAt(lines, i)); ok && id == 1 {
			return sectors, true
		}
	}
	return 0, false
}

func parseIndex(text string) (int, int, bool) {
	m := indexLine.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	sectors, err := common.TimecodeToSectors(m[2])
	if err != nil {
		return 0, 0, false
	}
	return id, sectors, true
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

// Generator writes CU2 sheets next to their cue sheets.
type Generator struct {
	// KeepCue leaves the source cue sheet in place after a successful run.
	KeepCue bool
}

// Result describes a generated CU2 sheet.
type Result struct {
	Path  string
	Sheet *Sheet
}

// Generate writes <binName without extension>.cu2 in the directory of cuePath
// and deletes the cue sheet. See (*Generator).Generate.
func Generate(cuePath, binName string) (string, error) {
	result, err := (&Generator{}).Generate(cuePath, binName)
	if err != nil {
		return "", err
	}
	return result.Path, nil
}

// Generate builds the CU2 sheet for cuePath, whose image binName lives in the
// same directory, and writes it. On failure no .cu2 file is left behind and
// the cue sheet is untouched. On success the cue sheet is removed unless
// KeepCue is set.
func (g *Generator) Generate(cuePath, binName string) (*Result, error) {
	lines, err := readLines(cuePath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(cuePath)
	binPath := filepath.Join(dir, binName)
	info, err := os.Stat(binPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &common.MissingSourceError{CuePath: cuePath, Name: binName, Tried: []string{binPath}}
		}
		return nil, common.WrapError(common.ErrFailedToStatFile, err)
	}

	sheet, err := Build(lines, info.Size(), cuePath)
	if err != nil {
		common.LogError("%v", err)
		return nil, err
	}

	var content bytes.Buffer
	if _, err := sheet.WriteTo(&content); err != nil {
		return nil, common.WrapError(common.ErrFailedToWriteCu2, err)
	}

	cu2Path := filepath.Join(dir, strings.TrimSuffix(binName, filepath.Ext(binName))+".cu2")
	if err := writeFile(cu2Path, content.Bytes()); err != nil {
		return nil, err
	}
	common.LogInfo(common.InfoCu2Generated, cu2Path)

	if !g.KeepCue {
		if err := os.Remove(cuePath); err != nil {
			common.LogWarn(common.WarnCueNotRemoved, cuePath, err)
		}
	}

	return &Result{Path: cu2Path, Sheet: sheet}, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenCue, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, common.WrapError(common.ErrFailedToReadCue, err)
	}
	return lines, nil
}

func writeFile(path string, data []byte) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return common.WrapError(common.ErrFailedToWriteCu2, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = common.WrapError(common.ErrFailedToWriteCu2, closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err := out.Write(data); err != nil {
		return common.WrapError(common.ErrFailedToWriteCu2, err)
	}
	return nil
}
