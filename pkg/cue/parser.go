package cue

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/psx"
)

var (
	fileLine  = regexp.MustCompile(`FILE "?(.*?)"? BINARY`)
	trackLine = regexp.MustCompile(`TRACK (\d+) ([^\s]*)`)
	indexLine = regexp.MustCompile(`INDEX (\d+) (\d+:\d+:\d+)`)
)

// Parser reads cue sheets. The zero value uses DefaultNameTransforms.
type Parser struct {
	Transforms []NameTransform
}

// NewParser creates a parser with the default file name fallbacks.
func NewParser() *Parser {
	return &Parser{Transforms: DefaultNameTransforms}
}

// Parse reads the cue sheet at path with the default parser.
func Parse(path string) (*Sheet, error) {
	return NewParser().Parse(path)
}

// Parse reads the cue sheet at path and resolves every referenced bin file
// relative to the sheet's directory. If any file cannot be resolved the whole
// parse fails with *common.MissingSourceError and no sheet is returned.
func (p *Parser) Parse(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenCue, err)
	}
	defer file.Close()

	return p.ParseReader(file, path)
}

// ParseReader parses cue sheet text read from r. cuePath names the sheet and
// its directory is the base for bin file resolution.
func (p *Parser) ParseReader(r io.Reader, cuePath string) (*Sheet, error) {
	transforms := p.Transforms
	if len(transforms) == 0 {
		transforms = DefaultNameTransforms
	}

	session := &parseSession{
		sheet:      &Sheet{Path: cuePath},
		baseDir:    filepath.Dir(cuePath),
		transforms: transforms,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := session.line(scanner.Text()); err != nil {
			common.LogError("%v", err)
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, common.WrapError(common.ErrFailedToReadCue, err)
	}

	if len(session.sheet.Files) == 1 {
		if err := session.computeLengths(); err != nil {
			return nil, err
		}
	}

	sheet := session.sheet
	common.LogDebug(common.InfoParsedCue, cuePath, len(sheet.Files), sheet.TrackCount(), sheet.BlockSize)
	return sheet, nil
}

// parseSession carries the state of one parse call, including the blocksize
// lock, so unrelated parses never share it.
type parseSession struct {
	sheet      *Sheet
	baseDir    string
	transforms []NameTransform
	file       *File
	track      *Track
}

func (s *parseSession) line(text string) error {
	if m := fileLine.FindStringSubmatch(text); m != nil {
		return s.addFile(m[1])
	}

	if m := trackLine.FindStringSubmatch(text); m != nil && s.file != nil {
		number, err := strconv.Atoi(m[1])
		if err != nil {
			return &common.FormatError{Source: s.sheet.Path, Reason: fmt.Sprintf("bad track number %q", m[1])}
		}
		s.addTrack(number, psx.ParseTrackType(m[2]))
		return nil
	}

	if m := indexLine.FindStringSubmatch(text); m != nil && s.track != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return &common.FormatError{Source: s.sheet.Path, Reason: fmt.Sprintf("bad index number %q", m[1])}
		}
		sectors, err := common.TimecodeToSectors(m[2])
		if err != nil {
			return &common.FormatError{Source: s.sheet.Path, Reason: "bad index position", Err: err}
		}
		s.track.Indexes = append(s.track.Indexes, Index{ID: id, Timecode: m[2], Sectors: sectors})
		common.LogDebug(common.DebugIndexParsed, id, sectors, m[2])
	}
	return nil
}

func (s *parseSession) addFile(name string) error {
	path, info, tried := resolveFile(s.baseDir, name, s.transforms)
	if path == "" {
		return &common.MissingSourceError{CuePath: s.sheet.Path, Name: name, Tried: tried}
	}
	common.LogDebug(common.DebugResolvedFile, name, path)

	s.file = &File{Name: name, Path: path, Size: info.Size()}
	s.track = nil
	s.sheet.Files = append(s.sheet.Files, s.file)
	return nil
}

func (s *parseSession) addTrack(number int, trackType psx.TrackType) {
	s.track = &Track{Number: number, Type: trackType}
	s.file.Tracks = append(s.file.Tracks, s.track)
	common.LogDebug(common.DebugTrackParsed, number, trackType)

	if s.sheet.BlockSize != 0 {
		return
	}
	if size, ok := trackType.BlockSize(); ok {
		s.sheet.BlockSize = size
		common.LogDebug(common.DebugBlockSizeLocked, size, trackType)
	} else {
		common.LogWarn(common.WarnUnknownTrackType, string(trackType), number)
	}
}

// computeLengths derives per-track sector counts for a single-file sheet by
// walking the tracks backwards from the end of the file.
func (s *parseSession) computeLengths() error {
	if s.sheet.BlockSize == 0 {
		return &common.FormatError{Source: s.sheet.Path, Reason: common.ErrUnknownBlockSize}
	}

	f := s.sheet.Files[0]
	next := int(f.Size / int64(s.sheet.BlockSize))
	for i := len(f.Tracks) - 1; i >= 0; i-- {
		track := f.Tracks[i]
		start, ok := track.StartIndex()
		if !ok {
			return &common.FormatError{Source: s.sheet.Path, Reason: fmt.Sprintf("track %d has no INDEX", track.Number)}
		}
		track.Length = next - start.Sectors
		track.HasLength = true
		next = start.Sectors
	}
	return nil
}
