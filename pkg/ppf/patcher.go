package ppf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hansbonini/psiotools/pkg/common"
)

// Patcher applies one patch to one image. Writes go straight to the image:
// a run that fails part way leaves the records already written in place.
type Patcher struct {
	image  io.ReadWriteSeeker
	patch  io.ReadSeeker
	state  State
	header *Header
}

// NewPatcher creates a patcher for the given image and patch streams. The
// caller keeps ownership of both.
func NewPatcher(image io.ReadWriteSeeker, patch io.ReadSeeker) *Patcher {
	return &Patcher{image: image, patch: patch}
}

// State returns the current lifecycle state.
func (p *Patcher) State() State {
	return p.state
}

// Header returns the patch header once the version has been detected.
func (p *Patcher) Header() *Header {
	return p.header
}

// Detect reads the patch header. It is called by Run when needed.
func (p *Patcher) Detect() (*Header, error) {
	if p.header != nil {
		return p.header, nil
	}
	if p.state != Unopened {
		return nil, fmt.Errorf("patcher is %s", p.state)
	}

	h, err := ReadHeader(p.patch)
	if err != nil {
		p.state = Aborted
		common.LogError("%v", err)
		return nil, err
	}
	p.header = h
	p.state = VersionDetected
	common.LogInfo(common.InfoDetectedPPF, h.Version)
	return h, nil
}

// Run validates the image against the patch and writes every record. In Undo
// mode the original bytes stored in a PPF3.0 patch are written back instead.
func (p *Patcher) Run(mode Mode) (*Result, error) {
	h, err := p.Detect()
	if err != nil {
		return nil, err
	}
	if p.state != VersionDetected {
		return nil, fmt.Errorf("patcher is %s", p.state)
	}

	if mode != Apply && mode != Undo {
		p.state = Aborted
		return nil, fmt.Errorf("unknown patch mode %d", int(mode))
	}
	if mode == Undo && !h.HasUndo {
		p.state = Aborted
		return nil, &common.PreconditionError{Reason: fmt.Sprintf("%s in PPF%d.0 patch", common.ErrNoUndoData, h.Version)}
	}

	result := &Result{Version: h.Version, Mode: mode}
	if err := p.validate(result); err != nil {
		p.state = Aborted
		return nil, err
	}

	p.state = Patching
	if err := p.writeRecords(mode, result); err != nil {
		p.state = Aborted
		common.LogError("%v", err)
		return result, err
	}

	p.state = Completed
	return result, nil
}

// validate compares the expected image size and validation block. Mismatches
// only produce warnings.
func (p *Patcher) validate(result *Result) error {
	h := p.header

	if h.Version == 2 {
		size, err := common.StreamSize(p.image)
		if err != nil {
			return common.WrapError(common.ErrFailedToOpenImage, err)
		}
		if int64(h.ImageSize) != size {
			result.warn(common.WarnImageSizeMismatch, h.ImageSize, size)
		}
	}

	if h.Block == nil {
		return nil
	}
	block, err := common.ReadBytesAt(p.image, h.ImageType.ValidationOffset(), BlockLength)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return common.WrapError(common.ErrFailedToOpenImage, err)
	}
	if !bytes.Equal(block, h.Block) {
		result.warn(common.WarnBlockCheckFailed)
	}
	return nil
}

func (p *Patcher) writeRecords(mode Mode, result *Result) error {
	h := p.header
	common.LogDebug(common.DebugPatchStreamBytes, h.RecordBytes, h.RecordsStart)

	if _, err := p.patch.Seek(h.RecordsStart, io.SeekStart); err != nil {
		return common.WrapError(common.ErrFailedToOpenPatch, err)
	}

	remaining := h.RecordBytes
	for remaining > 0 {
		record, consumed, err := readRecord(p.patch, h)
		if err != nil {
			return &common.FormatError{
				Reason: fmt.Sprintf("%s %d", common.ErrTruncatedRecord, result.Records+1),
				Err:    err,
			}
		}

		data := record.Data
		if mode == Undo {
			data = record.Undo
		}
		common.LogDebug(common.DebugPatchRecord, record.Offset, len(data))

		if _, err := p.image.Seek(record.Offset, io.SeekStart); err != nil {
			return common.WrapError(common.ErrFailedToWritePatch, err)
		}
		if _, err := p.image.Write(data); err != nil {
			return common.WrapError(common.ErrFailedToWritePatch, err)
		}

		result.Records++
		result.Bytes += int64(len(data))
		remaining -= consumed
	}
	return nil
}

// readRecord reads the record at the current patch position and returns the
// number of patch bytes it occupied.
func readRecord(patch io.Reader, h *Header) (*Record, int64, error) {
	record := &Record{}

	if h.Version == 3 {
		offset, err := common.ReadUint64LE(patch)
		if err != nil {
			return nil, 0, err
		}
		if record.Offset, err = common.SafeUint64ToInt64(offset); err != nil {
			return nil, 0, err
		}
	} else {
		offset, err := common.ReadUint32LE(patch)
		if err != nil {
			return nil, 0, err
		}
		record.Offset = int64(offset)
	}

	length, err := common.ReadUint8(patch)
	if err != nil {
		return nil, 0, err
	}
	if record.Data, err = common.ReadBytes(patch, int(length)); err != nil {
		return nil, 0, err
	}
	consumed := int64(h.OffsetSize()) + 1 + int64(length)

	if h.HasUndo {
		if record.Undo, err = common.ReadBytes(patch, int(length)); err != nil {
			return nil, 0, err
		}
		consumed += int64(length)
	}
	return record, consumed, nil
}

func (r *Result) warn(message string, args ...interface{}) {
	common.LogWarn(message, args...)
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	r.Warnings = append(r.Warnings, message)
}

// ApplyFile opens the image read-write and the patch read-only, runs the patch
// in the given mode and closes both files.
func ApplyFile(imagePath, patchPath string, mode Mode) (*Result, error) {
	image, err := os.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenImage, err)
	}
	defer image.Close()

	patch, err := os.Open(patchPath)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenPatch, err)
	}
	defer patch.Close()

	p := NewPatcher(image, patch)
	h, err := p.Detect()
	if err != nil {
		var formatErr *common.FormatError
		if errors.As(err, &formatErr) && formatErr.Source == "" {
			formatErr.Source = patchPath
		}
		return nil, err
	}
	common.LogInfo(common.InfoPatchDescription, h.Description)
	if h.HasFileID {
		common.LogInfo(common.InfoPatchFileID, h.FileID)
	}

	result, err := p.Run(mode)
	if err != nil {
		return result, err
	}
	if err := image.Sync(); err != nil {
		return result, common.WrapError(common.ErrFailedToWritePatch, err)
	}

	name := filepath.Base(patchPath)
	if mode == Undo {
		common.LogInfo(common.InfoPatchUndone, name, result.Records, result.Bytes)
	} else {
		common.LogInfo(common.InfoPatchApplied, name, result.Records, result.Bytes)
	}
	return result, nil
}
