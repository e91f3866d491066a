// Package ppf reads PlayStation Patch Format files (PPF1.0, PPF2.0, PPF3.0)
// and applies or undoes them in place against a raw disc image.
package ppf

import "fmt"

// Patch file layout
const (
	MagicLength       = 4
	DescriptionOffset = 6
	DescriptionLength = 50

	// PPF1.0 records follow the description directly.
	V1RecordsOffset = 56

	// PPF2.0 and PPF3.0 share the offset of the validation block.
	ImageSizeOffset  = 56 // PPF2.0 uint32
	ImageTypeOffset  = 56 // PPF3.0 flags
	BlockCheckOffset = 57
	UndoFlagOffset   = 58
	BlockOffset      = 60
	BlockLength      = 1024

	// Records start after the validation block, or at BlockOffset for a
	// PPF3.0 patch without one.
	RecordsAfterBlock = BlockOffset + BlockLength // 1084

	// File id trailer: "@BEGIN_FILE_ID.DIZ" text "@END_FILE_ID.DIZ" length.
	FileIDMagic        = ".DIZ"
	FileIDBeginLength  = 18
	FileIDEndLength    = 16
	MaxFileIDLength    = 3072
	v2FileIDLengthSize = 4
	v3FileIDLengthSize = 2
)

// Image offsets of the 1024 byte validation block
const (
	ISOValidationOffset = 0x9320
	BINValidationOffset = 0x80A0
)

// Mode selects between applying a patch and restoring the original data.
type Mode int

const (
	Apply Mode = 1
	Undo  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Apply:
		return "apply"
	case Undo:
		return "undo"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// State is the lifecycle of a Patcher.
type State int

const (
	Unopened State = iota
	VersionDetected
	Patching
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case VersionDetected:
		return "version detected"
	case Patching:
		return "patching"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ImageType is the PPF3.0 target image flag.
type ImageType uint8

const (
	ImageISO ImageType = 0
	ImageBIN ImageType = 1
)

// ValidationOffset returns where the validation block sits in the image.
func (t ImageType) ValidationOffset() int64 {
	if t == ImageISO {
		return ISOValidationOffset
	}
	return BINValidationOffset
}

func (t ImageType) String() string {
	if t == ImageISO {
		return "ISO"
	}
	return "BIN"
}

// Header is everything known about a patch before its records are read.
type Header struct {
	Version     int
	Description string

	// PPF2.0
	ImageSize uint32

	// PPF3.0
	ImageType  ImageType
	BlockCheck bool
	HasUndo    bool

	// Validation block, present for PPF2.0 and for PPF3.0 with BlockCheck.
	Block []byte

	HasFileID    bool
	FileID       string
	FileIDLength int // as stored in the trailer, before the display cap

	PatchSize    int64
	RecordsStart int64
	RecordBytes  int64 // bytes of the record stream, file id excluded
}

// OffsetSize returns the width of a record offset in bytes.
func (h *Header) OffsetSize() int {
	if h.Version == 3 {
		return 8
	}
	return 4
}

// Record is a single patch record.
type Record struct {
	Offset int64
	Data   []byte
	Undo   []byte // PPF3.0 with undo data only
}

// Result summarises a patch run.
type Result struct {
	Version  int
	Mode     Mode
	Records  int
	Bytes    int64
	Warnings []string
}
