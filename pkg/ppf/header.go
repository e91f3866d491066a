package ppf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hansbonini/psiotools/pkg/common"
)

var magics = map[string]int{
	"PPF1": 1,
	"PPF2": 2,
	"PPF3": 3,
}

// DetectVersion reads the magic at the start of patch and returns 1, 2 or 3.
// Anything else is a *common.FormatError.
func DetectVersion(patch io.ReadSeeker) (int, error) {
	magic, err := common.ReadBytesAt(patch, 0, MagicLength)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, common.WrapError(common.ErrFailedToOpenPatch, err)
	}
	version, ok := magics[string(magic)]
	if !ok {
		return 0, &common.FormatError{Reason: fmt.Sprintf("%s (magic %q)", common.ErrNotPPF, magic)}
	}
	return version, nil
}

// ReadHeader detects the version of patch and reads its header fields, the
// validation block and the file id trailer. It also works out where the record
// stream starts and how many bytes it spans.
func ReadHeader(patch io.ReadSeeker) (*Header, error) {
	version, err := DetectVersion(patch)
	if err != nil {
		return nil, err
	}

	size, err := common.StreamSize(patch)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenPatch, err)
	}

	h := &Header{Version: version, PatchSize: size}

	desc, err := common.ReadBytesAt(patch, DescriptionOffset, DescriptionLength)
	if err != nil {
		return nil, truncated("description", err)
	}
	h.Description = asciiText(desc)

	switch version {
	case 1:
		h.RecordsStart = V1RecordsOffset
		h.RecordBytes = size - V1RecordsOffset

	case 2:
		if _, err := patch.Seek(ImageSizeOffset, io.SeekStart); err != nil {
			return nil, err
		}
		if h.ImageSize, err = common.ReadUint32LE(patch); err != nil {
			return nil, truncated("image size", err)
		}
		if h.Block, err = common.ReadBytesAt(patch, BlockOffset, BlockLength); err != nil {
			return nil, truncated("validation block", err)
		}
		if err := readFileID(patch, h, v2FileIDLengthSize); err != nil {
			return nil, err
		}
		h.RecordsStart = RecordsAfterBlock
		h.RecordBytes = size - RecordsAfterBlock
		if h.HasFileID {
			h.RecordBytes -= int64(h.FileIDLength) + FileIDBeginLength + FileIDEndLength + v2FileIDLengthSize
		}

	case 3:
		flags, err := common.ReadBytesAt(patch, ImageTypeOffset, 3)
		if err != nil {
			return nil, truncated("flags", err)
		}
		h.ImageType = ImageType(flags[0])
		h.BlockCheck = flags[BlockCheckOffset-ImageTypeOffset] != 0
		h.HasUndo = flags[UndoFlagOffset-ImageTypeOffset] != 0

		h.RecordsStart = BlockOffset
		if h.BlockCheck {
			if h.Block, err = common.ReadBytesAt(patch, BlockOffset, BlockLength); err != nil {
				return nil, truncated("validation block", err)
			}
			h.RecordsStart = RecordsAfterBlock
		}
		if err := readFileID(patch, h, v3FileIDLengthSize); err != nil {
			return nil, err
		}
		h.RecordBytes = size - h.RecordsStart
		if h.HasFileID {
			h.RecordBytes -= int64(h.FileIDLength) + FileIDBeginLength + FileIDEndLength + v3FileIDLengthSize
		}
	}

	return h, nil
}

// ReadInfo reads the header of the patch file at path.
func ReadInfo(path string) (*Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToOpenPatch, err)
	}
	defer file.Close()

	h, err := ReadHeader(file)
	if err != nil {
		var formatErr *common.FormatError
		if errors.As(err, &formatErr) && formatErr.Source == "" {
			formatErr.Source = path
		}
		return nil, err
	}
	return h, nil
}

// readFileID looks for the file_id.diz trailer at the end of the patch. The
// trailer ends with ".DIZ" followed by the text length in lenSize bytes. A
// missing trailer is not an error.
func readFileID(patch io.ReadSeeker, h *Header, lenSize int) error {
	if h.PatchSize < int64(lenSize+len(FileIDMagic)) {
		return nil
	}

	magic, err := common.ReadBytesAt(patch, h.PatchSize-int64(lenSize+len(FileIDMagic)), len(FileIDMagic))
	if err != nil {
		return truncated("file id", err)
	}
	if string(magic) != FileIDMagic {
		return nil
	}

	var length int
	if lenSize == v2FileIDLengthSize {
		value, err := common.ReadUint32LE(patch)
		if err != nil {
			return truncated("file id length", err)
		}
		length = int(value)
	} else {
		value, err := common.ReadUint16LE(patch)
		if err != nil {
			return truncated("file id length", err)
		}
		length = int(value)
	}

	h.HasFileID = true
	h.FileIDLength = length

	shown := length
	if shown > MaxFileIDLength {
		shown = MaxFileIDLength
	}
	start := h.PatchSize - int64(lenSize+FileIDEndLength+shown)
	if start < 0 {
		return &common.FormatError{Reason: fmt.Sprintf("file id length %d exceeds the patch size", length)}
	}
	text, err := common.ReadBytesAt(patch, start, shown)
	if err != nil {
		return truncated("file id", err)
	}
	h.FileID = asciiText(text)
	return nil
}

// asciiText drops the non-ASCII bytes of b and trims trailing padding.
func asciiText(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		}
	}
	return strings.TrimRight(sb.String(), " \x00")
}

func truncated(field string, err error) error {
	return &common.FormatError{Reason: fmt.Sprintf("patch header truncated at %s", field), Err: err}
}
