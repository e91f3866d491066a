package cue

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/hansbonini/psiotools/pkg/common"
)

// LineEnding terminates every line of generated cue sheets.
const LineEnding = "\r\n"

const indent = "   "

// WriteMerged writes a cue sheet describing every track of sheet as part of
// the single bin file binName. Index positions are shifted by the running
// sector position of the file they came from.
//
// The running position advances by size/blocksize in floating point, so a
// file whose size is not a whole number of sectors carries its fraction into
// the following files. Positions are truncated to whole sectors only when a
// timecode is formatted.
func WriteMerged(w io.Writer, binName string, sheet *Sheet) error {
	if sheet.BlockSize == 0 {
		return &common.FormatError{Source: sheet.Path, Reason: common.ErrUnknownBlockSize}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "FILE \"%s\" BINARY%s", binName, LineEnding)

	sectorPos := 0.0
	for _, f := range sheet.Files {
		for _, t := range f.Tracks {
			fmt.Fprintf(bw, "%sTRACK %02d %s%s", indent, t.Number, t.Type, LineEnding)
			for _, idx := range t.Indexes {
				position := int(math.Floor(sectorPos + float64(idx.Sectors)))
				fmt.Fprintf(bw, "%sINDEX %02d %s%s", indent, idx.ID, common.SectorsToTimecode(position), LineEnding)
			}
		}
		sectorPos += float64(f.Size) / float64(sheet.BlockSize)
	}

	return bw.Flush()
}
