// Package binmerge concatenates the track files of a multi-bin disc image into
// a single bin file and writes the matching single-file cue sheet.
package binmerge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/cue"
)

// ChunkSize is the copy buffer size used when streaming track files.
const ChunkSize = 1024 * 1024

// Options tunes a merge.
type Options struct {
	// Progress, when set, receives every byte written to the merged image.
	Progress io.Writer
}

// Result describes the files produced by a merge.
type Result struct {
	BinPath string
	CuePath string
	Size    int64
	Files   int
}

// Merge writes <name>.bin and <name>.cue into outDir from the files of sheet,
// in the order the cue sheet lists them. Both outputs must be absent; the
// check happens before anything is written.
func Merge(sheet *cue.Sheet, name, outDir string) (*Result, error) {
	return MergeWithOptions(sheet, name, outDir, Options{})
}

// MergeWithOptions is Merge with progress reporting.
func MergeWithOptions(sheet *cue.Sheet, name, outDir string, opts Options) (*Result, error) {
	if sheet == nil || len(sheet.Files) == 0 {
		return nil, &common.PreconditionError{Reason: "no bin files to merge"}
	}
	if sheet.BlockSize == 0 {
		return nil, &common.FormatError{Source: sheet.Path, Reason: common.ErrUnknownBlockSize}
	}

	info, err := os.Stat(outDir)
	if err != nil || !info.IsDir() {
		return nil, common.WrapError(common.ErrOutputDirMissing, outDir)
	}

	result := &Result{
		BinPath: filepath.Join(outDir, name+".bin"),
		CuePath: filepath.Join(outDir, name+".cue"),
		Files:   len(sheet.Files),
	}
	for _, target := range []string{result.BinPath, result.CuePath} {
		if err := ensureAbsent(target); err != nil {
			common.LogError("%v", err)
			return nil, err
		}
	}

	size, err := concatenate(result.BinPath, sheet.Files, opts.Progress)
	if err != nil {
		return nil, err
	}
	result.Size = size

	if err := writeCue(result.CuePath, name+".bin", sheet); err != nil {
		os.Remove(result.BinPath)
		return nil, err
	}

	common.LogInfo(common.InfoMergedImage, len(sheet.Files), result.BinPath, size)
	return result, nil
}

func ensureAbsent(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return &common.ExistingOutputError{Path: path}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return common.WrapError(common.ErrFailedToStatFile, err)
	}
	return nil
}

// concatenate streams every source into a new file at dst. A failed copy
// removes the partial destination.
func concatenate(dst string, files []*cue.File, progress io.Writer) (written int64, err error) {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, &common.ExistingOutputError{Path: dst}
		}
		return 0, common.WrapError(common.ErrFailedToCreateOutput, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = common.WrapError(common.ErrFailedToCreateOutput, closeErr)
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	var w io.Writer = out
	if progress != nil {
		w = io.MultiWriter(out, progress)
	}

	buffer := make([]byte, ChunkSize)
	for _, f := range files {
		common.LogDebug(common.DebugMergeSource, f.Path, f.Size, written)
		n, copyErr := copyFile(w, f.Path, buffer)
		written += n
		if copyErr != nil {
			return written, common.WrapError(common.ErrFailedToCopyTrack, copyErr)
		}
	}
	return written, nil
}

func copyFile(w io.Writer, path string, buffer []byte) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	n, err := io.CopyBuffer(w, onlyReader{in}, buffer)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// onlyReader hides ReaderFrom/WriterTo so io.CopyBuffer honours the buffer.
type onlyReader struct {
	io.Reader
}

func writeCue(path, binName string, sheet *cue.Sheet) (err error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return common.WrapError(common.ErrFailedToWriteCue, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = common.WrapError(common.ErrFailedToWriteCue, closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := cue.WriteMerged(out, binName, sheet); err != nil {
		return common.WrapError(common.ErrFailedToWriteCue, err)
	}
	return nil
}
