// Package pkg ties the disc image tools together into the PSIO preparation
// pipeline. This file contains the per-game processor.
package pkg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hansbonini/psiotools/pkg/binmerge"
	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/config"
	"github.com/hansbonini/psiotools/pkg/cu2"
	"github.com/hansbonini/psiotools/pkg/cue"
	"github.com/hansbonini/psiotools/pkg/gamedb"
	"github.com/hansbonini/psiotools/pkg/ppf"
	"github.com/hansbonini/psiotools/pkg/psx"
)

var cueFileLine = regexp.MustCompile(`^(\s*FILE\s+)("[^"]*"|\S+)(.*)$`)

// Catalog resolves product codes to database entries.
type Catalog interface {
	Lookup(ctx context.Context, id string) (*gamedb.Game, bool, error)
}

// Game outcomes recorded in the run report.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// GameResult describes what happened to one cue sheet.
type GameResult struct {
	CuePath    string   `yaml:"cue"`
	GameID     string   `yaml:"game_id,omitempty"`
	Name       string   `yaml:"name,omitempty"`
	DiscNumber int      `yaml:"disc,omitempty"`
	Directory  string   `yaml:"directory,omitempty"`
	BinPath    string   `yaml:"bin,omitempty"`
	Cu2Path    string   `yaml:"cu2,omitempty"`
	CoverPath  string   `yaml:"cover,omitempty"`
	Merged     bool     `yaml:"merged"`
	Patch      string   `yaml:"patch,omitempty"`
	Warnings   []string `yaml:"warnings,omitempty"`
	Status     string   `yaml:"status"`
	Error      string   `yaml:"error,omitempty"`
}

// GameProcessor prepares disc image sets for the PSIO.
type GameProcessor struct {
	cfg     *config.Config
	catalog Catalog
	parser  *cue.Parser

	// Progress, when set, returns a writer that receives the bytes of a merge.
	// It is closed once the merge returns.
	Progress func(name string, total int64) io.WriteCloser
}

// NewGameProcessor creates a processor writing below cfg.Paths.OutputDir.
// catalog may be nil, in which case names come from the cue sheets.
func NewGameProcessor(cfg *config.Config, catalog Catalog) *GameProcessor {
	return &GameProcessor{
		cfg:     cfg,
		catalog: catalog,
		parser:  cue.NewParser(),
	}
}

// ProcessGame identifies the disc described by cuePath and writes its bin,
// cu2 and cover art into the game directory. Existing outputs are never
// overwritten.
func (p *GameProcessor) ProcessGame(ctx context.Context, cuePath string) (*GameResult, error) {
	result := &GameResult{CuePath: cuePath, Status: StatusFailed}
	common.LogInfo(common.InfoProcessingGame, cuePath)

	sheet, err := p.parser.Parse(cuePath)
	if err != nil {
		return result, err
	}
	if len(sheet.Files) == 0 {
		return result, &common.PreconditionError{Source: cuePath, Reason: "cue sheet references no bin files"}
	}

	game, err := p.identify(ctx, sheet, result)
	if err != nil {
		return result, err
	}

	result.Directory = filepath.Join(p.cfg.Paths.OutputDir, DirectoryName(result.Name))
	if err := os.MkdirAll(result.Directory, 0o755); err != nil {
		return result, common.WrapError(common.ErrFailedToCreateGameDir, err)
	}

	result.BinPath = filepath.Join(result.Directory, result.Name+".bin")
	result.Cu2Path = filepath.Join(result.Directory, result.Name+".cu2")
	for _, target := range []string{result.BinPath, result.Cu2Path} {
		if _, err := os.Lstat(target); err == nil {
			result.Status = StatusSkipped
			return result, &common.ExistingOutputError{Path: target}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	cuePathOut, err := p.writeImage(sheet, result)
	if err != nil {
		return result, err
	}

	generator := &cu2.Generator{KeepCue: p.cfg.Process.KeepCue}
	generated, err := generator.Generate(cuePathOut, result.Name+".bin")
	if err != nil {
		os.Remove(result.BinPath)
		os.Remove(cuePathOut)
		return result, err
	}
	result.Warnings = append(result.Warnings, generated.Sheet.Warnings...)

	if p.cfg.Process.ApplyPatches && result.GameID != "" {
		if err := p.applyPatch(game, result); err != nil {
			return result, err
		}
	}
	if p.cfg.Process.CopyCovers && result.GameID != "" {
		if err := p.copyCover(result); err != nil {
			return result, err
		}
	}

	result.Status = StatusProcessed
	common.LogInfo(common.InfoGameFinished, result.Name)
	return result, nil
}

// identify scans the first bin for a product code and resolves the display
// name, falling back to the cue sheet's file name.
func (p *GameProcessor) identify(ctx context.Context, sheet *cue.Sheet, result *GameResult) (*gamedb.Game, error) {
	id, found, err := psx.ScanGameIDFile(sheet.Files[0].Path)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", sheet.Files[0].Path, err)
	}

	var game *gamedb.Game
	if found {
		result.GameID = id
		if p.catalog != nil {
			g, ok, err := p.catalog.Lookup(ctx, id)
			if err != nil {
				return nil, err
			}
			if ok {
				game = g
			}
		}
	} else {
		common.LogWarn(common.WarnGameIDNotFound, sheet.Files[0].Path)
	}

	if game != nil {
		result.Name = DisplayName(game.Name, game.DiscNumber, p.cfg.Process.MaxNameLength)
		result.DiscNumber = game.DiscNumber
		common.LogInfo(common.InfoGameIdentified, id, result.Name)
		return game, nil
	}

	if found {
		common.LogWarn(common.WarnGameNotInDatabase, id)
	}
	result.Name = CueFallbackName(sheet.Files[0].Name)
	if result.Name == "" {
		return nil, &common.PreconditionError{Source: sheet.Path, Reason: common.ErrGameNameUnresolved}
	}
	return nil, nil
}

// writeImage merges a multi-bin set or copies a single bin with its cue
// sheet into the game directory and returns the path of the new cue sheet.
func (p *GameProcessor) writeImage(sheet *cue.Sheet, result *GameResult) (string, error) {
	if sheet.MultiBin() {
		opts := binmerge.Options{}
		if p.Progress != nil {
			if bar := p.Progress(result.Name, sheet.TotalSize()); bar != nil {
				opts.Progress = bar
				defer bar.Close()
			}
		}
		merged, err := binmerge.MergeWithOptions(sheet, result.Name, result.Directory, opts)
		if err != nil {
			return "", err
		}
		result.Merged = true
		return merged.CuePath, nil
	}

	cuePathOut := filepath.Join(result.Directory, result.Name+".cue")
	if err := copyNew(sheet.Files[0].Path, result.BinPath); err != nil {
		return "", err
	}
	if err := copyCueSheet(sheet.Path, cuePathOut, result.Name+".bin"); err != nil {
		os.Remove(result.BinPath)
		return "", err
	}
	common.LogInfo(common.InfoSingleBinCopied, result.BinPath)
	return cuePathOut, nil
}

func (p *GameProcessor) applyPatch(game *gamedb.Game, result *GameResult) error {
	dir := p.cfg.Paths.PatchesDir
	for _, ext := range []string{".ppf", ".PPF"} {
		patchPath := filepath.Join(dir, result.GameID+ext)
		if _, err := os.Stat(patchPath); err != nil {
			continue
		}
		applied, err := ppf.ApplyFile(result.BinPath, patchPath, ppf.Apply)
		if err != nil {
			return fmt.Errorf("failed to patch %s: %w", result.BinPath, err)
		}
		result.Patch = patchPath
		result.Warnings = append(result.Warnings, applied.Warnings...)
		return nil
	}

	if game != nil && game.LibCrypt {
		common.LogWarn(common.WarnLibCryptNoPatch, result.GameID, result.GameID, dir)
		result.Warnings = append(result.Warnings, fmt.Sprintf(common.WarnLibCryptNoPatch, result.GameID, result.GameID, dir))
	}
	return nil
}

// copyCover copies <covers>/<ID>.bmp next to the images, named after the
// game directory. A cover already placed by another disc is kept.
func (p *GameProcessor) copyCover(result *GameResult) error {
	dirName := filepath.Base(result.Directory)
	for _, ext := range []string{".bmp", ".BMP"} {
		src := filepath.Join(p.cfg.Paths.CoversDir, result.GameID+ext)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(result.Directory, dirName+ext)
		if err := copyNew(src, dst); err != nil {
			var exists *common.ExistingOutputError
			if errors.As(err, &exists) {
				return nil
			}
			return err
		}
		result.CoverPath = dst
		common.LogInfo(common.InfoCoverCopied, dst)
		return nil
	}
	return nil
}

// copyNew copies src to a new file at dst, refusing to replace an existing
// file. A failed copy removes the partial destination.
func copyNew(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &common.ExistingOutputError{Path: dst}
		}
		return common.WrapError(common.ErrFailedToCreateOutput, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err := io.CopyBuffer(out, in, make([]byte, binmerge.ChunkSize)); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// copyCueSheet copies a cue sheet line by line, pointing its FILE entry at
// binName.
func copyCueSheet(src, dst, binName string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return common.WrapError(common.ErrFailedToOpenCue, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &common.ExistingOutputError{Path: dst}
		}
		return common.WrapError(common.ErrFailedToWriteCue, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := cueFileLine.FindStringSubmatch(line); m != nil {
			line = fmt.Sprintf("%s%q%s", m[1], binName, m[3])
		}
		if _, err := w.WriteString(line + cue.LineEnding); err != nil {
			return common.WrapError(common.ErrFailedToWriteCue, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return common.WrapError(common.ErrFailedToReadCue, err)
	}
	return w.Flush()
}
