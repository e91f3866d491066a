package pkg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"github.com/hansbonini/psiotools/pkg/common"
	"github.com/hansbonini/psiotools/pkg/psx"
)

const (
	lockFileName      = ".psiotools.lock"
	multiDiscFileName = "MULTIDISC.LST"
)

// MultiDiscList is a MULTIDISC.LST written for one game directory.
type MultiDiscList struct {
	Path string   `yaml:"path"`
	Bins []string `yaml:"bins"`
}

// ProcessBatch processes every cue sheet below root, or root itself when it
// is a cue sheet. The output directory is locked for the duration of the run
// so two batches cannot write the same games. A failing game is recorded in
// the report and the batch moves on.
func (p *GameProcessor) ProcessBatch(ctx context.Context, root string) (*Report, error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(p.cfg.Paths.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToLockOutput, err)
	}
	if !locked {
		return nil, common.WrapErrorString(common.ErrOutputLocked, p.cfg.Paths.OutputDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	cueFiles, err := p.findCueSheets(root)
	if err != nil {
		return nil, err
	}

	report := NewReport(root, p.cfg.Paths.OutputDir)
	touched := make(map[string]bool)
	for _, cuePath := range cueFiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := p.ProcessGame(ctx, cuePath)
		if err != nil {
			var exists *common.ExistingOutputError
			if errors.As(err, &exists) {
				result.Status = StatusSkipped
			}
			result.Error = err.Error()
			common.LogWarn(common.WarnSkippingGame, cuePath, err)
		}
		if result.Status == StatusProcessed {
			touched[result.Directory] = true
		}
		report.Add(result)
	}

	if p.cfg.Process.MultiDiscList {
		dirs := make([]string, 0, len(touched))
		for dir := range touched {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			list, err := p.WriteMultiDiscList(ctx, dir)
			if err != nil {
				common.LogError("%v", err)
				continue
			}
			if list != nil {
				report.MultiDisc = append(report.MultiDisc, *list)
			}
		}
	}

	report.Finish()
	common.LogInfo(common.InfoBatchFinished, report.Processed, report.Failed, report.Skipped)

	if p.cfg.Paths.ReportDir != "" {
		if _, err := report.Write(p.cfg.Paths.ReportDir); err != nil {
			return report, err
		}
	}
	return report, nil
}

// findCueSheets lists the cue sheets below root in lexical order, leaving
// out the output directory.
func (p *GameProcessor) findCueSheets(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, common.WrapError(common.ErrFailedToStatFile, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	outputDir := filepath.Clean(p.cfg.Paths.OutputDir)
	var cueFiles []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filepath.Clean(path) == outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".cue") {
			common.LogDebug(common.DebugCueFound, path)
			cueFiles = append(cueFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return cueFiles, nil
}

// WriteMultiDiscList writes MULTIDISC.LST into dir when it holds more than one
// bin image. Bins are ordered by the disc number the database gives their
// product code; bins without a disc number are left out. The entries are
// separated by carriage returns with none after the last. It returns nil when
// no list was written.
func (p *GameProcessor) WriteMultiDiscList(ctx context.Context, dir string) (*MultiDiscList, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var bins []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".bin") {
			bins = append(bins, entry.Name())
		}
	}
	if len(bins) < 2 || p.catalog == nil {
		return nil, nil
	}

	type disc struct {
		number int
		bin    string
	}
	var discs []disc
	for _, bin := range bins {
		id, found, err := psx.ScanGameIDFile(filepath.Join(dir, bin))
		if err != nil {
			return nil, err
		}
		if !found {
			common.LogWarn(common.WarnUnknownDiscNumber, bin)
			continue
		}
		game, ok, err := p.catalog.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok || game.DiscNumber < 1 {
			common.LogWarn(common.WarnUnknownDiscNumber, bin)
			continue
		}
		discs = append(discs, disc{number: game.DiscNumber, bin: bin})
	}
	if len(discs) == 0 {
		return nil, nil
	}
	sort.SliceStable(discs, func(i, j int) bool { return discs[i].number < discs[j].number })

	list := &MultiDiscList{Path: filepath.Join(dir, multiDiscFileName)}
	for _, d := range discs {
		list.Bins = append(list.Bins, d.bin)
	}
	if err := os.WriteFile(list.Path, []byte(strings.Join(list.Bins, "\r")), 0o644); err != nil {
		return nil, common.WrapError(common.ErrFailedToWriteMultiDisc, err)
	}
	common.LogInfo(common.InfoMultiDiscWritten, filepath.Base(dir), len(list.Bins))
	return list, nil
}
