package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/hansbonini/psiotools/pkg/common"
)

func TestProcessBatch_MultiDisc(t *testing.T) {
	cfg := testConfig(t)
	src := t.TempDir()
	writeSingleBin(t, filepath.Join(src, "disc2"), "Final Fantasy VII (USA) (Disc 2)", "SCUS_941.64")
	writeSingleBin(t, filepath.Join(src, "disc1"), "Final Fantasy VII (USA) (Disc 1)", "SCUS_941.63")

	report, err := NewGameProcessor(cfg, ff7).ProcessBatch(context.Background(), src)
	if err != nil {
		t.Fatalf("ProcessBatch() failed: %v", err)
	}
	if report.Processed != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("report counts = %d/%d/%d", report.Processed, report.Failed, report.Skipped)
	}

	gameDir := filepath.Join(cfg.Paths.OutputDir, "Final Fantasy VII")
	data, err := os.ReadFile(filepath.Join(gameDir, multiDiscFileName))
	if err != nil {
		t.Fatalf("MULTIDISC.LST missing: %v", err)
	}
	want := "Final Fantasy VII (Disc 1).bin\rFinal Fantasy VII (Disc 2).bin"
	if string(data) != want {
		t.Errorf("MULTIDISC.LST = %q, want %q", data, want)
	}
	if len(report.MultiDisc) != 1 || report.MultiDisc[0].Path != filepath.Join(gameDir, multiDiscFileName) {
		t.Errorf("report multidisc = %+v", report.MultiDisc)
	}

	reports, _ := filepath.Glob(filepath.Join(cfg.Paths.ReportDir, "run-*.yaml"))
	if len(reports) != 1 {
		t.Fatalf("expected one report file, got %v", reports)
	}
	raw, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded Report
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if decoded.RunID != report.RunID || len(decoded.Games) != 2 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestProcessBatch_ContinuesAfterFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Process.MultiDiscList = false
	src := t.TempDir()
	writeSingleBin(t, filepath.Join(src, "a"), "Crash Bandicoot", "SCUS_949.00")
	broken := filepath.Join(src, "b", "Broken.cue")
	os.MkdirAll(filepath.Dir(broken), 0o755)
	os.WriteFile(broken, []byte("FILE \"Broken.bin\" BINARY\r\n  TRACK 01 MODE2/2352\r\n    INDEX 01 00:00:00\r\n"), 0o644)

	report, err := NewGameProcessor(cfg, ff7).ProcessBatch(context.Background(), src)
	if err != nil {
		t.Fatalf("ProcessBatch() failed: %v", err)
	}
	if report.Processed != 1 || report.Failed != 1 {
		t.Fatalf("report counts = %d processed, %d failed", report.Processed, report.Failed)
	}
	for _, g := range report.Games {
		if g.CuePath == broken && (g.Status != StatusFailed || g.Error == "") {
			t.Errorf("broken game recorded as %+v", g)
		}
	}

	// A second run finds the processed game already present.
	report, err = NewGameProcessor(cfg, ff7).ProcessBatch(context.Background(), filepath.Join(src, "a"))
	if err != nil {
		t.Fatalf("second ProcessBatch() failed: %v", err)
	}
	if report.Skipped != 1 || report.Processed != 0 {
		t.Errorf("second run counts = %d processed, %d skipped", report.Processed, report.Skipped)
	}
}

func TestProcessBatch_SingleCue(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.ReportDir = ""
	cuePath := writeSingleBin(t, t.TempDir(), "Crash Bandicoot", "SCUS_949.00")

	report, err := NewGameProcessor(cfg, nil).ProcessBatch(context.Background(), cuePath)
	if err != nil {
		t.Fatalf("ProcessBatch() failed: %v", err)
	}
	if len(report.Games) != 1 || report.Games[0].Status != StatusProcessed {
		t.Errorf("report games = %+v", report.Games)
	}
}

func TestProcessBatch_SkipsOutputDirectory(t *testing.T) {
	cfg := testConfig(t)
	src := t.TempDir()
	cfg.Paths.OutputDir = filepath.Join(src, "output")
	cfg.Process.KeepCue = true
	writeSingleBin(t, filepath.Join(src, "game"), "Crash Bandicoot", "SCUS_949.00")

	report, err := NewGameProcessor(cfg, nil).ProcessBatch(context.Background(), src)
	if err != nil {
		t.Fatalf("ProcessBatch() failed: %v", err)
	}
	if len(report.Games) != 1 {
		t.Fatalf("expected one game, got %d", len(report.Games))
	}

	report, err = NewGameProcessor(cfg, nil).ProcessBatch(context.Background(), src)
	if err != nil {
		t.Fatalf("second ProcessBatch() failed: %v", err)
	}
	if len(report.Games) != 1 {
		t.Errorf("kept cue sheets in the output directory were picked up: %+v", report.Games)
	}
}

func TestProcessBatch_Locked(t *testing.T) {
	cfg := testConfig(t)
	lock := flock.New(filepath.Join(cfg.Paths.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}
	defer lock.Unlock()

	_, err = NewGameProcessor(cfg, ff7).ProcessBatch(context.Background(), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), common.ErrOutputLocked) {
		t.Fatalf("ProcessBatch() error = %v, want %q", err, common.ErrOutputLocked)
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	src := t.TempDir()
	writeSingleBin(t, src, "Crash Bandicoot", "SCUS_949.00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := NewGameProcessor(cfg, nil).ProcessBatch(ctx, src)
	if err != context.Canceled {
		t.Fatalf("ProcessBatch() error = %v, want context.Canceled", err)
	}
	if len(report.Games) != 0 {
		t.Errorf("no game should run after cancellation, got %d", len(report.Games))
	}
}

func TestWriteMultiDiscList_SingleBin(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "Game.bin"), discImage("SCUS_941.63", 1), 0o644)

	list, err := NewGameProcessor(cfg, ff7).WriteMultiDiscList(context.Background(), dir)
	if err != nil || list != nil {
		t.Fatalf("WriteMultiDiscList() = %+v, %v", list, err)
	}
	if _, err := os.Stat(filepath.Join(dir, multiDiscFileName)); !os.IsNotExist(err) {
		t.Error("MULTIDISC.LST should not be written for a single disc")
	}
}
