package config

const (
	defaultConfigPath    = "~/.config/psiotools/config.toml"
	defaultOutputDir     = "~/psio/output"
	defaultCoversDir     = "~/psio/covers"
	defaultPatchesDir    = "~/psio/patches"
	defaultDatabase      = "~/.local/share/psiotools/games.db"
	defaultReportDir     = "~/.local/share/psiotools/reports"
	defaultMaxNameLength = 47

	// PSIO shows at most 60 characters of a file name.
	maxNameLengthLimit = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			CoversDir:  defaultCoversDir,
			PatchesDir: defaultPatchesDir,
			Database:   defaultDatabase,
			ReportDir:  defaultReportDir,
		},
		Process: Process{
			ApplyPatches:  true,
			CopyCovers:    true,
			MultiDiscList: true,
			MaxNameLength: defaultMaxNameLength,
		},
	}
}
