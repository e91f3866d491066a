package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenCue        = "failed to open cue sheet"
	ErrFailedToReadCue        = "failed to read cue sheet"
	ErrFailedToStatFile       = "failed to stat file"
	ErrFileDoesNotExist       = "file does not exist"
	ErrOutputDirMissing       = "output directory does not exist"
	ErrTargetExists           = "target path already exists"
	ErrFailedToCreateOutput   = "failed to create output file"
	ErrFailedToCopyTrack      = "failed to copy track data"
	ErrFailedToWriteCue       = "failed to write cue sheet"
	ErrNotMode2               = "cue sheet indicates this image is not in MODE2/2352"
	ErrSizeNotSectorAligned   = "image size is not a multiple of 2352 bytes"
	ErrNoPregapPosition       = "could not find pregap position (index 00)"
	ErrNoStartPosition        = "could not find starting position (index 01)"
	ErrFailedToWriteCu2       = "failed to write cu2 sheet"
	ErrTrackNotFound          = "track not found in cue sheet"
	ErrNotPPF                 = "patchfile is no PPF patch"
	ErrNoUndoData             = "no undo data available"
	ErrTruncatedRecord        = "truncated patch record"
	ErrFailedToOpenImage      = "failed to open image"
	ErrFailedToOpenPatch      = "failed to open patch"
	ErrFailedToWritePatch     = "failed to write patch data"
	ErrUnknownBlockSize       = "no track type with a known sector size"
	ErrMalformedTimecode      = "malformed timecode"
	ErrGameNameUnresolved     = "could not determine the game name"
	ErrFailedToCreateGameDir  = "unable to create the game output directory"
	ErrFailedToLockOutput     = "failed to lock output directory"
	ErrOutputLocked           = "output directory is locked by another run"
	ErrFailedToOpenDatabase   = "failed to open game database"
	ErrFailedToWriteReport    = "failed to write run report"
	ErrFailedToWriteMultiDisc = "failed to write MULTIDISC.LST"
)

// Info messages
const (
	InfoParsedCue          = "Parsed cue sheet %s: %d file(s), %d track(s), blocksize %d"
	InfoMergedImage        = "Merged %d file(s) into %s (%d bytes)"
	InfoCu2Generated       = "CU2 sheet written: %s"
	InfoDetectedPPF        = "Detected PPF%d.0"
	InfoPatchDescription   = "Description: %s"
	InfoPatchFileID        = "File_id.diz: %s"
	InfoPatchApplied       = "Patch %s applied: %d record(s), %d byte(s) written"
	InfoPatchUndone        = "Patch %s undone: %d record(s), %d byte(s) written"
	InfoProcessingGame     = "Processing game: %s"
	InfoGameFinished       = "Finished processing game: %s"
	InfoGameIdentified     = "Identified %s as %s"
	InfoCoverCopied        = "Copied cover art %s"
	InfoMultiDiscWritten   = "MULTIDISC.LST written for %s (%d disc(s))"
	InfoGameDataImported   = "Imported %d game(s) into %s"
	InfoSingleBinCopied    = "Copied single bin image to %s"
	InfoBatchFinished      = "Batch finished: %d processed, %d failed, %d skipped"
	InfoReportWritten      = "Run report written to %s"
	InfoConfigSampleCreate = "Sample configuration written to %s"
)

// Debug messages
const (
	DebugResolvedFile     = "Resolved %q as %s"
	DebugTrackParsed      = "Track %d %s"
	DebugIndexParsed      = "  Index %d at sector %d (%s)"
	DebugBlockSizeLocked  = "Blocksize locked to %d by track type %s"
	DebugMergeSource      = "Appending %s (%d bytes) at byte %d"
	DebugCu2Line          = "cu2: %s"
	DebugPatchRecord      = "Record at 0x%X, %d byte(s)"
	DebugPatchStreamBytes = "Record stream: %d byte(s) from offset %d"
	DebugScanMatch        = "Product code candidate %q at byte %d"
	DebugCueFound         = "Found cue sheet %s"
	DebugUsingConfig      = "Using configuration %s"
	DebugNoConfig         = "No configuration at %s, using defaults"
)

// Warning messages
const (
	WarnPregapCommand       = "The PREGAP command is used for track %d, which requires the software to insert data into the image or disc. This is not supported. The pregap will be ignored and a zero length pregap will be noted in the CU2 sheet in order to continue, but the resulting bin/CU2 set might not work as expected or not at all. If possible, please try a Redump compatible version of this image"
	WarnPregapCommandAgain  = "The PREGAP command is also used for track %d."
	WarnImageSizeMismatch   = "The size of the bin file isn't correct (expected %d, got %d), continuing anyway"
	WarnBlockCheckFailed    = "Binblock/Patchvalidation failed, continuing anyway"
	WarnUnknownTrackType    = "Unknown track type %q for track %d"
	WarnGameNotInDatabase   = "No database entry for %s, using the cue sheet name"
	WarnGameIDNotFound      = "No product code found in %s"
	WarnSkippingGame        = "Skipping %s: %v"
	WarnSkippingGameDataRow = "Skipping malformed game data line %d: %q"
	WarnCueNotRemoved       = "Could not remove cue sheet %s: %v"
	WarnLibCryptNoPatch     = "%s is LibCrypt protected but no %s.ppf was found in %s"
	WarnUnknownDiscNumber   = "No disc number for %s, leaving it out of MULTIDISC.LST"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// WrapError creates a formatted error with additional context
func WrapError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// WrapErrorString creates a formatted error with string details
func WrapErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
