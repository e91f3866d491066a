// Package psx provides PlayStation-specific CD-ROM reading functionality.
// This file locates the product code (SLUS-00594 style identifier) that
// PlayStation discs carry in SYSTEM.CNF and the boot executable name.
package psx

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/hansbonini/psiotools/pkg/common"
)

// productCodeLength is the number of raw bytes taken from the start of a
// region prefix, e.g. "SLUS_005.94".
const productCodeLength = 11

const scanChunkSize = 1024 * 1024

// RegionPrefixes lists the product code prefixes searched for, in priority order.
var RegionPrefixes = []string{
	"DTLS_", "SCES_", "SLES_", "SLED_", "SCED_", "SCUS_", "SLUS_", "SLPS_",
	"SCAJ_", "SLKA_", "SLPM_", "SCPS_", "SCPM_", "PCPX_", "PAPX_", "PTPX_",
	"LSP0_", "LSP1_", "LSP2_", "LSP9_", "SIPS_", "ESPM_", "SCZS_", "SPUS_",
	"PBPX_", "LSP_",
}

// ScanGameIDFile opens a bin image and scans it for a product code.
func ScanGameIDFile(path string) (string, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	return ScanGameID(file)
}

// ScanGameID streams r looking for the first product code. The image is read
// in chunks; the tail of each chunk is carried over so a code split across two
// reads is still found. Scanning stops as soon as a code is found or the
// reader is exhausted.
func ScanGameID(r io.Reader) (string, bool, error) {
	chunk := make([]byte, scanChunkSize)
	window := make([]byte, 0, scanChunkSize+productCodeLength)
	var windowStart int64

	found := false
	eof := false
	var raw []byte

	for !found && !eof {
		n, err := r.Read(chunk)
		window = append(window, chunk[:n]...)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", false, err
			}
			eof = true
		}

		if pos := findProductCode(window); pos >= 0 {
			raw = window[pos : pos+productCodeLength]
			common.LogDebug(common.DebugScanMatch, string(raw), windowStart+int64(pos))
			found = true
			continue
		}

		keep := productCodeLength - 1
		if len(window) > keep {
			windowStart += int64(len(window) - keep)
			window = append(window[:0], window[len(window)-keep:]...)
		}
	}

	if !found {
		return "", false, nil
	}
	return NormalizeGameID(string(raw)), true, nil
}

// findProductCode returns the earliest offset in buf at which a region prefix
// starts with a full product code after it, or -1. Prefixes too close to the
// end of buf are left for the next window.
func findProductCode(buf []byte) int {
	best := -1
	for _, prefix := range RegionPrefixes {
		idx := bytes.Index(buf, []byte(prefix))
		if idx < 0 || idx+productCodeLength > len(buf) {
			continue
		}
		if best < 0 || idx < best {
			best = idx
		}
	}
	return best
}

// NormalizeGameID turns a raw product code such as "SLUS_005.94" into the
// catalogue form "SLUS-00594".
func NormalizeGameID(raw string) string {
	id := strings.ReplaceAll(raw, "_", "-")
	id = strings.ReplaceAll(id, ".", "")
	return strings.TrimSpace(id)
}
