package native

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// errUnverifiable rejects candidates a pinned checksum cannot be checked against.
var errUnverifiable = fmt.Errorf("%w: not a file on disk", ErrChecksumMismatch)

// verifyChecksum verifies the SHA256 checksum of a file.
// Expected format: "sha256:HEXHASH" or just "HEXHASH".
func verifyChecksum(path, expected string) error {
	algorithm := "sha256"
	hash := expected

	if strings.Contains(expected, ":") {
		parts := strings.SplitN(expected, ":", 2)
		algorithm = strings.ToLower(parts[0])
		hash = parts[1]
	}

	if algorithm != "sha256" {
		return fmt.Errorf("unsupported checksum algorithm: %s (only sha256 is supported)", algorithm)
	}

	// #nosec G304 -- path comes from the loader's candidate list
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	computed := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(computed, hash) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, hash, computed)
	}

	return nil
}

// onDisk reports whether path names an existing regular file.
func onDisk(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
