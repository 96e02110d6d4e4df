// Package export saves spreadsheet exports of solutions to disk.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Downloader streams one solution export. *timetable.Client implements it.
type Downloader interface {
	DownloadSolution(ctx context.Context, hash string, dst io.Writer) (string, error)
}

// Save downloads the export of the solution with hash into dir. The file is
// named after the server's suggestion, or fallback when there is none, and
// only appears once fully written.
func Save(ctx context.Context, d Downloader, dir, hash, fallback string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kickoff-export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	suggested, err := d.DownloadSolution(ctx, hash, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		return "", fmt.Errorf("download solution: %w", err)
	}

	name := sanitize(suggested)
	if name == "" {
		name = sanitize(fallback)
	}
	if name == "" {
		name = "solution-" + sanitize(hash) + ".xlsx"
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("move export: %w", err)
	}
	return dst, nil
}

// sanitize keeps only the base name so a server-supplied name cannot escape dir.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		return ""
	}
	return base
}
