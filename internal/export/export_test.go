package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/kickoff/internal/timetable"
	"github.com/five82/kickoff/internal/timetable/timetabletest"
)

type fakeDownloader struct {
	name string
	body string
	err  error
}

func (f fakeDownloader) DownloadSolution(_ context.Context, _ string, dst io.Writer) (string, error) {
	if _, err := io.WriteString(dst, f.body); err != nil {
		return "", err
	}
	return f.name, f.err
}

func TestSave_UsesServerName(t *testing.T) {
	srv := timetabletest.NewServer()
	t.Cleanup(srv.Close)
	srv.SetSession(timetabletest.Session{Solutions: []timetable.Solution{{Hash: "abc"}}})
	srv.SetExport([]byte("sheet"))

	client, err := timetable.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := Save(ctx, client, dir, "abc", "fallback.xlsx")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if path != filepath.Join(dir, "tournament.xlsx") {
		t.Fatalf("path = %q, want server-supplied name", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "sheet" {
		t.Fatalf("file = %q, %v; want sheet", data, err)
	}
}

func TestSave_FallbackAndSanitize(t *testing.T) {
	tests := []struct {
		name     string
		server   string
		fallback string
		want     string
	}{
		{"fallback", "", "cup.xlsx", "cup.xlsx"},
		{"traversal", "../../etc/passwd", "cup.xlsx", "passwd"},
		{"hash name", "", "", "solution-h1.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path, err := Save(context.Background(), fakeDownloader{name: tt.server, body: "x"}, dir, "h1", tt.fallback)
			if err != nil {
				t.Fatalf("Save returned error: %v", err)
			}
			if path != filepath.Join(dir, tt.want) {
				t.Fatalf("path = %q, want %q", path, filepath.Join(dir, tt.want))
			}
		})
	}
}

func TestSave_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(context.Background(), fakeDownloader{body: "partial", err: errors.New("reset")}, dir, "h1", "cup.xlsx")
	if err == nil {
		t.Fatal("expected download error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dir has %d entries after failure, want 0", len(entries))
	}
}
