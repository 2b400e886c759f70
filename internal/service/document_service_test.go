package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docquiz/docquiz-backend/internal/config"
)

func TestListSamplesFiltersUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "physics.txt", "Velocity is the rate of change of position.")
	writeSample(t, dir, "notes.exe", "binary junk")

	svc := NewDocumentService(&config.Config{SampleDir: dir})

	samples, err := svc.ListSamples()
	if err != nil {
		t.Fatalf("ListSamples: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].Name != "physics.txt" || samples[0].Type != "txt" {
		t.Errorf("sample = %+v", samples[0])
	}
}

func TestListSamplesMissingDir(t *testing.T) {
	svc := NewDocumentService(&config.Config{SampleDir: "/nonexistent/samples"})
	samples, err := svc.ListSamples()
	if err != nil {
		t.Fatalf("ListSamples: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("got %d samples from missing dir, want 0", len(samples))
	}
}

func TestPreviewSamplesTruncates(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("All matter is made of atoms. ", 40)
	writeSample(t, dir, "chemistry.txt", long)

	svc := NewDocumentService(&config.Config{SampleDir: dir})

	preview, err := svc.PreviewSamples()
	if err != nil {
		t.Fatalf("PreviewSamples: %v", err)
	}
	if !strings.Contains(preview.Content, "=== chemistry.txt ===") {
		t.Error("preview missing file header")
	}
	if !strings.Contains(preview.Content, "...") {
		t.Error("long preview should be truncated with ellipsis")
	}
	if len(preview.Metadata) != 1 {
		t.Fatalf("got %d metadata entries, want 1", len(preview.Metadata))
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tc := range cases {
		if got := humanSize(tc.n); got != tc.want {
			t.Errorf("humanSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func writeSample(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
