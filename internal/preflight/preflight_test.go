package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/services"
	"tvcut/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceReadable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show.ts")
	testsupport.WriteFile(t, src, 2048)

	if r := CheckSourceReadable(src); !r.Passed {
		t.Fatalf("expected readable source, got %s", r.Detail)
	}
	if r := CheckSourceReadable(dir); r.Passed {
		t.Fatal("directory should not pass as a recording")
	}
	if r := CheckSourceReadable(filepath.Join(dir, "missing.ts")); r.Passed {
		t.Fatal("missing recording should fail")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	orig := availableBytes
	t.Cleanup(func() { availableBytes = orig })
	availableBytes = func(string) (uint64, error) { return 10 << 30, nil }

	if r := CheckFreeSpace("space", t.TempDir(), 5<<30); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckFreeSpace("space", t.TempDir(), 20<<30)
	if r.Passed {
		t.Fatal("expected failure when space is short")
	}
	if !strings.Contains(r.Detail, "10.0 GiB free") {
		t.Fatalf("unexpected detail: %q", r.Detail)
	}

	availableBytes = func(string) (uint64, error) { return 0, errors.New("boom") }
	if r := CheckFreeSpace("space", "/x", 1); r.Passed || !strings.Contains(r.Detail, "statfs") {
		t.Fatalf("expected statfs failure, got %+v", r)
	}
}

func TestCheckFreeSpaceRealFilesystem(t *testing.T) {
	if r := CheckFreeSpace("space", t.TempDir(), 1); !r.Passed {
		t.Fatalf("expected at least one free byte: %s", r.Detail)
	}
}

func TestEstimateRequiredBytes(t *testing.T) {
	tests := []struct {
		name   string
		source int64
		kept   float64
		factor float64
		want   uint64
	}{
		{"typical", 1000, 0.5, 1.1, 550},
		{"zero source", 0, 1, 1.1, 0},
		{"clamped high", 1000, 2, 1, 1000},
		{"clamped low", 1000, -1, 1, 0},
		{"non-positive factor", 1000, 1, 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateRequiredBytes(tt.source, tt.kept, tt.factor); got != tt.want {
				t.Fatalf("EstimateRequiredBytes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Request{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_StubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.CCExtractor = "clearly-not-present-ccextractor"
	src := filepath.Join(testsupport.BaseDir(cfg), "show.ts")
	testsupport.WriteFile(t, src, 1024)

	results := RunAll(context.Background(), cfg, Request{Source: src, SourceBytes: 1024, KeptFraction: 0.9})
	if err := Err(results); err != nil {
		t.Fatalf("expected no blocking failures, got %v", err)
	}

	var sawOptional bool
	for _, r := range results {
		if r.Name == "CCExtractor" {
			sawOptional = true
			if r.Passed || !r.Optional {
				t.Fatalf("unexpected ccextractor result: %+v", r)
			}
		}
	}
	if !sawOptional {
		t.Fatal("expected CCExtractor result when captions are enabled")
	}
}

func TestRunAll_MissingToolBlocks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.FFmpeg = "clearly-not-present-ffmpeg"
	cfg.Tools.FFprobe = "clearly-not-present-ffprobe"
	cfg.Captions.Enabled = false

	err := Err(RunAll(context.Background(), cfg, Request{}))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "FFmpeg") {
		t.Fatalf("error should name the missing tool: %v", err)
	}
}
