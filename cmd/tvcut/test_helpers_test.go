package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/media/ffprobe"
	"tvcut/internal/pipeline"
)

const testProbeJSON = `{
  "streams": [
    {"index": 0, "id": "0x31", "codec_type": "video", "profile": "Main", "avg_frame_rate": "30000/1001"},
    {"index": 1, "id": "0x34", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 2, "id": "0x35", "codec_type": "audio", "tags": {"language": "fre"}}
  ],
  "format": {"duration": "3600.0", "size": "4096"}
}`

type cliTestEnv struct {
	baseDir    string
	configPath string
	workDir    string
	recording  string
	cutlist    string
	opts       []pipeline.Option
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(homeDir, ".config", "tvcut", "config.toml"),
		workDir:    filepath.Join(base, "work"),
		recording:  filepath.Join(base, "recordings", "show.ts"),
		cutlist:    filepath.Join(base, "recordings", "show.edl"),
	}
	if err := os.MkdirAll(filepath.Dir(env.recording), 0o755); err != nil {
		t.Fatalf("mkdir recordings: %v", err)
	}
	if err := os.WriteFile(env.recording, bytes.Repeat([]byte{0x47}, 4096), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	if err := os.WriteFile(env.cutlist, []byte("600 660 0\n1800 1830 0\n"), 0o644); err != nil {
		t.Fatalf("write cutlist: %v", err)
	}
	writeTestConfig(t, env.configPath, base)

	probe, err := ffprobe.Parse([]byte(testProbeJSON))
	if err != nil {
		t.Fatalf("parse probe fixture: %v", err)
	}
	env.opts = []pipeline.Option{
		pipeline.WithProber(pipeline.ProberFunc(func(context.Context, string) (ffprobe.Result, error) {
			return probe, nil
		})),
	}
	return env
}

func writeTestConfig(t *testing.T, path, base string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
work_dir = %q
state_dir = %q
log_dir = %q

[preflight]
enabled = false

[logging]
level = "error"
`, filepath.Join(base, "work"), filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithOptions(env.opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
