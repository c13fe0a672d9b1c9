package locate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"tvcut/internal/services"
)

var frameProgress = regexp.MustCompile(`(?:^|\s)frame=\s*(\d+)`)

// command is the subset of *exec.Cmd the measurer drives.
type command interface {
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

type commandFactory func(ctx context.Context, name string, args ...string) command

func execCommand(ctx context.Context, name string, args ...string) command {
	return exec.CommandContext(ctx, name, args...) //nolint:gosec
}

// FFmpegMeasurer remuxes the selected streams of a source to stdout and
// counts what ffmpeg emits.
type FFmpegMeasurer struct {
	binary string
	source string
	maps   []string

	newCommand commandFactory
	stat       func(string) (os.FileInfo, error)
}

// NewFFmpegMeasurer returns a measurer for source. maps are ffmpeg stream
// specifiers (for example "0:v:0" or "0:#0x1e1"); when empty, all video and
// audio streams are remuxed.
func NewFFmpegMeasurer(binary, source string, maps []string) *FFmpegMeasurer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if len(maps) == 0 {
		maps = []string{"0:v", "0:a"}
	}
	return &FFmpegMeasurer{
		binary:     binary,
		source:     source,
		maps:       append([]string(nil), maps...),
		newCommand: execCommand,
		stat:       os.Stat,
	}
}

// Calibrate remuxes the entire source once.
func (m *FFmpegMeasurer) Calibrate(ctx context.Context) (Calibration, error) {
	info, err := m.stat(m.source)
	if err != nil {
		return Calibration{}, services.Wrap(services.ErrNotFound, "locate", "stat source", m.source, err)
	}
	frames, remuxBytes, err := m.run(ctx, m.args(0))
	if err != nil {
		return Calibration{}, err
	}
	calibration := NewCalibration(frames, info.Size(), remuxBytes)
	if err := calibration.Validate(); err != nil {
		return Calibration{}, err
	}
	return calibration, nil
}

// MeasureFrames remuxes the first frames video frames.
func (m *FFmpegMeasurer) MeasureFrames(ctx context.Context, frames int64) (int64, error) {
	if frames <= 0 {
		return 0, nil
	}
	_, size, err := m.run(ctx, m.args(frames))
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, services.Wrap(services.ErrMeasurement, "locate", "measure frames",
			fmt.Sprintf("remux of %d frames produced no output", frames), nil)
	}
	return size, nil
}

func (m *FFmpegMeasurer) args(frames int64) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", m.source}
	for _, spec := range m.maps {
		args = append(args, "-map", spec)
	}
	args = append(args, "-c", "copy")
	if frames > 0 {
		args = append(args, "-frames:v", strconv.FormatInt(frames, 10))
	}
	return append(args, "-f", "mpegts", "pipe:1")
}

// run starts ffmpeg and drains both of its output streams concurrently.
// Neither count is used until both readers finish and the process exits.
func (m *FFmpegMeasurer) run(ctx context.Context, args []string) (int64, int64, error) {
	cmd := m.newCommand(ctx, m.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "locate", "ffmpeg stdout", m.binary, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "locate", "ffmpeg stderr", m.binary, err)
	}
	if err := cmd.Start(); err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "locate", "start ffmpeg", m.binary, err)
	}

	var (
		wg        sync.WaitGroup
		byteCount int64
		copyErr   error
		frames    int64
		tail      string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		byteCount, copyErr = io.Copy(io.Discard, stdout)
	}()
	go func() {
		defer wg.Done()
		frames, tail = ParseProgress(stderr)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, 0, ctxErr
		}
		return 0, 0, services.Wrap(services.ErrExternalTool, "locate", "run ffmpeg", tail, err)
	}
	if copyErr != nil {
		return 0, 0, services.Wrap(services.ErrMeasurement, "locate", "count bytes", m.source, copyErr)
	}
	return frames, byteCount, nil
}

// ParseProgress reads ffmpeg stderr and returns the last reported frame
// count along with the final non-progress line for error reporting. Both
// newline and carriage-return terminated lines are accepted.
func ParseProgress(r io.Reader) (int64, string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLinesOrReturns)

	var (
		frames int64
		tail   string
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if match := frameProgress.FindStringSubmatch(line); match != nil {
			if n, err := strconv.ParseInt(match[1], 10, 64); err == nil {
				frames = n
			}
			continue
		}
		tail = line
	}
	// Drain whatever is left so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
	return frames, tail
}

func scanLinesOrReturns(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
