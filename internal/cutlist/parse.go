package cutlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tvcut/internal/services"
)

// DefaultComskipFPS is the frame rate assumed for Comskip frame lists that
// carry no "FRAMES AT" header.
const DefaultComskipFPS = 29.97

// Format names a cutlist file format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatComskip Format = "comskip"
	FormatEDL     Format = "edl"
	FormatSeconds Format = "seconds"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatComskip, FormatEDL, FormatSeconds:
		return f, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "cutlist", "parse format",
			fmt.Sprintf("unsupported cutlist format %q", value), nil)
	}
}

var (
	comskipHeader = regexp.MustCompile(`FRAMES AT\s+(\d+)`)
	framePair     = regexp.MustCompile(`^(\d+)\s+(\d+)\s*$`)
)

// ParseComskip reads a Comskip frame list. Each "start end" line is a pair of
// frame numbers converted to seconds with fps, unless the file's
// "FRAMES AT <n>" header (frame rate times 100) says otherwise.
func ParseComskip(r io.Reader, fps float64) ([]Interval, error) {
	if fps <= 0 {
		fps = DefaultComskipFPS
	}
	var cuts []Interval
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if match := comskipHeader.FindStringSubmatch(line); match != nil {
			if rate, err := strconv.ParseFloat(match[1], 64); err == nil && rate > 0 {
				fps = rate / 100
			}
			continue
		}
		match := framePair.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		start, errS := strconv.ParseInt(match[1], 10, 64)
		end, errE := strconv.ParseInt(match[2], 10, 64)
		if errS != nil || errE != nil {
			return nil, fmt.Errorf("%w: comskip line %d: %q", ErrInvalidInterval, lineNo, line)
		}
		cuts = append(cuts, Interval{Start: float64(start) / fps, End: float64(end) / fps})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read comskip cutlist: %w", err)
	}
	return cuts, nil
}

// ParseEDL reads an MPlayer edit decision list ("start end action" in
// seconds). Actions 0 (cut) and 3 (commercial break) become remove
// intervals; mute and scene markers are ignored.
func ParseEDL(r io.Reader) ([]Interval, error) {
	var cuts []Interval
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: edl line %d: expected start and end", ErrInvalidInterval, lineNo)
		}
		start, errS := strconv.ParseFloat(fields[0], 64)
		end, errE := strconv.ParseFloat(fields[1], 64)
		if errS != nil || errE != nil {
			return nil, fmt.Errorf("%w: edl line %d: %q", ErrInvalidInterval, lineNo, scanner.Text())
		}
		action := 0
		if len(fields) > 2 {
			parsed, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%w: edl line %d: action %q", ErrInvalidInterval, lineNo, fields[2])
			}
			action = parsed
		}
		if action != 0 && action != 3 {
			continue
		}
		cuts = append(cuts, Interval{Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edl cutlist: %w", err)
	}
	return cuts, nil
}

// ParseSeconds reads one "start end" pair of seconds per line. Blank lines
// and lines starting with # are skipped.
func ParseSeconds(r io.Reader) ([]Interval, error) {
	var cuts []Interval
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected start and end, got %q", ErrInvalidInterval, lineNo, line)
		}
		start, errS := strconv.ParseFloat(fields[0], 64)
		end, errE := strconv.ParseFloat(fields[1], 64)
		if errS != nil || errE != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidInterval, lineNo, line)
		}
		cuts = append(cuts, Interval{Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cutlist: %w", err)
	}
	return cuts, nil
}

// Load reads a cutlist file. FormatAuto picks EDL for .edl files, Comskip
// for .txt files, and plain seconds otherwise. fps only applies to Comskip
// frame lists.
func Load(path string, format Format, fps float64) ([]Interval, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "cutlist", "open", path, err)
	}
	defer file.Close()

	if format == FormatAuto || format == "" {
		format = detectFormat(path)
	}
	switch format {
	case FormatComskip:
		return ParseComskip(file, fps)
	case FormatEDL:
		return ParseEDL(file)
	default:
		return ParseSeconds(file)
	}
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".edl":
		return FormatEDL
	case ".txt":
		return FormatComskip
	default:
		return FormatSeconds
	}
}
