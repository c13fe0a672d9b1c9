package captions

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"tvcut/internal/timecode"
)

var timingLine = regexp.MustCompile(`^\s*(\d+:\d\d:\d\d(?:[,.]\d+)?)\s*-+>\s*(\d+:\d\d:\d\d(?:[,.]\d+)?)`)

// ParseSRT reads SubRip captions. Timestamps may use a comma or a period
// before a fraction of any width, and the arrow may carry extra dashes.
// Blocks without a timing line are skipped. Missing or non-numeric indices
// are replaced with the entry's position.
func ParseSRT(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		entries []Entry
		block   []string
		lineNo  int
	)
	flush := func() error {
		defer func() { block = block[:0] }()
		timingAt := -1
		for i, line := range block {
			if timingLine.MatchString(line) {
				timingAt = i
				break
			}
		}
		if timingAt < 0 {
			return nil
		}
		match := timingLine.FindStringSubmatch(block[timingAt])
		start, err := timecode.Parse(match[1])
		if err != nil {
			return fmt.Errorf("srt line %d: %w", lineNo, err)
		}
		end, err := timecode.Parse(match[2])
		if err != nil {
			return fmt.Errorf("srt line %d: %w", lineNo, err)
		}
		index := len(entries) + 1
		if timingAt > 0 {
			if parsed, err := strconv.Atoi(strings.TrimSpace(block[timingAt-1])); err == nil {
				index = parsed
			}
		}
		entries = append(entries, Entry{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(block[timingAt+1:], "\n"),
		})
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteSRT writes corrected captions in SubRip format, preserving indices.
func WriteSRT(w io.Writer, entries []Corrected) error {
	bw := bufio.NewWriter(w)
	for i, entry := range entries {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n", entry.Index, FormatTimestamp(entry.Start), FormatTimestamp(entry.End)); err != nil {
			return err
		}
		if entry.Text != "" {
			if _, err := bw.WriteString(entry.Text + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	return timecode.SRT(seconds)
}
