// Package input expands list flag values: comma separated entries, - (stdin)
// and @file, one entry per line.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ExpandList expands values into a flat list of trimmed, non-empty entries.
// Plain values are split on commas. "-" reads stdin at most once; a second
// "-" is an error. "@path" reads the named file.
func ExpandList(values []string, stdin io.Reader) ([]string, error) {
	var result []string
	stdinUsed := false
	for _, v := range values {
		switch {
		case v == "-":
			if stdinUsed {
				return nil, fmt.Errorf("stdin already used")
			}
			stdinUsed = true
			result = append(result, ReadLinesFromReader(stdin)...)
		case strings.HasPrefix(v, "@"):
			path := strings.TrimPrefix(v, "@")
			file, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			result = append(result, ReadLinesFromReader(file)...)
			file.Close()
		default:
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					result = append(result, part)
				}
			}
		}
	}
	return result, nil
}

// ReadLinesFromReader reads non-empty lines from a reader.
func ReadLinesFromReader(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
