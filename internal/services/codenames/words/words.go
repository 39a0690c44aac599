// Package words provides the word corpus boards are dealt from.
package words

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed default_words.txt
var defaultWords string

// Default returns the embedded corpus in file order.
func Default() []string {
	values, _ := Parse(strings.NewReader(defaultWords))
	return values
}

// LoadFile reads a corpus file with one word per line.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open words file: %w", err)
	}
	defer f.Close()
	values, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read words file %s: %w", path, err)
	}
	return values, nil
}

// Parse reads one word per line. Blank lines and lines starting with # are
// skipped, and repeated words are kept once.
func Parse(r io.Reader) ([]string, error) {
	var values []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
