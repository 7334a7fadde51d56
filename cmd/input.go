package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Input is one expression of a batch, with where it was read from
type Input struct {
	Label string
	Text  string
}

// readInputs collects expressions from args, else from files, else from stdin.
// In files, blank lines and lines starting with # are skipped.
func readInputs(args, files []string, stdin io.Reader) ([]Input, error) {
	if len(args) > 0 {
		inputs := make([]Input, len(args))
		for i, arg := range args {
			inputs[i] = Input{Label: fmt.Sprintf("arg %d", i+1), Text: arg}
		}
		return inputs, nil
	}
	if len(files) == 0 {
		return readLines("stdin", stdin)
	}

	var inputs []Input
	for _, path := range files {
		if path == "-" {
			lines, err := readLines("stdin", stdin)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, lines...)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "could not open input")
		}
		lines, err := readLines(path, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, lines...)
	}
	return inputs, nil
}

func readLines(name string, r io.Reader) ([]Input, error) {
	var inputs []Input
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		inputs = append(inputs, Input{Label: fmt.Sprintf("%s:%d", name, line), Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return inputs, nil
}
