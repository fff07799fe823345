package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f or pipe JSON")

// FileReader decodes one JSON document of type T from the --file flag, or
// from stdin when the flag is empty or "-".
type FileReader[T any] struct {
	path string

	// Stdin overrides os.Stdin.
	Stdin io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file, or - for stdin (the default)",
		Destination: &fr.path,
	}
}

// Read decodes the input. Trailing data after the document is an error.
func (fr *FileReader[T]) Read() (T, error) {
	var out T

	r, name, closeFn, err := fr.open()
	if err != nil {
		return out, err
	}
	defer closeFn()

	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode %s: %w", name, err)
	}
	if dec.More() {
		return out, fmt.Errorf("decode %s: unexpected data after JSON document", name)
	}
	return out, nil
}

func (fr *FileReader[T]) open() (io.Reader, string, func(), error) {
	if fr.path != "" && fr.path != "-" {
		f, err := os.Open(fr.path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open input: %w", err)
		}
		return f, fr.path, func() { _ = f.Close() }, nil
	}

	r := fr.Stdin
	if r == nil {
		r = os.Stdin
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, "", nil, ErrNoInput
	}
	return r, "stdin", func() {}, nil
}
