package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]int{"a": 1}))
	require.NoError(t, WriteLine(&buf, map[string]int{"b": 2}))
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"ch": make(chan int)}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "boom", map[string]any{"id": "x"}))
	assert.JSONEq(t, `{"message":"boom","data":{"id":"x"}}`, buf.String())
}

func TestFileReader(t *testing.T) {
	type doc struct {
		Text string `json:"text"`
	}

	t.Run("stdin", func(t *testing.T) {
		fr := &FileReader[[]doc]{Stdin: strings.NewReader(`[{"text":"milk"}]`)}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Equal(t, []doc{{Text: "milk"}}, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"text":"eggs"}]`), 0o644))

		fr := &FileReader[[]doc]{path: path}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Equal(t, []doc{{Text: "eggs"}}, got)
	})

	t.Run("bad json", func(t *testing.T) {
		fr := &FileReader[[]doc]{Stdin: strings.NewReader(`{`)}
		_, err := fr.Read()
		assert.ErrorContains(t, err, "decode stdin")
	})

	t.Run("dash reads stdin", func(t *testing.T) {
		fr := &FileReader[[]doc]{path: "-", Stdin: strings.NewReader(`[]`)}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("trailing data", func(t *testing.T) {
		fr := &FileReader[[]doc]{Stdin: strings.NewReader(`[] [{"text":"again"}]`)}
		_, err := fr.Read()
		assert.ErrorContains(t, err, "unexpected data")
	})

	t.Run("missing file", func(t *testing.T) {
		fr := &FileReader[[]doc]{path: filepath.Join(t.TempDir(), "nope.json")}
		_, err := fr.Read()
		assert.ErrorContains(t, err, "open input")
	})
}
