package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-tone-inspector/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrayPNG(t *testing.T, dir, name string, level uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTonesCmd(t *testing.T) {
	out, err := execute(t, "tones")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, out, "high-key long tone")
	assert.Contains(t, out, "full long tone")
}

func TestAnalyzeCmd(t *testing.T) {
	dir := t.TempDir()
	bright := writeGrayPNG(t, dir, "bright.png", 240)
	dark := writeGrayPNG(t, dir, "dark.png", 10)

	out, err := execute(t, "analyze", "--compact", bright, dark)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var first, second fileResult
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, bright, first.File)
	assert.Equal(t, "png", first.Format)
	require.NotNil(t, first.Result)
	assert.Equal(t, "high-key short tone", first.Result.ToneAnalysis.Type)

	require.NotNil(t, second.Result)
	assert.Equal(t, "low-key short tone", second.Result.ToneAnalysis.Type)
}

func TestAnalyzeCmd_ReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeGrayPNG(t, dir, "mid.png", 128)
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("plain text"), 0o600))

	out, err := execute(t, "analyze", "--compact", good, bad, filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files")

	dec := json.NewDecoder(strings.NewReader(out))
	var results []fileResult
	for dec.More() {
		var r fileResult
		require.NoError(t, dec.Decode(&r))
		results = append(results, r)
	}
	require.Len(t, results, 3)
	assert.NotNil(t, results[0].Result)
	assert.NotEmpty(t, results[1].Error)
	assert.NotEmpty(t, results[2].Error)
}

func TestAnalyzeCmd_RequiresFiles(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.Error(t, err)
}
