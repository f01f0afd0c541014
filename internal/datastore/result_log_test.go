package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/trufflex/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T, appendMode bool) (*ResultLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.txt")
	cfg := config.OutputConfig{ResultsFile: path, AppendResults: appendMode}
	log, err := NewResultLog(cfg, zerolog.Nop())
	require.NoError(t, err)
	return log, path
}

func TestResultLog_AppendNormalizesTrailingNewlines(t *testing.T) {
	log, path := newTestLog(t, false)

	require.NoError(t, log.Append([]byte(`{"DetectorName":"AWS"}`+"\n\n")))
	require.NoError(t, log.Append([]byte(`{"DetectorName":"Github"}`)))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"DetectorName":"AWS"}`+"\n"+`{"DetectorName":"Github"}`+"\n", string(content))
	assert.Equal(t, 2, log.LinesAppended())
}

func TestResultLog_AppendPreservesInteriorLines(t *testing.T) {
	log, path := newTestLog(t, false)

	require.NoError(t, log.Append([]byte("{\"a\":1}\n{\"b\":2}\n{\"c\":3}\n")))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n{\"c\":3}\n", string(content))
	assert.Equal(t, 3, log.LinesAppended())
}

func TestResultLog_EmptyOutputIsNoOp(t *testing.T) {
	log, path := newTestLog(t, false)

	require.NoError(t, log.Append(nil))
	require.NoError(t, log.Append([]byte("  \n\t\n")))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(content))
	assert.Zero(t, log.LinesAppended())
}

func TestResultLog_NewRunTruncatesByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("{\"stale\":true}\n"), 0644))

	cfg := config.OutputConfig{ResultsFile: path}
	log, err := NewResultLog(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, log.Append([]byte(`{"fresh":true}`)))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"fresh\":true}\n", string(content))
}

func TestResultLog_AppendModePreservesPriorRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("{\"prior\":true}\n"), 0644))

	cfg := config.OutputConfig{ResultsFile: path, AppendResults: true}
	log, err := NewResultLog(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, log.Append([]byte(`{"fresh":true}`)))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"prior\":true}\n{\"fresh\":true}\n", string(content))
}

func TestResultLog_SyncAfterEachTarget(t *testing.T) {
	log, path := newTestLog(t, false)
	defer log.Close()

	require.NoError(t, log.Append([]byte(`{"target":1}`)))
	require.NoError(t, log.Sync())

	// Contents must be visible on disk before the handle is closed.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"target\":1}\n", string(content))
}

func TestForEachLine_StreamsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("{\"n\":1}\n{\"n\":2}\nno-newline-tail"), 0644))

	var lines []string
	var nums []int
	err := ForEachLine(path, func(lineNum int, line []byte) error {
		nums = append(nums, lineNum)
		lines = append(lines, string(line))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, nums)
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`, "no-newline-tail"}, lines)
}

func TestForEachLine_MissingFile(t *testing.T) {
	err := ForEachLine(filepath.Join(t.TempDir(), "absent.txt"), func(int, []byte) error { return nil })
	assert.Error(t, err)
}

func TestForEachLine_CallbackErrorStopsIteration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("{\"n\":1}\n{\"n\":2}\n"), 0644))

	calls := 0
	err := ForEachLine(path, func(lineNum int, line []byte) error {
		calls++
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}
