package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestSummarizeCountsPerService(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "api.log",
		"2026-09-01 INFO started\n"+
			"2026-09-01 ERROR connection refused\n"+
			"2026-09-01 WARN slow query\n"+
			"2026-09-01 ERROR connection refused\n")
	writeLog(t, dir, "worker.log",
		"2026-09-01 INFO polling\n")
	writeLog(t, dir, "notes.txt", "ERROR not a log file\n")

	s := NewFileLogSummarizer(dir, 10*time.Minute)
	summary, err := s.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalLines)
	assert.Equal(t, int64(2), summary.ErrorCount)
	assert.Equal(t, int64(1), summary.WarnCount)
	assert.Equal(t, 4, summary.ByService["api"])
	assert.Equal(t, 1, summary.ByService["worker"])
	assert.NotContains(t, summary.ByService, "notes")
	assert.Equal(t, "10m0s", summary.Window)
}

func TestSummarizeTopErrorsOrderedByFrequency(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "api.log",
		"ERROR timeout\n"+
			"ERROR timeout\n"+
			"ERROR timeout\n"+
			"ERROR disk full\n")

	s := NewFileLogSummarizer(dir, time.Minute)
	summary, err := s.Summarize(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.TopErrors, 2)
	assert.Equal(t, "ERROR timeout", summary.TopErrors[0])
	assert.Equal(t, "ERROR disk full", summary.TopErrors[1])
}

func TestSummarizeEmptyDirectory(t *testing.T) {
	s := NewFileLogSummarizer(t.TempDir(), time.Minute)
	summary, err := s.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalLines)
	assert.Empty(t, summary.TopErrors)
}

func TestSummarizeMissingDirectory(t *testing.T) {
	s := NewFileLogSummarizer(filepath.Join(t.TempDir(), "absent"), time.Minute)
	_, err := s.Summarize(context.Background())
	assert.Error(t, err)
}
