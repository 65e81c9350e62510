package collector

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/types"
)

const (
	// maxTailBytes bounds how much of each log file one cycle reads
	maxTailBytes = 1 << 20
	maxTopErrors = 5
)

// FileLogSummarizer summarizes *.log files under a directory. Each file
// is attributed to the service named by its basename (api.log -> api).
type FileLogSummarizer struct {
	dir    string
	window time.Duration
}

// NewFileLogSummarizer creates a summarizer over dir, reporting the
// given window in each summary
func NewFileLogSummarizer(dir string, window time.Duration) *FileLogSummarizer {
	return &FileLogSummarizer{dir: dir, window: window}
}

// Summarize reads the tail of every log file and aggregates line counts.
// Unreadable files are skipped so one rotated file cannot fail the cycle.
func (f *FileLogSummarizer) Summarize(ctx context.Context) (*types.LogSummary, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	summary := &types.LogSummary{
		Timestamp: time.Now(),
		Window:    f.window.String(),
		ByService: make(map[string]int),
	}
	errorCounts := make(map[string]int)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		service := strings.TrimSuffix(entry.Name(), ".log")
		path := filepath.Join(f.dir, entry.Name())
		if err := f.tally(path, service, summary, errorCounts); err != nil {
			logger := log.WithComponent("logsummary")
			logger.Warn().Err(err).
				Str("file", path).
				Msg("skipping unreadable log file")
		}
	}

	summary.TopErrors = topErrors(errorCounts)
	return summary, nil
}

// tally scans the tail of one file into the summary
func (f *FileLogSummarizer) tally(path, service string, summary *types.LogSummary, errorCounts map[string]int) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() > maxTailBytes {
		if _, err := file.Seek(-maxTailBytes, io.SeekEnd); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		line := scanner.Text()
		summary.TotalLines++
		summary.ByService[service]++

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error"):
			summary.ErrorCount++
			errorCounts[truncate(line, 200)]++
		case strings.Contains(lower, "warn"):
			summary.WarnCount++
		}
	}
	return scanner.Err()
}

// topErrors returns the most frequent error lines, most frequent first
func topErrors(counts map[string]int) []string {
	lines := make([]string, 0, len(counts))
	for line := range counts {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if counts[lines[i]] != counts[lines[j]] {
			return counts[lines[i]] > counts[lines[j]]
		}
		return lines[i] < lines[j]
	})
	if len(lines) > maxTopErrors {
		lines = lines[:maxTopErrors]
	}
	return lines
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
