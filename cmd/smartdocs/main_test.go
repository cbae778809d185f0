package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-docs/internal/config"
	"smart-docs/internal/source"
	"smart-docs/internal/summary"
)

func testConfig() config.Config {
	return config.Config{
		LogLevel:             "error",
		MaxUploadSize:        1 << 20,
		RepoProvider:         "stub",
		SummaryProvider:      "stub",
		SummaryTimeout:       5 * time.Second,
		MaxSummaryInputChars: 10000,
		OversizePolicy:       "reject",
		CacheProvider:        "none",
		CacheTTL:             60,
		StoreProvider:        "memory",
		QueueProvider:        "none",
		Theme:                "plain",
	}
}

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSummarizeFileMarkdown(t *testing.T) {
	path := writeFile(t, "notes.md", "# Notes\n\nSome text.")

	out, err := execute(t, testConfig(), "summarize", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# AI Analysis Summary")
	assert.Contains(t, out, "_Source: notes.md (file, 19 bytes)_")
	assert.Contains(t, out, summary.DefaultPayload().Summary)
}

func TestSummarizeRepositoryJSON(t *testing.T) {
	out, err := execute(t, testConfig(), "summarize", "--repo", "https://github.com/foo/bar", "--format", "json")
	require.NoError(t, err)

	var got summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "https://github.com/foo/bar", got.OriginLabel)
	assert.EqualValues(t, len(source.SampleReadme), got.SizeBytes)
	assert.Equal(t, summary.DefaultPayload().KeyPoints, got.Summary.KeyPoints)
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no source",
			args:    []string{"summarize"},
			wantErr: "at least one of the flags",
		},
		{
			name:    "both sources",
			args:    []string{"summarize", "--file", "a.md", "--repo", "github.com/foo/bar"},
			wantErr: "none of the others can be",
		},
		{
			name:    "unsupported file",
			args:    []string{"summarize", "--file", writeFile(t, "report.pdf", "%PDF")},
			wantErr: "Unsupported file type",
		},
		{
			name:    "invalid repository",
			args:    []string{"summarize", "--repo", "not-a-link"},
			wantErr: "Please enter a valid GitHub repository URL",
		},
		{
			name:    "unknown format",
			args:    []string{"summarize", "--repo", "github.com/foo/bar", "--format", "xml"},
			wantErr: `unknown format "xml"`,
		},
		{
			name:    "unknown theme",
			args:    []string{"summarize", "--repo", "github.com/foo/bar", "--theme", "neon"},
			wantErr: `unknown theme "neon"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, testConfig(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSummarizeTooLargeForProvider(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSummaryInputChars = 5
	path := writeFile(t, "notes.txt", "far more than five characters")

	_, err := execute(t, cfg, "summarize", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestFetch(t *testing.T) {
	out, err := execute(t, testConfig(), "fetch", "--repo", "github.com/foo/bar")
	require.NoError(t, err)
	assert.Equal(t, source.SampleReadme+"\n", out)

	_, err = execute(t, testConfig(), "fetch")
	assert.Error(t, err)
}

func TestHistoryAcrossRuns(t *testing.T) {
	cfg := testConfig()
	cfg.StoreProvider = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, cfg, "history")
	require.NoError(t, err)
	assert.Equal(t, "no documents yet\n", out)

	out, err = execute(t, cfg, "summarize", "--repo", "github.com/foo/bar", "--format", "json")
	require.NoError(t, err)
	var summarized summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &summarized))

	out, err = execute(t, cfg, "history", "--limit", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], summarized.DocumentID)
	assert.Contains(t, lines[1], "github.com/foo/bar")
	assert.True(t, strings.HasSuffix(lines[1], "yes"))

	out, err = execute(t, cfg, "history", summarized.DocumentID)
	require.NoError(t, err)
	var stored summaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, summarized, stored)

	_, err = execute(t, cfg, "history", "not-a-uuid")
	assert.Error(t, err)
}

func TestCachePurge(t *testing.T) {
	out, err := execute(t, testConfig(), "cache", "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 cache entries\n", out)

	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.CacheProvider = "redis"
	cfg.RedisAddr = mr.Addr()

	_, err = execute(t, cfg, "summarize", "--repo", "github.com/foo/bar", "--format", "json")
	require.NoError(t, err)

	// One README and one summary.
	out, err = execute(t, cfg, "cache", "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged 2 cache entries\n", out)

	out, err = execute(t, cfg, "cache", "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 cache entries\n", out)
}
