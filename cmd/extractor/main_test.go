package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finextract/internal/config"
	"finextract/internal/shared/testutil"
	"finextract/pkg/contracts"
	"finextract/pkg/contracts/domain"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.ConfigFileEnv, "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a_statements.xlsx", testutil.XLSXBytes(t, testutil.HorizontalStatement()))
	testutil.WriteFile(t, dir, "b_summary.xlsx", testutil.XLSXBytes(t, testutil.VerticalStatement()))
	testutil.WriteFile(t, dir, "~$a_statements.xlsx", []byte("lock"))
	return dir
}

func TestRun_DirectoryToJSON(t *testing.T) {
	dir := writeFixtures(t)

	code, stdout, stderr := runCLI(t, "-report", dir)
	require.Equal(t, exitOK, code, stderr)

	var records []domain.YearRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 4)
	assert.Equal(t, "2019", records[0].Year)
	assert.Equal(t, "2022", records[3].Year)
	assert.Equal(t, 1200.0, records[3].Revenue)

	assert.Contains(t, stderr, "a_statements.xlsx\t利润表\thorizontal")
	assert.Contains(t, stderr, "b_summary.xlsx\t摘要\tvertical")
	assert.Contains(t, stderr, "2 file(s), 2 sheet(s), 4 year(s)")
}

func TestRun_OutputFile(t *testing.T) {
	dir := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "reports", "financials.csv")

	code, stdout, stderr := runCLI(t, "-out", out, filepath.Join(dir, "a_statements.xlsx"))
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "2021,1000,120,5000,0,"), lines[1])
	assert.Contains(t, stderr, "Output written")
}

func TestRun_ExplicitFormatWins(t *testing.T) {
	dir := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := runCLI(t, "-format", "json", "-out", out, filepath.Join(dir, "*.xlsx"))
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestRun_Errors(t *testing.T) {
	dir := writeFixtures(t)
	broken := testutil.WriteFile(t, t.TempDir(), "broken.xlsx", []byte("not a workbook"))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no inputs", nil, exitUsage, "no input files"},
		{"bad flag", []string{"-nope"}, exitUsage, "flag provided but not defined"},
		{"bad format", []string{"-format", "pdf", dir}, exitUsage, "unsupported export format"},
		{"missing path", []string{filepath.Join(dir, "absent.xlsx")}, exitError, "Failed to resolve inputs"},
		{"unreadable file", []string{dir, broken}, exitError, "broken.xlsx"},
		{"bad encoding", []string{"-encoding", "latin1", dir}, exitUsage, "invalid csv encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_EmptyDirectory(t *testing.T) {
	code, stdout, stderr := runCLI(t, t.TempDir())
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[]\n", stdout)
	assert.NotContains(t, stderr, "Extraction failed")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, contracts.GetVersionString())
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		opts options
		want string
	}{
		{options{}, "json"},
		{options{out: "x.XLSX"}, "xlsx"},
		{options{out: "x.txt"}, "json"},
		{options{out: "x.csv", format: "xlsx"}, "xlsx"},
	}
	for _, tt := range tests {
		got, err := tt.opts.outputFormat()
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}
