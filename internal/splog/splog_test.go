package splog_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/splitarg/internal/splog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		want        splog.Level
		expectError bool
	}{
		"error":         {input: "error", want: splog.LevelError},
		"warn":          {input: "warn", want: splog.LevelWarn},
		"warning alias": {input: "warning", want: splog.LevelWarn},
		"info":          {input: "info", want: splog.LevelInfo},
		"debug":         {input: "debug", want: splog.LevelDebug},
		"case insensitive": {
			input: "INFO",
			want:  splog.LevelInfo,
		},
		"unknown": {
			input:       "verbose",
			want:        "",
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := splog.ParseLevel(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, splog.ErrUnknownLogLevel)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		want        splog.Format
		expectError bool
	}{
		"json":   {input: "json", want: splog.FormatJSON},
		"logfmt": {input: "logfmt", want: splog.FormatLogfmt},
		"text":   {input: "text", want: splog.FormatText},
		"unknown": {
			input:       "xml",
			want:        "",
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := splog.ParseFormat(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, splog.ErrUnknownLogFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler, err := splog.NewHandlerFromStrings(&buf, "info", "json")
	require.NoError(t, err)

	slog.New(handler).Info("hello", slog.String("k", "v"))

	var entry map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewHandlerFromStringsRejectsBadInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	_, err := splog.NewHandlerFromStrings(&buf, "loud", "json")
	require.ErrorIs(t, err, splog.ErrInvalidArgument)

	_, err = splog.NewHandlerFromStrings(&buf, "info", "xml")
	require.ErrorIs(t, err, splog.ErrInvalidArgument)
}

func TestLogSplitError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(splog.NewHandler(&buf, splog.LevelInfo, splog.FormatJSON))
	splog.LogSplitError(logger, splitKind("missing-required"), "--env", "end of input")

	var entry map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "missing-required", entry["kind"])
	assert.Equal(t, "--env", entry["option"])
}

type splitKind string

func (k splitKind) String() string { return string(k) }
