package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lift/internal/loader"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E001", "check failed", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "check failed", resp.Error.Message)
}

func TestOutputFormatter_Refused(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Refused(map[string]string{"decision": "abort"}, ErrCodeDestructive, "aborted"))

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
		Error  *CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "abort", resp.Data["decision"])
	assert.Equal(t, ErrCodeDestructive, resp.Error.Code)

	text := &bytes.Buffer{}
	formatter = &OutputFormatter{Format: "text", Writer: text}
	require.NoError(t, formatter.Refused(nil, ErrCodeDestructive, "aborted"))
	assert.Empty(t, text.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E201", "unknown dialect", "oracle"))
	assert.Equal(t, "Error [E201]: unknown dialect\nDetails: oracle\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("loaded %d file(s)", 2)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 2 file(s)\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.NotContains(t, errOut.String(), "hidden")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "gate", errors.New("inner")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: gate: inner", wrapped.Error())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, loader.ErrCodeDialect, errorCode(fmt.Errorf("x: %w", &loader.LoadError{Code: loader.ErrCodeDialect})))
	assert.Equal(t, ErrCodeGeneric, errorCode(errors.New("other")))
}
