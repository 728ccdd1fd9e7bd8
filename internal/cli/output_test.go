package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(ExpandResult{Document: "{ posts { id } }"}))

	var resp struct {
		Status string       `json:"status"`
		Data   ExpandResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "{ posts { id } }", resp.Data.Document)
	assert.NotContains(t, buf.String(), "fingerprint", "empty fingerprint omitted")
}

func TestOutputFormatter_TextSuccessUsesWriteText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(CacheStatus{Path: "c.db", Entries: 2}))
	assert.Equal(t, "c.db: 2 cached expansion(s)\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success(CacheStatus{Path: "c.db", Cleared: true}))
	assert.Equal(t, "✓ Cleared cache c.db\n", buf.String())
}

func TestOutputFormatter_TextSuccessPlainValue(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("All entities valid"))
	assert.Equal(t, "All entities valid\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeQueryParse, "unexpected }", map[string]int{"line": 1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeQueryParse, resp.Error.Code)
	assert.Equal(t, "unexpected }", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(ErrCodeExpandFailed, "malformed selection", "author { }"))
			assert.Contains(t, buf.String(), "Error [E203]: malformed selection")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: author { }")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_FailureJSONCarriesPayload(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	result := TestResult{
		Scenarios: []ScenarioResult{{Name: "blog", Errors: []string{"step 0: boom"}}},
		Failed:    1,
		Total:     1,
	}
	require.NoError(t, formatter.Failure(ErrCodeScenarioFailed, "1 scenario(s) failed", result))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
}

func TestOutputFormatter_FailureTextFallsBackToError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Failure(ErrCodeCache, "store closed", struct{}{}))
	assert.Equal(t, "Error [E204]: store closed\n", buf.String())
}

func TestOutputIssues(t *testing.T) {
	issues := []ValidationIssue{
		{Code: ErrCodeFieldDecl, Message: "field name is required", File: "blog.cue", Line: 7},
		{Code: ErrCodeEntityDecl, Message: "at least one field is required"},
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := outputIssues(&OutputFormatter{Format: "text", Writer: buf}, "Validation failed", ExitFailure, 1, issues)

		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "Validation failed with 2 error(s)")
		assert.Contains(t, buf.String(), "✗ Validation failed")
		assert.Contains(t, buf.String(), "blog.cue:7\n  E111: field name is required")
		assert.Contains(t, buf.String(), "  E110: at least one field is required")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := outputIssues(&OutputFormatter{Format: "json", Writer: buf}, "Compilation failed", ExitCommandError, 1, issues)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		var resp struct {
			Status string           `json:"status"`
			Data   ValidationResult `json:"data"`
			Error  *CLIError        `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.False(t, resp.Data.Valid)
		assert.Equal(t, 1, resp.Data.Entities)
		assert.Len(t, resp.Data.Errors, 2)
		assert.Equal(t, ErrCodeFieldDecl, resp.Error.Code)
		assert.NotContains(t, buf.String(), "Compilation failed", "title is text-only")
	})
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tt.verbose}

			formatter.VerboseLog("Loaded %d entit(ies)", 3)

			assert.Empty(t, out.String(), "diagnostics never reach stdout")
			if tt.wantLog {
				assert.Equal(t, "Loaded 3 entit(ies)\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestOutputFormatter_DiagnosticsFallsBackToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	assert.Same(t, buf, formatter.Diagnostics())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := WrapExitError(ExitFailure, "reading cache", errors.New("disk"))
	assert.Equal(t, "reading cache: disk", wrapped.Error())
	assert.Equal(t, "disk", errors.Unwrap(wrapped).Error())
}
