package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "json",
		Writer:  buf,
		TraceID: "trace-1",
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "claim with id=3 was not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "claim with id=3 was not found", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "claim with id=3 was not found", errorDetails{Kind: "claim", ID: 3})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"details":{"kind":"claim","id":3}`)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(claimView{ID: 3, PolicyID: 2, ClaimAmount: 300, ClaimDate: 9})
	require.NoError(t, err)
	assert.Equal(t, "claim 3 on policy 2: 300 (claim_date=9)\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("INVALID_INPUT", "escrow amount must be greater than 0", errorDetails{Kind: "escrow"})
	require.NoError(t, err)
	assert.Equal(t, "Error [INVALID_INPUT]: escrow amount must be greater than 0\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("NOT_FOUND", "policy with id=4 was not found", errorDetails{Kind: "policy", ID: 4})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [NOT_FOUND]")
	assert.Contains(t, buf.String(), "Details: kind=policy id=4")
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open database", cause)

	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}

func TestParseID(t *testing.T) {
	id, err := parseID("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), id)

	for _, bad := range []string{"", "-1", "abc", "1.5", "18446744073709551616"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}

func TestListView(t *testing.T) {
	assert.Equal(t, "(none)", listView[obligationView]{}.String())

	l := listView[obligationView]{
		{ID: 1, Debtor: "a", Creditor: "b", Amount: 2, CreatedAt: 3},
		{ID: 4, Debtor: "c", Creditor: "d", Amount: 5, CreatedAt: 6},
	}
	assert.Equal(t,
		"obligation 1: a owes b 2 (created_at=3)\nobligation 4: c owes d 5 (created_at=6)",
		l.String())

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":1,"debtor":"a","creditor":"b","amount":2,"created_at":3},{"id":4,"debtor":"c","creditor":"d","amount":5,"created_at":6}]`,
		string(data))
}
