package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerkv/internal/ledger"
)

func TestLoad(t *testing.T) {
	s, err := Load("testdata/scripts/escrow.yaml")
	require.NoError(t, err)

	assert.Equal(t, "escrow", s.Name)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, OpAddObligation, s.Steps[0].Op)
	assert.Equal(t, Args{Debtor: "alice", Creditor: "bob", Amount: 100}, s.Steps[0].Args)
	assert.Equal(t, ledger.CodeNotFound, s.Steps[3].ExpectError)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "steps: [{op: get_claim}]",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			yaml:    "name: empty",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\nsteps: [{op: delete_claim}]",
			wantErr: `unknown op "delete_claim"`,
		},
		{
			name:    "missing op",
			yaml:    "name: x\nsteps: [{args: {id: 1}}]",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown field",
			yaml:    "name: x\nsteps: [{op: get_claim, expect_eror: NOT_FOUND}]",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown arg",
			yaml:    "name: x\nsteps: [{op: get_claim, args: {claim_id: 1}}]",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "both expectations",
			yaml:    "name: x\nsteps: [{op: get_claim, expect: {id: 1}, expect_error: NOT_FOUND}]",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown error code",
			yaml:    "name: x\nsteps: [{op: get_claim, expect_error: GONE}]",
			wantErr: `unknown error code "GONE"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
