package script

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden form of a script run.
type Snapshot struct {
	Script string `json:"script"`
	*Result
}

// AssertGolden compares result against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/script -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := json.MarshalIndent(Snapshot{Script: name, Result: result}, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
