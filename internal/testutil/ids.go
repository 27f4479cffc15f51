package testutil

// FixedTraceIDs returns the same trace id every time.
//
// The CLI stamps every response with a trace id; pinning it lets JSON
// output be compared against golden files.
type FixedTraceIDs struct {
	id string
}

// NewFixedTraceIDs creates a generator for id. An empty id becomes
// "test-trace-default".
func NewFixedTraceIDs(id string) *FixedTraceIDs {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedTraceIDs) Generate() string {
	return g.id
}
