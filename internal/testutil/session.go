package testutil

// FixedSessionGenerator returns the same session ID every time.
//
// Unlike engine.FixedGenerator, which hands out IDs in sequence, this
// generator never runs out, so a scenario that opens several sessions
// still records every call under one ID.
//
// FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a fixed session generator.
//
// The ID is typically set in the scenario YAML:
//
//	session: "test-session-001"
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
// Implements engine.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
