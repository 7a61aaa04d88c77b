package core

import "github.com/google/uuid"

// RunID identifies one scan run in logs and reports.
type RunID string

// NewRunID creates a time-ordered run identifier. UUID v7 keeps run ids
// sortable in log output; falls back to v4 if v7 generation fails.
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

func (id RunID) String() string { return string(id) }
