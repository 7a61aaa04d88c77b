package core

import "fmt"

// SequenceModulus is the size of the scanner counter domain. Record ids and
// sequence positions both live in [0, SequenceModulus).
const SequenceModulus = 1_000_000

// Identifier is a scanner-assigned record id, reduced modulo SequenceModulus
// before any sequence work is done on it.
type Identifier int

// Reduce maps an arbitrary stored record id into the sequence domain.
func (id Identifier) Reduce() Identifier {
	r := id % SequenceModulus
	if r < 0 {
		r += SequenceModulus
	}
	return r
}

// SequencePosition is the chronological index at which a scanner would emit a
// given Identifier, i.e. the true scan-order slot within its counter cycle.
type SequencePosition int

// ScannerModel names the tabulator family that produced a batch.
type ScannerModel string

const (
	ModelUnknown            ScannerModel = ""
	ModelImagecastPrecinct  ScannerModel = "ImagecastPrecinct"
	ModelImagecastEvolution ScannerModel = "ImagecastEvolution"
)

// Known reports whether m is one of the two modeled scanner families.
func (m ScannerModel) Known() bool {
	return m == ModelImagecastPrecinct || m == ModelImagecastEvolution
}

// ParseScannerModel validates an explicitly requested model name. The empty
// string means unknown and is accepted; anything else must be one of the two
// recognized families.
func ParseScannerModel(s string) (ScannerModel, error) {
	switch ScannerModel(s) {
	case ModelUnknown, ModelImagecastPrecinct, ModelImagecastEvolution:
		return ScannerModel(s), nil
	}
	return ModelUnknown, fmt.Errorf("%w: %q", ErrUnsupportedModel, s)
}

// BatchKey identifies one physical batch of ballots scanned together.
// Model is ModelUnknown when the source format does not report tabulator
// types (the CSV and ballot-image formats do not).
type BatchKey struct {
	Tabulator int
	Batch     int
	Model     ScannerModel
}

func (k BatchKey) String() string {
	if k.Model == ModelUnknown {
		return fmt.Sprintf("tabulator %d batch %d", k.Tabulator, k.Batch)
	}
	return fmt.Sprintf("tabulator %d batch %d (%s)", k.Tabulator, k.Batch, k.Model)
}

// BatchGroup is one reader emission: the batches extracted from a single
// input unit (a CSV file, one CvrExport member of a zip, ...). Order of the
// identifiers within a batch carries no information.
type BatchGroup map[BatchKey][]Identifier

// Add appends a record id to the batch for key, creating the batch if needed.
func (g BatchGroup) Add(key BatchKey, id Identifier) {
	g[key] = append(g[key], id)
}

// Ballots returns the total number of record ids across all batches.
func (g BatchGroup) Ballots() int {
	n := 0
	for _, ids := range g {
		n += len(ids)
	}
	return n
}
