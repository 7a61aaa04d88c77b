// Package sequence models the record-id generators of the two affected
// scanner families. Each family emits record ids by stepping an internal
// counter through a full-period multiplicative congruence, substituting the
// decimal digits of the result, and scattering them into fixed output
// places. The step multiplier is coprime to the modulus, so Generate is a
// bijection on [0, 1e6) and the scan order can be recovered by inverting it.
package sequence

import (
	"fmt"
	"sync"

	"dvsorder/domain/core"
)

// multiplier drives the counter step x = multiplier*position mod 1e6.
const multiplier = 864803

// substitution re-encodes each decimal digit of x before placement.
var substitution = [10]core.Identifier{5, 0, 8, 3, 2, 6, 1, 9, 4, 7}

// placement[i] gives the output power-of-ten for digit i of x (digit i being
// (x / 10^i) % 10). The placement is the only difference between the two
// families.
var placements = map[core.ScannerModel][6]int{
	core.ModelImagecastPrecinct:  {4, 2, 0, 1, 5, 3},
	core.ModelImagecastEvolution: {2, 0, 4, 5, 3, 1},
}

var pow10 = [6]core.Identifier{1, 10, 100, 1_000, 10_000, 100_000}

// Variants enumerates the two modeled families. There are exactly two by
// design; callers iterate this slice rather than dispatching through an
// interface.
var Variants = []core.ScannerModel{
	core.ModelImagecastPrecinct,
	core.ModelImagecastEvolution,
}

// Generate returns the record id the given scanner family emits at sequence
// position p. It panics on an unknown model; callers validate models at the
// boundary with core.ParseScannerModel.
func Generate(model core.ScannerModel, p core.SequencePosition) core.Identifier {
	placement, ok := placements[model]
	if !ok {
		panic(fmt.Sprintf("sequence: no generator for model %q", model))
	}
	x := core.Identifier(p).Reduce() * multiplier % core.SequenceModulus
	var id core.Identifier
	for i := 0; i < 6; i++ {
		digit := x / pow10[i] % 10
		id += substitution[digit] * pow10[placement[i]]
	}
	return id
}

// inverse is the full-domain lookup from record id back to sequence
// position, built once per variant and immutable afterwards. Because
// Generate is a bijection, indexing by the id itself suffices; -1 marks
// slots that were never produced and only ever shows up if the table or its
// input is corrupt.
type inverse struct {
	once      sync.Once
	positions []int32
}

var inverses = map[core.ScannerModel]*inverse{
	core.ModelImagecastPrecinct:  {},
	core.ModelImagecastEvolution: {},
}

func (inv *inverse) build(model core.ScannerModel) {
	inv.positions = make([]int32, core.SequenceModulus)
	for i := range inv.positions {
		inv.positions[i] = -1
	}
	for p := 0; p < core.SequenceModulus; p++ {
		inv.positions[Generate(model, core.SequencePosition(p))] = int32(p)
	}
}

// Locate returns the sequence position at which the given scanner family
// emits id. The id must already be reduced into [0, 1e6); anything else is
// an internal-consistency fault, not a recoverable condition.
func Locate(model core.ScannerModel, id core.Identifier) (core.SequencePosition, error) {
	inv, ok := inverses[model]
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrUnsupportedModel, model)
	}
	inv.once.Do(func() { inv.build(model) })
	if id < 0 || id >= core.SequenceModulus {
		return 0, fmt.Errorf("%w: %d", core.ErrIdentifierRange, id)
	}
	p := inv.positions[id]
	if p < 0 {
		return 0, fmt.Errorf("%w: %d not in %s image", core.ErrIdentifierRange, id, model)
	}
	return core.SequencePosition(p), nil
}

// Warm eagerly builds both inverse tables. Optional; Locate builds lazily.
func Warm() {
	for _, model := range Variants {
		inv := inverses[model]
		inv.once.Do(func() { inv.build(model) })
	}
}
