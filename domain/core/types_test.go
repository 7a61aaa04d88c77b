package core

import (
	"errors"
	"testing"
)

func TestIdentifier_Reduce(t *testing.T) {
	cases := []struct {
		in   Identifier
		want Identifier
	}{
		{0, 0},
		{999999, 999999},
		{1000000, 0},
		{1134524, 134524},
		{5 * SequenceModulus, 0},
	}
	for _, c := range cases {
		if got := c.in.Reduce(); got != c.want {
			t.Errorf("Reduce(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseScannerModel(t *testing.T) {
	for _, s := range []string{"", "ImagecastPrecinct", "ImagecastEvolution"} {
		if _, err := ParseScannerModel(s); err != nil {
			t.Errorf("ParseScannerModel(%q): %v", s, err)
		}
	}
	_, err := ParseScannerModel("ImagecastCentral")
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("err = %v, want ErrUnsupportedModel", err)
	}
}

func TestScannerModel_Known(t *testing.T) {
	if ModelUnknown.Known() {
		t.Error("unknown model reported as known")
	}
	if ScannerModel("ImagecastCentral").Known() {
		t.Error("central-count model reported as known")
	}
	if !ModelImagecastPrecinct.Known() || !ModelImagecastEvolution.Known() {
		t.Error("modeled families must be known")
	}
}

func TestBatchGroup(t *testing.T) {
	g := BatchGroup{}
	key := BatchKey{Tabulator: 1, Batch: 2}
	g.Add(key, 10)
	g.Add(key, 11)
	g.Add(BatchKey{Tabulator: 1, Batch: 3}, 12)
	if g.Ballots() != 3 {
		t.Errorf("Ballots() = %d, want 3", g.Ballots())
	}
	if len(g[key]) != 2 {
		t.Errorf("batch has %d ids, want 2", len(g[key]))
	}
}
