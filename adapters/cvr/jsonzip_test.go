package cvr

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvsorder/domain/core"
)

// zipMember is one archive entry. Fixtures are written in slice order so
// member order (and therefore reader emission order) is reproducible.
type zipMember struct {
	name string
	body string
}

func writeZip(t *testing.T, members []zipMember) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(m.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestJSONZipSource(t *testing.T) {
	path := writeZip(t, []zipMember{
		{"ElectionEventManifest.json", `{"Version":"5.10.50.85","List":[{"Description":"General Election"}]}`},
		{"TabulatorManifest.json", `{"List":[
			{"Id":10,"Type":"ImagecastPrecinct"},
			{"Id":11,"Type":"ImagecastEvolution"},
			{"Id":12,"Type":"ImagecastCentral"}
		]}`},
		{"CvrExport_1.json", `{"Sessions":[
			{"TabulatorId":10,"BatchId":1,"RecordId":555555},
			{"TabulatorId":10,"BatchId":1,"RecordId":134524},
			{"TabulatorId":11,"BatchId":2,"RecordId":777},
			{"TabulatorId":12,"BatchId":1,"RecordId":31337}
		]}`},
		{"CvrExport_2.json", `{"Sessions":[
			{"TabulatorId":10,"BatchId":3,"RecordId":"X"},
			{"TabulatorId":10,"BatchId":3,"RecordId":42}
		]}`},
	})

	groups := readAll(t, NewJSONZipSource(path, testLogger()))
	require.Len(t, groups, 2)

	icp := core.BatchKey{Tabulator: 10, Batch: 1, Model: core.ModelImagecastPrecinct}
	ice := core.BatchKey{Tabulator: 11, Batch: 2, Model: core.ModelImagecastEvolution}
	central := core.BatchKey{Tabulator: 12, Batch: 1, Model: core.ScannerModel("ImagecastCentral")}
	assert.Equal(t, []core.Identifier{555555, 134524}, groups[0][icp])
	assert.Equal(t, []core.Identifier{777}, groups[0][ice])
	assert.Equal(t, []core.Identifier{31337}, groups[0][central])

	// The sanitized record is skipped but its batch still exists.
	sanitized := core.BatchKey{Tabulator: 10, Batch: 3, Model: core.ModelImagecastPrecinct}
	require.Contains(t, groups[1], sanitized)
	assert.Equal(t, []core.Identifier{42}, groups[1][sanitized])
}

func TestJSONZipSource_MissingManifest(t *testing.T) {
	path := writeZip(t, []zipMember{
		{"CvrExport_1.json", `{"Sessions":[]}`},
	})
	err := NewJSONZipSource(path, testLogger()).Read(context.Background(), func(core.BatchGroup) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedExport)
}

func TestJSONZipSource_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	err := NewJSONZipSource(path, testLogger()).Read(context.Background(), func(core.BatchGroup) error { return nil })
	assert.ErrorIs(t, err, core.ErrMalformedExport)
}
