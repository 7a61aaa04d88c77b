package cvr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvsorder/domain/core"
)

func TestImageZipSource(t *testing.T) {
	path := writeZip(t, []zipMember{
		{"images/00010_00001_000555.tif", "tifdata"},
		{"images/00010_00001_000556.tif", "tifdata"},
		{"images/00010_00002_000001.tif", "tifdata"},
		{"images/thumbnail.tif", "not a ballot name"},
		{"manifest.txt", "ignored"},
	})

	groups := readAll(t, NewImageZipSource(path, testLogger()))
	require.Len(t, groups, 1)
	group := groups[0]

	require.Len(t, group, 2)
	assert.Equal(t, []core.Identifier{555, 556}, group[core.BatchKey{Tabulator: 10, Batch: 1}])
	assert.Equal(t, []core.Identifier{1}, group[core.BatchKey{Tabulator: 10, Batch: 2}])
}

func TestParseImageName(t *testing.T) {
	key, rec, ok := parseImageName("00010_00002_000001_extra")
	require.True(t, ok)
	assert.Equal(t, core.BatchKey{Tabulator: 10, Batch: 2}, key)
	assert.Equal(t, core.Identifier(1), rec)

	_, _, ok = parseImageName("thumbnail")
	assert.False(t, ok)

	_, _, ok = parseImageName("a_b_c")
	assert.False(t, ok)
}
