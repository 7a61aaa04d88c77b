package cvr

import (
	"archive/zip"
	"context"
	"path"
	"strconv"
	"strings"

	"dvsorder/domain/core"
	"dvsorder/internal"
	"dvsorder/ports"
)

// ImageZipSource reads a zip archive of scanned ballot images. The scanner
// encodes tabulator, batch and record id into each TIF member name
// (<tab>_<batch>_<record>...tif), so the archive itself leaks the ids.
type ImageZipSource struct {
	path string
	log  *internal.Logger
}

// NewImageZipSource creates a reader for a ballot-image archive.
func NewImageZipSource(path string, log *internal.Logger) *ImageZipSource {
	return &ImageZipSource{path: path, log: log.Tagged("cvr")}
}

func (s *ImageZipSource) Name() string { return s.path }

// Read extracts batches from the member names and emits one group. Members
// whose names don't parse are skipped with a warning; no image data is read.
func (s *ImageZipSource) Read(ctx context.Context, emit func(core.BatchGroup) error) error {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return core.NewMalformedExportError(s.path, err.Error())
	}
	defer zr.Close()

	group := core.BatchGroup{}
	for _, member := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := path.Base(member.Name)
		ext := path.Ext(base)
		if !strings.EqualFold(ext, ".tif") {
			continue
		}
		key, rec, ok := parseImageName(strings.TrimSuffix(base, ext))
		if !ok {
			s.log.Warn("%s: skipping %s", s.path, member.Name)
			continue
		}
		group.Add(key, rec)
	}
	return emit(group)
}

// parseImageName splits a member basename on underscores and reads the first
// three fields as tabulator, batch and record id.
func parseImageName(base string) (core.BatchKey, core.Identifier, bool) {
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return core.BatchKey{}, 0, false
	}
	tab, err1 := strconv.Atoi(parts[0])
	bat, err2 := strconv.Atoi(parts[1])
	rec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return core.BatchKey{}, 0, false
	}
	return core.BatchKey{Tabulator: tab, Batch: bat}, core.Identifier(rec), true
}

var _ ports.BatchSource = (*ImageZipSource)(nil)
