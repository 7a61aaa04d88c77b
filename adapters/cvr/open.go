// Package cvr extracts batch/record-id mappings from the export formats the
// affected tabulators produce: the CSV (and same-shape XLSX) results report,
// the zipped JSON CVR export, and zip archives of ballot images.
package cvr

import (
	"fmt"
	"path/filepath"
	"strings"

	"dvsorder/internal"
	"dvsorder/ports"
)

// ForPath selects a reader for the given export file. When images is set,
// zip archives are treated as ballot-image archives instead of JSON exports.
func ForPath(path string, images bool, log *internal.Logger) (ports.BatchSource, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".xlsx":
		if images {
			return nil, fmt.Errorf("cannot read ballot images from a %s file: %s", ext, path)
		}
		return NewTableSource(path, log), nil
	case ".zip":
		if images {
			return NewImageZipSource(path, log), nil
		}
		return NewJSONZipSource(path, log), nil
	default:
		return nil, fmt.Errorf("%s doesn't look like a .csv, .xlsx or .zip file", path)
	}
}
