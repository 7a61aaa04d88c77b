package ports

import (
	"context"

	"dvsorder/domain/core"
)

// BatchSource streams batch groups out of one CVR export. A source may emit
// several groups (the zipped JSON format holds many CvrExport members); the
// CSV and image formats emit exactly one.
type BatchSource interface {
	// Name identifies the source in logs and reports (usually the file path).
	Name() string

	// Read extracts batches and hands each group to emit as soon as it is
	// complete. Returning an error from emit aborts the read.
	Read(ctx context.Context, emit func(core.BatchGroup) error) error
}
