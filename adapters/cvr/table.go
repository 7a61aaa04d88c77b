package cvr

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dvsorder/domain/core"
	"dvsorder/internal"
	"dvsorder/ports"
)

// TableSource reads a Dominion results-report export: a CSV file or the
// equivalent XLSX workbook. The format carries no tabulator-type column, so
// every batch comes out with an unknown scanner model.
type TableSource struct {
	path     string
	fileType string // "csv" or "xlsx"
	log      *internal.Logger
}

// NewTableSource creates a reader for a CSV or XLSX results report.
func NewTableSource(path string, log *internal.Logger) *TableSource {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &TableSource{path: path, fileType: fileType, log: log.Tagged("cvr")}
}

func (s *TableSource) Name() string { return s.path }

// Read parses the export and emits its batches as a single group.
func (s *TableSource) Read(ctx context.Context, emit func(core.BatchGroup) error) error {
	var rows [][]string
	var err error
	switch s.fileType {
	case "xlsx":
		rows, err = s.readWorkbookRows()
	default:
		rows, err = s.readCSVRows()
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	group, err := s.parseRows(rows)
	if err != nil {
		return err
	}
	return emit(group)
}

func (s *TableSource) readCSVRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // header rows are ragged
	r.LazyQuotes = true    // ="123" text-guard cells carry bare quotes
	rows, err := r.ReadAll()
	if err != nil {
		return nil, core.NewMalformedExportError(s.path, err.Error())
	}
	return rows, nil
}

func (s *TableSource) readWorkbookRows() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, core.NewMalformedExportError(s.path, err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewMalformedExportError(s.path, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewMalformedExportError(s.path, err.Error())
	}
	return rows, nil
}

// parseRows interprets the report layout: four header rows (event, contest,
// choice, ballot-column names) followed by one row per ballot.
func (s *TableSource) parseRows(rows [][]string) (core.BatchGroup, error) {
	if len(rows) < 4 {
		return nil, core.NewMalformedExportError(s.path, "missing header rows")
	}
	event, ballotHeader := rows[0], rows[3]
	if len(event) >= 2 {
		s.log.Info("%s: event_name=%q rtr_version=%q", s.path, event[0], event[1])
	}

	tabCol, err := s.findColumn(ballotHeader, "Tabulator", "TabulatorNum")
	if err != nil {
		return nil, err
	}
	batCol, err := s.findColumn(ballotHeader, "Batch", "BatchId")
	if err != nil {
		return nil, err
	}
	recCol, err := s.findColumn(ballotHeader, "Record", "RecordId")
	if err != nil {
		return nil, err
	}
	// The report layout is fixed; anything else means this is not the
	// ballot table we think it is.
	if tabCol != 1 || batCol != 2 || recCol != 3 {
		return nil, core.NewMalformedExportError(s.path,
			fmt.Sprintf("unexpected column layout: tabulator=%d batch=%d record=%d", tabCol, batCol, recCol))
	}

	group := core.BatchGroup{}
	for i, row := range rows[4:] {
		if len(row) <= recCol {
			return nil, core.NewMalformedExportError(s.path, fmt.Sprintf("row %d: too few columns", i+5))
		}
		tab, err := cellInt(row[tabCol])
		if err != nil {
			return nil, core.NewMalformedExportError(s.path, fmt.Sprintf("row %d: %v", i+5, err))
		}
		bat, err := cellInt(row[batCol])
		if err != nil {
			return nil, core.NewMalformedExportError(s.path, fmt.Sprintf("row %d: %v", i+5, err))
		}
		rec, err := cellInt(row[recCol])
		if err != nil {
			return nil, core.NewMalformedExportError(s.path, fmt.Sprintf("row %d: %v", i+5, err))
		}
		group.Add(core.BatchKey{Tabulator: tab, Batch: bat}, core.Identifier(rec))
	}
	return group, nil
}

func (s *TableSource) findColumn(header []string, names ...string) (int, error) {
	for _, name := range names {
		for i, cell := range header {
			if cell == name {
				return i, nil
			}
		}
	}
	return 0, core.NewMalformedExportError(s.path, "no "+strings.Join(names, "/")+" column")
}

// cellInt extracts an integer from the report's cell quoting styles,
// including the Excel text-guard form ="123".
func cellInt(cell string) (int, error) {
	if strings.HasPrefix(cell, `="`) && strings.HasSuffix(cell, `"`) && len(cell) > 3 {
		cell = cell[2 : len(cell)-1]
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", cell)
	}
	return n, nil
}

var _ ports.BatchSource = (*TableSource)(nil)
