package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse reads the first sheet of an XLSX file into a TabularDataset.
func Parse(path, sourceName string) (*TabularDataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	return firstSheet(f, sourceName)
}

// ParseReader reads the first sheet of XLSX content from r.
func ParseReader(r io.Reader, sourceName string) (*TabularDataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx content for %s: %w", sourceName, err)
	}
	defer f.Close()

	return firstSheet(f, sourceName)
}

// ParseSheets extracts the named sheets of a workbook, keyed by sheet name.
// Used for assumption workbooks, where each sheet is its own table.
func ParseSheets(r io.Reader, sourceName string, sheets []string) (map[string]*TabularDataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx content for %s: %w", sourceName, err)
	}
	defer f.Close()

	out := make(map[string]*TabularDataset, len(sheets))
	for _, sheet := range sheets {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("%s: missing sheet %q", sourceName, sheet)
		}
		ds, err := ReadSheet(f, sheet, sourceName+"/"+sheet)
		if err != nil {
			return nil, err
		}
		out[sheet] = ds
	}
	return out, nil
}

func firstSheet(f *excelize.File, sourceName string) (*TabularDataset, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", sourceName)
	}
	return ReadSheet(f, sheets[0], sourceName)
}

// ReadSheet extracts one named sheet into a TabularDataset. The first row is
// the header; fully empty rows are skipped and short rows are padded so the
// dataset invariant holds.
func ReadSheet(f *excelize.File, sheet, sourceName string) (*TabularDataset, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s in %s: %w", sheet, sourceName, err)
	}
	defer rows.Close()

	ds := &TabularDataset{SourceName: sourceName}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", sourceName, err)
		}

		if ds.Columns == nil {
			header := trimTrailingEmpty(record)
			if len(header) == 0 {
				continue
			}
			for _, col := range header {
				ds.Columns = append(ds.Columns, strings.TrimSpace(col))
			}
			continue
		}

		if allEmpty(record) {
			continue
		}

		row := make(Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", sourceName, err)
	}
	if ds.Columns == nil {
		return nil, fmt.Errorf("sheet %s in %s has no header row", sheet, sourceName)
	}

	return ds, nil
}

func trimTrailingEmpty(record []string) []string {
	end := len(record)
	for end > 0 && strings.TrimSpace(record[end-1]) == "" {
		end--
	}
	return record[:end]
}

func allEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
