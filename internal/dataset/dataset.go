// Package dataset holds the tabular representation produced by parsing one
// spreadsheet file. One dataset per file; datasets are never merged at this
// layer.
package dataset

// Row maps column name to the cell's string form.
type Row map[string]string

// TabularDataset is the parsed content of a single spreadsheet sheet.
// Every row carries exactly the column set in Columns; short spreadsheet
// rows are padded with empty strings at parse time.
type TabularDataset struct {
	SourceName string
	Columns    []string
	Rows       []Row
}

// HasColumn reports whether the dataset contains the given column.
func (d *TabularDataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the column's values in row order.
func (d *TabularDataset) Values(column string) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[column]
	}
	return out
}
