// Package validate implements the rule-table-driven checks applied to
// canonicalized model point datasets. Violations are data, never errors:
// the engine always produces a full report so whole batches can be
// corrected in one pass.
package validate

import (
	"github.com/valuationkit/mpfcore/internal/dataset"
)

// RuleKind tags the rule variants the engine can evaluate.
type RuleKind string

const (
	KindCompleteness   RuleKind = "completeness"
	KindUniqueness     RuleKind = "uniqueness"
	KindNumeric        RuleKind = "numeric"
	KindDateRange      RuleKind = "date_range"
	KindCrossFieldDate RuleKind = "cross_field_date"
	KindEnum           RuleKind = "enum"
)

// Issue records one rule failure against one or more rows. RowKeys holds the
// key-column value of every offending row.
type Issue struct {
	Kind    RuleKind
	Column  string
	RowKeys []string
	Detail  string
}

// Report aggregates the issues found in one dataset. An empty Issues slice
// means the dataset passed.
type Report struct {
	Source string
	Issues []Issue
}

// Passed reports whether the dataset cleared every rule.
func (r *Report) Passed() bool { return len(r.Issues) == 0 }

// InvalidKeys returns the set of key values named by any issue.
func (r *Report) InvalidKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, issue := range r.Issues {
		for _, k := range issue.RowKeys {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// Partition splits a dataset into clean rows and rows named by the report,
// keyed on keyColumn. Rows sharing a flagged key are all treated as invalid,
// so duplicated policy numbers drop together. Callers hand only the clean
// dataset to the calculation engine.
func Partition(ds *dataset.TabularDataset, rep *Report, keyColumn string) (clean, invalid *dataset.TabularDataset) {
	flagged := rep.InvalidKeys()

	clean = &dataset.TabularDataset{SourceName: ds.SourceName, Columns: ds.Columns}
	invalid = &dataset.TabularDataset{SourceName: ds.SourceName, Columns: ds.Columns}
	for _, row := range ds.Rows {
		if _, bad := flagged[row[keyColumn]]; bad {
			invalid.Rows = append(invalid.Rows, row)
		} else {
			clean.Rows = append(clean.Rows, row)
		}
	}
	return clean, invalid
}
