package pipeline

import (
	"time"

	"github.com/valuationkit/mpfcore/internal/dataset"
	"github.com/valuationkit/mpfcore/internal/retriever"
	"github.com/valuationkit/mpfcore/internal/schema"
	"github.com/valuationkit/mpfcore/internal/storage"
	"github.com/valuationkit/mpfcore/internal/validate"
)

// Options configures one pipeline run.
type Options struct {
	// ModelPointsPath is the s3://bucket/prefix/ holding the MPF spreadsheets.
	ModelPointsPath string
	// RuleTablePath optionally points at a rule table spreadsheet
	// ({Column, Input_Array}); its enum rules extend the defaults.
	RuleTablePath string
	Product       string
	ValuationDate time.Time

	// Aliases defaults to schema.DefaultAliases().
	Aliases schema.AliasTable
	// ExtraRules are appended to the rule set, after any rule table.
	ExtraRules []validate.Rule

	WorkerCount int
	Retrieval   retriever.Options
}

// DefaultWorkerCount bounds per-file concurrency so a large prefix does not
// overwhelm the store's rate limits.
const DefaultWorkerCount = 8

// FileOutcome is the per-file result of a run: the canonicalized dataset
// and its validation report, or the error that stopped the file.
type FileOutcome struct {
	Source  string
	Ref     storage.ObjectRef
	Dataset *dataset.TabularDataset
	Report  *validate.Report
	Err     error
}

// RunResult aggregates every file's outcome. Callers decide whether to
// proceed on non-empty reports.
type RunResult struct {
	Files []FileOutcome
}

// Validated returns the outcomes that produced a dataset and report.
func (r *RunResult) Validated() []FileOutcome {
	out := make([]FileOutcome, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Failed returns the outcomes that stopped with a per-file error.
func (r *RunResult) Failed() []FileOutcome {
	out := make([]FileOutcome, 0)
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}
