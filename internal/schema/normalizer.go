// Package schema reconciles the free-text column headers of upstream model
// point files against the pipeline's canonical field names. Matching is by
// declared alias table only, never by string distance, so behavior stays
// deterministic and auditable.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valuationkit/mpfcore/internal/dataset"
)

// AliasTable maps a canonical field name to the accepted header spellings.
// The canonical name itself always matches, so aliases only need to list
// the upstream variants. Static configuration, read-only during a run.
type AliasTable map[string][]string

// Mapping maps a canonical field name to the actual column found in one
// dataset. Computed per dataset and consumed immediately.
type Mapping map[string]string

// SchemaMismatchError reports canonical fields that could not be resolved
// against a dataset's headers.
type SchemaMismatchError struct {
	Source    string
	Missing   []string
	Available []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: missing required columns [%s], available columns [%s]",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// NormalizeName folds a header for comparison: lower case, with underscore,
// hyphen and whitespace runs collapsed to a single space.
func NormalizeName(name string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '\t':
			return ' '
		}
		return r
	}, strings.ToLower(name))
	return strings.Join(strings.Fields(replaced), " ")
}

// Resolve computes the canonical-to-actual column mapping for a dataset.
// For each canonical field the first matching actual column in source order
// wins. Unresolved canonical fields are returned sorted in missing.
func Resolve(ds *dataset.TabularDataset, aliases AliasTable) (Mapping, []string) {
	mapping := make(Mapping, len(aliases))
	var missing []string

	for canonical, variants := range aliases {
		accepted := make(map[string]struct{}, len(variants)+1)
		accepted[NormalizeName(canonical)] = struct{}{}
		for _, v := range variants {
			accepted[NormalizeName(v)] = struct{}{}
		}

		found := false
		for _, actual := range ds.Columns {
			if _, ok := accepted[NormalizeName(actual)]; ok {
				mapping[canonical] = actual
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, canonical)
		}
	}

	sort.Strings(missing)
	return mapping, missing
}

// Normalize returns a canonical view of the dataset: columns renamed to
// canonical names, unmapped extra columns dropped. The input dataset is not
// modified, so callers keep it for diagnostics. Missing canonical fields
// reject the dataset with a SchemaMismatchError.
func Normalize(ds *dataset.TabularDataset, aliases AliasTable) (*dataset.TabularDataset, error) {
	mapping, missing := Resolve(ds, aliases)
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{
			Source:    ds.SourceName,
			Missing:   missing,
			Available: append([]string(nil), ds.Columns...),
		}
	}

	// Preserve source column order in the canonical view.
	actualPos := make(map[string]int, len(ds.Columns))
	for i, c := range ds.Columns {
		actualPos[c] = i
	}
	canonicals := make([]string, 0, len(mapping))
	for canonical := range mapping {
		canonicals = append(canonicals, canonical)
	}
	sort.Slice(canonicals, func(i, j int) bool {
		return actualPos[mapping[canonicals[i]]] < actualPos[mapping[canonicals[j]]]
	})

	out := &dataset.TabularDataset{
		SourceName: ds.SourceName,
		Columns:    canonicals,
		Rows:       make([]dataset.Row, len(ds.Rows)),
	}
	for i, row := range ds.Rows {
		canonRow := make(dataset.Row, len(canonicals))
		for _, canonical := range canonicals {
			canonRow[canonical] = row[mapping[canonical]]
		}
		out.Rows[i] = canonRow
	}

	return out, nil
}
