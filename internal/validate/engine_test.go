package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuationkit/mpfcore/internal/dataset"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func keyedDataset(key string, columns []string, rows ...dataset.Row) *dataset.TabularDataset {
	return &dataset.TabularDataset{
		SourceName: "mpf_test",
		Columns:    append([]string{key}, columns...),
		Rows:       rows,
	}
}

func evalOne(t *testing.T, ds *dataset.TabularDataset, rule Rule) *Report {
	t.Helper()
	rep, err := Evaluate(ds, []Rule{rule}, "policy_number")
	require.NoError(t, err)
	return rep
}

func TestEvaluateFailsOnUnusableKeyColumn(t *testing.T) {
	ds := &dataset.TabularDataset{SourceName: "mpf_x", Columns: []string{"sex"}}
	_, err := Evaluate(ds, DefaultRules("IP", time.Now()), "policy_number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy_number")
}

func TestCompleteness(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"sex"},
		dataset.Row{"policy_number": "1", "sex": "M"},
		dataset.Row{"policy_number": "2", "sex": "   "},
		dataset.Row{"policy_number": "3", "sex": ""},
	)

	rep := evalOne(t, ds, CompletenessRule(""))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, KindCompleteness, rep.Issues[0].Kind)
	assert.Equal(t, "sex", rep.Issues[0].Column)
	assert.Equal(t, []string{"2", "3"}, rep.Issues[0].RowKeys)
}

func TestUniquenessReportsAllDuplicateRowsTogether(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"ref"},
		dataset.Row{"policy_number": "R1", "ref": "P001"},
		dataset.Row{"policy_number": "R2", "ref": "P002"},
		dataset.Row{"policy_number": "R3", "ref": "P001"},
	)

	rep := evalOne(t, ds, UniquenessRule("ref"))
	require.Len(t, rep.Issues, 1)
	issue := rep.Issues[0]
	assert.Equal(t, KindUniqueness, issue.Kind)
	assert.Equal(t, []string{"R1", "R3"}, issue.RowKeys)
	assert.Contains(t, issue.Detail, "P001")
}

func TestNumericIntegerWithExclusiveMinimum(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"policy_term"},
		dataset.Row{"policy_number": "1", "policy_term": "0"},
		dataset.Row{"policy_number": "2", "policy_term": "-5"},
		dataset.Row{"policy_number": "3", "policy_term": "3.5"},
		dataset.Row{"policy_number": "4", "policy_term": "10"},
	)

	zero := 0.0
	rep := evalOne(t, ds, NumericRule("policy_term", true, &zero))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, []string{"1", "2", "3"}, rep.Issues[0].RowKeys)
}

func TestNonNegativeAllowsZero(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"sum_assured_tpd"},
		dataset.Row{"policy_number": "1", "sum_assured_tpd": "0"},
		dataset.Row{"policy_number": "2", "sum_assured_tpd": "-1"},
		dataset.Row{"policy_number": "3", "sum_assured_tpd": "250000"},
	)

	rep := evalOne(t, ds, NonNegativeRule("sum_assured_tpd"))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, []string{"2"}, rep.Issues[0].RowKeys)
}

func TestDateRangeFlagsOutOfRangeAndUnparsable(t *testing.T) {
	reference := mustDate(t, "2024-06-30")
	min := reference.AddDate(-65, 0, 0)
	max := reference.AddDate(-18, 0, 0)

	ds := keyedDataset("policy_number", []string{"date_of_birth"},
		dataset.Row{"policy_number": "1", "date_of_birth": "1990-04-12"},
		dataset.Row{"policy_number": "2", "date_of_birth": "2018-05-01"}, // too young
		dataset.Row{"policy_number": "3", "date_of_birth": "1950-01-01"}, // too old
		dataset.Row{"policy_number": "4", "date_of_birth": "not-a-date"},
	)

	rep := evalOne(t, ds, DateRangeRule("date_of_birth", min, max))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, []string{"2", "3", "4"}, rep.Issues[0].RowKeys)
}

func TestCrossFieldDate(t *testing.T) {
	valuation := mustDate(t, "2024-06-30")
	ds := keyedDataset("policy_number", []string{"date_of_birth", "entry_date"},
		dataset.Row{"policy_number": "1", "date_of_birth": "1990-04-12", "entry_date": "2015-01-01"},
		dataset.Row{"policy_number": "2", "date_of_birth": "1990-04-12", "entry_date": "1989-01-01"}, // before birth
		dataset.Row{"policy_number": "3", "date_of_birth": "1990-04-12", "entry_date": "2025-01-01"}, // after valuation
		dataset.Row{"policy_number": "4", "date_of_birth": "1990-04-12", "entry_date": "junk"},
	)

	rep := evalOne(t, ds, CrossFieldDateRule("date_of_birth", "entry_date", valuation))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, []string{"2", "3", "4"}, rep.Issues[0].RowKeys)
}

func TestEnumIsCaseSensitive(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"sex"},
		dataset.Row{"policy_number": "1", "sex": "M"},
		dataset.Row{"policy_number": "2", "sex": "m"},
		dataset.Row{"policy_number": "3", "sex": "F"},
		dataset.Row{"policy_number": "4", "sex": "X"},
	)

	rep := evalOne(t, ds, EnumRule("sex", "M, F"))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, []string{"2", "4"}, rep.Issues[0].RowKeys)
}

func TestMissingRuleColumnProducesIssueNotSkip(t *testing.T) {
	ds := keyedDataset("policy_number", nil,
		dataset.Row{"policy_number": "1"},
	)

	rep := evalOne(t, ds, EnumRule("occupation", "W, B"))
	require.Len(t, rep.Issues, 1)
	assert.Contains(t, rep.Issues[0].Detail, "occupation")
}

func TestEvaluateDoesNotShortCircuit(t *testing.T) {
	// One row violates several rules at once; every violation is reported
	// and the row appears in multiple issues.
	ds := keyedDataset("policy_number", []string{"policy_term", "sex"},
		dataset.Row{"policy_number": "1", "policy_term": "-1", "sex": "X"},
		dataset.Row{"policy_number": "2", "policy_term": "10", "sex": "F"},
	)

	zero := 0.0
	rep, err := Evaluate(ds, []Rule{
		NumericRule("policy_term", true, &zero),
		EnumRule("sex", "M, F"),
		CompletenessRule(""),
	}, "policy_number")
	require.NoError(t, err)
	require.Len(t, rep.Issues, 2)
	assert.Equal(t, []string{"1"}, rep.Issues[0].RowKeys)
	assert.Equal(t, []string{"1"}, rep.Issues[1].RowKeys)
}

func TestPartitionSplitsByFlaggedKeys(t *testing.T) {
	ds := keyedDataset("policy_number", []string{"policy_term"},
		dataset.Row{"policy_number": "1", "policy_term": "10"},
		dataset.Row{"policy_number": "2", "policy_term": "-1"},
		dataset.Row{"policy_number": "3", "policy_term": "20"},
	)

	zero := 0.0
	rep := evalOne(t, ds, NumericRule("policy_term", true, &zero))
	clean, invalid := Partition(ds, rep, "policy_number")
	require.Len(t, clean.Rows, 2)
	require.Len(t, invalid.Rows, 1)
	assert.Equal(t, "2", invalid.Rows[0]["policy_number"])
}
