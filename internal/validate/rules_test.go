package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuationkit/mpfcore/internal/dataset"
	"github.com/valuationkit/mpfcore/internal/schema"
)

func TestEnumRuleParsesAllowedSetOnce(t *testing.T) {
	rule := EnumRule("occupation", "W, B , P,T")
	assert.Len(t, rule.Allowed, 4)
	for _, v := range []string{"W", "B", "P", "T"} {
		_, ok := rule.Allowed[v]
		assert.True(t, ok, "expected %q in allowed set", v)
	}
}

func TestLoadRuleTable(t *testing.T) {
	ds := &dataset.TabularDataset{
		SourceName: "rules",
		Columns:    []string{"Column", "Input_Array"},
		Rows: []dataset.Row{
			{"Column": "sex", "Input_Array": "M, F"},
			{"Column": "smoker_status", "Input_Array": "S, N"},
			{"Column": "", "Input_Array": "ignored"},
		},
	}

	rules, err := LoadRuleTable(ds)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, KindEnum, rules[0].Kind)
	assert.Equal(t, "sex", rules[0].Column)
	assert.Equal(t, "smoker_status", rules[1].Column)
}

func TestLoadRuleTableToleratesHeaderSpelling(t *testing.T) {
	ds := &dataset.TabularDataset{
		SourceName: "rules",
		Columns:    []string{"column", "input array"},
		Rows:       []dataset.Row{{"column": "sex", "input array": "M, F"}},
	}

	rules, err := LoadRuleTable(ds)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestLoadRuleTableMissingColumns(t *testing.T) {
	ds := &dataset.TabularDataset{
		SourceName: "rules",
		Columns:    []string{"Field", "Values"},
	}
	_, err := LoadRuleTable(ds)
	require.Error(t, err)
}

func TestDefaultRulesProductScoping(t *testing.T) {
	valuation, _ := time.Parse("2006-01-02", "2024-06-30")

	hasRule := func(rules []Rule, kind RuleKind, column string) bool {
		for _, r := range rules {
			if r.Kind == kind && r.Column == column {
				return true
			}
		}
		return false
	}

	ip := DefaultRules("IP", valuation)
	assert.True(t, hasRule(ip, KindUniqueness, schema.FieldPolicyNumber))
	assert.True(t, hasRule(ip, KindNumeric, schema.FieldPolicyTerm))
	assert.True(t, hasRule(ip, KindDateRange, schema.FieldDateOfBirth))
	assert.True(t, hasRule(ip, KindCrossFieldDate, schema.FieldEntryDate))
	assert.True(t, hasRule(ip, KindNumeric, schema.FieldMonthlyBenefit))

	term := DefaultRules("Term", valuation)
	assert.False(t, hasRule(term, KindNumeric, schema.FieldMonthlyBenefit))
	assert.True(t, hasRule(term, KindNumeric, schema.FieldAnnualPremium))
}

func TestDefaultRulesReportZeroAndNegativeIndependently(t *testing.T) {
	// A zero mandatory amount violates only the strictly-positive rule; a
	// negative one violates both it and the non-negative rule.
	valuation, _ := time.Parse("2006-01-02", "2024-06-30")
	ds := &dataset.TabularDataset{
		SourceName: "mpf",
		Columns:    []string{schema.FieldPolicyNumber, schema.FieldAnnualPremium},
		Rows: []dataset.Row{
			{schema.FieldPolicyNumber: "1", schema.FieldAnnualPremium: "0"},
			{schema.FieldPolicyNumber: "2", schema.FieldAnnualPremium: "-100"},
			{schema.FieldPolicyNumber: "3", schema.FieldAnnualPremium: "1200"},
		},
	}

	var rules []Rule
	for _, r := range DefaultRules("Term", valuation) {
		if r.Kind == KindNumeric && r.Column == schema.FieldAnnualPremium {
			rules = append(rules, r)
		}
	}
	require.Len(t, rules, 2)

	rep, err := Evaluate(ds, rules, schema.FieldPolicyNumber)
	require.NoError(t, err)
	require.Len(t, rep.Issues, 2)

	byDetail := map[string][]string{}
	for _, issue := range rep.Issues {
		byDetail[issue.Detail] = issue.RowKeys
	}
	assert.Equal(t, []string{"2"}, byDetail["must be at least 0"])
	assert.Equal(t, []string{"1", "2"}, byDetail["must be greater than 0"])
}
