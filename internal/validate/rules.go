package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/valuationkit/mpfcore/internal/dataset"
	"github.com/valuationkit/mpfcore/internal/schema"
)

// Rule is one tagged-variant validation rule. Only the fields relevant to
// its Kind are set; the engine dispatches on Kind.
type Rule struct {
	Kind   RuleKind
	Column string

	// Numeric
	MustBeInteger bool
	MinExclusive  *float64
	MinInclusive  *float64

	// DateRange
	MinDate time.Time
	MaxDate time.Time

	// CrossFieldDate: AfterColumn must hold a date >= BeforeColumn's and
	// <= Reference.
	BeforeColumn string
	AfterColumn  string
	Reference    time.Time

	// Enum: parsed once from the rule table's delimited string.
	Allowed map[string]struct{}
}

// CompletenessRule checks every column for blank values. Set column to scope
// the check to a single column.
func CompletenessRule(column string) Rule {
	return Rule{Kind: KindCompleteness, Column: column}
}

// UniquenessRule requires all non-blank values in column to be pairwise
// distinct.
func UniquenessRule(column string) Rule {
	return Rule{Kind: KindUniqueness, Column: column}
}

// NumericRule requires column values to be numeric. With mustBeInteger set,
// fractional values are violations. minExclusive, when non-nil, flags values
// less than or equal to the bound.
func NumericRule(column string, mustBeInteger bool, minExclusive *float64) Rule {
	return Rule{Kind: KindNumeric, Column: column, MustBeInteger: mustBeInteger, MinExclusive: minExclusive}
}

// NonNegativeRule is a numeric rule with an inclusive zero floor: negative
// values are violations, zero is allowed.
func NonNegativeRule(column string) Rule {
	zero := 0.0
	return Rule{Kind: KindNumeric, Column: column, MinInclusive: &zero}
}

// DateRangeRule requires column values to parse as dates within [min, max].
func DateRangeRule(column string, min, max time.Time) Rule {
	return Rule{Kind: KindDateRange, Column: column, MinDate: min, MaxDate: max}
}

// CrossFieldDateRule requires after's date to be on or after before's date
// and on or before the reference date.
func CrossFieldDateRule(beforeColumn, afterColumn string, reference time.Time) Rule {
	return Rule{Kind: KindCrossFieldDate, BeforeColumn: beforeColumn, AfterColumn: afterColumn,
		Column: afterColumn, Reference: reference}
}

// EnumRule requires column values (case-sensitive string form) to belong to
// the comma-separated allowed set. The set is parsed once here, not per row.
func EnumRule(column, allowedValues string) Rule {
	allowed := make(map[string]struct{})
	for _, v := range strings.Split(allowedValues, ",") {
		if v = strings.TrimSpace(v); v != "" {
			allowed[v] = struct{}{}
		}
	}
	return Rule{Kind: KindEnum, Column: column, Allowed: allowed}
}

// Rule table column headers, matched through the schema normalizer so
// "Input_Array" and "input array" both resolve.
const (
	ruleTableColumn = "Column"
	ruleTableValues = "Input_Array"
)

// LoadRuleTable builds enum rules from a two-column {Column, Input_Array}
// dataset, keyed by canonical field name.
func LoadRuleTable(ds *dataset.TabularDataset) ([]Rule, error) {
	colName, ok := findColumn(ds, ruleTableColumn)
	if !ok {
		return nil, fmt.Errorf("rule table %s: missing %q column", ds.SourceName, ruleTableColumn)
	}
	valName, ok := findColumn(ds, ruleTableValues)
	if !ok {
		return nil, fmt.Errorf("rule table %s: missing %q column", ds.SourceName, ruleTableValues)
	}

	rules := make([]Rule, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		column := strings.TrimSpace(row[colName])
		if column == "" {
			continue
		}
		rules = append(rules, EnumRule(column, row[valName]))
	}
	return rules, nil
}

func findColumn(ds *dataset.TabularDataset, want string) (string, bool) {
	for _, c := range ds.Columns {
		if schema.NormalizeName(c) == schema.NormalizeName(want) {
			return c, true
		}
	}
	return "", false
}

// amountColumns lists the canonical amount fields checked for every product;
// monthly benefit only exists on income protection business.
func amountColumns(product string) []string {
	cols := []string{
		schema.FieldSumAssuredDeath,
		schema.FieldSumAssuredTPD,
		schema.FieldSumAssuredTrauma,
		schema.FieldAnnualPremium,
	}
	if product == "IP" {
		cols = append(cols, schema.FieldMonthlyBenefit)
	}
	return cols
}

func mandatoryColumns(product string) []string {
	cols := []string{schema.FieldSumAssuredDeath, schema.FieldAnnualPremium}
	if product == "IP" {
		cols = append(cols, schema.FieldMonthlyBenefit)
	}
	return cols
}

// DefaultRules builds the hard-configured rule set for a product relative to
// the valuation date: integer unique policy numbers, positive integer policy
// terms, non-negative amounts with strictly-positive mandatory amounts (two
// independent rules, both reported), insured age between 18 and 65 at the
// valuation date, and entry dates between birth and valuation.
func DefaultRules(product string, valuationDate time.Time) []Rule {
	zero := 0.0

	rules := []Rule{
		CompletenessRule(""),
		NumericRule(schema.FieldPolicyNumber, true, nil),
		UniquenessRule(schema.FieldPolicyNumber),
		NumericRule(schema.FieldPolicyTerm, true, &zero),
		DateRangeRule(schema.FieldDateOfBirth,
			valuationDate.AddDate(-65, 0, 0), valuationDate.AddDate(-18, 0, 0)),
		CrossFieldDateRule(schema.FieldDateOfBirth, schema.FieldEntryDate, valuationDate),
	}
	for _, col := range amountColumns(product) {
		rules = append(rules, NonNegativeRule(col))
	}
	for _, col := range mandatoryColumns(product) {
		rules = append(rules, NumericRule(col, false, &zero))
	}
	return rules
}
