package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valuationkit/mpfcore/internal/dataset"
)

// Evaluate runs every rule against the dataset and merges the results into
// one report. Rules that target a column the dataset does not carry produce
// an issue rather than being skipped silently. The engine never
// short-circuits; the only fatal condition is an unusable key column.
func Evaluate(ds *dataset.TabularDataset, rules []Rule, keyColumn string) (*Report, error) {
	if !ds.HasColumn(keyColumn) {
		return nil, fmt.Errorf("%s: key column %q is missing, cannot attribute issues to rows", ds.SourceName, keyColumn)
	}

	rep := &Report{Source: ds.SourceName}
	for _, rule := range rules {
		rep.Issues = append(rep.Issues, evalRule(ds, rule, keyColumn)...)
	}
	return rep, nil
}

func evalRule(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	if rule.Kind != KindCompleteness || rule.Column != "" {
		target := rule.Column
		if rule.Kind == KindCrossFieldDate {
			target = rule.AfterColumn
		}
		if !ds.HasColumn(target) {
			return []Issue{{
				Kind:   rule.Kind,
				Column: target,
				Detail: fmt.Sprintf("column %q not found in dataset", target),
			}}
		}
	}

	switch rule.Kind {
	case KindCompleteness:
		return evalCompleteness(ds, rule, keyColumn)
	case KindUniqueness:
		return evalUniqueness(ds, rule, keyColumn)
	case KindNumeric:
		return evalNumeric(ds, rule, keyColumn)
	case KindDateRange:
		return evalDateRange(ds, rule, keyColumn)
	case KindCrossFieldDate:
		return evalCrossFieldDate(ds, rule, keyColumn)
	case KindEnum:
		return evalEnum(ds, rule, keyColumn)
	default:
		return []Issue{{Kind: rule.Kind, Column: rule.Column, Detail: "unknown rule kind"}}
	}
}

func isBlank(v string) bool { return strings.TrimSpace(v) == "" }

func evalCompleteness(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	columns := ds.Columns
	if rule.Column != "" {
		columns = []string{rule.Column}
	}

	var issues []Issue
	for _, col := range columns {
		var keys []string
		for _, row := range ds.Rows {
			if isBlank(row[col]) {
				keys = append(keys, row[keyColumn])
			}
		}
		if len(keys) > 0 {
			issues = append(issues, Issue{
				Kind:    KindCompleteness,
				Column:  col,
				RowKeys: keys,
				Detail:  fmt.Sprintf("%d rows have blank or missing values", len(keys)),
			})
		}
	}
	return issues
}

func evalUniqueness(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	byValue := make(map[string][]string)
	order := make([]string, 0)
	for _, row := range ds.Rows {
		v := strings.TrimSpace(row[rule.Column])
		if v == "" {
			continue
		}
		if _, seen := byValue[v]; !seen {
			order = append(order, v)
		}
		byValue[v] = append(byValue[v], row[keyColumn])
	}

	var issues []Issue
	for _, v := range order {
		keys := byValue[v]
		if len(keys) > 1 {
			issues = append(issues, Issue{
				Kind:    KindUniqueness,
				Column:  rule.Column,
				RowKeys: keys,
				Detail:  fmt.Sprintf("value %q appears %d times", v, len(keys)),
			})
		}
	}
	return issues
}

func evalNumeric(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	var keys []string
	var reasons []string
	seen := make(map[string]struct{})

	flag := func(key, reason string) {
		keys = append(keys, key)
		if _, ok := seen[reason]; !ok {
			seen[reason] = struct{}{}
			reasons = append(reasons, reason)
		}
	}

	for _, row := range ds.Rows {
		raw := strings.TrimSpace(row[rule.Column])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			flag(row[keyColumn], "not numeric")
			continue
		}
		if rule.MustBeInteger && math.Trunc(v) != v {
			flag(row[keyColumn], "not an integer")
			continue
		}
		if rule.MinExclusive != nil && v <= *rule.MinExclusive {
			flag(row[keyColumn], fmt.Sprintf("must be greater than %g", *rule.MinExclusive))
			continue
		}
		if rule.MinInclusive != nil && v < *rule.MinInclusive {
			flag(row[keyColumn], fmt.Sprintf("must be at least %g", *rule.MinInclusive))
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return []Issue{{
		Kind:    KindNumeric,
		Column:  rule.Column,
		RowKeys: keys,
		Detail:  strings.Join(reasons, "; "),
	}}
}

// dateLayouts covers the date spellings seen across upstream files. Cell
// values arrive as strings, so parsing is attempted in declared order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2-Jan-06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func evalDateRange(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	var keys []string
	for _, row := range ds.Rows {
		t, ok := parseDate(row[rule.Column])
		if !ok || t.Before(rule.MinDate) || t.After(rule.MaxDate) {
			keys = append(keys, row[keyColumn])
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return []Issue{{
		Kind:    KindDateRange,
		Column:  rule.Column,
		RowKeys: keys,
		Detail: fmt.Sprintf("dates must fall within [%s, %s]",
			rule.MinDate.Format("2006-01-02"), rule.MaxDate.Format("2006-01-02")),
	}}
}

func evalCrossFieldDate(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	var keys []string
	for _, row := range ds.Rows {
		after, ok := parseDate(row[rule.AfterColumn])
		if !ok || after.After(rule.Reference) {
			keys = append(keys, row[keyColumn])
			continue
		}
		// An unparsable before-column value is that column's own problem;
		// the ordering check only applies when both sides parse.
		if before, ok := parseDate(row[rule.BeforeColumn]); ok && after.Before(before) {
			keys = append(keys, row[keyColumn])
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return []Issue{{
		Kind:    KindCrossFieldDate,
		Column:  rule.AfterColumn,
		RowKeys: keys,
		Detail: fmt.Sprintf("%s must be on or after %s and on or before %s",
			rule.AfterColumn, rule.BeforeColumn, rule.Reference.Format("2006-01-02")),
	}}
}

func evalEnum(ds *dataset.TabularDataset, rule Rule, keyColumn string) []Issue {
	var keys []string
	for _, row := range ds.Rows {
		if _, ok := rule.Allowed[row[rule.Column]]; !ok {
			keys = append(keys, row[keyColumn])
		}
	}

	if len(keys) == 0 {
		return nil
	}

	allowed := make([]string, 0, len(rule.Allowed))
	for v := range rule.Allowed {
		allowed = append(allowed, v)
	}
	sort.Strings(allowed)

	return []Issue{{
		Kind:    KindEnum,
		Column:  rule.Column,
		RowKeys: keys,
		Detail:  fmt.Sprintf("values must be one of [%s]", strings.Join(allowed, ", ")),
	}}
}
