package search

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Filter is a store-native predicate: a SQL expression over the film_rolls
// table with '?' placeholders. The store conjoins filters with AND.
type Filter struct {
	Expr string
	Args []interface{}
}

// ComputedFilter is a predicate over a derived attribute which must be
// evaluated in memory after the store query has run.
type ComputedFilter struct {
	Field    string
	Operator Operator
	Value    string
}

// ChemistryResolver looks up chemistry batch IDs whose name contains the
// given substring, case-insensitively. Implemented by the record store.
type ChemistryResolver interface {
	ChemistryBatchIDsByName(ctx context.Context, nameSubstring string) ([]string, error)
}

// Compiler turns parsed tokens into filters. A compiler is cheap to
// construct and holds no per-query state; the resolver is the only
// external collaborator.
type Compiler struct {
	resolver ChemistryResolver
}

func NewCompiler(resolver ChemistryResolver) *Compiler {
	return &Compiler{resolver: resolver}
}

// BuildFilters splits tokens into store filters and computed filters.
// Malformed values and unknown syntax degrade to no filter rather than
// erroring; the only error source is the chemistry name lookup.
func (c *Compiler) BuildFilters(ctx context.Context, tokens []Token) ([]Filter, []ComputedFilter, error) {
	var storeFilters []Filter
	var computedFilters []ComputedFilter

	for _, token := range tokens {
		if token.Field == "" {
			storeFilters = append(storeFilters, buildTextSearchFilter(token.Value))
			continue
		}

		spec, ok := fieldAliases[token.Field]
		if !ok {
			// Parse already degrades unknown fields to text tokens;
			// an unknown field here would be a programming error.
			continue
		}

		if spec.kind == KindComputed {
			computedFilters = append(computedFilters, ComputedFilter{
				Field:    spec.column,
				Operator: token.Operator,
				Value:    token.Value,
			})
			continue
		}

		var filter *Filter
		var err error

		switch {
		case token.Field == "chemistry":
			filter, err = c.buildChemistryFilter(ctx, token.Value)
			if err != nil {
				return nil, nil, err
			}
		case spec.kind == KindBoolean:
			filter = buildBooleanFilter(spec.column, token.Operator, token.Value)
		case spec.kind == KindDate:
			filter = buildDateFilter(spec.column, token.Operator, token.Value)
		case token.Field == "push" || token.Field == "pull":
			filter = buildPushPullFilter(spec.column, token.Field, token.Operator, token.Value)
		default:
			filter = buildStandardFilter(spec, token.Operator, token.Value)
		}

		if filter != nil {
			storeFilters = append(storeFilters, *filter)
		}
	}

	return storeFilters, computedFilters, nil
}

func containsPattern(value string) string {
	return "%" + strings.ToLower(value) + "%"
}

// buildTextSearchFilter matches an unscoped token against the fixed set of
// text columns, OR-ed together.
func buildTextSearchFilter(text string) Filter {
	var exprs []string
	var args []interface{}

	for _, column := range textSearchColumns {
		exprs = append(exprs, fmt.Sprintf("LOWER(IFNULL(%s, '')) LIKE ?", column))
		args = append(args, containsPattern(text))
	}

	return Filter{
		Expr: "(" + strings.Join(exprs, " OR ") + ")",
		Args: args,
	}
}

// buildChemistryFilter resolves batches by name and filters rolls on the
// matching batch IDs. Zero matching batches yields a filter that matches
// no rolls rather than an error.
func (c *Compiler) buildChemistryFilter(ctx context.Context, value string) (*Filter, error) {
	batchIDs, err := c.resolver.ChemistryBatchIDsByName(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("error resolving chemistry name %q: %w", value, err)
	}

	if len(batchIDs) == 0 {
		return &Filter{Expr: "chemistry_id = ?", Args: []interface{}{"no-match"}}, nil
	}

	placeholders := make([]string, len(batchIDs))
	args := make([]interface{}, len(batchIDs))
	for i, id := range batchIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	return &Filter{
		Expr: "chemistry_id IN (" + strings.Join(placeholders, ", ") + ")",
		Args: args,
	}, nil
}

var truthyTokens = map[string]bool{
	"true": true, "yes": true, "1": true, "t": true, "y": true,
}

func buildBooleanFilter(column string, operator Operator, value string) *Filter {
	if operator != OpEquals {
		return nil
	}

	boolValue := 0
	if truthyTokens[strings.ToLower(value)] {
		boolValue = 1
	}

	return &Filter{Expr: column + " = ?", Args: []interface{}{boolValue}}
}

// buildDateFilter selects granularity by value length: 4 characters is a
// year, 7 is YYYY-MM, 10 is an exact date. Year and month always produce
// an inclusive range regardless of operator; exact dates honor the
// operator. Malformed dates yield no filter.
func buildDateFilter(column string, operator Operator, value string) *Filter {
	rangeFilter := func(start, end time.Time) *Filter {
		return &Filter{
			Expr: fmt.Sprintf("(%s >= ? AND %s <= ?)", column, column),
			Args: []interface{}{isoDate(start), isoDate(end)},
		}
	}

	switch len(value) {
	case 4:
		year, err := strconv.Atoi(value)
		if err != nil {
			return nil
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return rangeFilter(start, end)

	case 7:
		start, err := time.Parse("2006-01", value)
		if err != nil {
			return nil
		}
		end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
		return rangeFilter(start, end)

	case 10:
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil
		}
		op, ok := comparisonSQL(operator)
		if !ok {
			return nil
		}
		return &Filter{
			Expr: fmt.Sprintf("%s %s ?", column, op),
			Args: []interface{}{isoDate(parsed)},
		}
	}

	return nil
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// buildPushPullFilter parses the value as a stop count. A leading '+' is
// accepted; the "pull" alias forces the sign negative regardless of input.
func buildPushPullFilter(column, field string, operator Operator, value string) *Filter {
	numeric, err := strconv.ParseFloat(strings.TrimPrefix(value, "+"), 64)
	if err != nil {
		return nil
	}

	if field == "pull" {
		numeric = -math.Abs(numeric)
	}

	op, ok := comparisonSQL(operator)
	if !ok {
		return nil
	}

	return &Filter{
		Expr: fmt.Sprintf("%s %s ?", column, op),
		Args: []interface{}{numeric},
	}
}

// buildStandardFilter handles plain stored attributes. Equality on text
// columns is deliberately a case-insensitive substring match, not an exact
// match. Values that fail coercion yield no filter.
func buildStandardFilter(spec fieldSpec, operator Operator, value string) *Filter {
	if operator == OpEquals && spec.kind == KindText {
		return &Filter{
			Expr: fmt.Sprintf("LOWER(IFNULL(%s, '')) LIKE ?", spec.column),
			Args: []interface{}{containsPattern(value)},
		}
	}

	coerced, ok := coerceValue(spec.kind, value)
	if !ok {
		return nil
	}

	op, opOK := comparisonSQL(operator)
	if !opOK {
		return nil
	}

	return &Filter{
		Expr: fmt.Sprintf("%s %s ?", spec.column, op),
		Args: []interface{}{coerced},
	}
}

func coerceValue(kind FieldKind, value string) (interface{}, bool) {
	switch kind {
	case KindText:
		return value, true
	case KindInteger:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindDecimal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case KindBoolean:
		if truthyTokens[strings.ToLower(value)] {
			return 1, true
		}
		return 0, true
	default:
		return nil, false
	}
}

func comparisonSQL(operator Operator) (string, bool) {
	switch operator {
	case OpEquals:
		return "=", true
	case OpGreater:
		return ">", true
	case OpLess:
		return "<", true
	case OpGreaterEq:
		return ">=", true
	case OpLessEq:
		return "<=", true
	default:
		return "", false
	}
}
