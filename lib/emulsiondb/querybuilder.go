package emulsiondb

import (
	"strconv"
	"strings"

	"github.com/FSXAC/Emulsion/lib/search"
)

// queryBuilder assembles SELECT statements over a single table with
// AND-conjoined WHERE clauses and '?' placeholders.
type queryBuilder struct {
	table string

	selectClause string
	whereClauses []string
	orderClause  string

	limit  int
	offset int

	args []interface{}
}

func newQueryBuilder(table, selectClause string) *queryBuilder {
	return &queryBuilder{
		table:        table,
		selectClause: selectClause,
		limit:        -1,
		offset:       -1,
	}
}

func (qb *queryBuilder) addWhere(expr string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, expr)
	qb.args = append(qb.args, args...)
}

// addSearchFilters appends compiled store filters; each filter is already
// a fully-formed predicate expression with its own arguments.
func (qb *queryBuilder) addSearchFilters(filters []search.Filter) {
	for _, filter := range filters {
		qb.addWhere(filter.Expr, filter.Args...)
	}
}

func (qb *queryBuilder) addEqualsFilter(column string, value interface{}) {
	qb.addWhere(column+" = ?", value)
}

func (qb *queryBuilder) addContainsFilter(column, value string) {
	qb.addWhere("LOWER(IFNULL("+column+", '')) LIKE ?", "%"+strings.ToLower(value)+"%")
}

func (qb *queryBuilder) setOrderBy(orderClause string) {
	qb.orderClause = orderClause
}

func (qb *queryBuilder) setPagination(skip, limit int) {
	qb.offset = skip
	qb.limit = limit
}

func (qb *queryBuilder) buildQuery() (string, []interface{}) {
	query := "SELECT " + qb.selectClause
	query += "\nFROM " + qb.table

	for i, whereClause := range qb.whereClauses {
		if i == 0 {
			query += "\nWHERE " + whereClause
		} else {
			query += "\nAND   " + whereClause
		}
	}

	if qb.orderClause != "" {
		query += "\nORDER BY " + qb.orderClause
	}

	if qb.limit >= 0 {
		query += "\nLIMIT " + strconv.Itoa(qb.limit)
	} else if qb.offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
		query += "\nLIMIT -1"
	}

	if qb.offset > 0 {
		query += "\nOFFSET " + strconv.Itoa(qb.offset)
	}

	return query, qb.args
}

// buildCountQuery reuses the WHERE clauses to count matching rows,
// ignoring ordering and pagination.
func (qb *queryBuilder) buildCountQuery() (string, []interface{}) {
	query := "SELECT COUNT(*)"
	query += "\nFROM " + qb.table

	for i, whereClause := range qb.whereClauses {
		if i == 0 {
			query += "\nWHERE " + whereClause
		} else {
			query += "\nAND   " + whereClause
		}
	}

	return query, qb.args
}
