package emulsiondb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FSXAC/Emulsion/lib/search"
)

func TestQueryBuilderBare(t *testing.T) {
	qb := newQueryBuilder("film_rolls", "id")
	query, args := qb.buildQuery()

	assert.Equal(t, "SELECT id\nFROM film_rolls", query)
	assert.Empty(t, args)
}

func TestQueryBuilderWhereConjunction(t *testing.T) {
	qb := newQueryBuilder("film_rolls", "id")
	qb.addEqualsFilter("order_id", "film-0001")
	qb.addSearchFilters([]search.Filter{
		{Expr: "stars >= ?", Args: []interface{}{4}},
	})

	query, args := qb.buildQuery()
	assert.Contains(t, query, "WHERE order_id = ?")
	assert.Contains(t, query, "AND   stars >= ?")
	assert.Equal(t, []interface{}{"film-0001", 4}, args)
}

func TestQueryBuilderPagination(t *testing.T) {
	qb := newQueryBuilder("film_rolls", "id")
	qb.setPagination(10, 5)

	query, _ := qb.buildQuery()
	assert.Contains(t, query, "LIMIT 5")
	assert.Contains(t, query, "OFFSET 10")
}

func TestQueryBuilderOffsetWithoutLimit(t *testing.T) {
	qb := newQueryBuilder("film_rolls", "id")
	qb.setPagination(10, -1)

	// SQLite refuses OFFSET without LIMIT; -1 keeps it unbounded.
	query, _ := qb.buildQuery()
	assert.Contains(t, query, "LIMIT -1")
	assert.Contains(t, query, "OFFSET 10")
}

func TestQueryBuilderCountIgnoresPagination(t *testing.T) {
	qb := newQueryBuilder("film_rolls", "id")
	qb.addEqualsFilter("order_id", "film-0001")
	qb.setOrderBy("created_at ASC")
	qb.setPagination(10, 5)

	query, args := qb.buildCountQuery()
	assert.Equal(t, "SELECT COUNT(*)\nFROM film_rolls\nWHERE order_id = ?", query)
	assert.Equal(t, []interface{}{"film-0001"}, args)
	assert.NotContains(t, query, "LIMIT")
	assert.NotContains(t, query, "ORDER BY")
}
