package search

// FieldKind tags a searchable field with the coercion its stored column
// needs, or marks it as computed (derived at read time, not stored).
type FieldKind int

const (
	KindText FieldKind = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindComputed
)

type fieldSpec struct {
	column string
	kind   FieldKind
}

// Computed field names emitted in ComputedFilter triples.
const (
	ComputedStatus    = "status"
	ComputedTotalCost = "total_cost"
)

// fieldAliases maps user-facing field names to stored columns of the
// film_rolls table, or to computed sentinels. Fixed at compile time;
// changing it is a deployment change, never a runtime operation.
//
// Both "mine" and "not_mine" resolve to the stored not_mine flag without
// inversion, matching long-standing query behavior.
var fieldAliases = map[string]fieldSpec{
	"format":    {column: "film_format", kind: KindText},
	"stock":     {column: "film_stock_name", kind: KindText},
	"order":     {column: "order_id", kind: KindText},
	"stars":     {column: "stars", kind: KindInteger},
	"mine":      {column: "not_mine", kind: KindBoolean},
	"not_mine":  {column: "not_mine", kind: KindBoolean},
	"push":      {column: "push_pull_stops", kind: KindDecimal},
	"pull":      {column: "push_pull_stops", kind: KindDecimal},
	"chemistry": {column: "chemistry_id", kind: KindText},
	"status":    {column: ComputedStatus, kind: KindComputed},
	"cost":      {column: ComputedTotalCost, kind: KindComputed},
	"date":      {column: "date_loaded", kind: KindDate},
}

// textSearchColumns are the columns matched by unscoped text tokens.
var textSearchColumns = []string{"film_stock_name", "order_id", "notes"}
