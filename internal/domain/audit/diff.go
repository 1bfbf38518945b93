package audit

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Field declares one audited field of an entity type. The extractor reads the
// current value from a snapshot; Name is the stable identifier stored in audit
// records, independent of Go field renames.
type Field[T any] struct {
	Name  string
	Value func(*T) any
}

// Schema is the explicit, ordered list of audited fields for an entity type.
// Fields absent from the schema never appear in a diff, which keeps internal
// bookkeeping columns out of the audit trail.
type Schema[T any] struct {
	Domain string
	Fields []Field[T]
}

// Diff compares two snapshots field by field and returns one FieldChange per
// field whose value differs, in schema order. Identical snapshots produce an
// empty result.
func (s Schema[T]) Diff(before, after *T) []FieldChange {
	var changes []FieldChange
	for _, f := range s.Fields {
		oldVal := f.Value(before)
		newVal := f.Value(after)
		if valuesEqual(oldVal, newVal) {
			continue
		}
		changes = append(changes, FieldChange{
			Field: f.Name,
			Old:   oldVal,
			New:   newVal,
		})
	}
	return changes
}

// valuesEqual compares extracted field values. Decimals compare by numeric
// value so 100 and 100.00 are the same amount; times compare by instant so a
// timezone round-trip through the database does not register as a change.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Equal(bv)
		}
	case *decimal.Decimal:
		if bv, ok := b.(*decimal.Decimal); ok {
			if av == nil || bv == nil {
				return av == bv
			}
			return av.Equal(*bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Equal(bv)
		}
	case *time.Time:
		if bv, ok := b.(*time.Time); ok {
			if av == nil || bv == nil {
				return av == bv
			}
			return av.Equal(*bv)
		}
	}

	return reflect.DeepEqual(a, b)
}
