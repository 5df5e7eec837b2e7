package query

import (
	"strings"
	"time"
)

// Op is a comparison applied to a single field.
type Op int

const (
	// OpEq matches exact equality.
	OpEq Op = iota
	// OpGte matches values greater than or equal to the operand.
	OpGte
	// OpLte matches values less than or equal to the operand.
	OpLte
	// OpContainsFold matches a case-insensitive substring.
	OpContainsFold
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpContainsFold:
		return "contains"
	default:
		return "unknown"
	}
}

// Condition compares one field against a value.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// Clause is a disjunction of conditions. Most clauses hold a single
// condition; the free-text search clause holds one per searchable field.
type Clause struct {
	AnyOf []Condition
}

// Predicate is a conjunction of clauses. The zero Predicate matches
// everything.
type Predicate struct {
	Clauses []Clause
}

// Where adds a single-condition clause.
func (p Predicate) Where(field Field, op Op, value any) Predicate {
	return p.AnyOf(Condition{Field: field, Op: op, Value: value})
}

// AnyOf adds a clause satisfied when any of the conditions hold.
func (p Predicate) AnyOf(conds ...Condition) Predicate {
	if len(conds) == 0 {
		return p
	}
	clauses := make([]Clause, len(p.Clauses), len(p.Clauses)+1)
	copy(clauses, p.Clauses)
	anyOf := make([]Condition, len(conds))
	copy(anyOf, conds)
	return Predicate{Clauses: append(clauses, Clause{AnyOf: anyOf})}
}

// IsEmpty reports whether the predicate has no constraints.
func (p Predicate) IsEmpty() bool {
	return len(p.Clauses) == 0
}

// workoutSearchFields are matched by the free-text search filter.
var workoutSearchFields = []Field{FieldTitle, FieldInstructor, FieldCategory}

// ComposeWorkouts builds the workout catalog predicate.
func ComposeWorkouts(spec Spec) Predicate {
	var p Predicate
	f := spec.Filters
	if f.Category != "" {
		p = p.Where(FieldCategory, OpEq, f.Category)
	}
	if f.Difficulty != "" {
		p = p.Where(FieldDifficulty, OpEq, f.Difficulty)
	}
	if f.Instructor != "" {
		p = p.Where(FieldInstructor, OpEq, f.Instructor)
	}
	if f.MinRating != nil {
		p = p.Where(FieldRating, OpGte, *f.MinRating)
	}
	if f.Search != "" {
		conds := make([]Condition, 0, len(workoutSearchFields))
		for _, field := range workoutSearchFields {
			conds = append(conds, Condition{Field: field, Op: OpContainsFold, Value: f.Search})
		}
		p = p.AnyOf(conds...)
	}
	return p
}

// ComposeBookmarks builds the predicate for a user's bookmarks.
func ComposeBookmarks(userID string, _ Spec) Predicate {
	return OwnedBy(userID)
}

// ComposeActivities builds the predicate for a user's logged activities.
func ComposeActivities(userID string, spec Spec) Predicate {
	p := OwnedBy(userID)
	f := spec.Filters
	if f.Category != "" {
		p = p.Where(FieldCategory, OpEq, f.Category)
	}
	if f.StartDate != nil {
		p = p.Where(FieldDate, OpGte, *f.StartDate)
	}
	if f.EndDate != nil {
		p = p.Where(FieldDate, OpLte, *f.EndDate)
	}
	return p
}

// Compose dispatches on spec.Resource. The owner is ignored for workouts,
// which are not user scoped.
func Compose(owner string, spec Spec) Predicate {
	switch spec.Resource {
	case ResourceWorkouts:
		return ComposeWorkouts(spec)
	case ResourceBookmarks:
		return ComposeBookmarks(owner, spec)
	case ResourceActivities:
		return ComposeActivities(owner, spec)
	default:
		return Predicate{}
	}
}

// OwnedBy returns a predicate restricting records to a user.
func OwnedBy(userID string) Predicate {
	return Predicate{}.Where(FieldUserID, OpEq, userID)
}

// Record exposes field values to in-process predicate evaluation.
type Record interface {
	Value(Field) (any, bool)
}

// Matches evaluates the predicate against a record. Conditions on fields the
// record does not expose never match.
func (p Predicate) Matches(rec Record) bool {
	for _, clause := range p.Clauses {
		if !clause.matches(rec) {
			return false
		}
	}
	return true
}

func (c Clause) matches(rec Record) bool {
	for _, cond := range c.AnyOf {
		if cond.Matches(rec) {
			return true
		}
	}
	return false
}

// Matches evaluates a single condition against a record.
func (c Condition) Matches(rec Record) bool {
	actual, ok := rec.Value(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpContainsFold:
		s, ok := actual.(string)
		needle, ok2 := c.Value.(string)
		return ok && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case OpEq:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp == 0
	case OpGte:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp <= 0
	default:
		return false
	}
}

// Compare orders two field values of compatible kinds. Integers and floats
// compare numerically, times chronologically and strings lexically. The
// second result is false when the kinds are incompatible.
func Compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareOrdered(x, y), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func compareOrdered(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
