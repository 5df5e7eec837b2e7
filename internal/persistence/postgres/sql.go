package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/fitness/internal/query"
)

// columnSet maps the fields a table exposes to SQL column expressions.
type columnSet map[query.Field]string

var workoutColumns = columnSet{
	query.FieldID:         "w.id",
	query.FieldTitle:      "w.title",
	query.FieldCategory:   "w.category",
	query.FieldDifficulty: "w.difficulty",
	query.FieldInstructor: "w.instructor",
	query.FieldRating:     "w.rating",
	query.FieldCreatedAt:  "w.created_at",
	query.FieldUpdatedAt:  "w.updated_at",
}

var bookmarkColumns = columnSet{
	query.FieldID:        "b.id",
	query.FieldUserID:    "b.user_id",
	query.FieldWorkoutID: "b.workout_id",
	query.FieldCreatedAt: "b.created_at",
	query.FieldUpdatedAt: "b.updated_at",
}

var activityColumns = columnSet{
	query.FieldID:             "a.id",
	query.FieldUserID:         "a.user_id",
	query.FieldActivityName:   "a.activity_name",
	query.FieldDuration:       "a.duration",
	query.FieldCaloriesBurned: "a.calories_burned",
	query.FieldCategory:       "a.category",
	query.FieldDifficulty:     "a.difficulty",
	query.FieldDate:           "a.date",
	query.FieldCreatedAt:      "a.created_at",
	query.FieldUpdatedAt:      "a.updated_at",
}

// args collects positional parameters while a statement is rendered.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// where renders p as a WHERE clause, or "" when p is empty.
func (cs columnSet) where(p query.Predicate, params *args) (string, error) {
	if p.IsEmpty() {
		return "", nil
	}
	clauses := make([]string, 0, len(p.Clauses))
	for _, clause := range p.Clauses {
		terms := make([]string, 0, len(clause.AnyOf))
		for _, cond := range clause.AnyOf {
			term, err := cs.condition(cond, params)
			if err != nil {
				return "", err
			}
			terms = append(terms, term)
		}
		if len(terms) == 1 {
			clauses = append(clauses, terms[0])
			continue
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func (cs columnSet) condition(c query.Condition, params *args) (string, error) {
	col, ok := cs[c.Field]
	if !ok {
		return "", fmt.Errorf("field %q cannot be filtered", c.Field)
	}

	if c.Op == query.OpContainsFold {
		needle, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("field %q: contains needs a string, got %T", c.Field, c.Value)
		}
		return col + " ILIKE " + params.add("%"+escapeLike(needle)+"%") + ` ESCAPE '\'`, nil
	}

	var op string
	switch c.Op {
	case query.OpEq:
		op = " = "
	case query.OpGte:
		op = " >= "
	case query.OpLte:
		op = " <= "
	default:
		return "", fmt.Errorf("field %q: unsupported operator %s", c.Field, c.Op)
	}

	return col + op + params.add(c.Value), nil
}

// orderBy renders order as an ORDER BY clause.
func (cs columnSet) orderBy(order []query.Order) (string, error) {
	if len(order) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(order))
	for _, o := range order {
		col, ok := cs[o.Field]
		if !ok {
			return "", fmt.Errorf("field %q cannot be sorted", o.Field)
		}
		dir := "ASC"
		if o.Direction == query.Desc {
			dir = "DESC"
		}
		terms = append(terms, col+" "+dir)
	}
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

// window renders LIMIT and OFFSET. A limit below 1 means no limit.
func window(limit, offset int, params *args) string {
	var sb strings.Builder
	if limit > 0 {
		sb.WriteString(" LIMIT " + params.add(limit))
	}
	if offset > 0 {
		sb.WriteString(" OFFSET " + params.add(offset))
	}
	return sb.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
