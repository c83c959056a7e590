package directory

import (
	"context"
	"strings"
)

// Doctor is one directory record as returned to the model.
type Doctor struct {
	FullName       string `json:"Doctor_Full_Name"`
	Street         string `json:"Doctor_Full_Street"`
	City           string `json:"Doctor_Full_City"`
	Specialization string `json:"Doctor_Specialization"`
}

// Field names a searchable directory attribute.
type Field string

const (
	FieldZipcode   Field = "zipcode"
	FieldLastname  Field = "lastname"
	FieldSpecialty Field = "specialty"
	FieldGender    Field = "gender"
)

// Op is a comparison operator. Only equality is needed today.
type Op string

const OpEq Op = "="

// Predicate is a single (field, operator, value) condition.
type Predicate struct {
	Field Field
	Op    Op
	Value string
}

// Filter is a conjunction of predicates. It is data, not SQL: stores render
// it with placeholders.
type Filter struct {
	Predicates []Predicate
}

func (f *Filter) Eq(field Field, value string) *Filter {
	f.Predicates = append(f.Predicates, Predicate{Field: field, Op: OpEq, Value: value})
	return f
}

func (f Filter) Empty() bool {
	return len(f.Predicates) == 0
}

// Value returns the value of the first predicate on field.
func (f Filter) Value(field Field) (string, bool) {
	for _, p := range f.Predicates {
		if p.Field == field {
			return p.Value, true
		}
	}
	return "", false
}

// String renders the filter for logs and diagnostics, e.g.
// "lastname = 'Anderson' AND gender = 'M'". It is never executed.
func (f Filter) String() string {
	parts := make([]string, 0, len(f.Predicates))
	for _, p := range f.Predicates {
		parts = append(parts, string(p.Field)+" "+string(p.Op)+" '"+strings.ReplaceAll(p.Value, "'", "''")+"'")
	}
	return strings.Join(parts, " AND ")
}

// Store is the tool data collaborator.
type Store interface {
	Query(ctx context.Context, f Filter, limit int) ([]Doctor, error)
}
