package policy

import (
	"github.com/vvka-141/pg2duck/internal/duck"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// TypePolicy holds the configured cast and exclude type sets.
// Type names are compared exactly as information_schema.columns.data_type
// reports them.
type TypePolicy struct {
	castToString map[string]struct{}
	exclude      map[string]struct{}
}

// New builds a TypePolicy from the two configured type lists.
func New(castToString, exclude []string) TypePolicy {
	return TypePolicy{
		castToString: toSet(castToString),
		exclude:      toSet(exclude),
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Classify returns the action for a declared data type.
func (p TypePolicy) Classify(dataType string) pg2duck.ColumnAction {
	if _, ok := p.exclude[dataType]; ok {
		return pg2duck.ActionExclude
	}
	if _, ok := p.castToString[dataType]; ok {
		return pg2duck.ActionCastToString
	}
	return pg2duck.ActionInclude
}

// Apply returns a copy of columns with Action set from the policy.
func (p TypePolicy) Apply(columns []pg2duck.Column) []pg2duck.Column {
	out := make([]pg2duck.Column, len(columns))
	for i, c := range columns {
		c.Action = p.Classify(c.DataType)
		out[i] = c
	}
	return out
}

// Projection holds the two select lists built for a table.
type Projection struct {
	// Staging selects from the source, with VARCHAR casts applied.
	Staging []string
	// Output selects the same columns, unmodified, from the staging relation.
	Output []string
}

// Empty reports whether every column was excluded.
func (p Projection) Empty() bool {
	return len(p.Output) == 0
}

// Project builds the staging and output select lists from classified
// columns, preserving their order. Excluded columns appear in neither list.
func Project(columns []pg2duck.Column) Projection {
	var proj Projection
	for _, c := range columns {
		name := duck.QuoteIdent(c.Name)
		switch c.Action {
		case pg2duck.ActionExclude:
			continue
		case pg2duck.ActionCastToString:
			proj.Staging = append(proj.Staging, "CAST("+name+" AS VARCHAR) AS "+name)
		default:
			proj.Staging = append(proj.Staging, name)
		}
		proj.Output = append(proj.Output, name)
	}
	return proj
}

// Summary counts columns per action, for verbose logging.
func Summary(columns []pg2duck.Column) map[pg2duck.ColumnAction]int {
	counts := make(map[pg2duck.ColumnAction]int, 3)
	for _, c := range columns {
		counts[c.Action]++
	}
	return counts
}
