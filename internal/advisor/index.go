package advisor

import (
	"fmt"
	"regexp"
	"strings"
)

// Column references are extracted with single-pass patterns over lower-cased
// SQL, not a parser. Unqualified columns and aliased tables are known blind
// spots; the advisor stays best-effort on them.
var (
	stringLiteralRe = regexp.MustCompile(`'[^']*'`)
	whereClauseRe   = regexp.MustCompile(`(?s)\bwhere\s+(.*?)(?:\bgroup\s+by\b|\border\s+by\b|\blimit\b|\bhaving\b|$)`)
	qualifiedColRe  = regexp.MustCompile(`\b(\w+)\.(\w+)\s*[=<>]`)
	joinOnRe        = regexp.MustCompile(`(?s)\bjoin\s+\w+(?:\s+(?:as\s+)?\w+)?\s+on\s+(\w+)\.(\w+)\s*=\s*(\w+)\.(\w+)`)
	orderByColRe    = regexp.MustCompile(`\border\s+by\s+(\w+)\.(\w+)`)
	groupByColRe    = regexp.MustCompile(`\bgroup\s+by\s+(\w+)\.(\w+)`)
)

type columnRef struct {
	table  string
	column string
	source string
}

// SuggestIndexes scans the query for indexable column references and returns
// one suggestion per unique (table, column) pair, plus one composite-index
// suggestion per table carrying two or more WHERE columns. Pairs already
// covered by an existing index are dropped; composite suggestions never are.
func SuggestIndexes(query string, existing []ExistingIndex) []Suggestion {
	cleaned := stringLiteralRe.ReplaceAllString(strings.ToLower(query), "''")

	refs, whereCols, tableOrder := collectColumnRefs(cleaned)

	indexed := make(map[string]bool, len(existing))
	for _, idx := range existing {
		indexed[strings.ToLower(idx.Table)+"."+strings.ToLower(idx.Column)] = true
	}

	var suggestions []Suggestion
	for _, ref := range refs {
		if indexed[ref.table+"."+ref.column] {
			continue
		}
		suggestions = append(suggestions, singleIndexSuggestion(ref))
	}
	for _, table := range tableOrder {
		cols := whereCols[table]
		if len(cols) < 2 {
			continue
		}
		suggestions = append(suggestions, compositeIndexSuggestion(table, cols))
	}
	return suggestions
}

// ReferencedTables lists the tables named in qualified column references, in
// first-appearance order. Callers use it to scope catalog lookups.
func ReferencedTables(query string) []string {
	cleaned := stringLiteralRe.ReplaceAllString(strings.ToLower(query), "''")
	refs, _, _ := collectColumnRefs(cleaned)

	var tables []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if !seen[ref.table] {
			seen[ref.table] = true
			tables = append(tables, ref.table)
		}
	}
	return tables
}

// collectColumnRefs walks the WHERE, JOIN, ORDER BY and GROUP BY patterns in
// that order, keeping the first occurrence of each (table, column) pair. The
// returned map groups WHERE columns per table in discovery order.
func collectColumnRefs(query string) ([]columnRef, map[string][]string, []string) {
	var refs []columnRef
	seen := make(map[string]bool)

	whereCols := make(map[string][]string)
	var tableOrder []string

	add := func(table, column, source string) {
		key := table + "." + column
		if !seen[key] {
			seen[key] = true
			refs = append(refs, columnRef{table: table, column: column, source: source})
		}
	}

	for _, clause := range whereClauseRe.FindAllStringSubmatch(query, -1) {
		for _, m := range qualifiedColRe.FindAllStringSubmatch(clause[1], -1) {
			add(m[1], m[2], "where")
			if !containsString(whereCols[m[1]], m[2]) {
				if _, ok := whereCols[m[1]]; !ok {
					tableOrder = append(tableOrder, m[1])
				}
				whereCols[m[1]] = append(whereCols[m[1]], m[2])
			}
		}
	}
	for _, m := range joinOnRe.FindAllStringSubmatch(query, -1) {
		add(m[1], m[2], "join")
		add(m[3], m[4], "join")
	}
	for _, m := range orderByColRe.FindAllStringSubmatch(query, -1) {
		add(m[1], m[2], "order by")
	}
	for _, m := range groupByColRe.FindAllStringSubmatch(query, -1) {
		add(m[1], m[2], "group by")
	}

	return refs, whereCols, tableOrder
}

func singleIndexSuggestion(ref columnRef) Suggestion {
	priority := PriorityMedium
	impact := "Medium"
	var description string

	switch ref.source {
	case "where":
		priority = PriorityHigh
		impact = "High"
		description = fmt.Sprintf("Queries filter on %s.%s; without an index each lookup scans the table.", ref.table, ref.column)
	case "join":
		priority = PriorityHigh
		impact = "High"
		description = fmt.Sprintf("Join condition on %s.%s; an index lets the planner use index lookups instead of full scans.", ref.table, ref.column)
	case "order by":
		description = fmt.Sprintf("Sorting on %s.%s can read index order and skip an explicit sort.", ref.table, ref.column)
	case "group by":
		description = fmt.Sprintf("Grouping on %s.%s can consume pre-sorted index data.", ref.table, ref.column)
	}

	return Suggestion{
		Type:        TypeIndex,
		Priority:    priority,
		Title:       fmt.Sprintf("Add index on %s.%s", ref.table, ref.column),
		Description: description,
		SQL:         fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);", ref.table, ref.column, ref.table, ref.column),
		Impact:      impact,
		Effort:      "Low",
	}
}

func compositeIndexSuggestion(table string, cols []string) Suggestion {
	colList := strings.Join(cols, ", ")
	return Suggestion{
		Type:        TypeIndex,
		Priority:    PriorityHigh,
		Title:       fmt.Sprintf("Add composite index on %s (%s)", table, colList),
		Description: fmt.Sprintf("Multiple WHERE predicates hit %s; one composite index can satisfy them together.", table),
		SQL:         fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);", table, strings.Join(cols, "_"), table, colList),
		Impact:      "High",
		Effort:      "Medium",
	}
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
