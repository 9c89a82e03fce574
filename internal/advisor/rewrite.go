package advisor

import (
	"regexp"
	"strings"
)

var (
	fromTableRe = regexp.MustCompile(`\bfrom\s+\w+`)
	orWordRe    = regexp.MustCompile(`\bor\b`)
)

// SuggestRewrites runs the fixed pattern checks over the lower-cased query
// text. Each matching pattern yields one suggestion with a static
// impact/effort pair.
func SuggestRewrites(query string) []Suggestion {
	q := strings.ToLower(query)
	hasWhere := strings.Contains(q, "where")

	var suggestions []Suggestion

	if strings.Contains(q, "select *") {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityMedium,
			Title:       "Avoid SELECT *",
			Description: "Selecting every column transfers data the caller may not need and defeats covering indexes. List the required columns explicitly.",
			Impact:      "Medium",
			Effort:      "Low",
		})
	}

	if (fromTableRe.MatchString(q) || strings.Contains(q, "join")) && !hasWhere {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityHigh,
			Title:       "Missing WHERE clause",
			Description: "The query touches every row of the referenced tables. Add a WHERE clause to restrict the row set.",
			Impact:      "High",
			Effort:      "Medium",
		})
	}

	if strings.Contains(q, "order by") && !strings.Contains(q, "limit") {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityMedium,
			Title:       "ORDER BY without LIMIT",
			Description: "Sorting the full result set is wasted work when only the first rows matter. Add a LIMIT if the caller does not consume everything.",
			Impact:      "Medium",
			Effort:      "Low",
		})
	}

	if strings.Contains(q, "like '%") {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityHigh,
			Title:       "Leading-wildcard LIKE",
			Description: "LIKE patterns starting with % cannot use a btree index. Consider full-text search or a trigram index.",
			Impact:      "High",
			Effort:      "Medium",
		})
	}

	if hasWhere && (strings.Contains(q, "lower(") || strings.Contains(q, "upper(") || strings.Contains(q, "date(")) {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityHigh,
			Title:       "Function call on filtered column",
			Description: "Wrapping a column in a function inside WHERE prevents plain index use. Create an expression index or move the function to the comparison value.",
			Impact:      "High",
			Effort:      "Medium",
		})
	}

	if hasWhere && orWordRe.MatchString(q) {
		suggestions = append(suggestions, Suggestion{
			Type:        TypeQueryRewrite,
			Priority:    PriorityMedium,
			Title:       "OR condition in WHERE",
			Description: "OR conditions often block index usage. Rewriting as a UNION of two indexed queries can be substantially faster.",
			Impact:      "Medium",
			Effort:      "Medium",
		})
	}

	return suggestions
}
