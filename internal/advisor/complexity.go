package advisor

import "strings"

// Complexity score increments.
const (
	complexityLongQueryChars = 500
	complexityManyJoins      = 3
	complexityMax            = 10
)

type ComplexityReport struct {
	Score           int      `json:"score"`
	Readability     int      `json:"readability"`
	Maintainability int      `json:"maintainability"`
	RiskFactors     []string `json:"riskFactors,omitempty"`
}

// EstimateComplexity scores structural complexity of the query text on a
// 0-10 scale and derives readability and maintainability from it. Risk
// factors are collected independently of the score.
func EstimateComplexity(query string) ComplexityReport {
	q := strings.ToLower(query)

	score := 0
	if len(query) > complexityLongQueryChars {
		score += 3
	}
	if strings.Count(q, "join") > complexityManyJoins {
		score += 2
	}
	// Unbalanced parentheses stand in for subquery nesting depth.
	if strings.Count(q, "(") != strings.Count(q, ")") {
		score += 2
	}
	if strings.Contains(q, "over(") {
		score++
	}
	if strings.Contains(q, "group by") || strings.Contains(q, "having") {
		score++
	}
	if strings.Contains(q, "union") || strings.Contains(q, "intersect") || strings.Contains(q, "except") {
		score += 2
	}
	if score > complexityMax {
		score = complexityMax
	}

	readability := 10 - score
	if readability < 1 {
		readability = 1
	}
	maintainability := 10 - score/2
	if maintainability < 1 {
		maintainability = 1
	}

	return ComplexityReport{
		Score:           score,
		Readability:     readability,
		Maintainability: maintainability,
		RiskFactors:     riskFactors(q),
	}
}

func riskFactors(q string) []string {
	var risks []string
	if strings.Contains(q, "select *") {
		risks = append(risks, "SELECT * couples the query to the full table schema")
	}
	if strings.Contains(q, "distinct") {
		risks = append(risks, "DISTINCT may hide a join producing duplicate rows")
	}
	if strings.Contains(q, "like '%") {
		risks = append(risks, "Leading-wildcard LIKE cannot use a btree index")
	}
	if strings.Contains(q, "order by") && !strings.Contains(q, "limit") {
		risks = append(risks, "ORDER BY without LIMIT sorts the entire result set")
	}
	return risks
}
