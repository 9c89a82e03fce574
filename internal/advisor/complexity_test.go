package advisor

import (
	"strings"
	"testing"
)

func TestEstimateComplexity_SimpleQuery(t *testing.T) {
	report := EstimateComplexity("SELECT id FROM users WHERE id = 1 LIMIT 1")

	if report.Score != 0 {
		t.Errorf("score = %d, want 0", report.Score)
	}
	if report.Readability != 10 {
		t.Errorf("readability = %d, want 10", report.Readability)
	}
	if report.Maintainability != 10 {
		t.Errorf("maintainability = %d, want 10", report.Maintainability)
	}
	if len(report.RiskFactors) != 0 {
		t.Errorf("risk factors = %v, want none", report.RiskFactors)
	}
}

func TestEstimateComplexity_Increments(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"long query", "SELECT a FROM t WHERE a = 1 LIMIT 1 --" + strings.Repeat("x", 500), 3},
		{"many joins", "SELECT a FROM t JOIN b ON 1=1 JOIN c ON 1=1 JOIN d ON 1=1 JOIN e ON 1=1 LIMIT 1", 2},
		{"unbalanced parens", "SELECT a FROM t WHERE a IN (1, 2 LIMIT 1", 2},
		{"window function", "SELECT rank() over(ORDER BY a) FROM t LIMIT 1", 1},
		{"group by", "SELECT a FROM t GROUP BY a LIMIT 1", 1},
		{"having", "SELECT a FROM t HAVING count(a) > 1 LIMIT 1", 1},
		{"set operation", "SELECT a FROM t UNION SELECT a FROM u LIMIT 1", 2},
	}

	for _, c := range cases {
		report := EstimateComplexity(c.query)
		if report.Score != c.want {
			t.Errorf("%s: score = %d, want %d", c.name, report.Score, c.want)
		}
	}
}

func TestEstimateComplexity_BalancedSubqueryParens(t *testing.T) {
	report := EstimateComplexity("SELECT id FROM (SELECT id FROM t LIMIT 5) s LIMIT 1")
	if report.Score != 0 {
		t.Errorf("score = %d, want 0 (balanced parentheses do not count)", report.Score)
	}
}

func TestEstimateComplexity_ClippedAtTen(t *testing.T) {
	query := "SELECT DISTINCT rank() over(ORDER BY a FROM t " +
		"JOIN b ON 1=1 JOIN c ON 1=1 JOIN d ON 1=1 JOIN e ON 1=1 " +
		"GROUP BY a UNION SELECT a FROM u --" + strings.Repeat("x", 500)

	report := EstimateComplexity(query)
	if report.Score != 10 {
		t.Errorf("score = %d, want 10 (clipped)", report.Score)
	}
	if report.Readability != 1 {
		t.Errorf("readability = %d, want floor of 1", report.Readability)
	}
	if report.Maintainability != 5 {
		t.Errorf("maintainability = %d, want 5", report.Maintainability)
	}
}

func TestEstimateComplexity_MaintainabilityFloorsDivision(t *testing.T) {
	// Nine points: long (+3), joins (+2), unbalanced (+2), group by (+1),
	// window (+1). Maintainability = 10 - 9/2 = 6.
	query := "SELECT rank() over(ORDER BY a FROM t " +
		"JOIN b ON 1=1 JOIN c ON 1=1 JOIN d ON 1=1 JOIN e ON 1=1 " +
		"GROUP BY a --" + strings.Repeat("x", 500)

	report := EstimateComplexity(query)
	if report.Score != 9 {
		t.Fatalf("score = %d, want 9", report.Score)
	}
	if report.Maintainability != 6 {
		t.Errorf("maintainability = %d, want 6", report.Maintainability)
	}
}

func TestEstimateComplexity_RiskFactors(t *testing.T) {
	report := EstimateComplexity("SELECT * FROM (SELECT DISTINCT name FROM t) s WHERE name LIKE '%x' ORDER BY name")
	if len(report.RiskFactors) != 4 {
		t.Fatalf("risk factors = %v, want 4", report.RiskFactors)
	}

	report = EstimateComplexity("SELECT DISTINCT a FROM t LIMIT 1")
	if len(report.RiskFactors) != 1 {
		t.Errorf("risk factors = %v, want only the DISTINCT entry", report.RiskFactors)
	}
}
