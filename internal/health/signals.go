package health

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver/v4"
	"go.uber.org/zap"

	"github.com/pgadvise/pgadvise/internal/advisor"
	"github.com/pgadvise/pgadvise/internal/catalog"
	"github.com/pgadvise/pgadvise/internal/detector"
)

const (
	areaSecurity    = "security"
	areaPerformance = "performance"

	superuserWarnCount = 3
	slowStatementMs    = 500.0
	seqScanMinRows     = 10000
)

// signal is one health finding: a suggestion plus its effect on the score.
type signal struct {
	suggestion advisor.Suggestion
	area       string
	penalty    int
	critical   bool
}

var serverVersionRe = regexp.MustCompile(`PostgreSQL (\d+(?:\.\d+)*)`)

// parseServerVersion extracts the numeric release from a version() string.
func parseServerVersion(raw string) (semver.Version, error) {
	m := serverVersionRe.FindStringSubmatch(raw)
	if m == nil {
		return semver.Version{}, fmt.Errorf("unrecognized server version %q", raw)
	}
	return semver.ParseTolerant(m[1])
}

// versionSignal gates servers older than minMajor. A version string the
// pattern cannot read skips the gate instead of failing the check.
func versionSignal(logger *zap.Logger, raw string, minMajor uint64) []signal {
	version, err := parseServerVersion(raw)
	if err != nil {
		logger.Warn("cannot parse server version, skipping version gate",
			zap.String("version", raw), zap.Error(err))
		return nil
	}
	if version.Major >= minMajor {
		return nil
	}
	return []signal{{
		suggestion: advisor.Suggestion{
			Type:     advisor.TypeConfiguration,
			Priority: advisor.PriorityHigh,
			Title:    "Upgrade to a supported PostgreSQL release",
			Description: fmt.Sprintf("Server reports %d.%d; releases before %d no longer receive fixes.",
				version.Major, version.Minor, minMajor),
			Impact: "High",
			Effort: "High",
		},
		area:    areaSecurity,
		penalty: 2,
	}}
}

func cacheSignal(ratio float64) []signal {
	if ratio >= detector.CacheHitMediumPct {
		return nil
	}
	sig := signal{
		suggestion: advisor.Suggestion{
			Type:        advisor.TypeConfiguration,
			Priority:    advisor.PriorityMedium,
			Title:       "Increase shared_buffers",
			Description: fmt.Sprintf("Cluster cache hit ratio is %.1f%%; aim for 80%% or better.", ratio),
			Impact:      "High",
			Effort:      "Medium",
		},
		area:    areaPerformance,
		penalty: 2,
	}
	if ratio < detector.CacheHitCriticalPct {
		sig.suggestion.Priority = advisor.PriorityHigh
		sig.penalty = 3
		sig.critical = true
	}
	return []signal{sig}
}

func securitySignals(s catalog.SecuritySettings) []signal {
	var signals []signal
	if s.SSL == "off" {
		signals = append(signals, signal{
			suggestion: advisor.Suggestion{
				Type:        advisor.TypeConfiguration,
				Priority:    advisor.PriorityHigh,
				Title:       "Enable SSL connections",
				Description: "The server accepts unencrypted connections (ssl is off).",
				SQL:         "ALTER SYSTEM SET ssl = 'on';",
				Impact:      "High",
				Effort:      "Medium",
			},
			area:    areaSecurity,
			penalty: 2,
		})
	}
	if s.PasswordEncryption != "scram-sha-256" {
		signals = append(signals, signal{
			suggestion: advisor.Suggestion{
				Type:        advisor.TypeConfiguration,
				Priority:    advisor.PriorityMedium,
				Title:       "Use scram-sha-256 password encryption",
				Description: fmt.Sprintf("password_encryption is %q; md5 hashes can be cracked offline.", s.PasswordEncryption),
				SQL:         "ALTER SYSTEM SET password_encryption = 'scram-sha-256';",
				Impact:      "Medium",
				Effort:      "Low",
			},
			area:    areaSecurity,
			penalty: 1,
		})
	}
	if s.Superusers > superuserWarnCount {
		signals = append(signals, signal{
			suggestion: advisor.Suggestion{
				Type:        advisor.TypeConfiguration,
				Priority:    advisor.PriorityLow,
				Title:       "Reduce superuser count",
				Description: fmt.Sprintf("%d roles hold superuser; most duties fit narrower grants.", s.Superusers),
				Impact:      "Medium",
				Effort:      "Medium",
			},
			area:    areaSecurity,
			penalty: 1,
		})
	}
	return signals
}

func scanSignals(seqHeavy []catalog.TableScanStats, unused []catalog.IndexUsage) []signal {
	var signals []signal
	if len(seqHeavy) > 0 {
		signals = append(signals, signal{
			suggestion: advisor.Suggestion{
				Type:     advisor.TypeSchemaChange,
				Priority: advisor.PriorityMedium,
				Title:    "Add indexes to sequential-scan heavy tables",
				Description: fmt.Sprintf("%d large tables are read mostly by sequential scans: %s.",
					len(seqHeavy), tableNames(seqHeavy)),
				Impact: "High",
				Effort: "Medium",
			},
			area:    areaPerformance,
			penalty: 1,
		})
	}
	if len(unused) > 0 {
		signals = append(signals, signal{
			suggestion: advisor.Suggestion{
				Type:     advisor.TypeSchemaChange,
				Priority: advisor.PriorityLow,
				Title:    "Drop unused indexes",
				Description: fmt.Sprintf("%d indexes have never been scanned and still tax every write: %s.",
					len(unused), indexNames(unused)),
				Impact: "Medium",
				Effort: "Low",
			},
			area:    areaPerformance,
			penalty: 1,
		})
	}
	return signals
}

func statementSignal(stats []catalog.StatementStat) []signal {
	var slow int
	for _, s := range stats {
		if s.MeanTime > slowStatementMs {
			slow++
		}
	}
	if slow == 0 {
		return nil
	}
	return []signal{{
		suggestion: advisor.Suggestion{
			Type:        advisor.TypeOther,
			Priority:    advisor.PriorityMedium,
			Title:       "Review slow statements in pg_stat_statements",
			Description: fmt.Sprintf("%d tracked statements average above %.0fms.", slow, slowStatementMs),
			Impact:      "High",
			Effort:      "Medium",
		},
		area:    areaPerformance,
		penalty: 1,
	}}
}

func tableNames(stats []catalog.TableScanStats) string {
	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Table
	}
	return joinCapped(names, 3)
}

func indexNames(idxs []catalog.IndexUsage) string {
	names := make([]string, len(idxs))
	for i, idx := range idxs {
		names[i] = idx.Index
	}
	return joinCapped(names, 3)
}

func joinCapped(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:max], ", "), len(names)-max)
}

// riskLevel grades the accumulated penalty for one area.
func riskLevel(penalty int) string {
	switch {
	case penalty == 0:
		return "low"
	case penalty == 1:
		return "medium"
	case penalty <= 3:
		return "high"
	default:
		return "critical"
	}
}
