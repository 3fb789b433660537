// Package analysis classifies failing monitoring results into a
// category, severity, and root-cause summary.
//
// Classification is a pure function of its input: identical failures
// always classify identically. The escalation policy's trend analysis
// depends on this determinism.
package analysis

import (
	"fmt"
	"strings"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
)

// pattern maps job-name substrings to a classification.
// Patterns are evaluated in order; the first category with at least one
// matching job wins. Ordering matters: compilation failures often also
// fail downstream test jobs, so compile patterns are checked first.
type pattern struct {
	category constants.FailureCategory
	severity constants.Severity
	needles  []string
}

var patterns = []pattern{
	{
		category: constants.CategoryCompilation,
		severity: constants.SeverityHigh,
		needles:  []string{"build", "compile", "lint", "typecheck", "vet"},
	},
	{
		category: constants.CategoryFlaky,
		severity: constants.SeverityLow,
		needles:  []string{"flake", "flaky", "timeout", "network", "rate-limit", "retry"},
	},
	{
		category: constants.CategoryTestFailure,
		severity: constants.SeverityMedium,
		needles:  []string{"test", "spec", "e2e", "integration", "unit"},
	},
	{
		category: constants.CategoryInfrastructure,
		severity: constants.SeverityHigh,
		needles:  []string{"deploy", "docker", "infra", "provision", "terraform", "k8s", "kubernetes", "runner"},
	},
}

// Engine classifies failing MonitoringResults. It holds no state.
type Engine struct{}

// NewEngine creates a failure analysis engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze classifies a non-success MonitoringResult.
//
// Fallback: when no pattern matches the failed job names, the failure
// classifies as unknown/medium. A running verdict classifies as
// in_progress/low so the orchestrator backs off and re-polls instead of
// attempting a fix.
func (e *Engine) Analyze(result domain.MonitoringResult) domain.FailureAnalysis {
	if result.Overall == constants.VerdictRunning {
		return domain.FailureAnalysis{
			Category:  constants.CategoryInProgress,
			Severity:  constants.SeverityLow,
			RootCause: fmt.Sprintf("ci pipeline for commit %s is still in progress", result.CommitID),
		}
	}

	for _, p := range patterns {
		matched := matchJobs(result.FailedJobs, p.needles)
		if len(matched) == 0 {
			continue
		}
		return domain.FailureAnalysis{
			Category:    p.category,
			Severity:    escalateSeverity(p.severity, result),
			RootCause:   rootCause(p.category, matched, result),
			MatchedJobs: matched,
		}
	}

	// Performance-only failures have no failed CI jobs to match against.
	if result.Performance == constants.VerdictFailure && result.CI != constants.VerdictFailure {
		return domain.FailureAnalysis{
			Category:  constants.CategoryTestFailure,
			Severity:  constants.SeverityMedium,
			RootCause: fmt.Sprintf("performance regression detected: %s", strings.Join(result.Regressions, ", ")),
		}
	}

	return domain.FailureAnalysis{
		Category:    constants.CategoryUnknown,
		Severity:    constants.SeverityMedium,
		RootCause:   unknownRootCause(result),
		MatchedJobs: nil,
	}
}

// matchJobs returns the failed jobs whose lowercased names contain any needle.
func matchJobs(jobs, needles []string) []string {
	var matched []string
	for _, job := range jobs {
		lower := strings.ToLower(job)
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				matched = append(matched, job)
				break
			}
		}
	}
	return matched
}

// escalateSeverity bumps the base severity when the blast radius is wide.
// More than half of a large failed-job set failing the same way suggests a
// systemic break rather than an isolated failure.
func escalateSeverity(base constants.Severity, result domain.MonitoringResult) constants.Severity {
	if len(result.FailedJobs) >= 5 && base.Rank() < constants.SeverityCritical.Rank() {
		switch base {
		case constants.SeverityLow:
			return constants.SeverityMedium
		case constants.SeverityMedium:
			return constants.SeverityHigh
		case constants.SeverityHigh:
			return constants.SeverityCritical
		}
	}
	return base
}

// rootCause builds a deterministic human-readable summary.
func rootCause(category constants.FailureCategory, matched []string, result domain.MonitoringResult) string {
	switch category {
	case constants.CategoryCompilation:
		return fmt.Sprintf("build stage broken: %s failed", strings.Join(matched, ", "))
	case constants.CategoryFlaky:
		return fmt.Sprintf("likely transient failure in %s", strings.Join(matched, ", "))
	case constants.CategoryTestFailure:
		return fmt.Sprintf("test jobs failed: %s", strings.Join(matched, ", "))
	case constants.CategoryInfrastructure:
		return fmt.Sprintf("infrastructure failure in %s", strings.Join(matched, ", "))
	default:
		return unknownRootCause(result)
	}
}

// unknownRootCause summarizes a failure no pattern explained.
func unknownRootCause(result domain.MonitoringResult) string {
	if len(result.FailedJobs) > 0 {
		return fmt.Sprintf("unclassified failure in jobs: %s", strings.Join(result.FailedJobs, ", "))
	}
	return fmt.Sprintf("pipeline for commit %s reported failure without job details", result.CommitID)
}
