package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
)

func failureResult(jobs ...string) domain.MonitoringResult {
	return domain.MonitoringResult{
		CommitID:   "abc123",
		Overall:    constants.VerdictFailure,
		CI:         constants.VerdictFailure,
		FailedJobs: jobs,
	}
}

func TestEngine_Analyze_Classification(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	tests := []struct {
		name         string
		result       domain.MonitoringResult
		wantCategory constants.FailureCategory
		wantSeverity constants.Severity
		wantMatched  []string
	}{
		{
			name:         "build job classifies as compilation",
			result:       failureResult("build-linux"),
			wantCategory: constants.CategoryCompilation,
			wantSeverity: constants.SeverityHigh,
			wantMatched:  []string{"build-linux"},
		},
		{
			name:         "lint job classifies as compilation",
			result:       failureResult("lint"),
			wantCategory: constants.CategoryCompilation,
			wantSeverity: constants.SeverityHigh,
			wantMatched:  []string{"lint"},
		},
		{
			name:         "flaky job classifies as flaky",
			result:       failureResult("flaky-integration"),
			wantCategory: constants.CategoryFlaky,
			wantSeverity: constants.SeverityLow,
			wantMatched:  []string{"flaky-integration"},
		},
		{
			name:         "timeout job classifies as flaky",
			result:       failureResult("api-timeout-check"),
			wantCategory: constants.CategoryFlaky,
			wantSeverity: constants.SeverityLow,
			wantMatched:  []string{"api-timeout-check"},
		},
		{
			name:         "test job classifies as test failure",
			result:       failureResult("unit-tests"),
			wantCategory: constants.CategoryTestFailure,
			wantSeverity: constants.SeverityMedium,
			wantMatched:  []string{"unit-tests"},
		},
		{
			name:         "terraform job classifies as infrastructure",
			result:       failureResult("terraform-apply"),
			wantCategory: constants.CategoryInfrastructure,
			wantSeverity: constants.SeverityHigh,
			wantMatched:  []string{"terraform-apply"},
		},
		{
			name:         "matching is case insensitive",
			result:       failureResult("Build-Windows"),
			wantCategory: constants.CategoryCompilation,
			wantSeverity: constants.SeverityHigh,
			wantMatched:  []string{"Build-Windows"},
		},
		{
			name: "compilation wins over downstream test failures",
			// A broken build usually takes test jobs down with it, so the
			// compile pattern is checked first.
			result:       failureResult("unit-tests", "build"),
			wantCategory: constants.CategoryCompilation,
			wantSeverity: constants.SeverityHigh,
			wantMatched:  []string{"build"},
		},
		{
			name:         "flaky wins over test failure",
			result:       failureResult("flaky-unit-tests"),
			wantCategory: constants.CategoryFlaky,
			wantSeverity: constants.SeverityLow,
			wantMatched:  []string{"flaky-unit-tests"},
		},
		{
			name:         "unmatched jobs fall back to unknown",
			result:       failureResult("mystery-job"),
			wantCategory: constants.CategoryUnknown,
			wantSeverity: constants.SeverityMedium,
			wantMatched:  nil,
		},
		{
			name:         "no job details falls back to unknown",
			result:       failureResult(),
			wantCategory: constants.CategoryUnknown,
			wantSeverity: constants.SeverityMedium,
			wantMatched:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis := engine.Analyze(tt.result)

			assert.Equal(t, tt.wantCategory, analysis.Category)
			assert.Equal(t, tt.wantSeverity, analysis.Severity)
			assert.Equal(t, tt.wantMatched, analysis.MatchedJobs)
			assert.NotEmpty(t, analysis.RootCause)
		})
	}
}

func TestEngine_Analyze_RunningPipeline(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	analysis := engine.Analyze(domain.MonitoringResult{
		CommitID: "abc123",
		Overall:  constants.VerdictRunning,
		CI:       constants.VerdictRunning,
	})

	assert.Equal(t, constants.CategoryInProgress, analysis.Category)
	assert.Equal(t, constants.SeverityLow, analysis.Severity)
	assert.Equal(t, "ci pipeline for commit abc123 is still in progress", analysis.RootCause)
}

func TestEngine_Analyze_PerformanceOnlyFailure(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	analysis := engine.Analyze(domain.MonitoringResult{
		CommitID:    "abc123",
		Overall:     constants.VerdictFailure,
		CI:          constants.VerdictSuccess,
		Performance: constants.VerdictFailure,
		Regressions: []string{"p99 latency +40%", "throughput -12%"},
	})

	assert.Equal(t, constants.CategoryTestFailure, analysis.Category)
	assert.Equal(t, constants.SeverityMedium, analysis.Severity)
	assert.Equal(t, "performance regression detected: p99 latency +40%, throughput -12%", analysis.RootCause)
}

func TestEngine_Analyze_WideBlastRadiusEscalatesSeverity(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	tests := []struct {
		name         string
		jobs         []string
		wantCategory constants.FailureCategory
		wantSeverity constants.Severity
	}{
		{
			name:         "five infrastructure jobs become critical",
			jobs:         []string{"deploy-1", "deploy-2", "deploy-3", "deploy-4", "deploy-5"},
			wantCategory: constants.CategoryInfrastructure,
			wantSeverity: constants.SeverityCritical,
		},
		{
			name:         "five test jobs become high",
			jobs:         []string{"test-1", "test-2", "test-3", "test-4", "test-5"},
			wantCategory: constants.CategoryTestFailure,
			wantSeverity: constants.SeverityHigh,
		},
		{
			name:         "five flaky jobs become medium",
			jobs:         []string{"flaky-1", "flaky-2", "flaky-3", "flaky-4", "flaky-5"},
			wantCategory: constants.CategoryFlaky,
			wantSeverity: constants.SeverityMedium,
		},
		{
			name:         "four jobs keep the base severity",
			jobs:         []string{"deploy-1", "deploy-2", "deploy-3", "deploy-4"},
			wantCategory: constants.CategoryInfrastructure,
			wantSeverity: constants.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis := engine.Analyze(failureResult(tt.jobs...))

			assert.Equal(t, tt.wantCategory, analysis.Category)
			assert.Equal(t, tt.wantSeverity, analysis.Severity)
		})
	}
}

func TestEngine_Analyze_RootCauseMessages(t *testing.T) {
	t.Parallel()

	engine := NewEngine()

	tests := []struct {
		name   string
		result domain.MonitoringResult
		want   string
	}{
		{
			name:   "compilation",
			result: failureResult("build", "vet"),
			want:   "build stage broken: build, vet failed",
		},
		{
			name:   "flaky",
			result: failureResult("network-check"),
			want:   "likely transient failure in network-check",
		},
		{
			name:   "test failure",
			result: failureResult("e2e-suite"),
			want:   "test jobs failed: e2e-suite",
		},
		{
			name:   "infrastructure",
			result: failureResult("docker-push"),
			want:   "infrastructure failure in docker-push",
		},
		{
			name:   "unknown with jobs",
			result: failureResult("mystery"),
			want:   "unclassified failure in jobs: mystery",
		},
		{
			name:   "unknown without jobs",
			result: failureResult(),
			want:   "pipeline for commit abc123 reported failure without job details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, engine.Analyze(tt.result).RootCause)
		})
	}
}

func TestEngine_Analyze_IsDeterministic(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	result := failureResult("build", "unit-tests", "deploy-prod")

	first := engine.Analyze(result)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, engine.Analyze(result))
	}
}
