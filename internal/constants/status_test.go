package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_Rank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     int
	}{
		{severity: SeverityLow, want: 1},
		{severity: SeverityMedium, want: 2},
		{severity: SeverityHigh, want: 3},
		{severity: SeverityCritical, want: 4},
		{severity: Severity("bogus"), want: 0},
		{severity: Severity(""), want: 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.severity.Rank())
		})
	}
}

func TestSeverity_RankOrdering(t *testing.T) {
	t.Parallel()

	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
}

func TestEscalationLevel_Terminates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level EscalationLevel
		want  bool
	}{
		{level: EscalationNone, want: false},
		{level: EscalationWarning, want: false},
		{level: EscalationEmergency, want: true},
		{level: EscalationRollback, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.level.Terminates())
		})
	}
}

func TestStringers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "monitoring", SessionStatusMonitoring.String())
	assert.Equal(t, "failure", VerdictFailure.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "rollback", EscalationRollback.String())
	assert.Equal(t, "test_failure", CategoryTestFailure.String())
}
