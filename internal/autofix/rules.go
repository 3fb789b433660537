// Package autofix proposes, applies, and validates bounded automatic
// fixes for classified pipeline failures.
package autofix

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/remedy/internal/constants"
	"github.com/mrz1836/remedy/internal/domain"
	remerrors "github.com/mrz1836/remedy/internal/errors"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule binds a failure category to one candidate fix.
type Rule struct {
	// Category is the failure category this rule applies to.
	Category constants.FailureCategory `yaml:"category"`

	// Type identifies the kind of fix (e.g., "retry_flaky").
	Type string `yaml:"type"`

	// Description is a human-readable summary of the fix.
	Description string `yaml:"description"`

	// Confidence is the score (0..1) used against the apply threshold.
	Confidence float64 `yaml:"confidence"`

	// AffectedResources lists resources the fix touches.
	AffectedResources []string `yaml:"affected_resources"`

	// Command is an optional shell command that performs the fix.
	// Rules without a command are advisory markers applied by the
	// configured applier.
	Command string `yaml:"command,omitempty"`
}

// catalog is the YAML document shape of a rule file.
type catalog struct {
	Rules []Rule `yaml:"rules"`
}

// CandidateFix is a fix proposed for an analysis, not yet applied.
type CandidateFix struct {
	Type              string
	Description       string
	AffectedResources []string
	Confidence        float64
	Command           string
}

// Proposer supplies candidate fixes for a failure analysis.
type Proposer interface {
	Propose(ctx context.Context, analysis domain.FailureAnalysis) ([]CandidateFix, error)
}

// CatalogProposer proposes fixes from a rule catalog.
type CatalogProposer struct {
	rules []Rule
}

// NewCatalogProposer builds a proposer from the embedded default catalog.
func NewCatalogProposer() (*CatalogProposer, error) {
	return newCatalogFromBytes(defaultRulesYAML)
}

// NewCatalogProposerFromFile builds a proposer from a user catalog file.
// The file replaces the embedded defaults entirely.
func NewCatalogProposerFromFile(path string) (*CatalogProposer, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read rule catalog '%s': %w", path, err)
	}
	return newCatalogFromBytes(data)
}

func newCatalogFromBytes(data []byte) (*CatalogProposer, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s", remerrors.ErrInvalidRuleCatalog, err)
	}
	for i, rule := range c.Rules {
		if rule.Type == "" || rule.Category == "" {
			return nil, fmt.Errorf("%w: rule %d missing type or category", remerrors.ErrInvalidRuleCatalog, i)
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			return nil, fmt.Errorf("%w: rule '%s' confidence %.2f out of range", remerrors.ErrInvalidRuleCatalog, rule.Type, rule.Confidence)
		}
		if rule.Command != "" && strings.TrimSpace(rule.Command) == "" {
			return nil, fmt.Errorf("%w: rule '%s' has a blank command", remerrors.ErrInvalidRuleCatalog, rule.Type)
		}
	}
	return &CatalogProposer{rules: c.Rules}, nil
}

// Propose returns every catalog rule matching the analysis category,
// in catalog order. Filtering by confidence is the engine's job.
func (p *CatalogProposer) Propose(_ context.Context, analysis domain.FailureAnalysis) ([]CandidateFix, error) {
	var candidates []CandidateFix
	for _, rule := range p.rules {
		if rule.Category != analysis.Category {
			continue
		}
		candidates = append(candidates, CandidateFix{
			Type:              rule.Type,
			Description:       rule.Description,
			AffectedResources: rule.AffectedResources,
			Confidence:        rule.Confidence,
			Command:           rule.Command,
		})
	}
	return candidates, nil
}

// Ensure CatalogProposer implements Proposer.
var _ Proposer = (*CatalogProposer)(nil)
