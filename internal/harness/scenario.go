package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/collcopy/internal/config"
	"github.com/roach88/collcopy/internal/engine"
	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/ir"
)

// Scenario defines one engine scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Format is the storage format of every event: esd or aod.
	Format string `yaml:"format"`

	// Task configures the engine under test.
	Task config.Task `yaml:"task"`

	// Events are fed to the engine in order.
	Events []event.EventSpec `yaml:"events"`

	// Assertions validate the trace, the counters and the stored collections.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a scenario run.
type Assertion struct {
	// Type selects the assertion: outcome, error, stats, collection,
	// cluster or identity_cleared.
	Type string `yaml:"type"`

	// Event is the zero-based event index (outcome, collection, cluster,
	// identity_cleared).
	Event int `yaml:"event,omitempty"`

	// Stream is primary (default) or embedded.
	Stream string `yaml:"stream,omitempty"`

	// Outcome is the expected trace outcome (outcome).
	Outcome string `yaml:"outcome,omitempty"`

	// Code is the expected error code (outcome, error).
	Code string `yaml:"code,omitempty"`

	// Name is the collection name (collection, cluster, identity_cleared).
	Name string `yaml:"name,omitempty"`

	// Absent asserts the collection is not stored (collection).
	Absent bool `yaml:"absent,omitempty"`

	// Entries is the expected slot count (collection).
	Entries *int `yaml:"entries,omitempty"`

	// Title is the expected cells title (collection).
	Title *string `yaml:"title,omitempty"`

	// SameAs names a collection of the same event whose contents must be
	// identical (collection).
	SameAs string `yaml:"same_as,omitempty"`

	// Index is the cluster slot (cluster).
	Index int `yaml:"index,omitempty"`

	// Labels are the expected cluster labels; an empty list means none
	// (cluster).
	Labels *[]int32 `yaml:"labels,omitempty"`

	// Energy, EmcCpvDistance and Chi2 are expected cluster fields (cluster).
	Energy         *float64 `yaml:"energy,omitempty"`
	EmcCpvDistance *float64 `yaml:"emc_cpv_distance,omitempty"`
	Chi2           *float64 `yaml:"chi2,omitempty"`

	// Created, Copies and Skipped are expected engine counters (stats).
	Created *int `yaml:"created,omitempty"`
	Copies  *int `yaml:"copies,omitempty"`
	Skipped *int `yaml:"skipped,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome         = "outcome"
	AssertError           = "error"
	AssertStats           = "stats"
	AssertCollection      = "collection"
	AssertCluster         = "cluster"
	AssertIdentityCleared = "identity_cleared"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario strictly decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml/.yml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := ir.ParseFormat(s.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if s.Task.Source == "" {
		s.Task.Source = engine.UseDefault
	}
	if _, err := s.Task.EngineConfig(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Events)); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, events int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Event < 0 || a.Event >= events {
		return fmt.Errorf("assertions[%d]: event %d out of range [0, %d)", index, a.Event, events)
	}
	if a.Stream != "" && a.Stream != "primary" && a.Stream != "embedded" {
		return fmt.Errorf("assertions[%d]: unknown stream %q", index, a.Stream)
	}

	switch a.Type {
	case AssertOutcome:
		switch a.Outcome {
		case OutcomeCopied, OutcomeSkipped, OutcomeFailed:
		default:
			return fmt.Errorf("assertions[%d]: outcome must be copied, skipped or failed", index)
		}
	case AssertError:
	case AssertStats:
		if a.Created == nil && a.Copies == nil && a.Skipped == nil {
			return fmt.Errorf("assertions[%d]: stats needs at least one of created, copies, skipped", index)
		}
	case AssertCollection, AssertCluster, AssertIdentityCleared:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
