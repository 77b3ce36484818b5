// Package config loads copy task configurations.
//
// A configuration is a list of tasks, each describing one copy engine. It is
// written either in CUE, validated against the embedded schema, or in YAML,
// decoded strictly. Environment variables override the database path and
// verbosity after loading.
//
//	tasks: [{
//		name: "tracks"
//		kind: "tracks"
//		dest: "tracksCopy"
//	}]
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/collcopy/internal/engine"
	"github.com/roach88/collcopy/internal/ir"
	"github.com/roach88/collcopy/internal/runner"
)

//go:embed schema.cue
var schemaCUE string

// Config is a loaded configuration.
type Config struct {
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Verbose  bool   `json:"verbose" yaml:"verbose,omitempty"`
	Tasks    []Task `json:"tasks" yaml:"tasks"`
}

// Task configures one copy engine.
type Task struct {
	Name      string `json:"name" yaml:"name"`
	Kind      string `json:"kind" yaml:"kind"`
	Source    string `json:"source" yaml:"source,omitempty"`
	Dest      string `json:"dest" yaml:"dest"`
	Embedding bool   `json:"embedding" yaml:"embedding,omitempty"`
}

// Env holds the environment overrides.
type Env struct {
	Database string `env:"COLLCOPY_DATABASE"`
	Verbose  bool   `env:"COLLCOPY_VERBOSE"`
}

// Error is a configuration error, with the CUE position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a configuration file. The extension selects the syntax: .cue,
// or .yaml/.yml. Environment overrides are applied and the result validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		cfg, err = ParseCUE(path, data)
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported config extension %q (want .cue, .yaml or .yml)", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseCUE unifies a CUE document with the #Config schema and decodes it.
// filename is used for error positions only.
func ParseCUE(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return &cfg, nil
}

// ParseYAML strictly decodes a YAML configuration. Unknown fields are
// rejected and an omitted source defaults to the usedefault sentinel.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, &Error{Field: "yaml", Message: err.Error()}
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].Source == "" {
			cfg.Tasks[i].Source = engine.UseDefault
		}
	}
	return &cfg, nil
}

// ApplyEnv overrides the database path and verbosity from the environment.
func (c *Config) ApplyEnv() error {
	var e Env
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if e.Database != "" {
		c.Database = e.Database
	}
	if e.Verbose {
		c.Verbose = true
	}
	return nil
}

// Validate checks task kinds, names and uniqueness. Schema-valid CUE input
// always passes; YAML input is checked here only.
func (c *Config) Validate() error {
	if len(c.Tasks) == 0 {
		return &Error{Field: "tasks", Message: "at least one task is required"}
	}

	seen := make(map[string]bool, len(c.Tasks))
	dests := make(map[string]string, len(c.Tasks))
	for i, t := range c.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if t.Name == "" {
			return &Error{Field: field + ".name", Message: "task name is required"}
		}
		if seen[t.Name] {
			return &Error{Field: field + ".name", Message: fmt.Sprintf("duplicate task name %q", t.Name)}
		}
		seen[t.Name] = true

		if _, err := ir.ParseKind(t.Kind); err != nil {
			return &Error{Field: field + ".kind", Message: err.Error()}
		}
		if t.Source == "" {
			return &Error{Field: field + ".source", Message: "source collection name is empty"}
		}
		if t.Dest == "" {
			return &Error{Field: field + ".dest", Message: "destination collection name is empty"}
		}

		key := streamKey(t)
		if other, ok := dests[key]; ok {
			return &Error{Field: field + ".dest", Message: fmt.Sprintf("destination %q is also created by task %q", t.Dest, other)}
		}
		dests[key] = t.Name
	}
	return nil
}

// EngineConfig converts the task into an engine configuration.
func (t Task) EngineConfig() (engine.Config, error) {
	kind, err := ir.ParseKind(t.Kind)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Kind:      kind,
		Source:    t.Source,
		Dest:      t.Dest,
		Embedding: t.Embedding,
	}, nil
}

// RunnerTasks converts every task for the runner.
func (c *Config) RunnerTasks() ([]runner.Task, error) {
	out := make([]runner.Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		ec, err := t.EngineConfig()
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		out = append(out, runner.Task{Name: t.Name, Config: ec})
	}
	return out, nil
}

// streamKey identifies a destination within its input stream. Sentinel
// destinations are keyed per kind since they resolve per kind.
func streamKey(t Task) string {
	stream := "primary"
	if t.Embedding {
		stream = "embedded"
	}
	dest := t.Dest
	if dest == engine.UseDefault {
		kind, _ := ir.ParseKind(t.Kind)
		dest += "/" + kind.String()
	}
	return stream + "/" + ir.NormalizeName(dest)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &Error{Field: "cue", Message: firstErr.Error()}
}
