package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "minimal scenario"
format: aod
task:
  name: cells
  kind: cells
  source: usedefault
  dest: emcalCellsCopy
events:
  - primary:
      cells:
        - name: emcalCells
          cells: [{abs_id: 1, amplitude: 0.5}]
assertions:
  - type: outcome
    event: 0
    outcome: copied
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "aod", s.Format)
	assert.Equal(t, "cells", s.Task.Kind)
	assert.Equal(t, "emcalCellsCopy", s.Task.Dest)
	require.Len(t, s.Events, 1)
	require.NotNil(t, s.Events[0].Primary)
	assert.Nil(t, s.Events[0].Embedded)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, OutcomeCopied, s.Assertions[0].Outcome)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	data := []byte(minimalScenario + "assertion: []\n")
	_, err := ParseScenario(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: error}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: error}]\n",
			wantErr: "description is required",
		},
		{
			name:    "bad format",
			yaml:    "name: n\ndescription: d\nformat: root\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: error}]\n",
			wantErr: "format",
		},
		{
			name:    "bad kind",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: jets, dest: x}\nevents: [{}]\nassertions: [{type: error}]\n",
			wantErr: "task",
		},
		{
			name:    "no events",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: []\nassertions: [{type: error}]\n",
			wantErr: "events list is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: []\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: trace_order}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "event out of range",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: outcome, event: 3, outcome: copied}]\n",
			wantErr: "out of range",
		},
		{
			name:    "bad outcome",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: outcome, outcome: done}]\n",
			wantErr: "outcome must be",
		},
		{
			name:    "collection without name",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: collection}]\n",
			wantErr: "name is required for collection",
		},
		{
			name:    "empty stats",
			yaml:    "name: n\ndescription: d\nformat: aod\ntask: {name: t, kind: cells, dest: x}\nevents: [{}]\nassertions: [{type: stats}]\n",
			wantErr: "stats needs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(minimalScenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "minimal", scenarios[0].Name)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [\n"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestLoadScenarios_Testdata(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, scenarios, 6)
}

func TestParseScenario_SourceDefaultsToSentinel(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: no_source
description: "source omitted"
format: esd
task: {name: tracks, kind: tracks, dest: TracksCopy}
events: [{}]
assertions: [{type: error}]
`))
	require.NoError(t, err)
	assert.Equal(t, "usedefault", s.Task.Source)
}
