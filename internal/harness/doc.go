// Package harness runs copy-engine scenarios described in YAML.
//
// A scenario configures one engine task, lists the events fed to it and
// asserts on the outcome. The harness drives the real engine: records are
// reused across events exactly as the runner does, every processed event is
// persisted to an in-memory store, and assertions inspect the per-event trace,
// the engine counters and the stored collections.
//
// # Scenario Format
//
//	name: cells_copy_aod
//	description: "Cells are copied under the configured name"
//	format: aod
//	task:
//	  name: cells
//	  kind: cells
//	  source: usedefault
//	  dest: emcalCellsCopy
//	events:
//	  - primary:
//	      cells:
//	        - name: emcalCells
//	          cells: [{abs_id: 1, amplitude: 0.5}]
//	assertions:
//	  - type: outcome
//	    event: 0
//	    outcome: copied
//	  - type: collection
//	    event: 0
//	    name: emcalCellsCopy
//	    entries: 1
//	    same_as: emcalCells
//
// # Assertion Types
//
//   - outcome: the trace entry of an event (copied, skipped or failed, with
//     an optional error code)
//   - error: the error code that stopped the run ("" for none)
//   - stats: engine counters (created, copies, skipped)
//   - collection: a stored collection's presence, entries, title, and
//     content equality with another collection of the same event
//   - cluster: labels and reset fields of one stored cluster
//   - identity_cleared: copied tracks of an event carry no identity and the
//     originals still resolve through the registry
//
// # Deterministic Testing
//
// Scenarios contain no clocks or random input; the trace of a scenario is
// stable and compared against golden files with RunWithGolden.
package harness
