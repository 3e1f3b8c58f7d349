// Package generator owns the planet-name model at runtime: loading the
// artefacts, admission control, and the sampling loop. It is structured
// into small files by concern:
//
//   - manager.go: core Manager type, constructor, artefact loading, Generate.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Snapshot).
//   - errors.go: error types and helpers (IsInvalidRequest, IsNotLoaded, IsTooBusy).
//   - network.go: the character-level GRU forward pass over loaded weights.
//   - sampler.go: per-word sampling (temperature softmax, greedy at zero).
//   - admission.go: queueing and generation admission.
//   - status_report.go: Status/Snapshot reporting helpers.
//
// External packages should treat this package as the model runtime and use
// public methods only (New/NewWithConfig, Load, Ready, Generate,
// GenerateStream, Status).
package generator
