package ir

// Version constants for the storage codec and the engine.
const (
	// CodecVersion is the collection payload schema version.
	CodecVersion = "1"

	// EngineVersion is the collcopy engine version.
	EngineVersion = "0.1.0"
)
