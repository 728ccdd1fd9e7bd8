package ir

// Version constants for the data model and the expansion engine.
const (
	// SnapshotVersion is the registry snapshot schema version. It is part of
	// every cache fingerprint, so bumping it invalidates persisted entries.
	SnapshotVersion = "1"

	// EngineVersion is the dynsel engine version.
	EngineVersion = "0.1.0"
)
