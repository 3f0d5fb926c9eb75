package types

// Version is the canonical project version.
// The CLI, the sink record format, and the embedded codec spec share this
// version (lockstep versioning).
const Version = "1.2.0"
