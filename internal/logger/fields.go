package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldJobID is the transcription job ID.
	FieldJobID = "job_id"

	// FieldOwnerID is the requesting user's ID.
	FieldOwnerID = "owner_id"

	// FieldProvider is the transcription provider name.
	FieldProvider = "provider"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields used for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldStatus is the operation status.
	FieldStatus = "status"

	// FieldChunk is a chunk index within a job.
	FieldChunk = "chunk"
)
