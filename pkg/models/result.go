package models

// ToolResult is the normalized outcome of one tool execution. Tools may
// return a plain string or a structured result; the dispatcher folds both
// shapes into this type.
type ToolResult struct {
	// Tool is the identifier of the tool that produced the result.
	Tool string `json:"tool"`
	// Success indicates whether the tool completed its work.
	Success bool `json:"success"`
	// Message is the human-readable summary of the outcome.
	Message string `json:"message"`
	// ArtifactID links to a persisted record (reminder or draft), if the
	// tool created one.
	ArtifactID int64 `json:"artifact_id,omitempty"`
	// Subject carries the draft subject line for drafting results.
	Subject string `json:"subject,omitempty"`
}

// StringResult wraps a legacy plain-string tool return into a ToolResult.
func StringResult(tool, message string) ToolResult {
	return ToolResult{Tool: tool, Success: true, Message: message}
}

// ErrorResult builds a failure ToolResult with the given message.
func ErrorResult(tool, message string) ToolResult {
	return ToolResult{Tool: tool, Success: false, Message: message}
}
