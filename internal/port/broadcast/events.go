package broadcast

// Event types pushed to editor sessions.
const (
	EventToolUpdated   = "tool.updated"
	EventToolPublished = "tool.published"
	EventToolCloned    = "tool.cloned"
	EventRecordChanged = "record.changed"
	EventJobUpdated    = "generation.job"
)

// ToolEvent is broadcast when a tool's structure or listing changes.
type ToolEvent struct {
	ToolID  string `json:"tool_id"`
	Version int    `json:"version,omitempty"`
	Name    string `json:"name,omitempty"`
}

// RecordEvent is broadcast when a dynamic collection record mutates.
type RecordEvent struct {
	Collection string `json:"collection"`
	RecordID   string `json:"record_id"`
	Event      string `json:"event"`
}

// JobEvent is broadcast when a generation job changes state.
type JobEvent struct {
	JobID  string `json:"job_id"`
	State  string `json:"state"`
	ToolID string `json:"tool_id,omitempty"`
}
