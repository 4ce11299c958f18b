// Package protocol defines the Control Center wire shapes: the task run
// descriptors exchanged over Synchronize, and the request/response
// bodies for Synchronize and TaskDone.
package protocol

// RunID identifies one execution run.
type RunID struct {
	JobID  string
	TaskID string
	RunID  string
}

// Producer describes one producer of a combined input.
type Producer struct {
	TaskID  string
	Locator string
	Result  string
}

// InputInfo describes one task input.
type InputInfo struct {
	Name    string
	Locator string
	// Producers is non-empty only for combined inputs, keyed by the
	// producing task's id.
	Producers map[string]Producer
}

// Combined reports whether this input has at least one producer.
func (i InputInfo) Combined() bool { return len(i.Producers) > 0 }

// OutputInfo describes one task output.
type OutputInfo struct {
	Name string
}

// ResourceRef describes one reserved resource, in configured order.
type ResourceRef struct {
	Ref        string
	Locator    string
	Parameters map[string]string
}

// TaskInfo describes the task being run.
type TaskInfo struct {
	Target     string
	Framework  string
	Script     string
	Parameters map[string]string
}

// ExecuteRunInfo is the descriptor for a <start> command.
type ExecuteRunInfo struct {
	Run       RunID
	Task      TaskInfo
	Inputs    []InputInfo
	Outputs   []OutputInfo
	Resources []ResourceRef
}

// ExtractRunInfo is the descriptor for an <extract> command.
type ExtractRunInfo struct {
	ShadowID string
	Task     TaskInfo
	Inputs   []InputInfo
	Outputs  []OutputInfo
}
