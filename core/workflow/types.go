package workflow

import "context"

// Workflow represents a high-level workflow definition, compiled down to a
// qnet.Net by Compile. Resources, channels, and contexts all become
// places, capacity-bound when their Capacity is > 0; tasks become
// transitions; gateways become the
// extra places and transitions needed to express barrier/split/merge
// control flow.
type Workflow struct {
	Name      string
	Resources []Resource
	Contexts  []Context
	Channels  []Channel
	Tasks     []Task
	Gateways  []Gateway
}

// Resource represents a shared resource with capacity. It compiles to a
// place pre-loaded with Capacity tokens: a task that Requires n units
// withdraws n on entry and returns them on completion, so the place's
// count is always "units currently available".
type Resource struct {
	ID       string
	Type     string // "semaphore", "pool", "quota"
	Capacity int    // <= 0 = no capacity bound; the place then starts with 0 tokens
}

// Context represents a bounded execution scope — a request, a session, a
// tenant — that limits how many tasks may be "inside" it concurrently. It
// compiles the same way a Resource does (a capacity-bound place with
// borrow/return arcs around every task that names it), kept as a distinct
// concept from Resource because a context is scoped to one logical unit
// of work rather than a pool of interchangeable units.
type Context struct {
	ID       string
	Type     string // "session", "request", "tenant"
	Capacity int
}

// Channel represents a data flow hand-off between tasks. It compiles to a
// place; Capacity bounds how many tokens may sit in the channel awaiting
// consumption.
type Channel struct {
	ID       string
	Capacity int    // <= 0 = unlimited
	Type     string // "fifo", "lifo", "priority"
}

// Task represents a unit of work: a transition consuming its input
// channels/resource/context slots and producing into its output channels,
// resource/context slots, and a completion place that runs Action.
type Task struct {
	ID       string
	Type     string
	Input    string         // Channel ID
	Output   string         // Channel ID
	Inputs   []string       // Multiple inputs
	Outputs  []string       // Multiple outputs
	Requires map[string]int // Resource requirements: resource_id -> amount
	Parallel bool           // Auto-spawn workers
	Context  string         // Context ID this task runs within, if any
	Action   TaskAction
	Config   map[string]interface{}
}

// TaskAction is the side effect run when a task's transition fires. Unlike
// the token-carried payloads of a data-flow engine, qnet places hold only
// counts — so a task's effect is plain control flow over ctx, not a
// value transformation; callers that need to move data between tasks do
// so through Config or their own closures over Action.
type TaskAction func(ctx context.Context) error

// Gateway represents control flow joining or fanning out over tasks'
// completions.
type Gateway struct {
	ID      string
	Type    string   // "barrier", "split", "merge"
	Inputs  []string // Task IDs to wait for
	Outputs []string // Task IDs to trigger
	WaitFor []string // Alias for Inputs
}
