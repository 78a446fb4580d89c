package workflow

import (
	"context"
	"fmt"

	"quantanet/core/qnet"
)

// Compiler converts a high-level Workflow into a qnet.Net.
type Compiler struct{}

// NewCompiler creates a new workflow compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile transforms a validated Workflow into a driveable net. Resources,
// contexts, and channels become places; tasks become transitions plus a
// completion place whose attached task runs the task's Action; gateways
// become the extra places/transitions that join or fan out over those
// completion places.
func (c *Compiler) Compile(wf *Workflow) (*qnet.Net, error) {
	if err := Validate(wf); err != nil {
		return nil, err
	}

	net := qnet.NewNet(wf.Name)
	places := make(map[string]string, len(wf.Resources)+len(wf.Contexts)+len(wf.Channels))
	transitions := make(map[string]string, len(wf.Tasks))
	done := make(map[string]string, len(wf.Tasks))

	for _, r := range wf.Resources {
		uri, err := net.CreatePlace(r.ID, poolInit(r.Capacity), nil, capacityOf(r.Capacity))
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", r.ID, err)
		}
		places[r.ID] = uri
	}

	for _, ctxDef := range wf.Contexts {
		uri, err := net.CreatePlace(ctxDef.ID, poolInit(ctxDef.Capacity), nil, capacityOf(ctxDef.Capacity))
		if err != nil {
			return nil, fmt.Errorf("context %s: %w", ctxDef.ID, err)
		}
		places[ctxDef.ID] = uri
	}

	for _, ch := range wf.Channels {
		uri, err := net.CreatePlace(ch.ID, 0, nil, capacityOf(ch.Capacity))
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch.ID, err)
		}
		places[ch.ID] = uri
	}

	for _, task := range wf.Tasks {
		tURI, err := net.CreateTransition(task.ID)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		transitions[task.ID] = tURI

		if err := c.wireTask(net, task, tURI, places); err != nil {
			return nil, err
		}

		doneURI, err := net.CreatePlace(task.ID+".done", 0, compileAction(task), capacityOne())
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		if err := net.Connect(tURI, doneURI, 1); err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		done[task.ID] = doneURI
	}

	for _, gateway := range wf.Gateways {
		if err := c.compileGateway(gateway, net, transitions, done); err != nil {
			return nil, fmt.Errorf("gateway %s: %w", gateway.ID, err)
		}
	}

	return net, nil
}

// wireTask connects a task's transition to its input channels, resource
// and context borrow arcs (consumed on entry, returned on completion), and
// its output channels.
func (c *Compiler) wireTask(net *qnet.Net, task Task, tURI string, places map[string]string) error {
	inputs := task.Inputs
	if task.Input != "" {
		inputs = append([]string{task.Input}, inputs...)
	}
	for _, id := range inputs {
		if err := net.Connect(places[id], tURI, 1); err != nil {
			return fmt.Errorf("task %s input %s: %w", task.ID, id, err)
		}
	}

	for resourceID, amount := range task.Requires {
		place, ok := places[resourceID]
		if !ok {
			return fmt.Errorf("task %s requires unknown resource %s", task.ID, resourceID)
		}
		if err := net.Connect(place, tURI, amount); err != nil {
			return fmt.Errorf("task %s resource %s: %w", task.ID, resourceID, err)
		}
		if err := net.Connect(tURI, place, amount); err != nil {
			return fmt.Errorf("task %s resource %s: %w", task.ID, resourceID, err)
		}
	}

	if task.Context != "" {
		place, ok := places[task.Context]
		if !ok {
			return fmt.Errorf("task %s references unknown context %s", task.ID, task.Context)
		}
		if err := net.Connect(place, tURI, 1); err != nil {
			return fmt.Errorf("task %s context %s: %w", task.ID, task.Context, err)
		}
		if err := net.Connect(tURI, place, 1); err != nil {
			return fmt.Errorf("task %s context %s: %w", task.ID, task.Context, err)
		}
	}

	outputs := task.Outputs
	if task.Output != "" {
		outputs = append([]string{task.Output}, outputs...)
	}
	for _, id := range outputs {
		if err := net.Connect(tURI, places[id], 1); err != nil {
			return fmt.Errorf("task %s output %s: %w", task.ID, id, err)
		}
	}

	return nil
}

// compileAction wraps a task's Action as the qnet.Task run when its
// completion place receives a token. A nil Action compiles to a nil
// place-task, so pure control-flow tasks carry no idle goroutine work.
func compileAction(task Task) qnet.Task {
	if task.Action == nil {
		return nil
	}
	return func() {
		_ = task.Action(context.Background())
	}
}

// compileGateway converts a Gateway to the places/transitions needed to
// join (barrier), fan out (split), or race (merge) over task completions.
func (c *Compiler) compileGateway(gateway Gateway, net *qnet.Net, transitions, done map[string]string) error {
	waitFor := gateway.Inputs
	if len(waitFor) == 0 {
		waitFor = gateway.WaitFor
	}

	switch gateway.Type {
	case "barrier":
		barrierT, err := net.CreateTransition(gateway.ID)
		if err != nil {
			return err
		}
		for _, taskID := range waitFor {
			doneURI, ok := done[taskID]
			if !ok {
				return fmt.Errorf("waits on unknown task %s", taskID)
			}
			if err := net.Connect(doneURI, barrierT, 1); err != nil {
				return err
			}
		}
		completePlace, err := net.CreatePlace(gateway.ID+".complete", 0, nil, capacityOne())
		if err != nil {
			return err
		}
		if err := net.Connect(barrierT, completePlace, 1); err != nil {
			return err
		}
		for _, taskID := range gateway.Outputs {
			tURI, ok := transitions[taskID]
			if !ok {
				return fmt.Errorf("triggers unknown task %s", taskID)
			}
			if err := net.Connect(completePlace, tURI, 1); err != nil {
				return err
			}
		}

	case "split":
		if len(waitFor) != 1 {
			return fmt.Errorf("split gateway needs exactly one input task, got %d", len(waitFor))
		}
		doneURI, ok := done[waitFor[0]]
		if !ok {
			return fmt.Errorf("waits on unknown task %s", waitFor[0])
		}
		splitT, err := net.CreateTransition(gateway.ID)
		if err != nil {
			return err
		}
		if err := net.Connect(doneURI, splitT, 1); err != nil {
			return err
		}
		fanout, err := net.CreatePlace(gateway.ID+".fanout", 0, nil, nil)
		if err != nil {
			return err
		}
		if err := net.Connect(splitT, fanout, len(gateway.Outputs)); err != nil {
			return err
		}
		for _, taskID := range gateway.Outputs {
			tURI, ok := transitions[taskID]
			if !ok {
				return fmt.Errorf("triggers unknown task %s", taskID)
			}
			if err := net.Connect(fanout, tURI, 1); err != nil {
				return err
			}
		}

	case "merge":
		mergePlace, err := net.CreatePlace(gateway.ID+".ready", 0, nil, nil)
		if err != nil {
			return err
		}
		for _, taskID := range waitFor {
			doneURI, ok := done[taskID]
			if !ok {
				return fmt.Errorf("waits on unknown task %s", taskID)
			}
			mergeT, err := net.CreateTransition(gateway.ID + "." + taskID)
			if err != nil {
				return err
			}
			if err := net.Connect(doneURI, mergeT, 1); err != nil {
				return err
			}
			if err := net.Connect(mergeT, mergePlace, 1); err != nil {
				return err
			}
		}
		for _, taskID := range gateway.Outputs {
			tURI, ok := transitions[taskID]
			if !ok {
				return fmt.Errorf("triggers unknown task %s", taskID)
			}
			if err := net.Connect(mergePlace, tURI, 1); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown gateway type %q", gateway.Type)
	}

	return nil
}

func poolInit(capacity int) int {
	if capacity > 0 {
		return capacity
	}
	return 0
}

func capacityOf(capacity int) *int {
	if capacity <= 0 {
		return nil
	}
	v := capacity
	return &v
}

func capacityOne() *int {
	one := 1
	return &one
}
