package workflow

import "fmt"

// Validate ensures a workflow compiles onto a single qnet.Net without
// tripping the engine's own structural invariants (spec §3: URIs are
// globally unique within a net; spec §3 Arc: weight ≥ 1). Resources,
// channels, contexts, tasks (via their ".done" completion place), and
// gateways (via their derived places, see compileGateway) all land in the
// same flat URI namespace once compiled, so this checks resource, channel,
// context, task and gateway IDs against one another and rejects collisions
// before they reach Net.CreatePlace/CreateTransition as an opaque
// ErrDuplicateURI. Names Compile derives with a "." suffix (".done",
// gateway places, merge transitions) are not checked here.
func Validate(wf *Workflow) error {
	placeIDs := make(map[string]string) // place-bearing id -> the YAML section that claimed it
	taskIDs := make(map[string]struct{})
	gatewayIDs := make(map[string]struct{})

	claimPlace := func(id, section string) error {
		if id == "" {
			return fmt.Errorf("%s id cannot be empty", section)
		}
		if owner, exists := placeIDs[id]; exists {
			return fmt.Errorf("%s id %s conflicts with %s id of the same name", section, id, owner)
		}
		placeIDs[id] = section
		return nil
	}

	for _, r := range wf.Resources {
		if err := claimPlace(r.ID, "resource"); err != nil {
			return err
		}
	}
	for _, c := range wf.Channels {
		if err := claimPlace(c.ID, "channel"); err != nil {
			return err
		}
	}
	for _, c := range wf.Contexts {
		if err := claimPlace(c.ID, "context"); err != nil {
			return err
		}
	}

	for _, t := range wf.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task id cannot be empty")
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %s", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
		// Compile installs the task's completion place at ID+".done"; a
		// task whose own ID collides with an existing place would only
		// surface as an unrelated duplicate-URI error from the transition
		// half of CreateTransition, so check it here with the task named.
		if owner, exists := placeIDs[t.ID]; exists {
			return fmt.Errorf("task id %s conflicts with %s id of the same name", t.ID, owner)
		}

		seenChannels := make(map[string]string) // channel id -> "input" or "output"
		checkChannel := func(id, direction string) error {
			if _, ok := placeIDs[id]; !ok {
				return fmt.Errorf("task %s references missing %s channel %s", t.ID, direction, id)
			}
			if prior, ok := seenChannels[id]; ok && prior == direction {
				return fmt.Errorf("task %s lists channel %s as %s more than once", t.ID, id, direction)
			}
			seenChannels[id] = direction
			return nil
		}

		if t.Input != "" {
			if err := checkChannel(t.Input, "input"); err != nil {
				return err
			}
		}
		for _, in := range t.Inputs {
			if err := checkChannel(in, "input"); err != nil {
				return err
			}
		}
		if t.Output != "" {
			if err := checkChannel(t.Output, "output"); err != nil {
				return err
			}
		}
		for _, out := range t.Outputs {
			if err := checkChannel(out, "output"); err != nil {
				return err
			}
		}

		for resID, amount := range t.Requires {
			if _, ok := placeIDs[resID]; !ok {
				return fmt.Errorf("task %s requires missing resource %s", t.ID, resID)
			}
			// Compile wires Requires as a borrow/return arc pair of this
			// weight; an arc's weight must be ≥ 1 (spec §3 Arc invariant),
			// so a non-positive amount is rejected here, before Compile
			// starts wiring, instead of by qnet.Connect partway through.
			if amount < 1 {
				return fmt.Errorf("task %s requires %d of resource %s, must be >= 1", t.ID, amount, resID)
			}
		}
		if t.Context != "" {
			if owner, ok := placeIDs[t.Context]; !ok || owner != "context" {
				return fmt.Errorf("task %s references missing context %s", t.ID, t.Context)
			}
		}
	}

	for _, g := range wf.Gateways {
		if g.ID == "" {
			return fmt.Errorf("gateway id cannot be empty")
		}
		if _, exists := gatewayIDs[g.ID]; exists {
			return fmt.Errorf("duplicate gateway id: %s", g.ID)
		}
		gatewayIDs[g.ID] = struct{}{}
		if _, exists := taskIDs[g.ID]; exists {
			return fmt.Errorf("gateway id %s conflicts with task id of the same name", g.ID)
		}
		if owner, exists := placeIDs[g.ID]; exists {
			return fmt.Errorf("gateway id %s conflicts with %s id of the same name", g.ID, owner)
		}

		waitFor := g.Inputs
		if len(waitFor) == 0 {
			waitFor = g.WaitFor
		}
		for _, wait := range waitFor {
			if wait == "" {
				return fmt.Errorf("gateway %s has empty input/wait_for entry", g.ID)
			}
			if _, ok := taskIDs[wait]; !ok {
				return fmt.Errorf("gateway %s references missing task %s", g.ID, wait)
			}
		}
		for _, out := range g.Outputs {
			if _, ok := taskIDs[out]; !ok {
				return fmt.Errorf("gateway %s triggers missing task %s", g.ID, out)
			}
		}

		// compileGateway's arity assumptions, checked up front instead of
		// surfacing as a generic compile-time error once Compile is
		// already midway through wiring arcs.
		switch g.Type {
		case "barrier":
			if len(waitFor) == 0 {
				return fmt.Errorf("barrier gateway %s must wait for at least one task", g.ID)
			}
		case "split":
			if len(waitFor) != 1 {
				return fmt.Errorf("split gateway %s needs exactly one input task, got %d", g.ID, len(waitFor))
			}
			if len(g.Outputs) == 0 {
				return fmt.Errorf("split gateway %s must fan out to at least one task", g.ID)
			}
		case "merge":
			if len(waitFor) == 0 {
				return fmt.Errorf("merge gateway %s must wait for at least one task", g.ID)
			}
			if len(g.Outputs) == 0 {
				return fmt.Errorf("merge gateway %s must trigger at least one task", g.ID)
			}
		default:
			return fmt.Errorf("gateway %s has unknown type %q", g.ID, g.Type)
		}
	}

	return nil
}
