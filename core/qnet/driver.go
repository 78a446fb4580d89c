package qnet

import "context"

// Driver is the iterator abstraction that yields one marking snapshot per
// firing. It is a thin wrapper over a Net's scheduler — the firing and
// enabling logic itself lives on Net — exposing the two driving modes
// spec.md §4.9 describes as a first-class value instead of as bare
// function calls, mirroring the teacher's split between PetriNet (the
// engine) and its Run/RunContinuous driving loops.
type Driver struct {
	net *Net
}

// NewDriver wraps a net for iteration.
func NewDriver(net *Net) *Driver {
	return &Driver{net: net}
}

// Next advances the net by one firing, awaiting the firing's production
// goroutines before returning (synchronous mode). ok is false once no
// transition is enabled; the driver does not advance further after that.
func (d *Driver) Next(ctx context.Context) (result StepResult, ok bool, err error) {
	result, err = d.net.Step(ctx, true)
	if err != nil {
		return StepResult{}, false, err
	}
	return result, !result.Done, nil
}

// RunUntilQuiescent drains the driver synchronously, discarding
// intermediate snapshots, until no transition remains enabled.
func (d *Driver) RunUntilQuiescent(ctx context.Context) error {
	return d.net.RunUntilQuiescent(ctx)
}

// StartAsync drives the net in the background without awaiting each
// firing's production goroutines and without exposing intermediate
// snapshots, until the context is cancelled or the net goes quiescent. The
// returned channel receives exactly one value (nil or the terminating
// error) when the loop ends.
func (d *Driver) StartAsync(ctx context.Context) <-chan error {
	return d.net.StartAsync(ctx)
}

// All drains the driver synchronously and returns every intermediate
// state snapshot in firing order — convenient for tests asserting a
// specific sequence of firings.
func (d *Driver) All(ctx context.Context) ([]StepResult, error) {
	var results []StepResult
	for {
		result, more, err := d.Next(ctx)
		if err != nil {
			return results, err
		}
		if !more {
			return results, nil
		}
		results = append(results, result)
	}
}
