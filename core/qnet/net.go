package qnet

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// nodeKind distinguishes the two node classes so that Connect can enforce
// the place/transition bipartition.
type nodeKind int

const (
	kindPlace nodeKind = iota
	kindTransition
)

// Net is a container of places and transitions. It implements the
// enabling predicate, the nondeterministic scheduler, the firing step,
// and compositional embedding of sub-nets with URI rewriting.
//
// Structural operations (CreatePlace, CreateTransition, Connect, Embed)
// must not run concurrently with firing (Step, RunUntilQuiescent,
// StartAsync) or with each other — the engine does not defend against
// concurrent structural modification, by design (see spec §5): structure
// is expected to be frozen before a net is driven.
type Net struct {
	Label string

	mu          sync.Mutex
	places      map[string]Node
	transitions map[string]*Transition
	kinds       map[string]nodeKind
	arcs        *arcTable

	// subnets records, per embedded child label, the mapping from the
	// minted (parent-facing) URI to the child's own local URI.
	subnets map[string]map[string]string
	// embedded tracks the child Net instances by their label, so a
	// subnetNodeHandle can forward calls onto them.
	embedded map[string]*Net

	I *Matrix
	O *Matrix
	C *Matrix

	logger *log.Logger

	placeSeq      int
	transitionSeq int
}

// NewNet constructs an empty net.
func NewNet(label string, opts ...Option) *Net {
	n := &Net{
		Label:       label,
		places:      make(map[string]Node),
		transitions: make(map[string]*Transition),
		kinds:       make(map[string]nodeKind),
		arcs:        newArcTable(),
		subnets:     make(map[string]map[string]string),
		embedded:    make(map[string]*Net),
		logger:      defaultLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.rebuildMatricesLocked()
	return n
}

func mintURI(label, suffix string) string {
	if suffix == "" {
		return label
	}
	return label + "." + suffix
}

// CreatePlace registers a new place and returns its URI. An empty label
// mints a unique one (github.com/google/uuid), since the literal scenarios
// in spec §8 always pass an explicit label and never observe this path.
func (n *Net) CreatePlace(label string, initTokens int, task Task, capacity *int) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if label == "" {
		label = fmt.Sprintf("p-%s", uuid.New().String()[:8])
	}
	uri := mintURI(label, "")
	if _, exists := n.kinds[uri]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateURI, uri)
	}

	n.places[uri] = NewPlace(label, initTokens, task, capacity)
	n.kinds[uri] = kindPlace
	n.placeSeq++
	n.rebuildMatricesLocked()
	n.logger.Printf("[%s] created place %s", n.Label, uri)
	return uri, nil
}

// CreateTransition registers a new transition and returns its URI.
func (n *Net) CreateTransition(label string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if label == "" {
		label = fmt.Sprintf("t-%s", uuid.New().String()[:8])
	}
	uri := mintURI(label, "")
	if _, exists := n.kinds[uri]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateURI, uri)
	}

	n.transitions[uri] = NewTransition(label)
	n.kinds[uri] = kindTransition
	n.transitionSeq++
	n.rebuildMatricesLocked()
	n.logger.Printf("[%s] created transition %s", n.Label, uri)
	return uri, nil
}

// Connect adds a weighted directed arc between a place and a transition
// (in either direction). Re-adding an arc between the same ordered pair,
// or connecting two nodes of the same kind, is an error.
func (n *Net) Connect(src, dst string, weight int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	srcKind, ok := n.kinds[src]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownURI, src)
	}
	dstKind, ok := n.kinds[dst]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownURI, dst)
	}
	if srcKind == dstKind {
		return fmt.Errorf("%w: %s -> %s", ErrKindMismatch, src, dst)
	}
	if weight < 1 {
		return fmt.Errorf("qnet: arc weight must be at least 1, got %d: %s -> %s", weight, src, dst)
	}
	if n.arcs.has(src, dst) {
		return fmt.Errorf("%w: %s -> %s", ErrArcExists, src, dst)
	}

	n.arcs.add(src, dst, weight)
	n.rebuildMatricesLocked()
	n.logger.Printf("[%s] connected %s -> %s (weight %d)", n.Label, src, dst, weight)
	return nil
}

// Embed copies a child net's places, transitions, and arcs into this net
// under URIs suffixed with the child's label, and records the URI mapping
// so later operations against the parent's minted URIs forward to the
// child. Embedding is a one-shot structural operation.
func (n *Net) Embed(child *Net) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.subnets[child.Label]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSubnet, child.Label)
	}

	mapping := make(map[string]string)

	child.mu.Lock()
	childPlaceURIs := sortedKeys(child.places)
	childTransitionURIs := sortedKeysT(child.transitions)
	childArcs := child.arcs.arcs()
	child.mu.Unlock()

	// Check every minted URI before registering any, so a collision leaves
	// this net unchanged.
	for _, childURI := range append(append([]string(nil), childPlaceURIs...), childTransitionURIs...) {
		minted := mintURI(childURI, child.Label)
		if _, exists := n.kinds[minted]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateURI, minted)
		}
	}

	for _, childURI := range childPlaceURIs {
		minted := mintURI(childURI, child.Label)
		if _, exists := n.kinds[minted]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateURI, minted)
		}
		n.places[minted] = subnetNodeHandle{child: child, childURI: childURI}
		n.kinds[minted] = kindPlace
		mapping[minted] = childURI
	}

	for _, childURI := range childTransitionURIs {
		label := childLabelOf(child, childURI)
		minted := mintURI(childURI, child.Label)
		if _, exists := n.kinds[minted]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateURI, minted)
		}
		n.transitions[minted] = NewTransition(label)
		n.kinds[minted] = kindTransition
		mapping[minted] = childURI
	}

	n.subnets[child.Label] = mapping
	n.embedded[child.Label] = child

	reverse := make(map[string]string, len(mapping))
	for minted, childURI := range mapping {
		reverse[childURI] = minted
	}
	for _, arc := range childArcs {
		mSrc := reverse[arc.src]
		mDst := reverse[arc.dst]
		n.arcs.add(mSrc, mDst, child.arcs.weight(arc.src, arc.dst))
	}

	n.rebuildMatricesLocked()
	n.logger.Printf("[%s] embedded subnet %s", n.Label, child.Label)
	return nil
}

func childLabelOf(child *Net, uri string) string {
	switch n := child.places[uri].(type) {
	case *Place:
		return n.Label
	case subnetNodeHandle:
		return childLabelOf(n.child, n.childURI)
	}
	if t, ok := child.transitions[uri]; ok {
		return t.Label
	}
	return uri
}

func sortedKeys(m map[string]Node) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysT(m map[string]*Transition) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// rebuildMatricesLocked recomputes I, O, C. Caller must hold n.mu.
func (n *Net) rebuildMatricesLocked() {
	placeURIs := sortedKeys(n.places)
	transitionURIs := sortedKeysT(n.transitions)

	n.I = newMatrix(placeURIs, transitionURIs, func(p, t string) int {
		return n.arcs.weight(p, t)
	})
	n.O = newMatrix(placeURIs, transitionURIs, func(p, t string) int {
		return n.arcs.weight(t, p)
	})
	n.C = subtract(n.O, n.I)
}

// resolveNode looks up the Node behind a place URI.
func (n *Net) resolveNode(uri string) (Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	node, ok := n.places[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownURI, uri)
	}
	return node, nil
}

// Tokens returns the current token count of the place at uri.
func (n *Net) Tokens(uri string) (int, error) {
	node, err := n.resolveNode(uri)
	if err != nil {
		return 0, err
	}
	return node.Tokens(), nil
}

func (n *Net) produceURI(uri string, delta int) error {
	node, err := n.resolveNode(uri)
	if err != nil {
		return err
	}
	return node.Produce(delta)
}

func (n *Net) consumeURI(uri string, delta int) error {
	node, err := n.resolveNode(uri)
	if err != nil {
		return err
	}
	return node.Consume(delta)
}

func (n *Net) isCapacityReachedURI(uri string) bool {
	node, err := n.resolveNode(uri)
	if err != nil {
		return false
	}
	return node.IsCapacityReached()
}

func (n *Net) resetURI(uri string) {
	node, err := n.resolveNode(uri)
	if err != nil {
		return
	}
	node.Reset()
}

// Reset restores every place in the net (including embedded sub-net
// places, via their own Reset) to its initial token count.
func (n *Net) Reset() {
	n.mu.Lock()
	uris := sortedKeys(n.places)
	n.mu.Unlock()
	for _, uri := range uris {
		n.resetURI(uri)
	}
}

// State returns the sorted "uri=count" snapshot of every place.
func (n *Net) State() []string {
	n.mu.Lock()
	uris := sortedKeys(n.places)
	n.mu.Unlock()

	state := make([]string, 0, len(uris))
	for _, uri := range uris {
		tokens, _ := n.Tokens(uri)
		state = append(state, fmt.Sprintf("%s=%d", uri, tokens))
	}
	return state
}

// IsEnabled reports whether the transition at tURI is enabled in the
// current marking, per spec §4.4.
func (n *Net) IsEnabled(tURI string) bool {
	return n.isEnabled(tURI)
}

// isEnabled implements spec §4.4: a transition needs at least one input
// and one output arc, every input place must hold enough tokens, and
// every output place must have capacity remaining after this firing.
//
// The capacity check is evaluated against the marking this firing would
// produce (current - I[p,t] + O[t,p]), not the instantaneous "already at
// capacity" reading — a transition that both drains and refills the same
// bounded place (spec §8 scenario 4's "P with capacity 1, T with P->T and
// T->P") must stay enabled even while P sits at capacity, since its own
// consumption frees the slot its production refills. A second transition
// that only produces into P without consuming from it is blocked exactly
// as the instantaneous reading would block it.
func (n *Net) isEnabled(tURI string) bool {
	if n.I.ColumnSum(tURI) == 0 || n.O.ColumnSum(tURI) == 0 {
		return false
	}
	for _, pURI := range sortedKeys(n.places) {
		need := n.I.At(pURI, tURI)
		produced := n.O.At(pURI, tURI)

		tokens, _ := n.Tokens(pURI)
		if tokens < need {
			return false
		}
		if produced > 0 {
			if limit, bounded := n.placeCapacity(pURI); bounded && tokens-need+produced > limit {
				return false
			}
		}
	}
	return true
}

// placeCapacity returns the capacity bound of the place at uri, if any.
func (n *Net) placeCapacity(uri string) (int, bool) {
	n.mu.Lock()
	node, ok := n.places[uri]
	n.mu.Unlock()
	if !ok {
		return 0, false
	}
	switch p := node.(type) {
	case *Place:
		return p.Capacity()
	case subnetNodeHandle:
		return p.child.placeCapacity(p.childURI)
	default:
		return 0, false
	}
}

// EnabledTransitions returns the URIs of every transition currently
// enabled, per spec §4.4. Order is unspecified — callers that need a
// uniformly random pick should use Step instead of shuffling this slice
// themselves, since a freshly shuffled order is drawn per call here too.
func (n *Net) EnabledTransitions() []string {
	n.mu.Lock()
	transitionURIs := sortedKeysT(n.transitions)
	n.mu.Unlock()

	var enabled []string
	for _, t := range transitionURIs {
		if n.isEnabled(t) {
			enabled = append(enabled, t)
		}
	}
	rand.Shuffle(len(enabled), func(i, j int) {
		enabled[i], enabled[j] = enabled[j], enabled[i]
	})
	return enabled
}

// StepResult is what Step returns: either a marking snapshot after a
// firing, or Done=true when no transition was enabled.
type StepResult struct {
	Fired string
	State []string
	Done  bool
}

// Step computes the enabled set, fires one uniformly-random element of
// it, and returns the resulting marking. In synchronous mode (await=true)
// it waits for every spawned production goroutine to complete before
// returning, so the returned state reflects all of this firing's effects.
func (n *Net) Step(ctx context.Context, await bool) (StepResult, error) {
	enabled := n.EnabledTransitions()
	if len(enabled) == 0 {
		return StepResult{Done: true}, nil
	}

	chosen := enabled[0]
	if err := n.Fire(ctx, chosen, await); err != nil {
		return StepResult{}, err
	}
	return StepResult{Fired: chosen, State: n.State()}, nil
}

// Fire implements spec §4.5: consumptions run synchronously on the
// calling goroutine (so the next enabling check reflects withdrawal
// immediately); each place with a positive production delta gets its own
// goroutine, since its task may block. Fire does not itself check that
// tURI is enabled — Step does that via EnabledTransitions before calling
// Fire — so callers driving a transition directly (e.g. to pin down one
// outcome among several concurrently-enabled transitions in a test) are
// responsible for that check.
func (n *Net) Fire(ctx context.Context, tURI string, await bool) error {
	n.mu.Lock()
	placeURIs := sortedKeys(n.places)
	n.mu.Unlock()

	n.logger.Printf("[%s] firing %s", n.Label, tURI)

	var pending sync.WaitGroup
	errCh := make(chan error, len(placeURIs))

	for _, pURI := range placeURIs {
		delta := n.O.At(pURI, tURI) - n.I.At(pURI, tURI)
		switch {
		case delta < 0:
			if err := n.consumeURI(pURI, -delta); err != nil {
				return fmt.Errorf("consume %s: %w", pURI, err)
			}
		case delta > 0:
			pending.Add(1)
			go func(uri string, d int) {
				defer pending.Done()
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				default:
				}
				if err := n.produceURI(uri, d); err != nil {
					errCh <- fmt.Errorf("produce %s: %w", uri, err)
				}
			}(pURI, delta)
		}
	}

	if await {
		pending.Wait()
		close(errCh)
		for err := range errCh {
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// RunUntilQuiescent repeatedly steps (awaiting each firing's production
// goroutines) until no transition is enabled.
func (n *Net) RunUntilQuiescent(ctx context.Context) error {
	for {
		result, err := n.Step(ctx, true)
		if err != nil {
			return err
		}
		if result.Done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// StartAsync drives the net in the background without awaiting each
// firing's production goroutines, until the context is cancelled or no
// transition remains enabled. Unlike the source material's start(), which
// loops forever with no shutdown path, this takes an explicit
// context.Context so the caller can cancel it (spec §9 Open Questions).
func (n *Net) StartAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			default:
			}
			result, err := n.Step(ctx, false)
			if err != nil {
				done <- err
				return
			}
			if result.Done {
				done <- nil
				return
			}
		}
	}()
	return done
}
