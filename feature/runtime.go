package feature

import (
	"context"
	"fmt"
	"sync"

	"github.com/brepkit/kernel/extref"
	"github.com/brepkit/kernel/loop"
	"github.com/brepkit/kernel/profile"
	"github.com/brepkit/kernel/sketch"
)

// Feature is one history entry: a sketch plus everything its
// prepare -> solve -> compile -> emit pipeline needs.
type Feature struct {
	Name string
	Doc  *sketch.Document

	// External references to re-project before solving. Refs may be nil
	// when the feature has none.
	Refs   []*extref.Ref
	Lookup extref.EdgeLookup
	Plane  extref.Plane

	// ChainOpts configures segment materialization.
	ChainOpts loop.ChainOptions
	// ProfilePlane is the lift basis handed to profile.Compile.
	ProfilePlane profile.Plane
}

// Result is one feature run's outcome: either a compiled bundle, or an
// error recorded on the feature so the runtime can continue with the next
// one.
type Result struct {
	FeatureName string
	Doc         *sketch.Document
	Bundle      profile.Bundle
	Err         error
}

// Runtime drives a history of features end to end.
type Runtime struct {
	queue runQueue
}

// RunFeature runs one feature's prepare -> solve -> compile -> emit
// pipeline synchronously, recovering from any panic raised deep in
// sketch/constraint/loop (such as a sketch invariant violation) and
// recording it on the result instead of propagating it.
func (r *Runtime) RunFeature(ctx context.Context, f Feature) (res Result) {
	res.FeatureName = f.Name
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("feature %q: panic: %v", f.Name, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	doc := f.Doc
	if len(f.Refs) > 0 && f.Lookup != nil {
		// A ref whose edge cannot be resolved is not fatal to the
		// feature: extref.Resolve leaves that ref's bound points
		// untouched and keeps resolving the rest, so the feature still
		// solves and compiles from whatever positions are known.
		_, _ = extref.Resolve(doc, f.Refs, f.Lookup, f.Plane)
	}

	sk := NewSketch(doc)
	solved := sk.Solve(nil)

	segs := loop.Materialize(solved, f.ChainOpts)
	loops := loop.Chain(segs)
	groups := loop.Classify(loops)
	bundle := profile.Compile(groups, f.ProfilePlane)

	res.Doc = solved
	res.Bundle = bundle
	return res
}

// RunHistory runs every feature in persisted order, serialized, returning
// one Result per feature. Each feature finishes before the next starts;
// the results are returned together once the whole history has run, and
// nothing is handed to a scene in between, so a later feature's Lookup
// does not see what earlier features emitted in this run.
//
// A panic or error in one feature does not stop the run: later features
// still execute.
func (r *Runtime) RunHistory(ctx context.Context, features []Feature) []Result {
	return r.queue.run(ctx, func(ctx context.Context) []Result {
		results := make([]Result, len(features))
		for i, f := range features {
			results[i] = r.RunFeature(ctx, f)
		}
		return results
	})
}

// runQueue serializes history runs and allows at most one pending run to be
// queued behind the in-flight one; a newer pending run supersedes an older
// one rather than stacking up.
type runQueue struct {
	mu      sync.Mutex
	running bool
	pending *pendingRun
}

type pendingRun struct {
	run    func(context.Context) []Result
	ctx    context.Context
	result chan []Result
}

func (q *runQueue) run(ctx context.Context, work func(context.Context) []Result) []Result {
	q.mu.Lock()
	if !q.running {
		q.running = true
		q.mu.Unlock()
		out := work(ctx)
		q.drainPending()
		return out
	}

	// Another run is in flight: supersede any previously queued pending
	// run and wait for ours to be picked up.
	result := make(chan []Result, 1)
	q.pending = &pendingRun{run: work, ctx: ctx, result: result}
	q.mu.Unlock()
	return <-result
}

func (q *runQueue) drainPending() {
	for {
		q.mu.Lock()
		next := q.pending
		q.pending = nil
		if next == nil {
			q.running = false
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()
		out := next.run(next.ctx)
		next.result <- out
	}
}
