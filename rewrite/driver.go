package rewrite

import (
	"cmp"
	"log/slog"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/internal/log"
	"github.com/cottand/boolex/rwerr"
)

var logger = expr.Logger(log.DefaultLogger).With("section", "rewrite")

// Apply rewrites tree bottom-up with rules until every node is a fixed point of the
// whole rule set. Children settle before their parent is visited. At each node every
// rule runs in order; if any fired, the result is visited again as a fresh node, so
// its new children settle before another pass over the node itself.
//
// Apply returns tree itself when nothing changed, including when rules is nil or empty.
// It fails with rwerr.LimitExceeded when opts bounds are exceeded and with
// rwerr.NotConverged when a node keeps changing past opts.MaxIterations, or when
// rewrites keep producing fresh subtrees that change in turn, more than
// opts.MaxIterations levels past the depth of tree.
func Apply[K cmp.Ordered](tree expr.Expr[K], rules *RuleSet[K], opts Options[K]) (expr.Expr[K], error) {
	out, _, err := ApplyWithStats(tree, rules, opts)
	return out, err
}

// Stats describes the work done by one ApplyWithStats call
type Stats struct {
	// Steps counts rule firings, the quantity bounded by Options.ExpansionLimit
	Steps int
}

// ApplyWithStats is Apply, also reporting how much work was done, even on failure
func ApplyWithStats[K cmp.Ordered](tree expr.Expr[K], rules *RuleSet[K], opts Options[K]) (expr.Expr[K], Stats, error) {
	if rules.Len() == 0 {
		return tree, Stats{}, nil
	}
	d := newDriver(rules, opts.withDefaults())
	d.maxGenerations = d.opts.MaxIterations + tree.Depth()
	out, err := expr.Transform(tree, expr.Visitor[K]{
		Enter:   d.enter,
		Rebuild: d.rebuild,
		Leave:   d.leave,
		Settled: d.settled,
	})
	stats := Stats{Steps: d.steps - opts.StepsUsed}
	if err != nil {
		return nil, stats, err
	}
	d.logger.Debug("rewrite done", "steps", d.steps, "in", tree, "out", out)
	return out, stats, nil
}

type driver[K cmp.Ordered] struct {
	rules          *RuleSet[K]
	opts           Options[K]
	logger         *slog.Logger
	done           map[expr.Digest]expr.Expr[K]
	open           []openNode
	steps          int
	lastRule       string
	maxGenerations int
}

// openNode is a node entered but not yet settled. Nodes settle in reverse order of
// entry, so the innermost one is always last.
type openNode struct {
	digest expr.Digest
	steps  int
	peak   int
}

func newDriver[K cmp.Ordered](rules *RuleSet[K], opts Options[K]) *driver[K] {
	return &driver[K]{
		rules:  rules,
		opts:   opts,
		logger: expr.Logger(opts.Logger).With("ruleSet", rules.Name()),
		done:   make(map[expr.Digest]expr.Expr[K]),
		steps:  opts.StepsUsed,
	}
}

func (d *driver[K]) enter(e expr.Expr[K]) (expr.Expr[K], bool) {
	r, ok := d.done[e.Digest()]
	if !ok {
		r, ok = d.cached(e)
	}
	if !ok {
		d.open = append(d.open, openNode{digest: e.Digest(), steps: d.steps})
		return nil, false
	}
	// keep the caller's pointer so identity signals "unchanged"
	if expr.Equal(r, e) {
		return e, true
	}
	return r, true
}

// cached looks e up in the shared cache and charges the steps the hit saves. A hit
// that would break a limit is ignored, so the rewrite runs and fails on the rule
// that breaks it.
func (d *driver[K]) cached(e expr.Expr[K]) (expr.Expr[K], bool) {
	if d.opts.Cache == nil {
		return nil, false
	}
	entry, ok := d.opts.Cache.Load(keyOf(e, d.rules))
	if !ok {
		return nil, false
	}
	if limit := d.opts.ExpansionLimit; limit > 0 && d.steps+entry.Steps > limit {
		return nil, false
	}
	if limit := d.opts.SizeLimit; limit > 0 && entry.Peak > limit {
		return nil, false
	}
	d.steps += entry.Steps
	d.observe(entry.Peak)
	d.done[e.Digest()] = entry.Result
	return entry.Result, true
}

func (d *driver[K]) rebuild(orig expr.Expr[K], children []expr.Expr[K]) expr.Expr[K] {
	return expr.Rebuild(d.opts.Factory, orig, children)
}

func (d *driver[K]) leave(orig, node expr.Expr[K], round, generation int) (expr.Expr[K], bool, error) {
	if node != orig {
		d.observe(node.Size())
	}
	// children settled into something bigger than the bound
	if limit := d.opts.SizeLimit; limit > 0 && node != orig && node.Size() > limit {
		return nil, false, d.exceeded(rwerr.LimitSize, limit, node.Size(), cmp.Or(d.lastRule, "<cached>"))
	}
	out, changed, err := d.pass(node)
	if err != nil || !changed {
		return node, false, err
	}
	if round+1 >= d.opts.MaxIterations {
		return nil, false, d.notConverged(round+1, out)
	}
	// every pass so far created fresh subtrees that changed again
	if generation+1 >= d.maxGenerations {
		return nil, false, d.notConverged(generation+1, out)
	}
	return out, true, nil
}

func (d *driver[K]) notConverged(iterations int, node expr.Expr[K]) error {
	notConverged.Inc()
	d.logger.Info("rewrite did not converge", "iterations", iterations)
	return rwerr.New(rwerr.NotConverged{
		RuleSet:    d.rules.Name(),
		Iterations: iterations,
		Node:       node.String(),
	})
}

// pass runs every rule once, in order, each on the output of the previous one
func (d *driver[K]) pass(node expr.Expr[K]) (expr.Expr[K], bool, error) {
	cur, changed := node, false
	for _, rule := range d.rules.rules {
		out, ok := rule.Apply(cur, d.opts.Factory)
		if !ok || out == nil || expr.Equal(out, cur) {
			continue
		}
		d.steps++
		d.lastRule = rule.Name()
		d.observe(out.Size())
		ruleFirings.WithLabelValues(rule.Name()).Inc()
		if limit := d.opts.ExpansionLimit; limit > 0 && d.steps > limit {
			return nil, false, d.exceeded(rwerr.LimitSteps, limit, d.steps, rule.Name())
		}
		if limit := d.opts.SizeLimit; limit > 0 && out.Size() > limit {
			return nil, false, d.exceeded(rwerr.LimitSize, limit, out.Size(), rule.Name())
		}
		d.logger.Debug("rule fired", "rule", rule.Name(), "from", cur, "to", out)
		cur, changed = out, true
	}
	return cur, changed, nil
}

func (d *driver[K]) exceeded(kind rwerr.LimitKind, limit, observed int, rule string) error {
	limitExceeded.WithLabelValues(string(kind)).Inc()
	d.logger.Info("rewrite aborted", "limit", kind, "bound", limit, "observed", observed, "rule", rule)
	return rwerr.New(rwerr.LimitExceeded{
		Kind:     kind,
		Limit:    limit,
		Observed: observed,
		Rule:     rule,
	})
}

func (d *driver[K]) settled(first, final expr.Expr[K]) {
	d.done[first.Digest()] = final
	d.done[final.Digest()] = final
	steps, peak := d.close(first)
	if d.opts.Cache != nil {
		d.opts.Cache.Store(keyOf(first, d.rules), Entry[K]{Result: final, Steps: steps, Peak: peak})
		d.opts.Cache.Store(keyOf(final, d.rules), Entry[K]{Result: final})
	}
}

// observe records size as produced inside the innermost open node
func (d *driver[K]) observe(size int) {
	if n := len(d.open); n > 0 {
		d.open[n-1].peak = max(d.open[n-1].peak, size)
	}
}

// close pops the open nodes down to first, returning the steps spent since first was
// entered and the largest size produced meanwhile. Re-queued nodes opened on top of
// first are folded into it.
func (d *driver[K]) close(first expr.Expr[K]) (steps, peak int) {
	for len(d.open) > 0 {
		n := d.open[len(d.open)-1]
		d.open = d.open[:len(d.open)-1]
		peak = max(peak, n.peak)
		if n.digest == first.Digest() {
			d.observe(peak)
			return d.steps - n.steps, peak
		}
	}
	return 0, peak
}
