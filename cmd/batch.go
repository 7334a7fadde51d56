package cmd

import (
	"context"

	"github.com/cottand/boolex/config"
	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/normalform"
	"github.com/cottand/boolex/parser"
	"github.com/cottand/boolex/rewrite"
	"github.com/cottand/boolex/rwerr"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Mode int

const (
	ModeSimplify Mode = iota
	ModeDNF
	ModeCNF
)

func (m Mode) String() string {
	switch m {
	case ModeDNF:
		return "dnf"
	case ModeCNF:
		return "cnf"
	default:
		return "simplify"
	}
}

// Output is the outcome of one Input. Exactly one of Result and Err is set.
type Output struct {
	Input
	// Parsed is the input as the parser read it, nil if it did not parse
	Parsed expr.Expr[string]
	Result expr.Expr[string]
	Err    error
}

type rewriter func(expr.Expr[string]) (expr.Expr[string], error)

// newRewriter builds the rewrite of mode. Every call of the returned function shares
// one cache.
func newRewriter(mode Mode, cfg config.Config) (rewriter, error) {
	opts, err := cfg.RewriteOptions()
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeSimplify:
		rules, err := cfg.RuleSet()
		if err != nil {
			return nil, err
		}
		return func(e expr.Expr[string]) (expr.Expr[string], error) {
			return rewrite.Apply(e, rules, opts)
		}, nil
	case ModeDNF, ModeCNF:
		form := normalform.DNF
		if mode == ModeCNF {
			form = normalform.CNF
		}
		converter := normalform.NewConverter(opts)
		return func(e expr.Expr[string]) (expr.Expr[string], error) {
			return converter.Convert(e, form)
		}, nil
	default:
		return nil, errors.Errorf("unknown mode %v", mode)
	}
}

// Process parses and rewrites every input, cfg.Concurrency at a time. A failing input
// does not stop the others; its error is in its Output and in the returned aggregate.
func Process(ctx context.Context, mode Mode, cfg config.Config, inputs []Input) ([]Output, *rwerr.Errors, error) {
	rw, err := newRewriter(mode, cfg)
	if err != nil {
		return nil, nil, err
	}
	outputs := make([]Output, len(inputs))
	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			outputs[i] = processOne(ctx, rw, in)
			return nil
		})
	}
	_ = g.Wait()

	failures := &rwerr.Errors{}
	for i, out := range outputs {
		if out.Err != nil {
			failures = failures.With(i, out.Err)
		}
	}
	logger.Info("batch done", "mode", mode, "inputs", len(inputs), "failures", failures)
	return outputs, failures, ctx.Err()
}

func processOne(ctx context.Context, rw rewriter, in Input) Output {
	out := Output{Input: in}
	if out.Err = ctx.Err(); out.Err != nil {
		return out
	}
	out.Parsed, out.Err = parser.Parse(in.Text)
	if out.Err != nil {
		return out
	}
	out.Result, out.Err = rw(out.Parsed)
	logger.Debug("rewrote", "label", in.Label, "in", out.Parsed, "out", out.Result)
	return out
}
