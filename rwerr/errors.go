// Package rwerr holds every error the rewrite engine and its front ends can return.
package rwerr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
var enableDebugErrorPrinting = false

type ErrCode int

const (
	None ErrCode = iota
	Parse
	Limit
	Convergence
)

var (
	// ErrLimitExceeded matches any *LimitExceeded through errors.Is
	ErrLimitExceeded = errors.New("expansion limit exceeded")
	// ErrNotConverged matches any *NotConverged through errors.Is
	ErrNotConverged = errors.New("rule set did not converge")
)

type Error interface {
	error
	Code() ErrCode

	withStack([]byte) Error
	getStack() []byte
}

// New records where err was created so FormatWithCode can point at it
func New[E Error](err E) Error {
	return err.withStack(debug.Stack())
}

// CodeOf returns the code of the first Error in err's chain, or None
func CodeOf(err error) ErrCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return None
}

func FormatWithCode(err error) string {
	var e Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if enableDebugErrorPrinting && e.getStack() != nil {
		lines := strings.Split(string(e.getStack()), "\n")
		if len(lines) > 6 {
			return fmt.Sprintf("%s:(E%03d) %s", strings.TrimSpace(lines[6]), e.Code(), err.Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), err.Error())
}

// Syntax is a malformed input text. Offset counts runes from the start of the input.
type Syntax struct {
	Offset, Line, Column int
	// Token is the offending token text, empty at end of input
	Token   string
	Message string
	stack   []byte
}

func (e Syntax) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%d:%d: %s at end of input", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s at %q", e.Line, e.Column, e.Message, e.Token)
}
func (e Syntax) Code() ErrCode    { return Parse }
func (e Syntax) getStack() []byte { return e.stack }
func (e Syntax) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type LimitKind string

const (
	LimitSize  LimitKind = "size"
	LimitSteps LimitKind = "steps"
)

// LimitExceeded is returned when a rewrite would grow past a caller supplied bound.
// The input tree is untouched so callers can fall back to it.
type LimitExceeded struct {
	Kind     LimitKind
	Limit    int
	Observed int
	// Rule is the rule that was firing when the limit was hit
	Rule  string
	stack []byte
}

func (e LimitExceeded) Error() string {
	return fmt.Sprintf("%s limit of %d exceeded (reached %d while applying %s)", e.Kind, e.Limit, e.Observed, e.Rule)
}
func (e LimitExceeded) Is(target error) bool { return target == ErrLimitExceeded }
func (e LimitExceeded) Code() ErrCode        { return Limit }
func (e LimitExceeded) getStack() []byte     { return e.stack }
func (e LimitExceeded) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NotConverged means a rule set kept rewriting a single node past the iteration cap,
// which is a bug in the rule set rather than in the input.
type NotConverged struct {
	RuleSet    string
	Iterations int
	// Node is the rendering of the node at the moment the cap was hit
	Node  string
	stack []byte
}

func (e NotConverged) Error() string {
	return fmt.Sprintf("rule set %s did not converge after %d iterations on %s", e.RuleSet, e.Iterations, e.Node)
}
func (e NotConverged) Is(target error) bool { return target == ErrNotConverged }
func (e NotConverged) Code() ErrCode        { return Convergence }
func (e NotConverged) getStack() []byte     { return e.stack }
func (e NotConverged) withStack(stack []byte) Error {
	e.stack = stack
	return e
}
