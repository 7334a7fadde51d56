package expr

import (
	"cmp"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cottand/boolex/util"
)

const (
	andSeparator = " && "
	orSeparator  = " || "
)

// printItem is a node to render, a fixed token, or the end of a composite node whose
// rendering started at offset start
type printItem[K cmp.Ordered] struct {
	node  Expr[K]
	token string
	end   bool
	start int
}

// render produces the parenthesized infix form, e.g. "(!a || (b && c))".
// Every composite node visited keeps its own rendering, as a substring of the root's.
func render[K cmp.Ordered](e Expr[K]) string {
	if s, ok := e.hdr().cachedString(); ok {
		return s
	}
	sb := &strings.Builder{}
	stack := util.NewStack[printItem[K]](min(e.Depth(), 64))
	stack.Push(printItem[K]{node: e})
	for {
		item, ok := stack.Pop()
		if !ok {
			break
		}
		if item.node == nil {
			sb.WriteString(item.token)
			continue
		}
		if item.end {
			s := sb.String()[item.start:]
			item.node.hdr().str.Store(&s)
			continue
		}
		if s, ok := item.node.hdr().cachedString(); ok {
			sb.WriteString(s)
			continue
		}
		switch n := item.node.(type) {
		case *Literal[K]:
			sb.WriteString(strconv.FormatBool(n.Value))
		case *Variable[K]:
			sb.WriteString(VariableName(n.Key))
		case *Not[K]:
			stack.Push(printItem[K]{node: n, end: true, start: sb.Len()})
			sb.WriteString("!")
			stack.Push(printItem[K]{node: n.Child()})
		case *And[K], *Or[K]:
			sep := andSeparator
			if n.Kind() == KindOr {
				sep = orSeparator
			}
			stack.Push(printItem[K]{node: n, end: true, start: sb.Len()})
			sb.WriteString("(")
			stack.Push(printItem[K]{token: ")"})
			children := n.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack.Push(printItem[K]{node: children[i]})
				if i > 0 {
					stack.Push(printItem[K]{token: sep})
				}
			}
		}
	}
	s := sb.String()
	e.hdr().str.Store(&s)
	return s
}

// Print writes the rendering of e to w
func Print[K cmp.Ordered](w io.Writer, e Expr[K]) error {
	_, err := io.WriteString(w, e.String())
	return err
}

// VariableName renders a key so that parsing it back yields the same name:
// bare when it is a plain identifier, double-quoted otherwise
func VariableName[K cmp.Ordered](key K) string {
	s, ok := any(key).(string)
	if !ok {
		return fmt.Sprint(key)
	}
	if IsBareName(s) {
		return s
	}
	return strconv.Quote(s)
}

// IsBareName reports whether name can be written without quotes
func IsBareName(name string) bool {
	if name == "" || IsKeyword(name) {
		return false
	}
	for _, r := range name {
		if !IsNameRune(r) {
			return false
		}
	}
	return true
}

func IsNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		r == '_' || r == '.' || r == '-' || r == '$'
}

// IsKeyword reports whether word is one of the reserved words of the textual syntax
func IsKeyword(word string) bool {
	switch strings.ToLower(word) {
	case "true", "false", "and", "or", "not":
		return true
	}
	return false
}
