package codegen

import "github.com/huff-lang/huffc/ast"

// callFrame is one entry of the invocation stack (`mis` in spec.md §4.2–4.3):
// the absolute offset at which a macro invocation statement itself was
// encountered, paired with that invocation.
type callFrame struct {
	offset int
	inv    *ast.Statement // Kind == ast.StmtMacroInvocation
}

// stack is a small LIFO used for both the invocation stack and the macro
// scope stack. The two are not kept balanced: every expandMacro call pops
// whichever invocation frame is on top at the end of its body, while scope is
// never popped after a child expansion returns (see expandMacro). Neither
// stack is restored when an expansion fails; the error aborts the whole run.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) { s.items = append(s.items, v) }

func (s *stack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *stack[T]) last() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

func (s *stack[T]) len() int { return len(s.items) }

// truncateTo drops items beyond n. resolveArgRef uses it on a clone to drop
// the innermost entry before bubbling an argument one level outward.
func (s *stack[T]) truncateTo(n int) { s.items = s.items[:n] }

// snapshot of s's current slice, suitable for passing one level down
// without letting the callee's appends clobber the caller's backing array.
func (s *stack[T]) clone() *stack[T] {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return &stack[T]{items: items}
}
