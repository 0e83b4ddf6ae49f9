package tree

import "fmt"

// InvariantError reports data that violates a relation's declared shape,
// such as a cycle in is-a. The build is abandoned; no partial tree is
// returned alongside it.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tree: invariant violated: %s", e.Msg)
}

// DecodeError reports a malformed tree value encountered where a specific
// shape was required, such as a non-string label during rendering.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("tree: decode: %s", e.Msg)
}
