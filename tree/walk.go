package tree

import "errors"

// ErrHalt may be returned by an action to stop a traversal early. The
// traversal itself will then return nil.
var ErrHalt = errors.New("halt traversal")

// Action is called for nodes during a traversal. depth is relative to the
// start node of the traversal.
type Action[T comparable] func(node *Node[T], depth int) error

// TopDown visits node and all its descendants in document order, parents
// before children. A non-nil error returned by action stops the traversal
// and is returned, unless it is ErrHalt.
func TopDown[T comparable](node *Node[T], action Action[T]) error {
	if node == nil {
		return nil
	}
	err := topDown(node, 0, action)
	if errors.Is(err, ErrHalt) {
		return nil
	}
	return err
}

func topDown[T comparable](node *Node[T], depth int, action Action[T]) error {
	if err := action(node, depth); err != nil {
		return err
	}
	for _, ch := range node.Children(true) {
		if err := topDown(ch, depth+1, action); err != nil {
			return err
		}
	}
	return nil
}

// BottomUp visits node and all its descendants, children before parents.
// Errors are handled as with TopDown.
func BottomUp[T comparable](node *Node[T], action Action[T]) error {
	if node == nil {
		return nil
	}
	err := bottomUp(node, 0, action)
	if errors.Is(err, ErrHalt) {
		return nil
	}
	return err
}

func bottomUp[T comparable](node *Node[T], depth int, action Action[T]) error {
	for _, ch := range node.Children(true) {
		if err := bottomUp(ch, depth+1, action); err != nil {
			return err
		}
	}
	return action(node, depth)
}

// Descendants collects all nodes below node (excluding node) for which
// predicate returns true, in document order.
func Descendants[T comparable](node *Node[T], predicate func(*Node[T]) bool) []*Node[T] {
	var result []*Node[T]
	_ = TopDown(node, func(n *Node[T], depth int) error {
		if depth > 0 && predicate(n) {
			result = append(result, n)
		}
		return nil
	})
	tracer().Debugf("collected %d descendants", len(result))
	return result
}
