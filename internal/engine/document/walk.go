package document

// NodeHandler processes an element whose local name it was registered for.
// Returns true if the walker should not enter the element's subtree.
type NodeHandler func(node *Node) bool

// Walker visits elements in document order and dispatches handlers by local
// tag name. Elements without a handler are always descended into.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

// Walk visits node and its descendants.
func (w *Walker) Walk(node *Node) {
	if node == nil {
		return
	}
	w.run([]*Node{node})
}

// WalkDescendants visits the descendants of node but not node itself.
func (w *Walker) WalkDescendants(node *Node) {
	if node == nil {
		return
	}
	w.run(pushChildren(nil, node))
}

func (w *Walker) run(stack []*Node) {
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stop := false
		if node.Name != "" {
			if handler, ok := w.handlers[node.LocalName()]; ok {
				stop = handler(node)
			}
		}
		if !stop {
			stack = pushChildren(stack, node)
		}
	}
}

// pushChildren pushes children last-first so the first child pops next.
func pushChildren(stack []*Node, node *Node) []*Node {
	for i := len(node.Children) - 1; i >= 0; i-- {
		stack = append(stack, node.Children[i])
	}
	return stack
}
