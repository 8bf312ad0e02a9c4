package component

// Options describes a component kind.
type Options struct {
	Name          string
	ComponentTag  string
	File          string
	ErrorCaptured []RecoveryHook
}

// Kind is the constructor shared by every instance of one component.
type Kind struct {
	opts Options
}

// NewKind registers a component kind.
func NewKind(opts Options) *Kind {
	opts.ErrorCaptured = append([]RecoveryHook(nil), opts.ErrorCaptured...)
	return &Kind{opts: opts}
}

// Options returns a copy of the kind options.
func (k *Kind) Options() Options {
	if k == nil {
		return Options{}
	}
	opts := k.opts
	opts.ErrorCaptured = append([]RecoveryHook(nil), k.opts.ErrorCaptured...)
	return opts
}

// Node is the concrete tree node.
type Node struct {
	kind   *Kind
	parent *Node
	root   *Node
	tag    string
	hooks  []RecoveryHook
}

// NodeOption configures a Node during construction.
type NodeOption func(*Node)

// WithComponentTag overrides the tag the instance is mounted under.
func WithComponentTag(tag string) NodeOption { return func(n *Node) { n.tag = tag } }

// WithHooks appends per-instance errorCaptured hooks.
func WithHooks(hooks ...RecoveryHook) NodeOption {
	return func(n *Node) { n.hooks = append(n.hooks, hooks...) }
}

// NewRoot creates the root instance of a tree.
func NewRoot(kind *Kind, opts ...NodeOption) *Node {
	n := &Node{kind: kind}
	n.root = n
	for _, o := range opts {
		o(n)
	}
	return n
}

// NewChild creates an instance below n.
func (n *Node) NewChild(kind *Kind, opts ...NodeOption) *Node {
	child := &Node{kind: kind, parent: n, root: n.root}
	for _, o := range opts {
		o(child)
	}
	return child
}

// OnErrorCaptured registers a hook on this instance after the kind's hooks.
func (n *Node) OnErrorCaptured(hook RecoveryHook) {
	if n == nil || hook == nil {
		return
	}
	n.hooks = append(n.hooks, hook)
}

// Parent implements Instance.
func (n *Node) Parent() Instance {
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

// Root implements Instance.
func (n *Node) Root() Instance {
	if n == nil || n.root == nil {
		return nil
	}
	return n.root
}

// Kind implements Instance.
func (n *Node) Kind() *Kind {
	if n == nil {
		return nil
	}
	return n.kind
}

// RecoveryHooks implements Instance.
func (n *Node) RecoveryHooks() []RecoveryHook {
	if n == nil {
		return nil
	}
	var kindHooks []RecoveryHook
	if n.kind != nil {
		kindHooks = n.kind.opts.ErrorCaptured
	}
	if len(kindHooks)+len(n.hooks) == 0 {
		return nil
	}
	hooks := make([]RecoveryHook, 0, len(kindHooks)+len(n.hooks))
	hooks = append(hooks, kindHooks...)
	return append(hooks, n.hooks...)
}

// Metadata implements Instance.
func (n *Node) Metadata() Metadata {
	if n == nil {
		return Metadata{}
	}
	var md Metadata
	if n.kind != nil {
		md = Metadata{
			Name:         n.kind.opts.Name,
			ComponentTag: n.kind.opts.ComponentTag,
			File:         n.kind.opts.File,
		}
	}
	if n.tag != "" {
		md.ComponentTag = n.tag
	}
	return md
}
