package scene

import "sync"

// OpKind identifies a recorded scene mutation
type OpKind string

const (
	OpCreate       OpKind = "create"
	OpDelete       OpKind = "delete"
	OpSetAttribute OpKind = "setattribute"
	OpConnect      OpKind = "connect"
	OpDisconnect   OpKind = "disconnect"
)

// Op is one recorded API call
type Op struct {
	Kind     OpKind
	Handle   string
	NodeType string
	Args     ArgList
	From     string
	FromAttr string
	To       string
	ToAttr   string
}

// Recorder is an API that records calls instead of applying them
type Recorder struct {
	ops []Op
	mu  sync.Mutex
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *Recorder) Create(handle, nodeType string) {
	r.record(Op{Kind: OpCreate, Handle: handle, NodeType: nodeType})
}

func (r *Recorder) Delete(handle string) {
	r.record(Op{Kind: OpDelete, Handle: handle})
}

func (r *Recorder) SetAttribute(handle string, args ...Arg) {
	batch := make(ArgList, len(args))
	copy(batch, args)
	r.record(Op{Kind: OpSetAttribute, Handle: handle, Args: batch})
}

func (r *Recorder) Connect(from, fromAttr, to, toAttr string) {
	r.record(Op{Kind: OpConnect, From: from, FromAttr: fromAttr, To: to, ToAttr: toAttr})
}

func (r *Recorder) Disconnect(from, fromAttr, to, toAttr string) {
	r.record(Op{Kind: OpDisconnect, From: from, FromAttr: fromAttr, To: to, ToAttr: toAttr})
}

// Ops returns a copy of the recorded calls in call order
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.ops))
	copy(ops, r.ops)
	return ops
}

// Replay applies ops to api in order
func Replay(api API, ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpCreate:
			api.Create(op.Handle, op.NodeType)
		case OpDelete:
			api.Delete(op.Handle)
		case OpSetAttribute:
			api.SetAttribute(op.Handle, op.Args...)
		case OpConnect:
			api.Connect(op.From, op.FromAttr, op.To, op.ToAttr)
		case OpDisconnect:
			api.Disconnect(op.From, op.FromAttr, op.To, op.ToAttr)
		}
	}
}
