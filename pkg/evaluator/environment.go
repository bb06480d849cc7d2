package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/value"
)

// Frame is one link in the lexical environment chain. Lookups walk the
// parent chain; bindings always land in the receiving frame, so an
// assignment inside a block never escapes it.
type Frame struct {
	parent *Frame
	vars   map[string]*value.Value
}

// NewFrame creates a frame whose parent is the given frame (nil for the
// root frame).
func NewFrame(parent *Frame) *Frame {
	return &Frame{
		parent: parent,
		vars:   make(map[string]*value.Value),
	}
}

// Bind binds name to v in this frame, shadowing any outer binding.
func (f *Frame) Bind(name string, v *value.Value) {
	f.vars[name] = v
}

// Lookup resolves name against this frame and its ancestors.
func (f *Frame) Lookup(name string) (*value.Value, bool) {
	for frame := f; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}
