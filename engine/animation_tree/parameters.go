package animation_tree

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// ParametersBase prefixes every parameter path of a tree.
const ParametersBase = "parameters/"

type inputActivity struct {
	activity float64
	lastPass uint64
}

// parameterPlane holds the runtime values of every parameter the graph declares, keyed by full
// path. Values and defaults outlive the declarations that created them, so a path dropped by a
// graph edit still reads back its last value.
type parameterPlane struct {
	values   map[string]variant.Variant
	defaults map[string]variant.Variant
	declared []string
	live     map[string]bool
	activity map[string][]inputActivity
	dirty    bool
}

var _ animation.ParameterStore = &parameterPlane{}

func newParameterPlane() *parameterPlane {
	return &parameterPlane{
		values:   make(map[string]variant.Variant),
		defaults: make(map[string]variant.Variant),
		live:     make(map[string]bool),
		activity: make(map[string][]inputActivity),
		dirty:    true,
	}
}

// rebuild walks the graph from root if anything changed since the last walk.
func (p *parameterPlane) rebuild(root animation.Node) {
	if !p.dirty {
		return
	}
	p.dirty = false
	p.declared = p.declared[:0]
	p.live = make(map[string]bool)
	p.activity = make(map[string][]inputActivity)
	if root != nil {
		p.walk(ParametersBase, root)
	}
}

func (p *parameterPlane) walk(base string, n animation.Node) {
	if n.InputCount() > 0 {
		p.activity[strings.TrimSuffix(base, "/")] = make([]inputActivity, n.InputCount())
	}
	for _, info := range n.Parameters() {
		key := base + info.Name
		p.declared = append(p.declared, key)
		p.live[key] = true
		p.defaults[key] = info.Default
		if _, ok := p.values[key]; !ok {
			p.values[key] = info.Default
		}
	}
	for _, child := range n.Children() {
		p.walk(base+child.Name+"/", child.Node)
	}
}

func (p *parameterPlane) isDeclared(key string) bool {
	return p.live[key]
}

func (p *parameterPlane) Parameter(basePath, name string) variant.Variant {
	return p.get(basePath + name)
}

func (p *parameterPlane) SetParameter(basePath, name string, v variant.Variant) {
	p.set(basePath+name, v)
}

func (p *parameterPlane) RecordActivity(basePath string, input int, activity float64, pass uint64) {
	a, ok := p.activity[strings.TrimSuffix(basePath, "/")]
	if !ok || input < 0 || input >= len(a) {
		return
	}
	a[input] = inputActivity{activity: activity, lastPass: pass}
}

// get returns the stored value of key, or nil when nothing was ever stored there.
func (p *parameterPlane) get(key string) variant.Variant {
	return p.values[key]
}

func (p *parameterPlane) set(key string, v variant.Variant) bool {
	if !p.isDeclared(key) {
		return false
	}
	p.values[key] = v
	return true
}

// connectionActivity returns the activity of input of the node at path, or 0 when it was not
// driven during pass.
func (p *parameterPlane) connectionActivity(path string, input int, pass uint64) float64 {
	a, ok := p.activity[strings.TrimSuffix(path, "/")]
	if !ok || input < 0 || input >= len(a) || a[input].lastPass != pass {
		return 0
	}
	return a[input].activity
}

// rename copies every value under oldBase to the same path under newBase, then resets the old
// entries to their declared defaults. Keys are matched by plain prefix.
func (p *parameterPlane) rename(oldBase, newBase string) {
	moved := make(map[string]variant.Variant)
	for key, v := range p.values {
		if strings.HasPrefix(key, oldBase) {
			moved[newBase+strings.TrimPrefix(key, oldBase)] = v
		}
	}
	for key := range p.values {
		if !strings.HasPrefix(key, oldBase) {
			continue
		}
		if def, ok := p.defaults[key]; ok {
			p.values[key] = def
		} else {
			delete(p.values, key)
		}
	}
	for key, v := range moved {
		p.values[key] = v
	}
	p.dirty = true
}
