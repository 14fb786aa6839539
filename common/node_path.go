package common

import "strings"

// NodePath addresses a node and optionally a property inside it, e.g. "Armature/Skeleton:hips"
// or "Mesh:blend_shapes/smile". Names are the slash separated node hops, SubNames the colon
// separated property or resource hops that follow them.
type NodePath struct {
	// Absolute is true when the path starts at the scene root ("/root/...").
	Absolute bool

	// Names are the node hops; ".." walks to the parent and "." stays in place.
	Names []string

	// SubNames are the property hops after the first colon.
	SubNames []string
}

// ParseNodePath splits a textual path into its node and property hops.
//
// Parameters:
//   - s: the textual path, for example "../Skeleton3D:spine" or "Player:position:x"
//
// Returns:
//   - NodePath: the parsed path (empty for an empty string)
func ParseNodePath(s string) NodePath {
	var p NodePath
	if s == "" {
		return p
	}
	if strings.HasPrefix(s, "/") {
		p.Absolute = true
		s = s[1:]
	}

	nodePart, subPart, hasSub := strings.Cut(s, ":")
	for _, name := range strings.Split(nodePart, "/") {
		if name != "" {
			p.Names = append(p.Names, name)
		}
	}
	if hasSub {
		for _, sub := range strings.Split(subPart, ":") {
			if sub != "" {
				p.SubNames = append(p.SubNames, sub)
			}
		}
	}
	return p
}

// IsEmpty reports whether the path has neither node nor property hops.
func (p NodePath) IsEmpty() bool {
	return !p.Absolute && len(p.Names) == 0 && len(p.SubNames) == 0
}

// String renders the path back into its textual form.
func (p NodePath) String() string {
	var b strings.Builder
	if p.Absolute {
		b.WriteByte('/')
	}
	b.WriteString(strings.Join(p.Names, "/"))
	for _, sub := range p.SubNames {
		b.WriteByte(':')
		b.WriteString(sub)
	}
	return b.String()
}

// ConcatenatedSubNames joins the property hops with ':' as used by indexed property access.
func (p NodePath) ConcatenatedSubNames() string {
	return strings.Join(p.SubNames, ":")
}

// Equal reports whether p and o address the same node and property.
func (p NodePath) Equal(o NodePath) bool {
	return p.String() == o.String()
}
