package animation_tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

// ErrSnapshot is returned when a parameter snapshot cannot be read.
var ErrSnapshot = errors.New("animation tree: bad parameter snapshot")

// The snapshot is a flat JSON object keyed by parameter path. Each entry is typed so values read
// back with the kind they were written with:
//
//	{"parameters/mix/blend_amount": {"type": "float", "value": 0.25}}

// pathEscaper protects the characters sjson treats as path syntax.
var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

// exportParameters writes every declared parameter, in declaration order.
func (p *parameterPlane) exportParameters() ([]byte, error) {
	doc := []byte("{}")
	for _, key := range p.declared {
		v := p.values[key]
		entry := map[string]any{"type": v.Kind().String(), "value": encodeVariant(v)}
		var err error
		if doc, err = sjson.SetBytes(doc, pathEscaper.Replace(key), entry); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
	}
	return doc, nil
}

// importParameters sets every entry of data whose path is declared. Undeclared paths are
// returned as skipped so callers can report them.
func (p *parameterPlane) importParameters(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrSnapshot)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrSnapshot)
	}

	var skipped []string
	var errs []error
	doc.ForEach(func(k, entry gjson.Result) bool {
		key := k.String()
		kind, ok := variant.ParseKind(entry.Get("type").String())
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s has unknown type %q", ErrSnapshot, key, entry.Get("type").String()))
			return true
		}
		v, err := decodeVariant(kind, entry.Get("value"))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrSnapshot, key, err))
			return true
		}
		if !p.set(key, v) {
			skipped = append(skipped, key)
		}
		return true
	})
	return skipped, errors.Join(errs...)
}

func encodeVariant(v variant.Variant) any {
	switch v.Kind() {
	case variant.KindBool:
		return v.AsBool()
	case variant.KindInt:
		return v.AsInt()
	case variant.KindFloat:
		return v.AsFloat()
	case variant.KindString:
		return v.AsString()
	case variant.KindVector2:
		p := v.AsVector2()
		return []float64{p.X, p.Y}
	case variant.KindVector3:
		return vec3(v.AsVector3())
	case variant.KindQuaternion:
		return quat4(v.AsQuaternion())
	case variant.KindColor:
		c := v.AsColor()
		return []float64{c.R, c.G, c.B, c.A}
	case variant.KindTransform:
		t := v.AsTransform()
		return map[string]any{
			"origin":   vec3(t.Origin),
			"rotation": quat4(t.Rotation),
			"scale":    vec3(t.Scale),
		}
	}
	return nil
}

func vec3(v r3.Vec) []float64 { return []float64{v.X, v.Y, v.Z} }

func quat4(q quat.Number) []float64 { return []float64{q.Imag, q.Jmag, q.Kmag, q.Real} }

// floats reads a fixed size number array.
func floats(r gjson.Result, n int) ([]float64, error) {
	arr := r.Array()
	if !r.IsArray() || len(arr) != n {
		return nil, fmt.Errorf("want an array of %d numbers", n)
	}
	out := make([]float64, n)
	for i, a := range arr {
		if a.Type != gjson.Number {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		out[i] = a.Float()
	}
	return out, nil
}

func decodeVariant(kind variant.Kind, r gjson.Result) (variant.Variant, error) {
	switch kind {
	case variant.KindNil:
		return variant.Nil(), nil
	case variant.KindBool:
		if !r.IsBool() {
			return variant.Nil(), errors.New("want a boolean")
		}
		return variant.Bool(r.Bool()), nil
	case variant.KindInt:
		if r.Type != gjson.Number {
			return variant.Nil(), errors.New("want a number")
		}
		return variant.Int(r.Int()), nil
	case variant.KindFloat:
		if r.Type != gjson.Number {
			return variant.Nil(), errors.New("want a number")
		}
		return variant.Float(r.Float()), nil
	case variant.KindString:
		if r.Type != gjson.String {
			return variant.Nil(), errors.New("want a string")
		}
		return variant.String(r.String()), nil
	case variant.KindVector2:
		f, err := floats(r, 2)
		if err != nil {
			return variant.Nil(), err
		}
		return variant.Vector2(vec.Vec2{X: f[0], Y: f[1]}), nil
	case variant.KindVector3:
		f, err := floats(r, 3)
		if err != nil {
			return variant.Nil(), err
		}
		return variant.Vector3(r3.Vec{X: f[0], Y: f[1], Z: f[2]}), nil
	case variant.KindQuaternion:
		f, err := floats(r, 4)
		if err != nil {
			return variant.Nil(), err
		}
		return variant.Quaternion(common.QuatFromXYZW(f[0], f[1], f[2], f[3])), nil
	case variant.KindColor:
		f, err := floats(r, 4)
		if err != nil {
			return variant.Nil(), err
		}
		return variant.Color(common.Color{R: f[0], G: f[1], B: f[2], A: f[3]}), nil
	case variant.KindTransform:
		o, err := floats(r.Get("origin"), 3)
		if err != nil {
			return variant.Nil(), fmt.Errorf("origin: %w", err)
		}
		q, err := floats(r.Get("rotation"), 4)
		if err != nil {
			return variant.Nil(), fmt.Errorf("rotation: %w", err)
		}
		s, err := floats(r.Get("scale"), 3)
		if err != nil {
			return variant.Nil(), fmt.Errorf("scale: %w", err)
		}
		return variant.Transform(common.Transform{
			Origin:   r3.Vec{X: o[0], Y: o[1], Z: o[2]},
			Rotation: common.QuatFromXYZW(q[0], q[1], q[2], q[3]),
			Scale:    r3.Vec{X: s[0], Y: s[1], Z: s[2]},
		}), nil
	}
	return variant.Nil(), fmt.Errorf("unsupported type %s", kind)
}
