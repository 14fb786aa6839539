package nodes

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"
)

// triangulate returns a Delaunay triangulation of points as index triples, each sorted.
// Fewer than three points, or collinear points, give no triangles.
func triangulate(points []vec.Vec2) [][3]int {
	n := len(points)
	if n < 3 {
		return nil
	}

	minP, maxP := points[0], points[0]
	for _, p := range points[1:] {
		minP = vec.Vec2{X: math.Min(minP.X, p.X), Y: math.Min(minP.Y, p.Y)}
		maxP = vec.Vec2{X: math.Max(maxP.X, p.X), Y: math.Max(maxP.Y, p.Y)}
	}
	span := math.Max(maxP.X-minP.X, maxP.Y-minP.Y)
	if span == 0 {
		return nil
	}
	mid := minP.Add(maxP).Mul(0.5)

	// A super triangle enclosing every point, removed at the end.
	all := append(append([]vec.Vec2(nil), points...),
		vec.Vec2{X: mid.X - 20*span, Y: mid.Y - span},
		vec.Vec2{X: mid.X, Y: mid.Y + 20*span},
		vec.Vec2{X: mid.X + 20*span, Y: mid.Y - span},
	)
	tris := [][3]int{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := all[i]
		var bad [][3]int
		kept := tris[:0:0]
		for _, t := range tris {
			if inCircumcircle(p, all[t[0]], all[t[1]], all[t[2]]) {
				bad = append(bad, t)
			} else {
				kept = append(kept, t)
			}
		}

		// The boundary of the cavity is every edge used by exactly one bad triangle.
		edges := make(map[[2]int]int)
		for _, t := range bad {
			for j := 0; j < 3; j++ {
				edges[sortedEdge(t[j], t[(j+1)%3])]++
			}
		}
		for e, count := range edges {
			if count == 1 {
				kept = append(kept, [3]int{e[0], e[1], i})
			}
		}
		tris = kept
	}

	var out [][3]int
	for _, t := range tris {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue
		}
		if area2(points[t[0]], points[t[1]], points[t[2]]) == 0 {
			continue
		}
		s := []int{t[0], t[1], t[2]}
		sort.Ints(s)
		out = append(out, [3]int{s[0], s[1], s[2]})
	}
	sort.Slice(out, func(a, b int) bool {
		for k := 0; k < 3; k++ {
			if out[a][k] != out[b][k] {
				return out[a][k] < out[b][k]
			}
		}
		return false
	})
	return out
}

func sortedEdge(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// area2 is twice the signed area of abc.
func area2(a, b, c vec.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func inCircumcircle(p, a, b, c vec.Vec2) bool {
	if area2(a, b, c) < 0 {
		b, c = c, b
	}
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y
	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	return det > 0
}

// inTriangle reports whether p lies inside or on abc.
func inTriangle(p, a, b, c vec.Vec2) bool {
	d1 := area2(p, a, b)
	d2 := area2(p, b, c)
	d3 := area2(p, c, a)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

// closestOnSegment projects p onto the segment ab.
func closestOnSegment(p, a, b vec.Vec2) vec.Vec2 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(d) / l2
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return a.Add(d.Mul(t))
}

// barycentric returns the weights of p relative to the triangle abc.
func barycentric(p, a, b, c vec.Vec2) [3]float64 {
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return [3]float64{1, 0, 0}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return [3]float64{1 - v - w, v, w}
}
