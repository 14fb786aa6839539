package clip

import "github.com/Carmen-Shannon/oxy-anim/common"

func (c *clip) KeysInRange(i int, time, delta float64, pingponged int) []int {
	t := c.track(i)
	if t == nil || len(t.keys) == 0 || delta == 0 {
		return nil
	}

	from, to := time-delta, time
	backward := false
	if from > to {
		backward = true
		from, to = to, from
	}

	var out []int
	switch c.loopMode {
	case LoopNone:
		from = common.Clamp(from, 0, c.length)
		to = common.Clamp(to, 0, c.length)

	case LoopLinear:
		if c.length <= 0 {
			break
		}
		if from > c.length || from < 0 {
			from = common.Fposmod(from, c.length)
		}
		if to > c.length || to < 0 {
			to = common.Fposmod(to, c.length)
		}
		if from > to {
			// The step crossed the loop point; keys at either end stay reachable.
			out = t.keysBetween(out, from, c.length+common.CmpEpsilon, backward)
			return t.keysBetween(out, -common.CmpEpsilon, to, backward)
		}

	case LoopPingPong:
		if c.length <= 0 {
			break
		}
		// delta is signed by the direction of travel before the reflection, so the start of the
		// step can be rebuilt on the far side of the bounce.
		switch pingponged {
		case 1:
			prev := common.Clamp(2*c.length-time-delta, 0, c.length)
			out = t.keysBetween(out, prev, c.length+common.CmpEpsilon, false)
			return t.keysBetween(out, time, c.length, true)
		case -1:
			prev := common.Clamp(-delta-time, 0, c.length)
			out = t.keysBetween(out, -common.CmpEpsilon, prev, true)
			return t.keysBetween(out, 0, time, false)
		}
		if from > c.length || from < 0 {
			from = common.Pingpong(from, c.length)
		}
		if to > c.length || to < 0 {
			to = common.Pingpong(to, c.length)
		}
	}
	return t.keysBetween(out, from, to, backward)
}

// keysBetween appends the keys inside the interval to out. Forward intervals are open at the
// start and closed at the end; backward intervals the other way round, listed in reverse order.
func (t *track) keysBetween(out []int, from, to float64, backward bool) []int {
	n := len(t.keys)
	lo, hi := 0, n-1
	if !backward {
		for lo <= hi && t.keys[lo].keyTime() <= from {
			lo++
		}
		for hi >= lo && t.keys[hi].keyTime() > to {
			hi--
		}
		for k := lo; k <= hi; k++ {
			out = append(out, k)
		}
		return out
	}

	for lo <= hi && t.keys[lo].keyTime() < from {
		lo++
	}
	for hi >= lo && t.keys[hi].keyTime() >= to {
		hi--
	}
	for k := hi; k >= lo; k-- {
		out = append(out, k)
	}
	return out
}
