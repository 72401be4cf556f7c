// Package easing provides Penner-style easing functions.
//
// Every function has the signature f(t, b, c, d) where t is the elapsed
// time, b the start value, c the total change and d the duration. All
// functions return b at t == 0 and b+c at t == d.
package easing

import (
	"math"
	"sort"
)

// Func maps elapsed time t in [0, d] to a value between b and b+c.
type Func func(t, b, c, d float64) float64

// Name identifies a built-in easing function.
type Name string

// Built-in easing names.
const (
	Linear      Name = "linear"
	InQuad      Name = "inQuad"
	OutQuad     Name = "outQuad"
	InOutQuad   Name = "inOutQuad"
	OutInQuad   Name = "outInQuad"
	InCubic     Name = "inCubic"
	OutCubic    Name = "outCubic"
	InOutCubic  Name = "inOutCubic"
	OutInCubic  Name = "outInCubic"
	InQuart     Name = "inQuart"
	OutQuart    Name = "outQuart"
	InOutQuart  Name = "inOutQuart"
	InQuint     Name = "inQuint"
	OutQuint    Name = "outQuint"
	InOutQuint  Name = "inOutQuint"
	InSine      Name = "inSine"
	OutSine     Name = "outSine"
	InOutSine   Name = "inOutSine"
	InExpo      Name = "inExpo"
	OutExpo     Name = "outExpo"
	InOutExpo   Name = "inOutExpo"
	InCirc      Name = "inCirc"
	OutCirc     Name = "outCirc"
	InOutCirc   Name = "inOutCirc"
	InBounce    Name = "inBounce"
	OutBounce   Name = "outBounce"
	InOutBounce Name = "inOutBounce"
)

var table = map[Name]Func{
	Linear:      linear,
	InQuad:      inQuad,
	OutQuad:     outQuad,
	InOutQuad:   inOutQuad,
	OutInQuad:   outIn(outQuad, inQuad),
	InCubic:     inCubic,
	OutCubic:    outCubic,
	InOutCubic:  inOutCubic,
	OutInCubic:  outIn(outCubic, inCubic),
	InQuart:     inQuart,
	OutQuart:    outQuart,
	InOutQuart:  inOutQuart,
	InQuint:     inQuint,
	OutQuint:    outQuint,
	InOutQuint:  inOutQuint,
	InSine:      inSine,
	OutSine:     outSine,
	InOutSine:   inOutSine,
	InExpo:      inExpo,
	OutExpo:     outExpo,
	InOutExpo:   inOutExpo,
	InCirc:      inCirc,
	OutCirc:     outCirc,
	InOutCirc:   inOutCirc,
	InBounce:    inBounce,
	OutBounce:   outBounce,
	InOutBounce: inOutBounce,
}

// Lookup returns the easing function registered under name.
func Lookup(name string) (Func, bool) {
	fn, ok := table[Name(name)]
	return fn, ok
}

// MustLookup returns the easing function for name and panics if the name
// is unknown. An empty name resolves to Linear.
func MustLookup(name string) Func {
	if name == "" {
		return linear
	}
	fn, ok := table[Name(name)]
	if !ok {
		panic("easing: unknown easing function " + `"` + name + `"`)
	}
	return fn
}

// Names returns all built-in easing names in sorted order.
func Names() []Name {
	names := make([]Name, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func linear(t, b, c, d float64) float64 {
	return c*t/d + b
}

func inQuad(t, b, c, d float64) float64 {
	t /= d
	return c*t*t + b
}

func outQuad(t, b, c, d float64) float64 {
	t /= d
	return -c*t*(t-2) + b
}

func inOutQuad(t, b, c, d float64) float64 {
	t = t / d * 2
	if t < 1 {
		return c/2*t*t + b
	}
	t--
	return -c/2*(t*(t-2)-1) + b
}

func inCubic(t, b, c, d float64) float64 {
	t /= d
	return c*t*t*t + b
}

func outCubic(t, b, c, d float64) float64 {
	t = t/d - 1
	return c*(t*t*t+1) + b
}

func inOutCubic(t, b, c, d float64) float64 {
	t = t / d * 2
	if t < 1 {
		return c/2*t*t*t + b
	}
	t -= 2
	return c/2*(t*t*t+2) + b
}

func inQuart(t, b, c, d float64) float64 {
	t /= d
	return c*math.Pow(t, 4) + b
}

func outQuart(t, b, c, d float64) float64 {
	t = t/d - 1
	return -c*(math.Pow(t, 4)-1) + b
}

func inOutQuart(t, b, c, d float64) float64 {
	t = t / d * 2
	if t < 1 {
		return c/2*math.Pow(t, 4) + b
	}
	t -= 2
	return -c/2*(math.Pow(t, 4)-2) + b
}

func inQuint(t, b, c, d float64) float64 {
	t /= d
	return c*math.Pow(t, 5) + b
}

func outQuint(t, b, c, d float64) float64 {
	t = t/d - 1
	return c*(math.Pow(t, 5)+1) + b
}

func inOutQuint(t, b, c, d float64) float64 {
	t = t / d * 2
	if t < 1 {
		return c/2*math.Pow(t, 5) + b
	}
	t -= 2
	return c/2*(math.Pow(t, 5)+2) + b
}

func inSine(t, b, c, d float64) float64 {
	return -c*math.Cos(t/d*(math.Pi/2)) + c + b
}

func outSine(t, b, c, d float64) float64 {
	return c*math.Sin(t/d*(math.Pi/2)) + b
}

func inOutSine(t, b, c, d float64) float64 {
	return -c/2*(math.Cos(math.Pi*t/d)-1) + b
}

func inExpo(t, b, c, d float64) float64 {
	if t == 0 {
		return b
	}
	if t == d {
		return b + c
	}
	return c*math.Pow(2, 10*(t/d-1)) + b
}

func outExpo(t, b, c, d float64) float64 {
	if t == d {
		return b + c
	}
	return c*(-math.Pow(2, -10*t/d)+1) + b
}

func inOutExpo(t, b, c, d float64) float64 {
	if t == 0 {
		return b
	}
	if t == d {
		return b + c
	}
	t = t / d * 2
	if t < 1 {
		return c/2*math.Pow(2, 10*(t-1)) + b
	}
	t--
	return c/2*(-math.Pow(2, -10*t)+2) + b
}

func inCirc(t, b, c, d float64) float64 {
	t /= d
	return -c*(math.Sqrt(1-t*t)-1) + b
}

func outCirc(t, b, c, d float64) float64 {
	t = t/d - 1
	return c*math.Sqrt(1-t*t) + b
}

func inOutCirc(t, b, c, d float64) float64 {
	t = t / d * 2
	if t < 1 {
		return -c/2*(math.Sqrt(1-t*t)-1) + b
	}
	t -= 2
	return c/2*(math.Sqrt(1-t*t)+1) + b
}

func outBounce(t, b, c, d float64) float64 {
	t /= d
	switch {
	case t < 1/2.75:
		return c*(7.5625*t*t) + b
	case t < 2/2.75:
		t -= 1.5 / 2.75
		return c*(7.5625*t*t+0.75) + b
	case t < 2.5/2.75:
		t -= 2.25 / 2.75
		return c*(7.5625*t*t+0.9375) + b
	default:
		t -= 2.625 / 2.75
		return c*(7.5625*t*t+0.984375) + b
	}
}

func inBounce(t, b, c, d float64) float64 {
	return c - outBounce(d-t, 0, c, d) + b
}

func inOutBounce(t, b, c, d float64) float64 {
	if t < d/2 {
		return inBounce(t*2, 0, c, d)*0.5 + b
	}
	return outBounce(t*2-d, 0, c, d)*0.5 + c*0.5 + b
}

// outIn composes two halves: out for the first half, in for the second.
func outIn(out, in Func) Func {
	return func(t, b, c, d float64) float64 {
		if t < d/2 {
			return out(t*2, b, c/2, d)
		}
		return in(t*2-d, b+c/2, c/2, d)
	}
}
