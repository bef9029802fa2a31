package animator

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Path is the joint property a channel drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// String returns a human-readable name for the path.
func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Interpolation selects how a channel blends between two keyframes.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Channel animates one property of one joint.
type Channel struct {
	// Joint is the skeleton joint index the channel drives.
	Joint int
	// Path is the driven property.
	Path Path
	// Interpolation is the blend between keyframes.
	Interpolation Interpolation
	// Times are the keyframe times in seconds, ascending.
	Times []float32
	// Values hold one entry per key, or an in-tangent, value, out-tangent triple per key for
	// cubic splines. Translation and scale use xyz. Rotation is a quaternion in xyzw order.
	Values []mgl32.Vec4
}

// Clip is a named set of channels played together.
type Clip struct {
	Name     string
	Duration float32
	Channels []Channel
}

// keys returns how many keyframes have both a time and a value.
func (c *Channel) keys() int {
	stride := 1
	if c.Interpolation == InterpolationCubicSpline {
		stride = 3
	}
	return min(len(c.Times), len(c.Values)/stride)
}

func (c *Channel) value(k int) mgl32.Vec4 {
	if c.Interpolation == InterpolationCubicSpline {
		return c.Values[3*k+1]
	}
	return c.Values[k]
}

// Sample evaluates the channel at time t. Times before the first key or after the last one
// clamp to that key. A channel without keys samples as zero.
//
// Parameters:
//   - t: the time in seconds
//
// Returns:
//   - mgl32.Vec4: the sampled value, a normalized quaternion for rotation channels
func (c *Channel) Sample(t float32) mgl32.Vec4 {
	n := c.keys()
	switch {
	case n == 0:
		return mgl32.Vec4{}
	case n == 1 || t <= c.Times[0]:
		return c.value(0)
	case t >= c.Times[n-1]:
		return c.value(n - 1)
	}

	// Times[k] <= t < Times[k+1]
	k := sort.Search(n, func(i int) bool { return c.Times[i] > t }) - 1
	t0, t1 := c.Times[k], c.Times[k+1]
	td := t1 - t0
	if td <= 0 {
		return c.value(k + 1)
	}
	u := (t - t0) / td

	switch c.Interpolation {
	case InterpolationStep:
		return c.value(k)
	case InterpolationCubicSpline:
		u2 := u * u
		u3 := u2 * u
		p0 := c.Values[3*k+1]
		m0 := c.Values[3*k+2].Mul(td)
		p1 := c.Values[3*(k+1)+1]
		m1 := c.Values[3*(k+1)].Mul(td)
		v := p0.Mul(2*u3 - 3*u2 + 1).
			Add(m0.Mul(u3 - 2*u2 + u)).
			Add(p1.Mul(-2*u3 + 3*u2)).
			Add(m1.Mul(u3 - u2))
		if c.Path == PathRotation {
			return quatToVec(vecToQuat(v).Normalize())
		}
		return v
	default:
		a, b := c.value(k), c.value(k+1)
		if c.Path == PathRotation {
			return quatToVec(mgl32.QuatSlerp(vecToQuat(a), vecToQuat(b), u))
		}
		return a.Add(b.Sub(a).Mul(u))
	}
}

func vecToQuat(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

func quatToVec(q mgl32.Quat) mgl32.Vec4 {
	return mgl32.Vec4{q.V[0], q.V[1], q.V[2], q.W}
}
