package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Interpolation selects how values between two keyframes are produced.
type Interpolation int

const (
	// InterpolationLinear blends vectors linearly and quaternions spherically.
	InterpolationLinear Interpolation = iota
	// InterpolationStep holds the value of the left keyframe until the next one.
	InterpolationStep
)

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the orientation at this keyframe.
	Value mgl32.Quat
}

// Channel holds the keyframes that animate a single node, addressed by the node's name.
// Keys of each property are sorted by time. Empty key slices leave the property untouched.
type Channel struct {
	// Target is the name of the animated node.
	Target string

	// TranslationKeys are keyframes for the node position.
	TranslationKeys []VectorKeyframe
	// TranslationInterpolation selects how translation keys are blended.
	TranslationInterpolation Interpolation

	// RotationKeys are keyframes for the node orientation.
	RotationKeys []QuaternionKeyframe
	// RotationInterpolation selects how rotation keys are blended.
	RotationInterpolation Interpolation

	// ScaleKeys are keyframes for the node scale.
	ScaleKeys []VectorKeyframe
	// ScaleInterpolation selects how scale keys are blended.
	ScaleInterpolation Interpolation
}

// Clip represents a single named animation (walk, run, idle, ...).
type Clip struct {
	// Name is the clip identifier used for lookup.
	Name string

	// Duration is the total length of the clip in seconds, the largest keyframe timestamp.
	Duration float32

	// Channels contains one entry per animated node.
	Channels []Channel
}

// FindClip returns the clip whose name matches exactly, or nil.
//
// Parameters:
//   - clips: the candidate clips, nil entries are skipped
//   - name: the clip name
//
// Returns:
//   - *Clip: the matching clip or nil
func FindClip(clips []*Clip, name string) *Clip {
	for _, c := range clips {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// bracket finds the keyframe pair surrounding t using a binary search over n sorted timestamps.
// It returns the left index, the right index and the blend factor between them. Times outside the
// key range clamp to the first or last key.
func bracket(n int, time func(i int) float32, t float32) (int, int, float32) {
	if n == 1 || t <= time(0) {
		return 0, 0, 0
	}
	if t >= time(n-1) {
		return n - 1, n - 1, 0
	}
	// first key strictly after t
	right := sort.Search(n, func(i int) bool { return time(i) > t })
	left := right - 1
	span := time(right) - time(left)
	if span <= 0 {
		return left, left, 0
	}
	return left, right, (t - time(left)) / span
}

func sampleVector(keys []VectorKeyframe, mode Interpolation, t float32) (mgl32.Vec3, bool) {
	if len(keys) == 0 {
		return mgl32.Vec3{}, false
	}
	l, r, f := bracket(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if mode == InterpolationStep || l == r {
		return keys[l].Value, true
	}
	a, b := keys[l].Value, keys[r].Value
	return a.Add(b.Sub(a).Mul(f)), true
}

func sampleQuaternion(keys []QuaternionKeyframe, mode Interpolation, t float32) (mgl32.Quat, bool) {
	if len(keys) == 0 {
		return mgl32.QuatIdent(), false
	}
	l, r, f := bracket(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if mode == InterpolationStep || l == r {
		return keys[l].Value, true
	}
	a, b := keys[l].Value, keys[r].Value
	// take the short way round
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, f).Normalize(), true
}
