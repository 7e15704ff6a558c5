package animation

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func walkClip() *Clip {
	return &Clip{
		Name:     "Walk Cycle",
		Duration: 2,
		Channels: []Channel{{
			Target: "hips",
			TranslationKeys: []VectorKeyframe{
				{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
				{Time: 1, Value: mgl32.Vec3{2, 0, 0}},
				{Time: 2, Value: mgl32.Vec3{2, 4, 0}},
			},
			RotationKeys: []QuaternionKeyframe{
				{Time: 0, Value: mgl32.QuatIdent()},
				{Time: 2, Value: mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 1, 0})},
			},
			ScaleKeys: []VectorKeyframe{
				{Time: 0, Value: mgl32.Vec3{1, 1, 1}},
				{Time: 1, Value: mgl32.Vec3{3, 3, 3}},
			},
			ScaleInterpolation: InterpolationStep,
		}},
	}
}

func rig() (node.Node, node.Node) {
	root := node.New(node.WithName("armature"))
	hips := node.New(node.WithName("hips"))
	_ = root.AddChild(hips)
	return root, hips
}

func TestDriverSamples(t *testing.T) {
	root, hips := rig()
	d := NewDriver()
	if err := d.Bind(root, []*Clip{walkClip()}, "Walk Cycle"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !d.Playing() {
		t.Fatal("Bind: expected playback to start")
	}

	d.Update(0.5)
	if have, want := hips.Position(), (mgl32.Vec3{1, 0, 0}); !have.ApproxEqual(want) {
		t.Fatalf("Position at 0.5\nhave %v\nwant %v", have, want)
	}
	if have, want := hips.Scale(), (mgl32.Vec3{1, 1, 1}); have != want {
		t.Fatalf("step Scale at 0.5\nhave %v\nwant %v", have, want)
	}

	d.Update(1)
	if have, want := hips.Position(), (mgl32.Vec3{2, 2, 0}); !have.ApproxEqual(want) {
		t.Fatalf("Position at 1.5\nhave %v\nwant %v", have, want)
	}
	if have, want := hips.Scale(), (mgl32.Vec3{3, 3, 3}); have != want {
		t.Fatalf("step Scale at 1.5\nhave %v\nwant %v", have, want)
	}
	wantRot := mgl32.QuatRotate(math32.Pi*3/8, mgl32.Vec3{0, 1, 0})
	if have := hips.Rotation(); !have.ApproxEqualThreshold(wantRot, 1e-4) {
		t.Fatalf("Rotation at 1.5\nhave %v\nwant %v", have, wantRot)
	}
}

func TestDriverLoops(t *testing.T) {
	root, _ := rig()
	d := NewDriver()
	_ = d.Bind(root, []*Clip{walkClip()}, "Walk Cycle")
	d.Update(2.5)
	if have := d.Time(); math32.Abs(have-0.5) > 1e-5 {
		t.Fatalf("Time after 2.5s of a 2s loop\nhave %v\nwant 0.5", have)
	}

	once := NewDriver(WithLoop(false))
	_ = once.Bind(root, []*Clip{walkClip()}, "Walk Cycle")
	once.Update(5)
	if once.Time() != 2 || once.Playing() {
		t.Fatalf("non-looping driver\nhave time %v playing %v\nwant time 2 playing false", once.Time(), once.Playing())
	}
}

func TestDriverPause(t *testing.T) {
	root, _ := rig()
	d := NewDriver(WithSpeed(2))
	_ = d.Bind(root, []*Clip{walkClip()}, "Walk Cycle")
	d.Update(0.25)
	d.Pause()
	d.Update(0.25)
	if have := d.Time(); math32.Abs(have-0.5) > 1e-5 {
		t.Fatalf("Time after pause\nhave %v\nwant 0.5", have)
	}
	d.Play()
	d.Update(0.25)
	if have := d.Time(); math32.Abs(have-1) > 1e-5 {
		t.Fatalf("Time after resume\nhave %v\nwant 1", have)
	}
}

func TestDriverMissingClip(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	root, hips := rig()
	d := NewDriver(WithLogger(logger))

	err := d.Bind(root, []*Clip{walkClip()}, "Run")
	if !errors.Is(err, ErrClipNotFound) {
		t.Fatalf("Bind(Run)\nhave %v\nwant %v", err, ErrClipNotFound)
	}
	if !d.Idle() || d.Playing() || d.Clip() != nil {
		t.Fatal("Bind(Run): expected an idle driver")
	}

	d.Play()
	for range 10 {
		d.Update(0.1)
	}
	if d.Playing() || d.Time() != 0 {
		t.Fatalf("idle driver advanced\nhave playing %v time %v", d.Playing(), d.Time())
	}
	if hips.Position() != (mgl32.Vec3{}) {
		t.Fatalf("idle driver wrote a transform: %v", hips.Position())
	}

	// a later Bind stays idle and does not warn again
	if err := d.Bind(root, []*Clip{walkClip()}, "Walk Cycle"); !errors.Is(err, ErrClipNotFound) {
		t.Fatalf("Bind after idle\nhave %v\nwant %v", err, ErrClipNotFound)
	}
	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Fatalf("warnings logged\nhave %d\nwant 1", n)
	}
}

func TestSpinTrack(t *testing.T) {
	n := node.New()
	spin := NewSpin(n, mgl32.Vec3{0, 2, 0}, 0.6)
	for range 100 {
		spin.Update(0.016)
	}
	want := common.WrapAngle(100 * 0.016 * 0.6)
	if have := spin.Angle(); math32.Abs(have-want) > 1e-4 {
		t.Fatalf("Angle\nhave %v\nwant %v", have, want)
	}
	wantRot := mgl32.QuatRotate(100*0.016*0.6, mgl32.Vec3{0, 1, 0})
	if have := n.Rotation(); !have.ApproxEqualThreshold(wantRot, 1e-4) {
		t.Fatalf("Rotation\nhave %v\nwant %v", have, wantRot)
	}
}

func TestOrbitTrack(t *testing.T) {
	n := node.New(node.WithPosition(7, 1, 0))
	orbit := NewOrbit(n, 7, math32.Pi/2, 0)
	if have := n.Position(); !have.ApproxEqual(mgl32.Vec3{7, 1, 0}) {
		t.Fatalf("initial Position\nhave %v\nwant [7 1 0]", have)
	}
	orbit.Update(1)
	if have := n.Position(); have.Sub(mgl32.Vec3{0, 1, 7}).Len() > 1e-4 {
		t.Fatalf("Position after a quarter turn\nhave %v\nwant [0 1 7]", have)
	}
}

func TestMixerOrder(t *testing.T) {
	root, hips := rig()
	m := NewMixer()
	d := NewDriver()
	_ = d.Bind(root, []*Clip{walkClip()}, "Walk Cycle")
	m.AddDriver(d)
	// the track runs after the driver, so it offsets the sampled pose
	m.AddTrack(NewSpin(hips, mgl32.Vec3{1, 0, 0}, math32.Pi))
	m.AddTrack(nil)

	if len(m.Drivers()) != 1 || len(m.Tracks()) != 1 {
		t.Fatalf("Mixer contents\nhave %d drivers %d tracks\nwant 1 and 1", len(m.Drivers()), len(m.Tracks()))
	}

	m.Update(1)
	sampled := mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 1, 0})
	want := sampled.Mul(mgl32.QuatRotate(math32.Pi, mgl32.Vec3{1, 0, 0}))
	if have := hips.Rotation(); !have.ApproxEqualThreshold(want, 1e-4) {
		t.Fatalf("Rotation after mixer update\nhave %v\nwant %v", have, want)
	}
}
