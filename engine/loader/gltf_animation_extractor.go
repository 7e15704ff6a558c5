package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor converts glTF animations into clips whose channels address nodes by name.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//   - nodeNames: the resolved name of every document node, indexed like doc.Nodes
	//
	// Returns:
	//   - *animation.Clip: the extracted clip
	//   - error: error if an accessor cannot be read
	ExtractAnimation(animIndex int, nodeNames []string) (*animation.Clip, error)

	// ExtractAllAnimations extracts every animation in document order.
	ExtractAllAnimations(nodeNames []string) ([]*animation.Clip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, nodeNames []string) (*animation.Clip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]

	// translation/rotation/scale of one node are merged into a single channel
	channels := make(map[int]*animation.Channel)
	var duration float32

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			continue
		}
		nodeIndex := *ch.Target.Node
		if nodeIndex < 0 || nodeIndex >= len(nodeNames) {
			return nil, fmt.Errorf("animation %q channel %d: node %d out of range", anim.Name, i, nodeIndex)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", anim.Name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathRotation, gltfAnimPathScale:
		default:
			// morph target weights are not animated
			continue
		}

		times, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", anim.Name, i, err)
		}
		if len(times) > 0 {
			duration = max(duration, times[len(times)-1])
		}

		out, ok := channels[nodeIndex]
		if !ok {
			out = &animation.Channel{Target: nodeNames[nodeIndex]}
			channels[nodeIndex] = out
		}

		mode := animation.InterpolationLinear
		if sampler.Interpolation == gltfAnimInterpolationStep {
			mode = animation.InterpolationStep
		}
		// cubic spline outputs are (in-tangent, value, out-tangent) triples; only the values are kept
		stride, offset := 1, 0
		if sampler.Interpolation == gltfAnimInterpolationCubicSpline {
			stride, offset = 3, 1
		}

		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			values, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", anim.Name, i, ch.Target.Path, err)
			}
			keys := make([]animation.VectorKeyframe, min(len(times), len(values)/stride))
			for j := range keys {
				keys[j] = animation.VectorKeyframe{Time: times[j], Value: mgl32.Vec3(values[j*stride+offset])}
			}
			if ch.Target.Path == gltfAnimPathTranslation {
				out.TranslationKeys, out.TranslationInterpolation = keys, mode
			} else {
				out.ScaleKeys, out.ScaleInterpolation = keys, mode
			}

		case gltfAnimPathRotation:
			values, err := e.parser.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", anim.Name, i, err)
			}
			keys := make([]animation.QuaternionKeyframe, min(len(times), len(values)/stride))
			for j := range keys {
				keys[j] = animation.QuaternionKeyframe{Time: times[j], Value: gltfQuat(values[j*stride+offset])}
			}
			out.RotationKeys, out.RotationInterpolation = keys, mode
		}
	}

	// deterministic channel order
	indices := make([]int, 0, len(channels))
	for idx := range channels {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	clip := &animation.Clip{
		Name:     anim.Name,
		Duration: duration,
		Channels: make([]animation.Channel, 0, len(indices)),
	}
	for _, idx := range indices {
		clip.Channels = append(clip.Channels, *channels[idx])
	}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation_%d", animIndex)
	}
	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations(nodeNames []string) ([]*animation.Clip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	clips := make([]*animation.Clip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i, nodeNames)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips[i] = clip
	}
	return clips, nil
}

// gltfQuat converts a glTF (x, y, z, w) quaternion.
func gltfQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
