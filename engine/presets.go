package engine

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// spinPerFrame converts a per-frame angle at 60 Hz to radians per second.
const spinPerFrame = 60

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
)

// lightNode wraps a light payload in a KindLight node.
func lightNode(name string, l light.Light, options ...node.NodeBuilderOption) node.Node {
	return node.New(append([]node.NodeBuilderOption{
		node.WithName(name),
		node.WithKind(node.KindLight),
		node.WithPayload(l),
	}, options...)...)
}

// meshNode wraps a mesh payload in a KindMesh node.
func meshNode(m *scene.Mesh, options ...node.NodeBuilderOption) node.Node {
	return node.New(append([]node.NodeBuilderOption{
		node.WithName(m.Name()),
		node.WithKind(node.KindMesh),
		node.WithPayload(m),
	}, options...)...)
}

// PresetGlobe returns the textured, slowly spinning globe inside a field of grey particles.
//
// Parameters:
//   - assetsDir: directory holding earth-day.jpg and earth-night.webp
//
// Returns:
//   - Config: the globe configuration
func PresetGlobe(assetsDir string) Config {
	cfg := DefaultConfig()
	cfg.CameraDistance = 5
	cfg.Fov = 75
	cfg.MinDistance = 1.5
	cfg.MaxDistance = 10
	cfg.EnablePan = false
	cfg.DampingFactor = 0.05
	cfg.ParticleCount = 5000
	cfg.ParticleExtent = 10
	cfg.ParticleSize = 0.05
	cfg.RotationSpeed = 0.001 * spinPerFrame

	cfg.Compose = func(s Stage) error {
		globe := node.New(node.WithName("globe"))

		day := scene.NewMesh("globe-day", scene.SphereVertices(1, 32, 32), common.ColorFromHex(0xffffff))
		day.SetTexture(s.Texture(filepath.Join(assetsDir, "earth-day.jpg")))

		// night side sits just above the day surface with finer points
		night := scene.NewMesh("globe-night", scene.SphereVertices(1.01, 32, 32), common.ColorFromHex(0x222244))
		night.SetTexture(s.Texture(filepath.Join(assetsDir, "earth-night.webp")))
		night.SetPointSize(0.01)

		for _, n := range []node.Node{meshNode(day), meshNode(night)} {
			if err := globe.AddChild(n); err != nil {
				return err
			}
		}
		s.AddTrack(animation.NewSpin(globe, axisY, s.Config().RotationSpeed))

		return s.Add(
			globe,
			lightNode("ambient", light.NewLight(light.LightTypeAmbient,
				light.WithColor(common.ColorFromHex(0x333333)),
				light.WithIntensity(0.6),
			)),
			lightNode("sun", light.NewLight(light.LightTypeDirectional,
				light.WithDirection(-5, -3, -5),
			), node.WithPosition(5, 3, 5)),
		)
	}
	return cfg
}

// planet is one body of the solar system preset.
type planet struct {
	name    string
	radius  float32
	dist    float32
	texture string
}

var planets = []planet{
	{"mercury", 0.5, 3, "mercury.jpg"},
	{"venus", 0.8, 5, "venus1.jpg"},
	{"earth", 1, 7, "earth.jpg"},
	{"mars", 0.6, 9, "mars1.jpg"},
	{"jupiter", 1.5, 12, "jupiter1.jpg"},
	{"saturn", 1.2, 15, "saturn1.jpg"},
	{"uranus", 1, 18, "uranus1.jpg"},
	{"neptune", 1, 21, "neptune1.jpg"},
}

// PresetSolarSystem returns a textured sun orbited by the eight planets in a wide star field.
// Planet i orbits at 0.006*(i+1) rad/s and every planet spins at 0.6 rad/s.
//
// Parameters:
//   - assetsDir: directory holding sun1.jpg and the planet textures
//
// Returns:
//   - Config: the solar system configuration
func PresetSolarSystem(assetsDir string) Config {
	cfg := DefaultConfig()
	cfg.CameraDistance = 25
	cfg.MinDistance = 5
	cfg.MaxDistance = 50
	cfg.EnablePan = false
	cfg.ParticleCount = 10000
	cfg.ParticleExtent = 2000
	cfg.ParticleColor = common.ColorFromHex(0x888888)
	cfg.Far = 5000

	cfg.Compose = func(s Stage) error {
		sun := scene.NewMesh("sun", scene.SphereVertices(2, 32, 32), common.ColorFromHex(0xffcc33))
		sun.SetTexture(s.Texture(filepath.Join(assetsDir, "sun1.jpg")))
		nodes := []node.Node{meshNode(sun)}

		for i, p := range planets {
			m := scene.NewMesh(p.name, scene.SphereVertices(p.radius, 32, 32), common.ColorFromHex(0xffffff))
			m.SetTexture(s.Texture(filepath.Join(assetsDir, p.texture)))
			n := meshNode(m)
			s.AddTrack(animation.NewOrbit(n, p.dist, 0.006*float32(i+1), 0))
			s.AddTrack(animation.NewSpin(n, axisY, 0.01*spinPerFrame))
			nodes = append(nodes, n)
		}

		nodes = append(nodes,
			lightNode("ambient", light.NewLight(light.LightTypeAmbient,
				light.WithColor(common.ColorFromHex(0x404040)),
				light.WithIntensity(10),
			)),
			lightNode("sunlight", light.NewLight(light.LightTypePoint,
				light.WithColor(common.ColorFromHex(0xffffff)),
				light.WithIntensity(10),
				light.WithRange(100),
			)),
		)
		return s.Add(nodes...)
	}
	return cfg
}

// PresetModelViewer returns a green cube turning about X and Y with no controls or particles.
func PresetModelViewer() Config {
	cfg := DefaultConfig()
	cfg.CameraDistance = 5
	cfg.EnabledSubsystems = []Subsystem{SubsystemAnimation}

	cfg.Compose = func(s Stage) error {
		cube := meshNode(scene.NewMesh("cube", scene.BoxVertices(1, 8), common.ColorFromHex(0x00ff00)))
		s.AddTrack(animation.NewSpin(cube, axisX, 0.01*spinPerFrame))
		s.AddTrack(animation.NewSpin(cube, axisY, 0.01*spinPerFrame))
		return s.Add(cube)
	}
	return cfg
}

// PresetFireScene returns the walking skeleton in red fog under a cloud of additive embers.
//
// Parameters:
//   - assetsDir: directory holding red-fire.jpg and skeleton.glb
//
// Returns:
//   - Config: the fire scene configuration
func PresetFireScene(assetsDir string) Config {
	cfg := DefaultConfig()
	cfg.CameraDistance = 5
	cfg.CameraHeight = 2
	cfg.Fov = 50
	cfg.BackgroundTexture = filepath.Join(assetsDir, "red-fire.jpg")
	cfg.Fog = &scene.Fog{Color: common.ColorFromHex(0xff4500), Density: 0.1}

	cfg.ParticleCount = 10000
	cfg.ParticleExtent = 200
	cfg.ParticleHeight = &[2]float32{0, 10}
	cfg.ParticleColor = common.ColorFromHex(0xff0000)
	cfg.ParticleSize = 0.5
	cfg.ParticleOpacity = 0.8
	cfg.ParticleBlend = particles.BlendAdditive
	cfg.ParticleRotationSpeed = 0.05

	cfg.ModelPath = filepath.Join(assetsDir, "skeleton.glb")
	cfg.ClipName = "Walk Cycle"
	cfg.ModelPosition = [3]float32{0, -0.5, 0}
	cfg.RotationSpeed = 0

	cfg.Compose = func(s Stage) error {
		return s.Add(
			lightNode("ambient", light.NewLight(light.LightTypeAmbient, light.WithIntensity(0.4))),
			lightNode("fire-key", light.NewLight(light.LightTypePoint,
				light.WithColor(common.ColorFromHex(0xff8c00)),
				light.WithIntensity(2),
			), node.WithPosition(5, 5, 5)),
			lightNode("fire-fill", light.NewLight(light.LightTypePoint,
				light.WithColor(common.ColorFromHex(0xff4500)),
				light.WithIntensity(1.5),
			), node.WithPosition(-5, -5, -5)),
		)
	}
	return cfg
}

// Preset returns a preset configuration by name: globe, solar-system, model-viewer or fire.
func Preset(name, assetsDir string) (Config, error) {
	switch name {
	case "globe":
		return PresetGlobe(assetsDir), nil
	case "solar-system":
		return PresetSolarSystem(assetsDir), nil
	case "model-viewer":
		return PresetModelViewer(), nil
	case "fire":
		return PresetFireScene(assetsDir), nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
}
