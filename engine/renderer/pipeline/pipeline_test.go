package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("points_alpha", "// wgsl")
	if p.PipelineKey() != "points_alpha" || p.Source() != "// wgsl" {
		t.Fatalf("identity\nhave %q %q", p.PipelineKey(), p.Source())
	}
	if p.VertexEntryPoint() != "vs_main" || p.FragmentEntryPoint() != "fs_main" {
		t.Fatalf("entry points\nhave %q %q\nwant vs_main fs_main", p.VertexEntryPoint(), p.FragmentEntryPoint())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() || p.BlendEnabled() || p.BlendState() != nil {
		t.Fatal("defaults: want depth test and write on, blending off")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Fatalf("Topology\nhave %v\nwant triangle list", p.Topology())
	}
	p.Release()
	if p.RenderPipeline() != nil || p.BindGroupLayout() != nil {
		t.Fatal("Release on an unregistered pipeline left objects")
	}
}

func TestBlendModes(t *testing.T) {
	additive := NewPipeline("points_additive", "", WithBlendMode(particles.BlendAdditive), WithDepthWriteEnabled(false))
	bs := additive.BlendState()
	if bs == nil {
		t.Fatal("BlendState: additive pipeline has no blend state")
	}
	if bs.Color.DstFactor != wgpu.BlendFactorOne {
		t.Fatalf("additive DstFactor\nhave %v\nwant %v", bs.Color.DstFactor, wgpu.BlendFactorOne)
	}
	if additive.DepthWriteEnabled() {
		t.Fatal("additive pipeline writes depth")
	}

	alpha := BlendStateFor(particles.BlendAlpha)
	if alpha.Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Fatalf("alpha DstFactor\nhave %v\nwant %v", alpha.Color.DstFactor, wgpu.BlendFactorOneMinusSrcAlpha)
	}
}
