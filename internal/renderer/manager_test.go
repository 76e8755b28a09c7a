package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zurie/internal/gpu"
	"zurie/internal/gpu/gputest"
	"zurie/internal/texture"
)

func newTestManager(t *testing.T, w, h uint32, opts ...Option) (*RenderPassManager, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice()
	m, err := New(dev, gpu.TextureFormatBGRA8Unorm, w, h, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if m.textures != nil {
			m.Release()
		}
	})
	return m, dev
}

func assertTextureSizes(t *testing.T, m *RenderPassManager, w, h uint32) {
	t.Helper()
	gotW, gotH := m.Size()
	assert.Equal(t, w, gotW)
	assert.Equal(t, h, gotH)
	for _, ts := range m.Stats().Textures {
		assert.Equal(t, w, ts.Width, ts.Name)
		assert.Equal(t, h, ts.Height, ts.Name)
	}
}

func TestNewRegistersTextures(t *testing.T) {
	m, _ := newTestManager(t, 800, 600)

	stats := m.Stats()
	require.Len(t, stats.Textures, 2)
	assert.Equal(t, TextureStats{Name: RaymarchingTexture, Kind: texture.Standard, Width: 800, Height: 600}, stats.Textures[0])
	assert.Equal(t, TextureStats{Name: SceneTexture, Kind: texture.SceneTexture, Width: 800, Height: 600}, stats.Textures[1])
	assert.Equal(t, DefaultObjectCapacity, stats.ObjectCapacity)
	assert.Equal(t, DefaultRenderOptions(), *m.Options())
}

func TestNewClampsZeroSize(t *testing.T) {
	m, _ := newTestManager(t, 0, 0)
	assertTextureSizes(t, m, 1, 1)
}

func TestNewFailureReleasesEverything(t *testing.T) {
	methods := []string{
		"CreateSampler", "CreateTexture", "CreateBufferInit", "CreateRenderPipeline",
		"CreateBuffer", "CreateComputePipeline",
	}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			dev := gputest.NewDevice()
			dev.Fail[method] = errors.New("device lost")
			m, err := New(dev, gpu.TextureFormatBGRA8Unorm, 800, 600)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Zero(t, dev.LiveTotal())
		})
	}
}

func TestRenderSequencesComputeBeforeBlit(t *testing.T) {
	m, _ := newTestManager(t, 800, 600, WithClearColor([4]float64{0.1, 0.2, 0.3, 1}))
	enc := gputest.NewEncoder()
	surface := gputest.NewView("surface")

	require.NoError(t, m.Render(enc, surface))
	require.Len(t, enc.Passes, 2)

	compute, blit := enc.Passes[0], enc.Passes[1]
	assert.Equal(t, gputest.ComputePassKind, compute.Kind)
	assert.Equal(t, [][3]uint32{{50, 38, 1}}, compute.Dispatches)

	assert.Equal(t, gputest.RenderPassKind, blit.Kind)
	assert.Same(t, surface, blit.Target)
	require.NotNil(t, blit.Clear)
	assert.Equal(t, gpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, *blit.Clear)
	assert.Equal(t, []gputest.Draw{{VertexCount: 6, InstanceCount: 1}}, blit.Draws)

	shown, _ := m.Textures().Get(RaymarchingTexture)
	assert.Same(t, shown.SampledBindGroup(), blit.BindGroups[0])
	assert.Same(t, m.quad.vertexBuffer, blit.VertexBuffers[0])

	pipeline := blit.RenderPipeline.(*gputest.RenderPipeline)
	assert.Equal(t, gpu.TextureFormatBGRA8Unorm, pipeline.Desc.TargetFormat)
	assert.Same(t, m.Textures().SampledLayout(), pipeline.Desc.BindGroupLayouts[0])
}

func TestRenderShowsSelectedTexture(t *testing.T) {
	m, _ := newTestManager(t, 64, 64)
	m.Options().Show = SceneTexture
	enc := gputest.NewEncoder()

	require.NoError(t, m.Render(enc, gputest.NewView("surface")))
	require.Len(t, enc.Passes, 2)
	scene, _ := m.Textures().Get(SceneTexture)
	assert.Same(t, scene.SampledBindGroup(), enc.Passes[1].BindGroups[0])
}

func TestResizeIgnoresDegenerateAndRepeatedSizes(t *testing.T) {
	m, dev := newTestManager(t, 800, 600)
	created := dev.Created("texture")

	for _, s := range [][2]uint32{{0, 600}, {800, 0}, {0, 0}, {800, 600}} {
		require.NoError(t, m.Resize(s[0], s[1]))
		assertTextureSizes(t, m, 800, 600)
	}
	assert.Equal(t, created, dev.Created("texture"))

	require.NoError(t, m.Resize(1024, 768))
	require.NoError(t, m.Resize(1024, 768))
	assert.Equal(t, created+2, dev.Created("texture"))
	assert.Equal(t, 2, dev.Live("texture"))
}

func TestResizeKeepsPipelines(t *testing.T) {
	m, dev := newTestManager(t, 800, 600)
	require.NoError(t, m.Resize(1920, 1080))
	assert.Equal(t, 1, dev.Created("compute_pipeline"))
	assert.Equal(t, 1, dev.Created("render_pipeline"))
}

func TestResizeFailureKeepsSize(t *testing.T) {
	m, dev := newTestManager(t, 800, 600)
	dev.Fail["CreateTexture"] = errors.New("out of memory")
	require.Error(t, m.Resize(1024, 768))
	assertTextureSizes(t, m, 800, 600)
}

func TestRenderCapacityOverflow(t *testing.T) {
	m, _ := newTestManager(t, 64, 64, WithObjectCapacity(2))
	m.SetObjects(make([]Object, 3))

	enc := gputest.NewEncoder()
	err := m.Render(enc, gputest.NewView("surface"))
	assert.ErrorIs(t, err, ErrObjectCapacity)
	assert.Empty(t, enc.Passes)
}

func TestSetObjectsCopies(t *testing.T) {
	m, _ := newTestManager(t, 64, 64)
	objects := []Object{{Radius: 1}}
	m.SetObjects(objects)
	objects[0].Radius = 5
	assert.Equal(t, float32(1), m.Objects()[0].Radius)
	assert.Equal(t, 1, m.Stats().Objects)
}

func TestResizeRenderShowScenario(t *testing.T) {
	m, _ := newTestManager(t, 800, 600)
	surface := gputest.NewView("surface")
	assertTextureSizes(t, m, 800, 600)

	require.NoError(t, m.Resize(0, 600))
	assertTextureSizes(t, m, 800, 600)

	require.NoError(t, m.Resize(1024, 768))
	assertTextureSizes(t, m, 1024, 768)

	enc := gputest.NewEncoder()
	require.NoError(t, m.Render(enc, surface))
	assert.Equal(t, [][3]uint32{{64, 48, 1}}, enc.Passes[0].Dispatches)
	assert.Equal(t, 1, enc.Count(gputest.RenderPassKind))

	m.Options().Show = "DoesNotExist"
	enc = gputest.NewEncoder()
	require.NoError(t, m.Render(enc, surface))
	assert.Equal(t, 1, enc.Count(gputest.ComputePassKind))
	assert.Zero(t, enc.Count(gputest.RenderPassKind))

	m.Options().Show = RaymarchingTexture
	enc = gputest.NewEncoder()
	require.NoError(t, m.Render(enc, surface))
	assert.Equal(t, 1, enc.Count(gputest.RenderPassKind))

	stats := m.Stats()
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Equal(t, uint64(2), stats.BlitsPerformed)
	assert.Equal(t, uint64(1), stats.BlitsSkipped)
}

func TestReleaseFreesEverything(t *testing.T) {
	dev := gputest.NewDevice()
	m, err := New(dev, gpu.TextureFormatBGRA8Unorm, 320, 240)
	require.NoError(t, err)
	require.NoError(t, m.Resize(640, 480))
	require.NoError(t, m.Render(gputest.NewEncoder(), gputest.NewView("surface")))

	m.Release()
	assert.Zero(t, dev.LiveTotal())
}
