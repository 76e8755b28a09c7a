package texture

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zurie/internal/gpu"
	"zurie/internal/gpu/gputest"
)

func newManager(t *testing.T, w, h uint32) (*Manager, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice()
	m, err := NewManager(dev, w, h)
	require.NoError(t, err)
	return m, dev
}

func TestBackingSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         uint32
		scale        float32
		wantW, wantH uint32
	}{
		{"unit scale", 800, 600, 1.0, 800, 600},
		{"half scale", 800, 600, 0.5, 400, 300},
		{"rounds to nearest", 801, 601, 0.5, 401, 301},
		{"double scale", 1024, 768, 2.0, 2048, 1536},
		{"tiny scale clamps to one", 10, 10, 0.01, 1, 1},
		{"zero dims clamp to one", 0, 0, 1.0, 1, 1},
		{"zero scale clamps to one", 640, 480, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := BackingSize(tt.w, tt.h, tt.scale)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestKindFormats(t *testing.T) {
	assert.Equal(t, gpu.TextureFormatRGBA16Float, Standard.Format())
	assert.Equal(t, gpu.TextureFormatRGBA32Float, SceneTexture.Format())
	assert.NotZero(t, SceneTexture.usage()&gpu.TextureUsageRenderAttachment)
	assert.Zero(t, Standard.usage()&gpu.TextureUsageRenderAttachment)
	for _, k := range kinds {
		assert.NotZero(t, k.usage()&gpu.TextureUsageStorageBinding, k.String())
		assert.NotZero(t, k.usage()&gpu.TextureUsageTextureBinding, k.String())
	}
}

func TestCreateAndLookup(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	defer m.Release()

	h, err := m.Create("Raymarching", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	half, err := m.Create("Half", 800, 600, SceneTexture, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, h, half)

	got, ok := m.Lookup("Raymarching")
	require.True(t, ok)
	assert.Equal(t, h, got)

	tex, ok := m.Get("Half")
	require.True(t, ok)
	w, hh := tex.Size()
	assert.Equal(t, uint32(400), w)
	assert.Equal(t, uint32(300), hh)
	assert.Equal(t, SceneTexture, tex.Kind())
	assert.Equal(t, float32(0.5), tex.Scale())
	assert.NotNil(t, tex.ComputeBindGroup())
	assert.NotNil(t, tex.SampledBindGroup())
	assert.NotNil(t, tex.View())

	_, ok = m.Get("Missing")
	assert.False(t, ok)
	_, ok = m.Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Half", "Raymarching"}, m.Names())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, dev.Live("texture"))
	assert.Equal(t, 4, dev.Live("bind_group"))
}

func TestCreateDuplicateFails(t *testing.T) {
	m, dev := newManager(t, 320, 240)
	defer m.Release()

	_, err := m.Create("Raymarching", 320, 240, Standard, 1.0)
	require.NoError(t, err)
	_, err = m.Create("Raymarching", 320, 240, SceneTexture, 1.0)
	assert.ErrorIs(t, err, ErrDuplicateTexture)
	assert.Equal(t, 1, dev.Created("texture"))
	assert.Equal(t, 1, m.Len())
}

func TestCreateRejectsInvalidScale(t *testing.T) {
	m, dev := newManager(t, 320, 240)
	defer m.Release()

	for _, scale := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(1))} {
		_, err := m.Create("Bad", 320, 240, Standard, scale)
		assert.ErrorIs(t, err, ErrInvalidScale, "scale %v", scale)
	}
	assert.Zero(t, dev.Created("texture"))
	assert.Zero(t, m.Len())
}

func TestCreateAtNewSizeResizesExistingTextures(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	defer m.Release()

	_, err := m.Create("A", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	_, err = m.Create("B", 1024, 768, SceneTexture, 0.5)
	require.NoError(t, err)

	w, h := m.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
	a, _ := m.Get("A")
	aw, ah := a.Size()
	assert.Equal(t, uint32(1024), aw)
	assert.Equal(t, uint32(768), ah)
	assert.Equal(t, 2, dev.Live("texture"))
	assert.Equal(t, 1, m.Recreations())

	changed, err := m.Resize(1920, 1080)
	require.NoError(t, err)
	assert.True(t, changed)
	for _, name := range m.Names() {
		tex, _ := m.Get(name)
		wantW, wantH := BackingSize(1920, 1080, tex.Scale())
		tw, th := tex.Size()
		assert.Equal(t, wantW, tw, name)
		assert.Equal(t, wantH, th, name)
	}
	assert.Equal(t, 3, m.Recreations())
}

func TestCreateWithZeroSizeUsesManagerSize(t *testing.T) {
	m, _ := newManager(t, 640, 480)
	defer m.Release()

	_, err := m.Create("A", 0, 0, Standard, 1.0)
	require.NoError(t, err)
	a, _ := m.Get("A")
	w, h := a.Size()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
	assert.Zero(t, m.Recreations())
}

func TestBindGroupsUseSharedLayouts(t *testing.T) {
	m, _ := newManager(t, 64, 64)
	defer m.Release()

	_, err := m.Create("A", 64, 64, Standard, 1.0)
	require.NoError(t, err)
	_, err = m.Create("B", 64, 64, Standard, 0.25)
	require.NoError(t, err)
	_, err = m.Create("C", 64, 64, SceneTexture, 1.0)
	require.NoError(t, err)

	for _, name := range m.Names() {
		tex, _ := m.Get(name)
		compute := tex.ComputeBindGroup().(*gputest.BindGroup)
		sampled := tex.SampledBindGroup().(*gputest.BindGroup)
		assert.Same(t, m.ComputeLayout(tex.Kind()), compute.Desc.Layout, name)
		assert.Same(t, m.SampledLayout(), sampled.Desc.Layout, name)
		assert.Same(t, tex.View(), compute.Desc.Entries[0].TextureView, name)
		assert.Same(t, tex.View(), sampled.Desc.Entries[0].TextureView, name)
	}
	assert.NotSame(t, m.ComputeLayout(Standard), m.ComputeLayout(SceneTexture))
}

func TestResizeAppliesScaleToEveryTexture(t *testing.T) {
	m, _ := newManager(t, 800, 600)
	defer m.Release()

	_, err := m.Create("Full", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	_, err = m.Create("Half", 800, 600, SceneTexture, 0.5)
	require.NoError(t, err)

	sizes := [][2]uint32{{1024, 768}, {1, 1}, {1920, 1080}, {333, 777}}
	for _, s := range sizes {
		changed, err := m.Resize(s[0], s[1])
		require.NoError(t, err)
		assert.True(t, changed)

		gotW, gotH := m.Size()
		assert.Equal(t, s[0], gotW)
		assert.Equal(t, s[1], gotH)
		for _, name := range m.Names() {
			tex, _ := m.Get(name)
			wantW, wantH := BackingSize(s[0], s[1], tex.Scale())
			w, h := tex.Size()
			assert.Equal(t, wantW, w, name)
			assert.Equal(t, wantH, h, name)
		}
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	defer m.Release()
	_, err := m.Create("Raymarching", 800, 600, Standard, 1.0)
	require.NoError(t, err)

	changed, err := m.Resize(1024, 768)
	require.NoError(t, err)
	assert.True(t, changed)
	created := dev.Created("texture")

	changed, err = m.Resize(1024, 768)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, created, dev.Created("texture"))
	assert.Equal(t, 1, m.Recreations())
}

func TestResizeIgnoresZeroDimensions(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	defer m.Release()
	_, err := m.Create("Raymarching", 800, 600, Standard, 1.0)
	require.NoError(t, err)

	for _, s := range [][2]uint32{{0, 600}, {800, 0}, {0, 0}} {
		changed, err := m.Resize(s[0], s[1])
		require.NoError(t, err)
		assert.False(t, changed)
	}
	w, h := m.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	assert.Equal(t, 1, dev.Created("texture"))
}

func TestResizeReleasesPreviousResources(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	_, err := m.Create("Raymarching", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	tex, _ := m.Get("Raymarching")
	oldImage := dev.Textures[0]

	_, err = m.Resize(640, 480)
	require.NoError(t, err)

	assert.True(t, oldImage.Released)
	assert.Equal(t, 1, dev.Live("texture"))
	assert.Equal(t, 2, dev.Live("bind_group"))

	// The pointer handed out before the resize follows the new image.
	w, h := tex.Size()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)

	m.Release()
	assert.Zero(t, dev.LiveTotal())
}

func TestResizeFailureKeepsPreviousState(t *testing.T) {
	m, dev := newManager(t, 800, 600)
	defer m.Release()
	_, err := m.Create("A", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	_, err = m.Create("B", 800, 600, Standard, 1.0)
	require.NoError(t, err)
	live := dev.LiveTotal()

	boom := errors.New("out of memory")
	dev.Fail["CreateTexture"] = boom
	changed, err := m.Resize(1024, 768)
	assert.ErrorIs(t, err, boom)
	assert.False(t, changed)
	assert.Equal(t, live, dev.LiveTotal())

	w, h := m.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	for _, name := range m.Names() {
		tex, _ := m.Get(name)
		tw, th := tex.Size()
		assert.Equal(t, uint32(800), tw)
		assert.Equal(t, uint32(600), th)
	}
}

func TestTextureByHandle(t *testing.T) {
	m, _ := newManager(t, 16, 16)
	defer m.Release()
	h, err := m.Create("Raymarching", 16, 16, Standard, 1.0)
	require.NoError(t, err)

	tex, err := m.Texture(h)
	require.NoError(t, err)
	assert.Equal(t, "Raymarching", tex.Name())

	_, err = m.Texture(Handle(7))
	assert.ErrorIs(t, err, ErrUnknownHandle)
	_, err = m.Texture(Handle(-1))
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestNewManagerFailureReleasesPartialState(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Fail["CreateBindGroupLayout"] = errors.New("device lost")
	_, err := NewManager(dev, 800, 600)
	require.Error(t, err)
	assert.Zero(t, dev.LiveTotal())
}
