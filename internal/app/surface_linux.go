//go:build linux && !wayland

package app

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"zurie/internal/logging"
)

func instanceDescriptor() *wgpu.InstanceDescriptor {
	return &wgpu.InstanceDescriptor{Backends: wgpu.InstanceBackend_Vulkan}
}

// CreateSurface creates a WebGPU surface from a GLFW window on X11
func CreateSurface(instance *wgpu.Instance, window *glfw.Window) *wgpu.Surface {
	display := glfw.GetX11Display()
	if display == nil {
		logging.Logger().Error("GetX11Display returned nil")
		return nil
	}

	return instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label: "MainSurface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(window.GetX11Window()),
		},
	})
}
