package webgpu

import (
	"strings"

	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// SurfaceStatus classifies a failure to acquire the next surface image.
type SurfaceStatus int

const (
	// SurfaceOther is any failure worth retrying next frame.
	SurfaceOther SurfaceStatus = iota
	// SurfaceOutdated means the surface no longer matches the window.
	SurfaceOutdated
	// SurfaceLost means the surface must be configured again.
	SurfaceLost
	// SurfaceOutOfMemory cannot be recovered from.
	SurfaceOutOfMemory
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceOutdated:
		return "outdated"
	case SurfaceLost:
		return "lost"
	case SurfaceOutOfMemory:
		return "out_of_memory"
	default:
		return "other"
	}
}

// NeedsReconfigure reports whether the swap chain must be recreated before
// the next frame.
func (s SurfaceStatus) NeedsReconfigure() bool {
	return s == SurfaceOutdated || s == SurfaceLost
}

// ClassifySurfaceError maps the error of SwapChain.GetCurrentTextureView
// to a status. The binding only reports the native status text, so the
// message is matched.
func ClassifySurfaceError(err error) SurfaceStatus {
	if err == nil {
		return SurfaceOther
	}
	msg := strings.ToLower(strings.ReplaceAll(err.Error(), "_", " "))
	switch {
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "outofmemory"):
		return SurfaceOutOfMemory
	case strings.Contains(msg, "outdated"):
		return SurfaceOutdated
	case strings.Contains(msg, "lost"):
		return SurfaceLost
	default:
		return SurfaceOther
	}
}

// PresentMode maps the vsync setting onto a present mode.
func PresentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentMode_Fifo
	}
	return wgpu.PresentMode_Immediate
}
