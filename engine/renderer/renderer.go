package renderer

import (
	"context"
	"sync"

	"github.com/spaghettifunk/orion/engine/assets"
	"github.com/spaghettifunk/orion/engine/config"
	"github.com/spaghettifunk/orion/engine/core"
	"github.com/spaghettifunk/orion/engine/platform"
	"github.com/spaghettifunk/orion/engine/renderer/vulkan"
)

// RendererBackend is the device-facing half of the renderer. Today the only
// implementation is Vulkan.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	DrawFrame(ctx context.Context) error
	RebuildPipeline() error
}

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

type Renderer struct {
	backend RendererBackend
}

var initRenderer sync.Once
var renderer *Renderer

func Initialize(appName string, appWidth, appHeight uint32, platform *platform.Platform, shaders *assets.ShaderLibrary, appInfo *config.ApplicationInfo, framesInFlight uint32, enableValidation bool) error {
	initRenderer.Do(func() {
		renderer = &Renderer{
			backend: vulkan.New(platform, shaders, appInfo, framesInFlight, enableValidation),
		}
	})
	return renderer.backend.Initialize(appName, appWidth, appHeight)
}

func Shutdown() error {
	return renderer.backend.Shutdown()
}

func OnResize(width, height uint32) error {
	return renderer.backend.Resized(width, height)
}

func DrawFrame(ctx context.Context) error {
	if err := renderer.backend.DrawFrame(ctx); err != nil {
		core.LogError(err.Error())
		return err
	}
	return nil
}

// ReloadShaders rebuilds the pipeline from the shader modules currently on
// disk. Called when the asset watcher reports a change.
func ReloadShaders() error {
	return renderer.backend.RebuildPipeline()
}
