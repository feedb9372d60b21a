package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/spaghettifunk/orion/engine/assets"
	"github.com/spaghettifunk/orion/engine/config"
	"github.com/spaghettifunk/orion/engine/core"
	"github.com/spaghettifunk/orion/engine/platform"
	"github.com/spaghettifunk/orion/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	config       *config.Config
	platform     *platform.Platform
	shaders      *assets.ShaderLibrary
	clock        *core.Clock

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
	lastTime    float64
}

func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	shaders, err := assets.NewShaderLibrary(fmt.Sprintf("%s/assets/shaders", wd))
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		platform:     platform.New(),
		shaders:      shaders,
		clock:        core.NewClock(),
		isRunning:    false,
		isSuspended:  false,
		width:        cfg.StartWidth,
		height:       cfg.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, onQuit)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, onResized)

	if err := e.platform.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight); err != nil {
		return err
	}

	if err := e.shaders.Initialize(); err != nil {
		return err
	}

	if err := renderer.Initialize(e.config.Name, e.width, e.height,
		e.platform, e.shaders, e.config.AppInfo,
		uint32(e.config.FramesInFlight), e.config.EnableValidation); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until the window closes, a quit event fires or
// ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if err := ctx.Err(); err != nil {
			core.LogInfo("run loop cancelled: %s", err)
			break
		}

		e.platform.PumpMessages()
		if e.platform.CloseRequested() {
			e.isRunning = false
			break
		}

		// Recompile shaders on disk get picked up between frames.
		select {
		case name := <-e.shaders.Modified:
			core.LogInfo("shader %s changed on disk, rebuilding pipeline", name)
			if err := renderer.ReloadShaders(); err != nil {
				core.LogWarn("pipeline rebuild failed, keeping previous: %s", err)
			}
		default:
		}

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := renderer.DrawFrame(ctx); err != nil {
			core.LogFatal("frame draw failed, shutting down: %s", err)
			e.isRunning = false
			break
		}

		core.MetricsUpdate(delta)
		e.lastTime = currentTime
	}

	e.isRunning = false
	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e, onQuit)
	core.EventUnregister(core.EVENT_CODE_RESIZED, e, onResized)

	if err := renderer.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.shaders.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.platform.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := core.EventShutdown(); err != nil {
		core.LogError(err.Error())
	}

	e.currentStage = EngineStageUninitialized
	return nil
}

func onQuit(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	e, ok := listenerInst.(*Engine)
	if !ok {
		return false
	}
	core.LogInfo("application quit event received, shutting down")
	e.isRunning = false
	return true
}

func onResized(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	e, ok := listenerInst.(*Engine)
	if !ok {
		return false
	}

	width := data.Data.U32[0]
	height := data.Data.U32[1]

	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height

	// A zero dimension means the window is minimized; suspend rendering
	// until it comes back.
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return true
	}

	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}
	if err := renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return true
}
