package vulkan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/assets"
	"github.com/spaghettifunk/orion/engine/config"
	"github.com/spaghettifunk/orion/engine/core"
	"github.com/spaghettifunk/orion/engine/platform"
)

const (
	vertexShaderName   = "triangle.vert"
	fragmentShaderName = "triangle.frag"

	// Scratch geometry arena carved out of a single packed allocation.
	vertexArenaSize  = 64 * 1024
	indexArenaSize   = 16 * 1024
	uniformArenaSize = 4 * 1024
)

type VulkanRenderer struct {
	platform *platform.Platform
	shaders  *assets.ShaderLibrary
	appInfo  *config.ApplicationInfo
	context  *VulkanContext

	synchronizer *FrameSynchronizer

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	framesInFlight uint32

	geometryBuffers    []*VulkanBuffer
	geometryAllocation *PackedAllocation

	debug bool
}

func New(p *platform.Platform, shaders *assets.ShaderLibrary, appInfo *config.ApplicationInfo, framesInFlight uint32, enableValidation bool) *VulkanRenderer {
	vr := &VulkanRenderer{
		platform: p,
		shaders:  shaders,
		appInfo:  appInfo,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
		},
		framesInFlight: framesInFlight,
		debug:          enableValidation,
	}
	vr.synchronizer = NewFrameSynchronizer(vr, framesInFlight)
	return vr
}

// Synchronizer exposes the frame state machine driving this backend.
func (vr *VulkanRenderer) Synchronizer() *FrameSynchronizer {
	return vr.synchronizer
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.Allocator = nil
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	if vr.debug {
		if err := vr.createDebugMessenger(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		core.LogError("Vulkan surface creation failed: %s", err)
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vk.NullSwapchain)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	if err := vr.createPipeline(); err != nil {
		return err
	}

	fbs, err := FramebuffersCreate(vr.context, vr.context.MainRenderpass)
	if err != nil {
		return err
	}
	vr.context.Framebuffers = fbs

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	vr.context.FrameSlots = make([]*FrameSlot, vr.framesInFlight)
	for i := range vr.context.FrameSlots {
		slot, err := NewFrameSlot(vr.context)
		if err != nil {
			return err
		}
		vr.context.FrameSlots[i] = slot
	}

	// Fences in this list are owned by the frame slots; entries are nil
	// until an image is first handed to a frame.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	if err := vr.createGeometryArena(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

// applicationInfo builds the driver-facing identification block. Fields of
// info override the defaults; a nil info keeps them all.
func applicationInfo(appName string, info *config.ApplicationInfo) *vk.ApplicationInfo {
	out := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Orion Engine"),
	}
	if info == nil {
		return out
	}
	if info.AppName != "" {
		out.PApplicationName = VulkanSafeString(info.AppName)
	}
	if info.AppVersion != 0 {
		out.ApplicationVersion = info.AppVersion
	}
	if info.EngineName != "" {
		out.PEngineName = VulkanSafeString(info.EngineName)
	}
	if info.EngineVersion != 0 {
		out.EngineVersion = info.EngineVersion
	}
	if info.VulkanVersion != 0 {
		out.ApiVersion = info.VulkanVersion
	}
	return out
}

// portabilityInstanceExtras returns the extra instance extensions and create
// flags a platform needs. On darwin the portability-enumeration extension and
// its create-flag bit must always travel together.
func portabilityInstanceExtras(goos string) ([]string, vk.InstanceCreateFlags) {
	if goos != "darwin" {
		return nil, 0
	}
	return []string{
		"VK_KHR_portability_enumeration",
		"VK_KHR_get_physical_device_properties2",
	}, 1
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: applicationInfo(appName, vr.appInfo),
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	portabilityExtensions, portabilityFlags := portabilityInstanceExtras(runtime.GOOS)
	requiredExtensions = append(requiredExtensions, portabilityExtensions...)
	createInfo.Flags |= portabilityFlags

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions:")
		for i := 0; i < len(requiredExtensions); i++ {
			core.LogInfo(requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	requiredValidationLayerNames := []string{}
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return vkError("vkEnumerateInstanceLayerProperties", res)
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return vkError("vkEnumerateInstanceLayerProperties", res)
		}

		for i := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayerNames[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				err := fmt.Errorf("required validation layer is missing: %s", requiredValidationLayerNames[i])
				core.LogError(err.Error())
				return err
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := vkError("vkCreateInstance", res)
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Vulkan instance created.")
	return nil
}

func (vr *VulkanRenderer) createDebugMessenger() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
		PNext:       nil,
	}

	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
		core.LogError("vk.CreateDebugReportCallback failed with %s", err)
		return err
	}
	vr.context.debugMessenger = dbg

	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vr *VulkanRenderer) createPipeline() error {
	vert, err := vr.shaders.Load(vertexShaderName)
	if err != nil {
		return err
	}
	frag, err := vr.shaders.Load(fragmentShaderName)
	if err != nil {
		return err
	}

	pipeline, err := PipelineCreate(vr.context, vr.context.MainRenderpass, vert.Words, frag.Words)
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline
	return nil
}

// RebuildPipeline reloads the shader modules from disk and swaps in a fresh
// pipeline. Used when the shader watcher reports a change.
func (vr *VulkanRenderer) RebuildPipeline() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	vr.shaders.Invalidate(vertexShaderName)
	vr.shaders.Invalidate(fragmentShaderName)

	old := vr.context.Pipeline
	if err := vr.createPipeline(); err != nil {
		// Keep the previous pipeline on failure so rendering continues.
		vr.context.Pipeline = old
		return err
	}
	if old != nil {
		old.Destroy(vr.context)
	}

	core.LogInfo("pipeline rebuilt from updated shaders")
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	if len(vr.context.GraphicsCommandBuffers) == 0 {
		vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.framesInFlight)
	}
	for i := 0; i < int(vr.framesInFlight); i++ {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}

	core.LogDebug("Vulkan command buffers created.")
	return nil
}

// createGeometryArena packs the vertex, index and uniform scratch buffers
// into one device-local memory block.
func (vr *VulkanRenderer) createGeometryArena() error {
	specs := []struct {
		size  vk.DeviceSize
		usage vk.BufferUsageFlags
	}{
		{vertexArenaSize, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit)},
		{indexArenaSize, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit)},
		{uniformArenaSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit | vk.BufferUsageTransferDstBit)},
	}

	vr.geometryBuffers = make([]*VulkanBuffer, 0, len(specs))
	handles := make([]vk.Buffer, 0, len(specs))
	for _, s := range specs {
		b, err := BufferCreate(vr.context, s.size, s.usage)
		if err != nil {
			vr.destroyGeometryArena()
			return err
		}
		vr.geometryBuffers = append(vr.geometryBuffers, b)
		handles = append(handles, b.Handle)
	}

	allocation, err := AllocatePacked(vr.context, handles, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vr.destroyGeometryArena()
		return err
	}
	vr.geometryAllocation = allocation
	return nil
}

func (vr *VulkanRenderer) destroyGeometryArena() {
	for _, b := range vr.geometryBuffers {
		b.Destroy(vr.context)
	}
	vr.geometryBuffers = nil
	if vr.geometryAllocation != nil {
		vr.geometryAllocation.Destroy(vr.context)
		vr.geometryAllocation = nil
	}
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	vr.destroyGeometryArena()

	for _, slot := range vr.context.FrameSlots {
		slot.Destroy(vr.context)
	}
	vr.context.FrameSlots = nil
	vr.context.ImagesInFlight = nil

	for i := range vr.context.GraphicsCommandBuffers {
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	FramebuffersDestroy(vr.context, vr.context.Framebuffers)
	vr.context.Framebuffers = nil

	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
		vr.context.Pipeline = nil
	}

	vr.context.MainRenderpass.RenderpassDestroy(vr.context)

	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug {
		core.LogDebug("Destroying Vulkan debugger...")
		if vr.context.debugMessenger != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		}
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	return nil
}

// Resized records the new framebuffer size. The swapchain itself is
// recreated lazily at the top of the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("renderer resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

// DrawFrame runs one frame cycle, recreating the swapchain first when a
// resize is pending and retrying on a stale swapchain.
func (vr *VulkanRenderer) DrawFrame(ctx context.Context) error {
	if vr.context.RecreatingSwapchain {
		if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
			err := vkError("vkDeviceWaitIdle", res)
			core.LogError(err.Error())
			return err
		}
		core.LogInfo("recreating swapchain, skipping frame")
		return nil
	}

	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
			err := vkError("vkDeviceWaitIdle", res)
			core.LogError(err.Error())
			return err
		}
		if err := vr.recreateSwapchain(); err != nil {
			core.LogError("swapchain recreation failed: %s", err)
			return err
		}
		core.LogInfo("resized, skipping frame")
		return nil
	}

	err := vr.synchronizer.RunCycle(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		// Stale surface. Recreate and let the next frame retry.
		if recreateErr := vr.recreateSwapchain(); recreateErr != nil {
			core.LogError("swapchain recreation failed: %s", recreateErr)
			return recreateErr
		}
		return nil
	}
	return err
}

// WaitForFence blocks until the slot's in-flight fence signals.
func (vr *VulkanRenderer) WaitForFence(ctx context.Context, slot uint32) error {
	return vr.context.FrameSlots[slot].InFlightFence.FenceWait(ctx, vr.context)
}

// AcquireNextImage asks the swapchain for the next presentable image,
// signaling the slot's image-available semaphore when it is ready.
func (vr *VulkanRenderer) AcquireNextImage(slot uint32) (uint32, error) {
	imageIndex, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(
		vr.context, math.MaxUint64,
		vr.context.FrameSlots[slot].ImageAvailableSemaphore, vk.NullFence)
	if err != nil {
		return 0, err
	}
	vr.context.ImageIndex = imageIndex
	return imageIndex, nil
}

func (vr *VulkanRenderer) ResetFence(slot uint32) error {
	return vr.context.FrameSlots[slot].InFlightFence.FenceReset(vr.context)
}

// imageFenceToAwait returns the fence guarding imageIndex, or nil when there
// is nothing left to wait on. The slot's own fence is excluded: it was
// already waited on and reset this cycle, so a second wait would never
// return.
func imageFenceToAwait(imagesInFlight []*VulkanFence, imageIndex uint32, slotFence *VulkanFence) *VulkanFence {
	fence := imagesInFlight[imageIndex]
	if fence == nil || fence == slotFence {
		return nil
	}
	return fence
}

// RecordCommands re-records the slot's command buffer against the acquired
// image. If a previous frame from another slot is still rendering to this
// image, its fence is waited on first.
func (vr *VulkanRenderer) RecordCommands(slot uint32, imageIndex uint32) error {
	slotFence := vr.context.FrameSlots[slot].InFlightFence
	if fence := imageFenceToAwait(vr.context.ImagesInFlight, imageIndex, slotFence); fence != nil {
		if err := fence.FenceWait(context.Background(), vr.context); err != nil {
			return err
		}
	}
	vr.context.ImagesInFlight[imageIndex] = slotFence

	commandBuffer := vr.context.GraphicsCommandBuffers[slot]
	if err := commandBuffer.Reset(); err != nil {
		return err
	}
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}

	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Framebuffers[imageIndex])

	vr.context.Pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdDraw(commandBuffer.Handle, 3, 1, 0, 0)

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)

	return commandBuffer.End()
}

// Submit hands the slot's command buffer to the graphics queue. The queue
// waits on the image-available semaphore at the color-output stage and
// signals the render-finished semaphore and in-flight fence when done.
func (vr *VulkanRenderer) Submit(slot uint32) error {
	frameSlot := vr.context.FrameSlots[slot]
	commandBuffer := vr.context.GraphicsCommandBuffers[slot]

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{frameSlot.ImageAvailableSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frameSlot.RenderFinishedSemaphore},
	}

	if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frameSlot.InFlightFence.Handle); res != vk.Success {
		err := vkError("vkQueueSubmit", res)
		core.LogError(err.Error())
		return err
	}

	commandBuffer.UpdateSubmitted()
	return nil
}

// Present queues the image for display, waiting on the slot's
// render-finished semaphore.
func (vr *VulkanRenderer) Present(slot uint32, imageIndex uint32) error {
	return vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.FrameSlots[slot].RenderFinishedSemaphore,
		imageIndex)
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called while already recreating")
		return nil
	}

	width, height := vr.cachedFramebufferWidth, vr.cachedFramebufferHeight
	if width == 0 || height == 0 {
		width, height = vr.platform.FramebufferSize()
	}
	if width == 0 || height == 0 {
		// Minimized. Nothing to present to until the window comes back.
		core.LogDebug("recreateSwapchain deferred: framebuffer has a zero dimension")
		return nil
	}

	vr.context.RecreatingSwapchain = true

	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	for i := range vr.context.ImagesInFlight {
		vr.context.ImagesInFlight[i] = nil
	}

	// Surface capabilities may have changed along with the size.
	support, err := QuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Device.SwapchainSupport = support

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, width, height)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Swapchain = sc

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	FramebuffersDestroy(vr.context, vr.context.Framebuffers)
	fbs, err := FramebuffersCreate(vr.context, vr.context.MainRenderpass)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Framebuffers = fbs

	// ImagesInFlight is sized to the image count, which may have changed.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	vr.context.RecreatingSwapchain = false
	core.LogInfo("swapchain recreated at %dx%d", width, height)
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
