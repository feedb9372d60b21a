package vulkan

import (
	"context"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

// FrameSlot owns the sync primitives for one in-flight frame. Slots are
// created once at startup, destroyed once at shutdown and reused cyclically;
// each slot owns its own semaphore pair, so a semaphore is never reused
// across frames before its matched wait has been consumed.
type FrameSlot struct {
	ImageAvailableSemaphore vk.Semaphore
	RenderFinishedSemaphore vk.Semaphore
	InFlightFence           *VulkanFence
}

func NewFrameSlot(vkContext *VulkanContext) (*FrameSlot, error) {
	slot := &FrameSlot{}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(vkContext.Device.LogicalDevice, &semaphoreCreateInfo, vkContext.Allocator, &slot.ImageAvailableSemaphore); res != vk.Success {
		err := vkError("vkCreateSemaphore", res)
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.CreateSemaphore(vkContext.Device.LogicalDevice, &semaphoreCreateInfo, vkContext.Allocator, &slot.RenderFinishedSemaphore); res != vk.Success {
		err := vkError("vkCreateSemaphore", res)
		core.LogError(err.Error())
		slot.Destroy(vkContext)
		return nil, err
	}

	// Create the fence in a signaled state so the first wait on this slot
	// does not block on a frame that was never submitted.
	fence, err := NewFence(vkContext, true)
	if err != nil {
		slot.Destroy(vkContext)
		return nil, err
	}
	slot.InFlightFence = fence

	return slot, nil
}

func (fs *FrameSlot) Destroy(vkContext *VulkanContext) {
	if fs.ImageAvailableSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(vkContext.Device.LogicalDevice, fs.ImageAvailableSemaphore, vkContext.Allocator)
		fs.ImageAvailableSemaphore = vk.NullSemaphore
	}
	if fs.RenderFinishedSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(vkContext.Device.LogicalDevice, fs.RenderFinishedSemaphore, vkContext.Allocator)
		fs.RenderFinishedSemaphore = vk.NullSemaphore
	}
	if fs.InFlightFence != nil {
		fs.InFlightFence.FenceDestroy(vkContext)
		fs.InFlightFence = nil
	}
}

// FrameBackend is the set of operations one frame cycle drives, in order.
// The Vulkan renderer implements it against the real device.
type FrameBackend interface {
	// WaitForFence blocks until slot's in-flight fence signals. This is the
	// sole backpressure keeping the CPU at most F frames ahead of the GPU.
	WaitForFence(ctx context.Context, slot uint32) error
	// AcquireNextImage returns the next presentable image index, arranging
	// for slot's image-available semaphore to signal when it is usable.
	AcquireNextImage(slot uint32) (uint32, error)
	// ResetFence unsignals slot's in-flight fence before resubmission.
	ResetFence(slot uint32) error
	// RecordCommands resets and re-records slot's command buffer against
	// the acquired image.
	RecordCommands(slot uint32, imageIndex uint32) error
	// Submit hands slot's command buffer to the graphics queue: it waits on
	// the image-available semaphore at the color-output stage and signals
	// the render-finished semaphore plus the in-flight fence on completion.
	Submit(slot uint32) error
	// Present queues the image for display, waiting on the render-finished
	// semaphore.
	Present(slot uint32, imageIndex uint32) error
}

// FrameSynchronizer rotates a fixed number of frame slots through the
// acquire/record/submit/present cycle. At most FramesInFlight command
// buffers are submitted but not yet fence-signaled at any time.
type FrameSynchronizer struct {
	backend        FrameBackend
	framesInFlight uint32
	currentFrame   uint32
	frameNumber    uint64
}

func NewFrameSynchronizer(backend FrameBackend, framesInFlight uint32) *FrameSynchronizer {
	if framesInFlight == 0 {
		framesInFlight = 2
	}
	return &FrameSynchronizer{
		backend:        backend,
		framesInFlight: framesInFlight,
	}
}

func (fs *FrameSynchronizer) CurrentFrame() uint32 {
	return fs.currentFrame
}

func (fs *FrameSynchronizer) FrameNumber() uint64 {
	return fs.frameNumber
}

func (fs *FrameSynchronizer) FramesInFlight() uint32 {
	return fs.framesInFlight
}

// RunCycle drives one full frame through the current slot and advances to
// the next. A core.ErrSwapchainOutOfDate from acquire or present is
// returned to the caller, which owns the recreate-and-retry transition;
// the slot is not advanced on an acquire failure since nothing was
// submitted for it.
func (fs *FrameSynchronizer) RunCycle(ctx context.Context) error {
	slot := fs.currentFrame

	if err := fs.backend.WaitForFence(ctx, slot); err != nil {
		return err
	}

	imageIndex, err := fs.backend.AcquireNextImage(slot)
	if err != nil {
		return err
	}

	if err := fs.backend.ResetFence(slot); err != nil {
		return err
	}

	if err := fs.backend.RecordCommands(slot, imageIndex); err != nil {
		return err
	}

	if err := fs.backend.Submit(slot); err != nil {
		return err
	}

	// The submit succeeded, so the slot's fence will signal; advance even
	// when presentation reports a stale swapchain.
	presentErr := fs.backend.Present(slot, imageIndex)

	fs.currentFrame = (fs.currentFrame + 1) % fs.framesInFlight
	fs.frameNumber++

	return presentErr
}
