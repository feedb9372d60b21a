package vulkan

import (
	vk "github.com/goki/vulkan"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Current generation of framebuffer size. If it does not match
	// FramebufferSizeLastGeneration, a new swapchain should be generated.
	FramebufferSizeGeneration uint64
	// The generation of the framebuffer when the swapchain was last created.
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline
	Framebuffers   []vk.Framebuffer

	GraphicsCommandBuffers []*VulkanCommandBuffer

	// Per-in-flight-frame sync objects, rotated by the frame synchronizer.
	FrameSlots []*FrameSlot

	// Holds pointers to fences which exist and are owned elsewhere, one per
	// swapchain image.
	ImagesInFlight []*VulkanFence

	ImageIndex uint32

	RecreatingSwapchain bool
}
