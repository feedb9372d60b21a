package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

// One framebuffer per swapchain image view, sized to the current extent.
func FramebuffersCreate(context *VulkanContext, renderpass *VulkanRenderpass) ([]vk.Framebuffer, error) {
	framebuffers := make([]vk.Framebuffer, len(context.Swapchain.Views))

	for i, view := range context.Swapchain.Views {
		createInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderpass.Handle,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           context.Swapchain.Extent.Width,
			Height:          context.Swapchain.Extent.Height,
			Layers:          1,
		}

		var handle vk.Framebuffer
		if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
			err := vkError("vkCreateFramebuffer", res)
			core.LogError(err.Error())
			FramebuffersDestroy(context, framebuffers[:i])
			return nil, err
		}
		framebuffers[i] = handle
	}

	return framebuffers, nil
}

func FramebuffersDestroy(context *VulkanContext, framebuffers []vk.Framebuffer) {
	for _, fb := range framebuffers {
		if fb != nil {
			vk.DestroyFramebuffer(context.Device.LogicalDevice, fb, context.Allocator)
		}
	}
}
