package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

// VulkanBuffer is a buffer handle without backing memory. Memory is bound
// separately through a packed allocation.
type VulkanBuffer struct {
	Handle vk.Buffer
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		err := vkError("vkCreateBuffer", res)
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanBuffer{
		Handle: handle,
		Size:   size,
		Usage:  usage,
	}, nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
}
