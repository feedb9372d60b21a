package vulkan

import (
	"context"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

// fencePollInterval bounds each native wait so cancellation can be observed
// between polls. A wedged GPU therefore cannot stall shutdown indefinitely.
const fencePollInterval = 100 * time.Millisecond

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		err := vkError("vkCreateFence", res)
		core.LogError(err.Error())
		return nil, err
	}
	fence.Handle = pFence
	return fence, nil
}

func (vf *VulkanFence) FenceDestroy(context *VulkanContext) {
	if vf.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

// FenceWait blocks until the fence signals or ctx is cancelled. The native
// wait runs in bounded slices so cancellation is observed between polls;
// without a deadline on ctx the wait is effectively unbounded, matching the
// backpressure role of the in-flight fence.
func (vf *VulkanFence) FenceWait(ctx context.Context, vkContext *VulkanContext) error {
	if vf.IsSignaled {
		// Already signaled, do not wait.
		return nil
	}
	for {
		result := vk.WaitForFences(vkContext.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, uint64(fencePollInterval.Nanoseconds()))
		switch result {
		case vk.Success:
			vf.IsSignaled = true
			return nil
		case vk.Timeout:
			if err := ctx.Err(); err != nil {
				core.LogWarn("fence wait cancelled: %s", err)
				return core.ErrWaitCancelled
			}
		default:
			err := vkError("vkWaitForFences", result)
			core.LogError(err.Error())
			return err
		}
	}
}

func (vf *VulkanFence) FenceReset(context *VulkanContext) error {
	if vf.IsSignaled {
		if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
			err := vkError("vkResetFences", res)
			core.LogError(err.Error())
			return err
		}
		vf.IsSignaled = false
	}
	return nil
}
