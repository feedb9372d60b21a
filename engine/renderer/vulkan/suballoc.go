package vulkan

import (
	"sort"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
	emath "github.com/spaghettifunk/orion/engine/math"
)

// Device-memory allocations are a scarce, rate-limited resource, so several
// buffers are packed into one allocation instead of one allocation each.
// The packer is one-shot: it does not grow, and freeing a single buffer
// means destroying and rebuilding the whole allocation. A generalized
// allocator with free-list reuse is future work.

// BufferMemoryRequest describes one buffer's memory needs, as queried right
// after buffer creation. It is consumed once by the packer.
type BufferMemoryRequest struct {
	Buffer         vk.Buffer
	Size           vk.DeviceSize
	Alignment      vk.DeviceSize
	MemoryTypeBits uint32
}

// PackedRegion is one buffer's slice of the packed allocation.
type PackedRegion struct {
	Buffer vk.Buffer
	Offset vk.DeviceSize
	Size   vk.DeviceSize
}

// PackedAllocation owns exactly one device-memory block with every buffer
// bound at a packed offset. Regions are kept in packed order.
type PackedAllocation struct {
	ID              string
	Memory          vk.DeviceMemory
	MemoryTypeIndex uint32
	TotalSize       vk.DeviceSize
	Regions         []PackedRegion
}

type packPlan struct {
	memoryTypeIndex uint32
	totalSize       vk.DeviceSize
	regions         []PackedRegion
}

// pickMemoryType returns the lowest-indexed memory type set in typeMask
// whose property flags are a superset of required.
func pickMemoryType(memoryTypes []vk.MemoryType, typeMask uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	for i := range memoryTypes {
		if typeMask&(1<<uint32(i)) == 0 {
			continue
		}
		if memoryTypes[i].PropertyFlags&required == required {
			return uint32(i), nil
		}
	}
	return 0, core.ErrNoMemoryTypeMatch
}

// planPackedAllocation computes the memory type and the packed offsets for
// a set of buffer requests without touching the device.
//
// Buffers are laid out largest alignment first (ties broken by larger
// size), which minimizes padding versus packing in arbitrary or ascending
// order. Each offset is the previous buffer's end rounded up to the current
// buffer's alignment.
func planPackedAllocation(requests []BufferMemoryRequest, memoryTypes []vk.MemoryType, required vk.MemoryPropertyFlags) (*packPlan, error) {
	if len(requests) == 0 {
		return nil, core.ErrNoCommonMemoryType
	}

	commonMask := uint32(0xFFFFFFFF)
	for i := range requests {
		commonMask &= requests[i].MemoryTypeBits
	}
	if commonMask == 0 {
		return nil, core.ErrNoCommonMemoryType
	}

	memoryTypeIndex, err := pickMemoryType(memoryTypes, commonMask, required)
	if err != nil {
		return nil, err
	}

	sorted := make([]BufferMemoryRequest, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Alignment != sorted[b].Alignment {
			return sorted[a].Alignment > sorted[b].Alignment
		}
		return sorted[a].Size > sorted[b].Size
	})

	plan := &packPlan{
		memoryTypeIndex: memoryTypeIndex,
		regions:         make([]PackedRegion, len(sorted)),
	}

	var cursor vk.DeviceSize
	for i := range sorted {
		offset := emath.AlignUp(cursor, sorted[i].Alignment)
		plan.regions[i] = PackedRegion{
			Buffer: sorted[i].Buffer,
			Offset: offset,
			Size:   sorted[i].Size,
		}
		cursor = offset + sorted[i].Size
	}
	plan.totalSize = cursor

	return plan, nil
}

// QueryBufferMemoryRequests reads size, alignment and the allowed-type mask
// for each buffer.
func QueryBufferMemoryRequests(context *VulkanContext, buffers []vk.Buffer) []BufferMemoryRequest {
	requests := make([]BufferMemoryRequest, len(buffers))
	for i, buffer := range buffers {
		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer, &requirements)
		requirements.Deref()
		requests[i] = BufferMemoryRequest{
			Buffer:         buffer,
			Size:           requirements.Size,
			Alignment:      requirements.Alignment,
			MemoryTypeBits: requirements.MemoryTypeBits,
		}
	}
	return requests
}

// AllocatePacked packs the given buffers into a single device-memory
// allocation satisfying every buffer's alignment and type requirements,
// then binds each buffer at its computed offset.
func AllocatePacked(context *VulkanContext, buffers []vk.Buffer, required vk.MemoryPropertyFlags) (*PackedAllocation, error) {
	requests := QueryBufferMemoryRequests(context, buffers)

	memoryTypes := context.Device.Memory.MemoryTypes[:context.Device.Memory.MemoryTypeCount]
	for i := range memoryTypes {
		memoryTypes[i].Deref()
	}

	plan, err := planPackedAllocation(requests, memoryTypes, required)
	if err != nil {
		core.LogError("packed allocation planning failed: %s", err)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  plan.totalSize,
		MemoryTypeIndex: plan.memoryTypeIndex,
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		err := vkError("vkAllocateMemory", res)
		core.LogError(err.Error())
		return nil, err
	}

	allocation := &PackedAllocation{
		ID:              core.GenerateUUID(),
		Memory:          memory,
		MemoryTypeIndex: plan.memoryTypeIndex,
		TotalSize:       plan.totalSize,
		Regions:         plan.regions,
	}

	for _, region := range plan.regions {
		if res := vk.BindBufferMemory(context.Device.LogicalDevice, region.Buffer, memory, region.Offset); res != vk.Success {
			err := vkError("vkBindBufferMemory", res)
			core.LogError(err.Error())
			vk.FreeMemory(context.Device.LogicalDevice, memory, context.Allocator)
			return nil, err
		}
	}

	core.LogDebug("packed allocation %s: %d buffers into %d bytes (memory type %d)",
		allocation.ID, len(plan.regions), plan.totalSize, plan.memoryTypeIndex)
	return allocation, nil
}

// Destroy frees the backing memory block. The caller must ensure no
// in-flight frame still references the bound buffers; the in-flight fence
// wait provides that guarantee.
func (pa *PackedAllocation) Destroy(context *VulkanContext) {
	if pa.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, pa.Memory, context.Allocator)
		pa.Memory = nil
	}
	pa.Regions = nil
	pa.TotalSize = 0
}
