package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orion/engine/core"
)

func deviceLocalTypes(flags ...vk.MemoryPropertyFlags) []vk.MemoryType {
	types := make([]vk.MemoryType, len(flags))
	for i, f := range flags {
		types[i] = vk.MemoryType{PropertyFlags: f, HeapIndex: uint32(i)}
	}
	return types
}

func TestPickMemoryTypeLowestIndexWins(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)

	types := deviceLocalTypes(hostVisible, deviceLocal, deviceLocal)

	// Types 1 and 2 both qualify; the lowest set bit must win.
	index, err := pickMemoryType(types, 0b110, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
}

func TestPickMemoryTypeSupersetMatches(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	combined := deviceLocal | vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)

	types := deviceLocalTypes(combined)

	// A type carrying more properties than required is still a match.
	index, err := pickMemoryType(types, 0b1, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), index)
}

func TestPickMemoryTypeNoMatch(t *testing.T) {
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	types := deviceLocalTypes(hostVisible)

	_, err := pickMemoryType(types, 0b1, deviceLocal)
	assert.ErrorIs(t, err, core.ErrNoMemoryTypeMatch)
}

func TestPickMemoryTypeMaskExcludesQualifyingType(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	types := deviceLocalTypes(deviceLocal)

	// Type 0 has the right properties but the mask does not allow it.
	_, err := pickMemoryType(types, 0b10, deviceLocal)
	assert.ErrorIs(t, err, core.ErrNoMemoryTypeMatch)
}

func TestPlanPackedAllocationOffsets(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	types := deviceLocalTypes(deviceLocal)

	requests := []BufferMemoryRequest{
		{Size: 64, Alignment: 16, MemoryTypeBits: 0b1},
		{Size: 256, Alignment: 256, MemoryTypeBits: 0b1},
		{Size: 10, Alignment: 4, MemoryTypeBits: 0b1},
	}

	plan, err := planPackedAllocation(requests, types, deviceLocal)
	require.NoError(t, err)

	// Largest alignment first, then the 16-aligned buffer at the 256-byte
	// boundary, then the small one right behind it.
	require.Len(t, plan.regions, 3)
	assert.Equal(t, vk.DeviceSize(0), plan.regions[0].Offset)
	assert.Equal(t, vk.DeviceSize(256), plan.regions[0].Size)
	assert.Equal(t, vk.DeviceSize(256), plan.regions[1].Offset)
	assert.Equal(t, vk.DeviceSize(64), plan.regions[1].Size)
	assert.Equal(t, vk.DeviceSize(320), plan.regions[2].Offset)
	assert.Equal(t, vk.DeviceSize(10), plan.regions[2].Size)
	assert.Equal(t, vk.DeviceSize(330), plan.totalSize)
	assert.Equal(t, uint32(0), plan.memoryTypeIndex)
}

func TestPlanPackedAllocationEmptyMaskIntersection(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	types := deviceLocalTypes(deviceLocal, deviceLocal)

	requests := []BufferMemoryRequest{
		{Size: 64, Alignment: 16, MemoryTypeBits: 0b01},
		{Size: 128, Alignment: 16, MemoryTypeBits: 0b10},
	}

	_, err := planPackedAllocation(requests, types, deviceLocal)
	assert.ErrorIs(t, err, core.ErrNoCommonMemoryType)
}

func TestPlanPackedAllocationNoRequests(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	types := deviceLocalTypes(deviceLocal)

	_, err := planPackedAllocation(nil, types, deviceLocal)
	assert.ErrorIs(t, err, core.ErrNoCommonMemoryType)
}

func TestPlanPackedAllocationInvariants(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	types := deviceLocalTypes(deviceLocal)

	cases := [][]BufferMemoryRequest{
		{
			{Size: 1, Alignment: 1, MemoryTypeBits: 0b1},
			{Size: 3, Alignment: 2, MemoryTypeBits: 0b1},
			{Size: 7, Alignment: 4, MemoryTypeBits: 0b1},
			{Size: 13, Alignment: 64, MemoryTypeBits: 0b1},
		},
		{
			{Size: 100, Alignment: 32, MemoryTypeBits: 0b1},
			{Size: 100, Alignment: 32, MemoryTypeBits: 0b1},
		},
		{
			{Size: 4096, Alignment: 4096, MemoryTypeBits: 0b1},
			{Size: 1, Alignment: 4, MemoryTypeBits: 0b1},
			{Size: 17, Alignment: 128, MemoryTypeBits: 0b1},
		},
	}

	for _, requests := range cases {
		plan, err := planPackedAllocation(requests, types, deviceLocal)
		require.NoError(t, err)
		require.Len(t, plan.regions, len(requests))

		var sum vk.DeviceSize
		for i, region := range plan.regions {
			assert.Zero(t, region.Offset%alignmentAt(requests, i), "offset must honor the region's alignment")
			if i > 0 {
				prev := plan.regions[i-1]
				assert.GreaterOrEqual(t, region.Offset, prev.Offset+prev.Size, "regions must not overlap")
			}
			sum += region.Size
		}
		last := plan.regions[len(plan.regions)-1]
		assert.Equal(t, last.Offset+last.Size, plan.totalSize)
		assert.LessOrEqual(t, sum, plan.totalSize)
	}
}

// alignmentAt recovers the alignment of the i-th packed region by re-sorting
// the requests the way the packer does.
func alignmentAt(requests []BufferMemoryRequest, regionIndex int) vk.DeviceSize {
	sorted := make([]BufferMemoryRequest, len(requests))
	copy(sorted, requests)
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Alignment > sorted[i].Alignment ||
				(sorted[j].Alignment == sorted[i].Alignment && sorted[j].Size > sorted[i].Size) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return sorted[regionIndex].Alignment
}
