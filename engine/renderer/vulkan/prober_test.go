package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateDeviceSuitabilityDiscreteBonus(t *testing.T) {
	discrete := rateDeviceSuitability(vk.PhysicalDeviceTypeDiscreteGpu, 4096, true)
	integrated := rateDeviceSuitability(vk.PhysicalDeviceTypeIntegratedGpu, 4096, true)

	assert.Equal(t, 1000+4096, discrete)
	assert.Equal(t, 4096, integrated)
}

func TestRateDeviceSuitabilityNoGeometryShader(t *testing.T) {
	// Missing geometry-shader support collapses the score regardless of
	// everything else.
	score := rateDeviceSuitability(vk.PhysicalDeviceTypeDiscreteGpu, 16384, false)
	assert.Zero(t, score)
}

func TestRateDeviceSuitabilityImageDimensionTerm(t *testing.T) {
	small := rateDeviceSuitability(vk.PhysicalDeviceTypeDiscreteGpu, 2048, true)
	large := rateDeviceSuitability(vk.PhysicalDeviceTypeDiscreteGpu, 16384, true)
	assert.Greater(t, large, small)
}

func TestResolveQueueFamiliesPrefersSharedFamily(t *testing.T) {
	// Family 2 serves both roles and must win over the split 0/1 pairing
	// that completes earlier in the walk.
	caps := []QueueFamilyCaps{
		{Graphics: true},
		{Present: true},
		{Graphics: true, Present: true},
	}

	indices := resolveQueueFamilies(caps)
	require.True(t, indices.IsComplete())
	assert.True(t, indices.SharedIndex())
	assert.Equal(t, uint32(2), *indices.GraphicsFamily)
	assert.Equal(t, uint32(2), *indices.PresentFamily)
}

func TestResolveQueueFamiliesSplitPairing(t *testing.T) {
	caps := []QueueFamilyCaps{
		{Graphics: true},
		{},
		{Present: true},
	}

	indices := resolveQueueFamilies(caps)
	require.True(t, indices.IsComplete())
	assert.False(t, indices.SharedIndex())
	assert.Equal(t, uint32(0), *indices.GraphicsFamily)
	assert.Equal(t, uint32(2), *indices.PresentFamily)
}

func TestResolveQueueFamiliesFirstOfEachRole(t *testing.T) {
	caps := []QueueFamilyCaps{
		{Graphics: true},
		{Graphics: true},
		{Present: true},
		{Present: true},
	}

	indices := resolveQueueFamilies(caps)
	require.True(t, indices.IsComplete())
	assert.Equal(t, uint32(0), *indices.GraphicsFamily)
	assert.Equal(t, uint32(2), *indices.PresentFamily)
}

func TestResolveQueueFamiliesIncomplete(t *testing.T) {
	graphicsOnly := resolveQueueFamilies([]QueueFamilyCaps{{Graphics: true}})
	assert.False(t, graphicsOnly.IsComplete())

	none := resolveQueueFamilies(nil)
	assert.False(t, none.IsComplete())
	assert.False(t, none.SharedIndex())
}

func TestSwapchainSupportAdequate(t *testing.T) {
	empty := &VulkanSwapchainSupportInfo{}
	assert.False(t, empty.Adequate())

	formatsOnly := &VulkanSwapchainSupportInfo{
		Formats: []vk.SurfaceFormat{{}},
	}
	assert.False(t, formatsOnly.Adequate())

	both := &VulkanSwapchainSupportInfo{
		Formats:      []vk.SurfaceFormat{{}},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}
	assert.True(t, both.Adequate())
}
