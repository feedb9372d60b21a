package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orion/engine/core"
)

func u32(v uint32) *uint32 { return &v }

func completeFamilies() QueueFamilyIndices {
	return QueueFamilyIndices{GraphicsFamily: u32(0), PresentFamily: u32(0)}
}

func suitableCandidate(score int) DeviceCandidate {
	return DeviceCandidate{
		Score:               score,
		QueueFamilies:       completeFamilies(),
		ExtensionsSupported: true,
		SwapchainAdequate:   true,
	}
}

func TestPickPhysicalDeviceEmpty(t *testing.T) {
	_, err := pickPhysicalDevice(nil)
	assert.ErrorIs(t, err, core.ErrNoSuitableGPU)
}

func TestPickPhysicalDeviceHighestScoreWins(t *testing.T) {
	candidates := []DeviceCandidate{
		suitableCandidate(1100),
		suitableCandidate(5200),
		suitableCandidate(1200),
	}

	best, err := pickPhysicalDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestPickPhysicalDeviceIgnoresListOrder(t *testing.T) {
	// A zero-score device listed first must not shadow the suitable one.
	candidates := []DeviceCandidate{
		{Score: 0},
		suitableCandidate(1200),
	}

	best, err := pickPhysicalDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestPickPhysicalDeviceSkipsUnsuitableHighScorer(t *testing.T) {
	highButNoSwapchain := suitableCandidate(9000)
	highButNoSwapchain.SwapchainAdequate = false

	candidates := []DeviceCandidate{
		highButNoSwapchain,
		suitableCandidate(1200),
	}

	best, err := pickPhysicalDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestPickPhysicalDeviceAllUnsuitable(t *testing.T) {
	noExtensions := suitableCandidate(1200)
	noExtensions.ExtensionsSupported = false

	incompleteFamilies := suitableCandidate(1500)
	incompleteFamilies.QueueFamilies = QueueFamilyIndices{GraphicsFamily: u32(0)}

	candidates := []DeviceCandidate{
		{Score: 0},
		noExtensions,
		incompleteFamilies,
	}

	_, err := pickPhysicalDevice(candidates)
	assert.ErrorIs(t, err, core.ErrNoSuitableGPU)
}

func TestPickPhysicalDeviceScoreZeroNeverSuitable(t *testing.T) {
	zero := suitableCandidate(0)

	_, err := pickPhysicalDevice([]DeviceCandidate{zero})
	assert.ErrorIs(t, err, core.ErrNoSuitableGPU)
}

func TestPickPhysicalDeviceStableAmongTies(t *testing.T) {
	candidates := []DeviceCandidate{
		suitableCandidate(1200),
		suitableCandidate(1200),
	}

	best, err := pickPhysicalDevice(candidates)
	require.NoError(t, err)
	assert.Equal(t, 0, best)
}
