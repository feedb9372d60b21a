package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orion/engine/config"
)

func TestImageFenceToAwaitSkipsOwnSlotFence(t *testing.T) {
	// Two slots over a two-image swapchain. By the third frame, slot 0
	// re-acquires image 0 while ImagesInFlight[0] still holds slot 0's own
	// fence, which the cycle already waited on and reset.
	slotFences := []*VulkanFence{{}, {}}
	imagesInFlight := make([]*VulkanFence, 2)

	// Frame 0: slot 0 renders image 0.
	require.Nil(t, imageFenceToAwait(imagesInFlight, 0, slotFences[0]))
	imagesInFlight[0] = slotFences[0]

	// Frame 1: slot 1 renders image 1.
	require.Nil(t, imageFenceToAwait(imagesInFlight, 1, slotFences[1]))
	imagesInFlight[1] = slotFences[1]

	// Frame 2: slot 0 gets image 0 again. Waiting on its own consumed
	// fence would never return, so there must be nothing to wait on.
	assert.Nil(t, imageFenceToAwait(imagesInFlight, 0, slotFences[0]))
}

func TestImageFenceToAwaitOtherSlot(t *testing.T) {
	slotFences := []*VulkanFence{{}, {}}
	imagesInFlight := []*VulkanFence{slotFences[1], nil}

	// Image 0 is still guarded by slot 1's fence; slot 0 must wait on it.
	assert.Same(t, slotFences[1], imageFenceToAwait(imagesInFlight, 0, slotFences[0]))
}

func TestApplicationInfoDefaults(t *testing.T) {
	info := applicationInfo("Orion", nil)

	assert.Equal(t, VulkanSafeString("Orion"), info.PApplicationName)
	assert.Equal(t, VulkanSafeString("Orion Engine"), info.PEngineName)
	assert.Equal(t, uint32(vk.MakeVersion(1, 0, 0)), info.ApplicationVersion)
	assert.Equal(t, uint32(vk.MakeVersion(1, 0, 0)), info.EngineVersion)
	assert.Equal(t, uint32(vk.MakeVersion(1, 0, 0)), info.ApiVersion)
}

func TestApplicationInfoFromConfig(t *testing.T) {
	cfg := &config.ApplicationInfo{
		AppName:       "Sandbox",
		AppVersion:    uint32(vk.MakeVersion(2, 1, 0)),
		EngineName:    "Custom Engine",
		EngineVersion: uint32(vk.MakeVersion(0, 9, 3)),
		VulkanVersion: uint32(vk.MakeVersion(1, 2, 0)),
	}

	info := applicationInfo("Orion", cfg)

	assert.Equal(t, VulkanSafeString("Sandbox"), info.PApplicationName)
	assert.Equal(t, VulkanSafeString("Custom Engine"), info.PEngineName)
	assert.Equal(t, uint32(vk.MakeVersion(2, 1, 0)), info.ApplicationVersion)
	assert.Equal(t, uint32(vk.MakeVersion(0, 9, 3)), info.EngineVersion)
	assert.Equal(t, uint32(vk.MakeVersion(1, 2, 0)), info.ApiVersion)
}

func TestApplicationInfoPartialOverride(t *testing.T) {
	// Zero versions keep their defaults; only the names are replaced.
	cfg := &config.ApplicationInfo{AppName: "Sandbox", EngineName: "Custom Engine"}

	info := applicationInfo("Orion", cfg)

	assert.Equal(t, VulkanSafeString("Sandbox"), info.PApplicationName)
	assert.Equal(t, uint32(vk.MakeVersion(1, 0, 0)), info.ApplicationVersion)
	assert.Equal(t, uint32(vk.MakeVersion(1, 0, 0)), info.ApiVersion)
}

func TestPortabilityInstanceExtras(t *testing.T) {
	extensions, flags := portabilityInstanceExtras("darwin")
	assert.Equal(t, []string{
		"VK_KHR_portability_enumeration",
		"VK_KHR_get_physical_device_properties2",
	}, extensions)
	assert.Equal(t, vk.InstanceCreateFlags(1), flags)

	extensions, flags = portabilityInstanceExtras("linux")
	assert.Nil(t, extensions)
	assert.Equal(t, vk.InstanceCreateFlags(0), flags)
}
