package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

// The prober only issues read-only queries against the instance and the
// physical devices; it never mutates device state.

const discreteGPUScoreBonus = 1000

// QueueFamilyIndices holds the resolved queue family for each role the
// renderer needs. A nil index means no family qualified for that role.
type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// SharedIndex reports whether graphics and present resolved to the same
// family, which lets the swapchain use exclusive image sharing.
func (q QueueFamilyIndices) SharedIndex() bool {
	return q.IsComplete() && *q.GraphicsFamily == *q.PresentFamily
}

// QueueFamilyCaps is the per-family capability pair the pairing logic works
// on, decoupled from the native descriptors so it can be exercised directly.
type QueueFamilyCaps struct {
	Graphics bool
	Present  bool
}

// VulkanSwapchainSupportInfo mirrors what the surface reports for a device.
// A device is swapchain-adequate only if both sequences are non-empty.
type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func (s *VulkanSwapchainSupportInfo) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// EnumeratePhysicalDevices lists every GPU the instance can see.
func EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32 = 0
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success {
		core.LogError("vkEnumeratePhysicalDevices failed: %s", VulkanResultString(res))
		return nil, core.ErrNoGPU
	}
	if count == 0 {
		core.LogError("No devices which support Vulkan were found.")
		return nil, core.ErrNoGPU
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, devices); res != vk.Success {
		core.LogError("vkEnumeratePhysicalDevices failed: %s", VulkanResultString(res))
		return nil, core.ErrNoGPU
	}
	return devices, nil
}

// RateDevice queries a device's properties and features and turns them into
// a suitability score. Scoring is a preference order, not a hard filter;
// filtering happens during selection.
func RateDevice(device vk.PhysicalDevice) int {
	properties := vk.PhysicalDeviceProperties{}
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	properties.Limits.Deref()

	features := vk.PhysicalDeviceFeatures{}
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()

	score := rateDeviceSuitability(
		properties.DeviceType,
		properties.Limits.MaxImageDimension2D,
		features.GeometryShader == vk.True,
	)
	core.LogDebug("device '%s' scored %d", string(properties.DeviceName[:]), score)
	return score
}

// rateDeviceSuitability prefers discrete GPUs by a large fixed bonus, adds
// the maximum 2D image dimension as a magnitude term, and collapses the
// score to zero when the geometry-shader feature is missing.
func rateDeviceSuitability(deviceType vk.PhysicalDeviceType, maxImageDimension2D uint32, hasGeometryShader bool) int {
	score := 0
	if deviceType == vk.PhysicalDeviceTypeDiscreteGpu {
		score += discreteGPUScoreBonus
	}
	score += int(maxImageDimension2D)
	if !hasGeometryShader {
		score = 0
	}
	return score
}

// FindQueueFamilies resolves the graphics and present family indices for a
// device against the given surface.
func FindQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) QueueFamilyIndices {
	var count uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)

	caps := make([]QueueFamilyCaps, count)
	for i := uint32(0); i < count; i++ {
		families[i].Deref()
		caps[i].Graphics = vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit > 0

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent); res != vk.Success {
			continue
		}
		caps[i].Present = supportsPresent == vk.True
	}

	return resolveQueueFamilies(caps)
}

// resolveQueueFamilies picks one family per role. Among all pairings with
// both roles present, a family serving both wins: fewer distinct queues
// means no explicit ownership transfer for shared resources. Every family
// is evaluated before settling for a split pairing.
func resolveQueueFamilies(caps []QueueFamilyCaps) QueueFamilyIndices {
	indices := QueueFamilyIndices{}
	for i := range caps {
		idx := uint32(i)
		if caps[i].Graphics && caps[i].Present {
			return QueueFamilyIndices{GraphicsFamily: &idx, PresentFamily: &idx}
		}
		if caps[i].Graphics && indices.GraphicsFamily == nil {
			indices.GraphicsFamily = &idx
		}
		if caps[i].Present && indices.PresentFamily == nil {
			indices.PresentFamily = &idx
		}
	}
	return indices
}

// QuerySwapchainSupport gathers the surface capability, format and present
// mode sets for a device.
func QuerySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	supportInfo := &VulkanSwapchainSupportInfo{}

	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &supportInfo.Capabilities); res != vk.Success {
		core.LogError("failed to get physical device surface capabilities: %s", VulkanResultString(res))
		return nil, vkError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	supportInfo.Capabilities.Deref()

	var formatCount uint32 = 0
	if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil); res != vk.Success {
		return nil, vkError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return nil, vkError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	var presentModeCount uint32 = 0
	if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, nil); res != vk.Success {
		return nil, vkError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return nil, vkError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}

	return supportInfo, nil
}

// CheckDeviceExtensionSupport reports whether the device offers every
// extension in requiredExtensions.
func CheckDeviceExtensionSupport(device vk.PhysicalDevice, requiredExtensions []string) bool {
	var count uint32 = 0
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success {
		return false
	}
	available := make([]vk.ExtensionProperties, count)
	if count != 0 {
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, available); res != vk.Success {
			return false
		}
	}
	for _, required := range requiredExtensions {
		found := false
		for i := range available {
			available[i].Deref()
			end := FindFirstZeroInByteArray(available[i].ExtensionName[:])
			if required == vk.ToString(available[i].ExtensionName[:end+1]) {
				found = true
				break
			}
		}
		if !found {
			core.LogInfo("Required extension not found: '%s', skipping device.", required)
			return false
		}
	}
	return true
}
