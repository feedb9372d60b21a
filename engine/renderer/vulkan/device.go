package vulkan

import (
	"runtime"
	"sort"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/orion/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport *VulkanSwapchainSupportInfo
	QueueFamilies    QueueFamilyIndices

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
}

// DeviceCandidate is the transient record the selector ranks. It exists only
// during selection; exactly zero or one candidate is promoted per run.
type DeviceCandidate struct {
	PhysicalDevice      vk.PhysicalDevice
	Score               int
	QueueFamilies       QueueFamilyIndices
	ExtensionsSupported bool
	SwapchainAdequate   bool
}

func (c *DeviceCandidate) suitable() bool {
	return c.Score > 0 &&
		c.QueueFamilies.IsComplete() &&
		c.ExtensionsSupported &&
		c.SwapchainAdequate
}

// pickPhysicalDevice ranks candidates by descending score and returns the
// index of the first one meeting every requirement. This is a first-fit over
// a score-sorted sequence, not a globally optimal search.
func pickPhysicalDevice(candidates []DeviceCandidate) (int, error) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Score > candidates[order[b]].Score
	})
	for _, i := range order {
		if candidates[i].suitable() {
			return i, nil
		}
	}
	return -1, core.ErrNoSuitableGPU
}

func requiredDeviceExtensions() []string {
	return []string{vk.KhrSwapchainExtensionName}
}

// SelectPhysicalDevice probes every enumerated GPU and promotes the best
// suitable one onto the context.
func SelectPhysicalDevice(context *VulkanContext) error {
	devices, err := EnumeratePhysicalDevices(context.Instance)
	if err != nil {
		return err
	}

	required := requiredDeviceExtensions()
	candidates := make([]DeviceCandidate, len(devices))
	for i, device := range devices {
		candidate := DeviceCandidate{
			PhysicalDevice: device,
			Score:          RateDevice(device),
			QueueFamilies:  FindQueueFamilies(device, context.Surface),
		}
		candidate.ExtensionsSupported = CheckDeviceExtensionSupport(device, required)
		if support, err := QuerySwapchainSupport(device, context.Surface); err == nil {
			candidate.SwapchainAdequate = support.Adequate()
		}
		candidates[i] = candidate
	}

	best, err := pickPhysicalDevice(candidates)
	if err != nil {
		core.LogError("No physical devices were found which meet the requirements.")
		return err
	}

	selected := &candidates[best]
	context.Device = &VulkanDevice{
		PhysicalDevice: selected.PhysicalDevice,
		QueueFamilies:  selected.QueueFamilies,
	}

	// Keep a copy of properties, features and memory info for later use.
	vk.GetPhysicalDeviceProperties(selected.PhysicalDevice, &context.Device.Properties)
	context.Device.Properties.Deref()
	vk.GetPhysicalDeviceFeatures(selected.PhysicalDevice, &context.Device.Features)
	context.Device.Features.Deref()
	vk.GetPhysicalDeviceMemoryProperties(selected.PhysicalDevice, &context.Device.Memory)
	context.Device.Memory.Deref()

	support, err := QuerySwapchainSupport(selected.PhysicalDevice, context.Surface)
	if err != nil {
		return err
	}
	context.Device.SwapchainSupport = support

	core.LogInfo("Selected device: '%s' (score %d).", string(context.Device.Properties.DeviceName[:]), selected.Score)
	switch context.Device.Properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}
	core.LogDebug("Graphics Family Index: %d", *context.Device.QueueFamilies.GraphicsFamily)
	core.LogDebug("Present Family Index:  %d", *context.Device.QueueFamilies.PresentFamily)

	return nil
}

// DeviceCreate selects a physical device, creates the logical device with
// one queue per distinct family index, retrieves the queues and creates the
// graphics command pool.
func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// Do not create additional queues for shared indices.
	graphicsIndex := *context.Device.QueueFamilies.GraphicsFamily
	presentIndex := *context.Device.QueueFamilies.PresentFamily
	indices := []uint32{graphicsIndex}
	if presentIndex != graphicsIndex {
		indices = append(indices, presentIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	deviceFeatures.GeometryShader = vk.True

	extensionNames := requiredDeviceExtensions()
	if runtime.GOOS == "darwin" && CheckDeviceExtensionSupport(context.Device.PhysicalDevice, []string{"VK_KHR_portability_subset"}) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&logicalDevice); res != vk.Success {
		err := vkError("vkCreateDevice", res)
		core.LogError(err.Error())
		return err
	}
	context.Device.LogicalDevice = logicalDevice
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(context.Device.LogicalDevice, graphicsIndex, 0, &context.Device.GraphicsQueue)
	vk.GetDeviceQueue(context.Device.LogicalDevice, presentIndex, 0, &context.Device.PresentQueue)
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: graphicsIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&pool); res != vk.Success {
		err := vkError("vkCreateCommandPool", res)
		core.LogError(err.Error())
		return err
	}
	context.Device.GraphicsCommandPool = pool
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	// Unset queues
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	core.LogInfo("Releasing physical device resources...")
	context.Device.PhysicalDevice = nil
	context.Device.SwapchainSupport = nil
	context.Device.QueueFamilies = QueueFamilyIndices{}
}
