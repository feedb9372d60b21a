package core

import (
	"errors"
)

var (
	// ErrInvalidConfiguration is returned before any native call is made when
	// construction parameters fail validation.
	ErrInvalidConfiguration = errors.New("invalid engine configuration")
	// ErrNoGPU is returned when instance enumeration reports zero physical
	// devices with Vulkan support.
	ErrNoGPU = errors.New("no GPU with Vulkan support found")
	// ErrNoSuitableGPU is returned when no enumerated device satisfies the
	// queue family, extension and swapchain requirements.
	ErrNoSuitableGPU = errors.New("no suitable GPU found")
	// ErrNoCommonMemoryType is returned when the buffers handed to the packer
	// have disjoint allowed-memory-type masks.
	ErrNoCommonMemoryType = errors.New("no common memory type for buffers")
	// ErrNoMemoryTypeMatch is returned when no memory type in the common mask
	// carries the requested property flags.
	ErrNoMemoryTypeMatch = errors.New("no memory type satisfies requested properties")
	// ErrSwapchainOutOfDate signals that the swapchain no longer matches the
	// surface and must be recreated before the frame loop can continue. It is
	// the one recoverable presentation error.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	// ErrWaitCancelled is returned when a fence wait is abandoned because its
	// context was cancelled.
	ErrWaitCancelled = errors.New("wait cancelled")
)
