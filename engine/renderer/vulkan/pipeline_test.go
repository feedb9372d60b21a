package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShaderCodeSize(t *testing.T) {
	// The create info measures in bytes, four per SPIR-V word.
	var size uint64 = shaderCodeSize([]uint32{0x07230203, 1, 2})
	assert.Equal(t, uint64(12), size)
	assert.Equal(t, uint64(0), shaderCodeSize(nil))
}
