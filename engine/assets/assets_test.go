package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpv(t *testing.T, dir, name string, words []uint32) string {
	t.Helper()
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	path := filepath.Join(dir, name+".spv")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestBytesToBytecodeLittleEndian(t *testing.T) {
	b := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	words := bytesToBytecode(b)

	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x07230203), words[0])
	assert.Equal(t, uint32(0x00010000), words[1])
}

func TestShaderLibraryLoad(t *testing.T) {
	dir := t.TempDir()
	writeSpv(t, dir, "triangle.vert", []uint32{0x07230203, 42, 7})

	sl, err := NewShaderLibrary(dir)
	require.NoError(t, err)
	require.NoError(t, sl.Initialize())
	defer sl.Shutdown()

	blob, err := sl.Load("triangle.vert")
	require.NoError(t, err)
	assert.Equal(t, "triangle.vert", blob.Name)
	assert.Equal(t, []uint32{0x07230203, 42, 7}, blob.Words)
}

func TestShaderLibraryLoadMissing(t *testing.T) {
	sl, err := NewShaderLibrary(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sl.Initialize())
	defer sl.Shutdown()

	_, err = sl.Load("nope")
	assert.Error(t, err)
}

func TestShaderLibraryCachesAndInvalidates(t *testing.T) {
	dir := t.TempDir()
	path := writeSpv(t, dir, "triangle.frag", []uint32{1})

	// No Initialize here: the watcher would invalidate on its own and race
	// the cache assertions.
	sl, err := NewShaderLibrary(dir)
	require.NoError(t, err)
	defer sl.Shutdown()

	first, err := sl.Load("triangle.frag")
	require.NoError(t, err)

	// Rewrite the file; the cached blob must survive until invalidation.
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, 2)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	cached, err := sl.Load("triangle.frag")
	require.NoError(t, err)
	assert.Equal(t, first.Words, cached.Words)

	sl.Invalidate("triangle.frag")
	reloaded, err := sl.Load("triangle.frag")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, reloaded.Words)
}

func TestShaderLibraryWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeSpv(t, dir, "triangle.vert", []uint32{1})

	sl, err := NewShaderLibrary(dir)
	require.NoError(t, err)
	require.NoError(t, sl.Initialize())
	defer sl.Shutdown()

	_, err = sl.Load("triangle.vert")
	require.NoError(t, err)

	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, 9)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	select {
	case name := <-sl.Modified:
		assert.Equal(t, "triangle.vert", name)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reported the shader change")
	}
}
