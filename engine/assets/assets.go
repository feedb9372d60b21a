package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/orion/engine/core"
)

// ShaderBlob is a compiled SPIR-V module as read from disk. The renderer
// treats the words as opaque input to pipeline creation.
type ShaderBlob struct {
	Name       string
	FullPath   string
	Words      []uint32
	LastLoaded time.Time
}

// ShaderLibrary loads compiled shader byte-code by name and watches the
// shader directory so that recompiled modules can be picked up without
// restarting the application.
type ShaderLibrary struct {
	dir   string
	blobs map[string]*ShaderBlob

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool

	// Receives the names of shaders whose files changed on disk.
	Modified chan string
}

func NewShaderLibrary(dir string) (*ShaderLibrary, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ShaderLibrary{
		dir:      dir,
		blobs:    make(map[string]*ShaderBlob),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		Modified: make(chan string, 8),
	}, nil
}

func (sl *ShaderLibrary) Initialize() error {
	if sl.isClosed {
		return errors.New("shader library already closed")
	}
	if err := sl.fsnotify.Add(sl.dir); err != nil {
		return err
	}
	go sl.watch()
	return nil
}

// Load returns the SPIR-V words for the named shader, reading
// `<dir>/<name>.spv` on first use and serving the cached blob afterwards.
func (sl *ShaderLibrary) Load(name string) (*ShaderBlob, error) {
	sl.mutex.RLock()
	blob, ok := sl.blobs[name]
	sl.mutex.RUnlock()
	if ok {
		return blob, nil
	}

	path := filepath.Join(sl.dir, name+".spv")
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read shader byte-code '%s': %s", path, err)
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("shader byte-code '%s' is not a whole number of SPIR-V words", path)
	}

	blob = &ShaderBlob{
		Name:       name,
		FullPath:   path,
		Words:      bytesToBytecode(data),
		LastLoaded: time.Now(),
	}

	sl.mutex.Lock()
	sl.blobs[name] = blob
	sl.mutex.Unlock()

	return blob, nil
}

// Invalidate drops the cached blob so the next Load rereads it from disk.
func (sl *ShaderLibrary) Invalidate(name string) {
	sl.mutex.Lock()
	delete(sl.blobs, name)
	sl.mutex.Unlock()
}

func (sl *ShaderLibrary) Shutdown() error {
	if sl.isClosed {
		return nil
	}
	sl.isClosed = true
	close(sl.done)
	return sl.fsnotify.Close()
}

func (sl *ShaderLibrary) watch() {
	for {
		select {
		case e, ok := <-sl.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(e.Name, ".spv") {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(e.Name), ".spv")
			core.LogInfo("shader '%s' changed on disk, invalidating", name)
			sl.Invalidate(name)
			select {
			case sl.Modified <- name:
			default:
				// Nobody listening; the invalidated cache entry is enough.
			}
		case err, ok := <-sl.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("shader watcher error: %s", err)
		case <-sl.done:
			return
		}
	}
}

// bytesToBytecode reinterprets little-endian SPIR-V bytes as 32-bit words.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	return byteCode
}
