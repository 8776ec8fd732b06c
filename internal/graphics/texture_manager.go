package graphics

import (
	"fmt"
	"sort"
	"sync"

	"mini-render/internal/assets"
	"mini-render/internal/gpu"
)

// TextureManager owns uploaded textures keyed by asset name.
type TextureManager struct {
	dev gpu.Device

	mu       sync.RWMutex
	textures map[string]uint32
}

func NewTextureManager(dev gpu.Device) *TextureManager {
	return &TextureManager{dev: dev, textures: make(map[string]uint32)}
}

// Upload returns the texture for t.Name, uploading it on first use.
func (m *TextureManager) Upload(t *assets.Texture) (uint32, error) {
	m.mu.RLock()
	if tex, ok := m.textures[t.Name]; ok {
		m.mu.RUnlock()
		return tex, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double check locking
	if tex, ok := m.textures[t.Name]; ok {
		return tex, nil
	}

	tex, err := UploadTexture(m.dev, t)
	if err != nil {
		return 0, err
	}
	m.textures[t.Name] = tex
	return tex, nil
}

// Get returns an uploaded texture.
func (m *TextureManager) Get(name string) (uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[name]
	if !ok {
		return 0, fmt.Errorf("texture %q was not uploaded", name)
	}
	return tex, nil
}

func (m *TextureManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.textures))
	for n := range m.textures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Release deletes every texture.
func (m *TextureManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, tex := range m.textures {
		m.dev.DeleteTexture(tex)
		delete(m.textures, name)
	}
}
