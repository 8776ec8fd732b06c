// Package assets loads shaders, meshes, materials and textures named by a
// manifest. Loading is a one-shot batch: Store.Load returns only after every
// asset is in memory, or with the first error.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"mini-render/internal/entity"
	"mini-render/internal/logger"
	"mini-render/internal/profiling"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("assets: not found")

const (
	ShaderDir = "shaders"
	ModelDir  = "models"
)

// Store holds loaded assets by file name.
type Store struct {
	fsys fs.FS

	// Concurrency bounds the number of files read at once; <= 0 means no limit.
	Concurrency int

	mu        sync.RWMutex
	shaders   map[string]string
	programs  map[string][2]string
	models    map[string]*entity.Model
	meshes    map[string]*Mesh
	materials map[string]*Material
	textures  map[string]*Texture
}

// NewStore reads shaders from ShaderDir and model files from ModelDir in fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:        fsys,
		Concurrency: 8,
		shaders:     map[string]string{},
		programs:    map[string][2]string{},
		models:      map[string]*entity.Model{},
		meshes:      map[string]*Mesh{},
		materials:   map[string]*Material{},
		textures:    map[string]*Texture{},
	}
}

// Load fetches everything m names concurrently. The first failure cancels
// the rest and nothing from the batch is kept.
func (s *Store) Load(ctx context.Context, m *Manifest) error {
	defer profiling.Track("assets.Load")()

	b := &batch{
		shaders:   map[string]string{},
		meshes:    map[string]*Mesh{},
		materials: map[string]*Material{},
		textures:  map[string]*Texture{},
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}

	seen := map[string]bool{}
	spawn := func(kind, dir, name string, load func(string, []byte) error) {
		if seen[kind+"/"+name] {
			return
		}
		seen[kind+"/"+name] = true
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(s.fsys, path.Join(dir, name))
			if err != nil {
				return fmt.Errorf("assets: load %s %s: %w", kind, name, err)
			}
			return load(name, data)
		})
	}

	for _, name := range m.Shaders {
		spawn("shader", ShaderDir, name, b.addShader)
	}
	for _, name := range sortedKeys(m.Models) {
		model := m.Models[name]
		for _, mesh := range model.Meshes {
			spawn("mesh", ModelDir, mesh, b.addMesh)
		}
		for _, mat := range model.Materials {
			spawn("material", ModelDir, mat, b.addMaterial)
		}
		for _, tex := range model.Textures {
			spawn("texture", ModelDir, tex, b.addTexture)
		}
	}

	if err := g.Wait(); err != nil {
		logger.Log.Error("asset batch failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range b.shaders {
		s.shaders[k] = v
	}
	for k, v := range m.Programs {
		s.programs[k] = v
	}
	for k, v := range m.Models {
		s.models[k] = v
	}
	for k, v := range b.meshes {
		s.meshes[k] = v
	}
	for k, v := range b.materials {
		s.materials[k] = v
	}
	for k, v := range b.textures {
		s.textures[k] = v
	}

	logger.Log.Info("assets loaded",
		zap.Int("shaders", len(b.shaders)),
		zap.Int("meshes", len(b.meshes)),
		zap.Int("materials", len(b.materials)),
		zap.Int("textures", len(b.textures)),
	)
	return nil
}

// batch collects results from loader goroutines.
type batch struct {
	mu        sync.Mutex
	shaders   map[string]string
	meshes    map[string]*Mesh
	materials map[string]*Material
	textures  map[string]*Texture
}

func (b *batch) addShader(name string, data []byte) error {
	b.mu.Lock()
	b.shaders[name] = string(data)
	b.mu.Unlock()
	return nil
}

func (b *batch) addMesh(name string, data []byte) error {
	mesh, err := ParseOBJ(name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.meshes[name] = mesh
	b.mu.Unlock()
	return nil
}

func (b *batch) addMaterial(name string, data []byte) error {
	mat, err := ParseMTL(name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.materials[name] = mat
	b.mu.Unlock()
	return nil
}

func (b *batch) addTexture(name string, data []byte) error {
	tex, err := DecodeTexture(name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.textures[name] = tex
	b.mu.Unlock()
	return nil
}

func lookup[T any](mu *sync.RWMutex, m map[string]T, kind, name string) (T, error) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	return v, nil
}

func (s *Store) Shader(name string) (string, error) {
	return lookup(&s.mu, s.shaders, "shader", name)
}

// Program returns the vertex and fragment shader names of a program.
func (s *Store) Program(name string) ([2]string, error) {
	return lookup(&s.mu, s.programs, "program", name)
}

func (s *Store) Model(name string) (*entity.Model, error) {
	return lookup(&s.mu, s.models, "model", name)
}

func (s *Store) Mesh(name string) (*Mesh, error) {
	return lookup(&s.mu, s.meshes, "mesh", name)
}

func (s *Store) Material(name string) (*Material, error) {
	return lookup(&s.mu, s.materials, "material", name)
}

func (s *Store) Texture(name string) (*Texture, error) {
	return lookup(&s.mu, s.textures, "texture", name)
}

// Programs lists program names in sorted order.
func (s *Store) Programs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.programs)
}

func (s *Store) Meshes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.meshes)
}

func (s *Store) Materials() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.materials)
}

func (s *Store) Textures() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.textures)
}

// Models returns every model keyed by name.
func (s *Store) Models() map[string]*entity.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*entity.Model, len(s.models))
	for k, v := range s.models {
		out[k] = v
	}
	return out
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
