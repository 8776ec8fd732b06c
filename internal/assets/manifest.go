package assets

import (
	"fmt"
	"io"
	"io/fs"

	"mini-render/internal/entity"

	"gopkg.in/yaml.v3"
)

// Manifest lists everything a Store loads in one batch.
//
//	shaders: [depth.vert, depth.frag]
//	programs:
//	  depth: [depth.vert, depth.frag]
//	models:
//	  cube: {meshes: [cube.obj], materials: [cube.mtl], textures: [crate.png]}
type Manifest struct {
	Shaders  []string                 `yaml:"shaders"`
	Programs map[string][2]string     `yaml:"programs"`
	Models   map[string]*entity.Model `yaml:"models"`
}

// ReadManifest decodes a YAML manifest and checks that every program
// references a listed shader.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("assets: manifest: %w", err)
	}

	listed := make(map[string]bool, len(m.Shaders))
	for _, s := range m.Shaders {
		listed[s] = true
	}
	for name, pair := range m.Programs {
		for _, s := range pair {
			if !listed[s] {
				return nil, fmt.Errorf("assets: manifest: program %q uses unlisted shader %q", name, s)
			}
		}
	}
	for name, model := range m.Models {
		if model == nil {
			model = &entity.Model{}
			m.Models[name] = model
		}
		model.Name = name
	}
	return &m, nil
}

// LoadManifest reads the manifest at path inside fsys.
func LoadManifest(fsys fs.FS, path string) (*Manifest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: manifest: %w", err)
	}
	defer f.Close()
	return ReadManifest(f)
}
