package assets

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Material holds the Phong terms read from an MTL file.
type Material struct {
	Name      string
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Emissive  mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32
}

// DefaultMaterial is the fallback for models without a material: full
// ambient, no diffuse, emissive or specular.
func DefaultMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Ambient:   mgl32.Vec3{1, 1, 1},
		Shininess: 1,
	}
}

// ParseMTL reads Ka, Kd, Ke, Ks and Ns. Other statements are ignored.
func ParseMTL(name string, r io.Reader) (*Material, error) {
	m := &Material{Name: name}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		var dst *mgl32.Vec3
		switch fields[0] {
		case "Ka":
			dst = &m.Ambient
		case "Kd":
			dst = &m.Diffuse
		case "Ke":
			dst = &m.Emissive
		case "Ks":
			dst = &m.Specular
		case "Ns":
			if len(fields) < 2 {
				return nil, &ParseError{File: name, Line: line, Reason: "Ns needs a value"}
			}
			f, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, &ParseError{File: name, Line: line, Reason: fmt.Sprintf("Ns: %v", err)}
			}
			m.Shininess = float32(f)
			continue
		default:
			continue
		}

		if len(fields) < 4 {
			return nil, &ParseError{File: name, Line: line, Reason: fmt.Sprintf("%s needs 3 components", fields[0])}
		}
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return nil, &ParseError{File: name, Line: line, Reason: fmt.Sprintf("%s component %d: %v", fields[0], i, err)}
			}
			dst[i] = float32(f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", name, err)
	}
	return m, nil
}
