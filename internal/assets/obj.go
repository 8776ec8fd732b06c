package assets

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Mesh is an indexed triangle list with one position, normal and uv per
// vertex. Vertices are deduplicated by their position/uv/normal triple.
type Mesh struct {
	Name      string
	Indices   []uint32
	Positions []float32 // xyz
	Normals   []float32 // xyz
	TexCoords []float32 // uv
}

// VertexCount is the number of unique vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// ParseError describes a malformed mesh or material line. Missing names the
// absent face component ("vertex", "uv" or "normal") when that is the cause.
type ParseError struct {
	File    string
	Line    int
	Missing string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("assets: %s:%d: face is missing a %s index: %s", e.File, e.Line, e.Missing, e.Reason)
	}
	return fmt.Sprintf("assets: %s:%d: %s", e.File, e.Line, e.Reason)
}

var missingHint = [3]struct{ name, reason string }{
	{"vertex", "face definitions require a vertex index"},
	{"uv", "face definitions require a texture index, re-export a UV-mapped model"},
	{"normal", "face definitions require a normal index, re-export with normals enabled"},
}

type objParser struct {
	file string
	line int

	v, vn [][3]float32
	vt    [][2]float32

	known map[[3]int]uint32
	mesh  *Mesh
}

// ParseOBJ reads a Wavefront OBJ mesh. Faces must carry v/vt/vn triples;
// polygons are fan-triangulated and negative indices count from the end.
func ParseOBJ(name string, r io.Reader) (*Mesh, error) {
	p := &objParser{
		file:  name,
		known: make(map[[3]int]uint32),
		mesh:  &Mesh{Name: name},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.parseLine(fields); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", name, err)
	}
	return p.mesh, nil
}

func (p *objParser) fail(format string, args ...any) error {
	return &ParseError{File: p.file, Line: p.line, Reason: fmt.Sprintf(format, args...)}
}

func (p *objParser) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		f, err := p.floats(fields, 3)
		if err != nil {
			return err
		}
		p.v = append(p.v, [3]float32{f[0], f[1], f[2]})
	case "vt":
		f, err := p.floats(fields, 2)
		if err != nil {
			return err
		}
		p.vt = append(p.vt, [2]float32{f[0], f[1]})
	case "vn":
		f, err := p.floats(fields, 3)
		if err != nil {
			return err
		}
		p.vn = append(p.vn, [3]float32{f[0], f[1], f[2]})
	case "f":
		return p.face(fields[1:])
	}
	// g, o, s, usemtl, mtllib and anything else carry nothing we draw.
	return nil
}

func (p *objParser) floats(fields []string, n int) ([]float32, error) {
	if len(fields) < n+1 {
		return nil, p.fail("%q needs %d components, got %d", fields[0], n, len(fields)-1)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return nil, p.fail("%q component %d: %v", fields[0], i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) face(corners []string) error {
	if len(corners) < 3 {
		return p.fail("face needs at least 3 vertices, got %d", len(corners))
	}

	idx := make([]uint32, len(corners))
	for i, c := range corners {
		key, err := p.resolve(c)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(key)
	}

	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Indices = append(p.mesh.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// resolve turns "a/b/c" into zero-based indices into v, vt and vn.
func (p *objParser) resolve(corner string) ([3]int, error) {
	var key [3]int
	parts := strings.Split(corner, "/")
	lens := [3]int{len(p.v), len(p.vt), len(p.vn)}

	for i := 0; i < 3; i++ {
		if i >= len(parts) || parts[i] == "" {
			return key, &ParseError{File: p.file, Line: p.line, Missing: missingHint[i].name, Reason: missingHint[i].reason}
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n == 0 {
			return key, p.fail("bad %s index %q", missingHint[i].name, parts[i])
		}
		if n < 0 {
			n = lens[i] + n
		} else {
			n--
		}
		if n < 0 || n >= lens[i] {
			return key, p.fail("%s index %s out of range (%d declared)", missingHint[i].name, parts[i], lens[i])
		}
		key[i] = n
	}
	if len(parts) > 3 {
		return key, p.fail("face vertex %q has more than 3 components", corner)
	}
	return key, nil
}

func (p *objParser) vertex(key [3]int) uint32 {
	if i, ok := p.known[key]; ok {
		return i
	}
	m := p.mesh
	i := uint32(m.VertexCount())
	pos, uv, n := p.v[key[0]], p.vt[key[1]], p.vn[key[2]]
	m.Positions = append(m.Positions, pos[0], pos[1], pos[2])
	m.TexCoords = append(m.TexCoords, uv[0], uv[1])
	m.Normals = append(m.Normals, n[0], n[1], n[2])
	p.known[key] = i
	return i
}
