package graphics

import (
	"fmt"
	"strings"

	"mini-render/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute names and the fixed slots every program binds them to.
const (
	AttrPosition = "a_VertexPosition"
	AttrNormal   = "a_VertexNormal"
	AttrTexCoord = "a_TextureCoord"

	PositionSlot uint32 = 0
	NormalSlot   uint32 = 1
	TexCoordSlot uint32 = 2
)

// AttribMask is the set of vertex attributes a program declares.
type AttribMask uint8

const (
	AttribPosition AttribMask = 1 << iota
	AttribNormal
	AttribTexCoord
)

var attribSlots = []struct {
	name string
	slot uint32
	bit  AttribMask
}{
	{AttrPosition, PositionSlot, AttribPosition},
	{AttrNormal, NormalSlot, AttribNormal},
	{AttrTexCoord, TexCoordSlot, AttribTexCoord},
}

func (m AttribMask) Has(bits AttribMask) bool { return m&bits == bits }

func (m AttribMask) String() string {
	var parts []string
	for _, a := range attribSlots {
		if m.Has(a.bit) {
			parts = append(parts, a.name)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ShaderCompileError is returned when one stage of a program fails to compile.
type ShaderCompileError struct {
	Program string
	Stage   gpu.ShaderStage
	Log     string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader of program %q: %s", e.Stage, e.Program, strings.TrimSpace(e.Log))
}

// ShaderLinkError is returned when a program fails to link.
type ShaderLinkError struct {
	Program string
	Log     string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("failed to link program %q: %s", e.Program, strings.TrimSpace(e.Log))
}

// Program is a linked shader program with its attribute and uniform
// locations cached at link time.
type Program struct {
	Name    string
	ID      uint32
	Attribs AttribMask

	dev      gpu.Device
	attribs  map[string]int32
	uniforms map[string]int32
}

// BuildProgram compiles and links a program. On any failure every object
// created so far is deleted.
func BuildProgram(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := compileShader(dev, name, gpu.VertexStage, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(vs)

	fs, err := compileShader(dev, name, gpu.FragmentStage, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(fs)

	id := dev.CreateProgram()
	dev.AttachShader(id, vs)
	dev.AttachShader(id, fs)
	for _, a := range attribSlots {
		dev.BindAttribLocation(id, a.slot, a.name)
	}
	if !dev.LinkProgram(id) {
		log := dev.ProgramInfoLog(id)
		dev.DeleteProgram(id)
		return nil, &ShaderLinkError{Program: name, Log: log}
	}

	p := &Program{
		Name:     name,
		ID:       id,
		dev:      dev,
		attribs:  map[string]int32{},
		uniforms: map[string]int32{},
	}
	for _, n := range dev.ActiveAttribs(id) {
		p.attribs[n] = dev.AttribLocation(id, n)
	}
	for _, n := range dev.ActiveUniforms(id) {
		p.uniforms[n] = dev.UniformLocation(id, n)
	}
	for _, a := range attribSlots {
		if _, ok := p.attribs[a.name]; ok {
			p.Attribs |= a.bit
		}
	}
	return p, nil
}

func compileShader(dev gpu.Device, program string, stage gpu.ShaderStage, src string) (uint32, error) {
	shader := dev.CreateShader(stage)
	dev.ShaderSource(shader, src)
	if !dev.CompileShader(shader) {
		log := dev.ShaderInfoLog(shader)
		dev.DeleteShader(shader)
		return 0, &ShaderCompileError{Program: program, Stage: stage, Log: log}
	}
	return shader, nil
}

// Use activates the program and enables exactly the attribute arrays it
// declares.
func (p *Program) Use() {
	p.dev.UseProgram(p.ID)
	for _, a := range attribSlots {
		if p.Attribs.Has(a.bit) {
			p.dev.EnableVertexAttribArray(a.slot)
		} else {
			p.dev.DisableVertexAttribArray(a.slot)
		}
	}
}

// Uniform returns the location of an active uniform.
func (p *Program) Uniform(name string) (int32, bool) {
	loc, ok := p.uniforms[name]
	return loc, ok
}

// Attrib returns the location of an active attribute.
func (p *Program) Attrib(name string) (int32, bool) {
	loc, ok := p.attribs[name]
	return loc, ok
}

// The setters are no-ops for uniforms the program does not use.

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.UniformMatrix4(loc, &m)
	}
}

func (p *Program) SetMat3(name string, m mgl32.Mat3) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.UniformMatrix3(loc, &m)
	}
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.Uniform3f(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.Uniform1f(loc, v)
	}
}

func (p *Program) SetInt(name string, v int32) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.Uniform1i(loc, v)
	}
}

func (p *Program) Delete() {
	if p.ID != 0 {
		p.dev.DeleteProgram(p.ID)
		p.ID = 0
	}
}
