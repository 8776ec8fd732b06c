// Package gputest provides a headless gpu.Device that records every call.
package gputest

import (
	"regexp"
	"sort"
	"strings"

	"mini-render/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

// Draw is a recorded draw with the state it was issued under.
type Draw struct {
	Program     uint32
	Framebuffer uint32
	Count       int32
	Arrays      bool
}

type shaderObj struct {
	stage gpu.ShaderStage
	src   string
}

type programObj struct {
	shaders  []uint32
	bound    map[string]uint32
	attribs  []string
	uniforms map[string]int32
}

// Recorder implements gpu.Device in memory. The zero value is not usable;
// call New.
type Recorder struct {
	Calls []Call
	Draws []Draw

	Caps gpu.Capabilities
	// CompileErrors makes compilation of the given stage fail with the log.
	CompileErrors map[gpu.ShaderStage]string
	// LinkError, when set, makes every link fail with this log.
	LinkError string
	// Status is returned by CheckFramebufferStatus.
	Status gpu.FramebufferStatus

	next        uint32
	shaders     map[uint32]*shaderObj
	programs    map[uint32]*programObj
	Program     uint32
	Framebuffer uint32
	Textures    map[uint32]uint32 // unit -> texture
	unit        uint32
	Live        map[string]map[uint32]bool
}

func New() *Recorder {
	return &Recorder{
		Caps:          gpu.Capabilities{Version: "recorder", DepthTexture: true, MaxDrawBuffers: 8},
		CompileErrors: map[gpu.ShaderStage]string{},
		shaders:       map[uint32]*shaderObj{},
		programs:      map[uint32]*programObj{},
		Textures:      map[uint32]uint32{},
		Live: map[string]map[uint32]bool{
			"shader": {}, "program": {}, "buffer": {}, "texture": {}, "framebuffer": {},
		},
	}
}

// Reset forgets recorded calls and draws but keeps object state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsOf returns the recorded calls of op in order.
func (r *Recorder) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// DrawsWith returns draws issued while program was in use.
func (r *Recorder) DrawsWith(program uint32) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.Program == program {
			out = append(out, d)
		}
	}
	return out
}

// ProgramWith returns the lowest-numbered program with an attached source
// containing marker, or 0.
func (r *Recorder) ProgramWith(marker string) uint32 {
	ids := make([]uint32, 0, len(r.programs))
	for id := range r.programs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		for _, sid := range r.programs[id].shaders {
			if s := r.shaders[sid]; s != nil && strings.Contains(s.src, marker) {
				return id
			}
		}
	}
	return 0
}

// LiveCount reports how many objects of kind ("buffer", "texture", ...) are
// still allocated.
func (r *Recorder) LiveCount(kind string) int {
	return len(r.Live[kind])
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) alloc(kind string) uint32 {
	r.next++
	r.Live[kind][r.next] = true
	return r.next
}

func (r *Recorder) Capabilities() gpu.Capabilities { return r.Caps }

func (r *Recorder) CreateShader(stage gpu.ShaderStage) uint32 {
	id := r.alloc("shader")
	r.shaders[id] = &shaderObj{stage: stage}
	r.record("CreateShader", stage, id)
	return id
}

func (r *Recorder) ShaderSource(shader uint32, src string) {
	if s, ok := r.shaders[shader]; ok {
		s.src = src
	}
	r.record("ShaderSource", shader)
}

func (r *Recorder) CompileShader(shader uint32) bool {
	r.record("CompileShader", shader)
	s, ok := r.shaders[shader]
	if !ok {
		return false
	}
	_, fail := r.CompileErrors[s.stage]
	return !fail
}

func (r *Recorder) ShaderInfoLog(shader uint32) string {
	if s, ok := r.shaders[shader]; ok {
		return r.CompileErrors[s.stage]
	}
	return ""
}

func (r *Recorder) DeleteShader(shader uint32) {
	delete(r.Live["shader"], shader)
	r.record("DeleteShader", shader)
}

func (r *Recorder) CreateProgram() uint32 {
	id := r.alloc("program")
	r.programs[id] = &programObj{bound: map[string]uint32{}, uniforms: map[string]int32{}}
	r.record("CreateProgram", id)
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	if p, ok := r.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
	r.record("AttachShader", program, shader)
}

func (r *Recorder) BindAttribLocation(program, index uint32, name string) {
	if p, ok := r.programs[program]; ok {
		p.bound[name] = index
	}
	r.record("BindAttribLocation", program, index, name)
}

var (
	attribDecl  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:in|attribute)\s+\w+\s+(\w+)\s*;`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)
)

// LinkProgram introspects attribute and uniform declarations from the
// attached sources, standing in for the driver's reflection.
func (r *Recorder) LinkProgram(program uint32) bool {
	r.record("LinkProgram", program)
	p, ok := r.programs[program]
	if !ok || r.LinkError != "" {
		return false
	}

	uniforms := map[string]bool{}
	for _, sid := range p.shaders {
		s := r.shaders[sid]
		if s == nil {
			continue
		}
		if s.stage == gpu.VertexStage {
			for _, m := range attribDecl.FindAllStringSubmatch(s.src, -1) {
				p.attribs = append(p.attribs, m[1])
			}
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(s.src, -1) {
			uniforms[m[1]] = true
		}
	}

	names := make([]string, 0, len(uniforms))
	for n := range uniforms {
		names = append(names, n)
	}
	sort.Strings(names)
	for i, n := range names {
		p.uniforms[n] = int32(i)
	}
	return true
}

func (r *Recorder) ProgramInfoLog(program uint32) string { return r.LinkError }

func (r *Recorder) ActiveAttribs(program uint32) []string {
	if p, ok := r.programs[program]; ok {
		return append([]string(nil), p.attribs...)
	}
	return nil
}

func (r *Recorder) ActiveUniforms(program uint32) []string {
	p, ok := r.programs[program]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(p.uniforms))
	for n := range p.uniforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	p, ok := r.programs[program]
	if !ok {
		return -1
	}
	if idx, ok := p.bound[name]; ok {
		return int32(idx)
	}
	for i, a := range p.attribs {
		if a == name {
			return int32(i)
		}
	}
	return -1
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	if p, ok := r.programs[program]; ok {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return -1
}

func (r *Recorder) UseProgram(program uint32) {
	r.Program = program
	r.record("UseProgram", program)
}

func (r *Recorder) DeleteProgram(program uint32) {
	delete(r.Live["program"], program)
	r.record("DeleteProgram", program)
}

func (r *Recorder) CreateBuffer() uint32 {
	id := r.alloc("buffer")
	r.record("CreateBuffer", id)
	return id
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	r.record("BindBuffer", target, buffer)
}

func (r *Recorder) BufferFloat32(target gpu.BufferTarget, data []float32) {
	r.record("BufferFloat32", target, len(data))
}

func (r *Recorder) BufferUint32(target gpu.BufferTarget, data []uint32) {
	r.record("BufferUint32", target, len(data))
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	delete(r.Live["buffer"], buffer)
	r.record("DeleteBuffer", buffer)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", index)
}

func (r *Recorder) DisableVertexAttribArray(index uint32) {
	r.record("DisableVertexAttribArray", index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32) {
	r.record("VertexAttribPointer", index, size)
}

func (r *Recorder) CreateTexture() uint32 {
	id := r.alloc("texture")
	r.record("CreateTexture", id)
	return id
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.unit = unit
	r.record("ActiveTexture", unit)
}

func (r *Recorder) BindTexture(texture uint32) {
	r.Textures[r.unit] = texture
	r.record("BindTexture", r.unit, texture)
}

func (r *Recorder) TexParameters(p gpu.TextureParams) { r.record("TexParameters", p) }

func (r *Recorder) TexImage2D(format gpu.TextureFormat, width, height int, pixels []byte) {
	r.record("TexImage2D", format, width, height, len(pixels))
}

func (r *Recorder) GenerateMipmap() { r.record("GenerateMipmap") }

func (r *Recorder) DeleteTexture(texture uint32) {
	delete(r.Live["texture"], texture)
	r.record("DeleteTexture", texture)
}

func (r *Recorder) CreateFramebuffer() uint32 {
	id := r.alloc("framebuffer")
	r.record("CreateFramebuffer", id)
	return id
}

func (r *Recorder) BindFramebuffer(framebuffer uint32) {
	r.Framebuffer = framebuffer
	r.record("BindFramebuffer", framebuffer)
}

func (r *Recorder) FramebufferTexture2D(attachment gpu.Attachment, texture uint32) {
	r.record("FramebufferTexture2D", attachment, texture)
}

func (r *Recorder) CheckFramebufferStatus() gpu.FramebufferStatus {
	r.record("CheckFramebufferStatus")
	return r.Status
}

func (r *Recorder) DrawBuffers(attachments []gpu.Attachment) {
	r.record("DrawBuffers", append([]gpu.Attachment(nil), attachments...))
}

func (r *Recorder) DeleteFramebuffer(framebuffer uint32) {
	delete(r.Live["framebuffer"], framebuffer)
	r.record("DeleteFramebuffer", framebuffer)
}

func (r *Recorder) Viewport(x, y, width, height int) {
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gpu.ClearMask) { r.record("Clear", mask) }

func (r *Recorder) Enable(c gpu.Capability) { r.record("Enable", c) }

func (r *Recorder) Disable(c gpu.Capability) { r.record("Disable", c) }

func (r *Recorder) CullFace(f gpu.Face) { r.record("CullFace", f) }

func (r *Recorder) ColorMask(red, green, blue, alpha bool) {
	r.record("ColorMask", red, green, blue, alpha)
}

func (r *Recorder) DepthMask(write bool) { r.record("DepthMask", write) }

func (r *Recorder) DepthFunc(f gpu.DepthFunc) { r.record("DepthFunc", f) }

func (r *Recorder) BlendFunc(src, dst gpu.BlendFactor) { r.record("BlendFunc", src, dst) }

func (r *Recorder) UniformMatrix4(location int32, m *mgl32.Mat4) {
	r.record("UniformMatrix4", location, *m)
}

func (r *Recorder) UniformMatrix3(location int32, m *mgl32.Mat3) {
	r.record("UniformMatrix3", location, *m)
}

func (r *Recorder) Uniform3f(location int32, v mgl32.Vec3) { r.record("Uniform3f", location, v) }

func (r *Recorder) Uniform1f(location int32, v float32) { r.record("Uniform1f", location, v) }

func (r *Recorder) Uniform1i(location int32, v int32) { r.record("Uniform1i", location, v) }

func (r *Recorder) DrawElements(count int32) {
	r.Draws = append(r.Draws, Draw{Program: r.Program, Framebuffer: r.Framebuffer, Count: count})
	r.record("DrawElements", count)
}

func (r *Recorder) DrawArrays(first, count int32) {
	r.Draws = append(r.Draws, Draw{Program: r.Program, Framebuffer: r.Framebuffer, Count: count, Arrays: true})
	r.record("DrawArrays", first, count)
}

var _ gpu.Device = (*Recorder)(nil)
