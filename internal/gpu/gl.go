package gpu

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLDevice drives the OpenGL context current on the calling thread.
type GLDevice struct {
	vao  uint32
	caps Capabilities
}

// NewGLDevice loads the GL entry points. A context must already be current.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("could not initialize OpenGL: %w", err)
	}

	d := &GLDevice{}

	var maxDrawBuffers int32
	gl.GetIntegerv(gl.MAX_DRAW_BUFFERS, &maxDrawBuffers)
	d.caps = Capabilities{
		Version:        gl.GoStr(gl.GetString(gl.VERSION)),
		DepthTexture:   true, // core since 1.4
		MaxDrawBuffers: int(maxDrawBuffers),
	}

	// Core profile refuses attribute pointers without a bound VAO.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	return d, nil
}

// Release deletes the device's vertex array.
func (d *GLDevice) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func (d *GLDevice) Capabilities() Capabilities { return d.caps }

func (d *GLDevice) CreateShader(stage ShaderStage) uint32 {
	if stage == FragmentStage {
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return gl.CreateShader(gl.VERTEX_SHADER)
}

func (d *GLDevice) ShaderSource(shader uint32, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (d *GLDevice) CompileShader(shader uint32) bool {
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *GLDevice) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *GLDevice) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *GLDevice) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *GLDevice) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *GLDevice) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (d *GLDevice) LinkProgram(program uint32) bool {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *GLDevice) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *GLDevice) ActiveAttribs(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)

	names := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		buf := make([]uint8, maxLen+1)
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(program, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		names = append(names, string(buf[:length]))
	}
	return names
}

func (d *GLDevice) ActiveUniforms(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	names := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		buf := make([]uint8, maxLen+1)
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		// Arrays report their first element as "name[0]".
		names = append(names, strings.TrimSuffix(string(buf[:length]), "[0]"))
	}
	return names
}

func (d *GLDevice) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *GLDevice) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *GLDevice) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *GLDevice) CreateBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (d *GLDevice) BindBuffer(target BufferTarget, buffer uint32) {
	gl.BindBuffer(glBufferTarget(target), buffer)
}

func (d *GLDevice) BufferFloat32(target BufferTarget, data []float32) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(glBufferTarget(target), len(data)*4, ptr, gl.STATIC_DRAW)
}

func (d *GLDevice) BufferUint32(target BufferTarget, data []uint32) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(glBufferTarget(target), len(data)*4, ptr, gl.STATIC_DRAW)
}

func (d *GLDevice) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *GLDevice) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *GLDevice) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (d *GLDevice) VertexAttribPointer(index uint32, size int32) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, 0, 0)
}

func (d *GLDevice) CreateTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (d *GLDevice) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (d *GLDevice) BindTexture(texture uint32) { gl.BindTexture(gl.TEXTURE_2D, texture) }

func (d *GLDevice) TexParameters(p TextureParams) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(p.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(p.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(p.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(p.WrapT))
}

func (d *GLDevice) TexImage2D(format TextureFormat, width, height int, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}

	switch format {
	case RGBA16F:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, ptr)
	case Depth16:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT16, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT, ptr)
	case Depth24:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, ptr)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	}
}

func (d *GLDevice) GenerateMipmap() { gl.GenerateMipmap(gl.TEXTURE_2D) }

func (d *GLDevice) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (d *GLDevice) CreateFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (d *GLDevice) BindFramebuffer(framebuffer uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
}

func (d *GLDevice) FramebufferTexture2D(attachment Attachment, texture uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, glAttachment(attachment), gl.TEXTURE_2D, texture, 0)
}

func (d *GLDevice) CheckFramebufferStatus() FramebufferStatus {
	switch gl.CheckFramebufferStatus(gl.FRAMEBUFFER) {
	case gl.FRAMEBUFFER_COMPLETE:
		return FramebufferComplete
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return FramebufferIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return FramebufferIncompleteMissingAttachment
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return FramebufferUnsupported
	}
	return FramebufferUndefined
}

func (d *GLDevice) DrawBuffers(attachments []Attachment) {
	if len(attachments) == 0 {
		return
	}
	bufs := make([]uint32, len(attachments))
	for i, a := range attachments {
		bufs[i] = glAttachment(a)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (d *GLDevice) DeleteFramebuffer(framebuffer uint32) {
	gl.DeleteFramebuffers(1, &framebuffer)
}

func (d *GLDevice) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *GLDevice) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *GLDevice) Clear(mask ClearMask) {
	var bits uint32
	if mask&ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *GLDevice) Enable(c Capability) { gl.Enable(glCapability(c)) }

func (d *GLDevice) Disable(c Capability) { gl.Disable(glCapability(c)) }

func (d *GLDevice) CullFace(f Face) {
	if f == Front {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (d *GLDevice) ColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

func (d *GLDevice) DepthMask(write bool) { gl.DepthMask(write) }

func (d *GLDevice) DepthFunc(f DepthFunc) {
	switch f {
	case LessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case Equal:
		gl.DepthFunc(gl.EQUAL)
	case Always:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (d *GLDevice) BlendFunc(src, dst BlendFactor) {
	gl.BlendFunc(glBlendFactor(src), glBlendFactor(dst))
}

func (d *GLDevice) UniformMatrix4(location int32, m *mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *GLDevice) UniformMatrix3(location int32, m *mgl32.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (d *GLDevice) Uniform3f(location int32, v mgl32.Vec3) {
	gl.Uniform3f(location, v[0], v[1], v[2])
}

func (d *GLDevice) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *GLDevice) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *GLDevice) DrawElements(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (d *GLDevice) DrawArrays(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func glBufferTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glCapability(c Capability) uint32 {
	switch c {
	case Blend:
		return gl.BLEND
	case CullFace:
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func glBlendFactor(f BlendFactor) uint32 {
	switch f {
	case Zero:
		return gl.ZERO
	case SrcAlpha:
		return gl.SRC_ALPHA
	case OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	}
	return gl.ONE
}

func glAttachment(a Attachment) uint32 {
	if a == DepthAttachment {
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0 + uint32(a-ColorAttachment0)
}

func glFilter(f Filter) int32 {
	switch f {
	case Linear:
		return gl.LINEAR
	case LinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	}
	return gl.NEAREST
}

func glWrap(w Wrap) int32 {
	if w == ClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}
