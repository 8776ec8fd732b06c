// Package gpu defines the slice of the graphics API the renderer drives.
// NewGLDevice backs it with OpenGL 4.1 core; gputest.Recorder records it.
package gpu

import "github.com/go-gl/mathgl/mgl32"

type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type Capability int

const (
	DepthTest Capability = iota
	Blend
	CullFace
)

type Face int

const (
	Front Face = iota
	Back
)

type DepthFunc int

const (
	Less DepthFunc = iota
	LessEqual
	Equal
	Always
)

type BlendFactor int

const (
	One BlendFactor = iota
	Zero
	SrcAlpha
	OneMinusSrcAlpha
)

type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

type Attachment int

const (
	ColorAttachment0 Attachment = iota
	ColorAttachment1
	ColorAttachment2
	ColorAttachment3
	DepthAttachment
)

// ColorAttachment returns the i-th color attachment point.
func ColorAttachment(i int) Attachment {
	return ColorAttachment0 + Attachment(i)
}

type TextureFormat int

const (
	RGBA8 TextureFormat = iota
	RGBA16F
	Depth16
	Depth24
)

type Filter int

const (
	Nearest Filter = iota
	Linear
	LinearMipmapNearest
)

type Wrap int

const (
	Repeat Wrap = iota
	ClampToEdge
)

// TextureParams is applied to the currently bound 2D texture.
type TextureParams struct {
	MinFilter Filter
	MagFilter Filter
	WrapS     Wrap
	WrapT     Wrap
}

type FramebufferStatus int

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferIncompleteMissingAttachment
	FramebufferUnsupported
	FramebufferUndefined
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	case FramebufferUnsupported:
		return "unsupported"
	}
	return "undefined"
}

// Capabilities reports what the context supports.
type Capabilities struct {
	Version        string
	DepthTexture   bool
	MaxDrawBuffers int
}

// Device is a single-threaded handle on a graphics context. Handle 0 means
// "none" for every object kind, like in OpenGL.
type Device interface {
	Capabilities() Capabilities

	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	LinkProgram(program uint32) bool
	ProgramInfoLog(program uint32) string
	ActiveAttribs(program uint32) []string
	ActiveUniforms(program uint32) []string
	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	CreateBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferFloat32(target BufferTarget, data []float32)
	BufferUint32(target BufferTarget, data []uint32)
	DeleteBuffer(buffer uint32)

	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32)

	CreateTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(texture uint32)
	TexParameters(p TextureParams)
	TexImage2D(format TextureFormat, width, height int, pixels []byte)
	GenerateMipmap()
	DeleteTexture(texture uint32)

	CreateFramebuffer() uint32
	BindFramebuffer(framebuffer uint32)
	FramebufferTexture2D(attachment Attachment, texture uint32)
	CheckFramebufferStatus() FramebufferStatus
	DrawBuffers(attachments []Attachment)
	DeleteFramebuffer(framebuffer uint32)

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	Disable(c Capability)
	CullFace(f Face)
	ColorMask(r, g, b, a bool)
	DepthMask(write bool)
	DepthFunc(f DepthFunc)
	BlendFunc(src, dst BlendFactor)

	UniformMatrix4(location int32, m *mgl32.Mat4)
	UniformMatrix3(location int32, m *mgl32.Mat3)
	Uniform3f(location int32, v mgl32.Vec3)
	Uniform1f(location int32, v float32)
	Uniform1i(location int32, v int32)

	DrawElements(count int32)
	DrawArrays(first, count int32)
}
