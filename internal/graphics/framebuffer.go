package graphics

import (
	"fmt"

	"mini-render/internal/gpu"
	"mini-render/internal/scene"
)

// FramebufferError reports an incomplete render target.
type FramebufferError struct {
	Target string
	Status gpu.FramebufferStatus
}

func (e *FramebufferError) Error() string {
	return fmt.Sprintf("framebuffer %s is not complete: %s", e.Target, e.Status)
}

var targetParams = gpu.TextureParams{
	MinFilter: gpu.Nearest,
	MagFilter: gpu.Nearest,
	WrapS:     gpu.ClampToEdge,
	WrapT:     gpu.ClampToEdge,
}

func newTargetTexture(dev gpu.Device, format gpu.TextureFormat, w, h int) uint32 {
	tex := dev.CreateTexture()
	dev.BindTexture(tex)
	dev.TexParameters(targetParams)
	dev.TexImage2D(format, w, h, nil)
	return tex
}

// ShadowMap is a square depth target rendered from one spot light.
type ShadowMap struct {
	Size         int
	ColorTexture uint32
	DepthTexture uint32
	Framebuffer  uint32
}

// NewShadowMap allocates a color and a depth texture of size x size and
// attaches them to a new framebuffer.
func NewShadowMap(dev gpu.Device, size int) (*ShadowMap, error) {
	sm := &ShadowMap{Size: size}
	sm.Framebuffer = dev.CreateFramebuffer()
	dev.BindFramebuffer(sm.Framebuffer)

	sm.ColorTexture = newTargetTexture(dev, gpu.RGBA8, size, size)
	sm.DepthTexture = newTargetTexture(dev, gpu.Depth16, size, size)
	dev.FramebufferTexture2D(gpu.ColorAttachment0, sm.ColorTexture)
	dev.FramebufferTexture2D(gpu.DepthAttachment, sm.DepthTexture)

	status := dev.CheckFramebufferStatus()
	dev.BindTexture(0)
	dev.BindFramebuffer(0)
	if status != gpu.FramebufferComplete {
		sm.Delete(dev)
		return nil, &FramebufferError{Target: "shadow map", Status: status}
	}
	return sm, nil
}

// Target returns the handles in the form the scene stores per slot.
func (sm *ShadowMap) Target() scene.ShadowTarget {
	return scene.ShadowTarget{
		ColorTexture: sm.ColorTexture,
		DepthTexture: sm.DepthTexture,
		Framebuffer:  sm.Framebuffer,
	}
}

func (sm *ShadowMap) Delete(dev gpu.Device) {
	dev.DeleteFramebuffer(sm.Framebuffer)
	dev.DeleteTexture(sm.ColorTexture)
	dev.DeleteTexture(sm.DepthTexture)
	*sm = ShadowMap{}
}

// G-Buffer channels, in attachment order.
const (
	GBufferPosition = iota
	GBufferNormal
	GBufferColor
	GBufferDepth
	GBufferChannels
)

// GBuffer is the deferred pipeline's multi-target framebuffer.
type GBuffer struct {
	Width, Height int
	Textures      [GBufferChannels]uint32
	DepthTexture  uint32
	Framebuffer   uint32
}

var gbufferFormats = [GBufferChannels]gpu.TextureFormat{
	GBufferPosition: gpu.RGBA16F,
	GBufferNormal:   gpu.RGBA16F,
	GBufferColor:    gpu.RGBA8,
	GBufferDepth:    gpu.RGBA8,
}

// NewGBuffer allocates four color targets and a depth attachment and
// enables drawing to all four.
func NewGBuffer(dev gpu.Device, width, height int) (*GBuffer, error) {
	if n := dev.Capabilities().MaxDrawBuffers; n < GBufferChannels {
		return nil, fmt.Errorf("g-buffer needs %d draw buffers, device has %d", GBufferChannels, n)
	}

	gb := &GBuffer{Width: width, Height: height}
	gb.Framebuffer = dev.CreateFramebuffer()
	dev.BindFramebuffer(gb.Framebuffer)

	attachments := make([]gpu.Attachment, GBufferChannels)
	for i := range gb.Textures {
		gb.Textures[i] = newTargetTexture(dev, gbufferFormats[i], width, height)
		attachments[i] = gpu.ColorAttachment(i)
		dev.FramebufferTexture2D(attachments[i], gb.Textures[i])
	}
	gb.DepthTexture = newTargetTexture(dev, gpu.Depth24, width, height)
	dev.FramebufferTexture2D(gpu.DepthAttachment, gb.DepthTexture)
	dev.DrawBuffers(attachments)

	status := dev.CheckFramebufferStatus()
	dev.BindTexture(0)
	dev.BindFramebuffer(0)
	if status != gpu.FramebufferComplete {
		gb.Delete(dev)
		return nil, &FramebufferError{Target: "g-buffer", Status: status}
	}
	return gb, nil
}

func (gb *GBuffer) Delete(dev gpu.Device) {
	dev.DeleteFramebuffer(gb.Framebuffer)
	for _, t := range gb.Textures {
		dev.DeleteTexture(t)
	}
	dev.DeleteTexture(gb.DepthTexture)
	*gb = GBuffer{}
}
