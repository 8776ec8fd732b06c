package renderer

import (
	"errors"
	"fmt"
)

// Initialization stages, in the order they run.
const (
	StageExtensions = "extensions"
	StageShaders    = "shaders"
	StageBuffers    = "buffers"
	StageMaterials  = "materials"
	StageTextures   = "textures"
	StageShadowMaps = "shadow-maps"
	StageGBuffer    = "g-buffer"
)

var (
	ErrMissingProgram    = errors.New("renderer: required program not in assets")
	ErrMissingCapability = errors.New("renderer: device lacks a required capability")
)

// InitError reports which initialization stage failed.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("renderer: init %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
