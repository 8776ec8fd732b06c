// Command shadercheck compiles and links every program in an asset
// manifest against the local OpenGL 4.1 driver and reports the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"mini-render/internal/assets"
	"mini-render/internal/gpu"
	"mini-render/internal/graphics"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	root := flag.String("root", "assets", "asset root directory")
	manifestPath := flag.String("manifest", "manifest.yaml", "manifest path inside the asset root")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)

	window, err := glfw.CreateWindow(64, 64, "shadercheck", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()

	dev, err := gpu.NewGLDevice()
	if err != nil {
		panic(err)
	}
	defer dev.Release()

	caps := dev.Capabilities()
	fmt.Printf("OpenGL %s, %d draw buffers\n", caps.Version, caps.MaxDrawBuffers)

	fsys := os.DirFS(*root)
	m, err := assets.LoadManifest(fsys, *manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	store := assets.NewStore(fsys)
	if err := store.Load(context.Background(), m); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := 0
	if err := checkInvariance(store, depthEqualPrograms); err != nil {
		fmt.Printf("FAIL %-24s %v\n", "invariance", err)
		failed++
	}
	for _, name := range store.Programs() {
		if err := check(dev, store, name); err != nil {
			fmt.Printf("FAIL %-24s %v\n", name, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", name)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(dev gpu.Device, store *assets.Store, name string) error {
	pair, err := store.Program(name)
	if err != nil {
		return err
	}
	vs, err := store.Shader(pair[0])
	if err != nil {
		return err
	}
	fs, err := store.Shader(pair[1])
	if err != nil {
		return err
	}
	p, err := graphics.BuildProgram(dev, name, vs, fs)
	if err != nil {
		return err
	}
	defer p.Delete()
	fmt.Printf("     %s attribs=%s\n", name, p.Attribs)
	return nil
}

// depthEqualPrograms draw with the depth program's output as their depth
// reference (EQUAL test), so they must produce bit-identical positions.
var depthEqualPrograms = []string{"depth", "pointLight", "spotLight", "gBuffer"}

const (
	invariantDecl = "invariant gl_Position;"
	positionExpr  = "gl_Position = u_ProjectionMatrix * u_ViewMatrix * (u_ModelMatrix * vec4(a_VertexPosition, 1.0));"
)

type shaderSource interface {
	Program(name string) ([2]string, error)
	Shader(name string) (string, error)
}

// checkInvariance verifies that every named program's vertex shader
// declares an invariant gl_Position computed by positionExpr.
func checkInvariance(src shaderSource, programs []string) error {
	for _, name := range programs {
		pair, err := src.Program(name)
		if err != nil {
			return err
		}
		vs, err := src.Shader(pair[0])
		if err != nil {
			return err
		}
		if !strings.Contains(vs, invariantDecl) {
			return fmt.Errorf("%s: %s does not declare %q", name, pair[0], invariantDecl)
		}
		if !strings.Contains(vs, positionExpr) {
			return fmt.Errorf("%s: %s computes gl_Position differently from the depth pre-pass", name, pair[0])
		}
	}
	return nil
}
