package graphics

import (
	"fmt"

	"mini-render/internal/assets"
	"mini-render/internal/gpu"
)

// Mesh is an uploaded indexed mesh. Attribute buffers are zero when the
// source had no data for them.
type Mesh struct {
	Name       string
	Indices    uint32
	Positions  uint32
	Normals    uint32
	TexCoords  uint32
	IndexCount int32
}

// UploadMesh copies m into GPU buffers.
func UploadMesh(dev gpu.Device, m *assets.Mesh) (*Mesh, error) {
	if err := validateMesh(m); err != nil {
		return nil, err
	}
	gm := &Mesh{Name: m.Name}
	gm.write(dev, m)
	return gm, nil
}

// Replace overwrites the mesh's buffers with m, keeping the same handles.
func (gm *Mesh) Replace(dev gpu.Device, m *assets.Mesh) error {
	if err := validateMesh(m); err != nil {
		return err
	}
	gm.write(dev, m)
	return nil
}

func validateMesh(m *assets.Mesh) error {
	n := m.VertexCount()
	if len(m.Indices) == 0 || n == 0 {
		return fmt.Errorf("mesh %s has no triangles", m.Name)
	}
	if len(m.Normals) != 3*n || len(m.TexCoords) != 2*n {
		return fmt.Errorf("mesh %s: attribute lengths disagree (%d vertices, %d normals, %d uvs)",
			m.Name, n, len(m.Normals)/3, len(m.TexCoords)/2)
	}
	for _, i := range m.Indices {
		if int(i) >= n {
			return fmt.Errorf("mesh %s: index %d out of range", m.Name, i)
		}
	}
	return nil
}

func (gm *Mesh) write(dev gpu.Device, m *assets.Mesh) {
	gm.Positions = writeFloats(dev, gm.Positions, m.Positions)
	gm.Normals = writeFloats(dev, gm.Normals, m.Normals)
	gm.TexCoords = writeFloats(dev, gm.TexCoords, m.TexCoords)

	if gm.Indices == 0 {
		gm.Indices = dev.CreateBuffer()
	}
	dev.BindBuffer(gpu.ElementArrayBuffer, gm.Indices)
	dev.BufferUint32(gpu.ElementArrayBuffer, m.Indices)
	gm.IndexCount = int32(len(m.Indices))
}

func writeFloats(dev gpu.Device, buf uint32, data []float32) uint32 {
	if buf == 0 {
		buf = dev.CreateBuffer()
	}
	dev.BindBuffer(gpu.ArrayBuffer, buf)
	dev.BufferFloat32(gpu.ArrayBuffer, data)
	return buf
}

// NewQuad uploads a unit quad in the XY plane spanning [-1, 1], facing +Z,
// with uvs covering [0, 1].
func NewQuad(dev gpu.Device) *Mesh {
	m, _ := UploadMesh(dev, &assets.Mesh{
		Name:      "quad",
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Positions: []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		TexCoords: []float32{0, 0, 1, 0, 1, 1, 0, 1},
	})
	return m
}

// Bind attaches the buffers for every attribute in mask and binds the
// index buffer.
func (m *Mesh) Bind(dev gpu.Device, mask AttribMask) {
	if mask.Has(AttribNormal) {
		dev.BindBuffer(gpu.ArrayBuffer, m.Normals)
		dev.VertexAttribPointer(NormalSlot, 3)
	}
	if mask.Has(AttribTexCoord) {
		dev.BindBuffer(gpu.ArrayBuffer, m.TexCoords)
		dev.VertexAttribPointer(TexCoordSlot, 2)
	}
	if mask.Has(AttribPosition) {
		dev.BindBuffer(gpu.ArrayBuffer, m.Positions)
		dev.VertexAttribPointer(PositionSlot, 3)
	}
	dev.BindBuffer(gpu.ElementArrayBuffer, m.Indices)
}

func (m *Mesh) Draw(dev gpu.Device) {
	dev.DrawElements(m.IndexCount)
}

func (m *Mesh) Delete(dev gpu.Device) {
	for _, b := range []uint32{m.Indices, m.Positions, m.Normals, m.TexCoords} {
		if b != 0 {
			dev.DeleteBuffer(b)
		}
	}
	*m = Mesh{}
}
