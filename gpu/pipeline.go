// SPDX-License-Identifier: Unlicense OR MIT

// Package gpu holds the GL ES objects the stereo renderer draws
// with: the color-per-vertex pipeline and the framebuffer wrapping
// a swapchain image.
package gpu

import (
	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/internal/gl"
)

const vertSrc = `#version 300 es

uniform mat4 uMVP;

in vec3 aPosition;
in vec4 aColor;

out vec4 vColor;

void main() {
	vColor = aColor;
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const fragSrc = `#version 300 es

precision mediump float;

in vec4 vColor;

out vec4 fragColor;

void main() {
	fragColor = vColor;
}
`

// Vertex layout: position x, y, z then color r, g, b, a,
// interleaved.
const (
	vertexStride = 7 * 4
	colorOffset  = 3 * 4
)

// The quad is centered on the origin; callers place it with the
// model transform.
var quadVertices = []float32{
	-0.5, -0.5, 0, 1, 0, 0, 1,
	0.5, -0.5, 0, 0, 1, 0, 1,
	0.5, 0.5, 0, 0, 0, 1, 1,
	-0.5, 0.5, 0, 1, 1, 0, 1,
}

var quadIndices = []uint16{0, 1, 2, 2, 3, 0}

// Pipeline is the program and geometry for the colored quad.
type Pipeline struct {
	prog gl.Program
	mvp  gl.Uniform
	vbo  gl.Buffer
	ibo  gl.Buffer
}

// NewPipeline compiles the shaders, resolves the transform uniform
// and uploads the quad geometry. Any GL failure unwinds the
// partially built objects.
func NewPipeline(f gl.Functions) (*Pipeline, error) {
	prog, err := gl.CreateProgram(f, vertSrc, fragSrc, []string{"aPosition", "aColor"})
	if err != nil {
		return nil, err
	}
	mvp, err := gl.UniformLocation(f, prog, "uMVP")
	if err != nil {
		f.DeleteProgram(prog)
		return nil, err
	}
	vbo := f.CreateBuffer()
	f.BindBuffer(gl.ARRAY_BUFFER, vbo)
	f.BufferData(gl.ARRAY_BUFFER, gl.BytesView(quadVertices), gl.STATIC_DRAW)
	ibo := f.CreateBuffer()
	f.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
	f.BufferData(gl.ELEMENT_ARRAY_BUFFER, gl.UInt16Bytes(quadIndices), gl.STATIC_DRAW)
	return &Pipeline{prog: prog, mvp: mvp, vbo: vbo, ibo: ibo}, nil
}

// Draw renders the quad with the given model-view-projection
// transform into the currently bound framebuffer.
func (p *Pipeline) Draw(f gl.Functions, mvp f32.Mat4) {
	f.UseProgram(p.prog)
	f.UniformMatrix4fv(p.mvp, false, mvp[:])
	f.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	f.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.ibo)
	f.EnableVertexAttribArray(0)
	f.EnableVertexAttribArray(1)
	f.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, 0)
	f.VertexAttribPointer(1, 4, gl.FLOAT, false, vertexStride, colorOffset)
	f.DrawElements(gl.TRIANGLES, len(quadIndices), gl.UNSIGNED_SHORT, 0)
	f.DisableVertexAttribArray(1)
	f.DisableVertexAttribArray(0)
}

// Release frees the GL objects. It is safe to call more than once.
func (p *Pipeline) Release(f gl.Functions) {
	if p.ibo.Valid() {
		f.DeleteBuffer(p.ibo)
		p.ibo = gl.Buffer{}
	}
	if p.vbo.Valid() {
		f.DeleteBuffer(p.vbo)
		p.vbo = gl.Buffer{}
	}
	if p.prog.Valid() {
		f.DeleteProgram(p.prog)
		p.prog = gl.Program{}
	}
}
