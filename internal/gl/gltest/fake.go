// SPDX-License-Identifier: Unlicense OR MIT

// Package gltest provides a recording implementation of
// gl.Functions for driving the renderer without a GL context.
package gltest

import (
	"fmt"
	"sync"

	"github.com/irisagent/xrcore/internal/gl"
)

// Fake implements gl.Functions by recording calls. The failure
// knobs must be configured before the fake is handed to the code
// under test.
type Fake struct {
	// CompileFail fails compilation for the given shader type.
	CompileFail map[gl.Enum]bool
	// LinkFail fails program linking.
	LinkFail bool
	// MissingUniforms makes GetUniformLocation return an invalid
	// location for the named uniforms.
	MissingUniforms map[string]bool
	// FramebufferStatus overrides the framebuffer completeness
	// status. Zero means complete.
	FramebufferStatus gl.Enum
	// Version is returned for GetString(VERSION).
	Version string

	mu        sync.Mutex
	nextID    uint
	calls     map[string]int
	shaderTyp map[gl.Shader]gl.Enum
	buffers   map[gl.Enum][]byte
	matrices  [][16]float32
	viewports [][4]int
	boundFBOs []gl.Framebuffer
}

func (f *Fake) record(op string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

func (f *Fake) id() uint {
	f.nextID++
	return f.nextID
}

// Calls returns the number of recorded calls to op.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// BufferSize returns the byte size of the last upload to target.
func (f *Fake) BufferSize(target gl.Enum) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffers[target])
}

// LastMatrix returns the most recently uploaded 4×4 uniform.
func (f *Fake) LastMatrix() [16]float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.matrices) == 0 {
		return [16]float32{}
	}
	return f.matrices[len(f.matrices)-1]
}

// Viewports returns all recorded viewport rectangles.
func (f *Fake) Viewports() [][4]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][4]int(nil), f.viewports...)
}

func (f *Fake) AttachShader(p gl.Program, s gl.Shader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AttachShader")
}

func (f *Fake) BindAttribLocation(p gl.Program, a gl.Attrib, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindAttribLocation")
}

func (f *Fake) BindBuffer(target gl.Enum, b gl.Buffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindBuffer")
}

func (f *Fake) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindFramebuffer")
	f.boundFBOs = append(f.boundFBOs, fb)
}

func (f *Fake) BindTexture(target gl.Enum, t gl.Texture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindTexture")
}

func (f *Fake) BufferData(target gl.Enum, data []byte, usage gl.Enum) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferData")
	if f.buffers == nil {
		f.buffers = make(map[gl.Enum][]byte)
	}
	f.buffers[target] = append([]byte(nil), data...)
}

func (f *Fake) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CheckFramebufferStatus")
	if f.FramebufferStatus != 0 {
		return f.FramebufferStatus
	}
	return gl.FRAMEBUFFER_COMPLETE
}

func (f *Fake) Clear(mask gl.Enum) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear")
}

func (f *Fake) ClearColor(red, green, blue, alpha float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearColor")
}

func (f *Fake) ClearDepthf(d float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearDepthf")
}

func (f *Fake) CompileShader(s gl.Shader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompileShader")
}

func (f *Fake) CreateBuffer() gl.Buffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateBuffer")
	return gl.Buffer{V: f.id()}
}

func (f *Fake) CreateFramebuffer() gl.Framebuffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateFramebuffer")
	return gl.Framebuffer{V: f.id()}
}

func (f *Fake) CreateProgram() gl.Program {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProgram")
	return gl.Program{V: f.id()}
}

func (f *Fake) CreateShader(typ gl.Enum) gl.Shader {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateShader")
	sh := gl.Shader{V: f.id()}
	if f.shaderTyp == nil {
		f.shaderTyp = make(map[gl.Shader]gl.Enum)
	}
	f.shaderTyp[sh] = typ
	return sh
}

func (f *Fake) CreateTexture() gl.Texture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTexture")
	return gl.Texture{V: f.id()}
}

func (f *Fake) DeleteBuffer(b gl.Buffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBuffer")
}

func (f *Fake) DeleteFramebuffer(fb gl.Framebuffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteFramebuffer")
}

func (f *Fake) DeleteProgram(p gl.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProgram")
}

func (f *Fake) DeleteShader(s gl.Shader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteShader")
}

func (f *Fake) DeleteTexture(t gl.Texture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTexture")
}

func (f *Fake) DisableVertexAttribArray(a gl.Attrib) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DisableVertexAttribArray")
}

func (f *Fake) DrawElements(mode gl.Enum, count int, typ gl.Enum, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawElements")
}

func (f *Fake) Enable(cap gl.Enum) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Enable")
}

func (f *Fake) EnableVertexAttribArray(a gl.Attrib) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnableVertexAttribArray")
}

func (f *Fake) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Finish")
}

func (f *Fake) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FramebufferTexture2D")
}

func (f *Fake) GetError() gl.Enum {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetError")
	return gl.NO_ERROR
}

func (f *Fake) GetProgrami(p gl.Program, pname gl.Enum) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProgrami")
	if pname == gl.LINK_STATUS && f.LinkFail {
		return gl.FALSE
	}
	return gl.TRUE
}

func (f *Fake) GetProgramInfoLog(p gl.Program) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProgramInfoLog")
	return "fake link error"
}

func (f *Fake) GetShaderi(s gl.Shader, pname gl.Enum) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetShaderi")
	if pname == gl.COMPILE_STATUS && f.CompileFail[f.shaderTyp[s]] {
		return gl.FALSE
	}
	return gl.TRUE
}

func (f *Fake) GetShaderInfoLog(s gl.Shader) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetShaderInfoLog")
	return fmt.Sprintf("fake compile error for shader type 0x%x", uint(f.shaderTyp[s]))
}

func (f *Fake) GetString(pname gl.Enum) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetString")
	if f.Version != "" {
		return f.Version
	}
	return "OpenGL ES 3.2"
}

func (f *Fake) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetUniformLocation")
	if f.MissingUniforms[name] {
		return gl.Uniform{V: -1}
	}
	f.nextID++
	return gl.Uniform{V: int(f.nextID)}
}

func (f *Fake) LinkProgram(p gl.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LinkProgram")
}

func (f *Fake) ShaderSource(s gl.Shader, src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShaderSource")
}

func (f *Fake) TexImage2D(target gl.Enum, level int, internalFormat int, width, height int, format, typ gl.Enum, pixels []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexImage2D")
}

func (f *Fake) TexParameteri(target, pname gl.Enum, param int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexParameteri")
}

func (f *Fake) UniformMatrix4fv(dst gl.Uniform, transpose bool, mat []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UniformMatrix4fv")
	var m [16]float32
	copy(m[:], mat)
	f.matrices = append(f.matrices, m)
}

func (f *Fake) UseProgram(p gl.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UseProgram")
}

func (f *Fake) VertexAttribPointer(dst gl.Attrib, size int, typ gl.Enum, normalized bool, stride, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("VertexAttribPointer")
}

func (f *Fake) Viewport(x, y, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Viewport")
	f.viewports = append(f.viewports, [4]int{x, y, width, height})
}
