// SPDX-License-Identifier: Unlicense OR MIT

//go:build !android
// +build !android

// Command irispreview renders the placeholder scene in a desktop
// window, through the same pipeline and matrix code the headset
// build uses. It needs a driver exposing OpenGL ES through EGL or
// the GLX/WGL ES profile.
package main

import (
	"flag"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v3.1/gles2"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/gpu"
	"github.com/irisagent/xrcore/internal/gl"
)

func main() {
	width := flag.Int("width", 800, "window width")
	height := flag.Int("height", 600, "window height")
	flag.Parse()

	// Required by the OpenGL threading model.
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		log.Fatal(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)

	window, err := glfw.CreateWindow(*width, *height, "irispreview", nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	window.MakeContextCurrent()
	if err := gles2.Init(); err != nil {
		log.Fatal(err)
	}

	f := new(goglFunctions)
	log.Printf("irispreview: %s", f.GetString(gl.VERSION))
	pipeline, err := gpu.NewPipeline(f)
	if err != nil {
		log.Fatal(err)
	}
	defer pipeline.Release(f)

	fov := f32.Fov{AngleLeft: -0.7, AngleRight: 0.7, AngleUp: 0.6, AngleDown: -0.6}
	for !window.ShouldClose() {
		glfw.PollEvents()
		w, h := window.GetFramebufferSize()
		f.Viewport(0, 0, w, h)
		f.Enable(gl.DEPTH_TEST)
		f.ClearColor(0.1, 0.1, 0.1, 1)
		f.ClearDepthf(1)
		f.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		mvp := f32.Mul(spinModel(float32(glfw.GetTime())), f32.Mul(f32.View(f32.PoseIdentity), f32.Projection(fov, 0.05, 100)))
		pipeline.Draw(f, mvp)
		window.SwapBuffers()
	}
}

// spinModel spins the quad about its vertical axis and hangs it one
// meter in front of the viewer.
func spinModel(t float32) f32.Mat4 {
	q := f32.Quat{Y: math32.Sin(t / 2), W: math32.Cos(t / 2)}
	return f32.Mul(f32.Rotation(q), f32.Translation(f32.Vec3{Z: -1}))
}

// goglFunctions adapts the go-gl ES bindings to gl.Functions.
type goglFunctions struct{}

func (*goglFunctions) AttachShader(p gl.Program, s gl.Shader) {
	gles2.AttachShader(uint32(p.V), uint32(s.V))
}

func (*goglFunctions) BindAttribLocation(p gl.Program, a gl.Attrib, name string) {
	gles2.BindAttribLocation(uint32(p.V), uint32(a), gles2.Str(name+"\x00"))
}

func (*goglFunctions) BindBuffer(target gl.Enum, b gl.Buffer) {
	gles2.BindBuffer(uint32(target), uint32(b.V))
}

func (*goglFunctions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	gles2.BindFramebuffer(uint32(target), uint32(fb.V))
}

func (*goglFunctions) BindTexture(target gl.Enum, t gl.Texture) {
	gles2.BindTexture(uint32(target), uint32(t.V))
}

func (*goglFunctions) BufferData(target gl.Enum, data []byte, usage gl.Enum) {
	gles2.BufferData(uint32(target), len(data), gles2.Ptr(data), uint32(usage))
}

func (*goglFunctions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.Enum(gles2.CheckFramebufferStatus(uint32(target)))
}

func (*goglFunctions) Clear(mask gl.Enum) {
	gles2.Clear(uint32(mask))
}

func (*goglFunctions) ClearColor(red, green, blue, alpha float32) {
	gles2.ClearColor(red, green, blue, alpha)
}

func (*goglFunctions) ClearDepthf(d float32) {
	gles2.ClearDepthf(d)
}

func (*goglFunctions) CompileShader(s gl.Shader) {
	gles2.CompileShader(uint32(s.V))
}

func (*goglFunctions) CreateBuffer() gl.Buffer {
	var buf uint32
	gles2.GenBuffers(1, &buf)
	return gl.Buffer{V: uint(buf)}
}

func (*goglFunctions) CreateFramebuffer() gl.Framebuffer {
	var fb uint32
	gles2.GenFramebuffers(1, &fb)
	return gl.Framebuffer{V: uint(fb)}
}

func (*goglFunctions) CreateProgram() gl.Program {
	return gl.Program{V: uint(gles2.CreateProgram())}
}

func (*goglFunctions) CreateShader(typ gl.Enum) gl.Shader {
	return gl.Shader{V: uint(gles2.CreateShader(uint32(typ)))}
}

func (*goglFunctions) CreateTexture() gl.Texture {
	var t uint32
	gles2.GenTextures(1, &t)
	return gl.Texture{V: uint(t)}
}

func (*goglFunctions) DeleteBuffer(b gl.Buffer) {
	buf := uint32(b.V)
	gles2.DeleteBuffers(1, &buf)
}

func (*goglFunctions) DeleteFramebuffer(fb gl.Framebuffer) {
	v := uint32(fb.V)
	gles2.DeleteFramebuffers(1, &v)
}

func (*goglFunctions) DeleteProgram(p gl.Program) {
	gles2.DeleteProgram(uint32(p.V))
}

func (*goglFunctions) DeleteShader(s gl.Shader) {
	gles2.DeleteShader(uint32(s.V))
}

func (*goglFunctions) DeleteTexture(t gl.Texture) {
	v := uint32(t.V)
	gles2.DeleteTextures(1, &v)
}

func (*goglFunctions) DisableVertexAttribArray(a gl.Attrib) {
	gles2.DisableVertexAttribArray(uint32(a))
}

func (*goglFunctions) DrawElements(mode gl.Enum, count int, typ gl.Enum, offset int) {
	gles2.DrawElements(uint32(mode), int32(count), uint32(typ), unsafe.Pointer(uintptr(offset)))
}

func (*goglFunctions) Enable(cap gl.Enum) {
	gles2.Enable(uint32(cap))
}

func (*goglFunctions) EnableVertexAttribArray(a gl.Attrib) {
	gles2.EnableVertexAttribArray(uint32(a))
}

func (*goglFunctions) Finish() {
	gles2.Finish()
}

func (*goglFunctions) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	gles2.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t.V), int32(level))
}

func (*goglFunctions) GetError() gl.Enum {
	return gl.Enum(gles2.GetError())
}

func (f *goglFunctions) GetProgrami(p gl.Program, pname gl.Enum) int {
	var v int32
	gles2.GetProgramiv(uint32(p.V), uint32(pname), &v)
	return int(v)
}

func (f *goglFunctions) GetProgramInfoLog(p gl.Program) string {
	n := int32(f.GetProgrami(p, gl.Enum(gles2.INFO_LOG_LENGTH)))
	buf := strings.Repeat("\x00", int(n+1))
	gles2.GetProgramInfoLog(uint32(p.V), n, nil, gles2.Str(buf))
	return buf[:n]
}

func (f *goglFunctions) GetShaderi(s gl.Shader, pname gl.Enum) int {
	var v int32
	gles2.GetShaderiv(uint32(s.V), uint32(pname), &v)
	return int(v)
}

func (f *goglFunctions) GetShaderInfoLog(s gl.Shader) string {
	n := int32(f.GetShaderi(s, gl.Enum(gles2.INFO_LOG_LENGTH)))
	buf := strings.Repeat("\x00", int(n+1))
	gles2.GetShaderInfoLog(uint32(s.V), n, nil, gles2.Str(buf))
	return buf[:n]
}

func (*goglFunctions) GetString(pname gl.Enum) string {
	return gles2.GoStr(gles2.GetString(uint32(pname)))
}

func (*goglFunctions) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	return gl.Uniform{V: int(gles2.GetUniformLocation(uint32(p.V), gles2.Str(name+"\x00")))}
}

func (*goglFunctions) LinkProgram(p gl.Program) {
	gles2.LinkProgram(uint32(p.V))
}

func (*goglFunctions) ShaderSource(s gl.Shader, src string) {
	csources, free := gles2.Strs(src + "\x00")
	gles2.ShaderSource(uint32(s.V), 1, csources, nil)
	free()
}

func (*goglFunctions) TexImage2D(target gl.Enum, level int, internalFormat int, width, height int, format, typ gl.Enum, pixels []byte) {
	var p unsafe.Pointer
	if len(pixels) > 0 {
		p = unsafe.Pointer(&pixels[0])
	}
	gles2.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0, uint32(format), uint32(typ), p)
}

func (*goglFunctions) TexParameteri(target, pname gl.Enum, param int) {
	gles2.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (*goglFunctions) UniformMatrix4fv(dst gl.Uniform, transpose bool, mat []float32) {
	gles2.UniformMatrix4fv(int32(dst.V), 1, transpose, &mat[0])
}

func (*goglFunctions) UseProgram(p gl.Program) {
	gles2.UseProgram(uint32(p.V))
}

func (*goglFunctions) VertexAttribPointer(dst gl.Attrib, size int, typ gl.Enum, normalized bool, stride, offset int) {
	gles2.VertexAttribPointer(uint32(dst), int32(size), uint32(typ), normalized, int32(stride), unsafe.Pointer(uintptr(offset)))
}

func (*goglFunctions) Viewport(x, y, width, height int) {
	gles2.Viewport(int32(x), int32(y), int32(width), int32(height))
}
