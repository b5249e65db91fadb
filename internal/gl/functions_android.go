// SPDX-License-Identifier: Unlicense OR MIT

//go:build android
// +build android

package gl

/*
#cgo CFLAGS: -Werror
#cgo LDFLAGS: -lGLESv3

#include <stdint.h>
#include <stdlib.h>
#include <GLES3/gl3.h>

// The pointer-free version of glVertexAttribPointer, to avoid the
// Cgo pointer checks.
static void iris_glVertexAttribPointer(GLuint index, GLint size, GLenum type, GLboolean normalized, GLsizei stride, uintptr_t offset) {
	glVertexAttribPointer(index, size, type, normalized, stride, (const GLvoid *)offset);
}

// The pointer-free version of glDrawElements.
static void iris_glDrawElements(GLenum mode, GLsizei count, GLenum type, uintptr_t offset) {
	glDrawElements(mode, count, type, (const GLvoid *)offset);
}
*/
import "C"

import "unsafe"

// AndroidFunctions implements Functions on libGLESv3.
type AndroidFunctions struct {
	// Query caches.
	uints [4]C.GLuint
	ints  [4]C.GLint
}

// NewFunctions returns the cgo-backed GL ES binding.
func NewFunctions() *AndroidFunctions {
	return new(AndroidFunctions)
}

func (f *AndroidFunctions) AttachShader(p Program, s Shader) {
	C.glAttachShader(C.GLuint(p.V), C.GLuint(s.V))
}

func (f *AndroidFunctions) BindAttribLocation(p Program, a Attrib, name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.glBindAttribLocation(C.GLuint(p.V), C.GLuint(a), cname)
}

func (f *AndroidFunctions) BindBuffer(target Enum, b Buffer) {
	C.glBindBuffer(C.GLenum(target), C.GLuint(b.V))
}

func (f *AndroidFunctions) BindFramebuffer(target Enum, fb Framebuffer) {
	C.glBindFramebuffer(C.GLenum(target), C.GLuint(fb.V))
}

func (f *AndroidFunctions) BindTexture(target Enum, t Texture) {
	C.glBindTexture(C.GLenum(target), C.GLuint(t.V))
}

func (f *AndroidFunctions) BufferData(target Enum, data []byte, usage Enum) {
	var p unsafe.Pointer
	if len(data) > 0 {
		p = unsafe.Pointer(&data[0])
	}
	C.glBufferData(C.GLenum(target), C.GLsizeiptr(len(data)), p, C.GLenum(usage))
}

func (f *AndroidFunctions) CheckFramebufferStatus(target Enum) Enum {
	return Enum(C.glCheckFramebufferStatus(C.GLenum(target)))
}

func (f *AndroidFunctions) Clear(mask Enum) {
	C.glClear(C.GLbitfield(mask))
}

func (f *AndroidFunctions) ClearColor(red, green, blue, alpha float32) {
	C.glClearColor(C.GLfloat(red), C.GLfloat(green), C.GLfloat(blue), C.GLfloat(alpha))
}

func (f *AndroidFunctions) ClearDepthf(d float32) {
	C.glClearDepthf(C.GLfloat(d))
}

func (f *AndroidFunctions) CompileShader(s Shader) {
	C.glCompileShader(C.GLuint(s.V))
}

func (f *AndroidFunctions) CreateBuffer() Buffer {
	C.glGenBuffers(1, &f.uints[0])
	return Buffer{uint(f.uints[0])}
}

func (f *AndroidFunctions) CreateFramebuffer() Framebuffer {
	C.glGenFramebuffers(1, &f.uints[0])
	return Framebuffer{uint(f.uints[0])}
}

func (f *AndroidFunctions) CreateProgram() Program {
	return Program{uint(C.glCreateProgram())}
}

func (f *AndroidFunctions) CreateShader(typ Enum) Shader {
	return Shader{uint(C.glCreateShader(C.GLenum(typ)))}
}

func (f *AndroidFunctions) CreateTexture() Texture {
	C.glGenTextures(1, &f.uints[0])
	return Texture{uint(f.uints[0])}
}

func (f *AndroidFunctions) DeleteBuffer(b Buffer) {
	f.uints[0] = C.GLuint(b.V)
	C.glDeleteBuffers(1, &f.uints[0])
}

func (f *AndroidFunctions) DeleteFramebuffer(fb Framebuffer) {
	f.uints[0] = C.GLuint(fb.V)
	C.glDeleteFramebuffers(1, &f.uints[0])
}

func (f *AndroidFunctions) DeleteProgram(p Program) {
	C.glDeleteProgram(C.GLuint(p.V))
}

func (f *AndroidFunctions) DeleteShader(s Shader) {
	C.glDeleteShader(C.GLuint(s.V))
}

func (f *AndroidFunctions) DeleteTexture(t Texture) {
	f.uints[0] = C.GLuint(t.V)
	C.glDeleteTextures(1, &f.uints[0])
}

func (f *AndroidFunctions) DisableVertexAttribArray(a Attrib) {
	C.glDisableVertexAttribArray(C.GLuint(a))
}

func (f *AndroidFunctions) DrawElements(mode Enum, count int, typ Enum, offset int) {
	C.iris_glDrawElements(C.GLenum(mode), C.GLsizei(count), C.GLenum(typ), C.uintptr_t(offset))
}

func (f *AndroidFunctions) Enable(cap Enum) {
	C.glEnable(C.GLenum(cap))
}

func (f *AndroidFunctions) EnableVertexAttribArray(a Attrib) {
	C.glEnableVertexAttribArray(C.GLuint(a))
}

func (f *AndroidFunctions) Finish() {
	C.glFinish()
}

func (f *AndroidFunctions) FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int) {
	C.glFramebufferTexture2D(C.GLenum(target), C.GLenum(attachment), C.GLenum(texTarget), C.GLuint(t.V), C.GLint(level))
}

func (f *AndroidFunctions) GetError() Enum {
	return Enum(C.glGetError())
}

func (f *AndroidFunctions) GetProgrami(p Program, pname Enum) int {
	C.glGetProgramiv(C.GLuint(p.V), C.GLenum(pname), &f.ints[0])
	return int(f.ints[0])
}

func (f *AndroidFunctions) GetProgramInfoLog(p Program) string {
	n := f.GetProgrami(p, 0x8b84) // GL_INFO_LOG_LENGTH
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	C.glGetProgramInfoLog(C.GLuint(p.V), C.GLsizei(len(buf)), nil, (*C.GLchar)(unsafe.Pointer(&buf[0])))
	return goString(buf)
}

func (f *AndroidFunctions) GetShaderi(s Shader, pname Enum) int {
	C.glGetShaderiv(C.GLuint(s.V), C.GLenum(pname), &f.ints[0])
	return int(f.ints[0])
}

func (f *AndroidFunctions) GetShaderInfoLog(s Shader) string {
	n := f.GetShaderi(s, 0x8b84) // GL_INFO_LOG_LENGTH
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	C.glGetShaderInfoLog(C.GLuint(s.V), C.GLsizei(len(buf)), nil, (*C.GLchar)(unsafe.Pointer(&buf[0])))
	return goString(buf)
}

func (f *AndroidFunctions) GetString(pname Enum) string {
	return C.GoString((*C.char)(unsafe.Pointer(C.glGetString(C.GLenum(pname)))))
}

func (f *AndroidFunctions) GetUniformLocation(p Program, name string) Uniform {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return Uniform{int(C.glGetUniformLocation(C.GLuint(p.V), cname))}
}

func (f *AndroidFunctions) LinkProgram(p Program) {
	C.glLinkProgram(C.GLuint(p.V))
}

func (f *AndroidFunctions) ShaderSource(s Shader, src string) {
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))
	strlen := C.GLint(len(src))
	C.glShaderSource(C.GLuint(s.V), 1, &csrc, &strlen)
}

func (f *AndroidFunctions) TexImage2D(target Enum, level int, internalFormat int, width, height int, format, typ Enum, pixels []byte) {
	var p unsafe.Pointer
	if len(pixels) > 0 {
		p = unsafe.Pointer(&pixels[0])
	}
	C.glTexImage2D(C.GLenum(target), C.GLint(level), C.GLint(internalFormat), C.GLsizei(width), C.GLsizei(height), 0, C.GLenum(format), C.GLenum(typ), p)
}

func (f *AndroidFunctions) TexParameteri(target, pname Enum, param int) {
	C.glTexParameteri(C.GLenum(target), C.GLenum(pname), C.GLint(param))
}

func (f *AndroidFunctions) UniformMatrix4fv(dst Uniform, transpose bool, mat []float32) {
	t := C.GLboolean(FALSE)
	if transpose {
		t = TRUE
	}
	C.glUniformMatrix4fv(C.GLint(dst.V), 1, t, (*C.GLfloat)(unsafe.Pointer(&mat[0])))
}

func (f *AndroidFunctions) UseProgram(p Program) {
	C.glUseProgram(C.GLuint(p.V))
}

func (f *AndroidFunctions) VertexAttribPointer(dst Attrib, size int, typ Enum, normalized bool, stride, offset int) {
	n := C.GLboolean(FALSE)
	if normalized {
		n = TRUE
	}
	C.iris_glVertexAttribPointer(C.GLuint(dst), C.GLint(size), C.GLenum(typ), n, C.GLsizei(stride), C.uintptr_t(offset))
}

func (f *AndroidFunctions) Viewport(x, y, width, height int) {
	C.glViewport(C.GLint(x), C.GLint(y), C.GLsizei(width), C.GLsizei(height))
}

// goString converts a NUL-terminated C string buffer to a Go
// string.
func goString(s []byte) string {
	for i, b := range s {
		if b == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}
