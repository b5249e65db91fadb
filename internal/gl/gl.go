// SPDX-License-Identifier: Unlicense OR MIT

// Package gl wraps the OpenGL ES calls used by the renderer
// behind the Functions interface. The Android implementation
// binds libGLESv3 through cgo; tests use the recording fake in
// package gltest.
package gl

type (
	Attrib uint
	Enum   uint
)

const (
	ARRAY_BUFFER         = 0x8892
	CLAMP_TO_EDGE        = 0x812f
	COLOR_ATTACHMENT0    = 0x8ce0
	COLOR_BUFFER_BIT     = 0x4000
	COMPILE_STATUS       = 0x8b81
	DEPTH_ATTACHMENT     = 0x8d00
	DEPTH_BUFFER_BIT     = 0x100
	DEPTH_COMPONENT      = 0x1902
	DEPTH_COMPONENT24    = 0x81a6
	DEPTH_TEST           = 0xb71
	ELEMENT_ARRAY_BUFFER = 0x8893
	FALSE                = 0
	FLOAT                = 0x1406
	FRAGMENT_SHADER      = 0x8b30
	FRAMEBUFFER          = 0x8d40
	FRAMEBUFFER_COMPLETE = 0x8cd5
	LINEAR               = 0x2601
	LINK_STATUS          = 0x8b82
	NEAREST              = 0x2600
	NO_ERROR             = 0x0
	RGBA8                = 0x8058
	SRGB8_ALPHA8         = 0x8c43
	STATIC_DRAW          = 0x88e4
	TEXTURE_2D           = 0xde1
	TEXTURE_MAG_FILTER   = 0x2800
	TEXTURE_MIN_FILTER   = 0x2801
	TEXTURE_WRAP_S       = 0x2802
	TEXTURE_WRAP_T       = 0x2803
	TRIANGLES            = 0x4
	TRUE                 = 1
	UNSIGNED_INT         = 0x1405
	UNSIGNED_SHORT       = 0x1403
	VERSION              = 0x1f02
	VERTEX_SHADER        = 0x8b31
)

// Functions is the GL ES call surface of the renderer. All calls
// must be made with a context current on the calling thread.
type Functions interface {
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, a Attrib, name string)
	BindBuffer(target Enum, b Buffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	BindTexture(target Enum, t Texture)
	BufferData(target Enum, data []byte, usage Enum)
	CheckFramebufferStatus(target Enum) Enum
	Clear(mask Enum)
	ClearColor(red, green, blue, alpha float32)
	ClearDepthf(d float32)
	CompileShader(s Shader)
	CreateBuffer() Buffer
	CreateFramebuffer() Framebuffer
	CreateProgram() Program
	CreateShader(typ Enum) Shader
	CreateTexture() Texture
	DeleteBuffer(b Buffer)
	DeleteFramebuffer(fb Framebuffer)
	DeleteProgram(p Program)
	DeleteShader(s Shader)
	DeleteTexture(t Texture)
	DisableVertexAttribArray(a Attrib)
	DrawElements(mode Enum, count int, typ Enum, offset int)
	Enable(cap Enum)
	EnableVertexAttribArray(a Attrib)
	Finish()
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	GetError() Enum
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	GetString(pname Enum) string
	GetUniformLocation(p Program, name string) Uniform
	LinkProgram(p Program)
	ShaderSource(s Shader, src string)
	TexImage2D(target Enum, level int, internalFormat int, width, height int, format, typ Enum, pixels []byte)
	TexParameteri(target, pname Enum, param int)
	UniformMatrix4fv(dst Uniform, transpose bool, mat []float32)
	UseProgram(p Program)
	VertexAttribPointer(dst Attrib, size int, typ Enum, normalized bool, stride, offset int)
	Viewport(x, y, width, height int)
}
