// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"fmt"

	"github.com/irisagent/xrcore/internal/gl"
)

// EyeBuffer is the offscreen render target for one eye. The color
// attachment changes every frame as swapchain images rotate; the
// depth texture is owned by the buffer.
type EyeBuffer struct {
	fbo    gl.Framebuffer
	depth  gl.Texture
	width  int
	height int
}

// NewEyeBuffer allocates a framebuffer and a depth texture of the
// given size.
func NewEyeBuffer(f gl.Functions, width, height int) *EyeBuffer {
	depth := f.CreateTexture()
	f.BindTexture(gl.TEXTURE_2D, depth)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	f.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	f.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, width, height, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, nil)
	return &EyeBuffer{
		fbo:    f.CreateFramebuffer(),
		depth:  depth,
		width:  width,
		height: height,
	}
}

// Bind attaches the swapchain color texture and the depth texture,
// verifies completeness and sets the viewport.
func (b *EyeBuffer) Bind(f gl.Functions, color gl.Texture) error {
	f.BindFramebuffer(gl.FRAMEBUFFER, b.fbo)
	f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
	f.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, b.depth, 0)
	if st := f.CheckFramebufferStatus(gl.FRAMEBUFFER); st != gl.FRAMEBUFFER_COMPLETE {
		f.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
		return fmt.Errorf("framebuffer incomplete: 0x%x", uint(st))
	}
	f.Viewport(0, 0, b.width, b.height)
	return nil
}

// Unbind restores the default framebuffer.
func (b *EyeBuffer) Unbind(f gl.Functions) {
	f.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
}

// Release frees the GL objects. It is safe to call more than once.
func (b *EyeBuffer) Release(f gl.Functions) {
	if b.fbo.Valid() {
		f.DeleteFramebuffer(b.fbo)
		b.fbo = gl.Framebuffer{}
	}
	if b.depth.Valid() {
		f.DeleteTexture(b.depth)
		b.depth = gl.Texture{}
	}
}
