// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irisagent/xrcore/internal/gl/gltest"
)

func TestEyeBufferBind(t *testing.T) {
	f := new(gltest.Fake)
	b := NewEyeBuffer(f, 1024, 1024)
	color := f.CreateTexture()
	require.NoError(t, b.Bind(f, color))
	// Color and depth attachments.
	assert.Equal(t, 2, f.Calls("FramebufferTexture2D"))
	assert.Equal(t, [][4]int{{0, 0, 1024, 1024}}, f.Viewports())
	b.Unbind(f)
}

func TestEyeBufferIncomplete(t *testing.T) {
	f := &gltest.Fake{FramebufferStatus: 0x8cd6} // INCOMPLETE_ATTACHMENT
	b := NewEyeBuffer(f, 64, 64)
	err := b.Bind(f, f.CreateTexture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "framebuffer incomplete")
	assert.Equal(t, 0, f.Calls("Viewport"))
}

func TestEyeBufferReleaseTwice(t *testing.T) {
	f := new(gltest.Fake)
	b := NewEyeBuffer(f, 64, 64)
	b.Release(f)
	b.Release(f)
	assert.Equal(t, 1, f.Calls("DeleteFramebuffer"))
	assert.Equal(t, 1, f.Calls("DeleteTexture"))
}
