// SPDX-License-Identifier: Unlicense OR MIT

package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/gl/gltest"
)

func TestNewPipelineUploadsQuad(t *testing.T) {
	f := new(gltest.Fake)
	p, err := NewPipeline(f)
	require.NoError(t, err)
	// 4 vertices of 7 floats, 6 uint16 indices.
	assert.Equal(t, 4*7*4, f.BufferSize(gl.ARRAY_BUFFER))
	assert.Equal(t, 6*2, f.BufferSize(gl.ELEMENT_ARRAY_BUFFER))
	p.Release(f)
	assert.Equal(t, 2, f.Calls("DeleteBuffer"))
	assert.Equal(t, 1, f.Calls("DeleteProgram"))
}

func TestPipelineCompileFailure(t *testing.T) {
	f := &gltest.Fake{
		CompileFail: map[gl.Enum]bool{gl.VERTEX_SHADER: true},
	}
	_, err := NewPipeline(f)
	require.Error(t, err)
	assert.Equal(t, 0, f.Calls("BufferData"))
}

func TestPipelineMissingUniform(t *testing.T) {
	f := &gltest.Fake{
		MissingUniforms: map[string]bool{"uMVP": true},
	}
	_, err := NewPipeline(f)
	require.Error(t, err)
	assert.Equal(t, 1, f.Calls("DeleteProgram"))
}

func TestDrawUploadsTransform(t *testing.T) {
	f := new(gltest.Fake)
	p, err := NewPipeline(f)
	require.NoError(t, err)
	mvp := f32.Translation(f32.Vec3{X: 1, Y: 2, Z: 3})
	p.Draw(f, mvp)
	assert.Equal(t, 1, f.Calls("DrawElements"))
	assert.Equal(t, [16]float32(mvp), f.LastMatrix())
	assert.Equal(t, f.Calls("EnableVertexAttribArray"), f.Calls("DisableVertexAttribArray"))
}

func TestReleaseTwice(t *testing.T) {
	f := new(gltest.Fake)
	p, err := NewPipeline(f)
	require.NoError(t, err)
	p.Release(f)
	p.Release(f)
	assert.Equal(t, 2, f.Calls("DeleteBuffer"))
	assert.Equal(t, 1, f.Calls("DeleteProgram"))
}
