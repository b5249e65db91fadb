// SPDX-License-Identifier: Unlicense OR MIT

package gl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/gl/gltest"
)

const (
	testVert = "void main() {}"
	testFrag = "void main() {}"
)

func TestCreateProgram(t *testing.T) {
	f := new(gltest.Fake)
	prog, err := gl.CreateProgram(f, testVert, testFrag, []string{"aPosition", "aColor"})
	require.NoError(t, err)
	assert.True(t, prog.Valid())
	assert.Equal(t, 2, f.Calls("CompileShader"))
	assert.Equal(t, 1, f.Calls("LinkProgram"))
	assert.Equal(t, 2, f.Calls("BindAttribLocation"))
	// Shaders are not needed once the program is linked.
	assert.Equal(t, 2, f.Calls("DeleteShader"))
}

func TestCreateProgramCompileError(t *testing.T) {
	f := &gltest.Fake{
		CompileFail: map[gl.Enum]bool{gl.FRAGMENT_SHADER: true},
	}
	_, err := gl.CreateProgram(f, testVert, testFrag, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed")
	assert.Equal(t, 0, f.Calls("LinkProgram"))
}

func TestCreateProgramLinkError(t *testing.T) {
	f := &gltest.Fake{LinkFail: true}
	_, err := gl.CreateProgram(f, testVert, testFrag, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link failed")
	assert.Equal(t, 1, f.Calls("DeleteProgram"))
}

func TestUniformLocationMissing(t *testing.T) {
	f := &gltest.Fake{
		MissingUniforms: map[string]bool{"uMVP": true},
	}
	prog := f.CreateProgram()
	_, err := gl.UniformLocation(f, prog, "uMVP")
	assert.Error(t, err)

	loc, err := gl.UniformLocation(f, prog, "uColor")
	require.NoError(t, err)
	assert.True(t, loc.Valid())
}

func TestBytesView(t *testing.T) {
	b := gl.BytesView([]float32{1})
	require.Len(t, b, 4)
	// 1.0 is 0x3f800000 little-endian.
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b)
	assert.Nil(t, gl.BytesView(nil))
}

func TestUInt16Bytes(t *testing.T) {
	b := gl.UInt16Bytes([]uint16{0x0201, 0x0403})
	assert.Equal(t, []byte{1, 2, 3, 4}, b)
}

func TestParseGLVersion(t *testing.T) {
	ver, err := gl.ParseGLVersion("OpenGL ES 3.2 V@0502.0")
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 2}, ver)

	ver, err = gl.ParseGLVersion("4.6.0 NVIDIA 535.54")
	require.NoError(t, err)
	assert.Equal(t, [2]int{4, 6}, ver)

	_, err = gl.ParseGLVersion("bogus")
	assert.Error(t, err)
}
