// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"
)

// CreateProgram compiles and links a vertex/fragment shader pair
// with the given attribute order. Compile and link status are
// checked; a failure releases the partial objects and returns the
// shader info log.
func CreateProgram(f Functions, vsSrc, fsSrc string, attribs []string) (Program, error) {
	vs, err := createShader(f, VERTEX_SHADER, vsSrc)
	if err != nil {
		return Program{}, err
	}
	defer f.DeleteShader(vs)
	fs, err := createShader(f, FRAGMENT_SHADER, fsSrc)
	if err != nil {
		return Program{}, err
	}
	defer f.DeleteShader(fs)
	prog := f.CreateProgram()
	if !prog.Valid() {
		return Program{}, errors.New("glCreateProgram failed")
	}
	f.AttachShader(prog, vs)
	f.AttachShader(prog, fs)
	for i, a := range attribs {
		f.BindAttribLocation(prog, Attrib(i), a)
	}
	f.LinkProgram(prog)
	if f.GetProgrami(prog, LINK_STATUS) == 0 {
		log := f.GetProgramInfoLog(prog)
		f.DeleteProgram(prog)
		return Program{}, fmt.Errorf("program link failed: %s", strings.TrimSpace(log))
	}
	return prog, nil
}

func createShader(f Functions, typ Enum, src string) (Shader, error) {
	sh := f.CreateShader(typ)
	if !sh.Valid() {
		return Shader{}, errors.New("glCreateShader failed")
	}
	f.ShaderSource(sh, src)
	f.CompileShader(sh)
	if f.GetShaderi(sh, COMPILE_STATUS) == 0 {
		log := f.GetShaderInfoLog(sh)
		f.DeleteShader(sh)
		return Shader{}, fmt.Errorf("shader compilation failed: %s", strings.TrimSpace(log))
	}
	return sh, nil
}

// UniformLocation resolves a uniform and fails when the program
// does not define it.
func UniformLocation(f Functions, prog Program, name string) (Uniform, error) {
	loc := f.GetUniformLocation(prog, name)
	if !loc.Valid() {
		return Uniform{}, fmt.Errorf("uniform %s not found", name)
	}
	return loc, nil
}

// BytesView returns a byte slice view of a float32 slice.
func BytesView(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

// UInt16Bytes returns a byte slice view of a uint16 slice.
func UInt16Bytes(s []uint16) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2)
}

// ParseGLVersion parses a GL_VERSION string into major and minor
// components.
func ParseGLVersion(glVer string) ([2]int, error) {
	var ver [2]int
	if _, err := fmt.Sscanf(glVer, "OpenGL ES %d.%d", &ver[0], &ver[1]); err == nil {
		return ver, nil
	} else if _, err := fmt.Sscanf(glVer, "%d.%d", &ver[0], &ver[1]); err == nil {
		return ver, nil
	}
	return ver, fmt.Errorf("failed to parse OpenGL ES version (%s)", glVer)
}
