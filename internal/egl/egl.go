// SPDX-License-Identifier: Unlicense OR MIT

//go:build android
// +build android

// Package egl owns the EGL display, config and context triple the
// renderer draws with. The context is surfaceless: all rendering
// goes to framebuffers backed by swapchain textures, never to a
// window surface.
package egl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/xr"
)

type (
	_EGLint     int32
	_EGLDisplay uintptr
	_EGLConfig  uintptr
	_EGLContext uintptr
	_EGLSurface uintptr
)

const (
	_EGL_ALPHA_SIZE             = 0x3021
	_EGL_BLUE_SIZE              = 0x3022
	_EGL_CONTEXT_CLIENT_VERSION = 0x3098
	_EGL_DEFAULT_DISPLAY        = 0
	_EGL_DEPTH_SIZE             = 0x3025
	_EGL_EXTENSIONS             = 0x3055
	_EGL_GREEN_SIZE             = 0x3023
	_EGL_NONE                   = 0x3038
	_EGL_OPENGL_ES2_BIT         = 0x4
	_EGL_OPENGL_ES3_BIT         = 0x40
	_EGL_RED_SIZE               = 0x3024
	_EGL_RENDERABLE_TYPE        = 0x3040
	_EGL_STENCIL_SIZE           = 0x3026
)

var (
	nilEGLDisplay _EGLDisplay
	nilEGLConfig  _EGLConfig
	nilEGLContext _EGLContext
	nilEGLSurface _EGLSurface
)

// Context is the process-wide EGL state. It must be created and
// made current on the rendering thread before any GL or session
// call, and released only after every object that references it.
type Context struct {
	disp   _EGLDisplay
	config _EGLConfig
	ctx    _EGLContext
	funcs  *gl.AndroidFunctions
}

// NewContext acquires and initializes the default display, picks
// an RGBA8888 config with 24-bit depth and 8-bit stencil, and
// creates an ES 3 context, falling back to ES 2.
func NewContext() (*Context, error) {
	disp := eglGetDisplay(_EGL_DEFAULT_DISPLAY)
	if disp == nilEGLDisplay {
		return nil, fmt.Errorf("eglGetDisplay failed: 0x%x", eglGetError())
	}
	if _, _, ok := eglInitialize(disp); !ok {
		return nil, fmt.Errorf("eglInitialize failed: 0x%x", eglGetError())
	}
	exts := strings.Split(eglQueryString(disp, _EGL_EXTENSIONS), " ")
	if !hasExtension(exts, "EGL_KHR_surfaceless_context") {
		eglTerminate(disp)
		return nil, errors.New("EGL_KHR_surfaceless_context not supported")
	}
	attribs := []_EGLint{
		_EGL_RENDERABLE_TYPE, _EGL_OPENGL_ES3_BIT,
		_EGL_RED_SIZE, 8,
		_EGL_GREEN_SIZE, 8,
		_EGL_BLUE_SIZE, 8,
		_EGL_ALPHA_SIZE, 8,
		_EGL_DEPTH_SIZE, 24,
		_EGL_STENCIL_SIZE, 8,
		_EGL_NONE,
	}
	cfg, ok := eglChooseConfig(disp, attribs)
	if !ok {
		eglTerminate(disp)
		return nil, fmt.Errorf("eglChooseConfig failed: 0x%x", eglGetError())
	}
	if cfg == nilEGLConfig {
		eglTerminate(disp)
		return nil, errors.New("eglChooseConfig matched no configs")
	}
	ctxAttribs := []_EGLint{_EGL_CONTEXT_CLIENT_VERSION, 3, _EGL_NONE}
	ctx := eglCreateContext(disp, cfg, nilEGLContext, ctxAttribs)
	if ctx == nilEGLContext {
		// Fall back to OpenGL ES 2.
		ctxAttribs = []_EGLint{_EGL_CONTEXT_CLIENT_VERSION, 2, _EGL_NONE}
		ctx = eglCreateContext(disp, cfg, nilEGLContext, ctxAttribs)
		if ctx == nilEGLContext {
			eglTerminate(disp)
			return nil, fmt.Errorf("eglCreateContext failed: 0x%x", eglGetError())
		}
	}
	return &Context{
		disp:   disp,
		config: cfg,
		ctx:    ctx,
		funcs:  gl.NewFunctions(),
	}, nil
}

// MakeCurrent binds the context to the calling thread with no
// drawable surface.
func (c *Context) MakeCurrent() error {
	if !eglMakeCurrent(c.disp, nilEGLSurface, nilEGLSurface, c.ctx) {
		return fmt.Errorf("eglMakeCurrent failed: 0x%x", eglGetError())
	}
	return nil
}

// ReleaseCurrent unbinds the context from the calling thread.
func (c *Context) ReleaseCurrent() {
	if c.disp != nilEGLDisplay {
		eglMakeCurrent(c.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
	}
}

// Functions returns the GL binding for this context.
func (c *Context) Functions() gl.Functions {
	return c.funcs
}

// Binding returns the native handle triple for the session
// graphics binding.
func (c *Context) Binding() xr.GraphicsBinding {
	return xr.GraphicsBinding{
		Display: uintptr(c.disp),
		Config:  uintptr(c.config),
		Context: uintptr(c.ctx),
	}
}

// Release unbinds and destroys the context and terminates the
// display. It is safe to call on a partially initialized or
// already released Context.
func (c *Context) Release() {
	if c.ctx != nilEGLContext {
		eglMakeCurrent(c.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
		eglDestroyContext(c.disp, c.ctx)
		c.ctx = nilEGLContext
	}
	if c.disp != nilEGLDisplay {
		eglTerminate(c.disp)
		eglReleaseThread()
		c.disp = nilEGLDisplay
	}
	c.config = nilEGLConfig
	c.funcs = nil
}

func hasExtension(exts []string, ext string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
