// SPDX-License-Identifier: Unlicense OR MIT

//go:build android
// +build android

package egl

/*
#cgo LDFLAGS: -lEGL

#include <EGL/egl.h>
*/
import "C"

import "unsafe"

func eglGetDisplay(disp uintptr) _EGLDisplay {
	return _EGLDisplay(uintptr(unsafe.Pointer(C.eglGetDisplay(C.EGLNativeDisplayType(unsafe.Pointer(disp))))))
}

func eglInitialize(disp _EGLDisplay) (_EGLint, _EGLint, bool) {
	var major, minor C.EGLint
	ret := C.eglInitialize(cDisplay(disp), &major, &minor)
	return _EGLint(major), _EGLint(minor), ret == C.EGL_TRUE
}

func eglQueryString(disp _EGLDisplay, name _EGLint) string {
	return C.GoString(C.eglQueryString(cDisplay(disp), C.EGLint(name)))
}

func eglChooseConfig(disp _EGLDisplay, attribs []_EGLint) (_EGLConfig, bool) {
	var cfg C.EGLConfig
	var ncfg C.EGLint
	ret := C.eglChooseConfig(cDisplay(disp), (*C.EGLint)(unsafe.Pointer(&attribs[0])), &cfg, 1, &ncfg)
	if ret != C.EGL_TRUE || ncfg == 0 {
		return nilEGLConfig, ret == C.EGL_TRUE
	}
	return _EGLConfig(uintptr(cfg)), true
}

func eglCreateContext(disp _EGLDisplay, cfg _EGLConfig, share _EGLContext, attribs []_EGLint) _EGLContext {
	ctx := C.eglCreateContext(cDisplay(disp), C.EGLConfig(unsafe.Pointer(uintptr(cfg))),
		C.EGLContext(unsafe.Pointer(uintptr(share))), (*C.EGLint)(unsafe.Pointer(&attribs[0])))
	return _EGLContext(uintptr(ctx))
}

func eglDestroyContext(disp _EGLDisplay, ctx _EGLContext) bool {
	return C.eglDestroyContext(cDisplay(disp), C.EGLContext(unsafe.Pointer(uintptr(ctx)))) == C.EGL_TRUE
}

func eglMakeCurrent(disp _EGLDisplay, draw, read _EGLSurface, ctx _EGLContext) bool {
	return C.eglMakeCurrent(cDisplay(disp),
		C.EGLSurface(unsafe.Pointer(uintptr(draw))),
		C.EGLSurface(unsafe.Pointer(uintptr(read))),
		C.EGLContext(unsafe.Pointer(uintptr(ctx)))) == C.EGL_TRUE
}

func eglTerminate(disp _EGLDisplay) bool {
	return C.eglTerminate(cDisplay(disp)) == C.EGL_TRUE
}

func eglReleaseThread() bool {
	return C.eglReleaseThread() == C.EGL_TRUE
}

func eglGetError() _EGLint {
	return _EGLint(C.eglGetError())
}

func cDisplay(disp _EGLDisplay) C.EGLDisplay {
	return C.EGLDisplay(unsafe.Pointer(uintptr(disp)))
}
