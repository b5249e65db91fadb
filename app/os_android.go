// SPDX-License-Identifier: Unlicense OR MIT

//go:build android
// +build android

package app

/*
#cgo CFLAGS: -Werror
#cgo LDFLAGS: -landroid

#include <jni.h>
#include <stdlib.h>
#include "jni_android.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/irisagent/xrcore/internal/egl"
	_ "github.com/irisagent/xrcore/internal/log"
	"github.com/irisagent/xrcore/internal/xr"
)

// theState is the one State owned by the JNI bridge. Everything
// outside this file receives it explicitly.
var theState *State

// androidPlatform holds the process JavaVM and a global reference
// to the activity, both needed by the OpenXR loader.
type androidPlatform struct {
	vm       *C.JavaVM
	activity C.jobject
}

func (p *androidPlatform) Runtime() xr.Runtime {
	return xr.NewRuntime(unsafe.Pointer(p.vm), unsafe.Pointer(p.activity))
}

func (p *androidPlatform) NewContext() (Context, error) {
	return egl.NewContext()
}

func (p *androidPlatform) AttachThread() (func(), error) {
	var env *C.JNIEnv
	switch res := C.iris_jni_GetEnv(p.vm, &env, C.JNI_VERSION_1_6); res {
	case C.JNI_OK:
		// Already attached; nothing to undo.
		return func() {}, nil
	case C.JNI_EDETACHED:
	default:
		return nil, fmt.Errorf("JNI GetEnv failed with error %d", int32(res))
	}
	if C.iris_jni_AttachCurrentThread(p.vm, &env, nil) != C.JNI_OK {
		return nil, errors.New("AttachCurrentThread failed")
	}
	vm := p.vm
	return func() {
		C.iris_jni_DetachCurrentThread(vm)
	}, nil
}

// Release drops the activity reference. It runs on the activity
// thread, which is always JNI attached.
func (p *androidPlatform) Release() {
	if p.activity == nil {
		return
	}
	var env *C.JNIEnv
	if C.iris_jni_GetEnv(p.vm, &env, C.JNI_VERSION_1_6) == C.JNI_OK {
		C.iris_jni_DeleteGlobalRef(env, p.activity)
	}
	p.activity = nil
}

//export Java_com_irisagent_xr_XRActivity_onCreateNative
func Java_com_irisagent_xr_XRActivity_onCreateNative(env *C.JNIEnv, this C.jobject, activity C.jobject) {
	if theState != nil {
		return
	}
	var vm *C.JavaVM
	if C.iris_jni_GetJavaVM(env, &vm) != C.JNI_OK {
		panic("onCreateNative: GetJavaVM failed")
	}
	theState = New(&androidPlatform{
		vm:       vm,
		activity: C.iris_jni_NewGlobalRef(env, activity),
	})
	theState.Create()
}

//export Java_com_irisagent_xr_XRActivity_onResumeNative
func Java_com_irisagent_xr_XRActivity_onResumeNative(env *C.JNIEnv, this C.jobject) {
	if theState != nil {
		theState.Resume()
	}
}

//export Java_com_irisagent_xr_XRActivity_onPauseNative
func Java_com_irisagent_xr_XRActivity_onPauseNative(env *C.JNIEnv, this C.jobject) {
	if theState != nil {
		theState.Pause()
	}
}

//export Java_com_irisagent_xr_XRActivity_onDestroyNative
func Java_com_irisagent_xr_XRActivity_onDestroyNative(env *C.JNIEnv, this C.jobject) {
	if theState == nil {
		return
	}
	theState.Destroy()
	theState = nil
}
