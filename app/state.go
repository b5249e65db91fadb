// SPDX-License-Identifier: Unlicense OR MIT

// Package app drives the XR session: it owns the render worker, the
// session lifecycle state machine and the frame loop, and bridges
// them to the Android activity callbacks.
package app

import (
	"sync"
	"time"

	"github.com/irisagent/xrcore/gpu"
	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/xr"
)

// Instance identity reported to the runtime.
const (
	appName       = "ProjectIrisMVP"
	appVersion    = 1
	engineName    = "CustomEngine"
	engineVersion = 1
)

// Clip planes for the projection transform.
const (
	nearZ = 0.05
	farZ  = 100.0
)

// Platform abstracts the host the worker runs on. The Android
// implementation wraps the JavaVM and activity; tests supply fakes.
type Platform interface {
	// Runtime returns the OpenXR binding.
	Runtime() xr.Runtime
	// NewContext creates the graphics context. Called on the worker
	// thread.
	NewContext() (Context, error)
	// AttachThread attaches the calling thread to the host VM and
	// returns the detach function.
	AttachThread() (func(), error)
	// Release frees platform resources after the worker has exited.
	Release()
}

// Context is the graphics context seam, implemented by egl.Context
// on Android.
type Context interface {
	MakeCurrent() error
	ReleaseCurrent()
	Functions() gl.Functions
	Binding() xr.GraphicsBinding
	Release()
}

// eye is the per-view render state: the swapchain with its image
// ring and the framebuffer the eye draws into.
type eye struct {
	swapchain xr.Swapchain
	images    []gl.Texture
	buffer    *gpu.EyeBuffer
	width     int
	height    int
}

// State is the lifetime of one XR application run, from Create to
// Destroy. The activity-thread methods only touch the flag fields
// under mu; everything below is owned by the worker goroutine.
type State struct {
	platform Platform

	mu      sync.Mutex
	cond    *sync.Cond
	started bool
	running bool
	resumed bool

	workerDone chan struct{}

	// Pause between loop turns while the session is not rendering.
	idlePause time.Duration

	// Worker-owned. Not locked.
	rt            xr.Runtime
	ctx           Context
	f             gl.Functions
	instance      xr.Instance
	system        xr.SystemID
	session       xr.Session
	space         xr.Space
	blend         xr.EnvironmentBlendMode
	sessionState  xr.SessionState
	readyToRender bool
	pipeline      *gpu.Pipeline
	eyes          []*eye
}

// New returns a State bound to p. The worker does not start until
// Create.
func New(p Platform) *State {
	s := &State{
		platform:   p,
		workerDone: make(chan struct{}),
		idlePause:  100 * time.Millisecond,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}
