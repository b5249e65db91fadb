// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/xr"
)

// runToExit drives a full Create/Resume lifecycle and blocks until
// the worker has torn down.
func runToExit(t *testing.T, p *fakePlatform) *State {
	t.Helper()
	s := New(p)
	s.idlePause = time.Millisecond
	s.Create()
	s.Resume()
	select {
	case <-s.workerDone:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not exit")
	}
	return s
}

func TestSessionLifecycle(t *testing.T) {
	rt := newFakeRuntime(3)
	p := newFakePlatform(rt)
	s := runToExit(t, p)

	assert.Equal(t, 1, rt.Calls("InitializeLoader"))
	assert.Equal(t, 1, rt.Calls("CreateInstance"))
	assert.Equal(t, 1, rt.Calls("BeginSession"))
	assert.Equal(t, 3, rt.Calls("EndFrame"))
	assert.Equal(t, rt.Calls("WaitFrame"), rt.Calls("BeginFrame"))

	// Session graphics binding comes from the context.
	assert.Equal(t, xr.GraphicsBinding{Display: 1, Config: 2, Context: 3}, rt.binding)

	// Every frame submitted one stereo layer.
	require.Len(t, rt.endFrames, 3)
	for _, ef := range rt.endFrames {
		require.Len(t, ef.layers, 1)
		assert.Len(t, ef.layers[0].Views, 2)
	}

	// Acquire and release stayed paired per swapchain.
	require.Len(t, rt.swapchains, 2)
	for _, sc := range rt.swapchains {
		assert.Equal(t, 3, rt.acquires[sc])
		assert.Equal(t, 3, rt.releases[sc])
	}

	// Teardown ran in full.
	assert.Equal(t, 2, rt.Calls("DestroySwapchain"))
	assert.Equal(t, 1, rt.Calls("DestroySpace"))
	assert.Equal(t, 1, rt.Calls("DestroySession"))
	assert.Equal(t, 1, rt.Calls("DestroyInstance"))
	assert.Equal(t, 1, p.ctxReleases)
	assert.Equal(t, 1, p.glf.Calls("DeleteProgram"))
	assert.Zero(t, s.session)
	assert.Zero(t, s.instance)

	s.Destroy()
	assert.True(t, p.released)
	assert.Equal(t, p.attaches, p.detaches)
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPauseResumeDoesNotRecreate(t *testing.T) {
	rt := newFakeRuntime(1)
	rt.injected = []xr.Event{{Type: xr.EventSessionStateChanged, State: xr.SessionStateStopping}}
	p := newFakePlatform(rt)
	s := New(p)
	s.idlePause = time.Millisecond
	s.Create()
	s.Resume()
	waitFor(t, func() bool { return rt.Calls("EndSession") == 1 })

	s.Pause()
	s.Resume()
	rt.push(xr.Event{Type: xr.EventSessionStateChanged, State: xr.SessionStateReady})
	waitFor(t, func() bool { return rt.Calls("BeginSession") == 2 })

	rt.push(xr.Event{Type: xr.EventSessionStateChanged, State: xr.SessionStateExiting})
	select {
	case <-s.workerDone:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not exit")
	}
	// The whole setup chain ran exactly once.
	assert.Equal(t, 1, rt.Calls("CreateInstance"))
	assert.Equal(t, 1, rt.Calls("CreateSession"))
	assert.Equal(t, 2, rt.Calls("CreateSwapchain"))
	assert.Equal(t, 2, rt.Calls("BeginSession"))
}

func TestDestroyBeforeResume(t *testing.T) {
	rt := newFakeRuntime(1)
	p := newFakePlatform(rt)
	s := New(p)
	s.Create()
	done := make(chan struct{})
	go func() {
		s.Destroy()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Destroy did not return")
	}
	// The worker never touched the runtime.
	assert.Equal(t, 0, rt.Calls("InitializeLoader"))
	assert.True(t, p.released)
	assert.Equal(t, p.attaches, p.detaches)
}

func TestDestroyWithoutCreate(t *testing.T) {
	p := newFakePlatform(newFakeRuntime(1))
	s := New(p)
	s.Destroy()
	assert.True(t, p.released)
}

func TestEmptyFramesSubmitNoLayers(t *testing.T) {
	rt := newFakeRuntime(2)
	rt.shouldRender = false
	p := newFakePlatform(rt)
	runToExit(t, p)

	require.Len(t, rt.endFrames, 2)
	for _, ef := range rt.endFrames {
		assert.Empty(t, ef.layers)
	}
	assert.Equal(t, 0, rt.Calls("AcquireSwapchainImage"))
	assert.Equal(t, 0, p.glf.Calls("DrawElements"))
}

func TestAcquireFailureSkipsEye(t *testing.T) {
	rt := newFakeRuntime(2)
	p := newFakePlatform(rt)
	s := New(p)
	s.idlePause = time.Millisecond
	// Fail the second eye's acquire. Swapchain handles are known
	// only after setup, so script by handle order: the fake hands
	// out swapchains after instance, system, session and space.
	rt.failAcquire = map[xr.Swapchain]bool{6: true}
	s.Create()
	s.Resume()
	select {
	case <-s.workerDone:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not exit")
	}

	require.Len(t, rt.swapchains, 2)
	require.Equal(t, xr.Swapchain(6), rt.swapchains[1])
	// An incomplete frame submits no layer but still ends.
	require.Len(t, rt.endFrames, 2)
	for _, ef := range rt.endFrames {
		assert.Empty(t, ef.layers)
	}
	// The healthy eye stayed paired; the failed one was never
	// released.
	good := rt.swapchains[0]
	assert.Equal(t, rt.acquires[good], rt.releases[good])
	assert.Equal(t, 0, rt.releases[rt.swapchains[1]])
}

func TestWaitFailureReleasesNothing(t *testing.T) {
	rt := newFakeRuntime(2)
	p := newFakePlatform(rt)
	s := New(p)
	s.idlePause = time.Millisecond
	rt.failWait = map[xr.Swapchain]bool{6: true}
	s.Create()
	s.Resume()
	select {
	case <-s.workerDone:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not exit")
	}
	require.Len(t, rt.swapchains, 2)
	assert.Equal(t, 0, rt.releases[rt.swapchains[1]])
	for _, ef := range rt.endFrames {
		assert.Empty(t, ef.layers)
	}
}

func TestBlendModePrefersAlpha(t *testing.T) {
	rt := newFakeRuntime(1)
	rt.blendModes = []xr.EnvironmentBlendMode{xr.BlendModeAdditive, xr.BlendModeAlphaBlend, xr.BlendModeOpaque}
	p := newFakePlatform(rt)
	runToExit(t, p)
	require.NotEmpty(t, rt.endFrames)
	assert.Equal(t, xr.BlendModeAlphaBlend, rt.endFrames[0].blend)
}

func TestBlendModeFallsBackToOpaque(t *testing.T) {
	rt := newFakeRuntime(1)
	rt.blendModes = []xr.EnvironmentBlendMode{xr.BlendModeAdditive}
	p := newFakePlatform(rt)
	runToExit(t, p)
	require.NotEmpty(t, rt.endFrames)
	assert.Equal(t, xr.BlendModeOpaque, rt.endFrames[0].blend)
}

func TestStoppingEndsSession(t *testing.T) {
	rt := newFakeRuntime(2)
	rt.injected = []xr.Event{
		{Type: xr.EventSessionStateChanged, State: xr.SessionStateStopping},
		{Type: xr.EventSessionStateChanged, State: xr.SessionStateExiting},
	}
	p := newFakePlatform(rt)
	runToExit(t, p)
	assert.Equal(t, 1, rt.Calls("BeginSession"))
	assert.Equal(t, 1, rt.Calls("EndSession"))
	assert.Equal(t, 2, rt.Calls("EndFrame"))
}

func TestInstanceLossStopsWorker(t *testing.T) {
	rt := newFakeRuntime(1)
	rt.injected = []xr.Event{{Type: xr.EventInstanceLossPending}}
	p := newFakePlatform(rt)
	runToExit(t, p)
	assert.Equal(t, 1, rt.Calls("EndFrame"))
	assert.Equal(t, 1, rt.Calls("DestroyInstance"))
}

func TestSetupFailureUnwindsPartialState(t *testing.T) {
	rt := newFakeRuntime(1)
	rt.failCreateSession = true
	p := newFakePlatform(rt)
	s := runToExit(t, p)
	assert.Equal(t, 1, rt.Calls("CreateInstance"))
	assert.Equal(t, 0, rt.Calls("CreateSwapchain"))
	assert.Equal(t, 0, rt.Calls("DestroySession"))
	assert.Equal(t, 1, rt.Calls("DestroyInstance"))
	assert.Equal(t, 1, p.ctxReleases)
	assert.Zero(t, s.instance)
}

func TestContextFailureAbortsSetup(t *testing.T) {
	rt := newFakeRuntime(1)
	p := newFakePlatform(rt)
	p.newContextErr = errors.New("no display")
	runToExit(t, p)
	assert.Equal(t, 0, rt.Calls("CreateSession"))
	assert.Equal(t, 1, rt.Calls("DestroyInstance"))
}

func TestPassthroughRequestedWhenAvailable(t *testing.T) {
	rt := newFakeRuntime(1)
	s := New(newFakePlatform(rt))
	s.rt = rt
	require.NoError(t, s.createInstance())
	assert.NotContains(t, rt.instanceInfo.Extensions, xr.ExtPassthroughViewConfig)

	rt2 := newFakeRuntime(1)
	rt2.extensions = append(rt2.extensions, xr.ExtPassthroughViewConfig)
	s2 := New(newFakePlatform(rt2))
	s2.rt = rt2
	require.NoError(t, s2.createInstance())
	assert.Contains(t, rt2.instanceInfo.Extensions, xr.ExtPassthroughViewConfig)
	assert.Equal(t, appName, rt2.instanceInfo.ApplicationName)
}

func TestHandleSessionStateTransitions(t *testing.T) {
	rt := newFakeRuntime(1)
	s := New(newFakePlatform(rt))
	s.rt = rt
	s.session = 1
	s.running = true

	s.handleSessionState(xr.SessionStateReady)
	assert.True(t, s.readyToRender)
	assert.Equal(t, 1, rt.Calls("BeginSession"))

	s.handleSessionState(xr.SessionStateStopping)
	assert.False(t, s.readyToRender)
	assert.Equal(t, 1, rt.Calls("EndSession"))

	// Idle transitions change nothing.
	s.handleSessionState(xr.SessionStateIdle)
	running, _ := s.flags()
	assert.True(t, running)

	s.handleSessionState(xr.SessionStateExiting)
	running, _ = s.flags()
	assert.False(t, running)
}

func TestChooseFormat(t *testing.T) {
	got, err := chooseFormat([]int64{gl.RGBA8, gl.SRGB8_ALPHA8})
	require.NoError(t, err)
	assert.Equal(t, int64(gl.SRGB8_ALPHA8), got)

	got, err = chooseFormat([]int64{gl.RGBA8})
	require.NoError(t, err)
	assert.Equal(t, int64(gl.RGBA8), got)

	got, err = chooseFormat([]int64{0x881a})
	require.NoError(t, err)
	assert.Equal(t, int64(0x881a), got)

	_, err = chooseFormat(nil)
	assert.Error(t, err)
}

func TestSwapchainFormatSelection(t *testing.T) {
	rt := newFakeRuntime(1)
	p := newFakePlatform(rt)
	runToExit(t, p)
	require.Len(t, rt.scFormats, 2)
	for _, f := range rt.scFormats {
		assert.Equal(t, int64(gl.SRGB8_ALPHA8), f)
	}
}
