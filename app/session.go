// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/gpu"
	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/xr"
)

// worker is the render goroutine. Every runtime and GL call happens
// here, on a locked OS thread attached to the host VM.
func (s *State) worker() {
	defer close(s.workerDone)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	detach, err := s.platform.AttachThread()
	if err != nil {
		log.Printf("xrcore: %v", err)
		return
	}
	defer detach()
	if !s.waitResumed() {
		return
	}
	if err := s.setup(); err != nil {
		log.Printf("xrcore: setup failed: %v", err)
		s.teardown()
		return
	}
	s.loop()
	s.teardown()
}

// checkXR converts a runtime result into an error carrying the
// failed operation name. All XR failure reporting goes through
// here.
func (s *State) checkXR(op string, r xr.Result) error {
	if r.Succeeded() {
		return nil
	}
	if s.instance != 0 {
		return fmt.Errorf("%s failed: %s", op, s.rt.ResultToString(s.instance, r))
	}
	return fmt.Errorf("%s failed: %s", op, r)
}

// setup runs the ordered creation chain. The first failing step
// aborts; the caller unwinds whatever was built with teardown.
func (s *State) setup() error {
	s.rt = s.platform.Runtime()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"loader", s.initLoader},
		{"instance", s.createInstance},
		{"system", s.resolveSystem},
		{"graphics", s.initGraphics},
		{"blend mode", s.chooseBlendMode},
		{"session", s.createSession},
		{"space", s.createStageSpace},
		{"swapchains", s.createSwapchains},
		{"pipeline", s.createPipeline},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (s *State) initLoader() error {
	return s.checkXR("xrInitializeLoaderKHR", s.rt.InitializeLoader())
}

func (s *State) createInstance() error {
	exts, r := s.rt.EnumerateExtensions()
	if err := s.checkXR("xrEnumerateInstanceExtensionProperties", r); err != nil {
		return err
	}
	info := xr.InstanceInfo{
		ApplicationName:    appName,
		ApplicationVersion: appVersion,
		EngineName:         engineName,
		EngineVersion:      engineVersion,
		Extensions: []string{
			xr.ExtAndroidCreateInstance,
			xr.ExtOpenGLESEnable,
		},
	}
	// Passthrough views are requested opportunistically.
	if containsString(exts, xr.ExtPassthroughViewConfig) {
		info.Extensions = append(info.Extensions, xr.ExtPassthroughViewConfig)
	}
	inst, r := s.rt.CreateInstance(info)
	if err := s.checkXR("xrCreateInstance", r); err != nil {
		return err
	}
	s.instance = inst
	return nil
}

func (s *State) resolveSystem() error {
	system, r := s.rt.GetSystem(s.instance, xr.FormFactorHeadMountedDisplay)
	if err := s.checkXR("xrGetSystem", r); err != nil {
		return err
	}
	s.system = system
	return nil
}

// initGraphics creates the surfaceless context, makes it current on
// the worker thread and verifies it against the runtime's version
// range. A version mismatch is logged, not fatal.
func (s *State) initGraphics() error {
	ctx, err := s.platform.NewContext()
	if err != nil {
		return err
	}
	s.ctx = ctx
	if err := ctx.MakeCurrent(); err != nil {
		return err
	}
	s.f = ctx.Functions()
	reqs, r := s.rt.GraphicsRequirements(s.instance, s.system)
	if err := s.checkXR("xrGetOpenGLESGraphicsRequirementsKHR", r); err != nil {
		return err
	}
	ver, err := gl.ParseGLVersion(s.f.GetString(gl.VERSION))
	if err != nil {
		log.Printf("xrcore: %v", err)
		return nil
	}
	got := xr.MakeVersion(uint16(ver[0]), uint16(ver[1]), 0)
	if got < reqs.MinAPIVersion || got > reqs.MaxAPIVersion {
		log.Printf("xrcore: OpenGL ES %d.%d outside runtime range %v to %v",
			ver[0], ver[1], reqs.MinAPIVersion, reqs.MaxAPIVersion)
	}
	return nil
}

// chooseBlendMode picks alpha blending when the runtime offers it
// and falls back to opaque.
func (s *State) chooseBlendMode() error {
	modes, r := s.rt.EnumerateEnvironmentBlendModes(s.instance, s.system, xr.ViewConfigurationPrimaryStereo)
	if err := s.checkXR("xrEnumerateEnvironmentBlendModes", r); err != nil {
		return err
	}
	s.blend = xr.BlendModeOpaque
	for _, m := range modes {
		if m == xr.BlendModeAlphaBlend {
			s.blend = m
			break
		}
	}
	return nil
}

func (s *State) createSession() error {
	sess, r := s.rt.CreateSession(s.instance, s.system, s.ctx.Binding())
	if err := s.checkXR("xrCreateSession", r); err != nil {
		return err
	}
	s.session = sess
	return nil
}

func (s *State) createStageSpace() error {
	space, r := s.rt.CreateReferenceSpace(s.session, xr.ReferenceSpaceStage, f32.PoseIdentity)
	if err := s.checkXR("xrCreateReferenceSpace", r); err != nil {
		return err
	}
	s.space = space
	return nil
}

// createSwapchains builds one swapchain plus eye buffer per view at
// the runtime-recommended size.
func (s *State) createSwapchains() error {
	views, r := s.rt.EnumerateViewConfigurationViews(s.instance, s.system, xr.ViewConfigurationPrimaryStereo)
	if err := s.checkXR("xrEnumerateViewConfigurationViews", r); err != nil {
		return err
	}
	if len(views) == 0 {
		return errors.New("no stereo views reported")
	}
	formats, r := s.rt.EnumerateSwapchainFormats(s.session)
	if err := s.checkXR("xrEnumerateSwapchainFormats", r); err != nil {
		return err
	}
	format, err := chooseFormat(formats)
	if err != nil {
		return err
	}
	for _, v := range views {
		sc, r := s.rt.CreateSwapchain(s.session, xr.SwapchainCreateInfo{
			Format:      format,
			Width:       v.RecommendedWidth,
			Height:      v.RecommendedHeight,
			SampleCount: v.RecommendedSampleCount,
		})
		if err := s.checkXR("xrCreateSwapchain", r); err != nil {
			return err
		}
		e := &eye{
			swapchain: sc,
			width:     v.RecommendedWidth,
			height:    v.RecommendedHeight,
		}
		// Recorded before image enumeration so teardown frees the
		// swapchain even when the next call fails.
		s.eyes = append(s.eyes, e)
		imgs, r := s.rt.EnumerateSwapchainImages(sc)
		if err := s.checkXR("xrEnumerateSwapchainImages", r); err != nil {
			return err
		}
		e.images = make([]gl.Texture, len(imgs))
		for i, name := range imgs {
			e.images[i] = gl.Texture{V: uint(name)}
		}
		e.buffer = gpu.NewEyeBuffer(s.f, e.width, e.height)
	}
	return nil
}

func (s *State) createPipeline() error {
	p, err := gpu.NewPipeline(s.f)
	if err != nil {
		return err
	}
	s.pipeline = p
	return nil
}

// chooseFormat prefers sRGB color, then plain RGBA, then whatever
// the runtime offers first.
func chooseFormat(formats []int64) (int64, error) {
	for _, want := range []int64{gl.SRGB8_ALPHA8, gl.RGBA8} {
		for _, f := range formats {
			if f == want {
				return f, nil
			}
		}
	}
	if len(formats) > 0 {
		return formats[0], nil
	}
	return 0, errors.New("no swapchain formats reported")
}

// handleSessionState reacts to runtime-driven state transitions.
// Ready begins the session and enables rendering, Stopping ends it,
// Exiting and LossPending shut the worker down.
func (s *State) handleSessionState(state xr.SessionState) {
	s.sessionState = state
	switch state {
	case xr.SessionStateReady:
		if err := s.checkXR("xrBeginSession", s.rt.BeginSession(s.session, xr.ViewConfigurationPrimaryStereo)); err != nil {
			log.Printf("xrcore: %v", err)
			s.stop()
			return
		}
		s.readyToRender = true
	case xr.SessionStateStopping:
		s.readyToRender = false
		if err := s.checkXR("xrEndSession", s.rt.EndSession(s.session)); err != nil {
			log.Printf("xrcore: %v", err)
		}
	case xr.SessionStateExiting, xr.SessionStateLossPending:
		s.readyToRender = false
		s.stop()
	}
}

// teardown destroys everything setup built, in reverse creation
// order. Partially built state and repeated calls are fine; every
// branch nils what it freed.
func (s *State) teardown() {
	if s.f != nil {
		if s.pipeline != nil {
			s.pipeline.Release(s.f)
			s.pipeline = nil
		}
		for _, e := range s.eyes {
			if e.buffer != nil {
				e.buffer.Release(s.f)
			}
		}
		s.f.Finish()
	}
	for _, e := range s.eyes {
		s.rt.DestroySwapchain(e.swapchain)
	}
	s.eyes = nil
	if s.space != 0 {
		s.rt.DestroySpace(s.space)
		s.space = 0
	}
	if s.session != 0 {
		s.rt.DestroySession(s.session)
		s.session = 0
	}
	if s.ctx != nil {
		s.ctx.Release()
		s.ctx = nil
		s.f = nil
	}
	if s.instance != 0 {
		s.rt.DestroyInstance(s.instance)
		s.instance = 0
	}
	s.readyToRender = false
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
