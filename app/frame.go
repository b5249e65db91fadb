// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log"
	"time"

	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/xr"
)

// loop pumps runtime events and renders frames until the worker is
// stopped. While paused or before the session is ready it throttles
// itself instead of blocking, so events keep flowing.
func (s *State) loop() {
	for {
		s.pollEvents()
		running, resumed := s.flags()
		if !running {
			return
		}
		if !resumed || !s.readyToRender {
			time.Sleep(s.idlePause)
			continue
		}
		s.frame()
	}
}

// pollEvents drains the runtime event queue.
func (s *State) pollEvents() {
	for {
		ev, r := s.rt.PollEvent(s.instance)
		if r == xr.EventUnavailable {
			return
		}
		if err := s.checkXR("xrPollEvent", r); err != nil {
			log.Printf("xrcore: %v", err)
			s.stop()
			return
		}
		switch ev.Type {
		case xr.EventSessionStateChanged:
			s.handleSessionState(ev.State)
		case xr.EventInstanceLossPending:
			log.Printf("xrcore: instance loss pending, shutting down")
			s.stop()
			return
		case xr.EventEventsLost:
			log.Printf("xrcore: runtime event queue overflowed")
		}
	}
}

// frame runs one wait/begin/render/end cycle. EndFrame is submitted
// exactly once per successful BeginFrame, with an empty layer list
// when there is nothing to show.
func (s *State) frame() {
	fs, r := s.rt.WaitFrame(s.session)
	if err := s.checkXR("xrWaitFrame", r); err != nil {
		log.Printf("xrcore: %v", err)
		s.stop()
		return
	}
	if err := s.checkXR("xrBeginFrame", s.rt.BeginFrame(s.session)); err != nil {
		log.Printf("xrcore: %v", err)
		s.stop()
		return
	}
	var layers []xr.ProjectionLayer
	if fs.ShouldRender {
		if layer, ok := s.renderViews(fs.PredictedDisplayTime); ok {
			layers = append(layers, layer)
		}
	}
	if err := s.checkXR("xrEndFrame", s.rt.EndFrame(s.session, fs.PredictedDisplayTime, s.blend, layers)); err != nil {
		log.Printf("xrcore: %v", err)
		s.stop()
	}
}

// renderViews locates both eyes and renders each into its
// swapchain. The layer is only usable when every eye produced a
// view, since the compositor expects one view per configured eye.
func (s *State) renderViews(displayTime xr.Time) (xr.ProjectionLayer, bool) {
	views, r := s.rt.LocateViews(s.session, displayTime, s.space, len(s.eyes))
	if err := s.checkXR("xrLocateViews", r); err != nil {
		log.Printf("xrcore: %v", err)
		return xr.ProjectionLayer{}, false
	}
	if len(views) != len(s.eyes) {
		log.Printf("xrcore: located %d views, want %d", len(views), len(s.eyes))
		return xr.ProjectionLayer{}, false
	}
	projViews := make([]xr.ProjectionView, 0, len(views))
	complete := true
	for i, v := range views {
		pv, ok := s.renderEye(s.eyes[i], v)
		if !ok {
			complete = false
			continue
		}
		projViews = append(projViews, pv)
	}
	if !complete {
		return xr.ProjectionLayer{}, false
	}
	return xr.ProjectionLayer{Space: s.space, Views: projViews}, true
}

// renderEye draws the scene for one eye into the next swapchain
// image. A failed acquire or wait skips the eye for this frame; the
// image is only released after a successful wait.
func (s *State) renderEye(e *eye, v xr.View) (xr.ProjectionView, bool) {
	idx, r := s.rt.AcquireSwapchainImage(e.swapchain)
	if err := s.checkXR("xrAcquireSwapchainImage", r); err != nil {
		log.Printf("xrcore: %v", err)
		return xr.ProjectionView{}, false
	}
	if err := s.checkXR("xrWaitSwapchainImage", s.rt.WaitSwapchainImage(e.swapchain, xr.InfiniteDuration)); err != nil {
		log.Printf("xrcore: %v", err)
		return xr.ProjectionView{}, false
	}
	ok := s.drawEye(e, idx, v)
	s.rt.ReleaseSwapchainImage(e.swapchain)
	if !ok {
		return xr.ProjectionView{}, false
	}
	return xr.ProjectionView{
		Pose: v.Pose,
		Fov:  v.Fov,
		SubImage: xr.SwapchainSubImage{
			Swapchain: e.swapchain,
			Rect:      xr.Rect2Di{Width: int32(e.width), Height: int32(e.height)},
		},
	}, true
}

func (s *State) drawEye(e *eye, idx int, v xr.View) bool {
	if idx < 0 || idx >= len(e.images) {
		log.Printf("xrcore: swapchain image index %d out of range", idx)
		return false
	}
	if err := e.buffer.Bind(s.f, e.images[idx]); err != nil {
		log.Printf("xrcore: %v", err)
		return false
	}
	// Transparent clear lets passthrough show through on alpha
	// blending runtimes.
	alpha := float32(1)
	if s.blend == xr.BlendModeAlphaBlend {
		alpha = 0
	}
	s.f.Enable(gl.DEPTH_TEST)
	s.f.ClearColor(0.1, 0.1, 0.1, alpha)
	s.f.ClearDepthf(1)
	s.f.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	// The quad hangs one meter in front of the space origin.
	model := f32.Translation(f32.Vec3{Z: -1})
	proj := f32.Projection(v.Fov, nearZ, farZ)
	view := f32.View(v.Pose)
	mvp := f32.Mul(model, f32.Mul(view, proj))
	s.pipeline.Draw(s.f, mvp)
	e.buffer.Unbind(s.f)
	return true
}
