// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"sync"

	"github.com/irisagent/xrcore/f32"
	"github.com/irisagent/xrcore/internal/gl"
	"github.com/irisagent/xrcore/internal/gl/gltest"
	"github.com/irisagent/xrcore/internal/xr"
)

// fakeRuntime scripts the runtime side of a session. Events listed
// in events are delivered in order; injected is appended to the
// queue after the injectAfter'th EndFrame, which is how tests make
// the frame loop wind down deterministically.
type fakeRuntime struct {
	mu sync.Mutex

	extensions   []string
	blendModes   []xr.EnvironmentBlendMode
	formats      []int64
	viewCount    int
	imageCount   int
	shouldRender bool

	events      []xr.Event
	injectAfter int
	injected    []xr.Event

	failCreateSession bool
	failAcquire       map[xr.Swapchain]bool
	failWait          map[xr.Swapchain]bool

	calls        map[string]int
	instanceInfo xr.InstanceInfo
	binding      xr.GraphicsBinding
	swapchains   []xr.Swapchain
	scFormats    []int64
	acquires     map[xr.Swapchain]int
	releases     map[xr.Swapchain]int
	endFrames    []endFrame
	nextHandle   uint64
	displayTime  xr.Time
}

type endFrame struct {
	blend  xr.EnvironmentBlendMode
	layers []xr.ProjectionLayer
}

// newFakeRuntime returns a runtime scripted for a plain two-eye
// session that asks the loop to exit after frames EndFrame calls.
func newFakeRuntime(frames int) *fakeRuntime {
	return &fakeRuntime{
		extensions:   []string{xr.ExtAndroidCreateInstance, xr.ExtOpenGLESEnable},
		blendModes:   []xr.EnvironmentBlendMode{xr.BlendModeOpaque},
		formats:      []int64{gl.RGBA8, gl.SRGB8_ALPHA8},
		viewCount:    2,
		imageCount:   3,
		shouldRender: true,
		events:       []xr.Event{{Type: xr.EventSessionStateChanged, State: xr.SessionStateReady}},
		injectAfter:  frames,
		injected:     []xr.Event{{Type: xr.EventSessionStateChanged, State: xr.SessionStateExiting}},
	}
}

// push queues an event as if the runtime emitted it.
func (r *fakeRuntime) push(ev xr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *fakeRuntime) record(op string) {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[op]++
}

func (r *fakeRuntime) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeRuntime) handle() uint64 {
	r.nextHandle++
	return r.nextHandle
}

func (r *fakeRuntime) InitializeLoader() xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("InitializeLoader")
	return xr.Success
}

func (r *fakeRuntime) EnumerateExtensions() ([]string, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnumerateExtensions")
	return r.extensions, xr.Success
}

func (r *fakeRuntime) CreateInstance(info xr.InstanceInfo) (xr.Instance, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateInstance")
	r.instanceInfo = info
	return xr.Instance(r.handle()), xr.Success
}

func (r *fakeRuntime) DestroyInstance(inst xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DestroyInstance")
	return xr.Success
}

func (r *fakeRuntime) ResultToString(inst xr.Instance, res xr.Result) string {
	return fmt.Sprintf("XR_FAKE_ERROR(%d)", int32(res))
}

func (r *fakeRuntime) GetSystem(inst xr.Instance, form xr.FormFactor) (xr.SystemID, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetSystem")
	return xr.SystemID(r.handle()), xr.Success
}

func (r *fakeRuntime) EnumerateEnvironmentBlendModes(inst xr.Instance, system xr.SystemID, vc xr.ViewConfigurationType) ([]xr.EnvironmentBlendMode, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnumerateEnvironmentBlendModes")
	return r.blendModes, xr.Success
}

func (r *fakeRuntime) GraphicsRequirements(inst xr.Instance, system xr.SystemID) (xr.GraphicsRequirements, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GraphicsRequirements")
	return xr.GraphicsRequirements{
		MinAPIVersion: xr.MakeVersion(3, 0, 0),
		MaxAPIVersion: xr.MakeVersion(3, 2, 0),
	}, xr.Success
}

func (r *fakeRuntime) CreateSession(inst xr.Instance, system xr.SystemID, binding xr.GraphicsBinding) (xr.Session, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateSession")
	if r.failCreateSession {
		return 0, xr.ErrorRuntimeFailure
	}
	r.binding = binding
	return xr.Session(r.handle()), xr.Success
}

func (r *fakeRuntime) DestroySession(sess xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DestroySession")
	return xr.Success
}

func (r *fakeRuntime) CreateReferenceSpace(sess xr.Session, typ xr.ReferenceSpaceType, pose f32.Pose) (xr.Space, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateReferenceSpace")
	return xr.Space(r.handle()), xr.Success
}

func (r *fakeRuntime) DestroySpace(space xr.Space) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DestroySpace")
	return xr.Success
}

func (r *fakeRuntime) EnumerateViewConfigurationViews(inst xr.Instance, system xr.SystemID, vc xr.ViewConfigurationType) ([]xr.ViewConfigurationView, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnumerateViewConfigurationViews")
	views := make([]xr.ViewConfigurationView, r.viewCount)
	for i := range views {
		views[i] = xr.ViewConfigurationView{
			RecommendedWidth:       1024,
			RecommendedHeight:      1024,
			RecommendedSampleCount: 1,
		}
	}
	return views, xr.Success
}

func (r *fakeRuntime) EnumerateSwapchainFormats(sess xr.Session) ([]int64, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnumerateSwapchainFormats")
	return r.formats, xr.Success
}

func (r *fakeRuntime) CreateSwapchain(sess xr.Session, info xr.SwapchainCreateInfo) (xr.Swapchain, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateSwapchain")
	sc := xr.Swapchain(r.handle())
	r.swapchains = append(r.swapchains, sc)
	r.scFormats = append(r.scFormats, info.Format)
	return sc, xr.Success
}

func (r *fakeRuntime) DestroySwapchain(sc xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DestroySwapchain")
	return xr.Success
}

func (r *fakeRuntime) EnumerateSwapchainImages(sc xr.Swapchain) ([]uint32, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnumerateSwapchainImages")
	imgs := make([]uint32, r.imageCount)
	for i := range imgs {
		imgs[i] = uint32(100*uint64(sc) + uint64(i))
	}
	return imgs, xr.Success
}

func (r *fakeRuntime) PollEvent(inst xr.Instance) (xr.Event, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return xr.Event{}, xr.EventUnavailable
	}
	ev := r.events[0]
	r.events = r.events[1:]
	return ev, xr.Success
}

func (r *fakeRuntime) BeginSession(sess xr.Session, vc xr.ViewConfigurationType) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BeginSession")
	return xr.Success
}

func (r *fakeRuntime) EndSession(sess xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EndSession")
	return xr.Success
}

func (r *fakeRuntime) WaitFrame(sess xr.Session) (xr.FrameState, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("WaitFrame")
	r.displayTime += 11111111
	return xr.FrameState{
		PredictedDisplayTime:   r.displayTime,
		PredictedDisplayPeriod: 11111111,
		ShouldRender:           r.shouldRender,
	}, xr.Success
}

func (r *fakeRuntime) BeginFrame(sess xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BeginFrame")
	return xr.Success
}

func (r *fakeRuntime) EndFrame(sess xr.Session, displayTime xr.Time, blend xr.EnvironmentBlendMode, layers []xr.ProjectionLayer) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EndFrame")
	r.endFrames = append(r.endFrames, endFrame{blend: blend, layers: layers})
	if len(r.endFrames) == r.injectAfter {
		r.events = append(r.events, r.injected...)
	}
	return xr.Success
}

func (r *fakeRuntime) LocateViews(sess xr.Session, displayTime xr.Time, space xr.Space, viewCount int) ([]xr.View, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("LocateViews")
	views := make([]xr.View, r.viewCount)
	for i := range views {
		x := float32(0.032)
		if i == 0 {
			x = -x
		}
		views[i] = xr.View{
			Pose: f32.Pose{Orientation: f32.QuatIdentity, Position: f32.Vec3{X: x}},
			Fov:  f32.Fov{AngleLeft: -0.78, AngleRight: 0.78, AngleUp: 0.78, AngleDown: -0.78},
		}
	}
	return views, xr.Success
}

func (r *fakeRuntime) AcquireSwapchainImage(sc xr.Swapchain) (int, xr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("AcquireSwapchainImage")
	if r.failAcquire[sc] {
		return 0, xr.ErrorRuntimeFailure
	}
	if r.acquires == nil {
		r.acquires = make(map[xr.Swapchain]int)
	}
	idx := r.acquires[sc] % r.imageCount
	r.acquires[sc]++
	return idx, xr.Success
}

func (r *fakeRuntime) WaitSwapchainImage(sc xr.Swapchain, timeout xr.Duration) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("WaitSwapchainImage")
	if r.failWait[sc] {
		return xr.ErrorRuntimeFailure
	}
	return xr.Success
}

func (r *fakeRuntime) ReleaseSwapchainImage(sc xr.Swapchain) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ReleaseSwapchainImage")
	if r.releases == nil {
		r.releases = make(map[xr.Swapchain]int)
	}
	r.releases[sc]++
	return xr.Success
}

// fakePlatform wires a fakeRuntime and a recording GL fake into the
// Platform seam. The counters are read by tests only after the
// worker has exited.
type fakePlatform struct {
	rt  *fakeRuntime
	glf *gltest.Fake

	attaches      int
	detaches      int
	released      bool
	ctxReleases   int
	newContextErr error
}

func newFakePlatform(rt *fakeRuntime) *fakePlatform {
	return &fakePlatform{rt: rt, glf: new(gltest.Fake)}
}

func (p *fakePlatform) Runtime() xr.Runtime { return p.rt }

func (p *fakePlatform) NewContext() (Context, error) {
	if p.newContextErr != nil {
		return nil, p.newContextErr
	}
	return &fakeContext{p: p}, nil
}

func (p *fakePlatform) AttachThread() (func(), error) {
	p.attaches++
	return func() { p.detaches++ }, nil
}

func (p *fakePlatform) Release() { p.released = true }

type fakeContext struct {
	p       *fakePlatform
	current bool
}

func (c *fakeContext) MakeCurrent() error {
	c.current = true
	return nil
}

func (c *fakeContext) ReleaseCurrent() { c.current = false }

func (c *fakeContext) Functions() gl.Functions { return c.p.glf }

func (c *fakeContext) Binding() xr.GraphicsBinding {
	return xr.GraphicsBinding{Display: 1, Config: 2, Context: 3}
}

func (c *fakeContext) Release() { c.p.ctxReleases++ }
