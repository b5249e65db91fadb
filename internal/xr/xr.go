// SPDX-License-Identifier: Unlicense OR MIT

// Package xr wraps the subset of OpenXR used by the stereo
// rendering core: instance and session lifetime, swapchains,
// frame timing and the session event stream.
//
// Calls into the runtime go through the Runtime interface so the
// session state machine and frame loop can be driven by a fake
// runtime in tests. The Android implementation binds the OpenXR
// loader through cgo.
package xr

import (
	"fmt"

	"github.com/irisagent/xrcore/f32"
)

// Handles are opaque 64-bit values owned by the runtime. The zero
// value is XR_NULL_HANDLE.
type (
	Instance  uint64
	SystemID  uint64
	Session   uint64
	Space     uint64
	Swapchain uint64
)

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration is a runtime interval in nanoseconds.
type Duration int64

// InfiniteDuration blocks until the runtime satisfies the wait.
const InfiniteDuration Duration = 0x7fffffffffffffff

// Result is an XrResult. Zero and positive values are success
// codes, negative values are errors.
type Result int32

const (
	Success            Result = 0
	TimeoutExpired     Result = 1
	SessionLossPending Result = 3
	EventUnavailable   Result = 4
	SessionNotFocused  Result = 8
	FrameDiscarded     Result = 9

	ErrorValidationFailure     Result = -1
	ErrorRuntimeFailure        Result = -2
	ErrorHandleInvalid         Result = -12
	ErrorSessionNotRunning     Result = -16
	ErrorSessionLost           Result = -17
	ErrorFormFactorUnavailable Result = -38
)

// Succeeded reports whether r is a success code.
func (r Result) Succeeded() bool {
	return r >= 0
}

func (r Result) String() string {
	return fmt.Sprintf("XrResult(%d)", int32(r))
}

// FormFactor selects the device class resolved by GetSystem.
type FormFactor int32

const FormFactorHeadMountedDisplay FormFactor = 1

// ViewConfigurationType selects the view arrangement of a session.
type ViewConfigurationType int32

const ViewConfigurationPrimaryStereo ViewConfigurationType = 2

// ReferenceSpaceType selects the coordinate frame of a space.
type ReferenceSpaceType int32

const (
	ReferenceSpaceView  ReferenceSpaceType = 1
	ReferenceSpaceLocal ReferenceSpaceType = 2
	ReferenceSpaceStage ReferenceSpaceType = 3
)

// EnvironmentBlendMode is how the compositor combines rendered
// layers with the user's surroundings.
type EnvironmentBlendMode int32

const (
	BlendModeOpaque     EnvironmentBlendMode = 1
	BlendModeAdditive   EnvironmentBlendMode = 2
	BlendModeAlphaBlend EnvironmentBlendMode = 3
)

// SessionState is the runtime-driven session lifecycle state.
type SessionState int32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

// EventType classifies events from PollEvent. Events the core
// does not act on are reported as EventIgnored.
type EventType int32

const (
	EventIgnored EventType = iota
	EventSessionStateChanged
	EventInstanceLossPending
	EventEventsLost
)

// An Event is one entry from the runtime event queue. State is
// valid only for EventSessionStateChanged.
type Event struct {
	Type  EventType
	State SessionState
}

// Extension names used by the core.
const (
	ExtAndroidCreateInstance = "XR_KHR_android_create_instance"
	ExtOpenGLESEnable        = "XR_KHR_opengl_es_enable"
	ExtPassthroughViewConfig = "XR_EPIC_view_configuration_passthrough"
)

// Limits from the XrApplicationInfo structure definition.
const (
	MaxApplicationNameSize = 128
	MaxEngineNameSize      = 128
)

// InstanceInfo is the application identity and extension list for
// CreateInstance. Names longer than the XrApplicationInfo field
// sizes are truncated.
type InstanceInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	Extensions         []string
}

// Version is an XR_MAKE_VERSION value.
type Version uint64

// MakeVersion packs major, minor and patch into a Version.
func MakeVersion(major, minor, patch uint16) Version {
	return Version(uint64(major)<<48 | uint64(minor)<<32 | uint64(patch))
}

// Major returns the major component of v.
func (v Version) Major() int { return int(v >> 48) }

// Minor returns the minor component of v.
func (v Version) Minor() int { return int(v >> 32 & 0xffff) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v>>48, v>>32&0xffff, v&0xffffffff)
}

// GraphicsRequirements is the GLES version range the runtime
// supports for session graphics bindings.
type GraphicsRequirements struct {
	MinAPIVersion Version
	MaxAPIVersion Version
}

// GraphicsBinding carries the EGL triple a session renders with.
// The fields are the native EGLDisplay, EGLConfig and EGLContext
// handles.
type GraphicsBinding struct {
	Display uintptr
	Config  uintptr
	Context uintptr
}

// ViewConfigurationView is the runtime-recommended render target
// geometry for one eye.
type ViewConfigurationView struct {
	RecommendedWidth       int
	RecommendedHeight      int
	RecommendedSampleCount int
}

// SwapchainCreateInfo describes one eye's swapchain.
type SwapchainCreateInfo struct {
	Format      int64
	Width       int
	Height      int
	SampleCount int
}

// FrameState is the result of WaitFrame.
type FrameState struct {
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

// A View is one eye's located pose and field of view.
type View struct {
	Pose f32.Pose
	Fov  f32.Fov
}

// Rect2Di is an integer sub-image rectangle.
type Rect2Di struct {
	X, Y          int32
	Width, Height int32
}

// SwapchainSubImage selects the region of a swapchain image a
// layer view samples from.
type SwapchainSubImage struct {
	Swapchain Swapchain
	Rect      Rect2Di
}

// ProjectionView is one eye's entry in a projection layer.
type ProjectionView struct {
	Pose     f32.Pose
	Fov      f32.Fov
	SubImage SwapchainSubImage
}

// ProjectionLayer is a stereo projection composition layer.
type ProjectionLayer struct {
	Space Space
	Views []ProjectionView
}

// Runtime is the OpenXR call surface of the rendering core. Every
// method maps to a single runtime call and returns its XrResult;
// converting failures to errors is the caller's concern so that
// failure logging stays in one place.
type Runtime interface {
	// InitializeLoader performs platform loader setup. On Android
	// it forwards the JavaVM and activity to xrInitializeLoaderKHR.
	InitializeLoader() Result
	// EnumerateExtensions lists the instance extensions the
	// runtime supports.
	EnumerateExtensions() ([]string, Result)
	CreateInstance(info InstanceInfo) (Instance, Result)
	DestroyInstance(inst Instance) Result
	// ResultToString renders r using xrResultToString when a valid
	// instance is available.
	ResultToString(inst Instance, r Result) string

	GetSystem(inst Instance, form FormFactor) (SystemID, Result)
	EnumerateEnvironmentBlendModes(inst Instance, system SystemID, viewConfig ViewConfigurationType) ([]EnvironmentBlendMode, Result)
	GraphicsRequirements(inst Instance, system SystemID) (GraphicsRequirements, Result)
	CreateSession(inst Instance, system SystemID, binding GraphicsBinding) (Session, Result)
	DestroySession(sess Session) Result
	CreateReferenceSpace(sess Session, typ ReferenceSpaceType, pose f32.Pose) (Space, Result)
	DestroySpace(space Space) Result

	EnumerateViewConfigurationViews(inst Instance, system SystemID, viewConfig ViewConfigurationType) ([]ViewConfigurationView, Result)
	EnumerateSwapchainFormats(sess Session) ([]int64, Result)
	CreateSwapchain(sess Session, info SwapchainCreateInfo) (Swapchain, Result)
	DestroySwapchain(sc Swapchain) Result
	// EnumerateSwapchainImages returns the GL texture names of the
	// runtime-owned image ring.
	EnumerateSwapchainImages(sc Swapchain) ([]uint32, Result)

	// PollEvent returns the next queued event. It returns
	// EventUnavailable when the queue is empty.
	PollEvent(inst Instance) (Event, Result)
	BeginSession(sess Session, viewConfig ViewConfigurationType) Result
	EndSession(sess Session) Result

	WaitFrame(sess Session) (FrameState, Result)
	BeginFrame(sess Session) Result
	EndFrame(sess Session, displayTime Time, blend EnvironmentBlendMode, layers []ProjectionLayer) Result
	LocateViews(sess Session, displayTime Time, space Space, viewCount int) ([]View, Result)

	AcquireSwapchainImage(sc Swapchain) (int, Result)
	WaitSwapchainImage(sc Swapchain, timeout Duration) Result
	ReleaseSwapchainImage(sc Swapchain) Result
}
