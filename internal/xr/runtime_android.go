// SPDX-License-Identifier: Unlicense OR MIT

//go:build android
// +build android

package xr

/*
#cgo CFLAGS: -DXR_USE_PLATFORM_ANDROID -DXR_USE_GRAPHICS_API_OPENGL_ES
#cgo LDFLAGS: -lopenxr_loader -lEGL -lGLESv3

#include <stdlib.h>
#include <jni.h>
#include <EGL/egl.h>
#include <GLES3/gl3.h>
#include <openxr/openxr.h>
#include <openxr/openxr_platform.h>

// xrInitializeLoaderKHR and xrGetOpenGLESGraphicsRequirementsKHR are
// extension functions and only reachable through xrGetInstanceProcAddr.

static XrResult iris_xrInitializeLoader(void *vm, void *activity) {
	PFN_xrInitializeLoaderKHR initializeLoader = NULL;
	XrResult res = xrGetInstanceProcAddr(XR_NULL_HANDLE, "xrInitializeLoaderKHR",
		(PFN_xrVoidFunction *)&initializeLoader);
	if (XR_FAILED(res)) {
		return res;
	}
	XrLoaderInitInfoAndroidKHR info = {XR_TYPE_LOADER_INIT_INFO_ANDROID_KHR};
	info.applicationVM = vm;
	info.applicationContext = activity;
	return initializeLoader((const XrLoaderInitInfoBaseHeaderKHR *)&info);
}

static XrResult iris_xrGetOpenGLESGraphicsRequirements(XrInstance inst, XrSystemId system,
		XrGraphicsRequirementsOpenGLESKHR *req) {
	PFN_xrGetOpenGLESGraphicsRequirementsKHR get = NULL;
	XrResult res = xrGetInstanceProcAddr(inst, "xrGetOpenGLESGraphicsRequirementsKHR",
		(PFN_xrVoidFunction *)&get);
	if (XR_FAILED(res)) {
		return res;
	}
	return get(inst, system, req);
}
*/
import "C"

import (
	"unsafe"

	"github.com/irisagent/xrcore/f32"
)

// runtime binds the OpenXR loader. The JavaVM and activity
// references are captured once at process start and handed to the
// loader and instance creation calls.
type runtime struct {
	vm       unsafe.Pointer
	activity unsafe.Pointer
}

// NewRuntime returns the loader-backed Runtime for the given
// JavaVM and activity global reference.
func NewRuntime(vm, activity unsafe.Pointer) Runtime {
	return &runtime{vm: vm, activity: activity}
}

func (rt *runtime) InitializeLoader() Result {
	return Result(C.iris_xrInitializeLoader(rt.vm, rt.activity))
}

func (rt *runtime) EnumerateExtensions() ([]string, Result) {
	var count C.uint32_t
	res := C.xrEnumerateInstanceExtensionProperties(nil, 0, &count, nil)
	if !Result(res).Succeeded() || count == 0 {
		return nil, Result(res)
	}
	props := make([]C.XrExtensionProperties, count)
	for i := range props {
		props[i]._type = C.XR_TYPE_EXTENSION_PROPERTIES
	}
	res = C.xrEnumerateInstanceExtensionProperties(nil, count, &count, &props[0])
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	exts := make([]string, count)
	for i := range exts {
		exts[i] = C.GoString(&props[i].extensionName[0])
	}
	return exts, Result(res)
}

func (rt *runtime) CreateInstance(info InstanceInfo) (Instance, Result) {
	// The chained struct lives in C memory so that createInfo holds
	// no Go pointers when it crosses into C.
	androidInfo := (*C.XrInstanceCreateInfoAndroidKHR)(C.malloc(C.size_t(unsafe.Sizeof(C.XrInstanceCreateInfoAndroidKHR{}))))
	defer C.free(unsafe.Pointer(androidInfo))
	*androidInfo = C.XrInstanceCreateInfoAndroidKHR{}
	androidInfo._type = C.XR_TYPE_INSTANCE_CREATE_INFO_ANDROID_KHR
	androidInfo.applicationVM = rt.vm
	androidInfo.applicationActivity = rt.activity

	var createInfo C.XrInstanceCreateInfo
	createInfo._type = C.XR_TYPE_INSTANCE_CREATE_INFO
	createInfo.next = unsafe.Pointer(androidInfo)
	setName(createInfo.applicationInfo.applicationName[:], info.ApplicationName)
	setName(createInfo.applicationInfo.engineName[:], info.EngineName)
	createInfo.applicationInfo.applicationVersion = C.uint32_t(info.ApplicationVersion)
	createInfo.applicationInfo.engineVersion = C.uint32_t(info.EngineVersion)
	createInfo.applicationInfo.apiVersion = C.XR_CURRENT_API_VERSION

	nexts := len(info.Extensions)
	var names **C.char
	if nexts > 0 {
		names = (**C.char)(C.malloc(C.size_t(nexts) * C.size_t(unsafe.Sizeof(uintptr(0)))))
		defer C.free(unsafe.Pointer(names))
		slice := unsafe.Slice(names, nexts)
		for i, ext := range info.Extensions {
			slice[i] = C.CString(ext)
			defer C.free(unsafe.Pointer(slice[i]))
		}
	}
	createInfo.enabledExtensionCount = C.uint32_t(nexts)
	createInfo.enabledExtensionNames = names

	var inst C.XrInstance
	res := C.xrCreateInstance(&createInfo, &inst)
	return Instance(uintptr(unsafe.Pointer(inst))), Result(res)
}

func (rt *runtime) DestroyInstance(inst Instance) Result {
	return Result(C.xrDestroyInstance(cInstance(inst)))
}

func (rt *runtime) ResultToString(inst Instance, r Result) string {
	var buf [C.XR_MAX_RESULT_STRING_SIZE]C.char
	if C.xrResultToString(cInstance(inst), C.XrResult(r), &buf[0]) != C.XR_SUCCESS {
		return r.String()
	}
	return C.GoString(&buf[0])
}

func (rt *runtime) GetSystem(inst Instance, form FormFactor) (SystemID, Result) {
	var getInfo C.XrSystemGetInfo
	getInfo._type = C.XR_TYPE_SYSTEM_GET_INFO
	getInfo.formFactor = C.XrFormFactor(form)
	var system C.XrSystemId
	res := C.xrGetSystem(cInstance(inst), &getInfo, &system)
	return SystemID(system), Result(res)
}

func (rt *runtime) EnumerateEnvironmentBlendModes(inst Instance, system SystemID, viewConfig ViewConfigurationType) ([]EnvironmentBlendMode, Result) {
	var count C.uint32_t
	res := C.xrEnumerateEnvironmentBlendModes(cInstance(inst), C.XrSystemId(system),
		C.XrViewConfigurationType(viewConfig), 0, &count, nil)
	if !Result(res).Succeeded() || count == 0 {
		return nil, Result(res)
	}
	cmodes := make([]C.XrEnvironmentBlendMode, count)
	res = C.xrEnumerateEnvironmentBlendModes(cInstance(inst), C.XrSystemId(system),
		C.XrViewConfigurationType(viewConfig), count, &count, &cmodes[0])
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	modes := make([]EnvironmentBlendMode, count)
	for i := range modes {
		modes[i] = EnvironmentBlendMode(cmodes[i])
	}
	return modes, Result(res)
}

func (rt *runtime) GraphicsRequirements(inst Instance, system SystemID) (GraphicsRequirements, Result) {
	var req C.XrGraphicsRequirementsOpenGLESKHR
	req._type = C.XR_TYPE_GRAPHICS_REQUIREMENTS_OPENGL_ES_KHR
	res := C.iris_xrGetOpenGLESGraphicsRequirements(cInstance(inst), C.XrSystemId(system), &req)
	return GraphicsRequirements{
		MinAPIVersion: Version(req.minApiVersionSupported),
		MaxAPIVersion: Version(req.maxApiVersionSupported),
	}, Result(res)
}

func (rt *runtime) CreateSession(inst Instance, system SystemID, binding GraphicsBinding) (Session, Result) {
	glesBinding := (*C.XrGraphicsBindingOpenGLESAndroidKHR)(C.malloc(C.size_t(unsafe.Sizeof(C.XrGraphicsBindingOpenGLESAndroidKHR{}))))
	defer C.free(unsafe.Pointer(glesBinding))
	*glesBinding = C.XrGraphicsBindingOpenGLESAndroidKHR{}
	glesBinding._type = C.XR_TYPE_GRAPHICS_BINDING_OPENGL_ES_ANDROID_KHR
	glesBinding.display = C.EGLDisplay(unsafe.Pointer(binding.Display))
	glesBinding.config = C.EGLConfig(unsafe.Pointer(binding.Config))
	glesBinding.context = C.EGLContext(unsafe.Pointer(binding.Context))

	var createInfo C.XrSessionCreateInfo
	createInfo._type = C.XR_TYPE_SESSION_CREATE_INFO
	createInfo.next = unsafe.Pointer(glesBinding)
	createInfo.systemId = C.XrSystemId(system)

	var sess C.XrSession
	res := C.xrCreateSession(cInstance(inst), &createInfo, &sess)
	return Session(uintptr(unsafe.Pointer(sess))), Result(res)
}

func (rt *runtime) DestroySession(sess Session) Result {
	return Result(C.xrDestroySession(cSession(sess)))
}

func (rt *runtime) CreateReferenceSpace(sess Session, typ ReferenceSpaceType, pose f32.Pose) (Space, Result) {
	var createInfo C.XrReferenceSpaceCreateInfo
	createInfo._type = C.XR_TYPE_REFERENCE_SPACE_CREATE_INFO
	createInfo.referenceSpaceType = C.XrReferenceSpaceType(typ)
	createInfo.poseInReferenceSpace = cPose(pose)
	var space C.XrSpace
	res := C.xrCreateReferenceSpace(cSession(sess), &createInfo, &space)
	return Space(uintptr(unsafe.Pointer(space))), Result(res)
}

func (rt *runtime) DestroySpace(space Space) Result {
	return Result(C.xrDestroySpace(cSpace(space)))
}

func (rt *runtime) EnumerateViewConfigurationViews(inst Instance, system SystemID, viewConfig ViewConfigurationType) ([]ViewConfigurationView, Result) {
	var count C.uint32_t
	res := C.xrEnumerateViewConfigurationViews(cInstance(inst), C.XrSystemId(system),
		C.XrViewConfigurationType(viewConfig), 0, &count, nil)
	if !Result(res).Succeeded() || count == 0 {
		return nil, Result(res)
	}
	cviews := make([]C.XrViewConfigurationView, count)
	for i := range cviews {
		cviews[i]._type = C.XR_TYPE_VIEW_CONFIGURATION_VIEW
	}
	res = C.xrEnumerateViewConfigurationViews(cInstance(inst), C.XrSystemId(system),
		C.XrViewConfigurationType(viewConfig), count, &count, &cviews[0])
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	views := make([]ViewConfigurationView, count)
	for i, v := range cviews {
		views[i] = ViewConfigurationView{
			RecommendedWidth:       int(v.recommendedImageRectWidth),
			RecommendedHeight:      int(v.recommendedImageRectHeight),
			RecommendedSampleCount: int(v.recommendedSwapchainSampleCount),
		}
	}
	return views, Result(res)
}

func (rt *runtime) EnumerateSwapchainFormats(sess Session) ([]int64, Result) {
	var count C.uint32_t
	res := C.xrEnumerateSwapchainFormats(cSession(sess), 0, &count, nil)
	if !Result(res).Succeeded() || count == 0 {
		return nil, Result(res)
	}
	cformats := make([]C.int64_t, count)
	res = C.xrEnumerateSwapchainFormats(cSession(sess), count, &count, &cformats[0])
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	formats := make([]int64, count)
	for i := range formats {
		formats[i] = int64(cformats[i])
	}
	return formats, Result(res)
}

func (rt *runtime) CreateSwapchain(sess Session, info SwapchainCreateInfo) (Swapchain, Result) {
	var createInfo C.XrSwapchainCreateInfo
	createInfo._type = C.XR_TYPE_SWAPCHAIN_CREATE_INFO
	createInfo.usageFlags = C.XR_SWAPCHAIN_USAGE_SAMPLED_BIT | C.XR_SWAPCHAIN_USAGE_COLOR_ATTACHMENT_BIT
	createInfo.format = C.int64_t(info.Format)
	createInfo.sampleCount = C.uint32_t(info.SampleCount)
	createInfo.width = C.uint32_t(info.Width)
	createInfo.height = C.uint32_t(info.Height)
	createInfo.faceCount = 1
	createInfo.arraySize = 1
	createInfo.mipCount = 1
	var sc C.XrSwapchain
	res := C.xrCreateSwapchain(cSession(sess), &createInfo, &sc)
	return Swapchain(uintptr(unsafe.Pointer(sc))), Result(res)
}

func (rt *runtime) DestroySwapchain(sc Swapchain) Result {
	return Result(C.xrDestroySwapchain(cSwapchain(sc)))
}

func (rt *runtime) EnumerateSwapchainImages(sc Swapchain) ([]uint32, Result) {
	var count C.uint32_t
	res := C.xrEnumerateSwapchainImages(cSwapchain(sc), 0, &count, nil)
	if !Result(res).Succeeded() || count == 0 {
		return nil, Result(res)
	}
	cimages := make([]C.XrSwapchainImageOpenGLESKHR, count)
	for i := range cimages {
		cimages[i]._type = C.XR_TYPE_SWAPCHAIN_IMAGE_OPENGL_ES_KHR
	}
	res = C.xrEnumerateSwapchainImages(cSwapchain(sc), count, &count,
		(*C.XrSwapchainImageBaseHeader)(unsafe.Pointer(&cimages[0])))
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	images := make([]uint32, count)
	for i := range images {
		images[i] = uint32(cimages[i].image)
	}
	return images, Result(res)
}

func (rt *runtime) PollEvent(inst Instance) (Event, Result) {
	var buf C.XrEventDataBuffer
	buf._type = C.XR_TYPE_EVENT_DATA_BUFFER
	res := C.xrPollEvent(cInstance(inst), &buf)
	if Result(res) != Success {
		return Event{}, Result(res)
	}
	switch buf._type {
	case C.XR_TYPE_EVENT_DATA_SESSION_STATE_CHANGED:
		changed := (*C.XrEventDataSessionStateChanged)(unsafe.Pointer(&buf))
		return Event{Type: EventSessionStateChanged, State: SessionState(changed.state)}, Result(res)
	case C.XR_TYPE_EVENT_DATA_INSTANCE_LOSS_PENDING:
		return Event{Type: EventInstanceLossPending}, Result(res)
	case C.XR_TYPE_EVENT_DATA_EVENTS_LOST:
		return Event{Type: EventEventsLost}, Result(res)
	default:
		return Event{Type: EventIgnored}, Result(res)
	}
}

func (rt *runtime) BeginSession(sess Session, viewConfig ViewConfigurationType) Result {
	var beginInfo C.XrSessionBeginInfo
	beginInfo._type = C.XR_TYPE_SESSION_BEGIN_INFO
	beginInfo.primaryViewConfigurationType = C.XrViewConfigurationType(viewConfig)
	return Result(C.xrBeginSession(cSession(sess), &beginInfo))
}

func (rt *runtime) EndSession(sess Session) Result {
	return Result(C.xrEndSession(cSession(sess)))
}

func (rt *runtime) WaitFrame(sess Session) (FrameState, Result) {
	var waitInfo C.XrFrameWaitInfo
	waitInfo._type = C.XR_TYPE_FRAME_WAIT_INFO
	var state C.XrFrameState
	state._type = C.XR_TYPE_FRAME_STATE
	res := C.xrWaitFrame(cSession(sess), &waitInfo, &state)
	return FrameState{
		PredictedDisplayTime:   Time(state.predictedDisplayTime),
		PredictedDisplayPeriod: Duration(state.predictedDisplayPeriod),
		ShouldRender:           state.shouldRender == C.XR_TRUE,
	}, Result(res)
}

func (rt *runtime) BeginFrame(sess Session) Result {
	var beginInfo C.XrFrameBeginInfo
	beginInfo._type = C.XR_TYPE_FRAME_BEGIN_INFO
	return Result(C.xrBeginFrame(cSession(sess), &beginInfo))
}

func (rt *runtime) EndFrame(sess Session, displayTime Time, blend EnvironmentBlendMode, layers []ProjectionLayer) Result {
	var endInfo C.XrFrameEndInfo
	endInfo._type = C.XR_TYPE_FRAME_END_INFO
	endInfo.displayTime = C.XrTime(displayTime)
	endInfo.environmentBlendMode = C.XrEnvironmentBlendMode(blend)

	// The layer and view arrays are linked by C pointers, so they
	// are built in C memory to respect the cgo pointer rules.
	var frees []unsafe.Pointer
	defer func() {
		for _, p := range frees {
			C.free(p)
		}
	}()
	if len(layers) > 0 {
		headerSize := C.size_t(unsafe.Sizeof(uintptr(0)))
		headers := (*unsafe.Pointer)(C.malloc(C.size_t(len(layers)) * headerSize))
		frees = append(frees, unsafe.Pointer(headers))
		headerSlice := unsafe.Slice(headers, len(layers))
		for i, layer := range layers {
			cviews := (*C.XrCompositionLayerProjectionView)(C.malloc(
				C.size_t(len(layer.Views)) * C.size_t(unsafe.Sizeof(C.XrCompositionLayerProjectionView{}))))
			frees = append(frees, unsafe.Pointer(cviews))
			viewSlice := unsafe.Slice(cviews, len(layer.Views))
			for j, v := range layer.Views {
				viewSlice[j] = C.XrCompositionLayerProjectionView{}
				viewSlice[j]._type = C.XR_TYPE_COMPOSITION_LAYER_PROJECTION_VIEW
				viewSlice[j].pose = cPose(v.Pose)
				viewSlice[j].fov = cFov(v.Fov)
				viewSlice[j].subImage.swapchain = cSwapchain(v.SubImage.Swapchain)
				viewSlice[j].subImage.imageRect.offset.x = C.int32_t(v.SubImage.Rect.X)
				viewSlice[j].subImage.imageRect.offset.y = C.int32_t(v.SubImage.Rect.Y)
				viewSlice[j].subImage.imageRect.extent.width = C.int32_t(v.SubImage.Rect.Width)
				viewSlice[j].subImage.imageRect.extent.height = C.int32_t(v.SubImage.Rect.Height)
			}
			clayer := (*C.XrCompositionLayerProjection)(C.malloc(
				C.size_t(unsafe.Sizeof(C.XrCompositionLayerProjection{}))))
			frees = append(frees, unsafe.Pointer(clayer))
			*clayer = C.XrCompositionLayerProjection{}
			clayer._type = C.XR_TYPE_COMPOSITION_LAYER_PROJECTION
			clayer.space = cSpace(layer.Space)
			clayer.viewCount = C.uint32_t(len(layer.Views))
			clayer.views = cviews
			headerSlice[i] = unsafe.Pointer(clayer)
		}
		endInfo.layerCount = C.uint32_t(len(layers))
		endInfo.layers = (**C.XrCompositionLayerBaseHeader)(unsafe.Pointer(headers))
	}
	return Result(C.xrEndFrame(cSession(sess), &endInfo))
}

func (rt *runtime) LocateViews(sess Session, displayTime Time, space Space, viewCount int) ([]View, Result) {
	var locateInfo C.XrViewLocateInfo
	locateInfo._type = C.XR_TYPE_VIEW_LOCATE_INFO
	locateInfo.viewConfigurationType = C.XrViewConfigurationType(ViewConfigurationPrimaryStereo)
	locateInfo.displayTime = C.XrTime(displayTime)
	locateInfo.space = cSpace(space)
	var viewState C.XrViewState
	viewState._type = C.XR_TYPE_VIEW_STATE
	cviews := make([]C.XrView, viewCount)
	for i := range cviews {
		cviews[i]._type = C.XR_TYPE_VIEW
	}
	var count C.uint32_t
	res := C.xrLocateViews(cSession(sess), &locateInfo, &viewState,
		C.uint32_t(viewCount), &count, &cviews[0])
	if !Result(res).Succeeded() {
		return nil, Result(res)
	}
	views := make([]View, count)
	for i := range views {
		views[i] = View{Pose: goPose(cviews[i].pose), Fov: goFov(cviews[i].fov)}
	}
	return views, Result(res)
}

func (rt *runtime) AcquireSwapchainImage(sc Swapchain) (int, Result) {
	var acquireInfo C.XrSwapchainImageAcquireInfo
	acquireInfo._type = C.XR_TYPE_SWAPCHAIN_IMAGE_ACQUIRE_INFO
	var index C.uint32_t
	res := C.xrAcquireSwapchainImage(cSwapchain(sc), &acquireInfo, &index)
	return int(index), Result(res)
}

func (rt *runtime) WaitSwapchainImage(sc Swapchain, timeout Duration) Result {
	var waitInfo C.XrSwapchainImageWaitInfo
	waitInfo._type = C.XR_TYPE_SWAPCHAIN_IMAGE_WAIT_INFO
	waitInfo.timeout = C.XrDuration(timeout)
	return Result(C.xrWaitSwapchainImage(cSwapchain(sc), &waitInfo))
}

func (rt *runtime) ReleaseSwapchainImage(sc Swapchain) Result {
	var releaseInfo C.XrSwapchainImageReleaseInfo
	releaseInfo._type = C.XR_TYPE_SWAPCHAIN_IMAGE_RELEASE_INFO
	return Result(C.xrReleaseSwapchainImage(cSwapchain(sc), &releaseInfo))
}

func cInstance(inst Instance) C.XrInstance {
	return C.XrInstance(unsafe.Pointer(uintptr(inst)))
}

func cSession(sess Session) C.XrSession {
	return C.XrSession(unsafe.Pointer(uintptr(sess)))
}

func cSpace(space Space) C.XrSpace {
	return C.XrSpace(unsafe.Pointer(uintptr(space)))
}

func cSwapchain(sc Swapchain) C.XrSwapchain {
	return C.XrSwapchain(unsafe.Pointer(uintptr(sc)))
}

func cPose(p f32.Pose) C.XrPosef {
	return C.XrPosef{
		orientation: C.XrQuaternionf{
			x: C.float(p.Orientation.X),
			y: C.float(p.Orientation.Y),
			z: C.float(p.Orientation.Z),
			w: C.float(p.Orientation.W),
		},
		position: C.XrVector3f{
			x: C.float(p.Position.X),
			y: C.float(p.Position.Y),
			z: C.float(p.Position.Z),
		},
	}
}

func goPose(p C.XrPosef) f32.Pose {
	return f32.Pose{
		Orientation: f32.Quat{
			X: float32(p.orientation.x),
			Y: float32(p.orientation.y),
			Z: float32(p.orientation.z),
			W: float32(p.orientation.w),
		},
		Position: f32.Vec3{
			X: float32(p.position.x),
			Y: float32(p.position.y),
			Z: float32(p.position.z),
		},
	}
}

func cFov(fov f32.Fov) C.XrFovf {
	return C.XrFovf{
		angleLeft:  C.float(fov.AngleLeft),
		angleRight: C.float(fov.AngleRight),
		angleUp:    C.float(fov.AngleUp),
		angleDown:  C.float(fov.AngleDown),
	}
}

func goFov(fov C.XrFovf) f32.Fov {
	return f32.Fov{
		AngleLeft:  float32(fov.angleLeft),
		AngleRight: float32(fov.angleRight),
		AngleUp:    float32(fov.angleUp),
		AngleDown:  float32(fov.angleDown),
	}
}

// setName copies s into a fixed-size XrApplicationInfo name field,
// truncating to leave room for the terminating NUL.
func setName(dst []C.char, s string) {
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	for i := 0; i < n; i++ {
		dst[i] = C.char(s[i])
	}
	dst[n] = 0
}
