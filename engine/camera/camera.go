package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Field of view limits and zoom granularity, in degrees.
const (
	DefaultFov  float32 = 75
	MinFov      float32 = 30
	MaxFov      float32 = 120
	FovStep     float32 = 10
	MaxPitch    float32 = 89
	DefaultNear float32 = 0.01
)

type cameraImpl struct {
	mu *sync.Mutex

	eye   mgl32.Vec3
	yaw   float32 // degrees, 0 looks down +X
	pitch float32 // degrees

	fov    float32 // degrees
	aspect float32
	near   float32
	far    float32 // 0 means an infinite far plane

	rotationSpeed float32
}

// Camera defines the interface for the first-person viewer camera.
// The view is described by an eye position plus yaw and pitch angles, the projection by a
// vertical field of view that zooms in fixed steps.
type Camera interface {
	// Eye returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// YawPitch returns the view angles in degrees.
	//
	// Returns:
	//   - float32: yaw
	//   - float32: pitch
	YawPitch() (float32, float32)

	// Front returns the normalized view direction.
	//
	// Returns:
	//   - mgl32.Vec3: direction the camera looks along
	Front() mgl32.Vec3

	// FrontIgnorePitch returns the horizontal direction at yaw + yawOffset with zero pitch.
	//
	// Parameters:
	//   - yawOffset: degrees added to the current yaw
	//
	// Returns:
	//   - mgl32.Vec3: normalized horizontal direction
	FrontIgnorePitch(yawOffset float32) mgl32.Vec3

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect updates the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view, clamped to [MinFov, MaxFov].
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// Zoom applies zoom steps. Each positive step narrows the field of view by FovStep, each
	// negative step widens it.
	//
	// Parameters:
	//   - steps: signed number of zoom steps
	Zoom(steps int)

	// Rotate applies a look delta scaled by the rotation speed. Horizontal motion turns yaw,
	// vertical motion lowers pitch, and pitch is clamped to ±MaxPitch.
	//
	// Parameters:
	//   - dx, dy: pointer delta in pixels
	Rotate(dx, dy float32)

	// SetYawPitch sets the view angles directly. Pitch is clamped.
	//
	// Parameters:
	//   - yaw, pitch: angles in degrees
	SetYawPitch(yaw, pitch float32)

	// Move translates the eye by offset.
	//
	// Parameters:
	//   - offset: world-space translation
	Move(offset mgl32.Vec3)

	// SetEye places the eye at a world-space position.
	//
	// Parameters:
	//   - eye: the new position
	SetEye(eye mgl32.Vec3)

	// ViewMatrix returns the right-handed look-at matrix for the current eye and angles.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective matrix mapping depth to WebGPU's [0, 1] range.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// Uniform builds the full camera record for upload.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection, position, aspect and view direction
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) YawPitch() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw, c.pitch
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frontFromYawPitch(c.yaw, c.pitch)
}

func (c *cameraImpl) FrontIgnorePitch(yawOffset float32) mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frontFromYawPitch(c.yaw+yawOffset, 0)
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, MinFov, MaxFov)
}

func (c *cameraImpl) Zoom(steps int) {
	if steps == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(c.fov-FovStep*float32(steps), MinFov, MaxFov)
}

func (c *cameraImpl) Rotate(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += dx * c.rotationSpeed
	c.pitch = common.Clamp(c.pitch-dy*c.rotationSpeed, -MaxPitch, MaxPitch)
}

func (c *cameraImpl) SetYawPitch(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw = yaw
	c.pitch = common.Clamp(pitch, -MaxPitch, MaxPitch)
}

func (c *cameraImpl) Move(offset mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = c.eye.Add(offset)
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj: c.projectionMatrix().Mul4(c.viewMatrix()),
		Position: c.eye,
		Aspect:   c.aspect,
		ViewDir:  frontFromYawPitch(c.yaw, c.pitch),
	}
}

// viewMatrix builds the look-at matrix. Caller must hold the mutex.
func (c *cameraImpl) viewMatrix() mgl32.Mat4 {
	target := c.eye.Add(frontFromYawPitch(c.yaw, c.pitch))
	return mgl32.LookAtV(c.eye, target, mgl32.Vec3{0, 1, 0})
}

// projectionMatrix builds the right-handed perspective matrix with depth in [0, 1].
// Caller must hold the mutex.
func (c *cameraImpl) projectionMatrix() mgl32.Mat4 {
	h := 1 / math32.Tan(mgl32.DegToRad(c.fov)/2)
	w := h / c.aspect
	if c.far <= 0 {
		return mgl32.Mat4{
			w, 0, 0, 0,
			0, h, 0, 0,
			0, 0, -1, -1,
			0, 0, -c.near, 0,
		}
	}
	r := c.far / (c.near - c.far)
	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, -1,
		0, 0, r * c.near, 0,
	}
}

// frontFromYawPitch converts view angles in degrees to a unit direction.
func frontFromYawPitch(yaw, pitch float32) mgl32.Vec3 {
	y := mgl32.DegToRad(yaw)
	p := mgl32.DegToRad(pitch)
	return common.Normalize3(mgl32.Vec3{
		math32.Cos(y) * math32.Cos(p),
		math32.Sin(p),
		math32.Sin(y) * math32.Cos(p),
	})
}
