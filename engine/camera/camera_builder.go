package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// NewCamera creates a new Camera with sensible defaults: eye at (1, 1, 1), yaw and pitch 0,
// a 75 degree field of view and an infinite far plane.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:            &sync.Mutex{},
		eye:           mgl32.Vec3{1, 1, 1},
		fov:           DefaultFov,
		aspect:        1,
		near:          DefaultNear,
		rotationSpeed: 0.3,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithEye sets the initial world-space camera position.
//
// Parameters:
//   - x, y, z: eye position
//
// Returns:
//   - CameraBuilderOption: functional option to set the eye
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = mgl32.Vec3{x, y, z}
	}
}

// WithYawPitch sets the initial view angles in degrees.
//
// Parameters:
//   - yaw, pitch: view angles in degrees
//
// Returns:
//   - CameraBuilderOption: functional option to set the angles
func WithYawPitch(yaw, pitch float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.yaw = yaw
		c.pitch = pitch
	}
}

// WithFov sets the vertical field of view in degrees. The value is clamped on first zoom.
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the initial aspect ratio.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance. Zero keeps the far plane at infinity.
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithRotationSpeed sets the degrees of rotation per pixel of look delta.
//
// Parameters:
//   - speed: degrees per pixel
//
// Returns:
//   - CameraBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotationSpeed = speed
	}
}
