package camera

import "time"

// Movement holds the six movement magnitudes sampled from the control state.
// Each is 0 or 1 for keyboard input; fractional values scale the motion.
type Movement struct {
	Forward, Backward float32
	Left, Right       float32
	Up, Down          float32
}

// PositionController integrates movement magnitudes into camera translation.
// Forward and backward follow the horizontal view direction, left and right follow the
// horizontal direction 90 degrees to the left, and up and down follow world Y.
type PositionController interface {
	// Speed returns the distance travelled per millisecond at full magnitude.
	//
	// Returns:
	//   - float32: units per millisecond
	Speed() float32

	// SetSpeed sets the distance travelled per millisecond at full magnitude.
	//
	// Parameters:
	//   - speed: units per millisecond
	SetSpeed(speed float32)

	// SetMovement replaces the current movement magnitudes.
	//
	// Parameters:
	//   - m: the magnitudes to apply on the next Update
	SetMovement(m Movement)

	// Movement returns the current movement magnitudes.
	//
	// Returns:
	//   - Movement: the magnitudes
	Movement() Movement

	// Update moves the camera by the distance covered in dt.
	//
	// Parameters:
	//   - dt: elapsed frame time
	//   - cam: the camera to move
	Update(dt time.Duration, cam Camera)
}
