package camera

// PositionControllerOption is a functional option for configuring a PositionController.
type PositionControllerOption func(*positionControllerImpl)

// WithSpeed sets the distance travelled per millisecond at full magnitude.
//
// Parameters:
//   - speed: units per millisecond
//
// Returns:
//   - PositionControllerOption: functional option to set the speed
func WithSpeed(speed float32) PositionControllerOption {
	return func(pc *positionControllerImpl) {
		pc.speed = speed
	}
}
