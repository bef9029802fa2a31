package camera

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// positionControllerImpl is the implementation of PositionController.
type positionControllerImpl struct {
	mu *sync.Mutex

	speed    float32
	movement Movement
}

// Compile-time interface compliance check
var _ PositionController = &positionControllerImpl{}

// NewPositionController creates a controller moving 0.01 units per millisecond.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - PositionController: the newly created controller
func NewPositionController(options ...PositionControllerOption) PositionController {
	pc := &positionControllerImpl{
		mu:    &sync.Mutex{},
		speed: 0.01,
	}
	for _, option := range options {
		option(pc)
	}
	return pc
}

func (pc *positionControllerImpl) Speed() float32 {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.speed
}

func (pc *positionControllerImpl) SetSpeed(speed float32) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.speed = speed
}

func (pc *positionControllerImpl) SetMovement(m Movement) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.movement = m
}

func (pc *positionControllerImpl) Movement() Movement {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.movement
}

func (pc *positionControllerImpl) Update(dt time.Duration, cam Camera) {
	pc.mu.Lock()
	m := pc.movement
	distance := pc.speed * float32(dt.Milliseconds())
	pc.mu.Unlock()

	if distance == 0 {
		return
	}

	forward := cam.FrontIgnorePitch(0).Mul(distance)
	left := cam.FrontIgnorePitch(-90).Mul(distance)

	var offset mgl32.Vec3
	offset = offset.Add(forward.Mul(m.Forward))
	offset = offset.Sub(forward.Mul(m.Backward))
	offset = offset.Add(left.Mul(m.Left))
	offset = offset.Sub(left.Mul(m.Right))
	offset[1] += distance * m.Up
	offset[1] -= distance * m.Down

	if offset == (mgl32.Vec3{}) {
		return
	}
	cam.Move(offset)
}
