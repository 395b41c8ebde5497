package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AnglePi is the number of fixed-point angle units in half a turn used by
// the game's binary containers.
const AnglePi = 1 << 11

// AngleToRadians converts a fixed-point game angle to radians.
func AngleToRadians(angle int) float64 {
	return float64(angle) * (math.Pi / AnglePi)
}

// RadiansToAngle converts radians to the nearest fixed-point game angle.
func RadiansToAngle(radians float64) int {
	return int(math.Round(radians * (AnglePi / math.Pi)))
}

// RotateAxis rotates p about the given axis. sin and cos are those of the
// rotation angle, so callers rotating many points compute them once.
func RotateAxis(p mgl64.Vec3, sin, cos float64, axis Axis) mgl64.Vec3 {
	switch axis {
	case X:
		return mgl64.Vec3{
			p[0],
			cos*p[1] - sin*p[2],
			sin*p[1] + cos*p[2],
		}
	case Y:
		return mgl64.Vec3{
			cos*p[0] + sin*p[2],
			p[1],
			-sin*p[0] + cos*p[2],
		}
	case Z:
		return mgl64.Vec3{
			cos*p[0] - sin*p[1],
			sin*p[0] + cos*p[1],
			p[2],
		}
	}
	return p
}

// Rotate rotates p by angle radians about axis.
func Rotate(p mgl64.Vec3, angle float64, axis Axis) mgl64.Vec3 {
	if angle == 0 {
		return p
	}
	return RotateAxis(p, math.Sin(angle), math.Cos(angle), axis)
}
