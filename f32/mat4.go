// SPDX-License-Identifier: Unlicense OR MIT

/*
Package f32 implements the float32 vector, quaternion and 4×4
matrix operations used by the stereo renderer.

Matrices are stored row-major and compose in the row-vector
convention: a point is transformed as v' = v·M, and Mul(a, b)
applies a before b. Stored this way, a matrix is bit-compatible
with the column-major arrays OpenGL ES expects, so Mat4 values
are passed to UniformMatrix4fv without transposition.
*/
package f32

import "github.com/chewxy/math32"

// A Vec3 is a point or direction in tracking space.
type Vec3 struct {
	X, Y, Z float32
}

// A Quat is a rotation. All operations assume it is normalized.
type Quat struct {
	X, Y, Z, W float32
}

// A Pose is a rigid transform, an orientation followed by a
// position, as reported by the tracking runtime.
type Pose struct {
	Orientation Quat
	Position    Vec3
}

// A Fov holds the four half-angles, in radians, of an off-axis
// view frustum. Left and down are negative for symmetric views.
type Fov struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// A Mat4 is a 4×4 matrix stored row-major.
type Mat4 [16]float32

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{W: 1}

// PoseIdentity is the identity pose at the space origin.
var PoseIdentity = Pose{Orientation: QuatIdentity}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns the product a·b, applying a before b.
func Mul(a, b Mat4) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[i*4+k] * b[k*4+j]
			}
			m[i*4+j] = sum
		}
	}
	return m
}

// Translation returns the matrix translating by v with an
// identity rotation block.
func Translation(v Vec3) Mat4 {
	m := Identity()
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
	return m
}

// Rotation returns the rotation matrix for the unit quaternion q.
// q is not renormalized.
func Rotation(q Quat) Mat4 {
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, yy, zz := q.X*x2, q.Y*y2, q.Z*z2
	xy, xz, yz := q.X*y2, q.X*z2, q.Y*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2
	return Mat4{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}

// Projection returns the off-axis perspective projection for fov
// and the near and far clip distances. The caller must guarantee
// far != near.
func Projection(fov Fov, near, far float32) Mat4 {
	tanLeft := math32.Tan(fov.AngleLeft)
	tanRight := math32.Tan(fov.AngleRight)
	tanUp := math32.Tan(fov.AngleUp)
	tanDown := math32.Tan(fov.AngleDown)
	tanWidth := tanRight - tanLeft
	tanHeight := tanUp - tanDown
	var m Mat4
	m[0] = 2 / tanWidth
	m[5] = 2 / tanHeight
	m[8] = (tanRight + tanLeft) / tanWidth
	m[9] = (tanUp + tanDown) / tanHeight
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -(2 * far * near) / (far - near)
	return m
}

// View returns the world-to-eye matrix for a viewer at pose:
// the translation by the negated position followed by the
// rotation by the inverse orientation.
func View(pose Pose) Mat4 {
	inv := Quat{X: -pose.Orientation.X, Y: -pose.Orientation.Y, Z: -pose.Orientation.Z, W: pose.Orientation.W}
	neg := Vec3{X: -pose.Position.X, Y: -pose.Position.Y, Z: -pose.Position.Z}
	return Mul(Translation(neg), Rotation(inv))
}
