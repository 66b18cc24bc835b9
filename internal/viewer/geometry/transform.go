package geometry

// ============================================================
// Coordinate transform
// ============================================================

type quaternion struct {
	QW float64 `json:"qw"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
}

func (q quaternion) isZero() bool {
	return q.QW == 0 && q.QX == 0 && q.QY == 0 && q.QZ == 0
}

// rotate applies the instance quaternion to every vertex in place.
// A zero quaternion means "no rotation" in the payload.
func rotate(vertices []float32, q quaternion) {
	if q.isZero() {
		return
	}
	for i := 0; i+2 < len(vertices); i += 3 {
		x := float64(vertices[i])
		y := float64(vertices[i+1])
		z := float64(vertices[i+2])

		// v' = q * v * q^-1, expanded.
		ix := q.QW*x + q.QY*z - q.QZ*y
		iy := q.QW*y + q.QZ*x - q.QX*z
		iz := q.QW*z + q.QX*y - q.QY*x
		iw := -q.QX*x - q.QY*y - q.QZ*z

		vertices[i] = float32(ix*q.QW + iw*-q.QX + iy*-q.QZ - iz*-q.QY)
		vertices[i+1] = float32(iy*q.QW + iw*-q.QY + iz*-q.QX - ix*-q.QZ)
		vertices[i+2] = float32(iz*q.QW + iw*-q.QZ + ix*-q.QY - iy*-q.QX)
	}
}

// SwapYZ exchanges the Y and Z component of every vertex in place.
// The source model is Z-up, the visual space is Y-up. Applying the
// swap twice restores the original coordinates.
func SwapYZ(vertices []float32) {
	for i := 0; i+2 < len(vertices); i += 3 {
		vertices[i+1], vertices[i+2] = vertices[i+2], vertices[i+1]
	}
}

// translate adds the instance position, with the same Y/Z exchange
// applied to the translation vector.
func translate(vertices []float32, v vector) {
	for i := 0; i+2 < len(vertices); i += 3 {
		vertices[i] += float32(v.X)
		vertices[i+1] += float32(v.Z)
		vertices[i+2] += float32(v.Y)
	}
}
