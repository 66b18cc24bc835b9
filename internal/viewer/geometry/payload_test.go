package geometry_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"bim-viewer/internal/viewer/geometry"
)

const trianglePayload = `{
	"meshes": [
		{"mesh_id": "m1", "coordinates": [1, 2, 3, 4, 5, 6, 7, 8, 9], "indices": [0, 1, 2]}
	],
	"elements": [
		{"mesh_id": "m1",
		 "rotation": {"qw": 0, "qx": 0, "qy": 0, "qz": 0},
		 "vector": {"x": 10, "y": 20, "z": 30},
		 "color": {"r": 255, "g": 0, "b": 0, "a": 255}}
	]
}`

// TestParse_SwapAndTranslate verifies the Z-up to Y-up transform:
// each vertex (x,y,z) becomes (x+tx, z+tz, y+ty).
func TestParse_SwapAndTranslate(t *testing.T) {
	mesh, defaultColor, err := geometry.Parse(trianglePayload)
	require.NoError(t, err)
	require.Equal(t, "#ff0000", defaultColor)
	require.Equal(t, 3, mesh.VertexCount())
	require.Equal(t, 1, mesh.TriangleCount())
	require.Equal(t, 1.0, mesh.Opacity)

	// (1,2,3) -> swap (1,3,2) -> +(10,30,20) = (11,33,22)
	require.Equal(t, []float32{11, 33, 22, 14, 36, 25, 17, 39, 28}, mesh.Vertices)
	require.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

// TestParse_Rotation rotates (1,0,0) by 90 degrees around the
// source Z axis, expecting (0,1,0) pre-swap, so (0,0,1) in the
// target space.
func TestParse_Rotation(t *testing.T) {
	half := math.Sqrt2 / 2
	payload := `{
		"meshes": [{"mesh_id": "m", "coordinates": [1, 0, 0], "indices": []}],
		"elements": [{"mesh_id": "m",
			"rotation": {"qw": ` + format(half) + `, "qx": 0, "qy": 0, "qz": ` + format(half) + `},
			"vector": {"x": 0, "y": 0, "z": 0},
			"color": {"r": 0, "g": 0, "b": 0, "a": 255}}]
	}`
	mesh, _, err := geometry.Parse(payload)
	require.NoError(t, err)
	require.InDelta(t, 0, mesh.Vertices[0], 1e-6)
	require.InDelta(t, 0, mesh.Vertices[1], 1e-6)
	require.InDelta(t, 1, mesh.Vertices[2], 1e-6)
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TestParse_MultipleInstances checks index offsetting when two
// instances share one mesh.
func TestParse_MultipleInstances(t *testing.T) {
	payload := `{
		"meshes": [{"mesh_id": "m", "coordinates": [0, 0, 0, 1, 0, 0, 0, 1, 0], "indices": [0, 1, 2]}],
		"elements": [
			{"mesh_id": "m", "vector": {"x": 0, "y": 0, "z": 0}, "color": {"r": 1, "g": 2, "b": 3, "a": 255}},
			{"mesh_id": "m", "vector": {"x": 5, "y": 0, "z": 0}, "color": {"r": 9, "g": 9, "b": 9, "a": 255}}
		]
	}`
	mesh, defaultColor, err := geometry.Parse(payload)
	require.NoError(t, err)
	require.Equal(t, 6, mesh.VertexCount())
	require.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, mesh.Indices)
	// First instance's color wins as the embedded default.
	require.Equal(t, "#010203", defaultColor)
}

// TestParse_Malformed covers the failure policy: every malformed
// payload yields ErrPayloadDecode, never a panic or partial mesh.
func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"meshes": [`,
		"ragged vertices":   `{"meshes": [{"mesh_id": "m", "coordinates": [1, 2], "indices": []}], "elements": [{"mesh_id": "m", "color": {"a": 255}}]}`,
		"ragged indices":    `{"meshes": [{"mesh_id": "m", "coordinates": [1, 2, 3], "indices": [0, 1]}], "elements": [{"mesh_id": "m", "color": {"a": 255}}]}`,
		"index out of range": `{"meshes": [{"mesh_id": "m", "coordinates": [1, 2, 3], "indices": [0, 1, 2]}], "elements": [{"mesh_id": "m", "color": {"a": 255}}]}`,
		"no instances":      `{"meshes": [{"mesh_id": "m", "coordinates": [1, 2, 3], "indices": []}], "elements": []}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			mesh, _, err := geometry.Parse(payload)
			require.ErrorIs(t, err, geometry.ErrPayloadDecode)
			require.Nil(t, mesh)
		})
	}
}

// TestSwapYZ_Involution: the axis swap applied twice restores the
// original coordinates exactly.
func TestSwapYZ_Involution(t *testing.T) {
	vertices := []float32{1.5, -2.25, 3.75, 0, 7, -9}
	original := append([]float32(nil), vertices...)

	geometry.SwapYZ(vertices)
	require.NotEqual(t, original, vertices)
	geometry.SwapYZ(vertices)
	require.Equal(t, original, vertices)
}
