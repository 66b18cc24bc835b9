package geometry

import (
	"encoding/json"
	"fmt"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Embedded payload format
// ============================================================

type payload struct {
	Meshes    []payloadMesh     `json:"meshes"`
	Instances []payloadInstance `json:"elements"`
}

type payloadMesh struct {
	MeshID      string    `json:"mesh_id"`
	Coordinates []float32 `json:"coordinates"`
	Indices     []uint32  `json:"indices"`
	FaceColors  []string  `json:"face_colors,omitempty"`
}

type payloadInstance struct {
	MeshID   string         `json:"mesh_id"`
	Rotation quaternion     `json:"rotation"`
	Vector   vector         `json:"vector"`
	Color    rgba           `json:"color"`
	Info     map[string]any `json:"info,omitempty"`
}

type vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type rgba struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ============================================================
// Parser
// ============================================================

// Parse decodes an element's embedded mesh payload into a single
// renderable mesh: per instance, vertices are rotated, axis-swapped
// into Y-up space and translated, then appended with their faces.
// The second return value is the payload's default color ("" when
// absent). A malformed payload yields an error wrapping
// ErrPayloadDecode and no mesh.
func Parse(raw string) (*model.Mesh, string, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}

	meshByID := make(map[string]payloadMesh, len(p.Meshes))
	for _, m := range p.Meshes {
		meshByID[m.MeshID] = m
	}

	out := &model.Mesh{Opacity: 1}
	defaultColor := ""

	for _, inst := range p.Instances {
		src, ok := meshByID[inst.MeshID]
		if !ok {
			continue
		}
		if len(src.Coordinates)%3 != 0 {
			return nil, "", fmt.Errorf("%w: mesh %q has %d coordinates, not a multiple of 3",
				ErrPayloadDecode, inst.MeshID, len(src.Coordinates))
		}
		if len(src.Indices)%3 != 0 {
			return nil, "", fmt.Errorf("%w: mesh %q has %d indices, not a multiple of 3",
				ErrPayloadDecode, inst.MeshID, len(src.Indices))
		}
		vertexCount := uint32(len(src.Coordinates) / 3)
		for _, idx := range src.Indices {
			if idx >= vertexCount {
				return nil, "", fmt.Errorf("%w: mesh %q index %d out of range (%d vertices)",
					ErrPayloadDecode, inst.MeshID, idx, vertexCount)
			}
		}

		vertices := make([]float32, len(src.Coordinates))
		copy(vertices, src.Coordinates)
		rotate(vertices, inst.Rotation)
		SwapYZ(vertices)
		translate(vertices, inst.Vector)

		offset := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, vertices...)
		for _, idx := range src.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
		out.FaceColors = append(out.FaceColors, src.FaceColors...)

		if defaultColor == "" {
			defaultColor = hexColor(inst.Color)
			out.Opacity = float64(inst.Color.A) / 255
		}
	}

	if out.VertexCount() == 0 {
		return nil, "", fmt.Errorf("%w: payload carries no renderable mesh", ErrPayloadDecode)
	}
	if len(out.FaceColors) != 0 && len(out.FaceColors) != out.TriangleCount() {
		return nil, "", fmt.Errorf("%w: %d face colors for %d faces",
			ErrPayloadDecode, len(out.FaceColors), out.TriangleCount())
	}
	return out, defaultColor, nil
}

func hexColor(c rgba) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
