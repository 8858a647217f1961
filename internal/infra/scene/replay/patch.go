package replay

import "github.com/daichi-lab/cgtutor/internal/domain/scene"

// Patch is a pointer-field overlay applied to the scene snapshot. Only
// non-nil fields change anything, so a yaml step states exactly the
// learner action it simulates and nothing else.
type Patch struct {
	ActiveName  *string     `yaml:"active_name"`
	ActiveType  *string     `yaml:"active_type"`
	ClearActive *bool       `yaml:"clear_active"`
	Location    *[3]float64 `yaml:"location"`
	RotationDeg *[3]float64 `yaml:"rotation_deg"`
	Scale       *[3]float64 `yaml:"scale"`

	Mode *string `yaml:"mode"`

	ViewPresent  *bool       `yaml:"view_present"`
	ViewLocation *[3]float64 `yaml:"view_location"`
	ViewDistance *float64    `yaml:"view_distance"`

	SelectMode    *string `yaml:"select_mode"` // vertex, edge, or face
	SelectedVerts *int    `yaml:"selected_verts"`
	SelectedEdges *int    `yaml:"selected_edges"`
	SelectedFaces *int    `yaml:"selected_faces"`
	VertexCount   *int    `yaml:"vertex_count"`
	EdgeCount     *int    `yaml:"edge_count"`
	FaceCount     *int    `yaml:"face_count"`

	Brush         *string `yaml:"brush"`
	MovedVertices *int    `yaml:"moved_vertices"`

	HasMaterial       *bool       `yaml:"has_material"`
	UseNodes          *bool       `yaml:"use_nodes"`
	HasBSDF           *bool       `yaml:"has_bsdf"`
	BaseColor         *[4]float64 `yaml:"base_color"`
	Roughness         *float64    `yaml:"roughness"`
	Metallic          *float64    `yaml:"metallic"`
	HasImageTexture   *bool       `yaml:"has_image_texture"`
	LinkedToBaseColor *bool       `yaml:"linked_to_base_color"`
}

// ApplyPatch mutates the scene snapshot with the overlay. Object,
// mesh, and material sub-states are created on first touch.
func (s *Scene) ApplyPatch(p *Patch) {
	if p == nil {
		return
	}

	if p.ClearActive != nil && *p.ClearActive {
		s.snap.Active = nil
	}
	if p.ActiveName != nil || p.ActiveType != nil || p.Location != nil || p.RotationDeg != nil || p.Scale != nil {
		if s.snap.Active == nil {
			s.snap.Active = &scene.ObjectState{Scale: scene.Vec3{1, 1, 1}}
		}
		obj := s.snap.Active
		if p.ActiveName != nil {
			obj.Name = *p.ActiveName
		}
		if p.ActiveType != nil {
			obj.Type = *p.ActiveType
		}
		if p.Location != nil {
			obj.Location = scene.Vec3(*p.Location)
		}
		if p.RotationDeg != nil {
			obj.RotationDeg = scene.Vec3(*p.RotationDeg)
		}
		if p.Scale != nil {
			obj.Scale = scene.Vec3(*p.Scale)
		}
	}

	if p.Mode != nil {
		s.snap.Mode = *p.Mode
	}

	if p.ViewPresent != nil {
		s.snap.View.Present = *p.ViewPresent
	}
	if p.ViewLocation != nil {
		s.snap.View.Location = scene.Vec3(*p.ViewLocation)
	}
	if p.ViewDistance != nil {
		s.snap.View.Distance = *p.ViewDistance
	}

	if p.SelectMode != nil || p.SelectedVerts != nil || p.SelectedEdges != nil ||
		p.SelectedFaces != nil || p.VertexCount != nil || p.EdgeCount != nil || p.FaceCount != nil {
		if s.snap.Mesh == nil {
			s.snap.Mesh = &scene.MeshState{}
		}
		m := s.snap.Mesh
		if p.SelectMode != nil {
			m.SelectMode = [3]bool{
				*p.SelectMode == "vertex",
				*p.SelectMode == "edge",
				*p.SelectMode == "face",
			}
		}
		if p.SelectedVerts != nil {
			m.SelectedVerts = *p.SelectedVerts
		}
		if p.SelectedEdges != nil {
			m.SelectedEdges = *p.SelectedEdges
		}
		if p.SelectedFaces != nil {
			m.SelectedFaces = *p.SelectedFaces
		}
		if p.VertexCount != nil {
			m.VertexCount = *p.VertexCount
		}
		if p.EdgeCount != nil {
			m.EdgeCount = *p.EdgeCount
		}
		if p.FaceCount != nil {
			m.FaceCount = *p.FaceCount
		}
	}

	if p.Brush != nil {
		s.snap.Sculpt.Brush = *p.Brush
	}
	if p.MovedVertices != nil {
		s.snap.Sculpt.MovedVertices = *p.MovedVertices
	}

	if p.HasMaterial != nil || p.UseNodes != nil || p.HasBSDF != nil || p.BaseColor != nil ||
		p.Roughness != nil || p.Metallic != nil || p.HasImageTexture != nil || p.LinkedToBaseColor != nil {
		if s.snap.Material == nil {
			s.snap.Material = &scene.MaterialState{
				BaseColor: [4]float64{1, 1, 1, 1},
				Roughness: 0.5,
			}
		}
		mat := s.snap.Material
		if p.HasMaterial != nil {
			mat.HasMaterial = *p.HasMaterial
		}
		if p.UseNodes != nil {
			mat.UseNodes = *p.UseNodes
		}
		if p.HasBSDF != nil {
			mat.HasBSDF = *p.HasBSDF
		}
		if p.BaseColor != nil {
			mat.BaseColor = *p.BaseColor
		}
		if p.Roughness != nil {
			mat.Roughness = *p.Roughness
		}
		if p.Metallic != nil {
			mat.Metallic = *p.Metallic
		}
		if p.HasImageTexture != nil {
			mat.HasImageTexture = *p.HasImageTexture
		}
		if p.LinkedToBaseColor != nil {
			mat.LinkedToBaseColor = *p.LinkedToBaseColor
		}
	}
}
