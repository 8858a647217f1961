// Package scene defines the narrow interface between the tutorial core
// and the external 3D authoring environment. The core only ever reads
// snapshots; environment mutation happens exclusively through the
// setup and session-end commands.
package scene

// Vec3 is a position, Euler rotation (degrees), or scale triple.
type Vec3 [3]float64

// Sub returns the component-wise difference a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Editor modes reported in Snapshot.Mode.
const (
	ModeObject   = "OBJECT"
	ModeEditMesh = "EDIT_MESH"
	ModeSculpt   = "SCULPT"
)

// ObjectState describes the active object at snapshot time.
type ObjectState struct {
	Name        string
	Type        string // MESH, CAMERA, LIGHT
	Location    Vec3
	RotationDeg Vec3
	Scale       Vec3
}

// ViewState describes the 3D viewport. Present is false when no 3D
// view exists in the current layout.
type ViewState struct {
	Present  bool
	Location Vec3
	Distance float64
}

// MeshState describes edit-mode mesh topology and selection. Only
// populated while the editor is in mesh edit mode.
type MeshState struct {
	SelectMode    [3]bool // vertex, edge, face
	SelectedVerts int
	SelectedEdges int
	SelectedFaces int
	VertexCount   int
	EdgeCount     int
	FaceCount     int
}

// SculptState describes sculpt mode: the active brush and how many
// vertices moved from their captured baseline positions.
type SculptState struct {
	Brush         string
	MovedVertices int
}

// MaterialState describes the active object's material node graph.
type MaterialState struct {
	HasMaterial       bool
	UseNodes          bool
	HasBSDF           bool
	BaseColor         [4]float64
	Roughness         float64
	Metallic          float64
	HasImageTexture   bool
	LinkedToBaseColor bool // image Color socket wired to Base Color
}

// Baseline holds the reference values captured by the setup commands.
// Predicates compare current snapshot values against these.
type Baseline struct {
	Position     Vec3
	RotationDeg  Vec3
	Scale        Vec3
	ViewLocation Vec3
	ViewDistance float64
	VertexCount  int
	EdgeCount    int
	FaceCount    int
}

// Snapshot is a read-only view of the environment at validation time.
// It is re-fetched on every validation tick and never mutated by the
// core. Missing or zero fields mean "not yet satisfied", not errors.
type Snapshot struct {
	Active      *ObjectState
	Mode        string
	View        ViewState
	Mesh        *MeshState
	Sculpt      SculptState
	Material    *MaterialState
	Baseline    Baseline
	RenderSaved bool // a non-empty render output file exists
}

// Scene is the external collaborator the session drives. QuerySnapshot
// must not mutate the environment; RunSetupCommands spawns the starting
// geometry for a chapter and captures baselines; RunSessionEndCommands
// is idempotent cleanup that disables but never destroys entities.
type Scene interface {
	QuerySnapshot(chapter, stage int) (Snapshot, error)
	RunSetupCommands(chapter int) error
	RunSessionEndCommands() error
}
