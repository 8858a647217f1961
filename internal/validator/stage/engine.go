// Package stage implements the per-stage validation engine: a two-level
// predicate table keyed by chapter and stage, evaluated against
// read-only environment snapshots.
package stage

import (
	"fmt"
	"math"
	"strings"

	"github.com/daichi-lab/cgtutor/internal/domain/scene"
	"github.com/daichi-lab/cgtutor/internal/domain/stage"
)

// Stage tolerances. These are fixed curriculum constants, never computed.
const (
	moveTargetX   = 2.0  // chapter 1 stage 2: move +2 along X
	moveEpsilon   = 0.1
	rotTargetDegX = 45.0 // chapter 1 stage 3: rotate 45 degrees around X
	rotEpsilonDeg = 1.0
	scaleEpsilon  = 0.01

	panThreshold   = 0.1 // chapter 2: view location delta
	zoomThreshold  = 0.5 // chapter 2: view distance delta
	orbitThreshold = 0.01

	minSelectedVerts = 3
	minDeformedVerts = 5

	colorChannelEpsilon = 0.01
	defaultRoughness    = 0.5
	defaultMetallic     = 0.0
	pbrEpsilon          = 0.01
)

// Predicate evaluates one stage's completion condition over a snapshot.
// Predicates are pure and total: any snapshot, including a partially
// populated one, yields a defined outcome.
type Predicate func(snap scene.Snapshot) stage.Outcome

// Engine dispatches (chapter, stage) to the matching predicate.
// Stateless; safe to share.
type Engine struct {
	table map[int]map[int]Predicate
}

// NewEngine builds the engine with the full chapter 1-6 predicate table.
func NewEngine() *Engine {
	return &Engine{table: map[int]map[int]Predicate{
		1: {
			1: checkCubeSelected,
			2: checkCubeMoved,
			3: checkCubeRotated,
			4: checkCubeScaled,
		},
		2: {
			1: viewPredicate(checkViewPanned),
			2: viewPredicate(checkViewZoomed),
			3: viewPredicate(checkViewOrbited),
			4: viewPredicate(checkViewMastered),
		},
		3: {
			1: checkEditModeEntered,
			2: meshPredicate(checkVertsSelected),
			3: meshPredicate(checkEdgeSelected),
			4: meshPredicate(checkFaceSelected),
			5: meshPredicate(checkExtruded),
			6: meshPredicate(checkLoopCut),
		},
		4: {
			1: checkSculptModeEntered,
			2: checkSculptDeformed,
			3: brushPredicate("Smooth"),
			4: brushPredicate("Grab"),
		},
		5: {
			1: checkMaterialCreated,
			2: checkBaseColorChanged,
			3: checkImageTextureLoaded,
			4: checkNodeLinked,
			5: checkPBRChanged,
		},
		6: {
			1: checkRenderSaved,
		},
	}}
}

// Evaluate looks up and runs the predicate for key. An unmapped stage
// within a known chapter yields NOT_IMPLEMENTED; an unknown chapter
// yields UNKNOWN. Neither case is an error for the caller.
func (e *Engine) Evaluate(key stage.Key, snap scene.Snapshot) stage.Outcome {
	chapter, ok := e.table[key.Chapter]
	if !ok {
		return stage.Fail(stage.ReasonUnknown, "No check is defined for this chapter",
			"Run stage setup and try again")
	}
	pred, ok := chapter[key.Stage]
	if !ok {
		return stage.Fail(stage.ReasonNotImplemented,
			fmt.Sprintf("Stage %s has no check yet", key),
			"Run stage setup and try again")
	}
	return pred(snap)
}

// Mapped reports whether a predicate exists for key.
func (e *Engine) Mapped(key stage.Key) bool {
	chapter, ok := e.table[key.Chapter]
	if !ok {
		return false
	}
	_, ok = chapter[key.Stage]
	return ok
}

func vecDist(a, b scene.Vec3) float64 {
	d := a.Sub(b)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

func activeCube(snap scene.Snapshot) *scene.ObjectState {
	if snap.Active != nil && snap.Active.Name == "Cube" {
		return snap.Active
	}
	return nil
}

// ---- Chapter 1: object operations ----

func checkCubeSelected(snap scene.Snapshot) stage.Outcome {
	if activeCube(snap) != nil {
		return stage.Pass("Cube selected")
	}
	return stage.Fail(stage.ReasonNoActiveCube, "Select the cube",
		"Click the Cube in the 3D view to select it")
}

func checkCubeMoved(snap scene.Snapshot) stage.Outcome {
	cube := activeCube(snap)
	if cube == nil {
		return stage.Fail(stage.ReasonNoActiveCube, "No cube selected",
			"Select the Cube first")
	}
	movement := cube.Location[0] - snap.Baseline.Position[0]
	if math.Abs(movement-moveTargetX) < moveEpsilon {
		return stage.Pass("Moved +2 along X")
	}
	return stage.Fail(stage.ReasonTransformNotMatched,
		fmt.Sprintf("Moved %.2f so far", movement),
		"Press G, then X, then 2, then Enter")
}

func checkCubeRotated(snap scene.Snapshot) stage.Outcome {
	cube := activeCube(snap)
	if cube == nil {
		return stage.Fail(stage.ReasonNoActiveCube, "No cube selected",
			"Select the Cube first")
	}
	rot := cube.RotationDeg[0] - snap.Baseline.RotationDeg[0]
	if math.Abs(rot-rotTargetDegX) < rotEpsilonDeg {
		return stage.Pass("Rotated 45 degrees")
	}
	return stage.Fail(stage.ReasonTransformNotMatched,
		fmt.Sprintf("Rotated %.1f degrees so far", rot),
		"Press R, then X, then 45, then Enter")
}

func checkCubeScaled(snap scene.Snapshot) stage.Outcome {
	cube := activeCube(snap)
	if cube == nil {
		return stage.Fail(stage.ReasonNoActiveCube, "No cube selected",
			"Select the Cube first")
	}
	if math.Abs(cube.Scale[0]-snap.Baseline.Scale[0]) > scaleEpsilon {
		return stage.Pass("Scale changed")
	}
	return stage.Fail(stage.ReasonScaleNotChanged, "Change the scale",
		"Press S to scale, then Enter to confirm")
}

// ---- Chapter 2: viewport navigation ----

// viewPredicate guards the missing-3D-view prerequisite before the
// finer view checks run.
func viewPredicate(check Predicate) Predicate {
	return func(snap scene.Snapshot) stage.Outcome {
		if !snap.View.Present {
			return stage.Fail(stage.ReasonNoView3D, "No 3D view found",
				"Switch back to a layout with a 3D view")
		}
		return check(snap)
	}
}

func checkViewPanned(snap scene.Snapshot) stage.Outcome {
	if vecDist(snap.View.Location, snap.Baseline.ViewLocation) > panThreshold {
		return stage.Pass("View panned")
	}
	return stage.Fail(stage.ReasonViewNotMoved, "Pan the view",
		"Hold Shift and drag with the middle mouse button")
}

func checkViewZoomed(snap scene.Snapshot) stage.Outcome {
	if math.Abs(snap.View.Distance-snap.Baseline.ViewDistance) > zoomThreshold {
		return stage.Pass("View zoomed")
	}
	return stage.Fail(stage.ReasonViewNotZoomed, "Zoom the view",
		"Scroll the middle mouse wheel to zoom")
}

func checkViewOrbited(snap scene.Snapshot) stage.Outcome {
	locDiff := vecDist(snap.View.Location, snap.Baseline.ViewLocation)
	distDiff := math.Abs(snap.View.Distance - snap.Baseline.ViewDistance)
	if locDiff > orbitThreshold || distDiff > orbitThreshold {
		return stage.Pass("View orbited")
	}
	return stage.Fail(stage.ReasonViewNotRotated, "Orbit the view",
		"Drag with the middle mouse button (without Shift)")
}

func checkViewMastered(snap scene.Snapshot) stage.Outcome {
	locDiff := vecDist(snap.View.Location, snap.Baseline.ViewLocation)
	distDiff := math.Abs(snap.View.Distance - snap.Baseline.ViewDistance)
	if locDiff > panThreshold && distDiff > zoomThreshold {
		return stage.Pass("All view operations mastered")
	}
	return stage.Fail(stage.ReasonViewNotCompleted, "Pan and zoom the view",
		"Shift + middle mouse button pans",
		"The scroll wheel zooms")
}

// ---- Chapter 3: mesh editing ----

func checkEditModeEntered(snap scene.Snapshot) stage.Outcome {
	if snap.Active != nil && snap.Mode == scene.ModeEditMesh {
		return stage.Pass("Entered edit mode")
	}
	return stage.Fail(stage.ReasonNotInEditMode, "Enter edit mode",
		"Select the Cube, then press Tab for Edit Mode")
}

// meshPredicate guards the edit-mode prerequisite before selection and
// topology checks run.
func meshPredicate(check func(m *scene.MeshState, snap scene.Snapshot) stage.Outcome) Predicate {
	return func(snap scene.Snapshot) stage.Outcome {
		if snap.Mode != scene.ModeEditMesh || snap.Mesh == nil {
			return stage.Fail(stage.ReasonNotInEditMode, "Edit mode required",
				"Select the Cube, then press Tab for Edit Mode")
		}
		return check(snap.Mesh, snap)
	}
}

func checkVertsSelected(m *scene.MeshState, _ scene.Snapshot) stage.Outcome {
	if !m.SelectMode[0] {
		return stage.Fail(stage.ReasonWrongSelectMode, "Switch to vertex select mode",
			"Press 1 for vertex select mode")
	}
	if m.SelectedVerts >= minSelectedVerts {
		return stage.Pass(fmt.Sprintf("%d vertices selected", m.SelectedVerts))
	}
	return stage.Fail(stage.ReasonNotEnoughSelected,
		fmt.Sprintf("Select more vertices (%d selected)", m.SelectedVerts),
		"Hold Shift to select several",
		"Select three or more")
}

func checkEdgeSelected(m *scene.MeshState, _ scene.Snapshot) stage.Outcome {
	if !m.SelectMode[1] {
		return stage.Fail(stage.ReasonWrongSelectMode, "Switch to edge select mode",
			"Press 2 for edge select mode")
	}
	if m.SelectedEdges > 0 {
		return stage.Pass("Edge selected")
	}
	return stage.Fail(stage.ReasonNothingSelected, "Select an edge",
		"Click an edge to select it")
}

func checkFaceSelected(m *scene.MeshState, _ scene.Snapshot) stage.Outcome {
	if !m.SelectMode[2] {
		return stage.Fail(stage.ReasonWrongSelectMode, "Switch to face select mode",
			"Press 3 for face select mode")
	}
	if m.SelectedFaces > 0 {
		return stage.Pass("Face selected")
	}
	return stage.Fail(stage.ReasonNothingSelected, "Select a face",
		"Click a face to select it")
}

func checkExtruded(m *scene.MeshState, snap scene.Snapshot) stage.Outcome {
	if m.FaceCount > snap.Baseline.FaceCount {
		return stage.Pass("Extrude detected")
	}
	return stage.Fail(stage.ReasonExtrudeNotDetected, "Extrude a face",
		"Select a face, press E, then Enter")
}

func checkLoopCut(m *scene.MeshState, snap scene.Snapshot) stage.Outcome {
	if m.VertexCount > snap.Baseline.VertexCount {
		return stage.Pass("Loop cut detected")
	}
	return stage.Fail(stage.ReasonLoopcutNotDetected, "Add a loop cut",
		"Press Ctrl+R, click, then click again")
}

// ---- Chapter 4: sculpting ----

func sphereActive(snap scene.Snapshot) bool {
	return snap.Active != nil && snap.Active.Name == "Sphere"
}

func checkSculptModeEntered(snap scene.Snapshot) stage.Outcome {
	if snap.Mode == scene.ModeSculpt && sphereActive(snap) {
		return stage.Pass("Entered sculpt mode")
	}
	return stage.Fail(stage.ReasonNotInSculptMode, "Enter sculpt mode",
		"Run setup, then switch to Sculpt Mode")
}

func checkSculptDeformed(snap scene.Snapshot) stage.Outcome {
	if snap.Mode != scene.ModeSculpt || !sphereActive(snap) {
		return stage.Fail(stage.ReasonNotInSculptMode, "Sculpt mode required",
			"Switch to Sculpt Mode")
	}
	if snap.Sculpt.MovedVertices > minDeformedVerts {
		return stage.Pass("Surface deformed with the Draw brush")
	}
	return stage.Fail(stage.ReasonSculptNotDetected, "Deform the sphere with the Draw brush",
		"Drag across the surface with Draw",
		"Press F to adjust the brush size")
}

func brushPredicate(name string) Predicate {
	return func(snap scene.Snapshot) stage.Outcome {
		if snap.Mode == scene.ModeSculpt && brushMatches(snap.Sculpt.Brush, name) {
			return stage.Pass(fmt.Sprintf("%s brush selected", name))
		}
		return stage.Fail(stage.ReasonWrongBrush,
			fmt.Sprintf("Select the %s brush", name),
			fmt.Sprintf("Pick %s from the brush list", name))
	}
}

// brushMatches does a substring match so variants like "Smooth/Relax"
// still count.
func brushMatches(current, want string) bool {
	return current != "" && strings.Contains(current, want)
}

// ---- Chapter 5: material nodes ----

func materialOf(snap scene.Snapshot) (*scene.MaterialState, stage.Outcome) {
	if snap.Active == nil {
		return nil, stage.Fail(stage.ReasonNoActiveObject, "Select an object",
			"Click an object to make it active")
	}
	if snap.Material == nil || !snap.Material.HasMaterial {
		return nil, stage.Fail(stage.ReasonNoMaterial, "Create a material",
			"Press New in the material panel, then enable Use Nodes")
	}
	return snap.Material, stage.Outcome{}
}

func checkMaterialCreated(snap scene.Snapshot) stage.Outcome {
	mat, fail := materialOf(snap)
	if mat == nil {
		return fail
	}
	if mat.UseNodes {
		return stage.Pass("Material created")
	}
	return stage.Fail(stage.ReasonNoMaterial, "Create a material",
		"Press New in the material panel, then enable Use Nodes")
}

func bsdfOf(snap scene.Snapshot) (*scene.MaterialState, stage.Outcome) {
	mat, fail := materialOf(snap)
	if mat == nil {
		return nil, fail
	}
	if !mat.UseNodes || !mat.HasBSDF {
		return nil, stage.Fail(stage.ReasonNoBSDF, "No Principled BSDF found",
			"Turn on Use Nodes")
	}
	return mat, stage.Outcome{}
}

func checkBaseColorChanged(snap scene.Snapshot) stage.Outcome {
	mat, fail := bsdfOf(snap)
	if mat == nil {
		return fail
	}
	def := [4]float64{1, 1, 1, 1}
	for i := range def {
		if math.Abs(mat.BaseColor[i]-def[i]) > colorChannelEpsilon {
			return stage.Pass("Base Color changed")
		}
	}
	return stage.Fail(stage.ReasonBaseColorNotChanged, "Change the Base Color",
		"Click the Base Color swatch and pick a color")
}

func checkImageTextureLoaded(snap scene.Snapshot) stage.Outcome {
	if snap.Active != nil && snap.Material != nil && snap.Material.HasImageTexture {
		return stage.Pass("Image texture loaded")
	}
	return stage.Fail(stage.ReasonNoImageTexture, "Load an image texture",
		"Add an Image Texture node and open an image")
}

func checkNodeLinked(snap scene.Snapshot) stage.Outcome {
	if snap.Active != nil && snap.Material != nil && snap.Material.LinkedToBaseColor {
		return stage.Pass("Nodes connected")
	}
	return stage.Fail(stage.ReasonNodeLinkIncorrect, "Connect the nodes",
		"Wire the image Color output into Base Color")
}

func checkPBRChanged(snap scene.Snapshot) stage.Outcome {
	mat, fail := bsdfOf(snap)
	if mat == nil {
		return fail
	}
	if math.Abs(mat.Roughness-defaultRoughness) > pbrEpsilon ||
		math.Abs(mat.Metallic-defaultMetallic) > pbrEpsilon {
		return stage.Pass("Surface response changed")
	}
	return stage.Fail(stage.ReasonPBRNotChanged, "Change Roughness or Metallic",
		"Drag the Roughness or Metallic slider")
}

// ---- Chapter 6: final render ----

func checkRenderSaved(snap scene.Snapshot) stage.Outcome {
	if snap.RenderSaved {
		return stage.Pass("Render saved")
	}
	return stage.Fail(stage.ReasonRenderNotSaved, "No saved render detected yet",
		"Press F12 to render, then Image > Save As... on the Render Result",
		"The assisted render-and-save command also works")
}
