package stage

import (
	"testing"

	"github.com/daichi-lab/cgtutor/internal/domain/scene"
	"github.com/daichi-lab/cgtutor/internal/domain/stage"
)

func cubeSnapshot() scene.Snapshot {
	return scene.Snapshot{
		Active: &scene.ObjectState{Name: "Cube", Type: "MESH", Scale: scene.Vec3{1, 1, 1}},
		Mode:   scene.ModeObject,
		View:   scene.ViewState{Present: true, Distance: 10},
		Baseline: scene.Baseline{
			Scale:        scene.Vec3{1, 1, 1},
			ViewDistance: 10,
		},
	}
}

func evaluate(t *testing.T, chapter, st int, snap scene.Snapshot) stage.Outcome {
	t.Helper()
	return NewEngine().Evaluate(stage.NewKey(chapter, st), snap)
}

func wantPass(t *testing.T, out stage.Outcome) {
	t.Helper()
	if !out.OK {
		t.Errorf("expected pass, got %s: %s", out.Reason, out.Message)
	}
}

func wantFail(t *testing.T, out stage.Outcome, reason stage.ReasonCode) {
	t.Helper()
	if out.OK {
		t.Fatalf("expected failure %s, got pass: %s", reason, out.Message)
	}
	if out.Reason != reason {
		t.Errorf("reason = %s, want %s", out.Reason, reason)
	}
	if len(out.Hints) == 0 {
		t.Error("failed outcome carries no hints")
	}
}

func TestEvaluateUnknownChapter(t *testing.T) {
	out := evaluate(t, 9, 1, cubeSnapshot())
	wantFail(t, out, stage.ReasonUnknown)
}

func TestEvaluateUnmappedStage(t *testing.T) {
	out := evaluate(t, 6, 9, cubeSnapshot())
	wantFail(t, out, stage.ReasonNotImplemented)
}

func TestMappedCoversWholeCurriculum(t *testing.T) {
	eng := NewEngine()
	for ch, count := range stage.StageCount {
		for st := 1; st <= count; st++ {
			if !eng.Mapped(stage.NewKey(ch, st)) {
				t.Errorf("no predicate for ch%d/st%d", ch, st)
			}
		}
	}
	if eng.Mapped(stage.NewKey(1, 5)) {
		t.Error("Mapped reported a predicate beyond chapter 1's stages")
	}
}

func TestCubeSelected(t *testing.T) {
	wantPass(t, evaluate(t, 1, 1, cubeSnapshot()))

	snap := cubeSnapshot()
	snap.Active = nil
	wantFail(t, evaluate(t, 1, 1, snap), stage.ReasonNoActiveCube)

	snap.Active = &scene.ObjectState{Name: "Sphere"}
	wantFail(t, evaluate(t, 1, 1, snap), stage.ReasonNoActiveCube)
}

func TestCubeMoved(t *testing.T) {
	snap := cubeSnapshot()
	snap.Active.Location = scene.Vec3{2.05, 0, 0}
	wantPass(t, evaluate(t, 1, 2, snap))

	// 0.1 off target is outside the tolerance band.
	snap.Active.Location = scene.Vec3{1.9, 0, 0}
	wantFail(t, evaluate(t, 1, 2, snap), stage.ReasonTransformNotMatched)

	snap.Active.Location = scene.Vec3{}
	wantFail(t, evaluate(t, 1, 2, snap), stage.ReasonTransformNotMatched)
}

func TestCubeRotated(t *testing.T) {
	snap := cubeSnapshot()
	snap.Active.RotationDeg = scene.Vec3{45.5, 0, 0}
	wantPass(t, evaluate(t, 1, 3, snap))

	snap.Active.RotationDeg = scene.Vec3{43, 0, 0}
	wantFail(t, evaluate(t, 1, 3, snap), stage.ReasonTransformNotMatched)
}

func TestCubeScaled(t *testing.T) {
	snap := cubeSnapshot()
	snap.Active.Scale = scene.Vec3{1.5, 1, 1}
	wantPass(t, evaluate(t, 1, 4, snap))

	snap.Active.Scale = scene.Vec3{1.005, 1, 1}
	wantFail(t, evaluate(t, 1, 4, snap), stage.ReasonScaleNotChanged)
}

func TestViewPredicatesRequireView(t *testing.T) {
	snap := cubeSnapshot()
	snap.View.Present = false
	for st := 1; st <= stage.StageCount[2]; st++ {
		wantFail(t, evaluate(t, 2, st, snap), stage.ReasonNoView3D)
	}
}

func TestViewPanned(t *testing.T) {
	snap := cubeSnapshot()
	snap.View.Location = scene.Vec3{0.2, 0, 0}
	wantPass(t, evaluate(t, 2, 1, snap))

	snap.View.Location = scene.Vec3{0.05, 0, 0}
	wantFail(t, evaluate(t, 2, 1, snap), stage.ReasonViewNotMoved)
}

func TestViewZoomed(t *testing.T) {
	snap := cubeSnapshot()
	snap.View.Distance = 8
	wantPass(t, evaluate(t, 2, 2, snap))

	snap.View.Distance = 9.8
	wantFail(t, evaluate(t, 2, 2, snap), stage.ReasonViewNotZoomed)
}

func TestViewOrbited(t *testing.T) {
	snap := cubeSnapshot()
	snap.View.Location = scene.Vec3{0.02, 0, 0}
	wantPass(t, evaluate(t, 2, 3, snap))

	snap.View.Location = scene.Vec3{}
	wantFail(t, evaluate(t, 2, 3, snap), stage.ReasonViewNotRotated)
}

func TestViewMasteredNeedsBothPanAndZoom(t *testing.T) {
	snap := cubeSnapshot()
	snap.View.Location = scene.Vec3{0.2, 0, 0}
	wantFail(t, evaluate(t, 2, 4, snap), stage.ReasonViewNotCompleted)

	snap.View.Distance = 8
	wantPass(t, evaluate(t, 2, 4, snap))
}

func editSnapshot() scene.Snapshot {
	snap := cubeSnapshot()
	snap.Mode = scene.ModeEditMesh
	snap.Mesh = &scene.MeshState{
		SelectMode:  [3]bool{true, false, false},
		VertexCount: 8,
		EdgeCount:   12,
		FaceCount:   6,
	}
	snap.Baseline.VertexCount = 8
	snap.Baseline.EdgeCount = 12
	snap.Baseline.FaceCount = 6
	return snap
}

func TestEditModeEntered(t *testing.T) {
	wantPass(t, evaluate(t, 3, 1, editSnapshot()))
	wantFail(t, evaluate(t, 3, 1, cubeSnapshot()), stage.ReasonNotInEditMode)
}

func TestMeshPredicatesRequireEditMode(t *testing.T) {
	snap := cubeSnapshot()
	for st := 2; st <= stage.StageCount[3]; st++ {
		wantFail(t, evaluate(t, 3, st, snap), stage.ReasonNotInEditMode)
	}
}

func TestVertsSelected(t *testing.T) {
	snap := editSnapshot()
	snap.Mesh.SelectedVerts = 3
	wantPass(t, evaluate(t, 3, 2, snap))

	snap.Mesh.SelectedVerts = 2
	wantFail(t, evaluate(t, 3, 2, snap), stage.ReasonNotEnoughSelected)

	snap.Mesh.SelectMode = [3]bool{false, true, false}
	wantFail(t, evaluate(t, 3, 2, snap), stage.ReasonWrongSelectMode)
}

func TestEdgeSelected(t *testing.T) {
	snap := editSnapshot()
	snap.Mesh.SelectMode = [3]bool{false, true, false}
	snap.Mesh.SelectedEdges = 1
	wantPass(t, evaluate(t, 3, 3, snap))

	snap.Mesh.SelectedEdges = 0
	wantFail(t, evaluate(t, 3, 3, snap), stage.ReasonNothingSelected)

	snap.Mesh.SelectMode = [3]bool{true, false, false}
	wantFail(t, evaluate(t, 3, 3, snap), stage.ReasonWrongSelectMode)
}

func TestFaceSelected(t *testing.T) {
	snap := editSnapshot()
	snap.Mesh.SelectMode = [3]bool{false, false, true}
	snap.Mesh.SelectedFaces = 1
	wantPass(t, evaluate(t, 3, 4, snap))

	snap.Mesh.SelectedFaces = 0
	wantFail(t, evaluate(t, 3, 4, snap), stage.ReasonNothingSelected)
}

func TestExtrudeDetectedByFaceGrowth(t *testing.T) {
	snap := editSnapshot()
	snap.Mesh.FaceCount = 10
	wantPass(t, evaluate(t, 3, 5, snap))

	snap.Mesh.FaceCount = 6
	wantFail(t, evaluate(t, 3, 5, snap), stage.ReasonExtrudeNotDetected)
}

func TestLoopCutDetectedByVertexGrowth(t *testing.T) {
	snap := editSnapshot()
	snap.Mesh.VertexCount = 12
	wantPass(t, evaluate(t, 3, 6, snap))

	snap.Mesh.VertexCount = 8
	wantFail(t, evaluate(t, 3, 6, snap), stage.ReasonLoopcutNotDetected)
}

func sculptSnapshot() scene.Snapshot {
	return scene.Snapshot{
		Active: &scene.ObjectState{Name: "Sphere", Type: "MESH", Scale: scene.Vec3{1, 1, 1}},
		Mode:   scene.ModeSculpt,
		View:   scene.ViewState{Present: true, Distance: 10},
		Sculpt: scene.SculptState{Brush: "Draw"},
	}
}

func TestSculptModeEntered(t *testing.T) {
	wantPass(t, evaluate(t, 4, 1, sculptSnapshot()))
	wantFail(t, evaluate(t, 4, 1, cubeSnapshot()), stage.ReasonNotInSculptMode)
}

func TestSculptDeformed(t *testing.T) {
	snap := sculptSnapshot()
	snap.Sculpt.MovedVertices = 6
	wantPass(t, evaluate(t, 4, 2, snap))

	// Exactly the threshold is not enough.
	snap.Sculpt.MovedVertices = 5
	wantFail(t, evaluate(t, 4, 2, snap), stage.ReasonSculptNotDetected)
}

func TestBrushSelection(t *testing.T) {
	snap := sculptSnapshot()
	snap.Sculpt.Brush = "Smooth"
	wantPass(t, evaluate(t, 4, 3, snap))
	wantFail(t, evaluate(t, 4, 4, snap), stage.ReasonWrongBrush)

	// Brush names match by substring.
	snap.Sculpt.Brush = "builtin_brush.Grab"
	wantPass(t, evaluate(t, 4, 4, snap))
}

func materialSnapshot() scene.Snapshot {
	snap := cubeSnapshot()
	snap.Material = &scene.MaterialState{
		HasMaterial: true,
		UseNodes:    true,
		HasBSDF:     true,
		BaseColor:   [4]float64{1, 1, 1, 1},
		Roughness:   0.5,
	}
	return snap
}

func TestMaterialCreated(t *testing.T) {
	wantPass(t, evaluate(t, 5, 1, materialSnapshot()))

	snap := materialSnapshot()
	snap.Material = nil
	wantFail(t, evaluate(t, 5, 1, snap), stage.ReasonNoMaterial)

	snap = materialSnapshot()
	snap.Active = nil
	wantFail(t, evaluate(t, 5, 1, snap), stage.ReasonNoActiveObject)
}

func TestBaseColorChanged(t *testing.T) {
	snap := materialSnapshot()
	snap.Material.BaseColor = [4]float64{0.8, 0.2, 0.2, 1}
	wantPass(t, evaluate(t, 5, 2, snap))

	snap.Material.BaseColor = [4]float64{1, 1, 1, 1}
	wantFail(t, evaluate(t, 5, 2, snap), stage.ReasonBaseColorNotChanged)

	snap.Material.HasBSDF = false
	wantFail(t, evaluate(t, 5, 2, snap), stage.ReasonNoBSDF)
}

func TestImageTextureLoaded(t *testing.T) {
	snap := materialSnapshot()
	snap.Material.HasImageTexture = true
	wantPass(t, evaluate(t, 5, 3, snap))

	snap.Material.HasImageTexture = false
	wantFail(t, evaluate(t, 5, 3, snap), stage.ReasonNoImageTexture)
}

func TestNodeLinked(t *testing.T) {
	snap := materialSnapshot()
	snap.Material.LinkedToBaseColor = true
	wantPass(t, evaluate(t, 5, 4, snap))

	snap.Material.LinkedToBaseColor = false
	wantFail(t, evaluate(t, 5, 4, snap), stage.ReasonNodeLinkIncorrect)
}

func TestPBRChanged(t *testing.T) {
	snap := materialSnapshot()
	snap.Material.Roughness = 0.8
	wantPass(t, evaluate(t, 5, 5, snap))

	snap.Material.Roughness = 0.5
	snap.Material.Metallic = 0.3
	wantPass(t, evaluate(t, 5, 5, snap))

	snap.Material.Metallic = 0.005
	wantFail(t, evaluate(t, 5, 5, snap), stage.ReasonPBRNotChanged)
}

func TestRenderSaved(t *testing.T) {
	snap := cubeSnapshot()
	snap.RenderSaved = true
	wantPass(t, evaluate(t, 6, 1, snap))

	snap.RenderSaved = false
	wantFail(t, evaluate(t, 6, 1, snap), stage.ReasonRenderNotSaved)
}
