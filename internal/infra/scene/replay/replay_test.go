package replay

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daichi-lab/cgtutor/internal/domain/scene"
)

func TestNewSceneStartsEmpty(t *testing.T) {
	s := New(afero.NewMemMapFs())
	snap, err := s.QuerySnapshot(1, 1)
	require.NoError(t, err)
	assert.Nil(t, snap.Active)
	assert.Equal(t, scene.ModeObject, snap.Mode)
	assert.True(t, snap.View.Present)
	assert.False(t, snap.RenderSaved)
}

func TestSetupChapter1SeedsCubeAndBaselines(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(1))

	snap, err := s.QuerySnapshot(1, 2)
	require.NoError(t, err)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "Cube", snap.Active.Name)
	assert.Equal(t, snap.Active.Location, snap.Baseline.Position)
	assert.Equal(t, snap.Active.Scale, snap.Baseline.Scale)
}

func TestSetupChapter3SeedsEditMesh(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(3))

	snap, err := s.QuerySnapshot(3, 1)
	require.NoError(t, err)
	assert.Equal(t, scene.ModeEditMesh, snap.Mode)
	require.NotNil(t, snap.Mesh)
	assert.Equal(t, 8, snap.Mesh.VertexCount)
	assert.Equal(t, 8, snap.Baseline.VertexCount)
	assert.Equal(t, [3]bool{true, false, false}, snap.Mesh.SelectMode)
}

func TestSetupChapter4SeedsSculptSphere(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(4))

	snap, err := s.QuerySnapshot(4, 1)
	require.NoError(t, err)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "Sphere", snap.Active.Name)
	assert.Equal(t, scene.ModeSculpt, snap.Mode)
	assert.Equal(t, "Draw", snap.Sculpt.Brush)
}

func TestSetupUnknownChapterFails(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.Error(t, s.RunSetupCommands(7))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(3))

	snap, err := s.QuerySnapshot(3, 1)
	require.NoError(t, err)
	snap.Mesh.SelectedVerts = 99

	again, err := s.QuerySnapshot(3, 1)
	require.NoError(t, err)
	assert.Zero(t, again.Mesh.SelectedVerts, "snapshot mutation leaked into the scene")
}

func TestApplyPatchMutatesScene(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(1))

	loc := [3]float64{2, 0, 0}
	s.ApplyPatch(&Patch{Location: &loc})

	snap, err := s.QuerySnapshot(1, 2)
	require.NoError(t, err)
	assert.Equal(t, scene.Vec3{2, 0, 0}, snap.Active.Location)
	assert.Equal(t, scene.Vec3{}, snap.Baseline.Position, "baseline is unchanged by patches")
}

func TestApplyPatchCreatesSubStates(t *testing.T) {
	s := New(afero.NewMemMapFs())

	mode := "vertex"
	n := 4
	s.ApplyPatch(&Patch{SelectMode: &mode, SelectedVerts: &n})
	snap, _ := s.QuerySnapshot(3, 2)
	require.NotNil(t, snap.Mesh)
	assert.Equal(t, [3]bool{true, false, false}, snap.Mesh.SelectMode)
	assert.Equal(t, 4, snap.Mesh.SelectedVerts)

	rough := 0.9
	s.ApplyPatch(&Patch{Roughness: &rough})
	snap, _ = s.QuerySnapshot(5, 5)
	require.NotNil(t, snap.Material)
	assert.InDelta(t, 0.9, snap.Material.Roughness, 1e-9)
	assert.Equal(t, [4]float64{1, 1, 1, 1}, snap.Material.BaseColor, "untouched fields keep defaults")
}

func TestApplyPatchNilIsNoop(t *testing.T) {
	s := New(afero.NewMemMapFs())
	s.ApplyPatch(nil)
	snap, err := s.QuerySnapshot(1, 1)
	require.NoError(t, err)
	assert.Nil(t, snap.Active)
}

func TestSaveRenderFlipsRenderSaved(t *testing.T) {
	afs := afero.NewMemMapFs()
	s := New(afs)
	require.NoError(t, s.RunSetupCommands(6))

	snap, _ := s.QuerySnapshot(6, 1)
	assert.False(t, snap.RenderSaved)

	path, err := s.SaveRender("/out", "render.png")
	require.NoError(t, err)

	snap, _ = s.QuerySnapshot(6, 1)
	assert.True(t, snap.RenderSaved)

	// An emptied file no longer counts as a saved render.
	require.NoError(t, afero.WriteFile(afs, path, nil, 0o644))
	snap, _ = s.QuerySnapshot(6, 1)
	assert.False(t, snap.RenderSaved)
}

func TestSessionEndIsIdempotent(t *testing.T) {
	s := New(afero.NewMemMapFs())
	require.NoError(t, s.RunSetupCommands(6))
	assert.True(t, s.CameraAttached())
	assert.False(t, s.SunHidden())

	require.NoError(t, s.RunSessionEndCommands())
	require.NoError(t, s.RunSessionEndCommands())
	assert.False(t, s.CameraAttached())
	assert.True(t, s.SunHidden())
}

func TestParseScript(t *testing.T) {
	src := []byte(`
participant: P01
steps:
  - op: setup
  - op: patch
    patch:
      location: [2, 0, 0]
  - op: validate
  - op: advance
  - op: tick
    ms: 500
  - op: goto
    chapter: 6
  - op: stop
`)
	script, err := ParseScript(src)
	require.NoError(t, err)
	assert.Equal(t, "P01", script.Participant)
	require.Len(t, script.Steps, 7)
	assert.Equal(t, OpSetup, script.Steps[0].Op)
	require.NotNil(t, script.Steps[1].Patch)
	require.NotNil(t, script.Steps[1].Patch.Location)
	assert.Equal(t, [3]float64{2, 0, 0}, *script.Steps[1].Patch.Location)
	assert.Equal(t, 500, script.Steps[4].Ms)
	assert.Equal(t, 6, script.Steps[5].Chapter)
}

func TestParseScriptRejectsUnknownOp(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - op: explode\n"))
	require.Error(t, err)
}

func TestParseScriptRejectsGotoWithoutChapter(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - op: goto\n"))
	require.Error(t, err)
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := LoadScript(afero.NewMemMapFs(), "/nope.yaml")
	require.Error(t, err)
}
