// Package replay implements the scene interface with a scripted,
// in-memory environment. It stands in for the real 3D authoring tool
// in tests, demos, and the CLI run command: setup seeds each chapter
// the way the live environment would, and yaml script patches mutate
// the snapshot between validation ticks.
package replay

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/daichi-lab/cgtutor/internal/domain/scene"
)

// Cube and sphere topology used when seeding modeling chapters.
const (
	cubeVertexCount = 8
	cubeEdgeCount   = 12
	cubeFaceCount   = 6
)

// Scene is a scripted scene.Scene implementation. Mutations happen
// only through RunSetupCommands, RunSessionEndCommands, ApplyPatch,
// and SaveRender; QuerySnapshot is read-only.
type Scene struct {
	fs afero.Fs

	snap       scene.Snapshot
	renderPath string

	cameraAttached bool
	sunHidden      bool
}

// New creates an empty scene. The filesystem is used for render-save
// detection only.
func New(afs afero.Fs) *Scene {
	return &Scene{
		fs: afs,
		snap: scene.Snapshot{
			Mode: scene.ModeObject,
			View: scene.ViewState{Present: true, Distance: 10},
		},
	}
}

// QuerySnapshot returns the current environment view. The render-saved
// flag is recomputed from the filesystem on every query, mirroring the
// live environment's file-existence check.
func (s *Scene) QuerySnapshot(chapter, stage int) (scene.Snapshot, error) {
	snap := s.snap
	snap.RenderSaved = s.renderSaved()
	if snap.Mesh != nil {
		mesh := *snap.Mesh
		snap.Mesh = &mesh
	}
	if snap.Material != nil {
		mat := *snap.Material
		snap.Material = &mat
	}
	if snap.Active != nil {
		obj := *snap.Active
		snap.Active = &obj
	}
	return snap, nil
}

// RunSetupCommands seeds the environment for a chapter and captures
// the baselines its predicates compare against.
func (s *Scene) RunSetupCommands(chapter int) error {
	switch chapter {
	case 1:
		s.spawnCube()
		s.snap.Mode = scene.ModeObject
		s.snap.Mesh = nil
		s.snap.Baseline.Position = s.snap.Active.Location
		s.snap.Baseline.RotationDeg = s.snap.Active.RotationDeg
		s.snap.Baseline.Scale = s.snap.Active.Scale
	case 2:
		s.snap.Baseline.ViewLocation = s.snap.View.Location
		s.snap.Baseline.ViewDistance = s.snap.View.Distance
	case 3:
		if s.snap.Active == nil || s.snap.Active.Name != "Cube" {
			s.spawnCube()
		}
		s.snap.Mode = scene.ModeEditMesh
		s.snap.Mesh = &scene.MeshState{
			SelectMode:  [3]bool{true, false, false},
			VertexCount: cubeVertexCount,
			EdgeCount:   cubeEdgeCount,
			FaceCount:   cubeFaceCount,
		}
		s.snap.Baseline.VertexCount = cubeVertexCount
		s.snap.Baseline.EdgeCount = cubeEdgeCount
		s.snap.Baseline.FaceCount = cubeFaceCount
	case 4:
		s.snap.Active = &scene.ObjectState{
			Name:  "Sphere",
			Type:  "MESH",
			Scale: scene.Vec3{1, 1, 1},
		}
		s.snap.Mode = scene.ModeSculpt
		s.snap.Mesh = nil
		s.snap.Sculpt = scene.SculptState{Brush: "Draw"}
	case 5:
		if s.snap.Active == nil || s.snap.Active.Type != "MESH" {
			s.spawnCube()
		}
		s.snap.Mode = scene.ModeObject
		s.snap.Mesh = nil
		s.snap.Material = nil
	case 6:
		s.renderPath = ""
		s.cameraAttached = true
		s.sunHidden = false
	default:
		return fmt.Errorf("replay: no setup defined for chapter %d", chapter)
	}
	return nil
}

// RunSessionEndCommands detaches the camera and hides the sun without
// deleting either; calling it repeatedly is harmless.
func (s *Scene) RunSessionEndCommands() error {
	s.cameraAttached = false
	s.sunHidden = true
	return nil
}

// CameraAttached reports whether a scene camera is active.
func (s *Scene) CameraAttached() bool { return s.cameraAttached }

// SunHidden reports whether the sun light is hidden.
func (s *Scene) SunHidden() bool { return s.sunHidden }

// SaveRender writes a small render artifact under dir and records it
// as the saved-render candidate, standing in for the assisted
// render-and-save command.
func (s *Scene) SaveRender(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("replay: create render dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, []byte("render\n"), 0o644); err != nil {
		return "", fmt.Errorf("replay: save render: %w", err)
	}
	s.renderPath = path
	return path, nil
}

func (s *Scene) renderSaved() bool {
	if s.renderPath == "" {
		return false
	}
	info, err := s.fs.Stat(s.renderPath)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func (s *Scene) spawnCube() {
	s.snap.Active = &scene.ObjectState{
		Name:  "Cube",
		Type:  "MESH",
		Scale: scene.Vec3{1, 1, 1},
	}
}
