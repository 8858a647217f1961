package replay

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Script step operations.
const (
	OpSetup      = "setup"
	OpValidate   = "validate"
	OpAdvance    = "advance"
	OpReset      = "reset"
	OpGoto       = "goto"
	OpTick       = "tick"
	OpPatch      = "patch"
	OpSaveRender = "save_render"
	OpStop       = "stop"
)

// Step is one scripted action. Op selects the action; the remaining
// fields parameterize it.
type Step struct {
	Op      string `yaml:"op"`
	Chapter int    `yaml:"chapter,omitempty"` // goto target
	Ms      int    `yaml:"ms,omitempty"`      // tick: virtual time to advance
	Patch   *Patch `yaml:"patch,omitempty"`   // patch / validate precondition
}

// Script is a deterministic session recording: a participant id and
// the ordered actions to replay against a fresh scene.
type Script struct {
	Participant string `yaml:"participant"`
	Steps       []Step `yaml:"steps"`
}

var validOps = map[string]bool{
	OpSetup:      true,
	OpValidate:   true,
	OpAdvance:    true,
	OpReset:      true,
	OpGoto:       true,
	OpTick:       true,
	OpPatch:      true,
	OpSaveRender: true,
	OpStop:       true,
}

// LoadScript reads and validates a yaml replay script.
func LoadScript(afs afero.Fs, path string) (*Script, error) {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return nil, fmt.Errorf("replay: read script %s: %w", path, err)
	}
	return ParseScript(data)
}

// ParseScript parses script bytes and rejects unknown operations up
// front so a typo fails before any events are logged.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("replay: parse script: %w", err)
	}
	for i, step := range script.Steps {
		if !validOps[step.Op] {
			return nil, fmt.Errorf("replay: step %d: unknown op %q", i+1, step.Op)
		}
		if step.Op == OpGoto && step.Chapter < 1 {
			return nil, fmt.Errorf("replay: step %d: goto needs a chapter", i+1)
		}
	}
	return &script, nil
}
