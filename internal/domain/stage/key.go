// Package stage holds the curriculum domain model: stage identity,
// validation outcomes, hint escalation, and the bounded run history.
package stage

import "fmt"

// FirstChapter and LastChapter bound the curriculum.
const (
	FirstChapter = 1
	LastChapter  = 6
)

// StageCount maps a chapter to the number of stages it contains.
var StageCount = map[int]int{
	1: 4, // basic object operations
	2: 4, // viewport navigation
	3: 6, // mesh editing
	4: 4, // sculpting
	5: 5, // material nodes
	6: 1, // final render
}

// Key identifies a curriculum unit. Immutable once created.
type Key struct {
	Chapter int `json:"chapter" yaml:"chapter"`
	Stage   int `json:"stage" yaml:"stage"`
}

// NewKey returns the key for (chapter, stage). Values below 1 are clamped.
func NewKey(chapter, stage int) Key {
	if chapter < 1 {
		chapter = 1
	}
	if stage < 1 {
		stage = 1
	}
	return Key{Chapter: chapter, Stage: stage}
}

func (k Key) String() string {
	return fmt.Sprintf("ch%d/st%d", k.Chapter, k.Stage)
}

// Valid reports whether the key maps to a defined curriculum unit.
func (k Key) Valid() bool {
	max, ok := StageCount[k.Chapter]
	return ok && k.Stage >= 1 && k.Stage <= max
}

// IsLast reports whether the key is the final stage of the final chapter.
func (k Key) IsLast() bool {
	return k.Chapter == LastChapter && k.Stage >= StageCount[LastChapter]
}

// Next returns the key that follows k: the next stage within the
// chapter, or stage 1 of the next chapter. The second return value is
// false when k is already the last stage of the last chapter.
func (k Key) Next() (Key, bool) {
	max, ok := StageCount[k.Chapter]
	if !ok {
		max = 1
	}
	if k.Stage < max {
		return Key{Chapter: k.Chapter, Stage: k.Stage + 1}, true
	}
	if k.Chapter < LastChapter {
		return Key{Chapter: k.Chapter + 1, Stage: 1}, true
	}
	return k, false
}
