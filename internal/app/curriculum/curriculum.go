// Package curriculum carries the embedded chapter and stage metadata
// shown to learners: titles, stage names, descriptions, and key
// guides. Completion conditions live in the validator, not here.
package curriculum

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/daichi-lab/cgtutor/internal/domain/stage"
)

//go:embed curriculum.yaml
var curriculumYAML []byte

// StageInfo is the display metadata for one stage.
type StageInfo struct {
	Stage       int    `yaml:"stage"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Details     string `yaml:"details"`
}

// ChapterInfo is the display metadata for one chapter.
type ChapterInfo struct {
	Chapter int         `yaml:"chapter"`
	Title   string      `yaml:"title"`
	Stages  []StageInfo `yaml:"stages"`
}

type document struct {
	Chapters []ChapterInfo `yaml:"chapters"`
}

// Curriculum provides lookup over the embedded metadata.
type Curriculum struct {
	chapters map[int]ChapterInfo
}

// Load parses the embedded curriculum and cross-checks it against the
// domain stage count table so display metadata and advancement logic
// cannot drift apart.
func Load() (*Curriculum, error) {
	var doc document
	if err := yaml.Unmarshal(curriculumYAML, &doc); err != nil {
		return nil, fmt.Errorf("curriculum: parse embedded yaml: %w", err)
	}

	chapters := make(map[int]ChapterInfo, len(doc.Chapters))
	for _, ch := range doc.Chapters {
		want, ok := stage.StageCount[ch.Chapter]
		if !ok {
			return nil, fmt.Errorf("curriculum: chapter %d is not in the stage count table", ch.Chapter)
		}
		if len(ch.Stages) != want {
			return nil, fmt.Errorf("curriculum: chapter %d has %d stages, stage count table says %d",
				ch.Chapter, len(ch.Stages), want)
		}
		chapters[ch.Chapter] = ch
	}
	for chNum := range stage.StageCount {
		if _, ok := chapters[chNum]; !ok {
			return nil, fmt.Errorf("curriculum: chapter %d missing from embedded yaml", chNum)
		}
	}

	return &Curriculum{chapters: chapters}, nil
}

// Chapters returns the chapters in curriculum order.
func (c *Curriculum) Chapters() []ChapterInfo {
	out := make([]ChapterInfo, 0, len(c.chapters))
	for ch := stage.FirstChapter; ch <= stage.LastChapter; ch++ {
		if info, ok := c.chapters[ch]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Info returns the display metadata for key, or false when the key is
// outside the curriculum.
func (c *Curriculum) Info(key stage.Key) (ChapterInfo, StageInfo, bool) {
	ch, ok := c.chapters[key.Chapter]
	if !ok {
		return ChapterInfo{}, StageInfo{}, false
	}
	for _, st := range ch.Stages {
		if st.Stage == key.Stage {
			return ch, st, true
		}
	}
	return ch, StageInfo{}, false
}
