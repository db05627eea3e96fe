package sync

import (
	"errors"
	"testing"

	"github.com/sdejongh/copypix/pkg/models"
)

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name       string
		extensions []string
		exclude    []string
		file       string
		want       bool
	}{
		{"jpg lowercase", nil, nil, "a.jpg", true},
		{"cr2 uppercase", nil, nil, "b.CR2", true},
		{"mixed case", nil, nil, "c.JpG", true},
		{"other extension", nil, nil, "c.png", false},
		{"double extension", nil, nil, "d.JPG.txt", false},
		{"suffix without dot", nil, nil, "notajpg", false},
		{"dotfile", nil, nil, ".jpg", false},
		{"no extension", nil, nil, "README", false},
		{"custom extension", []string{"NEF"}, nil, "e.nef", true},
		{"custom set excludes default", []string{".nef"}, nil, "e.jpg", false},
		{"excluded by pattern", nil, []string{"IMG_*"}, "IMG_0001.jpg", false},
		{"exclude brace pattern", nil, []string{"{tmp,thumb}_*"}, "thumb_1.jpg", false},
		{"exclude does not match", nil, []string{"IMG_*"}, "DSC_0001.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.extensions, tt.exclude)
			if got := f.Match(tt.file); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestValidatePatterns(t *testing.T) {
	if err := ValidatePatterns([]string{"*.tmp", "IMG_00??.jpg"}); err != nil {
		t.Errorf("ValidatePatterns() unexpected error: %v", err)
	}
	if err := ValidatePatterns([]string{"[unclosed"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("ValidatePatterns() error = %v, want ErrInvalidInput", err)
	}
}

func TestGroupTasks(t *testing.T) {
	candidates := []*models.CandidateFile{
		models.NewCandidateFile("A.jpg", "/s", "/d", 1),
		models.NewCandidateFile("a.jpg", "/s", "/d", 1),
		models.NewCandidateFile("b.jpg", "/s", "/d", 1),
	}

	tasks := groupTasks(candidates)

	if len(tasks) != 2 {
		t.Fatalf("groupTasks() = %d tasks, want 2", len(tasks))
	}
	if len(tasks[0].candidates) != 2 || tasks[0].candidates[0].Name != "A.jpg" {
		t.Errorf("first task should hold A.jpg then a.jpg")
	}
	if tasks[1].key != "b.jpg" {
		t.Errorf("second task key = %q, want b.jpg", tasks[1].key)
	}
}
