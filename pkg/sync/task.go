package sync

import (
	"strings"

	"github.com/sdejongh/copypix/pkg/models"
)

// copyTask is the unit of work handed to a worker: the candidates whose
// destination names fold to the same key. One worker handles all of them
// in order, so no two workers ever write the same destination path on
// case-insensitive filesystems.
type copyTask struct {
	key        string
	candidates []*models.CandidateFile
}

// groupTasks splits candidates into tasks, keeping the candidate order
// within and across tasks
func groupTasks(candidates []*models.CandidateFile) []*copyTask {
	byKey := make(map[string]*copyTask, len(candidates))
	tasks := make([]*copyTask, 0, len(candidates))

	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		task, ok := byKey[key]
		if !ok {
			task = &copyTask{key: key}
			byKey[key] = task
			tasks = append(tasks, task)
		}
		task.candidates = append(task.candidates, c)
	}

	return tasks
}
