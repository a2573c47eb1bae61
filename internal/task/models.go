package task

import (
	"fmt"
	"time"
)

type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

func Summary(tasks []Task) string {
	if len(tasks) == 0 {
		return "No tasks yet. Add one to get started!"
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d of %d tasks completed", done, len(tasks))
}
