// Package todo holds the todo record model, its SQL store, and the HTTP handlers.
package todo

// Draft is a todo that has not been stored yet. It has no ID.
type Draft struct {
	Task      string
	Completed bool
}

// Persisted attaches the storage-assigned id
func (d Draft) Persisted(id int64) Todo {
	return Todo{ID: id, Task: d.Task, Completed: d.Completed}
}

// Todo is a stored todo
type Todo struct {
	ID        int64  `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}
