package task

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const slashSub = "\u2215"

// Filter returns the tasks in category c, preserving order. CategoryAll
// returns every task.
func Filter(tasks []Task, c Category) []Task {
	if c == CategoryAll {
		return tasks
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// EmptyMessage is shown when the view for category c has no tasks.
func EmptyMessage(c Category) string {
	if c == CategoryAll {
		return "No tasks found. Add a task to get started!"
	}
	return fmt.Sprintf("No %s tasks were found. Add a task to get started!", c)
}

// Counts returns the number of tasks per category. CategoryAll holds the total.
func Counts(tasks []Task) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, t := range tasks {
		counts[t.Category]++
	}
	counts[CategoryAll] = len(tasks)
	return counts
}

// Match returns the tasks whose text matches the glob pattern,
// case-insensitively. An empty pattern matches everything. A pattern
// without glob metacharacters matches as a substring.
func Match(tasks []Task, pattern string) ([]Task, error) {
	if pattern == "" {
		return tasks, nil
	}

	// doublestar treats '/' as a separator; task text has no path structure.
	pattern = strings.ReplaceAll(strings.ToLower(pattern), "/", slashSub)
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, &ValidationError{Field: "match", Message: "invalid pattern " + pattern}
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		ok, err := doublestar.Match(pattern, strings.ReplaceAll(strings.ToLower(t.Text), "/", slashSub))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
