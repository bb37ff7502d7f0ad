package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"tasksync/internal/taskjson"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a 1-based task number from args.
// Only the first argument is considered; it must be all digits.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// todoTasks returns the positions of todo tasks in list order.
// This is the numbering shown by list.
func todoTasks(list taskjson.TaskList) []int {
	var idx []int
	for i, t := range list {
		if t.Status == taskjson.StatusTodo {
			idx = append(idx, i)
		}
	}
	return idx
}

// resolveTaskRef maps a task number to a position in list.
func resolveTaskRef(list taskjson.TaskList, num int) (int, error) {
	todo := todoTasks(list)
	if num < 1 || num > len(todo) {
		return 0, fmt.Errorf("task number out of range: %d", num)
	}
	return todo[num-1], nil
}
