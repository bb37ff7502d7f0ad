package commands

import (
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/taskjson"
)

// loadTasks reads the local task file, printing an error on failure.
func loadTasks(cfg *config.Config, errOut io.Writer) (taskjson.TaskList, int) {
	list, err := taskjson.Load(cfg.TasksPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.DataError
	}
	return list, exitcode.Success
}

// saveTasks writes the local task file, printing an error on failure.
func saveTasks(cfg *config.Config, list taskjson.TaskList, errOut io.Writer) int {
	if err := taskjson.Save(cfg.TasksPath(), list); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
