package taskjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a task list from a JSON file.
// A missing file yields an empty list.
func Load(path string) (TaskList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return TaskList{}, nil
		}
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var list TaskList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}
	if list == nil {
		list = TaskList{}
	}
	return list, nil
}

// Save writes a task list to a JSON file atomically.
func Save(path string, list TaskList) error {
	if list == nil {
		list = TaskList{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create task file directory: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task list: %w", err)
	}
	data = append(data, '\n')

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename task file: %w", err)
	}
	return nil
}
