package commands

import (
	"testing"

	"tasksync/internal/taskjson"
)

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr string
	}{
		{args: []string{"5"}, want: 5},
		{args: []string{"12", "extra"}, want: 12},
		{args: []string{"007"}, want: 7},
		{args: nil, wantErr: "task reference required"},
		{args: []string{"a1"}, wantErr: "invalid task reference: a1"},
		{args: []string{"-1"}, wantErr: "invalid task reference: -1"},
		{args: []string{"１"}, wantErr: "invalid task reference: １"},
		{args: []string{""}, wantErr: "invalid task reference: "},
	}

	for _, tt := range tests {
		got, err := ParseTaskRef(tt.args)
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ParseTaskRef(%q): expected error %q, got %v", tt.args, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTaskRef(%q): unexpected error: %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTaskRef(%q) = %d, want %d", tt.args, got, tt.want)
		}
	}
}

func TestResolveTaskRef_SkipsClosedTasks(t *testing.T) {
	list := taskjson.TaskList{
		{ID: "a", Status: taskjson.StatusDone},
		{ID: "b", Status: taskjson.StatusTodo},
		{ID: "c", Status: taskjson.StatusRemoved},
		{ID: "d", Status: taskjson.StatusTodo},
	}

	tests := []struct {
		num     int
		wantID  string
		wantErr bool
	}{
		{num: 1, wantID: "b"},
		{num: 2, wantID: "d"},
		{num: 0, wantErr: true},
		{num: 3, wantErr: true},
	}
	for _, tt := range tests {
		idx, err := resolveTaskRef(list, tt.num)
		if tt.wantErr {
			if err == nil {
				t.Errorf("num %d: expected error", tt.num)
			}
			continue
		}
		if err != nil {
			t.Errorf("num %d: unexpected error: %v", tt.num, err)
			continue
		}
		if list[idx].ID != tt.wantID {
			t.Errorf("num %d: expected %s, got %s", tt.num, tt.wantID, list[idx].ID)
		}
	}
}
