package commands

import "testing"

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&SyncCmd{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&AddCmd{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if cmd, ok := r.Find("create"); !ok || cmd.Name() != "add" {
		t.Errorf("expected alias lookup to find add, got %v", cmd)
	}
	if _, ok := r.Find("missing"); ok {
		t.Error("unexpected command for unknown name")
	}

	all := r.All()
	if len(all) != 2 || all[0].Name() != "add" || all[1].Name() != "sync" {
		t.Errorf("expected commands sorted by name, got %v", all)
	}
}

func TestRegistry_Duplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&RmCmd{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Register(&RmCmd{}); err == nil || err.Error() != "command already registered: rm" {
		t.Errorf("expected duplicate name error, got %v", err)
	}

	// "delete" is rm's alias.
	if err := r.Register(&aliasCmd{SyncCmd{}, "delete"}); err == nil || err.Error() != "command alias already registered: delete" {
		t.Errorf("expected duplicate alias error, got %v", err)
	}
	if len(r.All()) != 1 {
		t.Errorf("failed registrations must not add commands, got %d", len(r.All()))
	}
}

type aliasCmd struct {
	SyncCmd
	alias string
}

func (c *aliasCmd) Name() string      { return "other" }
func (c *aliasCmd) Aliases() []string { return []string{c.alias} }
