package taskjson

// DiffStat summarizes how a merge changed one side's list.
type DiffStat struct {
	Added   int `json:"added" yaml:"added"`
	Updated int `json:"updated" yaml:"updated"`
	Removed int `json:"removed" yaml:"removed"`
}

// Changed reports whether any task was added, updated or removed.
func (d DiffStat) Changed() bool {
	return d.Added+d.Updated+d.Removed > 0
}

// Engine is the merge engine consumed by the sync coordinator.
type Engine struct{}

// Merge implements syncer.Merger.
func (Engine) Merge(local, remote TaskList) TaskList { return Merge(local, remote) }

// Compare implements syncer.Merger.
func (Engine) Compare(before, after TaskList) DiffStat { return Compare(before, after) }

// Merge reconciles two lists by task id.
// When both sides carry a task, the one modified last wins; ties keep the local copy.
// The result keeps local order, followed by remote-only tasks in remote order.
func Merge(local, remote TaskList) TaskList {
	remoteByID := make(map[string]Task, len(remote))
	for _, t := range remote {
		remoteByID[t.ID] = t
	}

	merged := make(TaskList, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))
	for _, l := range local {
		seen[l.ID] = struct{}{}
		if r, ok := remoteByID[l.ID]; ok && newer(r, l) {
			merged = append(merged, r)
			continue
		}
		merged = append(merged, l)
	}
	for _, r := range remote {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	return merged.Clone()
}

// newer reports whether a was modified strictly after b.
func newer(a, b Task) bool {
	at, errA := a.ModifiedAt()
	bt, errB := b.ModifiedAt()
	if errA != nil || errB != nil {
		return a.Modified > b.Modified
	}
	return at.After(bt)
}

// Compare describes the changes that turn before into after.
func Compare(before, after TaskList) DiffStat {
	beforeByID := make(map[string]Task, len(before))
	for _, t := range before {
		beforeByID[t.ID] = t
	}

	var stat DiffStat
	inAfter := make(map[string]struct{}, len(after))
	for _, a := range after {
		inAfter[a.ID] = struct{}{}
		b, ok := beforeByID[a.ID]
		switch {
		case !ok:
			if a.Status != StatusRemoved {
				stat.Added++
			}
		case a.Status == StatusRemoved && b.Status != StatusRemoved:
			stat.Removed++
		case !a.Equal(b):
			stat.Updated++
		}
	}
	for _, b := range before {
		if _, ok := inAfter[b.ID]; !ok && b.Status != StatusRemoved {
			stat.Removed++
		}
	}
	return stat
}
