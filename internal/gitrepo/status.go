// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitrepo

import (
	"fmt"
	"strings"
)

// StatusEntry is one path reported by `git status --porcelain=v1 -z`.
type StatusEntry struct {
	// Index and Worktree are the X and Y status codes.
	Index    byte
	Worktree byte
	Path     string

	// OrigPath is the source path of a rename or copy.
	OrigPath string
}

// Untracked reports whether the path is not tracked.
func (e StatusEntry) Untracked() bool { return e.Index == '?' && e.Worktree == '?' }

// Conflicted reports whether the path has unmerged changes.
func (e StatusEntry) Conflicted() bool {
	switch string([]byte{e.Index, e.Worktree}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return false
}

// Status is the parsed working tree status.
type Status struct {
	Result
	Entries []StatusEntry
}

// Clean reports whether the working tree has no changes, untracked files
// included.
func (s Status) Clean() bool { return len(s.Entries) == 0 }

// Conflicts returns the unmerged entries.
func (s Status) Conflicts() []StatusEntry {
	var out []StatusEntry
	for _, e := range s.Entries {
		if e.Conflicted() {
			out = append(out, e)
		}
	}
	return out
}

// parseStatus parses NUL-separated porcelain v1 records. Renames and copies
// carry their source path in the following record.
func parseStatus(out string) ([]StatusEntry, error) {
	records := strings.Split(out, "\x00")
	var entries []StatusEntry
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec == "" {
			continue
		}
		if len(rec) < 4 || rec[2] != ' ' {
			return entries, fmt.Errorf("malformed status record %q", rec)
		}
		e := StatusEntry{Index: rec[0], Worktree: rec[1], Path: rec[3:]}
		if e.Index == 'R' || e.Index == 'C' || e.Worktree == 'R' || e.Worktree == 'C' {
			if i+1 >= len(records) {
				return entries, fmt.Errorf("rename of %q lacks its source path", e.Path)
			}
			i++
			e.OrigPath = records[i]
		}
		entries = append(entries, e)
	}
	return entries, nil
}
