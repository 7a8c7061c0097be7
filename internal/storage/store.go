// Package storage persists the cross-run seen-title memory. The Store
// interface is deliberately tiny — load everything, overwrite everything —
// so any key-value blob backend satisfies it.
package storage

// MaxKeys caps the memory at roughly one week of pushes (5/day). Save
// implementations keep the most recent MaxKeys entries and drop the rest.
const MaxKeys = 35

// Store remembers which title keys were already pushed.
type Store interface {
	// Load returns previously pushed title keys ordered oldest to newest.
	// A missing or empty backend yields an empty slice, not an error.
	Load() ([]string, error)

	// Save overwrites the memory with keys (oldest first), capped to the
	// most recent MaxKeys.
	Save(keys []string) error
}

// CapKeys trims keys to the most recent MaxKeys entries.
func CapKeys(keys []string) []string {
	if len(keys) <= MaxKeys {
		return keys
	}
	return keys[len(keys)-MaxKeys:]
}

// ToSet builds the membership view the deduplicator consumes.
func ToSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
