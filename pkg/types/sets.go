package types

// DownloadSet is the ordered, filename-keyed plan of artifacts still to fetch.
// It is owned by a single sync run and mutated only during the sequential
// reconciliation phase.
type DownloadSet struct {
	items []Downloadable
	index map[string]int
}

// NewDownloadSet builds a set from items. Later items with an already-present
// filename are ignored; callers filter duplicates beforehand.
func NewDownloadSet(items []Downloadable) *DownloadSet {
	s := &DownloadSet{index: make(map[string]int, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add appends item unless its filename is already planned
func (s *DownloadSet) Add(item Downloadable) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[item.Filename]; ok {
		return false
	}
	s.index[item.Filename] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Contains reports whether filename is planned
func (s *DownloadSet) Contains(filename string) bool {
	_, ok := s.index[filename]
	return ok
}

// Remove drops filename from the plan, reporting whether it was present
func (s *DownloadSet) Remove(filename string) bool {
	i, ok := s.index[filename]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, filename)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Filename] = j
	}
	return true
}

// Len returns the number of planned items
func (s *DownloadSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the planned items in order
func (s *DownloadSet) Items() []Downloadable {
	out := make([]Downloadable, len(s.items))
	copy(out, s.items)
	return out
}

// InstallSet is the ordered, name-keyed plan of override entries still to install.
type InstallSet struct {
	items []OverrideEntry
	index map[string]int
}

// NewInstallSet builds a set from entries; a later entry replaces an earlier one of the same name
func NewInstallSet(entries []OverrideEntry) *InstallSet {
	s := &InstallSet{index: make(map[string]int, len(entries))}
	for _, entry := range entries {
		s.Put(entry)
	}
	return s
}

// Put adds entry, replacing any entry with the same name in place
func (s *InstallSet) Put(entry OverrideEntry) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[entry.Name]; ok {
		s.items[i] = entry
		return
	}
	s.index[entry.Name] = len(s.items)
	s.items = append(s.items, entry)
}

// Contains reports whether name is planned
func (s *InstallSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Remove drops name from the plan, reporting whether it was present
func (s *InstallSet) Remove(name string) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Name] = j
	}
	return true
}

// Len returns the number of planned entries
func (s *InstallSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the planned entries in order
func (s *InstallSet) Items() []OverrideEntry {
	out := make([]OverrideEntry, len(s.items))
	copy(out, s.items)
	return out
}
