package arc56

import "sort"

// Namespace is where a storage entry lives on the ledger
type Namespace string

const (
	Global Namespace = "global"
	Local  Namespace = "local"
	Box    Namespace = "box"
)

// Namespaces lists the storage namespaces in lookup precedence order
var Namespaces = []Namespace{Global, Local, Box}

// StorageKey is a single named storage slot
type StorageKey struct {
	Name      string `json:"-"`
	Desc      string `json:"desc,omitempty"`
	KeyType   string `json:"keyType"`
	ValueType string `json:"valueType"`
	Key       []byte `json:"key"`
}

// StorageMap is a keyed family of storage slots sharing a prefix
type StorageMap struct {
	Name      string `json:"-"`
	Desc      string `json:"desc,omitempty"`
	KeyType   string `json:"keyType"`
	ValueType string `json:"valueType"`
	Prefix    string `json:"prefix,omitempty"`
}

// PrefixBytes returns the utf-8 bytes of the map prefix
func (m *StorageMap) PrefixBytes() []byte {
	return []byte(m.Prefix)
}

// Schema counts the storage slots reserved at creation
type Schema struct {
	Global StateCounts `json:"global"`
	Local  StateCounts `json:"local"`
}

// StateCounts is a pair of slot counts
type StateCounts struct {
	Ints  uint64 `json:"ints"`
	Bytes uint64 `json:"bytes"`
}

// StorageKeys groups storage keys by namespace
type StorageKeys struct {
	Global map[string]*StorageKey `json:"global"`
	Local  map[string]*StorageKey `json:"local"`
	Box    map[string]*StorageKey `json:"box"`
}

// StorageMaps groups storage maps by namespace
type StorageMaps struct {
	Global map[string]*StorageMap `json:"global"`
	Local  map[string]*StorageMap `json:"local"`
	Box    map[string]*StorageMap `json:"box"`
}

// State describes the application's declared storage
type State struct {
	Schema Schema      `json:"schema"`
	Keys   StorageKeys `json:"keys"`
	Maps   StorageMaps `json:"maps"`
}

func (k *StorageKeys) in(ns Namespace) map[string]*StorageKey {
	switch ns {
	case Global:
		return k.Global
	case Local:
		return k.Local
	case Box:
		return k.Box
	}
	return nil
}

func (m *StorageMaps) in(ns Namespace) map[string]*StorageMap {
	switch ns {
	case Global:
		return m.Global
	case Local:
		return m.Local
	case Box:
		return m.Box
	}
	return nil
}

// Key finds a storage key by name, checking global, local then box
func (s *State) Key(name string) (Namespace, *StorageKey, bool) {
	for _, ns := range Namespaces {
		if k, ok := s.Keys.in(ns)[name]; ok {
			return ns, k, true
		}
	}
	return "", nil, false
}

// Map finds a storage map by name, checking global, local then box
func (s *State) Map(name string) (Namespace, *StorageMap, bool) {
	for _, ns := range Namespaces {
		if m, ok := s.Maps.in(ns)[name]; ok {
			return ns, m, true
		}
	}
	return "", nil, false
}

// KeysIn returns the storage keys of a namespace sorted by name
func (s *State) KeysIn(ns Namespace) []*StorageKey {
	keys := s.Keys.in(ns)
	out := make([]*StorageKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MapsIn returns the storage maps of a namespace sorted by name
func (s *State) MapsIn(ns Namespace) []*StorageMap {
	maps := s.Maps.in(ns)
	out := make([]*StorageMap, 0, len(maps))
	for _, m := range maps {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Collisions returns storage names declared in more than one namespace
func (s *State) Collisions() []string {
	keySeen := make(map[string]int)
	mapSeen := make(map[string]int)
	for _, ns := range Namespaces {
		for name := range s.Keys.in(ns) {
			keySeen[name]++
		}
		for name := range s.Maps.in(ns) {
			mapSeen[name]++
		}
	}

	var out []string
	for name, n := range keySeen {
		if n > 1 {
			out = append(out, name)
		}
	}
	for name, n := range mapSeen {
		if n > 1 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *State) fillNames() {
	for _, ns := range Namespaces {
		for name, k := range s.Keys.in(ns) {
			k.Name = name
		}
		for name, m := range s.Maps.in(ns) {
			m.Name = name
		}
	}
}
