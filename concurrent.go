package amf

import (
	"sync"
	"sync/atomic"
)

// cowMap is a copy-on-write map.
// Reads are lock-free loads of an immutable snapshot; writes copy the snapshot under a mutex.
// It suits maps that are read on every value and written once per type.
type cowMap[K comparable, V any] struct {
	snapshot atomic.Pointer[map[K]V]
	mutex    sync.Mutex
}

func (m *cowMap[K, V]) load(key K) (v V, ok bool) {
	if snap := m.snapshot.Load(); snap != nil {
		v, ok = (*snap)[key]
	}
	return
}

// loadOrStore stores v if key is absent, returning the stored value and whether it was already present.
func (m *cowMap[K, V]) loadOrStore(key K, v V) (V, bool) {
	if existing, ok := m.load(key); ok {
		return existing, true
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	old := m.snapshot.Load()
	if old != nil {
		if existing, ok := (*old)[key]; ok {
			return existing, true
		}
	}

	m.store(old, key, v)
	return v, false
}

// computeIfAbsent returns the value for key, calling build and storing its result if absent.
// build is called at most once per key, with the write lock held; it must not write to m.
func (m *cowMap[K, V]) computeIfAbsent(key K, build func() (V, error)) (V, error) {
	if existing, ok := m.load(key); ok {
		return existing, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	old := m.snapshot.Load()
	if old != nil {
		if existing, ok := (*old)[key]; ok {
			return existing, nil
		}
	}

	v, err := build()
	if err != nil {
		return v, err
	}

	m.store(old, key, v)
	return v, nil
}

// mutex must be held
func (m *cowMap[K, V]) store(old *map[K]V, key K, v V) {
	var next map[K]V
	if old == nil {
		next = make(map[K]V, 1)
	} else {
		next = make(map[K]V, len(*old)+1)
		for k, ov := range *old {
			next[k] = ov
		}
	}
	next[key] = v
	m.snapshot.Store(&next)
}

func (m *cowMap[K, V]) len() int {
	if snap := m.snapshot.Load(); snap != nil {
		return len(*snap)
	}
	return 0
}
