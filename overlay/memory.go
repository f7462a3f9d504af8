package overlay

import (
	"slices"
	"sync"
)

// MemorySurface is a Surface that keeps the last applied markers, for headless
// use and tests.
type MemorySurface struct {
	mu      sync.Mutex
	markers []Marker
	applies int
}

// SetMarkers implements Surface.
func (s *MemorySurface) SetMarkers(markers []Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = slices.Clone(markers)
	s.applies++
}

// Markers returns the markers currently shown.
func (s *MemorySurface) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.markers)
}

// Applies returns how many times the surface has been updated.
func (s *MemorySurface) Applies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applies
}
