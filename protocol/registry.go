// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named protocols and tracks which one is active.
//
// Protocols are stored by value; Active returns a snapshot, so a caller
// can keep using the protocol it read even if the active selection
// changes underneath it.
type Registry struct {
	protocols map[string]Protocol
	active    string

	mtx *sync.Mutex
}

// NewRegistry returns a registry with the built-in protocols registered
// and the standard protocol active.
func NewRegistry() *Registry {
	r := &Registry{
		protocols: make(map[string]Protocol),
		mtx:       &sync.Mutex{},
	}
	r.Register(Standard())
	r.Register(Ultrasonic())
	r.active = NameStandard
	return r
}

// Register adds or replaces a protocol under its own name.
func (r *Registry) Register(p Protocol) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.protocols[p.Name] = p
}

// Get returns the protocol registered under name.
func (r *Registry) Get(name string) (Protocol, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	p, ok := r.protocols[name]
	return p, ok
}

// SetActive selects the protocol with the given name. An unknown name
// returns ErrUnknownProtocol and leaves the current selection untouched.
func (r *Registry) SetActive(name string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.protocols[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	r.active = name
	return nil
}

// Active returns a snapshot of the currently selected protocol.
func (r *Registry) Active() Protocol {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.protocols[r.active]
}

// Names returns the registered protocol names in sorted order.
func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, 0, len(r.protocols))
	for name := range r.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
