package class

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/teranos/dynasty/errors"
)

// Default is the registry generated code registers into.
var Default = NewRegistry()

// Registry indexes class records by type identity, id and name. Names are
// unique per package: two packages may both declare an Animal class.
type Registry struct {
	mu     sync.RWMutex
	byType map[TypeID]*Info
	byID   map[uuid.UUID]*Info
	byName map[string][]*Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.byType = make(map[TypeID]*Info)
	r.byID = make(map[uuid.UUID]*Info)
	r.byName = make(map[string][]*Info)
}

// Register adds info. Registering the same record again is a no-op.
// A different record for an already registered type or id, or for a name
// already used in the same package, fails with ErrConflict.
func (r *Registry) Register(info *Info) error {
	if info == nil || info.Type.IsZero() || info.ID == uuid.Nil || info.Name == "" {
		return errors.Wrap(errors.ErrInvalidInfo, "record needs a type, an id and a name")
	}
	if info.Parent == info.Type {
		return errors.Wrapf(errors.ErrInvalidInfo, "%s declares itself as parent", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byType[info.Type]; ok {
		if old == info {
			return nil
		}
		return errors.Wrapf(errors.ErrConflict, "type %s is already registered as %s", info.Type, old.Name)
	}
	for _, old := range r.byName[info.Name] {
		if old.Type.PkgPath() == info.Type.PkgPath() {
			return errors.Wrapf(errors.ErrConflict, "name %s is already used by %s", info.Name, old.Type)
		}
	}
	if old, ok := r.byID[info.ID]; ok {
		return errors.Wrapf(errors.ErrConflict, "id %s is already used by %s", info.ID, old.Name)
	}

	r.byType[info.Type] = info
	r.byID[info.ID] = info
	r.byName[info.Name] = append(r.byName[info.Name], info)
	return nil
}

// Lookup returns the record registered for id.
func (r *Registry) Lookup(id TypeID) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[id]
	return info, ok
}

// LookupName returns the record registered under name. A plain name
// ("Dog") only matches when exactly one package registered it; qualify it
// with the import path ("example.com/zoo.Dog") otherwise.
func (r *Registry) LookupName(name string) (*Info, bool) {
	pkgPath, qualified := "", false
	if i := strings.LastIndex(name, "."); i >= 0 {
		pkgPath, name, qualified = name[:i], name[i+1:], true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := r.byName[name]
	if !qualified {
		if len(infos) != 1 {
			return nil, false
		}
		return infos[0], true
	}
	for _, info := range infos {
		if info.Type.PkgPath() == pkgPath {
			return info, true
		}
	}
	return nil, false
}

// LookupID returns the record with the given class id.
func (r *Registry) LookupID(id uuid.UUID) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[id]
	return info, ok
}

// Parent returns the record of info's parent. It fails with ErrNotFound
// when info is a root class or its parent was never registered.
func (r *Registry) Parent(info *Info) (*Info, error) {
	if !info.HasParent() {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s has no parent", info)
	}
	parent, ok := r.Lookup(info.Parent)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "parent %s of %s is not a registered class", info.Parent, info.Name)
	}
	return parent, nil
}

// Ancestors returns info's registered ancestors, nearest first. The walk
// stops at the first parent that is not registered.
func (r *Registry) Ancestors(info *Info) []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Info
	seen := map[TypeID]bool{}
	for cur := info; cur.HasParent() && !seen[cur.Type]; {
		seen[cur.Type] = true
		parent, ok := r.byType[cur.Parent]
		if !ok {
			break
		}
		out = append(out, parent)
		cur = parent
	}
	return out
}

// Children returns the records whose declared parent is info, sorted by name.
func (r *Registry) Children(info *Info) []*Info {
	if info == nil {
		return nil
	}
	r.mu.RLock()
	var out []*Info
	for _, candidate := range r.byType {
		if candidate.Parent == info.Type {
			out = append(out, candidate)
		}
	}
	r.mu.RUnlock()

	sortByName(out)
	return out
}

// IsSubclass reports whether child transitively declares ancestor as a
// parent. A type is not its own subclass.
func (r *Registry) IsSubclass(child, ancestor TypeID) bool {
	if child.IsZero() || ancestor.IsZero() {
		return false
	}
	info, ok := r.Lookup(child)
	if !ok {
		return false
	}
	if info.Parent == ancestor {
		return true
	}
	for _, a := range r.Ancestors(info) {
		if a.Parent == ancestor {
			return true
		}
	}
	return false
}

// Entries returns a snapshot of all records sorted by name.
func (r *Registry) Entries() []*Info {
	r.mu.RLock()
	out := make([]*Info, 0, len(r.byType))
	for _, info := range r.byType {
		out = append(out, info)
	}
	r.mu.RUnlock()

	sortByName(out)
	return out
}

// Count returns the number of registered classes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}

// Reset removes all records. Handles already returned by Define/Derive keep
// their records.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// sortByName orders by name, then by package path; (name, package) is unique.
func sortByName(infos []*Info) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Type.PkgPath() < infos[j].Type.PkgPath()
	})
}
