package class

import (
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dynasty/errors"
)

type vehicle struct{}
type car struct{ base vehicle }
type coupe struct{ base car }
type boat struct{ base vehicle }
type raft struct{}

func testRegistry(t *testing.T) (*Registry, map[string]*Info) {
	t.Helper()
	r := NewRegistry()
	infos := map[string]*Info{
		"vehicle": newInfo("vehicle", TypeOf[vehicle](), TypeID{}),
		"car":     newInfo("car", TypeOf[car](), TypeOf[vehicle]()),
		"coupe":   newInfo("coupe", TypeOf[coupe](), TypeOf[car]()),
		"boat":    newInfo("boat", TypeOf[boat](), TypeOf[vehicle]()),
	}
	for _, info := range infos {
		require.NoError(t, r.Register(info))
	}
	return r, infos
}

func TestRegisterIsIdempotent(t *testing.T) {
	r, infos := testRegistry(t)
	require.NoError(t, r.Register(infos["car"]))
	assert.Equal(t, 4, r.Count())
}

func TestRegisterConflicts(t *testing.T) {
	r, infos := testRegistry(t)

	tests := []struct {
		name string
		info *Info
	}{
		{"same type, new record", newInfo("car", TypeOf[car](), TypeOf[vehicle]())},
		{"same name, other type", newInfo("car", TypeOf[raft](), TypeID{})},
		{"same id, other type", &Info{ID: infos["boat"].ID, Name: "raft", Type: TypeOf[string]()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.info)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConflict))
		})
	}
	assert.Equal(t, 4, r.Count())
}

func TestRegisterRejectsInvalidRecords(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name string
		info *Info
	}{
		{"nil", nil},
		{"zero type", &Info{ID: uuid.New(), Name: "x"}},
		{"nil id", &Info{Name: "x", Type: TypeOf[int]()}},
		{"empty name", &Info{ID: uuid.New(), Type: TypeOf[int]()}},
		{"self parent", &Info{ID: uuid.New(), Name: "x", Type: TypeOf[int](), Parent: TypeOf[int]()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.info)
			assert.True(t, errors.Is(err, errors.ErrInvalidInfo), "got %v", err)
		})
	}
	assert.Zero(t, r.Count())
}

func TestLookups(t *testing.T) {
	r, infos := testRegistry(t)

	got, ok := r.Lookup(TypeOf[coupe]())
	require.True(t, ok)
	assert.Same(t, infos["coupe"], got)

	got, ok = r.LookupName("boat")
	require.True(t, ok)
	assert.Same(t, infos["boat"], got)

	got, ok = r.LookupID(infos["car"].ID)
	require.True(t, ok)
	assert.Same(t, infos["car"], got)

	_, ok = r.Lookup(TypeOf[string]())
	assert.False(t, ok)
	_, ok = r.Lookup(TypeID{})
	assert.False(t, ok)
}

func TestNamesAreScopedByPackage(t *testing.T) {
	r, infos := testRegistry(t)

	// int lives in no package, so its "boat" does not clash with ours.
	other := newInfo("boat", TypeOf[int](), TypeID{})
	require.NoError(t, r.Register(other))

	_, ok := r.LookupName("boat")
	assert.False(t, ok, "plain name is ambiguous")

	got, ok := r.LookupName("github.com/teranos/dynasty/class.boat")
	require.True(t, ok)
	assert.Same(t, infos["boat"], got)

	got, ok = r.LookupName(".boat")
	require.True(t, ok)
	assert.Same(t, other, got)

	_, ok = r.LookupName("example.com/zoo.boat")
	assert.False(t, ok)
}

func TestSameNameOrderIsStable(t *testing.T) {
	r, infos := testRegistry(t)

	other := newInfo("boat", TypeOf[int](), infos["vehicle"].Type)
	require.NoError(t, r.Register(other))

	for i := 0; i < 20; i++ {
		children := r.Children(infos["vehicle"])
		require.Len(t, children, 3)
		assert.Same(t, other, children[0], "empty package path sorts first")
		assert.Same(t, infos["boat"], children[1])
		assert.Same(t, infos["car"], children[2])

		entries := r.Entries()
		assert.Same(t, other, entries[0])
		assert.Same(t, infos["boat"], entries[1])
	}
}

func TestParent(t *testing.T) {
	r, infos := testRegistry(t)

	parent, err := r.Parent(infos["coupe"])
	require.NoError(t, err)
	assert.Same(t, infos["car"], parent)

	_, err = r.Parent(infos["vehicle"])
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	orphan := newInfo("orphan", TypeOf[int](), TypeOf[string]())
	_, err = r.Parent(orphan)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAncestors(t *testing.T) {
	r, infos := testRegistry(t)

	ancestors := r.Ancestors(infos["coupe"])
	require.Len(t, ancestors, 2)
	assert.Same(t, infos["car"], ancestors[0])
	assert.Same(t, infos["vehicle"], ancestors[1])

	assert.Empty(t, r.Ancestors(infos["vehicle"]))
	assert.Empty(t, r.Ancestors(nil))
}

func TestChildren(t *testing.T) {
	r, infos := testRegistry(t)

	children := r.Children(infos["vehicle"])
	require.Len(t, children, 2)
	assert.Equal(t, "boat", children[0].Name)
	assert.Equal(t, "car", children[1].Name)

	assert.Empty(t, r.Children(infos["coupe"]))
	assert.Empty(t, r.Children(nil))
}

func TestIsSubclass(t *testing.T) {
	r, _ := testRegistry(t)

	tests := []struct {
		child, ancestor TypeID
		want            bool
	}{
		{TypeOf[coupe](), TypeOf[car](), true},
		{TypeOf[coupe](), TypeOf[vehicle](), true},
		{TypeOf[boat](), TypeOf[vehicle](), true},
		{TypeOf[boat](), TypeOf[car](), false},
		{TypeOf[vehicle](), TypeOf[vehicle](), false},
		{TypeOf[car](), TypeOf[coupe](), false},
		{TypeOf[string](), TypeOf[vehicle](), false},
		{TypeID{}, TypeOf[vehicle](), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.IsSubclass(tt.child, tt.ancestor), "%s < %s", tt.child, tt.ancestor)
	}
}

func TestIsSubclass_UnregisteredRoot(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newInfo("car", TypeOf[car](), TypeOf[vehicle]())))
	require.NoError(t, r.Register(newInfo("coupe", TypeOf[coupe](), TypeOf[car]())))

	assert.True(t, r.IsSubclass(TypeOf[coupe](), TypeOf[vehicle]()))
}

func TestEntriesAndReset(t *testing.T) {
	r, _ := testRegistry(t)

	var names []string
	for _, info := range r.Entries() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"boat", "car", "coupe", "vehicle"}, names)

	r.Reset()
	assert.Zero(t, r.Count())
	assert.Empty(t, r.Entries())
}

func TestTypeID(t *testing.T) {
	assert.True(t, TypeID{}.IsZero())
	assert.Equal(t, "<none>", TypeID{}.String())
	assert.Nil(t, TypeID{}.Type())
	assert.True(t, TypeOfValue(nil).IsZero())

	assert.Equal(t, TypeOf[car](), TypeOfValue(car{}))
	assert.Equal(t, TypeOf[*car](), TypeOfValue(&car{}))
	assert.NotEqual(t, TypeOf[car](), TypeOf[*car]())
	assert.Equal(t, "class.car", TypeOf[car]().String())
}

func TestNewInfoAssignsFreshIDs(t *testing.T) {
	a := newInfo("a", TypeOf[int](), TypeID{})
	b := newInfo("a", TypeOf[int](), TypeID{})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, uuid.Version(4), a.ID.Version())
}

// TestConcurrentRegisterAndLookup verifies Register/Lookup/Entries/Count
// are race-free under concurrent use.
func TestConcurrentRegisterAndLookup(t *testing.T) {
	r, infos := testRegistry(t)
	workers := runtime.GOMAXPROCS(0) * 4

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if _, ok := r.Lookup(TypeOf[coupe]()); !ok {
					t.Errorf("lookup failed")
					return
				}
				_ = r.Register(infos["boat"])
				_ = r.Ancestors(infos["coupe"])
				_ = r.Children(infos["vehicle"])
				_ = r.Entries()
				_ = r.Count()
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 4, r.Count())
}
