package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	stunned  Tag = "state.stunned"
	silenced Tag = "state.silenced"
	burning  Tag = "status.burning"
)

func TestSet_AddDuplicateCollapses(t *testing.T) {
	s := NewSet(stunned, stunned)
	s.Add(stunned)

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(stunned))
}

func TestSet_AddRemoveMany(t *testing.T) {
	s := NewSet()
	s.AddAll([]Tag{stunned, silenced, burning})
	assert.Equal(t, 3, s.Len())

	s.RemoveAll([]Tag{stunned, burning})
	assert.False(t, s.Has(stunned))
	assert.False(t, s.Has(burning))
	assert.True(t, s.Has(silenced))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSet_HasAllVacuous(t *testing.T) {
	s := NewSet()
	assert.True(t, s.HasAll(nil))
	assert.True(t, s.HasAll([]Tag{}))
}

func TestSet_HasAnyVacuous(t *testing.T) {
	s := NewSet(stunned)
	assert.False(t, s.HasAny(nil))
	assert.False(t, s.HasAny([]Tag{}))
}

func TestSet_HasAllHasAny(t *testing.T) {
	s := NewSet(stunned, silenced)

	assert.True(t, s.HasAll([]Tag{stunned, silenced}))
	assert.False(t, s.HasAll([]Tag{stunned, burning}))
	assert.True(t, s.HasAny([]Tag{burning, silenced}))
	assert.False(t, s.HasAny([]Tag{burning}))
}

func TestSet_NilIsEmpty(t *testing.T) {
	var s *Set

	s.Add(stunned)
	s.Grant([]Tag{burning})
	s.Clear()

	assert.False(t, s.Has(stunned))
	assert.True(t, s.HasAll(nil))
	assert.False(t, s.HasAll([]Tag{stunned}))
	assert.False(t, s.HasAny([]Tag{stunned}))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Tags())
}

func TestSet_GrantRevokeCounts(t *testing.T) {
	s := NewSet()

	s.Grant([]Tag{burning})
	s.Grant([]Tag{burning})
	s.Revoke([]Tag{burning})
	assert.True(t, s.Has(burning), "second grant still holds the tag")

	s.Revoke([]Tag{burning})
	assert.False(t, s.Has(burning))
}

func TestSet_RevokeUngrantedIsNoop(t *testing.T) {
	s := NewSet(stunned)
	s.Revoke([]Tag{stunned, burning})
	assert.True(t, s.Has(stunned))
	assert.False(t, s.Has(burning))
}

func TestSet_RevokeKeepsAddedTag(t *testing.T) {
	s := NewSet(stunned)

	s.Grant([]Tag{stunned})
	s.Revoke([]Tag{stunned})
	assert.True(t, s.Has(stunned), "innate tag outlives the grant")

	s.Grant([]Tag{burning})
	s.Add(burning)
	s.Revoke([]Tag{burning})
	assert.True(t, s.Has(burning), "added while granted")

	s.Remove(stunned)
	assert.False(t, s.Has(stunned))
}

func TestSet_RemoveDropsGrants(t *testing.T) {
	s := NewSet()
	s.Grant([]Tag{burning})
	s.Grant([]Tag{burning})

	s.Remove(burning)
	assert.False(t, s.Has(burning))

	s.Grant([]Tag{burning})
	s.Revoke([]Tag{burning})
	assert.False(t, s.Has(burning), "grant count restarts after explicit remove")
}

func TestSet_TagsSorted(t *testing.T) {
	s := NewSet(burning, stunned, silenced)
	assert.Equal(t, []Tag{silenced, stunned, burning}, s.Tags())
}

func TestFromStrings(t *testing.T) {
	assert.Nil(t, FromStrings(nil))
	assert.Equal(t, []Tag{"a", "b"}, FromStrings([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, Strings([]Tag{"a", "b"}))
}
