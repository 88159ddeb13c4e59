package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tag struct{ name string }
type weight struct{ v int }

func TestEntityPool_ReusesIndexWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	assert.False(t, a.IsZero())
	assert.True(t, p.Alive(a))

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	p.Destroy(a) // stale destroy is a no-op

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.True(t, p.Alive(b))
}

func TestStore_EachIsOrdered(t *testing.T) {
	w := NewWorld()
	tags := NewStore[tag]()
	w.Register(tags)

	var ids []EntityID
	for i := 0; i < 5; i++ {
		ids = append(ids, w.CreateEntity())
	}
	for i := len(ids) - 1; i >= 0; i-- {
		tags.Set(ids[i], &tag{name: string(rune('a' + i))})
	}

	var seen []EntityID
	tags.Each(func(id EntityID, _ *tag) { seen = append(seen, id) })
	assert.Equal(t, ids, seen)
}

func TestWorld_FlushRemovesComponents(t *testing.T) {
	w := NewWorld()
	tags := NewStore[tag]()
	weights := NewStore[weight]()
	w.Register(tags)
	w.Register(weights)

	a, b := w.CreateEntity(), w.CreateEntity()
	tags.Set(a, &tag{"a"})
	tags.Set(b, &tag{"b"})
	weights.Set(b, &weight{2})

	var joined []EntityID
	Each2(tags, weights, func(id EntityID, _ *tag, _ *weight) { joined = append(joined, id) })
	assert.Equal(t, []EntityID{b}, joined)

	w.MarkForDestruction(b)
	assert.Equal(t, 1, w.Pending())
	assert.True(t, tags.Has(b), "destruction is deferred until flush")

	w.FlushDestroyQueue()
	assert.False(t, tags.Has(b))
	assert.False(t, weights.Has(b))
	assert.False(t, w.Alive(b))
	assert.Equal(t, 1, tags.Len())
	assert.Equal(t, 0, w.Pending())
}
