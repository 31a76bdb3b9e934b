package pathoram

// PositionMap is the client-private total mapping from a record's
// identifier to its currently assigned leaf (spec §3, §4.2). Every
// live record has exactly one entry.
type PositionMap interface {
	// Get returns the leaf position for id.
	// Returns (leaf, true) if found, (0, false) if not.
	Get(id RecordID) (leaf int, exists bool)

	// Set assigns id to leaf, inserting a new entry if needed.
	Set(id RecordID, leaf int)

	// Delete removes id's entry, if any. Idempotent.
	Delete(id RecordID)

	// Size returns the number of records with an assigned position.
	Size() int
}

// InMemoryPositionMap implements PositionMap with a Go map.
type InMemoryPositionMap struct {
	m map[RecordID]int
}

// NewInMemoryPositionMap creates an empty position map sized for an
// expected nbItems entries.
func NewInMemoryPositionMap(nbItems int) *InMemoryPositionMap {
	return &InMemoryPositionMap{m: make(map[RecordID]int, nbItems)}
}

// Get returns the leaf position for id.
func (p *InMemoryPositionMap) Get(id RecordID) (int, bool) {
	leaf, ok := p.m[id]
	return leaf, ok
}

// Set assigns id to leaf.
func (p *InMemoryPositionMap) Set(id RecordID, leaf int) {
	p.m[id] = leaf
}

// Delete removes id's entry. Idempotent.
func (p *InMemoryPositionMap) Delete(id RecordID) {
	delete(p.m, id)
}

// Size returns the number of records with an assigned position.
func (p *InMemoryPositionMap) Size() int {
	return len(p.m)
}
