package pathoram

import (
	"sync"

	"go.uber.org/zap"
)

// Oram is the server-facing half of the protocol (spec §4.1, §6): a
// Store plus the mutex that serializes accesses to it. It never sees a
// plaintext record, a RecordID, or a position-map entry — it trades
// exclusively in sealed bytes addressed by leaf.
type Oram struct {
	store *Store
	mu    sync.Mutex
}

// NewOram wraps an already-built Store.
func NewOram(store *Store) *Oram {
	return &Oram{store: store}
}

// NewInMemoryOram builds a fresh in-memory tree sized for cfg and seeds
// it from pool, per spec §4.5.
func NewInMemoryOram(cfg Config, pool [][]byte) (*Oram, error) {
	store, err := Initialize(cfg, pool)
	if err != nil {
		return nil, err
	}
	return NewOram(store), nil
}

// Height returns the tree height backing this Oram.
func (o *Oram) Height() int { return o.store.Height() }

// NumLeaves returns the number of distinct paths.
func (o *Oram) NumLeaves() int { return o.store.NumLeaves() }

// readPath and writePath are unexported: callers reach the server only
// through Client.ReadFromPath/WriteToPath, which hold o.mu for the
// whole read-then-write round per spec §5's atomicity requirement.
func (o *Oram) readPath(leaf int) ([][]byte, error) {
	return o.store.ReadPath(leaf)
}

func (o *Oram) writePath(leaf int, buckets [][][]byte) error {
	return o.store.WritePath(leaf, buckets)
}

// ReadFromPath performs steps 1-3 of the Path-ORAM access protocol
// (spec §4.3): it reads leaf's sealed path from the server, decrypts
// it, and returns the concatenation of the client's stash with the
// decrypted path records. The caller identifies the record(s) it cares
// about by RecordID within the returned slice.
//
// ReadFromPath locks the Oram for the duration of this access; the
// lock is released by the matching WriteToPath call. Every ReadFromPath
// MUST be followed by exactly one WriteToPath for the same leaf —
// obliviousness requires that every read be refreshed by a write, even
// when the caller has nothing new to say (spec §5, §7).
func (c *Client) ReadFromPath(o *Oram, leaf int) ([]Record, error) {
	if leaf < 0 || leaf >= o.NumLeaves() {
		return nil, ErrInvalidInput
	}

	o.mu.Lock()
	sealedPath, err := o.readPath(leaf)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}

	pathRecords, err := c.DecryptRecords(sealedPath)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}

	c.pendingAccess = true
	c.pendingLeaf = leaf

	work := make([]Record, 0, len(c.stash)+len(pathRecords))
	work = append(work, c.stash...)
	work = append(work, pathRecords...)

	c.log.Debug("path read",
		zap.Int("leaf", leaf),
		zap.Int("stash_size", len(c.stash)),
		zap.Int("path_records", len(pathRecords)),
		zap.Strings("directions", pathDirections(leaf, o.Height())))

	return work, nil
}

// pathDirections returns the left/right turn at each level from root to
// leaf, MSB first, per spec §3's bit convention. Supplements the
// original source's println! trace of the path walk with a structured
// debug-log field instead.
func pathDirections(leaf, height int) []string {
	bits := height - 1
	dirs := make([]string, bits)
	for k := 0; k < bits; k++ {
		shift := bits - 1 - k
		if (leaf>>uint(shift))&1 == 1 {
			dirs[k] = "right"
		} else {
			dirs[k] = "left"
		}
	}
	return dirs
}

// WriteToPath performs steps 4-8 of the Path-ORAM access protocol
// (spec §4.3). records is the (possibly caller-mutated) working set
// returned by the matching ReadFromPath; inserts are brand-new records
// to add to the position map and the tree; touched names the
// RecordIDs, among records, whose payload the caller read or wrote
// this access and which must therefore migrate to a fresh leaf.
// Records neither inserted nor touched keep their existing
// position-map entry.
//
// Returns ErrProtocolMisuse if there is no pending ReadFromPath for
// this leaf, and ErrStashOverflow if the post-repack stash exceeds
// Config.StashLimit — in both cases the server's tree is left
// untouched and the client's stash is not replaced.
func (c *Client) WriteToPath(o *Oram, records []Record, inserts []Record, touched []RecordID, leaf int) error {
	if !c.pendingAccess || c.pendingLeaf != leaf {
		return ErrProtocolMisuse
	}
	defer func() {
		c.pendingAccess = false
		o.mu.Unlock()
	}()

	work := append([]Record(nil), records...)

	for _, rec := range inserts {
		if err := c.InsertInPositionMap(rec.ID); err != nil {
			return err
		}
		// Redundant with the InsertInPositionMap draw above, but spec
		// §4.3 step 4 calls for it explicitly ("then ChangePosition
		// (redundant but matches contract)").
		if err := c.ChangePosition(rec.ID); err != nil {
			return err
		}
		work = append(work, rec)
	}

	for _, id := range touched {
		if err := c.ChangePosition(id); err != nil {
			return err
		}
	}

	height := o.Height()
	buckets, newStash := repack(work, c.posMap, leaf, height, c.cfg.PayloadLen)

	if c.cfg.StashLimit > 0 && len(newStash) > c.cfg.StashLimit {
		return ErrStashOverflow
	}

	sealedBuckets, err := c.EncryptRecords(buckets)
	if err != nil {
		return err
	}

	if err := o.writePath(leaf, sealedBuckets); err != nil {
		return err
	}

	c.stash = newStash
	c.checkStashWatermark()

	c.log.Debug("path written",
		zap.Int("leaf", leaf),
		zap.Int("stash_size", len(c.stash)))

	return nil
}

// Access performs one full read-then-write round in a single call: the
// stash and leaf's path are read, inserts are applied, the records
// named in touched are re-randomized, and the result is repacked and
// written back. It is the single-call convenience form of
// ReadFromPath+WriteToPath for callers that don't need to inspect the
// working set before committing — e.g. a blind insert, or refreshing a
// path with no logical change. The returned slice is the working set
// observed during the read half.
func (c *Client) Access(o *Oram, leaf int, inserts []Record, touched []RecordID) ([]Record, error) {
	work, err := c.ReadFromPath(o, leaf)
	if err != nil {
		return nil, err
	}
	if err := c.WriteToPath(o, work, inserts, touched, leaf); err != nil {
		return nil, err
	}
	return work, nil
}
