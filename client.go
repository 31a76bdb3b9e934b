package pathoram

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

// Client owns everything the server must never see: the symmetric
// key, the CSPRNG, the position map, and the stash (spec §4.2).
type Client struct {
	cfg       Config
	enc       Encryptor
	numLeaves int

	rngMu sync.Mutex
	rng   io.Reader

	posMap PositionMap
	stash  Stash

	// pendingAccess/pendingLeaf track an access whose read half has
	// completed but whose write half has not — ReadFromPath sets these,
	// WriteToPath checks and clears them. A WriteToPath for a leaf that
	// doesn't match a pending read is ErrProtocolMisuse (spec §7).
	pendingAccess bool
	pendingLeaf   int

	log *zap.Logger
}

// NewClient generates a fresh key from the CSPRNG and returns a
// Client ready to drive accesses against a Store sized by the same
// cfg. log may be nil, in which case logging is a no-op.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	key := make([]byte, KeySize(cfg))
	if _, err := rand.Read(key); err != nil {
		return nil, ErrCryptoError
	}
	enc, err := NewEncryptor(cfg, key)
	if err != nil {
		return nil, err
	}

	_, numLeaves, _ := cfg.treeParams()

	return &Client{
		cfg:       cfg,
		enc:       enc,
		numLeaves: numLeaves,
		rng:       rand.Reader,
		posMap:    NewInMemoryPositionMap(cfg.NumItems),
		stash:     make(Stash, 0, stashCapacityHint(cfg.NumItems)),
		log:       log,
	}, nil
}

// stashCapacityHint returns floor(log2(nbItems))+1, the capacity hint
// spec §4.2 assigns the stash at construction time.
func stashCapacityHint(nbItems int) int {
	if nbItems <= 0 {
		return 1
	}
	hint := 1
	for n := nbItems; n > 1; n >>= 1 {
		hint++
	}
	return hint
}

// randomLeaf draws a leaf uniformly at random from [0, numLeaves).
// Guarded by rngMu per spec §5: "if the client is shared across
// tasks, the RNG must be guarded by a mutex".
func (c *Client) randomLeaf() (int, error) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	n, err := rand.Int(c.rng, big.NewInt(int64(c.numLeaves)))
	if err != nil {
		return 0, ErrCryptoError
	}
	return int(n.Int64()), nil
}

// GenerateDummyItems returns count sealed, zero-payload records of the
// given payload length, each with an independently drawn nonce.
// Indistinguishable from a real sealed record to the server (spec §4.2).
func (c *Client) GenerateDummyItems(count, payloadLen int) ([][]byte, error) {
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		sealed, err := sealRecord(c.enc, EmptyRecordID, make([]byte, payloadLen))
		if err != nil {
			return nil, ErrCryptoError
		}
		out[i] = sealed
	}
	return out, nil
}

// InsertInPositionMap assigns a fresh uniformly random leaf to id,
// per spec §4.2.
func (c *Client) InsertInPositionMap(id RecordID) error {
	leaf, err := c.randomLeaf()
	if err != nil {
		return err
	}
	c.posMap.Set(id, leaf)
	return nil
}

// DeleteFromPositionMap removes id's entry. Idempotent (spec §4.2).
func (c *Client) DeleteFromPositionMap(id RecordID) {
	c.posMap.Delete(id)
}

// ChangePosition re-samples a uniform leaf for an existing position-map
// entry. Returns ErrNotFound if id has no entry.
func (c *Client) ChangePosition(id RecordID) error {
	if _, ok := c.posMap.Get(id); !ok {
		return ErrNotFound
	}
	leaf, err := c.randomLeaf()
	if err != nil {
		return err
	}
	c.posMap.Set(id, leaf)
	return nil
}

// DecryptRecords opens each sealed record in order. A record whose
// identifier decrypts to EmptyRecordID is a dummy; callers identify
// the record(s) they care about by RecordID, not by position.
func (c *Client) DecryptRecords(sealed [][]byte) ([]Record, error) {
	out := make([]Record, 0, len(sealed))
	for _, s := range sealed {
		id, payload, err := openRecord(c.enc, s)
		if err != nil {
			c.log.Warn("decrypt failed during path read", zap.Error(err))
			return nil, err
		}
		out = append(out, Record{ID: id, Payload: payload})
	}
	return out, nil
}

// EncryptRecords seals a path's worth of buckets (spec §4.2). buckets
// is left unchanged; the return value holds the matching sealed form,
// slot for slot, ready for Store.WritePath.
func (c *Client) EncryptRecords(buckets [][]Record) ([][][]byte, error) {
	sealedBuckets := make([][][]byte, len(buckets))
	for i, bucket := range buckets {
		sealedBucket := make([][]byte, len(bucket))
		for j, rec := range bucket {
			sealed, err := sealRecord(c.enc, rec.ID, rec.Payload)
			if err != nil {
				return nil, err
			}
			sealedBucket[j] = sealed
		}
		sealedBuckets[i] = sealedBucket
	}
	return sealedBuckets, nil
}

// DecryptStash opens every sealed record in the stash's on-wire form.
func (c *Client) DecryptStash(sealed [][]byte) (Stash, error) {
	records, err := c.DecryptRecords(sealed)
	if err != nil {
		return nil, err
	}
	stash := make(Stash, 0, len(records))
	for _, r := range records {
		if r.ID.IsEmpty() {
			continue
		}
		stash = append(stash, r)
	}
	return stash, nil
}

// EncryptStash seals every record currently in the stash.
func (c *Client) EncryptStash() ([][]byte, error) {
	out := make([][]byte, len(c.stash))
	for i, r := range c.stash {
		sealed, err := sealRecord(c.enc, r.ID, r.Payload)
		if err != nil {
			return nil, err
		}
		out[i] = sealed
	}
	return out, nil
}

// PositionMap returns the client's position map, for callers that need
// to look up a record's current leaf directly (e.g. to pick the leaf
// for a read access by RecordID).
func (c *Client) PositionMap() PositionMap {
	return c.posMap
}

// Stash returns the client's current stash contents. The returned
// slice aliases internal state and must not be mutated by the caller.
func (c *Client) Stash() Stash {
	return c.stash
}

// StashSize returns the number of records currently held in the
// stash.
func (c *Client) StashSize() int {
	return len(c.stash)
}

// checkStashWatermark logs a warning once the stash crosses
// Config.StashWatermark, independent of the hard StashLimit ceiling
// enforced by eviction.
func (c *Client) checkStashWatermark() {
	if c.cfg.StashWatermark > 0 && len(c.stash) > c.cfg.StashWatermark {
		c.log.Warn("stash above soft watermark",
			zap.Int("stash_size", len(c.stash)),
			zap.Int("watermark", c.cfg.StashWatermark))
	}
}
