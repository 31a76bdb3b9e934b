package pathoram

import "errors"

// BucketSize is the fixed capacity of every bucket in the tree. A
// bucket is always full at rest: unused slots hold sealed dummies.
const BucketSize = 4

// Error taxonomy. These are kind-level sentinels, not per-call types:
// the ORAM, client, storage and record operations in this package
// return one of them. Encryptor construction (NewEncryptor and the
// New*Encryptor constructors) returns its own descriptive errors
// instead.
var (
	// ErrInvalidInput covers an out-of-range leaf, a zero item count,
	// or a malformed bucket count passed across the Store boundary.
	ErrInvalidInput = errors.New("pathoram: invalid input")

	// ErrCryptoError covers any AEAD seal/open failure: tampering, a
	// bad key, or truncated ciphertext. A failure while decrypting
	// server-returned path data indicates tree corruption.
	ErrCryptoError = errors.New("pathoram: cryptographic operation failed")

	// ErrNotFound covers a position-map lookup miss on an operation
	// that requires an existing entry.
	ErrNotFound = errors.New("pathoram: record not found")

	// ErrProtocolMisuse covers a write supplied without a matching
	// prior read, or a read returned empty for an already-initialized
	// tree.
	ErrProtocolMisuse = errors.New("pathoram: protocol misuse")

	// ErrStashOverflow is returned by eviction when the stash grows
	// past Config.StashLimit after a repack.
	ErrStashOverflow = errors.New("pathoram: stash overflow")
)

// Config holds the parameters needed to size and operate a Path-ORAM
// instance. Zero values for the tunables below are replaced with
// defaults by Validate.
type Config struct {
	// NumItems is the number of logical records the tree is sized for.
	// Must be > 0.
	NumItems int

	// PayloadLen is the length, in bytes, of every record's plaintext
	// payload. All records (real, dummy, or empty-filled) share this
	// length.
	PayloadLen int

	// StashWatermark is a soft threshold: once the stash grows past
	// this many records after an eviction, a Warn-level log line is
	// emitted even though the access itself still succeeds. Zero
	// disables the watermark. Does not affect StashLimit enforcement.
	StashWatermark int

	// StashLimit is the hard ceiling on stash size after eviction;
	// crossing it returns ErrStashOverflow. Zero selects a default of
	// 8 * height.
	StashLimit int

	// Cipher selects the AEAD primitive used to seal every record.
	// "aes256gcm" (default) or "chacha20poly1305".
	Cipher string
}

// Validate checks the configuration and returns a copy with defaults
// applied.
func (c Config) Validate() (Config, error) {
	if c.NumItems <= 0 || c.PayloadLen <= 0 {
		return c, ErrInvalidInput
	}
	if c.Cipher == "" {
		c.Cipher = "aes256gcm"
	}
	height, _, _ := c.treeParams()
	if c.StashLimit == 0 {
		c.StashLimit = 8 * height
	}
	return c, nil
}

// TreeParams exposes treeParams for callers outside the package (e.g.
// cmd/oramdemo sizing an initial dummy pool) that need the tree's shape
// without duplicating the sizing formula.
func (c Config) TreeParams() (height, numLeaves, totalBuckets int) {
	return c.treeParams()
}

// treeParams computes (height, numLeaves, totalBuckets): the smallest
// complete binary tree whose node count 2^height-1 can hold
// ceil(NumItems/BucketSize) buckets, per spec §3. Uses the integer
// ceiling-division formula recommended in spec §9 to avoid the
// float-rounding pitfalls observed across iterations of the source.
func (c Config) treeParams() (height, numLeaves, totalBuckets int) {
	numBuckets := ceilDiv(c.NumItems, BucketSize)
	if numBuckets < 1 {
		numBuckets = 1
	}
	height = 1
	for (1<<uint(height))-1 < numBuckets {
		height++
	}
	numLeaves = 1 << uint(height-1)
	totalBuckets = (1 << uint(height)) - 1
	return
}

// ceilDiv computes ceil(a/b) using integer arithmetic, per spec §9.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
