package pathoram

import (
	"encoding/binary"
)

// RecordIDSize is the fixed width, in bytes, of a logical record
// identifier. Identifiers shorter than this are zero-padded on the
// right; identifiers longer than this cannot be represented.
//
// Keying the position map (and the AEAD plaintext) on a fixed-width
// identifier rather than on the variable-length payload lets a payload
// be mutated in place without forcing a delete-then-reinsert, and lets
// two records carry equal payloads without colliding.
const RecordIDSize = 16

// RecordID is a stable logical identifier, independent of payload
// bytes. It is the position map's key and travels inside the sealed
// plaintext of every record that carries it.
type RecordID [RecordIDSize]byte

// EmptyRecordID is the identifier used by dummy and empty-slot
// records. It is never a valid caller-assigned identifier.
var EmptyRecordID RecordID

// NewRecordID packs id's low bytes into a RecordID, left-aligned and
// zero-padded. It panics if id is longer than RecordIDSize.
func NewRecordID(id []byte) RecordID {
	if len(id) > RecordIDSize {
		panic("pathoram: record id exceeds RecordIDSize")
	}
	var r RecordID
	copy(r[:], id)
	return r
}

// RecordIDFromUint64 encodes n as a big-endian RecordID. Convenient for
// callers that identify records by an integer block index.
func RecordIDFromUint64(n uint64) RecordID {
	var r RecordID
	binary.BigEndian.PutUint64(r[RecordIDSize-8:], n)
	return r
}

// IsEmpty reports whether id is the sentinel empty identifier.
func (id RecordID) IsEmpty() bool {
	return id == EmptyRecordID
}

// Record is a single logical datum while it is in the client's
// possession: a stable identifier plus a plaintext payload. Records
// never leave the client in this form; see sealRecord / openRecord.
// A record's current leaf is not part of the struct — it lives
// exclusively in the position map, so a record's position is always
// read from a single source of truth.
type Record struct {
	ID      RecordID
	Payload []byte
}

// isDummy reports whether r carries no real caller data.
func (r Record) isDummy() bool {
	return r.ID.IsEmpty()
}

// sealRecord encodes id||payload as the AEAD plaintext and seals it,
// producing the nonce||ciphertext||tag on-the-wire form described in
// spec §6.
func sealRecord(enc Encryptor, id RecordID, payload []byte) ([]byte, error) {
	plaintext := make([]byte, RecordIDSize+len(payload))
	copy(plaintext, id[:])
	copy(plaintext[RecordIDSize:], payload)

	sealed, err := enc.Encrypt(plaintext)
	if err != nil {
		return nil, ErrCryptoError
	}
	return sealed, nil
}

// openRecord reverses sealRecord. An empty ciphertext is the in-memory
// "never touched" sentinel and round-trips to an empty Record.
func openRecord(enc Encryptor, sealed []byte) (RecordID, []byte, error) {
	if len(sealed) == 0 {
		return EmptyRecordID, nil, nil
	}

	plaintext, err := enc.Decrypt(sealed)
	if err != nil {
		return RecordID{}, nil, ErrCryptoError
	}
	if len(plaintext) < RecordIDSize {
		return RecordID{}, nil, ErrCryptoError
	}

	var id RecordID
	copy(id[:], plaintext[:RecordIDSize])
	payload := plaintext[RecordIDSize:]
	return id, payload, nil
}
