package pathoram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{NumItems: 100, PayloadLen: 16}, nil)
	require.NoError(t, err)
	require.NotNil(t, client.log)
	require.Equal(t, 0, client.StashSize())
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(Config{NumItems: 0, PayloadLen: 16}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStashCapacityHint(t *testing.T) {
	tests := []struct {
		nbItems int
		want    int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{4, 3},
		{183, 8},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stashCapacityHint(tt.nbItems), "nbItems=%d", tt.nbItems)
	}
}

func TestGenerateDummyItemsAreIndependentlySealedZeroPayloads(t *testing.T) {
	client, err := NewClient(Config{NumItems: 100, PayloadLen: 16}, nil)
	require.NoError(t, err)

	dummies, err := client.GenerateDummyItems(3, 16)
	require.NoError(t, err)
	require.Len(t, dummies, 3)
	require.NotEqual(t, dummies[0], dummies[1], "fresh nonce per dummy")

	for _, sealed := range dummies {
		id, payload, err := openRecord(client.enc, sealed)
		require.NoError(t, err)
		require.True(t, id.IsEmpty())
		require.Equal(t, make([]byte, 16), payload)
	}
}

func TestPositionMapLifecycle(t *testing.T) {
	client, err := NewClient(Config{NumItems: 100, PayloadLen: 16}, nil)
	require.NoError(t, err)

	id := RecordIDFromUint64(1)
	require.ErrorIs(t, client.ChangePosition(id), ErrNotFound)

	require.NoError(t, client.InsertInPositionMap(id))
	leaf, ok := client.posMap.Get(id)
	require.True(t, ok)
	require.GreaterOrEqual(t, leaf, 0)
	require.Less(t, leaf, client.numLeaves)

	require.NoError(t, client.ChangePosition(id))
	_, ok = client.posMap.Get(id)
	require.True(t, ok)

	client.DeleteFromPositionMap(id)
	_, ok = client.posMap.Get(id)
	require.False(t, ok)

	client.DeleteFromPositionMap(id) // idempotent
}

func TestEncryptDecryptRecordsRoundTrip(t *testing.T) {
	client, err := NewClient(Config{NumItems: 100, PayloadLen: 4}, nil)
	require.NoError(t, err)

	buckets := [][]Record{
		{{ID: RecordIDFromUint64(1), Payload: []byte("abcd")}, {ID: EmptyRecordID, Payload: make([]byte, 4)}},
	}
	sealed, err := client.EncryptRecords(buckets)
	require.NoError(t, err)
	require.Len(t, sealed, 1)
	require.Len(t, sealed[0], 2)

	decrypted, err := client.DecryptRecords(sealed[0])
	require.NoError(t, err)
	require.Equal(t, buckets[0][0].ID, decrypted[0].ID)
	require.Equal(t, buckets[0][0].Payload, decrypted[0].Payload)
	require.True(t, decrypted[1].ID.IsEmpty())
}

// TestStashEncryptDecryptRoundTrip is spec.md §8 scenario 6: encrypting
// four zero-payload stash records must not leave any of them equal to
// the zero payload on the wire, and decrypting must restore them.
func TestStashEncryptDecryptRoundTrip(t *testing.T) {
	client, err := NewClient(Config{NumItems: 100, PayloadLen: 16}, nil)
	require.NoError(t, err)

	zero := make([]byte, 16)
	for i := 0; i < 4; i++ {
		client.stash = append(client.stash, Record{ID: RecordIDFromUint64(uint64(i + 1)), Payload: zero})
	}

	sealed, err := client.EncryptStash()
	require.NoError(t, err)
	require.Len(t, sealed, 4)
	for _, s := range sealed {
		require.NotEqual(t, zero, s, "sealed record must not equal the raw zero payload")
	}

	decrypted, err := client.DecryptStash(sealed)
	require.NoError(t, err)
	require.Equal(t, client.stash, decrypted)
}
