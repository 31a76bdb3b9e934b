package pathoram

// repack implements the eviction/repack algorithm of spec §4.4: given
// work = stash ‖ path records (all plaintext) and a target leaf, it
// greedily fills each level of the path from the leaf up, preferring
// records that can legally live at the deepest level first. This
// maximizes how far down each record is pushed, which is what shrinks
// the stash over time — standard Path-ORAM eviction.
//
// Returns height buckets ordered leaf-adjacent first, root-adjacent
// last (the order Store.WritePath expects), plus the new stash:
// records from work that still have a position-map entry but did not
// fit anywhere on the path. Records with no position-map entry are
// dropped silently — this is how a logical delete takes effect.
func repack(work []Record, posMap PositionMap, leaf, height, payloadLen int) ([][]Record, Stash) {
	remaining := append([]Record(nil), work...)
	buckets := make([][]Record, height)

	for level := 0; level < height; level++ {
		bucket := make([]Record, 0, BucketSize)
		for slot := 0; slot < BucketSize; slot++ {
			idx := findPlaceable(remaining, posMap, leaf, level)
			if idx == -1 {
				bucket = append(bucket, Record{ID: EmptyRecordID, Payload: make([]byte, payloadLen)})
				continue
			}
			bucket = append(bucket, remaining[idx])
			remaining = append(remaining[:idx], remaining[idx+1:]...)
		}
		buckets[level] = bucket
	}

	newStash := make(Stash, 0, len(remaining))
	for _, r := range remaining {
		if _, ok := posMap.Get(r.ID); ok {
			newStash = append(newStash, r)
		}
	}
	return buckets, newStash
}

// findPlaceable returns the index of the first record in work that
// belongs in the bucket at the given level of leaf's path — i.e. whose
// assigned leaf shares leaf's prefix down to this depth — or -1 if
// none qualifies.
func findPlaceable(work []Record, posMap PositionMap, leaf, level int) int {
	for i, r := range work {
		pos, ok := posMap.Get(r.ID)
		if !ok {
			continue
		}
		if (pos >> uint(level)) == (leaf >> uint(level)) {
			return i
		}
	}
	return -1
}
