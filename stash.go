package pathoram

// Stash is the client's overflow set: records that were touched but
// did not fit on the eviction path of their last access (spec §3).
// It is plaintext while idle between accesses; EncryptStash/
// DecryptStash move it to and from sealed form for serialization.
//
// Config.StashWatermark is a soft threshold logged via zap.Warn once
// crossed; Config.StashLimit is the hard ceiling enforced after
// eviction, returning ErrStashOverflow.
type Stash []Record
