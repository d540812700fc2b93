package history

import "hash/fnv"

// hashMod is 2^61 - 1. Hashes are reduced into [0, 2^61) so they fit
// comfortably in the vector store's unsigned 64-bit point ID space and
// survive round-trips through systems that only carry signed integers.
const hashMod = (uint64(1) << 61) - 1

// URLHash maps a URL to a stable numeric fingerprint. It is a pure
// function of the URL: the same input yields the same hash across calls
// and process restarts, which is required because the hash doubles as
// the vector store point ID and as the join key back into the Table.
func URLHash(url string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(url))
	return h.Sum64() % hashMod
}
