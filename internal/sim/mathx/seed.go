package mathx

// Domain separates the seed streams used by the different generation
// passes. Two fields derived from the same world seed but different
// domains are uncorrelated even when they cover the same coordinates.
type Domain uint64

const (
	DomainTerrain   Domain = 0x7465727261696e31 // terrain classification field
	DomainTreeMask  Domain = 0x747265655f6d736b // tree density mask field
	DomainRockMask  Domain = 0x726f636b5f6d736b // rock density mask field
	DomainTreePlace Domain = 0x747265655f706f73 // per-chunk tree placement
	DomainRockPlace Domain = 0x726f636b5f706f73 // per-chunk rock placement
)

// FieldSeed derives the sub-seed for a continuous noise field. The chunk
// coordinate is deliberately absent: neighbouring chunks must sample the
// same underlying field through shifted window bounds.
func FieldSeed(worldSeed uint64, d Domain) uint64 {
	return mix64(mix64(worldSeed) ^ uint64(d))
}

// ChunkSeed derives an independent sub-seed for one chunk coordinate by
// sequentially folding the seed, domain, x and y. The chain is order
// sensitive, so (1,2) and (2,1) land in unrelated streams.
func ChunkSeed(worldSeed uint64, d Domain, x, y int) uint64 {
	h := mix64(mix64(worldSeed) ^ uint64(d))
	h = mix64(h ^ uint64(int64(x)))
	h = mix64(h ^ uint64(int64(y)))
	return h
}
