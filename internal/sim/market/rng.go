package market

// Deterministic PRNG for catalog selection. Each (system, category) pair gets
// its own generator seeded from a hash of the composite key, so shuffles never
// touch a shared random source and repeat exactly across sessions.

type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

func (r *splitMix64) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// intn returns a value in [0,n). n must be positive.
func (r *splitMix64) intn(n int) int {
	return int(r.next() % uint64(n))
}

// seedFor hashes the concatenation of system and category ids (FNV-1a 64).
func seedFor(systemID, categoryID string) uint64 {
	var h uint64 = 1469598103934665603
	for _, s := range []string{systemID, categoryID} {
		for i := 0; i < len(s); i++ {
			h ^= uint64(s[i])
			h *= 1099511628211
		}
	}
	return h
}
