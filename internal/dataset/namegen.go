package dataset

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	IdentifierLength = 8
	identifierTable  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NameGenerator draws random replacement basenames.
type NameGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewNameGenerator(src rand.Source) *NameGenerator {
	return &NameGenerator{rnd: rand.New(src)}
}

// NewSeededNameGenerator returns a deterministic generator.
func NewSeededNameGenerator(seed1, seed2 uint64) *NameGenerator {
	return NewNameGenerator(rand.NewPCG(seed1, seed2))
}

// DefaultNameGenerator seeds a ChaCha8 source from the OS entropy pool.
func DefaultNameGenerator() *NameGenerator {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("failed to seed name generator: " + err.Error())
	}
	return NewNameGenerator(rand.NewChaCha8(seed))
}

// Generate returns an identifier that is not a member of exclude.
// The caller adds the result to exclude when later calls must not repeat it.
func (g *NameGenerator) Generate(exclude mapset.Set[string]) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, IdentifierLength)
	for {
		for i := range buf {
			buf[i] = identifierTable[g.rnd.IntN(len(identifierTable))]
		}
		name := string(buf)
		if exclude == nil || !exclude.Contains(name) {
			return name
		}
	}
}

// Reorder shuffles names in place.
func (g *NameGenerator) Reorder(names []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rnd.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
}
