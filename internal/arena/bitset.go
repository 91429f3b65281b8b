package arena

// Bitset is a fixed-size bit vector, used by the optimizer and GCM
// passes to track visited/useful node ids. Grounded on the Bitset/
// make_bitset/bitset_set/bitset_get family in
// _examples/original_source/src/internal.c.
type Bitset struct {
	words []uint32
	bits  int
}

// NewBitset allocates a Bitset able to address bits [0, n) from the
// given arena.
func NewBitset(a *Arena, n int) *Bitset {
	wordCount := (n + 31) / 32
	a.Charge(wordCount * 4)
	return &Bitset{words: make([]uint32, wordCount), bits: n}
}

func (b *Bitset) Set(i int) {
	b.words[i/32] |= 1 << uint(i%32)
}

func (b *Bitset) Unset(i int) {
	b.words[i/32] &^= 1 << uint(i%32)
}

func (b *Bitset) Get(i int) bool {
	return b.words[i/32]&(1<<uint(i%32)) != 0
}

func (b *Bitset) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Len reports the number of addressable bits.
func (b *Bitset) Len() int { return b.bits }
