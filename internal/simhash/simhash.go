package simhash

import (
	"math/bits"
	"strconv"
	"strings"
)

// DefaultShingleSize is the default number of words per shingle.
const DefaultShingleSize = 5

// Fingerprint is a 64-bit SimHash of a word stream.
type Fingerprint uint64

// String renders the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	s := strconv.FormatUint(uint64(f), 16)
	return strings.Repeat("0", 16-len(s)) + s
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b Fingerprint) int {
	return bits.OnesCount64(uint64(a ^ b))
}

// Shingles returns every window of k consecutive words joined with single
// spaces. Fewer than k words produce no shingles.
func Shingles(words []string, k int) []string {
	if k <= 0 || len(words) < k {
		return nil
	}
	shingles := make([]string, 0, len(words)-k+1)
	for i := 0; i+k <= len(words); i++ {
		shingles = append(shingles, strings.Join(words[i:i+k], " "))
	}
	return shingles
}

// Compute fingerprints a complete word sequence.
func Compute(words []string, k int, h Hasher) Fingerprint {
	b := NewBuilder(k, h)
	for _, w := range words {
		b.Add(w)
	}
	return b.Sum()
}

// Builder computes a fingerprint incrementally, one word at a time, keeping
// only the last k words in memory.
type Builder struct {
	k      int
	hash   Hasher
	window []string
	next   int
	filled int
	votes  [64]int
	count  int
	buf    []byte
}

// NewBuilder returns a Builder for shingles of k words.
// A non-positive k falls back to DefaultShingleSize and a nil hasher to FNV64a.
func NewBuilder(k int, h Hasher) *Builder {
	if k <= 0 {
		k = DefaultShingleSize
	}
	if h == nil {
		h = FNV64a
	}
	return &Builder{
		k:      k,
		hash:   h,
		window: make([]string, k),
	}
}

// Add appends a word to the stream. Once k words are buffered, every
// further word completes one shingle.
func (b *Builder) Add(word string) {
	b.window[b.next] = word
	b.next = (b.next + 1) % b.k
	if b.filled < b.k {
		b.filled++
	}
	if b.filled < b.k {
		return
	}
	b.vote(b.hash(b.shingle()))
}

// shingle joins the buffered window in stream order.
// b.next points at the oldest word once the window is full.
func (b *Builder) shingle() []byte {
	b.buf = b.buf[:0]
	for i := range b.k {
		if i > 0 {
			b.buf = append(b.buf, ' ')
		}
		b.buf = append(b.buf, b.window[(b.next+i)%b.k]...)
	}
	return b.buf
}

func (b *Builder) vote(sig uint64) {
	b.count++
	for i := range 64 {
		if sig&(1<<uint(i)) != 0 {
			b.votes[i]++
		} else {
			b.votes[i]--
		}
	}
}

// Shingles returns the number of shingles hashed so far.
func (b *Builder) Shingles() int {
	return b.count
}

// Sum returns the fingerprint of the words added so far.
// With no shingles every counter is zero, so every bit is set.
func (b *Builder) Sum() Fingerprint {
	var result uint64
	for i := range 64 {
		if b.votes[i] >= 0 {
			result |= 1 << uint(i)
		}
	}
	return Fingerprint(result)
}
