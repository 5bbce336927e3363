package llc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ceaser/llc"
	"github.com/sarchlab/ceaser/spn"
)

type recordingEvictor struct {
	evicted []uint64
}

func (r *recordingEvictor) Evict(line uint64) {
	r.evicted = append(r.evicted, line)
}

var _ = Describe("Level", func() {
	var (
		cipher *spn.Cipher
		upper  *recordingEvictor
		l      *llc.Level
	)

	BeforeEach(func() {
		cipher = spn.New(0, [4]uint64{100, 200, 300, 400})
		upper = &recordingEvictor{}
		l = llc.New(2, 2, cipher, upper) // 4 sets, 4 ways
	})

	It("misses on a cold line and hits immediately after", func() {
		Expect(l.Access(0)).To(Equal(1))
		Expect(l.Access(0)).To(Equal(0))
	})

	It("indexes storage by ciphertext, not plaintext, line address", func() {
		// Two plaintext lines that alias to the same set in plaintext
		// space (both 0 mod 4) need not collide in ciphertext space, and
		// vice versa; we only assert both are independently cacheable.
		Expect(l.Access(0 << 6)).To(Equal(1))
		Expect(l.Access(4 << 6)).To(Equal(1))
		Expect(l.Access(0 << 6)).To(Equal(0))
		Expect(l.Access(4 << 6)).To(Equal(0))
	})

	It("back-invalidates upward using the plaintext line it originally inserted", func() {
		const n = 64
		for i := uint64(0); i < n; i++ {
			l.Access(i << 6)
		}

		Expect(upper.evicted).NotTo(BeEmpty())
		accessed := make(map[uint64]bool, n)
		for i := uint64(0); i < n; i++ {
			accessed[i] = true
		}
		for _, line := range upper.evicted {
			Expect(accessed[line]).To(BeTrue())
		}
	})
})
