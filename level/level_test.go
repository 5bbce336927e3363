package level_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ceaser/level"
)

var _ = Describe("Generic", func() {
	Describe("a single level with no next", func() {
		var l *level.Generic

		BeforeEach(func() {
			l = level.New(2, 2, "solo") // 4 sets, 4 ways
		})

		It("misses on a cold address and hits immediately after", func() {
			Expect(l.Access(0)).To(Equal(1))
			Expect(l.Access(0)).To(Equal(0))
		})

		It("is a no-op to re-access an already-MRU line", func() {
			l.Access(0)
			l.Access(0)
			Expect(l.Access(0)).To(Equal(0))
		})

		It("evicts the LRU line once a set fills up", func() {
			// set 0, 1 set total here would collide everything; use
			// distinct addresses that all land in set 0 by construction:
			// line = addr>>6, set = line & 3. Pick lines 0,4,8,12,16 so
			// set stays 0 for all (4 sets => mask 3; 0,4,8,12 all %4==0).
			addrs := []uint64{0, 4 << 6, 8 << 6, 12 << 6, 16 << 6}
			for _, a := range addrs[:4] {
				l.Access(a)
			}
			for _, a := range addrs[:4] {
				Expect(l.Access(a)).To(Equal(0))
			}

			// Fifth distinct line to the same set evicts the LRU (addrs[0]).
			Expect(l.Access(addrs[4])).To(Equal(1))
			Expect(l.Access(addrs[0])).To(Equal(1))
		})

		It("tolerates evicting a line that was never present", func() {
			Expect(func() { l.Evict(12345) }).NotTo(Panic())
		})
	})

	Describe("two chained levels", func() {
		var top, bottom *level.Generic

		BeforeEach(func() {
			top = level.New(1, 3, "top")    // 2 sets, 8 ways
			bottom = level.New(1, 4, "bottom") // 2 sets, 16 ways
			top.SetNext(bottom)
			bottom.AddPrev(top)
		})

		It("propagates a cold miss through both levels", func() {
			Expect(top.Access(0)).To(Equal(2))
			Expect(top.Access(0)).To(Equal(0))
		})

		It("keeps a line inclusively present in bottom after top evicts it", func() {
			lines := []uint64{0, 2, 4, 6, 8, 10, 12, 14, 16}
			for _, line := range lines[:8] {
				top.Access(line << 6)
			}
			// ninth distinct line to the same top set evicts lines[0] from top.
			top.Access(lines[8] << 6)

			// lines[0] must still be resolvable via bottom: top misses,
			// recurses into bottom, which still holds it.
			Expect(top.Access(lines[0] << 6)).To(Equal(1))
		})

		It("back-invalidates top when bottom evicts a shared line", func() {
			// Give top the same capacity as bottom (16 ways each) so that
			// when bottom is forced to evict its LRU line, top still
			// holds that same line purely through inclusion - any
			// subsequent miss on it must be caused by back-invalidation,
			// not by top's own independent replacement.
			wideTop := level.New(1, 4, "wide-top")
			wideTop.SetNext(bottom)
			bottom.AddPrev(wideTop)

			var lines []uint64
			for i := 0; i < 16; i++ {
				lines = append(lines, uint64(i*2))
			}
			for _, line := range lines {
				wideTop.Access(line << 6)
			}

			// 17th distinct line to the same bottom set forces bottom to
			// evict lines[0], which must back-invalidate wideTop too.
			extra := uint64(32)
			wideTop.Access(extra << 6)

			Expect(wideTop.Access(lines[0] << 6)).To(Equal(2))
		})
	})
})
