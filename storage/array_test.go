package storage_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ceaser/storage"
)

var _ = Describe("Array", func() {
	var a *storage.Array

	BeforeEach(func() {
		a = storage.New(2, 2) // 4 sets, 4 ways
	})

	It("starts fully invalid", func() {
		for s := 0; s < a.Sets(); s++ {
			for w := 0; w < a.Ways(); w++ {
				Expect(a.Valid(s, w)).To(BeFalse())
			}
		}
	})

	It("reports the configured shape", func() {
		Expect(a.Sets()).To(Equal(4))
		Expect(a.Ways()).To(Equal(4))
	})

	It("fills and clears a slot", func() {
		a.Fill(1, 2, 0xABC, 0)
		Expect(a.Valid(1, 2)).To(BeTrue())
		Expect(a.Tag(1, 2)).To(Equal(uint64(0xABC)))
		Expect(a.Age(1, 2)).To(Equal(0))

		a.Clear(1, 2)
		Expect(a.Valid(1, 2)).To(BeFalse())
	})

	It("does not disturb other slots in the same set", func() {
		a.Fill(0, 0, 1, 0)
		a.Fill(0, 1, 2, 1)
		a.SetAge(0, 0, 3)

		Expect(a.Age(0, 0)).To(Equal(3))
		Expect(a.Valid(0, 1)).To(BeTrue())
		Expect(a.Tag(0, 1)).To(Equal(uint64(2)))
	})
})
