package pagination_test

import (
	"math"
	"testing"

	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPagination(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pagination Suite")
}

var _ = Describe("Pagination", func() {
	Describe("New", func() {
		It("should default page and limit", func() {
			p := pagination.New(0, 0)
			Expect(p.Page).To(Equal(1))
			Expect(p.Limit).To(Equal(pagination.DefaultLimit))
		})

		It("should cap the limit", func() {
			p := pagination.New(2, 1000)
			Expect(p.Limit).To(Equal(pagination.MaxLimit))
			Expect(p.Offset()).To(Equal(pagination.MaxLimit))
		})

		It("should clamp a huge page so the offset stays a positive 32-bit value", func() {
			p := pagination.New(math.MaxInt, pagination.MaxLimit)
			Expect(p.Offset()).To(BeNumerically(">=", 0))
			Expect(p.Offset()).To(BeNumerically("<", math.MaxInt32))

			meta := pagination.NewMeta(pagination.Params{Page: math.MaxInt, Limit: 10}, 5)
			Expect(meta.CurrentPage).To(Equal(214748365))
			Expect(pagination.Params{Page: meta.CurrentPage, Limit: 10}.Offset()).To(Equal(2147483640))
		})
	})

	Describe("NewMeta", func() {
		DescribeTable("totalPages is ceil(totalItems / itemsPerPage)",
			func(page, limit int, total int64, expectedPages int) {
				meta := pagination.NewMeta(pagination.New(page, limit), total)
				Expect(meta.TotalPages).To(Equal(expectedPages))
				Expect(meta.CurrentPage).To(Equal(page))
				Expect(meta.ItemsPerPage).To(Equal(limit))
				Expect(meta.TotalItems).To(Equal(total))
			},
			Entry("empty", 1, 10, int64(0), 0),
			Entry("exact", 1, 10, int64(20), 2),
			Entry("remainder", 3, 10, int64(21), 3),
			Entry("single item", 1, 25, int64(1), 1),
		)
	})

	Describe("NewPage", func() {
		It("should never return a nil data slice", func() {
			page := pagination.NewPage[int](nil, pagination.New(1, 10), 0)
			Expect(page.Data).NotTo(BeNil())
			Expect(page.Data).To(BeEmpty())
		})

		It("should map items and keep the envelope", func() {
			page := pagination.NewPage([]int{1, 2}, pagination.New(1, 2), 5)
			mapped := pagination.Map(page, func(i int) int { return i * 10 })
			Expect(mapped.Data).To(Equal([]int{10, 20}))
			Expect(mapped.Pagination.TotalPages).To(Equal(3))
		})
	})
})
