package datetime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDatetime(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Datetime Suite")
}

var _ = Describe("Date", func() {
	DescribeTable("accepts both layouts",
		func(raw string, want time.Time) {
			var d datetime.Date
			Expect(json.Unmarshal([]byte(`"`+raw+`"`), &d)).To(Succeed())
			Expect(d.Time.Equal(want)).To(BeTrue())
		},
		Entry("plain date", "2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		Entry("timestamp", "2025-03-10T08:30:00Z", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)),
	)

	It("rejects garbage", func() {
		var d datetime.Date
		Expect(json.Unmarshal([]byte(`"10/03/2025"`), &d)).NotTo(Succeed())
	})

	It("emits a plain date", func() {
		b, err := json.Marshal(datetime.NewDate(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`"2025-03-10"`))
	})
})
