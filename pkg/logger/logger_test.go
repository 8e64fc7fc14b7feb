package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Logger Suite")
}

var _ = ginkgo.Describe("context logger", func() {
	var buf *bytes.Buffer

	ginkgo.BeforeEach(func() {
		buf = &bytes.Buffer{}
		Configure(buf, "debug", "json")
	})

	ginkgo.It("accumulates fields across With calls", func() {
		ctx := With(context.Background(), "trace_id", "t-1")
		ctx = With(ctx, "user_id", 7)

		From(ctx).Info("hello")

		var line map[string]interface{}
		gomega.Expect(json.Unmarshal(buf.Bytes(), &line)).To(gomega.Succeed())
		gomega.Expect(line).To(gomega.HaveKeyWithValue("trace_id", "t-1"))
		gomega.Expect(line).To(gomega.HaveKeyWithValue("user_id", float64(7)))
	})

	ginkgo.It("falls back when the context has no logger", func() {
		fallback := Discard()

		gomega.Expect(FromOr(context.Background(), fallback)).To(gomega.BeIdenticalTo(fallback))
	})

	ginkgo.It("returns the stored logger", func() {
		stored := Discard()

		gomega.Expect(From(Into(context.Background(), stored))).To(gomega.BeIdenticalTo(stored))
	})

	ginkgo.It("filters below the configured level", func() {
		Configure(buf, "warn", "text")

		LoggerWrapper().Info("quiet")
		LoggerWrapper().Warn("loud")

		gomega.Expect(buf.String()).ToNot(gomega.ContainSubstring("quiet"))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring("loud"))
	})
})
