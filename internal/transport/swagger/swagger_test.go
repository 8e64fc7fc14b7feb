package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Swagger Suite")
}

var _ = ginkgo.Describe("Load", func() {
	ginkgo.It("accepts the bundled document", func() {
		doc, err := Load(context.Background(), "../../../api/openapi.yml")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(doc.Info.Title).To(gomega.Equal("ProjectHub API"))
		gomega.Expect(doc.Components.SecuritySchemes).To(gomega.HaveKey("bearerAuth"))
		gomega.Expect(doc.Paths.Value("/api/messages/{id}")).ToNot(gomega.BeNil())
	})

	ginkgo.It("rejects a document with an undeclared path parameter", func() {
		path := filepath.Join(ginkgo.GinkgoT().TempDir(), "bad.yml")
		gomega.Expect(os.WriteFile(path, []byte(`openapi: 3.0.3
info: {title: bad, version: "1"}
paths:
  /things/{id}:
    get:
      responses:
        "200": {description: ok}
`), 0o600)).To(gomega.Succeed())

		_, err := Load(context.Background(), path)

		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("validate openapi document")))
	})

	ginkgo.It("fails on a missing file", func() {
		_, err := Load(context.Background(), "does-not-exist.yml")

		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("Handler", func() {
	ginkgo.It("serves the UI index", func() {
		rec := httptest.NewRecorder()

		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(SpecURL))
	})
})
