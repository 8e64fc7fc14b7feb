package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/gorm"
)

type downPinger struct{}

func (downPinger) PingContext(context.Context) error { return errors.New("connection refused") }

var _ = ginkgo.Describe("HealthHandler", func() {
	var gdb *gorm.DB

	ginkgo.BeforeEach(func() {
		var err error
		gdb, err = dbtest.New()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		dbtest.Close(gdb)
	})

	ginkgo.It("reports healthy with a reachable database and no redis", func() {
		db, err := dbtest.SQLX(gdb)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		rec := httptest.NewRecorder()

		NewHealthHandler(db, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var resp HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp.Status).To(gomega.Equal(HealthHealthy))
		gomega.Expect(resp.Components["postgres"].Status).To(gomega.Equal(HealthHealthy))
		gomega.Expect(resp.Components["redis"].Status).To(gomega.Equal(HealthNotConfigured))
	})

	ginkgo.It("returns 503 when the database is down", func() {
		rec := httptest.NewRecorder()

		NewHealthHandler(downPinger{}, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
		var resp HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp.Components["postgres"].Message).To(gomega.Equal("connection refused"))
	})

	ginkgo.It("answers ping", func() {
		rec := httptest.NewRecorder()

		NewHealthHandler(downPinger{}, nil).Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"OK"`))
	})
})
