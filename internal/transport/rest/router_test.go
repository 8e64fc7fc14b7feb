package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/client"
	"github.com/frahmantamala/projecthub/internal/document"
	"github.com/frahmantamala/projecthub/internal/leave"
	"github.com/frahmantamala/projecthub/internal/messaging"
	"github.com/frahmantamala/projecthub/internal/project"
	"github.com/frahmantamala/projecthub/internal/report"
	"github.com/frahmantamala/projecthub/internal/task"
	"github.com/frahmantamala/projecthub/internal/team"
	"github.com/frahmantamala/projecthub/internal/training"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/internal/transport/swagger"
	"github.com/frahmantamala/projecthub/internal/user"
	"github.com/frahmantamala/projecthub/internal/worklog"
	"github.com/frahmantamala/projecthub/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

const openAPIPath = "../../../api/openapi.yml"

// fullHandlers mounts every route. The services are nil, so only requests rejected before the
// service layer can be served.
func fullHandlers() Handlers {
	lg := logger.Discard()
	return Handlers{
		Health:       NewHealthHandler(downPinger{}, nil),
		Auth:         auth.NewHandler(nil),
		RBAC:         auth.NewRBACAuthorization(lg),
		Users:        user.NewHandler(nil),
		Projects:     project.NewHandler(nil),
		Tasks:        task.NewHandler(nil),
		Teams:        team.NewHandler(nil),
		Clients:      client.NewHandler(nil),
		Leaves:       leave.NewHandler(nil),
		WorkLogs:     worklog.NewHandler(nil),
		Trainings:    training.NewHandler(nil),
		Reports:      report.NewHandler(nil),
		HSEReports:   report.NewHandler(nil),
		Documents:    document.NewHandler(nil),
		HSEDocuments: document.NewHandler(nil),
		Messages:     messaging.NewHandler(nil),
		Hub:          messaging.NewHub("*", lg),
		Metrics:      middleware.NewMetrics(),
	}
}

var _ = ginkgo.Describe("Router", func() {
	var router *chi.Mux

	ginkgo.BeforeEach(func() {
		router = NewRouter(fullHandlers(), RouterConfig{OpenAPIPath: openAPIPath}, logger.Discard())
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	ginkgo.It("serves public routes without a token", func() {
		rec := serve(http.MethodGet, "/api/ping")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Header().Get(middleware.TraceHeader)).ToNot(gomega.BeEmpty())
	})

	ginkgo.DescribeTable("rejects protected routes without a token",
		func(method, path string) {
			gomega.Expect(serve(method, path).Code).To(gomega.Equal(http.StatusUnauthorized))
		},
		ginkgo.Entry("profile", http.MethodGet, "/api/users/me"),
		ginkgo.Entry("projects", http.MethodGet, "/api/projects"),
		ginkgo.Entry("hse reports", http.MethodPost, "/api/hse/reports"),
		ginkgo.Entry("document upload", http.MethodPost, "/api/documents"),
		ginkgo.Entry("messages", http.MethodGet, "/api/messages"),
		ginkgo.Entry("websocket", http.MethodGet, "/api/messages/ws"),
	)

	ginkgo.It("exposes request metrics", func() {
		serve(http.MethodGet, "/api/ping")

		rec := serve(http.MethodGet, "/metrics")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`route="/api/ping"`))
	})

	ginkgo.It("serves the OpenAPI document", func() {
		rec := serve(http.MethodGet, "/openapi.yml")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("openapi: 3.0.3"))
	})

	ginkgo.It("documents exactly the routes it mounts", func() {
		doc, err := swagger.Load(context.Background(), openAPIPath)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		mounted := map[string]bool{}
		err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, "/api/") {
				return nil
			}
			route = strings.TrimSuffix(route, "/")
			mounted[method+" "+route] = true
			return nil
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		documented := map[string]bool{}
		for path, item := range doc.Paths.Map() {
			for method := range item.Operations() {
				documented[method+" "+path] = true
			}
		}

		gomega.Expect(mounted).To(gomega.Equal(documented))
	})
})
