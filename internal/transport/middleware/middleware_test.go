package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/projecthub/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("CORS", func() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ginkgo.It("answers preflight requests without calling the handler", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		CORS("https://app.example.com")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("https://app.example.com"))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(gomega.ContainSubstring("Authorization"))
	})

	ginkgo.It("does not echo an unknown origin", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		CORS("https://app.example.com, https://admin.example.com")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTeapot))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.BeEmpty())
	})

	ginkgo.It("allows any origin when configured with a wildcard", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		CORS("*")(next).ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("http://localhost:3000"))
	})
})

var _ = ginkgo.Describe("RequestID", func() {
	ginkgo.It("echoes the caller's trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		rec := httptest.NewRecorder()

		RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get(TraceHeader)).To(gomega.Equal("trace-123"))
	})

	ginkgo.It("generates one when the caller sends none", func() {
		rec := httptest.NewRecorder()
		RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Header().Get(TraceHeader)).ToNot(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("Recovery", func() {
	ginkgo.It("turns a panic into a generic 500", func() {
		rec := httptest.NewRecorder()
		h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("db password leaked in panic")
		}))

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("internal server error"))
		gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("password"))
	})

	ginkgo.It("lets http.ErrAbortHandler through", func() {
		h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		gomega.Expect(func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(gomega.PanicWith(http.ErrAbortHandler))
	})
})

var _ = ginkgo.Describe("Logging", func() {
	ginkgo.It("leaves the request body readable for the handler", func() {
		var seen []byte
		h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))
		body := `{"email":"a@b.c","password":"hunter2"}`
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

		gomega.Expect(string(seen)).To(gomega.Equal(body))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
	})

	ginkgo.It("masks sensitive keys at any depth", func() {
		out := filterBody([]byte(`{"user":{"email":"a@b.c","password":"x"},"refreshToken":"y","items":[{"api_key":"z"}]}`))

		var decoded map[string]interface{}
		gomega.Expect(json.Unmarshal([]byte(out), &decoded)).To(gomega.Succeed())
		gomega.Expect(decoded["refreshToken"]).To(gomega.Equal("[FILTERED]"))
		gomega.Expect(decoded["user"]).To(gomega.HaveKeyWithValue("password", "[FILTERED]"))
		gomega.Expect(decoded["user"]).To(gomega.HaveKeyWithValue("email", "a@b.c"))
		gomega.Expect(decoded["items"].([]interface{})[0]).To(gomega.HaveKeyWithValue("api_key", "[FILTERED]"))
	})

	ginkgo.It("masks sensitive headers", func() {
		headers := http.Header{"Authorization": {"Bearer abc"}, "Accept": {"application/json"}}

		filtered := filterHeaders(headers)

		gomega.Expect(filtered).To(gomega.HaveKeyWithValue("Authorization", "[FILTERED]"))
		gomega.Expect(filtered).To(gomega.HaveKeyWithValue("Accept", "application/json"))
	})

	ginkgo.It("truncates oversized bodies", func() {
		gomega.Expect(filterBody(bytes.Repeat([]byte("a"), maxLoggedBody+1))).To(gomega.Equal("[TRUNCATED]"))
	})

	ginkgo.It("caps the captured response body", func() {
		var buf bytes.Buffer
		lb := &limitedBuffer{buf: &buf, max: 4}

		n, err := lb.Write([]byte("abcdef"))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(n).To(gomega.Equal(6))
		gomega.Expect(buf.String()).To(gomega.Equal("abcd"))
	})
})

var _ = ginkgo.Describe("Metrics", func() {
	scrape := func(m *Metrics) string {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return rec.Body.String()
	}

	ginkgo.It("labels requests by route pattern rather than raw path", func() {
		m := NewMetrics()
		r := chi.NewRouter()
		r.Use(m.Middleware("/metrics"))
		r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {})
		r.Get("/missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })

		for _, path := range []string{"/tasks/1", "/tasks/2", "/missing"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		body := scrape(m)
		gomega.Expect(body).To(gomega.ContainSubstring(`projecthub_http_requests_total{method="GET",route="/tasks/{id}",status="200"} 2`))
		gomega.Expect(body).To(gomega.ContainSubstring(`projecthub_http_requests_total{method="GET",route="/missing",status="404"} 1`))
		gomega.Expect(body).To(gomega.ContainSubstring("go_goroutines"))
	})

	ginkgo.It("skips the metrics endpoint itself", func() {
		m := NewMetrics()
		h := m.Middleware("/metrics")(m.Handler())

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

		gomega.Expect(scrape(m)).ToNot(gomega.ContainSubstring(`projecthub_http_requests_total{`))
	})
})

var _ = ginkgo.Describe("UserContext", func() {
	ginkgo.It("passes anonymous requests through", func() {
		called := false
		UserContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).
			ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(called).To(gomega.BeTrue())
	})
})
