package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		service  *Service
		recorder *httptest.ResponseRecorder
		tokens   AuthTokens
	)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(u)
	})

	ginkgo.BeforeEach(func() {
		tokenGen := NewJWTTokenGenerator("access", "refresh", time.Minute, time.Hour)
		service = NewService(newMockRepository(), tokenGen, bcrypt.MinCost, nil)
		handler = NewHandler(service)
		recorder = httptest.NewRecorder()

		var err error
		tokens, err = service.Authenticate(context.Background(), LoginDTO{Email: "user@example.com", Password: "correct_password"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns tokens as camelCase JSON", func() {
			body, _ := json.Marshal(map[string]string{"email": "user@example.com", "password": "correct_password"})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))

			handler.Login(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var resp map[string]interface{}
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp).To(gomega.HaveKey("accessToken"))
			gomega.Expect(resp).To(gomega.HaveKey("refreshToken"))
		})

		ginkgo.It("returns 401 for bad credentials", func() {
			body, _ := json.Marshal(map[string]string{"email": "user@example.com", "password": "nope"})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))

			handler.Login(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))

			handler.Login(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("rejects requests without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			handler.AuthMiddleware(okHandler).ServeHTTP(recorder, req)
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("loads the user into the context", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			handler.AuthMiddleware(okHandler).ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var u User
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &u)).To(gomega.Succeed())
			gomega.Expect(u.ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("ignores the query token outside websocket routes", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me?token="+tokens.AccessToken, nil)
			handler.AuthMiddleware(okHandler).ServeHTTP(recorder, req)
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("accepts the query token on websocket routes", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/messages/ws?token="+tokens.AccessToken, nil)
			handler.WebsocketAuthMiddleware(okHandler).ServeHTTP(recorder, req)
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		ginkgo.It("forbids users lacking the permission", func() {
			req := httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil)
			req = req.WithContext(ContextWithUser(req.Context(), &User{ID: 1, Role: RoleEmployee, Permissions: EffectivePermissions(RoleEmployee, nil)}))

			service.RBACAuthorization().Middleware(PermDocumentDelete)(okHandler).ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("lets admins through every check", func() {
			req := httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil)
			req = req.WithContext(ContextWithUser(req.Context(), &User{ID: 2, Role: RoleAdmin}))

			service.RBACAuthorization().Middleware(PermDocumentDelete)(okHandler).ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("returns 401 when no user is present", func() {
			req := httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil)
			service.RBACAuthorization().Middleware(PermDocumentDelete)(okHandler).ServeHTTP(recorder, req)
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
