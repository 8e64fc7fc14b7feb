package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	created *user.User
	err     error
	lastID  int64
}

func (m *mockService) Create(_ context.Context, dto user.CreateUserDTO) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &user.User{ID: 7, FirstName: dto.FirstName, Email: dto.Email, PasswordHash: "secret-hash"}
	return m.created, nil
}

func (m *mockService) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.lastID = id
	return &user.User{ID: id}, m.err
}

func (m *mockService) Me(_ context.Context, id int64) (*user.User, error) {
	return &user.User{ID: id, Email: "me@example.com"}, m.err
}

func (m *mockService) List(_ context.Context, f user.ListFilter) (pagination.Page[*user.User], error) {
	return pagination.NewPage([]*user.User{{ID: 1}}, f.Page, 1), m.err
}

func (m *mockService) Update(_ context.Context, id int64, _ user.UpdateUserDTO) (*user.User, error) {
	return &user.User{ID: id}, m.err
}

func (m *mockService) Delete(_ context.Context, id, _ int64) error {
	m.lastID = id
	return m.err
}

var _ = Describe("Handler", func() {
	var (
		svc      *mockService
		handler  *user.Handler
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	withUser := func(req *http.Request) *http.Request {
		return req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: 1, Role: auth.RoleAdmin}))
	}

	BeforeEach(func() {
		svc = &mockService{}
		handler = user.NewHandler(svc)
		router = chi.NewRouter()
		router.Get("/api/users/me", handler.GetCurrentUser)
		router.Get("/api/users", handler.List)
		router.Post("/api/users", handler.Create)
		router.Get("/api/users/{id}", handler.Get)
		router.Delete("/api/users/{id}", handler.Delete)
		recorder = httptest.NewRecorder()
	})

	It("never serializes the password hash", func() {
		body, _ := json.Marshal(map[string]string{"firstName": "Ann", "email": "ann@example.com", "password": "password123"})
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))))

		Expect(recorder.Code).To(Equal(http.StatusCreated))
		Expect(recorder.Body.String()).NotTo(ContainSubstring("secret-hash"))
		Expect(recorder.Body.String()).To(ContainSubstring(`"firstName":"Ann"`))
	})

	It("maps a duplicate email to 409", func() {
		svc.err = user.ErrEmailTaken
		body, _ := json.Marshal(map[string]string{"firstName": "Ann", "email": "ann@example.com", "password": "password123"})
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))))

		Expect(recorder.Code).To(Equal(http.StatusConflict))
	})

	It("returns the list envelope", func() {
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodGet, "/api/users?page=1&limit=5", nil)))

		Expect(recorder.Code).To(Equal(http.StatusOK))
		var resp map[string]interface{}
		Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKey("data"))
		meta := resp["pagination"].(map[string]interface{})
		Expect(meta["itemsPerPage"]).To(BeEquivalentTo(5))
		Expect(meta["currentPage"]).To(BeEquivalentTo(1))
	})

	It("rejects non-numeric ids", func() {
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodGet, "/api/users/abc", nil)))
		Expect(recorder.Code).To(Equal(http.StatusBadRequest))
	})

	It("serves the current profile", func() {
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodGet, "/api/users/me", nil)))
		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Body.String()).To(ContainSubstring("me@example.com"))
	})

	It("hides unexpected errors behind a generic 500", func() {
		svc.err = context.DeadlineExceeded
		router.ServeHTTP(recorder, withUser(httptest.NewRequest(http.MethodDelete, "/api/users/3", nil)))

		Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		Expect(recorder.Body.String()).To(ContainSubstring("internal server error"))
		Expect(recorder.Body.String()).NotTo(ContainSubstring("deadline"))
	})
})
