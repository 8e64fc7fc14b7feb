package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	"github.com/frahmantamala/projecthub/internal/user"
	"github.com/frahmantamala/projecthub/internal/user/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type stubPermissions struct{}

func (stubPermissions) GetUserWithPermissions(_ context.Context, id int64) (*auth.User, error) {
	return &auth.User{ID: id, Permissions: []string{auth.PermReportCreate}}, nil
}

var _ = Describe("Service", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     = context.Background()
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		service = user.NewService(postgres.NewUserRepository(db), stubPermissions{}, bcrypt.MinCost, logger.Discard())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	createUser := func(email string) *user.User {
		u, err := service.Create(ctx, user.CreateUserDTO{FirstName: "Ann", LastName: "Lee", Email: email, Password: "password123"})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Create", func() {
		It("hashes the password and defaults the role", func() {
			u := createUser("Ann@Example.com")
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.Email).To(Equal("ann@example.com"))
			Expect(u.Role).To(Equal(auth.RoleEmployee))
			Expect(u.IsActive).To(BeTrue())
			Expect(auth.VerifyPassword(u.PasswordHash, "password123")).To(Succeed())
		})

		It("rejects a duplicate email with 409", func() {
			createUser("ann@example.com")
			_, err := service.Create(ctx, user.CreateUserDTO{FirstName: "Other", Email: "ann@example.com", Password: "password123"})
			Expect(errors.Is(err, user.ErrEmailTaken)).To(BeTrue())
		})

		It("validates role and password length", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{FirstName: "X", Email: "x@example.com", Password: "short", Role: "owner"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("password"))
		})
	})

	Describe("List", func() {
		It("paginates and searches", func() {
			for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
				createUser(e)
			}

			page, err := service.List(ctx, user.ListFilter{Page: pagination.New(2, 2)})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Pagination.TotalItems).To(Equal(int64(3)))
			Expect(page.Pagination.TotalPages).To(Equal(2))
			Expect(page.Pagination.CurrentPage).To(Equal(2))

			page, err = service.List(ctx, user.ListFilter{Search: "B@EX", Page: pagination.New(1, 10)})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Email).To(Equal("b@example.com"))
		})
	})

	Describe("Update", func() {
		It("applies only provided fields", func() {
			u := createUser("ann@example.com")
			name := "Annie"
			updated, err := service.Update(ctx, u.ID, user.UpdateUserDTO{FirstName: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Annie"))
			Expect(updated.LastName).To(Equal("Lee"))
			Expect(updated.FullName).To(Equal("Annie Lee"))
		})

		It("refuses to take another user's email", func() {
			createUser("ann@example.com")
			b := createUser("bob@example.com")
			email := "ann@example.com"
			_, err := service.Update(ctx, b.ID, user.UpdateUserDTO{Email: &email})
			Expect(errors.Is(err, user.ErrEmailTaken)).To(BeTrue())
		})
	})

	Describe("Me and Delete", func() {
		It("includes effective permissions on the profile", func() {
			u := createUser("ann@example.com")
			me, err := service.Me(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Permissions).To(ContainElement(auth.PermReportCreate))
		})

		It("does not let users delete themselves", func() {
			u := createUser("ann@example.com")
			Expect(service.Delete(ctx, u.ID, u.ID)).To(HaveOccurred())
		})

		It("deletes other users and reports 404 afterwards", func() {
			u := createUser("ann@example.com")
			Expect(service.Delete(ctx, u.ID, 999)).To(Succeed())
			_, err := service.GetByID(ctx, u.ID)
			Expect(errors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})
})
