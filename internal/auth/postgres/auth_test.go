package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/auth/postgres"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestAuthRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthRepository Suite")
}

var _ = Describe("Repository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository
		ctx  = context.Background()
		u    *userDatamodel.User
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		repo = postgres.NewRepository(db)

		u = &userDatamodel.User{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", PasswordHash: "hash", Role: userDatamodel.RoleEmployee, IsActive: true}
		Expect(db.Create(u).Error).To(Succeed())

		perm := &userDatamodel.Permission{Name: auth.PermDocumentDelete}
		Expect(db.Create(perm).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.UserPermission{UserID: u.ID, PermissionID: perm.ID}).Error).To(Succeed())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("returns credentials by email", func() {
		creds, err := repo.GetCredentials(ctx, "ann@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(creds.UserID).To(Equal(u.ID))
		Expect(creds.PasswordHash).To(Equal("hash"))
		Expect(creds.IsActive).To(BeTrue())
	})

	It("returns ErrUserNotFound for unknown emails", func() {
		_, err := repo.GetCredentials(ctx, "ghost@example.com")
		Expect(err).To(MatchError(auth.ErrUserNotFound))
	})

	It("merges role permissions with granted rows", func() {
		user, err := repo.GetUserWithPermissions(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.FirstName).To(Equal("Ann"))
		Expect(user.Permissions).To(ContainElements(auth.PermDocumentCreate, auth.PermReportCreate, auth.PermDocumentDelete))
	})

	It("hides inactive users", func() {
		Expect(db.Model(u).Update("is_active", false).Error).To(Succeed())
		_, err := repo.GetUserWithPermissions(ctx, u.ID)
		Expect(err).To(MatchError(auth.ErrUserNotFound))
	})
})
