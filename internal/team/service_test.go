package team_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/team"
	"github.com/frahmantamala/projecthub/internal/team/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTeam(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Team Suite")
}

var _ = Describe("Service", func() {
	var (
		db      *gorm.DB
		service *team.Service
		ctx     = context.Background()
		alice   int64
		bob     int64
	)

	seedUser := func(first, email string) int64 {
		row := &userDatamodel.User{FirstName: first, LastName: "Smith", Email: email, PasswordHash: "x", Role: "employee", IsActive: true}
		Expect(db.Create(row).Error).To(Succeed())
		return row.ID
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		service = team.NewService(postgres.NewTeamRepository(db), coreuser.NewDirectory(db), logger.Discard())
		alice = seedUser("Alice", "alice@example.com")
		bob = seedUser("Bob", "bob@example.com")
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("creates a team with de-duplicated members", func() {
		t, err := service.Create(ctx, team.CreateTeamDTO{Name: "Crew", LeadID: &alice, MemberIDs: []int64{alice, bob, alice}})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Members).To(HaveLen(2))
		Expect(t.Members[0].FullName).To(Equal("Alice Smith"))
	})

	It("returns not found for an unknown project", func() {
		missing := int64(77)
		_, err := service.Create(ctx, team.CreateTeamDTO{Name: "Crew", ProjectID: &missing})
		Expect(errors.Is(err, team.ErrProjectNotFound)).To(BeTrue())
	})

	Describe("members", func() {
		var teamID int64

		BeforeEach(func() {
			t, err := service.Create(ctx, team.CreateTeamDTO{Name: "Crew"})
			Expect(err).NotTo(HaveOccurred())
			teamID = t.ID
		})

		It("adds a member once and rejects the duplicate with 409", func() {
			t, err := service.AddMember(ctx, teamID, team.AddMemberDTO{UserID: bob})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Members).To(HaveLen(1))

			_, err = service.AddMember(ctx, teamID, team.AddMemberDTO{UserID: bob})
			Expect(errors.Is(err, team.ErrAlreadyMember)).To(BeTrue())
		})

		It("returns not found for an unknown user", func() {
			_, err := service.AddMember(ctx, teamID, team.AddMemberDTO{UserID: 404})
			Expect(errors.Is(err, team.ErrUserNotFound)).To(BeTrue())
		})

		It("removes a member and reports a missing one", func() {
			_, err := service.AddMember(ctx, teamID, team.AddMemberDTO{UserID: bob})
			Expect(err).NotTo(HaveOccurred())

			t, err := service.RemoveMember(ctx, teamID, bob)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Members).To(BeEmpty())

			_, err = service.RemoveMember(ctx, teamID, bob)
			Expect(errors.Is(err, team.ErrNotMember)).To(BeTrue())
		})
	})

	It("deletes the team together with its memberships", func() {
		t, err := service.Create(ctx, team.CreateTeamDTO{Name: "Crew", MemberIDs: []int64{alice}})
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Delete(ctx, t.ID)).To(Succeed())
		_, err = service.Get(ctx, t.ID)
		Expect(errors.Is(err, team.ErrNotFound)).To(BeTrue())
		Expect(errors.Is(service.Delete(ctx, t.ID), team.ErrNotFound)).To(BeTrue())
	})
})
