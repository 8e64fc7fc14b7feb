package worklog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	"github.com/frahmantamala/projecthub/internal/worklog"
	"github.com/frahmantamala/projecthub/internal/worklog/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestWorkLog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WorkLog Suite")
}

func day(d int) datetime.Date {
	return datetime.NewDate(time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC))
}

var _ = Describe("Service", func() {
	var (
		db       *gorm.DB
		service  *worklog.Service
		ctx      = context.Background()
		admin    = &auth.User{ID: 1, Role: auth.RoleAdmin}
		manager  = &auth.User{ID: 2, Role: auth.RoleManager, Permissions: auth.EffectivePermissions(auth.RoleManager, nil)}
		alice    = &auth.User{ID: 3, Role: auth.RoleEmployee}
		bob      = &auth.User{ID: 4, Role: auth.RoleEmployee}
		depot    int64
		office   int64
		depotJob int64
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		service = worklog.NewService(postgres.NewWorkLogRepository(db), logger.Discard())

		p1 := &projectDatamodel.Project{Name: "Depot", ManagerID: manager.ID, Status: "active"}
		p2 := &projectDatamodel.Project{Name: "Office", ManagerID: manager.ID, Status: "active"}
		Expect(db.Create(p1).Error).To(Succeed())
		Expect(db.Create(p2).Error).To(Succeed())
		depot, office = p1.ID, p2.ID
		t := &taskDatamodel.Task{ProjectID: depot, Title: "Dig", CreatedBy: manager.ID, Status: "todo", Priority: "low"}
		Expect(db.Create(t).Error).To(Succeed())
		depotJob = t.ID
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	logHours := func(u *auth.User, projectID int64, d int, hours float64) *worklog.WorkLog {
		w, err := service.Create(ctx, worklog.CreateWorkLogDTO{ProjectID: projectID, Date: day(d), Hours: hours}, u)
		Expect(err).NotTo(HaveOccurred())
		return w
	}

	Describe("Create", func() {
		It("records hours for the caller", func() {
			w := logHours(alice, depot, 5, 7.5)
			Expect(w.UserID).To(Equal(alice.ID))
			Expect(w.Hours).To(Equal(7.5))
		})

		DescribeTable("rejects hours outside (0, 24]",
			func(hours float64) {
				_, err := service.Create(ctx, worklog.CreateWorkLogDTO{ProjectID: depot, Date: day(5), Hours: hours}, alice)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("hours"))
			},
			Entry("zero", 0.0),
			Entry("negative", -1.0),
			Entry("over a day", 24.5),
		)

		It("accepts exactly 24 hours", func() {
			logHours(alice, depot, 5, 24)
		})

		It("rejects a task from another project", func() {
			_, err := service.Create(ctx, worklog.CreateWorkLogDTO{ProjectID: office, TaskID: &depotJob, Date: day(5), Hours: 1}, alice)
			Expect(errors.Is(err, worklog.ErrTaskMismatch)).To(BeTrue())
		})

		It("lets admins log for someone else", func() {
			w, err := service.Create(ctx, worklog.CreateWorkLogDTO{UserID: &bob.ID, ProjectID: depot, Date: day(5), Hours: 2}, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.UserID).To(Equal(bob.ID))
		})
	})

	It("filters by range and restricts employees to their own logs", func() {
		logHours(alice, depot, 1, 2)
		logHours(alice, depot, 10, 3)
		logHours(bob, depot, 10, 4)

		from, to := day(5).Time, day(15).Time
		page, err := service.List(ctx, worklog.ListFilter{UserID: &bob.ID, From: &from, To: &to}, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Data).To(HaveLen(1))
		Expect(page.Data[0].Hours).To(Equal(3.0))

		all, err := service.List(ctx, worklog.ListFilter{From: &from}, manager)
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Pagination.TotalItems).To(Equal(int64(2)))
	})

	It("sums hours by project", func() {
		logHours(alice, depot, 1, 2)
		logHours(alice, depot, 2, 3)
		logHours(alice, office, 2, 1.5)
		logHours(bob, office, 2, 8)

		own, err := service.Summary(ctx, worklog.SummaryFilter{}, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(own.TotalHours).To(Equal(6.5))
		Expect(own.Projects).To(HaveLen(2))
		Expect(own.Projects[0].ProjectName).To(Equal("Depot"))
		Expect(own.Projects[0].Hours).To(Equal(5.0))

		team, err := service.Summary(ctx, worklog.SummaryFilter{}, manager)
		Expect(err).NotTo(HaveOccurred())
		Expect(team.TotalHours).To(Equal(14.5))
	})

	It("rejects a range that ends before it starts", func() {
		from, to := day(10).Time, day(1).Time
		_, err := service.Summary(ctx, worklog.SummaryFilter{From: &from, To: &to}, alice)
		Expect(err).To(HaveOccurred())
	})

	Describe("ownership", func() {
		It("lets only the owner or an admin change a log", func() {
			w := logHours(alice, depot, 3, 2)
			hours := 4.0

			_, err := service.Update(ctx, w.ID, worklog.UpdateWorkLogDTO{Hours: &hours}, bob)
			Expect(errors.Is(err, worklog.ErrNotFound)).To(BeTrue())

			_, err = service.Update(ctx, w.ID, worklog.UpdateWorkLogDTO{Hours: &hours}, manager)
			Expect(errors.Is(err, internal.ErrUnauthorizedAccess)).To(BeTrue())

			updated, err := service.Update(ctx, w.ID, worklog.UpdateWorkLogDTO{Hours: &hours}, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Hours).To(Equal(4.0))

			Expect(service.Delete(ctx, w.ID, admin)).To(Succeed())
		})
	})
})
