package summary_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	worklogDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/internal/summary"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestSummary(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Summary Suite")
}

type recordingNotifier struct {
	mu    sync.Mutex
	mails []notification.Mail
}

func (r *recordingNotifier) Notify(_ context.Context, m notification.Mail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mails = append(r.mails, m)
}

type failingStats struct{}

func (failingStats) WeeklyStats(context.Context, time.Time) (map[int64]notification.WeeklyStats, error) {
	return nil, errors.New("db down")
}

var _ = Describe("Weekly summary", func() {
	var (
		db       *gorm.DB
		stats    *summary.StatsRepository
		notifier *recordingNotifier
		ctx      = context.Background()
		now      = time.Now().UTC()
		ann, bob int64
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		sqlxDB, err := dbtest.SQLX(db)
		Expect(err).NotTo(HaveOccurred())
		stats = summary.NewStatsRepository(sqlxDB)
		notifier = &recordingNotifier{}

		annRow := &userDatamodel.User{FirstName: "Ann", Email: "ann@example.com", PasswordHash: "x", Role: "employee", IsActive: true}
		bobRow := &userDatamodel.User{FirstName: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: "employee", IsActive: true}
		gone := &userDatamodel.User{FirstName: "Gone", Email: "gone@example.com", PasswordHash: "x", Role: "employee", IsActive: false}
		Expect(db.Create(annRow).Error).To(Succeed())
		Expect(db.Create(bobRow).Error).To(Succeed())
		Expect(db.Create(gone).Error).To(Succeed())
		ann, bob = annRow.ID, bobRow.ID

		project := &projectDatamodel.Project{Name: "Site", Status: "active", ManagerID: ann}
		Expect(db.Create(project).Error).To(Succeed())

		recent := now.Add(-2 * 24 * time.Hour)
		old := now.Add(-10 * 24 * time.Hour)
		tasks := []taskDatamodel.Task{
			{ProjectID: project.ID, Title: "open 1", AssigneeID: &ann, CreatedBy: ann, Status: "todo", Priority: "low"},
			{ProjectID: project.ID, Title: "open 2", AssigneeID: &ann, CreatedBy: ann, Status: "review", Priority: "low"},
			{ProjectID: project.ID, Title: "done recently", AssigneeID: &ann, CreatedBy: ann, Status: "done", Priority: "low", CompletedAt: &recent},
			{ProjectID: project.ID, Title: "done long ago", AssigneeID: &ann, CreatedBy: ann, Status: "done", Priority: "low", CompletedAt: &old},
			{ProjectID: project.ID, Title: "unassigned", CreatedBy: ann, Status: "todo", Priority: "low"},
		}
		Expect(db.Create(&tasks).Error).To(Succeed())

		logs := []worklogDatamodel.WorkLog{
			{UserID: bob, ProjectID: project.ID, Date: recent, Hours: 3.5},
			{UserID: bob, ProjectID: project.ID, Date: recent, Hours: 4},
			{UserID: bob, ProjectID: project.ID, Date: old, Hours: 8},
		}
		Expect(db.Create(&logs).Error).To(Succeed())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("aggregates open tasks, recent completions and recent hours", func() {
		got, err := stats.WeeklyStats(ctx, now.Add(-summary.Window))
		Expect(err).NotTo(HaveOccurred())
		Expect(got[ann]).To(Equal(notification.WeeklyStats{OpenTasks: 2, CompletedTasks: 1}))
		Expect(got[bob].HoursLogged).To(BeNumerically("~", 7.5, 0.001))
	})

	It("mails every active user", func() {
		job := summary.NewJob(stats, coreuser.NewDirectory(db), notifier, logger.Discard())
		sent, err := job.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))
		Expect(notifier.mails).To(HaveLen(2))
		Expect(notifier.mails[0].To).To(ConsistOf("ann@example.com"))
		Expect(notifier.mails[0].HTML).To(ContainSubstring("Open tasks assigned to you: 2"))
		Expect(notifier.mails[1].HTML).To(ContainSubstring("7.5"))
	})

	It("reports aggregate failures without mailing", func() {
		job := summary.NewJob(failingStats{}, coreuser.NewDirectory(db), notifier, logger.Discard())
		_, err := job.Run(ctx)
		Expect(err).To(MatchError(ContainSubstring("db down")))
		Expect(notifier.mails).To(BeEmpty())
	})

	It("rejects an invalid cron spec", func() {
		job := summary.NewJob(stats, coreuser.NewDirectory(db), notifier, logger.Discard())
		_, err := summary.NewScheduler("every monday", job, logger.Discard())
		Expect(err).To(HaveOccurred())

		s, err := summary.NewScheduler("0 8 * * 1", job, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		s.Start()
		Expect(s.Stop(ctx)).To(Succeed())
	})
})
