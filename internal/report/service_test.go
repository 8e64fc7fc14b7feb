package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/events"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/internal/report"
	"github.com/frahmantamala/projecthub/internal/report/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

type recordingNotifier struct {
	mails []notification.Mail
}

func (r *recordingNotifier) Notify(_ context.Context, m notification.Mail) {
	r.mails = append(r.mails, m)
}

var _ = Describe("Service", func() {
	var (
		db        *gorm.DB
		repo      *postgres.ReportRepository
		general   *report.Service
		hse       *report.Service
		publisher *recordingPublisher
		ctx       = context.Background()
		reporter  = &auth.User{ID: 7, Role: auth.RoleEmployee}
		admin     = &auth.User{ID: 1, Role: auth.RoleAdmin}
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		publisher = &recordingPublisher{}
		repo = postgres.NewReportRepository(db)
		general = report.NewService(report.CategoryGeneral, repo, publisher, logger.Discard())
		hse = report.NewService(report.CategoryHSE, repo, publisher, logger.Discard())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	file := func(svc *report.Service, title, severity string) *report.Report {
		r, err := svc.Create(ctx, report.CreateReportDTO{Title: title, Severity: severity}, reporter)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	It("files an open report and publishes report.filed", func() {
		r := file(hse, "Loose scaffold", report.SeverityHigh)
		Expect(r.Status).To(Equal(report.StatusOpen))
		Expect(r.Category).To(Equal(report.CategoryHSE))
		Expect(r.ReportedBy).To(Equal(reporter.ID))

		Expect(publisher.events).To(HaveLen(1))
		filed, ok := publisher.events[0].(*events.ReportFiledEvent)
		Expect(ok).To(BeTrue())
		Expect(filed.ReportID).To(Equal(r.ID))
		Expect(filed.Severity).To(Equal(report.SeverityHigh))
	})

	It("defaults severity to low and rejects unknown severities", func() {
		r := file(general, "Broken chair", "")
		Expect(r.Severity).To(Equal(report.SeverityLow))

		_, err := general.Create(ctx, report.CreateReportDTO{Title: "x", Severity: "extreme"}, reporter)
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown projects", func() {
		missing := int64(404)
		_, err := general.Create(ctx, report.CreateReportDTO{Title: "x", ProjectID: &missing}, reporter)
		Expect(errors.Is(err, report.ErrProjectNotFound)).To(BeTrue())
	})

	It("keeps categories apart", func() {
		r := file(hse, "Spill", report.SeverityMedium)
		file(general, "Printer jam", report.SeverityLow)

		_, err := general.Get(ctx, r.ID)
		Expect(errors.Is(err, report.ErrNotFound)).To(BeTrue())

		page, err := hse.List(ctx, report.ListFilter{Page: pagination.New(1, 10)})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Data).To(HaveLen(1))
		Expect(page.Pagination.TotalItems).To(Equal(int64(1)))
	})

	It("filters by severity and project", func() {
		project := &projectDatamodel.Project{Name: "Site", Status: "active", ManagerID: admin.ID}
		Expect(db.Create(project).Error).To(Succeed())
		_, err := hse.Create(ctx, report.CreateReportDTO{Title: "On site", Severity: report.SeverityCritical, ProjectID: &project.ID}, reporter)
		Expect(err).NotTo(HaveOccurred())
		file(hse, "Elsewhere", report.SeverityCritical)
		file(hse, "Minor", report.SeverityLow)

		page, err := hse.List(ctx, report.ListFilter{Severity: report.SeverityCritical})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Data).To(HaveLen(2))

		page, err = hse.List(ctx, report.ListFilter{ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Data).To(HaveLen(1))
		Expect(page.Data[0].Title).To(Equal("On site"))
	})

	It("closes a report and records who closed it", func() {
		r := file(hse, "Trip hazard", report.SeverityMedium)
		closed, err := hse.Close(ctx, r.ID, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(closed.Status).To(Equal(report.StatusClosed))
		Expect(*closed.ClosedBy).To(Equal(admin.ID))
		Expect(closed.ClosedAt).NotTo(BeNil())

		status := report.StatusInvestigating
		reopened, err := hse.Update(ctx, r.ID, report.UpdateReportDTO{Status: &status})
		Expect(err).NotTo(HaveOccurred())
		Expect(reopened.ClosedBy).To(BeNil())
	})

	It("does not allow closing through update", func() {
		r := file(general, "Noise", report.SeverityLow)
		status := report.StatusClosed
		_, err := general.Update(ctx, r.ID, report.UpdateReportDTO{Status: &status})
		Expect(err).To(HaveOccurred())
	})

	It("includes documents and detaches them on delete", func() {
		r := file(hse, "Gas leak", report.SeverityCritical)
		doc := &documentDatamodel.Document{Category: report.CategoryHSE, Name: "photo", URLs: []string{"memory://a"}, UploadedBy: reporter.ID, ReportID: &r.ID}
		Expect(db.Create(doc).Error).To(Succeed())

		got, err := hse.Get(ctx, r.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Documents).To(HaveLen(1))
		Expect(got.Documents[0].URLs).To(ConsistOf("memory://a"))

		Expect(hse.Delete(ctx, r.ID)).To(Succeed())

		var kept documentDatamodel.Document
		Expect(db.First(&kept, doc.ID).Error).To(Succeed())
		Expect(kept.ReportID).To(BeNil())

		Expect(errors.Is(hse.Delete(ctx, r.ID), report.ErrNotFound)).To(BeTrue())
	})
})

var _ = Describe("FiledNotifier", func() {
	var (
		db       *gorm.DB
		notifier *recordingNotifier
		filed    *report.FiledNotifier
		ctx      = context.Background()
	)

	seed := func(email, role string, active bool) int64 {
		row := &userDatamodel.User{FirstName: "Lee", Email: email, PasswordHash: "x", Role: role, IsActive: active}
		Expect(db.Create(row).Error).To(Succeed())
		return row.ID
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		notifier = &recordingNotifier{}
		filed = report.NewFiledNotifier(coreuser.NewDirectory(db), notifier, logger.Discard())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("mails active admins and managers except the reporter", func() {
		seed("admin@example.com", auth.RoleAdmin, true)
		seed("manager@example.com", auth.RoleManager, true)
		seed("gone@example.com", auth.RoleManager, false)
		seed("staff@example.com", auth.RoleEmployee, true)
		reporterID := seed("boss@example.com", auth.RoleAdmin, true)

		err := filed.Handle(ctx, events.NewReportFiledEvent(9, report.CategoryHSE, "Fire exit blocked", report.SeverityHigh, reporterID))
		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.mails).To(HaveLen(1))
		Expect(notifier.mails[0].To).To(ConsistOf("admin@example.com", "manager@example.com"))
	})

	It("sends nothing without recipients", func() {
		err := filed.Handle(ctx, events.NewReportFiledEvent(9, report.CategoryGeneral, "x", report.SeverityLow, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.mails).To(BeEmpty())
	})
})
