package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/leave"
	"github.com/frahmantamala/projecthub/internal/leave/postgres"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

type recordingNotifier struct {
	mails []notification.Mail
}

func (r *recordingNotifier) Notify(_ context.Context, m notification.Mail) {
	r.mails = append(r.mails, m)
}

func date(day int) datetime.Date {
	return datetime.NewDate(time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC))
}

var _ = Describe("Service", func() {
	var (
		db       *gorm.DB
		service  *leave.Service
		notifier *recordingNotifier
		ctx      = context.Background()
		employee *auth.User
		other    *auth.User
		manager  *auth.User
	)

	seedUser := func(email, role string) *auth.User {
		row := &userDatamodel.User{FirstName: "Pat", Email: email, PasswordHash: "x", Role: role, IsActive: true}
		Expect(db.Create(row).Error).To(Succeed())
		return &auth.User{ID: row.ID, Email: email, Role: role, Permissions: auth.EffectivePermissions(role, nil)}
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		notifier = &recordingNotifier{}
		service = leave.NewService(postgres.NewLeaveRepository(db), coreuser.NewDirectory(db), notifier, logger.Discard())
		employee = seedUser("e@example.com", auth.RoleEmployee)
		other = seedUser("o@example.com", auth.RoleEmployee)
		manager = seedUser("m@example.com", auth.RoleManager)
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	request := func(u *auth.User) *leave.Leave {
		l, err := service.Create(ctx, leave.CreateLeaveDTO{Type: leave.TypeAnnual, StartDate: date(6), EndDate: date(10), Reason: "trip"}, u)
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	It("creates a pending request and counts its days", func() {
		l := request(employee)
		Expect(l.Status).To(Equal(leave.StatusPending))
		Expect(l.UserID).To(Equal(employee.ID))
		Expect(l.Days).To(Equal(5))
	})

	It("rejects an end date before the start date", func() {
		_, err := service.Create(ctx, leave.CreateLeaveDTO{Type: leave.TypeSick, StartDate: date(10), EndDate: date(9)}, employee)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("endDate"))
	})

	It("accepts a single-day leave", func() {
		l, err := service.Create(ctx, leave.CreateLeaveDTO{Type: leave.TypeSick, StartDate: date(9), EndDate: date(9)}, employee)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Days).To(Equal(1))
	})

	It("lists own requests for employees and all for approvers", func() {
		request(employee)
		request(other)

		own, err := service.List(ctx, leave.ListFilter{}, employee)
		Expect(err).NotTo(HaveOccurred())
		Expect(own.Data).To(HaveLen(1))

		all, err := service.List(ctx, leave.ListFilter{}, manager)
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Data).To(HaveLen(2))
	})

	Describe("Review", func() {
		It("records the decision and mails the requester", func() {
			l := request(employee)
			reviewed, err := service.Review(ctx, l.ID, leave.ReviewDTO{Status: leave.StatusApproved, Note: "enjoy"}, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.Status).To(Equal(leave.StatusApproved))
			Expect(*reviewed.ReviewedBy).To(Equal(manager.ID))
			Expect(reviewed.ReviewedAt).NotTo(BeNil())

			Expect(notifier.mails).To(HaveLen(1))
			Expect(notifier.mails[0].To).To(ConsistOf("e@example.com"))
			Expect(notifier.mails[0].HTML).To(ContainSubstring("enjoy"))
		})

		It("only accepts approved or rejected", func() {
			l := request(employee)
			_, err := service.Review(ctx, l.ID, leave.ReviewDTO{Status: leave.StatusPending}, manager)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ownership", func() {
		It("hides other people's requests from employees", func() {
			l := request(other)
			_, err := service.Get(ctx, l.ID, employee)
			Expect(errors.Is(err, leave.ErrNotFound)).To(BeTrue())
		})

		It("forbids approvers from editing someone else's request", func() {
			l := request(employee)
			reason := "changed"
			_, err := service.Update(ctx, l.ID, leave.UpdateLeaveDTO{Reason: &reason}, manager)
			Expect(errors.Is(err, internal.ErrUnauthorizedAccess)).To(BeTrue())
		})

		It("freezes a request once reviewed", func() {
			l := request(employee)
			_, err := service.Review(ctx, l.ID, leave.ReviewDTO{Status: leave.StatusRejected}, manager)
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(ctx, l.ID, employee)
			Expect(errors.Is(err, leave.ErrNotPending)).To(BeTrue())
		})

		It("validates the date range against stored values on update", func() {
			l := request(employee)
			end := date(1)
			_, err := service.Update(ctx, l.ID, leave.UpdateLeaveDTO{EndDate: &end}, employee)
			Expect(err).To(HaveOccurred())
		})
	})
})
