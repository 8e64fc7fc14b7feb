package training_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/internal/training"
	"github.com/frahmantamala/projecthub/internal/training/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTraining(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Training Suite")
}

type recordingNotifier struct {
	mails []notification.Mail
}

func (r *recordingNotifier) Notify(_ context.Context, m notification.Mail) {
	r.mails = append(r.mails, m)
}

func progress(n int) training.ProgressDTO {
	return training.ProgressDTO{Progress: &n}
}

var _ = Describe("Service", func() {
	var (
		db       *gorm.DB
		service  *training.Service
		notifier *recordingNotifier
		ctx      = context.Background()
		ann, ben int64
	)

	seedUser := func(first, email string) int64 {
		row := &userDatamodel.User{FirstName: first, Email: email, PasswordHash: "x", Role: "employee", IsActive: true}
		Expect(db.Create(row).Error).To(Succeed())
		return row.ID
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		notifier = &recordingNotifier{}
		service = training.NewService(postgres.NewTrainingRepository(db), coreuser.NewDirectory(db), notifier, logger.Discard())
		ann = seedUser("Ann", "ann@example.com")
		ben = seedUser("Ben", "ben@example.com")
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	create := func(participants ...int64) *training.Training {
		t, err := service.Create(ctx, training.CreateTrainingDTO{
			Title:          "Working at height",
			StartDate:      datetime.NewDate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
			ParticipantIDs: participants,
		})
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("creates a scheduled training with participants", func() {
		t := create(ann, ben, ann)
		Expect(t.Status).To(Equal(training.StatusScheduled))
		Expect(t.Progress).To(BeZero())
		Expect(t.Participants).To(HaveLen(2))
	})

	Describe("UpdateProgress", func() {
		It("moves a scheduled training in progress", func() {
			t := create(ann)
			updated, err := service.UpdateProgress(ctx, t.ID, progress(40))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(training.StatusInProgress))
			Expect(notifier.mails).To(BeEmpty())
		})

		It("completes at 100 and mails participants once", func() {
			t := create(ann, ben)
			updated, err := service.UpdateProgress(ctx, t.ID, progress(100))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(training.StatusCompleted))
			Expect(notifier.mails).To(HaveLen(1))
			Expect(notifier.mails[0].To).To(ConsistOf("ann@example.com", "ben@example.com"))

			_, err = service.UpdateProgress(ctx, t.ID, progress(100))
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.mails).To(HaveLen(1))
		})

		DescribeTable("rejects values outside 0..100",
			func(dto training.ProgressDTO) {
				t := create()
				_, err := service.UpdateProgress(ctx, t.ID, dto)
				Expect(err).To(HaveOccurred())
			},
			Entry("negative", progress(-1)),
			Entry("above 100", progress(101)),
			Entry("missing", training.ProgressDTO{}),
		)
	})

	Describe("participants", func() {
		It("rejects a duplicate participant with 409", func() {
			t := create(ann)
			_, err := service.AddParticipant(ctx, t.ID, training.ParticipantDTO{UserID: ann})
			Expect(errors.Is(err, training.ErrAlreadyParticipant)).To(BeTrue())
		})

		It("adds and removes participants", func() {
			t := create()
			added, err := service.AddParticipant(ctx, t.ID, training.ParticipantDTO{UserID: ben})
			Expect(err).NotTo(HaveOccurred())
			Expect(added.Participants).To(HaveLen(1))

			removed, err := service.RemoveParticipant(ctx, t.ID, ben)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed.Participants).To(BeEmpty())

			_, err = service.RemoveParticipant(ctx, t.ID, ben)
			Expect(errors.Is(err, training.ErrNotParticipant)).To(BeTrue())
		})
	})

	It("deletes the training and its participants", func() {
		t := create(ann)
		Expect(service.Delete(ctx, t.ID)).To(Succeed())
		_, err := service.Get(ctx, t.ID)
		Expect(errors.Is(err, training.ErrNotFound)).To(BeTrue())
	})
})
