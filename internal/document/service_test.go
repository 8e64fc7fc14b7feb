package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/database/dbtest"
	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	reportDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/report"
	"github.com/frahmantamala/projecthub/internal/document"
	"github.com/frahmantamala/projecthub/internal/document/postgres"
	"github.com/frahmantamala/projecthub/internal/storage"
	"github.com/frahmantamala/projecthub/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestDocument(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Suite")
}

type failingRepo struct {
	*postgres.DocumentRepository
}

func (failingRepo) CreateMany(context.Context, []*document.Document) error {
	return errors.New("disk full")
}

var _ = Describe("Service", func() {
	var (
		db       *gorm.DB
		store    *storage.MemoryStore
		repo     *postgres.DocumentRepository
		service  *document.Service
		ctx      = context.Background()
		uploader = &auth.User{ID: 5, Role: auth.RoleEmployee}
	)

	stored := func(name string) storage.UploadedFile {
		key := "documents/2026/10/" + name
		return storage.UploadedFile{URL: store.Put(key, []byte(name)), Key: key, MimeType: "application/pdf", Size: 3, OriginalName: name}
	}

	newProject := func(name string) int64 {
		p := &projectDatamodel.Project{Name: name, Status: "active", ManagerID: 1}
		Expect(db.Create(p).Error).To(Succeed())
		return p.ID
	}

	newReport := func(category string, projectID *int64) int64 {
		r := &reportDatamodel.Report{Category: category, Title: "Incident", Severity: "low", Status: "open", ReportedBy: 1, ProjectID: projectID}
		Expect(db.Create(r).Error).To(Succeed())
		return r.ID
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		store = storage.NewMemoryStore("")
		repo = postgres.NewDocumentRepository(db)
		service = document.NewService(document.CategoryHSE, repo, store, logger.Discard())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	Describe("Upload", func() {
		It("creates one document per file with a null report when none is given", func() {
			docs, err := service.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{stored("a.pdf"), stored("b.pdf")}}, uploader)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].ReportID).To(BeNil())
			Expect(docs[0].Name).To(Equal("a.pdf"))
			Expect(docs[0].URLs).To(HaveLen(1))
			Expect(docs[1].UploadedBy).To(Equal(uploader.ID))

			var count int64
			Expect(db.Model(&documentDatamodel.Document{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(2)))
		})

		It("requires at least one file", func() {
			_, err := service.Upload(ctx, document.UploadDTO{}, uploader)
			Expect(errors.Is(err, storage.ErrFileRequired)).To(BeTrue())
		})

		It("rejects a report from another category and removes the stored file", func() {
			reportID := newReport("general", nil)
			f := stored("c.pdf")
			_, err := service.Upload(ctx, document.UploadDTO{ReportID: &reportID, Files: []storage.UploadedFile{f}}, uploader)
			Expect(errors.Is(err, document.ErrReportNotFound)).To(BeTrue())
			Expect(store.Has(f.Key)).To(BeFalse())
		})

		It("rejects a report on a different project", func() {
			site, office := newProject("site"), newProject("office")
			reportID := newReport("hse", &site)
			_, err := service.Upload(ctx, document.UploadDTO{ReportID: &reportID, ProjectID: &office, Files: []storage.UploadedFile{stored("d.pdf")}}, uploader)
			Expect(errors.Is(err, document.ErrProjectMismatch)).To(BeTrue())
		})

		It("deletes stored objects when the insert fails", func() {
			failing := document.NewService(document.CategoryHSE, failingRepo{repo}, store, logger.Discard())
			f := stored("e.pdf")
			_, err := failing.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{f}}, uploader)
			Expect(err).To(HaveOccurred())
			Expect(store.Has(f.Key)).To(BeFalse())
		})
	})

	Describe("Attach", func() {
		It("links a document to a report of the same project", func() {
			site := newProject("site")
			reportID := newReport("hse", &site)
			docs, err := service.Upload(ctx, document.UploadDTO{ProjectID: &site, Files: []storage.UploadedFile{stored("f.pdf")}}, uploader)
			Expect(err).NotTo(HaveOccurred())

			doc, err := service.Attach(ctx, docs[0].ID, document.AttachDTO{ReportID: reportID})
			Expect(err).NotTo(HaveOccurred())
			Expect(*doc.ReportID).To(Equal(reportID))
		})

		It("refuses a report on another project", func() {
			site, office := newProject("site"), newProject("office")
			reportID := newReport("hse", &office)
			docs, err := service.Upload(ctx, document.UploadDTO{ProjectID: &site, Files: []storage.UploadedFile{stored("g.pdf")}}, uploader)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Attach(ctx, docs[0].ID, document.AttachDTO{ReportID: reportID})
			Expect(errors.Is(err, document.ErrProjectMismatch)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		var doc *document.Document
		var original storage.UploadedFile

		BeforeEach(func() {
			original = stored("h.pdf")
			docs, err := service.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{original}}, uploader)
			Expect(err).NotTo(HaveOccurred())
			doc = docs[0]
		})

		It("changes only the given fields", func() {
			name := "Renamed"
			updated, err := service.Update(ctx, doc.ID, document.UpdateDocumentDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Renamed"))
			Expect(updated.URLs).To(Equal(doc.URLs))
			Expect(store.Has(original.Key)).To(BeTrue())
		})

		It("replaces the file and deletes the previous object", func() {
			replacement := stored("i.png")
			replacement.MimeType = "image/png"
			updated, err := service.Update(ctx, doc.ID, document.UpdateDocumentDTO{File: &replacement})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.URLs).To(ConsistOf(replacement.URL))
			Expect(updated.MimeType).To(Equal("image/png"))
			Expect(store.Has(original.Key)).To(BeFalse())
			Expect(store.Has(replacement.Key)).To(BeTrue())
		})

		It("keeps the update when the old object cannot be deleted", func() {
			replacement := stored("j.pdf")
			store.FailDeletes = true
			_, err := service.Update(ctx, doc.ID, document.UpdateDocumentDTO{File: &replacement})
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the new object when the update fails", func() {
			replacement := stored("k.pdf")
			missing := int64(999)
			_, err := service.Update(ctx, doc.ID, document.UpdateDocumentDTO{ReportID: &missing, File: &replacement})
			Expect(errors.Is(err, document.ErrReportNotFound)).To(BeTrue())
			Expect(store.Has(replacement.Key)).To(BeFalse())
			Expect(store.Has(original.Key)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the row and the stored object", func() {
			f := stored("l.pdf")
			docs, err := service.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{f}}, uploader)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, docs[0].ID)).To(Succeed())
			Expect(store.Has(f.Key)).To(BeFalse())
			_, err = service.Get(ctx, docs[0].ID)
			Expect(errors.Is(err, document.ErrNotFound)).To(BeTrue())
		})

		It("removes the row even when storage deletion fails", func() {
			docs, err := service.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{stored("m.pdf")}}, uploader)
			Expect(err).NotTo(HaveOccurred())
			store.FailDeletes = true

			Expect(service.Delete(ctx, docs[0].ID)).To(Succeed())
			_, err = service.Get(ctx, docs[0].ID)
			Expect(errors.Is(err, document.ErrNotFound)).To(BeTrue())
		})

		It("does not see documents of the other category", func() {
			docs, err := service.Upload(ctx, document.UploadDTO{Files: []storage.UploadedFile{stored("n.pdf")}}, uploader)
			Expect(err).NotTo(HaveOccurred())
			general := document.NewService(document.CategoryGeneral, repo, store, logger.Discard())
			Expect(errors.Is(general.Delete(ctx, docs[0].ID), document.ErrNotFound)).To(BeTrue())
		})
	})
})

var _ = Describe("Handler", func() {
	var (
		db     *gorm.DB
		store  *storage.MemoryStore
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.New()
		Expect(err).NotTo(HaveOccurred())
		store = storage.NewMemoryStore("")
		svc := document.NewService(document.CategoryGeneral, postgres.NewDocumentRepository(db), store, logger.Discard())
		h := document.NewHandler(svc)
		upload := storage.NewUploadMiddleware(store, 0, logger.Discard())

		router = chi.NewRouter()
		router.With(upload.Handle("documents")).Post("/documents", h.Upload)
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("uploads multipart files and returns the created documents", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		fw, err := mw.CreateFormFile("files", "plan.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, _ = fw.Write([]byte("pdf"))
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: 3, Role: auth.RoleEmployee}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp struct {
			Data []document.Document `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Data).To(HaveLen(1))
		Expect(resp.Data[0].ReportID).To(BeNil())
		Expect(resp.Data[0].Name).To(Equal("plan.pdf"))
		Expect(store.Keys()).To(HaveLen(1))
	})

	It("rejects a malformed reportId and removes the stored file", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		fw, err := mw.CreateFormFile("file", "photo.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, _ = fw.Write([]byte("jpg"))
		Expect(mw.WriteField("reportId", "abc")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: 3}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(store.Keys()).To(BeEmpty())
	})
})
