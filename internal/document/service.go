package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/storage"
)

// Mutation builds the column updates for a locked row, or rejects the change.
type Mutation func(current *Document) (map[string]interface{}, error)

type RepositoryAPI interface {
	CreateMany(ctx context.Context, docs []*Document) error
	GetByID(ctx context.Context, category string, id int64) (*Document, error)
	List(ctx context.Context, filter ListFilter) ([]*Document, int64, error)
	// UpdateLocked applies mutate to the row under SELECT ... FOR UPDATE and returns the row before and after.
	UpdateLocked(ctx context.Context, category string, id int64, mutate Mutation) (before, after *Document, err error)
	// DeleteLocked removes the row and returns what was deleted.
	DeleteLocked(ctx context.Context, category string, id int64) (*Document, error)
	// ReportProject returns the project of a report in the category, ErrReportNotFound when absent.
	ReportProject(ctx context.Context, category string, reportID int64) (*int64, error)
	ProjectExists(ctx context.Context, id int64) (bool, error)
}

// Service manages documents of one category and the stored objects behind them.
type Service struct {
	category string
	repo     RepositoryAPI
	store    storage.BlobStore
	logger   *slog.Logger
}

func NewService(category string, repo RepositoryAPI, store storage.BlobStore, logger *slog.Logger) *Service {
	return &Service{
		category: category,
		repo:     repo,
		store:    store,
		logger:   logger.With("document_category", category),
	}
}

// Upload records one document per stored file. Stored objects are removed when nothing is recorded.
func (s *Service) Upload(ctx context.Context, dto UploadDTO, uploader *auth.User) (docs []*Document, err error) {
	defer func() {
		if err != nil {
			s.cleanup(ctx, dto.Files)
		}
	}()

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return nil, err
	}
	if dto.ReportID != nil {
		if err := s.checkReport(ctx, *dto.ReportID, dto.ProjectID); err != nil {
			return nil, err
		}
	}

	docs = make([]*Document, len(dto.Files))
	for i, f := range dto.Files {
		docs[i] = &Document{
			Category:   s.category,
			Name:       documentName(dto.Name, f, i, len(dto.Files)),
			URLs:       []string{f.URL},
			UploadedBy: uploader.ID,
			ReportID:   dto.ReportID,
			ProjectID:  dto.ProjectID,
			MimeType:   f.MimeType,
			Size:       f.Size,
		}
	}
	if err := s.repo.CreateMany(ctx, docs); err != nil {
		return nil, internal.NewInternalError("failed to save documents", err)
	}
	s.logger.Info("documents uploaded", "count", len(docs), "uploaded_by", uploader.ID, "report_id", dto.ReportID)
	return docs, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.GetByID(ctx, s.category, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*Document], error) {
	filter.Category = s.category
	filter.Page = filter.Page.Normalize()
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Document]{}, err
	}
	return pagination.NewPage(docs, filter.Page, total), nil
}

// Attach links an existing document to a report.
func (s *Service) Attach(ctx context.Context, id int64, dto AttachDTO) (*Document, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	_, after, err := s.repo.UpdateLocked(ctx, s.category, id, func(current *Document) (map[string]interface{}, error) {
		if err := s.checkReport(ctx, dto.ReportID, current.ProjectID); err != nil {
			return nil, err
		}
		return map[string]interface{}{"report_id": dto.ReportID}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document attached", "document_id", id, "report_id", dto.ReportID)
	return after, nil
}

// Update applies a partial update. A replaced file removes the previous objects after commit;
// a failed update removes the new object instead.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateDocumentDTO) (*Document, error) {
	before, after, err := s.update(ctx, id, dto)
	if err != nil {
		if dto.File != nil {
			s.cleanup(ctx, []storage.UploadedFile{*dto.File})
		}
		return nil, err
	}

	if dto.File != nil {
		if err := storage.DeleteURLs(context.WithoutCancel(ctx), s.store, before.URLs); err != nil {
			s.logger.Warn("failed to delete replaced document objects", "document_id", id, "error", err)
		}
	}
	s.logger.Info("document updated", "document_id", id, "file_replaced", dto.File != nil)
	return after, nil
}

func (s *Service) update(ctx context.Context, id int64, dto UpdateDocumentDTO) (*Document, *Document, error) {
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return nil, nil, err
	}
	return s.repo.UpdateLocked(ctx, s.category, id, func(current *Document) (map[string]interface{}, error) {
		projectID := current.ProjectID
		if dto.ProjectID != nil {
			projectID = dto.ProjectID
		}
		reportID := current.ReportID
		if dto.ReportID != nil {
			reportID = dto.ReportID
		}
		if reportID != nil && (dto.ReportID != nil || dto.ProjectID != nil) {
			if err := s.checkReport(ctx, *reportID, projectID); err != nil {
				return nil, err
			}
		}
		return dto.Fields(), nil
	})
}

// Delete removes the row, then the stored objects. Storage failures are logged only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteLocked(ctx, s.category, id)
	if err != nil {
		return err
	}
	if err := storage.DeleteURLs(context.WithoutCancel(ctx), s.store, deleted.URLs); err != nil {
		s.logger.Warn("document row deleted but objects remain", "document_id", id, "error", err)
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

func (s *Service) checkReport(ctx context.Context, reportID int64, documentProject *int64) error {
	reportProject, err := s.repo.ReportProject(ctx, s.category, reportID)
	if err != nil {
		return err
	}
	if !sameProject(documentProject, reportProject) {
		return ErrProjectMismatch
	}
	return nil
}

func (s *Service) checkProject(ctx context.Context, projectID *int64) error {
	if projectID == nil {
		return nil
	}
	ok, err := s.repo.ProjectExists(ctx, *projectID)
	if err != nil {
		return internal.NewInternalError("failed to check project", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Service) Discard(ctx context.Context, files []storage.UploadedFile) {
	s.cleanup(ctx, files)
}

func (s *Service) cleanup(ctx context.Context, files []storage.UploadedFile) {
	if len(files) == 0 {
		return
	}
	if err := storage.Cleanup(context.WithoutCancel(ctx), s.store, files); err != nil {
		s.logger.Error("failed to remove orphaned uploads", "count", len(files), "error", err)
	}
}

// documentName uses the given name, numbered when several files share it, else the original file name.
func documentName(name string, f storage.UploadedFile, i, total int) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		if f.OriginalName != "" {
			return f.OriginalName
		}
		return filepath.Base(f.Key)
	case total > 1:
		return fmt.Sprintf("%s (%d)", name, i+1)
	default:
		return name
	}
}
