package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/client"
	"github.com/frahmantamala/projecthub/internal/document"
	"github.com/frahmantamala/projecthub/internal/leave"
	"github.com/frahmantamala/projecthub/internal/messaging"
	"github.com/frahmantamala/projecthub/internal/project"
	"github.com/frahmantamala/projecthub/internal/report"
	"github.com/frahmantamala/projecthub/internal/storage"
	"github.com/frahmantamala/projecthub/internal/task"
	"github.com/frahmantamala/projecthub/internal/team"
	"github.com/frahmantamala/projecthub/internal/training"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/internal/transport/swagger"
	"github.com/frahmantamala/projecthub/internal/user"
	"github.com/frahmantamala/projecthub/internal/worklog"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. A nil handler leaves its routes out.
type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	RBAC      *auth.RBACAuthorization
	Users     *user.Handler
	Projects  *project.Handler
	Tasks     *task.Handler
	Teams     *team.Handler
	Clients   *client.Handler
	Leaves    *leave.Handler
	WorkLogs  *worklog.Handler
	Trainings *training.Handler

	Reports      *report.Handler
	HSEReports   *report.Handler
	Documents    *document.Handler
	HSEDocuments *document.Handler

	Messages *messaging.Handler
	Hub      *messaging.Hub

	Uploads *storage.UploadMiddleware
	Metrics *middleware.Metrics
}

type RouterConfig struct {
	AllowedOrigins string
	MetricsPath    string
	OpenAPIPath    string
}

// Upload folders inside the blob store.
const (
	FolderDocuments    = "documents"
	FolderHSEDocuments = "hse-documents"
	FolderMessages     = "messages"
)

func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, h, cfg, logger)
	return router
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.OpenAPIPath == "" {
		cfg.OpenAPIPath = "./api/openapi.yml"
	}

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware(cfg.MetricsPath))
	}
	router.Use(middleware.Logging)

	if h.Metrics != nil {
		router.Handle(cfg.MetricsPath, h.Metrics.Handler())
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, cfg.OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
		})

		// The websocket handshake cannot carry custom headers from browsers, so it accepts the
		// token as a query parameter.
		if h.Hub != nil {
			r.With(h.Auth.WebsocketAuthMiddleware, middleware.UserContext).Get("/messages/ws", h.Hub.ServeWS)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			mountUsers(pr, h)
			mountProjects(pr, h)
			mountTasks(pr, h)
			mountTeams(pr, h)
			mountClients(pr, h)
			mountLeaves(pr, h)
			mountWorkLogs(pr, h)
			mountTrainings(pr, h)

			if h.Reports != nil {
				pr.Route("/reports", func(rr chi.Router) { mountReports(rr, h.Reports, h.RBAC) })
			}
			if h.Documents != nil {
				pr.Route("/documents", func(dr chi.Router) { mountDocuments(dr, h.Documents, h, FolderDocuments) })
			}
			pr.Route("/hse", func(hr chi.Router) {
				if h.HSEReports != nil {
					hr.Route("/reports", func(rr chi.Router) { mountReports(rr, h.HSEReports, h.RBAC) })
				}
				if h.HSEDocuments != nil {
					hr.Route("/documents", func(dr chi.Router) { mountDocuments(dr, h.HSEDocuments, h, FolderHSEDocuments) })
				}
			})

			mountMessages(pr, h)
		})
	})
}

func mountUsers(r chi.Router, h Handlers) {
	if h.Users == nil {
		return
	}
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/me", h.Users.GetCurrentUser)
		ur.Group(func(ar chi.Router) {
			ar.Use(h.RBAC.Middleware(auth.PermUserManage))
			ar.Post("/", h.Users.Create)
			ar.Get("/", h.Users.List)
			ar.Get("/{id}", h.Users.Get)
			ar.Put("/{id}", h.Users.Update)
			ar.Delete("/{id}", h.Users.Delete)
		})
	})
}

func mountProjects(r chi.Router, h Handlers) {
	if h.Projects == nil {
		return
	}
	r.Route("/projects", func(pr chi.Router) {
		pr.Get("/", h.Projects.List)
		pr.Get("/{id}", h.Projects.Get)
		pr.With(h.RBAC.Middleware(auth.PermProjectCreate)).Post("/", h.Projects.Create)
		pr.With(h.RBAC.Middleware(auth.PermProjectUpdate)).Put("/{id}", h.Projects.Update)
		pr.With(h.RBAC.Middleware(auth.PermProjectDelete)).Delete("/{id}", h.Projects.Delete)
	})
}

func mountTasks(r chi.Router, h Handlers) {
	if h.Tasks == nil {
		return
	}
	r.Route("/tasks", func(tr chi.Router) {
		tr.Post("/", h.Tasks.Create)
		tr.Get("/", h.Tasks.List)
		tr.Get("/{id}", h.Tasks.Get)
		tr.Put("/{id}", h.Tasks.Update)
		tr.Patch("/{id}/status", h.Tasks.UpdateStatus)
		tr.Delete("/{id}", h.Tasks.Delete)
	})
}

func mountTeams(r chi.Router, h Handlers) {
	if h.Teams == nil {
		return
	}
	r.Route("/teams", func(tr chi.Router) {
		tr.Get("/", h.Teams.List)
		tr.Get("/{id}", h.Teams.Get)
		tr.Group(func(mr chi.Router) {
			mr.Use(h.RBAC.Middleware(auth.PermTeamManage))
			mr.Post("/", h.Teams.Create)
			mr.Put("/{id}", h.Teams.Update)
			mr.Delete("/{id}", h.Teams.Delete)
			mr.Post("/{id}/members", h.Teams.AddMember)
			mr.Delete("/{id}/members/{userId}", h.Teams.RemoveMember)
		})
	})
}

func mountClients(r chi.Router, h Handlers) {
	if h.Clients == nil {
		return
	}
	r.Route("/clients", func(cr chi.Router) {
		cr.Get("/", h.Clients.List)
		cr.Get("/{id}", h.Clients.Get)
		cr.Group(func(mr chi.Router) {
			mr.Use(h.RBAC.Middleware(auth.PermClientManage))
			mr.Post("/", h.Clients.Create)
			mr.Put("/{id}", h.Clients.Update)
			mr.Delete("/{id}", h.Clients.Delete)
			mr.Post("/{id}/projects/{projectId}", h.Clients.AssociateProject)
		})
	})
}

func mountLeaves(r chi.Router, h Handlers) {
	if h.Leaves == nil {
		return
	}
	r.Route("/leaves", func(lr chi.Router) {
		lr.Post("/", h.Leaves.Create)
		lr.Get("/", h.Leaves.List)
		lr.Get("/{id}", h.Leaves.Get)
		lr.Put("/{id}", h.Leaves.Update)
		lr.Delete("/{id}", h.Leaves.Delete)
		lr.With(h.RBAC.Middleware(auth.PermLeaveApprove)).Patch("/{id}/status", h.Leaves.Review)
	})
}

func mountWorkLogs(r chi.Router, h Handlers) {
	if h.WorkLogs == nil {
		return
	}
	r.Route("/work-logs", func(wr chi.Router) {
		wr.Post("/", h.WorkLogs.Create)
		wr.Get("/", h.WorkLogs.List)
		wr.Get("/summary", h.WorkLogs.Summary)
		wr.Get("/{id}", h.WorkLogs.Get)
		wr.Put("/{id}", h.WorkLogs.Update)
		wr.Delete("/{id}", h.WorkLogs.Delete)
	})
}

func mountTrainings(r chi.Router, h Handlers) {
	if h.Trainings == nil {
		return
	}
	r.Route("/training", func(tr chi.Router) {
		tr.Get("/", h.Trainings.List)
		tr.Get("/{id}", h.Trainings.Get)
		tr.Group(func(mr chi.Router) {
			mr.Use(h.RBAC.Middleware(auth.PermTrainingManage))
			mr.Post("/", h.Trainings.Create)
			mr.Put("/{id}", h.Trainings.Update)
			mr.Patch("/{id}/progress", h.Trainings.UpdateProgress)
			mr.Delete("/{id}", h.Trainings.Delete)
			mr.Post("/{id}/participants", h.Trainings.AddParticipant)
			mr.Delete("/{id}/participants/{userId}", h.Trainings.RemoveParticipant)
		})
	})
}

func mountReports(r chi.Router, rh *report.Handler, rbac *auth.RBACAuthorization) {
	r.Get("/", rh.List)
	r.Get("/{id}", rh.Get)
	r.With(rbac.Middleware(auth.PermReportCreate)).Post("/", rh.Create)
	r.With(rbac.Middleware(auth.PermReportUpdate)).Put("/{id}", rh.Update)
	r.With(rbac.Middleware(auth.PermReportClose)).Patch("/{id}/close", rh.Close)
	r.With(rbac.Middleware(auth.PermReportDelete)).Delete("/{id}", rh.Delete)
}

// mountDocuments checks permissions before the upload middleware so rejected requests never
// reach the blob store.
func mountDocuments(r chi.Router, dh *document.Handler, h Handlers, folder string) {
	upload := func(next http.Handler) http.Handler { return next }
	if h.Uploads != nil {
		upload = h.Uploads.Handle(folder)
	}

	r.Get("/", dh.List)
	r.Get("/{id}", dh.Get)
	r.With(h.RBAC.Middleware(auth.PermDocumentCreate), upload).Post("/", dh.Upload)
	r.With(h.RBAC.Middleware(auth.PermDocumentUpdate), upload).Put("/{id}", dh.Update)
	r.With(h.RBAC.Middleware(auth.PermDocumentUpdate)).Patch("/{id}/report", dh.Attach)
	r.With(h.RBAC.Middleware(auth.PermDocumentDelete)).Delete("/{id}", dh.Delete)
}

func mountMessages(r chi.Router, h Handlers) {
	if h.Messages == nil {
		return
	}
	upload := func(next http.Handler) http.Handler { return next }
	if h.Uploads != nil {
		upload = h.Uploads.Handle(FolderMessages)
	}

	r.Route("/messages", func(mr chi.Router) {
		mr.Get("/", h.Messages.ListConversations)
		mr.Get("/unread", h.Messages.UnreadCount)
		mr.Post("/conversations", h.Messages.CreateConversation)
		mr.Post("/group", h.Messages.CreateGroup)
		mr.With(upload).Post("/{id}", h.Messages.SendMessage)
		mr.Get("/{id}", h.Messages.GetMessages)
		mr.Post("/{id}/members", h.Messages.AddMember)
		mr.Delete("/{id}/members/{userId}", h.Messages.RemoveMember)
		mr.Delete("/{id}", h.Messages.DeleteGroup)
	})
}
