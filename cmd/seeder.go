package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/projecthub/internal/auth"
	clientDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/client"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, gdb, err := initDB(cfg.Database, false)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		cost := cfg.Security.BCryptCost
		if cost == 0 {
			cost = 12
		}
		if err := seed(cmd.Context(), gdb, cost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

type seedUser struct {
	FirstName, LastName, Email, Role string
}

var seedUsers = []seedUser{
	{"Padil", "Admin", "admin@projecthub.local", auth.RoleAdmin},
	{"Maya", "Manager", "manager@projecthub.local", auth.RoleManager},
	{"Fadhil", "Employee", "fadhil@projecthub.local", auth.RoleEmployee},
	{"Rina", "Employee", "rina@projecthub.local", auth.RoleEmployee},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int) error {
	hash, err := auth.HashPassword("password", bcryptCost)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearData {
			for _, table := range []string{"messages", "participants", "conversations", "documents", "reports",
				"training_participants", "trainings", "work_logs", "leaves", "team_members", "teams", "tasks",
				"projects", "clients", "user_permissions", "permissions", "users"} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("clear %s: %w", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		for _, name := range auth.AllPermissions {
			p := userDatamodel.Permission{Name: name, Description: "grants " + name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return fmt.Errorf("insert permission %s: %w", name, err)
			}
		}
		fmt.Println("Seeded permissions:", len(auth.AllPermissions))

		ids := make(map[string]int64, len(seedUsers))
		for _, su := range seedUsers {
			u := userDatamodel.User{
				FirstName:    su.FirstName,
				LastName:     su.LastName,
				Email:        su.Email,
				PasswordHash: hash,
				Role:         su.Role,
				IsActive:     true,
			}
			if err := tx.Where(userDatamodel.User{Email: su.Email}).FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("insert user %s: %w", su.Email, err)
			}
			ids[su.Email] = u.ID
			fmt.Println("Seeded user:", su.Email, "role:", su.Role)
		}
		managerID := ids["manager@projecthub.local"]
		fadhilID := ids["fadhil@projecthub.local"]

		// An employee with one extra grant shows direct permissions stacking on the role.
		var closePerm userDatamodel.Permission
		if err := tx.Where("name = ?", auth.PermReportClose).First(&closePerm).Error; err != nil {
			return err
		}
		grant := userDatamodel.UserPermission{UserID: fadhilID, PermissionID: closePerm.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
			return fmt.Errorf("grant %s: %w", auth.PermReportClose, err)
		}

		c := clientDatamodel.Client{Name: "Acme", Email: "contact@acme.test", Company: "Acme Corp"}
		if err := tx.Where(clientDatamodel.Client{Email: c.Email}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("insert client: %w", err)
		}

		p := projectDatamodel.Project{Name: "Plant Upgrade", Description: "Sample project", ClientID: &c.ID, ManagerID: managerID, Status: "active", Budget: 150000}
		if err := tx.Where(projectDatamodel.Project{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		for _, t := range []taskDatamodel.Task{
			{ProjectID: p.ID, Title: "Site survey", AssigneeID: &fadhilID, CreatedBy: managerID, Status: "in_progress", Priority: "high"},
			{ProjectID: p.ID, Title: "Safety briefing", AssigneeID: &fadhilID, CreatedBy: managerID, Status: "todo", Priority: "medium"},
		} {
			task := t
			if err := tx.Where(taskDatamodel.Task{ProjectID: p.ID, Title: t.Title}).FirstOrCreate(&task).Error; err != nil {
				return fmt.Errorf("insert task %s: %w", t.Title, err)
			}
		}

		fmt.Println("Seeded sample client, project and tasks. Every user's password is \"password\"")
		return nil
	})
}
