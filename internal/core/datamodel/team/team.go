package team

import "time"

type Team struct {
	ID          int64        `gorm:"primaryKey"`
	Name        string       `gorm:"column:name;not null"`
	Description string       `gorm:"column:description"`
	LeadID      *int64       `gorm:"column:lead_id"`
	ProjectID   *int64       `gorm:"column:project_id;index"`
	Members     []TeamMember `gorm:"foreignKey:TeamID"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string {
	return "teams"
}

type TeamMember struct {
	ID       int64     `gorm:"primaryKey"`
	TeamID   int64     `gorm:"column:team_id;not null;uniqueIndex:idx_team_member"`
	UserID   int64     `gorm:"column:user_id;not null;uniqueIndex:idx_team_member"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
