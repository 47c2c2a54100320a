// models/activity.go - Session, Task and Goal activity records
package models

import (
	"time"
)

// Task statuses. completed -> approved/rejected is a keyholder review step;
// a rejected task keeps its completed_at for audit purposes.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusApproved  = "approved"
	TaskStatusRejected  = "rejected"
)

// Session represents a timed lifestyle session. EndTime is nil while the
// session is still running.
type Session struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	StartTime time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Note      string     `json:"note" gorm:"size:500"`
	CreatedAt time.Time  `json:"created_at"`
}

// Duration returns the elapsed seconds of a completed session, 0 if still active.
func (s *Session) Duration() float64 {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime).Seconds()
}

// Task represents an assigned task with an approval workflow.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	User        *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"default:'pending';size:20;index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Goal represents a numeric target the user works toward.
type Goal struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;index"`
	User         *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title        string     `json:"title" gorm:"not null;size:200"`
	Unit         string     `json:"unit" gorm:"size:20"` // seconds, days, count
	CurrentValue float64    `json:"current_value" gorm:"default:0"`
	TargetValue  float64    `json:"target_value" gorm:"not null"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (Task) TableName() string {
	return "tasks"
}

func (Goal) TableName() string {
	return "goals"
}
