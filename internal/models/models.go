package models

import "time"

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"     json:"-"`
	JTI       string    `gorm:"uniqueIndex;not null"     json:"jti"`
	Username  string    `gorm:"index;not null"           json:"username"`
	CreatedAt time.Time `gorm:"not null"                 json:"created_at"`
	ExpiresAt int64     `gorm:"index;not null"           json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"   json:"revoked"`
}

type AccessDenylist struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	ExpiresAt int64  `gorm:"index;not null"       json:"expires_at"`
}

func (AccessDenylist) TableName() string { return "access_denylist" }

type AuthEvent struct {
	ID                uint      `gorm:"primaryKey"        json:"id"`
	Timestamp         time.Time `gorm:"index;not null"    json:"timestamp"`
	Type              string    `gorm:"index;not null"    json:"type"`
	Username          string    `json:"username,omitempty"`
	Path              string    `json:"path"`
	Method            string    `json:"method"`
	Status            int       `json:"status"`
	AuthHeaderPresent bool      `json:"auth_header_present"`
}

type Student struct {
	ID        uint   `gorm:"primaryKey"           json:"-"`
	StudentID string `gorm:"uniqueIndex;not null" json:"id"`
	Name      string `gorm:"not null"             json:"name"`
	Grade     int    `json:"grade"`
	ClassID   *uint  `json:"class_id"`
}

type Lesson struct {
	ID      uint   `gorm:"primaryKey"           json:"-"`
	ItemID  string `gorm:"uniqueIndex;not null" json:"item_id"`
	Subject string `json:"subject"`
	Prompt  string `json:"prompt"`
	Source  string `json:"source"`
}

type Assignment struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	StudentID  string    `gorm:"index;not null" json:"student_id"`
	ItemID     string    `gorm:"not null"       json:"item_id"`
	AssignedAt time.Time `gorm:"not null"       json:"assigned_at"`
}

type StudentResponse struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	StudentID   string    `gorm:"index;not null" json:"student_id"`
	ItemID      string    `gorm:"not null"       json:"item_id"`
	Answer      string    `json:"answer"`
	Correct     bool      `json:"correct"`
	SubmittedAt time.Time `gorm:"not null"       json:"submitted_at"`
}

type Classroom struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null"   json:"name"`
	TeacherID string `gorm:"index"      json:"teacher_id,omitempty"`
}

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{
		&RefreshToken{},
		&AccessDenylist{},
		&AuthEvent{},
		&Student{},
		&Lesson{},
		&Assignment{},
		&StudentResponse{},
		&Classroom{},
	}
}
