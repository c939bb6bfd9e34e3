package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 用户表 — 对应 users
type User struct {
	UserID            string     `gorm:"type:uuid;primaryKey"                json:"user_id"`
	Email             string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"          json:"-"`
	FirstName         string     `gorm:"type:varchar(100);not null;default:''" json:"first_name"`
	LastName          string     `gorm:"type:varchar(100);not null;default:''" json:"last_name"`
	Bio               string     `gorm:"type:text;not null;default:''"       json:"bio"`
	Company           string     `gorm:"type:varchar(200);not null;default:''" json:"company"`
	DateOfBirth       *time.Time `gorm:"type:date"                           json:"date_of_birth,omitempty"`
	ExperienceLevel   string     `gorm:"type:varchar(50);not null;default:''" json:"experience_level"`
	Location          string     `gorm:"type:varchar(200);not null;default:''" json:"location"`
	Occupation        string     `gorm:"type:varchar(200);not null;default:''" json:"occupation"`
	Phone             string     `gorm:"type:varchar(30);not null;default:''" json:"phone"`
	PreferredWorkType string     `gorm:"type:varchar(50);not null;default:''" json:"preferred_work_type"`

	// 学业信息
	StudentID         string   `gorm:"type:varchar(50);not null;default:''"  json:"student_id"`
	RollNumber        string   `gorm:"type:varchar(50);not null;default:''"  json:"roll_number"`
	InstitutionName   string   `gorm:"type:varchar(200);not null;default:''" json:"institution_name"`
	Department        string   `gorm:"type:varchar(200);not null;default:''" json:"department"`
	Branch            string   `gorm:"type:varchar(200);not null;default:''" json:"branch"`
	CurrentYear       *int     `gorm:"type:smallint"                         json:"current_year,omitempty"`
	CurrentSemester   *int     `gorm:"type:smallint"                         json:"current_semester,omitempty"`
	CGPA              *float64 `gorm:"column:cgpa;type:numeric(4,2)"         json:"cgpa,omitempty"`
	CurrentPercentage *float64 `gorm:"type:numeric(5,2)"                     json:"current_percentage,omitempty"`

	// 联系方式
	WhatsAppNumber string `gorm:"column:whatsapp_number;type:varchar(30);not null;default:''" json:"whatsapp_number"`
	LinkedIn       string `gorm:"column:linkedin;type:varchar(255);not null;default:''"       json:"linkedin"`
	GitHub         string `gorm:"column:github;type:varchar(255);not null;default:''"         json:"github"`

	Skills    datatypes.JSONSlice[string]      `gorm:"not null;default:'[]'" json:"skills"`
	Courses   datatypes.JSONSlice[string]      `gorm:"not null;default:'[]'" json:"courses"`   // timetable 中课程名去重投影
	Timetable datatypes.JSONSlice[DaySchedule] `gorm:"not null;default:'[]'" json:"timetable"`

	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// FullName 拼接姓名，供通知模板使用
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
