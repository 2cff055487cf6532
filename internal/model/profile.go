package model

import "time"

// Profile 与 User 一对一，注册时与 User 在同一事务内创建
type Profile struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"user_id" gorm:"uniqueIndex:ux_profile_user;not null"`
	Bio       string    `json:"bio" gorm:"type:varchar(500)"`
	Image     string    `json:"image" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

func (Profile) TableName() string { return "profiles" }
