package model

import "time"

// Fan 粉丝关系（B 的粉丝是 A）冗余自 Follow，与 Follow 同事务写入
type Fan struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ProfileID uint64 `gorm:"index:idx_fan_profile;index:idx_fan_pair,unique;not null"`
	FanID     uint64 `gorm:"not null;index:idx_fan_pair,unique"`
	CreatedAt time.Time
}

func (Fan) TableName() string { return "fans" }
