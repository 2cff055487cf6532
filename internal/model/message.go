package model

import "time"

// Message 私信（sender -> recipient），创建后不可修改
// Body 与 File 至少一个非空
type Message struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	SenderID    uint64    `json:"sender_id" gorm:"index:idx_message_pair;not null"`
	RecipientID uint64    `json:"recipient_id" gorm:"index:idx_message_pair;index:idx_message_recipient;not null"`
	Body        string    `json:"body" gorm:"type:text"`
	File        string    `json:"file" gorm:"type:varchar(255)"`
	FileName    string    `json:"file_name" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_message_created"`

	Sender    *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}

func (Message) TableName() string { return "messages" }

// OtherParty 返回会话中除 userID 之外的一方
func (m *Message) OtherParty(userID uint64) uint64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}
