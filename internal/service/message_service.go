package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
)

// Conversation 收件箱中的一项：对方与最近一条消息
type Conversation struct {
	User *model.User
	Last *model.Message
}

// MessageService 私信
type MessageService interface {
	// Inbox 返回去重后的会话对象，按最近一条消息倒序
	Inbox(ctx context.Context, userID uint64) ([]Conversation, error)
	// Thread 返回双方往来的全部消息，按 created_at ASC, id ASC
	Thread(ctx context.Context, userID uint64, username string) (*model.User, []*model.Message, error)
	Send(ctx context.Context, senderID uint64, username string, in MessageInput, file *multipart.FileHeader) (*model.Message, error)
}

type messageService struct {
	repos   *repository.Repositories
	storage media.Storage
}

func NewMessageService(repos *repository.Repositories, storage media.Storage) MessageService {
	return &messageService{repos: repos, storage: storage}
}

func (s *messageService) Inbox(ctx context.Context, userID uint64) ([]Conversation, error) {
	msgs, err := s.repos.Messages.ListInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// msgs 已按时间倒序，首次出现即该会话的最新消息
	latest := make(map[uint64]*model.Message)
	var order []uint64
	for _, m := range msgs {
		other := m.OtherParty(userID)
		if _, ok := latest[other]; ok {
			continue
		}
		latest[other] = m
		order = append(order, other)
	}
	if len(order) == 0 {
		return []Conversation{}, nil
	}

	users, err := s.repos.Users.ListByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("load partners: %w", err)
	}
	byID := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]Conversation, 0, len(order))
	for _, id := range order {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Conversation{User: u, Last: latest[id]})
	}
	return out, nil
}

func (s *messageService) Thread(ctx context.Context, userID uint64, username string) (*model.User, []*model.Message, error) {
	other, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, lookupErr(err, "user")
	}
	msgs, err := s.repos.Messages.ListThread(ctx, userID, other.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list thread: %w", err)
	}
	return other, msgs, nil
}

func (s *messageService) Send(ctx context.Context, senderID uint64, username string, in MessageInput, file *multipart.FileHeader) (*model.Message, error) {
	recipient, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if recipient.ID == senderID {
		return nil, newValidationError("body", "You cannot message yourself.")
	}

	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Body == "" && file == nil {
		return nil, newValidationError("body", "Write a message or attach a file.")
	}

	msg := &model.Message{SenderID: senderID, RecipientID: recipient.ID, Body: in.Body}
	if file != nil {
		stored, err := saveUpload(s.storage, media.KindAttachment, "file", file)
		if err != nil {
			return nil, err
		}
		msg.File = stored
		msg.FileName = filepath.Base(file.Filename)
	}

	if err := s.repos.Messages.Create(ctx, msg); err != nil {
		if msg.File != "" {
			_ = s.storage.Delete(msg.File)
		}
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}
