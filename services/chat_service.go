package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// ChatService owns conversations and their membership. Membership of a task's
// group chat is monotonically additive: the engine adds accepted employees
// and never removes anyone, so declined employees keep their history.
type ChatService struct {
	DB        *gorm.DB
	Publisher Publisher
	Log       *logrus.Logger
}

func NewChatService(db *gorm.DB, publisher Publisher, log *logrus.Logger) *ChatService {
	return &ChatService{DB: db, Publisher: publisher, Log: log}
}

// EnsureTaskGroup creates the group chat for a task, seeded with just the
// manager, if none exists yet. No-op otherwise.
func (s *ChatService) EnsureTaskGroup(tx *gorm.DB, task *models.Task, managerID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := tx.Preload("Members").Where("task_id = ?", task.ID).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = models.Chat{
		Name:      task.Location + " - " + task.Company,
		Type:      models.ChatTypeGroup,
		ManagerID: managerID,
		TaskID:    &task.ID,
		Members:   []models.ChatMember{{UserID: managerID}},
	}
	if err := tx.Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// AddTaskMember adds a user to the task's group chat. Fails NotFound when the
// chat does not exist; callers recover with EnsureTaskGroup and retry.
func (s *ChatService) AddTaskMember(tx *gorm.DB, taskID, userID uuid.UUID) error {
	var chat models.Chat
	if err := tx.Where("task_id = ?", taskID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Chat for task not found")
		}
		return err
	}

	member := models.ChatMember{ChatID: chat.ID, UserID: userID}
	return tx.Where(&member).FirstOrCreate(&member).Error
}

type CreateGroupChatInput struct {
	Name      string
	TaskID    *uuid.UUID
	MemberIDs []uuid.UUID
}

// CreateGroup is the manager-facing group chat creation. When tied to a task
// the manager must own that task, and an empty name falls back to the task's
// "<location> - <company>" label.
func (s *ChatService) CreateGroup(identity Identity, input CreateGroupChatInput) (*models.Chat, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}

	var chat models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		name := strings.TrimSpace(input.Name)

		if input.TaskID != nil {
			var task models.Task
			if err := tx.First(&task, "id = ?", *input.TaskID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NotFound("Task not found")
				}
				return err
			}
			if task.ManagerID != identity.UserID {
				return utils.Forbidden("Not permitted")
			}
			if name == "" {
				name = task.Location + " - " + task.Company
			}
		}
		if name == "" {
			return utils.Invalid("Name must not be empty")
		}

		members := []models.ChatMember{{UserID: identity.UserID}}
		for _, id := range input.MemberIDs {
			if id != identity.UserID {
				members = append(members, models.ChatMember{UserID: id})
			}
		}

		chat = models.Chat{
			Name:      name,
			Type:      models.ChatTypeGroup,
			ManagerID: identity.UserID,
			TaskID:    input.TaskID,
			Members:   members,
		}
		return tx.Create(&chat).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// CreateDirect opens a direct chat between a manager and one of their linked
// employees. The caller must be one of the two sides, in their own role.
func (s *ChatService) CreateDirect(identity Identity, managerID, employeeID uuid.UUID) (*models.Chat, error) {
	if identity.UserID != managerID && identity.UserID != employeeID {
		return nil, utils.Forbidden("Caller must be part of the direct chat")
	}
	if identity.UserID == managerID && !identity.IsManager() {
		return nil, utils.Forbidden("Not permitted")
	}
	if identity.UserID == employeeID && !identity.IsEmployee() {
		return nil, utils.Forbidden("Not permitted")
	}

	var chat models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var manager models.User
		if err := tx.First(&manager, "id = ? AND role = ?", managerID, models.RoleManager).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Manager not found")
			}
			return err
		}
		var employee models.User
		if err := tx.First(&employee, "id = ? AND role = ?", employeeID, models.RoleEmployee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Employee not found")
			}
			return err
		}
		if employee.ManagerID == nil || *employee.ManagerID != managerID {
			return utils.Forbidden("Manager and employee are not linked")
		}

		chat = models.Chat{
			Name:      "Direct Chat",
			Type:      models.ChatTypeDirect,
			ManagerID: managerID,
			Members: []models.ChatMember{
				{UserID: managerID},
				{UserID: employeeID},
			},
		}
		return tx.Create(&chat).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListForUser returns every chat the caller is a member of.
func (s *ChatService) ListForUser(identity Identity) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Preload("Members").
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", identity.UserID).
		Find(&chats).Error
	return chats, err
}

// Messages returns a chat's history, members only.
func (s *ChatService) Messages(identity Identity, chatID uuid.UUID) ([]models.Message, error) {
	chat, err := s.memberChat(identity, chatID)
	if err != nil {
		return nil, err
	}
	var messages []models.Message
	err = s.DB.Where("chat_id = ?", chat.ID).Order("created_at").Find(&messages).Error
	return messages, err
}

// SendMessage persists a message and notifies all current members. The event
// goes out after the commit; delivery failures never reach the sender.
func (s *ChatService) SendMessage(identity Identity, chatID uuid.UUID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, utils.Invalid("Text must not be empty")
	}

	chat, err := s.memberChat(identity, chatID)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		ChatID:     chat.ID,
		SenderID:   identity.UserID,
		SenderRole: identity.Role,
		Text:       text,
	}
	if err := s.DB.Create(&message).Error; err != nil {
		return nil, err
	}

	s.Publisher.Publish(Event{
		Kind:       EventMessageSent,
		Payload:    message,
		Recipients: recipients(chat.MemberIDs()...),
	})
	return &message, nil
}

func (s *ChatService) memberChat(identity Identity, chatID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.DB.Preload("Members").First(&chat, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Chat not found")
		}
		return nil, err
	}
	if !chat.HasMember(identity.UserID) {
		return nil, utils.Forbidden("Not permitted")
	}
	return &chat, nil
}
