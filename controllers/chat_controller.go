package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/services"
	"crewplan/utils"
)

type ChatController struct {
	Chats *services.ChatService
	Log   *logrus.Logger
}

func NewChatController(chats *services.ChatService, log *logrus.Logger) *ChatController {
	return &ChatController{Chats: chats, Log: log}
}

type CreateGroupChatBody struct {
	Name      string   `json:"name"`
	TaskID    *string  `json:"task_id" validate:"omitempty,uuid"`
	MemberIDs []string `json:"member_ids" validate:"dive,uuid"`
}

type CreateDirectChatBody struct {
	ManagerID  string `json:"manager_id" validate:"required,uuid"`
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

type SendMessageBody struct {
	Text string `json:"text" validate:"required"`
}

func (cc *ChatController) CreateGroup(c *fiber.Ctx) error {
	var body CreateGroupChatBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	input := services.CreateGroupChatInput{Name: body.Name}
	if body.TaskID != nil {
		taskID, err := uuid.Parse(*body.TaskID)
		if err != nil {
			return utils.Invalid("task_id must be a valid id")
		}
		input.TaskID = &taskID
	}
	for _, raw := range body.MemberIDs {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			return utils.Invalid("member_ids must be valid ids")
		}
		input.MemberIDs = append(input.MemberIDs, memberID)
	}

	chat, err := cc.Chats.CreateGroup(middleware.CallerIdentity(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (cc *ChatController) CreateDirect(c *fiber.Ctx) error {
	var body CreateDirectChatBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}
	managerID, err := uuid.Parse(body.ManagerID)
	if err != nil {
		return utils.Invalid("manager_id must be a valid id")
	}
	employeeID, err := uuid.Parse(body.EmployeeID)
	if err != nil {
		return utils.Invalid("employee_id must be a valid id")
	}

	chat, err := cc.Chats.CreateDirect(middleware.CallerIdentity(c), managerID, employeeID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (cc *ChatController) List(c *fiber.Ctx) error {
	chats, err := cc.Chats.ListForUser(middleware.CallerIdentity(c))
	if err != nil {
		return err
	}
	return c.JSON(chats)
}

func (cc *ChatController) Messages(c *fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid chat id")
	}
	messages, err := cc.Chats.Messages(middleware.CallerIdentity(c), chatID)
	if err != nil {
		return err
	}
	return c.JSON(messages)
}

func (cc *ChatController) Send(c *fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid chat id")
	}
	var body SendMessageBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	message, err := cc.Chats.SendMessage(middleware.CallerIdentity(c), chatID, body.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
