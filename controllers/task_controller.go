package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/services"
	"crewplan/utils"
)

type TaskController struct {
	Tasks *services.TaskService
	Log   *logrus.Logger
}

func NewTaskController(tasks *services.TaskService, log *logrus.Logger) *TaskController {
	return &TaskController{Tasks: tasks, Log: log}
}

type TaskBody struct {
	Location          string     `json:"location" validate:"required"`
	Company           string     `json:"company" validate:"required"`
	RequiredEmployees int        `json:"required_employees" validate:"required,min=1"`
	Start             time.Time  `json:"start" validate:"required"`
	End               time.Time  `json:"end" validate:"required,gtfield=Start"`
	ResponseDeadline  *time.Time `json:"response_deadline"`
}

func (b TaskBody) toInput() services.TaskInput {
	return services.TaskInput{
		Location:          b.Location,
		Company:           b.Company,
		RequiredEmployees: b.RequiredEmployees,
		Start:             b.Start,
		End:               b.End,
		ResponseDeadline:  b.ResponseDeadline,
	}
}

func (tc *TaskController) Create(c *fiber.Ctx) error {
	var body TaskBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	task, err := tc.Tasks.Create(middleware.CallerIdentity(c), body.toInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (tc *TaskController) Get(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid task id")
	}
	task, err := tc.Tasks.Get(middleware.CallerIdentity(c), taskID)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (tc *TaskController) ListMine(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)
	tasks, err := tc.Tasks.ListForManager(identity, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

func (tc *TaskController) Update(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid task id")
	}
	var body TaskBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	task, err := tc.Tasks.Update(middleware.CallerIdentity(c), taskID, body.toInput())
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (tc *TaskController) Delete(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid task id")
	}
	if err := tc.Tasks.Delete(middleware.CallerIdentity(c), taskID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
