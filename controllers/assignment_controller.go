package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/models"
	"crewplan/services"
	"crewplan/utils"
)

type AssignmentController struct {
	Assignments *services.AssignmentService
	Log         *logrus.Logger
}

func NewAssignmentController(assignments *services.AssignmentService, log *logrus.Logger) *AssignmentController {
	return &AssignmentController{Assignments: assignments, Log: log}
}

type CreateAssignmentInput struct {
	TaskID     string `json:"task_id" validate:"required,uuid"`
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Status     string `json:"status" validate:"omitempty,oneof=pending accepted declined expired"`
}

type DecideAssignmentInput struct {
	Status string `json:"status" validate:"required,oneof=accepted declined expired"`
}

func (ac *AssignmentController) Create(c *fiber.Ctx) error {
	var input CreateAssignmentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	taskID, err := uuid.Parse(input.TaskID)
	if err != nil {
		return utils.Invalid("task_id must be a valid id")
	}
	employeeID, err := uuid.Parse(input.EmployeeID)
	if err != nil {
		return utils.Invalid("employee_id must be a valid id")
	}

	assignment, err := ac.Assignments.Create(middleware.CallerIdentity(c), services.CreateAssignmentInput{
		TaskID:     taskID,
		EmployeeID: employeeID,
		Status:     models.AssignmentStatus(input.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func (ac *AssignmentController) Decide(c *fiber.Ctx) error {
	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid assignment id")
	}
	var input DecideAssignmentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	assignment, err := ac.Assignments.Decide(middleware.CallerIdentity(c), assignmentID, models.AssignmentStatus(input.Status))
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (ac *AssignmentController) Delete(c *fiber.Ctx) error {
	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid assignment id")
	}
	if err := ac.Assignments.Delete(middleware.CallerIdentity(c), assignmentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ac *AssignmentController) Get(c *fiber.Ctx) error {
	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid assignment id")
	}
	assignment, err := ac.Assignments.Get(middleware.CallerIdentity(c), assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (ac *AssignmentController) ListForTask(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid task id")
	}
	assignments, err := ac.Assignments.ListForTask(middleware.CallerIdentity(c), taskID)
	if err != nil {
		return err
	}
	return c.JSON(assignments)
}

func (ac *AssignmentController) ListMine(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)
	assignments, err := ac.Assignments.ListForEmployee(identity, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(assignments)
}
