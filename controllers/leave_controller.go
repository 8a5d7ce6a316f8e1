package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/models"
	"crewplan/services"
	"crewplan/utils"
)

type LeaveController struct {
	Leaves *services.LeaveService
	Log    *logrus.Logger
}

func NewLeaveController(leaves *services.LeaveService, log *logrus.Logger) *LeaveController {
	return &LeaveController{Leaves: leaves, Log: log}
}

type CreateLeaveBody struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Reason    string    `json:"reason"`
}

type DecideLeaveBody struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func (lc *LeaveController) Create(c *fiber.Ctx) error {
	var body CreateLeaveBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	leave, err := lc.Leaves.Create(middleware.CallerIdentity(c), services.LeaveInput{
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Reason:    body.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(leave)
}

func (lc *LeaveController) Decide(c *fiber.Ctx) error {
	leaveID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid leave request id")
	}
	var body DecideLeaveBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	leave, err := lc.Leaves.Decide(middleware.CallerIdentity(c), leaveID, models.LeaveStatus(body.Status))
	if err != nil {
		return err
	}
	return c.JSON(leave)
}

func (lc *LeaveController) ListMine(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)

	var (
		leaves []models.LeaveRequest
		err    error
	)
	if identity.IsManager() {
		leaves, err = lc.Leaves.ListForManager(identity, identity.UserID)
	} else {
		leaves, err = lc.Leaves.ListForEmployee(identity, identity.UserID)
	}
	if err != nil {
		return err
	}
	return c.JSON(leaves)
}
