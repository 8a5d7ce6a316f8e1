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

type RequestController struct {
	Requests *services.RequestService
	Log      *logrus.Logger
}

func NewRequestController(requests *services.RequestService, log *logrus.Logger) *RequestController {
	return &RequestController{Requests: requests, Log: log}
}

type CreateRequestInput struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Message    string `json:"message" validate:"max=500"`
}

type DecideRequestInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func (rc *RequestController) Create(c *fiber.Ctx) error {
	var input CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	employeeID, err := uuid.Parse(input.EmployeeID)
	if err != nil {
		return utils.Invalid("employee_id must be a valid id")
	}

	request, err := rc.Requests.Create(middleware.CallerIdentity(c), employeeID, input.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

func (rc *RequestController) Decide(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid request id")
	}
	var input DecideRequestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	request, err := rc.Requests.Decide(middleware.CallerIdentity(c), requestID, models.RequestStatus(input.Status))
	if err != nil {
		return err
	}
	return c.JSON(request)
}

// ListMine returns the caller's requests, outgoing for managers, incoming
// for employees.
func (rc *RequestController) ListMine(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)

	var (
		requests []models.Request
		err      error
	)
	if identity.IsManager() {
		requests, err = rc.Requests.ListForManager(identity, identity.UserID)
	} else {
		requests, err = rc.Requests.ListForEmployee(identity, identity.UserID)
	}
	if err != nil {
		return err
	}
	return c.JSON(requests)
}

func (rc *RequestController) Get(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid request id")
	}
	request, err := rc.Requests.Get(middleware.CallerIdentity(c), requestID)
	if err != nil {
		return err
	}
	return c.JSON(request)
}
