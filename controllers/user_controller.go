package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/services"
	"crewplan/utils"
)

type UserController struct {
	Users *services.UserService
	Log   *logrus.Logger
}

func NewUserController(users *services.UserService, log *logrus.Logger) *UserController {
	return &UserController{Users: users, Log: log}
}

type AvailabilityBody struct {
	Available *bool `json:"available" validate:"required"`
}

func (uc *UserController) Me(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)
	user, err := uc.Users.Get(identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (uc *UserController) Employees(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)
	employees, err := uc.Users.EmployeesOf(identity, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

func (uc *UserController) AvailableEmployees(c *fiber.Ctx) error {
	employees, err := uc.Users.ListAvailableEmployees(middleware.CallerIdentity(c))
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

func (uc *UserController) AddEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid employee id")
	}
	if err := uc.Users.AddEmployee(middleware.CallerIdentity(c), employeeID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (uc *UserController) RemoveEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid employee id")
	}
	if err := uc.Users.RemoveEmployee(middleware.CallerIdentity(c), employeeID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (uc *UserController) SetAvailability(c *fiber.Ctx) error {
	var body AvailabilityBody
	if err := c.BodyParser(&body); err != nil {
		return utils.Invalid("Invalid request body")
	}
	if err := utils.ValidateStruct(body); err != nil {
		return err
	}

	user, err := uc.Users.SetAvailability(middleware.CallerIdentity(c), *body.Available)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
