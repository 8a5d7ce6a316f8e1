package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crewplan/middleware"
	"crewplan/services"
	"crewplan/utils"
)

type CalendarController struct {
	Calendar *services.CalendarService
	Log      *logrus.Logger
}

func NewCalendarController(calendar *services.CalendarService, log *logrus.Logger) *CalendarController {
	return &CalendarController{Calendar: calendar, Log: log}
}

// Mine returns the caller's calendar: own entries for employees, all
// employees' entries for managers.
func (cc *CalendarController) Mine(c *fiber.Ctx) error {
	identity := middleware.CallerIdentity(c)

	if identity.IsManager() {
		entries, err := cc.Calendar.EntriesForManager(identity, identity.UserID)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}

	entries, err := cc.Calendar.EntriesForEmployee(identity, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// ForEmployee returns one employee's entries, for the employee or their
// manager.
func (cc *CalendarController) ForEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.Invalid("Invalid employee id")
	}
	entries, err := cc.Calendar.EntriesForEmployee(middleware.CallerIdentity(c), employeeID)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
