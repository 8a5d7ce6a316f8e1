package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "crewplan/controllers"
	"crewplan/middleware"
	"crewplan/services"
	"crewplan/ws"
)

// SetupRoutes wires services and controllers onto the fiber app.
func SetupRoutes(app *fiber.App, db *gorm.DB, hub *ws.Hub, publisher services.Publisher, appLog *logrus.Logger) {
	calendarService := services.NewCalendarService(db)
	chatService := services.NewChatService(db, publisher, appLog)
	requestService := services.NewRequestService(db, publisher, appLog)
	assignmentService := services.NewAssignmentService(db, calendarService, chatService, publisher, appLog)
	taskService := services.NewTaskService(db, calendarService, appLog)
	userService := services.NewUserService(db, appLog)
	leaveService := services.NewLeaveService(db, calendarService, appLog)

	requestController := controller.NewRequestController(requestService, appLog)
	assignmentController := controller.NewAssignmentController(assignmentService, appLog)
	taskController := controller.NewTaskController(taskService, appLog)
	chatController := controller.NewChatController(chatService, appLog)
	calendarController := controller.NewCalendarController(calendarService, appLog)
	userController := controller.NewUserController(userService, appLog)
	leaveController := controller.NewLeaveController(leaveService, appLog)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(db), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Onboarding requests
	requests := api.Group("/requests")
	requests.Post("/", requestController.Create)
	requests.Get("/", requestController.ListMine)
	requests.Get("/:id", requestController.Get)
	requests.Patch("/:id/status", requestController.Decide)

	// Task assignments
	assignments := api.Group("/assignments")
	assignments.Post("/", assignmentController.Create)
	assignments.Get("/", assignmentController.ListMine)
	assignments.Get("/:id", assignmentController.Get)
	assignments.Patch("/:id/status", assignmentController.Decide)
	assignments.Delete("/:id", assignmentController.Delete)

	// Tasks
	tasks := api.Group("/tasks")
	tasks.Post("/", taskController.Create)
	tasks.Get("/", taskController.ListMine)
	tasks.Get("/:id", taskController.Get)
	tasks.Put("/:id", taskController.Update)
	tasks.Delete("/:id", taskController.Delete)
	tasks.Get("/:id/assignments", assignmentController.ListForTask)

	// Chats
	chats := api.Group("/chats")
	chats.Post("/group", chatController.CreateGroup)
	chats.Post("/direct", chatController.CreateDirect)
	chats.Get("/", chatController.List)
	chats.Get("/:id/messages", chatController.Messages)
	chats.Post("/:id/messages", chatController.Send)

	// Calendar
	calendar := api.Group("/calendar")
	calendar.Get("/", calendarController.Mine)
	calendar.Get("/employee/:id", calendarController.ForEmployee)

	// Leave requests
	leaves := api.Group("/leaves")
	leaves.Post("/", leaveController.Create)
	leaves.Get("/", leaveController.ListMine)
	leaves.Patch("/:id/status", leaveController.Decide)

	// Users
	users := api.Group("/users")
	users.Get("/me", userController.Me)
	users.Get("/employees", userController.Employees)
	users.Get("/employees/available", userController.AvailableEmployees)
	users.Post("/employees/:id", userController.AddEmployee)
	users.Delete("/employees/:id", userController.RemoveEmployee)
	users.Patch("/availability", userController.SetAvailability)

	// Live-update channel. Auth happens on the first frame inside the
	// handler, not here, so a token never shows up in an URL.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(ws.Handler(hub)))
}
