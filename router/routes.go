package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/krishkalaria12/foodies/cache"
	handler "github.com/krishkalaria12/foodies/handlers"
)

func SetupRoutes(app *fiber.App, meals *handler.MealHandler, routes *cache.RouteCache) {
	app.Use(recover.New(), logger.New())

	// Meals
	group := app.Group("/meals")
	group.Get("/", routes.Middleware(), meals.ListMeals)
	group.Post("/share", meals.ShareMeal)
	group.Get("/:slug", routes.Middleware(), meals.GetMeal)
}
