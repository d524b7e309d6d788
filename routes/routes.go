package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/padeliga/league-system/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	seasonHandler *handlers.SeasonHandler,
	categoryHandler *handlers.CategoryHandler,
	playerHandler *handlers.PlayerHandler,
	courtHandler *handlers.CourtHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	matchDayHandler *handlers.MatchDayHandler,
	scheduleHandler *handlers.ScheduleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/", seasonHandler.ListSeasons)
		r.Post("/", seasonHandler.CreateSeason)

		r.Route("/{seasonID}", func(r chi.Router) {
			r.Get("/", seasonHandler.GetSeasonByID)
			r.Put("/", seasonHandler.UpdateSeason)
			r.Patch("/status", seasonHandler.UpdateSeasonStatus)
			r.Delete("/", seasonHandler.DeleteSeason)

			r.Get("/overrides", seasonHandler.ListMatchDayOverrides)
			r.Put("/overrides", seasonHandler.SetMatchDayOverride)

			r.Get("/categories", categoryHandler.ListCategoriesBySeason)
			r.Post("/categories", categoryHandler.CreateCategory)

			r.Get("/courts", courtHandler.ListCourtsBySeason)
			r.Post("/courts", courtHandler.CreateCourt)

			r.Post("/schedule/auto", scheduleHandler.AutoSchedule)
		})
	})

	router.Route("/categories/{categoryID}", func(r chi.Router) {
		r.Get("/", categoryHandler.GetCategoryByID)
		r.Put("/", categoryHandler.UpdateCategory)
		r.Delete("/", categoryHandler.DeleteCategory)
		r.Post("/poster", categoryHandler.UploadCategoryPoster)

		r.Get("/players", playerHandler.ListPlayersByCategory)
		r.Post("/players", playerHandler.CreatePlayer)

		r.Get("/matchdays", matchDayHandler.ListMatchDays)
		r.Post("/calendar", matchDayHandler.GenerateCalendar)
	})

	router.Route("/players/{playerID}", func(r chi.Router) {
		r.Get("/", playerHandler.GetPlayerByID)
		r.Put("/", playerHandler.UpdatePlayer)
		r.Delete("/", playerHandler.DeletePlayer)
		r.Post("/promote", playerHandler.PromoteFromWaitingList)

		r.Get("/availability", availabilityHandler.GetPlayerAvailability)
		r.Put("/availability/weekly", availabilityHandler.SetWeeklyAvailability)
		r.Put("/availability/overrides", availabilityHandler.SetOverride)
		r.Delete("/availability/overrides", availabilityHandler.DeleteOverride)
	})

	router.Route("/courts/{courtID}", func(r chi.Router) {
		r.Get("/", courtHandler.GetCourtByID)
		r.Put("/", courtHandler.UpdateCourt)
		r.Delete("/", courtHandler.DeactivateCourt)
	})

	router.Route("/day-groups/{dayGroupID}", func(r chi.Router) {
		r.Get("/", matchDayHandler.GetDayGroup)
		r.Patch("/assignment", matchDayHandler.ReassignSlot)
		r.Post("/regenerate-rotations", matchDayHandler.RegenerateRotations)
	})

	router.Get("/player-availability/check-slot", availabilityHandler.CheckSlot)

	router.Get("/ws/seasons/{seasonID}", webSocketHandler.ServeWs)
}
