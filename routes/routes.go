package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/greenfee/tourops/handlers"
	"github.com/greenfee/tourops/middleware"
	"github.com/greenfee/tourops/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tour        *handlers.TourHandler
	Participant *handlers.ParticipantHandler
	Room        *handlers.RoomHandler
	TeeTime     *handlers.TeeTimeHandler
	Report      *handlers.ReportHandler
}

// SetupRoutes собирает маршрутизатор консоли: публичный вход и закрытая
// зона менеджеров туров. Регистрация новых сотрудников доступна только
// администратору.
func SetupRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Post("/auth/login", h.Auth.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(models.RoleAdmin)))
			r.Post("/auth/register", h.Auth.Register)
		})

		r.Route("/tours", func(r chi.Router) {
			r.Get("/", h.Tour.List)
			r.Post("/", h.Tour.Create)

			r.Route("/{tourID}", func(r chi.Router) {
				r.Get("/", h.Tour.GetByID)
				r.Put("/", h.Tour.Update)
				r.Delete("/", h.Tour.Delete)
				r.Put("/status", h.Tour.ChangeStatus)

				r.Get("/participants", h.Participant.ListByTour)
				r.Post("/participants", h.Participant.Create)

				r.Get("/rooms", h.Room.ListByTour)
				r.Post("/rooms", h.Room.Create)
				r.Get("/rooms/statistics", h.Room.Statistics)

				r.Get("/teetimes", h.TeeTime.ListByTour)
				r.Post("/teetimes", h.TeeTime.Create)
				r.Post("/teetimes/generate", h.TeeTime.BulkGenerate)
				r.Delete("/teetimes", h.TeeTime.DeleteByDate)

				r.Get("/report", h.Report.Render)
				r.Post("/report/export", h.Report.Export)
			})
		})

		r.Route("/participants/{participantID}", func(r chi.Router) {
			r.Get("/", h.Participant.GetByID)
			r.Put("/", h.Participant.Update)
			r.Delete("/", h.Participant.Delete)
			r.Put("/room", h.Participant.AssignRoom)
		})

		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Put("/", h.Room.Update)
			r.Delete("/", h.Room.Delete)
		})

		r.Route("/teetimes", func(r chi.Router) {
			r.Post("/move", h.TeeTime.MovePlayer)
			r.Route("/{slotID}", func(r chi.Router) {
				r.Put("/", h.TeeTime.Update)
				r.Delete("/", h.TeeTime.Delete)
			})
		})
	})

	return router
}
