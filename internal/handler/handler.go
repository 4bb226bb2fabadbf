package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"petmatch/internal/config"
	"petmatch/internal/logging"
	"petmatch/internal/service"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	PostService   service.PostService
	MatchService  service.MatchService
	UserService   service.UserService
	AnimalService service.AnimalService
	DB            HealthChecker
	Cfg           *config.Config
	Validate      *validator.Validate
	Logger        logging.Logger
}

func NewHandlers(service *service.Service, db HealthChecker, config *config.Config, logger logging.Logger) *Handlers {
	return &Handlers{
		PostService:   service.Post,
		MatchService:  service.Match,
		UserService:   service.User,
		AnimalService: service.Animal,
		DB:            db,
		Cfg:           config,
		Validate:      validator.New(),
		Logger:        logger,
	}
}

// Routes registers every endpoint on r.
func (h *Handlers) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/posts/lost", h.CreateLostPost).Methods(http.MethodPost)
	api.HandleFunc("/posts/found", h.CreateFoundPost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{type:lost|found}/{id:[0-9]+}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{type:lost|found}/{id:[0-9]+}", h.DeletePost).Methods(http.MethodDelete)

	api.HandleFunc("/animals", h.RegisterAnimal).Methods(http.MethodPost)
	api.HandleFunc("/animals/{id:[0-9]+}/confirm-found", h.ConfirmFound).Methods(http.MethodPost)
	api.HandleFunc("/animals/{id:[0-9]+}/matches", h.GetMatches).Methods(http.MethodGet)

	api.HandleFunc("/users", h.RegisterUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/animals", h.ListAnimals).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/notification-token", h.UpdateNotificationToken).Methods(http.MethodPut)
}
