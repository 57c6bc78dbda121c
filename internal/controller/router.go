package controller

import (
	"net/http"

	"artbid-api/internal/platform/logger"
	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type RouterOptions struct {
	Sessions       SessionResolver
	Logger         logger.Logger
	MetricsHandler http.Handler
	MetricsPath    string
}

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, opts RouterOptions) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	handler.HideBanner = true
	handler.Use(recoverMiddleware(log), requestLogMiddleware(log))
	if opts.Sessions != nil {
		handler.Use(sessionMiddleware(opts.Sessions))
	}

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		handler.GET(path, echo.WrapHandler(opts.MetricsHandler))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newUserRoutesHandler(api, services, validate)
	newAuctionRoutesHandler(api, services, validate)
	newBidRoutesHandler(api, services, validate)
	newCommentRoutesHandler(api, services, validate)
	newCartRoutesHandler(api, services, validate)
	newWatchRoutesHandler(api, services, log)
}
