package app

import (
	"net/http"

	"github.com/eloity/tradelimits/internal/handler"
	"github.com/eloity/tradelimits/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mid := middleware.New(app.errorHandler, app.Logger, &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	limitHandler := handler.NewTradingLimitHandler(&handler.TradingLimitHandler{
		Limits:     app.Limits,
		ErrHandler: app.errorHandler,
	})

	documentHandler := handler.NewKYCDocumentHandler(&handler.KYCDocumentHandler{
		Limits:       app.Limits,
		DocRepo:      app.DB.KYCDocument(),
		FileUploader: app.FileUploader,
		Kafka:        app.Kafka,
		ErrHandler:   app.errorHandler,
		Helper:       app.helper,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.Handle("GET /trading-limits", mid.RequireAuthenticatedUser(http.HandlerFunc(limitHandler.HandleGetMyTradingLimits)))
	mux.Handle("POST /trading-limits/check", mid.RequireAuthenticatedUser(http.HandlerFunc(limitHandler.HandleCheckTradeAmount)))
	mux.Handle("PUT /trading-limits/{userID}", mid.RequireAdminUser(http.HandlerFunc(limitHandler.HandleUpdateUserTradingLimits)))

	mux.Handle("POST /kyc/documents", mid.RequireAuthenticatedUser(http.HandlerFunc(documentHandler.HandleUploadDocument)))
	mux.Handle("GET /kyc/documents", mid.RequireAuthenticatedUser(http.HandlerFunc(documentHandler.HandleGetMyDocuments)))
	mux.Handle("PATCH /kyc/documents/{id}", mid.RequireAdminUser(http.HandlerFunc(documentHandler.HandleReviewDocument)))

	return mid.LogAccess(mid.RecoverPanic(mid.Authenticate(mux)))
}
