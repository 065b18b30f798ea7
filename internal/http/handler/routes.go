package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/database"
	"archivesys/internal/http/middleware"
	"archivesys/internal/i18n"
	"archivesys/internal/model"
	"archivesys/internal/service"
)

// Deps are the collaborators the HTTP routes dispatch to.
type Deps struct {
	DB        database.Pinger
	Documents service.DocumentService
	Catalog   service.CatalogService
	Reports   service.ReportService
	Users     service.UserService
	Labels    *i18n.Bundle
	// LoginLimiter throttles POST /auth/login per client IP; nil disables it.
	LoginLimiter *middleware.IPRateLimiter
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything except health probes and login requires a bearer token; /admin is staff only.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	login := []fiber.Handler{Login(d.Users)}
	if d.LoginLimiter != nil {
		login = append([]fiber.Handler{d.LoginLimiter.Handler()}, login...)
	}
	app.Post("/auth/login", login...)

	api := app.Group("", middleware.Auth(d.Users))

	api.Get("/auth/me", Me(d.Users))
	api.Get("/choices", ListChoices(d.Labels))

	api.Get("/documents", ListDocuments(d.Documents))
	api.Post("/documents", CreateDocument(d.Documents))
	api.Get("/documents/:id", GetDocument(d.Documents))
	api.Put("/documents/:id", UpdateDocument(d.Documents))
	api.Delete("/documents/:id", DeleteDocument(d.Documents))
	api.Get("/documents/:id/history", DocumentHistory(d.Documents))
	api.Get("/documents/:id/file", DownloadDocument(d.Documents))

	api.Get("/categories", ListCategories(d.Catalog))
	api.Post("/categories", CreateCategory(d.Catalog))
	api.Get("/categories/:id", GetCategory(d.Catalog))
	api.Put("/categories/:id", UpdateCategory(d.Catalog))
	api.Delete("/categories/:id", DeleteCategory(d.Catalog))

	api.Get("/locations", ListLocations(d.Catalog))
	api.Post("/locations", CreateLocation(d.Catalog))
	api.Get("/locations/:id", GetLocation(d.Catalog))
	api.Put("/locations/:id", UpdateLocation(d.Catalog))
	api.Delete("/locations/:id", DeleteLocation(d.Catalog))

	// Exports come first so "export-csv" is not taken for a report id.
	api.Get("/reports/export-csv", ExportDocuments(d.Reports, model.FormatCSV))
	api.Get("/reports/export-xlsx", ExportDocuments(d.Reports, model.FormatXLSX))
	api.Get("/reports", ListReports(d.Reports))
	api.Post("/reports", CreateReport(d.Reports))
	api.Get("/reports/:id", GetReport(d.Reports))
	api.Delete("/reports/:id", DeleteReport(d.Reports))
	api.Get("/reports/:id/file", DownloadReport(d.Reports))

	admin := api.Group("/admin", middleware.RequireStaff())
	admin.Get("/users", ListUsers(d.Users))
	admin.Post("/users", CreateUser(d.Users))
	admin.Get("/users/:id", GetUser(d.Users))
	admin.Put("/users/:id", UpdateUser(d.Users))
	admin.Delete("/users/:id", DeleteUser(d.Users))
	admin.Get("/history", AuditTrail(d.Documents))
}
