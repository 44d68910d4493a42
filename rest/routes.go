package rest

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the v1 API under rootPath ("" mounts at the server root).
func RegisterRoutes(e *echo.Echo, rootPath string, h *Handler) {
	v1 := e.Group(rootPath + "/v1")

	v1.GET("/health", h.Health)
	v1.GET("/healthcheck", h.Health)

	books := v1.Group("/books")
	books.GET("/search", h.SearchBooks)
	books.GET("/:id", h.GetBook)
	books.POST("/:id/export", h.ExportBook)
}
