package router

import (
	"github.com/comanda/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers served under the API prefix
type Handlers struct {
	Product *handler.ProductHandler
	Tab     *handler.TabHandler
	Report  *handler.ReportHandler
	System  *handler.SystemHandler
}

// ComandaRoutes builds the route groups of the shop API
func ComandaRoutes(h Handlers) []*DomainGroup {
	products := NewDomainGroup("catalog", "/products")
	products.GET("", h.Product.ListProducts).
		POST("", h.Product.CreateProduct).
		GET("/:id", h.Product.GetProduct).
		PATCH("/:id", h.Product.UpdateProduct).
		DELETE("/:id", h.Product.DeleteProduct).
		POST("/:id/discontinue", h.Product.DiscontinueProduct)

	tabs := NewDomainGroup("tab", "/tabs")
	tabs.GET("", h.Tab.ListTabs).
		POST("", h.Tab.CreateTab).
		GET("/:id", h.Tab.GetTab).
		POST("/:id/close", h.Tab.CloseTab)
	tabs.Group("items", "/:id/items").
		POST("", h.Tab.AddItem).
		PATCH("/:item_id", h.Tab.UpdateItemQuantity).
		DELETE("/:item_id", h.Tab.RemoveItem)

	reports := NewDomainGroup("report", "/reports")
	reports.GET("/summary", h.Report.GetSummary).
		GET("/daily", h.Report.GetDaily).
		GET("/closed-by-day", h.Report.GetClosedByDay)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping).
		POST("/reload", h.System.Reload)

	return []*DomainGroup{products, tabs, reports, system}
}
