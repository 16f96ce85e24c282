package handler

import (
	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TabHandler handles tab (comanda) endpoints
type TabHandler struct {
	BaseHandler
	store *comanda.Store
}

// NewTabHandler creates a new TabHandler
func NewTabHandler(store *comanda.Store) *TabHandler {
	return &TabHandler{store: store}
}

// ListTabsQuery filters the tab listing
type ListTabsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open closed" example:"open"`
}

// CreateTabRequest opens a tab for a customer
// @Description Request body for opening a tab
type CreateTabRequest struct {
	CustomerName     string `json:"customer_name" binding:"required,min=1,max=120" example:"Joao"`
	CustomerIdentity string `json:"customer_identity" binding:"max=60" example:"123.456.789-00"`
	Table            string `json:"table" binding:"max=60" example:"Mesa 4"`
}

// AddItemRequest puts a product on a tab
// @Description Request body for adding an item. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity  *int   `json:"quantity" binding:"omitempty,min=1" example:"2"`
	Notes     string `json:"notes" binding:"max=500" example:"sem gelo"`
}

// UpdateItemQuantityRequest sets the quantity of an item
// @Description Request body for changing an item quantity
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"3"`
}

// CloseTabRequest settles a tab
// @Description Request body for closing a tab. amount_paid below the total leaves a negative change.
type CloseTabRequest struct {
	PaymentMethod string           `json:"payment_method" binding:"required,payment_method" example:"pix"`
	AmountPaid    *decimal.Decimal `json:"amount_paid" binding:"required" swaggertype:"string" example:"50.00"`
}

// ListTabs godoc
// @ID           listTabs
// @Summary      List tabs
// @Description  Tabs newest first, optionally filtered by status
// @Tags         tabs
// @Produce      json
// @Param        status query string false "Status filter" Enums(open, closed)
// @Success      200 {object} dto.Response{data=[]comanda.TabResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs [get]
func (h *TabHandler) ListTabs(c *gin.Context) {
	var query ListTabsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleError(c, err)
		return
	}

	var tabs []*tab.Tab
	switch tab.Status(query.Status) {
	case tab.StatusOpen:
		tabs = h.store.GetOpenTabs()
	case tab.StatusClosed:
		tabs = h.store.GetClosedTabs()
	default:
		tabs = h.store.ListTabs()
	}
	h.List(c, comanda.ToTabResponses(tabs), len(tabs))
}

// GetTab godoc
// @ID           getTab
// @Summary      Get tab by ID
// @Tags         tabs
// @Produce      json
// @Param        id path string true "Tab ID" format(uuid)
// @Success      200 {object} dto.Response{data=comanda.TabResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs/{id} [get]
func (h *TabHandler) GetTab(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	t, err := h.store.GetTab(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comanda.ToTabResponse(t))
}

// CreateTab godoc
// @ID           createTab
// @Summary      Open a tab
// @Tags         tabs
// @Accept       json
// @Produce      json
// @Param        request body CreateTabRequest true "Customer of the new tab"
// @Success      201 {object} dto.Response{data=comanda.TabResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs [post]
func (h *TabHandler) CreateTab(c *gin.Context) {
	var req CreateTabRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := tab.NewCustomer(req.CustomerName, req.CustomerIdentity, req.Table)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	t, err := h.store.CreateTab(c.Request.Context(), customer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comanda.ToTabResponse(t))
}

// AddItem godoc
// @ID           addTabItem
// @Summary      Add an item to a tab
// @Description  Copies the product's current name and price onto a new item and raises the total
// @Tags         tabs
// @Accept       json
// @Produce      json
// @Param        id path string true "Tab ID" format(uuid)
// @Param        request body AddItemRequest true "Item to add"
// @Success      201 {object} dto.Response{data=comanda.TabResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs/{id}/items [post]
func (h *TabHandler) AddItem(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	t, err := h.store.AddItemToTab(c.Request.Context(), id, comanda.AddItemInput{
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comanda.ToTabResponse(t))
}

// UpdateItemQuantity godoc
// @ID           updateTabItemQuantity
// @Summary      Change an item quantity
// @Description  Moves the tab total by the difference. An unknown item leaves the tab unchanged.
// @Tags         tabs
// @Accept       json
// @Produce      json
// @Param        id path string true "Tab ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Param        request body UpdateItemQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=comanda.TabResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs/{id}/items/{item_id} [patch]
func (h *TabHandler) UpdateItemQuantity(c *gin.Context) {
	var uri dto.TabItemRequest
	if !h.bindURI(c, &uri) {
		return
	}
	var req UpdateItemQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	t, err := h.store.UpdateItemQuantity(c.Request.Context(),
		uuid.MustParse(uri.ID), uuid.MustParse(uri.ItemID), req.Quantity)
	h.respondItemChange(c, t, err)
}

// RemoveItem godoc
// @ID           removeTabItem
// @Summary      Remove an item from a tab
// @Description  Lowers the total by the item price. An unknown item leaves the tab unchanged.
// @Tags         tabs
// @Produce      json
// @Param        id path string true "Tab ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=comanda.TabResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs/{id}/items/{item_id} [delete]
func (h *TabHandler) RemoveItem(c *gin.Context) {
	var uri dto.TabItemRequest
	if !h.bindURI(c, &uri) {
		return
	}

	t, err := h.store.RemoveItemFromTab(c.Request.Context(), uuid.MustParse(uri.ID), uuid.MustParse(uri.ItemID))
	h.respondItemChange(c, t, err)
}

// respondItemChange answers an item mutation. The store ignores unknown tabs; over HTTP they are a 404.
func (h *TabHandler) respondItemChange(c *gin.Context, t *tab.Tab, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if t == nil {
		h.HandleError(c, comanda.ErrTabNotFound)
		return
	}
	h.Success(c, comanda.ToTabResponse(t))
}

// CloseTab godoc
// @ID           closeTab
// @Summary      Close a tab
// @Description  Records the payment and closes the tab for good
// @Tags         tabs
// @Accept       json
// @Produce      json
// @Param        id path string true "Tab ID" format(uuid)
// @Param        request body CloseTabRequest true "Payment"
// @Success      200 {object} dto.Response{data=comanda.TabResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tabs/{id}/close [post]
func (h *TabHandler) CloseTab(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CloseTabRequest
	if !h.bindJSON(c, &req) {
		return
	}

	t, err := h.store.CloseTab(c.Request.Context(), id, tab.PaymentMethod(req.PaymentMethod), *req.AmountPaid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comanda.ToTabResponse(t))
}
