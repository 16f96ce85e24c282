package handler

import (
	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	BaseHandler
	store *comanda.Store
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(store *comanda.Store) *ProductHandler {
	return &ProductHandler{store: store}
}

// ListProductsQuery filters the catalog listing
type ListProductsQuery struct {
	Category string `form:"category" binding:"omitempty,category" example:"drinks"`
}

// CreateProductRequest represents a request to create a new product
// @Description Request body for creating a new product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200" example:"Essencia Menta 50g"`
	Price       decimal.Decimal `json:"price" binding:"money" swaggertype:"string" example:"35.00"`
	Category    string          `json:"category" binding:"required,category" example:"essences"`
	Description string          `json:"description" binding:"max=1000" example:"Mint flavour"`
	Available   *bool           `json:"available" example:"true"`
}

// UpdateProductRequest represents a partial product update. Absent fields are left as they are.
// @Description Request body for updating a product
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200" example:"Essencia Menta 100g"`
	Price       *decimal.Decimal `json:"price" binding:"omitempty,money" swaggertype:"string" example:"60.00"`
	Category    *string          `json:"category" binding:"omitempty,category" example:"essences"`
	Description *string          `json:"description" binding:"omitempty,max=1000" example:""`
	Available   *bool            `json:"available" example:"false"`
}

func (r UpdateProductRequest) patch() catalog.ProductPatch {
	p := catalog.ProductPatch{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Available:   r.Available,
	}
	if r.Category != nil {
		category := catalog.Category(*r.Category)
		p.Category = &category
	}
	return p
}

// ListProducts godoc
// @ID           listProducts
// @Summary      List products
// @Description  Every product ordered by name, optionally restricted to one category
// @Tags         products
// @Produce      json
// @Param        category query string false "Category filter" Enums(drinks, essences, accessories, food, other)
// @Success      200 {object} dto.Response{data=[]comanda.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleError(c, err)
		return
	}

	var products []*catalog.Product
	if query.Category != "" {
		products = h.store.ListProductsByCategory(catalog.Category(query.Category))
	} else {
		products = h.store.ListProducts()
	}
	h.List(c, comanda.ToProductResponses(products), len(products))
}

// GetProduct godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=comanda.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	product, err := h.store.GetProduct(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comanda.ToProductResponse(product))
}

// CreateProduct godoc
// @ID           createProduct
// @Summary      Create a product
// @Description  Adds a product to the catalog. Products are available unless stated otherwise.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=comanda.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	product, err := h.store.CreateProduct(c.Request.Context(), comanda.CreateProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Category:    catalog.Category(req.Category),
		Description: req.Description,
		Available:   available,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comanda.ToProductResponse(product))
}

// UpdateProduct godoc
// @ID           updateProduct
// @Summary      Update a product
// @Description  Applies the fields present in the body. Prices already on open tabs are not changed.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=comanda.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.store.UpdateProduct(c.Request.Context(), id, req.patch())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comanda.ToProductResponse(product))
}

// DiscontinueProduct godoc
// @ID           discontinueProduct
// @Summary      Discontinue a product
// @Description  Takes the product off sale for good while keeping it for tabs that reference it
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=comanda.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/discontinue [post]
func (h *ProductHandler) DiscontinueProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	product, err := h.store.DiscontinueProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comanda.ToProductResponse(product))
}

// DeleteProduct godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
