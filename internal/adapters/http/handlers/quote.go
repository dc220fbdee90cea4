package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// ExportFilename is the attachment name of GET /quotes/export.
const ExportFilename = "quotes.json"

// QuoteHandler handles the quote, category and preference endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	if service == nil {
		panic("QuoteHandler: service is required")
	}

	return &QuoteHandler{service: service}
}

// List handles GET /api/v1/quotes?category=&cursor=&limit=
func (h *QuoteHandler) List(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	cursor, err := req.DecodeCursor()
	if err != nil && !errors.Is(err, dto.ErrNoCursor) {
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	quotes := dto.FromCollection(h.service.List(req.Category))

	c.JSON(http.StatusOK, dto.Paginate(quotes, cursor, req.GetLimit(), quoteKey))
}

func quoteKey(q dto.QuoteResponse) string {
	return domain.Quote{ID: q.ID, Text: q.Text, Category: q.Category}.Key()
}

// Create handles POST /api/v1/quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	q, err := h.service.Add(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+q.ID)
	c.JSON(http.StatusCreated, dto.FromQuote(q))
}

// Delete handles DELETE /api/v1/quotes/:id and returns the removed quote.
func (h *QuoteHandler) Delete(c *gin.Context) {
	q, err := h.service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Random handles GET /api/v1/quotes/random. Without a category parameter the
// selected category preference applies.
func (h *QuoteHandler) Random(c *gin.Context) {
	ctx := c.Request.Context()

	category, given := c.GetQuery("category")
	if !given {
		selected, err := h.service.SelectedCategory(ctx)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		category = selected
	}

	q, err := h.service.Random(ctx, category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Last handles GET /api/v1/quotes/last.
func (h *QuoteHandler) Last(c *gin.Context) {
	q, err := h.service.LastQuote(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Export handles GET /api/v1/quotes/export as a quotes.json download.
func (h *QuoteHandler) Export(c *gin.Context) {
	data, err := h.service.Export()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /api/v1/quotes/import. The body is a JSON array of quotes.
func (h *QuoteHandler) Import(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			dto.HandleErrorCode(c, dto.ErrorCodeTooLarge, "import document exceeds the request size limit")
			return
		}

		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, "reading request body: "+err.Error())
		return
	}

	result, err := h.service.ImportJSON(c.Request.Context(), body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromImportResult(result))
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: h.service.Categories()})
}

// GetCategory handles GET /api/v1/preferences/category.
func (h *QuoteHandler) GetCategory(c *gin.Context) {
	category, err := h.service.SelectedCategory(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryResponse{Category: category})
}

// PutCategory handles PUT /api/v1/preferences/category.
func (h *QuoteHandler) PutCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	category, err := h.service.SetSelectedCategory(c.Request.Context(), req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryResponse{Category: category})
}

// RegisterRoutes registers the quote routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.List)
	quotes.POST("", h.Create)
	quotes.GET("/random", h.Random)
	quotes.GET("/last", h.Last)
	quotes.GET("/export", h.Export)
	quotes.POST("/import", h.Import)
	quotes.DELETE("/:id", h.Delete)

	rg.GET("/categories", h.Categories)

	prefs := rg.Group("/preferences")
	prefs.GET("/category", h.GetCategory)
	prefs.PUT("/category", h.PutCategory)
}
