package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lamahang-storefront/internal/checkout"
	"lamahang-storefront/internal/domain"
)

// sessionHandlers expose one storefront session over HTTP for a UI.
type sessionHandlers struct {
	session  *checkout.Session
	products checkout.ProductLookup
	syncer   Syncer
	logger   *zap.Logger
}

func (h *sessionHandlers) register(g *gin.RouterGroup) {
	g.GET("/summary", h.summary)

	g.GET("/cart", h.cart)
	g.POST("/cart/items", h.addToCart)
	g.PUT("/cart/items/:productId", h.setQuantity)
	g.DELETE("/cart/items/:productId", h.removeFromCart)

	g.GET("/wishlist", h.wishlist)
	g.POST("/wishlist/items", h.addToWishlist)
	g.POST("/wishlist/items/:productId/toggle", h.toggleWishlist)
	g.DELETE("/wishlist/items/:productId", h.removeFromWishlist)

	g.GET("/addresses", h.addresses)
	g.POST("/addresses", h.addAddress)
	g.PUT("/addresses/:id", h.updateAddress)
	g.DELETE("/addresses/:id", h.removeAddress)
	g.POST("/addresses/:id/activate", h.activateAddress)

	g.GET("/checkout", h.checkoutState)
	g.GET("/checkout/breakdown", h.breakdown)
	g.PUT("/checkout/address", h.selectAddress)
	g.PUT("/checkout/payment", h.selectPayment)
	g.PUT("/checkout/notes", h.setNotes)
	g.PUT("/checkout/voucher", h.applyVoucher)
	g.DELETE("/checkout/voucher", h.removeVoucher)
	g.POST("/checkout", h.submit)
	g.POST("/checkout/retry", h.retry)

	g.POST("/sync", h.sync)
}

func (h *sessionHandlers) summary(c *gin.Context) {
	respond(c, http.StatusOK, h.session.Summary(c.Request.Context()))
}

func (h *sessionHandlers) cart(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"items":      nonNil(h.session.CartItems()),
		"totalItems": h.session.TotalItems(),
		"totalPrice": h.session.TotalPrice(),
	})
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *sessionHandlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		badRequest(c, "productId required")
		return
	}
	product, ok := h.activeProduct(c, req.ProductID)
	if !ok {
		return
	}
	if err := h.session.AddToCart(c.Request.Context(), product.CartLine(), req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	h.cart(c)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *sessionHandlers) setQuantity(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity required")
		return
	}
	if err := h.session.SetQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	h.cart(c)
}

func (h *sessionHandlers) removeFromCart(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.session.RemoveFromCart(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.cart(c)
}

func (h *sessionHandlers) wishlist(c *gin.Context) {
	respond(c, http.StatusOK, nonNil(h.session.WishlistItems()))
}

type productRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *sessionHandlers) addToWishlist(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		badRequest(c, "productId required")
		return
	}
	product, ok := h.activeProduct(c, req.ProductID)
	if !ok {
		return
	}
	if err := h.session.AddToWishlist(c.Request.Context(), product.WishlistEntry()); err != nil {
		writeError(c, err)
		return
	}
	h.wishlist(c)
}

func (h *sessionHandlers) toggleWishlist(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var entry domain.WishlistItem
	if h.session.IsInWishlist(id) {
		entry = domain.WishlistItem{ProductID: id}
	} else {
		product, ok := h.activeProduct(c, id)
		if !ok {
			return
		}
		entry = product.WishlistEntry()
	}
	present, err := h.session.ToggleWishlist(c.Request.Context(), entry)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"productId": id, "inWishlist": present})
}

func (h *sessionHandlers) removeFromWishlist(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.session.RemoveFromWishlist(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.wishlist(c)
}

func (h *sessionHandlers) addresses(c *gin.Context) {
	respond(c, http.StatusOK, nonNil(h.session.Addresses()))
}

func (h *sessionHandlers) addAddress(c *gin.Context) {
	var a domain.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, "invalid address body: "+err.Error())
		return
	}
	created, err := h.session.AddAddress(c.Request.Context(), a)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *sessionHandlers) updateAddress(c *gin.Context) {
	var a domain.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, "invalid address body: "+err.Error())
		return
	}
	a.ID = c.Param("id")
	if err := h.session.UpdateAddress(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	h.addresses(c)
}

func (h *sessionHandlers) removeAddress(c *gin.Context) {
	if err := h.session.RemoveAddress(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	h.addresses(c)
}

func (h *sessionHandlers) activateAddress(c *gin.Context) {
	if err := h.session.SetActiveAddress(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	h.addresses(c)
}

func (h *sessionHandlers) checkoutState(c *gin.Context) {
	out := gin.H{
		"state":         h.session.State(),
		"paymentMethod": h.session.PaymentMethod(),
		"voucherCode":   h.session.AppliedVoucher(),
	}
	if a, ok := h.session.SelectedAddress(); ok {
		out["address"] = a
	}
	if err := h.session.LastError(); err != nil {
		out["lastError"] = err.Error()
	}
	respond(c, http.StatusOK, out)
}

func (h *sessionHandlers) breakdown(c *gin.Context) {
	respond(c, http.StatusOK, h.session.PriceBreakdown(c.Request.Context()))
}

type selectAddressRequest struct {
	AddressID string `json:"addressId"`
}

func (h *sessionHandlers) selectAddress(c *gin.Context) {
	var req selectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "addressId required")
		return
	}
	if err := h.session.SelectAddress(req.AddressID); err != nil {
		writeError(c, err)
		return
	}
	h.checkoutState(c)
}

type selectPaymentRequest struct {
	Method string `json:"method"`
}

func (h *sessionHandlers) selectPayment(c *gin.Context) {
	var req selectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "method required")
		return
	}
	if err := h.session.SelectPaymentMethod(c.Request.Context(), req.Method); err != nil {
		writeError(c, err)
		return
	}
	h.checkoutState(c)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *sessionHandlers) setNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "notes required")
		return
	}
	h.session.SetNotes(req.Notes)
	c.Status(http.StatusNoContent)
}

type voucherRequest struct {
	Code string `json:"code"`
}

func (h *sessionHandlers) applyVoucher(c *gin.Context) {
	var req voucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code required")
		return
	}
	app, err := h.session.ApplyVoucher(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"voucher":   app,
		"breakdown": h.session.PriceBreakdown(c.Request.Context()),
	})
}

func (h *sessionHandlers) removeVoucher(c *gin.Context) {
	h.session.RemoveVoucher()
	h.breakdown(c)
}

func (h *sessionHandlers) submit(c *gin.Context) {
	receipt, err := h.session.Checkout(c.Request.Context())
	if err != nil {
		var subErr *domain.CheckoutSubmissionError
		if errors.As(err, &subErr) {
			h.logger.Warn("checkout submission failed", zap.String("reference", subErr.Reference), zap.Error(subErr.Err))
		}
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, receipt)
}

func (h *sessionHandlers) retry(c *gin.Context) {
	if err := h.session.Retry(); err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	h.checkoutState(c)
}

func (h *sessionHandlers) sync(c *gin.Context) {
	if h.syncer == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "sync not configured"})
		return
	}
	if err := h.syncer.SyncOnce(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"unsyncedCart":     len(h.session.UnsyncedCartItems()),
		"unsyncedWishlist": len(h.session.UnsyncedWishlistItems()),
	})
}

func (h *sessionHandlers) activeProduct(c *gin.Context, id int64) (domain.Product, bool) {
	product, err := h.products.Product(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return domain.Product{}, false
	}
	if !product.IsActive {
		writeError(c, domain.NewValidationError("productId", "product is not available"))
		return domain.Product{}, false
	}
	return product, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
