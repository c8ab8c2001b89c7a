package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lamahang-storefront/internal/domain"
	cartsvc "lamahang-storefront/internal/service/cart"
)

func registerAPI(api *gin.RouterGroup, deps Deps) {
	api.GET("/products", listProductsHandler(deps.ProductSvc))
	api.GET("/products/:productId", getProductHandler(deps.ProductSvc))

	api.GET("/vouchers", listVouchersHandler(deps.VoucherSvc))
	api.GET("/vouchers/:code", getVoucherHandler(deps.VoucherSvc))
	api.PUT("/vouchers/:code", saveVoucherHandler(deps.VoucherSvc))

	api.GET("/settings/app", appSettingsHandler(deps.SettingsSvc))
	api.PUT("/settings/app", updateAppSettingsHandler(deps.SettingsSvc))
	api.GET("/settings/payment", paymentSettingsHandler(deps.SettingsSvc))
	api.PUT("/settings/payment", updatePaymentSettingsHandler(deps.SettingsSvc))

	scoped := api.Group("", requireSession())
	scoped.GET("/cart/items", listCartItemsHandler(deps.SyncSvc))
	scoped.PUT("/cart/items/:productId", putCartItemHandler(deps.SyncSvc))
	scoped.DELETE("/cart/items/:productId", deleteCartItemHandler(deps.SyncSvc))
	scoped.GET("/wishlist/items", listWishlistItemsHandler(deps.SyncSvc))
	scoped.PUT("/wishlist/items/:productId", putWishlistItemHandler(deps.SyncSvc))
	scoped.DELETE("/wishlist/items/:productId", deleteWishlistItemHandler(deps.SyncSvc))
	scoped.POST("/orders", submitOrderHandler(deps.OrderSvc))
	api.GET("/orders/:reference", getOrderHandler(deps.OrderSvc))
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context(), c.Query("all") == "true")
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, nonNil(products))
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, p)
	}
}

func listVouchersHandler(svc VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vouchers, err := svc.ListVouchers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, nonNil(vouchers))
	}
}

func getVoucherHandler(svc VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, v)
	}
}

func saveVoucherHandler(svc VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v domain.Voucher
		if err := c.ShouldBindJSON(&v); err != nil {
			badRequest(c, "invalid voucher body: "+err.Error())
			return
		}
		v.Code = c.Param("code")
		if err := svc.Save(c.Request.Context(), v); err != nil {
			writeError(c, err)
			return
		}
		saved, err := svc.Get(c.Request.Context(), v.Code)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, saved)
	}
}

func appSettingsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.AppSettings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, s)
	}
}

func updateAppSettingsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.AppSettings
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid settings body: "+err.Error())
			return
		}
		if err := svc.UpdateAppSettings(c.Request.Context(), in); err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, in)
	}
}

func paymentSettingsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.PaymentSettings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, s)
	}
}

func updatePaymentSettingsHandler(svc SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.PaymentSettings
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid settings body: "+err.Error())
			return
		}
		if err := svc.UpdatePaymentSettings(c.Request.Context(), in); err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, in)
	}
}

func listCartItemsHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.CartItems(c.Request.Context(), sessionID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, nonNil(items))
	}
}

func putCartItemHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}
		var in cartsvc.CartItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid cart item body: "+err.Error())
			return
		}
		item, err := svc.PutCartItem(c.Request.Context(), sessionID(c), id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, item)
	}
}

func deleteCartItemHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}
		if err := svc.RemoveCartItem(c.Request.Context(), sessionID(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listWishlistItemsHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.WishlistItems(c.Request.Context(), sessionID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, nonNil(items))
	}
}

func putWishlistItemHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}
		var in cartsvc.WishlistItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid wishlist item body: "+err.Error())
			return
		}
		item, err := svc.PutWishlistItem(c.Request.Context(), sessionID(c), id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, item)
	}
}

func deleteWishlistItemHandler(svc SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productIDParam(c)
		if !ok {
			return
		}
		if err := svc.RemoveWishlistItem(c.Request.Context(), sessionID(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func submitOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload domain.OrderPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			badRequest(c, "invalid order body: "+err.Error())
			return
		}
		receipt, err := svc.Submit(c.Request.Context(), sessionID(c), payload)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusCreated, receipt)
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.Get(c.Request.Context(), c.Param("reference"))
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{
			"orderId": rec.ID,
			"status":  rec.Status,
			"order":   rec.Payload,
		})
	}
}
