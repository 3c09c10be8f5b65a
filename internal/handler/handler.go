package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"loyalty/internal/config"
	"loyalty/internal/service"
	"loyalty/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler is the HTTP boundary: it binds requests, calls the services
// and maps their failure kinds onto status codes. The services
// themselves never see transport concerns.
type Handler struct {
	authService        *service.AuthService
	userService        *service.UserService
	storeService       *service.StoreService
	transactionService *service.TransactionService
	couponService      *service.CouponService
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		authService:        service.NewAuthService(db),
		userService:        service.NewUserService(db),
		storeService:       service.NewStoreService(db),
		transactionService: service.NewTransactionService(db, cfg),
		couponService:      service.NewCouponService(db, rdb, cfg),
	}
}

// writeServiceError picks the transport rendering for each failure
// kind. This mapping lives here on purpose: the core returns stable
// identifiers and stays ignorant of HTTP.
func writeServiceError(c *gin.Context, err error) {
	var phoneErr *service.InvalidPhoneError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &phoneErr):
		response.CodedFieldError(c, phoneErr.Field, service.PhoneFormatCode, "Invalid phone number format")
	case errors.As(err, &validationErr):
		response.FieldError(c, validationErr.Field, validationErr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
	case errors.Is(err, service.ErrStoreNotFound):
		response.Error(c, http.StatusNotFound, response.CodeStoreNotFound, err.Error())
	case errors.Is(err, service.ErrCouponNotFound):
		response.Error(c, http.StatusNotFound, response.CodeCouponNotFound, err.Error())
	case errors.Is(err, service.ErrTransactionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTransactionNotFound, err.Error())
	case errors.Is(err, service.ErrCouponNotActive):
		response.Error(c, http.StatusBadRequest, response.CodeCouponNotActive, err.Error())
	case errors.Is(err, service.ErrInsufficientPoints):
		response.Error(c, http.StatusBadRequest, response.CodeInsufficientPoints, err.Error())
	case errors.Is(err, service.ErrDuplicateReceipt):
		response.Error(c, http.StatusBadRequest, response.CodeDuplicateReceipt, err.Error())
	case errors.Is(err, service.ErrAlreadyRedeemed):
		response.Error(c, http.StatusBadRequest, response.CodeAlreadyRedeemed, err.Error())
	case errors.Is(err, service.ErrSerialNotFound):
		response.Error(c, http.StatusBadRequest, response.CodeSerialNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.ParamError(c, name+" must be an integer")
		return 0, false
	}
	return id, true
}

// ============================================================
// Auth
// ============================================================

type LoginOrRegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	MallID      int64  `json:"mall_id"`
}

// LoginOrRegister handles POST /api/v1/auth/login-or-register.
// One endpoint for both flows: first sight of a (phone, mall) pair
// registers, anything after that is a login.
func (h *Handler) LoginOrRegister(c *gin.Context) {
	var req LoginOrRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.authService.LoginOrRegister(c.Request.Context(), req.PhoneNumber, req.Password, req.Name, req.MallID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// ============================================================
// Users
// ============================================================

// GetUserPoints handles GET /api/v1/users/:id/points.
func (h *Handler) GetUserPoints(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	points, err := h.userService.GetPoints(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":     id,
		"totalPoints": points,
	})
}

// GetUserLedger handles GET /api/v1/users/:id/ledger.
func (h *Handler) GetUserLedger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	entries, total, err := h.userService.GetLedger(c.Request.Context(), id, page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// Stores
// ============================================================

type CreateStoreRequest struct {
	Name   string `json:"name"`
	MallID int64  `json:"mall_id"`
}

// CreateStore handles POST /api/v1/stores.
func (h *Handler) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), req.Name, req.MallID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, store)
}

// GetStore handles GET /api/v1/stores/:id.
func (h *Handler) GetStore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, store)
}

// ListStores handles GET /api/v1/stores?mall_id=.
func (h *Handler) ListStores(c *gin.Context) {
	mallID, _ := strconv.ParseInt(c.Query("mall_id"), 10, 64)

	stores, err := h.storeService.ListStores(c.Request.Context(), mallID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, stores)
}

// ============================================================
// Transactions
// ============================================================

type AddTransactionRequest struct {
	PhoneNumber string          `json:"phone_number"`
	MallID      int64           `json:"mall_id"`
	StoreID     int64           `json:"store_id"`
	ReceiptID   string          `json:"receipt_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	OccurredAt  *time.Time      `json:"occurred_at"`
}

// AddTransaction handles POST /api/v1/transactions: records the receipt
// and credits the earned points in one shot, returning the new balance
// so the client needs no second read.
func (h *Handler) AddTransaction(c *gin.Context) {
	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	input := &service.ProcessTransactionInput{
		PhoneNumber: req.PhoneNumber,
		MallID:      req.MallID,
		StoreID:     req.StoreID,
		ReceiptID:   req.ReceiptID,
		Description: req.Description,
		Price:       req.Price,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	result, err := h.transactionService.ProcessTransaction(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	trans, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, trans)
}

// ============================================================
// Coupons
// ============================================================

// ListCoupons handles GET /api/v1/coupons?is_active=&mall_id=.
func (h *Handler) ListCoupons(c *gin.Context) {
	mallID, _ := strconv.ParseInt(c.Query("mall_id"), 10, 64)

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.ParamError(c, "is_active must be a boolean")
			return
		}
		isActive = &parsed
	}

	coupons, err := h.couponService.ListCoupons(c.Request.Context(), mallID, isActive)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, coupons)
}

// GetCoupon handles GET /api/v1/coupons/:id.
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.GetCoupon(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, coupon)
}

type RedeemCouponRequest struct {
	UserID   int64 `json:"user_id" binding:"required"`
	CouponID int64 `json:"coupon_id" binding:"required"`
}

// RedeemCoupon handles POST /api/v1/coupons/redeem: grants the coupon
// and hands back the serial the user will present at the counter.
func (h *Handler) RedeemCoupon(c *gin.Context) {
	var req RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	uc, err := h.couponService.RedeemCoupon(c.Request.Context(), req.UserID, req.CouponID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message":       "Coupon redeemed successfully",
		"serial_number": uc.SerialNumber,
	})
}

type RedeemBySerialRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"`
}

// RedeemCouponBySerial handles POST /api/v1/coupons/redeem-by-serial:
// consumes a granted coupon at presentation time.
func (h *Handler) RedeemCouponBySerial(c *gin.Context) {
	var req RedeemBySerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	uc, err := h.couponService.RedeemCouponBySerial(c.Request.Context(), req.SerialNumber)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, uc)
}

// ListUserCoupons handles GET /api/v1/users/:id/coupons.
func (h *Handler) ListUserCoupons(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	coupons, err := h.couponService.ListUserCoupons(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, coupons)
}
