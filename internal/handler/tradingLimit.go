package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/eloity/tradelimits/internal/context"
	"github.com/eloity/tradelimits/internal/errHandler"
	"github.com/eloity/tradelimits/internal/limits"
	"github.com/eloity/tradelimits/internal/models"
	"github.com/eloity/tradelimits/internal/request"
	"github.com/eloity/tradelimits/internal/response"
	"github.com/eloity/tradelimits/internal/validator"
	"github.com/shopspring/decimal"
)

var (
	ErrLimitsUnavailable = errors.New("trading limits could not be loaded")
	ErrLimitUpdateFailed = errors.New("trading limits could not be updated")
)

type TradingLimitResponseData struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	KYCLevel             int             `json:"kyc_level"`
	DailyLimit           decimal.Decimal `json:"daily_limit"`
	MonthlyLimit         decimal.Decimal `json:"monthly_limit"`
	CurrentDailyVolume   decimal.Decimal `json:"current_daily_volume"`
	CurrentMonthlyVolume decimal.Decimal `json:"current_monthly_volume"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type TradingLimitHandler struct {
	Limits *limits.Service

	ErrHandler *errHandler.ErrorHandler
}

func NewTradingLimitHandler(handler *TradingLimitHandler) *TradingLimitHandler {
	return &TradingLimitHandler{
		Limits:     handler.Limits,
		ErrHandler: handler.ErrHandler,
	}
}

func newTradingLimitResponseData(limit *models.TradingLimit) *TradingLimitResponseData {
	return &TradingLimitResponseData{
		ID:                   limit.ID,
		UserID:               limit.UserID,
		KYCLevel:             limit.KYCLevel,
		DailyLimit:           limit.DailyLimit,
		MonthlyLimit:         limit.MonthlyLimit,
		CurrentDailyVolume:   limit.CurrentDailyVolume,
		CurrentMonthlyVolume: limit.CurrentMonthlyVolume,
		UpdatedAt:            limit.UpdatedAt,
	}
}

// HandleGetMyTradingLimits returns the caller's limits, creating the
// tier-0 default for first-time callers.
func (h *TradingLimitHandler) HandleGetMyTradingLimits(w http.ResponseWriter, r *http.Request) {
	userID := context.ContextGetAuthenticatedUserID(r)

	limit := h.Limits.GetUserTradingLimits(userID)
	if limit == nil {
		h.ErrHandler.ServerError(w, r, ErrLimitsUnavailable)
		return
	}

	message := "Data retrieved successfully"
	err := response.JSONOkResponse(w, newTradingLimitResponseData(limit), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleCheckTradeAmount answers whether an intended trade fits inside
// the caller's remaining headroom. It does not consume any headroom.
func (h *TradingLimitHandler) HandleCheckTradeAmount(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	userID := context.ContextGetAuthenticatedUserID(r)

	allowed, reason := h.Limits.CanTrade(userID, input.Amount)
	if !allowed {
		response.JSONErrorResponse(w, nil, reason, http.StatusUnprocessableEntity, nil)
		return
	}

	message := "Trade amount is within your limits"
	err = response.JSONOkResponse(w, map[string]any{"allowed": true}, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleUpdateUserTradingLimits applies a KYC level to a user's limits.
// Unknown levels silently fall back to tier 0, the service will not
// reject them.
func (h *TradingLimitHandler) HandleUpdateUserTradingLimits(w http.ResponseWriter, r *http.Request) {
	targetUserID := r.PathValue("userID")

	var input struct {
		KYCLevel  *int                `json:"kyc_level"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(targetUserID), "User ID is required")
	input.Validator.Check(input.KYCLevel != nil, "KYC level is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	ok := h.Limits.UpdateTradingLimits(targetUserID, *input.KYCLevel)
	if !ok {
		h.ErrHandler.ServerError(w, r, ErrLimitUpdateFailed)
		return
	}

	limit := h.Limits.GetUserTradingLimits(targetUserID)
	if limit == nil {
		h.ErrHandler.ServerError(w, r, ErrLimitsUnavailable)
		return
	}

	message := "Trading limits updated successfully"
	err = response.JSONOkResponse(w, newTradingLimitResponseData(limit), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
