package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"counselor_recommend/config"
	_ "counselor_recommend/docs" // 导入 swagger 文档
	"counselor_recommend/logger"
	"counselor_recommend/metrics"
	"counselor_recommend/models"
	"counselor_recommend/services"
	"counselor_recommend/utils"
)

// SlotService 查询咨询师某天的时段
type SlotService interface {
	GetAvailableSlots(ctx context.Context, counselorID int64, date string) (*models.AvailableSlots, error)
}

// RecommendHandler 咨询师推荐相关接口
type RecommendHandler struct {
	recommender services.RecommendService
	slots       SlotService
}

func NewRecommendHandler(recommender services.RecommendService, slots SlotService) *RecommendHandler {
	return &RecommendHandler{recommender: recommender, slots: slots}
}

// Recommend godoc
// @Summary 获取咨询师推荐列表
// @Description 综合情绪日志、测评结果和预约历史为用户推荐咨询师，可选搜索词和排序方式
// @Tags 推荐
// @Accept json
// @Produce json
// @Param uid path int true "用户ID"
// @Param keyword query string false "搜索词"
// @Param sort query string false "排序方式" Enums(smart, price_asc, rating_desc)
// @Success 200 {object} models.RecommendResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 429 {object} models.APIResponse "请求过于频繁"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/counselor/recommend/{uid} [get]
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.ParseID(w, "uid", chi.URLParam(r, "uid"))
	if !ok {
		return
	}

	query := r.URL.Query()
	result, err := h.recommender.Recommend(r.Context(), services.RecommendRequest{
		UserID:  uid,
		Keyword: strings.TrimSpace(query.Get("keyword")),
		Sort:    query.Get("sort"),
	})
	if err != nil {
		logger.Error("生成推荐失败", "uid", uid, "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeRecommendGenError, err.Error(), map[string]interface{}{})
		return
	}

	utils.WriteSuccessResponse(w, result)
}

// RecommendStatus godoc
// @Summary 获取推荐前置状态
// @Description 返回用户是否有测评记录、情绪日志以及是否可以生成推荐
// @Tags 推荐
// @Accept json
// @Produce json
// @Param uid path int true "用户ID"
// @Success 200 {object} models.RecommendStatusResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/counselor/recommend/{uid}/status [get]
func (h *RecommendHandler) RecommendStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.ParseID(w, "uid", chi.URLParam(r, "uid"))
	if !ok {
		return
	}

	status, err := h.recommender.GetRecommendStatus(r.Context(), uid)
	if err != nil {
		logger.Error("查询推荐状态失败", "uid", uid, "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}

	utils.WriteSuccessResponse(w, status)
}

// AvailableSlots godoc
// @Summary 获取咨询师某天的可预约时段
// @Description 按排班生成一小时一段的时段，并标记已被预约的时段
// @Tags 咨询师
// @Accept json
// @Produce json
// @Param id path int true "咨询师ID"
// @Param date query string true "日期，格式 YYYY-MM-DD"
// @Success 200 {object} models.AvailableSlotsResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误或未设置排班"
// @Failure 404 {object} models.APIResponse "咨询师不存在"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/counselor/{id}/slots [get]
func (h *RecommendHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"param": "date",
		})
		return
	}

	slots, err := h.slots.GetAvailableSlots(r.Context(), id, date)
	if err != nil {
		writeSlotError(w, id, date, err)
		return
	}

	utils.WriteSuccessResponse(w, slots)
}

// writeSlotError 业务错误映射为对应的响应码
func writeSlotError(w http.ResponseWriter, id int64, date string, err error) {
	switch {
	case errors.Is(err, services.ErrCounselorNotFound):
		utils.WriteErrorResponse(w, models.CodeCounselorNotFound, map[string]interface{}{"id": id})
	case errors.Is(err, services.ErrNoSchedule):
		utils.WriteErrorResponse(w, models.CodeScheduleNotSet, map[string]interface{}{"id": id})
	case errors.Is(err, services.ErrInvalidDate):
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"param": "date",
			"value": date,
		})
	case errors.Is(err, services.ErrInvalidSchedule):
		logger.Warn("咨询师排班数据错误", "id", id, "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeServerError, err.Error(), map[string]interface{}{})
	default:
		logger.Error("查询可预约时段失败", "id", id, "date", date, "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
	}
}

// =====================
// 中间件
// =====================

// rateLimit 推荐接口按IP限流，超限时返回统一的响应结构
func rateLimit(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.RateLimit.Disabled || cfg.RateLimit.Requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSec)*time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteErrorResponse(w, models.CodeTooManyRequests, map[string]interface{}{})
		}),
	)
}

// observeDuration 按路由模板记录接口耗时
func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.APIRequestDuration.
			WithLabelValues(route, strconv.Itoa(status)).
			Observe(time.Since(started).Seconds())
	})
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r chi.Router, cfg *config.Config, h *RecommendHandler) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/counselor", func(r chi.Router) {
		r.Use(observeDuration)

		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg))
			r.Get("/recommend/{uid}", h.Recommend)
			r.Get("/recommend/{uid}/status", h.RecommendStatus)
		})
		r.Get("/{id}/slots", h.AvailableSlots)
	})
}
