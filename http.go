package jail_bot

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cydxin/jail-bot/middleware"
	"github.com/cydxin/jail-bot/models"
	"github.com/cydxin/jail-bot/response"
	"github.com/cydxin/jail-bot/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// -------------------- 只读查询接口 --------------------

// SuspensionDTO 生效中的关押
type SuspensionDTO struct {
	UserID        string   `json:"user_id"`
	GuildID       string   `json:"guild_id"`
	SuspendedBy   string   `json:"suspended_by"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	DurationText  string   `json:"duration_text"`
	PreviousRoles []string `json:"previous_roles"`
	Reason        string   `json:"reason,omitempty"`
	Remaining     string   `json:"remaining"`
}

// RecordDTO 前科记录
type RecordDTO struct {
	ID            uint64  `json:"id"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	ActualEndTime *string `json:"actual_end_time"`
	DurationText  string  `json:"duration_text"`
	SuspendedBy   string  `json:"suspended_by"`
	Reason        string  `json:"reason,omitempty"`
	ReleaseType   *string `json:"release_type"`
}

// BackgroundDTO 前科汇总
type BackgroundDTO struct {
	UserID             string      `json:"user_id"`
	GuildID            string      `json:"guild_id"`
	RecordCount        int         `json:"record_count"`
	TotalServedSeconds int64       `json:"total_served_seconds"`
	TotalServed        string      `json:"total_served"`
	Active             bool        `json:"active"`
	Records            []RecordDTO `json:"records"`
}

// LogDTO 审计日志
type LogDTO struct {
	ID          uint64 `json:"id"`
	Action      string `json:"action"`
	PerformedBy string `json:"performed_by"`
	Timestamp   string `json:"timestamp"`
	Details     string `json:"details,omitempty"`
}

// Router 健康检查、指标、Swagger UI 和记录查询
// /api/v1 下的接口在配置了 API token 时需要鉴权；mws 挂在所有路由前（如 CORS）。
func (e *JailEngine) Router(mws ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mws...)

	r.GET("/healthz", e.GinHandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})))
	RegisterSwagger(r, "")

	api := r.Group("/api/v1/jail")
	api.Use(middleware.GinAuthMiddleware(&middleware.AuthOptions{Token: e.config.APIToken}))
	api.GET("/active", e.GinHandleListActive)
	api.GET("/records/:user_id", e.GinHandleRecords)
	api.GET("/logs/:user_id", e.GinHandleLogs)
	return r
}

// GinHandleHealth 数据库可用即健康
func (e *JailEngine) GinHandleHealth(ctx *gin.Context) {
	sqlDB, err := e.config.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "ok"))
}

// GinHandleListActive 生效中的关押，guild_id 可选
// @Summary 生效中的关押
// @Description 生效中且未到期的关押，按 guild_id 过滤（可选）
// @Tags 关押
// @Produce json
// @Param guild_id query string false "服务器ID"
// @Success 200 {object} response.Response{data=[]SuspensionDTO} "查询成功"
// @Failure 401 {object} response.Response "Token 无效"
// @Security BearerAuth
// @Security QueryToken
// @Router /active [get]
func (e *JailEngine) GinHandleListActive(ctx *gin.Context) {
	now := e.now()
	rows, err := e.Store.ListActive(ctx.Request.Context(), ctx.Query("guild_id"), now)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	out := make([]SuspensionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSuspensionDTO(row, now))
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleRecords 前科记录，guild_id 默认配置的服务器
// @Summary 前科记录
// @Description 前科记录和累计服刑时长；guild_id 默认取配置的服务器
// @Tags 关押
// @Produce json
// @Param user_id path string true "用户ID"
// @Param guild_id query string false "服务器ID"
// @Success 200 {object} response.Response{data=BackgroundDTO} "查询成功"
// @Failure 400 {object} response.Response "缺少 guild_id"
// @Failure 401 {object} response.Response "Token 无效"
// @Security BearerAuth
// @Security QueryToken
// @Router /records/{user_id} [get]
func (e *JailEngine) GinHandleRecords(ctx *gin.Context) {
	userID := ctx.Param("user_id")
	guildID := ctx.DefaultQuery("guild_id", e.config.Guild.GuildID)
	if guildID == "" {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "guild_id is required"))
		return
	}

	records, err := e.Store.History(ctx.Request.Context(), userID, guildID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	total := service.SumTimeServed(records)
	out := BackgroundDTO{
		UserID:             userID,
		GuildID:            guildID,
		RecordCount:        len(records),
		TotalServedSeconds: int64(total / time.Second),
		TotalServed:        service.FormatRemaining(total),
		Records:            make([]RecordDTO, 0, len(records)),
	}
	for _, r := range records {
		out.Records = append(out.Records, RecordDTO{
			ID:            r.ID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			ActualEndTime: r.ActualEndTime,
			DurationText:  r.DurationText,
			SuspendedBy:   r.SuspendedBy,
			Reason:        r.Reason,
			ReleaseType:   r.ReleaseType,
		})
	}
	if _, err := e.Lifecycle.Status(ctx.Request.Context(), userID); err == nil {
		out.Active = true
	} else if !errors.Is(err, service.ErrNotSuspended) {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleLogs 审计日志，limit 默认 50
// @Summary 审计日志
// @Description 用户最近的审计日志，按 id 倒序
// @Tags 关押
// @Produce json
// @Param user_id path string true "用户ID"
// @Param limit query int false "条数上限" default(50)
// @Success 200 {object} response.Response{data=[]LogDTO} "查询成功"
// @Failure 400 {object} response.Response "limit 无效"
// @Failure 401 {object} response.Response "Token 无效"
// @Security BearerAuth
// @Security QueryToken
// @Router /logs/{user_id} [get]
func (e *JailEngine) GinHandleLogs(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid limit"))
		return
	}
	logs, err := e.Store.AuditLog(ctx.Request.Context(), ctx.Param("user_id"), limit)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	out := make([]LogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, LogDTO{
			ID:          l.ID,
			Action:      l.Action,
			PerformedBy: l.PerformedBy,
			Timestamp:   l.Timestamp,
			Details:     l.Details,
		})
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

func toSuspensionDTO(row models.Suspension, now time.Time) SuspensionDTO {
	dto := SuspensionDTO{
		UserID:        row.UserID,
		GuildID:       row.GuildID,
		SuspendedBy:   row.SuspendedBy,
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		DurationText:  row.DurationText,
		PreviousRoles: row.RoleIDs(),
		Reason:        row.Reason,
		Remaining:     "Unknown",
	}
	if end, err := row.End(); err == nil && end.After(now) {
		dto.Remaining = service.FormatRemaining(end.Sub(now))
	}
	return dto
}
