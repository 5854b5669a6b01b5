package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/metrics"
	"github.com/totegamma/daybook/internal/present/rest/middleware"
	"github.com/totegamma/daybook/internal/present/rest/presenter"
	"github.com/totegamma/daybook/internal/usecase"
)

const defaultHeatmapDays = 365

// Realtime streams a user's entry events until ctx is done.
type Realtime interface {
	Realtime(ctx context.Context, userID string, output chan<- domain.EntryEvent) error
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	calendar   usecase.Calendar
	entry      *usecase.EntryUsecase
	stats      *usecase.StatsUsecase
	vocabulary *usecase.VocabularyUsecase
	attachment *usecase.AttachmentUsecase
	realtime   Realtime
	health     Pinger
}

func NewHandler(
	calendar usecase.Calendar,
	entry *usecase.EntryUsecase,
	stats *usecase.StatsUsecase,
	vocabulary *usecase.VocabularyUsecase,
	attachment *usecase.AttachmentUsecase,
	realtime Realtime,
	health Pinger,
) *Handler {
	return &Handler{
		calendar:   calendar,
		entry:      entry,
		stats:      stats,
		vocabulary: vocabulary,
		attachment: attachment,
		realtime:   realtime,
		health:     health,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api/v1", middleware.IdentifyUser, middleware.RequireUser)
	api.POST("/entries", h.handleCreateEntry)
	api.GET("/entries", h.handleListEntries)
	api.GET("/entries/:id", h.handleGetEntry)
	api.PATCH("/entries/:id", h.handleUpdateEntry)
	api.DELETE("/entries/:id", h.handleDeleteEntry)
	api.POST("/entries/:id/attachments", h.handleUploadAttachment)
	api.DELETE("/attachments/:id", h.handleDeleteAttachment)

	api.GET("/tags", h.handleListMentions(domain.MentionKindTag))
	api.PATCH("/tags/:id", h.handleUpdateMention(domain.MentionKindTag))
	api.DELETE("/tags/:id", h.handleDeleteMention(domain.MentionKindTag))
	api.GET("/people", h.handleListMentions(domain.MentionKindPerson))
	api.PATCH("/people/:id", h.handleUpdateMention(domain.MentionKindPerson))
	api.DELETE("/people/:id", h.handleDeleteMention(domain.MentionKindPerson))

	api.GET("/stats/streak", h.handleStreak)
	api.GET("/stats/heatmap", h.handleHeatmap)

	api.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	if h.health != nil {
		if err := h.health.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type createEntryRequest struct {
	Type       domain.EntryType `json:"type"`
	Title      *string          `json:"title"`
	Content    *string          `json:"content"`
	IsStarred  bool             `json:"isStarred"`
	EditorMode string           `json:"editorMode"`
	Metadata   json.RawMessage  `json:"metadata"`
	CreatedAt  *time.Time       `json:"createdAt"`
}

type updateEntryRequest struct {
	Title     *string         `json:"title"`
	Content   *string         `json:"content"`
	IsStarred *bool           `json:"isStarred"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (h *Handler) handleCreateEntry(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	var req createEntryRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	var fields []domain.FieldError
	if !req.Type.Valid() {
		fields = append(fields, domain.FieldError{Field: "type", Message: "unknown entry type"})
	}
	fields = append(fields, checkText(req.Title, req.Content)...)
	if len(fields) > 0 {
		return presenter.Validation(c, domain.ValidationError{Message: "invalid entry", Fields: fields})
	}

	entry, err := h.entry.Create(ctx, userID, usecase.CreateEntryInput{
		Type:       req.Type,
		Title:      req.Title,
		Content:    req.Content,
		IsStarred:  req.IsStarred,
		EditorMode: req.EditorMode,
		Metadata:   req.Metadata,
		CreatedAt:  req.CreatedAt,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, entry)
}

func (h *Handler) handleUpdateEntry(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	var req updateEntryRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}

	if fields := checkText(req.Title, req.Content); len(fields) > 0 {
		return presenter.Validation(c, domain.ValidationError{Message: "invalid entry", Fields: fields})
	}

	entry, err := h.entry.Update(ctx, userID, c.Param("id"), usecase.UpdateEntryInput{
		Title:     req.Title,
		Content:   req.Content,
		IsStarred: req.IsStarred,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, entry)
}

func (h *Handler) handleDeleteEntry(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	if err := h.entry.Delete(ctx, userID, c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleGetEntry(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	entry, err := h.entry.Get(ctx, userID, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, entry)
}

func (h *Handler) handleListEntries(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	filter := domain.EntryFilter{
		UserID:    userID,
		Search:    strings.TrimSpace(c.QueryParam("search")),
		TagIDs:    listParam(c, "tagIds"),
		PersonIDs: listParam(c, "personIds"),
		Cursor:    c.QueryParam("cursor"),
	}

	if typeStr := c.QueryParam("type"); typeStr != "" {
		entryType := domain.EntryType(typeStr)
		if !entryType.Valid() {
			return presenter.BadRequestMessage(c, "invalid type parameter")
		}
		filter.Type = &entryType
	}

	if starredStr := c.QueryParam("isStarred"); starredStr != "" {
		starred, err := strconv.ParseBool(starredStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid isStarred parameter")
		}
		filter.IsStarred = &starred
	}

	if fromStr := c.QueryParam("dateFrom"); fromStr != "" {
		from, err := h.parseTime(fromStr, false)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid dateFrom parameter")
		}
		filter.DateFrom = &from
	}

	if toStr := c.QueryParam("dateTo"); toStr != "" {
		to, err := h.parseTime(toStr, true)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid dateTo parameter")
		}
		filter.DateTo = &to
	}

	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil || limitInt < 1 || limitInt > 100 {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}
	filter.Limit = limit

	page, err := h.entry.List(ctx, filter)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, page)
}

func (h *Handler) handleUploadAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	header, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachment.Upload(ctx, userID, usecase.UploadAttachmentInput{
		EntryID:     c.Param("id"),
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, attachment)
}

func (h *Handler) handleDeleteAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	if err := h.attachment.Delete(ctx, userID, c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

type updateMentionRequest struct {
	Color *string `json:"color"`
	Group *string `json:"group"`
}

func (h *Handler) handleListMentions(kind domain.MentionKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, _ := middleware.RequesterID(ctx)

		mentions, err := h.vocabulary.List(ctx, kind, userID)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, mentionsResponse(kind, mentions))
	}
}

func (h *Handler) handleUpdateMention(kind domain.MentionKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, _ := middleware.RequesterID(ctx)

		var req updateMentionRequest
		if err := c.Bind(&req); err != nil {
			return presenter.BadRequestMessage(c, "invalid request body")
		}

		updated, err := h.vocabulary.Update(ctx, kind, userID, c.Param("id"), domain.MentionPatch{
			Color: req.Color,
			Group: req.Group,
		})
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, mentionResponse(kind, updated))
	}
}

func (h *Handler) handleDeleteMention(kind domain.MentionKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, _ := middleware.RequesterID(ctx)

		if err := h.vocabulary.Delete(ctx, kind, userID, c.Param("id")); err != nil {
			return presenter.Error(c, err)
		}
		return presenter.NoContent(c)
	}
}

func (h *Handler) handleStreak(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	info, err := h.stats.GetStreakInfo(ctx, userID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, info)
}

func (h *Handler) handleHeatmap(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.RequesterID(ctx)

	to := h.calendar.Today()
	if toStr := c.QueryParam("to"); toStr != "" {
		parsed, err := h.parseTime(toStr, false)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid to parameter")
		}
		to = h.calendar.Day(parsed)
	}

	from := to.AddDate(0, 0, -(defaultHeatmapDays - 1))
	if fromStr := c.QueryParam("from"); fromStr != "" {
		parsed, err := h.parseTime(fromStr, false)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid from parameter")
		}
		from = h.calendar.Day(parsed)
	}

	logs, err := h.stats.GetHeatmapData(ctx, userID, from, to)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, logs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type socketRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.realtime == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not configured"})
	}

	userID, _ := middleware.RequesterID(c.Request().Context())

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan domain.EntryEvent)

	go func() {
		err := h.realtime.Realtime(ctx, userID, output)
		if err != nil {
			slog.ErrorContext(
				ctx, "Realtime subscription failed",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
		cancel()
	}()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req socketRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}

func checkText(title, content *string) []domain.FieldError {
	var fields []domain.FieldError
	if title != nil && utf8.RuneCountInString(*title) > domain.MaxTitleLength {
		fields = append(fields, domain.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("must be at most %d characters", domain.MaxTitleLength),
		})
	}
	if content != nil && utf8.RuneCountInString(*content) > domain.MaxContentLength {
		fields = append(fields, domain.FieldError{
			Field:   "content",
			Message: fmt.Sprintf("must be at most %d characters", domain.MaxContentLength),
		})
	}
	return fields
}

// listParam accepts both repeated and comma separated values.
func listParam(c echo.Context, name string) []string {
	var values []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// parseTime reads RFC3339 or a calendar date. A date read as an upper bound covers the whole day.
func (h *Handler) parseTime(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	loc := h.calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t.UTC(), nil
}

func mentionResponse(kind domain.MentionKind, m domain.Mention) any {
	if kind == domain.MentionKindPerson {
		return m.Person()
	}
	return m.Tag()
}

func mentionsResponse(kind domain.MentionKind, mentions []domain.Mention) any {
	if kind == domain.MentionKindPerson {
		people := make([]domain.Person, 0, len(mentions))
		for _, m := range mentions {
			people = append(people, m.Person())
		}
		return people
	}
	tags := make([]domain.Tag, 0, len(mentions))
	for _, m := range mentions {
		tags = append(tags, m.Tag())
	}
	return tags
}
