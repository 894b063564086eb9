package api_router

import (
	"io"
	"net/http"
	"time"

	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/dto"
	pkgapp "github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"
	"github.com/dontknow492/Notes/pkg/convert"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// watchPingInterval SSE 心跳间隔
const watchPingInterval = 25 * time.Second

// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(a),
	}
}

func toNoteDTO(n *domain.Note) (dto.NoteDTO, error) {
	var out dto.NoteDTO
	err := convert.Copy(&out, n)
	return out, err
}

func toNoteDetailDTO(n *domain.NoteWithTags) (*dto.NoteDetailDTO, error) {
	out := &dto.NoteDetailDTO{}
	if err := convert.Copy(&out.NoteDTO, &n.Note); err != nil {
		return nil, err
	}
	if err := convert.Copy(&out.Tags, &n.Tags); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		out.Tags = []dto.TagDTO{}
	}
	return out, nil
}

func idParam(c *gin.Context) (int64, bool) {
	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		invalid(c, "id: must be a positive integer")
		return 0, false
	}
	return id, true
}

// List 分页获取笔记列表
// 支持标题/标题行模糊搜索、按标签过滤和排序
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("NoteHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	tagID, err := convert.StrTo(params.TagID).OptionalInt64()
	if err != nil {
		invalid(c, "tagId: must be an integer")
		return
	}

	filter := domain.NoteFilter{
		Query:     convert.StrTo(params.Query).OptionalString(),
		TagID:     tagID,
		SortBy:    domain.ParseSortBy(params.SortBy),
		SortOrder: domain.ParseSortOrder(params.SortOrder),
	}

	appCfg := h.App.Config().App
	pageSize := pkgapp.GetPageSizeWithConfig(c, pkgapp.PaginationConfig{
		DefaultPageSize: appCfg.DefaultPageSize,
		MaxPageSize:     appCfg.MaxPageSize,
	})

	ctx := c.Request.Context()
	src := h.App.NoteService.FilterNotes(ctx, filter, pageSize)
	defer src.Close()

	page, err := src.Page(ctx, pkgapp.GetPage(c))
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}
	total, err := h.App.NoteService.CountNotes(ctx, filter)
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}

	list := make([]dto.NoteDTO, 0, len(page.Items))
	for _, n := range page.Items {
		d, err := toNoteDTO(n)
		if err != nil {
			h.fail(c, "NoteHandler.List", err)
			return
		}
		list = append(list, d)
	}

	response.ToResponseList(code.Success, list, pkgapp.Pager{
		Page:      page.Page,
		PageSize:  page.PageSize,
		TotalRows: int(total),
	})
}

// Get 获取笔记及其标签
// @Router /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	note, err := h.App.NoteService.GetDetailedNote(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	out, err := toNoteDetailDTO(note)
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(out))
}

// Watch 以 Server-Sent Events 推送笔记详情
// 事件 note 携带最新详情，事件 deleted 表示笔记不存在
// @Router /api/notes/{id}/watch [get]
func (h *NoteHandler) Watch(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	w, err := h.App.NoteService.WatchDetailedNote(ctx, id)
	if err != nil {
		h.fail(c, "NoteHandler.Watch", err)
		return
	}
	defer w.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ping := time.NewTicker(watchPingInterval)
	defer ping.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case v, ok := <-w.C():
			if !ok {
				return false
			}
			if v == nil {
				c.SSEvent("deleted", "null")
				return true
			}
			out, err := toNoteDetailDTO(v)
			if err != nil {
				h.logError(ctx, "NoteHandler.Watch", err)
				return false
			}
			raw, err := sonic.Marshal(out)
			if err != nil {
				h.logError(ctx, "NoteHandler.Watch", err)
				return false
			}
			c.SSEvent("note", string(raw))
			return true
		case <-ping.C:
			c.SSEvent("ping", "")
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func noteFromRequest(req *dto.NoteRequest) (*domain.Note, []domain.Tag, error) {
	note := &domain.Note{}
	if err := convert.Copy(note, req); err != nil {
		return nil, nil, err
	}
	tags := []domain.Tag{}
	if err := convert.Copy(&tags, &req.Tags); err != nil {
		return nil, nil, err
	}
	return note, tags, nil
}

// Create 创建笔记并关联标签
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	note, tags, err := noteFromRequest(params)
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}

	id, err := h.App.NoteService.InsertNoteWithTags(c.Request.Context(), note, tags)
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(dto.NoteCreatedDTO{ID: id}))
}

// Update 整体更新笔记并替换标签
// @Router /api/notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	id, ok := idParam(c)
	if !ok {
		return
	}
	params := &dto.NoteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("NoteHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	note, tags, err := noteFromRequest(params)
	if err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}
	note.ID = id

	if err := h.App.NoteService.UpdateNoteWithTags(c.Request.Context(), note, tags); err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}
	response.ToResponse(code.SuccessUpdate)
}

// Patch 部分更新笔记字段，标签关联保持不变
// @Router /api/notes/{id} [patch]
func (h *NoteHandler) Patch(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	id, ok := idParam(c)
	if !ok {
		return
	}
	params := &dto.NotePatchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("NoteHandler.Patch.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	current, err := h.App.NoteService.GetDetailedNote(ctx, id)
	if err != nil {
		h.fail(c, "NoteHandler.Patch", err)
		return
	}

	note := current.Note
	if params.Heading != nil {
		note.Heading = *params.Heading
	}
	if params.Title != nil {
		note.Title = params.Title
	}
	if params.Body != nil {
		note.Body = params.Body
	}
	if params.Image != nil {
		note.Image = params.Image
	}
	if params.Color != nil {
		note.Color = params.Color
	}
	if params.IsPinned != nil {
		note.IsPinned = *params.IsPinned
	}
	if params.ThemeID != nil {
		note.ThemeID = *params.ThemeID
	}
	// 由服务层刷新为当前时间
	note.UpdatedAt = 0

	if err := h.App.NoteService.UpdateNote(ctx, &note); err != nil {
		h.fail(c, "NoteHandler.Patch", err)
		return
	}
	response.ToResponse(code.SuccessUpdate)
}

// Delete 删除笔记，标签关联随之删除
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.App.NoteService.DeleteNote(c.Request.Context(), id); err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}
