package api_router

import (
	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/dto"
	pkgapp "github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"
	"github.com/dontknow492/Notes/pkg/convert"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TagHandler 标签 API 路由处理器
type TagHandler struct {
	*Handler
}

// NewTagHandler 创建 TagHandler 实例
func NewTagHandler(a *app.App) *TagHandler {
	return &TagHandler{Handler: NewHandler(a)}
}

// List 获取全部标签，按名称排序
// @Router /api/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.App.TagService.ListTags(c.Request.Context())
	if err != nil {
		h.fail(c, "TagHandler.List", err)
		return
	}
	list := []dto.TagDTO{}
	if err := convert.Copy(&list, &tags); err != nil {
		h.fail(c, "TagHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, list, pkgapp.Pager{
		Page:      1,
		PageSize:  len(list),
		TotalRows: len(list),
	})
}

// Get 按 id 获取标签
// @Router /api/tags/{id} [get]
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tag, err := h.App.TagService.GetTag(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "TagHandler.Get", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.TagDTO{ID: tag.ID, Name: tag.Name}))
}

// Lookup 按名称查找标签
// @Router /api/tag [get]
func (h *TagHandler) Lookup(c *gin.Context) {
	tag, err := h.App.TagService.GetTagByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.fail(c, "TagHandler.Lookup", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.TagDTO{ID: tag.ID, Name: tag.Name}))
}

// Rename 重命名标签，所有引用该标签的笔记随之变化
// @Router /api/tags/{id} [put]
func (h *TagHandler) Rename(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	id, ok := idParam(c)
	if !ok {
		return
	}
	params := &dto.TagRenameRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("TagHandler.Rename.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if err := h.App.TagService.RenameTag(c.Request.Context(), id, params.Name); err != nil {
		h.fail(c, "TagHandler.Rename", err)
		return
	}
	response.ToResponse(code.SuccessUpdate)
}

// Delete 删除标签及其关联，笔记保留
// @Router /api/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.App.TagService.DeleteTag(c.Request.Context(), id); err != nil {
		h.fail(c, "TagHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// Orphans 统计未被任何笔记引用的标签
// @Router /api/tags/orphans [get]
func (h *TagHandler) Orphans(c *gin.Context) {
	n, err := h.App.TagService.CountOrphanTags(c.Request.Context())
	if err != nil {
		h.fail(c, "TagHandler.Orphans", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.TagOrphansDTO{Count: n}))
}
