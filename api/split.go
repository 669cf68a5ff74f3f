package api

import (
	"strconv"

	"budgetbite/billsplit"
	"budgetbite/database"
	"budgetbite/metrics"
	"budgetbite/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SplitHandler 分账处理器
type SplitHandler struct {
	svc *billsplit.Service
}

// NewSplitHandler 创建分账处理器
func NewSplitHandler() *SplitHandler {
	return &SplitHandler{svc: billsplit.NewService(database.DB)}
}

// CreateSplitRequest 新建分账单，share 仅在 custom 分账时生效
type CreateSplitRequest struct {
	Title        string                       `json:"title" binding:"max=100" example:"Pizza Night"`
	TotalAmount  float64                      `json:"total_amount" binding:"required,gt=0" example:"300"`
	SplitType    string                       `json:"split_type" binding:"omitempty,oneof=equal custom" example:"equal"`
	Participants []billsplit.ParticipantInput `json:"participants"`
}

// List 我创建的分账单
// @Summary 分账单列表
// @Tags 分账
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.BillSplit} "获取成功"
// @Router /api/v1/splits [get]
func (h *SplitHandler) List(c *gin.Context) {
	splits, err := h.svc.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, splits)
}

// Create 新建分账单
// @Summary 新建分账单
// @Description equal: 按人数(含创建人)平分，零头归创建人；custom: 其他人份额由请求给出，创建人承担剩余部分
// @Tags 分账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSplitRequest true "分账信息"
// @Success 200 {object} Response{data=models.BillSplit} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/splits [post]
func (h *SplitHandler) Create(c *gin.Context) {
	var req CreateSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	split, err := h.svc.Create(c.Request.Context(), user.ID, billsplit.Input{
		Title:        req.Title,
		Total:        req.TotalAmount,
		Creator:      user.Name,
		SplitType:    req.SplitType,
		Participants: req.Participants,
	})
	if err != nil {
		respondError(c, err, "创建分账失败")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      user.ID,
		"split_id":     split.ID,
		"participants": len(split.Participants),
	}).Info("创建分账单")
	SuccessWithMessage(c, "创建成功", split)
}

// Get 查看分账单
// @Summary 查看分账单
// @Tags 分账
// @Produce json
// @Security BearerAuth
// @Param id path int true "分账单ID"
// @Success 200 {object} Response{data=models.BillSplit} "获取成功"
// @Failure 404 {object} Response "分账单不存在"
// @Router /api/v1/splits/{id} [get]
func (h *SplitHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	split, err := h.svc.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err, "查询失败")
		return
	}
	Success(c, split)
}

// Settle 标记参与人已付款
// @Summary 参与人付款
// @Description idx 为参与人在列表中的位置；全部付清后整单结清
// @Tags 分账
// @Produce json
// @Security BearerAuth
// @Param id path int true "分账单ID"
// @Param idx path int true "参与人序号"
// @Success 200 {object} Response{data=models.BillSplit} "操作成功"
// @Failure 400 {object} Response "参与人序号超出范围"
// @Failure 404 {object} Response "分账单不存在"
// @Router /api/v1/splits/{id}/settle/{idx} [post]
func (h *SplitHandler) Settle(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		BadRequest(c, "无效的参与人序号")
		return
	}

	split, settledNow, err := h.svc.Settle(c.Request.Context(), userID, id, idx)
	if err != nil {
		respondError(c, err, "操作失败")
		return
	}
	if settledNow {
		metrics.SplitsSettled.Inc()
		logrus.WithFields(logrus.Fields{"user_id": userID, "split_id": split.ID}).Info("分账单已结清")
	}
	SuccessWithMessage(c, split.Participants[idx].Name+" 已付款", split)
}

// Delete 删除分账单
// @Summary 删除分账单
// @Tags 分账
// @Produce json
// @Security BearerAuth
// @Param id path int true "分账单ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "分账单不存在"
// @Router /api/v1/splits/{id} [delete]
func (h *SplitHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
