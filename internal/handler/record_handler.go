package handler

import (
	"net/http"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/service"
	"anoa.com/homeboard/internal/ws"
	"anoa.com/homeboard/pkg/apperror"
	"anoa.com/homeboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecordHandler struct {
	recordService   service.RecordService
	medicineService service.MedicineService
	reminderService service.ReminderService
	hub             *ws.Hub
}

func NewRecordHandler(
	recordService service.RecordService,
	medicineService service.MedicineService,
	reminderService service.ReminderService,
	hub *ws.Hub,
) *RecordHandler {
	return &RecordHandler{
		recordService:   recordService,
		medicineService: medicineService,
		reminderService: reminderService,
		hub:             hub,
	}
}

func (h *RecordHandler) notifyRecords(userID uuid.UUID, category model.Category) {
	if h.hub != nil {
		h.hub.NotifyUser(userID, ws.EventRecordsChanged, string(category))
	}
}

// GetRecords is the category-dispatched listing. The general view triggers
// the medicine roll-forward first so stock reminders are computed against
// current quantities; the medicine view does the same for its own rows.
func (h *RecordHandler) GetRecords(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}
	if query.Category == "" {
		query.Category = string(model.CategoryGeneral)
	}
	category := model.Category(query.Category)
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	status := model.StatusPending
	if query.Status != "" {
		status = model.Status(query.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	ctx := c.Request.Context()
	switch category {
	case model.CategoryGeneral:
		if err := h.medicineService.RollForward(ctx, userID); err != nil {
			response.ResponseError(c, err)
			return
		}
		items, err := h.reminderService.BuildAgenda(ctx, userID, query.SortBy)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)

	case model.CategoryMedicine:
		if err := h.medicineService.RollForward(ctx, userID); err != nil {
			response.ResponseError(c, err)
			return
		}
		records, err := h.recordService.ListRecords(ctx, userID, category, status)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)

	case model.CategoryClothes:
		groups, err := h.recordService.ListClothes(ctx, userID)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)

	default:
		records, err := h.recordService.ListRecords(ctx, userID, category, status)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func (h *RecordHandler) CreateRecord(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rec, err := h.recordService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, rec.Category)
	c.JSON(http.StatusCreated, rec)
}

func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rec, err := h.recordService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, rec.Category)
	c.JSON(http.StatusOK, rec)
}

func (h *RecordHandler) UpdateStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.recordService.UpdateStatus(c.Request.Context(), userID, id, model.Status(req.Status)); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, "")
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.recordService.Delete(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, "")
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *RecordHandler) ClearShopping(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.recordService.ClearShopping(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, model.CategoryShopping)
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *RecordHandler) TogglePurchase(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.TogglePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}
	if req.NeedsPurchase == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperror.ErrBadRequest.Error()})
		return
	}

	if err := h.medicineService.TogglePurchase(c.Request.Context(), userID, id, *req.NeedsPurchase); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, model.CategoryMedicine)
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *RecordHandler) RefillMedicine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.medicineService.Refill(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, model.CategoryMedicine)
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *RecordHandler) SetMedicineQuantity(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.medicineService.SetQuantity(c.Request.Context(), userID, id, req.TotalQuantity); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyRecords(userID, model.CategoryMedicine)
	response.ResponseSuccess(c, http.StatusOK)
}
