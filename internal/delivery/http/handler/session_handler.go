package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/pkg/errors"
	"github.com/nearby-places/internal/pkg/utils"
	"github.com/nearby-places/internal/pkg/validator"
	"github.com/nearby-places/internal/usecase"
	"github.com/nearby-places/internal/usecase/dto"
)

// SessionHandler - обработчик запросов к сессиям поиска мест
type SessionHandler struct {
	sessions *usecase.SessionManager
	logger   *zap.Logger
}

// NewSessionHandler - создание нового SessionHandler
func NewSessionHandler(sessions *usecase.SessionManager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// CreateSession godoc
// @Summary Создание сессии
// @Description Открывает сессию и запускает определение позиции. Если передано разрешение и позиция, ответ содержит результат первичного поиска.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest false "Начальное состояние устройства"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	var report usecase.DeviceReport
	if req.Device != nil {
		if err := validateDeviceReport(req.Device); err != nil {
			return utils.SendError(c, err)
		}
		report = req.Device.ToDeviceReport()
	}

	session := h.sessions.Create(c.UserContext(), report)
	c.Status(fiber.StatusCreated)
	return sendSession(c, session)
}

// GetSession godoc
// @Summary Состояние сессии
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendSession(c, session)
}

// DeleteSession godoc
// @Summary Завершение сессии
// @Tags Sessions
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportDevice godoc
// @Summary Сообщение устройства
// @Description Передаёт решение пользователя о доступе к геолокации и/или текущую позицию устройства
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.DeviceReportRequest true "Разрешение и позиция"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/device [post]
func (h *SessionHandler) ReportDevice(c *fiber.Ctx) error {
	var req dto.DeviceReportRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if err := validateDeviceReport(&req); err != nil {
		return utils.SendError(c, err)
	}

	id := c.Params("id")
	if err := h.sessions.Report(id, req.ToDeviceReport()); err != nil {
		return utils.SendError(c, err)
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendSession(c, session)
}

// RefreshLocation godoc
// @Summary Обновление позиции
// @Description Запрашивает текущую позицию устройства. Ошибка определения позиции отражается в состоянии сессии.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.DeviceReportRequest false "Необязательное сообщение устройства"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/location/refresh [post]
func (h *SessionHandler) RefreshLocation(c *fiber.Ctx) error {
	var req dto.DeviceReportRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validateDeviceReport(&req); err != nil {
		return utils.SendError(c, err)
	}

	id := c.Params("id")
	session, err := h.sessions.Get(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if !req.IsEmpty() {
		if err := h.sessions.Report(id, req.ToDeviceReport()); err != nil {
			return utils.SendError(c, err)
		}
	}

	if err := session.RefreshLocation(c.UserContext()); err != nil {
		h.logger.Debug("Location refresh failed",
			zap.String("session_id", id),
			zap.Error(err))
	}
	return sendSession(c, session)
}

// SearchPlaces godoc
// @Summary Поиск мест рядом
// @Description Ищет места вокруг текущей позиции. Пустое тело повторяет поиск с последними параметрами. Ошибка поиска отражается в состоянии сессии, прежние результаты сохраняются.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SearchPlacesRequest false "Параметры поиска"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/search [post]
func (h *SessionHandler) SearchPlaces(c *fiber.Ctx) error {
	var req dto.SearchPlacesRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := session.SearchPlaces(c.UserContext(), req.ToSearchOptions()); err != nil {
		h.logger.Debug("Places search failed",
			zap.String("session_id", session.ID()),
			zap.Error(err))
	}
	return sendSession(c, session)
}

// SelectPlace godoc
// @Summary Выбор места
// @Description Возвращает подробную запись о месте, если она доступна, иначе краткую запись из текущих результатов
// @Tags Places
// @Produce json
// @Param id path string true "ID сессии"
// @Param place_id path string true "ID места"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlaceResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/places/{place_id} [get]
func (h *SessionHandler) SelectPlace(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	place, ok := session.SelectPlace(c.UserContext(), c.Params("place_id"))
	if !ok {
		return utils.SendError(c, errors.ErrDetailsUnavailable)
	}
	return utils.SendSuccess(c, dto.PlaceResponse{Place: place}, nil)
}

// GetPlaceDetails godoc
// @Summary Подробная информация о месте
// @Description Запрашивает полную запись у провайдера. Состояние сессии не меняется.
// @Tags Places
// @Produce json
// @Param id path string true "ID сессии"
// @Param place_id path string true "ID места"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlaceResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/places/{place_id}/details [get]
func (h *SessionHandler) GetPlaceDetails(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	place := session.GetPlaceDetails(c.UserContext(), c.Params("place_id"))
	if place == nil {
		return utils.SendError(c, errors.ErrDetailsUnavailable)
	}
	return utils.SendSuccess(c, dto.PlaceResponse{Place: *place}, nil)
}

func sendSession(c *fiber.Ctx, session *usecase.NearbyPlacesSession) error {
	state := session.Snapshot()

	meta := &utils.Meta{Total: len(state.Places)}
	switch {
	case state.PlacesError != "":
		meta.Error = state.PlacesError
	case state.LocationError != "":
		meta.Error = state.LocationError
	}

	return utils.SendSuccess(c, dto.SessionResponse{
		ID:           session.ID(),
		LastActivity: session.LastActivity(),
		State:        state,
	}, meta)
}

// parseOptionalBody разбирает тело, если оно передано
func parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errors.ErrInvalidRequest.Wrap(err)
	}
	return nil
}

func validateDeviceReport(req *dto.DeviceReportRequest) error {
	if err := validator.Validate(req); err != nil {
		return invalidRequest(err)
	}
	if req.HasPartialPosition() {
		return errors.ErrInvalidCoordinates
	}
	return nil
}

// invalidRequest добавляет к ошибке нарушенные правила по полям
func invalidRequest(err error) error {
	return errors.ErrInvalidRequest.WithDetails(validator.Details(err)).Wrap(err)
}
