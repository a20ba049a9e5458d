package handlers

import (
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/internal/api/presenters"
	"Coffee-Shop-Backend/pkg/drink"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type (
	DrinkHandler interface {
		GetDrinks(c *fiber.Ctx) error
		GetDrinksDetail(c *fiber.Ctx) error
		CreateDrink(c *fiber.Ctx) error
		UpdateDrink(c *fiber.Ctx) error
		DeleteDrink(c *fiber.Ctx) error
	}

	drinkHandler struct {
		drinkService drink.DrinkService
		validator    *validator.Validate
		logger       *zap.Logger
	}
)

func NewDrinkHandler(drinkService drink.DrinkService, validator *validator.Validate, logger *zap.Logger) DrinkHandler {
	return &drinkHandler{
		drinkService: drinkService,
		validator:    validator,
		logger:       logger,
	}
}

func (h *drinkHandler) GetDrinks(c *fiber.Ctx) error {
	drinks, err := h.drinkService.ListAll(c.Context())
	if err != nil {
		h.logger.Error(domain.MessageFailedGetDrinks, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageInternalServerError)
	}

	res := make([]domain.DrinkShort, 0, len(drinks))
	for _, d := range drinks {
		res = append(res, d.Short())
	}
	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"drinks": res})
}

func (h *drinkHandler) GetDrinksDetail(c *fiber.Ctx) error {
	drinks, err := h.drinkService.ListAll(c.Context())
	if err != nil {
		h.logger.Error(domain.MessageFailedGetDrinks, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
	}

	res := make([]domain.DrinkLong, 0, len(drinks))
	for _, d := range drinks {
		res = append(res, d.Long())
	}
	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"drinks": res})
}

func (h *drinkHandler) CreateDrink(c *fiber.Ctx) error {
	req := new(domain.CreateDrinkRequest)
	if err := c.BodyParser(req); err != nil {
		h.logger.Info(domain.MessageFailedBodyRequest, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Info(domain.MessageFailedCreateDrink, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
	}

	res, err := h.drinkService.Create(c.Context(), *req)
	if err != nil {
		return h.drinkError(c, domain.MessageFailedCreateDrink, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"drinks": []domain.DrinkLong{res.Long()}})
}

func (h *drinkHandler) UpdateDrink(c *fiber.Ctx) error {
	id, err := drinkID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageResourceNotFound)
	}

	// a missing drink is reported before anything is read from the body
	if _, err := h.drinkService.Get(c.Context(), id); err != nil {
		return h.drinkError(c, domain.MessageFailedUpdateDrink, err)
	}

	req := new(domain.UpdateDrinkRequest)
	if err := c.BodyParser(req); err != nil {
		h.logger.Info(domain.MessageFailedBodyRequest, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Info(domain.MessageFailedUpdateDrink, zap.Error(err))
		return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
	}

	res, err := h.drinkService.Update(c.Context(), id, *req)
	if err != nil {
		return h.drinkError(c, domain.MessageFailedUpdateDrink, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"drinks": []domain.DrinkLong{res.Long()}})
}

func (h *drinkHandler) DeleteDrink(c *fiber.Ctx) error {
	id, err := drinkID(c)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageResourceNotFound)
	}

	deleted, err := h.drinkService.Delete(c.Context(), id)
	if err != nil {
		return h.drinkError(c, domain.MessageFailedDeleteDrink, err)
	}

	return presenters.SuccessResponse(c, fiber.StatusOK, fiber.Map{"delete": deleted})
}

func (h *drinkHandler) drinkError(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, domain.ErrDrinkNotFound) {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageResourceNotFound)
	}
	h.logger.Info(message, zap.Error(err))
	return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageUnprocessable)
}

func drinkID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrParseID
	}
	return uint(id), nil
}
