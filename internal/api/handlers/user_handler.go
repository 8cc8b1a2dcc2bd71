package handlers

import (
	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/api/presenters"
	"github.com/Notemat/foodgram/pkg/user"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		GetUsers(c *fiber.Ctx) error
		GetUser(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
		SetPassword(c *fiber.Ctx) error
		UpdateAvatar(c *fiber.Ctx) error
		DeleteAvatar(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
		pageSize    int
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate, pageSize int) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
		pageSize:    pageSize,
	}
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegister, err)
	}

	res, err := h.userService.Register(c.UserContext(), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedRegister, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.userService.Login(c.UserContext(), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *userHandler) Logout(c *fiber.Ctx) error {
	if err := h.userService.Logout(c.UserContext(), currentUserID(c)); err != nil {
		return presenters.HandleError(c, domain.MessageFailedLogout, err)
	}
	return presenters.NoContentResponse(c, domain.MessageSuccessLogout)
}

func (h *userHandler) GetUsers(c *fiber.Ctx) error {
	page := pageQuery(c, h.pageSize)
	res, total, err := h.userService.GetUsers(c.UserContext(), currentUserID(c), page)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetUsers, err)
	}
	return presenters.PageResponse(c, domain.MessageSuccessGetUsers, res, total, page)
}

func (h *userHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetUser, err)
	}

	res, err := h.userService.GetProfile(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	userID := currentUserID(c)
	res, err := h.userService.GetProfile(c.UserContext(), userID, userID)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) SetPassword(c *fiber.Ctx) error {
	req := new(domain.SetPasswordRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSetPassword, err)
	}

	if err := h.userService.SetPassword(c.UserContext(), currentUserID(c), *req); err != nil {
		return presenters.HandleError(c, domain.MessageFailedSetPassword, err)
	}
	return presenters.NoContentResponse(c, domain.MessageSuccessSetPassword)
}

func (h *userHandler) UpdateAvatar(c *fiber.Ctx) error {
	req := new(domain.AvatarRequest)
	if err := parseBody(c, h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateAvatar, err)
	}

	res, err := h.userService.UpdateAvatar(c.UserContext(), currentUserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateAvatar, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateAvatar)
}

func (h *userHandler) DeleteAvatar(c *fiber.Ctx) error {
	if err := h.userService.DeleteAvatar(c.UserContext(), currentUserID(c)); err != nil {
		return presenters.HandleError(c, domain.MessageFailedDeleteAvatar, err)
	}
	return presenters.NoContentResponse(c, domain.MessageSuccessDeleteAvatar)
}
