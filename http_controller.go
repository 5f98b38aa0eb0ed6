package userauth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// AuthController exposes the authentication flows as a JSON API.
type AuthController struct {
	Logger       Logger
	Auther       *Auther
	Register     *RegisterUserHandler
	RequestToken *RequestMissionTokenHandler
	Confirm      *ConfirmUserHandler
	Recover      *RecoverPasswordHandler
	Delete       *DeleteUserHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Register == nil || c.RequestToken == nil || c.Confirm == nil || c.Recover == nil || c.Delete == nil {
		panic("Missing command handlers in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithHandlers(
	register *RegisterUserHandler,
	requestToken *RequestMissionTokenHandler,
	confirm *ConfirmUserHandler,
	recoverPassword *RecoverPasswordHandler,
	deleteUser *DeleteUserHandler,
) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = register
		c.RequestToken = requestToken
		c.Confirm = confirm
		c.Recover = recoverPassword
		c.Delete = deleteUser
		return c
	}
}

// RegisterAuthRoutes mounts the API under /api/v1.
func RegisterAuthRoutes(app *fiber.App, controller *AuthController) {
	v1 := app.Group("/api/v1")

	v1.Post("/create-user", controller.CreateUser)
	v1.Post("/receive-access-token", controller.ReceiveAccessToken)
	v1.Post("/request-multi-factor-authentication-token", controller.RequestMFAToken)
	v1.Post("/confirm-user", controller.ConfirmUser)
	v1.Post("/recover-password", controller.RecoverPassword)
	v1.Post("/delete-user", controller.DeleteUser)

	v1.Get("/me", RequireAccessToken(controller.Auther.AccessVerifier()), controller.CurrentUser)
}

// CreateUserRequest payload
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(validPhoneNumber)),
		validation.Field(&r.Password, passwordRules()...),
	)
}

// UserResponse is the external account shape. The password hash never
// leaves the server.
type UserResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	IsConfirmed bool   `json:"is_confirmed"`
}

func newUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		IsConfirmed: user.IsConfirmed,
	}
}

func (a *AuthController) CreateUser(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	var created *User
	err := a.Register.Execute(c.Context(), RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newUserResponse(created))
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) ReceiveAccessToken(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	token, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// RequestTokenRequest payload
type RequestTokenRequest struct {
	Email   string `json:"email"`
	Mission string `json:"mission"`
}

// Validate will run validation rules
func (r RequestTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Mission, validation.Required, validation.By(validDeliverableMission)),
	)
}

func (a *AuthController) RequestMFAToken(c *fiber.Ctx) error {
	payload := new(RequestTokenRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	err := a.RequestToken.Execute(c.Context(), RequestMissionTokenMessage{
		Email:   payload.Email,
		Mission: Mission(payload.Mission),
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "A multi-factor authentication token has been sent.",
	})
}

// TokenRequest payload
type TokenRequest struct {
	Token string `json:"token"`
}

// Validate will run validation rules
func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) ConfirmUser(c *fiber.Ctx) error {
	payload := new(TokenRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	err := a.Confirm.Execute(c.Context(), ConfirmUserMessage{Token: payload.Token})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "The user has been confirmed successfully.",
	})
}

// RecoverPasswordRequest payload
type RecoverPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RecoverPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, passwordRules()...),
	)
}

func (a *AuthController) RecoverPassword(c *fiber.Ctx) error {
	payload := new(RecoverPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	err := a.Recover.Execute(c.Context(), RecoverPasswordMessage{
		Token:    payload.Token,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "The password has been changed successfully.",
	})
}

func (a *AuthController) DeleteUser(c *fiber.Ctx) error {
	payload := new(TokenRequest)
	if err := c.BodyParser(payload); err != nil {
		return a.badPayload(c, err)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"validation": err.Error(),
		})
	}

	err := a.Delete.Execute(c.Context(), DeleteUserMessage{Token: payload.Token})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "The user has been deleted successfully.",
	})
}

// CurrentUser returns the account behind the presented access token.
func (a *AuthController) CurrentUser(c *fiber.Ctx) error {
	user, ok := UserFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing bearer token",
		})
	}

	return c.JSON(newUserResponse(user))
}

func (a *AuthController) badPayload(c *fiber.Ctx, err error) error {
	a.Logger.Debug("failed to parse request payload: %s", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request payload",
	})
}

// renderError maps rich errors onto HTTP statuses. Store unavailability maps
// to 503 so operators can alert on it without it masquerading as a client
// error.
func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		a.Logger.Error("unhandled controller error: %s", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case richErr.TextCode == TextCodeStoreUnavailable:
		status = fiber.StatusServiceUnavailable
	case richErr.Code > 0:
		status = richErr.Code
	}

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("controller error %s: %s", richErr.TextCode, err)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(8, 128),
		validation.By(requireMixedPassword),
	}
}

// requireMixedPassword enforces at least one lowercase, one uppercase, and
// one digit.
func requireMixedPassword(value any) error {
	password, _ := value.(string)

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	if !lower || !upper || !digit {
		return errors.New("must contain a lowercase letter, an uppercase letter, and a digit")
	}

	return nil
}

func validPhoneNumber(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}

	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return errors.New("must be a valid international phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid international phone number")
	}

	return nil
}

func validDeliverableMission(value any) error {
	mission, _ := value.(string)
	if !Mission(mission).IsDeliverable() {
		return errors.New("must be a deliverable token mission")
	}
	return nil
}
