package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator is the request-level auth surface the controller needs.
type HTTPAuthenticator interface {
	Login(ctx router.Context, identifier, password string) error
	Logout(ctx router.Context)
	SessionFromRequest(ctx router.Context) (Session, error)
	SetSessionCookie(ctx router.Context, token string)
}

// RegisterAuthRoutes mounts the auth JSON API on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("auth.logout.get")

	app.Post(controller.Routes.RequestLink, controller.RequestLinkPost).
		SetName("auth.request-link.post")

	app.Post(controller.Routes.Verify, controller.VerifyPost).
		SetName("auth.verify.post")

	app.Post(controller.Routes.ChangePassword, controller.ChangePasswordPost).
		SetName("auth.change-password.post")
}

type AuthControllerRoutes struct {
	Login          string
	Logout         string
	RequestLink    string
	Verify         string
	ChangePassword string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Routes   *AuthControllerRoutes
	Auther   HTTPAuthenticator
	Tokens   TokenService
	Mailer   Mailer
	Activity ActivitySink
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:          "/auth/login",
			Logout:         "/auth/logout",
			RequestLink:    "/auth/request-link",
			Verify:         "/auth/verify",
			ChangePassword: "/auth/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokenService(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Activity = sink
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Invalid request data",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Invalid request data",
		})
	}

	if err := a.Auther.Login(ctx, payload.Email, payload.Password); err != nil {
		// Same body for unknown account, wrong password, and cooldown.
		return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
			"error": "Invalid credentials",
		})
	}

	user, err := a.Repo.Users().GetByEmail(ctx.Context(), payload.Email)
	if err != nil {
		a.Logger.Error("login snapshot lookup", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, router.ViewContext{
			"error": "Internal server error",
		})
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"success": true,
		"user":    NewUserSnapshot(user),
	})
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"success": true,
	})
}

// RequestLinkPayload holds values for a magic link or password reset
// request.
type RequestLinkPayload struct {
	Email string    `form:"email" json:"email"`
	Kind  TokenKind `form:"kind" json:"kind"`
}

// Validate will validate the payload
func (r RequestLinkPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Kind,
			validation.In(
				TokenKindMagicLink,
				TokenKindPasswordReset,
			),
		),
	)
}

func (a *AuthController) RequestLinkPost(ctx router.Context) error {
	payload := new(RequestLinkPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("request link parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Invalid email address",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Invalid email address",
		})
	}

	var res *RequestAccessLinkResponse

	req := RequestAccessLinkMessage{
		Email: payload.Email,
		Kind:  payload.Kind,
		OnResponse: func(resp *RequestAccessLinkResponse) {
			res = resp
		},
	}

	handler := NewRequestAccessLinkHandler(a.Repo).
		WithMailer(a.Mailer).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("request link error", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, router.ViewContext{
			"error": "Internal server error",
		})
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"message": res.Message,
	})
}

// VerifyPayload carries the raw token from the emailed link.
type VerifyPayload struct {
	Token string `form:"token" json:"token"`
}

// Validate will validate the payload
func (r VerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Token,
			validation.Required,
		),
	)
}

func (a *AuthController) VerifyPost(ctx router.Context) error {
	payload := new(VerifyPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verify parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Token is required",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Token is required",
		})
	}

	var res *VerifyAccessLinkResponse

	req := VerifyAccessLinkMessage{
		Token: payload.Token,
		OnResponse: func(resp *VerifyAccessLinkResponse) {
			res = resp
		},
	}

	handler := NewVerifyAccessLinkHandler(a.Repo, a.Tokens).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("verify link error", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, router.ViewContext{
			"error": "Internal server error",
		})
	}

	if !res.Valid {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": verificationMessage(res.ErrorKind),
		})
	}

	a.Auther.SetSessionCookie(ctx, res.SessionToken)

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"success":    true,
		"message":    "Authentication successful",
		"redirectTo": res.RedirectTo,
		"user":       res.User,
	})
}

// ChangePasswordPayload holds values for a password change.
type ChangePasswordPayload struct {
	NewPassword     string `form:"new_password" json:"new_password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.By(PasswordStrengthRule()),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

func (a *AuthController) ChangePasswordPost(ctx router.Context) error {
	session, err := a.Auther.SessionFromRequest(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
			"error": "Not authenticated",
		})
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
			"error": "Not authenticated",
		})
	}

	payload := new(ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("change password parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": "Invalid request data",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
			"error": WeakPasswordMessage,
		})
	}

	var res *ChangePasswordResponse

	req := ChangePasswordMessage{
		UserID:          userID,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
		OnResponse: func(resp *ChangePasswordResponse) {
			res = resp
		},
	}

	handler := NewChangePasswordHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		return a.changePasswordError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, router.ViewContext{
		"message": res.Message,
	})
}

func (a *AuthController) changePasswordError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return ctx.JSON(fiber.StatusBadRequest, router.ViewContext{
				"error": richErr.Message,
			})
		case goerrors.CategoryAuth:
			return ctx.JSON(fiber.StatusUnauthorized, router.ViewContext{
				"error": "Not authenticated",
			})
		}
	}

	a.Logger.Error("change password error", "error", err)
	return ctx.JSON(fiber.StatusInternalServerError, router.ViewContext{
		"error": "Internal server error",
	})
}

func verificationMessage(kind VerificationErrorKind) string {
	switch kind {
	case VerificationAlreadyUsed:
		return "This link has already been used"
	case VerificationExpired:
		return "This link has expired"
	default:
		return "Invalid or expired token"
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
