package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// Response codes shared with the frontend client.
const (
	CodeSuccess           = "SU"
	CodeValidationFailed  = "VF"
	CodeDuplicateEmail    = "DE"
	CodeDuplicateNickname = "DN"
	CodeSignInFailed      = "SF"
	CodeAuthFailed        = "AF"
	CodeNotExistUser      = "NU"
	CodeDatabaseError     = "DBE"
)

// ResponseBody is the envelope every auth endpoint returns.
type ResponseBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SignInResponseBody adds the issued token to the envelope.
type SignInResponseBody struct {
	ResponseBody
	Token          string `json:"token"`
	ExpirationTime int    `json:"expirationTime"`
}

type AuthControllerRoutes struct {
	SignUp     string
	SignIn     string
	GoogleAuth string
	Me         string
}

type AuthController struct {
	Debug           bool
	Logger          Logger
	Auther          Authenticator
	Store           AccountStore
	Routes          *AuthControllerRoutes
	TokenExpiration int
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			SignUp:     "/api/v1/auth/sign-up",
			SignIn:     "/api/v1/auth/sign-in",
			GoogleAuth: "/api/v1/auth/google",
			Me:         "/api/v1/user/me",
		},
		TokenExpiration: DefaultTokenExpiration,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Store == nil {
		panic("Missing AccountStore in auth controller...")
	}

	return c
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAccountStore(store AccountStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Store = store
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// RegisterAuthRoutes mounts the auth endpoints on the app.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.SignUp, controller.SignUpPost)
	app.Post(controller.Routes.SignIn, controller.SignInPost)
	app.Post(controller.Routes.GoogleAuth, controller.GoogleAuthPost)
	app.Get(controller.Routes.Me, controller.GetSignInUser)

	return controller
}

// SignUpRequest payload
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 20),
		),
		validation.Field(
			&r.Nickname,
			validation.Required,
			validation.Length(1, 20),
		),
	)
}

// SignInRequest payload
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignInRequest) Validate() error {
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

// GoogleAuthRequest payload
type GoogleAuthRequest struct {
	IDToken string `json:"idToken"`
}

// Validate will run validation rules
func (r GoogleAuthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.IDToken,
			validation.Required,
		),
	)
}

func (a *AuthController) SignUpPost(ctx *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return validationFailed(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx)
	}

	if a.Debug {
		a.Logger.Debug("sign-up payload: %s", print.MaybePrettyJSON(payload))
	}

	if err := a.Auther.SignUp(ctx.UserContext(), payload.Email, payload.Nickname, payload.Password); err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(ResponseBody{
		Code:    CodeSuccess,
		Message: "Success.",
	})
}

func (a *AuthController) SignInPost(ctx *fiber.Ctx) error {
	payload := new(SignInRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return validationFailed(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx)
	}

	token, err := a.Auther.SignIn(ctx.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return a.tokenResponse(ctx, token)
}

func (a *AuthController) GoogleAuthPost(ctx *fiber.Ctx) error {
	payload := new(GoogleAuthRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return validationFailed(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx)
	}

	token, err := a.Auther.FederatedSignIn(ctx.UserContext(), payload.IDToken)
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return a.tokenResponse(ctx, token)
}

// GetSignInUser is the downstream contract in action: the middleware only
// populates identity, so endpoints that need one reject its absence here.
func (a *AuthController) GetSignInUser(ctx *fiber.Ctx) error {
	identity, ok := IdentityFromContext(ctx.UserContext())
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ResponseBody{
			Code:    CodeAuthFailed,
			Message: "Authorization failed.",
		})
	}

	account, err := a.Store.GetByEmail(ctx.UserContext(), identity.Subject)
	if err != nil {
		if IsRecordNotFound(err) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ResponseBody{
				Code:    CodeNotExistUser,
				Message: "This user does not exist.",
			})
		}
		a.Logger.Error("GetSignInUser lookup failed: %v", err)
		return databaseError(ctx)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code":         CodeSuccess,
		"message":      "Success.",
		"email":        account.Email,
		"nickname":     account.Nickname,
		"profileImage": account.ProfileImage,
	})
}

func (a *AuthController) tokenResponse(ctx *fiber.Ctx, token string) error {
	expiration := a.TokenExpiration
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}

	return ctx.Status(fiber.StatusOK).JSON(SignInResponseBody{
		ResponseBody: ResponseBody{
			Code:    CodeSuccess,
			Message: "Success.",
		},
		Token:          token,
		ExpirationTime: int((time.Duration(expiration) * time.Hour).Seconds()),
	})
}

func (a *AuthController) errorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case IsDuplicateEmail(err):
		return ctx.Status(fiber.StatusBadRequest).JSON(ResponseBody{
			Code:    CodeDuplicateEmail,
			Message: "Duplicate email.",
		})
	case IsDuplicateNickname(err):
		return ctx.Status(fiber.StatusBadRequest).JSON(ResponseBody{
			Code:    CodeDuplicateNickname,
			Message: "Duplicate nickname.",
		})
	case IsInvalidCredentials(err):
		return ctx.Status(fiber.StatusUnauthorized).JSON(ResponseBody{
			Code:    CodeSignInFailed,
			Message: "Login information mismatch.",
		})
	default:
		a.Logger.Error("auth controller unexpected error: %v", err)
		return databaseError(ctx)
	}
}

func validationFailed(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(ResponseBody{
		Code:    CodeValidationFailed,
		Message: "Validation failed.",
	})
}

func databaseError(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusInternalServerError).JSON(ResponseBody{
		Code:    CodeDatabaseError,
		Message: "Database error.",
	})
}
