package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/domain/user"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/ctxutil"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/utils"
	"gorm.io/gorm"
)

type JWTClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	Phone             string   `json:"phone"`
	WhatsApp          string   `json:"whatsapp"`
	College           string   `json:"college"`
	Year              string   `json:"year"`
	TargetExamType    string   `json:"target_exam_type"`
	Class10Percentage *float64 `json:"class10_percent"`
	Class10Board      string   `json:"class10_board"`
	Class12Percentage *float64 `json:"class12_percent"`
	Class12Board      string   `json:"class12_board"`
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *types.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context) (*AuthResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetTokenTTL() time.Duration
}

type AuthConfig struct {
	JWTSecretKey string
	TokenTTL     time.Duration
	// BcryptCost of 0 uses bcrypt.DefaultCost.
	BcryptCost int
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	cfg      AuthConfig
	now      Clock
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, cfg AuthConfig, clock Clock) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:       db,
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		cfg:      cfg,
		now:      orSystemClock(clock),
	}
}

func (as *authService) GetTokenTTL() time.Duration { return as.cfg.TokenTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := utils.ParseInputString(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apierr.Validation("name, email and password are required")
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, apierr.Validation("password must be at least %d characters long", utils.MinPasswordLength)
	}
	examType := utils.ParseInputString(in.TargetExamType)
	if examType == "" {
		examType = user.ExamFullStack
	}
	if !user.ValidExamType(examType) {
		return nil, apierr.Validation("invalid target exam type, must be one of: Frontend, Backend, Full Stack, Other")
	}

	hash, err := utils.HashPassword(in.Password, as.cfg.BcryptCost)
	if err != nil {
		return nil, apierr.Internal("register", err)
	}

	u := &types.User{
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Phone:             utils.ParseInputString(in.Phone),
		WhatsApp:          utils.ParseInputString(in.WhatsApp),
		College:           utils.ParseInputString(in.College),
		Year:              utils.ParseInputString(in.Year),
		TargetExamType:    examType,
		Class10Percentage: in.Class10Percentage,
		Class10Board:      utils.ParseInputString(in.Class10Board),
		Class12Percentage: in.Class12Percentage,
		Class12Board:      utils.ParseInputString(in.Class12Board),
		IsActive:          true,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return apierr.Internal("check email", err)
		}
		if exists {
			return apierr.Conflict("user already exists with this email")
		}
		if err := as.userRepo.Create(dbc, u); err != nil {
			if apierr.IsUniqueViolation(err) {
				return apierr.Conflict("user already exists with this email")
			}
			return apierr.Internal("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", u.ID)
	return as.issue(u)
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.Validation("email and password are required")
	}
	u, err := as.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized("invalid email or password")
		}
		return nil, apierr.Internal("login", err)
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return nil, apierr.Unauthorized("invalid email or password")
	}
	if !u.IsActive {
		return nil, apierr.Forbidden("account is deactivated, please contact support")
	}
	return as.issue(u)
}

func (as *authService) Refresh(ctx context.Context) (*AuthResult, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Internal("refresh token", err)
	}
	if u == nil || !u.IsActive {
		return nil, apierr.Unauthorized("user not found or inactive")
	}
	return as.issue(u)
}

func (as *authService) issue(u *types.User) (*AuthResult, error) {
	now := as.now()
	expiresAt := now.Add(as.cfg.TokenTTL)
	claims := JWTClaims{
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecretKey))
	if err != nil {
		return nil, apierr.Internal("sign token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// SetContextFromToken verifies tokenString and stores the caller in the returned context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, tokenError("no_token", "access denied, please log in")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, tokenError("token_expired", "your session has expired, please log in again")
		}
		return ctx, tokenError("invalid_token", "invalid authentication token")
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, tokenError("invalid_token", "invalid authentication token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, tokenError("invalid_token", "invalid authentication token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       claims.Email,
		IsAdmin:     claims.IsAdmin,
	}), nil
}

func tokenError(code, msg string) error {
	e := apierr.Unauthorized("%s", msg)
	e.Code = code
	return e
}
