package services

import (
	"context"
	"errors"

	"github.com/yungbote/examgenius-backend/internal/data/repos"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/domain/user"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/utils"
	"gorm.io/gorm"
)

// ProfileUpdate is a partial profile; nil fields are left unchanged.
type ProfileUpdate struct {
	Name              *string  `json:"name"`
	Phone             *string  `json:"phone"`
	WhatsApp          *string  `json:"whatsapp"`
	College           *string  `json:"college"`
	Year              *string  `json:"year"`
	TargetExamType    *string  `json:"target_exam_type"`
	Class10Percentage *float64 `json:"class10_percent"`
	Class10Board      *string  `json:"class10_board"`
	Class12Percentage *float64 `json:"class12_percent"`
	Class12Board      *string  `json:"class12_board"`
}

type UserService interface {
	GetProfile(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetProfile(ctx context.Context) (*types.User, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.New(ctx), uid)
	if err != nil {
		return nil, apierr.FromDB("get profile", err, "user profile not found")
	}
	return u, nil
}

func (us *userService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := utils.ParseInputString(*in.Name)
		if name == "" {
			return nil, apierr.Validation("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.TargetExamType != nil {
		examType := utils.ParseInputString(*in.TargetExamType)
		if !user.ValidExamType(examType) {
			return nil, apierr.Validation("invalid target exam type, must be one of: Frontend, Backend, Full Stack, Other")
		}
		updates["target_exam_type"] = examType
	}
	for col, v := range map[string]*string{
		"phone":          in.Phone,
		"whatsapp":       in.WhatsApp,
		"college":        in.College,
		"year":           in.Year,
		"class_10_board": in.Class10Board,
		"class_12_board": in.Class12Board,
	} {
		if v != nil {
			updates[col] = utils.ParseInputString(*v)
		}
	}
	for col, v := range map[string]*float64{
		"class_10_percentage": in.Class10Percentage,
		"class_12_percentage": in.Class12Percentage,
	} {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			return nil, apierr.Validation("%s must be between 0 and 100", col)
		}
		updates[col] = *v
	}

	var out *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if len(updates) > 0 {
			if err := us.userRepo.UpdateFields(dbc, uid, updates); err != nil {
				return err
			}
		}
		u, err := us.userRepo.GetByID(dbc, uid)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user profile not found")
		}
		return nil, apierr.FromDB("update profile", err, "user profile not found")
	}
	us.log.Info("Profile updated", "user_id", uid, "fields", len(updates))
	return out, nil
}
