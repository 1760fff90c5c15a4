package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/auth"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "이미 등록된 이메일입니다"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Errorf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		logger.Log.Errorf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         models.UserRoleUser,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		logger.Log.Errorf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)

	if err != nil {
		logger.Log.Errorf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user": types.UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
		},
		"token": token,
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "이메일 또는 비밀번호가 일치하지 않습니다"})
			return
		}
		logger.Log.Errorf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "이메일 또는 비밀번호가 일치하지 않습니다"})
		return
	}

	now := time.Now()

	if err := db.DB.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Log.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)

	if err != nil {
		logger.Log.Errorf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
			LastLogin: &now,
		},
		"token": token,
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Role:         string(user.Role),
			ProfileImage: user.ProfileImage,
			CreatedAt:    user.CreatedAt,
			LastLogin:    user.LastLogin,
		},
	})
}

// ForgotPassword issues a reset token. The token is returned in the body
// for development; production would deliver it by email instead.
func ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "등록되지 않은 이메일입니다"})
			return
		}
		logger.Log.Errorf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	reset := models.PasswordReset{
		UserID:  user.ID,
		Token:   uuid.NewString(),
		Expires: time.Now().Add(time.Hour),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(&reset).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to store password reset token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "비밀번호 재설정 링크가 이메일로 발송되었습니다.",
		"token":   reset.Token,
	})
}

func ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var reset models.PasswordReset

	err := db.DB.Where("token = ? AND expires > ?", req.Token, time.Now()).First(&reset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "유효하지 않거나 만료된 토큰입니다"})
			return
		}
		logger.Log.Errorf("Database error when fetching reset token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		logger.Log.Errorf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(passwordHash)).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&reset).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to reset password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "비밀번호가 성공적으로 재설정되었습니다."})
}
