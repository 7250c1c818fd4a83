package handlers

import (
	"net/http"
	"strings"

	"moimlink/internal/db"
	"moimlink/internal/middleware"
	"moimlink/internal/models"
	"moimlink/internal/services"
	"moimlink/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	mailService    *services.MailService
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService:    services.NewMailService(),
		captchaService: services.NewCaptchaService(),
	}
}

// Captcha hands the client a fresh math problem (GET /api/auth/captcha).
func (h *AuthHandler) Captcha(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	c.JSON(http.StatusOK, gin.H{"question": question})
}

// createUser 새 유저 생성 공통 함수
func (h *AuthHandler) createUser(nickname, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Nickname: nickname,
		Email:    email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type signupRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Captcha  int    `json:"captcha"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid signup payload")
		return
	}

	session := sessions.Default(c)
	expected := session.Get("captcha_answer")
	session.Delete("captcha_answer")
	session.Save()
	if expected == nil || req.Captcha != expected.(int) {
		JSONError(c, http.StatusBadRequest, "captcha answer is wrong")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := db.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		JSONError(c, http.StatusConflict, "email already registered")
		return
	}

	user, err := h.createUser(req.Nickname, email, req.Password)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "signup failed")
		return
	}

	session.Set("user_id", user.ID)
	session.Save()
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "wrong email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		JSONError(c, http.StatusUnauthorized, "wrong email or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// Me returns the current session user (GET /api/auth/me).
func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		JSONError(c, http.StatusUnauthorized, "not logged in")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
