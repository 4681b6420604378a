package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/otpauth/internal/pkg/response"
	"github.com/xxxsen/otpauth/internal/service"
	"github.com/xxxsen/otpauth/internal/session"
)

type AuthHandler struct {
	auth    *service.AuthService
	cookies session.Cookies
}

func NewAuthHandler(auth *service.AuthService, cookies session.Cookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string   `json:"email"`
	OTP   otpField `json:"otp"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// otpField accepts the code either as a JSON string or a JSON number.
type otpField string

func (o *otpField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = otpField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*o = otpField(n.String())
	return nil
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		handleError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "OTP sent to your email. Please verify to complete registration.")
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	account, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, string(req.OTP))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"message": "User verified and registered successfully!",
		"userId":  account.ID,
	})
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	account, token, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.cookies.Set(c.Writer, token)
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    response.User{ID: account.ID, Email: account.Email},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c.Writer)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.auth.Me(c.Request.Context(), h.cookies.Read(c.Request))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"user": response.User{ID: account.ID, Email: account.Email},
	})
}
