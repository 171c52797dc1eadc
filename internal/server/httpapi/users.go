package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email, username, and password are required.")
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.abortWithError(c, err, errText{
			invalid:  "Email, username, and password are required.",
			conflict: "User with this email already exists.",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required.")
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.abortWithError(c, err, errText{invalid: "Email and password are required."})
		return
	}

	s.setAuthCookie(c, res.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": res.Token})
}

func (s *HTTPServer) profile(c *gin.Context) {
	p, err := s.users.Profile(c.Request.Context(), identity(c).UserID)
	if err != nil {
		s.abortWithError(c, err, errText{notFound: "User not found."})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) logout(c *gin.Context) {
	s.clearAuthCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}
