package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"talk-studio/helper"
	"talk-studio/model"
)

func showLoginPage(c *gin.Context) {
	// Call the render function with the name of the template to render
	render(c, gin.H{
		"title": "Login",
	}, "login.html")
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func performLogin(c *gin.Context) {
	// Obtain the POSTed email and password values
	email := strings.ToLower(c.PostForm("email"))
	password := c.PostForm("password")
	user := findUser(email, password)

	// Check if the email/password combination is valid
	if user != nil {
		if user.Status > 0 {
			// If the email/password is valid, save the user to session
			session := sessions.Default(c)
			session.Set("user_id", user.ID)
			session.Save()

			// and mark this in context
			c.Set("is_logged_in", true)

			showIndexPage(c)
		} else {
			c.HTML(http.StatusBadRequest, "login.html", gin.H{
				"url_base":     helper.GetConfig("URL_BASE"),
				"ErrorTitle":   "Login Failed",
				"ErrorMessage": "Please check your mailbox and click the confirmation link"})
		}
	} else {
		// If the email/password combination is invalid,
		// show the error message on the login page
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"url_base":     helper.GetConfig("URL_BASE"),
			"ErrorTitle":   "Login Failed",
			"ErrorMessage": "Invalid credentials provided"})
	}
}

func logout(c *gin.Context) {
	// Clear the cookie
	session := sessions.Default(c)
	session.Delete("user_id")
	session.Save()

	// Redirect to the home page
	c.Redirect(http.StatusTemporaryRedirect, "/")
}

func showRegistrationPage(c *gin.Context) {
	// Call the render function with the name of the template to render
	render(c, gin.H{
		"title": "Register"}, "register.html")
}

func register(c *gin.Context) {
	// Obtain the POSTed email and password values
	email := strings.ToLower(c.PostForm("email"))
	password := c.PostForm("password")

	if _, err := registerNewUser(email, password); err == nil {
		render(c, gin.H{}, "register-successful.html")
	} else {
		// If the email/password combination is invalid,
		// show the error message on the login page
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"url_base":     helper.GetConfig("URL_BASE"),
			"ErrorTitle":   "Registration Failed",
			"ErrorMessage": err.Error()})

	}
}

func performConfirmation(c *gin.Context) {
	token := c.Param("token")

	if _, err := uuid.Parse(token); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	var user model.User
	db.Where(&model.User{Token: token}).First(&user)

	if user.Email == "" {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("invalid confirmation link"))
		return
	}

	user.Status = 1
	if err := db.Save(&user).Error; err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	render(c, gin.H{}, "confirmation.html")
}

func showResetRequestPage(c *gin.Context) {
	render(c, gin.H{
		"title": "Reset password"}, "reset-request.html")
}

// requestReset emails a reset link. The response does not reveal whether
// the address is registered.
func requestReset(c *gin.Context) {
	email := strings.ToLower(c.PostForm("email"))

	var user model.User
	db.Where(&model.User{Email: email}).First(&user)

	if user.Email != "" {
		token, err := uuid.NewRandom()
		if err == nil {
			user.ResetToken = token.String()
			if err := db.Save(&user).Error; err == nil {
				resetLink := fmt.Sprintf("%s/u/reset/%s", helper.GetConfig("URL_BASE"), token)
				messageBody := fmt.Sprintf("To choose a new password, go to:<br/>\n<a href=\"%s\">%s</a>", resetLink, resetLink)
				if errM := helper.SendEmail(user.Email, "Password Reset", messageBody); errM != nil {
					helper.Log.Warnw("failed to send reset email", "error", errM)
				}
			}
		}
	}

	render(c, gin.H{}, "reset-sent.html")
}

func showResetForm(c *gin.Context) {
	token := c.Param("token")

	if user := findUserByResetToken(token); user == nil {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("invalid reset link"))
		return
	}

	render(c, gin.H{
		"title": "Choose a new password",
		"token": token}, "reset-form.html")
}

func performReset(c *gin.Context) {
	token := c.Param("token")
	password := c.PostForm("password")

	user := findUserByResetToken(token)
	if user == nil {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("invalid reset link"))
		return
	}

	hash, err := hashPassword(password)
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	user.Password = hash
	user.ResetToken = ""
	if err := db.Save(user).Error; err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	showLoginPage(c)
}

func findUserByResetToken(token string) *model.User {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}

	var user model.User
	db.Where(&model.User{ResetToken: token}).First(&user)

	if user.Email == "" {
		return nil
	}
	return &user
}

// Check if the username and password combination is valid
func findUser(email, password string) *model.User {
	var user model.User
	db.Where(&model.User{Email: email}).First(&user)

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil
	}
	return &user
}

// Register a new user with the given username and password
func registerNewUser(email, password string) (*model.User, error) {
	user := model.User{Email: email, Password: password}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %v", err)
	}

	user.Password = hash
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("could not create user: %v", err)
	}

	if err := sendConfirmation(user.ID); err != nil {
		return nil, fmt.Errorf("could not send confirmation link: %v", err)
	}

	return &user, nil
}

func sendConfirmation(userID uint) error {
	var user model.User

	token, err := uuid.NewRandom()

	if err != nil {
		return err
	}

	db.First(&user, userID)
	user.Token = token.String()
	err = db.Save(&user).Error

	if err != nil {
		return err
	}

	confirmationLink := fmt.Sprintf("%s/u/confirm/%s", helper.GetConfig("URL_BASE"), token)
	messageBody := fmt.Sprintf("To confirm this email address, go to:<br/>\n<a href=\"%s\">%s</a>", confirmationLink, confirmationLink)
	if err := helper.SendEmail(user.Email, "Email Confirmation", messageBody); err != nil {
		return err
	}

	return nil
}
