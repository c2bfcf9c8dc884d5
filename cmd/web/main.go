package main

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"talk-studio/gateway"
	"talk-studio/helper"
)

var db *gorm.DB

var store cookie.Store

var gw *gateway.Client

// Render one of HTML, JSON or XML based on the 'Accept' header of the request
// If the header doesn't specify this, HTML is rendered, provided that
// the template name is present
func render(c *gin.Context, data gin.H, templateName string) {
	loggedInInterface, _ := c.Get("is_logged_in")
	data["is_logged_in"] = loggedInInterface.(bool)

	data["url_base"] = helper.GetConfig("URL_BASE")

	switch c.Request.Header.Get("Accept") {
	case "application/json":
		// Respond with JSON
		c.JSON(http.StatusOK, data["payload"])
	case "application/xml":
		// Respond with XML
		c.XML(http.StatusOK, data["payload"])
	default:
		// Respond with HTML
		c.HTML(http.StatusOK, templateName, data)
	}
}

// This middleware ensures that a request will be aborted with an error
// if the user is not logged in
func ensureLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		loggedInInterface, _ := c.Get("is_logged_in")
		loggedIn := loggedInInterface.(bool)
		if !loggedIn {
			showLoginPage(c)
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	}
}

// This middleware ensures that a request will be aborted with an error
// if the user is already logged in
func ensureNotLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		loggedInInterface, _ := c.Get("is_logged_in")
		loggedIn := loggedInInterface.(bool)
		if loggedIn {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	}
}

// This middleware sets whether the user is logged in or not
func setUserStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if userID := session.Get("user_id"); userID != nil {
			c.Set("is_logged_in", true)
		} else {
			c.Set("is_logged_in", false)
		}
	}
}

// currentUserID returns the id of the logged-in user. Routes behind
// ensureLoggedIn always have one.
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	return session.Get("user_id").(uint)
}

func initializeRoutes(app *gin.Engine) {

	// Use the setUserStatus middleware for every route to set a flag
	// indicating whether the request was from an authenticated user or not
	app.Use(setUserStatus())

	// Handle the index route
	app.GET("/", showIndexPage)

	// Group user related routes together
	userRoutes := app.Group("/u")
	{
		userRoutes.GET("/login", ensureNotLoggedIn(), showLoginPage)
		userRoutes.POST("/login", ensureNotLoggedIn(), performLogin)
		userRoutes.GET("/logout", ensureLoggedIn(), logout)
		userRoutes.GET("/register", ensureNotLoggedIn(), showRegistrationPage)
		userRoutes.POST("/register", ensureNotLoggedIn(), register)

		// Handle GET requests at /u/confirm/some_token
		userRoutes.GET("/confirm/:token", ensureNotLoggedIn(), performConfirmation)

		// Password reset: request a link, then set a new password by token
		userRoutes.GET("/reset", ensureNotLoggedIn(), showResetRequestPage)
		userRoutes.POST("/reset", ensureNotLoggedIn(), requestReset)
		userRoutes.GET("/reset/:token", ensureNotLoggedIn(), showResetForm)
		userRoutes.POST("/reset/:token", ensureNotLoggedIn(), performReset)
	}

	// Group speech related routes together
	speechRoutes := app.Group("/speech")
	{
		// Creation wizard
		speechRoutes.GET("/create", ensureLoggedIn(), showCreatePage)
		speechRoutes.POST("/create", ensureLoggedIn(), createSpeech)

		// Upload an existing script
		speechRoutes.GET("/upload", ensureLoggedIn(), showUploadPage)
		speechRoutes.POST("/upload", ensureLoggedIn(), uploadSpeech)

		// Editor and the save / regenerate flow
		speechRoutes.GET("/edit/:speech_id", ensureLoggedIn(), showEditorPage)
		speechRoutes.POST("/edit/:speech_id/save", ensureLoggedIn(), saveSpeech)
		speechRoutes.POST("/edit/:speech_id/resolve", ensureLoggedIn(), resolveRegeneration)

		// Rhetorical analysis
		speechRoutes.POST("/analyze/:speech_id", ensureLoggedIn(), analyzeSpeech)

		// Teleprompter exports
		speechRoutes.GET("/export/srt/:speech_id", ensureLoggedIn(), getSpeechSRT)
		speechRoutes.GET("/export/vtt/:speech_id", ensureLoggedIn(), getSpeechWebVTT)
		speechRoutes.GET("/export/ttml/:speech_id", ensureLoggedIn(), getSpeechTTML)

		// Handle GET requests at /speech/delete/some_speech_id
		speechRoutes.GET("/delete/:speech_id", ensureLoggedIn(), deleteSpeech)
	}
}

func main() {
	// Set Gin to production mode
	gin.SetMode(gin.ReleaseMode)

	log := helper.InitLogger()
	defer log.Sync()

	// Connect to the database
	helper.ConnectDB()
	db = helper.DB

	// Client for the AI gateway service
	gw = gateway.NewClient(helper.GetConfig("GATEWAY_URL"))

	// Set the router as the default one provided by Gin
	app := gin.Default()

	// Process the templates at the start so that they don't have to be loaded
	// from the disk again. This makes serving HTML pages very fast.
	app.LoadHTMLGlob("cmd/web/templates/*.html")

	// Enable cookie session
	store = cookie.NewStore([]byte(helper.GetConfig("SESSION_KEY")))
	app.Use(sessions.Sessions("talk-studio-session", store))

	// Initialize the routes
	initializeRoutes(app)

	// Start serving the application
	app.Run()
}
