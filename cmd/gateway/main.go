package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"talk-studio/draft"
	"talk-studio/gateway"
	"talk-studio/helper"
)

var llm *gateway.OpenAI

func modelFor(key, fallback string) string {
	if m := helper.GetConfig(key); m != "" {
		return m
	}
	return fallback
}

// Map a gateway error to the HTTP status the caller expects.
func statusFor(err error) int {
	switch {
	case gateway.IsKind(err, gateway.KindValidation):
		return http.StatusBadRequest
	case gateway.IsKind(err, gateway.KindAuthentication):
		return http.StatusUnauthorized
	case gateway.IsKind(err, gateway.KindRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func generateSpeech(c *gin.Context) {
	var brief draft.Brief
	if err := c.ShouldBindJSON(&brief); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	content, err := gateway.GenerateSpeech(c.Request.Context(), llm, modelFor("OPENAI_MODEL_GENERATE", "gpt-3.5-turbo"), brief)
	if err != nil {
		helper.Log.Warnw("generation failed", "error", err, "topic", brief.Topic)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}

func analyzeSpeech(c *gin.Context) {
	var req struct {
		SpeechContent string `json:"speechContent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	scores, err := gateway.AnalyzeSpeech(c.Request.Context(), llm, modelFor("OPENAI_MODEL_ANALYZE", "gpt-4o-mini"), req.SpeechContent)
	if err != nil {
		helper.Log.Warnw("analysis failed", "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scores)
}

func main() {
	// Set Gin to production mode
	gin.SetMode(gin.ReleaseMode)

	log := helper.InitLogger()
	defer log.Sync()

	llm = gateway.NewOpenAI(helper.GetConfig("OPENAI_API_KEY"))

	app := gin.Default()

	// The web app may call from another origin
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type"}
	app.Use(cors.New(corsConfig))

	app.POST("/generate", generateSpeech)
	app.POST("/analyze", analyzeSpeech)

	log.Info("Gateway service listening")
	app.Run()
}
