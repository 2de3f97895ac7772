package handlers

import (
	"log"
	"net/http"

	"mindtype/generator"

	"github.com/gin-gonic/gin"
)

const generatorFallback = "I'm sorry, I couldn't connect to the server to generate a response. Please try again later."

var generatorClient *generator.Client

// SetGeneratorClient wires the external blog-generation client at startup.
func SetGeneratorClient(client *generator.Client) {
	generatorClient = client
}

type GenerateRequest struct {
	Topic string `json:"topic" binding:"required,min=1,max=500"`
	Tone  string `json:"tone"`
}

// GeneratePost proxies a topic to the AI blog-generation service. One
// attempt; any failure answers the canned fallback so chat widgets can
// render it inline.
func GeneratePost(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	tone := req.Tone
	if tone == "" {
		tone = generator.ToneInformative
	}
	if !generator.ValidTone(tone) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid tone"})
		return
	}

	if generatorClient == nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "response": generatorFallback})
		return
	}

	result, err := generatorClient.Generate(c.Request.Context(), req.Topic, tone)
	if err != nil {
		log.Printf("Generator request failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "error", "response": generatorFallback})
		return
	}

	if result.Structured {
		c.JSON(http.StatusOK, gin.H{
			"status":           "success",
			"title":            result.Title,
			"content":          result.Content,
			"meta_description": result.MetaDescription,
			"blog_preview":     result.BlogPreview,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "response": result.Response})
}
