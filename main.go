package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/EdTheDev254/audio-steganography/handlers"
	"github.com/EdTheDev254/audio-steganography/stego"
)

func main() {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Stego-PSNR", "X-Stego-Step", "X-Stego-Capacity", "X-Stego-Warning", "Content-Disposition"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	stegoHandler := handlers.NewStegoHandler()

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		stegoRoutes := api.Group("/stego")
		{
			stegoRoutes.POST("/insert", stegoHandler.InsertMessage)
			stegoRoutes.POST("/extract", stegoHandler.ExtractMessage)
			stegoRoutes.POST("/analyze", stegoHandler.AnalyzeAudio)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/stego/insert  - Hide a secret message in a WAV file (returns stego WAV)")
	log.Printf("  POST /api/v1/stego/extract - Recover a secret message from a stego WAV")
	log.Printf("  POST /api/v1/stego/analyze - Report format and storage capacity of a WAV file")
	log.Printf("  GET  /api/v1/health        - Health check")
	log.Printf("")
	log.Printf("Features:")
	log.Printf("  • Interleaved LSB steganography on PCM samples (8/16/24/32-bit WAV)")
	log.Printf("  • Configurable step rate (default %d, the inaudibility threshold)", stego.DefaultStealthStep)
	log.Printf("  • PSNR quality assessment (returned in X-Stego-PSNR header)")
	log.Printf("  • Direct streaming (no disk storage)")

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
