package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	domainrepo "Dormung-App/internal/domain/repository"
	"Dormung-App/internal/handler"
	"Dormung-App/internal/infrastructure/database"
	"Dormung-App/internal/infrastructure/visitjeju"
	"Dormung-App/internal/repository"
	"Dormung-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	// PostgreSQL接続
	fmt.Println("Initializing PostgreSQL client...")
	postgresClient, err := database.NewPostgreSQLClient()
	if err != nil {
		log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
	}
	defer postgresClient.Close()

	// Redis接続（任意: 失敗してもPostgres+APIの2層で動作は継続できるが、
	// 起動時に気付けるようここでは失敗扱いにする）
	fmt.Println("Initializing Redis client...")
	redisClient, err := database.NewRedisClient()
	if err != nil {
		log.Fatalf("Redisクライアント初期化失敗: %v", err)
	}
	defer redisClient.Close()

	// ビジットジェジュAPIクライアント
	visitJejuConfig := visitjeju.ConfigFromEnv()
	if visitJejuConfig.APIKey == "" {
		fmt.Println("⚠️  JEJU_VISIT_API_KEY環境変数が設定されていません")
	}
	visitJejuClient := visitjeju.NewClient(visitJejuConfig)

	if visitJejuClient.ValidateAPIKey(context.Background()) {
		fmt.Println("✅ VisitJeju API connection successful!")
	} else {
		fmt.Println("⚠️  VisitJeju API connection check failed")
	}

	// Dependency injection
	// カタログはCATALOG_BACKEND=supabaseでPostgREST経由に切り替えられる
	var spotsRepo domainrepo.TouristSpotsRepository
	if os.Getenv("CATALOG_BACKEND") == "supabase" {
		supabaseClient, err := database.NewSupabaseClient()
		if err != nil {
			log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}
		spotsRepo = repository.NewSupabaseTouristSpotsRepository(supabaseClient)
	} else {
		spotsRepo = repository.NewPostgresTouristSpotsRepository(postgresClient)
	}
	cacheRepo := repository.NewPostgresVisitJejuCacheRepository(postgresClient)
	redisRepo := repository.NewRedisVisitJejuCacheRepository(redisClient)

	infoUseCase := usecase.NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, visitJejuClient)
	spotUseCase := usecase.NewTouristSpotUseCase(spotsRepo, cacheRepo)

	infoHandler := handler.NewTouristInfoHandler(infoUseCase)
	spotHandler := handler.NewTouristSpotHandler(spotUseCase)
	debugHandler := handler.NewDebugHandler(visitJejuClient)

	// Ginルーターのセットアップ
	r := gin.Default()
	r.Use(handler.RequestIDMiddleware())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Dormung-App"})
	})

	// 観光地情報API エンドポイント
	touristInfo := r.Group("/tourist-info")
	{
		touristInfo.GET("/location", infoHandler.GetTouristInfoByLocation)
		touristInfo.GET("/cache/stats", infoHandler.GetCacheStats)
		touristInfo.POST("/cache/cleanup", infoHandler.PostCacheCleanup)
		touristInfo.GET("/:externalId", infoHandler.GetTouristInfoByExternalID)
	}

	// 観光地カタログAPI エンドポイント
	tourSpots := r.Group("/tour-spots")
	{
		tourSpots.GET("/location", spotHandler.GetNearbySpots)
		tourSpots.GET("/search", spotHandler.SearchSpots)
		tourSpots.GET("/detail", spotHandler.GetSpotDetail)
		tourSpots.GET("/cache/search", spotHandler.SearchCachedInfo)
	}

	// 診断API エンドポイント
	test := r.Group("/test")
	{
		test.GET("/status", debugHandler.GetAPIStatus)
		test.GET("/connection", debugHandler.TestConnection)
		test.GET("/content/:contentId", debugHandler.GetContent)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Dormung-App server starting on :%s...\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
