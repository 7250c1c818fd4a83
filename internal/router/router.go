package router

import (
	"moimlink/internal/handlers"
	"moimlink/internal/middleware"
	"moimlink/internal/storage"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, objects storage.ObjectStore) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	groupHandler := handlers.NewGroupHandler()
	noticeHandler := handlers.NewNoticeHandler(objects)
	imageHandler := handlers.NewImageHandler(objects)
	favoriteHandler := handlers.NewFavoriteHandler()
	categoryHandler := handlers.NewCategoryHandler()
	notificationHandler := handlers.NewNotificationHandler()
	shareHandler := handlers.NewShareHandler()

	// 공개 라우트 (Public Routes)
	r.GET("/", shareHandler.Landing)          // 랜딩 페이지
	r.GET("/share/:gid", shareHandler.Share)  // 모임 공유 페이지
	r.GET("/api/groups", groupHandler.List)   // 모집중 모임 목록
	r.GET("/api/categories", categoryHandler.List)

	r.POST("/api/auth/signup", authHandler.Signup) // 회원가입
	r.POST("/api/auth/login", authHandler.Login)   // 로그인
	r.POST("/api/auth/logout", authHandler.Logout) // 로그아웃
	r.GET("/api/auth/captcha", authHandler.Captcha)
	r.GET("/auth/google", authHandler.GoogleLogin)            // 구글 로그인
	r.GET("/auth/google/callback", authHandler.GoogleCallback)

	// 보호된 라우트 (Protected Routes)
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/auth/me", authHandler.Me)

		api.POST("/groups", groupHandler.Create)                   // 모임 만들기 (위저드 최종 제출)
		api.GET("/groups/:gid", groupHandler.Detail)               // 모임 상세
		api.POST("/groups/:gid/join", groupHandler.Join)           // 모임 가입
		api.POST("/groups/:gid/favorite", favoriteHandler.Toggle)  // 찜하기/취소
		api.GET("/favorites", favoriteHandler.Mine)                // 내가 찜한 모임

		api.GET("/groups/:gid/notices", noticeHandler.List)           // 공지 목록 (페이지)
		api.POST("/groups/:gid/notices", noticeHandler.Create)        // 공지 등록
		api.POST("/groups/:gid/notices/close", noticeHandler.Close)   // 상세 닫기
		api.POST("/groups/:gid/notices/:id/open", noticeHandler.Open) // 공지 열람 (읽음 처리)
		api.PUT("/groups/:gid/notices/:id", noticeHandler.Update)     // 공지 수정
		api.DELETE("/groups/:gid/notices/:id", noticeHandler.Delete)  // 공지 삭제

		api.POST("/groups/:gid/images", imageHandler.Upload) // 이미지 업로드

		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.Read)
		api.POST("/notifications/read-all", notificationHandler.ReadAll)
		api.DELETE("/notifications/:id", notificationHandler.Delete)
	}
}
