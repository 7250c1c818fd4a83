package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"moimlink/internal/db"
	"moimlink/internal/handlers"
	"moimlink/internal/middleware"
	"moimlink/internal/router"
	"moimlink/internal/storage"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Google OAuth
	handlers.InitGoogleOAuth()

	// Object storage for notice images
	objects := storage.NewClient()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("moimlink_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r, objects)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("MoimLink server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%d초 전", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%d분 전", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%d시간 전", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%d일 전", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%d개월 전", seconds/2592000)
			}
			return fmt.Sprintf("%d년 전", seconds/31536000)
		},
		"dateKo": func(t time.Time) string {
			return t.Format("2006년 1월 2일")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("landing.html", funcMap, assemble(templatesDir+"/views/landing.html")...)
	r.AddFromFilesFuncs("share.html", funcMap, assemble(templatesDir+"/views/share.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
