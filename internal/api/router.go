// Package api 组装 gin 路由
package api

import (
	"fmt"
	"path"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/socialfeed/config"
	_ "github.com/d60-Lab/socialfeed/docs"
	"github.com/d60-Lab/socialfeed/internal/api/handler"
	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/web"
)

// NewRouter 注册全部页面、JSON API、媒体与文档路由
func NewRouter(cfg *config.Config, h *handler.Handler, sessions *auth.Manager, storage media.Storage) (*gin.Engine, error) {
	r := gin.New()

	tmpl, err := web.Templates(storage.URL)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	if cfg.Media.MaxUploadMB > 0 {
		r.MaxMultipartMemory = cfg.Media.MaxUploadMB << 20
	}

	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.ReportErrors())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.Media.URLPrefix})))
	r.Use(sessions.Authenticate())

	r.GET("/healthz", h.Health)
	mediaPrefix := strings.TrimSuffix(cfg.Media.URLPrefix, "/")
	mediaGroup := r.Group(mediaPrefix, middleware.MediaHeaders(path.Join(mediaPrefix, string(media.KindAttachment))+"/"))
	mediaGroup.Static("/", cfg.Media.Root)
	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/signup/", h.SignupPage)
	r.POST("/signup/", h.Signup)
	r.GET(auth.LoginPath, h.LoginPage)
	r.POST(auth.LoginPath, h.Login)
	r.POST("/accounts/logout/", h.Logout)
	r.GET("/search/", h.Search)

	authed := r.Group("/", auth.RequireAuth())
	{
		authed.GET("/", h.Home)
		authed.POST("/", h.CreatePost)
		authed.GET("/profile/edit/", h.EditProfilePage)
		authed.POST("/profile/edit/", h.EditProfile)
		authed.GET("/profile/:username/", h.Profile)
		authed.POST("/like/:post_id/", h.LikePost)
		authed.POST("/comment/:post_id/", h.AddComment)
		authed.POST("/delete/:post_id/", h.DeletePost)
		authed.GET("/inbox/", h.Inbox)
		authed.GET("/chat/:username/", h.Chat)
		authed.POST("/chat/:username/", h.SendMessage)

		api := authed.Group("/api")
		api.POST("/like/:post_id/", h.LikeAPI)
		api.POST("/follow/:username/", h.FollowAPI)
	}

	return r, nil
}
