package api

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/api/middleware"
	"Snapfeed/internal/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, serverCfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware(serverCfg.MaxBodyBytes))
	r.Use(middleware.CORSMiddleware(serverCfg.AllowOrigins))
	logger.SetupGin(r)
	r.Use(middleware.TimeoutMiddleware(time.Duration(serverCfg.RequestTimeout) * time.Second))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
				authGroup.DELETE("", group.UserHandler.CancelUser)
			}
		}

		relationGroup := apiGroup.Group("/user-relation")
		relationGroup.Use(middleware.AuthMiddleware())
		{
			relationGroup.POST("/follow/:user_id", group.UserFollowHandler.Follow)
			relationGroup.DELETE("/follow/:user_id", group.UserFollowHandler.Unfollow)
			relationGroup.GET("/followings", group.UserFollowHandler.GetFollowings)
			relationGroup.GET("/followers", group.UserFollowHandler.GetFollowers)
			relationGroup.POST("/block/:user_id", group.UserFollowHandler.Block)
			relationGroup.DELETE("/block/:user_id", group.UserFollowHandler.Unblock)
		}

		feedGroup := apiGroup.Group("/feeds")
		{
			publicGroup := feedGroup.Group("")
			publicGroup.Use(middleware.AuthOptionalMiddleware())
			{
				publicGroup.GET("", group.FeedHandler.GetAllFeeds)
				publicGroup.GET("/search", group.FeedHandler.SearchFeeds)
				publicGroup.GET("/user/:user_id", group.FeedHandler.GetFeedsByUser)
				publicGroup.GET("/:feed_id", group.FeedHandler.GetFeed)
				publicGroup.GET("/:feed_id/comments", group.CommentHandler.ListComments)
			}

			authGroup := feedGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/following", group.FeedHandler.GetFollowingFeeds)
				authGroup.GET("/bookmarks", group.FeedHandler.GetBookmarkedFeeds)
				authGroup.POST("", group.FeedHandler.CreateFeed)
				authGroup.PUT("/:feed_id", group.FeedHandler.UpdateFeed)
				authGroup.PUT("/:feed_id/status", group.FeedHandler.UpdateStatus)
				authGroup.PUT("/:feed_id/like-count-visibility", group.FeedHandler.UpdateShowLikeCount)
				authGroup.PUT("/:feed_id/display", group.FeedHandler.UpdateDisplay)
				authGroup.DELETE("/:feed_id", group.FeedHandler.DeleteFeed)
				authGroup.DELETE("/:feed_id/hard", group.FeedHandler.HardDeleteFeed)
				authGroup.POST("/:feed_id/like", group.FeedHandler.Like)
				authGroup.DELETE("/:feed_id/like", group.FeedHandler.Unlike)
				authGroup.POST("/:feed_id/bookmark", group.FeedHandler.Bookmark)
				authGroup.DELETE("/:feed_id/bookmark", group.FeedHandler.Unbookmark)
				authGroup.POST("/:feed_id/comments", group.CommentHandler.CreateComment)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		{
			commentGroup.GET("/:comment_id/replies", middleware.AuthOptionalMiddleware(), group.CommentHandler.ListReplies)

			authGroup := commentGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.DELETE("/:comment_id", group.CommentHandler.DeleteComment)
				authGroup.POST("/:comment_id/replies", group.CommentHandler.CreateReply)
			}
		}

		apiGroup.GET("/tags/popular", group.TagHandler.GetPopularTags)

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}

		sysBoxGroup := apiGroup.Group("/sysbox")
		sysBoxGroup.Use(middleware.AuthMiddleware())
		{
			sysBoxGroup.GET("/list", group.SysBoxHandler.GetNotificationList)
			sysBoxGroup.GET("/unread", group.SysBoxHandler.GetUnreadCount)
			sysBoxGroup.POST("/read", group.SysBoxHandler.MarkRead)
			sysBoxGroup.POST("/read/all", group.SysBoxHandler.MarkAllRead)
		}
	}

	return r
}
