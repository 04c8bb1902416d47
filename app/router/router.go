package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduhub/tutor-go/app/controllers"
	"github.com/eduhub/tutor-go/app/middleware"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Handler("/metrics", promhttp.Handler())

	// 文档问答
	web.Router("/generate-quiz", &controllers.ChatController{}, "post:Ask")

	// 课程文档管理
	fileController := &controllers.FileController{}
	web.Router("/api/files", fileController, "get:List")
	web.Router("/api/files/upload", fileController, "post:Upload")
	web.Router("/api/files/:id", fileController, "delete:Delete")
}
