package jail_bot

import (
	_ "github.com/cydxin/jail-bot/docs"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger 在 Gin 路由上注册 Swagger UI。
// 默认路由：/swagger/*any，Router 已经挂好；自建 gin.Engine 时手动调用。
//
// 访问：http://localhost:8080/swagger/index.html
func RegisterSwagger(r gin.IRoutes, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
