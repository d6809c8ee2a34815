package routev1

import (
	"facevote.io/application/controller"
	"facevote.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

func MiscRouter(router *gin.RouterGroup) {
	router.GET("/", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		controller.HealthCheck(appContext)
	})
}
