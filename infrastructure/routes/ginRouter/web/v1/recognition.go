package routev1

import (
	"errors"
	"io"
	"net/http"

	apperrors "facevote.io/application/appErrors"
	"facevote.io/application/controller"
	"facevote.io/application/controller/dto"
	"facevote.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

var errImageTooLarge = errors.New("image exceeds the upload limit")

const formOverhead = 64 << 10

// RecognitionRouter mounts register, recognize and backends on router.
// Uploads larger than maxUploadMB are rejected before reaching the engine.
func RecognitionRouter(router *gin.RouterGroup, recognitionController *controller.RecognitionController, maxUploadMB int64) {
	maxBytes := maxUploadMB << 20

	router.POST("/register", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		image, err := readImage(ctx, maxBytes)
		if err != nil {
			rejectUpload(ctx, err, maxUploadMB)
			return
		}
		recognitionController.RegisterFace(&interfaces.ApplicationContext[dto.RegisterFaceDTO]{
			Ctx:     ctx,
			Context: appContext.Context,
			Body: &dto.RegisterFaceDTO{
				ID:    ctx.PostForm("id"),
				Name:  ctx.PostForm("name"),
				Image: image,
			},
			RequestID: appContext.RequestID,
		})
	})

	router.POST("/recognize", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		image, err := readImage(ctx, maxBytes)
		if err != nil {
			rejectUpload(ctx, err, maxUploadMB)
			return
		}
		recognitionController.RecognizeFace(&interfaces.ApplicationContext[dto.RecognizeFaceDTO]{
			Ctx:       ctx,
			Context:   appContext.Context,
			Body:      &dto.RecognizeFaceDTO{Image: image},
			RequestID: appContext.RequestID,
		})
	})

	router.GET("/backends", func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		recognitionController.ListBackends(appContext)
	})
}

// readImage returns the bytes of the "image" form file. A missing file yields
// nil so validation reports it.
func readImage(ctx *gin.Context, maxBytes int64) ([]byte, error) {
	// the form fields ride along with the file, so allow a little headroom
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes+formOverhead)
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return nil, nil
		case errors.As(err, &tooLarge):
			return nil, errImageTooLarge
		}
		return nil, err
	}
	if fileHeader.Size > maxBytes {
		return nil, errImageTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxBytes))
}

func rejectUpload(ctx *gin.Context, err error, maxUploadMB int64) {
	if errors.Is(err, errImageTooLarge) {
		apperrors.PayloadTooLarge(ctx, maxUploadMB)
		return
	}
	apperrors.ErrorProcessingPayload(ctx)
}
