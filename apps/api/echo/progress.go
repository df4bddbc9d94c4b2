package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
)

type progressApi struct {
	svc        *progress.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerProgressAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *progress.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := progressApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	pg := g.Group("/progress", jwt)
	pg.POST("", api.report)
	pg.GET("", api.retrieve)

	g.GET("/courses/:id/completion", api.courseCompletion, jwt)
}

// Handlers

func (api *progressApi) report(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data progress.ProgressReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressReport")
	}
	if err = data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	rec, err := api.svc.ReportProgress(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		switch errors.Cause(err) {
		case catalog.ErrLessonNotFound, progress.ErrNotEnrolled:
			return errHttpNotFound
		}
		return errors.Wrap(err, "reporting progress")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// retrieve returns the authenticated user's record for ?lesson_id=; a JSON
// null body when no progress has been reported yet.
func (api *progressApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lessonID := core.CleanString(ctx.QueryParam("lesson_id"))
	if lessonID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "lesson_id is required")
	}

	rec, err := api.svc.GetProgress(ctx.Request().Context(), claims.Subject, lessonID)
	if err != nil {
		if errors.Cause(err) == progress.ErrNotFound {
			return ctx.JSON(http.StatusOK, nil)
		}
		return errors.Wrap(err, "finding progress")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) courseCompletion(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	completion, err := api.svc.CourseCompletion(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing course completion")
	}
	return ctx.JSON(http.StatusOK, completion)
}
