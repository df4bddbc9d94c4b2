package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core/catalog"
)

type catalogApi struct {
	svc        *catalog.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerCatalogAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *catalog.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := catalogApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.createCourse, adminMiddleware())
	cg.POST("/:id/lessons", api.createLesson, adminMiddleware())
	cg.POST("/:id/enroll", api.enroll)
	cg.GET("/:id", api.retrieveCourse)
	cg.GET("/:id/lessons", api.queryLessons)
}

// Handlers

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *catalogApi) createLesson(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	data.CourseID = ctx.Param("id")
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	lesson, err := api.svc.CreateLesson(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

// enroll enrolls the authenticated user in the course; enrolling twice is a
// no-op.
func (api *catalogApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	course, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) queryLessons(ctx echo.Context) error {
	lessons, err := api.svc.QueryCourseLessons(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course lessons")
	}
	if lessons == nil {
		lessons = []catalog.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}
