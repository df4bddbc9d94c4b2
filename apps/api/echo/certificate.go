package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core/certificate"
)

type certificateApi struct {
	svc *certificate.Service
}

func registerCertificateAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *certificate.Service) {
	api := certificateApi{svc: svc}

	cg := g.Group("/certificates", jwt)
	cg.GET("", api.query)

	g.GET("/courses/:id/certificate", api.retrieve, jwt)
}

// Handlers

func (api *certificateApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	certs, err := api.svc.QueryByUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying certificates")
	}
	if certs == nil {
		certs = []certificate.Certificate{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificateApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cert, err := api.svc.Get(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == certificate.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}
