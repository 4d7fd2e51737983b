package http

import (
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ActorHeader carries the id of the authenticated account. Authentication
// happens upstream; this adapter trusts the header.
const ActorHeader = "X-Actor-ID"

func actorID(c echo.Context) (kernel.UUID, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(ActorHeader))
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(ActorHeader)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(ActorHeader, err)
	}
	return id, nil
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
