package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dealerops/internal/apperr"
	"dealerops/internal/authz"
	"dealerops/internal/invariant"
	"dealerops/internal/invite"
	"dealerops/internal/punch"
	"dealerops/prometheus"
)

// Shared service instances, wired once at startup.
var (
	resolver  *authz.Resolver
	pipeline  *invariant.Pipeline
	verifier  *invite.Verifier
	machine   *punch.Machine
	inviteTTL time.Duration
)

// Init wires the handler package to the database and governing time zone.
func Init(db *gorm.DB, loc *time.Location, invitationTTL time.Duration) {
	resolver = authz.NewResolver(db)
	pipeline = invariant.NewPipeline(db, loc)
	verifier = invite.NewVerifier(db)
	machine = punch.NewMachine(db)
	inviteTTL = invitationTTL
}

// respondError maps core errors onto HTTP responses. Authorization
// failures are a single opaque denial; invariant rejections carry the
// violated rule.
func respondError(c echo.Context, err error) error {
	var capacityErr *apperr.CapacityExceededError
	var validationErr *apperr.ValidationError

	switch {
	case errors.Is(err, apperr.ErrAuthorizationDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, apperr.ErrConflictingState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting state"})
	case errors.Is(err, apperr.ErrMembershipIntegrity):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	case errors.As(err, &capacityErr):
		prometheus.RecordInvariantRejection("capacity_exceeded")
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": capacityErr.Error(),
			"limit": capacityErr.Limit,
		})
	case errors.As(err, &validationErr):
		prometheus.RecordInvariantRejection(validationErr.Rule)
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": validationErr.Message,
			"rule":  validationErr.Rule,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// deny is the uniform authorization failure response. It never says
// whether the tenant exists or which sub-check failed.
func deny(c echo.Context) error {
	prometheus.RecordAuthzDecision(false)
	return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
}
