package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/response"
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// parseDomain reads the :domain path segment. On failure it writes a 400 and returns
// false.
func parseDomain(c *gin.Context) (offeringDomain.ServiceType, bool) {
	serviceType, err := offeringDomain.ParseServiceType(c.Param("domain"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return "", false
	}
	return serviceType, true
}

type domainFilter interface {
	domain() string
}

// historyQuery filters a traveller's history by domain.
type historyQuery struct {
	Type string `form:"type" binding:"omitempty,booking_domain"`
}

func (q *historyQuery) domain() string { return q.Type }

// providerQuery filters a provider's reservations by domain.
type providerQuery struct {
	Domain string `form:"domain" binding:"omitempty,booking_domain"`
}

func (q *providerQuery) domain() string { return q.Domain }

// bindOptionalDomain binds dst from the query string and returns the domain it names.
// An empty value means all domains. On failure it writes a 400 and returns false.
func bindOptionalDomain(c *gin.Context, dst domainFilter) (offeringDomain.ServiceType, bool) {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.BadRequest(c, err.Error())
		return "", false
	}
	if dst.domain() == "" {
		return "", true
	}
	serviceType, err := offeringDomain.ParseServiceType(dst.domain())
	if err != nil {
		response.BadRequest(c, err.Error())
		return "", false
	}
	return serviceType, true
}

// providerRoleFor is the role allowed to list offerings in a domain.
func providerRoleFor(serviceType offeringDomain.ServiceType) auth.Role {
	switch serviceType {
	case offeringDomain.ServiceHotel:
		return auth.RoleHotelier
	case offeringDomain.ServiceGuide:
		return auth.RoleTourGuide
	default:
		return auth.RoleTransportProvider
	}
}
