package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"examportal/internal/response"
	"examportal/internal/service"
)

// RequireFreshPassword blocks admin API access while the account still
// carries a forced password change from a reset. The change-password and
// logout routes are registered outside this gate.
func RequireFreshPassword(adminService *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		admin, err := adminService.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if admin.MustChangePassword {
			response.AbortFail(c, http.StatusForbidden, response.ErrPasswordChangeDue)
			return
		}

		c.Next()
	}
}
