package http

import (
	"net/http"

	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// ServeHTTP handles GET /v1/roles
//
//	@Summary		List roles
//	@Description	Lists every defined role. Requires ADMIN.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.RolesResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Caller is not ADMIN"
//	@Router			/v1/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.RolesResponse{Roles: make([]authsdk.RoleResponse, 0, len(roles))}
	for _, role := range roles {
		out.Roles = append(out.Roles, authsdk.RoleResponse{
			ID:          role.ID,
			Name:        string(role.Name),
			Description: role.Description,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
