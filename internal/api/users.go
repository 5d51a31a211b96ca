package api

import (
	"net/http"

	"github.com/csoj/csoj/internal/apierr"
	"github.com/csoj/csoj/internal/core"

	"github.com/gin-gonic/gin"
)

// postUsers handles both the create path (no id) and the rename path (id
// present), grounded on function_post_users.rs.
func postUsers(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body core.PostUser
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, apierr.InvalidArgumentf("%v", err))
			return
		}

		if state.UserNameTaken(body.Name) {
			fail(c, apierr.InvalidArgumentf("name %q is already in use", body.Name))
			return
		}

		if body.ID == nil {
			u, err := state.CreateUser(body.Name)
			if err != nil {
				failExternal(c, err)
				return
			}
			ok(c, u)
			return
		}

		u, found, err := state.RenameUser(*body.ID, body.Name)
		if err != nil {
			failExternal(c, err)
			return
		}
		if !found {
			fail(c, apierr.NotFoundf("user %d not found", *body.ID))
			return
		}
		ok(c, u)
	}
}

func getUsers(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var out []core.User
		state.Users(func(users []core.User) {
			out = append(out, users...)
		})
		c.JSON(http.StatusOK, out)
	}
}
