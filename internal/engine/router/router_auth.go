// Copyright 2025 Foundry Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/go-foundry/foundry/internal/engine/model"
	"github.com/go-foundry/foundry/internal/engine/security/identity"
	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/httpx/jwt"
	"github.com/go-foundry/foundry/pkg/httpx/middleware"
	"github.com/go-foundry/foundry/pkg/log"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/login", rt.login)
		authGroup.Post("/logout", auth, rt.logout)
		authGroup.Get("/refresh", rt.refresh)
	}
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Username == "" || req.Password == "" {
		return httpx.WithRepErrMsg(c, httpx.UsernameArePasswordIsRequired.Code, httpx.UsernameArePasswordIsRequired.Msg, c.Path())
	}

	user, err := rt.Realm.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return httpx.WithRepErrMsg(c, httpx.UserNotExist.Code, httpx.UserNotExist.Msg, c.Path())
		}
		return httpx.WithRepErrMsg(c, httpx.UserIncorrectPassword.Code, httpx.UserIncorrectPassword.Msg, c.Path())
	}

	aToken, rToken, err := jwt.GenToken(user.Name, user.Roles, []byte(rt.Http.Auth.SecretKey),
		rt.Http.Auth.AccessExpire, rt.Http.Auth.RefreshExpire)
	if err != nil {
		log.Errorf("generate token failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}

	sessionKey := middleware.SessionKeyPrefix + user.Name
	if err := rt.Redis.Set(context.Background(), sessionKey, aToken, rt.Http.Auth.RefreshExpire).Err(); err != nil {
		log.Errorf("store session failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}

	return httpx.WithRepJSON(c, model.LoginRep{
		Name:         user.Name,
		Roles:        user.Roles,
		AccessToken:  aToken,
		RefreshToken: rToken,
	})
}

func (rt *Router) logout(c *fiber.Ctx) error {
	user := rt.currentUser(c)
	if user.IsAnonymous() {
		return httpx.WithRepErrMsg(c, httpx.Unauthorized.Code, httpx.Unauthorized.Msg, c.Path())
	}
	sessionKey := middleware.SessionKeyPrefix + user.Name
	if err := rt.Redis.Del(context.Background(), sessionKey).Err(); err != nil {
		log.Errorf("delete session failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
	return httpx.WithRepNotDetail(c)
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	rToken := c.Query("refreshToken")
	if rToken == "" {
		return httpx.WithRepErrMsg(c, httpx.TokenBeEmpty.Code, httpx.TokenBeEmpty.Msg, c.Path())
	}
	tokens, err := jwt.RefreshToken(rt.Http.Auth.SecretKey, rt.Http.Auth.AccessExpire, rt.Http.Auth.RefreshExpire, rToken)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.InvalidToken.Code, httpx.InvalidToken.Msg, c.Path())
	}
	return httpx.WithRepJSON(c, tokens)
}
