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
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/go-foundry/foundry/internal/engine/security/identity"
	"github.com/go-foundry/foundry/internal/engine/security/team"
	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/httpx/jwt"
	"github.com/go-foundry/foundry/pkg/httpx/middleware"
)

type Router struct {
	Http     *httpx.Http
	Redis    *redis.Client
	Realm    *identity.FileRealm
	Mgr      *team.Manager
	Strategy team.AuthorizationStrategy
}

func NewRouter(httpConf *httpx.Http, client *redis.Client, realm *identity.FileRealm, mgr *team.Manager, strategy team.AuthorizationStrategy) *Router {
	return &Router{
		Http:     httpConf,
		Redis:    client,
		Realm:    realm,
		Mgr:      mgr,
		Strategy: strategy,
	}
}

// Router assembles the fiber application: middlewares, health endpoint
// and the api groups.
func (rt *Router) Router() *fiber.App {
	app := httpx.NewApp(*rt.Http)

	app.Use(middleware.ExceptionMiddleware)
	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.RequestIdMiddleware())
	app.Use(middleware.AccessLogMiddleware(rt.Http))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	contextPath := rt.Http.ContextPath
	if contextPath == "" {
		contextPath = "/api/v1"
	}
	api := app.Group(contextPath)

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Redis)
	rt.authRouter(api, auth)
	rt.teamRouter(api, auth)

	return app
}

// currentUser resolves the principal from the claims the authorization
// middleware attached; anonymous when absent.
func (rt *Router) currentUser(c *fiber.Ctx) identity.User {
	claims, ok := c.Locals("claims").(*jwt.AuthClaims)
	if !ok || claims == nil {
		return identity.Anonymous
	}
	return identity.User{Name: claims.Name, Roles: claims.Roles}
}
