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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-foundry/foundry/internal/engine/conf"
	"github.com/go-foundry/foundry/internal/engine/reconcile"
	"github.com/go-foundry/foundry/internal/engine/router"
	"github.com/go-foundry/foundry/internal/engine/security/identity"
	"github.com/go-foundry/foundry/internal/engine/security/team"
	"github.com/go-foundry/foundry/internal/engine/store"
	"github.com/go-foundry/foundry/pkg/cache"
	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/log"
	"github.com/go-foundry/foundry/pkg/metrics"
	"github.com/go-foundry/foundry/pkg/runner"
)

var (
	configFile string
)

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
}

func main() {
	flag.Parse()
	printRunner()

	appConf := conf.NewConf(configFile)

	if _, err := log.NewLog(&appConf.Log); err != nil {
		panic(err)
	}

	redis, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		panic(err)
	}

	realm, err := identity.NewFileRealm(appConf.Security.Realm)
	if err != nil {
		panic(err)
	}

	metricsServer := metrics.NewMetricsServer(appConf.Metrics)
	if err := metricsServer.Start(); err != nil {
		panic(err)
	}

	registry := team.NewMemoryRegistry()
	mgr, err := team.NewManager(store.NewFileStore(appConf.Security.Home), registry)
	if err != nil {
		panic(err)
	}
	for _, admin := range appConf.Security.SysAdmins {
		if err := mgr.AddSysAdmin(admin); err != nil {
			panic(err)
		}
	}
	strategy := team.NewTeamBasedAuthorizationStrategy(mgr)

	var reconciler *reconcile.Reconciler
	if appConf.Reconcile.Enable {
		reconciler = reconcile.NewReconciler(mgr, registry, appConf.Reconcile.Spec)
		if err := reconciler.Start(); err != nil {
			panic(err)
		}
	}

	route := router.NewRouter(&appConf.Http, redis, realm, mgr, strategy)

	httpClean := httpx.NewHttp(appConf.Http, route.Router())
	httpClean()

	if reconciler != nil {
		reconciler.Stop()
	}
	if err := metricsServer.Stop(context.Background()); err != nil {
		log.Errorf("metrics server stop error: %v", err)
	}
}

func printRunner() {
	fmt.Println("runner.pwd:", runner.Pwd)
	fmt.Println("runner.hostname:", runner.Hostname)
}
