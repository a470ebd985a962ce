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

package conf

import (
	"github.com/go-foundry/foundry/pkg/cache"
	"github.com/go-foundry/foundry/pkg/conf"
	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/log"
	"github.com/go-foundry/foundry/pkg/metrics"
)

type AppConfig struct {
	Log       log.Conf
	Http      httpx.Http
	Redis     cache.Redis
	Metrics   metrics.Config
	Security  Security
	Reconcile Reconcile
}

// Security locates the durable team configuration, the realm file and
// the bootstrap system administrators.
type Security struct {
	// Home is the state directory; the team configuration lives at
	// <home>/teams/teams.json.
	Home string
	// Realm is the path of the JSON user realm file.
	Realm string
	// SysAdmins are granted system administration in addition to any
	// admins in the stored configuration.
	SysAdmins []string
}

// Reconcile schedules the ownership repair pass.
type Reconcile struct {
	Enable bool
	// Spec is a cron expression; empty defaults to hourly.
	Spec string
}

func NewConf(confFile string) AppConfig {
	var appConf AppConfig
	if err := conf.LoadConfigFile(confFile, &appConf); err != nil {
		panic(err)
	}
	if appConf.Reconcile.Spec == "" {
		appConf.Reconcile.Spec = "@hourly"
	}
	return appConf
}
