// Copyright 2025 Grid Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridlabs-io/joule/internal/config"
	"github.com/gridlabs-io/joule/internal/node"
)

func serveRun(_ *cobra.Command, _ []string) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Error("failed to load config: " + err.Error())
		os.Exit(1)
	}
	logger := commonRun(cfg)

	// Run node
	if err := node.Run(cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the grid node",
		Run: func(cmd *cobra.Command, args []string) {
			serveRun(cmd, args)
		},
	}
}
