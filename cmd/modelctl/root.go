/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suparena/modelstore"
	"github.com/suparena/modelstore/config"
	"github.com/suparena/modelstore/gateway"
)

type app struct {
	configPath string
	envFiles   []string
	backend    string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "modelctl",
		Short:         "modelctl inspects and edits a modelstore database",
		Long:          `modelctl opens the database described by a modelstore config file and reads or writes its partitions. All data is printed as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "modelstore.yaml", "Path to the modelstore config file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "Env files to read overrides from (default .env when present)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Override the configured backend (memory, redis, dynamodb)")

	root.AddCommand(
		newVersionCmd(),
		a.newPartitionsCmd(),
		a.newGetCmd(),
		a.newQueryCmd(),
		a.newPutCmd(),
		a.newDeleteCmd(),
	)
	return root
}

// connect loads the config and opens the store it describes.
func (a *app) connect(ctx context.Context) (*gateway.Gateway, *gateway.Conn, config.Config, error) {
	cfg, err := config.Load(a.configPath, a.envFiles...)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	if a.backend != "" {
		cfg.Backend = strings.ToLower(a.backend)
		if err := cfg.Validate(); err != nil {
			return nil, nil, config.Config{}, err
		}
	}
	store, err := modelstore.Open(ctx, cfg)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	conn, err := store.Connect(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, config.Config{}, err
	}
	return store.Gateway(), conn, cfg, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
