/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/modelstore"
	"github.com/suparena/modelstore/errors"
	"github.com/suparena/modelstore/gateway"
	"github.com/suparena/modelstore/query"
	"github.com/suparena/modelstore/storagemodels"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of modelctl",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), modelstore.GetVersionInfo().String())
		},
	}
}

func (a *app) newPartitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partitions",
		Short: "List the partitions of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, conn, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()

			schema := conn.Schema()
			out := make([]storagemodels.PartitionConfig, 0, len(schema.Partitions))
			for _, name := range schema.Names() {
				out = append(out, schema.Partitions[name])
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"database":   schema.Database,
				"version":    schema.Version,
				"partitions": out,
			})
		},
	}
}

// key parses a command-line key for the partition's key type.
func key(conn *gateway.Conn, partition, raw string) (any, error) {
	p, err := conn.Partition(partition)
	if err != nil {
		return nil, err
	}
	return storagemodels.CoerceKey(p, raw)
}

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <partition> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, conn, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			id, err := key(conn, args[0], args[1])
			if err != nil {
				return err
			}
			rec, err := gw.Get(ctx, args[0], id)
			if err != nil {
				return err
			}
			if rec == nil {
				return errors.NewNotFoundError(args[0], args[1])
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func (a *app) newQueryCmd() *cobra.Command {
	var (
		where  []string
		order  string
		skip   int
		limit  int
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "query <partition>",
		Short: "Filter, order and page through a partition",
		Example: `  modelctl query users --where 'age=>=:18' --where 'active=true' --order name --limit 10
  modelctl query users --order 'created_at:desc' --skip 20 --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			spec, err := parseSpec(where, order)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("skip") {
				spec.Skip = &skip
			}
			if cmd.Flags().Changed("limit") {
				spec.Limit = &limit
			}

			gw, _, cfg, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			records, err := gw.GetAll(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := query.Apply(spec, records, strict || cfg.Query.StrictOperators)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "Condition as field=op:value or field=value; repeatable, AND-ed")
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort field, optionally suffixed with :desc")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of results to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject unknown operators")
	return cmd
}

func (a *app) newPutCmd() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "put <partition> <json>",
		Short: "Insert or replace a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, err := parseRecord(args[1])
			if err != nil {
				return err
			}
			gw, _, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			write := gw.Put
			if create {
				write = gw.Add
			}
			k, err := write(ctx, args[0], rec)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"key": k})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Fail if the key already exists")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <partition> <id>...",
		Short: "Delete records",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, conn, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			deleted := make([]any, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := key(conn, args[0], raw)
				if err != nil {
					return err
				}
				if err := gw.Delete(ctx, args[0], id); err != nil {
					return err
				}
				deleted = append(deleted, id)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": deleted})
		},
	}
}

func parseRecord(raw string) (storagemodels.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var rec storagemodels.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.NewValidationError("json", err.Error())
	}
	if rec == nil {
		return nil, errors.NewValidationError("json", "record must be a JSON object")
	}
	return rec, nil
}
