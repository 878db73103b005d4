package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/owenmcgrath/todoist-projection/internal/app"
	"github.com/owenmcgrath/todoist-projection/internal/cache"
	"github.com/owenmcgrath/todoist-projection/internal/config"
	"github.com/owenmcgrath/todoist-projection/internal/service"

	"github.com/spf13/cobra"
)

var snapshotPretty bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch once and print the projection as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.ValidateUpstream(); err != nil {
			return err
		}
		svc := service.NewSnapshotService(app.NewTodoistClient(cfg), nil, nil, nil, app.SnapshotOptions(cfg))
		snap, err := svc.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		if snapshotPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(snap)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for APP_PASSWORD_HASH",
	Long:  `Hashes the argument, or the first line of stdin when no argument is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password is empty")
		}
		h, err := service.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop the cached snapshot from Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rdb, err := app.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := cache.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL.Duration()).Invalidate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "snapshot cache cleared")
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotPretty, "pretty", false, "indent the JSON output")
}
