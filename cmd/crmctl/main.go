// crmctl is a workstation client for the CRM service. Every crmctl process
// on a machine shares one session through the local Redis store, so a login
// or logout in one terminal is visible in all the others.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/spec-kit/crm-service/internal/client"
	"github.com/spec-kit/crm-service/internal/client/guard"
	"github.com/spec-kit/crm-service/internal/client/session"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := session.NewStore(rdb, cfg.Client.SessionKeyPrefix)
	api := client.NewAPI(cfg.Client.ServerURL, cfg.Client.RequestTimeout())
	manager := client.NewManager(api, store)

	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "CRM service client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		loginCmd(manager),
		logoutCmd(manager),
		whoamiCmd(manager),
		routeCmd(manager),
		watchCmd(store),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loginCmd(manager *client.Manager) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and persist the shared session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := manager.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", snapshot.DisplayName, snapshot.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(manager *client.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the shared session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd(manager *client.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the stored token against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := manager.Whoami(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", snapshot.DisplayName, snapshot.Role)
			return nil
		},
	}
}

func routeCmd(manager *client.Manager) *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "route <path>",
		Short: "Show the navigation decision for a client route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			allowed := make([]domain.Role, 0, len(roles))
			for _, raw := range roles {
				role, err := domain.ParseRole(strings.ToUpper(raw))
				if err != nil {
					return err
				}
				allowed = append(allowed, role)
			}

			view, _ := manager.Resolve(cmd.Context())
			decision := guard.Decide(view, guard.Route{Path: args[0], AllowedRoles: allowed})
			if decision.Action == guard.ActionRender {
				fmt.Println("render")
			} else {
				fmt.Printf("redirect %s\n", decision.Target)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&roles, "allow", nil, "roles allowed on the route")
	return cmd
}

func watchCmd(store *session.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print session changes from other client processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			dispatcher := session.NewDispatcher()
			dispatcher.Subscribe(session.ChangeSet, func(_ context.Context, _ session.Change) {
				fmt.Println("session set")
			})
			dispatcher.Subscribe(session.ChangeClear, func(_ context.Context, _ session.Change) {
				fmt.Println("session cleared")
			})

			err := session.Pump(ctx, store, dispatcher)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
