package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/pkg/config"
	"github.com/noah-isme/circleed-client/pkg/logger"
)

// persistentFlagKeys maps root flags to the config keys they override.
var persistentFlagKeys = map[string]string{
	"json":      "OUTPUT_JSON",
	"api-url":   "CIRCLEED_API_URL",
	"log-level": "LOG_LEVEL",
}

// cli carries the state shared by every command of one invocation. The app
// is built lazily so argument errors never touch the token store.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	app    *app
	out    *printer
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "circleed",
		Short:         "CircleEd skill exchange client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.Bool("json", false, "print JSON instead of tables")
	flags.String("api-url", "", "CircleEd API base URL (CIRCLEED_API_URL)")
	flags.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	root.AddGroup(
		&cobra.Group{ID: "account", Title: "Account:"},
		&cobra.Group{ID: "learn", Title: "Learning:"},
		&cobra.Group{ID: "teach", Title: "Teaching:"},
		&cobra.Group{ID: "daemon", Title: "Background:"},
	)
	add := func(group string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}
	add("account",
		newLoginCmd(c), newRegisterCmd(c), newLogoutCmd(c), newWhoamiCmd(c),
		newProfileCmd(c), newWalletCmd(c), newBalanceCmd(c), newDashboardCmd(c),
	)
	add("learn",
		newSkillsCmd(c), newSkillCmd(c), newReviewsCmd(c), newBrowseCmd(c),
		newBookCmd(c), newBookingsCmd(c), newReviewCmd(c),
		newChatsCmd(c), newChatWithCmd(c), newMessagesCmd(c), newSendCmd(c),
	)
	add("teach",
		newTeachCmd(c),
		newSessionActionCmd(c, models.ActionConfirm, "Accept a pending request as its teacher"),
		newSessionActionCmd(c, models.ActionDecline, "Reject a pending request as its teacher"),
		newSessionActionCmd(c, models.ActionCancel, "Withdraw a pending request as its student"),
		newSessionActionCmd(c, models.ActionComplete, "Mark a confirmed session as taught"),
	)
	add("daemon", newWatchCmd(c))
	return root
}

// setup loads configuration with the root flags bound over the environment
// and wires the app for the command about to run.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.app != nil || cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load(config.WithFlags(cmd.Flags(), persistentFlagKeys))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.cfg, c.logger = cfg, logr

	a, err := newApp(cmd.Context(), cfg, logr)
	if err != nil {
		logr.Error("startup failed", zap.Error(err))
		return err
	}
	c.app = a

	stderr := cmd.ErrOrStderr()
	a.bus.OnToast(func(_ context.Context, t events.Toast) {
		if t.Message != "" {
			fmt.Fprintf(stderr, "[%s] %s: %s\n", t.Level, t.Title, t.Message)
			return
		}
		fmt.Fprintf(stderr, "[%s] %s\n", t.Level, t.Title)
	})
	a.bus.OnNotification(func(_ context.Context, n events.Notification) {
		fmt.Fprintf(stderr, "* %s: %s\n", n.Title, n.Message)
	})

	c.out = &printer{w: cmd.OutOrStdout(), json: cfg.Output.JSON}
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
		c.app = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
