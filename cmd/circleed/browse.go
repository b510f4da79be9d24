package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/state"
)

func newBrowseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Refine a marketplace search interactively, one line at a time",
		Long: `Reads filter changes from stdin and prints results once typing settles.

  category=Programming level=all   set filters, "all" clears one
  go concurrency                   replace the search text
  reset                            clear every filter
  quit                             stop (so does end of input)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd.Context(), c, cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	}
}

func runBrowse(ctx context.Context, c *cli, in io.Reader, errOut io.Writer) error {
	var (
		mu    sync.Mutex
		shown *dto.SkillFilter
	)
	settled := make(chan struct{}, 1)
	unwatch := c.app.store.Watch(state.KeyMarketplace, func(snap state.Snapshot) {
		result, ok := snap.Value.(*dto.MarketplaceState)
		if !ok || result == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		filter := result.Filter
		shown = &filter
		if err := printMarketplace(c.out, result.Skills); err != nil {
			c.logger.Warn("print marketplace", zap.Error(err))
		}
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	defer unwatch()

	filter := c.app.marketplace.Filter()
	c.app.marketplace.SetFilter(ctx, filter)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		next, done, err := parseFilterLine(filter, scanner.Text())
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		if done {
			break
		}
		filter = next
		c.app.marketplace.SetFilter(ctx, filter)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// wait for the search of the last filter to land
	want := filter.Normalize()
	deadline := time.NewTimer(c.cfg.Marketplace.Debounce + c.cfg.API.Timeout)
	defer deadline.Stop()
	for {
		mu.Lock()
		done := shown != nil && *shown == want
		mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-settled:
		case <-deadline.C:
			return fmt.Errorf("marketplace search did not finish within %s", c.cfg.Marketplace.Debounce+c.cfg.API.Timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseFilterLine applies one line of browse input to current. done is set
// when the user asked to stop.
func parseFilterLine(current dto.SkillFilter, line string) (next dto.SkillFilter, done bool, err error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return current, false, nil
	case "quit", "exit":
		return current, true, nil
	case "reset":
		return dto.SkillFilter{}, false, nil
	}

	next = current
	var words []string
	for _, token := range strings.Fields(line) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			words = append(words, token)
			continue
		}
		switch strings.ToLower(key) {
		case "category":
			next.Category = value
		case "level":
			next.Level = value
		case "language":
			next.Language = value
		case "search":
			next.Search = value
		default:
			return current, false, fmt.Errorf("unknown filter %q, use category, level, language or search", key)
		}
	}
	if len(words) > 0 {
		next.Search = strings.Join(words, " ")
	}
	return next, false, nil
}
