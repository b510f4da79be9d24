package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/service"
)

func parseID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s is required", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func newLoginCmd(c *cli) *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.auth.Login(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.out.fields(user,
				[2]string{"Logged in as", user.FullName},
				[2]string{"Balance", strconv.Itoa(user.TokenBalance) + " tokens"},
			)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.out.fields(user, [2]string{"Registered", user.FullName}, [2]string{"Email", user.Email})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			return c.out.fields(map[string]bool{"logged_out": true}, [2]string{"Logged out", "yes"})
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := c.app.auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			expiry := "-"
			if exp, err := c.app.auth.TokenExpiry(ctx); err == nil && !exp.IsZero() {
				expiry = formatTime(exp)
			}
			return c.out.fields(user,
				[2]string{"ID", itoa(user.ID)},
				[2]string{"Name", user.FullName},
				[2]string{"Email", user.Email},
				[2]string{"Token expires", expiry},
			)
		},
	}
}

func printMarketplace(out *printer, skills []models.Skill) error {
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{
			itoa(s.ID), s.Title, s.TeacherName(), s.Category, s.Level, s.Language,
			strconv.Itoa(s.TokensPerSession), fmt.Sprintf("%.1f (%d)", s.Rating, s.ReviewCount),
		})
	}
	return out.table(skills, []string{"ID", "TITLE", "TEACHER", "CATEGORY", "LEVEL", "LANGUAGE", "TOKENS", "RATING"}, rows)
}

func newSkillsCmd(c *cli) *cobra.Command {
	var filter dto.SkillFilter
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Search the marketplace; your own skills are never listed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			skills, err := c.app.marketplace.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printMarketplace(c.out, skills)
		},
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "category or all")
	cmd.Flags().StringVar(&filter.Level, "level", "", "level or all")
	cmd.Flags().StringVar(&filter.Language, "language", "", "language or all")
	cmd.Flags().StringVar(&filter.Search, "search", "", "title/description search")
	return cmd
}

func newSkillCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "skill <id>",
		Short: "Show one skill with its availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args, "skill id")
			if err != nil {
				return err
			}
			skill, err := c.app.marketplace.Skill(cmd.Context(), id)
			if err != nil {
				return err
			}
			pairs := [][2]string{
				{"Title", skill.Title},
				{"Teacher", skill.TeacherName()},
				{"Description", skill.Description},
				{"Category", skill.Category},
				{"Level", skill.Level},
				{"Language", skill.Language},
				{"Tokens", strconv.Itoa(skill.TokensPerSession)},
				{"Rating", fmt.Sprintf("%.1f (%d reviews)", skill.Rating, skill.ReviewCount)},
			}
			for _, av := range skill.Availability {
				pairs = append(pairs, [2]string{av.Day, strings.Join(av.TimeSlots, ", ")})
			}
			return c.out.fields(skill, pairs...)
		},
	}
}

func newReviewsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <skill-id>",
		Short: "List the reviews of a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args, "skill id")
			if err != nil {
				return err
			}
			reviews, err := c.app.reviews.Reviews(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(reviews))
			for _, r := range reviews {
				rows = append(rows, []string{service.ReviewerName(r), strings.Repeat("*", r.Rating), r.Comment, formatTime(r.CreatedAt.Time)})
			}
			return c.out.table(reviews, []string{"REVIEWER", "RATING", "COMMENT", "DATE"}, rows)
		},
	}
}

func newBookCmd(c *cli) *cobra.Command {
	var (
		skillID   int64
		day, slot string
	)
	cmd := &cobra.Command{
		Use:     "book",
		Short:   "Book the next occurrence of a skill's time slot",
		Example: `  circleed book --skill 3 --day Monday --slot "10:00 AM"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirmation, err := c.app.bookings.Book(cmd.Context(), skillID, day, slot)
			if err != nil {
				return err
			}
			chat := "-"
			if confirmation.Chat != nil {
				chat = itoa(confirmation.Chat.ID)
			}
			return c.out.fields(confirmation,
				[2]string{"Session", itoa(confirmation.Session.ID)},
				[2]string{"Scheduled", formatTime(confirmation.Session.ScheduledAt.Time)},
				[2]string{"Status", string(confirmation.Session.Status)},
				[2]string{"Chat", chat},
			)
		},
	}
	cmd.Flags().Int64Var(&skillID, "skill", 0, "skill id")
	cmd.Flags().StringVar(&day, "day", "", "weekday from the skill's availability")
	cmd.Flags().StringVar(&slot, "slot", "", `time slot, e.g. "10:00 AM"`)
	_ = cmd.MarkFlagRequired("skill")
	return cmd
}

func newBookingsCmd(c *cli) *cobra.Command {
	var rawTab string
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your sessions as student and as teacher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tab, err := dto.ParseTab(rawTab)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := c.app.bookings.Load(ctx); err != nil {
				return err
			}
			view, err := c.app.bookings.Bookings(ctx, tab)
			if err != nil {
				return err
			}
			if c.out.json {
				return c.out.value(view)
			}
			return printBookings(c.out, view)
		},
	}
	cmd.Flags().StringVar(&rawTab, "tab", "all", "all, upcoming or past")
	return cmd
}

func printBookings(out *printer, view *dto.BookingsView) error {
	header := []string{"ID", "SKILL", "TEACHER", "STUDENT", "WHEN", "STATUS", "ACTIONS"}
	for _, section := range []struct {
		title string
		rows  []dto.BookingView
	}{{"As student", view.AsStudent}, {"As teacher", view.AsTeacher}} {
		fmt.Fprintf(out.w, "%s (%d)\n", section.title, len(section.rows))
		rows := make([][]string, 0, len(section.rows))
		for _, b := range section.rows {
			actions := make([]string, 0, len(b.Actions))
			for _, action := range b.Actions {
				actions = append(actions, string(action))
			}
			rows = append(rows, []string{itoa(b.ID), b.SkillTitle, b.TeacherName, b.StudentName, formatTime(b.ScheduledAt), string(b.Status), strings.Join(actions, ",")})
		}
		if err := out.table(nil, header, rows); err != nil {
			return err
		}
		fmt.Fprintln(out.w)
	}
	return nil
}

func newSessionActionCmd(c *cli, action models.SessionAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args, "session id")
			if err != nil {
				return err
			}
			run := map[models.SessionAction]func(context.Context, int64) (*dto.ActionResult, error){
				models.ActionConfirm:  c.app.bookings.Confirm,
				models.ActionDecline:  c.app.bookings.Decline,
				models.ActionCancel:   c.app.bookings.Cancel,
				models.ActionComplete: c.app.bookings.Complete,
			}[action]
			result, err := run(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.out.fields(result, [2]string{"Session", itoa(result.SessionID)}, [2]string{"Status", string(result.Status)})
		},
	}
}

func newReviewCmd(c *cli) *cobra.Command {
	var (
		sessionID int64
		rating    int
		comment   string
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a completed session you attended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.app.bookings.Load(ctx); err != nil {
				return err
			}
			c.app.reviews.Open(sessionID)
			review, err := c.app.reviews.Submit(ctx, rating, comment)
			if err != nil {
				return err
			}
			return c.out.fields(review, [2]string{"Review", itoa(review.ID)}, [2]string{"Rating", strconv.Itoa(review.Rating)})
		},
	}
	cmd.Flags().Int64Var(&sessionID, "session", 0, "completed session id")
	cmd.Flags().IntVar(&rating, "rating", 0, "1 to 5 stars")
	cmd.Flags().StringVar(&comment, "comment", "", "optional comment")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func newChatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.chats.Chats(cmd.Context(), 0)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(st.Chats))
			for _, ch := range st.Chats {
				rows = append(rows, []string{itoa(ch.ID), ch.ParticipantName, ch.LastMessage, formatTime(ch.LastMessageTime), strconv.Itoa(ch.UnreadCount)})
			}
			return c.out.table(st, []string{"ID", "WITH", "LAST MESSAGE", "AT", "UNREAD"}, rows)
		},
	}
}

func newChatWithCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chat-with <user-id>",
		Short: "Open (or create) the conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args, "user id")
			if err != nil {
				return err
			}
			chat, err := c.app.chats.GetOrCreate(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return c.out.fields(chat, [2]string{"Chat", itoa(chat.ID)})
		},
	}
}

func newMessagesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <chat-id>",
		Short: "Show the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID(args, "chat id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			msgs, err := c.app.chats.Messages(ctx, chatID)
			if err != nil {
				return err
			}
			viewer, _ := c.app.tokens.CachedUser(ctx)
			rows := make([][]string, 0, len(msgs))
			for _, m := range msgs {
				from := itoa(m.SenderID)
				if viewer != nil && m.SenderID == viewer.ID {
					from = "you"
				}
				rows = append(rows, []string{formatTime(m.CreatedAt.Time), from, m.Content})
			}
			return c.out.table(msgs, []string{"AT", "FROM", "MESSAGE"}, rows)
		},
	}
}

func newSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <chat-id> <message...>",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID(args, "chat id")
			if err != nil {
				return err
			}
			msg, err := c.app.chats.Send(cmd.Context(), chatID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return c.out.fields(msg, [2]string{"Message", itoa(msg.ID)})
		},
	}
}

func newWalletCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show balance, totals and the transaction ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			summary, err := c.app.wallet.Load(ctx)
			if err != nil {
				return err
			}
			if format != "" {
				statement, err := c.app.wallet.Export(ctx, dto.ExportFormat(strings.ToLower(format)))
				if err != nil {
					return err
				}
				path, err := c.app.wallet.SaveStatement(statement)
				if err != nil {
					return err
				}
				return c.out.fields(map[string]string{"path": path}, [2]string{"Statement", path})
			}
			if c.out.json {
				return c.out.value(summary)
			}
			return printWallet(c.out, summary)
		},
	}
	cmd.Flags().StringVar(&format, "export", "", "write a csv or pdf statement to the export dir")
	return cmd
}

func printWallet(out *printer, summary *dto.WalletSummary) error {
	if err := out.fields(nil,
		[2]string{"Balance", strconv.Itoa(summary.Balance)},
		[2]string{"Total earned", strconv.Itoa(summary.TotalEarned)},
		[2]string{"Total spent", strconv.Itoa(summary.TotalSpent)},
	); err != nil {
		return err
	}
	fmt.Fprintln(out.w)
	rows := make([][]string, 0, len(summary.Transactions))
	for _, tx := range summary.Transactions {
		rows = append(rows, []string{formatTime(tx.CreatedAt.Time), tx.Description, string(tx.Type), strconv.Itoa(tx.Amount)})
	}
	return out.table(nil, []string{"DATE", "DESCRIPTION", "TYPE", "AMOUNT"}, rows)
}

func newBalanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the token balance reported by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			balance, err := c.app.transactions.Balance(cmd.Context())
			if err != nil {
				return err
			}
			return c.out.fields(models.Balance{Balance: balance}, [2]string{"Balance", strconv.Itoa(balance) + " tokens"})
		},
	}
}

func newDashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Greeting, balance, streak and upcoming sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := c.app.dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}
			if c.out.json {
				return c.out.value(summary)
			}
			if err := c.out.fields(nil,
				[2]string{"Welcome back", summary.UserName},
				[2]string{"Balance", strconv.Itoa(summary.TokenBalance) + " tokens"},
				[2]string{"Streak", strconv.Itoa(summary.Streak) + " days"},
				[2]string{"Upcoming", strconv.Itoa(summary.UpcomingCount)},
				[2]string{"Skills learned", strconv.Itoa(summary.SkillsLearned)},
			); err != nil {
				return err
			}
			fmt.Fprintln(c.out.w)
			rows := make([][]string, 0, len(summary.Upcoming))
			for _, u := range summary.Upcoming {
				rows = append(rows, []string{itoa(u.SessionID), u.SkillTitle, formatTime(u.ScheduledAt), string(u.Status)})
			}
			return c.out.table(nil, []string{"SESSION", "SKILL", "WHEN", "STATUS"}, rows)
		},
	}
}
