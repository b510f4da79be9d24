package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/service"
)

// parseAvailability reads "Monday=10:00 AM|2:00 PM;Wednesday=9:00 AM".
func parseAvailability(raw string) ([]models.Availability, error) {
	out := []models.Availability{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, slots, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(day) == "" {
			return nil, fmt.Errorf("invalid availability %q, want Day=slot|slot", part)
		}
		av := models.Availability{Day: strings.TrimSpace(day), TimeSlots: []string{}}
		for _, slot := range strings.Split(slots, "|") {
			slot = strings.TrimSpace(slot)
			if slot == "" {
				continue
			}
			if _, _, err := service.ParseSlotClock(slot); err != nil {
				return nil, err
			}
			av.TimeSlots = append(av.TimeSlots, slot)
		}
		out = append(out, av)
	}
	return out, nil
}

// skillFlags holds the flags shared by teach create and teach update.
type skillFlags struct {
	payload      dto.SkillPayload
	availability string
}

func (f *skillFlags) register(fs *pflag.FlagSet, create bool) {
	level := ""
	tokens := 0
	if create {
		level, tokens = "Beginner", 1
	}
	fs.StringVar(&f.payload.Title, "title", "", "title")
	fs.StringVar(&f.payload.Description, "description", "", "description")
	fs.StringVar(&f.payload.Category, "category", "", "category")
	fs.StringVar(&f.payload.Level, "level", level, "Beginner, Intermediate or Advanced")
	fs.StringVar(&f.payload.Language, "language", "", "language, English when empty")
	fs.IntVar(&f.payload.TokensPerSession, "tokens", tokens, "tokens per session")
	fs.StringVar(&f.availability, "availability", "", "Day=slot|slot;Day=slot")
}

func (f *skillFlags) create() (dto.SkillPayload, error) {
	payload := f.payload
	var err error
	payload.Availability, err = parseAvailability(f.availability)
	return payload, err
}

// update only fills the fields whose flags were given.
func (f *skillFlags) update(fs *pflag.FlagSet) (dto.SkillUpdate, error) {
	var update dto.SkillUpdate
	if fs.Changed("title") {
		update.Title = &f.payload.Title
	}
	if fs.Changed("description") {
		update.Description = &f.payload.Description
	}
	if fs.Changed("category") {
		update.Category = &f.payload.Category
	}
	if fs.Changed("level") {
		update.Level = &f.payload.Level
	}
	if fs.Changed("language") {
		update.Language = &f.payload.Language
	}
	if fs.Changed("tokens") {
		update.TokensPerSession = &f.payload.TokensPerSession
	}
	if fs.Changed("availability") {
		availability, err := parseAvailability(f.availability)
		if err != nil {
			return dto.SkillUpdate{}, err
		}
		update.Availability = availability
	}
	return update, nil
}

func printSkills(out *printer, skills []models.Skill) error {
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{itoa(s.ID), s.Title, s.Category, s.Level, strconv.Itoa(s.TokensPerSession), fmt.Sprintf("%.1f (%d)", s.Rating, s.ReviewCount)})
	}
	return out.table(skills, []string{"ID", "TITLE", "CATEGORY", "LEVEL", "TOKENS", "RATING"}, rows)
}

func newTeachCmd(c *cli) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		skills, err := c.app.teach.MySkills(cmd.Context())
		if err != nil {
			return err
		}
		return printSkills(c.out, skills)
	}
	teach := &cobra.Command{
		Use:   "teach",
		Short: "Manage the skills you teach",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	teach.AddCommand(
		&cobra.Command{Use: "list", Short: "List your skills", Args: cobra.NoArgs, RunE: list},
		newTeachCreateCmd(c),
		newTeachUpdateCmd(c),
		newTeachDeleteCmd(c),
	)
	return teach
}

func newTeachCreateCmd(c *cli) *cobra.Command {
	flags := &skillFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := flags.create()
			if err != nil {
				return err
			}
			skill, err := c.app.teach.Create(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printSkills(c.out, []models.Skill{*skill})
		},
	}
	flags.register(cmd.Flags(), true)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTeachUpdateCmd(c *cli) *cobra.Command {
	flags := &skillFlags{}
	cmd := &cobra.Command{
		Use:   "update <skill-id>",
		Short: "Change the given fields of one of your skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args, "skill id")
			if err != nil {
				return err
			}
			update, err := flags.update(cmd.Flags())
			if err != nil {
				return err
			}
			skill, err := c.app.teach.Update(cmd.Context(), id, update)
			if err != nil {
				return err
			}
			return printSkills(c.out, []models.Skill{*skill})
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func newTeachDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <skill-id>",
		Short: "Remove one of your skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args, "skill id")
			if err != nil {
				return err
			}
			if err := c.app.teach.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.out.fields(map[string]int64{"deleted": id}, [2]string{"Deleted", itoa(id)})
		},
	}
}

// profileUpdate builds the update from the profile flags that were given.
func profileUpdate(fs *pflag.FlagSet) (dto.ProfileUpdate, error) {
	var update dto.ProfileUpdate
	str := func(name string) (*string, error) {
		if !fs.Changed(name) {
			return nil, nil
		}
		v, err := fs.GetString(name)
		return &v, err
	}
	var err error
	if update.FullName, err = str("name"); err != nil {
		return update, err
	}
	if update.Bio, err = str("bio"); err != nil {
		return update, err
	}
	if update.AvatarURL, err = str("avatar"); err != nil {
		return update, err
	}
	for name, dst := range map[string]*[]string{"teach": &update.SkillsToTeach, "learn": &update.SkillsToLearn} {
		raw, err := str(name)
		if err != nil {
			return update, err
		}
		if raw != nil {
			*dst = service.ParseSkillList(*raw)
		}
	}
	return update, nil
}

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile, or update it with flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			update, err := profileUpdate(cmd.Flags())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var user *models.User
			if update.Empty() {
				user, err = c.app.profile.Me(ctx)
			} else {
				user, err = c.app.profile.Update(ctx, update)
			}
			if err != nil {
				return err
			}
			upcoming, err := c.app.profile.Upcoming(ctx)
			if err != nil {
				return err
			}
			return printProfile(c.out, user, upcoming)
		},
	}
	fs := cmd.Flags()
	fs.String("name", "", "full name")
	fs.String("bio", "", "bio")
	fs.String("avatar", "", "avatar URL")
	fs.String("teach", "", "comma separated skills to teach")
	fs.String("learn", "", "comma separated skills to learn")
	return cmd
}

func printProfile(out *printer, user *models.User, upcoming []models.Session) error {
	if out.json {
		return out.value(struct {
			User     *models.User     `json:"user"`
			Complete bool             `json:"complete"`
			Upcoming []models.Session `json:"upcoming"`
		}{user, service.ProfileComplete(*user), upcoming})
	}

	complete := "yes"
	if !service.ProfileComplete(*user) {
		complete = "no, add a bio or skills"
	}
	return out.fields(nil,
		[2]string{"Name", user.FullName},
		[2]string{"Email", user.Email},
		[2]string{"Bio", user.Bio},
		[2]string{"Teaches", strings.Join(user.SkillsToTeach, ", ")},
		[2]string{"Learns", strings.Join(user.SkillsToLearn, ", ")},
		[2]string{"Balance", strconv.Itoa(user.TokenBalance) + " tokens"},
		[2]string{"Upcoming sessions", strconv.Itoa(len(upcoming))},
		[2]string{"Profile complete", complete},
	)
}
