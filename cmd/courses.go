package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"yowa/access"
	"yowa/client"
	"yowa/coursesync"
	"yowa/models"
	"yowa/tui"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses you can edit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.authorize(access.RoleIn(models.RoleInstructor, models.RoleAdmin)); err != nil {
			return err
		}

		var list []models.Course
		if a.store.Current().Identity.Role == models.RoleAdmin {
			list, err = a.api.ListAllCourses(cmd.Context())
		} else {
			list, err = a.api.ListMyCourses(cmd.Context())
		}
		if err != nil {
			return a.forceSignOutOnAuthError(err)
		}

		if len(list) == 0 {
			fmt.Println("No courses yet.")
			return nil
		}
		for _, c := range list {
			state := "draft"
			if c.IsPublished {
				state = "published"
			}
			fmt.Printf("%s  %-40s %s  %d sections\n", c.ID, c.Title, state, len(c.Sections))
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <course-id>",
	Short: "Open the interactive content editor for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.authorize(access.RoleIn(models.RoleInstructor, models.RoleAdmin)); err != nil {
			return err
		}

		// The editor screen runs its own confirmation prompt, so the engine's
		// hook stays unset here.
		engine := coursesync.New(a.api, nil, a.log)
		if _, err := engine.LoadCourse(cmd.Context(), args[0]); err != nil {
			if client.IsNotFound(err) {
				return fmt.Errorf("course %s was not found", args[0])
			}
			return a.forceSignOutOnAuthError(err)
		}

		program := tea.NewProgram(tui.New(engine))
		_, err = program.Run()
		return err
	},
}
