package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub/pkg/client"
)

func projectsCommand(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			projects, err := c.ListProjects(cmd.Context())
			if err != nil {
				return explain(err)
			}
			return printProjects(cmd.OutOrStdout(), projects)
		},
	}
	cmd.AddCommand(projectCreateCommand(opts))
	return cmd
}

func projectCreateCommand(opts *clientOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a project owned by you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			p, err := c.CreateProject(cmd.Context(), client.NewProject{Title: args[0], Description: description})
			if err != nil {
				return explain(err)
			}
			return printProjects(cmd.OutOrStdout(), []client.Project{*p})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func tasksCommand(opts *clientOptions) *cobra.Command {
	var q client.TaskQuery
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			tasks, err := c.ListTasks(cmd.Context(), q)
			if err != nil {
				return explain(err)
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&q.ProjectID, "project", 0, "only tasks in this project")
	f.StringVar(&q.Status, "status", "", "pending, in-progress or completed")
	f.Int64Var(&q.AssignedUserID, "assignee", 0, "only tasks assigned to this user id")
	f.Int64Var(&q.TagID, "tag", 0, "only tasks carrying this tag id")
	f.StringVarP(&q.Search, "query", "q", "", "search titles and descriptions")
	f.BoolVar(&q.Mine, "mine", false, "only tasks you own or are assigned to")

	cmd.AddCommand(taskCreateCommand(opts), taskStatusCommand(opts))
	return cmd
}

func taskCreateCommand(opts *clientOptions) *cobra.Command {
	var (
		in       client.NewTask
		assignee int64
	)
	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a task in one of your projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			in.Title = args[0]
			if assignee > 0 {
				in.AssignedUserID = &assignee
			}
			t, err := c.CreateTask(cmd.Context(), in)
			if err != nil {
				return explain(err)
			}
			return printTasks(cmd.OutOrStdout(), []client.Task{*t})
		},
	}
	f := cmd.Flags()
	f.Int64Var(&in.ProjectID, "project", 0, "project id")
	f.StringVarP(&in.Description, "description", "d", "", "task description")
	f.StringVar(&in.Status, "status", "", "initial status (default pending)")
	f.Int64Var(&assignee, "assignee", 0, "user id to assign")
	f.Int64SliceVar(&in.TagIDs, "tag", nil, "tag ids")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func taskStatusCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "status ID STATUS",
		Short:     "Move a task to another status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{client.StatusPending, client.StatusInProgress, client.StatusCompleted},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			t, err := c.UpdateTaskStatus(cmd.Context(), id, args[1])
			if err != nil {
				return explain(err)
			}
			return printTasks(cmd.OutOrStdout(), []client.Task{*t})
		},
	}
}

func printProjects(out io.Writer, projects []client.Project) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tOWNER\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Title, p.OwnerID, p.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func printTasks(out io.Writer, tasks []client.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tSTATUS\tASSIGNEE\tTITLE\tTAGS")
	for _, t := range tasks {
		assignee := "-"
		if t.AssignedUserID != nil {
			assignee = strconv.FormatInt(*t.AssignedUserID, 10)
		}
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n", t.ID, t.ProjectID, t.Status, assignee, t.Title, strings.Join(names, ","))
	}
	return w.Flush()
}
