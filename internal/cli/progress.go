package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
)

var pollInterval = 2 * time.Second

var jobsWatchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Watch a job until it finishes",
	Long: `Poll a job and render its progress through the lifecycle until it
reaches FINISHED or ERROR. Press q or Ctrl+C to stop watching; the job
is not affected.`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsWatch,
}

func init() {
	jobsWatchCmd.Flags().DurationVar(&pollInterval, "interval", pollInterval, "poll interval")
}

// Theme holds the color scheme for job output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// renderStatus colors a status by outcome.
func (t Theme) renderStatus(s models.JobStatus) string {
	switch s {
	case models.StatusFinished:
		return t.completedStyle().Render(s.String())
	case models.StatusError:
		return t.errorStyle().Render(s.String())
	default:
		return t.statusStyle().Render(s.String())
	}
}

// statusProgress maps a status to its share of the lifecycle.
func statusProgress(s models.JobStatus) float64 {
	switch {
	case s == models.StatusError:
		return 1
	case !s.Valid():
		return 0
	default:
		return float64(s) / float64(models.StatusFinished)
	}
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job *models.Job
	err error
}

// progressModel is the bubbletea model for job progress.
type progressModel struct {
	jobs     store.JobStore
	jobID    string
	user     string
	admin    bool
	job      *models.Job
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(jobs store.JobStore, job *models.Job, user string, admin bool) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		jobs:     jobs,
		jobID:    job.ID,
		user:     user,
		admin:    admin,
		job:      job,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job

		switch m.job.Status {
		case models.StatusFinished:
			m.done = true
			return m, tea.Quit
		case models.StatusError:
			m.done = true
			if m.job.Err != "" {
				m.err = fmt.Errorf("%s", m.job.Err)
			} else {
				m.err = fmt.Errorf("job failed with unknown error")
			}
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(statusProgress(m.job.Status))
	info := m.job.Info
	hint := m.theme.hintStyle().Render("Press q to stop watching")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, info, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nStopped watching %s.\nUse 'impression jobs show %s' to check status.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	output := m.theme.completedStyle().Render("✓ Finished") + "\n\n"
	if m.job != nil {
		if d := m.job.Duration(); d > 0 {
			output += fmt.Sprintf("  Duration:   %s\n", d)
		}
		if m.job.OutputName != "" {
			output += fmt.Sprintf("  Output:     %s\n", m.job.OutputName)
		}
		if m.job.OutputFileURL != "" {
			output += fmt.Sprintf("  Output URL: %s\n", m.job.OutputFileURL)
		}
	}
	return output
}

// fetchJob loads the current job state.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m progressModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.jobs.LoadByID(ctx, m.jobID, m.user, m.admin)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func runJobsWatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	user, err := currentUser()
	if err != nil {
		return err
	}
	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	return runJobProgress(ctx, cmd, jobs, args[0], user, jobsAdmin)
}

// runJobProgress runs the interactive progress UI for a job.
// Returns nil on success or when the user stops watching, error on job failure.
func runJobProgress(ctx context.Context, cmd *cobra.Command, jobs store.JobStore, id, user string, admin bool) error {
	job, err := loadJob(ctx, jobs, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		printJob(cmd.OutOrStdout(), job)
		return nil
	}

	model := newProgressModel(jobs, job, user, admin)
	p := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()))

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
