// Package tui is the interactive rebase-progress shell: a bubbletea model
// that drives the phase machine (internal/phasemachine) and the rebase
// state machine (internal/rebaseexec) against a real repository
// (internal/gitexec), persisting progress to internal/store and rendering
// the live tree with internal/stackrender.
//
// Ported from the teacher's internal/sequencer/sequencerui.RestackModel:
// same spinner-plus-tree View, same "finished sequence / conflict /
// running" branching in Update, generalized from the teacher's
// sequencer.Sequencer onto this repository's pure rebaseexec/phasemachine
// state machines.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/phasemachine"
	"github.com/aviator-co/stackcore/internal/projector"
	"github.com/aviator-co/stackcore/internal/rebaseexec"
	"github.com/aviator-co/stackcore/internal/stackrender"
	"github.com/aviator-co/stackcore/internal/store"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

// Options configures a RestackModel, mirroring the teacher's
// sequencerui.RestackStateOptions.
type Options struct {
	Command       string
	Continue      bool
	Abort         bool
	NowMs         func() int64
	GenerateJobID func() string
	OnDone        func() tea.Cmd
	OnAbort       func() tea.Cmd
}

// RestackModel drives one rebase session to completion, one job at a time.
type RestackModel struct {
	repo *gitexec.Repo
	db   *store.DB
	opts Options

	spinner       spinner.Model
	phase         phasemachine.State
	rebase        dagmodel.RebaseState
	nodesByBranch map[string]*dagmodel.StackNodeState
	initialBranch string
	abortedBranch string
	errHeadline   string
	err           error
}

// NewRestackModel builds a RestackModel from an already-persisted
// RebaseState (e.g. reattached after a process restart) and phase. nodes
// is the original rebase intent's target tree, used to discover and
// enqueue descendant branches once their parent job completes.
func NewRestackModel(
	repo *gitexec.Repo,
	db *store.DB,
	initialBranch string,
	phase phasemachine.State,
	rebase dagmodel.RebaseState,
	nodes []*dagmodel.StackNodeState,
	opts Options,
) *RestackModel {
	if opts.Command == "" {
		opts.Command = "stackcore restack"
	}
	if opts.GenerateJobID == nil {
		opts.GenerateJobID = func() string { return uuid.NewString() }
	}
	nodesByBranch := map[string]*dagmodel.StackNodeState{}
	flattenNodes(nodes, nodesByBranch)
	return &RestackModel{
		repo:          repo,
		db:            db,
		opts:          opts,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		phase:         phase,
		rebase:        rebase,
		nodesByBranch: nodesByBranch,
		initialBranch: initialBranch,
	}
}

func flattenNodes(nodes []*dagmodel.StackNodeState, out map[string]*dagmodel.StackNodeState) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out[n.Branch] = n
		flattenNodes(n.Children, out)
	}
}

type jobResultMsg struct {
	job    *dagmodel.RebaseJob
	result gitexec.RebaseResult
	err    error
}

type sequenceDoneMsg struct{}

func (m *RestackModel) Init() tea.Cmd {
	if m.opts.Abort {
		return tea.Batch(m.spinner.Tick, m.abortCmd)
	}
	if m.opts.Continue {
		return tea.Batch(m.spinner.Tick, m.continueCmd)
	}
	return tea.Batch(m.spinner.Tick, m.stepCmd)
}

// abortCmd runs `git rebase --abort` for the in-progress git rebase and
// records the active job's branch as aborted; the RebaseState's jobs are
// left as they are.
func (m *RestackModel) abortCmd() tea.Msg {
	if job, ok := m.rebase.ActiveJob(); ok {
		m.abortedBranch = job.Branch
	}
	if _, err := m.repo.Rebase(context.Background(), gitexec.RebaseOpts{Abort: true}); err != nil {
		return jobResultMsg{err: err}
	}
	return sequenceDoneMsg{}
}

// continueCmd resumes a `git rebase --continue` for the active job after
// the user has resolved its conflicts.
func (m *RestackModel) continueCmd() tea.Msg {
	job, ok := m.rebase.ActiveJob()
	if !ok {
		return sequenceDoneMsg{}
	}
	result, err := m.repo.Rebase(context.Background(), gitexec.RebaseOpts{Continue: true})
	return jobResultMsg{job: job, result: result, err: err}
}

// stepCmd promotes the next pending job to active (if none is active) and
// runs its rebase, persisting state to the store before and after.
func (m *RestackModel) stepCmd() tea.Msg {
	now := m.opts.NowMs()

	if _, active := m.rebase.ActiveJob(); !active {
		next, ok := rebaseexec.NextJob(m.rebase, now)
		if !ok {
			return sequenceDoneMsg{}
		}
		m.rebase = next
		m.persist()
	}

	job, _ := m.rebase.ActiveJob()
	ctx := context.Background()
	if err := m.repo.CheckoutBranch(ctx, job.Branch, false, ""); err != nil {
		return jobResultMsg{job: job, err: err}
	}
	result, err := m.repo.Rebase(ctx, gitexec.RebaseOpts{
		Upstream: job.OriginalBaseSha,
		Onto:     job.TargetBaseSha,
		Branch:   job.Branch,
	})
	return jobResultMsg{job: job, result: result, err: err}
}

func (m *RestackModel) persist() {
	wt := m.db.WriteTx()
	wt.SetState(&m.rebase)
	_ = wt.Commit()
}

func (m *RestackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobResultMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, uiutils.ErrCmd(msg.err)
		}
		if msg.result.Conflict {
			wtStatus, _ := m.repo.Status(context.Background())
			job := rebaseexec.RecordConflict(msg.job, wtStatus, m.opts.NowMs(), nil)
			m.rebase.JobsByID[job.ID] = job
			m.persist()
			next, err := phasemachine.Transition(m.phase, phasemachine.EventConflictDetected, m.opts.NowMs(), nil, nil)
			if err == nil {
				m.phase = next
			}
			m.errHeadline = "Conflict while rebasing " + job.Branch
			return m, nil
		}

		head, _ := m.repo.Git(context.Background(), "rev-parse", "HEAD")
		head = strings.TrimSpace(head)
		result := rebaseexec.CompleteJob(msg.job, head, m.opts.NowMs(), nil)
		m.rebase.JobsByID[result.Job.ID] = result.Job
		m.rebase.Queue.ActiveJobID = ""
		if node := m.nodesByBranch[result.Job.Branch]; node != nil {
			m.rebase = rebaseexec.EnqueueDescendants(m.rebase, node, head, m.opts.NowMs(), m.opts.GenerateJobID)
		}
		m.persist()
		return m, m.stepCmd

	case sequenceDoneMsg:
		if m.initialBranch != "" {
			_ = m.repo.CheckoutBranch(context.Background(), m.initialBranch, false, "")
		}
		next, err := phasemachine.Transition(m.phase, phasemachine.EventAllJobsComplete, m.opts.NowMs(), nil, nil)
		if err == nil {
			m.phase = next
		}
		if m.abortedBranch != "" && m.opts.OnAbort != nil {
			return m, m.opts.OnAbort()
		}
		if m.opts.OnDone != nil {
			return m, m.opts.OnDone()
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case error:
		m.err = msg
		return m, tea.Quit
	}
	return m, nil
}

func (m *RestackModel) View() string {
	sb := strings.Builder{}

	switch m.phase.Phase {
	case phasemachine.PhaseExecuting:
		if job, ok := m.rebase.ActiveJob(); ok {
			sb.WriteString(uiutils.CliCmd(m.spinner.View() + "Restacking " + job.Branch + "..."))
		}
	case phasemachine.PhaseConflicted:
		sb.WriteString(uiutils.Failure("✗ Restack paused on conflict"))
	case phasemachine.PhaseCompleted:
		sb.WriteString(uiutils.Success("✓ Restack is done"))
	}

	snap, err := m.repo.Snapshot(context.Background(), gitexec.SnapshotOpts{})
	if err == nil {
		stacks := projector.Project(&snap, nil)
		if len(stacks) > 0 {
			sb.WriteString("\n\n")
			sb.WriteString(stackrender.Render(stacks, m.jobAwareLabel))
			sb.WriteString("\n")
		}
	}

	if m.errHeadline != "" {
		sb.WriteString("\n")
		sb.WriteString(uiutils.Failure(m.errHeadline) + "\n")
		sb.WriteString("Resolve the conflicts and continue with " + uiutils.CliCmd(m.opts.Command+" --continue"))
	}
	return sb.String()
}

// ExitError reports the error (if any) that halted the session, for
// uiutils.RunBubbleTea to propagate once the program quits.
func (m *RestackModel) ExitError() error { return m.err }

// jobAwareLabel wraps stackrender.DefaultLabel, annotating the branch
// currently being rebased with the spinner and completed branches with a
// checkmark.
func (m *RestackModel) jobAwareLabel(commit *dagmodel.UiCommit) string {
	base := stackrender.DefaultLabel(commit)
	for _, b := range commit.Branches {
		for _, job := range m.rebase.JobsByID {
			if job.Branch != b.Name {
				continue
			}
			switch job.Status {
			case dagmodel.JobApplying:
				return base + "  " + uiutils.CliCmd(m.spinner.View()+"restacking")
			case dagmodel.JobAwaitingUser:
				return base + "  " + uiutils.Failure("conflict")
			case dagmodel.JobCompleted:
				return base + "  " + uiutils.Success("✓")
			}
		}
	}
	return base
}
