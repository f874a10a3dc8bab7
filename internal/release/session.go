package release

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/shared"
)

const (
	stashLabelTemplateConstant            = "relpick set-aside %s"
	setAsidePromptTemplateConstant        = "The worktree at %s has uncommitted changes. Set them aside and restore them afterwards?"
	sessionRestoreBranchFailureConstant   = "Failed to return to the original branch"
	sessionDeleteBranchFailureConstant    = "Failed to delete the partially assembled branch"
	sessionStashRestoreFailureConstant    = "Failed to restore set-aside changes; recover them with git stash pop"
	sessionStashRestoredMessageConstant   = "Restored set-aside changes"
	sessionChangesSetAsideMessageConstant = "Set aside uncommitted changes"
)

var (
	// ErrSessionLoggerNotConfigured indicates the session requires a logger.
	ErrSessionLoggerNotConfigured = errors.New("session logger not configured")
	// ErrSessionGitNotConfigured indicates the session requires git operations.
	ErrSessionGitNotConfigured = errors.New("session git operations not configured")
	// ErrSessionPrompterNotConfigured indicates the session requires a confirmation prompter.
	ErrSessionPrompterNotConfigured = errors.New("session confirmation prompter not configured")
	// ErrWorktreeNotSetAside indicates the operator declined to set aside uncommitted changes.
	ErrWorktreeNotSetAside = errors.New("uncommitted changes were not set aside")
)

// SessionDependencies aggregates collaborators required to open a release session.
type SessionDependencies struct {
	Logger   *zap.Logger
	Git      GitOperations
	Prompter shared.ConfirmationPrompter
	Clock    shared.Clock
}

// Session tracks repository state that must be restored when a release run ends.
//
// It remembers the branch that was checked out before the run, whether
// uncommitted changes were stashed, and which release branch the run created.
type Session struct {
	logger         *zap.Logger
	git            GitOperations
	repositoryPath string
	originalBranch string
	stashApplied   bool
	releaseBranch  string
	branchPushed   bool
}

// OpenSession captures the current branch and sets aside uncommitted changes.
//
// A dirty worktree requires either an affirmative prompt answer or an
// assume-yes policy; otherwise the session fails with ErrWorktreeNotSetAside.
func OpenSession(executionContext context.Context, dependencies SessionDependencies, repositoryPath string, policy shared.ConfirmationPolicy) (*Session, error) {
	if dependencies.Logger == nil {
		return nil, ErrSessionLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrSessionGitNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrSessionPrompterNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	originalBranch, branchError := dependencies.Git.GetCurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return nil, branchError
	}

	session := &Session{
		logger:         dependencies.Logger,
		git:            dependencies.Git,
		repositoryPath: repositoryPath,
		originalBranch: originalBranch,
	}

	worktreeClean, cleanError := dependencies.Git.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError != nil {
		return nil, cleanError
	}
	if worktreeClean {
		return session, nil
	}

	if policy.ShouldPrompt() {
		confirmation, promptError := dependencies.Prompter.Confirm(fmt.Sprintf(setAsidePromptTemplateConstant, repositoryPath))
		if promptError != nil {
			return nil, promptError
		}
		if !confirmation.Confirmed {
			return nil, ErrWorktreeNotSetAside
		}
	}

	stashLabel := fmt.Sprintf(stashLabelTemplateConstant, clock.Now().UTC().Format("2006-01-02T15:04:05Z"))
	if stashError := dependencies.Git.StashPush(executionContext, repositoryPath, stashLabel); stashError != nil {
		return nil, stashError
	}
	session.stashApplied = true
	dependencies.Logger.Info(sessionChangesSetAsideMessageConstant, zap.String("label", stashLabel))
	return session, nil
}

// OriginalBranch returns the branch checked out when the session opened.
func (session *Session) OriginalBranch() string {
	return session.originalBranch
}

// RegisterReleaseBranch records a branch the run created so teardown can remove it on failure.
func (session *Session) RegisterReleaseBranch(branchName string) {
	session.releaseBranch = branchName
}

// MarkBranchPushed keeps the release branch alive through teardown.
func (session *Session) MarkBranchPushed() {
	session.branchPushed = true
}

// Close restores the original branch and any set-aside changes.
//
// A release branch that was never pushed is deleted. Restore failures are
// logged rather than returned so one failed step never hides the others.
func (session *Session) Close(executionContext context.Context) {
	if len(session.originalBranch) > 0 {
		if checkoutError := session.git.CheckoutBranch(executionContext, session.repositoryPath, session.originalBranch); checkoutError != nil {
			session.logger.Warn(sessionRestoreBranchFailureConstant, zap.String("branch", session.originalBranch), zap.Error(checkoutError))
		}
	}
	if len(session.releaseBranch) > 0 && !session.branchPushed {
		if deleteError := session.git.DeleteBranch(executionContext, session.repositoryPath, session.releaseBranch); deleteError != nil {
			session.logger.Warn(sessionDeleteBranchFailureConstant, zap.String("branch", session.releaseBranch), zap.Error(deleteError))
		}
	}
	if session.stashApplied {
		if popError := session.git.StashPop(executionContext, session.repositoryPath); popError != nil {
			session.logger.Warn(sessionStashRestoreFailureConstant, zap.Error(popError))
			return
		}
		session.stashApplied = false
		session.logger.Info(sessionStashRestoredMessageConstant)
	}
}
