package release

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/gitrepo"
	"github.com/temirov/relpick/internal/shared"
)

const (
	releaseBranchTemplateConstant        = "release/handpicked-%s"
	releaseBranchTimestampLayoutConstant = "20060102150405"
	conflictPromptTemplateConstant       = "Cherry-pick of %s hit a conflict. Keep the conflict in the worktree for manual fixup (answering no rolls the release back)?"
	assemblyPickedMessageConstant        = "Cherry-picked change"
	assemblyConflictMessageConstant      = "Cherry-pick conflict"
)

var (
	// ErrAssemblyLoggerNotConfigured indicates the assembly service requires a logger.
	ErrAssemblyLoggerNotConfigured = errors.New("assembly logger not configured")
	// ErrAssemblyGitNotConfigured indicates the assembly service requires git operations.
	ErrAssemblyGitNotConfigured = errors.New("assembly git operations not configured")
	// ErrAssemblyPrompterNotConfigured indicates the assembly service requires a confirmation prompter.
	ErrAssemblyPrompterNotConfigured = errors.New("assembly confirmation prompter not configured")
	// ErrAssemblyNoItems indicates the assembly received nothing to apply.
	ErrAssemblyNoItems = errors.New("no validated items to apply")
	// ErrAssemblyAborted indicates the operator rolled the release back after a conflict.
	ErrAssemblyAborted = errors.New("release assembly aborted")
)

// AssemblyDependencies aggregates collaborators required by the assembly service.
type AssemblyDependencies struct {
	Logger   *zap.Logger
	Git      GitOperations
	Prompter shared.ConfirmationPrompter
	Clock    shared.Clock
}

// AssemblyOptions describes one assembly run.
type AssemblyOptions struct {
	RepositoryPath     string
	StableBranch       string
	Items              []SelectionItem
	ConfirmationPolicy shared.ConfirmationPolicy
}

// AssemblyResult reports what the assembly run produced.
//
// ConflictItem is non-nil when a cherry-pick conflicted and the operator chose
// to keep the conflict for manual fixup. Remaining holds the items that were
// never attempted in that case.
type AssemblyResult struct {
	BranchName   string
	Applied      []SelectionItem
	ConflictItem *SelectionItem
	Remaining    []SelectionItem
}

// Completed reports whether every item was applied cleanly.
func (result AssemblyResult) Completed() bool {
	return result.ConflictItem == nil
}

// AssemblyService builds a release branch by cherry-picking validated items onto the stable branch.
type AssemblyService struct {
	logger   *zap.Logger
	git      GitOperations
	prompter shared.ConfirmationPrompter
	clock    shared.Clock
}

// NewAssemblyService validates dependencies and constructs an AssemblyService.
func NewAssemblyService(dependencies AssemblyDependencies) (*AssemblyService, error) {
	if dependencies.Logger == nil {
		return nil, ErrAssemblyLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrAssemblyGitNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrAssemblyPrompterNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &AssemblyService{
		logger:   dependencies.Logger,
		git:      dependencies.Git,
		prompter: dependencies.Prompter,
		clock:    clock,
	}, nil
}

// Assemble creates a timestamped release branch off the stable branch and applies the items in order.
//
// On a cherry-pick conflict the operator decides: rolling back aborts the
// in-flight pick and returns ErrAssemblyAborted, while keeping the conflict
// stops the run with the conflicted and unattempted items reported so the
// operator can finish by hand. Picks are never resolved automatically.
func (service *AssemblyService) Assemble(executionContext context.Context, session *Session, options AssemblyOptions) (AssemblyResult, error) {
	if len(options.Items) == 0 {
		return AssemblyResult{}, ErrAssemblyNoItems
	}

	branchName := fmt.Sprintf(releaseBranchTemplateConstant, service.clock.Now().UTC().Format(releaseBranchTimestampLayoutConstant))
	if branchError := service.git.CreateBranch(executionContext, options.RepositoryPath, branchName, options.StableBranch); branchError != nil {
		return AssemblyResult{}, branchError
	}
	session.RegisterReleaseBranch(branchName)

	assemblyResult := AssemblyResult{BranchName: branchName}
	for itemIndex, selectionItem := range options.Items {
		pickError := service.git.CherryPick(executionContext, options.RepositoryPath, gitrepo.CherryPickOptions{
			CommitHash:  selectionItem.CommitHash,
			FirstParent: selectionItem.FirstParent,
		})
		if pickError == nil {
			service.logger.Info(assemblyPickedMessageConstant, zap.String("change", selectionItem.DisplayLabel()))
			assemblyResult.Applied = append(assemblyResult.Applied, selectionItem)
			continue
		}

		service.logger.Warn(assemblyConflictMessageConstant, zap.String("change", selectionItem.DisplayLabel()), zap.Error(pickError))
		keepConflict := false
		if options.ConfirmationPolicy.ShouldPrompt() {
			confirmation, promptError := service.prompter.Confirm(fmt.Sprintf(conflictPromptTemplateConstant, selectionItem.DisplayLabel()))
			if promptError == nil {
				keepConflict = confirmation.Confirmed
			}
		}
		if !keepConflict {
			if abortError := service.git.AbortCherryPick(executionContext, options.RepositoryPath); abortError != nil {
				service.logger.Warn(assemblyConflictMessageConstant, zap.Error(abortError))
			}
			return assemblyResult, ErrAssemblyAborted
		}

		conflictedItem := selectionItem
		assemblyResult.ConflictItem = &conflictedItem
		assemblyResult.Remaining = append([]SelectionItem(nil), options.Items[itemIndex+1:]...)
		return assemblyResult, nil
	}

	return assemblyResult, nil
}
