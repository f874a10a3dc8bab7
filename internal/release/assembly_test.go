package release_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/gitrepo"
	"github.com/temirov/relpick/internal/release"
	"github.com/temirov/relpick/internal/shared"
)

var assemblyClockInstant = time.Date(2026, time.August, 25, 14, 30, 45, 0, time.UTC)

func newSessionForTesting(testInstance *testing.T, gitOperations *fakeGitOperations) *release.Session {
	session, sessionError := release.OpenSession(context.Background(), release.SessionDependencies{
		Logger:   zap.NewNop(),
		Git:      gitOperations,
		Prompter: &scriptedConfirmationPrompter{},
		Clock:    fixedClock{instant: assemblyClockInstant},
	}, testRepositoryPathConstant, shared.ConfirmationAssumeYes)
	require.NoError(testInstance, sessionError)
	return session
}

func newAssemblyServiceForTesting(testInstance *testing.T, gitOperations *fakeGitOperations, prompter shared.ConfirmationPrompter) *release.AssemblyService {
	assemblyService, creationError := release.NewAssemblyService(release.AssemblyDependencies{
		Logger:   zap.NewNop(),
		Git:      gitOperations,
		Prompter: prompter,
		Clock:    fixedClock{instant: assemblyClockInstant},
	})
	require.NoError(testInstance, creationError)
	return assemblyService
}

func TestAssembleCreatesTimestampedBranchAndAppliesItemsInOrder(testInstance *testing.T) {
	gitOperations := &fakeGitOperations{}
	assemblyService := newAssemblyServiceForTesting(testInstance, gitOperations, &scriptedConfirmationPrompter{})
	session := newSessionForTesting(testInstance, gitOperations)

	items := []release.SelectionItem{
		{Identifier: "1577", CommitHash: "a1a1a1a1a1a1a1a1", Subject: "Add widget pipeline", PullRequestNumber: 1577, IsPullRequest: true, FirstParent: true},
		{Identifier: "b2b2b2b", CommitHash: "b2b2b2b2b2b2b2b2", Subject: "Standalone fix"},
	}
	assemblyResult, assembleError := assemblyService.Assemble(context.Background(), session, release.AssemblyOptions{
		RepositoryPath:     testRepositoryPathConstant,
		StableBranch:       testStableBranchConstant,
		Items:              items,
		ConfirmationPolicy: shared.ConfirmationAssumeYes,
	})
	require.NoError(testInstance, assembleError)

	require.Equal(testInstance, "release/handpicked-20260825143045", assemblyResult.BranchName)
	require.Equal(testInstance, []string{"release/handpicked-20260825143045"}, gitOperations.createdBranches)
	require.Equal(testInstance, []gitrepo.CherryPickOptions{
		{CommitHash: "a1a1a1a1a1a1a1a1", FirstParent: true},
		{CommitHash: "b2b2b2b2b2b2b2b2"},
	}, gitOperations.cherryPicks)
	require.True(testInstance, assemblyResult.Completed())
	require.Len(testInstance, assemblyResult.Applied, 2)
}

func TestAssembleRequiresItems(testInstance *testing.T) {
	gitOperations := &fakeGitOperations{}
	assemblyService := newAssemblyServiceForTesting(testInstance, gitOperations, &scriptedConfirmationPrompter{})
	session := newSessionForTesting(testInstance, gitOperations)

	_, assembleError := assemblyService.Assemble(context.Background(), session, release.AssemblyOptions{
		RepositoryPath: testRepositoryPathConstant,
		StableBranch:   testStableBranchConstant,
	})
	require.ErrorIs(testInstance, assembleError, release.ErrAssemblyNoItems)
}

func TestAssembleAbortsOnConflictWhenDeclined(testInstance *testing.T) {
	gitOperations := &fakeGitOperations{
		cherryPickFunc: func(_ string, options gitrepo.CherryPickOptions) error {
			if options.CommitHash == "b2b2b2b2b2b2b2b2" {
				return errors.New("could not apply b2b2b2b")
			}
			return nil
		},
	}
	prompter := &scriptedConfirmationPrompter{answers: []bool{false}}
	assemblyService := newAssemblyServiceForTesting(testInstance, gitOperations, prompter)
	session := newSessionForTesting(testInstance, gitOperations)

	items := []release.SelectionItem{
		{Identifier: "a1a1a1a", CommitHash: "a1a1a1a1a1a1a1a1", Subject: "Applies cleanly"},
		{Identifier: "b2b2b2b", CommitHash: "b2b2b2b2b2b2b2b2", Subject: "Conflicts"},
		{Identifier: "c3c3c3c", CommitHash: "c3c3c3c3c3c3c3c3", Subject: "Never attempted"},
	}
	assemblyResult, assembleError := assemblyService.Assemble(context.Background(), session, release.AssemblyOptions{
		RepositoryPath:     testRepositoryPathConstant,
		StableBranch:       testStableBranchConstant,
		Items:              items,
		ConfirmationPolicy: shared.ConfirmationPrompt,
	})

	require.ErrorIs(testInstance, assembleError, release.ErrAssemblyAborted)
	require.Equal(testInstance, 1, gitOperations.abortedCherryPicks)
	require.Len(testInstance, assemblyResult.Applied, 1)
	require.Len(testInstance, gitOperations.cherryPicks, 2)
}

func TestAssembleKeepsConflictForManualFixup(testInstance *testing.T) {
	gitOperations := &fakeGitOperations{
		cherryPickFunc: func(_ string, options gitrepo.CherryPickOptions) error {
			if options.CommitHash == "b2b2b2b2b2b2b2b2" {
				return errors.New("could not apply b2b2b2b")
			}
			return nil
		},
	}
	prompter := &scriptedConfirmationPrompter{answers: []bool{true}}
	assemblyService := newAssemblyServiceForTesting(testInstance, gitOperations, prompter)
	session := newSessionForTesting(testInstance, gitOperations)

	items := []release.SelectionItem{
		{Identifier: "a1a1a1a", CommitHash: "a1a1a1a1a1a1a1a1", Subject: "Applies cleanly"},
		{Identifier: "b2b2b2b", CommitHash: "b2b2b2b2b2b2b2b2", Subject: "Conflicts"},
		{Identifier: "c3c3c3c", CommitHash: "c3c3c3c3c3c3c3c3", Subject: "Never attempted"},
	}
	assemblyResult, assembleError := assemblyService.Assemble(context.Background(), session, release.AssemblyOptions{
		RepositoryPath:     testRepositoryPathConstant,
		StableBranch:       testStableBranchConstant,
		Items:              items,
		ConfirmationPolicy: shared.ConfirmationPrompt,
	})

	require.NoError(testInstance, assembleError)
	require.False(testInstance, assemblyResult.Completed())
	require.Equal(testInstance, "b2b2b2b2b2b2b2b2", assemblyResult.ConflictItem.CommitHash)
	require.Len(testInstance, assemblyResult.Remaining, 1)
	require.Equal(testInstance, "c3c3c3c3c3c3c3c3", assemblyResult.Remaining[0].CommitHash)
	require.Zero(testInstance, gitOperations.abortedCherryPicks)
}

func TestAssembleAbortsWithoutPromptUnderAssumeYes(testInstance *testing.T) {
	gitOperations := &fakeGitOperations{
		cherryPickFunc: func(_ string, options gitrepo.CherryPickOptions) error {
			return errors.New("could not apply change")
		},
	}
	prompter := &scriptedConfirmationPrompter{}
	assemblyService := newAssemblyServiceForTesting(testInstance, gitOperations, prompter)
	session := newSessionForTesting(testInstance, gitOperations)

	_, assembleError := assemblyService.Assemble(context.Background(), session, release.AssemblyOptions{
		RepositoryPath:     testRepositoryPathConstant,
		StableBranch:       testStableBranchConstant,
		Items:              []release.SelectionItem{{Identifier: "a1a1a1a", CommitHash: "a1a1a1a1a1a1a1a1"}},
		ConfirmationPolicy: shared.ConfirmationAssumeYes,
	})

	require.ErrorIs(testInstance, assembleError, release.ErrAssemblyAborted)
	require.Empty(testInstance, prompter.messages)
	require.Equal(testInstance, 1, gitOperations.abortedCherryPicks)
}
