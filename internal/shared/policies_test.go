package shared_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/shared"
)

func TestConfirmationPolicyFromBool(testInstance *testing.T) {
	testCases := []struct {
		name           string
		assumeYes      bool
		expectedPolicy shared.ConfirmationPolicy
	}{
		{name: "prompt_when_not_assumed", assumeYes: false, expectedPolicy: shared.ConfirmationPrompt},
		{name: "assume_yes_skips_prompt", assumeYes: true, expectedPolicy: shared.ConfirmationAssumeYes},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			policy := shared.ConfirmationPolicyFromBool(testCase.assumeYes)
			require.Equal(testInstance, testCase.expectedPolicy, policy)
			require.Equal(testInstance, !testCase.assumeYes, policy.ShouldPrompt())
			require.Equal(testInstance, testCase.assumeYes, policy.ShouldAssumeYes())
		})
	}
}
