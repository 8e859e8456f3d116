package kodgen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen"
)

func TestSetupError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := kodgen.NewSetupError("OutputDir", "not a directory", nil)
		assert.Equal(t, `kodgen: setup error for "OutputDir": not a directory`, err.Error())
	})

	t.Run("Cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := kodgen.NewSetupError("OutputDir", "cannot create", cause)
		assert.Contains(t, err.Error(), "permission denied")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("IsSetupError", func(t *testing.T) {
		err := kodgen.NewSetupError("Extension", "empty", nil)
		assert.True(t, errors.Is(err, kodgen.ErrSetup))
		assert.True(t, kodgen.IsSetupError(fmt.Errorf("wrapped: %w", err)))
		assert.True(t, kodgen.IsSetupError(kodgen.ErrSetup))
		assert.False(t, kodgen.IsSetupError(errors.New("other")))
		assert.False(t, kodgen.IsSetupError(nil))
	})
}

func TestParseError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := kodgen.NewParseError("a.h", 12, "unbalanced braces", nil)
		assert.Equal(t, "kodgen: parse error in a.h:12: unbalanced braces", err.Error())
	})

	t.Run("NoLine", func(t *testing.T) {
		err := kodgen.NewParseError("a.h", 0, "unreadable", nil)
		assert.Equal(t, "kodgen: parse error in a.h: unreadable", err.Error())
	})

	t.Run("IsParseError", func(t *testing.T) {
		err := kodgen.NewParseError("a.h", 1, "bad", nil)
		assert.True(t, errors.Is(err, kodgen.ErrParse))
		assert.True(t, kodgen.IsParseError(fmt.Errorf("wrapped: %w", err)))
		assert.False(t, kodgen.IsParseError(kodgen.ErrSetup))
		assert.False(t, kodgen.IsParseError(nil))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		cause := errors.New("boom")
		err := kodgen.NewGenerationError("getters", "game::Player", "generator failed", cause)
		err.File = "player.h"
		assert.Equal(t, "kodgen: generation error in module getters for game::Player (player.h): generator failed: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("IsGenerationError", func(t *testing.T) {
		err := kodgen.NewGenerationError("", "", "failed", nil)
		assert.True(t, errors.Is(err, kodgen.ErrGeneration))
		assert.True(t, kodgen.IsGenerationError(fmt.Errorf("wrapped: %w", err)))
		assert.False(t, kodgen.IsGenerationError(nil))
	})
}

func TestInternalError(t *testing.T) {
	err := kodgen.NewInternalError("unknown location %d", 7)
	assert.Equal(t, "kodgen: internal error: unknown location 7", err.Error())
	assert.True(t, errors.Is(err, kodgen.ErrInternal))
	assert.True(t, kodgen.IsInternalError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, kodgen.IsInternalError(kodgen.ErrParse))
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		kodgen.ErrSetup,
		kodgen.ErrParse,
		kodgen.ErrPropertyValidation,
		kodgen.ErrGeneration,
		kodgen.ErrInternal,
		kodgen.ErrInvalidNesting,
		kodgen.ErrDuplicateRule,
		kodgen.ErrPropertySyntax,
	}
	for i, a := range sentinels {
		require.NotEmpty(t, a.Error())
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
