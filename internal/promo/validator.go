package promo

import (
	"context"
	"fmt"
	"sync"

	"shop-kart/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator over a merged in-memory code set.
// The set is read-only after initialization, so no locking is needed.
type validator struct {
	codes  Set
	logger zerolog.Logger
}

// ValidatorConfig holds configuration for the promo code validator.
type ValidatorConfig struct {
	// FilePaths is the list of promo code files to load and merge.
	FilePaths []string
}

// NewValidator creates a new promo code validator. All code files are
// loaded concurrently at initialization time and merged into one set.
func NewValidator(ctx context.Context, cfg *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	logger = logger.With().Str("component", "promo-validator").Logger()

	logger.Info().
		Int("file_count", len(cfg.FilePaths)).
		Msg("initialising promo code validator")

	type loadResult struct {
		set Set
		err error
	}

	results := make([]loadResult, len(cfg.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range cfg.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			set, err := loader.Load(ctx, path)
			results[index] = loadResult{set: set, err: err}
		}(i, filePath)
	}

	wg.Wait()

	merged := NewMapSet(1024).(*mapSet)
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", cfg.FilePaths[i]).
				Msg("failed to load promo code file")
			return nil, fmt.Errorf("failed to load promo code file %s: %w", cfg.FilePaths[i], result.err)
		}
		for code := range result.set.(*mapSet).codes {
			merged.Add(code)
		}
		logger.Info().
			Str("file", cfg.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("promo code file loaded")
	}

	logger.Info().
		Int("total_codes", merged.Size()).
		Msg("promo code validator initialised successfully")

	return &validator{codes: merged, logger: logger}, nil
}

// Validate checks if a promo code is valid.
func (v *validator) Validate(ctx context.Context, code string) error {
	// Validate length first (cheap check)
	if len(code) < 8 || len(code) > 10 {
		v.logger.Debug().
			Str("promo_code", code).
			Int("length", len(code)).
			Msg("promo code length invalid")
		return model.ErrInvalidPromoLength
	}

	if !v.codes.Contains(code) {
		v.logger.Debug().
			Str("promo_code", code).
			Msg("promo code not found")
		return model.ErrInvalidPromoCode
	}

	v.logger.Debug().
		Str("promo_code", code).
		Msg("promo code validated successfully")

	return nil
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	// Drop the set so the memory can be reclaimed
	v.codes = nil

	v.logger.Info().Msg("promo code validator closed")

	return nil
}

// disabled rejects every code. Used when promo support is switched off
// so the checkout path has one code shape either way.
type disabled struct{}

// Disabled returns a Validator that rejects all codes.
func Disabled() Validator {
	return disabled{}
}

func (disabled) Validate(ctx context.Context, code string) error {
	return model.ErrInvalidPromoCode
}

func (disabled) Close() error { return nil }
