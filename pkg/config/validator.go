package config

import "fmt"

// Validator checks a loaded Config for internal consistency before the
// application starts serving traffic.
type Validator struct {
	cfg *Config
}

// NewValidator constructs a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every validation check and returns the first failure.
func (v *Validator) ValidateAll() error {
	if err := v.validateQueue(); err != nil {
		return err
	}
	if err := v.validateLLM(); err != nil {
		return err
	}
	if err := v.validateBriefing(); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateQueue() error {
	q := v.cfg.Queue
	if q.RedisURL == "" {
		return NewValidationError("queue", "redis_url", "", ErrMissingRequiredField)
	}
	if q.WorkerCount < 1 {
		return NewValidationError("queue", "worker_count", "", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if q.MaxRetries < 0 {
		return NewValidationError("queue", "max_retries", "", fmt.Errorf("%w: must be >= 0", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateLLM() error {
	llm := v.cfg.LLM
	if llm.Primary == "" {
		return NewValidationError("llm", "primary", "", ErrMissingRequiredField)
	}
	if _, err := v.cfg.GetLLMProvider(llm.Primary); err != nil {
		return NewValidationError("llm", llm.Primary, "primary", ErrInvalidReference)
	}
	if llm.Fallback != "" {
		if _, err := v.cfg.GetLLMProvider(llm.Fallback); err != nil {
			return NewValidationError("llm", llm.Fallback, "fallback", ErrInvalidReference)
		}
	}
	for name, provider := range llm.Providers {
		if provider.BaseURL == "" {
			return NewValidationError("llm_provider", name, "base_url", ErrMissingRequiredField)
		}
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
		}
	}
	return nil
}

func (v *Validator) validateBriefing() error {
	b := v.cfg.Briefing
	if b.TopN < 1 {
		return NewValidationError("briefing", "top_n", "", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	if len(b.Personas) == 0 {
		return NewValidationError("briefing", "personas", "", ErrMissingRequiredField)
	}
	return nil
}
