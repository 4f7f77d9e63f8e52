package matching

import (
	"unicode/utf8"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MaxReasonLength  = 500
)

// EnqueueInput holds the parameters for joining the waiting pool.
type EnqueueInput struct {
	Role   domain.Role
	Topics []string
	Style  *domain.CounselingStyle
}

// Validate checks all fields and collects all errors.
func (i EnqueueInput) Validate() error {
	var errs []domain.FieldError
	errs = validateRole(errs, "role", i.Role)
	errs = validateTopics(errs, i.Topics)
	errs = validateStyle(errs, i.Style)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MatchRequest is one of RandomRequest, PreferenceRequest or ManualRequest.
type MatchRequest interface {
	Validate() error
	initiatorRole() domain.Role
	strategy() domain.Strategy
}

// RandomRequest pairs the caller with any available counterpart.
type RandomRequest struct {
	Role domain.Role
}

func (r RandomRequest) initiatorRole() domain.Role { return r.Role }
func (r RandomRequest) strategy() domain.Strategy  { return domain.StrategyRandom }

// Validate checks all fields and collects all errors.
func (r RandomRequest) Validate() error {
	if errs := validateRole(nil, "role", r.Role); len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// PreferenceRequest pairs the caller with the earliest waiter sharing a
// topic and, when given, the style.
type PreferenceRequest struct {
	Role   domain.Role
	Topics []string
	Style  *domain.CounselingStyle
}

func (r PreferenceRequest) initiatorRole() domain.Role { return r.Role }
func (r PreferenceRequest) strategy() domain.Strategy  { return domain.StrategyPreference }

// Validate checks all fields and collects all errors.
func (r PreferenceRequest) Validate() error {
	var errs []domain.FieldError
	errs = validateRole(errs, "role", r.Role)
	errs = validateTopics(errs, r.Topics)
	errs = validateStyle(errs, r.Style)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ManualRequest addresses a named waiting counterpart.
type ManualRequest struct {
	Role          domain.Role
	CounterpartID int64
	Topics        []string
}

func (r ManualRequest) initiatorRole() domain.Role { return r.Role }
func (r ManualRequest) strategy() domain.Strategy  { return domain.StrategyManual }

// Validate checks all fields and collects all errors.
func (r ManualRequest) Validate() error {
	var errs []domain.FieldError
	errs = validateRole(errs, "role", r.Role)
	if r.CounterpartID <= 0 {
		errs = append(errs, domain.FieldError{Field: "counterpart_id", Message: "required"})
	}
	errs = validateTopics(errs, r.Topics)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RejectInput holds the parameters for rejecting a request.
type RejectInput struct {
	MatchingID int64
	Reason     string
}

// Validate checks all fields and collects all errors.
func (i RejectInput) Validate() error {
	var errs []domain.FieldError
	if i.MatchingID <= 0 {
		errs = append(errs, domain.FieldError{Field: "matching_id", Message: "required"})
	}
	if utf8.RuneCountInString(i.Reason) > MaxReasonLength {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "max 500 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListMyMatchingsInput holds the parameters for listing the caller's
// matchings.
type ListMyMatchingsInput struct {
	Status *domain.MatchingStatus
	Limit  int
}

// Validate checks all fields and collects all errors.
func (i ListMyMatchingsInput) Validate() error {
	var errs []domain.FieldError
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid"})
	}
	errs = validateLimit(errs, i.Limit)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListWaitingInput holds the parameters for browsing the waiting pool.
type ListWaitingInput struct {
	Role   domain.Role
	Topics []string
	Style  *domain.CounselingStyle
	Limit  int
}

// Validate checks all fields and collects all errors.
func (i ListWaitingInput) Validate() error {
	var errs []domain.FieldError
	errs = validateRole(errs, "role", i.Role)
	errs = validateTopics(errs, i.Topics)
	errs = validateStyle(errs, i.Style)
	errs = validateLimit(errs, i.Limit)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateRole(errs []domain.FieldError, field string, r domain.Role) []domain.FieldError {
	if !r.IsValid() {
		return append(errs, domain.FieldError{Field: field, Message: "must be SPEAKER or LISTENER"})
	}
	return errs
}

func validateTopics(errs []domain.FieldError, topics []string) []domain.FieldError {
	if len(domain.NormalizeTopics(topics)) > domain.MaxTopics {
		return append(errs, domain.FieldError{Field: "topics", Message: "max 10 topics"})
	}
	return errs
}

func validateStyle(errs []domain.FieldError, s *domain.CounselingStyle) []domain.FieldError {
	if s != nil && !s.IsValid() {
		return append(errs, domain.FieldError{Field: "style", Message: "invalid"})
	}
	return errs
}

func validateLimit(errs []domain.FieldError, limit int) []domain.FieldError {
	if limit < 0 {
		return append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if limit > MaxListLimit {
		return append(errs, domain.FieldError{Field: "limit", Message: "max 200"})
	}
	return errs
}

func limitOrDefault(limit int) int {
	if limit == 0 {
		return DefaultListLimit
	}
	return limit
}
