package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEntryNotFound      = errors.New("plan entry not found")
	ErrEntryAccessDenied  = errors.New("access denied to modify this plan entry")
	ErrEntryReferenced    = errors.New("plan entry is referenced as a superset lead and cannot be deleted")
	ErrPlanEmpty          = errors.New("plan has no entries")
	ErrReorderMismatch    = errors.New("reorder list does not match the plan's entries")
	ErrComboTargetMissing = errors.New("combo reference does not exist")
)

// AddEntryInput carries everything needed to append one entry to a plan slot.
type AddEntryInput struct {
	OwnerID     primitive.ObjectID
	CoachID     primitive.ObjectID
	PlanName    string
	ExerciseID  primitive.ObjectID
	SetCount    int
	RepScheme   domain.RepScheme
	Load        string
	RestSeconds int
	Note        string

	// ComboWithID pairs the new entry behind an existing sibling; the new
	// entry becomes the trailing member and its RestSeconds governs the pair.
	ComboWithID *primitive.ObjectID

	// ValidityDays, when set, stamps the entry with an expiration date of
	// today + ValidityDays. Nil means the entry never expires.
	ValidityDays *int
}

// PlanEntryDetails combines an entry with the fields derived for display and
// execution: the resolved exercise name, whether the rest timer is suppressed
// (superset lead), and the validity classification relative to today.
type PlanEntryDetails struct {
	domain.PlanEntry
	ExerciseName string                `json:"exerciseName"`
	SuppressRest bool                  `json:"suppressRest"`
	Validity     domain.ValidityStatus `json:"validity"`
}

// --- Service Interface ---
type PlanService interface {
	AddEntry(ctx context.Context, input AddEntryInput) (*domain.PlanEntry, error)
	ListEntries(ctx context.Context, ownerID primitive.ObjectID, planName string) ([]PlanEntryDetails, error)
	Reorder(ctx context.Context, coachID, ownerID primitive.ObjectID, planName string, orderedIDs []primitive.ObjectID) error
	DeleteEntry(ctx context.Context, coachID, entryID primitive.ObjectID) error
	DeletePlan(ctx context.Context, coachID, ownerID primitive.ObjectID, planName string) (int64, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo     repository.PlanEntryRepository
	exerciseRepo repository.ExerciseRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanEntryRepository, exerciseRepo repository.ExerciseRepository) PlanService {
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
	}
}

// AddEntry validates and appends one entry to a plan slot. All validation
// happens before the single repository write, so a rejected input leaves the
// plan untouched.
func (s *planService) AddEntry(ctx context.Context, input AddEntryInput) (*domain.PlanEntry, error) {
	// 1. Required references
	if input.OwnerID == primitive.NilObjectID || input.CoachID == primitive.NilObjectID || input.ExerciseID == primitive.NilObjectID {
		return nil, errors.New("owner ID, coach ID, and exercise ID are required")
	}
	if input.PlanName == "" {
		return nil, domain.ValidationError("plan name is required")
	}

	// 2. Bounds
	if input.SetCount < domain.MinSetCount || input.SetCount > domain.MaxSetCount {
		return nil, domain.ValidationError(fmt.Sprintf("set count must be between %d and %d, got %d", domain.MinSetCount, domain.MaxSetCount, input.SetCount))
	}
	if input.RestSeconds < 0 || input.RestSeconds > domain.MaxRestSeconds {
		return nil, domain.ValidationError(fmt.Sprintf("rest seconds must be between 0 and %d, got %d", domain.MaxRestSeconds, input.RestSeconds))
	}

	// 3. Rep scheme must match the set count
	if err := input.RepScheme.Validate(input.SetCount); err != nil {
		return nil, err
	}

	// 4. Validity window
	var expiresOn *time.Time
	if input.ValidityDays != nil {
		days := *input.ValidityDays
		if days < domain.MinValidityDays || days > domain.MaxValidityDays {
			return nil, domain.ValidationError(fmt.Sprintf("validity window must be between %d and %d days, got %d", domain.MinValidityDays, domain.MaxValidityDays, days))
		}
		expiry := domain.ComputeExpiry(time.Now().UTC(), days)
		expiresOn = &expiry
	}

	// 5. Exercise must exist in the catalog
	if _, err := s.exerciseRepo.GetByID(ctx, input.ExerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	// 6. Existing entries: needed for the combo checks and the next order value
	siblings, err := s.planRepo.ListByPlan(ctx, input.OwnerID, input.PlanName)
	if err != nil {
		return nil, err
	}

	if input.ComboWithID != nil {
		if err := validateComboReference(siblings, *input.ComboWithID); err != nil {
			return nil, err
		}
	}

	nextOrder := 0
	for _, sibling := range siblings {
		if sibling.Order >= nextOrder {
			nextOrder = sibling.Order + 1
		}
	}

	entry := &domain.PlanEntry{
		OwnerID:     input.OwnerID,
		CoachID:     input.CoachID,
		PlanName:    input.PlanName,
		ExerciseID:  input.ExerciseID,
		SetCount:    input.SetCount,
		RepScheme:   input.RepScheme,
		Load:        input.Load,
		RestSeconds: input.RestSeconds,
		Note:        input.Note,
		ComboWith:   input.ComboWithID,
		ExpiresOn:   expiresOn,
		Order:       nextOrder,
	}

	entryID, err := s.planRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = entryID
	return entry, nil
}

// validateComboReference checks that the prospective lead lives in the same
// plan, is not a trailing combo member itself, and is not already paired.
// Only direct A->B pairing is supported; chains are rejected here.
func validateComboReference(siblings []domain.PlanEntry, comboWithID primitive.ObjectID) error {
	var lead *domain.PlanEntry
	for i := range siblings {
		if siblings[i].ID == comboWithID {
			lead = &siblings[i]
		}
		if siblings[i].ComboWith != nil && *siblings[i].ComboWith == comboWithID {
			return domain.ValidationError("combo reference already has a paired entry")
		}
	}
	if lead == nil {
		// Also covers references into a different owner or plan slot: those
		// entries are simply not in the sibling list.
		return domain.ValidationError("combo reference must be an entry of the same plan")
	}
	if lead.ComboWith != nil {
		return domain.ValidationError("combo reference is already the trailing member of a pair; chains are not supported")
	}
	return nil
}

// ListEntries returns the plan slot in execution order, enriched with the
// exercise name, superset rest suppression, and validity classification.
func (s *planService) ListEntries(ctx context.Context, ownerID primitive.ObjectID, planName string) ([]PlanEntryDetails, error) {
	if ownerID == primitive.NilObjectID || planName == "" {
		return nil, errors.New("owner ID and plan name are required")
	}

	entries, err := s.planRepo.ListByPlan(ctx, ownerID, planName)
	if err != nil {
		return nil, err
	}

	suppress := domain.SuppressRest(entries)
	today := time.Now().UTC()

	// Resolve each distinct exercise once; enrichment only, a missing
	// catalog record must not hide the entry.
	names := make(map[primitive.ObjectID]string)
	details := make([]PlanEntryDetails, 0, len(entries))
	for _, entry := range entries {
		name, seen := names[entry.ExerciseID]
		if !seen {
			if exercise, err := s.exerciseRepo.GetByID(ctx, entry.ExerciseID); err == nil {
				name = exercise.Name
			}
			names[entry.ExerciseID] = name
		}
		details = append(details, PlanEntryDetails{
			PlanEntry:    entry,
			ExerciseName: name,
			SuppressRest: suppress[entry.ID],
			Validity:     domain.ClassifyValidity(entry.ExpiresOn, today),
		})
	}
	return details, nil
}

// Reorder rewrites the execution order of a plan slot. The id list must be a
// permutation of the slot's current entries.
func (s *planService) Reorder(ctx context.Context, coachID, ownerID primitive.ObjectID, planName string, orderedIDs []primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || ownerID == primitive.NilObjectID || planName == "" {
		return errors.New("coach ID, owner ID, and plan name are required")
	}

	entries, err := s.planRepo.ListByPlan(ctx, ownerID, planName)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrPlanEmpty
	}

	current := make(map[primitive.ObjectID]*domain.PlanEntry, len(entries))
	for i := range entries {
		if entries[i].CoachID != coachID {
			return ErrEntryAccessDenied
		}
		current[entries[i].ID] = &entries[i]
	}
	if len(orderedIDs) != len(entries) {
		return ErrReorderMismatch
	}
	seen := make(map[primitive.ObjectID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if current[id] == nil || seen[id] {
			return ErrReorderMismatch
		}
		seen[id] = true
	}

	// One write per entry; a mid-sequence failure surfaces immediately and
	// the remaining updates are skipped. No rollback of the writes already
	// applied.
	for position, id := range orderedIDs {
		if current[id].Order == position {
			continue
		}
		if err := s.planRepo.UpdateOrder(ctx, id, position); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes one entry. Deleting an entry that is still referenced
// as a superset lead is rejected; the trailing entry has to go first (or the
// whole plan). Dangling references are never silently repaired.
func (s *planService) DeleteEntry(ctx context.Context, coachID, entryID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || entryID == primitive.NilObjectID {
		return errors.New("coach ID and entry ID are required")
	}

	entry, err := s.planRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	if entry.CoachID != coachID {
		return ErrEntryAccessDenied
	}

	siblings, err := s.planRepo.ListByPlan(ctx, entry.OwnerID, entry.PlanName)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ComboWith != nil && *sibling.ComboWith == entryID {
			return ErrEntryReferenced
		}
	}

	return s.planRepo.Delete(ctx, entryID)
}

// DeletePlan removes every entry of a plan slot and returns the count.
func (s *planService) DeletePlan(ctx context.Context, coachID, ownerID primitive.ObjectID, planName string) (int64, error) {
	if coachID == primitive.NilObjectID || ownerID == primitive.NilObjectID || planName == "" {
		return 0, errors.New("coach ID, owner ID, and plan name are required")
	}

	entries, err := s.planRepo.ListByPlan(ctx, ownerID, planName)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.CoachID != coachID {
			return 0, ErrEntryAccessDenied
		}
	}

	return s.planRepo.DeletePlan(ctx, ownerID, planName)
}
