package property

import (
	"context"
	"log/slog"
	"time"

	"landledger/internal/audit"
	"landledger/internal/ledger"
	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
	"landledger/pkg/platform/sentinel"
)

// Store persists property records, the per-owner index, and the viewers log.
// The marketplace and tokenization services share this port.
type Store interface {
	AllocateID(ctx context.Context) (domain.PropertyID, error)
	Save(ctx context.Context, property Property) error
	Find(ctx context.Context, id domain.PropertyID) (Property, error)
	AppendToOwner(ctx context.Context, owner domain.Address, id domain.PropertyID) error
	RemoveFromOwner(ctx context.Context, owner domain.Address, id domain.PropertyID) error
	ListByOwner(ctx context.Context, owner domain.Address) ([]domain.PropertyID, error)
	ListApproved(ctx context.Context) ([]domain.PropertyID, error)
	AppendViewer(ctx context.Context, id domain.PropertyID, viewer domain.Address) error
	ListViewers(ctx context.Context, id domain.PropertyID) ([]domain.Address, error)
}

// Authorizer provides the access checks the registry needs.
type Authorizer interface {
	RequireRegistered(ctx context.Context, caller domain.Address) error
	RequireGovernment(ctx context.Context, caller domain.Address) error
	RequireVerifier(ctx context.Context, caller domain.Address) error
}

// AuditPublisher appends observable events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterInput carries the caller-supplied fields of a new record.
type RegisterInput struct {
	Title        string
	Location     string
	Category     string
	Size         uint64
	Bedrooms     uint32
	Bathrooms    uint32
	Features     string
	Description  string
	DocumentHash string
}

// Service owns property records and their verification lifecycle.
type Service struct {
	store  Store
	authz  Authorizer
	auditp AuditPublisher
	clock  ledger.Clock
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, authz Authorizer, auditp AuditPublisher, clock ledger.Clock, opts ...Option) *Service {
	svc := &Service{store: store, authz: authz, auditp: auditp, clock: clock}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates a new property record owned by the caller. Verification
// starts PENDING.
func (s *Service) Register(ctx context.Context, caller domain.Address, input RegisterInput) (domain.PropertyID, error) {
	if err := s.authz.RequireRegistered(ctx, caller); err != nil {
		return 0, err
	}
	if input.Title == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "Title cannot be empty")
	}
	if input.Size == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "Size must be positive")
	}
	if input.DocumentHash == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "Document hash required")
	}

	id, err := s.store.AllocateID(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate property id")
	}
	record := Property{
		ID: id,
		Info: Info{
			Title:        input.Title,
			Location:     input.Location,
			Category:     input.Category,
			Size:         input.Size,
			Bedrooms:     input.Bedrooms,
			Bathrooms:    input.Bathrooms,
			Features:     input.Features,
			Description:  input.Description,
			DocumentHash: input.DocumentHash,
		},
		Status: Status{
			Registered:   true,
			Verification: domain.StatusPending,
			Owner:        caller,
		},
		Timestamps: Timestamps{
			RegisteredAt: s.clock.Now(),
		},
	}
	if err := s.store.Save(ctx, record); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	if err := s.store.AppendToOwner(ctx, caller, id); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to index property")
	}
	if err := s.auditp.Emit(ctx, audit.Event{
		Type:     audit.EventPropertyRegistered,
		Property: &id,
		Actor:    caller,
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// SubmitSurveyReport overwrites the survey hash. Government only; no format
// validation is applied to the hash.
func (s *Service) SubmitSurveyReport(ctx context.Context, caller domain.Address, id domain.PropertyID, hash string) error {
	if err := s.authz.RequireGovernment(ctx, caller); err != nil {
		return err
	}
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	record.Info.SurveyHash = hash
	if err := s.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	return nil
}

// Verify sets the verification status and the verifier identity. Admin or
// government; may be called repeatedly to flip the status back and forth.
func (s *Service) Verify(ctx context.Context, caller domain.Address, id domain.PropertyID, status domain.VerificationStatus) error {
	if err := s.authz.RequireVerifier(ctx, caller); err != nil {
		return err
	}
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid verification status")
	}
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	record.Status.Verification = status
	record.Status.Verifier = caller
	if status == domain.StatusApproved {
		record.Timestamps.VerifiedAt = s.clock.Now()
	} else {
		record.Timestamps.VerifiedAt = time.Time{}
	}
	if err := s.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	return s.auditp.Emit(ctx, audit.Event{
		Type:         audit.EventPropertyVerified,
		Property:     &id,
		Actor:        caller,
		Counterparty: record.Status.Owner,
		Status:       status.String(),
	})
}

// View returns the record and appends the caller to the viewers log. The log
// keeps duplicates; nothing is ever removed from it.
func (s *Service) View(ctx context.Context, caller domain.Address, id domain.PropertyID) (Property, error) {
	if err := s.authz.RequireRegistered(ctx, caller); err != nil {
		return Property{}, err
	}
	record, err := s.find(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if err := s.store.AppendViewer(ctx, id, caller); err != nil {
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record viewer")
	}
	if err := s.auditp.Emit(ctx, audit.Event{
		Type:     audit.EventPropertyViewed,
		Property: &id,
		Actor:    caller,
	}); err != nil {
		return Property{}, err
	}
	return record, nil
}

// Get returns the record without touching the viewers log.
func (s *Service) Get(ctx context.Context, id domain.PropertyID) (Property, error) {
	return s.find(ctx, id)
}

// OwnerProperties returns the (unordered) ids owned by a principal.
func (s *Service) OwnerProperties(ctx context.Context, owner domain.Address) ([]domain.PropertyID, error) {
	ids, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owner properties")
	}
	return ids, nil
}

// ApprovedProperties returns every id whose verification is APPROVED.
func (s *Service) ApprovedProperties(ctx context.Context) ([]domain.PropertyID, error) {
	ids, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list approved properties")
	}
	return ids, nil
}

// Summary returns the buyer-facing verification view.
func (s *Service) Summary(ctx context.Context, id domain.PropertyID) (VerificationSummary, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return VerificationSummary{}, err
	}
	return VerificationSummary{
		Approved:   record.Status.Verification == domain.StatusApproved,
		Status:     record.Status.Verification,
		Verifier:   record.Status.Verifier,
		SurveyHash: record.Info.SurveyHash,
	}, nil
}

// Viewers returns the append-only viewers log for a property.
func (s *Service) Viewers(ctx context.Context, id domain.PropertyID) ([]domain.Address, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	viewers, err := s.store.ListViewers(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list viewers")
	}
	return viewers, nil
}

func (s *Service) find(ctx context.Context, id domain.PropertyID) (Property, error) {
	record, err := s.store.Find(ctx, id)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return Property{}, dErrors.New(dErrors.CodeNotFound, "Property does not exist")
		}
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "property lookup failed")
	}
	return record, nil
}
