package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	bookingserrors "shopbooking/internal/bookings/errors"
	"shopbooking/internal/bookings/repository"
	"shopbooking/internal/bookings/validator"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/metrics"
	"shopbooking/pkg/model"
	"shopbooking/pkg/sanitizer"
	"shopbooking/pkg/slots"

	"github.com/google/uuid"
)

const (
	opCreate     = "create"
	opCancel     = "cancel"
	opReschedule = "reschedule"
	opComplete   = "complete"
)

// Notifier receives booking events after a reservation change has committed.
// Implementations must not block the caller and report their own failures.
type Notifier interface {
	Notify(ctx context.Context, event model.BookingEvent)
}

// SettingsProvider supplies the shop hours that decide which times are offered.
type SettingsProvider interface {
	Get(ctx context.Context) (*model.ShopSettings, error)
}

type ReservationService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Reschedule(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
}

type reservationService struct {
	repo      repository.BookingRepository
	slotRepo  repository.SlotRepository
	settings  SettingsProvider
	notifier  Notifier
	validator *validator.BookingValidator
	metrics   *metrics.Metrics
	cfg       *config.Config

	now   func() time.Time
	newID func() string
}

func NewReservationService(
	repo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	settings SettingsProvider,
	notifier Notifier,
	validator *validator.BookingValidator,
	m *metrics.Metrics,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		slotRepo:  slotRepo,
		settings:  settings,
		notifier:  notifier,
		validator: validator,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create locks the requested slot and stores the booking in one transaction.
// A slot that is already locked fails the whole call with SLOT_CONFLICT.
func (s *reservationService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}

	booking := &model.Booking{
		ID:      s.newID(),
		Date:    req.Date,
		Time:    req.Time,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Service: req.Service,
		Price:   req.Price,
		Status:  model.StatusBooked,
	}
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return nil, s.observe(opCreate, err)
	}
	if err := s.checkOffered(ctx, booking.Date, booking.Time); err != nil {
		return nil, s.observe(opCreate, err)
	}

	now := s.timestamp()
	booking.SlotID = slots.ID(booking.Date, booking.Time)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureSlotFree(txCtx, booking.SlotID); err != nil {
			return err
		}
		if err := s.lockSlot(txCtx, booking, now); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return s.storeError("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		err = s.transactionError(err, booking.SlotID)
		s.cfg.Log.Warn("Failed to create booking",
			"slot_id", booking.SlotID,
			"error", err,
		)
		return nil, s.observe(opCreate, err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"slot_id", booking.SlotID,
	)
	s.observe(opCreate, nil)
	s.notify(ctx, model.EventBooked, booking)
	return booking, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return booking, nil
}

func (s *reservationService) List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if filter.Date != "" && !slots.ValidDate(filter.Date) {
		return nil, 0, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}
	switch filter.Status {
	case "", model.StatusBooked, model.StatusCancelled, model.StatusCompleted:
	default:
		return nil, 0, apperrors.InvalidInput("status must be one of: booked cancelled completed")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = s.storeError("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"date", filter.Date,
				"status", filter.Status,
				"error", err,
			)
			errFind = s.storeError("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel releases the booking's slot and marks it cancelled atomically.
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.finish(ctx, opCancel, id, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, model.EventCancelled, booking)
	return booking, nil
}

// Complete is the manual booked -> completed transition. The slot is released
// with it so a completed booking owns no lock.
func (s *reservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.finish(ctx, opComplete, id, model.StatusCompleted)
}

func (s *reservationService) finish(ctx context.Context, op, id string, status model.BookingStatus) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var result *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return s.lookupError(id, err)
		}
		if booking.Status != model.StatusBooked {
			return apperrors.InvalidState("only booked bookings can be "+string(status), string(booking.Status))
		}

		if err := s.releaseSlot(txCtx, booking); err != nil {
			return err
		}

		booking.Status = status
		booking.SlotID = ""
		booking.UpdatedAt = s.timestamp()
		if err := s.repo.Replace(txCtx, booking); err != nil {
			return s.lookupError(id, err)
		}
		result = booking
		return nil
	})
	if err != nil {
		err = s.transactionError(err, "")
		s.cfg.Log.Warn("Failed to "+op+" booking", "id", id, "error", err)
		return nil, s.observe(op, err)
	}

	s.cfg.Log.Info("Booking "+string(status)+" successfully", "id", id)
	s.observe(op, nil)
	return result, nil
}

// Reschedule applies update to the booking. When the date or time changes the
// slot moves with it: the destination is checked, the old lock released and
// the new one taken, all inside the same transaction as the booking write.
func (s *reservationService) Reschedule(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if update == nil {
		return nil, apperrors.InvalidInput("Booking update cannot be empty")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.observe(opReschedule, s.validationError(err))
	}

	var result *model.Booking
	var moved bool
	var destination string

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return s.lookupError(id, err)
		}

		merged := mergeBookingUpdate(existing, update)
		s.sanitize(merged)
		if err := s.validate(merged); err != nil {
			return err
		}

		moved = merged.Date != existing.Date || merged.Time != existing.Time
		if moved {
			if existing.Status != model.StatusBooked {
				return apperrors.InvalidState("only active bookings may move slot", string(existing.Status))
			}
			if err := s.checkOffered(txCtx, merged.Date, merged.Time); err != nil {
				return err
			}

			destination = slots.ID(merged.Date, merged.Time)
			if err := s.ensureSlotFree(txCtx, destination); err != nil {
				return err
			}
			if err := s.releaseSlot(txCtx, existing); err != nil {
				return err
			}
			merged.SlotID = destination
			if err := s.lockSlot(txCtx, merged, s.timestamp()); err != nil {
				return err
			}
		}

		merged.UpdatedAt = s.timestamp()
		if err := s.repo.Replace(txCtx, merged); err != nil {
			return s.lookupError(id, err)
		}
		result = merged
		return nil
	})
	if err != nil {
		err = s.transactionError(err, destination)
		s.cfg.Log.Warn("Failed to reschedule booking", "id", id, "error", err)
		return nil, s.observe(opReschedule, err)
	}

	kind := model.EventUpdated
	if moved {
		kind = model.EventRescheduled
	}
	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"moved", moved,
		"slot_id", result.SlotID,
	)
	s.observe(opReschedule, nil)
	s.notify(ctx, kind, result)
	return result, nil
}

// --- Helpers ---

// ensureSlotFree is the serialization point of a reservation: the read of
// the slot document inside the transaction. A stale read is rejected by the
// store at commit and the transaction re-run against fresh state.
func (s *reservationService) ensureSlotFree(ctx context.Context, slotID string) error {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	switch {
	case errors.Is(err, bookingserrors.ErrSlotNotFound):
		return nil
	case err != nil:
		return s.storeError("Failed to read slot", err)
	case slot.Booked:
		return apperrors.SlotConflict(slotID)
	}

	// A released record still holds the primary key.
	if err := s.slotRepo.Delete(ctx, slotID); err != nil && !errors.Is(err, bookingserrors.ErrSlotNotFound) {
		return s.storeError("Failed to clear released slot", err)
	}
	return nil
}

func (s *reservationService) lockSlot(ctx context.Context, booking *model.Booking, now time.Time) error {
	err := s.slotRepo.Create(ctx, &model.Slot{
		ID:        booking.SlotID,
		Date:      booking.Date,
		Time:      booking.Time,
		Booked:    true,
		BookingID: booking.ID,
		CreatedAt: now,
	})
	if errors.Is(err, bookingserrors.ErrSlotTaken) {
		return apperrors.SlotConflict(booking.SlotID)
	}
	if err != nil {
		return s.storeError("Failed to lock slot", err)
	}
	return nil
}

// releaseSlot deletes the lock owned by booking. A lock held by another
// booking is left alone.
func (s *reservationService) releaseSlot(ctx context.Context, booking *model.Booking) error {
	if booking.SlotID == "" {
		return nil
	}

	slot, err := s.slotRepo.FindByID(ctx, booking.SlotID)
	if errors.Is(err, bookingserrors.ErrSlotNotFound) {
		s.cfg.Log.Warn("Booked booking had no slot lock", "id", booking.ID, "slot_id", booking.SlotID)
		return nil
	}
	if err != nil {
		return s.storeError("Failed to read slot", err)
	}
	if slot.BookingID != booking.ID {
		s.cfg.Log.Warn("Slot lock belongs to another booking",
			"id", booking.ID,
			"slot_id", booking.SlotID,
			"owner", slot.BookingID,
		)
		return nil
	}

	if err := s.slotRepo.Delete(ctx, booking.SlotID); err != nil && !errors.Is(err, bookingserrors.ErrSlotNotFound) {
		return s.storeError("Failed to release slot", err)
	}
	return nil
}

func (s *reservationService) checkOffered(ctx context.Context, date, clock string) error {
	if s.settings == nil {
		return nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			return s.storeError("Failed to load shop settings", err)
		}
		settings = model.DefaultShopSettings(s.cfg.ShopTimeZone)
	}

	if !slices.Contains(slots.Generate(date, settings), clock) {
		return apperrors.Validation("Requested time is not an offered slot", map[string]any{
			"date": date,
			"time": clock,
		})
	}
	return nil
}

func (s *reservationService) lookupError(id string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	return s.storeError("Failed to retrieve booking", err)
}

func (s *reservationService) storeError(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if mongotx.IsUnavailable(err) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(message, err)
}

// transactionError maps what escaped the transaction to the caller's kinds. A
// write conflict that outlived the driver's retries means another writer won
// the slot.
func (s *reservationService) transactionError(err error, slotID string) error {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	if slotID != "" && mongotx.IsConflict(err) {
		return apperrors.SlotConflict(slotID)
	}
	return apperrors.StoreUnavailable(err)
}

func (s *reservationService) notify(ctx context.Context, kind model.EventKind, booking *model.Booking) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Log.Error("Notifier panicked", "kind", kind, "id", booking.ID, "panic", r)
		}
	}()

	s.notifier.Notify(ctx, model.BookingEvent{
		Kind:       kind,
		BookingID:  booking.ID,
		Payload:    model.NewNotificationPayload(booking),
		OccurredAt: s.timestamp(),
	})
}

func (s *reservationService) observe(op string, err error) error {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = apperrors.AsAppError(err).Code
	}
	s.metrics.ObserveReservation(op, outcome)
	return err
}

func (s *reservationService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *reservationService) sanitize(b *model.Booking) {
	b.Date = strings.TrimSpace(b.Date)
	b.Time = strings.TrimSpace(b.Time)
	b.Name = sanitizer.SanitizeText(b.Name)
	b.Phone = sanitizer.SanitizePhone(b.Phone)
	b.Email = sanitizer.SanitizeEmail(b.Email)
	b.Service = sanitizer.SanitizeText(b.Service)
	b.Price = sanitizer.SanitizeText(b.Price)
}

func (s *reservationService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return s.validationError(err)
	}
	return nil
}

func (s *reservationService) validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func mergeBookingUpdate(existing *model.Booking, update *model.BookingUpdate) *model.Booking {
	merged := *existing

	if update.Date != nil {
		merged.Date = *update.Date
	}
	if update.Time != nil {
		merged.Time = *update.Time
	}
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Phone != nil {
		merged.Phone = *update.Phone
	}
	if update.Email != nil {
		merged.Email = *update.Email
	}
	if update.Service != nil {
		merged.Service = *update.Service
	}
	if update.Price != nil {
		merged.Price = *update.Price
	}

	return &merged
}
