package service

import (
    "context"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
)

// FacilityApproval is the review queue for facility bookings.  Regular
// requests are reviewed by staff; VIP requests need an admin.
type FacilityApproval struct {
    store     repository.Store
    lifecycle *Lifecycle
}

func NewFacilityApproval(store repository.Store, lifecycle *Lifecycle) *FacilityApproval {
    return &FacilityApproval{store: store, lifecycle: lifecycle}
}

// PendingQueue lists facility bookings awaiting a decision, oldest
// first.  A non-nil vip selects the VIP or the regular queue.
func (a *FacilityApproval) PendingQueue(ctx context.Context, vip *bool) ([]model.Booking, error) {
    return a.store.Bookings().ListPendingFacility(ctx, vip)
}

// Approve confirms a pending facility booking.
func (a *FacilityApproval) Approve(ctx context.Context, id uint64, actor Actor) (model.Booking, error) {
    return a.lifecycle.transition(ctx, id, model.StatusConfirmed, actor, "", facilityOnly(model.StatusConfirmed))
}

// Reject declines a pending facility booking, keeping reason.
func (a *FacilityApproval) Reject(ctx context.Context, id uint64, actor Actor, reason string) (model.Booking, error) {
    return a.lifecycle.transition(ctx, id, model.StatusRejected, actor, reason, facilityOnly(model.StatusRejected))
}

func facilityOnly(to model.BookingStatus) func(model.Booking) error {
    return func(b model.Booking) error {
        if b.Type != model.BookingFacility {
            return &InvalidTransitionError{From: b.Status, To: to, Reason: "only facility bookings are reviewed"}
        }
        return nil
    }
}
