package service

import (
	"context"
	"fmt"
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"homeservice-booking/pkg/logger"
	"slices"
	"sort"
	"sync"
	"time"
)

// fakeCouponRepo is an in-memory CouponRepository
type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
}

func newFakeCouponRepo(coupons ...*model.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: map[string]*model.Coupon{}}
	for _, c := range coupons {
		r.coupons[c.ID] = c
	}
	return r
}

func (r *fakeCouponRepo) CreateCoupon(_ context.Context, c *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.coupons {
		if existing.Code == c.Code {
			return apperrors.ErrCouponAlreadyExists
		}
	}
	cp := *c
	r.coupons[c.ID] = &cp
	return nil
}

func (r *fakeCouponRepo) GetCouponByCode(_ context.Context, code string) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCouponNotFound
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return apperrors.ErrCouponNotFound
	}
	if c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage {
		return apperrors.ErrCouponExhausted
	}
	c.UsageCount++
	return nil
}

func (r *fakeCouponRepo) DecrementUsage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.coupons[id]; ok && c.UsageCount > 0 {
		c.UsageCount--
	}
	return nil
}

func (r *fakeCouponRepo) usage(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coupons[id].UsageCount
}

// fakeReservationRepo is an in-memory ReservationRepository
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.CouponReservation
	createErr    error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: map[string]*model.CouponReservation{}}
}

func (r *fakeReservationRepo) CreateReservation(_ context.Context, res *model.CouponReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id string, from, to model.ReservationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return apperrors.ErrReservationNotFound
	}
	if res.Status != from {
		return apperrors.ErrReservationSettled
	}
	res.Status = to
	return nil
}

func (r *fakeReservationRepo) ListStale(_ context.Context, cutoff time.Time, limit int64) ([]*model.CouponReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CouponReservation
	for _, res := range r.reservations {
		if res.Status == model.ReservationReserved && res.CreatedAt.Before(cutoff) {
			cp := *res
			out = append(out, &cp)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeReservationRepo) ListByCoupon(_ context.Context, couponID string) ([]*model.CouponReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CouponReservation
	for _, res := range r.reservations {
		if res.CouponID == couponID && res.Status == model.ReservationConfirmed {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) byBooking(bookingID string) *model.CouponReservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.BookingID == bookingID {
			cp := *res
			return &cp
		}
	}
	return nil
}

func (r *fakeReservationRepo) all() []*model.CouponReservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.CouponReservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		cp := *res
		out = append(out, &cp)
	}
	return out
}

// fakeBookingRepo is an in-memory BookingRepository
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*model.Booking
	holds     map[string][]model.SlotHold
	createErr error

	// readGate and overlapGate, when set, park each GetByID or HasOverlap
	// caller until every expected caller has arrived
	readGate    *sync.WaitGroup
	overlapGate *sync.WaitGroup
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[string]*model.Booking{},
		holds:    map[string][]model.SlotHold{},
	}
}

func holdKey(workerID string, date time.Time) string {
	return workerID + ":" + date.UTC().Format("2006-01-02")
}

func await(gate *sync.WaitGroup) {
	if gate != nil {
		gate.Done()
		gate.Wait()
	}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	await(r.readGate)
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) List(_ context.Context, f model.BookingFilter) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.WorkerID != "" && b.WorkerID != f.WorkerID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

func (r *fakeBookingRepo) HasOverlap(_ context.Context, workerID string, date time.Time, slot model.TimeSlot) (bool, error) {
	await(r.overlapGate)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.WorkerID == workerID && b.BookingDate.Equal(date) && b.Status != model.BookingCancelled && b.ScheduledTimeSlot.Overlaps(slot) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) HoldSlot(_ context.Context, h model.SlotHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := holdKey(h.WorkerID, h.BookingDate)
	want := model.TimeSlot{Start: h.Start, End: h.End}
	for _, held := range r.holds[key] {
		if want.Overlaps(model.TimeSlot{Start: held.Start, End: held.End}) {
			return apperrors.ErrSlotUnavailable
		}
	}
	r.holds[key] = append(r.holds[key], h)
	return nil
}

func (r *fakeBookingRepo) ReleaseSlot(_ context.Context, workerID string, date time.Time, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := holdKey(workerID, date)
	r.holds[key] = slices.DeleteFunc(r.holds[key], func(h model.SlotHold) bool { return h.BookingID == bookingID })
	return nil
}

func (r *fakeBookingRepo) ListOrphanHolds(_ context.Context, cutoff time.Time, limit int64) ([]model.SlotHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SlotHold
	for _, holds := range r.holds {
		for _, h := range holds {
			b, ok := r.bookings[h.BookingID]
			if h.HeldAt.Before(cutoff) && (!ok || b.Status == model.BookingCancelled) {
				out = append(out, h)
			}
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) holdCount(workerID string, date time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holds[holdKey(workerID, date)])
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, c model.StatusChange) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	if b.Status != c.From {
		return nil, apperrors.ErrConcurrentModification
	}
	b.Status = c.To
	b.UpdatedAt = c.UpdatedAt
	if c.CancelledBy != "" {
		b.CancelledBy = c.CancelledBy
	}
	if c.CancellationReason != "" {
		b.CancellationReason = c.CancellationReason
	}
	if c.WorkerResponseTime != nil {
		b.WorkerResponseTime = c.WorkerResponseTime
	}
	if c.StartedAt != nil {
		b.StartedAt = c.StartedAt
	}
	if c.CompletedAt != nil {
		b.CompletedAt = c.CompletedAt
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) SetPayment(_ context.Context, id, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.ErrBookingNotFound
	}
	b.PaymentID = paymentID
	return nil
}

func (r *fakeBookingRepo) MarkPaid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.ErrBookingNotFound
	}
	b.IsPaid = true
	return nil
}

func (r *fakeBookingRepo) put(b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// fakePaymentRepo is an in-memory PaymentRepository
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
	writes   int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*model.Payment{}}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) GetByBookingID(_ context.Context, bookingID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrPaymentNotFound
}

func (r *fakePaymentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) Transition(_ context.Context, id string, c model.PaymentChange) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	if !slices.Contains(c.From, p.Status) {
		return nil, apperrors.ErrPaymentStateConflict
	}
	r.writes++
	p.Status = c.To
	p.UpdatedAt = c.UpdatedAt
	if c.TransactionID != "" {
		p.TransactionID = c.TransactionID
	}
	if c.FailureReason != "" {
		p.FailureReason = c.FailureReason
	}
	if c.RefundID != "" {
		p.RefundID = c.RefundID
	}
	if c.RefundReason != "" {
		p.RefundReason = c.RefundReason
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) ListByStatus(_ context.Context, status model.PaymentStatus, limit int64) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.payments {
		if p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePaymentRepo) put(p *model.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
}

func (r *fakePaymentRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// fakeCatalog is an in-memory CatalogRepository
type fakeCatalog struct {
	services  map[string]*model.WorkerService
	addresses map[string]*model.Address
	users     map[string]*model.User
}

func (c *fakeCatalog) GetWorkerService(_ context.Context, id string) (*model.WorkerService, error) {
	if ws, ok := c.services[id]; ok {
		cp := *ws
		return &cp, nil
	}
	return nil, apperrors.ErrWorkerServiceNotFound
}

func (c *fakeCatalog) GetAddress(_ context.Context, id string) (*model.Address, error) {
	if a, ok := c.addresses[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperrors.ErrAddressNotFound
}

func (c *fakeCatalog) GetUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := c.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

// fakeGateway records orders and refunds
type fakeGateway struct {
	mu        sync.Mutex
	orders    []OrderRequest
	refunds   []RefundRequest
	orderErr  error
	refundErr error

	// blockOrders makes CreateOrder wait for its context to end
	blockOrders bool
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if g.blockOrders {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	g.orders = append(g.orders, req)
	return &Order{Ref: fmt.Sprintf("order-%d", len(g.orders))}, nil
}

func (g *fakeGateway) Refund(_ context.Context, req RefundRequest) (*Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, req)
	return &Refund{Ref: fmt.Sprintf("refund-%d", len(g.refunds))}, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) last() model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return model.Event{}
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fixture wires a BookingService over fakes with a small seeded catalog
type fixture struct {
	bookings     *fakeBookingRepo
	coupons      *fakeCouponRepo
	reservations *fakeReservationRepo
	payments     *fakePaymentRepo
	catalog      *fakeCatalog
	gateway      *fakeGateway
	events       *recordingPublisher
	couponSvc    *CouponService
	linkage      *PaymentLinkage
	svc          *BookingService
	now          time.Time
}

var (
	customer      = model.Principal{ID: "cust-1", Role: model.RoleCustomer}
	otherCustomer = model.Principal{ID: "cust-2", Role: model.RoleCustomer}
	worker        = model.Principal{ID: "work-1", Role: model.RoleWorker}
	otherWorker   = model.Principal{ID: "work-2", Role: model.RoleWorker}
	admin         = model.Principal{ID: "admin-1", Role: model.RoleAdmin}
)

func newFixture(coupons ...*model.Coupon) *fixture {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := &fixture{
		bookings:     newFakeBookingRepo(),
		coupons:      newFakeCouponRepo(coupons...),
		reservations: newFakeReservationRepo(),
		payments:     newFakePaymentRepo(),
		catalog: &fakeCatalog{
			services: map[string]*model.WorkerService{
				"ws-1": {ID: "ws-1", WorkerID: worker.ID, ServiceID: "svc-clean", CategoryID: "cat-home", CustomPrice: 1000, IsActive: true},
				"ws-2": {ID: "ws-2", WorkerID: worker.ID, ServiceID: "svc-deep", CategoryID: "cat-home", CustomPrice: 2000, IsActive: true},
			},
			addresses: map[string]*model.Address{
				"addr-1": {ID: "addr-1", UserID: customer.ID, Label: "home"},
			},
			users: map[string]*model.User{
				worker.ID:      {ID: worker.ID, Role: model.RoleWorker, IsActive: true},
				otherWorker.ID: {ID: otherWorker.ID, Role: model.RoleWorker, IsActive: true},
			},
		},
		gateway: &fakeGateway{},
		events:  &recordingPublisher{},
		now:     now,
	}

	log := logger.Discard()
	pricing := NewPricingCalculator(DefaultServiceFeeRate)
	f.couponSvc = NewCouponService(f.coupons, f.reservations, f.catalog, pricing, log)
	f.couponSvc.now = clock
	f.linkage = NewPaymentLinkage(f.payments, f.bookings, f.gateway, f.events, "thb", log)
	f.linkage.now = clock
	f.svc = NewBookingService(f.bookings, f.catalog, f.couponSvc, f.linkage, pricing, f.events, log)
	f.svc.now = clock
	return f
}

func (f *fixture) request(method model.PaymentMethod, coupon string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		WorkerID:        worker.ID,
		WorkerServiceID: "ws-1",
		AddressID:       "addr-1",
		BookingDate:     "2026-03-12",
		TimeSlot:        "09:00-11:00",
		PaymentMethod:   method,
		CouponCode:      coupon,
	}
}

// seedBooking stores a booking in status directly
func (f *fixture) seedBooking(id string, status model.BookingStatus, method model.PaymentMethod) *model.Booking {
	b := &model.Booking{
		ID:                id,
		CustomerID:        customer.ID,
		WorkerID:          worker.ID,
		WorkerServiceID:   "ws-1",
		AddressID:         "addr-1",
		BookingDate:       time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		ScheduledTimeSlot: model.TimeSlot{Start: "09:00", End: "11:00"},
		SubTotal:          1150,
		TotalAmount:       1150,
		Status:            status,
		PaymentMethod:     method,
		CancelledBy:       model.CancelledByNone,
		CreatedAt:         f.now,
		UpdatedAt:         f.now,
	}
	f.bookings.put(b)
	return b
}

func welcome25() *model.Coupon {
	return &model.Coupon{
		ID:            "coupon-welcome",
		Code:          "WELCOME25",
		Type:          model.CouponPercentage,
		Value:         25,
		MaxDiscount:   500,
		MinOrderValue: 500,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}
