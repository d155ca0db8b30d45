package services

import (
	"context"
	"strconv"
	"time"

	"technika/internal/domain"
)

type mockProvider struct {
	createCalls int
	bulkCalls   int
	fetchCalls  int

	createResp *domain.BookingResponse
	createErr  error
	bulkResp   *domain.BulkBookingResponse
	bulkErr    error
	fetchResp  *domain.FetchBookingResponse
	fetchErr   error

	lastCreate domain.BookingPayload
	lastBulk   domain.BulkBookingPayload
}

func (m *mockProvider) CreateBooking(ctx context.Context, payload domain.BookingPayload) (*domain.BookingResponse, error) {
	m.createCalls++
	m.lastCreate = payload
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResp, nil
}

func (m *mockProvider) CreateBulkBooking(ctx context.Context, payload domain.BulkBookingPayload) (*domain.BulkBookingResponse, error) {
	m.bulkCalls++
	m.lastBulk = payload
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	return m.bulkResp, nil
}

func (m *mockProvider) FetchBooking(ctx context.Context, bookingUID string) (*domain.FetchBookingResponse, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.fetchResp, nil
}

func bookingResponse(uid, status, paymentURL string) *domain.BookingResponse {
	resp := &domain.BookingResponse{}
	resp.Booking.UID = uid
	resp.Booking.Status = status
	resp.Payment.URLToRedirect = paymentURL
	return resp
}

// mockRegistrationStore is an in-memory RegistrationStore keyed by owner uid.
type mockRegistrationStore struct {
	byOwner map[string]*domain.Registration
	nextID  int
}

func newMockRegistrationStore() *mockRegistrationStore {
	return &mockRegistrationStore{byOwner: map[string]*domain.Registration{}}
}

func (m *mockRegistrationStore) GetByOwner(ctx context.Context, ownerUID string) (*domain.Registration, error) {
	reg, ok := m.byOwner[ownerUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (m *mockRegistrationStore) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.Registration, error) {
	for _, reg := range m.byOwner {
		if reg.BookingRef == bookingRef {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationStore) Create(ctx context.Context, reg *domain.Registration) error {
	m.nextID++
	reg.ID = "reg-" + strconv.Itoa(m.nextID)
	cp := *reg
	m.byOwner[reg.OwnerUID] = &cp
	return nil
}

func (m *mockRegistrationStore) Update(ctx context.Context, reg *domain.Registration) error {
	cp := *reg
	m.byOwner[reg.OwnerUID] = &cp
	return nil
}

func (m *mockRegistrationStore) Delete(ctx context.Context, id string) error {
	for uid, reg := range m.byOwner {
		if reg.ID == id {
			delete(m.byOwner, uid)
			return nil
		}
	}
	return nil
}

func (m *mockRegistrationStore) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	for _, reg := range m.byOwner {
		if reg.BookingRef != bookingRef {
			continue
		}
		if reg.PaymentStatus == domain.StatusConfirmed || reg.PaymentStatus == status {
			return false, nil
		}
		reg.PaymentStatus = status
		reg.UpdatedAt = at
		return true, nil
	}
	return false, nil
}

// mockDelegateRepo is an in-memory DelegateRepository. InTx runs fn directly
// against the same maps.
type mockDelegateRepo struct {
	byUID map[string]*domain.DelegateRecord
}

func newMockDelegateRepo() *mockDelegateRepo {
	return &mockDelegateRepo{byUID: map[string]*domain.DelegateRecord{}}
}

func (m *mockDelegateRepo) Get(ctx context.Context, uid string) (*domain.DelegateRecord, error) {
	rec, ok := m.byUID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockDelegateRepo) GetRoomOwner(ctx context.Context, roomID string) (*domain.DelegateRecord, error) {
	for _, rec := range m.byUID {
		if rec.RoomID == roomID && rec.Role == domain.RoleOwner {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDelegateRepo) ListMembers(ctx context.Context, roomID string) ([]*domain.DelegateRecord, error) {
	var out []*domain.DelegateRecord
	for _, rec := range m.byUID {
		if rec.RoomID == roomID && rec.Role == domain.RoleMember {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockDelegateRepo) Upsert(ctx context.Context, rec *domain.DelegateRecord) error {
	cp := *rec
	m.byUID[rec.OwnerUID] = &cp
	return nil
}

func (m *mockDelegateRepo) InTx(ctx context.Context, fn func(tx domain.DelegateStore) error) error {
	return fn(m)
}

func (m *mockDelegateRepo) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.DelegateRecord, error) {
	for _, rec := range m.byUID {
		if rec.BookingRef == bookingRef {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDelegateRepo) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	for _, rec := range m.byUID {
		if rec.BookingRef != bookingRef {
			continue
		}
		if rec.PaymentStatus == domain.StatusConfirmed || rec.PaymentStatus == status {
			return false, nil
		}
		rec.PaymentStatus = status
		rec.UpdatedAt = at
		return true, nil
	}
	return false, nil
}

type entryKey struct {
	uid     string
	eventID int
}

// mockEventRepo is an in-memory EventRepository.
type mockEventRepo struct {
	owners  map[string]*domain.EventRegistration
	entries map[entryKey]*domain.EventEntry
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		owners:  map[string]*domain.EventRegistration{},
		entries: map[entryKey]*domain.EventEntry{},
	}
}

func (m *mockEventRepo) GetOwner(ctx context.Context, ownerUID string) (*domain.EventRegistration, error) {
	reg, ok := m.owners[ownerUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *reg
	cp.Entries = map[int]*domain.EventEntry{}
	for key, entry := range m.entries {
		if key.uid == ownerUID {
			e := *entry
			cp.Entries[key.eventID] = &e
		}
	}
	return &cp, nil
}

func (m *mockEventRepo) CreateOwner(ctx context.Context, reg *domain.EventRegistration) error {
	cp := *reg
	m.owners[reg.OwnerUID] = &cp
	return nil
}

func (m *mockEventRepo) GetEntry(ctx context.Context, ownerUID string, eventID int) (*domain.EventEntry, error) {
	entry, ok := m.entries[entryKey{ownerUID, eventID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (m *mockEventRepo) UpsertEntry(ctx context.Context, ownerUID string, entry *domain.EventEntry) error {
	cp := *entry
	m.entries[entryKey{ownerUID, entry.EventID}] = &cp
	return nil
}

func (m *mockEventRepo) UpdateEntryStatus(ctx context.Context, ownerUID string, eventID int, status domain.PaymentStatus, at time.Time) (bool, error) {
	entry, ok := m.entries[entryKey{ownerUID, eventID}]
	if !ok || entry.PaymentStatus == domain.StatusConfirmed || entry.PaymentStatus == status {
		return false, nil
	}
	entry.PaymentStatus = status
	entry.UpdatedAt = at
	return true, nil
}

func (m *mockEventRepo) UpdateEntryStatusByBookingRef(ctx context.Context, bookingRef string, eventID int, status domain.PaymentStatus, at time.Time) (bool, error) {
	for key, entry := range m.entries {
		if key.eventID != eventID || entry.BookingRef != bookingRef {
			continue
		}
		if entry.PaymentStatus == domain.StatusConfirmed || entry.PaymentStatus == status {
			return false, nil
		}
		entry.PaymentStatus = status
		entry.UpdatedAt = at
		return true, nil
	}
	return false, nil
}

func (m *mockEventRepo) GetEntryByBookingRef(ctx context.Context, bookingRef string, eventID int) (string, *domain.EventEntry, error) {
	for key, entry := range m.entries {
		if key.eventID == eventID && entry.BookingRef == bookingRef {
			cp := *entry
			return key.uid, &cp, nil
		}
	}
	return "", nil, domain.ErrNotFound
}

// mockMerchRepo is an in-memory MerchRepository keyed by order id.
type mockMerchRepo struct {
	orders map[string]*domain.MerchOrder
}

func newMockMerchRepo() *mockMerchRepo {
	return &mockMerchRepo{orders: map[string]*domain.MerchOrder{}}
}

func (m *mockMerchRepo) Create(ctx context.Context, order *domain.MerchOrder) error {
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockMerchRepo) GetByID(ctx context.Context, id string) (*domain.MerchOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockMerchRepo) ListByOwner(ctx context.Context, ownerUID string) ([]*domain.MerchOrder, error) {
	var out []*domain.MerchOrder
	for _, order := range m.orders {
		if order.OwnerUID == ownerUID {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockMerchRepo) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, at time.Time) (bool, error) {
	order, ok := m.orders[id]
	if !ok || order.PaymentStatus == domain.StatusConfirmed || order.PaymentStatus == status {
		return false, nil
	}
	order.PaymentStatus = status
	order.UpdatedAt = at
	return true, nil
}

func (m *mockMerchRepo) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	return m.UpdateStatus(ctx, bookingRef, status, at)
}

type mockEmailService struct {
	sent []*domain.RegistrationConfirmedEmailData
}

func (m *mockEmailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	m.sent = append(m.sent, data)
	return nil
}
