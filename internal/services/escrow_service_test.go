package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/events"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/rbac"
	"go.uber.org/zap"
)

const testContract = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

// In-memory fakes for the escrow collaborators.

type fakeEscrowStore struct {
	escrows map[uuid.UUID]*models.Escrow
}

func newFakeEscrowStore() *fakeEscrowStore {
	return &fakeEscrowStore{escrows: map[uuid.UUID]*models.Escrow{}}
}

func (f *fakeEscrowStore) Create(_ context.Context, e *models.Escrow) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	f.escrows[e.ID] = &cp
	return nil
}

func (f *fakeEscrowStore) GetByID(_ context.Context, id uuid.UUID) (*models.Escrow, error) {
	e, ok := f.escrows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEscrowStore) ListForUser(_ context.Context, userID uuid.UUID) ([]models.EscrowWithRefs, error) {
	out := []models.EscrowWithRefs{}
	for _, e := range f.escrows {
		if e.BuyerID == userID || e.SellerID == userID {
			out = append(out, models.EscrowWithRefs{Escrow: *e})
		}
	}
	return out, nil
}

func (f *fakeEscrowStore) SetHeld(_ context.Context, id uuid.UUID, contractAddress string) (int64, error) {
	e, ok := f.escrows[id]
	if !ok || e.Status != models.EscrowStatusPending {
		return 0, nil
	}
	e.Status = models.EscrowStatusHeld
	e.ContractAddress = contractAddress
	return 1, nil
}

func (f *fakeEscrowStore) SetContractAddress(_ context.Context, id uuid.UUID, contractAddress string) (int64, error) {
	e, ok := f.escrows[id]
	if !ok {
		return 0, nil
	}
	e.ContractAddress = contractAddress
	return 1, nil
}

func (f *fakeEscrowStore) SetStatusFromHeld(_ context.Context, id uuid.UUID, to string) (int64, error) {
	e, ok := f.escrows[id]
	if !ok || e.Status != models.EscrowStatusHeld {
		return 0, nil
	}
	e.Status = to
	return 1, nil
}

func (f *fakeEscrowStore) SoftDeleteDangling(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeProductReader struct {
	products map[uuid.UUID]*models.ProductWithRefs
}

func (f *fakeProductReader) GetByID(_ context.Context, id uuid.UUID) (*models.ProductWithRefs, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeOrderCounter struct{ calls int }

func (f *fakeOrderCounter) IncrementOrderCounters(_ context.Context, _, _ uuid.UUID) error {
	f.calls++
	return nil
}

type fakeAuditLog struct{ entries []*models.AuditLog }

func (f *fakeAuditLog) Log(_ context.Context, entry *models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct{ sent []uuid.UUID }

func (f *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, _, _ string) {
	f.sent = append(f.sent, userID)
}

type fakePublisher struct{ events []events.Event }

func (f *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	f.events = append(f.events, event)
	return nil
}

type escrowFixture struct {
	svc     *EscrowService
	store   *fakeEscrowStore
	buyer   uuid.UUID
	seller  uuid.UUID
	product *models.ProductWithRefs
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()
	buyer, seller := uuid.New(), uuid.New()
	product := &models.ProductWithRefs{Product: models.Product{
		ID:           uuid.New(),
		Name:         "Hardware Wallet",
		Amount:       3,
		Price:        10,
		PaymentToken: models.TokenETH,
		OwnerID:      seller,
	}}
	store := newFakeEscrowStore()
	svc := NewEscrowService(
		store,
		&fakeProductReader{products: map[uuid.UUID]*models.ProductWithRefs{product.ID: product}},
		&fakeOrderCounter{},
		&fakeAuditLog{},
		&fakeNotifier{},
		&fakePublisher{},
		zap.NewNop(),
	)
	return &escrowFixture{svc: svc, store: store, buyer: buyer, seller: seller, product: product}
}

// seed puts an escrow directly into the store, bypassing Create.
func (f *escrowFixture) seed(t *testing.T, status string) *models.Escrow {
	t.Helper()
	e := &models.Escrow{
		ProductID:       f.product.ID,
		BuyerID:         f.buyer,
		SellerID:        f.seller,
		Amount:          25,
		PaymentToken:    models.TokenUSDT,
		Quantity:        1,
		Status:          status,
		ContractAddress: models.ContractAddressPending,
	}
	if status != models.EscrowStatusPending {
		e.ContractAddress = testContract
	}
	if err := f.store.Create(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	return e
}

func (f *escrowFixture) stored(t *testing.T, id uuid.UUID) *models.Escrow {
	t.Helper()
	e, err := f.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("escrow %s not in store: %v", id, err)
	}
	return e
}

func TestEscrowCreate_StoresClientAmountAndToken(t *testing.T) {
	f := newEscrowFixture(t)

	// The quoted amount is what the contract will hold; it is not
	// derived from the product price.
	e, err := f.svc.Create(context.Background(), f.buyer, f.product.ID, 123.45, models.TokenUSDT, 2)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if e.Amount != 123.45 {
		t.Errorf("amount = %v, want 123.45", e.Amount)
	}
	if e.PaymentToken != models.TokenUSDT {
		t.Errorf("payment token = %q, want USDT", e.PaymentToken)
	}
	if e.SellerID != f.seller {
		t.Errorf("seller = %s, want product owner", e.SellerID)
	}
	if e.Status != models.EscrowStatusPending {
		t.Errorf("status = %q, want pending", e.Status)
	}
	if e.ContractAddress != models.ContractAddressPending {
		t.Errorf("contract address = %q, want sentinel", e.ContractAddress)
	}

	got := f.stored(t, e.ID)
	if got.Amount != 123.45 || got.PaymentToken != models.TokenUSDT {
		t.Errorf("stored amount/token = %v/%q", got.Amount, got.PaymentToken)
	}
}

func TestEscrowCreate_RequiredFields(t *testing.T) {
	f := newEscrowFixture(t)
	tests := []struct {
		name     string
		amount   float64
		token    string
		quantity int
	}{
		{"zero amount", 0, models.TokenETH, 1},
		{"negative amount", -5, models.TokenETH, 1},
		{"empty token", 10, "", 1},
		{"zero quantity", 10, models.TokenETH, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.buyer, f.product.ID, tt.amount, tt.token, tt.quantity)
			if !errors.Is(err, ErrBadRequest) {
				t.Fatalf("err = %v, want bad request", err)
			}
		})
	}
	if len(f.store.escrows) != 0 {
		t.Errorf("%d escrows stored after rejected creates", len(f.store.escrows))
	}
}

func TestEscrowCreate_UnknownToken(t *testing.T) {
	f := newEscrowFixture(t)
	_, err := f.svc.Create(context.Background(), f.buyer, f.product.ID, 10, "DOGE", 1)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestEscrowCreate_OwnProduct(t *testing.T) {
	f := newEscrowFixture(t)
	_, err := f.svc.Create(context.Background(), f.seller, f.product.ID, 10, models.TokenETH, 1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestEscrowCreate_MissingProduct(t *testing.T) {
	f := newEscrowFixture(t)
	_, err := f.svc.Create(context.Background(), f.buyer, uuid.New(), 10, models.TokenETH, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestEscrowCreate_NoStockLimit(t *testing.T) {
	f := newEscrowFixture(t)

	// Inventory is advisory: a quantity above the listed amount is
	// still a valid order.
	if _, err := f.svc.Create(context.Background(), f.buyer, f.product.ID, 10, models.TokenETH, f.product.Amount+5); err != nil {
		t.Fatalf("create failed: %v", err)
	}
}

func TestEscrowUpdate_AddressOnly(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	got, err := f.svc.Update(context.Background(), e.ID, f.buyer, "", testContract)
	if err != nil {
		t.Fatalf("address-only update failed: %v", err)
	}
	if got.ContractAddress != testContract {
		t.Errorf("contract address = %q, want %q", got.ContractAddress, testContract)
	}
	if got.Status != models.EscrowStatusPending {
		t.Errorf("status = %q, address update must not touch it", got.Status)
	}
	if s := f.stored(t, e.ID); s.Status != models.EscrowStatusPending || s.ContractAddress != testContract {
		t.Errorf("stored = %q/%q", s.Status, s.ContractAddress)
	}
}

func TestEscrowUpdate_StatusOnly(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	got, err := f.svc.Update(context.Background(), e.ID, f.buyer, models.EscrowStatusHeld, "")
	if err != nil {
		t.Fatalf("status-only update failed: %v", err)
	}
	if got.Status != models.EscrowStatusHeld {
		t.Errorf("status = %q, want held", got.Status)
	}
	// No address sent, so the recorded one stays.
	if got.ContractAddress != models.ContractAddressPending {
		t.Errorf("contract address = %q, want sentinel kept", got.ContractAddress)
	}
}

func TestEscrowUpdate_StatusAndAddress(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	got, err := f.svc.Update(context.Background(), e.ID, f.buyer, models.EscrowStatusHeld, testContract)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != models.EscrowStatusHeld || got.ContractAddress != testContract {
		t.Errorf("got %q/%q, want held/%q", got.Status, got.ContractAddress, testContract)
	}
}

func TestEscrowUpdate_EmptyBodyIsNoop(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	got, err := f.svc.Update(context.Background(), e.ID, f.buyer, "", "")
	if err != nil {
		t.Fatalf("empty update failed: %v", err)
	}
	if got.Status != models.EscrowStatusPending || got.ContractAddress != models.ContractAddressPending {
		t.Errorf("no-op update changed the escrow: %q/%q", got.Status, got.ContractAddress)
	}
}

func TestEscrowUpdate_RejectsOtherStatuses(t *testing.T) {
	f := newEscrowFixture(t)
	for _, status := range []string{models.EscrowStatusReleased, models.EscrowStatusRefunded, models.EscrowStatusDisputed, "bogus"} {
		e := f.seed(t, models.EscrowStatusPending)
		_, err := f.svc.Update(context.Background(), e.ID, f.buyer, status, "")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("status %q: err = %v, want invalid transition", status, err)
		}
		if s := f.stored(t, e.ID); s.Status != models.EscrowStatusPending {
			t.Errorf("status %q: escrow left %q after rejected update", status, s.Status)
		}
	}
}

func TestEscrowUpdate_RejectsFromNonPending(t *testing.T) {
	f := newEscrowFixture(t)
	for _, from := range []string{models.EscrowStatusHeld, models.EscrowStatusReleased, models.EscrowStatusRefunded} {
		e := f.seed(t, from)
		_, err := f.svc.Update(context.Background(), e.ID, f.buyer, models.EscrowStatusHeld, "")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("from %q: err = %v, want invalid transition", from, err)
		}
		if s := f.stored(t, e.ID); s.Status != from {
			t.Errorf("from %q: escrow left %q after rejected update", from, s.Status)
		}
	}
}

func TestEscrowUpdate_BadAddress(t *testing.T) {
	f := newEscrowFixture(t)
	for _, addr := range []string{"nonsense", "0x1234", "8ba1f109551bD432803012645Ac136ddd64DBA72zz"} {
		e := f.seed(t, models.EscrowStatusPending)
		_, err := f.svc.Update(context.Background(), e.ID, f.buyer, models.EscrowStatusHeld, addr)
		if !errors.Is(err, ErrBadRequest) {
			t.Fatalf("addr %q: err = %v, want bad request", addr, err)
		}
		if s := f.stored(t, e.ID); s.Status != models.EscrowStatusPending || s.ContractAddress != models.ContractAddressPending {
			t.Errorf("addr %q: escrow mutated to %q/%q after rejected update", addr, s.Status, s.ContractAddress)
		}
	}
}

func TestEscrowUpdate_SellerForbidden(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	_, err := f.svc.Update(context.Background(), e.ID, f.seller, models.EscrowStatusHeld, testContract)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if s := f.stored(t, e.ID); s.Status != models.EscrowStatusPending {
		t.Errorf("escrow left %q after forbidden update", s.Status)
	}
}

func TestEscrowUpdate_StrangerSeesNotFound(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	_, err := f.svc.Update(context.Background(), e.ID, uuid.New(), models.EscrowStatusHeld, testContract)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestEscrowRelease(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusHeld)

	got, err := f.svc.Release(context.Background(), e.ID, f.buyer)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if got.Status != models.EscrowStatusReleased {
		t.Errorf("status = %q, want released", got.Status)
	}
}

func TestEscrowRelease_SellerForbidden(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusHeld)

	_, err := f.svc.Release(context.Background(), e.ID, f.seller)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if s := f.stored(t, e.ID); s.Status != models.EscrowStatusHeld {
		t.Errorf("escrow left %q after forbidden release", s.Status)
	}
}

func TestEscrowRelease_WrongStatus(t *testing.T) {
	f := newEscrowFixture(t)
	for _, from := range []string{models.EscrowStatusPending, models.EscrowStatusReleased, models.EscrowStatusRefunded} {
		e := f.seed(t, from)
		_, err := f.svc.Release(context.Background(), e.ID, f.buyer)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("from %q: err = %v, want invalid transition", from, err)
		}
		if s := f.stored(t, e.ID); s.Status != from {
			t.Errorf("from %q: escrow left %q after rejected release", from, s.Status)
		}
	}
}

func TestEscrowRefund(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusHeld)

	got, err := f.svc.Refund(context.Background(), e.ID, f.seller)
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if got.Status != models.EscrowStatusRefunded {
		t.Errorf("status = %q, want refunded", got.Status)
	}
}

func TestEscrowRefund_BuyerForbidden(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusHeld)

	_, err := f.svc.Refund(context.Background(), e.ID, f.buyer)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if s := f.stored(t, e.ID); s.Status != models.EscrowStatusHeld {
		t.Errorf("escrow left %q after forbidden refund", s.Status)
	}
}

func TestEscrowRefund_AfterRelease(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusHeld)

	if _, err := f.svc.Release(context.Background(), e.ID, f.buyer); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	_, err := f.svc.Refund(context.Background(), e.ID, f.seller)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
	if s := f.stored(t, e.ID); s.Status != models.EscrowStatusReleased {
		t.Errorf("escrow left %q, released is terminal", s.Status)
	}
}

func TestEscrowGetByID_PartyOnly(t *testing.T) {
	f := newEscrowFixture(t)
	e := f.seed(t, models.EscrowStatusPending)

	if _, err := f.svc.GetByID(context.Background(), e.ID, f.buyer); err != nil {
		t.Errorf("buyer get failed: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), e.ID, f.seller); err != nil {
		t.Errorf("seller get failed: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), e.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger get err = %v, want not found", err)
	}
}

func TestEscrowRole(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	stranger := uuid.New()
	e := &models.Escrow{BuyerID: buyer, SellerID: seller}

	if role, ok := escrowRole(e, buyer); !ok || role != rbac.RoleBuyer {
		t.Errorf("buyer role = %q, ok = %v", role, ok)
	}
	if role, ok := escrowRole(e, seller); !ok || role != rbac.RoleSeller {
		t.Errorf("seller role = %q, ok = %v", role, ok)
	}
	if _, ok := escrowRole(e, stranger); ok {
		t.Error("stranger should not be a party")
	}
}

func TestEscrowRolePermissions(t *testing.T) {
	// The buyer funds and settles; the seller only returns money.
	if !rbac.HasPermission(rbac.RoleBuyer, rbac.PermHoldEscrow) {
		t.Error("buyer must be able to report deployment")
	}
	if !rbac.HasPermission(rbac.RoleBuyer, rbac.PermReleaseEscrow) {
		t.Error("buyer must be able to release")
	}
	if rbac.HasPermission(rbac.RoleBuyer, rbac.PermRefundEscrow) {
		t.Error("buyer must not refund")
	}
	if !rbac.HasPermission(rbac.RoleSeller, rbac.PermRefundEscrow) {
		t.Error("seller must be able to refund")
	}
	if rbac.HasPermission(rbac.RoleSeller, rbac.PermReleaseEscrow) {
		t.Error("seller must not release")
	}
}
