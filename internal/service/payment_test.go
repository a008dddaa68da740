package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/gateway"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[uint]domain.Ticket
}

func (f *fakeTicketRepo) FindByID(_ context.Context, id uint) (domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}

	return ticket, nil
}

type fakeVoucherRepo struct {
	mu       sync.Mutex
	vouchers map[string]domain.Voucher
}

func (f *fakeVoucherRepo) FindByCode(_ context.Context, code string) (domain.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	voucher, ok := f.vouchers[code]
	if !ok {
		return domain.Voucher{}, repository.ErrVoucherNotFound
	}

	return voucher, nil
}

func (f *fakeVoucherRepo) byID(id uint) (domain.Voucher, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.vouchers {
		if v.ID == id {
			return v, true
		}
	}

	return domain.Voucher{}, false
}

func (f *fakeVoucherRepo) take(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for code, v := range f.vouchers {
		if v.ID == id {
			if !v.Active || v.Quota <= 0 {
				return false
			}
			v.Quota--
			f.vouchers[code] = v
			return true
		}
	}

	return false
}

func (f *fakeVoucherRepo) give(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for code, v := range f.vouchers {
		if v.ID == id {
			v.Quota++
			f.vouchers[code] = v
			return
		}
	}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]domain.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) setParticipantType(id uint, participantType string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user := f.users[id]
	user.ParticipantType = participantType
	f.users[id] = user
}

// fakePaymentRepo reproduces the transactional behavior of the real
// repository in memory: quota is reserved before the insert, a failing
// issue callback rolls everything back, and the settlement writes are
// compare-and-swap on the UNPAID status.
type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments map[uint]domain.Payment

	tickets  *fakeTicketRepo
	vouchers *fakeVoucherRepo
	users    *fakeUserRepo
}

func newFakePaymentRepo(tickets *fakeTicketRepo, vouchers *fakeVoucherRepo, users *fakeUserRepo) *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[uint]domain.Payment),
		tickets:  tickets,
		vouchers: vouchers,
		users:    users,
	}
}

func (f *fakePaymentRepo) CreateCheckout(ctx context.Context, payment domain.Payment, participantType string, issue func(domain.Payment) (repository.CheckoutRef, error)) (domain.Payment, error) {
	if payment.VoucherID != nil {
		if !f.vouchers.take(*payment.VoucherID) {
			return domain.Payment{}, repository.ErrVoucherQuotaExhausted
		}
	}

	f.mu.Lock()
	f.nextID++
	payment.ID = f.nextID
	payment.CreatedAt = time.Now()
	f.payments[payment.ID] = payment
	f.mu.Unlock()

	if participantType != "" {
		f.users.setParticipantType(payment.UserID, participantType)
	}

	if issue != nil {
		ref, err := issue(payment)
		if err != nil {
			f.mu.Lock()
			delete(f.payments, payment.ID)
			f.mu.Unlock()
			if payment.VoucherID != nil {
				f.vouchers.give(*payment.VoucherID)
			}

			return domain.Payment{}, err
		}

		payment.GatewayID = ref.GatewayID
		payment.GatewayTransactionID = ref.GatewayTransactionID
		payment.PaymentLink = ref.PaymentLink

		f.mu.Lock()
		f.payments[payment.ID] = payment
		f.mu.Unlock()
	}

	return payment, nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uint) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payment, ok := f.payments[id]
	if !ok {
		return domain.Payment{}, repository.ErrPaymentNotFound
	}

	payment.Ticket = f.tickets.tickets[payment.TicketID]
	if payment.VoucherID != nil {
		if voucher, ok := f.vouchers.byID(*payment.VoucherID); ok {
			payment.Voucher = &voucher
		}
	}

	return payment, nil
}

func (f *fakePaymentRepo) FindByUserID(_ context.Context, userID uint) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var payments []domain.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			payments = append(payments, p)
		}
	}

	return payments, nil
}

func (f *fakePaymentRepo) FindByGatewayRef(_ context.Context, transactionID, gatewayID string) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.payments {
		if transactionID != "" && p.GatewayTransactionID == transactionID {
			return p, nil
		}
	}
	for _, p := range f.payments {
		if gatewayID != "" && p.GatewayID == gatewayID {
			return p, nil
		}
	}

	return domain.Payment{}, repository.ErrPaymentNotFound
}

func (f *fakePaymentRepo) HasPaid(_ context.Context, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.payments {
		if p.UserID == userID && p.Status == domain.PaymentStatusPaid {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakePaymentRepo) SettlePaid(_ context.Context, id, userID uint, participantType string, now time.Time) (bool, []domain.Payment, error) {
	f.mu.Lock()
	payment, ok := f.payments[id]
	if !ok || payment.Status != domain.PaymentStatusUnpaid {
		f.mu.Unlock()
		return false, nil, nil
	}

	payment.Status = domain.PaymentStatusPaid
	payment.PaidAt = &now
	f.payments[id] = payment

	var siblings []domain.Payment
	for sid, sibling := range f.payments {
		if sid == id || sibling.UserID != userID || sibling.Status != domain.PaymentStatusUnpaid {
			continue
		}

		sibling.Status = domain.PaymentStatusClosed
		sibling.ClosedAt = &now
		sibling.PaymentLink = ""
		f.payments[sid] = sibling
		siblings = append(siblings, sibling)
	}
	f.mu.Unlock()

	if participantType != "" {
		f.users.setParticipantType(userID, participantType)
	}

	return true, siblings, nil
}

func (f *fakePaymentRepo) SettleClosed(_ context.Context, id uint, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payment, ok := f.payments[id]
	if !ok || payment.Status != domain.PaymentStatusUnpaid {
		return false, nil
	}

	payment.Status = domain.PaymentStatusClosed
	payment.ClosedAt = &now
	payment.PaymentLink = ""
	f.payments[id] = payment

	return true, nil
}

type fakeGateway struct {
	mu sync.Mutex

	created       []gateway.CreateInvoiceRequest
	expired       []string
	invoiceStatus map[string]string

	createErr error
	getErr    error
}

func (f *fakeGateway) CreateInvoice(_ context.Context, req gateway.CreateInvoiceRequest) (gateway.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return gateway.Invoice{}, f.createErr
	}

	f.created = append(f.created, req)

	return gateway.Invoice{
		ID:            "inv-" + req.ExternalID,
		TransactionID: "txn-" + req.ExternalID,
		Status:        "PENDING",
		PaymentURL:    "https://checkout.example.com/" + req.ExternalID,
	}, nil
}

func (f *fakeGateway) GetInvoice(_ context.Context, id string) (gateway.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return gateway.Invoice{}, f.getErr
	}

	status, ok := f.invoiceStatus[id]
	if !ok {
		return gateway.Invoice{}, gateway.ErrInvoiceNotFound
	}

	return gateway.Invoice{ID: id, Status: status}, nil
}

func (f *fakeGateway) ExpireInvoice(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.expired = append(f.expired, id)

	return nil
}

type paymentFixture struct {
	svc      *PaymentService
	repo     *fakePaymentRepo
	tickets  *fakeTicketRepo
	vouchers *fakeVoucherRepo
	users    *fakeUserRepo
	gw       *fakeGateway
}

func newPaymentFixture() *paymentFixture {
	tickets := &fakeTicketRepo{
		tickets: map[uint]domain.Ticket{
			1: {ID: 1, Name: "Early Bird", Price: 500000, ParticipantType: "in-person", Active: true},
			2: {ID: 2, Name: "Patron", Price: 1500000, ParticipantType: "patron", Active: true},
			3: {ID: 3, Name: "Gone", Price: 300000, ParticipantType: "in-person", SoldOut: true, Active: true},
			4: {ID: 4, Name: "Hidden", Price: 300000, ParticipantType: "in-person", Active: false},
		},
	}
	vouchers := &fakeVoucherRepo{
		vouchers: map[string]domain.Voucher{
			"SPEAKER50": {ID: 10, Code: "SPEAKER50", Value: 50000, Quota: 5, Active: true},
			"FULLRIDE":  {ID: 11, Code: "FULLRIDE", Value: 600000, Quota: 2, ParticipantType: "speaker", Active: true},
			"OLDCODE":   {ID: 12, Code: "OLDCODE", Value: 50000, Quota: 5, Active: false},
			"DRAINED":   {ID: 13, Code: "DRAINED", Value: 50000, Quota: 0, Active: true},
			"VIPONLY":   {ID: 14, Code: "VIPONLY", Value: 50000, Quota: 5, Active: true, EmailWhitelist: []string{" Alice@Example.COM "}},
		},
	}
	users := &fakeUserRepo{
		users: map[uint]domain.User{
			1: {ID: 1, Email: "alice@example.com", EmailVerified: true, Phone: "+628111111111"},
			2: {ID: 2, Email: "bob@example.com", EmailVerified: true, Phone: ""},
			3: {ID: 3, Email: "carol@example.com", EmailVerified: false, Phone: "+628333333333"},
		},
	}
	repo := newFakePaymentRepo(tickets, vouchers, users)
	gw := &fakeGateway{invoiceStatus: make(map[string]string)}

	return &paymentFixture{
		svc:      NewPaymentService(repo, tickets, vouchers, users, gw, "https://pycon.example.com/done"),
		repo:     repo,
		tickets:  tickets,
		vouchers: vouchers,
		users:    users,
		gw:       gw,
	}
}

func TestCreatePayment_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		ticket  uint
		voucher string
		wantErr error
	}{
		{"unverified email", 3, 1, "", ErrMissingEmail},
		{"missing phone", 2, 1, "", ErrMissingPhone},
		{"unknown ticket", 1, 99, "", ErrTicketNotFound},
		{"inactive ticket", 1, 4, "", ErrTicketNotFound},
		{"sold out", 1, 3, "", ErrTicketSoldOut},
		{"unknown voucher", 1, 1, "NOPE", ErrVoucherNotFound},
		{"inactive voucher", 1, 1, "OLDCODE", ErrVoucherInactive},
		{"drained voucher", 1, 1, "DRAINED", ErrVoucherQuotaExhausted},
		{"not whitelisted", 2, 1, "VIPONLY", ErrVoucherEmailNotWhitelisted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			if tt.name == "not whitelisted" {
				f.users.users[2] = domain.User{ID: 2, Email: "bob@example.com", EmailVerified: true, Phone: "+62812"}
			}

			_, err := f.svc.CreatePayment(context.Background(), tt.userID, tt.ticket, tt.voucher)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.gw.created, "no invoice should be created on rejection")
		})
	}
}

func TestCreatePayment_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.CreatePayment(context.Background(), 1, 1, "FULLRIDE")
	require.NoError(t, err)

	_, err = f.svc.CreatePayment(context.Background(), 1, 1, "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestCreatePayment_IssuesInvoice(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "SPEAKER50")
	require.NoError(t, err)

	assert.Equal(t, 450000, payment.Amount)
	assert.Equal(t, domain.PaymentStatusUnpaid, payment.Status)
	assert.NotEmpty(t, payment.PaymentLink)
	assert.NotEmpty(t, payment.GatewayID)

	require.Len(t, f.gw.created, 1)
	assert.Equal(t, 450000, f.gw.created[0].Amount)
	assert.Equal(t, "alice@example.com", f.gw.created[0].PayerEmail)
	assert.Equal(t, "Early Bird", f.gw.created[0].Description)
	assert.Equal(t, "https://pycon.example.com/done", f.gw.created[0].RedirectURL)

	voucher, _ := f.vouchers.byID(10)
	assert.Equal(t, 4, voucher.Quota, "quota reserved at checkout")
}

func TestCreatePayment_FullDiscountSettlesImmediately(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "FULLRIDE")
	require.NoError(t, err)

	assert.Equal(t, 0, payment.Amount, "600000 discount on a 500000 ticket clamps to zero")
	assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	assert.Empty(t, payment.PaymentLink)
	assert.Empty(t, f.gw.created, "free payments never touch the gateway")

	user, _ := f.users.FindByID(context.Background(), 1)
	assert.Equal(t, "speaker", user.ParticipantType, "voucher override wins over ticket type")
}

func TestCreatePayment_GatewayFailureRollsBack(t *testing.T) {
	f := newPaymentFixture()
	f.gw.createErr = errors.New("provider down")

	_, err := f.svc.CreatePayment(context.Background(), 1, 1, "SPEAKER50")
	assert.ErrorIs(t, err, ErrGatewayError)

	payments, _ := f.repo.FindByUserID(context.Background(), 1)
	assert.Empty(t, payments, "failed checkout leaves no payment row")

	voucher, _ := f.vouchers.byID(10)
	assert.Equal(t, 5, voucher.Quota, "reserved quota is returned")
}

func TestValidateVoucher_CheckOrder(t *testing.T) {
	f := newPaymentFixture()

	// An inactive voucher with zero quota must report inactive first.
	f.vouchers.vouchers["BOTH"] = domain.Voucher{ID: 20, Code: "BOTH", Value: 1, Quota: 0, Active: false}

	_, err := f.svc.ValidateVoucher(context.Background(), "BOTH", "alice@example.com")
	assert.ErrorIs(t, err, ErrVoucherInactive)

	_, err = f.svc.ValidateVoucher(context.Background(), "DRAINED", "alice@example.com")
	assert.ErrorIs(t, err, ErrVoucherQuotaExhausted)
}

func TestValidateVoucher_WhitelistIsCaseInsensitive(t *testing.T) {
	f := newPaymentFixture()

	voucher, err := f.svc.ValidateVoucher(context.Background(), "VIPONLY", "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "VIPONLY", voucher.Code)

	_, err = f.svc.ValidateVoucher(context.Background(), "VIPONLY", "mallory@example.com")
	assert.ErrorIs(t, err, ErrVoucherEmailNotWhitelisted)
}

func TestGetPayment_OwnershipCheck(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)

	_, err = f.svc.GetPayment(context.Background(), 2, payment.ID, false)
	assert.ErrorIs(t, err, ErrPaymentNotFound, "other users see a 404, not a 403")

	got, err := f.svc.GetPayment(context.Background(), 2, payment.ID, true)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}

func TestGetPayment_PollReconcilesPaid(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)
	f.gw.invoiceStatus[payment.GatewayID] = "SETTLED"

	got, err := f.svc.GetPayment(context.Background(), 1, payment.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Status)
	assert.NotNil(t, got.PaidAt)

	user, _ := f.users.FindByID(context.Background(), 1)
	assert.Equal(t, "in-person", user.ParticipantType)
}

func TestGetPayment_PollFailureReturnsStoredState(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)
	f.gw.getErr = errors.New("timeout")

	got, err := f.svc.GetPayment(context.Background(), 1, payment.ID, false)
	require.NoError(t, err, "a provider outage must not break the detail view")
	assert.Equal(t, domain.PaymentStatusUnpaid, got.Status)
}

func TestGetPayment_UnrecognizedStatusIsNoOp(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)
	f.gw.invoiceStatus[payment.GatewayID] = "PENDING_REVIEW"

	got, err := f.svc.GetPayment(context.Background(), 1, payment.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, got.Status)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newPaymentFixture()

	err := f.svc.HandleWebhook(context.Background(), "invoice.created", "whatever", "", "PAID")
	assert.NoError(t, err, "unknown events are acknowledged without lookup")
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	f := newPaymentFixture()

	err := f.svc.HandleWebhook(context.Background(), WebhookEventPaymentReceived, "inv-x", "txn-x", "PAID")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestHandleWebhook_SettlesAndClosesSiblings(t *testing.T) {
	f := newPaymentFixture()

	first, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)
	second, err := f.svc.CreatePayment(context.Background(), 1, 2, "")
	require.NoError(t, err)

	err = f.svc.HandleWebhook(context.Background(), WebhookEventPaymentReceived, second.GatewayID, second.GatewayTransactionID, "PAID")
	require.NoError(t, err)

	settled, err := f.repo.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, settled.Status)

	closed, err := f.repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusClosed, closed.Status)
	assert.Empty(t, closed.PaymentLink, "closed payments lose their checkout link")

	assert.Equal(t, []string{first.GatewayID}, f.gw.expired, "the losing invoice is expired at the provider")

	user, _ := f.users.FindByID(context.Background(), 1)
	assert.Equal(t, "patron", user.ParticipantType)
}

func TestHandleWebhook_ReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)

	err = f.svc.HandleWebhook(context.Background(), WebhookEventPaymentReceived, payment.GatewayID, payment.GatewayTransactionID, "PAID")
	require.NoError(t, err)

	got, err := f.repo.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	firstPaidAt := got.PaidAt

	err = f.svc.HandleWebhook(context.Background(), WebhookEventPaymentReceived, payment.GatewayID, payment.GatewayTransactionID, "PAID")
	require.NoError(t, err)

	got, err = f.repo.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt, got.PaidAt, "a replay must not move the settlement time")
	assert.Empty(t, f.gw.expired)
}

func TestHandleWebhook_ExpiredClosesPayment(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.CreatePayment(context.Background(), 1, 1, "")
	require.NoError(t, err)

	err = f.svc.HandleWebhook(context.Background(), WebhookEventPaymentReceived, payment.GatewayID, payment.GatewayTransactionID, "EXPIRED")
	require.NoError(t, err)

	got, err := f.repo.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusClosed, got.Status)
	assert.NotNil(t, got.ClosedAt)
}

func TestCreatePayment_ConcurrentVoucherUse(t *testing.T) {
	f := newPaymentFixture()

	// Two quota units, five contenders with distinct accounts.
	for i := uint(10); i < 15; i++ {
		f.users.users[i] = domain.User{
			ID: i, Email: "u@example.com", EmailVerified: true, Phone: "+62812",
		}
	}

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := uint(10); i < 15; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.svc.CreatePayment(context.Background(), userID, 1, "FULLRIDE")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, exhausted int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrVoucherQuotaExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 2, ok)
	assert.Equal(t, 3, exhausted)

	voucher, _ := f.vouchers.byID(11)
	assert.Equal(t, 0, voucher.Quota)
}
