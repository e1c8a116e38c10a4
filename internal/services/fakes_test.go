package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

var (
	errCardDeclined   = errors.New("card declined")
	errAttachDeclined = errors.New("payment method rejected")
)

// In-memory fakes for the repository and infrastructure interfaces. They
// mirror the semantics of the real implementations closely enough for the
// service tests: the bid cache applies the same price-plus-increment rule as
// the Lua script, and the payment repo retires authorizations the way the
// transactional MySQL implementation does.

type memAuctionRepo struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
}

func newMemAuctionRepo(auctions ...*domain.Auction) *memAuctionRepo {
	r := &memAuctionRepo{auctions: make(map[string]*domain.Auction)}
	for _, a := range auctions {
		copied := *a
		r.auctions[a.ID] = &copied
	}
	return r
}

func (r *memAuctionRepo) CreateAuction(_ context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *auction
	r.auctions[auction.ID] = &copied
	return nil
}

func (r *memAuctionRepo) GetAuction(_ context.Context, auctionID string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *auction
	return &copied, nil
}

func (r *memAuctionRepo) ListAuctions(_ context.Context, status *domain.AuctionStatus, category string) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Auction
	for _, a := range r.auctions {
		if status != nil && a.Status != *status {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memAuctionRepo) UpdateAuctionStatus(_ context.Context, auctionID string, status domain.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	auction.Status = status
	return nil
}

func (r *memAuctionRepo) RecordBid(_ context.Context, auctionID, bidderID string, amount float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return false, domain.ErrAuctionNotFound
	}
	if auction.CurrentPrice >= amount {
		return false, nil
	}
	auction.CurrentPrice = amount
	auction.CurrentBidderID = bidderID
	auction.BidCount++
	return true, nil
}

func (r *memAuctionRepo) SetWinner(_ context.Context, auctionID string, status domain.AuctionStatus, winnerID string, finalPrice float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return false, domain.ErrAuctionNotFound
	}
	if auction.Status != domain.AuctionActive {
		return false, nil
	}
	auction.Status = status
	auction.WinnerID = winnerID
	auction.FinalPrice = finalPrice
	return true, nil
}

func (r *memAuctionRepo) UpdateEndTime(_ context.Context, auctionID string, endTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	auction.EndTime = endTime
	return nil
}

func (r *memAuctionRepo) AdjustWatchCount(_ context.Context, auctionID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	auction.WatchCount += delta
	return nil
}

type memBidRepo struct {
	mu   sync.Mutex
	bids []*domain.Bid
}

func (r *memBidRepo) SaveBid(_ context.Context, bid *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *bid
	r.bids = append(r.bids, &copied)
	return nil
}

func (r *memBidRepo) GetBidsForAuction(_ context.Context, auctionID string) ([]*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Bid
	for _, b := range r.bids {
		if b.AuctionID == auctionID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		copied := *u
		r.users[u.ID] = &copied
	}
	return r
}

func (r *memUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdatePaymentMethod(_ context.Context, userID, customerID, paymentMethodID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ProviderCustomerID = customerID
	user.PaymentMethodID = paymentMethodID
	user.PaymentVerified = verified
	return nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.BidPayment
}

func newMemPaymentRepo(payments ...*domain.BidPayment) *memPaymentRepo {
	r := &memPaymentRepo{payments: make(map[string]*domain.BidPayment)}
	for _, p := range payments {
		copied := *p
		r.payments[p.ID] = &copied
	}
	return r
}

func (r *memPaymentRepo) CreatePayment(_ context.Context, payment *domain.BidPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *memPaymentRepo) UpdatePayment(_ context.Context, paymentID string, status domain.PaymentStatus, providerIntentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	payment.Status = status
	if providerIntentID != "" {
		payment.ProviderIntentID = providerIntentID
	}
	return nil
}

func (r *memPaymentRepo) GetPaymentsByUserAndStatus(_ context.Context, userID string, status domain.PaymentStatus) ([]*domain.BidPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BidPayment
	for _, p := range r.payments {
		if p.UserID == userID && p.Status == status {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) GetAuthorization(_ context.Context, auctionID, userID string) (*domain.BidPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.AuctionID == auctionID && p.UserID == userID &&
			p.Type == domain.PaymentBidAuthorization && p.Status == domain.PaymentRequiresCapture {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *memPaymentRepo) RetireAuthorizations(_ context.Context, userID string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	canceled, replaced := 0, 0
	for _, p := range r.payments {
		if p.UserID != userID || p.Type != domain.PaymentBidAuthorization {
			continue
		}
		switch p.Status {
		case domain.PaymentRequiresCapture:
			p.Status = domain.PaymentCanceled
			canceled++
		case domain.PaymentSucceeded:
			p.Status = domain.PaymentReplaced
			replaced++
		}
	}
	return canceled, replaced, nil
}

func (r *memPaymentRepo) get(paymentID string) *domain.BidPayment {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[paymentID]
	if !ok {
		return nil
	}
	copied := *payment
	return &copied
}

type memOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*domain.Offer
}

func newMemOfferRepo(offers ...*domain.Offer) *memOfferRepo {
	r := &memOfferRepo{offers: make(map[string]*domain.Offer)}
	for _, o := range offers {
		copied := *o
		r.offers[o.ID] = &copied
	}
	return r
}

func (r *memOfferRepo) CreateOffer(_ context.Context, offer *domain.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *offer
	r.offers[offer.ID] = &copied
	return nil
}

func (r *memOfferRepo) GetOffer(_ context.Context, offerID string) (*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[offerID]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	copied := *offer
	return &copied, nil
}

func (r *memOfferRepo) GetOffersForAuction(_ context.Context, auctionID string) ([]*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Offer
	for _, o := range r.offers {
		if o.AuctionID == auctionID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memOfferRepo) UpdateOfferStatus(_ context.Context, offerID string, status domain.OfferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[offerID]
	if !ok {
		return domain.ErrOfferNotFound
	}
	offer.Status = status
	return nil
}

func (r *memOfferRepo) RejectPendingOffers(_ context.Context, auctionID, exceptOfferID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.offers {
		if o.AuctionID == auctionID && o.ID != exceptOfferID && o.Status == domain.OfferPending {
			o.Status = domain.OfferRejected
		}
	}
	return nil
}

type memCategoryRepo struct {
	mu          sync.Mutex
	commissions map[string]*domain.Commission
}

func newMemCategoryRepo(commissions ...*domain.Commission) *memCategoryRepo {
	r := &memCategoryRepo{commissions: make(map[string]*domain.Commission)}
	for _, c := range commissions {
		copied := *c
		r.commissions[c.Category] = &copied
	}
	return r
}

func (r *memCategoryRepo) CreateCategory(_ context.Context, _ *domain.Category) error { return nil }

func (r *memCategoryRepo) ListCategories(_ context.Context) ([]*domain.Category, error) {
	return nil, nil
}

func (r *memCategoryRepo) GetCommission(_ context.Context, category string) (*domain.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	commission, ok := r.commissions[category]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	copied := *commission
	return &copied, nil
}

func (r *memCategoryRepo) UpsertCommission(_ context.Context, commission *domain.Commission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *commission
	r.commissions[commission.Category] = &copied
	return nil
}

// fakeBidCache applies the same acceptance rule as the Lua script: every bid
// must clear the stored price plus the increment.
type fakeBidCache struct {
	mu    sync.Mutex
	state map[string]*domain.LocalAuctionCache
}

func newFakeBidCache() *fakeBidCache {
	return &fakeBidCache{state: make(map[string]*domain.LocalAuctionCache)}
}

func (c *fakeBidCache) InitializeBidding(_ context.Context, auctionID string, startingBid, increment float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[auctionID] = &domain.LocalAuctionCache{
		AuctionID:  auctionID,
		CurrentBid: startingBid,
		Increment:  increment,
	}
	return nil
}

func (c *fakeBidCache) AtomicBidUpdate(_ context.Context, auctionID, userID string, amount float64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.state[auctionID]
	if !ok {
		return false, domain.ErrAuctionNotFound
	}
	if amount < entry.CurrentBid+entry.Increment {
		return false, nil
	}
	entry.CurrentBid = amount
	entry.BidderID = userID
	entry.LastUpdated = time.Now()
	return true, nil
}

func (c *fakeBidCache) GetCurrentBid(_ context.Context, auctionID string) (*domain.LocalAuctionCache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.state[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *entry
	return &copied, nil
}

type fakeStateCache struct {
	mu       sync.Mutex
	statuses map[string]domain.AuctionStatus
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{statuses: make(map[string]domain.AuctionStatus)}
}

func (c *fakeStateCache) SetAuctionStatus(_ context.Context, auctionID string, status domain.AuctionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[auctionID] = status
	return nil
}

func (c *fakeStateCache) GetAuctionStatus(_ context.Context, auctionID string) (domain.AuctionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[auctionID], nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*domain.BidEvent
}

func (p *capturingPublisher) PublishBidEvent(_ context.Context, event *domain.BidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(eventType domain.BidEventType) []*domain.BidEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*domain.BidEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	canceled  map[string]bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		scheduled: make(map[string]time.Time),
		canceled:  make(map[string]bool),
	}
}

func (s *fakeScheduler) ScheduleAuctionEnd(_ context.Context, auctionID string, endTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[auctionID] = endTime
	return nil
}

func (s *fakeScheduler) RescheduleAuctionEnd(_ context.Context, auctionID string, newEndTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[auctionID] = newEndTime
	return nil
}

func (s *fakeScheduler) CancelSchedule(_ context.Context, auctionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canceled[auctionID] = true
	return nil
}

func (s *fakeScheduler) Start(_ context.Context) error { return nil }
func (s *fakeScheduler) Stop() error                   { return nil }

// fakeProvider counts calls and can be told to fail specific operations.
type fakeProvider struct {
	mu sync.Mutex

	failAuthorize bool
	failCapture   bool
	failCancel    bool
	failCharge    bool
	failAttach    bool

	authorizations int
	captures       int
	cancels        int
	charges        int
	attached       []string

	nextIntent int
}

func (p *fakeProvider) intentID() string {
	p.nextIntent++
	return fmt.Sprintf("pi_%d", p.nextIntent)
}

func (p *fakeProvider) CreateCustomer(_ context.Context, _ string) (string, error) {
	return "cus_test", nil
}

func (p *fakeProvider) AttachPaymentMethod(_ context.Context, _, paymentMethodID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAttach {
		return errAttachDeclined
	}
	p.attached = append(p.attached, paymentMethodID)
	return nil
}

func (p *fakeProvider) CreateAuthorization(_ context.Context, _, _ string, amount float64, _ map[string]string) (*domain.ProviderIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAuthorize {
		return nil, errCardDeclined
	}
	p.authorizations++
	return &domain.ProviderIntent{ID: p.intentID(), Status: domain.IntentRequiresCapture, Amount: amount}, nil
}

func (p *fakeProvider) CaptureAuthorization(_ context.Context, intentID string, amount float64) (*domain.ProviderIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCapture {
		return nil, errCardDeclined
	}
	p.captures++
	return &domain.ProviderIntent{ID: intentID, Status: domain.IntentSucceeded, Amount: amount}, nil
}

func (p *fakeProvider) CancelAuthorization(_ context.Context, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels++
	if p.failCancel {
		return errCardDeclined
	}
	return nil
}

func (p *fakeProvider) CreateCharge(_ context.Context, _, _ string, amount float64, _ map[string]string) (*domain.ProviderIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCharge {
		return nil, errCardDeclined
	}
	p.charges++
	return &domain.ProviderIntent{ID: p.intentID(), Status: domain.IntentSucceeded, Amount: amount}, nil
}

type fakeConnManager struct {
	mu     sync.Mutex
	closed []string
}

func (m *fakeConnManager) RegisterConnection(_, _ string, _ domain.WebSocketConnection) error {
	return nil
}
func (m *fakeConnManager) UnregisterConnection(_, _ string) error           { return nil }
func (m *fakeConnManager) BroadcastToAuction(_ string, _ interface{}) error { return nil }
func (m *fakeConnManager) NotifyUser(_ string, _ interface{}) error         { return nil }
func (m *fakeConnManager) CloseAndUnregisterConnections(auctionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, auctionID)
	return nil
}

// stubPolicy is the default banded increment table without the Redis backing.
type stubPolicy struct{}

func (stubPolicy) GetIncrement(amount float64) float64 {
	if amount < 1000 {
		return 25
	}
	if amount < 10000 {
		return 50
	}
	return 100
}

func (p stubPolicy) GetMinimumBid(currentAmount float64) float64 {
	return currentAmount + p.GetIncrement(currentAmount)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}
