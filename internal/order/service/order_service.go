package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	coupondomain "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/pricing"
	productdomain "github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
)

var (
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrNotOrderOwner       = errors.New("order does not belong to this user")
	ErrOrderNotCancellable = errors.New("cancellation is only allowed while the order is processing")
)

// Tarif tetap yang dibekukan ke order saat checkout.
var (
	taxRate               = decimal.NewFromFloat(0.18)
	flatShippingPrice     = decimal.NewFromInt(49)
	freeShippingThreshold = decimal.NewFromInt(1000)
)

// Catalog me-resolve harga otoritatif dari katalog produk.
type Catalog interface {
	ResolveLine(ctx context.Context, productID string, variantID *string) (*productdomain.Product, *productdomain.Variant, error)
}

// CouponValidator memvalidasi kode kupon menjadi deskriptor diskon.
type CouponValidator interface {
	Apply(ctx context.Context, code string) (*coupondomain.AppliedCoupon, error)
}

// PaymentClient adalah kolaborator gateway pembayaran eksternal.
type PaymentClient interface {
	CreateRefund(ctx context.Context, paymentID string) (string, error)
}

// Mailer mengirim notifikasi email. Fire-and-forget: kegagalan hanya dicatat.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// UserDirectory mencari alamat email pemilik order untuk notifikasi.
type UserDirectory interface {
	GetEmail(ctx context.Context, userID string) (string, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req domain.CreateOrderRequest, idempotencyKey string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	MarkPaid(ctx context.Context, orderID, requesterID string, req domain.MarkPaidRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (*domain.Order, error)
	RequestCancellation(ctx context.Context, orderID, requesterID, reason string) (*domain.Order, error)
	ResolveCancellation(ctx context.Context, orderID, action string) (*domain.Order, error)
}

type orderServiceImpl struct {
	orderRepo        repository.OrderRepository
	catalog          Catalog
	coupons          CouponValidator
	payments         PaymentClient
	mailer           Mailer
	users            UserDirectory
	returnWindowDays int
}

func NewOrderService(or repository.OrderRepository, catalog Catalog, coupons CouponValidator,
	payments PaymentClient, mailer Mailer, users UserDirectory, returnWindowDays int) OrderService {
	return &orderServiceImpl{
		orderRepo:        or,
		catalog:          catalog,
		coupons:          coupons,
		payments:         payments,
		mailer:           mailer,
		users:            users,
		returnWindowDays: returnWindowDays,
	}
}

// CreateOrder membuat order dari snapshot keranjang. Harga selalu di-resolve
// ulang dari katalog; total dari client tidak pernah dipercaya. Idempotency key
// (opsional) mencegah retry client menggandakan order.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, req domain.CreateOrderRequest, idempotencyKey string) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	if idempotencyKey != "" {
		existing, err := s.orderRepo.GetOrderByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			logger.Info(fmt.Sprintf("CreateOrder: idempotency key replay, returning existing order %s", existing.ID))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
	}

	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	orderItems := make([]domain.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		product, variant, err := s.catalog.ResolveLine(ctx, itemReq.ProductID, itemReq.VariantID)
		if err != nil {
			return nil, err
		}

		line := pricing.LineItem{BasePrice: product.Price, Quantity: itemReq.Quantity}
		name := product.Name
		if variant != nil {
			line.VariantDelta = variant.PriceDelta
			name = product.Name + " (" + variant.Name + ")"
		}
		lineItems = append(lineItems, line)

		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			VariantID: itemReq.VariantID,
			Name:      name,
			Image:     product.Image,
			UnitPrice: line.EffectiveUnitPrice(),
			Quantity:  itemReq.Quantity,
		})
	}

	var discount *pricing.Discount
	var couponApplied string
	if req.CouponCode != nil && *req.CouponCode != "" {
		applied, err := s.coupons.Apply(ctx, *req.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = applied.ToDiscount()
		couponApplied = applied.Code
	}

	totals := pricing.ComputeTotals(lineItems, discount)
	taxPrice := totals.GrandTotal.Mul(taxRate).Round(2)
	shippingPrice := flatShippingPrice
	if totals.GrandTotal.GreaterThanOrEqual(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	newOrder := &domain.Order{
		UserID:          userID,
		Status:          domain.StatusProcessing,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      totals.Subtotal,
		DiscountAmount:  totals.Discount,
		TaxPrice:        taxPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      totals.GrandTotal.Add(taxPrice).Add(shippingPrice),
		CouponApplied:   couponApplied,
		IsPaid:          false,
	}
	if idempotencyKey != "" {
		newOrder.IdempotencyKey = &idempotencyKey
	}

	err := s.orderRepo.CreateOrderWithItems(ctx, newOrder, orderItems)
	if err != nil {
		// Balapan antara dua retry dengan key yang sama: insert kedua kalah
		// di unique constraint, kembalikan order yang menang.
		if errors.Is(err, repository.ErrDuplicateOrder) && idempotencyKey != "" {
			return s.orderRepo.GetOrderByIdempotencyKey(ctx, userID, idempotencyKey)
		}
		logger.Error("CreateOrder: failed to save order", err)
		return nil, err
	}

	return newOrder, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrdersForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByUserID(ctx, userID)
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListAllOrders(ctx)
}

func (s *orderServiceImpl) MarkPaid(ctx context.Context, orderID, requesterID string, req domain.MarkPaidRequest) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, ErrNotOrderOwner
	}

	err = s.orderRepo.MarkPaid(ctx, orderID, time.Now(), domain.PaymentResult{ID: req.PaymentID, Status: req.PaymentStatus})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// genericStatusTargets adalah status yang boleh di-set admin lewat endpoint
// generik. Status cancellation/return hanya berubah lewat workflow-nya sendiri.
var genericStatusTargets = map[domain.OrderStatus]bool{
	domain.StatusShipped:        true,
	domain.StatusOutForDelivery: true,
	domain.StatusDelivered:      true,
	domain.StatusCancelled:      true,
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !genericStatusTargets[newStatus] || !domain.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	if newStatus == domain.StatusDelivered {
		return s.markDelivered(ctx, order)
	}

	if err := s.orderRepo.TransitionStatus(ctx, orderID, order.Status, newStatus); err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) markDelivered(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	deliveredAt := time.Now()
	returnDeadline := deliveredAt.AddDate(0, 0, s.returnWindowDays)

	err := s.orderRepo.MarkDelivered(ctx, order.ID, order.Status, deliveredAt, returnDeadline)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, order.UserID, "Your Cycle Bazaar order has been delivered",
		fmt.Sprintf("<p>Order <b>%s</b> was delivered on %s.</p><p>Returns are accepted until %s.</p>",
			order.ID, deliveredAt.Format("2 Jan 2006"), returnDeadline.Format("2 Jan 2006")))

	return s.orderRepo.GetOrderByID(ctx, order.ID)
}

func (s *orderServiceImpl) RequestCancellation(ctx context.Context, orderID, requesterID, reason string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != domain.StatusProcessing {
		return nil, fmt.Errorf("%w: current status %s", ErrOrderNotCancellable, order.Status)
	}

	details := domain.CancellationDetails{
		Reason:      reason,
		Status:      domain.CancellationPending,
		RequestedAt: time.Now(),
	}
	if err := s.orderRepo.RequestCancellation(ctx, orderID, details); err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// ResolveCancellation (admin). Approve membatalkan order; kalau order sudah
// dibayar lewat gateway, refund dipicu best-effort: kegagalan refund dicatat
// dan dilaporkan ke user, TIDAK membatalkan transisi ke Cancelled.
func (s *orderServiceImpl) ResolveCancellation(ctx context.Context, orderID, action string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusCancellationRequested {
		return nil, fmt.Errorf("%w: current status %s", ErrInvalidTransition, order.Status)
	}

	if action == "reject" {
		if err := s.orderRepo.ResolveCancellation(ctx, orderID, domain.StatusProcessing, domain.CancellationRejected); err != nil {
			return nil, err
		}
		return s.orderRepo.GetOrderByID(ctx, orderID)
	}

	if err := s.orderRepo.ResolveCancellation(ctx, orderID, domain.StatusCancelled, domain.CancellationApproved); err != nil {
		return nil, err
	}

	if order.PaymentMethod == domain.PaymentGateway && order.IsPaid && order.PaymentResult != nil {
		refundID, refundErr := s.payments.CreateRefund(ctx, order.PaymentResult.ID)
		if refundErr != nil {
			logger.Error(fmt.Sprintf("ResolveCancellation: refund failed for order %s, needs manual review", orderID), refundErr)
			s.notifyOwner(ctx, order.UserID, "Refund for your cancelled order is pending",
				fmt.Sprintf("<p>Order <b>%s</b> was cancelled, but the automatic refund did not go through. Our team will process it manually.</p>", orderID))
		} else {
			logger.Info(fmt.Sprintf("ResolveCancellation: refund %s created for order %s", refundID, orderID))
			if err := s.orderRepo.MarkRefunded(ctx, orderID, time.Now()); err != nil {
				logger.Error("ResolveCancellation: failed to record refund", err)
			}
		}
	}

	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// notifyOwner mengirim email ke pemilik order. Best-effort: error di-log saja.
func (s *orderServiceImpl) notifyOwner(ctx context.Context, userID, subject, htmlBody string) {
	email, err := s.users.GetEmail(ctx, userID)
	if err != nil {
		logger.Error(fmt.Sprintf("notifyOwner: failed to look up email for user %s", userID), err)
		return
	}
	if err := s.mailer.Send(email, subject, htmlBody); err != nil {
		logger.Error(fmt.Sprintf("notifyOwner: failed to send '%s' to %s", subject, email), err)
	}
}
