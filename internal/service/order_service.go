package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mariapr27/my-store-app/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderLine struct {
	ProductID    string
	ProductName  string
	ProductPrice float64
	Quantity     int
}

type CreateOrderInput struct {
	OrderNumber   string
	Customer      domain.CustomerInfo
	PaymentDate   string // dd/mm/yyyy as typed by the customer, may be empty
	Voucher       string
	IssuingBank   string
	Lines         []OrderLine
	Total         float64
	PaymentMethod domain.PaymentMethod
}

type OrderService struct {
	repo OrderRepository
	now  func() time.Time
}

func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo, now: time.Now}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateOrder turns a finalized cart snapshot plus customer info into
// one durable order aggregate. The repository commits the customer row,
// stock decrements, header, items and outbox event atomically; the
// returned order is re-read from storage, not echoed from the input.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	now := s.now()

	orderNumber := input.OrderNumber
	if orderNumber == "" {
		orderNumber = fmt.Sprintf("ORD-%d", now.UnixMilli())
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		OrderNumber:   orderNumber,
		Date:          now,
		Customer:      input.Customer,
		PaymentDate:   parsePaymentDate(input.PaymentDate),
		Voucher:       input.Voucher,
		IssuingBank:   input.IssuingBank,
		Total:         input.Total,
		PaymentMethod: input.PaymentMethod,
		Status:        domain.OrderStatusPending,
	}
	for _, line := range input.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductPrice: line.ProductPrice,
			Quantity:     line.Quantity,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return s.repo.GetOrderByID(ctx, order.ID)
}

func (s *OrderService) GetAll(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.GetAllOrders(ctx)
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// UpdateStatus moves an order to a new status. Completed and cancelled
// are terminal: once there, the only accepted submission is the same
// status again (idempotent retries from the admin UI).
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status string) (*domain.Order, error) {
	parsed := domain.OrderStatus(status)
	if !parsed.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() && parsed != current.Status {
		return nil, fmt.Errorf("%w: order is already %s", ErrInvalidStatus, current.Status)
	}

	return s.repo.UpdateOrderStatus(ctx, id, parsed)
}

func validateOrderInput(input CreateOrderInput) error {
	required := []struct {
		name  string
		value string
	}{
		{"full name", input.Customer.FullName},
		{"cedula", input.Customer.Cedula},
		{"email", input.Customer.Email},
		{"phone", input.Customer.Phone},
		{"address", input.Customer.Address},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field.name)
		}
	}

	if !emailPattern.MatchString(input.Customer.Email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}

	if !input.PaymentMethod.Valid() {
		return fmt.Errorf("%w: invalid payment method %q", ErrValidation, input.PaymentMethod)
	}

	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if input.Total < 0 {
		return fmt.Errorf("%w: total must not be negative", ErrValidation)
	}

	var sum float64
	for _, line := range input.Lines {
		if line.ProductID == "" {
			return fmt.Errorf("%w: item product id is required", ErrValidation)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: item quantity must be at least 1", ErrValidation)
		}
		if line.ProductPrice < 0 {
			return fmt.Errorf("%w: item price must not be negative", ErrValidation)
		}
		sum += line.ProductPrice * float64(line.Quantity)
	}

	// The client computes the total from the same snapshot it submits;
	// anything beyond a rounding cent means the payload is inconsistent.
	if math.Abs(sum-input.Total) > 0.01 {
		return fmt.Errorf("%w: declared %.2f, items sum to %.2f", ErrTotalMismatch, input.Total, sum)
	}

	return nil
}

// parsePaymentDate normalizes the customer-typed payment date. The
// storefront sends dd/mm/yyyy; an unparseable or empty value yields nil
// rather than failing the order, since the declaration is unverified
// metadata anyway.
func parsePaymentDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) == 3 {
			day, errDay := strconv.Atoi(parts[0])
			month, errMonth := strconv.Atoi(parts[1])
			year, errYear := strconv.Atoi(parts[2])
			if errDay == nil && errMonth == nil && errYear == nil &&
				month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
				return &t
			}
		}
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
