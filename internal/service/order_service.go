package service

import (
	"context"
	"fmt"

	"cargo-shop/internal/model"
	"cargo-shop/internal/payment"
	"cargo-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	gateway     payment.Gateway
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	gateway payment.Gateway,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// GetCartDetails resolves cart items to live product data for display.
// Resolution is driven by what the catalogue returns: ids without a match
// simply produce no preview line.
func (s *orderService) GetCartDetails(ctx context.Context, items []model.CartItem) ([]model.CartProduct, error) {
	ids := productIDs(items)

	products, err := s.productRepo.GetByPublicIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("item_count", len(items)).Msg("failed to resolve cart products")
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}

	quantities := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] = item.Quantity
	}

	cart := make([]model.CartProduct, 0, len(products))
	for _, product := range products {
		cart = append(cart, model.CartProductFrom(product, quantities[product.PublicID]))
	}

	return cart, nil
}

// CreateOrder prices the cart against live products, opens a payment
// session and persists a PENDING order correlated with it.
//
// The session is requested before per-line resolution is validated, so an
// unknown product id detected afterwards leaves a remote session with no
// local order. That ordering matches the upstream checkout contract and is
// kept as-is.
func (s *orderService) CreateOrder(ctx context.Context, user *model.User, items []model.CartItem) (string, error) {
	if err := validateCartItems(items); err != nil {
		return "", err
	}

	products, err := s.productRepo.GetByPublicIDs(ctx, productIDs(items))
	if err != nil {
		s.logger.Error().Err(err).Int("item_count", len(items)).Msg("failed to resolve products for order")
		return "", fmt.Errorf("failed to resolve products for order: %w", err)
	}

	sessionID, err := s.gateway.CreateSession(ctx, user, products, items)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_public_id", user.PublicID.String()).
			Msg("payment session creation failed")
		return "", model.ErrCartPayment
	}

	productsByID := make(map[uuid.UUID]model.Product, len(products))
	for _, product := range products {
		productsByID[product.PublicID] = product
	}

	lines := make([]model.OrderLine, 0, len(items))
	for _, item := range items {
		product, found := productsByID[item.ProductID]
		if !found {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Str("session_id", sessionID).
				Msg("cart item references unknown product, aborting order")
			return "", model.ErrProductNotFound
		}

		line, err := model.NewOrderLine(product, item.Quantity)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	order := model.NewOrder(user, lines, sessionID)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Save(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_public_id", order.PublicID.String()).Msg("failed to save order")
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_public_id", order.PublicID.String()).Msg("failed to commit transaction")
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_public_id", order.PublicID.String()).
		Str("session_id", sessionID).
		Int("line_count", len(lines)).
		Msg("order created")

	return sessionID, nil
}

// ConfirmPayment processes a completed checkout session. Status update,
// stock decrements and the address update commit in a single transaction.
//
// There is no guard against reprocessing: confirming the same session twice
// re-marks the order PAID and decrements stock again. Deduplication is
// owned by the delivery contract upstream.
func (s *orderService) ConfirmPayment(ctx context.Context, confirmation model.PaymentConfirmation) error {
	order, err := s.orderRepo.GetBySessionID(ctx, confirmation.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load order for session: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("session_id", confirmation.SessionID).Msg("no order for completed session")
		return model.ErrOrderNotFound
	}

	order.ValidatePayment()

	userPublicID := order.UserPublicID
	if userPublicID == uuid.Nil {
		userPublicID = confirmation.UserPublicID
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.UpdateStatus(ctx, tx, order.Status, order.PublicID); err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	for _, quantity := range order.LineQuantities() {
		if err = s.productRepo.DecrementStock(ctx, tx, quantity.ProductPublicID, quantity.Quantity); err != nil {
			return fmt.Errorf("failed to confirm payment: %w", err)
		}
	}

	if err = s.userRepo.UpdateAddress(ctx, tx, userPublicID, confirmation.Address); err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_public_id", order.PublicID.String()).Msg("failed to commit confirmation")
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	s.logger.Info().
		Str("order_public_id", order.PublicID.String()).
		Str("session_id", confirmation.SessionID).
		Int("line_count", len(order.Lines)).
		Msg("payment confirmed")

	return nil
}

// FindOrdersForUser retrieves the buyer's orders with pagination.
func (s *orderService) FindOrdersForUser(ctx context.Context, userPublicID uuid.UUID, page model.Pagination) (model.Page[model.Order], error) {
	orders, err := s.orderRepo.GetAllByUser(ctx, userPublicID, page)
	if err != nil {
		s.logger.Error().Err(err).Str("user_public_id", userPublicID.String()).Msg("failed to list user orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// FindAllOrders retrieves all orders for the administrative view.
func (s *orderService) FindAllOrders(ctx context.Context, page model.Pagination) (model.Page[model.Order], error) {
	orders, err := s.orderRepo.GetAll(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// validateCartItems rejects empty carts and malformed items before any
// external call is made.
func validateCartItems(items []model.CartItem) error {
	if len(items) == 0 {
		return model.ErrEmptyCart
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return model.ErrNilProductID
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

func productIDs(items []model.CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return ids
}
