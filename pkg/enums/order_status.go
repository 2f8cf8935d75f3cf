package enums

import "fmt"

// OrderStatus mirrors the externally visible order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusDisputed  OrderStatus = "disputed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusCompleted,
	OrderStatusFailed,
	OrderStatusCanceled,
	OrderStatusRefunded,
	OrderStatusDisputed,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderPaymentStatus tracks the payment leg of an order.
type OrderPaymentStatus string

const (
	OrderPaymentStatusPending  OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid     OrderPaymentStatus = "paid"
	OrderPaymentStatusFailed   OrderPaymentStatus = "failed"
	OrderPaymentStatusCanceled OrderPaymentStatus = "canceled"
	OrderPaymentStatusRefunded OrderPaymentStatus = "refunded"
	OrderPaymentStatusDisputed OrderPaymentStatus = "disputed"
)

var validOrderPaymentStatuses = []OrderPaymentStatus{
	OrderPaymentStatusPending,
	OrderPaymentStatusPaid,
	OrderPaymentStatusFailed,
	OrderPaymentStatusCanceled,
	OrderPaymentStatusRefunded,
	OrderPaymentStatusDisputed,
}

// IsValid reports whether the value is a known OrderPaymentStatus.
func (o OrderPaymentStatus) IsValid() bool {
	for _, candidate := range validOrderPaymentStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// OrderFulfillmentStatus tracks the fulfillment leg of an order.
type OrderFulfillmentStatus string

const (
	OrderFulfillmentStatusPending    OrderFulfillmentStatus = "pending"
	OrderFulfillmentStatusProcessing OrderFulfillmentStatus = "processing"
	OrderFulfillmentStatusShipped    OrderFulfillmentStatus = "shipped"
	OrderFulfillmentStatusDelivered  OrderFulfillmentStatus = "delivered"
)

var validOrderFulfillmentStatuses = []OrderFulfillmentStatus{
	OrderFulfillmentStatusPending,
	OrderFulfillmentStatusProcessing,
	OrderFulfillmentStatusShipped,
	OrderFulfillmentStatusDelivered,
}

// IsValid reports whether the value is a known OrderFulfillmentStatus.
func (o OrderFulfillmentStatus) IsValid() bool {
	for _, candidate := range validOrderFulfillmentStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}
