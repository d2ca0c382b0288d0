package handler

import (
	"time"

	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	UserID string              `json:"userId"`
	Items  []createItemRequest `json:"items"`
	Remark string              `json:"remark"`
}

type createItemRequest struct {
	ProductID   int64           `json:"productId"`
	MerchantID  int64           `json:"merchantId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// merchantActionRequest is the optional body of accept and reject; query
// parameters take precedence.
type merchantActionRequest struct {
	MerchantID int64  `json:"merchantId"`
	Reason     string `json:"reason"`
}

type merchantStatusRequest struct {
	MerchantID int64  `json:"merchantId"`
	Status     string `json:"status"`
}

type orderPayload struct {
	ID          string             `json:"id"`
	OrderNo     string             `json:"orderNo"`
	UserID      string             `json:"userId"`
	TotalAmount string             `json:"totalAmount"`
	Currency    string             `json:"currency"`
	Status      domain.OrderStatus `json:"status"`
	StatusLabel string             `json:"statusLabel"`
	Remark      string             `json:"remark"`
	Version     int64              `json:"version"`
	CreateTime  time.Time          `json:"createTime"`
	UpdateTime  time.Time          `json:"updateTime"`
	Items       []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	MerchantID  int64  `json:"merchantId"`
	ProductName string `json:"productName"`
	Price       string `json:"price"`
	Quantity    int32  `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type pagePayload struct {
	Items []orderPayload `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int64          `json:"pages"`
}

type countPayload struct {
	Count int64 `json:"count"`
}

type amountPayload struct {
	Amount string `json:"amount"`
}

func toOrderPayload(order domain.Order) orderPayload {
	return orderPayload{
		ID:          order.ID.String(),
		OrderNo:     order.Number,
		UserID:      order.UserID,
		TotalAmount: order.Total.StringFixed(),
		Currency:    order.Total.Currency.String(),
		Status:      order.Status,
		StatusLabel: order.Status.Label(),
		Remark:      order.Remark,
		Version:     order.Version,
		CreateTime:  order.CreatedAt,
		UpdateTime:  order.UpdatedAt,
		Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) orderItemPayload {
			return orderItemPayload{
				ID:          item.ID,
				ProductID:   item.ProductID,
				MerchantID:  item.MerchantID,
				ProductName: item.ProductName,
				Price:       item.UnitPrice.StringFixed(),
				Quantity:    item.Quantity,
				Subtotal:    item.Subtotal.StringFixed(),
			}
		}),
	}
}

func toPagePayload(page domain.Page[domain.Order]) pagePayload {
	return pagePayload{
		Items: lo.Map(page.Items, func(order domain.Order, _ int) orderPayload { return toOrderPayload(order) }),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}
}

func toAmountPayload(amount decimal.Decimal) amountPayload {
	return amountPayload{Amount: amount.StringFixed(2)}
}

func (r createOrderRequest) items() []domain.NewOrderItem {
	return lo.Map(r.Items, func(item createItemRequest, _ int) domain.NewOrderItem {
		return domain.NewOrderItem{
			ProductID:   item.ProductID,
			MerchantID:  item.MerchantID,
			ProductName: item.ProductName,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
		}
	})
}
