package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coralseatraining/partner-portal-backend/internal/config"
)

// CheckoutEnvironmentURLs maps environment names to the hosted checkout endpoint
var CheckoutEnvironmentURLs = map[string]string{
	"sandbox":    "https://connect.squareupsandbox.com/v2/online-checkout/payment-links",
	"production": "https://connect.squareup.com/v2/online-checkout/payment-links",
}

// CheckoutService creates hosted checkout sessions for public course purchases.
// Purchases are a separate flow from partner bookings; nothing here touches
// booking or compliance state.
type CheckoutService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg *config.PaymentConfig, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckoutLineItem is one purchasable entry on the checkout page
type CheckoutLineItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"` // whole currency units
}

// CreateCheckoutParams describes the purchase being checked out
type CreateCheckoutParams struct {
	ReferenceID   string
	CourseName    string
	UnitPrice     int
	Quantity      int
	AddOns        []CheckoutLineItem
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// checkoutRequest is the payload sent to the hosted checkout API
type checkoutRequest struct {
	IdempotencyKey  string        `json:"idempotency_key"`
	Order           checkoutOrder `json:"order"`
	CheckoutOptions struct {
		RedirectURL string `json:"redirect_url,omitempty"`
	} `json:"checkout_options"`
	PrePopulatedData struct {
		BuyerEmail string `json:"buyer_email,omitempty"`
		BuyerPhone string `json:"buyer_phone_number,omitempty"`
	} `json:"pre_populated_data"`
}

type checkoutOrder struct {
	ReferenceID string             `json:"reference_id,omitempty"`
	LineItems   []checkoutLineItem `json:"line_items"`
}

type checkoutLineItem struct {
	Name           string        `json:"name"`
	Quantity       string        `json:"quantity"`
	BasePriceMoney checkoutMoney `json:"base_price_money"`
}

type checkoutMoney struct {
	Amount   int    `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// checkoutResponse is the hosted checkout API response
type checkoutResponse struct {
	PaymentLink struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"payment_link"`
	Errors []struct {
		Category string `json:"category"`
		Code     string `json:"code"`
		Detail   string `json:"detail"`
	} `json:"errors"`
}

// CheckoutSession is the created checkout, ready for browser redirect
type CheckoutSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateCheckout builds a hosted checkout session and returns its redirect URL
func (s *CheckoutService) CreateCheckout(params *CreateCheckoutParams) (*CheckoutSession, error) {
	if s.config.MerchantKey == "" {
		return nil, fmt.Errorf("checkout not configured: missing merchant key")
	}
	if params.CourseName == "" || params.UnitPrice <= 0 {
		return nil, fmt.Errorf("checkout requires a course and a positive price")
	}

	quantity := params.Quantity
	if quantity < 1 {
		quantity = 1
	}

	lineItems := []checkoutLineItem{
		{
			Name:     params.CourseName,
			Quantity: fmt.Sprintf("%d", quantity),
			BasePriceMoney: checkoutMoney{
				Amount:   params.UnitPrice * 100,
				Currency: "AUD",
			},
		},
	}
	for _, addOn := range params.AddOns {
		if addOn.Quantity < 1 || addOn.UnitPrice <= 0 {
			continue
		}
		lineItems = append(lineItems, checkoutLineItem{
			Name:     addOn.Name,
			Quantity: fmt.Sprintf("%d", addOn.Quantity),
			BasePriceMoney: checkoutMoney{
				Amount:   addOn.UnitPrice * 100,
				Currency: "AUD",
			},
		})
	}

	request := checkoutRequest{
		IdempotencyKey: params.ReferenceID,
		Order: checkoutOrder{
			ReferenceID: params.ReferenceID,
			LineItems:   lineItems,
		},
	}
	request.CheckoutOptions.RedirectURL = s.config.ReturnURL
	request.PrePopulatedData.BuyerEmail = params.CustomerEmail
	request.PrePopulatedData.BuyerPhone = params.CustomerPhone

	endpointURL, ok := CheckoutEnvironmentURLs[s.config.Environment]
	if !ok {
		endpointURL = CheckoutEnvironmentURLs["sandbox"]
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpointURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.MerchantKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}

	var checkoutResp checkoutResponse
	if err := json.Unmarshal(body, &checkoutResp); err != nil {
		return nil, fmt.Errorf("failed to parse checkout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := "checkout provider rejected the request"
		if len(checkoutResp.Errors) > 0 {
			detail = checkoutResp.Errors[0].Detail
		}
		s.logger.WithFields(logrus.Fields{
			"reference_id": params.ReferenceID,
			"status_code":  resp.StatusCode,
		}).Error("Checkout creation failed")
		return nil, fmt.Errorf("checkout creation failed: %s", detail)
	}

	s.logger.WithFields(logrus.Fields{
		"reference_id": params.ReferenceID,
		"checkout_id":  checkoutResp.PaymentLink.ID,
	}).Info("Checkout session created")

	return &CheckoutSession{
		ID:          checkoutResp.PaymentLink.ID,
		RedirectURL: checkoutResp.PaymentLink.URL,
	}, nil
}
