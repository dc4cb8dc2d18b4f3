package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
)

type httpPaymentClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewHTTPPaymentClient(baseURL, apiKey string) PaymentClient {
	return &httpPaymentClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second, // Gateway kadang lambat saat refund
		},
	}
}

// CreateRefund memanggil gateway dengan correlation id pembayaran yang
// tersimpan di order. Caller yang memutuskan apakah kegagalan fatal.
func (c *httpPaymentClient) CreateRefund(ctx context.Context, paymentID string) (string, error) {
	reqURL := fmt.Sprintf("%s/v1/refunds", c.BaseURL)

	form := url.Values{}
	form.Set("payment_intent", paymentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		logger.Error("PaymentClient.CreateRefund: NewRequest failed", err)
		return "", fmt.Errorf("failed to create refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("PaymentClient.CreateRefund: HTTPClient.Do failed", err)
		return "", fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		// Error decode tidak boleh menutupi error utama
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		errMsg := fmt.Sprintf("payment gateway refund returned status %d", resp.StatusCode)
		if errResp.Error.Message != "" {
			errMsg = fmt.Sprintf("%s - %s", errMsg, errResp.Error.Message)
		}
		logger.Error(errMsg, nil)
		return "", fmt.Errorf("%s", errMsg)
	}

	var refund struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refund); err != nil {
		logger.Error("PaymentClient.CreateRefund: decode failed", err)
		return "", fmt.Errorf("failed to decode refund response: %w", err)
	}
	return refund.ID, nil
}
