package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type CreateTitleRequest struct {
	ClientID string
	Amount   decimal.Decimal
	DueDate  time.Time
}

type rawCreateTitleRequest struct {
	ClientID interface{} `json:"client_id"`
	Amount   interface{} `json:"amount"`
	DueDate  interface{} `json:"due_date"`
}

func ValidateCreateTitleRequest(r *http.Request) (*CreateTitleRequest, error) {
	var raw rawCreateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	clientID, err := toStringPtr(raw.ClientID)
	if err != nil || clientID == nil {
		return nil, &ValidationError{Field: "client_id", Message: "client_id is required"}
	}

	amount, err := toDecimal(raw.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Message: "amount must be a positive number"}
	}

	dueDate, err := toDatePtr(raw.DueDate)
	if err != nil || dueDate == nil {
		return nil, &ValidationError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"}
	}

	return &CreateTitleRequest{
		ClientID: *clientID,
		Amount:   amount,
		DueDate:  *dueDate,
	}, nil
}

type SplitTitleRequest struct {
	InstallmentCount int
	StartDate        time.Time
	IntervalDays     int
}

type rawSplitTitleRequest struct {
	InstallmentCount interface{} `json:"installment_count"`
	StartDate        interface{} `json:"start_date"`
	IntervalDays     interface{} `json:"interval_days"`
}

func ValidateSplitTitleRequest(r *http.Request) (*SplitTitleRequest, error) {
	var raw rawSplitTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	count, err := toInt64Ptr(raw.InstallmentCount)
	if err != nil || count == nil {
		return nil, &ValidationError{Field: "installment_count", Message: "installment_count must be an integer"}
	}

	startDate, err := toDatePtr(raw.StartDate)
	if err != nil || startDate == nil {
		return nil, &ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"}
	}

	interval, err := toInt64Ptr(raw.IntervalDays)
	if err != nil || interval == nil {
		return nil, &ValidationError{Field: "interval_days", Message: "interval_days must be an integer"}
	}

	return &SplitTitleRequest{
		InstallmentCount: int(*count),
		StartDate:        *startDate,
		IntervalDays:     int(*interval),
	}, nil
}

type AdjustmentRequest struct {
	Kind        string
	Mode        string
	Value       decimal.Decimal
	Description string
}

type rawAdjustmentRequest struct {
	Kind        interface{} `json:"kind"`
	Mode        interface{} `json:"mode"`
	Value       interface{} `json:"value"`
	Description interface{} `json:"description"`
}

// ValidateAdjustmentRequest parses a charge or discount body. Kind is only
// meaningful for charges; discounts ignore it.
func ValidateAdjustmentRequest(r *http.Request) (*AdjustmentRequest, error) {
	var raw rawAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	kind, err := toStringPtr(raw.Kind)
	if err != nil {
		return nil, &ValidationError{Field: "kind", Message: "kind must be a string"}
	}

	mode, err := toStringPtr(raw.Mode)
	if err != nil || mode == nil {
		return nil, &ValidationError{Field: "mode", Message: "mode must be fixed or percent"}
	}

	value, err := toDecimal(raw.Value)
	if err != nil {
		return nil, &ValidationError{Field: "value", Message: "value must be a positive number"}
	}

	description, err := toStringPtr(raw.Description)
	if err != nil {
		return nil, &ValidationError{Field: "description", Message: "description must be a string"}
	}

	req := &AdjustmentRequest{Mode: *mode, Value: value}
	if kind != nil {
		req.Kind = *kind
	}
	if description != nil {
		req.Description = *description
	}
	return req, nil
}

type CreateAgreementRequest struct {
	ClientID            string
	TitleIDs            []string
	AgreedAmount        decimal.Decimal
	InstallmentCount    int
	InterestRatePercent decimal.Decimal
	FirstDueDate        time.Time
}

type rawCreateAgreementRequest struct {
	ClientID            interface{} `json:"client_id"`
	TitleIDs            []string    `json:"title_ids"`
	AgreedAmount        interface{} `json:"agreed_amount"`
	InstallmentCount    interface{} `json:"installment_count"`
	InterestRatePercent interface{} `json:"interest_rate_percent"`
	FirstDueDate        interface{} `json:"first_due_date"`
}

func ValidateCreateAgreementRequest(r *http.Request) (*CreateAgreementRequest, error) {
	var raw rawCreateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	clientID, err := toStringPtr(raw.ClientID)
	if err != nil || clientID == nil {
		return nil, &ValidationError{Field: "client_id", Message: "client_id is required"}
	}

	if len(raw.TitleIDs) == 0 {
		return nil, &ValidationError{Field: "title_ids", Message: "title_ids is required and must be an array"}
	}

	// omitted agreed_amount means "settle the full outstanding balance"
	agreed := decimal.Zero
	if raw.AgreedAmount != nil {
		agreed, err = toDecimal(raw.AgreedAmount)
		if err != nil {
			return nil, &ValidationError{Field: "agreed_amount", Message: "agreed_amount must be a number"}
		}
	}

	count, err := toInt64Ptr(raw.InstallmentCount)
	if err != nil || count == nil {
		return nil, &ValidationError{Field: "installment_count", Message: "installment_count must be an integer"}
	}

	rate := decimal.Zero
	if raw.InterestRatePercent != nil {
		rate, err = toDecimal(raw.InterestRatePercent)
		if err != nil {
			return nil, &ValidationError{Field: "interest_rate_percent", Message: "interest_rate_percent must be a number"}
		}
	}

	firstDue, err := toDatePtr(raw.FirstDueDate)
	if err != nil || firstDue == nil {
		return nil, &ValidationError{Field: "first_due_date", Message: "first_due_date must be YYYY-MM-DD"}
	}

	return &CreateAgreementRequest{
		ClientID:            *clientID,
		TitleIDs:            raw.TitleIDs,
		AgreedAmount:        agreed,
		InstallmentCount:    int(*count),
		InterestRatePercent: rate,
		FirstDueDate:        *firstDue,
	}, nil
}

func toStringPtr(v interface{}) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return &t, nil
	case float64:
		i := int64(t)
		s := strconv.FormatInt(i, 10)
		return &s, nil
	default:
		return nil, &ValidationError{Message: "invalid type for string field"}
	}
}

func toInt64Ptr(v interface{}) (*int64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		i := int64(t)
		return &i, nil
	case string:
		if t == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, &ValidationError{Message: "invalid type for int field"}
	}
}

func toDatePtr(v interface{}) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, &ValidationError{Message: "invalid type for date field"}
	}
}

// toDecimal accepts JSON numbers and numeric strings; money amounts sent as
// strings keep their exact scale.
func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Decimal{}, &ValidationError{Message: "value is required"}
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		if t == "" {
			return decimal.Decimal{}, &ValidationError{Message: "value is required"}
		}
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return d, nil
	default:
		return decimal.Decimal{}, &ValidationError{Message: "invalid type for decimal field"}
	}
}
