// Package api holds the HTTP request and response types, the ServerInterface
// implemented by the handlers, and its chi routing. It follows the layout
// oapi-codegen produces for chi servers but is maintained by hand.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Defines values for CreditSource.
const (
	Compensation    CreditSource = "compensation"
	Purchase        CreditSource = "purchase"
	SolarGeneration CreditSource = "solar_generation"
)

// Defines values for CreditStatus.
const (
	Active   CreditStatus = "active"
	Consumed CreditStatus = "consumed"
	Expired  CreditStatus = "expired"
)

// Defines values for TransactionType.
const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Defines values for PlantStatus.
const (
	PlantStatusOffline PlantStatus = "offline"
	PlantStatusOnline  PlantStatus = "online"
	PlantStatusPartial PlantStatus = "partial"
)

// Balance defines model for Balance.
type Balance struct {
	AvailableCredits string `json:"available_credits"`
	CustomerId       string `json:"customer_id"`
}

// ConsumptionResult defines model for ConsumptionResult.
type ConsumptionResult struct {
	Consumed       []EnergyCredit `json:"consumed"`
	ConsumedAmount string         `json:"consumed_amount"`
	Remainder      *EnergyCredit  `json:"remainder,omitempty"`
	Replayed       bool           `json:"replayed"`
	Shortfall      string         `json:"shortfall"`
	Transaction    *Transaction   `json:"transaction,omitempty"`
}

// CreditSource defines model for CreditSource.
type CreditSource string

// CreditStatus defines model for CreditStatus.
type CreditStatus string

// CustomerList defines model for CustomerList.
type CustomerList struct {
	Customers []string `json:"customers"`
}

// EnergyCredit defines model for EnergyCredit.
type EnergyCredit struct {
	Amount      string       `json:"amount"`
	ConsumedAt  *time.Time   `json:"consumed_at,omitempty"`
	CustomerId  string       `json:"customer_id"`
	Description string       `json:"description"`
	ExpiredAt   *time.Time   `json:"expired_at,omitempty"`
	Id          string       `json:"id"`
	InvoiceId   *string      `json:"invoice_id,omitempty"`
	IssuedAt    time.Time    `json:"issued_at"`
	ParentId    *string      `json:"parent_id,omitempty"`
	Source      CreditSource `json:"source"`
	Status      CreditStatus `json:"status"`
}

// Error defines model for Error.
type Error struct {
	Message string `json:"message"`
}

// InverterReading defines model for InverterReading.
type InverterReading struct {
	Current     float64    `json:"current"`
	Efficiency  float64    `json:"efficiency"`
	Energy      float64    `json:"energy"`
	Frequency   float64    `json:"frequency"`
	Id          *string    `json:"id,omitempty"`
	InverterId  string     `json:"inverter_id"`
	PlantId     *string    `json:"plant_id,omitempty"`
	Power       float64    `json:"power"`
	Status      string     `json:"status"`
	Temperature float64    `json:"temperature"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Voltage     float64    `json:"voltage"`
}

// NewConsumption defines model for NewConsumption.
type NewConsumption struct {
	Amount    string `json:"amount"`
	InvoiceId string `json:"invoice_id"`
}

// NewCredit defines model for NewCredit.
type NewCredit struct {
	Amount      string       `json:"amount"`
	Description *string      `json:"description,omitempty"`
	Source      CreditSource `json:"source"`
}

// Plant defines model for Plant.
type Plant struct {
	CapacityKwp float64 `json:"capacity_kwp"`
	Id          string  `json:"id"`
	Location    string  `json:"location"`
	Name        string  `json:"name"`
}

// PlantSnapshot defines model for PlantSnapshot.
type PlantSnapshot struct {
	Efficiency      float64           `json:"efficiency"`
	Inverters       []InverterReading `json:"inverters"`
	LastUpdate      *time.Time        `json:"last_update,omitempty"`
	OnlineInverters int               `json:"online_inverters"`
	Plant           Plant             `json:"plant"`
	Status          PlantStatus       `json:"status"`
	TotalEnergy     float64           `json:"total_energy"`
	TotalInverters  int               `json:"total_inverters"`
	TotalPower      float64           `json:"total_power"`
}

// PlantStatus defines model for PlantStatus.
type PlantStatus string

// ReadingBatch defines model for ReadingBatch.
type ReadingBatch struct {
	Readings []InverterReading `json:"readings"`
}

// Totals defines model for Totals.
type Totals struct {
	AvailableCredits string `json:"available_credits"`
	ConsumedCredits  string `json:"consumed_credits"`
	ExpiredCredits   string `json:"expired_credits"`
	TotalCredits     string `json:"total_credits"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	Amount      string          `json:"amount"`
	CustomerId  string          `json:"customer_id"`
	Description string          `json:"description"`
	Id          string          `json:"id"`
	InvoiceId   *string         `json:"invoice_id,omitempty"`
	Reason      string          `json:"reason"`
	Reference   *string         `json:"reference,omitempty"`
	Sequence    int64           `json:"sequence"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        TransactionType `json:"type"`
}

// TransactionType defines model for TransactionType.
type TransactionType string

// Vault defines model for Vault.
type Vault struct {
	AvailableCredits string        `json:"available_credits"`
	ConsumedCredits  string        `json:"consumed_credits"`
	CustomerId       string        `json:"customer_id"`
	ExpiredCredits   string        `json:"expired_credits"`
	LastUpdated      *time.Time    `json:"last_updated,omitempty"`
	TotalCredits     string        `json:"total_credits"`
	Transactions     []Transaction `json:"transactions"`
	Version          int64         `json:"version"`
}

// Verification defines model for Verification.
type Verification struct {
	Consistent bool      `json:"consistent"`
	CustomerId string    `json:"customer_id"`
	Derived    Totals    `json:"derived"`
	Problems   *[]string `json:"problems,omitempty"`
	Replayed   Totals    `json:"replayed"`
	Stored     Totals    `json:"stored"`
	Version    int64     `json:"version"`
}

// ListCreditsParams defines parameters for ListCredits.
type ListCreditsParams struct {
	Status *CreditStatus `form:"status,omitempty" json:"status,omitempty"`
}

// IssueCreditJSONRequestBody defines body for IssueCredit for application/json ContentType.
type IssueCreditJSONRequestBody = NewCredit

// ConsumeCreditsJSONRequestBody defines body for ConsumeCredits for application/json ContentType.
type ConsumeCreditsJSONRequestBody = NewConsumption

// IngestReadingsJSONRequestBody defines body for IngestReadings for application/json ContentType.
type IngestReadingsJSONRequestBody = ReadingBatch

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List customers with a vault
	// (GET /customers)
	ListCustomers(w http.ResponseWriter, r *http.Request)
	// Get the available balance
	// (GET /customers/{customerId}/balance)
	GetBalance(w http.ResponseWriter, r *http.Request, customerId string)
	// Consume credits for an invoice
	// (POST /customers/{customerId}/consumptions)
	ConsumeCredits(w http.ResponseWriter, r *http.Request, customerId string)
	// List credits
	// (GET /customers/{customerId}/credits)
	ListCredits(w http.ResponseWriter, r *http.Request, customerId string, params ListCreditsParams)
	// Issue a credit
	// (POST /customers/{customerId}/credits)
	IssueCredit(w http.ResponseWriter, r *http.Request, customerId string)
	// Get the transaction history
	// (GET /customers/{customerId}/transactions)
	ListTransactions(w http.ResponseWriter, r *http.Request, customerId string)
	// Get the vault
	// (GET /customers/{customerId}/vault)
	GetVault(w http.ResponseWriter, r *http.Request, customerId string)
	// Verify the vault against its transactions and credits
	// (GET /customers/{customerId}/verification)
	VerifyVault(w http.ResponseWriter, r *http.Request, customerId string)
	// List plant snapshots
	// (GET /plants)
	ListPlants(w http.ResponseWriter, r *http.Request)
	// Get a plant snapshot
	// (GET /plants/{plantId})
	GetPlant(w http.ResponseWriter, r *http.Request, plantId string)
	// Ingest inverter readings
	// (POST /plants/{plantId}/readings)
	IngestReadings(w http.ResponseWriter, r *http.Request, plantId string)
	// Simulate a telemetry refresh
	// (POST /plants/{plantId}/refresh)
	RefreshPlant(w http.ResponseWriter, r *http.Request, plantId string)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// ListCustomers operation middleware
func (siw *ServerInterfaceWrapper) ListCustomers(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListCustomers(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// bindPathParam binds a required simple-style path parameter.
func (siw *ServerInterfaceWrapper) bindPathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) withCustomer(call func(w http.ResponseWriter, r *http.Request, customerId string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customerId string
		if !siw.bindPathParam(w, r, "customerId", &customerId) {
			return
		}

		handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			call(w, r, customerId)
		}))

		for _, middleware := range siw.HandlerMiddlewares {
			handler = middleware(handler)
		}

		handler.ServeHTTP(w, r)
	}
}

func (siw *ServerInterfaceWrapper) withPlant(call func(w http.ResponseWriter, r *http.Request, plantId string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var plantId string
		if !siw.bindPathParam(w, r, "plantId", &plantId) {
			return
		}

		handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			call(w, r, plantId)
		}))

		for _, middleware := range siw.HandlerMiddlewares {
			handler = middleware(handler)
		}

		handler.ServeHTTP(w, r)
	}
}

// ListCredits operation middleware
func (siw *ServerInterfaceWrapper) ListCredits(w http.ResponseWriter, r *http.Request) {
	var customerId string
	if !siw.bindPathParam(w, r, "customerId", &customerId) {
		return
	}

	// Parameter object where we will unmarshal all parameters from the context
	var params ListCreditsParams

	// ------------- Optional query parameter "status" -------------

	err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListCredits(w, r, customerId, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// ListPlants operation middleware
func (siw *ServerInterfaceWrapper) ListPlants(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListPlants(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type UnescapedCookieParamError struct {
	ParamName string
	Err       error
}

func (e *UnescapedCookieParamError) Error() string {
	return fmt.Sprintf("error unescaping cookie parameter '%s'", e.ParamName)
}

func (e *UnescapedCookieParamError) Unwrap() error {
	return e.Err
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers", wrapper.ListCustomers)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers/{customerId}/balance", wrapper.withCustomer(si.GetBalance))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/customers/{customerId}/consumptions", wrapper.withCustomer(si.ConsumeCredits))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers/{customerId}/credits", wrapper.ListCredits)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/customers/{customerId}/credits", wrapper.withCustomer(si.IssueCredit))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers/{customerId}/transactions", wrapper.withCustomer(si.ListTransactions))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers/{customerId}/vault", wrapper.withCustomer(si.GetVault))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/customers/{customerId}/verification", wrapper.withCustomer(si.VerifyVault))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/plants", wrapper.ListPlants)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/plants/{plantId}", wrapper.withPlant(si.GetPlant))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/plants/{plantId}/readings", wrapper.withPlant(si.IngestReadings))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/plants/{plantId}/refresh", wrapper.withPlant(si.RefreshPlant))
	})

	return r
}
