package handler

import "time"

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type addressRequest struct {
	Line        string             `json:"line" validate:"required"`
	City        string             `json:"city" validate:"required"`
	ZipCode     string             `json:"zip_code"`
	CountryCode string             `json:"country_code" validate:"required,len=2"`
	Coordinates coordinatesRequest `json:"coordinates"`
}

type lineItemRequest struct {
	ProductID    string  `json:"product_id" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	UnitWeightKg float64 `json:"unit_weight_kg" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerID  string            `json:"customer_id" validate:"required"`
	Lines       []lineItemRequest `json:"lines" validate:"required,min=1,dive"`
	Destination addressRequest    `json:"destination" validate:"required"`
	Strategy    string            `json:"strategy" validate:"required,oneof=fastest cheapest lowest_carbon"`
}

type orderLinks struct {
	Self     string `json:"self"`
	Optimize string `json:"optimize"`
}

type createOrderResponse struct {
	OrderID   string     `json:"order_id"`
	Status    string     `json:"status"`
	Strategy  string     `json:"strategy"`
	CreatedAt time.Time  `json:"created_at"`
	Links     orderLinks `json:"_links"`
}

type decisionResponse struct {
	WarehouseID string    `json:"warehouse_id"`
	CarrierID   string    `json:"carrier_id"`
	Strategy    string    `json:"strategy"`
	Cost        float64   `json:"cost"`
	Currency    string    `json:"currency"`
	CarbonKg    float64   `json:"carbon_kg"`
	TransitDays int       `json:"transit_days"`
	DecidedAt   time.Time `json:"decided_at"`
}

type getOrderResponse struct {
	OrderID       string            `json:"order_id"`
	CustomerID    string            `json:"customer_id"`
	Status        string            `json:"status"`
	Strategy      string            `json:"strategy"`
	Lines         []lineItemRequest `json:"lines"`
	Destination   addressRequest    `json:"destination"`
	TotalWeightKg float64           `json:"total_weight_kg"`
	CreatedAt     time.Time         `json:"created_at"`
	Decision      *decisionResponse `json:"decision,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

type optimizeResponse struct {
	OrderID             string           `json:"order_id"`
	Decision            decisionResponse `json:"decision"`
	CandidatesEvaluated int              `json:"candidates_evaluated"`
	CandidatesFeasible  int              `json:"candidates_feasible"`
}
